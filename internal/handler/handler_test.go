package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/brass-engine/internal/auth"
	"github.com/freeeve/brass-engine/internal/bot"
	"github.com/freeeve/brass-engine/internal/model"
	"github.com/freeeve/brass-engine/internal/service"
	"github.com/freeeve/brass-engine/pkg/brass"
)

type apiFixture struct {
	users   *mockUserRepo
	games   *mockGameRepo
	events  *mockEventRepo
	hub     *Hub
	jwt     *auth.JWTManager
	root    http.Handler
	botRuns []string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	f := &apiFixture{
		users:  newMockUserRepo(),
		games:  newMockGameRepo(),
		events: newMockEventRepo(),
		hub:    NewHub(),
		jwt:    auth.NewJWTManager("handler-test"),
	}
	play := service.NewPlayService(brass.StandardData(), f.games, f.events, nullCache{}, f.hub)
	play.SetBotStrategy(bot.PassStrategy{})
	games := NewGameHandler(service.NewGameService(f.games, f.users, play), play, f.hub)
	games.runBots = func(gameID string) {
		f.botRuns = append(f.botRuns, gameID)
		_, err := play.RunBots(context.Background(), gameID)
		require.NoError(t, err)
	}

	api := http.NewServeMux()
	MountAPI(api, NewUserHandler(f.users), games)
	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", auth.Middleware(f.jwt)(api)))
	MountAuth(root, NewAuthHandler(auth.NewGoogleOAuth("", "", ""), f.jwt, f.users, true))
	f.root = root
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload string
	switch b := body.(type) {
	case nil:
	case string:
		payload = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		payload = string(raw)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	if userID != "" {
		token, err := f.jwt.GenerateAccessToken(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.root.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// startGame creates a two-seat game for user-1 and starts it. With a
// second user the bot seat is taken over.
func (f *apiFixture) startGame(t *testing.T, secondUser string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/games", "user-1", map[string]any{"name": "Manchester", "seats": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	gameID := decode[model.Game](t, rec).ID

	if secondUser != "" {
		rec = f.do(t, http.MethodPost, "/api/v1/games/"+gameID+"/join", secondUser, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodPost, "/api/v1/games/"+gameID+"/start", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return gameID
}

func (f *apiFixture) send(t *testing.T, gameID, userID string, ev brass.Event) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, http.MethodPost, "/api/v1/games/"+gameID+"/events", userID, ev)
}

func TestAPIRequiresToken(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodGet, "/api/v1/games", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetAndUpdateMe(t *testing.T) {
	f := newAPI(t)
	f.users.add("user-1", "Ada")

	rec := f.do(t, http.MethodGet, "/api/v1/users/me", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", decode[model.User](t, rec).DisplayName)

	rec = f.do(t, http.MethodPatch, "/api/v1/users/me", "user-1", map[string]string{"display_name": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodPatch, "/api/v1/users/me", "user-1", map[string]string{"display_name": strings.Repeat("x", 41)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodPatch, "/api/v1/users/me", "user-1", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/v1/users/me", "user-1", map[string]string{"display_name": " Grace "})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Grace", decode[model.User](t, rec).DisplayName)
}

func TestGetUserNotFound(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodGet, "/api/v1/users/nobody", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateGameValidation(t *testing.T) {
	f := newAPI(t)
	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing name", map[string]any{"seats": 2}, http.StatusBadRequest},
		{"too many seats", map[string]any{"name": "x", "seats": 5}, http.StatusBadRequest},
		{"bad json", "{", http.StatusBadRequest},
		{"default seats", map[string]any{"name": "x"}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/games", "user-1", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestListGamesEmptyIsArray(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodGet, "/api/v1/games?filter=my", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestJoinGameErrors(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodPost, "/api/v1/games/missing/join", "user-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/games", "user-1", map[string]any{"name": "x", "seats": 2})
	gameID := decode[model.Game](t, rec).ID
	rec = f.do(t, http.MethodPost, "/api/v1/games/"+gameID+"/join", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJoinGameBroadcastsToSubscribers(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodPost, "/api/v1/games", "user-1", map[string]any{"name": "x", "seats": 2})
	gameID := decode[model.Game](t, rec).ID

	watcher := newTestConn("user-1")
	f.hub.Register(watcher)
	f.hub.Subscribe(watcher, gameID)

	rec = f.do(t, http.MethodPost, "/api/v1/games/"+gameID+"/join", "user-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.EventPlayerJoined, receive(t, watcher).Type)
}

func TestStartGameOnlyByCreator(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodPost, "/api/v1/games", "user-1", map[string]any{"name": "x", "seats": 2})
	gameID := decode[model.Game](t, rec).ID
	f.do(t, http.MethodPost, "/api/v1/games/"+gameID+"/join", "user-2", nil)

	rec = f.do(t, http.MethodPost, "/api/v1/games/"+gameID+"/start", "user-2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.botRuns)
}

func TestPlayTurnOverHTTP(t *testing.T) {
	f := newAPI(t)
	gameID := f.startGame(t, "user-2")
	assert.Equal(t, []string{gameID}, f.botRuns)

	rec := f.do(t, http.MethodGet, "/api/v1/games/"+gameID+"/state", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[service.GameView](t, rec)
	require.Equal(t, "user-1", view.CurrentPlayer)
	require.NotEmpty(t, view.Accepts)
	card := view.Game.Players[0].Hand[0].ID

	assert.Equal(t, http.StatusForbidden, f.send(t, gameID, "user-2", brass.Simple(brass.EventTakeLoan)).Code)
	assert.Equal(t, http.StatusForbidden, f.send(t, gameID, "stranger", brass.Simple(brass.EventTakeLoan)).Code)
	assert.Equal(t, http.StatusConflict, f.send(t, gameID, "user-1", brass.Simple(brass.EventConfirm)).Code)
	assert.Equal(t, http.StatusBadRequest, f.send(t, gameID, "user-1", brass.Event{}).Code)
	assert.Equal(t, http.StatusBadRequest, f.send(t, gameID, "user-1", brass.StartGame()).Code)

	require.Equal(t, http.StatusOK, f.send(t, gameID, "user-1", brass.Simple(brass.EventTakeLoan)).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.send(t, gameID, "user-1", brass.SelectCard("no-such-card")).Code)
	require.Equal(t, http.StatusOK, f.send(t, gameID, "user-1", brass.SelectCard(card)).Code)
	rec = f.send(t, gameID, "user-1", brass.Simple(brass.EventConfirm))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	view = decode[service.GameView](t, rec)
	assert.Equal(t, 3, view.Seq)
	assert.Equal(t, "user-2", view.CurrentPlayer)
	assert.Nil(t, view.Accepts)
	assert.Equal(t, brass.StartingMoney+brass.LoanAmount, view.Game.Players[0].Money)
	assert.Nil(t, view.Game.Players[1].Hand)

	rec = f.do(t, http.MethodGet, "/api/v1/games/"+gameID+"/events", "user-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]model.EventRecord](t, rec)
	require.Len(t, history, 4)
	assert.Equal(t, string(brass.EventStartGame), history[0].EventType)
	assert.Equal(t, string(brass.EventConfirm), history[3].EventType)
}

func TestSendEventHandsTurnToBots(t *testing.T) {
	f := newAPI(t)
	gameID := f.startGame(t, "")

	view := decode[service.GameView](t, f.do(t, http.MethodGet, "/api/v1/games/"+gameID+"/state", "user-1", nil))
	card := view.Game.Players[0].Hand[0].ID
	for _, ev := range []brass.Event{brass.Simple(brass.EventTakeLoan), brass.SelectCard(card), brass.Simple(brass.EventConfirm)} {
		require.Equal(t, http.StatusOK, f.send(t, gameID, "user-1", ev).Code)
	}

	// The bot passed its single opening action and handed the turn back.
	rec := f.do(t, http.MethodGet, "/api/v1/games/"+gameID+"/state", "user-1", nil)
	view = decode[service.GameView](t, rec)
	assert.Equal(t, 6, view.Seq)
	assert.Equal(t, "user-1", view.CurrentPlayer)
	assert.Len(t, f.botRuns, 2)
}

func TestStateOfWaitingGame(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodPost, "/api/v1/games", "user-1", map[string]any{"name": "x"})
	gameID := decode[model.Game](t, rec).ID
	rec = f.do(t, http.MethodGet, "/api/v1/games/"+gameID+"/state", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteGame(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodPost, "/api/v1/games", "user-1", map[string]any{"name": "x"})
	gameID := decode[model.Game](t, rec).ID

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodDelete, "/api/v1/games/"+gameID, "user-2", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/api/v1/games/"+gameID, "user-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/games/"+gameID, "user-1", nil).Code)
}

func TestRefreshToken(t *testing.T) {
	f := newAPI(t)
	pair, err := f.jwt.GenerateTokenPair("user-1")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	fresh := decode[auth.TokenPair](t, rec)
	claims, err := f.jwt.ValidateKind(fresh.AccessToken, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	rec = f.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": pair.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do(t, http.MethodPost, "/auth/refresh", "", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDevLogin(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodGet, "/auth/dev?name=ada", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decode[auth.TokenPair](t, rec)
	claims, err := f.jwt.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "dev-dev-ada", claims.UserID)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/auth/dev", "", nil).Code)

	disabled := NewAuthHandler(nil, f.jwt, f.users, false)
	rec = httptest.NewRecorder()
	disabled.DevLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/dev?name=ada", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoogleLoginUnconfigured(t *testing.T) {
	f := newAPI(t)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/auth/google/login", "", nil).Code)
}

func TestGoogleCallbackStateMismatch(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc&code=x", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "def"})
	rec := httptest.NewRecorder()
	f.root.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
