package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/brass-engine/internal/bot"
	"github.com/freeeve/brass-engine/internal/logger"
	"github.com/freeeve/brass-engine/internal/model"
	"github.com/freeeve/brass-engine/internal/repository"
	"github.com/freeeve/brass-engine/pkg/brass"
)

var (
	ErrNotYourTurn = errors.New("it is not your turn")
	ErrNoSnapshot  = errors.New("game has no stored position")
)

// maxBotActions bounds one RunBots call so a misbehaving strategy cannot
// spin forever.
const maxBotActions = 500

// PlayService applies engine events to hosted games. Every accepted event
// is appended to the game's history with the snapshot it produced, cached
// in Redis, broadcast to connected clients and published for other
// subscribers.
type PlayService struct {
	data        *brass.GameData
	gameRepo    repository.GameRepository
	eventRepo   repository.EventRepository
	cache       repository.GameCache
	broadcaster Broadcaster
	strategy    bot.Strategy
	logSize     int

	// gameLocks serializes event application per game. Seq numbers are
	// assigned from the loaded position, so two writers must not interleave.
	gameLocks sync.Map
	// logs holds the recent game log of each game this process has served.
	logs sync.Map
}

// NewPlayService creates a PlayService.
func NewPlayService(
	data *brass.GameData,
	gameRepo repository.GameRepository,
	eventRepo repository.EventRepository,
	cache repository.GameCache,
	broadcaster Broadcaster,
) *PlayService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &PlayService{
		data:        data,
		gameRepo:    gameRepo,
		eventRepo:   eventRepo,
		cache:       cache,
		broadcaster: broadcaster,
		strategy:    bot.RandomStrategy{},
		logSize:     brass.DefaultLogSize,
	}
}

// SetBotStrategy replaces the strategy bots play with.
func (s *PlayService) SetBotStrategy(st bot.Strategy) {
	s.strategy = st
}

// SetLogSize sets how many game log entries are kept per game.
func (s *PlayService) SetLogSize(n int) {
	if n > 0 {
		s.logSize = n
	}
}

func (s *PlayService) lock(gameID string) func() {
	v, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *PlayService) gameLog(gameID string) *brass.RingLog {
	v, _ := s.logs.LoadOrStore(gameID, brass.NewRingLog(s.logSize))
	return v.(*brass.RingLog)
}

func (s *PlayService) sink(gameID string) brass.LogSink {
	return brass.MultiSink{s.gameLog(gameID), logger.NewEngineSink(gameID)}
}

// cachedPosition is the Redis form of a game's latest position.
type cachedPosition struct {
	Seq      int             `json:"seq"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// Start deals the opening position of a seated game and marks it active.
func (s *PlayService) Start(ctx context.Context, game *model.Game) error {
	unlock := s.lock(game.ID)
	defer unlock()

	seed := rand.Int63()
	e := brass.NewEngine(s.data, brass.WithSeed(seed), brass.WithLogSink(s.sink(game.ID)))

	setup := make([]brass.PlayerSetup, len(game.Players))
	for i, p := range game.Players {
		setup[i] = brass.PlayerSetup{ID: p.UserID, Name: p.DisplayName, Color: p.Color}
	}
	ev := brass.StartGame(setup...)
	ev.Seed = seed
	if err := e.Send(ev); err != nil {
		return fmt.Errorf("deal game: %w", err)
	}
	if err := s.record(ctx, game.ID, game.CreatorID, 0, ev, e); err != nil {
		return err
	}
	if err := s.gameRepo.SetActive(ctx, game.ID, seed); err != nil {
		return err
	}

	log.Info().Str("gameId", game.ID).Int64("seed", seed).Int("players", len(setup)).Msg("Game started")
	s.broadcaster.BroadcastGameEvent(game.ID, EventGameStarted, map[string]any{
		"current_player": e.CurrentPlayer(),
	})
	return nil
}

// LoadEngine rebuilds a game's engine from the cached position, falling
// back to the latest snapshot in Postgres. It returns the engine and the
// sequence number of the event that produced it.
func (s *PlayService) LoadEngine(ctx context.Context, gameID string) (*brass.Engine, int, error) {
	if raw, err := s.cache.GetSnapshot(ctx, gameID); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Snapshot cache unavailable")
	} else if raw != nil {
		var pos cachedPosition
		if err := json.Unmarshal(raw, &pos); err == nil {
			if e, err := brass.RestoreJSON(s.data, pos.Snapshot, brass.WithLogSink(s.sink(gameID))); err == nil {
				return e, pos.Seq, nil
			}
		}
		log.Warn().Str("gameId", gameID).Msg("Discarding unreadable cached snapshot")
	}

	snap, seq, err := s.eventRepo.LatestSnapshot(ctx, gameID)
	if err != nil {
		return nil, 0, err
	}
	if snap == nil {
		return nil, 0, ErrNoSnapshot
	}
	e, err := brass.RestoreJSON(s.data, snap, brass.WithLogSink(s.sink(gameID)))
	if err != nil {
		return nil, 0, fmt.Errorf("restore game %s: %w", gameID, err)
	}
	s.cachePosition(ctx, gameID, seq, snap)
	return e, seq, nil
}

// ApplyEvent applies one event on behalf of userID, who must be the player
// to act. Engine refusals are returned unchanged so callers can match
// brass.ErrInvalidEvent and brass.ErrRuleViolation.
func (s *PlayService) ApplyEvent(ctx context.Context, gameID, userID string, ev brass.Event) (*GameView, error) {
	unlock := s.lock(gameID)
	defer unlock()

	e, seq, err := s.activeEngine(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if e.CurrentPlayer() != userID {
		if e.State().Player(userID) == nil {
			return nil, ErrNotInGame
		}
		return nil, ErrNotYourTurn
	}
	if err := s.apply(ctx, gameID, userID, seq+1, ev, e); err != nil {
		return nil, err
	}
	return s.view(gameID, userID, seq+1, e), nil
}

// RunBots plays every consecutive bot turn until a human is to act or the
// game ends. It returns the number of events applied.
func (s *PlayService) RunBots(ctx context.Context, gameID string) (int, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if game == nil {
		return 0, ErrGameNotFound
	}
	bots := make(map[string]bool)
	for _, p := range game.Players {
		if p.IsBot {
			bots[p.UserID] = true
		}
	}

	applied := 0
	for actions := 0; actions < maxBotActions; actions++ {
		n, done, err := s.botAction(ctx, gameID, bots)
		applied += n
		if err != nil || done {
			return applied, err
		}
	}
	log.Warn().Str("gameId", gameID).Int("events", applied).Msg("Bot action limit reached")
	return applied, nil
}

func (s *PlayService) botAction(ctx context.Context, gameID string, bots map[string]bool) (int, bool, error) {
	unlock := s.lock(gameID)
	defer unlock()

	e, seq, err := s.activeEngine(ctx, gameID)
	if errors.Is(err, ErrGameNotActive) {
		return 0, true, nil
	}
	if err != nil {
		return 0, true, err
	}
	playerID := e.CurrentPlayer()
	if !bots[playerID] {
		return 0, true, nil
	}
	script := bot.NextScript(e, s.strategy)
	if script == nil {
		return 0, true, fmt.Errorf("bot %s has no action at %s", playerID, e.Path())
	}
	for i, ev := range script {
		if err := s.apply(ctx, gameID, playerID, seq+1+i, ev, e); err != nil {
			return i, true, fmt.Errorf("bot %s: %w", playerID, err)
		}
	}
	log.Debug().Str("gameId", gameID).Str("player", playerID).Str("action", string(script.Action())).Msg("Bot acted")
	return len(script), e.IsGameOver(), nil
}

func (s *PlayService) activeEngine(ctx context.Context, gameID string) (*brass.Engine, int, error) {
	e, seq, err := s.LoadEngine(ctx, gameID)
	if errors.Is(err, ErrNoSnapshot) {
		return nil, 0, ErrGameNotActive
	}
	if err != nil {
		return nil, 0, err
	}
	if e.IsGameOver() {
		return nil, 0, ErrGameNotActive
	}
	return e, seq, nil
}

// apply sends ev to e and, if accepted, records it as event seq.
func (s *PlayService) apply(ctx context.Context, gameID, userID string, seq int, ev brass.Event, e *brass.Engine) error {
	if err := e.Send(ev); err != nil {
		return err
	}
	if err := s.record(ctx, gameID, userID, seq, ev, e); err != nil {
		return err
	}

	s.broadcaster.BroadcastGameEvent(gameID, EventGameEvent, map[string]any{
		"seq":            seq,
		"event":          ev,
		"state":          e.Path(),
		"current_player": e.CurrentPlayer(),
	})
	if e.IsGameOver() {
		return s.finish(ctx, gameID, e)
	}
	return nil
}

func (s *PlayService) record(ctx context.Context, gameID, userID string, seq int, ev brass.Event, e *brass.Engine) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	snap, err := e.MarshalSnapshot()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	rec := &model.EventRecord{
		GameID:    gameID,
		Seq:       seq,
		UserID:    userID,
		EventType: string(ev.Type),
		Payload:   payload,
		StatePath: string(e.Path()),
	}
	if err := s.eventRepo.Append(ctx, rec, snap); err != nil {
		return err
	}
	s.cachePosition(ctx, gameID, seq, snap)

	public, err := publicPayload(ev)
	if err == nil {
		err = s.cache.PublishEvent(ctx, gameID, public)
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to publish event")
	}
	return nil
}

func (s *PlayService) cachePosition(ctx context.Context, gameID string, seq int, snap []byte) {
	raw, err := json.Marshal(cachedPosition{Seq: seq, Snapshot: snap})
	if err == nil {
		err = s.cache.SetSnapshot(ctx, gameID, raw)
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to cache snapshot")
	}
}

func (s *PlayService) finish(ctx context.Context, gameID string, e *brass.Engine) error {
	result := e.State().Result
	winner := ""
	if result != nil && !result.Draw {
		winner = result.Winner
	}
	if err := s.gameRepo.SetFinished(ctx, gameID, winner); err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	if err := s.cache.DeleteGameData(ctx, gameID); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to drop cached snapshot")
	}
	log.Info().Str("gameId", gameID).Str("winner", winner).Msg("Game finished")
	s.broadcaster.BroadcastGameEvent(gameID, EventGameEnded, map[string]any{
		"result": result,
	})
	return nil
}

// History returns the accepted events of a game in order, without the
// deal seed.
func (s *PlayService) History(ctx context.Context, gameID string) ([]model.EventRecord, error) {
	events, err := s.eventRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for i := range events {
		hideSeed(&events[i])
	}
	return events, nil
}

// View returns the current position of a game as seen by userID.
func (s *PlayService) View(ctx context.Context, gameID, userID string) (*GameView, error) {
	e, seq, err := s.LoadEngine(ctx, gameID)
	if errors.Is(err, ErrNoSnapshot) {
		return nil, ErrGameNotActive
	}
	if err != nil {
		return nil, err
	}
	return s.view(gameID, userID, seq, e), nil
}
