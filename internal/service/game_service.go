package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/freeeve/brass-engine/internal/model"
	"github.com/freeeve/brass-engine/internal/repository"
	"github.com/freeeve/brass-engine/pkg/brass"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameNotWaiting = errors.New("game is not in waiting status")
	ErrGameFull       = errors.New("game has no free seat")
	ErrNotEnough      = errors.New("every seat must be filled to start")
	ErrNotCreator     = errors.New("only the creator can do that")
	ErrGameNotActive  = errors.New("game is not active")
	ErrAlreadyJoined  = errors.New("already joined this game")
	ErrNotInGame      = errors.New("you are not in this game")
	ErrInvalidSeats   = fmt.Errorf("a game seats %d to %d players", brass.MinPlayers, brass.MaxPlayers)
)

// SeatColors are assigned to seats in order.
var SeatColors = []string{"red", "blue", "green", "yellow"}

// GameService handles the game lobby: creating, joining, starting and
// listing games.
type GameService struct {
	gameRepo repository.GameRepository
	userRepo repository.UserRepository
	play     *PlayService
}

// NewGameService creates a GameService. StartGame hands the seated game to
// play to deal the opening position.
func NewGameService(gameRepo repository.GameRepository, userRepo repository.UserRepository, play *PlayService) *GameService {
	return &GameService{gameRepo: gameRepo, userRepo: userRepo, play: play}
}

// CreateGame creates a new game in "waiting" status. The creator takes the
// first seat unless botOnly is set; every other seat is filled with a bot
// that humans replace when they join.
func (s *GameService) CreateGame(ctx context.Context, name, creatorID string, seats int, botOnly bool) (*model.Game, error) {
	if seats == 0 {
		seats = brass.MaxPlayers
	}
	if seats < brass.MinPlayers || seats > brass.MaxPlayers {
		return nil, ErrInvalidSeats
	}

	game, err := s.gameRepo.Create(ctx, name, creatorID, seats)
	if err != nil {
		return nil, err
	}

	seat := 0
	if !botOnly {
		if err := s.gameRepo.JoinGame(ctx, game.ID, creatorID, SeatColors[seat]); err != nil {
			return nil, err
		}
		seat++
	}
	for i := 1; seat < seats; i, seat = i+1, seat+1 {
		providerID := fmt.Sprintf("bot-%d", i)
		botUser, err := s.userRepo.Upsert(ctx, "bot", providerID, fmt.Sprintf("Bot %d", i), "")
		if err != nil {
			return nil, fmt.Errorf("create bot user %d: %w", i, err)
		}
		if err := s.gameRepo.JoinGameAsBot(ctx, game.ID, botUser.ID, SeatColors[seat]); err != nil {
			return nil, fmt.Errorf("join bot %d: %w", i, err)
		}
	}

	return s.gameRepo.FindByID(ctx, game.ID)
}

// JoinGame seats a player in a waiting game, replacing a bot.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID string) error {
	game, err := s.waitingGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.Seat(userID) != nil {
		return ErrAlreadyJoined
	}

	count, err := s.gameRepo.PlayerCount(ctx, gameID)
	if err != nil {
		return err
	}
	if count < game.Seats {
		return s.gameRepo.JoinGame(ctx, gameID, userID, SeatColors[count])
	}
	for _, p := range game.Players {
		if p.IsBot {
			return s.gameRepo.ReplaceBot(ctx, gameID, userID)
		}
	}
	return ErrGameFull
}

// StartGame deals the opening position. Only the creator may start, and
// only once every seat is filled.
func (s *GameService) StartGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.waitingGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if len(game.Players) != game.Seats {
		return nil, ErrNotEnough
	}
	if err := s.play.Start(ctx, game); err != nil {
		return nil, err
	}
	return s.gameRepo.FindByID(ctx, gameID)
}

func (s *GameService) waitingGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "waiting" {
		return nil, ErrGameNotWaiting
	}
	return game, nil
}

// GetGame returns a game by ID.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// DeleteGame removes a waiting game. Only the game creator can delete a game.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID string) error {
	game, err := s.waitingGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	return s.gameRepo.Delete(ctx, gameID)
}

// ListGames returns open games, or the user's games for filter "my".
func (s *GameService) ListGames(ctx context.Context, userID, filter string) ([]model.Game, error) {
	if filter == "my" {
		return s.gameRepo.ListByUser(ctx, userID)
	}
	return s.gameRepo.ListOpen(ctx)
}
