package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/brass-engine/internal/model"
)

const gameColumns = `g.id, g.name, g.creator_id, g.status, g.winner, g.seats, g.seed, g.created_at, g.started_at, g.finished_at`

// GameRepo handles game and game_player database operations.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

func scanGame(row rowScanner) (*model.Game, error) {
	var g model.Game
	var winner sql.NullString
	err := row.Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &winner, &g.Seats, &g.Seed,
		&g.CreatedAt, &g.StartedAt, &g.FinishedAt)
	if err != nil {
		return nil, err
	}
	g.Winner = winner.String
	return &g, nil
}

// Create inserts a new game in waiting status.
func (r *GameRepo) Create(ctx context.Context, name, creatorID string, seats int) (*model.Game, error) {
	g, err := scanGame(r.db.QueryRowContext(ctx,
		`INSERT INTO games AS g (name, creator_id, seats) VALUES ($1, $2, $3)
		 RETURNING `+gameColumns,
		name, creatorID, seats,
	))
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return g, nil
}

// FindByID returns a game by ID with its players.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	g, err := scanGame(r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games g WHERE g.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	players, err := r.ListPlayers(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Players = players
	return g, nil
}

func (r *GameRepo) list(ctx context.Context, what, query string, args ...any) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// ListOpen returns games in "waiting" status.
func (r *GameRepo) ListOpen(ctx context.Context) ([]model.Game, error) {
	return r.list(ctx, "list open games",
		`SELECT `+gameColumns+` FROM games g WHERE g.status = 'waiting' ORDER BY g.created_at DESC LIMIT 50`)
}

// ListByUser returns all games a user is seated in or created.
func (r *GameRepo) ListByUser(ctx context.Context, userID string) ([]model.Game, error) {
	return r.list(ctx, "list user games",
		`SELECT DISTINCT `+gameColumns+`
		 FROM games g LEFT JOIN game_players gp ON g.id = gp.game_id AND gp.user_id = $1
		 WHERE gp.user_id = $1 OR g.creator_id = $1
		 ORDER BY g.created_at DESC LIMIT 50`, userID)
}

// JoinGame seats a human player in the next free seat.
func (r *GameRepo) JoinGame(ctx context.Context, gameID, userID, color string) error {
	return r.join(ctx, gameID, userID, color, false)
}

// JoinGameAsBot seats a bot player in the next free seat.
func (r *GameRepo) JoinGameAsBot(ctx context.Context, gameID, userID, color string) error {
	return r.join(ctx, gameID, userID, color, true)
}

func (r *GameRepo) join(ctx context.Context, gameID, userID, color string, bot bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_players (game_id, user_id, seat, color, is_bot)
		 SELECT $1, $2, COALESCE(MAX(seat) + 1, 0), $3, $4 FROM game_players WHERE game_id = $1
		 ON CONFLICT DO NOTHING`,
		gameID, userID, color, bot,
	)
	if err != nil {
		return fmt.Errorf("join game: %w", err)
	}
	return nil
}

// ReplaceBot hands the highest bot seat to a human, keeping its seat
// number and color.
func (r *GameRepo) ReplaceBot(ctx context.Context, gameID, newUserID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var botUserID string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM game_players WHERE game_id = $1 AND is_bot = true ORDER BY seat DESC LIMIT 1`,
		gameID,
	).Scan(&botUserID)
	if err != nil {
		return fmt.Errorf("find bot to replace: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE game_players SET user_id = $1, is_bot = false, joined_at = now()
		 WHERE game_id = $2 AND user_id = $3`,
		newUserID, gameID, botUserID,
	)
	if err != nil {
		return fmt.Errorf("replace bot: %w", err)
	}
	return tx.Commit()
}

// PlayerCount returns the number of seated players in a game.
func (r *GameRepo) PlayerCount(ctx context.Context, gameID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_players WHERE game_id = $1`, gameID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("player count: %w", err)
	}
	return count, nil
}

// ListPlayers returns all players in a game in seat order.
func (r *GameRepo) ListPlayers(ctx context.Context, gameID string) ([]model.GamePlayer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT gp.game_id, gp.user_id, u.display_name, gp.seat, gp.color, gp.is_bot, gp.joined_at
		 FROM game_players gp JOIN users u ON u.id = gp.user_id
		 WHERE gp.game_id = $1 ORDER BY gp.seat`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []model.GamePlayer
	for rows.Next() {
		var p model.GamePlayer
		if err := rows.Scan(&p.GameID, &p.UserID, &p.DisplayName, &p.Seat, &p.Color, &p.IsBot, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// SetActive marks a game as started with the seed its engine was dealt from.
func (r *GameRepo) SetActive(ctx context.Context, gameID string, seed int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'active', seed = $1, started_at = now() WHERE id = $2`,
		seed, gameID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return nil
}

// SetFinished marks a game as finished. An empty winner records a draw.
func (r *GameRepo) SetFinished(ctx context.Context, gameID, winner string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'finished', winner = NULLIF($1, ''), finished_at = now() WHERE id = $2`,
		winner, gameID,
	)
	if err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	return nil
}

// Delete removes a game and all associated data (cascades to players and events).
func (r *GameRepo) Delete(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}
