package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/freeeve/brass-engine/internal/model"
)

// EventRepo handles the game_events table.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo creates an EventRepo.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Append stores an accepted event and the snapshot it produced. The
// record's Seq must be the next sequence number for the game; a unique
// constraint rejects concurrent writers racing for the same slot.
func (r *EventRepo) Append(ctx context.Context, rec *model.EventRecord, snapshot json.RawMessage) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	var userID sql.NullString
	if rec.UserID != "" {
		userID = sql.NullString{String: rec.UserID, Valid: true}
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO game_events (id, game_id, seq, user_id, event_type, payload, state_path, snapshot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		rec.ID, rec.GameID, rec.Seq, userID, rec.EventType, []byte(rec.Payload), rec.StatePath, []byte(snapshot),
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListByGame returns the event history of a game in sequence order.
func (r *EventRepo) ListByGame(ctx context.Context, gameID string) ([]model.EventRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, seq, user_id, event_type, payload, state_path, created_at
		 FROM game_events WHERE game_id = $1 ORDER BY seq`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.EventRecord
	for rows.Next() {
		var e model.EventRecord
		var userID sql.NullString
		var payload []byte
		if err := rows.Scan(&e.ID, &e.GameID, &e.Seq, &userID, &e.EventType, &payload, &e.StatePath, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.UserID = userID.String
		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}
	return events, rows.Err()
}

// LatestSnapshot returns the newest stored snapshot for a game and its
// sequence number. A game without events returns nil, -1.
func (r *EventRepo) LatestSnapshot(ctx context.Context, gameID string) (json.RawMessage, int, error) {
	var snap []byte
	var seq int
	err := r.db.QueryRowContext(ctx,
		`SELECT snapshot, seq FROM game_events WHERE game_id = $1 ORDER BY seq DESC LIMIT 1`, gameID,
	).Scan(&snap, &seq)
	if err == sql.ErrNoRows {
		return nil, -1, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("latest snapshot: %w", err)
	}
	return json.RawMessage(snap), seq, nil
}
