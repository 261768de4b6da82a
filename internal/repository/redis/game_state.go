package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotTTL bounds how long an idle game's snapshot stays hot. A miss
// falls back to the latest snapshot in Postgres.
const snapshotTTL = 6 * time.Hour

func snapshotKey(gameID string) string { return "game:" + gameID + ":snapshot" }

// EventsChannel is the pub/sub channel carrying accepted events of a game.
func EventsChannel(gameID string) string { return "game:" + gameID + ":events" }

// SetSnapshot stores the live engine snapshot JSON.
func (c *Client) SetSnapshot(ctx context.Context, gameID string, snapshot json.RawMessage) error {
	return c.rdb.Set(ctx, snapshotKey(gameID), []byte(snapshot), snapshotTTL).Err()
}

// GetSnapshot retrieves the live engine snapshot, or nil when not cached.
func (c *Client) GetSnapshot(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return json.RawMessage(data), nil
}

// PublishEvent fans an accepted event out to every subscriber of the game.
func (c *Client) PublishEvent(ctx context.Context, gameID string, payload json.RawMessage) error {
	if err := c.rdb.Publish(ctx, EventsChannel(gameID), []byte(payload)).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// SubscribeEvents listens to a game's event channel. The caller closes the
// returned PubSub.
func (c *Client) SubscribeEvents(ctx context.Context, gameID string) *redis.PubSub {
	return c.rdb.Subscribe(ctx, EventsChannel(gameID))
}

// DeleteGameData removes all Redis data for a game (on game end).
func (c *Client) DeleteGameData(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, snapshotKey(gameID)).Err()
}
