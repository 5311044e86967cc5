package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Key patterns for Redis game state.
func statusKey(gameID string) string            { return "game:" + gameID + ":status" }
func actionsKey(gameID, playerID string) string { return "game:" + gameID + ":actions:" + playerID }

// SetGameStatus stores the latest match snapshot JSON.
func (c *Client) SetGameStatus(ctx context.Context, gameID string, status json.RawMessage) error {
	return c.rdb.Set(ctx, statusKey(gameID), []byte(status), 0).Err()
}

// GetGameStatus retrieves the latest match snapshot JSON.
func (c *Client) GetGameStatus(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, statusKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game status: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetPlayerActions stores a player's planned actions for the current turn.
func (c *Client) SetPlayerActions(ctx context.Context, gameID, playerID string, actions json.RawMessage) error {
	return c.rdb.Set(ctx, actionsKey(gameID, playerID), []byte(actions), 0).Err()
}

// ClearTurnData removes all planned actions after a turn resolves.
func (c *Client) ClearTurnData(ctx context.Context, gameID string, playerIDs []string) error {
	keys := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		keys = append(keys, actionsKey(gameID, id))
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// DeleteGameData removes all Redis data for a game (on game end).
func (c *Client) DeleteGameData(ctx context.Context, gameID string, playerIDs []string) error {
	keys := []string{statusKey(gameID)}
	for _, id := range playerIDs {
		keys = append(keys, actionsKey(gameID, id))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
