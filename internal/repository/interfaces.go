// Package repository defines the storage interfaces of the server. Matches
// live in memory; Redis only mirrors them so operators can inspect running
// games and a restarted process can report what was in flight.
package repository

import (
	"context"
	"encoding/json"
)

// GameCache defines live game state operations (Redis).
type GameCache interface {
	// SetGameStatus stores the latest snapshot of a match.
	SetGameStatus(ctx context.Context, gameID string, status json.RawMessage) error
	// GetGameStatus retrieves the latest snapshot, or nil when absent.
	GetGameStatus(ctx context.Context, gameID string) (json.RawMessage, error)
	// SetPlayerActions stores a player's planned actions for the turn.
	SetPlayerActions(ctx context.Context, gameID, playerID string, actions json.RawMessage) error
	// ClearTurnData removes every player's planned actions after resolution.
	ClearTurnData(ctx context.Context, gameID string, playerIDs []string) error
	// DeleteGameData removes all data for a finished match.
	DeleteGameData(ctx context.Context, gameID string, playerIDs []string) error
}

// NoopCache is a GameCache that stores nothing, used when Redis is not
// configured.
type NoopCache struct{}

func (NoopCache) SetGameStatus(context.Context, string, json.RawMessage) error { return nil }
func (NoopCache) GetGameStatus(context.Context, string) (json.RawMessage, error) {
	return nil, nil
}
func (NoopCache) SetPlayerActions(context.Context, string, string, json.RawMessage) error {
	return nil
}
func (NoopCache) ClearTurnData(context.Context, string, []string) error  { return nil }
func (NoopCache) DeleteGameData(context.Context, string, []string) error { return nil }
