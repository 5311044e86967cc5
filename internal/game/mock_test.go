package game

import (
	"context"
	"encoding/json"
	"sync"
)

// mockSender records every update delivered to it.
type mockSender struct {
	mu        sync.Mutex
	broadcast []Update
	direct    map[string][]Update
}

func newMockSender() *mockSender {
	return &mockSender{direct: make(map[string][]Update)}
}

func (m *mockSender) Broadcast(update Update) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcast = append(m.broadcast, update)
}

func (m *mockSender) SendTo(playerID string, update Update) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.direct[playerID] = append(m.direct[playerID], update)
}

func (m *mockSender) broadcasts() []Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Update, len(m.broadcast))
	copy(out, m.broadcast)
	return out
}

func (m *mockSender) sentTo(playerID string) []Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Update, len(m.direct[playerID]))
	copy(out, m.direct[playerID])
	return out
}

// mockCache records the mirrored planning state.
type mockCache struct {
	mu      sync.Mutex
	actions map[string]json.RawMessage
	cleared [][]string
}

func newMockCache() *mockCache {
	return &mockCache{actions: make(map[string]json.RawMessage)}
}

func (m *mockCache) SetGameStatus(context.Context, string, json.RawMessage) error { return nil }

func (m *mockCache) GetGameStatus(context.Context, string) (json.RawMessage, error) {
	return nil, nil
}

func (m *mockCache) SetPlayerActions(_ context.Context, _ string, playerID string, actions json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[playerID] = actions
	return nil
}

func (m *mockCache) ClearTurnData(_ context.Context, _ string, playerIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, playerIDs)
	for _, id := range playerIDs {
		delete(m.actions, id)
	}
	return nil
}

func (m *mockCache) DeleteGameData(context.Context, string, []string) error { return nil }

func (m *mockCache) actionsFor(playerID string) json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actions[playerID]
}

func (m *mockCache) clearedCalls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.cleared...)
}
