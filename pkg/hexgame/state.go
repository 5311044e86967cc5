package hexgame

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// PlayerOrder is the turn order of the remaining players. Values are
// immutable: Remove and Rotate return new orders.
type PlayerOrder struct {
	players []Player
}

// NewPlayerOrder builds an order from the given players, dropping
// duplicate IDs while preserving first occurrence.
func NewPlayerOrder(players []Player) PlayerOrder {
	seen := make(map[string]bool, len(players))
	kept := make([]Player, 0, len(players))
	for _, p := range players {
		if !seen[p.ID] {
			seen[p.ID] = true
			kept = append(kept, p)
		}
	}
	return PlayerOrder{players: kept}
}

// Players returns a copy of the order.
func (o PlayerOrder) Players() []Player {
	out := make([]Player, len(o.players))
	copy(out, o.players)
	return out
}

// Len returns the number of players in the order.
func (o PlayerOrder) Len() int { return len(o.players) }

// IndexOf returns the player's position, or -1 when absent.
func (o PlayerOrder) IndexOf(playerID string) int {
	for i, p := range o.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Remove returns an order without the given player.
func (o PlayerOrder) Remove(playerID string) PlayerOrder {
	kept := make([]Player, 0, len(o.players))
	for _, p := range o.players {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	return PlayerOrder{players: kept}
}

// Rotate returns an order with the first player moved to the back.
func (o PlayerOrder) Rotate() PlayerOrder {
	if len(o.players) < 2 {
		return PlayerOrder{players: o.Players()}
	}
	rotated := make([]Player, 0, len(o.players))
	rotated = append(rotated, o.players[1:]...)
	rotated = append(rotated, o.players[0])
	return PlayerOrder{players: rotated}
}

func (o PlayerOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.players)
}

func (o *PlayerOrder) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &o.players)
}

// CoreControlScore counts how many consecutive turn-ends one troop has
// held the core tile. The zero value means nobody holds the core.
type CoreControlScore struct {
	Troop     *Troop `json:"troop"`
	TurnsHeld int    `json:"turns_held"`
}

// ScoreFor folds the current core occupant into the score. The counter
// only grows while the same owner keeps the same kind on the core; any
// other occupant restarts it at one.
func (s CoreControlScore) ScoreFor(t Troop) CoreControlScore {
	if s.Troop != nil && s.Troop.Kind == t.Kind && s.Troop.Owner.ID == t.Owner.ID {
		return CoreControlScore{Troop: s.Troop, TurnsHeld: s.TurnsHeld + 1}
	}
	return CoreControlScore{Troop: &t, TurnsHeld: 1}
}

// GameStatus is a complete snapshot of a match at a turn boundary. Each
// transition produces a new value; a non-nil Winner is terminal.
type GameStatus struct {
	TurnNumber   int              `json:"turn_number"`
	Order        PlayerOrder      `json:"player_order"`
	Board        Board            `json:"board"`
	ControlScore CoreControlScore `json:"control_score"`
	Winner       *Player          `json:"winner"`
}

// NewGameStatus sets up the starting snapshot for a match: player order
// shuffled with the given seed, home bases spread around the map boundary
// and the core tile chosen. Deterministic for identical inputs.
func NewGameStatus(players []Player, tiles []HexCoord, seed int64) (GameStatus, error) {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return GameStatus{}, fmt.Errorf("number of players not supported: %d", len(players))
	}
	if len(tiles) < len(players)+1 {
		return GameStatus{}, fmt.Errorf("map too small: %d tiles for %d players", len(tiles), len(players))
	}

	order := make([]Player, len(players))
	copy(order, players)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	bases := homeBaseCoords(tiles, len(order))
	board := NewBoard(tiles, coreCoord(tiles, bases))
	for i, p := range order {
		board = board.Place(bases[i], Troop{Kind: HomeBase, Owner: p})
	}

	return GameStatus{
		Order: NewPlayerOrder(order),
		Board: board,
	}, nil
}
