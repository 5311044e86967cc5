package hexgame

import (
	"encoding/json"
	"sort"
)

// Board maps every coordinate of the playing field to its occupant.
// A Board value is an immutable snapshot: mutating operations return a new
// Board and leave the receiver untouched. The coordinate domain is fixed at
// construction and preserved across every operation.
type Board struct {
	tiles map[HexCoord]*Troop // key present = tile exists, nil value = empty
	core  HexCoord
}

// NewBoard builds an empty board over the given coordinates with the given
// core tile. The core must be one of the coordinates.
func NewBoard(coords []HexCoord, core HexCoord) Board {
	tiles := make(map[HexCoord]*Troop, len(coords))
	for _, c := range coords {
		tiles[c] = nil
	}
	return Board{tiles: tiles, core: core}
}

// Core returns the distinguished core coordinate.
func (b Board) Core() HexCoord { return b.core }

// Size returns the number of tiles on the board.
func (b Board) Size() int { return len(b.tiles) }

// Contains reports whether the coordinate is part of the board.
func (b Board) Contains(c HexCoord) bool {
	_, ok := b.tiles[c]
	return ok
}

// At returns the troop at the coordinate, or nil when the tile is empty or
// outside the board.
func (b Board) At(c HexCoord) *Troop {
	return b.tiles[c]
}

// Place returns a board with the troop set at the coordinate.
func (b Board) Place(c HexCoord, t Troop) Board {
	next := b.clone()
	next.tiles[c] = &t
	return next
}

// MoveTroop returns a board with the troop at from moved to to. The source
// is cleared and the destination overwritten.
func (b Board) MoveTroop(from, to HexCoord) Board {
	next := b.clone()
	next.tiles[to] = next.tiles[from]
	next.tiles[from] = nil
	return next
}

// RemoveAt returns a board with the tile at the coordinate cleared.
func (b Board) RemoveAt(c HexCoord) Board {
	next := b.clone()
	next.tiles[c] = nil
	return next
}

// RemoveAllOwnedBy returns a board with every troop of the player removed.
func (b Board) RemoveAllOwnedBy(playerID string) Board {
	next := b.clone()
	for c, t := range next.tiles {
		if t != nil && t.Owner.ID == playerID {
			next.tiles[c] = nil
		}
	}
	return next
}

// HomeBaseOf returns the coordinate of the player's home base, if any.
func (b Board) HomeBaseOf(playerID string) (HexCoord, bool) {
	for c, t := range b.tiles {
		if t != nil && t.Kind == HomeBase && t.Owner.ID == playerID {
			return c, true
		}
	}
	return HexCoord{}, false
}

// TroopCounts returns the number of playable troops on the board per owner.
func (b Board) TroopCounts() map[string]int {
	counts := make(map[string]int)
	for _, t := range b.tiles {
		if t != nil && t.Kind.Playable() {
			counts[t.Owner.ID]++
		}
	}
	return counts
}

// Coordinates returns the board domain in a stable (q, r) order.
func (b Board) Coordinates() []HexCoord {
	coords := make([]HexCoord, 0, len(b.tiles))
	for c := range b.tiles {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Q != coords[j].Q {
			return coords[i].Q < coords[j].Q
		}
		return coords[i].R < coords[j].R
	})
	return coords
}

// clone copies the tile map. Troop pointers are shared; troops are never
// mutated in place.
func (b Board) clone() Board {
	tiles := make(map[HexCoord]*Troop, len(b.tiles))
	for c, t := range b.tiles {
		tiles[c] = t
	}
	return Board{tiles: tiles, core: b.core}
}

type boardTileJSON struct {
	Coordinates HexCoord `json:"coordinates"`
	Troop       *Troop   `json:"troop"`
}

type boardJSON struct {
	CoreCoordinates HexCoord        `json:"core_coordinates"`
	Tiles           []boardTileJSON `json:"tiles"`
}

func (b Board) MarshalJSON() ([]byte, error) {
	out := boardJSON{CoreCoordinates: b.core, Tiles: make([]boardTileJSON, 0, len(b.tiles))}
	for _, c := range b.Coordinates() {
		out.Tiles = append(out.Tiles, boardTileJSON{Coordinates: c, Troop: b.tiles[c]})
	}
	return json.Marshal(out)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var raw boardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tiles := make(map[HexCoord]*Troop, len(raw.Tiles))
	for _, tile := range raw.Tiles {
		tiles[tile.Coordinates] = tile.Troop
	}
	b.tiles = tiles
	b.core = raw.CoreCoordinates
	return nil
}
