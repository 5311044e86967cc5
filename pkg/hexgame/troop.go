package hexgame

import (
	"encoding/json"
	"fmt"
)

// TroopKind is the shape of a troop. The three playable kinds form a
// dominance cycle; the home base is a special immovable kind whose capture
// eliminates its owner.
type TroopKind int

const (
	Triangle TroopKind = iota
	Square
	Pentagon
	HomeBase
)

func (k TroopKind) String() string {
	switch k {
	case Triangle:
		return "triangle_troop"
	case Square:
		return "square_troop"
	case Pentagon:
		return "pentagon_troop"
	case HomeBase:
		return "home_base_troop"
	default:
		return "unknown"
	}
}

// ParseTroopKind converts a wire name back to a TroopKind.
func ParseTroopKind(s string) (TroopKind, error) {
	switch s {
	case "triangle_troop":
		return Triangle, nil
	case "square_troop":
		return Square, nil
	case "pentagon_troop":
		return Pentagon, nil
	case "home_base_troop":
		return HomeBase, nil
	default:
		return 0, fmt.Errorf("unknown troop kind %q", s)
	}
}

// Playable reports whether the kind may be spawned and marched.
func (k TroopKind) Playable() bool {
	return k == Triangle || k == Square || k == Pentagon
}

// dominance[a][b] is true when a playable attacker of kind a defeats a
// defender of kind b. Equal kinds tie, so the diagonal stays false.
var dominance = [3][3]bool{
	Triangle: {Pentagon: true},
	Square:   {Triangle: true},
	Pentagon: {Square: true},
}

// Beats reports whether an attacker of kind a defeats a defender of kind b.
// The home base loses every comparison and wins none.
func Beats(a, b TroopKind) bool {
	if a == HomeBase {
		return false
	}
	if b == HomeBase {
		return true
	}
	return dominance[a][b]
}

// Troop is a single piece on the board.
type Troop struct {
	Kind  TroopKind
	Owner Player
}

type troopJSON struct {
	TroopType string `json:"troop_type"`
	Owner     Player `json:"owner"`
}

func (t Troop) MarshalJSON() ([]byte, error) {
	return json.Marshal(troopJSON{TroopType: t.Kind.String(), Owner: t.Owner})
}

func (t *Troop) UnmarshalJSON(data []byte) error {
	var raw troopJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, err := ParseTroopKind(raw.TroopType)
	if err != nil {
		return err
	}
	t.Kind = kind
	t.Owner = raw.Owner
	return nil
}
