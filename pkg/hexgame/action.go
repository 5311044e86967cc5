package hexgame

import "encoding/json"

// Wire discriminators for the action union.
const (
	ActionTypeMarch = "march_troop_action"
	ActionTypeSpawn = "spawn_troop_action"
)

// Action is a planning-phase order submitted by a player. Costs are
// assigned server-side from configuration, never read from the wire.
type Action interface {
	Cost() int
	ActionType() string
}

// MarchAction moves the troop at From onto To, resolving combat when the
// destination is occupied.
type MarchAction struct {
	From   HexCoord `json:"starting_coordinates"`
	To     HexCoord `json:"destination_coordinates"`
	Points int      `json:"-"`
}

func (a MarchAction) Cost() int          { return a.Points }
func (a MarchAction) ActionType() string { return ActionTypeMarch }

func (a MarchAction) MarshalJSON() ([]byte, error) {
	type alias MarchAction
	return json.Marshal(struct {
		ActionType string `json:"action_type"`
		alias
	}{ActionTypeMarch, alias(a)})
}

// SpawnAction places a fresh troop next to the player's home base.
type SpawnAction struct {
	At     HexCoord `json:"coordinates"`
	Troop  Troop    `json:"troop"`
	Points int      `json:"-"`
}

func (a SpawnAction) Cost() int          { return a.Points }
func (a SpawnAction) ActionType() string { return ActionTypeSpawn }

func (a SpawnAction) MarshalJSON() ([]byte, error) {
	type alias SpawnAction
	return json.Marshal(struct {
		ActionType string `json:"action_type"`
		alias
	}{ActionTypeSpawn, alias(a)})
}

// RemainingPoints returns the action points left from the budget after
// paying for the given actions. A negative result means the latest action
// is unaffordable.
func RemainingPoints(budget int, actions []Action) int {
	remaining := budget
	for _, a := range actions {
		remaining -= a.Cost()
	}
	return remaining
}
