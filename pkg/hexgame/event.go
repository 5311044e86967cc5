package hexgame

import "encoding/json"

// Wire discriminators for the event union.
const (
	EventTypeTroopMoved    = "troop_moved_event"
	EventTypeAttackWon     = "attack_won_event"
	EventTypeAttackLost    = "attack_lost_event"
	EventTypeTroopSpawned  = "troop_spawned_event"
	EventTypePlayerRemoved = "player_removed_event"
	EventTypeNoChanges     = "no_changes_event"
)

// Event describes a single consequence of resolving one action. Events are
// emitted in issuance order and broadcast one by one so clients can animate.
type Event interface {
	EventType() string
}

// TroopMovedEvent reports a march onto an empty tile.
type TroopMovedEvent struct {
	Troop Troop    `json:"troop"`
	From  HexCoord `json:"from_coordinates"`
	To    HexCoord `json:"to_coordinates"`
}

func (TroopMovedEvent) EventType() string { return EventTypeTroopMoved }

func (e TroopMovedEvent) MarshalJSON() ([]byte, error) {
	type alias TroopMovedEvent
	return json.Marshal(struct {
		EventType string `json:"event_type"`
		alias
	}{EventTypeTroopMoved, alias(e)})
}

// AttackWonEvent reports a march that defeated the defending troop.
type AttackWonEvent struct {
	Attacker Troop    `json:"moving_troop"`
	Defender Troop    `json:"defending_troop"`
	From     HexCoord `json:"from_coordinates"`
	To       HexCoord `json:"to_coordinates"`
}

func (AttackWonEvent) EventType() string { return EventTypeAttackWon }

func (e AttackWonEvent) MarshalJSON() ([]byte, error) {
	type alias AttackWonEvent
	return json.Marshal(struct {
		EventType string `json:"event_type"`
		alias
	}{EventTypeAttackWon, alias(e)})
}

// AttackLostEvent reports a march that lost to the defending troop.
type AttackLostEvent struct {
	Attacker Troop    `json:"moving_troop"`
	Defender Troop    `json:"defending_troop"`
	From     HexCoord `json:"from_coordinates"`
	To       HexCoord `json:"to_coordinates"`
}

func (AttackLostEvent) EventType() string { return EventTypeAttackLost }

func (e AttackLostEvent) MarshalJSON() ([]byte, error) {
	type alias AttackLostEvent
	return json.Marshal(struct {
		EventType string `json:"event_type"`
		alias
	}{EventTypeAttackLost, alias(e)})
}

// TroopSpawnedEvent reports a new troop placed on the board.
type TroopSpawnedEvent struct {
	Troop Troop    `json:"troop"`
	At    HexCoord `json:"coordinates"`
}

func (TroopSpawnedEvent) EventType() string { return EventTypeTroopSpawned }

func (e TroopSpawnedEvent) MarshalJSON() ([]byte, error) {
	type alias TroopSpawnedEvent
	return json.Marshal(struct {
		EventType string `json:"event_type"`
		alias
	}{EventTypeTroopSpawned, alias(e)})
}

// PlayerRemovedEvent reports a player eliminated by the capture of their
// home base.
type PlayerRemovedEvent struct {
	Player Player `json:"player"`
}

func (PlayerRemovedEvent) EventType() string { return EventTypePlayerRemoved }

func (e PlayerRemovedEvent) MarshalJSON() ([]byte, error) {
	type alias PlayerRemovedEvent
	return json.Marshal(struct {
		EventType string `json:"event_type"`
		alias
	}{EventTypePlayerRemoved, alias(e)})
}

// NoChangesEvent reports an action that resolved to nothing: it failed
// revalidation against the evolving status, or tied an equal defender.
type NoChangesEvent struct {
	Player Player `json:"player"`
	Action Action `json:"game_action"`
}

func (NoChangesEvent) EventType() string { return EventTypeNoChanges }

func (e NoChangesEvent) MarshalJSON() ([]byte, error) {
	type alias NoChangesEvent
	return json.Marshal(struct {
		EventType string `json:"event_type"`
		alias
	}{EventTypeNoChanges, alias(e)})
}
