package game

import (
	"encoding/json"

	"github.com/Lorenzo-Gardini/hex-core/pkg/hexgame"
)

// Update types sent to players over the session.
const (
	UpdateTypeGameStatus               = "game_status_update"
	UpdateTypeGameEvent                = "game_event_update"
	UpdateTypeGameOver                 = "game_over_update"
	UpdateTypePlanningPhaseTime        = "planning_phase_time_update"
	UpdateTypeRemainingActionPoints    = "remaining_action_points_update"
	UpdateTypeApprovedAction           = "approved_action_update"
	UpdateTypeInsufficientActionPoints = "insufficient_action_points_update"
	UpdateTypeIllegalAction            = "illegal_action_update"
)

// Update is a message from the match to one or all of its players.
type Update interface {
	UpdateType() string
}

// GameStatusUpdate broadcasts the full snapshot at the start of each turn.
type GameStatusUpdate struct {
	Status hexgame.GameStatus `json:"game_status"`
}

func (GameStatusUpdate) UpdateType() string { return UpdateTypeGameStatus }

func (u GameStatusUpdate) MarshalJSON() ([]byte, error) {
	type alias GameStatusUpdate
	return json.Marshal(struct {
		UpdateType string `json:"update_type"`
		alias
	}{UpdateTypeGameStatus, alias(u)})
}

// GameEventUpdate broadcasts one resolution event.
type GameEventUpdate struct {
	Event hexgame.Event `json:"event"`
}

func (GameEventUpdate) UpdateType() string { return UpdateTypeGameEvent }

func (u GameEventUpdate) MarshalJSON() ([]byte, error) {
	type alias GameEventUpdate
	return json.Marshal(struct {
		UpdateType string `json:"update_type"`
		alias
	}{UpdateTypeGameEvent, alias(u)})
}

// GameOverUpdate broadcasts the terminal snapshot, winner included.
type GameOverUpdate struct {
	Status hexgame.GameStatus `json:"game_status"`
}

func (GameOverUpdate) UpdateType() string { return UpdateTypeGameOver }

func (u GameOverUpdate) MarshalJSON() ([]byte, error) {
	type alias GameOverUpdate
	return json.Marshal(struct {
		UpdateType string `json:"update_type"`
		alias
	}{UpdateTypeGameOver, alias(u)})
}

// PlanningPhaseTimeUpdate broadcasts the seconds left in the planning phase.
type PlanningPhaseTimeUpdate struct {
	RemainingSeconds float64 `json:"remaining_seconds"`
}

func (PlanningPhaseTimeUpdate) UpdateType() string { return UpdateTypePlanningPhaseTime }

func (u PlanningPhaseTimeUpdate) MarshalJSON() ([]byte, error) {
	type alias PlanningPhaseTimeUpdate
	return json.Marshal(struct {
		UpdateType string `json:"update_type"`
		alias
	}{UpdateTypePlanningPhaseTime, alias(u)})
}

// RemainingActionPointsUpdate tells one player their budget after a change.
type RemainingActionPointsUpdate struct {
	RemainingActionPoints int `json:"remaining_action_points"`
}

func (RemainingActionPointsUpdate) UpdateType() string { return UpdateTypeRemainingActionPoints }

func (u RemainingActionPointsUpdate) MarshalJSON() ([]byte, error) {
	type alias RemainingActionPointsUpdate
	return json.Marshal(struct {
		UpdateType string `json:"update_type"`
		alias
	}{UpdateTypeRemainingActionPoints, alias(u)})
}

// ApprovedActionUpdate acknowledges a planned action to its submitter.
type ApprovedActionUpdate struct {
	Action hexgame.Action `json:"game_action"`
}

func (ApprovedActionUpdate) UpdateType() string { return UpdateTypeApprovedAction }

func (u ApprovedActionUpdate) MarshalJSON() ([]byte, error) {
	type alias ApprovedActionUpdate
	return json.Marshal(struct {
		UpdateType string `json:"update_type"`
		alias
	}{UpdateTypeApprovedAction, alias(u)})
}

// InsufficientActionPointsUpdate rejects an action the player cannot afford.
type InsufficientActionPointsUpdate struct {
	Action                hexgame.Action `json:"game_action"`
	RemainingActionPoints int            `json:"remaining_action_points"`
}

func (InsufficientActionPointsUpdate) UpdateType() string {
	return UpdateTypeInsufficientActionPoints
}

func (u InsufficientActionPointsUpdate) MarshalJSON() ([]byte, error) {
	type alias InsufficientActionPointsUpdate
	return json.Marshal(struct {
		UpdateType string `json:"update_type"`
		alias
	}{UpdateTypeInsufficientActionPoints, alias(u)})
}

// IllegalActionUpdate rejects an action that failed validation.
type IllegalActionUpdate struct {
	Action hexgame.Action `json:"game_action"`
}

func (IllegalActionUpdate) UpdateType() string { return UpdateTypeIllegalAction }

func (u IllegalActionUpdate) MarshalJSON() ([]byte, error) {
	type alias IllegalActionUpdate
	return json.Marshal(struct {
		UpdateType string `json:"update_type"`
		alias
	}{UpdateTypeIllegalAction, alias(u)})
}
