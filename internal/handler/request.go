package handler

import (
	"encoding/json"
	"fmt"

	"github.com/Lorenzo-Gardini/hex-core/internal/game"
	"github.com/Lorenzo-Gardini/hex-core/pkg/hexgame"
)

// Client message types.
const (
	actionTypeMarch = "march_troop_action"
	actionTypeSpawn = "spawn_troop_action"
	actionTypeClear = "clear_actions_request"
)

// inboundFrame is the wire shape of every client message. Pointer fields
// distinguish absent coordinates from the origin.
type inboundFrame struct {
	ActionType             string            `json:"action_type"`
	StartingCoordinates    *hexgame.HexCoord `json:"starting_coordinates"`
	DestinationCoordinates *hexgame.HexCoord `json:"destination_coordinates"`
	Coordinates            *hexgame.HexCoord `json:"coordinates"`
	Troop                  *hexgame.Troop    `json:"troop"`
}

// ParsePlayerRequest decodes one client frame into a request attributed to
// the player. Action costs are left zero; the controller assigns them.
func ParsePlayerRequest(player hexgame.Player, data []byte) (game.PlayerRequest, error) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return game.PlayerRequest{}, fmt.Errorf("malformed message: %w", err)
	}

	switch frame.ActionType {
	case actionTypeMarch:
		if frame.StartingCoordinates == nil || frame.DestinationCoordinates == nil {
			return game.PlayerRequest{}, fmt.Errorf("march action missing coordinates")
		}
		return game.PlayerRequest{
			Player: player,
			Action: hexgame.MarchAction{
				From: *frame.StartingCoordinates,
				To:   *frame.DestinationCoordinates,
			},
		}, nil

	case actionTypeSpawn:
		if frame.Coordinates == nil || frame.Troop == nil {
			return game.PlayerRequest{}, fmt.Errorf("spawn action missing coordinates or troop")
		}
		return game.PlayerRequest{
			Player: player,
			Action: hexgame.SpawnAction{
				At:    *frame.Coordinates,
				Troop: *frame.Troop,
			},
		}, nil

	case actionTypeClear:
		return game.PlayerRequest{Player: player, Clear: true}, nil

	case "":
		return game.PlayerRequest{}, fmt.Errorf("missing action_type")

	default:
		return game.PlayerRequest{}, fmt.Errorf("unknown action_type %q", frame.ActionType)
	}
}
