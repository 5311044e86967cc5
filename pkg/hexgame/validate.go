package hexgame

// Validator decides whether a player may perform an action on a status.
type Validator func(player Player, action Action, status GameStatus) bool

// ValidAction reports whether the player may perform the action on the
// given status. Pure; never mutates its inputs.
//
// A march may target a tile the player already occupies: friendly fire is
// legal and an equal-versus-equal comparison resolves to no change.
func ValidAction(player Player, action Action, status GameStatus) bool {
	board := status.Board
	switch a := action.(type) {
	case MarchAction:
		if !board.Contains(a.From) || !board.Contains(a.To) {
			return false
		}
		troop := board.At(a.From)
		return troop != nil && troop.Owner.ID == player.ID && troop.Kind.Playable()

	case SpawnAction:
		if !board.Contains(a.At) || board.At(a.At) != nil || !a.Troop.Kind.Playable() {
			return false
		}
		home, ok := board.HomeBaseOf(player.ID)
		return ok && home.IsNearby(a.At)

	default:
		return false
	}
}
