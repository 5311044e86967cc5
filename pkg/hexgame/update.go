package hexgame

// Rules carries the tunable limits the updater needs. The updater stays a
// pure function of its arguments; configuration enters only through here.
type Rules struct {
	MaxTurns                int
	WinningCoreControlTurns int
}

// DefaultRules returns the stock limits.
func DefaultRules() Rules {
	return Rules{MaxTurns: 20, WinningCoreControlTurns: 3}
}

type playerAction struct {
	player Player
	action Action
}

// Update applies one round of submitted actions to the status and returns
// the resulting events plus the next snapshot. Actions are interleaved
// round-robin across the player order (each player's k-th action in turn),
// revalidated against the evolving status, then the turn advances and the
// termination rules run. Deterministic: no clock, no randomness.
func Update(status GameStatus, actionsByPlayer map[string][]Action, valid Validator, rules Rules) ([]Event, GameStatus) {
	cur := status
	var events []Event

	for _, pa := range interleave(actionsByPlayer, status.Order) {
		if cur.Order.IndexOf(pa.player.ID) < 0 {
			// Owner was eliminated earlier in this same resolution.
			events = append(events, NoChangesEvent{Player: pa.player, Action: pa.action})
			continue
		}
		if !valid(pa.player, pa.action, cur) {
			events = append(events, NoChangesEvent{Player: pa.player, Action: pa.action})
			continue
		}

		switch a := pa.action.(type) {
		case SpawnAction:
			troop := Troop{Kind: a.Troop.Kind, Owner: pa.player}
			cur.Board = cur.Board.Place(a.At, troop)
			events = append(events, TroopSpawnedEvent{Troop: troop, At: a.At})

		case MarchAction:
			var event Event
			event, cur = resolveMarch(pa.player, a, cur)
			events = append(events, event)
		}
	}

	return events, advanceTurn(cur, rules)
}

// resolveMarch applies a single validated march to the status.
func resolveMarch(player Player, a MarchAction, cur GameStatus) (Event, GameStatus) {
	attacker := *cur.Board.At(a.From)
	defender := cur.Board.At(a.To)

	switch {
	case defender == nil:
		cur.Board = cur.Board.MoveTroop(a.From, a.To)
		return TroopMovedEvent{Troop: attacker, From: a.From, To: a.To}, cur

	case defender.Kind == HomeBase && defender.Owner.ID != player.ID:
		removed := defender.Owner
		cur.Board = cur.Board.RemoveAllOwnedBy(removed.ID)
		cur.Order = cur.Order.Remove(removed.ID)
		return PlayerRemovedEvent{Player: removed}, cur

	case Beats(attacker.Kind, defender.Kind):
		cur.Board = cur.Board.MoveTroop(a.From, a.To)
		return AttackWonEvent{Attacker: attacker, Defender: *defender, From: a.From, To: a.To}, cur

	case Beats(defender.Kind, attacker.Kind):
		cur.Board = cur.Board.RemoveAt(a.From)
		return AttackLostEvent{Attacker: attacker, Defender: *defender, From: a.From, To: a.To}, cur

	default:
		return NoChangesEvent{Player: player, Action: a}, cur
	}
}

// advanceTurn increments the turn counter and applies the termination
// rules: turn limit first, then core control, otherwise the order rotates.
func advanceTurn(cur GameStatus, rules Rules) GameStatus {
	cur.TurnNumber++

	if cur.TurnNumber > rules.MaxTurns {
		if winner, ok := mostTroops(cur); ok {
			cur.Winner = &winner
		}
		return cur
	}

	if occupant := cur.Board.At(cur.Board.Core()); occupant != nil {
		cur.ControlScore = cur.ControlScore.ScoreFor(*occupant)
		if cur.ControlScore.TurnsHeld >= rules.WinningCoreControlTurns {
			winner := occupant.Owner
			cur.Winner = &winner
			return cur
		}
	} else {
		cur.ControlScore = CoreControlScore{}
	}

	cur.Order = cur.Order.Rotate()
	return cur
}

// mostTroops returns the player with the most playable troops on the
// board; ties go to the earliest position in the current order.
func mostTroops(cur GameStatus) (Player, bool) {
	players := cur.Order.Players()
	if len(players) == 0 {
		return Player{}, false
	}
	counts := cur.Board.TroopCounts()
	winner, best := players[0], counts[players[0].ID]
	for _, p := range players[1:] {
		if counts[p.ID] > best {
			winner, best = p, counts[p.ID]
		}
	}
	return winner, true
}

// interleave flattens the per-player action lists round-robin over the
// player order: every player's k-th action for k = 0, 1, ... with missing
// entries skipped. Submission time never influences resolution order.
func interleave(actionsByPlayer map[string][]Action, order PlayerOrder) []playerAction {
	players := order.Players()
	var result []playerAction
	for k := 0; ; k++ {
		found := false
		for _, p := range players {
			if actions := actionsByPlayer[p.ID]; k < len(actions) {
				result = append(result, playerAction{player: p, action: actions[k]})
				found = true
			}
		}
		if !found {
			return result
		}
	}
}
