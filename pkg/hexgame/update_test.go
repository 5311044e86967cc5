package hexgame

import (
	"encoding/json"
	"testing"
)

func TestUpdate_RoundRobinInterleave(t *testing.T) {
	// Alice at (0,0) and (2,0), bob at (4,0). Alice submits two marches,
	// bob one; resolution must run alice-1, bob-1, alice-2.
	b := lineBoard(7)
	b = b.Place(HexCoord{0, 0}, Troop{Kind: Triangle, Owner: alice})
	b = b.Place(HexCoord{2, 0}, Troop{Kind: Triangle, Owner: alice})
	b = b.Place(HexCoord{4, 0}, Troop{Kind: Triangle, Owner: bob})
	status := GameStatus{Order: NewPlayerOrder([]Player{alice, bob}), Board: b}

	actions := map[string][]Action{
		alice.ID: {
			MarchAction{From: HexCoord{0, 0}, To: HexCoord{1, 0}},
			MarchAction{From: HexCoord{2, 0}, To: HexCoord{3, 0}},
		},
		bob.ID: {
			MarchAction{From: HexCoord{4, 0}, To: HexCoord{5, 0}},
		},
	}

	events, _ := Update(status, actions, ValidAction, DefaultRules())
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	wantOwners := []string{alice.ID, bob.ID, alice.ID}
	for i, e := range events {
		moved, ok := e.(TroopMovedEvent)
		if !ok {
			t.Fatalf("event %d is %T, want TroopMovedEvent", i, e)
		}
		if moved.Troop.Owner.ID != wantOwners[i] {
			t.Errorf("event %d resolved for %s, want %s", i, moved.Troop.Owner.ID, wantOwners[i])
		}
	}
}

func TestUpdate_StaleActionBecomesNoChanges(t *testing.T) {
	// Both of alice's marches start from (0,0); after the first one the
	// source is empty, so the second fails revalidation.
	b := lineBoard(4)
	b = b.Place(HexCoord{0, 0}, Troop{Kind: Triangle, Owner: alice})
	status := GameStatus{Order: NewPlayerOrder([]Player{alice, bob, carol}), Board: b}

	actions := map[string][]Action{
		alice.ID: {
			MarchAction{From: HexCoord{0, 0}, To: HexCoord{1, 0}},
			MarchAction{From: HexCoord{0, 0}, To: HexCoord{2, 0}},
		},
	}

	events, next := Update(status, actions, ValidAction, DefaultRules())
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if _, ok := events[0].(TroopMovedEvent); !ok {
		t.Fatalf("first event is %T, want TroopMovedEvent", events[0])
	}
	nc, ok := events[1].(NoChangesEvent)
	if !ok {
		t.Fatalf("second event is %T, want NoChangesEvent", events[1])
	}
	if nc.Player.ID != alice.ID {
		t.Errorf("no-changes attributed to %s, want %s", nc.Player.ID, alice.ID)
	}
	if next.Board.At(HexCoord{1, 0}) == nil {
		t.Error("first march should have landed")
	}
}

func TestUpdate_CombatOutcomes(t *testing.T) {
	// Square beats triangle, triangle loses to square, square ties square.
	b := lineBoard(6)
	b = b.Place(HexCoord{0, 0}, Troop{Kind: Square, Owner: alice})
	b = b.Place(HexCoord{1, 0}, Troop{Kind: Triangle, Owner: bob})
	b = b.Place(HexCoord{3, 0}, Troop{Kind: Triangle, Owner: alice})
	b = b.Place(HexCoord{4, 0}, Troop{Kind: Square, Owner: bob})
	status := GameStatus{Order: NewPlayerOrder([]Player{alice, bob, carol}), Board: b}

	actions := map[string][]Action{
		alice.ID: {
			MarchAction{From: HexCoord{0, 0}, To: HexCoord{1, 0}},
			MarchAction{From: HexCoord{3, 0}, To: HexCoord{4, 0}},
		},
	}

	events, next := Update(status, actions, ValidAction, DefaultRules())
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	won, ok := events[0].(AttackWonEvent)
	if !ok {
		t.Fatalf("first event is %T, want AttackWonEvent", events[0])
	}
	if won.Attacker.Kind != Square || won.Defender.Kind != Triangle {
		t.Errorf("unexpected matchup: %+v", won)
	}
	winner := next.Board.At(HexCoord{1, 0})
	if winner == nil || winner.Owner.ID != alice.ID {
		t.Error("winning attacker should occupy the destination")
	}

	lost, ok := events[1].(AttackLostEvent)
	if !ok {
		t.Fatalf("second event is %T, want AttackLostEvent", events[1])
	}
	if lost.Attacker.Kind != Triangle || lost.Defender.Kind != Square {
		t.Errorf("unexpected matchup: %+v", lost)
	}
	if next.Board.At(HexCoord{3, 0}) != nil {
		t.Error("losing attacker should be removed from its source")
	}
	defender := next.Board.At(HexCoord{4, 0})
	if defender == nil || defender.Owner.ID != bob.ID {
		t.Error("defender should survive a lost attack")
	}
}

func TestUpdate_EqualKindsTie(t *testing.T) {
	b := lineBoard(3)
	b = b.Place(HexCoord{0, 0}, Troop{Kind: Pentagon, Owner: alice})
	b = b.Place(HexCoord{1, 0}, Troop{Kind: Pentagon, Owner: bob})
	status := GameStatus{Order: NewPlayerOrder([]Player{alice, bob, carol}), Board: b}

	actions := map[string][]Action{
		alice.ID: {MarchAction{From: HexCoord{0, 0}, To: HexCoord{1, 0}}},
	}
	events, next := Update(status, actions, ValidAction, DefaultRules())

	if _, ok := events[0].(NoChangesEvent); !ok {
		t.Fatalf("equal kinds should tie to NoChangesEvent, got %T", events[0])
	}
	if next.Board.At(HexCoord{0, 0}) == nil || next.Board.At(HexCoord{1, 0}) == nil {
		t.Error("a tie must leave both troops in place")
	}
}

func TestUpdate_HomeBaseCaptureEliminates(t *testing.T) {
	b := lineBoard(6)
	b = b.Place(HexCoord{0, 0}, Troop{Kind: Triangle, Owner: alice})
	b = b.Place(HexCoord{1, 0}, Troop{Kind: HomeBase, Owner: bob})
	b = b.Place(HexCoord{3, 0}, Troop{Kind: Square, Owner: bob})
	b = b.Place(HexCoord{5, 0}, Troop{Kind: Pentagon, Owner: carol})
	status := GameStatus{Order: NewPlayerOrder([]Player{alice, bob, carol}), Board: b}

	actions := map[string][]Action{
		alice.ID: {MarchAction{From: HexCoord{0, 0}, To: HexCoord{1, 0}}},
		// Bob's own march resolves after alice's and must become NoChanges.
		bob.ID: {MarchAction{From: HexCoord{3, 0}, To: HexCoord{4, 0}}},
	}

	events, next := Update(status, actions, ValidAction, DefaultRules())
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	removed, ok := events[0].(PlayerRemovedEvent)
	if !ok {
		t.Fatalf("first event is %T, want PlayerRemovedEvent", events[0])
	}
	if removed.Player.ID != bob.ID {
		t.Errorf("removed %s, want %s", removed.Player.ID, bob.ID)
	}
	if _, ok := events[1].(NoChangesEvent); !ok {
		t.Errorf("eliminated player's pending action should be NoChangesEvent, got %T", events[1])
	}

	if next.Order.IndexOf(bob.ID) != -1 {
		t.Error("eliminated player must leave the order")
	}
	for _, c := range []HexCoord{{1, 0}, {3, 0}} {
		if next.Board.At(c) != nil {
			t.Errorf("bob's troop at %v should be gone", c)
		}
	}
	// The attacker stays on its own tile
	attacker := next.Board.At(HexCoord{0, 0})
	if attacker == nil || attacker.Owner.ID != alice.ID {
		t.Error("capturing attacker should stay put")
	}
}

func TestUpdate_SpawnForcesOwner(t *testing.T) {
	b := lineBoard(3)
	b = b.Place(HexCoord{0, 0}, Troop{Kind: HomeBase, Owner: alice})
	status := GameStatus{Order: NewPlayerOrder([]Player{alice, bob, carol}), Board: b}

	actions := map[string][]Action{
		alice.ID: {SpawnAction{At: HexCoord{1, 0}, Troop: Troop{Kind: Triangle, Owner: bob}}},
	}
	events, next := Update(status, actions, ValidAction, DefaultRules())

	spawned, ok := events[0].(TroopSpawnedEvent)
	if !ok {
		t.Fatalf("expected TroopSpawnedEvent, got %T", events[0])
	}
	if spawned.Troop.Owner.ID != alice.ID {
		t.Error("spawned troop must belong to the acting player, whatever the payload says")
	}
	placed := next.Board.At(HexCoord{1, 0})
	if placed == nil || placed.Owner.ID != alice.ID {
		t.Error("board should hold the spawned troop under the acting player")
	}
}

func TestUpdate_TurnLimitWinner(t *testing.T) {
	// Counts: alice 2, bob 2, carol 1. Order [bob, alice, carol]: the tie
	// goes to the earliest in order, bob.
	b := lineBoard(8)
	b = b.Place(HexCoord{0, 0}, Troop{Kind: Triangle, Owner: alice})
	b = b.Place(HexCoord{1, 0}, Troop{Kind: Triangle, Owner: alice})
	b = b.Place(HexCoord{2, 0}, Troop{Kind: Square, Owner: bob})
	b = b.Place(HexCoord{3, 0}, Troop{Kind: Square, Owner: bob})
	b = b.Place(HexCoord{4, 0}, Troop{Kind: Pentagon, Owner: carol})
	b = b.Place(HexCoord{5, 0}, Troop{Kind: HomeBase, Owner: carol})

	rules := DefaultRules()
	status := GameStatus{
		TurnNumber: rules.MaxTurns,
		Order:      NewPlayerOrder([]Player{bob, alice, carol}),
		Board:      b,
	}

	_, next := Update(status, nil, ValidAction, rules)
	if next.TurnNumber != rules.MaxTurns+1 {
		t.Fatalf("turn number = %d, want %d", next.TurnNumber, rules.MaxTurns+1)
	}
	if next.Winner == nil || next.Winner.ID != bob.ID {
		t.Fatalf("winner = %+v, want bob by order tiebreak", next.Winner)
	}
}

func TestUpdate_CoreControlWin(t *testing.T) {
	b := lineBoard(4)
	b = b.Place(HexCoord{0, 0}, Troop{Kind: Pentagon, Owner: alice})
	status := GameStatus{Order: NewPlayerOrder([]Player{alice, bob, carol}), Board: b}
	rules := Rules{MaxTurns: 20, WinningCoreControlTurns: 3}

	for i := 0; i < 2; i++ {
		_, status = Update(status, nil, ValidAction, rules)
		if status.Winner != nil {
			t.Fatalf("winner declared after %d holds", i+1)
		}
		if status.ControlScore.TurnsHeld != i+1 {
			t.Fatalf("turns held = %d, want %d", status.ControlScore.TurnsHeld, i+1)
		}
	}

	_, status = Update(status, nil, ValidAction, rules)
	if status.Winner == nil || status.Winner.ID != alice.ID {
		t.Fatalf("winner = %+v, want alice after 3 holds", status.Winner)
	}
}

func TestUpdate_CoreControlResets(t *testing.T) {
	core := HexCoord{0, 0}
	b := lineBoard(4)
	b = b.Place(core, Troop{Kind: Pentagon, Owner: alice})
	status := GameStatus{Order: NewPlayerOrder([]Player{alice, bob, carol}), Board: b}
	rules := Rules{MaxTurns: 20, WinningCoreControlTurns: 3}

	_, status = Update(status, nil, ValidAction, rules)
	if status.ControlScore.TurnsHeld != 1 {
		t.Fatalf("turns held = %d, want 1", status.ControlScore.TurnsHeld)
	}

	// Occupant leaves the core; the streak clears.
	actions := map[string][]Action{
		alice.ID: {MarchAction{From: core, To: HexCoord{1, 0}}},
	}
	_, status = Update(status, actions, ValidAction, rules)
	if status.ControlScore.TurnsHeld != 0 || status.ControlScore.Troop != nil {
		t.Errorf("empty core should clear the score, got %+v", status.ControlScore)
	}
}

func TestUpdate_OrderRotates(t *testing.T) {
	b := lineBoard(3)
	status := GameStatus{Order: NewPlayerOrder([]Player{alice, bob, carol}), Board: b}

	_, next := Update(status, nil, ValidAction, DefaultRules())
	got := next.Order.Players()
	want := []Player{bob, carol, alice}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order after update = %v, want %v", got, want)
		}
	}
}

func TestUpdate_Deterministic(t *testing.T) {
	players := []Player{alice, bob, carol}
	tiles, err := GenerateMap(len(players))
	if err != nil {
		t.Fatal(err)
	}
	status, err := NewGameStatus(players, tiles, 42)
	if err != nil {
		t.Fatal(err)
	}

	home, _ := status.Board.HomeBaseOf(alice.ID)
	var spawnAt HexCoord
	for _, c := range status.Board.Coordinates() {
		if home.IsNearby(c) && status.Board.At(c) == nil {
			spawnAt = c
			break
		}
	}
	actions := map[string][]Action{
		alice.ID: {SpawnAction{At: spawnAt, Troop: Troop{Kind: Triangle, Owner: alice}}},
	}

	e1, s1 := Update(status, actions, ValidAction, DefaultRules())
	e2, s2 := Update(status, actions, ValidAction, DefaultRules())

	j1, _ := json.Marshal(s1)
	j2, _ := json.Marshal(s2)
	if string(j1) != string(j2) {
		t.Error("identical inputs must yield identical snapshots")
	}
	if len(e1) != len(e2) {
		t.Fatalf("event counts differ: %d vs %d", len(e1), len(e2))
	}
	for i := range e1 {
		a, _ := json.Marshal(e1[i])
		b, _ := json.Marshal(e2[i])
		if string(a) != string(b) {
			t.Errorf("event %d differs between runs", i)
		}
	}
}
