package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lorenzo-Gardini/hex-core/internal/game"
	"github.com/Lorenzo-Gardini/hex-core/internal/lobby"
	"github.com/Lorenzo-Gardini/hex-core/internal/pubsub"
	"github.com/Lorenzo-Gardini/hex-core/internal/repository"
	"github.com/Lorenzo-Gardini/hex-core/internal/session"
	"github.com/Lorenzo-Gardini/hex-core/pkg/hexgame"
)

var testPlayer = hexgame.Player{ID: "p1", Username: "ada"}

func TestParsePlayerRequest_March(t *testing.T) {
	data := []byte(`{
		"action_type": "march_troop_action",
		"starting_coordinates": {"q": 1, "r": -1},
		"destination_coordinates": {"q": 2, "r": -1}
	}`)

	req, err := ParsePlayerRequest(testPlayer, data)
	if err != nil {
		t.Fatal(err)
	}
	march, ok := req.Action.(hexgame.MarchAction)
	if !ok {
		t.Fatalf("action is %T, want MarchAction", req.Action)
	}
	if march.From != (hexgame.HexCoord{Q: 1, R: -1}) || march.To != (hexgame.HexCoord{Q: 2, R: -1}) {
		t.Errorf("coordinates wrong: %+v", march)
	}
	if req.Player.ID != testPlayer.ID {
		t.Error("request not attributed to the player")
	}
	if req.Clear {
		t.Error("march request must not be a clear")
	}
}

func TestParsePlayerRequest_Spawn(t *testing.T) {
	data := []byte(`{
		"action_type": "spawn_troop_action",
		"coordinates": {"q": 0, "r": 2},
		"troop": {"troop_type": "pentagon_troop", "owner": {"id": "spoofed", "username": "x"}}
	}`)

	req, err := ParsePlayerRequest(testPlayer, data)
	if err != nil {
		t.Fatal(err)
	}
	spawn, ok := req.Action.(hexgame.SpawnAction)
	if !ok {
		t.Fatalf("action is %T, want SpawnAction", req.Action)
	}
	if spawn.At != (hexgame.HexCoord{Q: 0, R: 2}) {
		t.Errorf("coordinates wrong: %+v", spawn.At)
	}
	if spawn.Troop.Kind != hexgame.Pentagon {
		t.Errorf("troop kind = %v, want Pentagon", spawn.Troop.Kind)
	}
	if spawn.Cost() != 0 {
		t.Error("parser must not assign a cost")
	}
}

func TestParsePlayerRequest_Clear(t *testing.T) {
	req, err := ParsePlayerRequest(testPlayer, []byte(`{"action_type": "clear_actions_request"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !req.Clear || req.Action != nil {
		t.Errorf("expected a clear request, got %+v", req)
	}
}

func TestParsePlayerRequest_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":          `{{{`,
		"no action type":    `{"q": 1}`,
		"unknown type":      `{"action_type": "teleport_action"}`,
		"march no coords":   `{"action_type": "march_troop_action"}`,
		"march half coords": `{"action_type": "march_troop_action", "starting_coordinates": {"q":0,"r":0}}`,
		"spawn no troop":    `{"action_type": "spawn_troop_action", "coordinates": {"q":0,"r":0}}`,
		"spawn bad kind":    `{"action_type": "spawn_troop_action", "coordinates": {"q":0,"r":0}, "troop": {"troop_type":"hexagon_troop","owner":{"id":"a","username":"a"}}}`,
	}
	for name, data := range cases {
		if _, err := ParsePlayerRequest(testPlayer, []byte(data)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestServeWS_RejectsBadParams(t *testing.T) {
	h := NewWSHandler(pubsub.NewBroker(), DefaultLimits())

	cases := map[string]string{
		"missing username":    "/ws?lobby_size=4",
		"username too short":  "/ws?username=jo&lobby_size=4",
		"username too long":   "/ws?username=adalovelace&lobby_size=4",
		"lobby size not int":  "/ws?username=ada&lobby_size=four",
		"lobby size too low":  "/ws?username=ada&lobby_size=2",
		"lobby size too high": "/ws?username=ada&lobby_size=9",
	}
	for name, target := range cases {
		rec := httptest.NewRecorder()
		h.ServeWS(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "error") {
			t.Errorf("%s: body should carry an error, got %s", name, rec.Body.String())
		}
	}
}

func TestServeWS_MissingLobbySizeUsesDefault(t *testing.T) {
	broker := pubsub.NewBroker()

	var mu sync.Mutex
	var joins []lobby.JoinRequest
	broker.Subscribe(lobby.JoinTopic, func(m any) {
		mu.Lock()
		defer mu.Unlock()
		joins = append(joins, m.(lobby.JoinRequest))
	})

	h := NewWSHandler(broker, DefaultLimits())
	server := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?username=ada", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(joins)
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no lobby join observed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if joins[0].LobbySize != 5 {
		t.Errorf("lobby size = %d, want default 5", joins[0].LobbySize)
	}
}

// sessionMatch starts its session only when the scheduler says so.
type sessionMatch struct {
	s   *session.Session
	run func()
}

func (m *sessionMatch) GameID() string { return m.s.GameID() }
func (m *sessionMatch) Start()         { m.run() }

// readUpdates splits one websocket read into its update envelopes; the
// write pump batches queued frames with newline separators.
func readUpdates(t *testing.T, conn *websocket.Conn) []map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var updates []map[string]any
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var u map[string]any
		if err := json.Unmarshal(line, &u); err != nil {
			t.Fatalf("unparseable frame %s: %v", line, err)
		}
		updates = append(updates, u)
	}
	return updates
}

func TestServeWS_FullMatchOverWebsocket(t *testing.T) {
	broker := pubsub.NewBroker()

	opts := game.Options{
		PlanningTime: 60 * time.Millisecond,
		TickInterval: 20 * time.Millisecond,
		ActionPoints: 3,
		MarchCost:    1,
		SpawnCost:    2,
		Rules:        hexgame.Rules{MaxTurns: 0, WinningCoreControlTurns: 1},
	}

	var matchNum int
	start := func(players []hexgame.Player) (lobby.Match, error) {
		matchNum++
		gameID := fmt.Sprintf("match-%d", matchNum)
		tiles, err := hexgame.GenerateMap(len(players))
		if err != nil {
			return nil, err
		}
		s, err := session.New(gameID, players, tiles, 42, opts, broker, repository.NoopCache{})
		if err != nil {
			return nil, err
		}
		return &sessionMatch{s: s, run: func() { s.Start(context.Background()) }}, nil
	}

	scheduler := lobby.NewScheduler(3, 8, start, broker)
	scheduler.Listen()
	defer scheduler.Close()

	h := NewWSHandler(broker, DefaultLimits())
	server := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conn, _, err := websocket.DefaultDialer.Dial(
			fmt.Sprintf("%s/ws?username=user%d&lobby_size=3", wsURL, i), nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		defer conn.Close()
		conns[i] = conn
	}

	// Every player sees the match run to game over.
	for i, conn := range conns {
		sawStatus, sawOver := false, false
		deadline := time.Now().Add(5 * time.Second)
		for !sawOver && time.Now().Before(deadline) {
			for _, u := range readUpdates(t, conn) {
				switch u["update_type"] {
				case game.UpdateTypeGameStatus:
					sawStatus = true
				case game.UpdateTypeGameOver:
					sawOver = true
					if u["game_status"].(map[string]any)["winner"] == nil {
						t.Errorf("conn %d: game over without winner", i)
					}
				}
			}
		}
		if !sawStatus || !sawOver {
			t.Fatalf("conn %d: status=%v over=%v", i, sawStatus, sawOver)
		}
	}
}
