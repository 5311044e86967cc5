package handler

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Lorenzo-Gardini/hex-core/internal/lobby"
	"github.com/Lorenzo-Gardini/hex-core/internal/logger"
	"github.com/Lorenzo-Gardini/hex-core/internal/pubsub"
	"github.com/Lorenzo-Gardini/hex-core/internal/session"
	"github.com/Lorenzo-Gardini/hex-core/pkg/hexgame"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Tighten in production
	},
}

// Limits are the connect-parameter bounds enforced before the upgrade.
type Limits struct {
	MinUsernameLen   int
	MaxUsernameLen   int
	MinLobbySize     int
	MaxLobbySize     int
	DefaultLobbySize int
}

// DefaultLimits returns the stock connect-parameter bounds.
func DefaultLimits() Limits {
	return Limits{
		MinUsernameLen:   3,
		MaxUsernameLen:   8,
		MinLobbySize:     hexgame.MinPlayers,
		MaxLobbySize:     hexgame.MaxPlayers,
		DefaultLobbySize: 5,
	}
}

// WSHandler owns the player websocket endpoint: it validates the connect
// parameters, queues the player in the lobby and bridges the socket to the
// pub/sub topics of whatever match the lobby assigns.
type WSHandler struct {
	broker *pubsub.Broker
	limits Limits
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(broker *pubsub.Broker, limits Limits) *WSHandler {
	return &WSHandler{broker: broker, limits: limits}
}

// playerConn is one connected player.
type playerConn struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	player hexgame.Player

	mu     sync.Mutex
	gameID string
	subs   []*pubsub.Subscription
}

func (pc *playerConn) setGame(gameID string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.gameID = gameID
}

func (pc *playerConn) game() string {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.gameID
}

func (pc *playerConn) addSub(sub *pubsub.Subscription) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.subs = append(pc.subs, sub)
}

func (pc *playerConn) takeSubs() []*pubsub.Subscription {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	subs := pc.subs
	pc.subs = nil
	return subs
}

// enqueue hands a frame to the write pump, dropping it when the buffer is
// full rather than blocking a publisher.
func (pc *playerConn) enqueue(data []byte) {
	select {
	case pc.send <- data:
	default:
		log.Warn().Str("playerId", pc.player.ID).Msg("Dropping frame, send buffer full")
	}
}

// forward is the pub/sub callback feeding broadcast and private frames to
// the connection.
func (pc *playerConn) forward(message any) {
	data, ok := message.([]byte)
	if !ok {
		return
	}
	pc.enqueue(data)
}

// ServeWS handles GET /ws?username=...&lobby_size=N. Parameter validation
// happens before the upgrade so a bad request gets a plain HTTP 400. A
// missing lobby_size falls back to the configured default.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if len(username) < h.limits.MinUsernameLen || len(username) > h.limits.MaxUsernameLen {
		writeError(w, http.StatusBadRequest, "username length out of range")
		return
	}

	size := h.limits.DefaultLobbySize
	if sizeStr := r.URL.Query().Get("lobby_size"); sizeStr != "" {
		var err error
		size, err = strconv.Atoi(sizeStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "lobby_size must be an integer")
			return
		}
	}
	if size < h.limits.MinLobbySize || size > h.limits.MaxLobbySize {
		writeError(w, http.StatusBadRequest, "lobby_size out of range")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	pc := &playerConn{
		conn:   conn,
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
		player: hexgame.Player{ID: logger.NewID(), Username: username},
	}

	pc.addSub(h.broker.Subscribe(lobby.AssignmentTopic(pc.player.ID), func(message any) {
		h.onAssignment(pc, message)
	}))

	go h.writePump(pc)
	go h.readPump(pc)

	h.broker.Publish(lobby.JoinTopic, lobby.JoinRequest{Player: pc.player, LobbySize: size})

	log.Info().Str("playerId", pc.player.ID).Str("username", username).
		Int("lobbySize", size).Msg("Player connected")
}

// onAssignment attaches the connection to the topics of its new match.
func (h *WSHandler) onAssignment(pc *playerConn, message any) {
	assignment, ok := message.(lobby.Assignment)
	if !ok {
		return
	}
	if assignment.GameID == "" {
		pc.enqueue(errorFrame("match_start_failed"))
		return
	}

	pc.setGame(assignment.GameID)
	pc.addSub(h.broker.Subscribe(session.UpdatesTopic(assignment.GameID), pc.forward))
	pc.addSub(h.broker.Subscribe(session.PlayerTopic(assignment.GameID, pc.player.ID), pc.forward))

	log.Info().Str("playerId", pc.player.ID).Str("gameId", assignment.GameID).
		Msg("Player assigned to match")
}

// readPump reads client messages and publishes decoded requests to the
// match. On disconnect it detaches the player from lobby and topics.
func (h *WSHandler) readPump(pc *playerConn) {
	defer func() {
		for _, sub := range pc.takeSubs() {
			h.broker.Unsubscribe(sub)
		}
		h.broker.Publish(lobby.LeaveTopic, pc.player.ID)
		close(pc.done)
		pc.conn.Close()
		log.Info().Str("playerId", pc.player.ID).Msg("Player disconnected")
	}()

	pc.conn.SetReadLimit(maxMsgSize)
	pc.conn.SetReadDeadline(time.Now().Add(pongWait))
	pc.conn.SetPongHandler(func(string) error {
		pc.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := pc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("playerId", pc.player.ID).Msg("WebSocket unexpected close")
			}
			return
		}

		logger.LogFrame(log.Logger, "in", message)

		gameID := pc.game()
		if gameID == "" {
			pc.enqueue(errorFrame("no_game_assigned"))
			continue
		}

		req, err := ParsePlayerRequest(pc.player, message)
		if err != nil {
			log.Warn().Err(err).Str("playerId", pc.player.ID).Msg("Invalid player request")
			pc.enqueue(errorFrame("invalid_request"))
			continue
		}
		h.broker.Publish(session.RequestsTopic(gameID), req)
	}
}

// writePump writes frames to the websocket connection and keeps it alive
// with pings.
func (h *WSHandler) writePump(pc *playerConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		pc.conn.Close()
	}()

	for {
		select {
		case <-pc.done:
			pc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			pc.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-pc.send:
			pc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := pc.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same write
			n := len(pc.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-pc.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			pc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := pc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
