// Package session connects one running match to its players: it routes
// decoded player requests into the game controller, fans controller updates
// out over pub/sub topics, and mirrors the live snapshot into the cache.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/Lorenzo-Gardini/hex-core/internal/game"
	"github.com/Lorenzo-Gardini/hex-core/internal/logger"
	"github.com/Lorenzo-Gardini/hex-core/internal/pubsub"
	"github.com/Lorenzo-Gardini/hex-core/internal/repository"
	"github.com/Lorenzo-Gardini/hex-core/pkg/hexgame"
)

// Topic names. Outbound topics carry marshaled JSON ([]byte); the requests
// topic carries game.PlayerRequest values.
func UpdatesTopic(gameID string) string  { return "game:" + gameID + ":updates" }
func RequestsTopic(gameID string) string { return "game:" + gameID + ":requests" }
func PlayerTopic(gameID, playerID string) string {
	return "game:" + gameID + ":player:" + playerID
}

// Session owns the lifecycle of one match.
type Session struct {
	gameID  string
	players []hexgame.Player
	broker  *pubsub.Broker
	cache   repository.GameCache

	controller *game.Controller
	requestSub *pubsub.Subscription
	cancel     context.CancelFunc

	over atomic.Bool
	done chan struct{}
	wg   sync.WaitGroup
	log  zerolog.Logger
}

// New creates a session for the given players on the given board tiles and
// builds its controller. Start must be called to begin the match.
func New(gameID string, players []hexgame.Player, tiles []hexgame.HexCoord, seed int64,
	opts game.Options, broker *pubsub.Broker, cache repository.GameCache) (*Session, error) {

	status, err := hexgame.NewGameStatus(players, tiles, seed)
	if err != nil {
		return nil, err
	}

	s := &Session{
		gameID:  gameID,
		players: status.Order.Players(),
		broker:  broker,
		cache:   cache,
		done:    make(chan struct{}),
		log:     logger.Get().With().Str("gameId", gameID).Logger(),
	}
	s.controller = game.NewController(gameID, status, s, cache, opts)
	return s, nil
}

// GameID returns the match identifier.
func (s *Session) GameID() string { return s.gameID }

// Players returns the players the match started with.
func (s *Session) Players() []hexgame.Player {
	out := make([]hexgame.Player, len(s.players))
	copy(out, s.players)
	return out
}

// GameIsOver reports whether the match has finished.
func (s *Session) GameIsOver() bool { return s.over.Load() }

// Done is closed once the match has finished and its topics are torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Start subscribes to the request topic and launches the controller. The
// match runs until a winner emerges or the context is cancelled.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.requestSub = s.broker.Subscribe(RequestsTopic(s.gameID), func(message any) {
		req, ok := message.(game.PlayerRequest)
		if !ok {
			s.log.Warn().Msg("Request topic carried an unexpected message type")
			return
		}
		s.controller.Submit(req)
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.controller.Run(ctx)
		s.teardown()
	}()
}

// Stop cancels the match and waits for teardown.
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Session) teardown() {
	s.over.Store(true)
	s.broker.Unsubscribe(s.requestSub)
	s.broker.CloseTopic(RequestsTopic(s.gameID))
	s.broker.CloseTopic(UpdatesTopic(s.gameID))

	playerIDs := make([]string, 0, len(s.players))
	for _, p := range s.players {
		s.broker.CloseTopic(PlayerTopic(s.gameID, p.ID))
		playerIDs = append(playerIDs, p.ID)
	}

	if err := s.cache.DeleteGameData(context.Background(), s.gameID, playerIDs); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete cached game data")
	}

	close(s.done)
	s.log.Info().Msg("Session closed")
}

// Broadcast sends an update to every player of the match and mirrors
// snapshots into the cache.
func (s *Session) Broadcast(update game.Update) {
	data, err := json.Marshal(update)
	if err != nil {
		s.log.Error().Err(err).Str("updateType", update.UpdateType()).Msg("Failed to marshal update")
		return
	}
	s.mirror(update)
	s.broker.Publish(UpdatesTopic(s.gameID), data)
}

// SendTo sends an update to a single player.
func (s *Session) SendTo(playerID string, update game.Update) {
	data, err := json.Marshal(update)
	if err != nil {
		s.log.Error().Err(err).Str("updateType", update.UpdateType()).Msg("Failed to marshal update")
		return
	}
	s.broker.Publish(PlayerTopic(s.gameID, playerID), data)
}

// mirror keeps the cache in step with the broadcast snapshots. Cache
// failures are logged and never block the match.
func (s *Session) mirror(update game.Update) {
	var status hexgame.GameStatus
	switch u := update.(type) {
	case game.GameStatusUpdate:
		status = u.Status
	case game.GameOverUpdate:
		status = u.Status
	default:
		return
	}

	data, err := json.Marshal(status)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal snapshot for cache")
		return
	}
	if err := s.cache.SetGameStatus(context.Background(), s.gameID, data); err != nil {
		s.log.Warn().Err(err).Msg("Failed to mirror snapshot to cache")
	}
}
