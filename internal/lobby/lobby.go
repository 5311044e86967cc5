// Package lobby queues waiting players by requested match size and starts a
// match the moment a queue fills.
package lobby

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Lorenzo-Gardini/hex-core/internal/logger"
	"github.com/Lorenzo-Gardini/hex-core/internal/pubsub"
	"github.com/Lorenzo-Gardini/hex-core/pkg/hexgame"
)

// Topic names for lobby traffic. The join and leave topics carry
// JoinRequest and player ID strings; the assignment topic carries Assignment.
const (
	JoinTopic  = "lobby:join"
	LeaveTopic = "lobby:leave"
)

// AssignmentTopic is where a waiting player learns their match started.
func AssignmentTopic(playerID string) string { return "lobby:assigned:" + playerID }

// JoinRequest asks the scheduler to queue a player for a match size.
type JoinRequest struct {
	Player    hexgame.Player
	LobbySize int
}

// Assignment notifies a queued player that their match exists.
type Assignment struct {
	GameID  string
	Players []hexgame.Player
}

// Match is a created but not yet started game. The scheduler announces the
// game to its players before calling Start, so nobody misses the opening
// broadcast.
type Match interface {
	GameID() string
	Start()
}

// StartMatch creates a match for a full queue. Supplied by the composition
// root.
type StartMatch func(players []hexgame.Player) (Match, error)

// Scheduler holds one FIFO queue per supported match size. A single mutex
// serializes every queue mutation, so a burst of joins can never start two
// overlapping matches from the same queue.
type Scheduler struct {
	mu      sync.Mutex
	queues  map[int][]hexgame.Player
	min     int
	max     int
	start   StartMatch
	broker  *pubsub.Broker
	joinSub *pubsub.Subscription
	partSub *pubsub.Subscription
	log     zerolog.Logger
}

// NewScheduler creates a scheduler for match sizes in [min, max].
func NewScheduler(min, max int, start StartMatch, broker *pubsub.Broker) *Scheduler {
	queues := make(map[int][]hexgame.Player, max-min+1)
	for size := min; size <= max; size++ {
		queues[size] = nil
	}
	return &Scheduler{
		queues: queues,
		min:    min,
		max:    max,
		start:  start,
		broker: broker,
		log:    logger.Get().With().Str("component", "lobby").Logger(),
	}
}

// Listen subscribes the scheduler to the lobby topics.
func (s *Scheduler) Listen() {
	s.joinSub = s.broker.Subscribe(JoinTopic, func(message any) {
		req, ok := message.(JoinRequest)
		if !ok {
			s.log.Warn().Msg("Join topic carried an unexpected message type")
			return
		}
		if err := s.Join(req.Player, req.LobbySize); err != nil {
			s.log.Warn().Err(err).Str("playerId", req.Player.ID).Msg("Join rejected")
		}
	})
	s.partSub = s.broker.Subscribe(LeaveTopic, func(message any) {
		playerID, ok := message.(string)
		if !ok {
			s.log.Warn().Msg("Leave topic carried an unexpected message type")
			return
		}
		s.Leave(playerID)
	})
}

// Close unsubscribes the scheduler from the lobby topics.
func (s *Scheduler) Close() {
	s.broker.Unsubscribe(s.joinSub)
	s.broker.Unsubscribe(s.partSub)
}

// Join queues a player for a match of the given size and starts the match
// when the queue fills. A player may wait in only one queue at a time.
func (s *Scheduler) Join(player hexgame.Player, size int) error {
	s.mu.Lock()

	if size < s.min || size > s.max {
		s.mu.Unlock()
		return fmt.Errorf("lobby size %d outside supported range %d-%d", size, s.min, s.max)
	}
	for qs, queue := range s.queues {
		for _, p := range queue {
			if p.ID == player.ID {
				s.mu.Unlock()
				return fmt.Errorf("player %s already waiting in lobby %d", player.ID, qs)
			}
		}
	}

	s.queues[size] = append(s.queues[size], player)
	s.log.Info().Str("playerId", player.ID).Int("lobbySize", size).
		Int("waiting", len(s.queues[size])).Msg("Player joined lobby")

	var starting []hexgame.Player
	if len(s.queues[size]) >= size {
		starting = s.queues[size][:size]
		s.queues[size] = append([]hexgame.Player(nil), s.queues[size][size:]...)
	}
	s.mu.Unlock()

	if starting != nil {
		s.launch(starting)
	}
	return nil
}

// Leave removes a waiting player from whatever queue holds them. Unknown
// players are ignored.
func (s *Scheduler) Leave(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for size, queue := range s.queues {
		for i, p := range queue {
			if p.ID == playerID {
				s.queues[size] = append(queue[:i:i], queue[i+1:]...)
				s.log.Info().Str("playerId", playerID).Int("lobbySize", size).Msg("Player left lobby")
				return
			}
		}
	}
}

// Waiting returns how many players are queued for the given size.
func (s *Scheduler) Waiting(size int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[size])
}

// launch creates the match, tells each player where to go, then starts it.
// Runs outside the queue lock; a failed start requeues nobody, the players
// simply rejoin.
func (s *Scheduler) launch(players []hexgame.Player) {
	match, err := s.start(players)
	if err != nil {
		s.log.Error().Err(err).Int("players", len(players)).Msg("Failed to start match")
		for _, p := range players {
			s.broker.Publish(AssignmentTopic(p.ID), Assignment{})
		}
		return
	}

	gameID := match.GameID()
	s.log.Info().Str("gameId", gameID).Int("players", len(players)).Msg("Match starting from lobby")
	assignment := Assignment{GameID: gameID, Players: players}
	for _, p := range players {
		s.broker.Publish(AssignmentTopic(p.ID), assignment)
	}
	match.Start()
}
