// Package game runs a single match: the controller alternates a timed
// planning phase, where players queue actions, with a resolution phase that
// replays those actions through the rules engine and paces the resulting
// events out to clients.
package game

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/Lorenzo-Gardini/hex-core/internal/logger"
	"github.com/Lorenzo-Gardini/hex-core/internal/repository"
	"github.com/Lorenzo-Gardini/hex-core/pkg/hexgame"
)

// Sender delivers updates to the players of one match. Implemented by the
// session layer.
type Sender interface {
	Broadcast(update Update)
	SendTo(playerID string, update Update)
}

// PlayerRequest is one decoded client message, attributed to its sender.
// Action is nil for a clear request.
type PlayerRequest struct {
	Player hexgame.Player
	Action hexgame.Action
	Clear  bool
}

// Options tunes a controller. Zero values are replaced by DefaultOptions.
type Options struct {
	PlanningTime time.Duration
	TickInterval time.Duration
	EventDelay   time.Duration
	ActionPoints int
	MarchCost    int
	SpawnCost    int
	Rules        hexgame.Rules
}

// DefaultOptions returns the stock controller tuning.
func DefaultOptions() Options {
	return Options{
		PlanningTime: 30 * time.Second,
		TickInterval: 200 * time.Millisecond,
		EventDelay:   2 * time.Second,
		ActionPoints: 3,
		MarchCost:    1,
		SpawnCost:    2,
		Rules:        hexgame.DefaultRules(),
	}
}

const requestBufferSize = 64

// Controller owns the state of one match. All state is confined to the Run
// goroutine; other goroutines interact only through Submit.
type Controller struct {
	gameID   string
	status   hexgame.GameStatus
	actions  map[string][]hexgame.Action
	requests chan PlayerRequest
	sender   Sender
	cache    repository.GameCache
	valid    hexgame.Validator
	opts     Options
	log      zerolog.Logger
}

// NewController creates a controller for a match starting at the given
// snapshot. A nil cache disables the live-state mirror.
func NewController(gameID string, status hexgame.GameStatus, sender Sender, cache repository.GameCache, opts Options) *Controller {
	def := DefaultOptions()
	if opts.PlanningTime <= 0 {
		opts.PlanningTime = def.PlanningTime
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = def.TickInterval
	}
	if opts.EventDelay < 0 {
		opts.EventDelay = def.EventDelay
	}
	if opts.ActionPoints <= 0 {
		opts.ActionPoints = def.ActionPoints
	}
	if opts.MarchCost <= 0 {
		opts.MarchCost = def.MarchCost
	}
	if opts.SpawnCost <= 0 {
		opts.SpawnCost = def.SpawnCost
	}
	if opts.Rules == (hexgame.Rules{}) {
		opts.Rules = def.Rules
	}
	if cache == nil {
		cache = repository.NoopCache{}
	}

	return &Controller{
		gameID:   gameID,
		status:   status,
		actions:  make(map[string][]hexgame.Action),
		requests: make(chan PlayerRequest, requestBufferSize),
		sender:   sender,
		cache:    cache,
		valid:    hexgame.ValidAction,
		opts:     opts,
		log:      logger.Get().With().Str("gameId", gameID).Logger(),
	}
}

// Submit queues a player request for the controller. Non-blocking: when the
// buffer is full the request is dropped, matching a client that floods the
// server mid-resolution.
func (c *Controller) Submit(req PlayerRequest) {
	select {
	case c.requests <- req:
	default:
		c.log.Warn().Str("playerId", req.Player.ID).Msg("Request buffer full, dropping request")
	}
}

// Status returns the snapshot the controller started the current turn with.
// Only safe before Run starts or after it returns.
func (c *Controller) Status() hexgame.GameStatus { return c.status }

// Run drives the match until a winner emerges or the context is cancelled.
// It broadcasts the snapshot, runs one planning phase, resolves, and repeats.
func (c *Controller) Run(ctx context.Context) {
	c.log.Info().Int("players", c.status.Order.Len()).Msg("Match started")

	for {
		// A decided match ends with the game-over frame alone; the winning
		// snapshot is never re-broadcast as a plain status update.
		if c.status.Winner != nil {
			c.sender.Broadcast(GameOverUpdate{Status: c.status})
			c.log.Info().Str("winnerId", c.status.Winner.ID).Msg("Match finished")
			return
		}
		c.sender.Broadcast(GameStatusUpdate{Status: c.status})

		// Each remaining player opens the turn with a fresh budget.
		for _, p := range c.status.Order.Players() {
			c.sender.SendTo(p.ID, RemainingActionPointsUpdate{RemainingActionPoints: c.opts.ActionPoints})
		}

		if !c.planningPhase(ctx) {
			return
		}
		if !c.resolutionPhase(ctx) {
			return
		}
	}
}

// planningPhase collects requests until the deadline, broadcasting the
// remaining time on every tick. Returns false when the context ends.
func (c *Controller) planningPhase(ctx context.Context) bool {
	c.drainStaleRequests()

	deadline := time.Now().Add(c.opts.PlanningTime)
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("Match cancelled during planning")
			return false
		case req := <-c.requests:
			c.handleRequest(req)
		case <-ticker.C:
			remaining := time.Until(deadline)
			c.sender.Broadcast(PlanningPhaseTimeUpdate{RemainingSeconds: roundSeconds(remaining)})
			if remaining <= 0 {
				return true
			}
		}
	}
}

// drainStaleRequests discards anything queued after the previous deadline.
// Requests that raced the resolution must not leak into the next turn.
func (c *Controller) drainStaleRequests() {
	for {
		select {
		case req := <-c.requests:
			c.log.Debug().Str("playerId", req.Player.ID).Msg("Discarding request from previous turn")
		default:
			return
		}
	}
}

// handleRequest validates one planning request and replies to its sender.
func (c *Controller) handleRequest(req PlayerRequest) {
	playerID := req.Player.ID

	if req.Clear {
		c.actions[playerID] = nil
		c.mirrorActions(playerID)
		c.sender.SendTo(playerID, RemainingActionPointsUpdate{RemainingActionPoints: c.opts.ActionPoints})
		return
	}

	action := c.priceAction(req.Action)
	if action == nil {
		c.log.Warn().Str("playerId", playerID).Msg("Request carried no action")
		return
	}

	// Budget before legality: an unaffordable action is rejected for points
	// even when it would also fail validation.
	current := hexgame.RemainingPoints(c.opts.ActionPoints, c.actions[playerID])
	if current < action.Cost() {
		c.sender.SendTo(playerID, InsufficientActionPointsUpdate{
			Action:                action,
			RemainingActionPoints: current,
		})
		return
	}

	if !c.valid(req.Player, action, c.status) {
		c.sender.SendTo(playerID, IllegalActionUpdate{Action: action})
		return
	}

	c.actions[playerID] = append(c.actions[playerID], action)
	c.mirrorActions(playerID)
	c.sender.SendTo(playerID, ApprovedActionUpdate{Action: action})
	c.sender.SendTo(playerID, RemainingActionPointsUpdate{RemainingActionPoints: current - action.Cost()})
}

// mirrorActions writes the player's planned actions to the cache. Mirror
// failures are logged and never block planning.
func (c *Controller) mirrorActions(playerID string) {
	actions := c.actions[playerID]
	if actions == nil {
		actions = []hexgame.Action{}
	}
	data, err := json.Marshal(actions)
	if err != nil {
		c.log.Error().Err(err).Str("playerId", playerID).Msg("Failed to marshal planned actions")
		return
	}
	if err := c.cache.SetPlayerActions(context.Background(), c.gameID, playerID, data); err != nil {
		c.log.Warn().Err(err).Str("playerId", playerID).Msg("Failed to mirror planned actions")
	}
}

// priceAction stamps the configured cost onto an action. Costs never come
// from the wire.
func (c *Controller) priceAction(action hexgame.Action) hexgame.Action {
	switch a := action.(type) {
	case hexgame.MarchAction:
		a.Points = c.opts.MarchCost
		return a
	case hexgame.SpawnAction:
		a.Points = c.opts.SpawnCost
		return a
	default:
		return nil
	}
}

// resolutionPhase replays the planned actions through the rules engine and
// paces the events out. Returns false when the context ends.
func (c *Controller) resolutionPhase(ctx context.Context) bool {
	// The pre-resolution order still includes players eliminated this turn,
	// so their mirrored actions are cleared too.
	playerIDs := make([]string, 0, c.status.Order.Len())
	for _, p := range c.status.Order.Players() {
		playerIDs = append(playerIDs, p.ID)
	}

	events, next := hexgame.Update(c.status, c.actions, c.valid, c.opts.Rules)
	c.status = next
	c.actions = make(map[string][]hexgame.Action)

	if err := c.cache.ClearTurnData(context.Background(), c.gameID, playerIDs); err != nil {
		c.log.Warn().Err(err).Msg("Failed to clear mirrored actions")
	}

	c.log.Info().Int("turn", next.TurnNumber).Int("events", len(events)).Msg("Turn resolved")

	for _, event := range events {
		c.sender.Broadcast(GameEventUpdate{Event: event})
		if c.opts.EventDelay > 0 {
			select {
			case <-ctx.Done():
				c.log.Info().Msg("Match cancelled during resolution")
				return false
			case <-time.After(c.opts.EventDelay):
			}
		}
	}
	return true
}

// roundSeconds converts a remaining duration to seconds with two decimals,
// clamped at zero.
func roundSeconds(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return math.Round(d.Seconds()*100) / 100
}
