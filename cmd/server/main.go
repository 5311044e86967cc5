package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Lorenzo-Gardini/hex-core/internal/config"
	"github.com/Lorenzo-Gardini/hex-core/internal/game"
	"github.com/Lorenzo-Gardini/hex-core/internal/handler"
	"github.com/Lorenzo-Gardini/hex-core/internal/levels"
	"github.com/Lorenzo-Gardini/hex-core/internal/lobby"
	"github.com/Lorenzo-Gardini/hex-core/internal/logger"
	"github.com/Lorenzo-Gardini/hex-core/internal/middleware"
	"github.com/Lorenzo-Gardini/hex-core/internal/pubsub"
	"github.com/Lorenzo-Gardini/hex-core/internal/repository"
	redisrepo "github.com/Lorenzo-Gardini/hex-core/internal/repository/redis"
	"github.com/Lorenzo-Gardini/hex-core/internal/session"
	"github.com/Lorenzo-Gardini/hex-core/pkg/hexgame"
)

// liveMatch defers session start until the scheduler has announced the game
// to its players, so nobody misses the opening broadcast.
type liveMatch struct {
	session *session.Session
	run     func()
}

func (m *liveMatch) GameID() string { return m.session.GameID() }
func (m *liveMatch) Start()         { m.run() }

func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().Str("port", cfg.Port).Int("minLobby", cfg.MinLobbySize).
		Int("maxLobby", cfg.MaxLobbySize).Msg("Config loaded")

	// Redis mirror (optional)
	var cache repository.GameCache = repository.NoopCache{}
	if cfg.RedisURL != "" {
		redisClient, err := redisrepo.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		cache = redisClient
		log.Info().Msg("Redis mirror enabled")
	}

	broker := pubsub.NewBroker()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := game.Options{
		PlanningTime: cfg.TurnPreparationTime,
		TickInterval: 200 * time.Millisecond,
		EventDelay:   cfg.EventBroadcastDelay,
		ActionPoints: cfg.DefaultActionPoints,
		MarchCost:    cfg.MarchActionPoints,
		SpawnCost:    cfg.SpawnActionPoints,
		Rules:        cfg.Rules(),
	}

	// Session factory: one match per filled lobby queue.
	var (
		sessionsMu sync.Mutex
		sessions   = make(map[string]*session.Session)
		gameSeq    int
	)
	start := func(players []hexgame.Player) (lobby.Match, error) {
		tiles, err := levels.TilesFor(cfg.LevelsDir, len(players))
		if err != nil {
			return nil, err
		}

		sessionsMu.Lock()
		gameSeq++
		gameID := fmt.Sprintf("game-%d-%s", gameSeq, logger.NewID())
		sessionsMu.Unlock()

		s, err := session.New(gameID, players, tiles, cfg.RandomSeed, opts, broker, cache)
		if err != nil {
			return nil, err
		}

		sessionsMu.Lock()
		sessions[gameID] = s
		sessionsMu.Unlock()

		return &liveMatch{session: s, run: func() {
			s.Start(ctx)
			go func() {
				<-s.Done()
				sessionsMu.Lock()
				delete(sessions, gameID)
				sessionsMu.Unlock()
			}()
		}}, nil
	}

	scheduler := lobby.NewScheduler(cfg.MinLobbySize, cfg.MaxLobbySize, start, broker)
	scheduler.Listen()
	defer scheduler.Close()

	wsHandler := handler.NewWSHandler(broker, handler.Limits{
		MinUsernameLen:   cfg.MinUsernameLen,
		MaxUsernameLen:   cfg.MaxUsernameLen,
		MinLobbySize:     cfg.MinLobbySize,
		MaxLobbySize:     cfg.MaxLobbySize,
		DefaultLobbySize: cfg.DefaultLobbySize,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)

	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"))

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     root,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	// Stop running matches before closing the listener.
	cancel()
	sessionsMu.Lock()
	open := make([]*session.Session, 0, len(sessions))
	for _, s := range sessions {
		open = append(open, s)
	}
	sessionsMu.Unlock()
	for _, s := range open {
		s.Stop()
	}
	broker.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
