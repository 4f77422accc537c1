package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"live-leaderboard-service/internal/app"
	"live-leaderboard-service/internal/config"
	"live-leaderboard-service/internal/domain"
	"live-leaderboard-service/internal/infra/memory"
	pgstore "live-leaderboard-service/internal/infra/postgres"
	rediscache "live-leaderboard-service/internal/infra/redis"
	transport "live-leaderboard-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the leaderboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	cacheTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var (
		challenges   app.ChallengeStore
		stats        app.StatStore
		games        app.GameStore
		questions    app.QuestionStore
		participants app.ParticipantDirectory
	)
	if pool != nil {
		challenges = pgstore.NewChallengeStore(pool)
		stats = pgstore.NewStatStore(pool)
		games = pgstore.NewGameStore(pool)
		questions = pgstore.NewQuestionStore(pool)
		participants = pgstore.NewParticipantDirectory(pool)
	} else {
		// demo mode: everything in memory
		directory := memory.NewParticipantDirectory(sampleParticipants())
		challenges = memory.NewChallengeStore()
		stats = memory.NewStatStore(directory)
		games = memory.NewGameStore()
		questions = memory.NewQuestionStore(sampleQuestions())
		participants = directory
	}

	if redisClient != nil {
		questions = rediscache.NewAnswerCache(redisClient, questions, cacheTTL)
		participants = rediscache.NewParticipantCache(redisClient, participants, cacheTTL)
	}

	service := app.NewLeaderboardService(challenges, stats, games, questions, participants)

	cadence := app.BroadcastCadence{
		ActiveEvery: config.Duration(cfg.Broadcast.ActiveEvery, app.DefaultCadence.ActiveEvery),
		IdleEvery:   config.Duration(cfg.Broadcast.IdleEvery, app.DefaultCadence.IdleEvery),
	}
	wsHandler := transport.NewWSHandler(service, cadence)
	apiHandler := transport.NewAPIHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/leaderboard", wsHandler.ServeLeaderboard)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: websocket streams outlive any fixed deadline
	}

	go func() {
		log.Printf("starting leaderboard service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleParticipants seeds demo mode; production resolves identity from the
// accounts tables.
func sampleParticipants() []domain.Participant {
	return []domain.Participant{
		{ID: 1, Code: "AB12CD34", Name: "Alice", Active: true},
		{ID: 2, Code: "EF56GH78", Name: "Bob", Active: true},
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Text: "What is 2 + 2?", CorrectAnswer: "4"},
		{ID: 2, Text: "Capital of France?", CorrectAnswer: "Paris"},
		{ID: 3, Text: "Largest planet in the solar system?", CorrectAnswer: "Jupiter"},
	}
}
