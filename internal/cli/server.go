package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uplay-player-service/internal/app"
	"uplay-player-service/internal/config"
	"uplay-player-service/internal/domain"
	"uplay-player-service/internal/infra/memory"
	pgloader "uplay-player-service/internal/infra/postgres"
	redisinfra "uplay-player-service/internal/infra/redis"
	transport "uplay-player-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the player service",
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(sampleCatalogs())
	if pool != nil {
		loader = pgloader.NewCatalogLoader(pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogRepo app.CatalogRepository
	if redisClient != nil {
		catalogRepo = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogRepo = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}
	service := app.NewPlayerService(store, catalogRepo)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting player service on :%s", finalPort)
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

// sampleCatalogs provides a minimal demo catalog; swap the loader for
// the Postgres-backed one in production.
func sampleCatalogs() map[string]domain.Catalog {
	return map[string]domain.Catalog{
		"intro-1": {
			VideoID:  "intro-1",
			Duration: 180,
			Questions: []domain.Question{
				{
					ID:           1,
					Timestamp:    30,
					EndTimestamp: 60,
					TimeLimit:    25,
					Difficulty:   domain.DifficultyEasy,
					Prompt:       "What is the core principle shown in this segment?",
					Options: []domain.AnswerOption{
						{ID: "a", Label: "A", Text: "Reciprocity"},
						{ID: "b", Label: "B", Text: "Competition"},
					},
					CorrectAnswerID: "a",
					Reward:          domain.RewardBase{Merits: 15, Ondas: 5},
				},
				{
					ID:           2,
					Timestamp:    90,
					EndTimestamp: 120,
					TimeLimit:    20,
					Difficulty:   domain.DifficultyMedium,
					Prompt:       "Which action earns ondas?",
					Options: []domain.AnswerOption{
						{ID: "a", Label: "A", Text: "Watching passively"},
						{ID: "b", Label: "B", Text: "Answering questions"},
						{ID: "c", Label: "C", Text: "Skipping ahead"},
					},
					CorrectAnswerID: "b",
					Reward:          domain.RewardBase{Merits: 10, Ondas: 8},
				},
			},
		},
	}
}
