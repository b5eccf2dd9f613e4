package cli

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"matheval-service/internal/app"
	"matheval-service/internal/bank"
	"matheval-service/internal/config"
	"matheval-service/internal/domain"
	"matheval-service/internal/infra/memory"
	pgstore "matheval-service/internal/infra/postgres"
	redissession "matheval-service/internal/infra/redis"
	transport "matheval-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		log.Printf("no config at %s, using defaults", configPath)
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

	var sessions app.SessionStore
	if redisClient != nil {
		sessions = redissession.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		sessions = memory.NewSessionStore()
	}

	var rows app.RowStore
	if cfg.Postgres.URL != "" {
		rows = pgstore.NewRowStore(pgstore.OpenDB(cfg.Postgres.URL))
	} else {
		log.Printf("no postgres configured, results are kept in memory only")
		rows = memory.NewRowStore()
	}

	loader := bank.NewLoader(
		config.StringOr(cfg.Questions.Dir, "questions"),
		domain.Domains,
		config.TTLDuration(cfg.Questions.TTL, 5*time.Minute),
	)

	quizService := app.NewQuizService(
		sessions,
		loader,
		rows,
		config.StringOr(cfg.Teacher.Email, "teacher@school.com"),
		config.StringOr(cfg.Teacher.Password, "pass123"),
	)
	reportService := app.NewReportService(rows)
	handler := transport.NewHandler(
		quizService,
		reportService,
		config.StringOr(cfg.Server.CORSOrigin, "http://localhost:3000"),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting matheval service on :%s", finalPort)
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
