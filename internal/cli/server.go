package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"procap-study-service/internal/app"
	"procap-study-service/internal/config"
	"procap-study-service/internal/domain"
	"procap-study-service/internal/infra/memory"
	pggateway "procap-study-service/internal/infra/postgres"
	redisstore "procap-study-service/internal/infra/redis"
	transport "procap-study-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the study server",
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var (
		users     app.UserRepository
		questions app.QuestionRepository
		notebooks app.NotebookRepository
		answers   app.AnswerRepository
	)
	if pool != nil {
		gateway := pggateway.NewGateway(pool)
		users = gateway.Users()
		questions = gateway.Questions()
		notebooks = gateway.Notebooks()
		answers = gateway.Answers()
	} else {
		gateway := memory.NewGateway()
		gateway.SeedQuestions(sampleQuestions())
		gateway.SeedNotebooks(sampleNotebooks())
		users = gateway.Users()
		questions = gateway.Questions()
		notebooks = gateway.Notebooks()
		answers = gateway.Answers()
	}

	notebookTTL := config.TTLDuration(cfg.Notebooks.TTL, 10*time.Minute)
	notebooks = memory.NewNotebookCache(notebooks, notebookTTL)

	var store app.SessionStore
	if redisClient != nil {
		sessionTTL := config.TTLDuration(cfg.Redis.TTL, 0)
		store = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		store = memory.NewSessionStore()
	}

	auth := app.NewAuthService(users, store)
	study := app.NewStudyService(questions, notebooks, answers)
	leaderboard := app.NewLeaderboardService(answers, users)
	wsHandler := transport.NewWSHandler(auth, study, leaderboard, store)

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
		log.Printf("starting study service on :%s", finalPort)
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

// sampleQuestions provides a minimal question bank for running without
// Postgres; swap in the real database in production.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            "q1",
			SourceID:      "demo-1",
			Difficulty:    "Fácil",
			QuestionText:  "Qual é a capital da França?",
			Options:       []string{"A) Londres", "B) Paris", "C) Madri", "D) Roma"},
			CorrectAnswer: "B) Paris",
			Explanation:   "Paris é a capital da França desde o século X.",
		},
		{
			ID:            "q2",
			SourceID:      "demo-2",
			Difficulty:    "Médio",
			QuestionText:  "Quanto é 7 x 8?",
			Options:       []string{"A) 54", "B) 56", "C) 58", "D) 64"},
			CorrectAnswer: "B) 56",
			Explanation:   "7 x 8 = 56.",
		},
		{
			ID:            "q3",
			SourceID:      "demo-3",
			Difficulty:    "Difícil",
			QuestionText:  "Qual instituição executa a política monetária no Brasil?",
			Options:       []string{"A) Tesouro Nacional", "B) CVM", "C) Banco Central", "D) BNDES"},
			CorrectAnswer: "C) Banco Central",
			Explanation:   "A execução da política monetária é atribuição do Banco Central.",
		},
	}
}

func sampleNotebooks() []domain.QuestionNotebook {
	return []domain.QuestionNotebook{
		{ID: "nb-demo", Name: "Caderno de demonstração", QuestionIDs: []string{"q3", "q1", "q2"}},
	}
}
