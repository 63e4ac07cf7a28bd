package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sadaqapass/sadaqa/internal/auth"
	"github.com/sadaqapass/sadaqa/internal/config"
	"github.com/sadaqapass/sadaqa/internal/http_api"
	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/internal/notificator"
	"github.com/sadaqapass/sadaqa/internal/payment"
	"github.com/sadaqapass/sadaqa/internal/replika"
	"github.com/sadaqapass/sadaqa/internal/repository"
	"github.com/sadaqapass/sadaqa/internal/sadaqa"
	"github.com/sadaqapass/sadaqa/pkg/logger"
	"github.com/sadaqapass/sadaqa/pkg/validation"
)

const stopTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "sadaqa",
		Usage: "Sadaqa is the charity mini-app backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.IntFlag{Name: "api-port", Usage: "HTTP API port"},
			&cli.StringFlag{Name: "redis-addr", Usage: "Redis address for the statistics cache"},
			&cli.BoolFlag{Name: "in-memory", Usage: "Use the in-process store (development only)"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and background workers",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema and exit",
				Action: migrate,
			},
			{
				Name:   "sweep-expired",
				Usage:  "Expire overdue campaigns once and exit",
				Action: sweepExpired,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the environment and applies the global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("redis-addr") {
		cfg.RedisAddr = c.String("redis-addr")
	}
	if c.IsSet("in-memory") {
		cfg.InMemory = c.Bool("in-memory")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}
	return cfg, nil
}

// openRepository connects the configured store. Postgres is migrated on start.
func openRepository(cfg *config.Config, log *logger.Logger) (models.Repository, error) {
	if cfg.InMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		return repository.NewMemoryDB(), nil
	}
	db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// app is the wired service graph.
type app struct {
	log        *logger.Logger
	repo       models.Repository
	dispatcher *notificator.Dispatcher
	telegram   *notificator.TelegramNotificator
	sadaqa     models.SadaqaI
}

func build(cfg *config.Config, log *logger.Logger) (*app, error) {
	repo, err := openRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	var cache replika.Cache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := replika.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			log.Warn("Redis unavailable, statistics are not cached", "addr", cfg.RedisAddr, "error", err)
		} else {
			cache = replika.NewRedisCache(client)
		}
	}
	mirror := replika.NewClient(log, cfg.EReplikaAPIURL, cfg.EReplikaAPIToken, cache, cfg.StatisticsCacheTTL)
	if !mirror.Enabled() {
		log.Warn("E_REPLIKA_API_URL is not set, statistics mirror disabled")
	}

	dispatcher := notificator.NewDispatcher(log, cfg.NotifyQueueSize)
	telegram, err := notificator.NewTelegramNotificator(log, cfg.TelegramBotToken)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	email := notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender)
	notifications := notificator.NewNotificator(log, dispatcher, telegram, email)

	gateway := payment.NewGateway(cfg, log)
	webhooks := payment.NewWebhooks(cfg.YooKassaWebhookSecret, cfg.CloudPaymentsAPISecret)

	return &app{
		log:        log,
		repo:       repo,
		dispatcher: dispatcher,
		telegram:   telegram,
		sadaqa:     sadaqa.NewSadaqa(repo, gateway, webhooks, notifications, mirror, dispatcher, log, cfg),
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	a.telegram.Stop()
	a.dispatcher.Stop(ctx)
	if err := a.repo.Close(); err != nil {
		a.log.Error("Failed to close database", "error", err)
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	if err := validation.RegisterGin(); err != nil {
		return fmt.Errorf("failed to register validators: %v", err)
	}
	if !cfg.Development && len(cfg.AdminTelegramIDs) == 0 {
		log.Warn("ADMIN_TELEGRAM_IDS is empty, admin endpoints are closed")
	}

	a, err := build(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	apiServer := http_api.NewHTTPServer(a.sadaqa, cfg, tokens, log)

	a.dispatcher.Start()
	a.telegram.Start()
	a.sadaqa.Start()
	go apiServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", "signal", sig.String())

	if err := apiServer.Shutdown(); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	a.sadaqa.Stop()
	return nil
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	repo, err := openRepository(cfg, log)
	if err != nil {
		return err
	}
	return repo.Close()
}

func sweepExpired(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	a, err := build(cfg, log)
	if err != nil {
		return err
	}
	// Owners are notified through the dispatcher, so it must drain before exit.
	a.dispatcher.Start()
	defer a.close()

	expired, err := a.sadaqa.SweepExpired(c.Context, time.Now())
	if err != nil {
		return err
	}
	log.Info("Expired campaigns swept", "count", len(expired))
	return nil
}
