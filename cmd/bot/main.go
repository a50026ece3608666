package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tele "gopkg.in/telebot.v4"

	"crmbot/core/config"
	"crmbot/core/database"
	"crmbot/core/logger"
	tg "crmbot/core/telegram"
	"crmbot/core/telegram/middleware"
	"crmbot/crm/authz"
	"crmbot/crm/flows"
	"crmbot/crm/handlers"
	"crmbot/crm/session"
	"crmbot/crm/sms"
	"crmbot/crm/storage"
	"crmbot/health"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := logger.InitLogger(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Dir:     cfg.Logging.Dir,
		File:    cfg.Logging.File,
		Profile: cfg.Logging.Profile,
	}); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Shutdown() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.LogEvent(ctx, logger.L, slog.LevelError, "app.failed",
			slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := database.RunMigrations(cfg.Database); err != nil {
		return err
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	store := storage.NewPostgres(db)
	sessions := session.NewRegistry()
	gate := authz.NewGate(store)
	machine := flows.NewMachine(store, sessions, gate, sms.NewLogSender(), handlers.MainMenu)
	h := handlers.New(handlers.Options{
		AdminID:       cfg.Telegram.AdminID,
		AdminUsername: cfg.Telegram.AdminUsername,
	}, store, machine, gate)

	healthErr := make(chan error, 1)
	go func() {
		healthErr <- health.NewServer(cfg.HTTP.Port).Run(ctx)
	}()

	botErr := make(chan error, 1)
	go func() {
		botErr <- tg.Run(ctx, tg.RunOptions{
			Token:                  cfg.Telegram.Token,
			LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
			Middlewares:            botMiddlewares(cfg),
			Routes:                 h.Routes(),
			Commands:               h.Commands(),
		})
	}()

	select {
	case err := <-botErr:
		return err
	case err := <-healthErr:
		return err
	}
}

func botMiddlewares(cfg *config.Config) []tg.Middleware {
	exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		exclude[kind] = struct{}{}
	}
	return []tg.Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "rate_limit", Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
			Window:  time.Duration(cfg.RateLimit.WindowMS) * time.Millisecond,
			Burst:   cfg.RateLimit.Burst,
			Exclude: exclude,
			OnLimited: func(c tele.Context) error {
				return c.Send("Slow down, please.")
			},
		})},
		{Name: "logger", Use: middleware.LoggerMiddleware},
	}
}
