package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/explore-with-me/services/event-service/internal/application/comment"
	"github.com/baechuer/explore-with-me/services/event-service/internal/application/compilation"
	"github.com/baechuer/explore-with-me/services/event-service/internal/application/event"
	"github.com/baechuer/explore-with-me/services/event-service/internal/config"
	rediscache "github.com/baechuer/explore-with-me/services/event-service/internal/infrastructure/caching/redis"
	"github.com/baechuer/explore-with-me/services/event-service/internal/infrastructure/db/postgres"
	rabbitpub "github.com/baechuer/explore-with-me/services/event-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/explore-with-me/services/event-service/internal/infrastructure/stats"
	"github.com/baechuer/explore-with-me/services/event-service/internal/logger"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/handlers"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/router"
)

// sysClock implements event.Clock interface using system time
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server
	DB     *sqlx.DB
	Repo   *postgres.Repo

	Cache     *rediscache.Client
	Publisher *rabbitpub.Publisher
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("config load failed")
	}

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		zlog.Info().
			Str("db_user", u.User.Username()).
			Str("db_host", u.Host).
			Str("db_db", u.Path).
			Msg("db config loaded")
	}

	db, err := sqlx.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.DBMaxConns)
	db.SetMaxIdleConns(cfg.DBMaxConns / 2)

	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := db.PingContext(ctx)
		cancel()
		if err != nil {
			zlog.Fatal().Err(err).Msg("db ping failed")
		}
	}

	app := NewApp(cfg, db)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.StartOutbox(ctx)

	go func() {
		zlog.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server crashed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func NewApp(cfg *config.Config, db *sqlx.DB) *App {
	// 1) Infrastructure
	repo := postgres.New(db)
	categories := postgres.NewCategoryRepo(db)
	users := postgres.NewUserRepo(db)
	requests := postgres.NewRequestRepo(db)
	comments := postgres.NewCommentRepo(db)
	compilations := postgres.NewCompilationRepo(db)
	statsClient := stats.NewClient(cfg.StatsURL, cfg.StatsTimeout)

	// cache is optional; a nil *Client must not end up inside the interface
	var cache event.Cache
	var rc *rediscache.Client
	if cfg.RedisURL != "" {
		c, err := rediscache.New(cfg.RedisURL)
		if err != nil {
			zlog.Warn().Err(err).Msg("redis unavailable: event details will not be cached")
		} else {
			rc = c
			cache = c
			zlog.Info().Dur("ttl", cfg.CacheTTLDetails).Msg("redis cache ready")
		}
	}

	var rabbit *rabbitpub.Publisher
	if cfg.OutboxEnabled && cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange, cfg.RabbitQueue)
		if err != nil {
			zlog.Fatal().Err(err).Msg("rabbit publisher init failed")
		}
		rabbit = p
		zlog.Info().Str("exchange", p.Exchange()).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty or outbox disabled: outbox rows stay pending")
	}

	// 2) Application
	clock := sysClock{}
	eventSvc := event.New(event.Deps{
		Events:     repo,
		Categories: categories,
		Users:      users,
		Requests:   requests,
		Stats:      statsClient,
		Cache:      cache,
		Clock:      clock,
	}, event.Options{
		AppName:      cfg.AppName,
		StatsTimeout: cfg.StatsTimeout,
		TTLDetails:   cfg.CacheTTLDetails,
	})
	commentSvc := comment.New(comments, repo, users, requests, clock)
	compilationSvc := compilation.New(compilations, eventSvc)

	// 3) Transport
	httpHandler := router.New(
		handlers.NewEventsHandler(eventSvc),
		handlers.NewCommentsHandler(commentSvc),
		handlers.NewCompilationsHandler(compilationSvc),
		handlers.NewHealthHandler(db),
		cfg,
	)

	// 4) Server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &App{
		Config:    cfg,
		Server:    srv,
		DB:        db,
		Repo:      repo,
		Cache:     rc,
		Publisher: rabbit,
	}
}

// StartOutbox relays committed outbox rows until ctx ends. Without a
// publisher the rows stay pending for a later run.
func (a *App) StartOutbox(ctx context.Context) bool {
	if a.Publisher == nil {
		return false
	}
	a.Repo.StartOutboxWorker(ctx, a.Publisher)
	return true
}

func (a *App) Close() {
	if a.Publisher != nil {
		_ = a.Publisher.Close()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}
