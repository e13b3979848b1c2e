package di

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	enrichmentRepo "github.com/reshetovitsme/tg-watch-relay/internal/modules/enrichment/repository"
	enrichmentService "github.com/reshetovitsme/tg-watch-relay/internal/modules/enrichment/service"
	feedService "github.com/reshetovitsme/tg-watch-relay/internal/modules/feed/service"
	messageRepo "github.com/reshetovitsme/tg-watch-relay/internal/modules/message/repository"
	messageService "github.com/reshetovitsme/tg-watch-relay/internal/modules/message/service"
	migrationService "github.com/reshetovitsme/tg-watch-relay/internal/modules/migration/service"
	routerService "github.com/reshetovitsme/tg-watch-relay/internal/modules/router/service"
	watchRepo "github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/repository"
	watchService "github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/service"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/config"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/database"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/metrics"
	httpServer "github.com/reshetovitsme/tg-watch-relay/internal/transport/http"
	"github.com/reshetovitsme/tg-watch-relay/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

const shutdownTimeout = 10 * time.Second

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Database
	do.Provide(injector, func(i do.Injector) (*sql.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		db, err := database.Open(context.Background(), cfg.DatabasePath)
		if err != nil {
			return nil, oops.With("database_path", cfg.DatabasePath, "context", "failed to open database").Wrap(err)
		}
		return db, nil
	})

	// Register Metrics
	do.Provide(injector, func(i do.Injector) (*prometheus.Registry, error) {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return registry, nil
	})
	do.Provide(injector, func(i do.Injector) (*metrics.Metrics, error) {
		return metrics.New(do.MustInvoke[*prometheus.Registry](i)), nil
	})

	// Register Watch Repository
	do.Provide(injector, func(i do.Injector) (watchRepo.Repository, error) {
		db := do.MustInvoke[*sql.DB](i)
		repo, err := watchRepo.NewSQLiteStorage(context.Background(), db)
		if err != nil {
			return nil, oops.With("context", "failed to initialize watch repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Message Repository
	do.Provide(injector, func(i do.Injector) (messageRepo.Repository, error) {
		db := do.MustInvoke[*sql.DB](i)
		repo, err := messageRepo.NewSQLiteStorage(context.Background(), db)
		if err != nil {
			return nil, oops.With("context", "failed to initialize message repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Market Data
	do.Provide(injector, func(i do.Injector) (enrichmentRepo.MarketData, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.UsesStaticMarketData() {
			slog.Info("Using static market data", "app_env", cfg.AppEnv)
			return enrichmentRepo.NewStatic(), nil
		}
		return enrichmentRepo.NewDexScreener(cfg.MarketDataURL, cfg.MarketDataRateLimit, cfg.MinLiquidityUSD), nil
	})

	// Register Watch Service
	do.Provide(injector, func(i do.Injector) (*watchService.Service, error) {
		repo := do.MustInvoke[watchRepo.Repository](i)
		return watchService.New(repo, do.MustInvoke[*metrics.Metrics](i)), nil
	})

	// Register Migration Service
	do.Provide(injector, func(i do.Injector) (*migrationService.Service, error) {
		repo := do.MustInvoke[watchRepo.Repository](i)
		return migrationService.New(repo, do.MustInvoke[*metrics.Metrics](i)), nil
	})

	// Register Message Service
	do.Provide(injector, func(i do.Injector) (*messageService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[messageRepo.Repository](i)
		return messageService.New(repo, cfg.JournalRetentionDuration()), nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		return feedService.New(do.MustInvoke[*messageService.Service](i)), nil
	})

	// Register Telegram Sender (bot is attached in the bot provider)
	do.Provide(injector, func(i do.Injector) (*telegram.Sender, error) {
		return telegram.NewSender(), nil
	})

	// Register Enrichment Pipeline
	do.Provide(injector, func(i do.Injector) (*enrichmentService.Pipeline, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return enrichmentService.New(
			do.MustInvoke[*telegram.Sender](i),
			do.MustInvoke[enrichmentRepo.MarketData](i),
			cfg.EnrichmentTimeoutDuration(),
			do.MustInvoke[*metrics.Metrics](i),
		), nil
	})

	// Register Router
	do.Provide(injector, func(i do.Injector) (*routerService.Router, error) {
		return routerService.New(
			do.MustInvoke[watchRepo.Repository](i),
			do.MustInvoke[*telegram.Sender](i),
			do.MustInvoke[*migrationService.Service](i),
			do.MustInvoke[*enrichmentService.Pipeline](i),
			do.MustInvoke[*messageService.Service](i),
			do.MustInvoke[*metrics.Metrics](i),
		), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegram.Handler, error) {
		return telegram.New(
			do.MustInvoke[*routerService.Router](i),
			do.MustInvoke[*watchService.Service](i),
			do.MustInvoke[*migrationService.Service](i),
		), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		server := httpServer.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*watchService.Service](i),
			do.MustInvoke[*migrationService.Service](i),
			do.MustInvoke[*feedService.Service](i),
			do.MustInvoke[*prometheus.Registry](i),
		)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Bot (needs to be initialized after handlers are ready)
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegram.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
			bot.WithServerURL(cfg.TelegramAPIURL),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		handler.RegisterHandlers(b)
		do.MustInvoke[*telegram.Sender](i).SetBot(b)

		return b, nil
	})

	return injector, nil
}

// Shutdown stops the HTTP server, drains background work and closes the
// database. The bot is stopped by cancelling the context passed to Start.
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, oops.With("context", "failed to stop http server").Wrap(err))
		}
	}

	if pipeline, err := do.Invoke[*enrichmentService.Pipeline](injector); err == nil && pipeline != nil {
		pipeline.Stop()
	}

	if journal, err := do.Invoke[*messageService.Service](injector); err == nil && journal != nil {
		journal.Stop()
	}

	if db, err := do.Invoke[*sql.DB](injector); err == nil && db != nil {
		if err := db.Close(); err != nil {
			errs = append(errs, oops.With("context", "failed to close database").Wrap(err))
		}
	}

	return stderrors.Join(errs...)
}
