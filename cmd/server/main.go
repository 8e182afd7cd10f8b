package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/partyledger/internal/adapter/http"
	"github.com/iho/partyledger/internal/adapter/http/handler"
	"github.com/iho/partyledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/partyledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/partyledger/internal/adapter/repository/redis"
	"github.com/iho/partyledger/internal/infrastructure/config"
	"github.com/iho/partyledger/internal/infrastructure/eventpublisher"
	"github.com/iho/partyledger/internal/infrastructure/logger"
	"github.com/iho/partyledger/internal/infrastructure/metrics"
	"github.com/iho/partyledger/internal/infrastructure/postgres"
	"github.com/iho/partyledger/internal/infrastructure/redis"
	"github.com/iho/partyledger/internal/usecase"
)

const limiterIdleTimeout = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	sourceRepo := postgresRepo.NewSourceRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	journal := postgresRepo.NewLedgerEntryRepository(pool)
	var entryRepo usecase.LedgerEntryRepository = journal
	if !useJournal(ctx, cfg.LedgerJournalEnabled, journal.Exists, log) {
		entryRepo = postgresRepo.NewNullLedgerEntryRepository()
	}

	var outboxRepo usecase.OutboxRepository = postgresRepo.NewOutboxRepository(pool)
	if !cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewNullOutboxRepository()
	}

	// Use cases
	poster := usecase.NewPostingUseCase(txManager, accountRepo, entryRepo, outboxRepo, retrier, idGen, m, log)
	transactionUC := usecase.NewTransactionUseCase(poster, sourceRepo, idGen)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, transactionUC, idGen)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, entryRepo, sourceRepo, m, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m.RateLimitHits)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		StatementHandler:   handler.NewStatementHandler(reconciliationUC, accountUC),
		ConsistencyHandler: handler.NewConsistencyHandler(reconciliationUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		HealthHandler: handler.NewHealthHandler(pool, handler.PingerFunc(func(ctx context.Context) error {
			return redis.Ping(ctx, redisClient)
		})),
		IdempotencyStore: redisRepo.NewIdempotencyStore(redisClient),
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      limiter,
		Metrics:          m,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.OutboxEnabled {
		publisher, err := newPublisher(cfg, redisClient, log)
		if err != nil {
			return err
		}

		relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  publisher,
			Observer:   m,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
		})

		g.Go(func() error {
			if err := relay.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("outbox relay: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(limiterIdleTimeout)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := limiter.CleanupLimiters(limiterIdleTimeout); n > 0 {
					log.Debug().Int("removed", n).Msg("pruned idle rate limiters")
				}
			}
		}
	})

	return g.Wait()
}

// useJournal reports whether statements should read the ledger_entries
// journal. A missing table falls back to deriving from transactions.
func useJournal(ctx context.Context, enabled bool, exists func(context.Context) (bool, error), log zerolog.Logger) bool {
	if !enabled {
		log.Info().Msg("ledger journal disabled, statements derive from transactions")
		return false
	}

	ok, err := exists(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to probe ledger journal, statements derive from transactions")
		return false
	}
	if !ok {
		log.Warn().Msg("ledger_entries table missing, statements derive from transactions")
		return false
	}

	return true
}

func newPublisher(cfg *config.Config, client goredis.UniversalClient, log zerolog.Logger) (eventpublisher.Publisher, error) {
	switch cfg.OutboxPublisher {
	case "", "log":
		return eventpublisher.NewLogPublisher(log), nil
	case "redis":
		return eventpublisher.NewStreamPublisher(client, cfg.OutboxStream, cfg.OutboxStreamMaxLen), nil
	default:
		return nil, fmt.Errorf("unknown outbox publisher %q", cfg.OutboxPublisher)
	}
}
