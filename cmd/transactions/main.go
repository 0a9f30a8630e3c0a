package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sony/gobreaker"

	"bankledger/internal/accountclient"
	"bankledger/internal/config"
	"bankledger/internal/events"
	"bankledger/internal/infra/logging"
	"bankledger/internal/infra/metrics"
	"bankledger/internal/infra/pgutils"
	ledgerpg "bankledger/internal/repos/ledger/postgres"
	"bankledger/internal/services/orchestrator"
	"bankledger/internal/transactionapi"
	"bankledger/pkg/envconf"
	"bankledger/pkg/shutdownqueue"
)

type transactionsConfig struct {
	Port            uint16        `env:"TRANSACTIONS_PORT" default:"8082"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"15s"`
	Postgres        config.PostgresConfig
	Kafka           config.KafkaConfig
	AccountService  accountServiceConfig
	Breaker         accountclient.BreakerConfig
}

type accountServiceConfig struct {
	BaseURL        string        `env:"ACCOUNT_SERVICE_URL" default:"http://localhost:8081"`
	RequestTimeout time.Duration `env:"ACCOUNT_SERVICE_TIMEOUT" default:"5s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running transactions service: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(transactionsConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.Setup("transactions", cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		slog.Info("close db pool")
		return db.Close()
	})

	publisher := events.NewKafkaPublisher(cfg.Kafka.BrokerList(), cfg.Kafka.WriteTimeout)

	shutdownqueue.Add(func(context.Context) error {
		slog.Info("close event publisher")
		return publisher.Close()
	})

	collector := metrics.NewCollector()

	// --- Wiring ---
	httpClient := accountclient.NewHTTP(cfg.AccountService.BaseURL, cfg.AccountService.RequestTimeout)
	client := accountclient.NewBreaker(httpClient, cfg.Breaker, func(_, to gobreaker.State) {
		collector.SetBreakerState(breakerStateValue(to))
	})

	svc := orchestrator.New(ledgerpg.New(db), client, publisher, collector)
	srv := transactionapi.NewServer(cfg.Port, svc, collector.Handler())

	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// --- Run server ---
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("transactions service started", "port", cfg.Port, "account_service", cfg.AccountService.BaseURL)

	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
