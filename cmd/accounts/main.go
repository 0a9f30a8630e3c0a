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

	"bankledger/internal/accountapi"
	"bankledger/internal/config"
	"bankledger/internal/events"
	"bankledger/internal/infra/logging"
	"bankledger/internal/infra/metrics"
	"bankledger/internal/infra/pgutils"
	accountspg "bankledger/internal/repos/accounts/postgres"
	"bankledger/internal/services/mutator"
	"bankledger/pkg/envconf"
	"bankledger/pkg/shutdownqueue"
)

type accountsConfig struct {
	Port            uint16        `env:"ACCOUNTS_PORT" default:"8081"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"15s"`
	Postgres        config.PostgresConfig
	Kafka           config.KafkaConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running accounts service: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(accountsConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.Setup("accounts", cfg.LogLevel)

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
	svc := mutator.New(db, accountspg.New(db), publisher, collector)
	srv := accountapi.NewServer(cfg.Port, svc, collector.Handler())

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

	slog.Info("accounts service started", "port", cfg.Port)

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
