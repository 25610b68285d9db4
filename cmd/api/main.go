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

	"github.com/joho/godotenv"

	"github.com/HazemSalah29/bracketesports-sub001/internal/api"
	"github.com/HazemSalah29/bracketesports-sub001/internal/infra/logging"
	"github.com/HazemSalah29/bracketesports-sub001/internal/infra/pgutils"
	"github.com/HazemSalah29/bracketesports-sub001/internal/services/entry"
	"github.com/HazemSalah29/bracketesports-sub001/internal/services/ledger"
	"github.com/HazemSalah29/bracketesports-sub001/internal/services/purchase"
	"github.com/HazemSalah29/bracketesports-sub001/pkg/envconf"
	"github.com/HazemSalah29/bracketesports-sub001/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// Missing .env is fine; in deployed environments config comes from
	// real environment variables.
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON("api", cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		return dbConns.Close()
	})

	// --- Services ---
	ledgerSvc := ledger.New(dbConns)
	entrySvc := entry.New(dbConns, entry.Policy{RefundLeadTime: cfg.RefundLeadTime})

	gateway := purchase.NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewayAPIKey)
	purchaseSvc := purchase.New(ledgerSvc, gateway, cfg.CoinPriceCents)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.Deps{
		Ledger:   ledgerSvc,
		Entry:    entrySvc,
		Purchase: purchaseSvc,
	})

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
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

	slog.Info("API started", "port", cfg.Port)

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
