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

	"github.com/fastprodman/campushub/internal/api"
	"github.com/fastprodman/campushub/internal/config"
	"github.com/fastprodman/campushub/internal/infra/logging"
	"github.com/fastprodman/campushub/internal/infra/pgutils"
	"github.com/fastprodman/campushub/internal/repos"
	catmemory "github.com/fastprodman/campushub/internal/repos/catalog/memory"
	"github.com/fastprodman/campushub/internal/repos/memory"
	"github.com/fastprodman/campushub/internal/repos/postgres"
	"github.com/fastprodman/campushub/internal/repos/seed"
	"github.com/fastprodman/campushub/internal/services/ordering"
	"github.com/fastprodman/campushub/internal/services/payments"
	"github.com/fastprodman/campushub/internal/services/query"
	"github.com/fastprodman/campushub/internal/services/studyguide"
	"github.com/fastprodman/campushub/pkg/envconf"
	"github.com/fastprodman/campushub/pkg/shutdownqueue"
)

var errUnknownStore = errors.New("unknown store driver")

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
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	data := seed.Default()
	catalog := catmemory.New(data)

	store, err := openStore(ctx, cfg, data)
	if err != nil {
		return err
	}

	// --- Services ---
	notifier := api.NewNotifier()

	engine := ordering.New(store, catalog, cfg.Ordering, ordering.WithStatusListener(notifier))

	shutdownqueue.Add("order engine", func(c context.Context) error {
		slog.Info("Stop order engine")

		err := engine.Close(c)
		if err != nil {
			return fmt.Errorf("close engine: %w", err)
		}

		return nil
	})

	guides, err := studyguide.New(ctx, cfg.StudyGuide)
	if err != nil {
		return fmt.Errorf("init study guide: %w", err)
	}

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.Services{
		Orders:     engine,
		Payments:   payments.New(store),
		Query:      query.New(catalog, store),
		StudyGuide: guides,
		Notifier:   notifier,
	})

	// LIFO: the server stops before the engine and the database.
	shutdownqueue.Add("http server", func(c context.Context) error {
		slog.Info("Shut down server")

		notifier.Close()

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

	slog.Info("API started", "port", cfg.Port, "store", cfg.StoreDriver)

	// --- Wait until either context cancels or server errors out ---
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

// openStore builds the wallet store selected by cfg.StoreDriver. The memory
// store is loaded with data; postgres expects the migrator to have run.
func openStore(ctx context.Context, cfg *apiConfig, data seed.Data) (repos.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.NewSeeded(data), nil
	case config.StorePostgres:
		db, err := pgutils.OpenDB(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}

		shutdownqueue.Add("postgres", func(context.Context) error {
			slog.Info("Close database")

			err := db.Close()
			if err != nil {
				return fmt.Errorf("close db: %w", err)
			}

			return nil
		})

		return postgres.New(db), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownStore, cfg.StoreDriver)
	}
}
