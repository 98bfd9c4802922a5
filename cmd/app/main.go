package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"kitchenpos/cmd"
	"kitchenpos/internal/adapters/out/postgres"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: configs.LogLevel}))
	slog.SetDefault(logger)

	gormDB, err := postgres.Open(postgres.Options{
		DSN: postgres.DSN(configs.DBHost, configs.DBPort, configs.DBUser,
			configs.DBPassword, configs.DBName, configs.DBSslMode),
	}, logger)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err := postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}

	e, err := app.CreateRouter()
	if err != nil {
		log.Fatalf("Error building router: %v", err)
	}

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", configs.Addr())
		if err := e.Start(configs.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
		defer cancel()

		// Stop taking requests first so no event is published after the
		// broadcaster closes.
		err := e.Shutdown(shutdownCtx)
		jobManager.StopAll()
		return errors.Join(err, app.Close(shutdownCtx), postgres.Close(gormDB))
	})

	if err := g.Wait(); err != nil {
		logger.Error("Shutdown finished with errors", "error", err)
		os.Exit(1)
	}
	logger.Info("Stopped")
}
