package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "caltrack/internal/adapter/http"
	"caltrack/internal/adapter/imaging"
	"caltrack/internal/adapter/memory"
	"caltrack/internal/app"
	"caltrack/internal/domain"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	var cfg Config
	kong.Parse(&cfg,
		kong.Name("caltrack"),
		kong.Description("Calorie, protein and weight tracker for a small household."),
		kong.UsageOnError(),
		kong.Vars{"default_roster": domain.DefaultRoster},
	)

	logger, err := newLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg, logger); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func run(ctx context.Context, cfg *Config, logger *log.Logger) error {
	roster, err := domain.ParseRoster(cfg.Users)
	if err != nil {
		return fmt.Errorf("users: %w", err)
	}

	ledger, closer := openLedger(ctx, cfg, roster, logger)
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	db := memory.New()
	store := app.NewLogStore(db, db, ledger, logger).WithWriteTimeout(cfg.WriteTimeout)
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	_ = store.Load(loadCtx) // logged by the store; an empty log is still usable
	cancel()

	photos := app.NewPhotoService(store, roster, newVision(cfg, logger),
		imaging.New(cfg.MaxImageEdge, cfg.JPEGQuality), logger)
	h := adapthttp.New(
		app.NewStatsService(store, roster),
		app.NewLogService(store, roster),
		photos,
		app.NewWeightService(store, roster),
		roster, logger, cfg.WebDir,
	).WithRequestTimeout(cfg.RequestTimeout).Handler()

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "users", len(roster.All()), "durable", store.Durable())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			store.Close()
			return err
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	store.Close()
	return nil
}
