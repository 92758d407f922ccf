package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mt2-alerts/config"
	"mt2-alerts/scraper/storefront"
	"mt2-alerts/services"
	"mt2-alerts/storage"
	"mt2-alerts/utils"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	if err := godotenv.Load(); err != nil {
		utils.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}
	utils.SetDebug(cfg.Debug)

	if err := cfg.Validate(); err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorders, closeRecorders := openRecorders(ctx, cfg)
	defer closeRecorders()

	checker := services.NewChecker(cfg, openSession, services.NewNotifier(cfg), recorders...)

	if cfg.Schedule == "" {
		code := runOnce(ctx, checker)
		closeRecorders()
		stop()
		os.Exit(code)
	}

	if err := runScheduled(ctx, cfg.Schedule, checker); err != nil {
		utils.Error("Scheduler: %v", err)
		closeRecorders()
		os.Exit(1)
	}
}

func openSession(ctx context.Context, cfg *config.Config) (services.ListingSource, error) {
	session, err := storefront.OpenSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// runOnce performs one check and maps its outcome to a process exit code.
func runOnce(ctx context.Context, checker *services.Checker) int {
	utils.Section("Storefront price check")

	result, err := checker.Run(ctx)
	if err == nil {
		if result.Warning != "" {
			utils.Warn("Check finished with warning: %s", result.Warning)
		} else {
			utils.Success("Check finished in %v", result.Duration().Round(time.Millisecond))
		}
		return 0
	}

	var missing *config.MissingError
	var navErr *storefront.NavigationError
	var unhandled *services.UnhandledError
	switch {
	case errors.As(err, &missing):
		utils.Error("%v", err)
	case errors.As(err, &navErr):
		if navErr.Timeout() {
			utils.Error("Timed out during %q: the store may be down or its layout changed", navErr.Step)
		} else {
			utils.Error("%v", err)
		}
	case errors.As(err, &unhandled):
		utils.Error("%v\n%s", err, unhandled.Stack)
	default:
		utils.Error("Error: %v", err)
	}
	return 1
}

// runScheduled runs a check on every tick of spec until ctx is cancelled.
// Overlapping ticks are skipped while a check is still running.
func runScheduled(ctx context.Context, spec string, checker *services.Checker) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		runOnce(ctx, checker)
	})
	if err != nil {
		return err
	}

	c.Start()
	utils.Info("Price check scheduled: %s", spec)

	<-ctx.Done()
	utils.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	return nil
}

func openRecorders(ctx context.Context, cfg *config.Config) ([]services.RunRecorder, func()) {
	var recorders []services.RunRecorder
	var closers []func()

	if cfg.CSVPath != "" {
		recorders = append(recorders, storage.NewCSVWriter(cfg.CSVPath))
	}

	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresWriter(ctx, cfg.DatabaseURL)
		if err != nil {
			utils.Warn("Run history disabled: %v", err)
		} else if err := pg.EnsureSchema(ctx); err != nil {
			utils.Warn("Run history disabled: %v", err)
			pg.Close()
		} else {
			recorders = append(recorders, pg)
			closers = append(closers, pg.Close)
		}
	}

	closed := false
	return recorders, func() {
		if closed {
			return
		}
		closed = true
		for _, fn := range closers {
			fn()
		}
	}
}
