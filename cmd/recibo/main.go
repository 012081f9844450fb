package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recibo/pkg/app"
	"recibo/pkg/db"

	"github.com/BurntSushi/toml"
	"github.com/go-pg/pg/v10"
	"github.com/vmkteam/embedlog"
)

const appName = "recibo"

var (
	flConfigPath = flag.String("config", "cfg/local.toml", "path to config file")
	flVerbose    = flag.Bool("verbose", false, "enable debug output")
	flJSONLogs   = flag.Bool("json", false, "enable json output")
	cfg          app.Config
)

func main() {
	flag.Parse()

	sl := embedlog.NewLogger(*flVerbose, *flJSONLogs)
	ctx := context.Background()

	if _, err := toml.DecodeFile(*flConfigPath, &cfg); err != nil {
		exitOnError(ctx, sl, err, "failed to read config")
	}

	exitOnError(ctx, sl, run(ctx, sl), "failed to run app")
}

func run(ctx context.Context, sl embedlog.Logger) error {
	pgdb := pg.Connect(cfg.Database)
	dbc := db.New(pgdb)

	version, err := dbc.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sl.Print(ctx, "connected to database", "version", version)

	if err := db.Migrate(cfg.Database); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	a, err := app.New(ctx, appName, sl, cfg, dbc)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		sl.Print(ctx, "shutting down", "app", appName)
		if err := a.Shutdown(5 * time.Second); err != nil {
			sl.Error(ctx, "failed to shutdown app gracefully", "err", err)
		}
	}()

	if err := a.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func exitOnError(ctx context.Context, sl embedlog.Logger, err error, msg string) {
	if err != nil {
		sl.Error(ctx, msg, "err", err)
		os.Exit(1)
	}
}
