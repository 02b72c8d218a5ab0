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

	"paramforge/internal/api"
	"paramforge/internal/box"
	"paramforge/internal/config"
	"paramforge/internal/gamedata"
	"paramforge/internal/manifest"
	"paramforge/internal/pg"
)

func main() {
	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(2)
	}
	log, err := cfg.Logger(os.Stderr)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	// 1. Class registry: the compiled manifest, or the bundled sample schema.
	d, source, err := loadDispatch(cfg, log)
	if err != nil {
		return err
	}
	reg := d.Registry()
	log.Info("classes loaded", "source", source, "data_version", reg.DataVersion,
		"classes", len(reg.Classes()), "final", len(reg.Finals()))

	// 2. Optional Postgres persistence.
	var persist api.Persister
	var rows []pg.Row
	if cfg.DBURL != "" {
		db, err := pg.Open(ctx, cfg.DBURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer db.Close()

		store := pg.NewStore(db, d, log)
		if cfg.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				return err
			}
		}
		rows, err = store.LoadAll(ctx)
		if err != nil {
			return err
		}
		persist = store
	}

	storage := api.NewStorage(d, persist, log)
	for _, r := range rows {
		storage.Put(&api.Record{ID: r.ID, Version: r.Version, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Box: r.Box})
	}
	log.Info("instances restored", "count", len(rows))

	// 3. HTTP API.
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: api.NewRouter(storage)}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// loadDispatch prefers the manifest at cfg.ManifestPath and falls back to
// the bundled sample schema with its typed wrappers.
func loadDispatch(cfg config.Config, log *slog.Logger) (*box.Dispatch, string, error) {
	if cfg.ManifestPath != "" {
		if _, err := os.Stat(cfg.ManifestPath); err == nil {
			reg, err := manifest.Load(cfg.ManifestPath)
			if err != nil {
				return nil, "", err
			}
			return box.NewDispatch(reg), cfg.ManifestPath, nil
		}
		log.Warn("manifest not found, using bundled sample schema", "manifest", cfg.ManifestPath)
	}
	d, err := gamedata.Dispatch(log)
	if err != nil {
		return nil, "", err
	}
	return d, "gamedata", nil
}
