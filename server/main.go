package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "", "Path to YAML config; watched for collision changes")
	dbPath := flag.String("db", "", "SQLite path for run history (overrides config, \"-\" disables)")
	clientDir := flag.String("client", "", "Path to client directory (default: ../client)")
	flag.Parse()

	level := new(slog.LevelVar)
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			log.Error("config load failed", "path", *configPath, "err", err)
			os.Exit(1)
		}
	}
	level.Set(cfg.SlogLevel())
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	if *clientDir == "" {
		exe, _ := os.Executable()
		*clientDir = filepath.Join(filepath.Dir(exe), "..", "client")
		// Fallback for development
		if _, err := os.Stat(*clientDir); os.IsNotExist(err) {
			*clientDir = "../client"
		}
		if _, err := os.Stat(*clientDir); os.IsNotExist(err) {
			*clientDir = ""
		}
	}

	var db *DB
	if cfg.DBPath != "" && cfg.DBPath != "-" {
		var err error
		if db, err = OpenDB(cfg.DBPath); err != nil {
			log.Error("database open failed", "path", cfg.DBPath, "err", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	if err := run(cfg, db, *configPath, *clientDir, level, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, db *DB, configPath, clientDir string, level *slog.LevelVar, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := NewHub(cfg, db, log)
	server := &http.Server{Addr: cfg.Addr, Handler: SetupRoutes(hub, clientDir)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error {
		log.Info("server starting", "addr", cfg.Addr, "client", clientDir,
			"backend", cfg.Collision.Backend, "workers", cfg.Collision.Workers, "tags", cfg.Collision.Tags)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sctx)
	})

	if configPath != "" {
		cw, err := NewConfigWatcher(configPath, log)
		if err != nil {
			log.Warn("config watching disabled", "path", configPath, "err", err)
		} else {
			g.Go(func() error {
				return cw.Run(ctx, func(next Config) {
					level.Set(next.SlogLevel())
					hub.sessions.Reconfigure(next.Collision)
				})
			})
		}
	}

	return g.Wait()
}
