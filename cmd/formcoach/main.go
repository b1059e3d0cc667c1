package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/claude/formcoach/internal/config"
	"github.com/claude/formcoach/internal/engine"
	"github.com/claude/formcoach/internal/localstore"
	formcoachmcp "github.com/claude/formcoach/internal/mcp"
	"github.com/claude/formcoach/internal/models"
	"github.com/claude/formcoach/internal/server"
	"github.com/claude/formcoach/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("FormCoach starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Load exercise catalog
	exercises, err := models.LoadExercises(cfg.Exercises)
	if err != nil {
		log.Error("failed to load exercises", "error", err)
		os.Exit(1)
	}
	log.Info("exercises loaded", "count", len(exercises))

	// Open result store
	ctx := context.Background()
	var store server.ResultStore

	switch cfg.Database.Driver {
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = db
		log.Info("database connected", "driver", "postgres")
	case "sqlite":
		if *migrateOnly {
			log.Info("migrate-only: sqlite schema is created on open, exiting")
			return
		}
		ls, err := localstore.Open(cfg.Database.Path)
		if err != nil {
			log.Error("failed to open result store", "error", err)
			os.Exit(1)
		}
		defer ls.Close()
		store = ls
		log.Info("database connected", "driver", "sqlite", "path", cfg.Database.Path)
	}

	// Create server
	sessionCfg := engine.Config{
		Calibration:   cfg.Session.Calibration(),
		MinVisibility: cfg.Session.MinVisibility,
	}
	srv := server.New(store, exercises, sessionCfg, cfg.Session.CueWindow(), cfg.Auth.APIKey, log)

	var handler http.Handler = srv
	if cfg.MCP.Enabled {
		mcpSrv := formcoachmcp.New(store, exercises, Version, log)
		mux := http.NewServeMux()
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv))
		mux.Handle("/", srv)
		handler = mux
		log.Info("mcp enabled", "path", "/mcp")
	}

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: handler}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
