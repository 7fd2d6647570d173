package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/kijiji-watch/internal/config"
	"github.com/crucial707/kijiji-watch/internal/db"
	"github.com/crucial707/kijiji-watch/internal/kijiji"
	"github.com/crucial707/kijiji-watch/internal/notify"
	"github.com/crucial707/kijiji-watch/internal/repo"
	"github.com/crucial707/kijiji-watch/internal/scanner"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	if cfg.Env == "prod" {
		if cfg.JWTSecret == "" || cfg.JWTSecret == "supersecretkey" {
			slog.Error("JWT_SECRET must be set to a real value in prod")
			os.Exit(1)
		}
		if cfg.APIToken == "dev-token" {
			slog.Error("API_TOKEN must be set to a real value in prod")
			os.Exit(1)
		}
	}

	database, err := db.Connect(cfg.DBPath)
	if err != nil {
		slog.Error("database connect failed", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(database); err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	client := kijiji.NewClient()
	client.Init(context.Background())

	discord := notify.NewDiscord()

	sc := scanner.New(
		repo.NewSearchRepo(database),
		repo.NewResultRepo(database),
		client,
		discord,
		scanner.NewCronScheduler(),
		scanner.Options{
			ReconcileInterval: cfg.ReconcileInterval,
			DispatchDelay:     cfg.DispatchDelay,
			ImmediateStart:    cfg.ImmediateStart,
		},
	)
	if err := sc.Start(context.Background()); err != nil {
		slog.Error("scanner start failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg, sc, client, discord),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			slog.Info("listening with TLS", "port", cfg.Port)
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		slog.Info("listening", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	sc.Stop()
	if err := database.Close(); err != nil {
		slog.Error("close database", "error", err)
	}
}

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
