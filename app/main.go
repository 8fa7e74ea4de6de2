package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"licitamonitor/app/api"
	"licitamonitor/app/cfg"
	"licitamonitor/app/database"
	"licitamonitor/app/notify"
	"licitamonitor/app/portal"
	"licitamonitor/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was requested
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting licitamonitor", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	biddingRepo := database.NewBiddingRepository(db)
	subscriberRepo := database.NewSubscriberRepository(db)

	profile, err := portal.LoadProfile(appCfg.PortalProfile)
	if err != nil {
		slog.Error("Failed to load portal profile", "path", appCfg.PortalProfile, "error", err)
		os.Exit(1)
	}
	if appCfg.PortalURL != "" {
		profile.FormURL = appCfg.PortalURL
	}

	provider := portal.PlaywrightProvider{
		Headless:       appCfg.Headless,
		ExecutablePath: appCfg.BrowserPath,
		UserAgent:      appCfg.UserAgent,
	}
	portalClient := portal.NewClient(profile, provider)

	notifier := notify.NewNotifier(appCfg.TelegramAPIURL, appCfg.TelegramToken, subscriberRepo)

	runner := tasks.NewRunner(portalClient, biddingRepo, notifier)

	scheduler := tasks.NewScheduler(runner, appCfg.CheckSchedule)
	if err := scheduler.Start(); err != nil {
		slog.Error("Failed to start scheduler", "schedule", appCfg.CheckSchedule, "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	apiHandler := api.NewHandler(biddingRepo, subscriberRepo, portalClient, runner, notifier)
	server := api.NewServer(apiHandler, appCfg.CronSecret)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
