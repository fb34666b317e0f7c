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

	"github.com/ymdt/tdnet-watch/app/analyzer"
	"github.com/ymdt/tdnet-watch/app/api"
	"github.com/ymdt/tdnet-watch/app/cfg"
	"github.com/ymdt/tdnet-watch/app/database"
	"github.com/ymdt/tdnet-watch/app/disclosure"
	"github.com/ymdt/tdnet-watch/app/tdnet"
	"github.com/ymdt/tdnet-watch/app/watchlist"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting TDnet Watch", "version", appCfg.Version)

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
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	analysisRepo := database.NewAnalysisRepository(db)

	watchlists := watchlist.NewConfigCache(appCfg.WatchlistsDir)
	if err := watchlists.Run(); err != nil {
		slog.Error("Failed to load watchlists", "dir", appCfg.WatchlistsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Watchlists loaded", "count", watchlists.Count())

	classifier := disclosure.NewClassifier()
	screener := disclosure.NewScreener(classifier)
	feedClient := tdnet.NewClient(appCfg.FeedBaseURL, appCfg.UserAgent)

	downloader := analyzer.NewDownloader(appCfg.UserAgent, appCfg.MaxPDFBytes)
	gemini := analyzer.NewGemini(appCfg.GeminiAPIKey, appCfg.GeminiModel)
	anlz := analyzer.New(analysisRepo, downloader, gemini, classifier, appCfg.AnalysisEnabled())
	if appCfg.AnalysisEnabled() {
		slog.Info("AI analysis enabled", "model", appCfg.GeminiModel)
	} else {
		slog.Info("AI analysis disabled, GEMINI_API_KEY not set")
	}

	handler := api.NewHandler(feedClient, screener, classifier, anlz,
		analysisRepo, watchlists, appCfg.FeedLimit)
	server := api.NewServer(handler, appCfg.AppPassword)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
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

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
