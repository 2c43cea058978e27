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

	"github.com/airightslab/monitor/app/ai"
	"github.com/airightslab/monitor/app/api"
	"github.com/airightslab/monitor/app/cfg"
	"github.com/airightslab/monitor/app/config"
	"github.com/airightslab/monitor/app/database"
	"github.com/airightslab/monitor/app/pipeline"
	"github.com/airightslab/monitor/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting AI Rights Monitor server...", "version", appCfg.Version)

	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	sources, err := config.NewLoader(appCfg.SourcesFile).Load()
	if err != nil {
		slog.Error("Failed to load sources", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded sources",
		"feeds", len(sources.Feeds),
		"search_terms", len(sources.Academic.SearchTerms),
		"podcast_feeds", len(sources.Podcasts.Feeds))

	repo := database.NewContentRepository(db)

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 5,
		},
	}

	enricher := ai.NewClient(ai.Config{
		APIKey:       appCfg.OpenAIAPIKey,
		BaseURL:      appCfg.OpenAIBaseURL,
		ChatModel:    appCfg.OpenAIModel,
		WhisperModel: appCfg.WhisperModel,
	}, httpClient)

	extractor := pipeline.NewExtractor()
	pacing := time.Duration(appCfg.RequestPacing) * time.Second

	feedAdapter := pipeline.NewFeedAdapter(httpClient, extractor, sources.Feeds, appCfg.UserAgent)
	academicAdapter := pipeline.NewAcademicAdapter(httpClient, sources.Academic.SearchTerms,
		sources.Academic.ResultsPerTerm, pacing, appCfg.UserAgent)
	podcastAdapter := pipeline.NewPodcastAdapter(httpClient, enricher, repo, sources.Podcasts.Feeds,
		sources.Podcasts.EpisodesPerFeed, pacing, appCfg.UserAgent)

	orchestrator := pipeline.NewOrchestrator(repo, enricher, feedAdapter, academicAdapter, podcastAdapter)

	scheduler := tasks.NewScheduler(orchestrator, time.Duration(appCfg.SchedulerInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(repo, orchestrator)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:        ":" + appCfg.Port,
		Handler:     server,
		ReadTimeout: 30 * time.Second,
		// Pipeline triggers respond only after the run finishes, and a
		// run paces itself between external calls
		WriteTimeout: 15 * time.Minute,
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

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler and database are stopped via defer
	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}
