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

	"github.com/example/hyperapi/internal/application"
	"github.com/example/hyperapi/internal/config"
	"github.com/example/hyperapi/internal/feed"
	httptransport "github.com/example/hyperapi/internal/http"
	"github.com/example/hyperapi/internal/persistence/sqlite"
	"github.com/example/hyperapi/internal/scheduler"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	calendars, err := config.LoadCalendars(cfg.CalendarsPath)
	if err != nil {
		logger.Error("failed to load calendars", "path", cfg.CalendarsPath, "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(ctx, cfg.SQLiteDSN, logger)
	if err != nil {
		logger.Error("failed to open cache store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close cache store", "error", cerr)
		}
	}()

	sources := make([]application.FeedSource, 0, len(calendars))
	for _, cal := range calendars {
		sources = append(sources, application.FeedSource{Group: cal.Group, URL: cal.URL})
	}

	fetcher := feed.NewFetcher(logger)
	refreshService := application.NewRefreshService(sources, fetcher, store, logger)
	timetableService := application.NewTimetableService(store, cfg.ClockOffset, time.Now, logger)

	runner := scheduler.New(cfg.RefreshInterval, refreshService.RunCycle, logger)
	go runner.Run(ctx)

	middleware := []func(http.Handler) http.Handler{
		httptransport.RequestLogger(logger),
		httptransport.CORS(),
	}
	if cfg.BasicAuthEnabled() {
		middleware = append(middleware, httptransport.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthHash, logger))
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Timetable:  httptransport.NewTimetableHandler(timetableService, logger),
		Middleware: middleware,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("timetable API listening", "addr", server.Addr, "groups", len(calendars))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
