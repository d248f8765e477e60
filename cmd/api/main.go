package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sidebar-toolkit/internal/config"
	"sidebar-toolkit/internal/http"
	"sidebar-toolkit/internal/llm"
	"sidebar-toolkit/internal/markdown"
	"sidebar-toolkit/internal/noticeclient"
	"sidebar-toolkit/internal/service"
	"sidebar-toolkit/internal/settings"
	"sidebar-toolkit/internal/storage"
	"sidebar-toolkit/internal/supabase"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API backs the sidebar toolkit: the text differ, JSON and markdown
// tools, the chat client, settings and the announcement server.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Sidebar Toolkit API
//   description: |
//     Backend for the browser sidebar toolkit. The notice endpoints
//     (/api/login, /api/list, /api/publish, /api/latest) are also served
//     to the admin CLI.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	store := settings.New(storage.NewBlobRepo(db))

	var noticeStore service.NoticeStore
	switch cfg.NoticeBackend {
	case config.BackendSupabase:
		noticeStore = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey)
	default:
		noticeStore = service.NewSQLiteNoticeStore(storage.NewNoticeRepo(db))
	}
	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD is not set, admin login is disabled")
	}
	noticeService := service.NewNoticeService(noticeStore, cfg.AdminPassword)
	slog.Info("Notice server initialized", "backend", cfg.NoticeBackend)

	chatService := service.NewChatService(llm.NewClient(), store)

	noticeViewer := noticeclient.NewClient(cfg.NoticeBase(), store)
	slog.Debug("Notice client configured", "base_url", cfg.NoticeBase())

	router := http.NewRouter(&http.Deps{
		ChatService:    chatService,
		NoticeService:  noticeService,
		Settings:       store,
		NoticeViewer:   noticeViewer,
		Markdown:       markdown.New(),
		DB:             db,
		NoticeBackend:  cfg.NoticeBackend,
		CompareDelay:   cfg.DiffCompareDelay,
		SelectDelay:    cfg.DiffSelectDelay,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("API server failed to start: %v", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}
