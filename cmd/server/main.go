// Glimpse server - segments screen activity into searchable events
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/glimpse/internal/capture"
	"github.com/GriffinCanCode/glimpse/internal/config"
	"github.com/GriffinCanCode/glimpse/internal/frame"
	"github.com/GriffinCanCode/glimpse/internal/segment"
	"github.com/GriffinCanCode/glimpse/internal/sensitivity"
	"github.com/GriffinCanCode/glimpse/internal/server"
	"github.com/GriffinCanCode/glimpse/internal/store"
	"github.com/GriffinCanCode/glimpse/internal/store/sqlite"
	"github.com/GriffinCanCode/glimpse/internal/summarize"
	"github.com/GriffinCanCode/glimpse/internal/thumb"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg := config.Load()

	// Open the event store and put the async writer in front of it
	repo, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open event store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	writer := store.NewWriter(repo, store.DefaultWriterQueueSize)

	// Thumbnails are optional
	var thumbs segment.Thumbnailer
	if cfg.SaveThumbnails {
		tw, err := thumb.NewWriter(cfg.ThumbnailDir)
		if err != nil {
			slog.Error("failed to create thumbnail dir", "dir", cfg.ThumbnailDir, "error", err)
			os.Exit(1)
		}
		thumbs = tw
	}

	// Build the segmenter
	settings := segment.Settings{
		FrameDiffThreshold: cfg.FrameDiffThreshold,
		IdleCoalesce:       time.Duration(cfg.IdleCoalesceSeconds * float64(time.Second)),
		ExcludedApps:       cfg.ExcludedApps,
		SaveThumbnails:     cfg.SaveThumbnails,
		ThumbnailMaxWidth:  cfg.ThumbnailMaxWidth,
	}
	seg := segment.New(frame.NewComparator(), sensitivity.NewClassifier(), writer, thumbs, settings)

	// Wire capture to the segmenter
	pump := capture.NewPump(capture.New(), capture.NewMetadataSource(), seg, nil, cfg.CaptureRate, cfg.MetadataRate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pump.Run(ctx)

	// HTTP/WebSocket server
	srv := server.New(seg, repo, summarize.NewClient(cfg.SummarizerURL))
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("glimpse server starting", "http", cfg.HTTPAddr, "db", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	// Order matters: stop producing, flush the open event and release
	// the broadcaster, drain the writer queue, then close the store.
	pump.Stop()
	seg.Close(shutdownCtx)
	writer.Stop()
	if err := repo.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}
	slog.Info("shutdown complete")
}
