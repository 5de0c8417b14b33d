package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heimdex/heimdex-timeline/internal/api"
	"github.com/heimdex/heimdex-timeline/internal/config"
	"github.com/heimdex/heimdex-timeline/internal/editor"
	"github.com/heimdex/heimdex-timeline/internal/logging"
	"github.com/heimdex/heimdex-timeline/internal/media"
	"github.com/heimdex/heimdex-timeline/internal/playback"
	"github.com/heimdex/heimdex-timeline/internal/preview"
	"github.com/heimdex/heimdex-timeline/internal/store"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
	"github.com/heimdex/heimdex-timeline/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting heimdex timeline agent", "version", config.Version, "data_dir", cfg.DataDir())

	if err := media.CheckDependencies(cfg.FFprobeBinary(), cfg.FFmpegBinary()); err != nil {
		logger.Warn("media tools unavailable, probing and previews are degraded", "error", err)
	}

	database, err := store.Open(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := store.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec, err := editor.LoadOrCreate(ctx, repo, cfg.ProjectName(), cfg.FPS(), cfg.PixelsPerFrame())
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║              HEIMDEX TIMELINE v%-27s║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Project:    %-45s ║\n", rec.Name)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	sessionLogger := logging.WithProjectID(logging.WithComponent(logger, "editor"), rec.ID)
	prober := media.NewFFprobe(cfg.FFprobeBinary(), logger)
	frames := media.NewFFmpegFrames(cfg.FFmpegBinary(), logger)

	session := editor.NewSession(editor.Options{
		ProjectID: rec.ID,
		Project:   rec.Snapshot,
		Journal:   repo,
		Prober:    media.NewImporter(prober, logger),
		Resolver:  preview.NewResolver(frames, logging.WithComponent(logger, "preview")),
		Logger:    sessionLogger,
	})

	transport := playback.NewTransport(session, cfg.PreviewRate(), logging.WithComponent(logger, "playback"))
	go transport.Start(ctx)

	apiServer := api.NewServer(api.ServerConfig{
		Port:             cfg.Port(),
		Editor:           session,
		Playback:         transport,
		Repository:       repo,
		MetricsHandler:   promhttp.Handler(),
		CommandRateLimit: cfg.CommandRateLimit(),
		Logger:           logger,
		StartTime:        startTime,
		Version:          config.Version,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh, quit := newQuitSignal()

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			quit()
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Player: transport,
			Logger: logger,
			OnImportFolder: func() error {
				logger.Info("import folder requested from tray (file dialog not implemented, use POST /media/folder)")
				return nil
			},
			OnQuit: quit,
		})
		tray.UpdateProject(session.Snapshot())
		session.Subscribe(tray.UpdateProject)
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	transport.Pause()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logProjectSummary(logger, session.Snapshot())
	logger.Info("shutdown complete")
	return nil
}

// newQuitSignal returns a channel closed by the first call to quit. Both the
// signal handler and the tray may call quit.
func newQuitSignal() (<-chan struct{}, func()) {
	ch := make(chan struct{})
	var once sync.Once
	return ch, func() { once.Do(func() { close(ch) }) }
}

func logProjectSummary(logger *slog.Logger, p timeline.Project) {
	logger.Info("project state",
		"clips", len(p.Clips),
		"media", len(p.Media),
		"end_frame", p.End(),
	)
}

func ensureAuthToken(repo store.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, store.ConfigKeyAuthToken)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, store.ConfigKeyAuthToken, token); err != nil {
		return "", err
	}

	return token, nil
}
