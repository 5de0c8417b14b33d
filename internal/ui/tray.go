package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// Player is the playback control driven from the tray menu.
type Player interface {
	Toggle(ctx context.Context) (bool, error)
	IsPlaying() bool
}

type Tray struct {
	player Player
	logger *slog.Logger

	statusItem   *systray.MenuItem
	playheadItem *systray.MenuItem
	playItem     *systray.MenuItem

	mu      sync.Mutex
	ready   bool
	pending *timeline.Project

	onImportFolder func() error
	onQuit         func()
}

type TrayConfig struct {
	Player         Player
	Logger         *slog.Logger
	OnImportFolder func() error
	OnQuit         func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		player:         cfg.Player,
		logger:         cfg.Logger,
		onImportFolder: cfg.OnImportFolder,
		onQuit:         cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes())
	systray.SetTitle("Heimdex")
	systray.SetTooltip("Heimdex Timeline")

	t.statusItem = systray.AddMenuItem("Clips: 0  Media: 0", "Current project")
	t.statusItem.Disable()

	t.playheadItem = systray.AddMenuItem("Playhead: 0", "Current playhead frame")
	t.playheadItem.Disable()

	systray.AddSeparator()

	t.playItem = systray.AddMenuItem("Play", "Start or stop playback")
	importItem := systray.AddMenuItem("Import Folder...", "Import a folder of media")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Heimdex Timeline")

	t.mu.Lock()
	t.ready = true
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()
	if pending != nil {
		t.UpdateProject(*pending)
	}

	go func() {
		for {
			select {
			case <-t.playItem.ClickedCh:
				t.togglePlayback()
			case <-importItem.ClickedCh:
				t.handleImportFolder()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) togglePlayback() {
	if t.player == nil {
		return
	}
	playing, err := t.player.Toggle(context.Background())
	if err != nil {
		t.logger.Error("failed to toggle playback", "error", err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.playItem.SetTitle(playLabel(playing))
}

func (t *Tray) handleImportFolder() {
	if t.onImportFolder != nil {
		if err := t.onImportFolder(); err != nil {
			t.logger.Error("failed to import folder", "error", err)
		}
	}
}

// UpdateProject refreshes the menu from a committed snapshot. Calls made
// before the tray is ready are replayed once it is.
func (t *Tray) UpdateProject(p timeline.Project) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ready {
		t.pending = &p
		return
	}
	t.statusItem.SetTitle(statusLabel(p))
	t.playheadItem.SetTitle(fmt.Sprintf("Playhead: %d", p.PlayheadFrame))
	if t.player != nil {
		t.playItem.SetTitle(playLabel(t.player.IsPlaying()))
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}

func statusLabel(p timeline.Project) string {
	return fmt.Sprintf("Clips: %d  Media: %d", len(p.Clips), len(p.Media))
}

func playLabel(playing bool) string {
	if playing {
		return "Pause"
	}
	return "Play"
}
