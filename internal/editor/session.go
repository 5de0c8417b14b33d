// Package editor owns the live project of a running agent and serializes
// every edit against it.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/heimdex/heimdex-timeline/internal/command"
	"github.com/heimdex/heimdex-timeline/internal/media"
	"github.com/heimdex/heimdex-timeline/internal/metrics"
	"github.com/heimdex/heimdex-timeline/internal/preview"
	"github.com/heimdex/heimdex-timeline/internal/store"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

var ErrPersist = errors.New("failed to persist project")

type EditorService interface {
	ProjectID() string
	Snapshot() timeline.Project
	Apply(ctx context.Context, raw []byte) (Result, error)
	Execute(ctx context.Context, cmd command.Command) (Result, error)
	Import(ctx context.Context, path string) (timeline.MediaItem, error)
	ImportFolder(ctx context.Context, dir string) ([]timeline.MediaItem, error)
	Seek(ctx context.Context, frame int) error
	Preview(ctx context.Context) *preview.Frame
	Subscribe(fn func(timeline.Project))
}

// Journal is the slice of the store the session writes through.
type Journal interface {
	SaveSnapshot(ctx context.Context, projectID string, snapshot timeline.Project) error
	AppendCommand(ctx context.Context, rec *store.CommandRecord) error
}

// Prober inspects a file before registration.
type Prober interface {
	Probe(ctx context.Context, path string) (media.Probed, error)
}

// Result is the reply to every command: the authoritative snapshot and the
// frame under its playhead. A refused command still carries the unchanged
// snapshot.
type Result struct {
	Project timeline.Project `json:"project"`
	Preview *string          `json:"preview"`
	Applied bool             `json:"applied"`
	Reason  string           `json:"reason,omitempty"`

	Frame *preview.Frame `json:"-"`
}

type Options struct {
	ProjectID string
	Project   timeline.Project
	Journal   Journal
	Prober    Prober
	Resolver  *preview.Resolver
	IDs       timeline.IDGenerator
	Logger    *slog.Logger
}

type Session struct {
	mu      sync.Mutex
	project timeline.Project

	projectID string
	processor *command.Processor
	resolver  *preview.Resolver
	prober    Prober
	journal   Journal
	ids       timeline.IDGenerator
	logger    *slog.Logger

	listenersMu sync.RWMutex
	listeners   []func(timeline.Project)
}

func NewSession(opts Options) *Session {
	ids := opts.IDs
	if ids == nil {
		ids = timeline.UUIDGenerator{}
	}
	project := opts.Project
	if project.FPS <= 0 {
		project = timeline.NewProject(project.FPS, project.PixelsPerFrame)
	}
	s := &Session{
		project:   project,
		projectID: opts.ProjectID,
		processor: command.NewProcessor(ids, opts.Logger),
		resolver:  opts.Resolver,
		prober:    opts.Prober,
		journal:   opts.Journal,
		ids:       ids,
		logger:    opts.Logger,
	}
	if s.resolver != nil {
		s.resolver.OnMiss(func(preview.Target, error) {
			metrics.RecordPreview("miss")
		})
	}
	metrics.SetProjectSize(len(project.Clips), len(project.Media))
	return s
}

func (s *Session) ProjectID() string {
	return s.projectID
}

// Snapshot returns a copy of the current project.
func (s *Session) Snapshot() timeline.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Clone()
}

// Subscribe registers fn to be called with every committed snapshot.
func (s *Session) Subscribe(fn func(timeline.Project)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Apply decodes and executes a raw UI command. Undecodable commands are
// journaled and answered with the unchanged snapshot.
func (s *Session) Apply(ctx context.Context, raw []byte) (Result, error) {
	return s.applyRaw(ctx, raw, true)
}

// ApplyWithoutPreview is Apply for batch callers that never look at the
// frame; Result.Preview and Result.Frame stay nil.
func (s *Session) ApplyWithoutPreview(ctx context.Context, raw []byte) (Result, error) {
	return s.applyRaw(ctx, raw, false)
}

func (s *Session) applyRaw(ctx context.Context, raw []byte, render bool) (Result, error) {
	cmd, err := command.Decode(raw)
	if err != nil {
		metrics.RecordCommand("", metrics.OutcomeMalformed, 0)

		s.mu.Lock()
		snap := s.project
		s.appendJournal(ctx, peekType(raw), string(raw), false, err)
		s.mu.Unlock()

		if s.logger != nil {
			s.logger.Debug("command ignored", "error", err)
		}
		if !render {
			return Result{Project: snap.Clone(), Applied: false, Reason: err.Error()}, nil
		}
		return s.result(ctx, snap, false, err), nil
	}
	return s.execute(ctx, cmd, string(raw), render)
}

func (s *Session) Execute(ctx context.Context, cmd command.Command) (Result, error) {
	payload, err := command.Encode(cmd)
	if err != nil {
		return Result{}, err
	}
	return s.execute(ctx, cmd, string(payload), true)
}

// Seek moves the playhead without rendering a preview. It is the entry point
// of the playback transport.
func (s *Session) Seek(ctx context.Context, frame int) error {
	cmd := command.SetPlayhead{Frame: frame}
	payload, err := command.Encode(cmd)
	if err != nil {
		return err
	}
	_, err = s.execute(ctx, cmd, string(payload), false)
	return err
}

func (s *Session) execute(ctx context.Context, cmd command.Command, payload string, render bool) (Result, error) {
	start := time.Now()

	s.mu.Lock()
	prev := s.project
	next, rejection := s.processor.Apply(prev, cmd)
	applied := rejection == nil
	if applied {
		if err := s.persist(ctx, next); err != nil {
			s.appendJournal(ctx, string(cmd.Type()), payload, false, err)
			s.mu.Unlock()
			return Result{}, err
		}
		s.project = next
	}
	s.appendJournal(ctx, string(cmd.Type()), payload, applied, rejection)
	s.mu.Unlock()

	outcome := metrics.OutcomeApplied
	if !applied {
		outcome = metrics.OutcomeRejected
		if s.logger != nil {
			s.logger.Debug("command rejected", "type", cmd.Type(), "error", rejection)
		}
	} else {
		s.committed(next)
	}
	metrics.RecordCommand(string(cmd.Type()), outcome, time.Since(start))

	if !render {
		r := Result{Project: next.Clone(), Applied: applied}
		if rejection != nil {
			r.Reason = rejection.Error()
		}
		return r, nil
	}
	return s.result(ctx, next, applied, rejection), nil
}

// Import probes path outside the lock and registers it in the library.
func (s *Session) Import(ctx context.Context, path string) (timeline.MediaItem, error) {
	if s.prober == nil {
		return timeline.MediaItem{}, errors.New("no media prober configured")
	}
	probed, err := s.prober.Probe(ctx, path)
	if err != nil {
		return timeline.MediaItem{}, err
	}

	s.mu.Lock()
	next := s.project.Clone()
	item, err := timeline.NewLibrary(&next, s.ids).Register(probed.Path, probed.Kind, probed.Probe)
	if err != nil {
		s.mu.Unlock()
		return timeline.MediaItem{}, err
	}
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return timeline.MediaItem{}, err
	}
	s.project = next
	s.mu.Unlock()

	metrics.RecordImport(string(item.Kind))
	s.committed(next)
	if s.logger != nil {
		s.logger.Info("media imported", "media_id", item.ID, "kind", item.Kind, "path", item.Path)
	}
	return item, nil
}

// ImportFolder imports every media file below dir. Files that fail to import
// are logged and skipped.
func (s *Session) ImportFolder(ctx context.Context, dir string) ([]timeline.MediaItem, error) {
	paths, err := media.Scan(ctx, dir)
	if err != nil {
		return nil, err
	}

	items := make([]timeline.MediaItem, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return items, err
		}
		item, err := s.Import(ctx, p)
		if err != nil {
			if errors.Is(err, ErrPersist) {
				return items, err
			}
			if s.logger != nil {
				s.logger.Warn("skipping file", "path", p, "error", err)
			}
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Preview renders the frame under the current playhead.
func (s *Session) Preview(ctx context.Context) *preview.Frame {
	return s.render(ctx, s.Snapshot())
}

func (s *Session) render(ctx context.Context, p timeline.Project) *preview.Frame {
	if s.resolver == nil {
		return nil
	}
	f := s.resolver.Render(ctx, p)
	if f != nil {
		metrics.RecordPreview("frame")
	} else if _, ok := preview.Resolve(p); !ok {
		metrics.RecordPreview("empty")
	}
	return f
}

func (s *Session) result(ctx context.Context, p timeline.Project, applied bool, reason error) Result {
	r := Result{Project: p.Clone(), Applied: applied}
	if reason != nil {
		r.Reason = reason.Error()
	}
	r.Frame = s.render(ctx, p)
	if uri := preview.EncodeDataURI(r.Frame); uri != "" {
		r.Preview = &uri
	}
	return r
}

// persist must be called with s.mu held.
func (s *Session) persist(ctx context.Context, next timeline.Project) error {
	if s.journal == nil || s.projectID == "" {
		return nil
	}
	if err := s.journal.SaveSnapshot(ctx, s.projectID, next); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to save snapshot", "project_id", s.projectID, "error", err)
		}
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// appendJournal must be called with s.mu held so entries keep apply order.
func (s *Session) appendJournal(ctx context.Context, cmdType, payload string, applied bool, cause error) {
	if s.journal == nil || s.projectID == "" {
		return
	}
	rec := &store.CommandRecord{
		ProjectID: s.projectID,
		Type:      cmdType,
		Payload:   payload,
		Applied:   applied,
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	if err := s.journal.AppendCommand(ctx, rec); err != nil && s.logger != nil {
		s.logger.Warn("failed to journal command", "type", cmdType, "error", err)
	}
}

func (s *Session) committed(p timeline.Project) {
	metrics.SetProjectSize(len(p.Clips), len(p.Media))

	s.listenersMu.RLock()
	listeners := s.listeners
	s.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(p.Clone())
	}
}

// peekType reads the "type" field of a payload that failed to decode.
func peekType(raw []byte) string {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Type == "" {
		return "INVALID"
	}
	return probe.Type
}
