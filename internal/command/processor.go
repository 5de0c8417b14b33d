package command

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// ErrInvalidValue marks a numeric field that cannot be applied, such as a
// non-positive frame rate.
var ErrInvalidValue = errors.New("invalid value")

// Processor applies exactly one command per call. It holds no project state;
// the caller owns the single snapshot and must serialize calls.
type Processor struct {
	ids    timeline.IDGenerator
	logger *slog.Logger
}

func NewProcessor(ids timeline.IDGenerator, logger *slog.Logger) *Processor {
	if ids == nil {
		ids = timeline.UUIDGenerator{}
	}
	return &Processor{ids: ids, logger: logger}
}

// ApplyJSON decodes and applies a raw command. Undecodable payloads return
// the prior snapshot together with the decode error.
func (p *Processor) ApplyJSON(snap timeline.Project, data []byte) (timeline.Project, Command, error) {
	cmd, err := Decode(data)
	if err != nil {
		if p.logger != nil {
			p.logger.Debug("command ignored", "error", err)
		}
		return snap, nil, err
	}
	next, err := p.Apply(snap, cmd)
	return next, cmd, err
}

// Apply returns the snapshot produced by cmd. When the command is rejected
// the returned snapshot is snap itself and err says why.
func (p *Processor) Apply(snap timeline.Project, cmd Command) (timeline.Project, error) {
	next := snap.Clone()
	if err := p.apply(&next, cmd); err != nil {
		if p.logger != nil {
			p.logger.Debug("command rejected", "type", typeOf(cmd), "error", err)
		}
		return snap, err
	}
	return next, nil
}

func (p *Processor) apply(next *timeline.Project, cmd Command) error {
	tl := timeline.New(next, p.ids)

	switch c := cmd.(type) {
	case SetPlayhead:
		next.PlayheadFrame = max(c.Frame, 0)
		return nil

	case SelectClip:
		return tl.Select(c.ClipID)

	case DeleteSelected:
		id := next.Selected()
		if id == "" {
			return nil
		}
		return tl.DeleteClip(id)

	case AddClip:
		_, err := tl.AddClip(c.MediaID, c.TrackID, c.StartFrame)
		return err

	case MoveClip:
		_, err := tl.MoveClip(c.ClipID, c.StartFrame, c.TrackID)
		return err

	case RazorCut:
		_, _, err := tl.RazorCut(c.ClipID, c.CutOffsetFrames)
		return err

	case SetFPS:
		if !positive(c.FPS) {
			return fmt.Errorf("%w: fps %v", ErrInvalidValue, c.FPS)
		}
		next.FPS = c.FPS
		return nil

	case SetZoom:
		if !positive(c.PixelsPerFrame) {
			return fmt.Errorf("%w: pixelsPerFrame %v", ErrInvalidValue, c.PixelsPerFrame)
		}
		next.PixelsPerFrame = c.PixelsPerFrame
		return nil

	case RemoveMedia:
		return tl.Library().Remove(c.MediaID)

	case nil:
		return fmt.Errorf("%w: nil command", ErrUnknownCommand)
	}

	return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
}

// Rejected reports whether err came from validation of an otherwise
// well-formed command, as opposed to a decode failure.
func Rejected(err error) bool {
	return err != nil && !errors.Is(err, ErrMalformedCommand) && !errors.Is(err, ErrUnknownCommand)
}

func typeOf(cmd Command) Type {
	if cmd == nil {
		return ""
	}
	return cmd.Type()
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
