// Package command decodes UI edit commands and applies them to project
// snapshots one at a time.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

type Type string

const (
	TypeSetPlayhead    Type = "SET_PLAYHEAD"
	TypeSelectClip     Type = "SELECT_CLIP"
	TypeDeleteSelected Type = "DELETE_SELECTED"
	TypeAddClip        Type = "ADD_CLIP"
	TypeMoveClip       Type = "MOVE_CLIP"
	TypeRazorCut       Type = "RAZOR_CUT"
	TypeSetFPS         Type = "SET_FPS"
	TypeSetZoom        Type = "SET_ZOOM"
	TypeRemoveMedia    Type = "REMOVE_MEDIA"
)

var (
	ErrMalformedCommand = errors.New("malformed command")
	ErrUnknownCommand   = errors.New("unknown command type")
)

// Command is the closed set of edit operations. Only types in this package
// implement it.
type Command interface {
	Type() Type
	sealed()
}

type SetPlayhead struct {
	Frame int
}

type SelectClip struct {
	// ClipID "" clears the selection.
	ClipID string
}

type DeleteSelected struct{}

type AddClip struct {
	MediaID    string
	TrackID    string
	StartFrame int
}

type MoveClip struct {
	ClipID     string
	StartFrame int
	// TrackID "" keeps the current track.
	TrackID string
}

type RazorCut struct {
	ClipID          string
	CutOffsetFrames int
}

// SetFPS changes the project frame rate. Values that are not positive and
// finite are refused and leave the snapshot unchanged.
type SetFPS struct {
	FPS float64
}

type SetZoom struct {
	PixelsPerFrame float64
}

type RemoveMedia struct {
	MediaID string
}

func (SetPlayhead) Type() Type    { return TypeSetPlayhead }
func (SelectClip) Type() Type     { return TypeSelectClip }
func (DeleteSelected) Type() Type { return TypeDeleteSelected }
func (AddClip) Type() Type        { return TypeAddClip }
func (MoveClip) Type() Type       { return TypeMoveClip }
func (RazorCut) Type() Type       { return TypeRazorCut }
func (SetFPS) Type() Type         { return TypeSetFPS }
func (SetZoom) Type() Type        { return TypeSetZoom }
func (RemoveMedia) Type() Type    { return TypeRemoveMedia }

func (SetPlayhead) sealed()    {}
func (SelectClip) sealed()     {}
func (DeleteSelected) sealed() {}
func (AddClip) sealed()        {}
func (MoveClip) sealed()       {}
func (RazorCut) sealed()       {}
func (SetFPS) sealed()         {}
func (SetZoom) sealed()        {}
func (RemoveMedia) sealed()    {}

// wire is the flat JSON shape the UI sends. Pointer fields distinguish
// "absent" from zero.
type wire struct {
	Type            Type     `json:"type"`
	Frame           *float64 `json:"frame"`
	ClipID          *string  `json:"clipId"`
	MediaID         *string  `json:"mediaId"`
	TrackID         *string  `json:"trackId"`
	StartFrame      *float64 `json:"startFrame"`
	CutOffsetFrames *float64 `json:"cutOffsetFrames"`
	FPS             *float64 `json:"fps"`
	PixelsPerFrame  *float64 `json:"pixelsPerFrame"`
}

// Decode parses one command message. The payload must be exactly one JSON
// object. Frame-valued fields may carry a fractional part; it is truncated
// toward zero.
func Decode(data []byte) (Command, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	if w.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedCommand)
	}

	switch w.Type {
	case TypeSetPlayhead:
		frame, err := frameField("frame", w.Frame)
		if err != nil {
			return nil, err
		}
		return SetPlayhead{Frame: frame}, nil

	case TypeSelectClip:
		// clipId: null (or absent) clears the selection.
		if w.ClipID == nil {
			return SelectClip{}, nil
		}
		return SelectClip{ClipID: *w.ClipID}, nil

	case TypeDeleteSelected:
		return DeleteSelected{}, nil

	case TypeAddClip:
		mediaID, err := stringField("mediaId", w.MediaID)
		if err != nil {
			return nil, err
		}
		trackID, err := stringField("trackId", w.TrackID)
		if err != nil {
			return nil, err
		}
		start := 0
		if w.StartFrame != nil {
			if start, err = frameField("startFrame", w.StartFrame); err != nil {
				return nil, err
			}
		}
		return AddClip{MediaID: mediaID, TrackID: trackID, StartFrame: start}, nil

	case TypeMoveClip:
		clipID, err := stringField("clipId", w.ClipID)
		if err != nil {
			return nil, err
		}
		start, err := frameField("startFrame", w.StartFrame)
		if err != nil {
			return nil, err
		}
		cmd := MoveClip{ClipID: clipID, StartFrame: start}
		if w.TrackID != nil {
			cmd.TrackID = *w.TrackID
		}
		return cmd, nil

	case TypeRazorCut:
		clipID, err := stringField("clipId", w.ClipID)
		if err != nil {
			return nil, err
		}
		offset, err := frameField("cutOffsetFrames", w.CutOffsetFrames)
		if err != nil {
			return nil, err
		}
		return RazorCut{ClipID: clipID, CutOffsetFrames: offset}, nil

	case TypeSetFPS:
		fps, err := numberField("fps", w.FPS)
		if err != nil {
			return nil, err
		}
		return SetFPS{FPS: fps}, nil

	case TypeSetZoom:
		ppf, err := numberField("pixelsPerFrame", w.PixelsPerFrame)
		if err != nil {
			return nil, err
		}
		return SetZoom{PixelsPerFrame: ppf}, nil

	case TypeRemoveMedia:
		mediaID, err := stringField("mediaId", w.MediaID)
		if err != nil {
			return nil, err
		}
		return RemoveMedia{MediaID: mediaID}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, w.Type)
}

// Encode renders a command in the wire shape accepted by Decode.
func Encode(cmd Command) ([]byte, error) {
	m := map[string]any{"type": cmd.Type()}
	switch c := cmd.(type) {
	case SetPlayhead:
		m["frame"] = c.Frame
	case SelectClip:
		if c.ClipID == "" {
			m["clipId"] = nil
		} else {
			m["clipId"] = c.ClipID
		}
	case DeleteSelected:
	case AddClip:
		m["mediaId"] = c.MediaID
		m["trackId"] = c.TrackID
		m["startFrame"] = c.StartFrame
	case MoveClip:
		m["clipId"] = c.ClipID
		m["startFrame"] = c.StartFrame
		if c.TrackID != "" {
			m["trackId"] = c.TrackID
		}
	case RazorCut:
		m["clipId"] = c.ClipID
		m["cutOffsetFrames"] = c.CutOffsetFrames
	case SetFPS:
		m["fps"] = c.FPS
	case SetZoom:
		m["pixelsPerFrame"] = c.PixelsPerFrame
	case RemoveMedia:
		m["mediaId"] = c.MediaID
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	return json.Marshal(m)
}

func stringField(name string, v *string) (string, error) {
	if v == nil || *v == "" {
		return "", fmt.Errorf("%w: %s is required", ErrMalformedCommand, name)
	}
	return *v, nil
}

func numberField(name string, v *float64) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: %s is required", ErrMalformedCommand, name)
	}
	return *v, nil
}

func frameField(name string, v *float64) (int, error) {
	f, err := numberField(name, v)
	if err != nil {
		return 0, err
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %s out of range", ErrMalformedCommand, name)
	}
	return int(f), nil
}
