// Package media implements the host collaborators the timeline core relies
// on: file classification, ffprobe metadata, frame decoding and import.
package media

import (
	"path/filepath"
	"strings"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".aac":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
}

var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".m4v":  true,
}

// Classify maps a path to a media kind by extension. Anything that is not
// a known image or audio file is treated as video.
func Classify(path string) timeline.Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ImageExtensions[ext]:
		return timeline.KindImage
	case AudioExtensions[ext]:
		return timeline.KindAudio
	default:
		return timeline.KindVideo
	}
}

// IsMediaFile reports whether a folder scan should pick up the file.
func IsMediaFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ImageExtensions[ext] || AudioExtensions[ext] || VideoExtensions[ext]
}
