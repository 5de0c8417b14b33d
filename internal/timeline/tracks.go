package timeline

import (
	"strconv"
	"strings"
)

type Category string

const (
	CategoryVideo Category = "video"
	CategoryAudio Category = "audio"
)

// Tracks is the fixed lane layout of every project, in display order.
var Tracks = []string{"V1", "V2", "V3", "A1", "A2", "A3"}

var trackCategory = map[string]Category{
	"V1": CategoryVideo,
	"V2": CategoryVideo,
	"V3": CategoryVideo,
	"A1": CategoryAudio,
	"A2": CategoryAudio,
	"A3": CategoryAudio,
}

// TrackCategory returns the category of a known track id.
func TrackCategory(trackID string) (Category, bool) {
	c, ok := trackCategory[trackID]
	return c, ok
}

// CategoryOf maps a media kind to the track category it may be placed on.
func CategoryOf(k Kind) Category {
	if k == KindAudio {
		return CategoryAudio
	}
	return CategoryVideo
}

// TrackAccepts reports whether clips of kind k may live on trackID.
func TrackAccepts(trackID string, k Kind) bool {
	c, ok := TrackCategory(trackID)
	return ok && k.Valid() && c == CategoryOf(k)
}

// TrackPriority is the numeric suffix of a track id; higher video tracks are
// drawn on top. Ids without a numeric suffix rank lowest.
func TrackPriority(trackID string) int {
	digits := strings.TrimLeft(trackID, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
