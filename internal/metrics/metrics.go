// Package metrics exposes Prometheus collectors for the editing session.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeApplied   = "applied"
	OutcomeRejected  = "rejected"
	OutcomeMalformed = "malformed"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimdex_timeline_commands_total",
		Help: "Commands processed by type and outcome",
	}, []string{"type", "outcome"})

	applyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "heimdex_timeline_apply_duration_seconds",
		Help:    "Time to apply one command including persistence",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
	})

	previewTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimdex_timeline_preview_total",
		Help: "Preview resolutions by result (frame, empty, miss)",
	}, []string{"result"})

	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimdex_timeline_imports_total",
		Help: "Media imports by kind",
	}, []string{"kind"})

	clipsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heimdex_timeline_clips",
		Help: "Clips on the timeline",
	})

	mediaGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heimdex_timeline_media_items",
		Help: "Items in the media library",
	})

	playbackPlaying = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heimdex_timeline_playback_playing",
		Help: "1 while the playback transport is advancing the playhead",
	})
)

// RecordCommand counts one command. Unknown types are folded into "unknown".
func RecordCommand(cmdType, outcome string, elapsed time.Duration) {
	if cmdType == "" {
		cmdType = "unknown"
	}
	commandsTotal.WithLabelValues(cmdType, outcome).Inc()
	applyDuration.Observe(elapsed.Seconds())
}

func RecordPreview(result string) {
	previewTotal.WithLabelValues(result).Inc()
}

func RecordImport(kind string) {
	importsTotal.WithLabelValues(kind).Inc()
}

func SetProjectSize(clips, media int) {
	clipsGauge.Set(float64(clips))
	mediaGauge.Set(float64(media))
}

func SetPlaying(playing bool) {
	if playing {
		playbackPlaying.Set(1)
		return
	}
	playbackPlaying.Set(0)
}
