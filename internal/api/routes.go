package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-timeline/internal/editor"
	"github.com/heimdex/heimdex-timeline/internal/export"
	"github.com/heimdex/heimdex-timeline/internal/preview"
)

const maxCommandBytes = 64 << 10

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/project", projectHandler(cfg))
		r.Get("/project/journal", journalHandler(cfg))
		r.With(commandRateLimit(cfg)).Post("/commands", commandHandler(cfg))
		r.Get("/media", listMediaHandler(cfg))
		r.Post("/media", importMediaHandler(cfg))
		r.Post("/media/folder", importFolderHandler(cfg))
		r.Get("/preview", previewHandler(cfg))
		r.Post("/export/edl", exportEDLHandler(cfg))
		r.Get("/playback", playbackStatusHandler(cfg))
		r.Post("/playback/play", playHandler(cfg))
		r.Post("/playback/pause", pauseHandler(cfg))
	})

	return r
}

func commandRateLimit(cfg ServerConfig) func(http.Handler) http.Handler {
	if cfg.CommandRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return RateLimit(cfg.CommandRateLimit, time.Minute)
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		}
		if cfg.Editor != nil {
			resp.ProjectID = cfg.Editor.ProjectID()
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func projectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, ProjectResponse{
			ProjectID: cfg.Editor.ProjectID(),
			Project:   cfg.Editor.Snapshot(),
		})
	}
}

func journalHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 1000 {
				WriteError(w, http.StatusBadRequest, "limit must be between 1 and 1000", "BAD_REQUEST")
				return
			}
			limit = n
		}

		cmds, err := cfg.Repository.ListCommands(r.Context(), cfg.Editor.ProjectID(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list commands", "INTERNAL_ERROR")
			return
		}

		resp := JournalResponse{Commands: make([]CommandRecordResponse, len(cmds))}
		for i, c := range cmds {
			resp.Commands[i] = CommandToResponse(c)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// commandHandler answers every decodable request with 200 and the resulting
// snapshot, including refused and malformed commands.
func commandHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandBytes))
		if err != nil {
			WriteError(w, http.StatusRequestEntityTooLarge, "command too large", "BAD_REQUEST")
			return
		}

		res, err := cfg.Editor.Apply(r.Context(), body)
		if err != nil {
			cfg.Logger.Error("command failed", "error", err)
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func listMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, MediaResponse{Media: cfg.Editor.Snapshot().Media})
	}
}

func decodePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return "", false
	}
	if strings.TrimSpace(req.Path) == "" {
		WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
		return "", false
	}
	return req.Path, true
}

func importMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, ok := decodePath(w, r)
		if !ok {
			return
		}

		item, err := cfg.Editor.Import(r.Context(), path)
		if err != nil {
			if errors.Is(err, editor.ErrPersist) {
				WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusCreated, item)
	}
}

func importFolderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, ok := decodePath(w, r)
		if !ok {
			return
		}

		items, err := cfg.Editor.ImportFolder(r.Context(), path)
		if err != nil {
			if errors.Is(err, editor.ErrPersist) {
				WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusOK, ImportFolderResponse{Imported: items, Count: len(items)})
	}
}

// previewHandler returns the frame under the playhead as JPEG, or 204 when
// nothing is visible.
func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frame := cfg.Editor.Preview(r.Context())
		if frame == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		data, err := preview.EncodeJPEG(frame.Image)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to encode preview", "INTERNAL_ERROR")
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Clip-ID", frame.ClipID)
		w.Header().Set("X-Media-Frame", strconv.Itoa(frame.MediaFrame))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Format != "" && strings.ToLower(req.Format) != "edl" {
			WriteError(w, http.StatusBadRequest, "format must be edl", "BAD_REQUEST")
			return
		}
		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		title := export.SanitizeName(req.Title, 120)
		if title == "" {
			title = "heimdex_timeline"
		}

		project := cfg.Editor.Snapshot()
		events, unresolved := export.Events(project)
		if len(events) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "timeline has no exportable clips", "EMPTY_TIMELINE")
			return
		}

		edl := export.GenerateEDL(events, title, project.FPS)
		outputPath, err := export.WriteEDL(req.OutputDir, title, edl)
		if err != nil {
			cfg.Logger.Error("edl export failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, export.ExportResponse{
			Status:          "ok",
			Format:          "edl",
			OutputPath:      outputPath,
			EventCount:      len(events),
			UnresolvedClips: unresolved,
		})
	}
}

func playbackStatusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Playback == nil {
			WriteError(w, http.StatusServiceUnavailable, "playback not available", "UNAVAILABLE")
			return
		}
		WriteJSON(w, http.StatusOK, cfg.Playback.Status())
	}
}

func playHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Playback == nil {
			WriteError(w, http.StatusServiceUnavailable, "playback not available", "UNAVAILABLE")
			return
		}
		if err := cfg.Playback.Play(r.Context()); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, cfg.Playback.Status())
	}
}

func pauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Playback == nil {
			WriteError(w, http.StatusServiceUnavailable, "playback not available", "UNAVAILABLE")
			return
		}
		cfg.Playback.Pause()
		WriteJSON(w, http.StatusOK, cfg.Playback.Status())
	}
}
