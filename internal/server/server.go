// Package server exposes the generation pipeline, history, and settings
// over a local JSON HTTP API for the browser frontend.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/user/storyweaver/internal/config"
	"github.com/user/storyweaver/internal/pipeline"
	"github.com/user/storyweaver/internal/sources"
	"github.com/user/storyweaver/internal/types"
)

// Options carries the collaborators a Server dispatches to.
type Options struct {
	Pipeline  *pipeline.Pipeline
	History   types.HistoryStore
	Welcome   types.WelcomeStore
	Previewer *sources.Previewer

	// Settings returns the live configuration; UpdateSettings persists a
	// batch of flat dot-key changes and reloads it.
	Settings       func() *config.Config
	UpdateSettings func(map[string]string) error

	// ImagesDir is where uploaded images are stored; history entries
	// reference them by file name.
	ImagesDir string
}

// Server is the HTTP handler for the local API.
type Server struct {
	opts Options
	mux  *http.ServeMux
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	s := &Server{opts: opts, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("POST /api/audio", s.handleAudio)
	s.mux.HandleFunc("POST /api/translate", s.handleTranslate)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/history", s.handleHistoryList)
	s.mux.HandleFunc("DELETE /api/history/{id}", s.handleHistoryRemove)
	s.mux.HandleFunc("POST /api/history/{id}/restore", s.handleHistoryRestore)
	s.mux.HandleFunc("GET /api/images/{name}", s.handleImage)
	s.mux.HandleFunc("GET /api/settings", s.handleSettingsGet)
	s.mux.HandleFunc("PUT /api/settings", s.handleSettingsPut)
	s.mux.HandleFunc("POST /api/settings/validate", s.handleSettingsValidate)
	s.mux.HandleFunc("GET /api/sources/preview", s.handleSourcePreview)
	s.mux.HandleFunc("GET /api/welcome", s.handleWelcomeGet)
	s.mux.HandleFunc("POST /api/welcome", s.handleWelcomeDismiss)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// generateRequest is the JSON body for POST /api/generate. The image is
// base64 so the whole request stays a single JSON document.
type generateRequest struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"image_base64"`
	ImageMIME   string `json:"image_mime"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	in := pipeline.Input{Prompt: req.Prompt, ImageMIME: req.ImageMIME}
	if req.ImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid image encoding")
			return
		}
		ref, err := s.saveImage(data, req.ImageMIME)
		if err != nil {
			slog.Error("failed to store uploaded image", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store image")
			return
		}
		in.ImageData = data
		in.ImageRef = ref
	}

	snap, err := s.opts.Pipeline.Generate(r.Context(), in)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	snap, err := s.opts.Pipeline.RegenerateAudio(r.Context())
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type translateRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	translated, err := s.opts.Pipeline.Translate(r.Context(), req.Text)
	if err != nil {
		cls := pipeline.Classify(err)
		status := http.StatusBadGateway
		if cls.Kind == pipeline.KindConfig {
			status = http.StatusBadRequest
		}
		slog.Error("translation failed", "kind", cls.Kind, "error", err)
		writeJSON(w, status, map[string]string{"error": cls.Message, "kind": string(cls.Kind)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"translation": translated})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Pipeline.Snapshot())
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.opts.History.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if entries == nil {
		entries = []*types.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistoryRemove(w http.ResponseWriter, r *http.Request) {
	id := types.EntryID(r.PathValue("id"))
	if err := s.opts.History.Remove(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryRestore(w http.ResponseWriter, r *http.Request) {
	id := types.EntryID(r.PathValue("id"))
	entries, err := s.opts.History.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	for _, e := range entries {
		if e.ID == id {
			if err := s.opts.Pipeline.LoadEntry(e); err != nil {
				s.writePipelineError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, s.opts.Pipeline.Snapshot())
			return
		}
	}
	writeError(w, http.StatusNotFound, "entry not found")
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	// Refs are bare file names; reject anything that resolves elsewhere.
	name := filepath.Base(r.PathValue("name"))
	http.ServeFile(w, r, filepath.Join(s.opts.ImagesDir, name))
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	values, err := config.ListValues(s.opts.Settings(), true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	changes := make(map[string]string, len(updates))
	for k, v := range updates {
		changes[k] = fmt.Sprint(v)
	}
	if err := s.opts.UpdateSettings(changes); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.handleSettingsGet(w, r)
}

type validateRequest struct {
	Capability string `json:"capability"`
}

func (s *Server) handleSettingsValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var msg string
	var err error
	switch req.Capability {
	case "story":
		msg, err = s.opts.Pipeline.ValidateStory(r.Context())
	case "speech":
		msg, err = s.opts.Pipeline.ValidateSpeech(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "capability must be story or speech")
		return
	}
	if err != nil {
		cls := pipeline.Classify(err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": cls.Message, "kind": string(cls.Kind)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) handleSourcePreview(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	md, err := s.opts.Previewer.Preview(r.Context(), rawURL)
	if err != nil {
		slog.Warn("source preview failed", "url", rawURL, "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch source")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"markdown": md})
}

func (s *Server) handleWelcomeGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"dismissed": s.opts.Welcome.Dismissed()})
}

func (s *Server) handleWelcomeDismiss(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Welcome.Dismiss(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist dismissal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) saveImage(data []byte, mime string) (string, error) {
	if err := os.MkdirAll(s.opts.ImagesDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), extForMIME(mime))
	if err := os.WriteFile(filepath.Join(s.opts.ImagesDir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

func extForMIME(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}

func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var vErr *pipeline.ValidationError
	switch {
	case errors.Is(err, pipeline.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Msg)
	default:
		slog.Error("pipeline request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
