package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/kozaktomas/appraisal-gallery/internal/classify"
	"github.com/kozaktomas/appraisal-gallery/internal/config"
	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
	"github.com/kozaktomas/appraisal-gallery/internal/geometry"
	"github.com/kozaktomas/appraisal-gallery/internal/preview"
	"github.com/kozaktomas/appraisal-gallery/internal/report"
)

// maxLayoutBody caps request bodies; inline data URIs make them large.
const maxLayoutBody = 64 << 20

// LayoutHandler classifies photos and lays out the report gallery
type LayoutHandler struct {
	engine   *gallery.Engine
	layout   geometry.LayoutConfig
	sessions *classify.Sessions
}

// NewLayoutHandler creates a new layout handler. It fails when the configured
// capacities are invalid.
func NewLayoutHandler(cfg *config.Config, sessions *classify.Sessions) (*LayoutHandler, error) {
	engine, err := gallery.NewEngine(cfg.EngineOptions())
	if err != nil {
		return nil, fmt.Errorf("creating layout engine: %w", err)
	}
	return &LayoutHandler{
		engine:   engine,
		layout:   geometry.FromPage(cfg.Layout.Page),
		sessions: sessions,
	}, nil
}

// LayoutRequest is the body of every layout endpoint
type LayoutRequest struct {
	DocumentID string               `json:"document_id,omitempty"`
	Photos     []gallery.Photo      `json:"photos"`
	Text       gallery.TextSections `json:"text"`
	Document   gallery.Document     `json:"document"`
}

// LayoutResponse is returned by the layout endpoint
type LayoutResponse struct {
	RunID    string                   `json:"run_id"`
	Pages    []gallery.PageDescriptor `json:"pages"`
	Plan     report.PlanSummary       `json:"plan"`
	Warnings []string                 `json:"warnings"`
}

// Layout returns the page descriptors
func (h *LayoutHandler) Layout(w http.ResponseWriter, r *http.Request) {
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, LayoutResponse{
		RunID:    run.ID,
		Pages:    run.Pages,
		Plan:     report.Summarize(run.Plan),
		Warnings: run.Report().Warnings,
	})
}

// Report returns the export report
func (h *LayoutHandler) Report(w http.ResponseWriter, r *http.Request) {
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, run.Report())
}

// Preview returns the printable HTML preview
func (h *LayoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := preview.Render(&buf, run, h.layout); err != nil {
		log.Printf("Failed to render preview for run %s: %v", run.ID, err)
		respondError(w, http.StatusInternalServerError, "failed to render preview")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// run decodes the request, classifies its photos and composes the layout.
// It writes the error response itself and reports whether to continue.
func (h *LayoutHandler) run(w http.ResponseWriter, r *http.Request) (*report.Run, bool) {
	var req LayoutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLayoutBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return nil, false
	}
	for i, p := range req.Photos {
		if p.SourceURL == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("photo %d: source_url is required", i))
			return nil, false
		}
		if p.Orientation != gallery.OrientationUnknown && p.Orientation != gallery.OrientationPortrait && p.Orientation != gallery.OrientationLandscape {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("photo %d: invalid orientation", i))
			return nil, false
		}
	}

	photos := gallery.AssignMissingIDs(req.Photos)
	text := gallery.NewTextSections(req.Text.DocumentaryStatus, req.Text.InfluencingFactors)

	classified, err := h.sessions.Get(req.DocumentID).Classify(r.Context(), photos)
	switch {
	case errors.Is(err, classify.ErrSuperseded):
		log.Printf("Layout for document %s superseded by a newer request", sanitizeForLog(req.DocumentID))
		respondError(w, http.StatusConflict, "superseded by a newer layout request")
		return nil, false
	case err != nil:
		respondError(w, http.StatusServiceUnavailable, "classification cancelled")
		return nil, false
	}

	run, err := report.Compose(h.engine, h.layout, classified, text, req.Document)
	if err != nil {
		log.Printf("Layout failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to lay out photos")
		return nil, false
	}
	return run, true
}
