package handlers

import (
	"net/http"

	"github.com/kozaktomas/appraisal-gallery/internal/config"
	"github.com/kozaktomas/appraisal-gallery/internal/geometry"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Capacities CapacitiesInfo `json:"capacities"`
	Page       PageInfo       `json:"page"`
	Probe      ProbeInfo      `json:"probe"`
}

// CapacitiesInfo lists the page capacities and the tail-fit threshold
type CapacitiesInfo struct {
	Portrait         int `json:"portrait"`
	Landscape        int `json:"landscape"`
	TailFitThreshold int `json:"tail_fit_threshold"`
}

// PageInfo describes the printed page in mm
type PageInfo struct {
	WidthMM        float64 `json:"width_mm"`
	HeightMM       float64 `json:"height_mm"`
	ContentWidthMM float64 `json:"content_width_mm"`
	CanvasHeightMM float64 `json:"canvas_height_mm"`
	Columns        int     `json:"columns"`
}

// ProbeInfo describes how photo orientation is detected
type ProbeInfo struct {
	Concurrency   int `json:"concurrency"`
	RatePerSecond int `json:"rate_per_second"`
}

// Get returns the effective layout configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	layout := geometry.FromPage(h.config.Layout.Page)

	response := ConfigResponse{
		Capacities: CapacitiesInfo{
			Portrait:         h.config.Layout.Capacities.Portrait,
			Landscape:        h.config.Layout.Capacities.Landscape,
			TailFitThreshold: h.config.Layout.Capacities.TailFitThreshold,
		},
		Page: PageInfo{
			WidthMM:        layout.PageW,
			HeightMM:       layout.PageH,
			ContentWidthMM: layout.ContentWidth(),
			CanvasHeightMM: layout.CanvasHeight(),
			Columns:        layout.GridColumns,
		},
		Probe: ProbeInfo{
			Concurrency:   h.config.Probe.Concurrency,
			RatePerSecond: h.config.Probe.RatePerSecond,
		},
	}

	respondJSON(w, http.StatusOK, response)
}
