package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var layoutYAML []byte

type Config struct {
	Layout LayoutConfig
	Probe  ProbeConfig
	Web    WebConfig
}

type LayoutConfig struct {
	Capacities CapacitiesConfig `yaml:"capacities"`
	Page       PageConfig       `yaml:"page"`
}

type CapacitiesConfig struct {
	Portrait         int `yaml:"portrait"`
	Landscape        int `yaml:"landscape"`
	TailFitThreshold int `yaml:"tail_fit_threshold"`
}

// PageConfig describes the printed page in millimetres.
type PageConfig struct {
	WidthMM         float64 `yaml:"width_mm"`
	HeightMM        float64 `yaml:"height_mm"`
	TopMarginMM     float64 `yaml:"top_margin_mm"`
	BottomMarginMM  float64 `yaml:"bottom_margin_mm"`
	SideMarginMM    float64 `yaml:"side_margin_mm"`
	HeaderHeightMM  float64 `yaml:"header_height_mm"`
	Columns         int     `yaml:"columns"`
	ColumnGapMM     float64 `yaml:"column_gap_mm"`
	RowGapMM        float64 `yaml:"row_gap_mm"`
	TextMinHeightMM float64 `yaml:"text_min_height_mm"`
}

type ProbeConfig struct {
	Concurrency   int           // defaults to 8
	Timeout       time.Duration // per-request HTTP timeout, defaults to 30s
	RatePerSecond int           // 0 = unlimited
	CacheTTL      time.Duration // defaults to 30m
	UserAgent     string
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins string // comma-separated, see middleware.CORS
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envCapacity is like envInt but keeps non-positive values so that
// gallery.NewEngine can reject them instead of silently using a default.
func envCapacity(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var layout LayoutConfig
	if err := yaml.Unmarshal(layoutYAML, &layout); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded layout.yaml: " + err.Error())
	}

	layout.Capacities.Portrait = envCapacity("LAYOUT_PORTRAIT_CAPACITY", layout.Capacities.Portrait)
	layout.Capacities.Landscape = envCapacity("LAYOUT_LANDSCAPE_CAPACITY", layout.Capacities.Landscape)
	layout.Capacities.TailFitThreshold = envCapacity("LAYOUT_TAIL_FIT_THRESHOLD", layout.Capacities.TailFitThreshold)

	return &Config{
		Layout: layout,
		Probe: ProbeConfig{
			Concurrency:   envInt("PROBE_CONCURRENCY", 8),
			Timeout:       time.Duration(envInt("PROBE_TIMEOUT_SECONDS", 30)) * time.Second,
			RatePerSecond: envInt("PROBE_RATE_PER_SECOND", 0),
			CacheTTL:      time.Duration(envInt("PROBE_CACHE_TTL_MINUTES", 30)) * time.Minute,
			UserAgent:     envString("PROBE_USER_AGENT", "appraisal-gallery"),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: os.Getenv("WEB_ALLOWED_ORIGINS"),
		},
	}
}

// EngineOptions converts the capacities into engine options.
func (c *Config) EngineOptions() gallery.Options {
	return gallery.Options{
		PortraitCapacity:  c.Layout.Capacities.Portrait,
		LandscapeCapacity: c.Layout.Capacities.Landscape,
		TailFitThreshold:  c.Layout.Capacities.TailFitThreshold,
	}
}
