// Package classify resolves photo orientations by reading image headers.
package classify

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"strings"

	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrInvalidDimensions is returned for images reporting a zero or negative size.
	ErrInvalidDimensions = errors.New("image has invalid dimensions")
	// ErrUnsupportedScheme is returned when no prober handles a reference.
	ErrUnsupportedScheme = errors.New("unsupported image reference scheme")
)

// Dimensions are the pixel dimensions of an image.
type Dimensions struct {
	Width  int
	Height int
}

// Orientation classifies the dimensions.
func (d Dimensions) Orientation() gallery.Orientation {
	return gallery.OrientationFromSize(d.Width, d.Height)
}

// Prober reads the dimensions of the image behind a reference.
type Prober interface {
	Probe(ctx context.Context, ref string) (Dimensions, error)
}

// decodeDimensions reads only the image header from r.
func decodeDimensions(r io.Reader) (Dimensions, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// SchemeProber dispatches by reference scheme ("http", "https", "file",
// "data"). Plain paths have the empty scheme.
type SchemeProber map[string]Prober

// Probe implements Prober.
func (s SchemeProber) Probe(ctx context.Context, ref string) (Dimensions, error) {
	scheme := schemeOf(ref)
	p, ok := s[scheme]
	if !ok {
		return Dimensions{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return p.Probe(ctx, ref)
}

func schemeOf(ref string) string {
	// data URIs are not valid URLs for url.Parse once they grow large or contain spaces.
	if len(ref) >= 5 && strings.EqualFold(ref[:5], "data:") {
		return "data"
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
// Long references (data URIs) are shortened.
func sanitizeForLog(s string) string {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
