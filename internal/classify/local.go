package classify

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ErrMalformedDataURI is returned for data URIs that are not base64 encoded.
var ErrMalformedDataURI = errors.New("malformed data URI")

// FileProber reads image headers from the local filesystem. It accepts plain
// paths and file:// URLs.
type FileProber struct{}

// Probe implements Prober.
func (FileProber) Probe(ctx context.Context, ref string) (Dimensions, error) {
	if err := ctx.Err(); err != nil {
		return Dimensions{}, err
	}
	path := ref
	if schemeOf(ref) == "file" {
		u, err := url.Parse(ref)
		if err != nil {
			return Dimensions{}, fmt.Errorf("invalid file URL: %w", err)
		}
		path = u.Path
	}

	f, err := os.Open(path) //nolint:gosec // local CLI input
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to open photo: %w", err)
	}
	defer f.Close()

	return decodeDimensions(f)
}

// DataURIProber decodes base64 data URIs (data:image/png;base64,...).
type DataURIProber struct{}

// Probe implements Prober.
func (DataURIProber) Probe(ctx context.Context, ref string) (Dimensions, error) {
	if err := ctx.Err(); err != nil {
		return Dimensions{}, err
	}
	if schemeOf(ref) != "data" {
		return Dimensions{}, ErrMalformedDataURI
	}
	meta, payload, ok := strings.Cut(ref[len("data:"):], ",")
	if !ok || !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return Dimensions{}, ErrMalformedDataURI
	}
	return decodeDimensions(base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload)))
}
