package classify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPProber reads image headers over HTTP(S).
type HTTPProber struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewHTTPProber creates an HTTP prober. A zero timeout disables the client
// timeout and a zero ratePerSecond disables rate limiting.
func NewHTTPProber(timeout time.Duration, ratePerSecond int, userAgent string) *HTTPProber {
	p := &HTTPProber{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
	if ratePerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond)
	}
	return p
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, ref string) (Dimensions, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Dimensions{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return Dimensions{}, fmt.Errorf("could not create request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req) //nolint:gosec // photo URLs are supplied by the report owner
	if err != nil {
		return Dimensions{}, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		// Drain a little so the connection can be reused; the header decode
		// usually stops after the first few kilobytes.
		_, _ = io.CopyN(io.Discard, resp.Body, 64<<10)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Dimensions{}, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return decodeDimensions(resp.Body)
}
