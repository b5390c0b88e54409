package classify

import (
	"context"
	"log"
	"time"

	"github.com/kozaktomas/appraisal-gallery/internal/config"
	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 8
	maxCacheKeyLen     = 2048
)

// Classifier assigns an orientation to every photo. Probes run concurrently
// and Classify returns only after all of them have settled.
type Classifier struct {
	prober      Prober
	concurrency int
	cache       *cache.Cache
	progress    func()
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithConcurrency bounds the number of probes in flight.
func WithConcurrency(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithCache remembers successful probes of source references for ttl.
// Failed probes and annotated references are not cached.
func WithCache(ttl time.Duration) Option {
	return func(c *Classifier) {
		if ttl > 0 {
			c.cache = cache.New(ttl, 2*ttl)
		}
	}
}

// WithProgress registers a callback invoked once per settled photo. It may be
// called from several goroutines at once.
func WithProgress(fn func()) Option {
	return func(c *Classifier) {
		c.progress = fn
	}
}

// NewClassifier creates a classifier on top of prober.
func NewClassifier(prober Prober, opts ...Option) *Classifier {
	c := &Classifier{
		prober:      prober,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns a copy of photos with every orientation resolved, in input
// order. Photos that already carry an orientation keep it. An image that
// cannot be read is classified as portrait. The only error is ctx's.
func (c *Classifier) Classify(ctx context.Context, photos []gallery.Photo) ([]gallery.Photo, error) {
	out := make([]gallery.Photo, len(photos))
	copy(out, photos)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)
	for i := range out {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			// Each goroutine writes only its own slot.
			out[i].Orientation = c.classifyOne(egCtx, out[i])
			if c.progress != nil {
				c.progress()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Classifier) classifyOne(ctx context.Context, p gallery.Photo) gallery.Orientation {
	if p.Orientation == gallery.OrientationPortrait || p.Orientation == gallery.OrientationLandscape {
		return p.Orientation
	}

	// Annotated images are edited in place, so only source references are cached.
	ref := p.RenderURL()
	cacheable := c.cache != nil && p.AnnotatedURL == "" && len(ref) <= maxCacheKeyLen
	if cacheable {
		if v, ok := c.cache.Get(ref); ok {
			return v.(Dimensions).Orientation()
		}
	}

	dims, err := c.prober.Probe(ctx, ref)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("WARNING: could not read image for photo %s (%s), assuming portrait: %v",
				sanitizeForLog(p.ID), sanitizeForLog(ref), err)
		}
		return gallery.OrientationPortrait
	}

	if cacheable {
		c.cache.SetDefault(ref, dims)
	}
	return dims.Orientation()
}

// NewDefaultProber dispatches local paths, file:// and data: references
// locally and fetches http(s) references with an HTTPProber.
func NewDefaultProber(cfg config.ProbeConfig) SchemeProber {
	web := NewHTTPProber(cfg.Timeout, cfg.RatePerSecond, cfg.UserAgent)
	return SchemeProber{
		"":      FileProber{},
		"file":  FileProber{},
		"data":  DataURIProber{},
		"http":  web,
		"https": web,
	}
}

// NewRemoteProber is NewDefaultProber without filesystem access, for
// references supplied by HTTP clients.
func NewRemoteProber(cfg config.ProbeConfig) SchemeProber {
	p := NewDefaultProber(cfg)
	delete(p, "")
	delete(p, "file")
	return p
}

// FromConfig creates a classifier with the configured prober, concurrency
// and probe cache.
func FromConfig(cfg config.ProbeConfig, opts ...Option) *Classifier {
	return newFromConfig(cfg, NewDefaultProber(cfg), opts)
}

// RemoteFromConfig is FromConfig on top of NewRemoteProber.
func RemoteFromConfig(cfg config.ProbeConfig, opts ...Option) *Classifier {
	return newFromConfig(cfg, NewRemoteProber(cfg), opts)
}

func newFromConfig(cfg config.ProbeConfig, prober Prober, opts []Option) *Classifier {
	opts = append([]Option{WithConcurrency(cfg.Concurrency), WithCache(cfg.CacheTTL)}, opts...)
	return NewClassifier(prober, opts...)
}
