package classify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
	"github.com/patrickmn/go-cache"
)

// ErrSuperseded is returned by a run that was replaced by a newer run on the
// same Session before it finished.
var ErrSuperseded = errors.New("classification superseded by a newer run")

// Session serializes classification runs for one document. Starting a run
// cancels the previous one; a replaced run never returns its results.
type Session struct {
	classifier *Classifier

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelCauseFunc
}

// NewSession creates a session on top of classifier.
func NewSession(classifier *Classifier) *Session {
	return &Session{classifier: classifier}
}

// Classify runs the classifier, superseding any run still in flight.
func (s *Session) Classify(ctx context.Context, photos []gallery.Photo) ([]gallery.Photo, error) {
	runCtx, cancel := context.WithCancelCause(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()

	out, err := s.classifier.Classify(runCtx, photos)

	s.mu.Lock()
	current := s.gen == gen
	if current {
		s.cancel = nil
	}
	s.mu.Unlock()

	superseded := errors.Is(context.Cause(runCtx), ErrSuperseded)
	cancel(nil)

	if !current || superseded {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel abandons the run in flight, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
		s.cancel = nil
	}
	s.gen++
}

// Sessions hands out one Session per document key. Idle sessions expire.
type Sessions struct {
	classifier *Classifier
	mu         sync.Mutex
	sessions   *cache.Cache
}

// NewSessions creates a registry whose sessions expire after idle.
func NewSessions(classifier *Classifier, idle time.Duration) *Sessions {
	return &Sessions{
		classifier: classifier,
		sessions:   cache.New(idle, 2*idle),
	}
}

// Get returns the session for key, creating it on first use. An empty key
// always gets a fresh, unshared session.
func (r *Sessions) Get(key string) *Session {
	if key == "" {
		return NewSession(r.classifier)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.sessions.Get(key); ok {
		r.sessions.SetDefault(key, v)
		return v.(*Session)
	}
	s := NewSession(r.classifier)
	r.sessions.SetDefault(key, s)
	return s
}
