package gallery

import (
	"errors"
	"fmt"
)

// Default page capacities and the fixed tail-fit threshold. The threshold is
// a chosen constant; it is not derived from either capacity.
const (
	DefaultPortraitCapacity  = 9  // 3x3 grid
	DefaultLandscapeCapacity = 12 // 3x4 grid
	DefaultTailFitThreshold  = 6
)

var (
	// ErrInvalidCapacity is returned when a page capacity is not positive.
	ErrInvalidCapacity = errors.New("page capacity must be positive")
	// ErrInvalidThreshold is returned when the tail-fit threshold is not positive.
	ErrInvalidThreshold = errors.New("tail-fit threshold must be positive")
	// ErrUnclassifiedPhoto is returned when a photo reaches layout without an orientation.
	ErrUnclassifiedPhoto = errors.New("photo has no orientation")
)

// Options configures an Engine.
type Options struct {
	PortraitCapacity  int
	LandscapeCapacity int
	TailFitThreshold  int
}

// DefaultOptions returns the standard 9/12/6 configuration.
func DefaultOptions() Options {
	return Options{
		PortraitCapacity:  DefaultPortraitCapacity,
		LandscapeCapacity: DefaultLandscapeCapacity,
		TailFitThreshold:  DefaultTailFitThreshold,
	}
}

// Validate rejects non-positive capacities and thresholds.
func (o Options) Validate() error {
	if o.PortraitCapacity <= 0 {
		return fmt.Errorf("portrait: %w", ErrInvalidCapacity)
	}
	if o.LandscapeCapacity <= 0 {
		return fmt.Errorf("landscape: %w", ErrInvalidCapacity)
	}
	if o.TailFitThreshold <= 0 {
		return ErrInvalidThreshold
	}
	return nil
}

// Engine lays out classified photos into pages. It holds no state besides its
// options and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine validates opts and returns an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Plan holds the intermediate decisions of a layout run.
type Plan struct {
	Portrait  []PhotoGroup
	Landscape []PhotoGroup // after the merge removed its first group, if it fired
	Merge     MergeDecision
	Text      TextPlacement
}

// Plan runs the chunker and both resolvers over already classified photos.
func (e *Engine) Plan(photos []Photo) (Plan, error) {
	for i, p := range photos {
		if p.Orientation != OrientationPortrait && p.Orientation != OrientationLandscape {
			return Plan{}, fmt.Errorf("photo %d (%s): %w", i, p.ID, ErrUnclassifiedPhoto)
		}
	}

	portraitPhotos, landscapePhotos := Partition(photos)
	portrait := Chunk(portraitPhotos, OrientationPortrait, e.opts.PortraitCapacity)
	landscape := Chunk(landscapePhotos, OrientationLandscape, e.opts.LandscapeCapacity)

	merge := ResolveMerge(portrait, landscape, e.opts.TailFitThreshold)
	landscape = merge.Apply(landscape)
	text := ResolveTextPlacement(portrait, landscape, merge, e.opts.TailFitThreshold)

	return Plan{
		Portrait:  portrait,
		Landscape: landscape,
		Merge:     merge,
		Text:      text,
	}, nil
}

// Layout produces the ordered page descriptors for one report.
func (e *Engine) Layout(photos []Photo, text TextSections, doc Document) ([]PageDescriptor, error) {
	plan, err := e.Plan(photos)
	if err != nil {
		return nil, err
	}
	return Assemble(plan, text, doc), nil
}
