// Package report composes a full layout run and summarizes it for quality
// analysis.
package report

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
	"github.com/kozaktomas/appraisal-gallery/internal/geometry"
)

// Run is the output of one layout run over classified photos.
type Run struct {
	ID       string
	Plan     gallery.Plan
	Pages    []gallery.PageDescriptor
	Geometry []geometry.PageGeometry
	Warnings []geometry.ValidationWarning
	Options  gallery.Options
}

// Compose lays out classified photos, places every page on the canvas and
// validates the result. Validation findings never fail the run.
func Compose(engine *gallery.Engine, config geometry.LayoutConfig, photos []gallery.Photo, text gallery.TextSections, doc gallery.Document) (*Run, error) {
	plan, err := engine.Plan(photos)
	if err != nil {
		return nil, err
	}
	pages := gallery.Assemble(plan, text, doc)
	geo := geometry.PlaceAll(pages, config)

	return &Run{
		ID:       uuid.NewString(),
		Plan:     plan,
		Pages:    pages,
		Geometry: geo,
		Warnings: geometry.ValidatePages(geo, config),
		Options:  engine.Options(),
	}, nil
}

// PlanSummary is the JSON form of the layout decisions.
type PlanSummary struct {
	PortraitGroups  []int  `json:"portrait_groups"`
	LandscapeGroups []int  `json:"landscape_groups"`
	MergeApplied    bool   `json:"merge_applied"`
	MergedPhotos    int    `json:"merged_photos"`
	TextPlacement   string `json:"text_placement"`
}

// Summarize reduces a plan to group sizes and decisions.
func Summarize(plan gallery.Plan) PlanSummary {
	s := PlanSummary{
		PortraitGroups:  groupSizes(plan.Portrait),
		LandscapeGroups: groupSizes(plan.Landscape),
		MergeApplied:    plan.Merge.Applied,
		TextPlacement:   string(plan.Text),
	}
	if plan.Merge.Applied {
		s.MergedPhotos = plan.Merge.Group.Len()
	}
	return s
}

func groupSizes(groups []gallery.PhotoGroup) []int {
	sizes := make([]int, len(groups))
	for i, g := range groups {
		sizes[i] = g.Len()
	}
	return sizes
}

// Capacities echoes the engine configuration used for a run.
type Capacities struct {
	Portrait         int `json:"portrait"`
	Landscape        int `json:"landscape"`
	TailFitThreshold int `json:"tail_fit_threshold"`
}

// ExportReport contains metadata about a layout run for quality analysis.
type ExportReport struct {
	RunID      string       `json:"run_id"`
	PageCount  int          `json:"page_count"`
	PhotoCount int          `json:"photo_count"`
	Capacities Capacities   `json:"capacities"`
	Plan       PlanSummary  `json:"plan"`
	Pages      []ReportPage `json:"pages"`
	Warnings   []string     `json:"warnings"`
}

// ReportPage describes a single page in the export report.
type ReportPage struct {
	PageNumber int           `json:"page_number"`
	Kind       string        `json:"kind"`
	Section    string        `json:"section,omitempty"`
	HasText    bool          `json:"has_text"`
	Photos     []ReportPhoto `json:"photos,omitempty"`
}

// ReportPhoto describes a single photo placement in the export report.
type ReportPhoto struct {
	Number    int     `json:"number"`
	PhotoID   string  `json:"photo_id"`
	SlotIndex int     `json:"slot_index"`
	Merged    bool    `json:"merged"`
	WidthMM   float64 `json:"width_mm"`
	HeightMM  float64 `json:"height_mm"`
}

// Report builds the export report of a run.
func (r *Run) Report() *ExportReport {
	report := &ExportReport{
		RunID:     r.ID,
		PageCount: len(r.Pages),
		Capacities: Capacities{
			Portrait:         r.Options.PortraitCapacity,
			Landscape:        r.Options.LandscapeCapacity,
			TailFitThreshold: r.Options.TailFitThreshold,
		},
		Plan:     Summarize(r.Plan),
		Pages:    make([]ReportPage, 0, len(r.Pages)),
		Warnings: []string{},
	}

	for i, page := range r.Pages {
		rp := ReportPage{
			PageNumber: page.Number,
			Kind:       string(page.Kind),
			Section:    page.Section,
			HasText:    page.Text != nil,
		}
		slots := photoSlots(r.Geometry, i)
		for j, p := range page.Photos {
			rp.Photos = append(rp.Photos, reportPhoto(p, j, false, slots))
		}
		for j, p := range page.Merged {
			rp.Photos = append(rp.Photos, reportPhoto(p, len(page.Photos)+j, true, slots))
		}
		report.PhotoCount += page.PhotoCount()
		report.Pages = append(report.Pages, rp)
	}

	for _, w := range r.Warnings {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Page %d, slot %d (%s): %s", w.PageNumber, w.SlotIndex, w.Severity, w.Message))
	}
	return report
}

func photoSlots(geo []geometry.PageGeometry, page int) map[int]geometry.SlotRect {
	slots := make(map[int]geometry.SlotRect)
	if page >= len(geo) {
		return slots
	}
	for _, s := range geo[page].Slots {
		if s.Kind == geometry.SlotPhoto {
			slots[s.PhotoNumber] = s.Rect
		}
	}
	return slots
}

func reportPhoto(p gallery.PlacedPhoto, slot int, merged bool, slots map[int]geometry.SlotRect) ReportPhoto {
	rect := slots[p.Number]
	return ReportPhoto{
		Number:    p.Number,
		PhotoID:   p.ID,
		SlotIndex: slot,
		Merged:    merged,
		WidthMM:   rect.W,
		HeightMM:  rect.H,
	}
}
