// Package preview renders a layout run as a printable HTML document, one
// A4 sheet per page descriptor.
package preview

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
	"github.com/kozaktomas/appraisal-gallery/internal/geometry"
	"github.com/kozaktomas/appraisal-gallery/internal/report"
)

//go:embed templates/preview.html
var templateFS embed.FS

var tmpl = template.Must(template.New("preview.html").Funcs(template.FuncMap{
	"mm":  func(v float64) string { return fmt.Sprintf("%.2fmm", v) },
	"src": imageSource,
}).ParseFS(templateFS, "templates/preview.html"))

var sectionTitles = map[string]string{
	gallery.SectionCover:           "Appraisal report",
	gallery.SectionPresentation:    "Presentation",
	gallery.SectionSummary:         "Summary",
	gallery.SectionPropertyDetails: "Property details",
	gallery.SectionMethodology:     "Methodology",
	gallery.SectionConsiderations:  "Considerations",
}

type field struct {
	Key   string
	Value string
}

type slotView struct {
	Kind   string
	X, Y   float64
	W, H   float64
	Number int
	URL    string
	Text   *gallery.TextSections
	Fields []field
}

type pageView struct {
	Number int
	Kind   string
	Title  string
	Slots  []slotView
}

type previewData struct {
	RunID      string
	PageW      float64
	PageH      float64
	SideMargin float64
	TopMargin  float64
	Pages      []pageView
	Warnings   []string
}

// Render writes the HTML preview of run to w.
func Render(w io.Writer, run *report.Run, config geometry.LayoutConfig) error {
	data := previewData{
		RunID:      run.ID,
		PageW:      config.PageW,
		PageH:      config.PageH,
		SideMargin: config.SideMarginMM,
		TopMargin:  config.TopMarginMM,
		Pages:      make([]pageView, 0, len(run.Pages)),
		Warnings:   run.Report().Warnings,
	}

	for i, page := range run.Pages {
		var geo geometry.PageGeometry
		if i < len(run.Geometry) {
			geo = run.Geometry[i]
		} else {
			geo = geometry.Place(page, config)
		}
		data.Pages = append(data.Pages, buildPage(page, geo, config))
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

func buildPage(page gallery.PageDescriptor, geo geometry.PageGeometry, config geometry.LayoutConfig) pageView {
	photos := make(map[int]gallery.PlacedPhoto, page.PhotoCount())
	for _, p := range page.Photos {
		photos[p.Number] = p
	}
	for _, p := range page.Merged {
		photos[p.Number] = p
	}

	view := pageView{Number: page.Number, Kind: string(page.Kind), Title: pageTitle(page)}
	for _, s := range geo.Slots {
		r := config.Absolute(s.Rect)
		sv := slotView{Kind: string(s.Kind), X: r.X, Y: r.Y, W: r.W, H: r.H}
		switch s.Kind {
		case geometry.SlotPhoto:
			sv.Number = s.PhotoNumber
			sv.URL = photos[s.PhotoNumber].URL
		case geometry.SlotText:
			sv.Text = page.Text
		case geometry.SlotFields:
			sv.Fields = sortedFields(page.Fields)
		}
		view.Slots = append(view.Slots, sv)
	}
	return view
}

func pageTitle(page gallery.PageDescriptor) string {
	switch {
	case page.Kind.IsPhoto():
		return "Photographic record"
	case page.Kind == gallery.PageText:
		return "Documentary status and influencing factors"
	default:
		return sectionTitles[page.Section]
	}
}

func sortedFields(f gallery.Fields) []field {
	keys := slices.Sorted(maps.Keys(f))
	out := make([]field, len(keys))
	for i, k := range keys {
		out[i] = field{Key: k, Value: f[k]}
	}
	return out
}

// imageSource passes through web and local references and inline images.
// Anything else is replaced so the template never emits a script URL.
func imageSource(ref string) template.URL {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "file://"), strings.HasPrefix(lower, "data:image/"):
		return template.URL(ref) //nolint:gosec // scheme checked above
	case !strings.Contains(ref, ":"):
		return template.URL(ref) //nolint:gosec // relative path
	default:
		return "#"
	}
}
