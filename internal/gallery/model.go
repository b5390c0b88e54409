package gallery

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Orientation is the intrinsic pixel orientation of a photo.
type Orientation string

// Orientation values. OrientationUnknown only exists before classification.
const (
	OrientationUnknown   Orientation = ""
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// OrientationFromSize classifies pixel dimensions. Square images are portrait.
func OrientationFromSize(width, height int) Orientation {
	if width > height {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// Photo is a single user photo reference.
type Photo struct {
	ID           string      `json:"id"`
	SourceURL    string      `json:"source_url"`
	AnnotatedURL string      `json:"annotated_url,omitempty"`
	Orientation  Orientation `json:"orientation,omitempty"`
}

// RenderURL returns the annotated variant when present, otherwise the source.
func (p Photo) RenderURL() string {
	if p.AnnotatedURL != "" {
		return p.AnnotatedURL
	}
	return p.SourceURL
}

// AssignMissingIDs returns a copy of photos where every photo without an ID
// gets a random UUID.
func AssignMissingIDs(photos []Photo) []Photo {
	out := make([]Photo, len(photos))
	for i, p := range photos {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		out[i] = p
	}
	return out
}

// PhotoGroup is one page worth of same-orientation photos.
type PhotoGroup struct {
	Orientation Orientation
	Capacity    int
	Photos      []Photo
}

// Len returns the number of photos in the group.
func (g PhotoGroup) Len() int {
	return len(g.Photos)
}

// TextSections holds the two trailing narrative blocks. They always render
// together and in field order.
type TextSections struct {
	DocumentaryStatus  string `json:"documentary_status"`
	InfluencingFactors string `json:"influencing_factors"`
}

// NewTextSections normalizes both blocks to NFC and trims surrounding whitespace.
func NewTextSections(documentaryStatus, influencingFactors string) TextSections {
	return TextSections{
		DocumentaryStatus:  normalizeText(documentaryStatus),
		InfluencingFactors: normalizeText(influencingFactors),
	}
}

func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Fields is opaque business content threaded through to non-photo pages
// unchanged.
type Fields map[string]string

// Document carries the fields of the fixed, non-photo pages.
type Document struct {
	Cover           Fields `json:"cover,omitempty"`
	Presentation    Fields `json:"presentation,omitempty"`
	Summary         Fields `json:"summary,omitempty"`
	PropertyDetails Fields `json:"property_details,omitempty"`
	Methodology     Fields `json:"methodology,omitempty"`
	Considerations  Fields `json:"considerations,omitempty"`
}

// PageKind tags a PageDescriptor.
type PageKind string

// Page kinds in the order they can appear in a document.
const (
	PageCover                PageKind = "cover"
	PageNarrative            PageKind = "narrative"
	PagePhotoPortrait        PageKind = "photoPortrait"
	PagePhotoLandscape       PageKind = "photoLandscape"
	PagePhotoLandscapeMerged PageKind = "photoLandscapeMerged"
	PageText                 PageKind = "text"
	PageClosing              PageKind = "closing"
)

// IsPhoto reports whether pages of this kind carry photos.
func (k PageKind) IsPhoto() bool {
	return k == PagePhotoPortrait || k == PagePhotoLandscape || k == PagePhotoLandscapeMerged
}

// Section names of the fixed pages.
const (
	SectionCover           = "cover"
	SectionPresentation    = "presentation"
	SectionSummary         = "summary"
	SectionPropertyDetails = "property_details"
	SectionMethodology     = "methodology"
	SectionConsiderations  = "considerations"
)

// PlacedPhoto is a photo as it appears on a page.
type PlacedPhoto struct {
	Number      int         `json:"number"` // 1-based, document order
	ID          string      `json:"id"`
	URL         string      `json:"url"`
	Orientation Orientation `json:"orientation"`
}

// PageDescriptor describes one physical page. Only the fields relevant to
// Kind are set.
type PageDescriptor struct {
	Number  int           `json:"number"`
	Kind    PageKind      `json:"kind"`
	Section string        `json:"section,omitempty"`
	Fields  Fields        `json:"fields,omitempty"`
	Photos  []PlacedPhoto `json:"photos,omitempty"`
	Merged  []PlacedPhoto `json:"merged,omitempty"`
	Text    *TextSections `json:"text,omitempty"`
}

// PhotoCount returns the number of photos shown on the page.
func (p PageDescriptor) PhotoCount() int {
	return len(p.Photos) + len(p.Merged)
}
