package geometry

import (
	"fmt"
	"math"
	"testing"

	"github.com/kozaktomas/appraisal-gallery/internal/config"
	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
)

func classified(n int, o gallery.Orientation) []gallery.Photo {
	photos := make([]gallery.Photo, n)
	for i := range photos {
		photos[i] = gallery.Photo{
			ID:          fmt.Sprintf("%s-%d", o, i),
			SourceURL:   fmt.Sprintf("https://example.com/%s/%d.jpg", o, i),
			Orientation: o,
		}
	}
	return photos
}

func layout(t *testing.T, opts gallery.Options, portrait, landscape int) []gallery.PageDescriptor {
	t.Helper()
	engine, err := gallery.NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	photos := append(classified(portrait, gallery.OrientationPortrait), classified(landscape, gallery.OrientationLandscape)...)
	pages, err := engine.Layout(photos, gallery.NewTextSections("status", "factors"), gallery.Document{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	return pages
}

func TestCanvasDimensions(t *testing.T) {
	cfg := DefaultLayoutConfig()

	// 210 - 2*15 = 180
	if got := cfg.ContentWidth(); math.Abs(got-180) > 0.01 {
		t.Errorf("ContentWidth: expected 180.00, got %.2f", got)
	}
	// 297 - 12 - 12 - 8 = 265
	if got := cfg.CanvasHeight(); math.Abs(got-265) > 0.01 {
		t.Errorf("CanvasHeight: expected 265.00, got %.2f", got)
	}
	// (180 - 8) / 3 = 57.33
	if got := cfg.ColumnWidth(); math.Abs(got-57.33) > 0.01 {
		t.Errorf("ColumnWidth: expected 57.33, got %.2f", got)
	}
}

func TestCellHeight(t *testing.T) {
	cfg := DefaultLayoutConfig()
	if got := cfg.CellHeight(gallery.OrientationPortrait); math.Abs(got-76.44) > 0.01 {
		t.Errorf("portrait cell: expected 76.44, got %.2f", got)
	}
	if got := cfg.CellHeight(gallery.OrientationLandscape); math.Abs(got-43.0) > 0.01 {
		t.Errorf("landscape cell: expected 43.00, got %.2f", got)
	}
}

func TestGridHeight(t *testing.T) {
	cfg := DefaultLayoutConfig()
	tests := []struct {
		n    int
		o    gallery.Orientation
		want float64
	}{
		{0, gallery.OrientationPortrait, 0},
		{1, gallery.OrientationPortrait, 76.44},
		{3, gallery.OrientationPortrait, 76.44},
		{9, gallery.OrientationPortrait, 237.33},
		{12, gallery.OrientationLandscape, 184.0},
		{5, gallery.OrientationLandscape, 90.0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", tt.n, tt.o), func(t *testing.T) {
			if got := cfg.GridHeight(tt.n, tt.o); math.Abs(got-tt.want) > 0.01 {
				t.Errorf("expected %.2f, got %.2f", tt.want, got)
			}
		})
	}
}

func TestFromPage_MatchesDefault(t *testing.T) {
	got := FromPage(config.Load().Layout.Page)
	if got != DefaultLayoutConfig() {
		t.Errorf("embedded page config %+v differs from default %+v", got, DefaultLayoutConfig())
	}
}

func TestPlace_FixedPageFillsCanvas(t *testing.T) {
	cfg := DefaultLayoutConfig()
	geo := Place(gallery.PageDescriptor{Number: 1, Kind: gallery.PageCover}, cfg)

	if len(geo.Slots) != 1 || geo.Slots[0].Kind != SlotFields {
		t.Fatalf("expected a single fields slot, got %+v", geo.Slots)
	}
	r := geo.Slots[0].Rect
	if r.W != cfg.ContentWidth() || r.H != cfg.CanvasHeight() {
		t.Errorf("expected full canvas, got %+v", r)
	}
}

func TestPlace_MergedPage(t *testing.T) {
	cfg := DefaultLayoutConfig()
	pages := layout(t, gallery.DefaultOptions(), 5, 4)

	var merged *gallery.PageDescriptor
	for i := range pages {
		if pages[i].Kind == gallery.PagePhotoLandscapeMerged {
			merged = &pages[i]
		}
	}
	if merged == nil {
		t.Fatal("expected a merged page")
	}

	geo := Place(*merged, cfg)
	if len(geo.Slots) != 9 {
		t.Fatalf("expected 9 photo slots, got %d", len(geo.Slots))
	}
	// Merged strip starts one row gap below the two portrait rows.
	wantY := cfg.GridHeight(5, gallery.OrientationPortrait) + cfg.RowGapMM
	if got := geo.Slots[5].Rect.Y; math.Abs(got-wantY) > 0.01 {
		t.Errorf("merged strip Y: expected %.2f, got %.2f", wantY, got)
	}
	if geo.Slots[5].PhotoNumber != 6 {
		t.Errorf("expected first merged photo number 6, got %d", geo.Slots[5].PhotoNumber)
	}
	if w := ValidatePages([]PageGeometry{geo}, cfg); len(w) != 0 {
		t.Errorf("expected no warnings, got %+v", w)
	}
}

func TestPlace_TextTailTakesRemainingSpace(t *testing.T) {
	cfg := DefaultLayoutConfig()
	pages := layout(t, gallery.DefaultOptions(), 4, 0)

	var tail gallery.PageDescriptor
	for _, p := range pages {
		if p.Kind == gallery.PagePhotoPortrait {
			tail = p
		}
	}
	if tail.Text == nil {
		t.Fatal("expected text on the portrait tail page")
	}

	geo := Place(tail, cfg)
	text := geo.Slots[len(geo.Slots)-1]
	if text.Kind != SlotText {
		t.Fatalf("expected last slot to be text, got %s", text.Kind)
	}
	bottom := text.Rect.Y + text.Rect.H
	if math.Abs(bottom-cfg.CanvasHeight()) > 0.01 {
		t.Errorf("text block should reach canvas bottom, ends at %.2f", bottom)
	}
	if text.Rect.H < cfg.TextMinHeightMM {
		t.Errorf("text block too small: %.2f", text.Rect.H)
	}
}

func TestDefaultCapacitiesFitCanvas(t *testing.T) {
	cfg := DefaultLayoutConfig()
	for p := 0; p <= 30; p++ {
		for l := 0; l <= 30; l++ {
			pages := layout(t, gallery.DefaultOptions(), p, l)
			if w := ValidatePages(PlaceAll(pages, cfg), cfg); len(w) != 0 {
				t.Fatalf("%d portrait + %d landscape: unexpected warnings %+v", p, l, w)
			}
		}
	}
}

func TestValidatePages_OversizedCapacity(t *testing.T) {
	cfg := DefaultLayoutConfig()
	opts := gallery.DefaultOptions()
	opts.PortraitCapacity = 12 // four portrait rows do not fit
	pages := layout(t, opts, 12, 0)

	warnings := ValidatePages(PlaceAll(pages, cfg), cfg)
	if !HasErrors(warnings) {
		t.Error("expected an out-of-canvas error for a 12 photo portrait page")
	}
}

func TestValidatePages_UndersizedText(t *testing.T) {
	cfg := DefaultLayoutConfig()
	opts := gallery.DefaultOptions()
	opts.TailFitThreshold = 9 // lets text share a full portrait page
	pages := layout(t, opts, 9, 0)

	warnings := ValidatePages(PlaceAll(pages, cfg), cfg)
	found := false
	for _, w := range warnings {
		if w.Severity == "warning" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an undersized text warning, got %+v", warnings)
	}
	if HasErrors(warnings) {
		t.Errorf("undersized text should not be an error, got %+v", warnings)
	}
}

func TestValidatePages_Overlap(t *testing.T) {
	cfg := DefaultLayoutConfig()
	page := PageGeometry{
		PageNumber: 1,
		Kind:       gallery.PagePhotoPortrait,
		Slots: []Slot{
			{Kind: SlotPhoto, Rect: SlotRect{0, 0, 100, 100}},
			{Kind: SlotPhoto, Rect: SlotRect{50, 50, 100, 100}},
		},
	}

	warnings := ValidatePages([]PageGeometry{page}, cfg)
	found := false
	for _, w := range warnings {
		if w.Message == "slot 0 overlaps with slot 1" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected overlap warning between slot 0 and slot 1, got none")
	}
}

func TestRectsOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b SlotRect
		want bool
	}{
		{"disjoint", SlotRect{0, 0, 10, 10}, SlotRect{20, 0, 10, 10}, false},
		{"touching", SlotRect{0, 0, 10, 10}, SlotRect{10, 0, 10, 10}, false},
		{"overlapping", SlotRect{0, 0, 10, 10}, SlotRect{5, 5, 10, 10}, true},
		{"contained", SlotRect{0, 0, 10, 10}, SlotRect{2, 2, 2, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rectsOverlap(tt.a.X, tt.a.Y, tt.a.W, tt.a.H, tt.b.X, tt.b.Y, tt.b.W, tt.b.H, 0.01)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAbsolute(t *testing.T) {
	cfg := DefaultLayoutConfig()
	got := cfg.Absolute(SlotRect{0, 0, 10, 10})
	if got.X != 15 || got.Y != 20 {
		t.Errorf("expected origin at (15, 20), got (%.2f, %.2f)", got.X, got.Y)
	}
}
