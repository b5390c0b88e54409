// Package geometry places the slots of every page descriptor on the printed
// page and checks the result for layout integrity issues.
package geometry

import (
	"math"

	"github.com/kozaktomas/appraisal-gallery/internal/config"
	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
)

// LayoutConfig holds the page box and the column grid, in mm.
type LayoutConfig struct {
	PageW           float64 // 210mm
	PageH           float64 // 297mm
	TopMarginMM     float64 // 12mm
	BottomMarginMM  float64 // 12mm
	SideMarginMM    float64 // 15mm, both sides
	HeaderHeightMM  float64 // 8mm running header zone
	GridColumns     int     // 3
	ColumnGutterMM  float64 // 4mm between columns
	RowGapMM        float64 // 4mm between rows
	TextMinHeightMM float64 // 80mm
}

// DefaultLayoutConfig returns the A4 portrait configuration.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PageW:           210.0,
		PageH:           297.0,
		TopMarginMM:     12.0,
		BottomMarginMM:  12.0,
		SideMarginMM:    15.0,
		HeaderHeightMM:  8.0,
		GridColumns:     3,
		ColumnGutterMM:  4.0,
		RowGapMM:        4.0,
		TextMinHeightMM: 80.0,
	}
}

// FromPage converts the configured page into a LayoutConfig.
func FromPage(p config.PageConfig) LayoutConfig {
	return LayoutConfig{
		PageW:           p.WidthMM,
		PageH:           p.HeightMM,
		TopMarginMM:     p.TopMarginMM,
		BottomMarginMM:  p.BottomMarginMM,
		SideMarginMM:    p.SideMarginMM,
		HeaderHeightMM:  p.HeaderHeightMM,
		GridColumns:     p.Columns,
		ColumnGutterMM:  p.ColumnGapMM,
		RowGapMM:        p.RowGapMM,
		TextMinHeightMM: p.TextMinHeightMM,
	}
}

// ContentWidth returns the usable horizontal space.
// 210 - 2*15 = 180mm.
func (c LayoutConfig) ContentWidth() float64 {
	return c.PageW - 2*c.SideMarginMM
}

// CanvasTop returns the Y of the canvas zone from the top page edge.
func (c LayoutConfig) CanvasTop() float64 {
	return c.TopMarginMM + c.HeaderHeightMM
}

// CanvasHeight returns the height of the photo/text zone.
// 297 - 12 - 12 - 8 = 265mm.
func (c LayoutConfig) CanvasHeight() float64 {
	return c.PageH - c.TopMarginMM - c.BottomMarginMM - c.HeaderHeightMM
}

// ColumnWidth returns the width of a single grid column.
// (180 - 2*4) / 3 = 57.33mm.
func (c LayoutConfig) ColumnWidth() float64 {
	return (c.ContentWidth() - float64(c.GridColumns-1)*c.ColumnGutterMM) / float64(c.GridColumns)
}

// ColOffset returns the X offset of a 0-indexed column from the content left edge.
func (c LayoutConfig) ColOffset(col int) float64 {
	return float64(col) * (c.ColumnWidth() + c.ColumnGutterMM)
}

// CellHeight returns the height of one grid cell. Portrait cells are 3:4,
// landscape cells 4:3.
func (c LayoutConfig) CellHeight(o gallery.Orientation) float64 {
	if o == gallery.OrientationLandscape {
		return c.ColumnWidth() * 3 / 4
	}
	return c.ColumnWidth() * 4 / 3
}

// GridHeight returns the height of n cells laid out in rows.
func (c LayoutConfig) GridHeight(n int, o gallery.Orientation) float64 {
	if n <= 0 {
		return 0
	}
	rows := int(math.Ceil(float64(n) / float64(c.GridColumns)))
	return float64(rows)*c.CellHeight(o) + float64(rows-1)*c.RowGapMM
}

// Absolute converts a canvas-relative rect into page coordinates.
func (c LayoutConfig) Absolute(r SlotRect) SlotRect {
	return SlotRect{X: c.SideMarginMM + r.X, Y: c.CanvasTop() + r.Y, W: r.W, H: r.H}
}

// SlotRect defines a slot position in the canvas zone (mm, origin at top-left of canvas).
type SlotRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// SlotKind tells what a slot holds.
type SlotKind string

const (
	SlotPhoto  SlotKind = "photo"
	SlotText   SlotKind = "text"
	SlotFields SlotKind = "fields"
)

// Slot is one positioned element of a page.
type Slot struct {
	Kind        SlotKind `json:"kind"`
	PhotoNumber int      `json:"photo_number,omitempty"`
	Rect        SlotRect `json:"rect"`
}

// PageGeometry is the positioned content of one page descriptor.
type PageGeometry struct {
	PageNumber int              `json:"page_number"`
	Kind       gallery.PageKind `json:"kind"`
	Slots      []Slot           `json:"slots"`
}

// Place computes slot rectangles for a single page descriptor. Photo grids
// stack from the top of the canvas; the merged strip follows the portrait
// grid and a trailing text block takes the remaining height.
func Place(page gallery.PageDescriptor, config LayoutConfig) PageGeometry {
	geo := PageGeometry{PageNumber: page.Number, Kind: page.Kind}
	cw := config.ContentWidth()
	ch := config.CanvasHeight()

	if !page.Kind.IsPhoto() {
		kind := SlotFields
		if page.Kind == gallery.PageText {
			kind = SlotText
		}
		geo.Slots = []Slot{{Kind: kind, Rect: SlotRect{0, 0, cw, ch}}}
		return geo
	}

	y := 0.0
	for _, block := range [][]gallery.PlacedPhoto{page.Photos, page.Merged} {
		if len(block) == 0 {
			continue
		}
		if y > 0 {
			y += config.RowGapMM
		}
		geo.Slots = append(geo.Slots, gridSlots(block, y, config)...)
		y += config.GridHeight(len(block), block[0].Orientation)
	}

	if page.Text != nil {
		if y > 0 {
			y += config.RowGapMM
		}
		geo.Slots = append(geo.Slots, Slot{Kind: SlotText, Rect: SlotRect{0, y, cw, ch - y}})
	}
	return geo
}

// PlaceAll computes the geometry of every page.
func PlaceAll(pages []gallery.PageDescriptor, config LayoutConfig) []PageGeometry {
	out := make([]PageGeometry, len(pages))
	for i, p := range pages {
		out[i] = Place(p, config)
	}
	return out
}

func gridSlots(photos []gallery.PlacedPhoto, top float64, config LayoutConfig) []Slot {
	colW := config.ColumnWidth()
	slots := make([]Slot, len(photos))
	for i, p := range photos {
		row := i / config.GridColumns
		col := i % config.GridColumns
		cellH := config.CellHeight(p.Orientation)
		slots[i] = Slot{
			Kind:        SlotPhoto,
			PhotoNumber: p.Number,
			Rect: SlotRect{
				X: config.ColOffset(col),
				Y: top + float64(row)*(cellH+config.RowGapMM),
				W: colW,
				H: cellH,
			},
		}
	}
	return slots
}
