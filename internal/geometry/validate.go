package geometry

import "fmt"

// ValidationWarning describes a layout issue found during validation.
type ValidationWarning struct {
	PageNumber int    `json:"page_number"`
	SlotIndex  int    `json:"slot_index"`
	Message    string `json:"message"`
	Severity   string `json:"severity"` // "error" or "warning"
}

// ValidatePages checks all pages for layout integrity issues.
func ValidatePages(pages []PageGeometry, config LayoutConfig) []ValidationWarning {
	var warnings []ValidationWarning
	for _, page := range pages {
		warnings = append(warnings, validatePage(page, config)...)
	}
	return warnings
}

func validatePage(page PageGeometry, config LayoutConfig) []ValidationWarning {
	var warnings []ValidationWarning
	const eps = 0.01
	cw := config.ContentWidth()
	ch := config.CanvasHeight()

	warn := func(slot int, severity, format string, args ...any) {
		warnings = append(warnings, ValidationWarning{
			PageNumber: page.PageNumber,
			SlotIndex:  slot,
			Message:    fmt.Sprintf(format, args...),
			Severity:   severity,
		})
	}

	for i, slot := range page.Slots {
		r := slot.Rect

		// Zone integrity: slot rect within canvas bounds
		if r.X < -eps {
			warn(i, "error", "slot X (%.2f) extends past content left edge", r.X)
		}
		if r.X+r.W > cw+eps {
			warn(i, "error", "slot right edge (%.2f) extends past content right edge (%.2f)", r.X+r.W, cw)
		}
		if r.Y < -eps {
			warn(i, "error", "slot Y (%.2f) extends above canvas top", r.Y)
		}
		if r.Y+r.H > ch+eps {
			warn(i, "error", "slot bottom (%.2f) extends below canvas bottom (%.2f)", r.Y+r.H, ch)
		}

		if slot.Kind == SlotText && r.H < config.TextMinHeightMM-eps {
			warn(i, "warning", "text block height %.2fmm is below minimum %.2fmm", r.H, config.TextMinHeightMM)
		}
	}

	// No overlaps: check all pairs of slots
	for i := 0; i < len(page.Slots); i++ {
		ri := page.Slots[i].Rect
		for j := i + 1; j < len(page.Slots); j++ {
			rj := page.Slots[j].Rect
			if rectsOverlap(ri.X, ri.Y, ri.W, ri.H, rj.X, rj.Y, rj.W, rj.H, eps) {
				warn(i, "error", "slot %d overlaps with slot %d", i, j)
			}
		}
	}

	return warnings
}

// HasErrors reports whether any warning has error severity.
func HasErrors(warnings []ValidationWarning) bool {
	for _, w := range warnings {
		if w.Severity == "error" {
			return true
		}
	}
	return false
}

// rectsOverlap checks if two axis-aligned rectangles overlap with tolerance.
func rectsOverlap(x1, y1, w1, h1, x2, y2, w2, h2, eps float64) bool {
	if x1+w1 <= x2+eps || x2+w2 <= x1+eps {
		return false
	}
	if y1+h1 <= y2+eps || y2+h2 <= y1+eps {
		return false
	}
	return true
}
