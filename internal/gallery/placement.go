package gallery

// TextPlacement is where the trailing text sections go.
type TextPlacement string

// Placement branches, in priority order.
const (
	TextLandscapeTail TextPlacement = "landscape_tail"
	TextPortraitTail  TextPlacement = "portrait_tail"
	TextDedicatedPage TextPlacement = "dedicated_page"
)

// ResolveTextPlacement picks exactly one placement branch. landscape must be
// the groups remaining after the merge decision was applied.
func ResolveTextPlacement(portrait, landscape []PhotoGroup, merge MergeDecision, threshold int) TextPlacement {
	if len(landscape) > 0 && landscape[len(landscape)-1].Len() <= threshold {
		return TextLandscapeTail
	}
	// A merged page already spent its spare space on landscape photos.
	if len(landscape) == 0 && LastPortraitFits(portrait, threshold) && !merge.Applied {
		return TextPortraitTail
	}
	return TextDedicatedPage
}
