package gallery

// MergeDecision records whether the first landscape group is folded into the
// last portrait page.
type MergeDecision struct {
	Applied bool
	// Group is the landscape group moved onto the last portrait page.
	Group PhotoGroup
}

// HasPortraitGroup is merge precondition (a).
func HasPortraitGroup(portrait []PhotoGroup) bool {
	return len(portrait) > 0
}

// LastPortraitFits is merge precondition (b).
func LastPortraitFits(portrait []PhotoGroup, threshold int) bool {
	return len(portrait) > 0 && portrait[len(portrait)-1].Len() <= threshold
}

// HasLandscapeGroup is merge precondition (c).
func HasLandscapeGroup(landscape []PhotoGroup) bool {
	return len(landscape) > 0
}

// FirstLandscapeFits is merge precondition (d).
func FirstLandscapeFits(landscape []PhotoGroup, threshold int) bool {
	return len(landscape) > 0 && landscape[0].Len() <= threshold
}

// ResolveMerge evaluates the merge rule once. At most one group is ever merged.
func ResolveMerge(portrait, landscape []PhotoGroup, threshold int) MergeDecision {
	if !HasPortraitGroup(portrait) || !LastPortraitFits(portrait, threshold) {
		return MergeDecision{}
	}
	if !HasLandscapeGroup(landscape) || !FirstLandscapeFits(landscape, threshold) {
		return MergeDecision{}
	}
	return MergeDecision{Applied: true, Group: landscape[0]}
}

// Apply returns the landscape groups left after the decision.
func (d MergeDecision) Apply(landscape []PhotoGroup) []PhotoGroup {
	if !d.Applied || len(landscape) == 0 {
		return landscape
	}
	return landscape[1:]
}
