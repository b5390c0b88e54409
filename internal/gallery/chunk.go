package gallery

// Partition splits photos into portrait and landscape streams, keeping the
// relative order of each stream.
func Partition(photos []Photo) (portrait, landscape []Photo) {
	for _, p := range photos {
		if p.Orientation == OrientationLandscape {
			landscape = append(landscape, p)
		} else {
			portrait = append(portrait, p)
		}
	}
	return portrait, landscape
}

// Chunk splits a single-orientation stream into groups of at most capacity
// photos. Only the last group may be short; an empty stream yields no groups,
// and so does a capacity below one (Options.Validate rejects it earlier).
func Chunk(photos []Photo, orientation Orientation, capacity int) []PhotoGroup {
	if len(photos) == 0 || capacity < 1 {
		return nil
	}
	groups := make([]PhotoGroup, 0, (len(photos)+capacity-1)/capacity)
	for start := 0; start < len(photos); start += capacity {
		end := min(start+capacity, len(photos))
		page := make([]Photo, end-start)
		copy(page, photos[start:end])
		groups = append(groups, PhotoGroup{
			Orientation: orientation,
			Capacity:    capacity,
			Photos:      page,
		})
	}
	return groups
}
