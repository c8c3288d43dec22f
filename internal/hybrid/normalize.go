package hybrid

import "github.com/agrama-dev/agrama/internal/store"

// minMaxNormalize rescales raw scores to [0, 1] by min-max over the
// candidate set; an empty set normalizes to 0 for every candidate
// (spec.md §4.6 step 3).
func minMaxNormalize(raw map[store.Path]float32) map[store.Path]float32 {
	out := make(map[store.Path]float32, len(raw))
	if len(raw) == 0 {
		return out
	}
	var min, max float32
	first := true
	for _, v := range raw {
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	spread := max - min
	for k, v := range raw {
		if spread == 0 {
			// Every candidate ties at the set's min and max; treat that
			// shared value as the normalized maximum rather than the
			// minimum, so a single unique hit still scores 1, not 0.
			out[k] = 1
			continue
		}
		out[k] = (v - min) / spread
	}
	return out
}
