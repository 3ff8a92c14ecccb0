// Package stats holds the small numeric kernels shared by the feature
// pipeline: min-max scaling with explicit handling of undefined values and
// degenerate (constant) channels.
package stats

// MinMaxScale normalizes vals to [0,1] over the defined entries:
// v -> (v - min) / (max - min). Undefined entries and every entry of a
// degenerate channel (all equal, or nothing defined) become fallback, so no
// NaN ever leaves this function.
func MinMaxScale(vals []float64, defined []bool, fallback float64) []float64 {
	out := make([]float64, len(vals))

	min, max, any := 0.0, 0.0, false
	for i, v := range vals {
		if defined != nil && !defined[i] {
			continue
		}
		if !any || v < min {
			min = v
		}
		if !any || v > max {
			max = v
		}
		any = true
	}

	if !any || min == max {
		for i := range out {
			out[i] = fallback
		}
		return out
	}

	for i, v := range vals {
		if defined != nil && !defined[i] {
			out[i] = fallback
			continue
		}
		out[i] = (v - min) / (max - min)
	}
	return out
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mean returns the arithmetic mean of vals, or fallback for an empty slice.
func Mean(vals []float64, fallback float64) float64 {
	if len(vals) == 0 {
		return fallback
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
