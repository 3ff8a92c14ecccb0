// Package timegrid builds the fixed-width temporal grid all time-keyed
// signals are resampled onto, and scores each bin by time of day and day of
// week.
package timegrid

import "time"

// Build returns the ordered, gapless sequence of bin-start instants at the
// given spacing over the closed interval [start, end]. A bin is included
// while its start does not pass end, so an end instant partway through a bin
// still yields that bin.
func Build(start, end time.Time, width time.Duration) []time.Time {
	if width <= 0 || end.Before(start) {
		return nil
	}
	var bins []time.Time
	for t := start; !t.After(end); t = t.Add(width) {
		bins = append(bins, t)
	}
	return bins
}

// Floor returns the start of the bin containing t on the grid anchored at
// start, and whether t falls inside [start, start+n*width).
func Floor(t, start time.Time, width time.Duration, n int) (time.Time, bool) {
	if t.Before(start) {
		return time.Time{}, false
	}
	idx := int(t.Sub(start) / width)
	if idx >= n {
		return time.Time{}, false
	}
	return start.Add(time.Duration(idx) * width), true
}

// Score maps a bin-start instant to its deterministic time-of-day score.
// Hour ranges are inclusive on the lower bound, exclusive on the upper.
//
//	Weekday: rush 06-10 and 16-20 -> 1.00, midday 10-16 -> 0.65,
//	         evening 20-23 -> 0.45, night 23-06 -> 0.20.
//	Weekend: midday 10-16 -> 1.00, daytime 07-10 and 16-20 -> 0.55,
//	         night 20-07 -> 0.20.
func Score(t time.Time) float64 {
	h := t.Hour()
	wd := t.Weekday()
	weekend := wd == time.Saturday || wd == time.Sunday

	if !weekend {
		switch {
		case (6 <= h && h < 10) || (16 <= h && h < 20):
			return 1.0
		case 10 <= h && h < 16:
			return 0.65
		case 20 <= h && h < 23:
			return 0.45
		default: // 23-06
			return 0.20
		}
	}

	switch {
	case 10 <= h && h < 16:
		return 1.0
	case (7 <= h && h < 10) || (16 <= h && h < 20):
		return 0.55
	default: // 20-07
		return 0.20
	}
}

// Scores returns the time score of every bin.
func Scores(bins []time.Time) []float64 {
	out := make([]float64, len(bins))
	for i, b := range bins {
		out[i] = Score(b)
	}
	return out
}
