package synthmidi

import (
	"math"
	"sort"
)

// Summary holds descriptive statistics of an extracted note list.
type Summary struct {
	Total          int     `json:"total"`
	Left           int     `json:"left"`
	Right          int     `json:"right"`
	MinPitch       int     `json:"min_pitch"`
	MaxPitch       int     `json:"max_pitch"`
	MinDuration    float64 `json:"min_duration"`
	MaxDuration    float64 `json:"max_duration"`
	MeanDuration   float64 `json:"mean_duration"`
	MedianDuration float64 `json:"median_duration"`
	FirstStart     float64 `json:"first_start"`
	LastEnd        float64 `json:"last_end"`
}

// Summarize computes per-hand counts and pitch and duration ranges. It returns nil for no notes.
func Summarize(notes []NoteEvent) *Summary {
	if len(notes) == 0 {
		return nil
	}

	s := &Summary{
		Total:       len(notes),
		MinPitch:    math.MaxInt,
		MaxPitch:    math.MinInt,
		MinDuration: math.Inf(1),
		MaxDuration: math.Inf(-1),
		FirstStart:  math.Inf(1),
		LastEnd:     math.Inf(-1),
	}
	durations := make([]float64, len(notes))
	var sum float64
	for i, n := range notes {
		switch n.Hand {
		case HandLeft:
			s.Left++
		case HandRight:
			s.Right++
		}
		if n.Pitch < s.MinPitch {
			s.MinPitch = n.Pitch
		}
		if n.Pitch > s.MaxPitch {
			s.MaxPitch = n.Pitch
		}
		s.MinDuration = math.Min(s.MinDuration, n.Duration)
		s.MaxDuration = math.Max(s.MaxDuration, n.Duration)
		s.FirstStart = math.Min(s.FirstStart, n.Start)
		s.LastEnd = math.Max(s.LastEnd, n.End())
		durations[i] = n.Duration
		sum += n.Duration
	}
	s.MeanDuration = sum / float64(len(notes))
	s.MedianDuration = Median(durations)
	return s
}

// Median returns the median of values, or 0 when there are none.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2.0
	}
	return sorted[n/2]
}
