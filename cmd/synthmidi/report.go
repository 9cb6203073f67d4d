package main

import (
	"fmt"
	"io"
	"math"

	sm "synthmidi/pkg/synthmidi"
)

const listedNotes = 25

func printAnalysis(w io.Writer, notes []sm.NoteEvent, metrics *sm.ExtractMetrics) {
	s := sm.Summarize(notes)
	if s == nil {
		return
	}

	durations := make([]float64, len(notes))
	for i, n := range notes {
		durations[i] = n.Duration
	}
	durMAD := medianAbsDeviation(durations, s.MedianDuration)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Analysis ===")
	fmt.Fprintf(w, "  Total: %d, Left: %d, Right: %d\n", s.Total, s.Left, s.Right)
	fmt.Fprintf(w, "  MIDI range:      %d - %d (%s - %s)\n", s.MinPitch, s.MaxPitch, sm.PitchName(s.MinPitch), sm.PitchName(s.MaxPitch))
	fmt.Fprintf(w, "  Duration range:  %.3fs - %.3fs\n", s.MinDuration, s.MaxDuration)
	fmt.Fprintf(w, "  Avg duration:    %.3fs\n", s.MeanDuration)
	fmt.Fprintf(w, "  Duration median: %.3f +/- %.3fs\n", s.MedianDuration, durMAD)
	if metrics != nil {
		fmt.Fprintf(w, "  Frames:          %d (from frame %d)\n", metrics.FramesProcessed, metrics.StartFrame)
		fmt.Fprintf(w, "  Discarded:       %d too short, %d closed at end\n", metrics.Discarded, metrics.ForceClosed)
	}

	n := listedNotes
	if len(notes) < n {
		n = len(notes)
	}
	fmt.Fprintf(w, "\nFirst %d notes:\n", n)
	for _, note := range sm.NewTimeline(notes...).Sorted()[:n] {
		fmt.Fprintf(w, "  %s\n", note)
	}
	fmt.Fprintln(w, "================")
}

// medianAbsDeviation returns the MAD around median, scaled to estimate a standard deviation.
func medianAbsDeviation(values []float64, median float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - median)
	}
	return 1.4826 * sm.Median(deviations)
}
