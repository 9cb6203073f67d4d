package main

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	sm "synthmidi/pkg/synthmidi"
)

func TestMedianAbsDeviation(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(1.4826, medianAbsDeviation([]float64{1, 2, 3, 4, 100}, 3), 1e-9)
	assert.Equal(0.0, medianAbsDeviation([]float64{2, 2, 2}, 2))
	assert.True(math.IsNaN(medianAbsDeviation(nil, 0)))
}

func TestPrintAnalysis(t *testing.T) {
	notes := []sm.NoteEvent{
		{Pitch: 72, Start: 1.0, Duration: 0.5, Hand: sm.HandRight},
		{Pitch: 48, Start: 0.5, Duration: 0.25, Hand: sm.HandLeft},
	}
	var buf bytes.Buffer
	printAnalysis(&buf, notes, &sm.ExtractMetrics{FramesProcessed: 90, StartFrame: 150})

	out := buf.String()
	assert := assert.New(t)
	assert.Contains(out, "Total: 2, Left: 1, Right: 1")
	assert.Contains(out, "MIDI range:      48 - 72 (C3 - C5)")
	assert.Contains(out, "First 2 notes:")
	assert.Contains(out, "0.500s: L C3 (MIDI 48) dur=0.250s")
	assert.Contains(out, "Frames:          90 (from frame 150)")
	// Median of 0.25 and 0.5 comes from the summary; MAD is 0.125 * 1.4826.
	assert.Contains(out, "Duration median: 0.375 +/- 0.185s")

	buf.Reset()
	printAnalysis(&buf, nil, nil)
	assert.Empty(buf.String())
}
