package synthmidi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	assert.Nil(t, Summarize(nil))

	s := Summarize([]NoteEvent{
		{Pitch: 48, Start: 0.5, Duration: 0.2, Hand: HandLeft},
		{Pitch: 72, Start: 1.0, Duration: 0.6, Hand: HandRight},
		{Pitch: 60, Start: 2.0, Duration: 0.4, Hand: HandRight},
	})
	require.NotNil(t, s)

	assert := assert.New(t)
	assert.Equal(3, s.Total)
	assert.Equal(1, s.Left)
	assert.Equal(2, s.Right)
	assert.Equal(48, s.MinPitch)
	assert.Equal(72, s.MaxPitch)
	assert.InDelta(0.2, s.MinDuration, 1e-9)
	assert.InDelta(0.6, s.MaxDuration, 1e-9)
	assert.InDelta(0.4, s.MeanDuration, 1e-9)
	assert.InDelta(0.4, s.MedianDuration, 1e-9)
	assert.InDelta(0.5, s.FirstStart, 1e-9)
	assert.InDelta(2.4, s.LastEnd, 1e-9)
}

func TestMedian(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0.0, Median(nil))
	assert.Equal(2.0, Median([]float64{3, 1, 2}))
	assert.Equal(2.5, Median([]float64{4, 1, 3, 2}))
}
