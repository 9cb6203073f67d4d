package synthmidi

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondsToTicks(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint32(960), secondsToTicks(0.5, 120))
	assert.Equal(uint32(1920), secondsToTicks(1, 120))
	assert.Equal(uint32(960), secondsToTicks(1, 60))
	assert.InDelta(0.5, ticksToSeconds(960, 120, ticksPerQuarter), 1e-9)
}

func TestWriteSMFRoundTrip(t *testing.T) {
	notes := []NoteEvent{
		{Pitch: 67, Start: 1.0, Duration: 0.125, Hand: HandRight},
		{Pitch: 48, Start: 0.5, Duration: 0.25, Hand: HandLeft},
		{Pitch: 64, Start: 0.5, Duration: 0.5, Hand: HandRight},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSMF(&buf, notes, 120))

	got, tempo, err := ReadSMFNotes(&buf)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.InDelta(120, tempo, 1e-6)
	require.Len(t, got, 3)
	want := SortByStart(notes)
	for i := range want {
		assert.Equal(want[i].Pitch, got[i].Pitch)
		assert.Equal(want[i].Hand, got[i].Hand)
		assert.InDelta(want[i].Start, got[i].Start, 1e-6)
		assert.InDelta(want[i].Duration, got[i].Duration, 1e-6)
	}
}

func TestWriteSMFRepeatedKey(t *testing.T) {
	notes := []NoteEvent{
		{Pitch: 60, Start: 0, Duration: 0.5, Hand: HandLeft},
		{Pitch: 60, Start: 0.5, Duration: 0.5, Hand: HandLeft},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSMF(&buf, notes, 90))

	got, tempo, err := ReadSMFNotes(&buf)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.InDelta(90, tempo, 1e-3)
	require.Len(t, got, 2)
	assert.InDelta(0.5, got[0].Duration, 1e-4)
	assert.InDelta(0.5, got[1].Start, 1e-4)
}

func TestWriteSMFEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSMF(&buf, nil, DefaultTempo))

	got, _, err := ReadSMFNotes(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteSMFInvalidTempo(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteSMF(&buf, nil, 0), ErrInvalidParams)
}

func TestWriteSMFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mid")
	require.NoError(t, WriteSMFFile(path, []NoteEvent{{Pitch: 60, Start: 0, Duration: 1, Hand: HandLeft}}, 120))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MThd", string(data[:4]))
}
