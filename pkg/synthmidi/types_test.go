package synthmidi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPitchName(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("C4", PitchName(60))
	assert.Equal("C#4", PitchName(61))
	assert.Equal("A0", PitchName(21))
	assert.Equal("C8", PitchName(108))
	assert.Equal("B3", PitchName(59))
}

func TestNoteEventString(t *testing.T) {
	n := NoteEvent{Pitch: 61, Start: 1.5, Duration: 0.25, Hand: HandRight}
	assert.Equal(t, "1.500s: R C#4 (MIDI 61) dur=0.250s", n.String())
	assert.InDelta(t, 1.75, n.End(), 1e-9)
}

func TestNoteEventJSON(t *testing.T) {
	data, err := json.Marshal(NoteEvent{Pitch: 60, Start: 1, Duration: 0.5, Hand: HandLeft})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pitch":60,"start":1,"duration":0.5,"hand":"left"}`, string(data))

	var n NoteEvent
	require.NoError(t, json.Unmarshal([]byte(`{"pitch":64,"hand":"right"}`), &n))
	assert.Equal(t, HandRight, n.Hand)
	assert.Error(t, json.Unmarshal([]byte(`{"hand":"both"}`), &n))
}
