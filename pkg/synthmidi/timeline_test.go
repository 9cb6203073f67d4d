package synthmidi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimelineKeepsEmissionOrder(t *testing.T) {
	var tl Timeline
	tl.Add(
		NoteEvent{Pitch: 64, Start: 1.0, Duration: 0.5, Hand: HandRight},
		NoteEvent{Pitch: 48, Start: 0.5, Duration: 1.0, Hand: HandLeft},
	)
	tl.Add(NoteEvent{Pitch: 60, Start: 1.0, Duration: 0.25, Hand: HandLeft})

	assert := assert.New(t)
	assert.Equal(3, tl.Len())
	notes := tl.Notes()
	assert.Equal([]int{64, 48, 60}, pitches(notes))

	notes[0].Pitch = 0
	assert.Equal(64, tl.Notes()[0].Pitch)

	assert.Equal([]int{48, 60, 64}, pitches(tl.Sorted()))
	assert.Equal([]int{48, 60}, pitches(tl.ByHand(HandLeft)))
	assert.Equal([]int{64}, pitches(tl.ByHand(HandRight)))
}

func TestSortByStartIsStable(t *testing.T) {
	notes := []NoteEvent{
		{Pitch: 60, Start: 2, Duration: 1, Hand: HandRight},
		{Pitch: 60, Start: 2, Duration: 0.5, Hand: HandLeft},
		{Pitch: 55, Start: 3},
	}
	sorted := SortByStart(notes)

	assert := assert.New(t)
	assert.Equal(HandRight, sorted[0].Hand)
	assert.Equal(HandLeft, sorted[1].Hand)
	assert.Equal(55, sorted[2].Pitch)
	assert.Equal(60, notes[0].Pitch)
}

func pitches(notes []NoteEvent) []int {
	out := make([]int, len(notes))
	for i, n := range notes {
		out[i] = n.Pitch
	}
	return out
}

func TestNewTimelineCopiesNotes(t *testing.T) {
	notes := []NoteEvent{
		{Pitch: 72, Start: 1, Hand: HandRight},
		{Pitch: 48, Start: 0, Hand: HandLeft},
	}
	tl := NewTimeline(notes...)
	notes[0].Pitch = 0

	assert := assert.New(t)
	assert.Equal(2, tl.Len())
	assert.Equal([]int{48, 72}, pitches(tl.Sorted()))
	assert.Equal([]int{72}, pitches(tl.ByHand(HandRight)))
	assert.Empty(NewTimeline().Sorted())
}
