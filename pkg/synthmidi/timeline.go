package synthmidi

import "golang.org/x/exp/slices"

// Timeline collects the notes of all keys in emission order.
type Timeline struct {
	notes []NoteEvent
}

// NewTimeline creates a timeline holding a copy of notes.
func NewTimeline(notes ...NoteEvent) *Timeline {
	return &Timeline{notes: slices.Clone(notes)}
}

func (tl *Timeline) Add(notes ...NoteEvent) {
	tl.notes = append(tl.notes, notes...)
}

func (tl *Timeline) Len() int { return len(tl.notes) }

// Notes returns a copy of the notes in the order they were emitted.
func (tl *Timeline) Notes() []NoteEvent {
	return slices.Clone(tl.notes)
}

// Sorted returns a copy ordered by start time, then pitch.
func (tl *Timeline) Sorted() []NoteEvent {
	return SortByStart(tl.notes)
}

// ByHand returns the notes played by one hand, in emission order.
func (tl *Timeline) ByHand(h Hand) []NoteEvent {
	var out []NoteEvent
	for _, n := range tl.notes {
		if n.Hand == h {
			out = append(out, n)
		}
	}
	return out
}

// SortByStart returns a copy of notes ordered by start time, then pitch.
func SortByStart(notes []NoteEvent) []NoteEvent {
	out := slices.Clone(notes)
	slices.SortStableFunc(out, func(a, b NoteEvent) bool {
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Pitch < b.Pitch
	})
	return out
}
