package synthmidi

import "fmt"

// keyState is the runtime state of one key. A key is Pressed while active.
type keyState struct {
	active      bool
	start       float64
	hand        Hand
	unlitFrames int
}

// DebounceStats counts what happened to the presses seen so far.
type DebounceStats struct {
	Emitted     int
	Discarded   int
	ForceClosed int
}

// Debouncer turns per-frame verdicts into notes. A press is only released
// after ReleaseFrames consecutive unlit frames; the release time is then
// moved back to the first of those frames.
type Debouncer struct {
	p         DebounceParams
	frameRate float64
	keys      [KeyCount]keyState
	stats     DebounceStats
}

// NewDebouncer creates a debouncer with every key idle.
func NewDebouncer(p DebounceParams, frameRate float64) (*Debouncer, error) {
	if !(frameRate > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFrameRate, frameRate)
	}
	if p.ReleaseFrames < 1 {
		return nil, fmt.Errorf("%w: release frames must be at least 1, got %d", ErrInvalidParams, p.ReleaseFrames)
	}
	if p.MinDuration < 0 {
		return nil, fmt.Errorf("%w: minimum duration must not be negative, got %v", ErrInvalidParams, p.MinDuration)
	}
	return &Debouncer{p: p, frameRate: frameRate}, nil
}

// Observe feeds the verdict of one key at frame time t (seconds). Frames must
// arrive in increasing time order. It returns the note completed by this
// observation, if any.
func (d *Debouncer) Observe(pitch int, t float64, v Verdict) (NoteEvent, bool) {
	if pitch < LowestPitch || pitch > HighestPitch {
		return NoteEvent{}, false
	}
	st := &d.keys[pitch-LowestPitch]

	if v.Lit {
		st.unlitFrames = 0
		if !st.active {
			st.active = true
			st.start = t
			st.hand = v.Hand
		}
		return NoteEvent{}, false
	}

	st.unlitFrames++
	if !st.active || st.unlitFrames < d.p.ReleaseFrames {
		return NoteEvent{}, false
	}

	end := t - float64(d.p.ReleaseFrames-1)/d.frameRate
	return d.release(pitch, st, end)
}

// Finish force-closes every key still pressed at time t, the time of the last processed frame.
func (d *Debouncer) Finish(t float64) []NoteEvent {
	var notes []NoteEvent
	for i := range d.keys {
		st := &d.keys[i]
		if !st.active {
			continue
		}
		d.stats.ForceClosed++
		if n, ok := d.release(LowestPitch+i, st, t); ok {
			notes = append(notes, n)
		}
	}
	return notes
}

func (d *Debouncer) release(pitch int, st *keyState, end float64) (NoteEvent, bool) {
	n := NoteEvent{Pitch: pitch, Start: st.start, Duration: end - st.start, Hand: st.hand}
	st.active = false
	st.start = 0
	st.hand = HandNone

	if n.Duration < d.p.MinDuration || n.Duration <= 0 {
		d.stats.Discarded++
		return NoteEvent{}, false
	}
	d.stats.Emitted++
	return n, true
}

// Pressed reports whether the key is currently held.
func (d *Debouncer) Pressed(pitch int) bool {
	if pitch < LowestPitch || pitch > HighestPitch {
		return false
	}
	return d.keys[pitch-LowestPitch].active
}

func (d *Debouncer) Stats() DebounceStats { return d.stats }
