package synthmidi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// DefaultTempo is the tempo written when none is given, in beats per minute.
	DefaultTempo    = 120.0
	ticksPerQuarter = 960
	noteVelocity    = 100
	noteChannel     = 0
)

var trackNames = map[Hand]string{
	HandLeft:  "Left Hand",
	HandRight: "Right Hand",
}

type trackEvent struct {
	tick uint32
	on   bool
	key  uint8
}

// secondsToTicks converts seconds to ticks: beats = seconds * tempo / 60.
func secondsToTicks(seconds, tempo float64) uint32 {
	beats := seconds * tempo / 60
	return uint32(math.Round(beats * ticksPerQuarter))
}

func ticksToSeconds(ticks uint32, tempo float64, resolution uint16) float64 {
	beats := float64(ticks) / float64(resolution)
	return beats * 60 / tempo
}

// WriteSMF encodes notes as a format 1 Standard MIDI File with one track per
// hand: track 0 "Left Hand" (which also carries the tempo) and track 1 "Right Hand".
func WriteSMF(w io.Writer, notes []NoteEvent, tempo float64) error {
	if !(tempo > 0) {
		return fmt.Errorf("%w: tempo must be positive, got %v", ErrInvalidParams, tempo)
	}

	tl := NewTimeline(notes...)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	for _, h := range []Hand{HandLeft, HandRight} {
		tr := handTrack(tl.ByHand(h), h, tempo)
		if err := s.Add(tr); err != nil {
			return fmt.Errorf("adding %s track: %w", h, err)
		}
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("writing SMF: %w", err)
	}
	return nil
}

// WriteSMFFile writes notes to a MIDI file at path.
func WriteSMFFile(path string, notes []NoteEvent, tempo float64) error {
	var buf bytes.Buffer
	if err := WriteSMF(&buf, notes, tempo); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func handTrack(notes []NoteEvent, h Hand, tempo float64) smf.Track {
	var events []trackEvent
	for _, n := range notes {
		if n.Pitch < 0 || n.Pitch > 127 {
			continue
		}
		on := secondsToTicks(n.Start, tempo)
		off := secondsToTicks(n.End(), tempo)
		if off <= on {
			off = on + 1
		}
		events = append(events,
			trackEvent{tick: on, on: true, key: uint8(n.Pitch)},
			trackEvent{tick: off, on: false, key: uint8(n.Pitch)})
	}
	// Releases go before presses on the same tick so a repeated key is not cut short.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(trackNames[h]))
	if h == HandLeft {
		tr.Add(0, smf.MetaTempo(tempo))
	}
	var last uint32
	for _, ev := range events {
		delta := ev.tick - last
		last = ev.tick
		if ev.on {
			tr.Add(delta, midi.NoteOn(noteChannel, ev.key, noteVelocity))
		} else {
			tr.Add(delta, midi.NoteOff(noteChannel, ev.key))
		}
	}
	tr.Close(0)
	return tr
}

// ReadSMFNotes decodes a file written by WriteSMF back into notes sorted by
// start time, together with its tempo. Tracks named "Left Hand"/"Right Hand"
// set the hand; unnamed tracks fall back to track order.
func ReadSMFNotes(r io.Reader) ([]NoteEvent, float64, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing SMF: %w", err)
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, 0, errors.New("SMF uses SMPTE timing, only metric ticks are supported")
	}

	tempo := DefaultTempo
	found := false
	for _, tr := range s.Tracks {
		for _, ev := range tr {
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) && !found {
				tempo, found = bpm, true
			}
		}
	}

	var notes []NoteEvent
	for i, tr := range s.Tracks {
		hand := HandLeft
		if i > 0 {
			hand = HandRight
		}
		var abs uint32
		open := make(map[uint8]uint32)
		for _, ev := range tr {
			abs += ev.Delta
			var name string
			if ev.Message.GetMetaTrackName(&name) {
				for h, n := range trackNames {
					if n == name {
						hand = h
					}
				}
				continue
			}
			var ch, key, vel uint8
			msg := midi.Message(ev.Message)
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				open[key] = abs
			case msg.GetNoteEnd(&ch, &key):
				start, ok := open[key]
				if !ok {
					continue
				}
				delete(open, key)
				startSec := ticksToSeconds(start, tempo, mt.Resolution())
				notes = append(notes, NoteEvent{
					Pitch:    int(key),
					Start:    startSec,
					Duration: ticksToSeconds(abs, tempo, mt.Resolution()) - startSec,
					Hand:     hand,
				})
			}
		}
	}
	return SortByStart(notes), tempo, nil
}
