package synthmidi

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	// LowestPitch is A0, the lowest key of an 88-key piano.
	LowestPitch = 21
	// HighestPitch is C8, the highest key of an 88-key piano.
	HighestPitch = 108
	// KeyCount is the number of keys tracked.
	KeyCount = HighestPitch - LowestPitch + 1
)

var (
	ErrTooFewCalibrationPoints = errors.New("at least 2 calibrated C positions are required")
	ErrInvalidCalibration      = errors.New("invalid calibration")
	ErrInvalidFrameRate        = errors.New("frame rate must be positive")
	ErrInvalidParams           = errors.New("invalid parameters")
)

// Hand identifies which hand a lit key belongs to.
type Hand int

const (
	HandNone Hand = iota
	HandLeft
	HandRight
)

func (h Hand) String() string {
	switch h {
	case HandLeft:
		return "left"
	case HandRight:
		return "right"
	default:
		return "none"
	}
}

// Letter returns "L" or "R", as printed in note listings.
func (h Hand) Letter() string {
	switch h {
	case HandLeft:
		return "L"
	case HandRight:
		return "R"
	default:
		return "-"
	}
}

func (h Hand) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hand) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left", "L":
		*h = HandLeft
	case "right", "R":
		*h = HandRight
	case "none", "":
		*h = HandNone
	default:
		return fmt.Errorf("unknown hand %q", text)
	}
	return nil
}

// Verdict is the classification of one key in one frame.
type Verdict struct {
	Lit  bool
	Hand Hand
}

// Unlit is the verdict for a key showing no hand color.
var Unlit = Verdict{}

// LitBy returns the verdict for a key lit by hand h.
func LitBy(h Hand) Verdict { return Verdict{Lit: true, Hand: h} }

// KeyGeometry is the detection point of one key.
type KeyGeometry struct {
	Pitch int
	// X is the horizontal pixel position of the key's centre line.
	X float64
	// Raised marks black keys.
	Raised bool
}

// NoteEvent is one completed key press.
type NoteEvent struct {
	Pitch    int     `json:"pitch"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Hand     Hand    `json:"hand"`
}

func (n NoteEvent) End() float64 { return n.Start + n.Duration }

func (n NoteEvent) String() string {
	return fmt.Sprintf("%.3fs: %s %s (MIDI %d) dur=%.3fs",
		n.Start, n.Hand.Letter(), PitchName(n.Pitch), n.Pitch, n.Duration)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName returns the scientific pitch name of a MIDI note, e.g. 60 -> "C4".
func PitchName(pitch int) string {
	octave := pitch/12 - 1
	if pitch < 0 {
		octave = (pitch-11)/12 - 1
	}
	return fmt.Sprintf("%s%d", noteNames[((pitch%12)+12)%12], octave)
}

// ColorThresholds are the HSV bounds (OpenCV 8-bit scaling, H in [0, 180))
// separating the two hand colors.
type ColorThresholds struct {
	GreenHueMin int
	GreenHueMax int
	// BlueHueMin is exclusive so a hue on the boundary counts as green.
	BlueHueMin    int
	BlueHueMax    int
	SaturationMin int
	ValueMin      int
	// LitRatio is the fraction of sampled pixels that must match a color.
	LitRatio float64
}

func DefaultColorThresholds() ColorThresholds {
	return ColorThresholds{
		GreenHueMin:   35,
		GreenHueMax:   85,
		BlueHueMin:    85,
		BlueHueMax:    135,
		SaturationMin: 50,
		ValueMin:      50,
		LitRatio:      0.3,
	}
}

// ClassifierParams controls where and how keys are sampled.
type ClassifierParams struct {
	SampleWidth   int
	SampleHeight  int
	WhiteShiftX   int
	RaisedOffsetY int
	Colors        ColorThresholds
	// Workers is the number of goroutines classifying the keys of a frame.
	Workers int
}

func NewClassifierParams() ClassifierParams {
	return ClassifierParams{
		SampleWidth:   7,
		SampleHeight:  7,
		WhiteShiftX:   -3,
		RaisedOffsetY: 15,
		Colors:        DefaultColorThresholds(),
		Workers:       1,
	}
}

// DebounceParams controls how per-frame verdicts become notes.
type DebounceParams struct {
	// ReleaseFrames is the number of consecutive unlit frames that end a press.
	ReleaseFrames int
	// MinDuration drops notes shorter than this many seconds.
	MinDuration float64
}

func NewDebounceParams() DebounceParams {
	return DebounceParams{ReleaseFrames: 2, MinDuration: 0.03}
}

// Progress is reported periodically while extracting.
type Progress struct {
	Frame     int
	Time      float64
	TotalTime float64
}

type ProgressFunc func(Progress)

// ExtractParams contains all parameters of an extraction run.
type ExtractParams struct {
	Classifier ClassifierParams
	Debounce   DebounceParams
	// SkipSeconds is the intro skipped before processing starts.
	SkipSeconds float64
	// ProgressInterval is the video time between progress reports; 0 disables them.
	ProgressInterval float64
	Progress         ProgressFunc
	Logger           *zap.Logger
}

// NewExtractParams creates an ExtractParams with default values.
func NewExtractParams() *ExtractParams {
	return &ExtractParams{
		Classifier:       NewClassifierParams(),
		Debounce:         NewDebounceParams(),
		SkipSeconds:      5.0,
		ProgressInterval: 20,
	}
}

// ExtractMetrics tracks what happened during an extraction run.
type ExtractMetrics struct {
	FramesProcessed int
	StartFrame      int
	Emitted         int
	Discarded       int
	ForceClosed     int
	// LitFrames counts, per key (pitch-LowestPitch), the frames it was seen lit.
	LitFrames [KeyCount]int
}

// ExtractResult is the output of Extractor.Extract.
type ExtractResult struct {
	RunID    string
	Notes    []NoteEvent
	Metrics  *ExtractMetrics
	Warnings []string
}
