package synthmidi

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const semitonesPerOctave = 12

// whiteSemitones lists the white keys of an octave; the index is the key's rank.
var whiteSemitones = [7]int{0, 2, 4, 5, 7, 9, 11}

// blackKeys maps each black semitone to the rank of the white key on its left.
var blackKeys = [5]struct {
	semitone  int
	leftWhite int
}{
	{1, 0}, {3, 1}, {6, 3}, {8, 4}, {10, 5},
}

// Calibration locates the keyboard in the video frame.
type Calibration struct {
	// CPositions maps C pitches (multiples of 12) to the pixel x of the key's left edge.
	CPositions map[int]int `yaml:"c_positions" json:"c_positions"`
	// KeyRow is the pixel row where white keys are sampled.
	KeyRow int `yaml:"key_row" json:"key_row"`
}

// DefaultCalibration returns the calibration for 1276x720 recordings.
func DefaultCalibration() Calibration {
	return Calibration{
		CPositions: map[int]int{
			24: 51, 36: 224, 48: 396, 60: 567, 72: 742, 84: 914, 96: 1086,
		},
		KeyRow: 500,
	}
}

// ParseCalibration decodes a YAML calibration document. A missing key_row keeps the default row.
func ParseCalibration(data []byte) (Calibration, error) {
	cal := Calibration{KeyRow: DefaultCalibration().KeyRow}
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return Calibration{}, fmt.Errorf("parsing calibration: %w", err)
	}
	return cal, nil
}

// LoadCalibration reads a YAML calibration file.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("reading calibration: %w", err)
	}
	return ParseCalibration(data)
}

// Keyboard holds the geometry of all 88 keys. It is read-only after construction.
type Keyboard struct {
	keys        [KeyCount]KeyGeometry
	octaveWidth float64
	row         int
}

// NewKeyboard derives every key's detection point from the calibrated C positions.
// Octaves without a calibrated C are placed by whole octave widths from the
// nearest calibrated one.
func NewKeyboard(cal Calibration) (*Keyboard, error) {
	if len(cal.CPositions) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewCalibrationPoints, len(cal.CPositions))
	}
	if cal.KeyRow < 0 {
		return nil, fmt.Errorf("%w: key row %d is negative", ErrInvalidCalibration, cal.KeyRow)
	}

	pitches := make([]int, 0, len(cal.CPositions))
	for p := range cal.CPositions {
		if p%semitonesPerOctave != 0 || p < semitonesPerOctave || p > HighestPitch {
			return nil, fmt.Errorf("%w: pitch %d is not a C on the piano", ErrInvalidCalibration, p)
		}
		pitches = append(pitches, p)
	}
	sort.Ints(pitches)

	// Deltas are normalised per octave so that gaps in the calibration do not skew the mean.
	var widthSum float64
	for i := 0; i < len(pitches)-1; i++ {
		delta := cal.CPositions[pitches[i+1]] - cal.CPositions[pitches[i]]
		if delta <= 0 {
			return nil, fmt.Errorf("%w: C%d at x=%d is not right of C%d at x=%d", ErrInvalidCalibration,
				pitches[i+1]/12-1, cal.CPositions[pitches[i+1]], pitches[i]/12-1, cal.CPositions[pitches[i]])
		}
		octaves := (pitches[i+1] - pitches[i]) / semitonesPerOctave
		widthSum += float64(delta) / float64(octaves)
	}
	octaveWidth := widthSum / float64(len(pitches)-1)
	whiteWidth := octaveWidth / 7

	kb := &Keyboard{octaveWidth: octaveWidth, row: cal.KeyRow}
	for c := semitonesPerOctave; c <= HighestPitch; c += semitonesPerOctave {
		left := octaveLeftEdge(c, pitches, cal.CPositions, octaveWidth)
		for rank, semitone := range whiteSemitones {
			kb.set(KeyGeometry{Pitch: c + semitone, X: left + (float64(rank)+0.5)*whiteWidth})
		}
		for _, bk := range blackKeys {
			kb.set(KeyGeometry{Pitch: c + bk.semitone, X: left + float64(bk.leftWhite+1)*whiteWidth, Raised: true})
		}
	}
	return kb, nil
}

// octaveLeftEdge returns the left edge of the octave starting at C pitch c.
func octaveLeftEdge(c int, calibrated []int, positions map[int]int, octaveWidth float64) float64 {
	if x, ok := positions[c]; ok {
		return float64(x)
	}
	nearest := calibrated[0]
	for _, p := range calibrated[1:] {
		if intAbs(p-c) < intAbs(nearest-c) {
			nearest = p
		}
	}
	octaves := float64(c-nearest) / semitonesPerOctave
	return float64(positions[nearest]) + octaves*octaveWidth
}

func (kb *Keyboard) set(k KeyGeometry) {
	if k.Pitch < LowestPitch || k.Pitch > HighestPitch {
		return
	}
	kb.keys[k.Pitch-LowestPitch] = k
}

// Key returns the geometry of a pitch, or false outside the piano range.
func (kb *Keyboard) Key(pitch int) (KeyGeometry, bool) {
	if pitch < LowestPitch || pitch > HighestPitch {
		return KeyGeometry{}, false
	}
	return kb.keys[pitch-LowestPitch], true
}

// Keys returns all keys in ascending pitch order.
func (kb *Keyboard) Keys() []KeyGeometry {
	out := make([]KeyGeometry, KeyCount)
	copy(out, kb.keys[:])
	return out
}

func (kb *Keyboard) OctaveWidth() float64   { return kb.octaveWidth }
func (kb *Keyboard) WhiteKeyWidth() float64 { return kb.octaveWidth / 7 }
func (kb *Keyboard) SampleRow() int         { return kb.row }

// Span returns the horizontal pixel range covered by the detection points.
func (kb *Keyboard) Span() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, k := range kb.keys {
		lo = math.Min(lo, k.X)
		hi = math.Max(hi, k.X)
	}
	return lo, hi
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
