package synthmidi

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	bgrBlack = [3]byte{0, 0, 0}
	bgrGreen = [3]byte{43, 200, 43}
	bgrBlue  = [3]byte{200, 43, 43}
	bgrGrey  = [3]byte{128, 128, 128}
)

type patch struct {
	r   image.Rectangle
	bgr [3]byte
}

// smallCalibration maps C4 to x=10 with 12 px white keys on a 200x40 frame.
func smallCalibration() Calibration {
	return Calibration{CPositions: map[int]int{60: 10, 72: 94}, KeyRow: 10}
}

func paintFrame(t *testing.T, width, height int, patches ...patch) Frame {
	t.Helper()
	buf := make([]byte, width*height*3)
	for _, p := range patches {
		r := p.r.Intersect(image.Rect(0, 0, width, height))
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				off := (y*width + x) * 3
				copy(buf[off:off+3], p.bgr[:])
			}
		}
	}
	frame, err := NewFrameFromBGR(width, height, buf)
	require.NoError(t, err)
	return frame
}

func mustKeyboard(t *testing.T, cal Calibration) *Keyboard {
	t.Helper()
	kb, err := NewKeyboard(cal)
	require.NoError(t, err)
	return kb
}

func mustKey(t *testing.T, kb *Keyboard, pitch int) KeyGeometry {
	t.Helper()
	key, ok := kb.Key(pitch)
	require.True(t, ok)
	return key
}
