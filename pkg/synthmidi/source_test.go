package synthmidi

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, width, height int, fill color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = fill.R, fill.G, fill.B, fill.A
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageSequence(t *testing.T) {
	dir := t.TempDir()
	green := color.RGBA{43, 200, 43, 255}
	for i := 3; i >= 1; i-- {
		writePNG(t, filepath.Join(dir, fmt.Sprintf("%06d.png", i)), 32, 16, green)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	seq, err := OpenImageSequence(dir, 25)
	require.NoError(t, err)
	defer seq.Close()

	assert := assert.New(t)
	assert.Equal(3, seq.FrameCount())
	assert.Equal(25.0, seq.FrameRate())
	w, h := seq.Size()
	assert.Equal(32, w)
	assert.Equal(16, h)

	require.NoError(t, seq.Seek(1))
	frame, idx, ok, err := seq.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(1, idx)
	assert.Equal(32, frame.Width())

	rgba, err := frame.ToRGBA()
	require.NoError(t, err)
	assert.Equal(green, rgba.RGBAAt(5, 5))
	frame.Close()

	_, _, ok, err = seq.Next()
	require.NoError(t, err)
	assert.True(ok)
	_, _, ok, err = seq.Next()
	require.NoError(t, err)
	assert.False(ok)

	assert.Error(seq.Seek(-1))
}

func TestImageSequenceEmptyDir(t *testing.T) {
	_, err := OpenImageSequence(t.TempDir(), 30)
	assert.Error(t, err)

	_, err = OpenImageSequence(filepath.Join(t.TempDir(), "missing"), 30)
	assert.Error(t, err)
}

func TestMemorySource(t *testing.T) {
	frames := []Frame{paintFrame(t, 8, 4), paintFrame(t, 8, 4)}
	src := NewMemorySource(frames, 30)

	assert := assert.New(t)
	assert.Equal(2, src.FrameCount())
	w, h := src.Size()
	assert.Equal(8, w)
	assert.Equal(4, h)

	f, idx, ok, err := src.Next()
	require.NoError(t, err)
	assert.True(ok)
	assert.Equal(0, idx)
	f.Close()
	assert.False(frames[0].Empty())

	require.NoError(t, src.Seek(5))
	_, _, ok, _ = src.Next()
	assert.False(ok)
	assert.NoError(src.Close())
}

func TestNewFrameFromBGR(t *testing.T) {
	_, err := NewFrameFromBGR(2, 2, make([]byte, 11))
	assert.Error(t, err)

	f, err := NewFrameFromBGR(2, 1, []byte{255, 0, 0, 0, 0, 255})
	require.NoError(t, err)
	defer f.Close()

	img, err := f.ToRGBA()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(1, 0))
}
