//go:build purego || js

package synthmidi

import (
	"fmt"
	"image"
)

// Frame is a pure Go packed 8-bit BGR image.
type Frame struct {
	data   []byte
	width  int
	height int
}

// NewFrameFromBGR copies packed 8-bit BGR pixels into a new Frame.
func NewFrameFromBGR(width, height int, bgr []byte) (Frame, error) {
	if width <= 0 || height <= 0 || len(bgr) != width*height*3 {
		return Frame{}, fmt.Errorf("frame %dx%d needs %d bytes, got %d", width, height, width*height*3, len(bgr))
	}
	data := make([]byte, len(bgr))
	copy(data, bgr)
	return Frame{data: data, width: width, height: height}, nil
}

// FrameFromImage converts any image to a BGR Frame.
func FrameFromImage(img image.Image) (Frame, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Frame{}, fmt.Errorf("image has no pixels")
	}
	data := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			off := (y*w + x) * 3
			data[off] = uint8(bl >> 8)
			data[off+1] = uint8(g >> 8)
			data[off+2] = uint8(r >> 8)
		}
	}
	return Frame{data: data, width: w, height: h}, nil
}

func (f Frame) Width() int  { return f.width }
func (f Frame) Height() int { return f.height }
func (f Frame) Empty() bool { return f.data == nil || f.width == 0 || f.height == 0 }

func (f Frame) Clone() Frame {
	data := make([]byte, len(f.data))
	copy(data, f.data)
	return Frame{data: data, width: f.width, height: f.height}
}

func (f *Frame) Close() {
	f.data = nil
	f.width = 0
	f.height = 0
}

// ToRGBA copies the frame into an RGBA image.
func (f Frame) ToRGBA() (*image.RGBA, error) {
	if f.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for i, j := 0, 0; i < len(f.data); i, j = i+3, j+4 {
		img.Pix[j] = f.data[i+2]
		img.Pix[j+1] = f.data[i+1]
		img.Pix[j+2] = f.data[i]
		img.Pix[j+3] = 255
	}
	return img, nil
}

// regionHSV returns the HSV bytes (3 per pixel, row-major) of r, which must lie inside the frame.
func regionHSV(f Frame, r image.Rectangle) []byte {
	out := make([]byte, 0, r.Dx()*r.Dy()*3)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := (y*f.width + r.Min.X) * 3
		for x := r.Min.X; x < r.Max.X; x++ {
			h, s, v := bgrToHSV(f.data[off], f.data[off+1], f.data[off+2])
			out = append(out, h, s, v)
			off += 3
		}
	}
	return out
}
