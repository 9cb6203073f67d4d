//go:build !purego && !js

package synthmidi

import (
	"fmt"
	"image"
	"image/draw"

	"gocv.io/x/gocv"
)

// Frame wraps a BGR gocv.Mat for the native OpenCV backend.
type Frame struct {
	m gocv.Mat
}

// NewFrameFromBGR copies packed 8-bit BGR pixels into a new Frame.
func NewFrameFromBGR(width, height int, bgr []byte) (Frame, error) {
	if width <= 0 || height <= 0 || len(bgr) != width*height*3 {
		return Frame{}, fmt.Errorf("frame %dx%d needs %d bytes, got %d", width, height, width*height*3, len(bgr))
	}
	view, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, bgr)
	if err != nil {
		return Frame{}, fmt.Errorf("creating mat: %w", err)
	}
	defer view.Close()
	// The view aliases bgr; keep an owned copy.
	return Frame{m: view.Clone()}, nil
}

// FrameFromImage converts any image to a BGR Frame.
func FrameFromImage(img image.Image) (Frame, error) {
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return Frame{}, fmt.Errorf("converting image: %w", err)
	}
	return Frame{m: m}, nil
}

func (f Frame) Width() int   { return f.m.Cols() }
func (f Frame) Height() int  { return f.m.Rows() }
func (f Frame) Empty() bool  { return f.m.Empty() }
func (f Frame) Clone() Frame { return Frame{m: f.m.Clone()} }
func (f *Frame) Close()      { f.m.Close() }

// ToRGBA copies the frame into an RGBA image.
func (f Frame) ToRGBA() (*image.RGBA, error) {
	img, err := f.m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// regionHSV returns the HSV bytes (3 per pixel, row-major) of r, which must lie inside the frame.
func regionHSV(f Frame, r image.Rectangle) []byte {
	region := f.m.Region(r)
	defer region.Close()
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(region, &hsv, gocv.ColorBGRToHSV)
	return hsv.ToBytes()
}
