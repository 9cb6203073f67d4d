package synthmidi

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	whiteRowColor  = color.RGBA{255, 255, 0, 255}
	raisedRowColor = color.RGBA{0, 255, 255, 255}
	leftHandColor  = color.RGBA{0, 255, 0, 255}
	rightHandColor = color.RGBA{0, 0, 255, 255}
	unlitColor     = color.RGBA{128, 128, 128, 255}
)

// RenderOverlay draws the sampling rows, every key's sampling box and the C
// labels on top of frame. Lit keys are outlined in their hand's color.
func RenderOverlay(frame Frame, c *Classifier, verdicts *[KeyCount]Verdict) (*image.RGBA, error) {
	img, err := frame.ToRGBA()
	if err != nil {
		return nil, err
	}
	w := img.Bounds().Dx()
	row := c.kb.SampleRow()

	drawHLine(img, row, w, whiteRowColor)
	drawHLine(img, row+c.p.RaisedOffsetY, w, raisedRowColor)

	face := basicfont.Face7x13
	halfW, halfH := c.p.SampleWidth/2, c.p.SampleHeight/2
	for i, key := range c.kb.keys {
		pt := c.SamplePoint(key)
		box := image.Rect(pt.X-halfW, pt.Y-halfH, pt.X+halfW, pt.Y+halfH)

		v := Unlit
		if verdicts != nil {
			v = verdicts[i]
		}
		switch {
		case v.Lit && v.Hand == HandLeft:
			drawRect(img, box, leftHandColor, 2)
		case v.Lit:
			drawRect(img, box, rightHandColor, 2)
		default:
			drawRect(img, box, unlitColor, 1)
		}

		if key.Pitch%12 == 0 {
			drawText(img, face, PitchName(key.Pitch), pt.X-10, pt.Y-20, leftHandColor)
		}
	}
	return img, nil
}

// WriteOverlayJPEG renders the overlay and writes it to path.
func WriteOverlayJPEG(path string, frame Frame, c *Classifier, verdicts *[KeyCount]Verdict) error {
	b, err := RenderOverlayBytes(frame, c, verdicts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("create overlay file: %w", err)
	}
	return nil
}

// RenderOverlayBytes renders the overlay and returns it as JPEG bytes.
func RenderOverlayBytes(frame Frame, c *Classifier, verdicts *[KeyCount]Verdict) ([]byte, error) {
	img, err := RenderOverlay(frame, c, verdicts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawHLine(img *image.RGBA, y, width int, c color.RGBA) {
	for x := 0; x < width; x++ {
		img.Set(x, y, c)
	}
}

// drawRect draws a rectangle outline of the given thickness growing outwards from r.
func drawRect(img *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		x0, y0, x1, y1 := r.Min.X-t, r.Min.Y-t, r.Max.X+t, r.Max.Y+t
		for x := x0; x <= x1; x++ {
			img.Set(x, y0, c)
			img.Set(x, y1, c)
		}
		for y := y0; y <= y1; y++ {
			img.Set(x0, y, c)
			img.Set(x1, y, c)
		}
	}
}

// drawText draws a string at (x, y) using the given font face.
func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
