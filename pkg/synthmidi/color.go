package synthmidi

import (
	"image"
	"math"

	"golang.org/x/exp/constraints"
)

// bgrToHSV converts one 8-bit BGR pixel using OpenCV's 8-bit HSV scaling:
// H in [0, 180), S and V in [0, 255].
func bgrToHSV(b, g, r uint8) (uint8, uint8, uint8) {
	bf, gf, rf := float64(b), float64(g), float64(r)
	v := math.Max(rf, math.Max(gf, bf))
	lo := math.Min(rf, math.Min(gf, bf))
	diff := v - lo

	var s float64
	if v > 0 {
		s = diff * 255 / v
	}

	var h float64
	if diff > 0 {
		switch v {
		case rf:
			h = 60 * (gf - bf) / diff
		case gf:
			h = 120 + 60*(bf-rf)/diff
		default:
			h = 240 + 60*(rf-gf)/diff
		}
		if h < 0 {
			h += 360
		}
	}

	hh := math.Round(h / 2)
	if hh >= 180 {
		hh -= 180
	}
	return uint8(hh), uint8(math.Round(s)), uint8(v)
}

// hsvCounts tallies green-like and blue-like pixels in a packed HSV buffer.
func hsvCounts(hsv []byte, t ColorThresholds) (green, blue, total int) {
	for i := 0; i+2 < len(hsv); i += 3 {
		total++
		h, s, v := int(hsv[i]), int(hsv[i+1]), int(hsv[i+2])
		if s <= t.SaturationMin || v <= t.ValueMin {
			continue
		}
		switch {
		case h >= t.GreenHueMin && h <= t.GreenHueMax:
			green++
		case h > t.BlueHueMin && h <= t.BlueHueMax:
			blue++
		}
	}
	return green, blue, total
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// centeredRect returns the w x h rectangle centred on (cx, cy), clipped to width x height.
func centeredRect(cx, cy, w, h, width, height int) image.Rectangle {
	halfW, halfH := w/2, h/2
	return image.Rect(
		clamp(cx-halfW, 0, width),
		clamp(cy-halfH, 0, height),
		clamp(cx+halfW+1, 0, width),
		clamp(cy+halfH+1, 0, height),
	)
}
