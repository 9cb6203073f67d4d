package synthmidi

import (
	"image"
	"sync"
)

// Classifier decides, per frame and key, whether the key is lit and for which hand.
// It holds no temporal state and is safe for concurrent use.
type Classifier struct {
	kb *Keyboard
	p  ClassifierParams
}

// NewClassifier creates a classifier over the given keyboard geometry.
func NewClassifier(kb *Keyboard, p ClassifierParams) *Classifier {
	return &Classifier{kb: kb, p: p}
}

func (c *Classifier) Keyboard() *Keyboard { return c.kb }

// SamplePoint returns the pixel at the centre of a key's sampling neighbourhood.
// White keys are shifted horizontally towards the key body; raised keys are
// sampled lower, where their narrower illumination shows.
func (c *Classifier) SamplePoint(key KeyGeometry) image.Point {
	x := int(key.X)
	y := c.kb.SampleRow()
	if key.Raised {
		y += c.p.RaisedOffsetY
	} else {
		x += c.p.WhiteShiftX
	}
	return image.Pt(x, y)
}

// SampleRect returns the key's sampling neighbourhood clipped to a width x height frame.
func (c *Classifier) SampleRect(key KeyGeometry, width, height int) image.Rectangle {
	pt := c.SamplePoint(key)
	return centeredRect(pt.X, pt.Y, c.p.SampleWidth, c.p.SampleHeight, width, height)
}

// Classify samples the key's neighbourhood in frame. Green illumination takes
// precedence over blue when both reach the lit ratio.
func (c *Classifier) Classify(frame Frame, key KeyGeometry) Verdict {
	r := c.SampleRect(key, frame.Width(), frame.Height())
	if r.Empty() {
		return Unlit
	}
	green, blue, total := hsvCounts(regionHSV(frame, r), c.p.Colors)
	if total == 0 {
		return Unlit
	}
	return c.decide(float64(green)/float64(total), float64(blue)/float64(total))
}

func (c *Classifier) decide(greenRatio, blueRatio float64) Verdict {
	if greenRatio >= c.p.Colors.LitRatio {
		return LitBy(HandLeft)
	}
	if blueRatio >= c.p.Colors.LitRatio {
		return LitBy(HandRight)
	}
	return Unlit
}

// ClassifyAll classifies every key of the keyboard into dst, indexed by pitch-LowestPitch.
func (c *Classifier) ClassifyAll(frame Frame, dst *[KeyCount]Verdict) {
	workers := c.p.Workers
	if workers <= 1 {
		for i := range c.kb.keys {
			dst[i] = c.Classify(frame, c.kb.keys[i])
		}
		return
	}
	if workers > KeyCount {
		workers = KeyCount
	}

	keysPerWorker := (KeyCount + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < KeyCount; start += keysPerWorker {
		end := start + keysPerWorker
		if end > KeyCount {
			end = KeyCount
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				dst[i] = c.Classify(frame, c.kb.keys[i])
			}
		}(start, end)
	}
	wg.Wait()
}
