//go:build !purego && !js

package main

import (
	"fmt"

	"gocv.io/x/gocv"

	sm "synthmidi/pkg/synthmidi"
)

// loadStill reads a screenshot of the keyboard as a BGR frame.
func loadStill(path string) (sm.Frame, error) {
	src := gocv.IMRead(path, gocv.IMReadColor)
	if src.Empty() {
		return sm.Frame{}, fmt.Errorf("could not load image: %s", path)
	}
	defer src.Close()

	return sm.NewFrameFromBGR(src.Cols(), src.Rows(), src.ToBytes())
}
