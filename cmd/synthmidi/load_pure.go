//go:build purego || js

package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	sm "synthmidi/pkg/synthmidi"
)

// loadStill reads a screenshot of the keyboard as a BGR frame.
func loadStill(path string) (sm.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return sm.Frame{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return sm.Frame{}, fmt.Errorf("decoding image: %w", err)
	}
	return sm.FrameFromImage(img)
}
