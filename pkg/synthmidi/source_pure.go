//go:build purego || js

package synthmidi

import "fmt"

// VideoFile is unavailable without OpenCV; see ImageSequence.
type VideoFile struct {
	ImageSequence
}

// OpenVideo is not supported in the pure Go build. Extract frames with ffmpeg
// and use OpenImageSequence instead.
func OpenVideo(path string) (*VideoFile, error) {
	return nil, fmt.Errorf("video decoding needs the OpenCV build, cannot open %s; use an image sequence", path)
}
