//go:build !purego && !js

package synthmidi

import (
	"fmt"

	"gocv.io/x/gocv"
)

// VideoFile decodes a video file with OpenCV.
type VideoFile struct {
	vc        *gocv.VideoCapture
	frameRate float64
	count     int
	width     int
	height    int
	next      int
}

// OpenVideo opens a video file for sequential decoding.
func OpenVideo(path string) (*VideoFile, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening video: %w", err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("could not open video: %s", path)
	}
	return &VideoFile{
		vc:        vc,
		frameRate: vc.Get(gocv.VideoCaptureFPS),
		count:     int(vc.Get(gocv.VideoCaptureFrameCount)),
		width:     int(vc.Get(gocv.VideoCaptureFrameWidth)),
		height:    int(vc.Get(gocv.VideoCaptureFrameHeight)),
	}, nil
}

func (v *VideoFile) FrameRate() float64 { return v.frameRate }
func (v *VideoFile) FrameCount() int    { return v.count }
func (v *VideoFile) Size() (int, int)   { return v.width, v.height }

func (v *VideoFile) Seek(index int) error {
	if index < 0 {
		return fmt.Errorf("seek to negative frame %d", index)
	}
	v.vc.Set(gocv.VideoCapturePosFrames, float64(index))
	v.next = index
	return nil
}

func (v *VideoFile) Next() (Frame, int, bool, error) {
	m := gocv.NewMat()
	if ok := v.vc.Read(&m); !ok || m.Empty() {
		m.Close()
		return Frame{}, 0, false, nil
	}
	idx := v.next
	v.next++
	return Frame{m: m}, idx, true, nil
}

func (v *VideoFile) Close() error { return v.vc.Close() }
