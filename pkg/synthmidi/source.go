package synthmidi

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FrameSource supplies decoded frames in presentation order.
type FrameSource interface {
	FrameRate() float64
	FrameCount() int
	Size() (width, height int)
	// Seek positions the source so that the next frame returned has the given index.
	Seek(index int) error
	// Next returns the next frame and its index; ok is false once the source is exhausted.
	// The caller owns the returned frame and must Close it.
	Next() (frame Frame, index int, ok bool, err error)
	Close() error
}

// MemorySource serves frames held in memory.
type MemorySource struct {
	frames    []Frame
	frameRate float64
	next      int
}

// NewMemorySource creates a source over frames. Frames returned by Next are clones.
func NewMemorySource(frames []Frame, frameRate float64) *MemorySource {
	return &MemorySource{frames: frames, frameRate: frameRate}
}

func (s *MemorySource) FrameRate() float64 { return s.frameRate }
func (s *MemorySource) FrameCount() int    { return len(s.frames) }

func (s *MemorySource) Size() (int, int) {
	if len(s.frames) == 0 {
		return 0, 0
	}
	return s.frames[0].Width(), s.frames[0].Height()
}

func (s *MemorySource) Seek(index int) error {
	if index < 0 {
		return fmt.Errorf("seek to negative frame %d", index)
	}
	s.next = index
	return nil
}

func (s *MemorySource) Next() (Frame, int, bool, error) {
	if s.next >= len(s.frames) {
		return Frame{}, 0, false, nil
	}
	idx := s.next
	s.next++
	return s.frames[idx].Clone(), idx, true, nil
}

// Close releases the held frames.
func (s *MemorySource) Close() error {
	for i := range s.frames {
		s.frames[i].Close()
	}
	s.frames = nil
	return nil
}

// ImageSequence reads a directory of numbered PNG or JPEG frames, such as the
// output of `ffmpeg -i video.mp4 frames/%06d.png`, at a fixed frame rate.
type ImageSequence struct {
	paths     []string
	frameRate float64
	width     int
	height    int
	next      int
}

// OpenImageSequence lists the frames in dir, ordered by file name.
func OpenImageSequence(dir string, frameRate float64) (*ImageSequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading frame directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PNG or JPEG frames in %s", dir)
	}
	sort.Strings(paths)

	cfg, err := decodeImageConfig(paths[0])
	if err != nil {
		return nil, err
	}
	return &ImageSequence{paths: paths, frameRate: frameRate, width: cfg.Width, height: cfg.Height}, nil
}

func (s *ImageSequence) FrameRate() float64 { return s.frameRate }
func (s *ImageSequence) FrameCount() int    { return len(s.paths) }
func (s *ImageSequence) Size() (int, int)   { return s.width, s.height }

func (s *ImageSequence) Seek(index int) error {
	if index < 0 {
		return fmt.Errorf("seek to negative frame %d", index)
	}
	s.next = index
	return nil
}

func (s *ImageSequence) Next() (Frame, int, bool, error) {
	if s.next >= len(s.paths) {
		return Frame{}, 0, false, nil
	}
	idx := s.next
	s.next++

	img, err := decodeImage(s.paths[idx])
	if err != nil {
		return Frame{}, 0, false, err
	}
	frame, err := FrameFromImage(img)
	if err != nil {
		return Frame{}, 0, false, fmt.Errorf("frame %d: %w", idx, err)
	}
	return frame, idx, true, nil
}

func (s *ImageSequence) Close() error { return nil }

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening frame: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func decodeImageConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("opening frame: %w", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("decoding frame %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}
