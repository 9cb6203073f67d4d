package synthmidi

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Extractor runs the key-state pipeline over a frame source.
type Extractor struct {
	classifier *Classifier
	p          *ExtractParams
	log        *zap.Logger
}

// NewExtractor builds the keyboard geometry from cal and prepares the classifier.
// Calibration errors are returned here, before any frame is read.
func NewExtractor(cal Calibration, p *ExtractParams) (*Extractor, error) {
	if p == nil {
		p = NewExtractParams()
	}
	if p.SkipSeconds < 0 {
		return nil, fmt.Errorf("%w: skip must not be negative, got %v", ErrInvalidParams, p.SkipSeconds)
	}
	if p.Classifier.SampleWidth < 1 || p.Classifier.SampleHeight < 1 {
		return nil, fmt.Errorf("%w: sample size %dx%d", ErrInvalidParams, p.Classifier.SampleWidth, p.Classifier.SampleHeight)
	}
	kb, err := NewKeyboard(cal)
	if err != nil {
		return nil, err
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{classifier: NewClassifier(kb, p.Classifier), p: p, log: log}, nil
}

func (e *Extractor) Classifier() *Classifier { return e.classifier }
func (e *Extractor) Keyboard() *Keyboard     { return e.classifier.Keyboard() }

// Extract processes every frame from the skip offset to the end of src and
// returns the completed notes in emission order.
func (e *Extractor) Extract(ctx context.Context, src FrameSource) (*ExtractResult, error) {
	fps := src.FrameRate()
	if !(fps > 0) || math.IsInf(fps, 0) {
		return nil, fmt.Errorf("%w: source reports %v", ErrInvalidFrameRate, fps)
	}
	deb, err := NewDebouncer(e.p.Debounce, fps)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	log := e.log.With(zap.String("run", runID))

	startFrame := firstFrameAt(e.p.SkipSeconds, fps)
	if err := src.Seek(startFrame); err != nil {
		return nil, fmt.Errorf("seeking to frame %d: %w", startFrame, err)
	}
	log.Info("processing",
		zap.Float64("fps", fps),
		zap.Int("frames", src.FrameCount()),
		zap.Float64("skip", e.p.SkipSeconds),
		zap.Int("startFrame", startFrame))

	metrics := &ExtractMetrics{StartFrame: startFrame}
	totalTime := float64(src.FrameCount()) / fps
	reportEvery := 0
	if e.p.ProgressInterval > 0 {
		reportEvery = int(math.Max(1, math.Round(e.p.ProgressInterval*fps)))
	}

	var (
		tl       Timeline
		verdicts [KeyCount]Verdict
		lastTime float64
		seen     bool
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, idx, ok, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("reading frame %d: %w", startFrame+metrics.FramesProcessed, err)
		}
		if !ok {
			break
		}

		t := float64(idx) / fps
		if reportEvery > 0 && idx%reportEvery == 0 {
			e.report(log, Progress{Frame: idx, Time: t, TotalTime: totalTime})
		}

		e.classifier.ClassifyAll(frame, &verdicts)
		frame.Close()

		for i, v := range verdicts {
			if v.Lit {
				metrics.LitFrames[i]++
			}
			if n, ok := deb.Observe(LowestPitch+i, t, v); ok {
				tl.Add(n)
			}
		}
		metrics.FramesProcessed++
		lastTime, seen = t, true
	}

	if seen {
		tl.Add(deb.Finish(lastTime)...)
	}

	stats := deb.Stats()
	metrics.Emitted = stats.Emitted
	metrics.Discarded = stats.Discarded
	metrics.ForceClosed = stats.ForceClosed

	result := &ExtractResult{RunID: runID, Notes: tl.Notes(), Metrics: metrics}
	if tl.Len() == 0 {
		msg := fmt.Sprintf("no notes extracted from %d frames; check calibration and key row", metrics.FramesProcessed)
		result.Warnings = append(result.Warnings, msg)
		log.Warn("no notes extracted", zap.Int("frames", metrics.FramesProcessed))
	}
	log.Info("extracted",
		zap.Int("notes", tl.Len()),
		zap.Int("discarded", metrics.Discarded),
		zap.Int("forceClosed", metrics.ForceClosed),
		zap.Int("frames", metrics.FramesProcessed))
	return result, nil
}

func (e *Extractor) report(log *zap.Logger, p Progress) {
	log.Debug("progress", zap.Float64("time", p.Time), zap.Float64("total", p.TotalTime))
	if e.p.Progress != nil {
		e.p.Progress(p)
	}
}

// firstFrameAt returns the index of the first frame shown at or after t seconds.
// The tolerance keeps frame-aligned offsets such as 4.35s at 100 fps on their frame.
func firstFrameAt(t, fps float64) int {
	return int(math.Ceil(t*fps - 1e-9))
}

// ClassifyFrame returns the verdict of every key for a single frame.
func (e *Extractor) ClassifyFrame(frame Frame) [KeyCount]Verdict {
	var verdicts [KeyCount]Verdict
	e.classifier.ClassifyAll(frame, &verdicts)
	return verdicts
}

// GrabFrame reads the frame shown at time t seconds. The caller must Close it.
func GrabFrame(src FrameSource, t float64) (Frame, error) {
	fps := src.FrameRate()
	if !(fps > 0) {
		return Frame{}, fmt.Errorf("%w: source reports %v", ErrInvalidFrameRate, fps)
	}
	idx := int(t * fps)
	if err := src.Seek(idx); err != nil {
		return Frame{}, err
	}
	frame, _, ok, err := src.Next()
	if err != nil {
		return Frame{}, err
	}
	if !ok {
		return Frame{}, fmt.Errorf("no frame at %.2fs (frame %d)", t, idx)
	}
	return frame, nil
}
