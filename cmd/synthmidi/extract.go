package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	sm "synthmidi/pkg/synthmidi"
)

type extractOptions struct {
	output          string
	skip            float64
	keyY            int
	calibrationPath string
	debug           bool
	debugAt         float64
	debugOutput     string
	analyze         bool
	tempo           float64
	minDuration     float64
	releaseFrames   int
	workers         int
	sequenceFPS     float64
}

var extractOpts extractOptions

var extractCmd = &cobra.Command{
	Use:   "extract <video>",
	Short: "Extract notes from a video and save them as a MIDI file",
	Long: `Extract notes from a video (or a directory of extracted PNG/JPEG frames)
and save them as a two-track MIDI file, one track per hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cal, err := loadCalibration(extractOpts.calibrationPath, cmd.Flags().Changed("key-y"), extractOpts.keyY)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runExtract(ctx, args[0], cal, extractOpts)
	},
}

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extractOpts.output, "output", "o", "output.mid", "output MIDI file path")
	f.Float64VarP(&extractOpts.skip, "skip", "s", 5.0, "seconds to skip at start")
	f.IntVarP(&extractOpts.keyY, "key-y", "y", 500, "y coordinate for key detection")
	f.StringVar(&extractOpts.calibrationPath, "calibration", "", "YAML calibration file (c_positions, key_row)")
	f.BoolVar(&extractOpts.debug, "debug", false, "save debug calibration image")
	f.Float64Var(&extractOpts.debugAt, "debug-at", 14.0, "video time in seconds of the debug calibration frame")
	f.StringVar(&extractOpts.debugOutput, "debug-output", "debug_calibration.jpg", "debug calibration image path")
	f.BoolVar(&extractOpts.analyze, "analyze", false, "print note analysis after extraction")
	f.Float64Var(&extractOpts.tempo, "tempo", sm.DefaultTempo, "tempo of the written MIDI file in BPM")
	f.Float64Var(&extractOpts.minDuration, "min-duration", 0.03, "drop notes shorter than this many seconds")
	f.IntVar(&extractOpts.releaseFrames, "release-frames", 2, "consecutive unlit frames that release a key")
	f.IntVar(&extractOpts.workers, "workers", 1, "goroutines classifying keys of each frame")
	f.Float64Var(&extractOpts.sequenceFPS, "fps", 30, "frame rate of an image-sequence directory")
	rootCmd.AddCommand(extractCmd)
}

// loadCalibration returns the calibration from path, or the default one. An
// explicitly set key row overrides the file's.
func loadCalibration(path string, keyRowSet bool, keyRow int) (sm.Calibration, error) {
	cal := sm.DefaultCalibration()
	if path != "" {
		var err error
		cal, err = sm.LoadCalibration(path)
		if err != nil {
			return sm.Calibration{}, err
		}
	}
	if keyRowSet {
		cal.KeyRow = keyRow
	}
	return cal, nil
}

// openSource opens a video file, or an image sequence when path is a directory.
func openSource(path string, sequenceFPS float64) (sm.FrameSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if info.IsDir() {
		seq, err := sm.OpenImageSequence(path, sequenceFPS)
		if err != nil {
			return nil, err
		}
		return seq, nil
	}
	video, err := sm.OpenVideo(path)
	if err != nil {
		return nil, err
	}
	return video, nil
}

func newParams(opts extractOptions) *sm.ExtractParams {
	p := sm.NewExtractParams()
	p.SkipSeconds = opts.skip
	p.Debounce.MinDuration = opts.minDuration
	p.Debounce.ReleaseFrames = opts.releaseFrames
	p.Classifier.Workers = opts.workers
	p.Logger = logger
	p.Progress = func(pr sm.Progress) {
		fmt.Printf("  %.0fs / %.0fs\n", pr.Time, pr.TotalTime)
	}
	return p
}

func runExtract(ctx context.Context, input string, cal sm.Calibration, opts extractOptions) error {
	ex, err := sm.NewExtractor(cal, newParams(opts))
	if err != nil {
		return fmt.Errorf("calibration: %w", err)
	}

	src, err := openSource(input, opts.sequenceFPS)
	if err != nil {
		return err
	}
	defer src.Close()

	w, h := src.Size()
	fmt.Printf("Video: %dx%d, %.2f fps\n", w, h, src.FrameRate())
	fmt.Printf("Mapped %d keys\n", len(ex.Keyboard().Keys()))

	if opts.debug {
		if err := saveDebugFrame(src, ex, opts.debugAt, opts.debugOutput); err != nil {
			logger.Warn("debug image not written", zap.Error(err))
		} else {
			fmt.Printf("Debug image: %s\n", opts.debugOutput)
		}
	}

	fmt.Printf("Processing from %.1fs...\n", opts.skip)
	started := time.Now()
	result, err := ex.Extract(ctx, src)
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}

	fmt.Printf("\nExtracted %d notes (%.1fs)\n", len(result.Notes), time.Since(started).Seconds())
	for _, warning := range result.Warnings {
		fmt.Printf("  [WARNING] %s\n", warning)
	}

	if err := sm.WriteSMFFile(opts.output, result.Notes, opts.tempo); err != nil {
		return err
	}
	fmt.Printf("Saved: %s\n", opts.output)

	if opts.analyze && len(result.Notes) > 0 {
		printAnalysis(os.Stdout, result.Notes, result.Metrics)
	}
	return nil
}

func saveDebugFrame(src sm.FrameSource, ex *sm.Extractor, at float64, path string) error {
	frame, err := sm.GrabFrame(src, at)
	if err != nil {
		return err
	}
	defer frame.Close()
	verdicts := ex.ClassifyFrame(frame)
	return sm.WriteOverlayJPEG(path, frame, ex.Classifier(), &verdicts)
}
