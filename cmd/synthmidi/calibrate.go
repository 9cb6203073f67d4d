package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sm "synthmidi/pkg/synthmidi"
)

type calibrateOptions struct {
	calibrationPath string
	keyY            int
	at              float64
	output          string
	sequenceFPS     float64
	writeConfig     string
}

var calibrateOpts calibrateOptions

var calibrateCmd = &cobra.Command{
	Use:   "calibrate <video|image>",
	Short: "Render the key sampling positions over one frame",
	Long: `Render every key's sampling box over a single frame so the calibration can be
checked by eye. The input is a screenshot (PNG/JPEG), a video, or a frame directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cal, err := loadCalibration(calibrateOpts.calibrationPath, cmd.Flags().Changed("key-y"), calibrateOpts.keyY)
		if err != nil {
			return err
		}
		return runCalibrate(args[0], cal, calibrateOpts)
	},
}

func init() {
	f := calibrateCmd.Flags()
	f.StringVar(&calibrateOpts.calibrationPath, "calibration", "", "YAML calibration file (c_positions, key_row)")
	f.IntVarP(&calibrateOpts.keyY, "key-y", "y", 500, "y coordinate for key detection")
	f.Float64Var(&calibrateOpts.at, "at", 14.0, "video time in seconds of the frame to render")
	f.StringVarP(&calibrateOpts.output, "output", "o", "debug_calibration.jpg", "overlay image path")
	f.Float64Var(&calibrateOpts.sequenceFPS, "fps", 30, "frame rate of an image-sequence directory")
	f.StringVar(&calibrateOpts.writeConfig, "write-config", "", "also save the effective calibration as YAML")
	rootCmd.AddCommand(calibrateCmd)
}

func isStillImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func runCalibrate(input string, cal sm.Calibration, opts calibrateOptions) error {
	p := sm.NewExtractParams()
	p.Logger = logger
	ex, err := sm.NewExtractor(cal, p)
	if err != nil {
		return fmt.Errorf("calibration: %w", err)
	}

	var frame sm.Frame
	if isStillImage(input) {
		frame, err = loadStill(input)
	} else {
		var src sm.FrameSource
		src, err = openSource(input, opts.sequenceFPS)
		if err != nil {
			return err
		}
		defer src.Close()
		frame, err = sm.GrabFrame(src, opts.at)
	}
	if err != nil {
		return err
	}
	defer frame.Close()

	verdicts := ex.ClassifyFrame(frame)
	if err := sm.WriteOverlayJPEG(opts.output, frame, ex.Classifier(), &verdicts); err != nil {
		return err
	}

	lit := map[sm.Hand]int{}
	for _, v := range verdicts {
		if v.Lit {
			lit[v.Hand]++
		}
	}
	lo, hi := ex.Keyboard().Span()
	fmt.Printf("Frame: %dx%d\n", frame.Width(), frame.Height())
	fmt.Printf("Octave width: %.1f px, white key: %.1f px, keys span x=%.0f..%.0f\n",
		ex.Keyboard().OctaveWidth(), ex.Keyboard().WhiteKeyWidth(), lo, hi)
	fmt.Printf("Lit keys: %d left, %d right\n", lit[sm.HandLeft], lit[sm.HandRight])
	fmt.Printf("Debug image: %s\n", opts.output)

	if opts.writeConfig != "" {
		data, err := yaml.Marshal(cal)
		if err != nil {
			return fmt.Errorf("encoding calibration: %w", err)
		}
		if err := os.WriteFile(opts.writeConfig, data, 0o644); err != nil {
			return fmt.Errorf("saving calibration: %w", err)
		}
		fmt.Printf("Calibration: %s\n", opts.writeConfig)
	}
	return nil
}
