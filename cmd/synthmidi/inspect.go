package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sm "synthmidi/pkg/synthmidi"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Print the notes of a MIDI file written by extract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening MIDI file: %w", err)
		}
		defer f.Close()

		notes, tempo, err := sm.ReadSMFNotes(f)
		if err != nil {
			return err
		}
		fmt.Printf("Tempo: %.1f BPM, %d notes\n", tempo, len(notes))
		printAnalysis(os.Stdout, notes, nil)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
