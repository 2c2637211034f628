// Package config parses the command-line surface, spec.md §6. Grounded on
// the teacher's cmd/modplay/main.go flag declarations, moved onto
// github.com/spf13/pflag (retrieved in doismellburning-samoyed's
// cmd/direwolf/main.go) to get the spec's combined short/long flags that
// stdlib flag cannot express.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Visualizer selects where the FFT bars render relative to the song list.
type Visualizer string

const (
	VisualizerNone  Visualizer = "none"
	VisualizerRight Visualizer = "right"
	VisualizerBelow Visualizer = "below"
)

func (v Visualizer) valid() bool {
	switch v {
	case VisualizerNone, VisualizerRight, VisualizerBelow:
		return true
	default:
		return false
	}
}

// Args is the fully parsed command line, matching spec.md §6.
type Args struct {
	MinFreq          uint32
	MaxFreq          uint32
	Visualizer       Visualizer
	FFTDiv           uint
	VisualizerHeight uint
	NoTerm           bool
	NoColor          bool
	Songs            []string
}

// Parse parses argv (excluding the program name) into Args.
func Parse(argv []string) (Args, error) {
	fs := pflag.NewFlagSet("oldplay", pflag.ContinueOnError)

	minFreq := fs.Uint32("min-freq", 15, "lowest FFT bin frequency in Hz")
	maxFreq := fs.Uint32("max-freq", 4000, "highest FFT bin frequency in Hz")
	visualizer := fs.StringP("visualizer", "o", string(VisualizerBelow), "visualizer placement: none, right, below")
	fftDiv := fs.UintP("fft-div", "d", 4, "FFT bucket divider")
	visualizerHeight := fs.UintP("visualizer-height", "H", 5, "visualizer height in terminal rows")
	noTerm := fs.Bool("no-term", false, "disable the terminal UI")
	noColor := fs.BoolP("no-color", "c", false, "disable ANSI color output")

	if err := fs.Parse(argv); err != nil {
		return Args{}, err
	}

	v := Visualizer(*visualizer)
	if !v.valid() {
		return Args{}, fmt.Errorf("config: invalid --visualizer %q, want none|right|below", *visualizer)
	}

	return Args{
		MinFreq:          *minFreq,
		MaxFreq:          *maxFreq,
		Visualizer:       v,
		FFTDiv:           *fftDiv,
		VisualizerHeight: *visualizerHeight,
		NoTerm:           *noTerm,
		NoColor:          *noColor,
		Songs:            fs.Args(),
	}, nil
}
