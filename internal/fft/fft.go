// Package fft implements the visualizer spectrum stage (spec.md §4.3):
// fold stereo to mono, pad to a power of two, window, transform, scale, and
// bin into a visible frequency range.
//
// Algorithm grounded on original_source/src/player/fft.rs; the Go shape
// (Hann window table, gonum's real FFT, frequency-to-bin mapping) is
// grounded on the retrieved other_examples audio analyzer
// (austinkregel-vscode-music-player's internal/audio/analyzer.go).
package fft

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Stage holds the fixed parameters of one spectrum run.
type Stage struct {
	Divider int // number of consecutive samples folded into one mono sample
	MinFreq uint32
	MaxFreq uint32

	fft *fourier.FFT
	n   int // FFT size the current fft instance was built for
}

// New constructs a Stage. divider folds stereo interleaved samples down to
// mono (divider=2 for a plain stereo sum); minFreq/maxFreq bound the
// returned bins.
func New(divider int, minFreq, maxFreq uint32) *Stage {
	if divider < 1 {
		divider = 1
	}
	return &Stage{Divider: divider, MinFreq: minFreq, MaxFreq: maxFreq}
}

// Run executes the spectrum pipeline over samples at the given sample rate
// and returns one magnitude byte per selected frequency bin.
func (s *Stage) Run(samples []float32, sampleRate uint32) ([]byte, error) {
	if len(samples) == 0 {
		return nil, nil
	}

	mono := foldMono(samples, s.Divider)

	n := nextPow2(len(mono))
	padded := make([]float64, n)
	for i, v := range mono {
		padded[i] = float64(v)
	}
	applyHann(padded, len(mono))

	if s.fft == nil || s.n != n {
		s.fft = fourier.NewFFT(n)
		s.n = n
	}

	coeffs := s.fft.Coefficients(nil, padded)
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("FFT error: empty coefficient set")
	}

	loBin, hiBin := binsForRange(n, sampleRate, s.MinFreq, s.MaxFreq)
	out := make([]byte, 0, hiBin-loBin+1)
	for bin := loBin; bin <= hiBin && bin < len(coeffs); bin++ {
		mag := cAbs(coeffs[bin])
		db := 20 * math.Log10(mag+1e-12)
		scaled := db * 0.75
		out = append(out, clampByte(scaled))
	}
	return out, nil
}

func cAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// foldMono sums every `divider` consecutive samples into one mono sample,
// matching the original's stereo-fold step.
func foldMono(samples []float32, divider int) []float32 {
	n := len(samples) / divider
	if n == 0 {
		n = 1
		divider = len(samples)
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for j := 0; j < divider; j++ {
			idx := i*divider + j
			if idx < len(samples) {
				sum += samples[idx]
			}
		}
		out[i] = sum
	}
	return out
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	if p == 0 {
		p = 1
	}
	return p
}

// applyHann applies a Hann window to the first n elements of buf in place.
func applyHann(buf []float64, n int) {
	if n <= 1 {
		return
	}
	for i := 0; i < n; i++ {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		buf[i] *= w
	}
}

// binsForRange maps [minFreq, maxFreq] to the inclusive FFT bin range for an
// n-point transform at sampleRate.
func binsForRange(n int, sampleRate, minFreq, maxFreq uint32) (lo, hi int) {
	if sampleRate == 0 {
		return 0, 0
	}
	binHz := float64(sampleRate) / float64(n)
	lo = int(math.Floor(float64(minFreq) / binHz))
	hi = int(math.Ceil(float64(maxFreq) / binHz))
	if lo < 0 {
		lo = 0
	}
	maxBin := n/2 - 1
	if hi > maxBin {
		hi = maxBin
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
