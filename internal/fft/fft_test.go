package fft

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func sineWave(freq float64, sampleRate uint32, frames int) []float32 {
	out := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		v := float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
		out[i*2+0] = v
		out[i*2+1] = v
	}
	return out
}

func TestRunReturnsExpectedBinCount(t *testing.T) {
	s := New(2, 20, 4000)
	samples := sineWave(440, 44100, 1024)

	out, err := s.Run(samples, 44100)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty bin output")
	}
}

func TestRunEmptyInput(t *testing.T) {
	s := New(2, 20, 4000)
	out, err := s.Run(nil, 44100)
	if err != nil {
		t.Fatalf("Run returned error on empty input: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil output for empty input, got %v", out)
	}
}

// TestFFTLengthLaw is the property test for spec's FFT length law: for
// non-empty input, run(xs, r).len() equals the number of bins in
// [min_freq, max_freq] for the padded FFT size, regardless of xs.len().
func TestFFTLengthLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		divider := rapid.IntRange(1, 4).Draw(t, "divider")
		minFreq := rapid.Uint32Range(0, 2000).Draw(t, "minFreq")
		maxFreq := minFreq + rapid.Uint32Range(100, 5000).Draw(t, "maxFreqDelta")
		sampleRate := rapid.Uint32Range(8000, 48000).Draw(t, "sampleRate")
		n := rapid.IntRange(1, 4000).Draw(t, "n")

		samples := make([]float32, n)
		for i := range samples {
			samples[i] = rapid.Float32Range(-1, 1).Draw(t, "sample")
		}

		s := New(divider, minFreq, maxFreq)
		out, err := s.Run(samples, sampleRate)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}

		mono := foldMono(samples, divider)
		padded := nextPow2(len(mono))
		loBin, hiBin := binsForRange(padded, sampleRate, minFreq, maxFreq)
		want := hiBin - loBin + 1

		if len(out) != want {
			t.Fatalf("len(out) = %d, want %d (padded=%d lo=%d hi=%d)", len(out), want, padded, loBin, hiBin)
		}
	})
}
