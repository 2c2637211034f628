package resample

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestPassthroughIdentity(t *testing.T) {
	r := New(64)
	r.SetFrequencies(44100, 44100)

	in := make([]float32, 64*2)
	for i := range in {
		in[i] = float32(i) * 0.001
	}

	out := r.Process(in)
	if len(out) != len(in) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

// TestPassthroughIdentityProperty is the rapid property-test form of spec's
// resampler passthrough invariant: set_frequencies(r, r); process(xs) is
// bit-identical to xs.
func TestPassthroughIdentityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := rapid.Uint32Range(8000, 192000).Draw(t, "rate")
		frames := rapid.IntRange(1, 256).Draw(t, "frames")

		r := New(frames)
		r.SetFrequencies(rate, rate)

		xs := make([]float32, frames*2)
		for i := range xs {
			xs[i] = rapid.Float32Range(-1, 1).Draw(t, "sample")
		}

		out := r.Process(xs)
		if len(out) != len(xs) {
			t.Fatalf("len(out) = %d, want %d", len(out), len(xs))
		}
		for i := range xs {
			if out[i] != xs[i] {
				t.Fatalf("passthrough mismatch at %d", i)
			}
		}
	})
}

func TestOutputLengthApproximatesRatio(t *testing.T) {
	r := New(100)
	r.SetFrequencies(22050, 44100)

	in := make([]float32, 200)
	out := r.Process(in)

	wantFrames := 200 // 100 frames * 2.0 ratio
	gotFrames := len(out) / 2
	if math.Abs(float64(gotFrames-wantFrames)) > 1 {
		t.Fatalf("output frames = %d, want ~%d", gotFrames, wantFrames)
	}
}

func TestNoPanicOnRatioChangeBetweenCalls(t *testing.T) {
	r := New(64)
	in := make([]float32, 128)

	r.SetFrequencies(44100, 48000)
	r.Process(in)

	r.SetFrequencies(48000, 22050)
	r.Process(in)

	r.SetFrequencies(22050, 22050)
	r.Process(in)
}
