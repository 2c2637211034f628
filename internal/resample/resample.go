// Package resample implements a fixed-input-size windowed-sinc resampler for
// 2-channel interleaved float32 audio, grounded on
// original_source/src/resampler.rs's wrapping of rubato::SincFixedIn:
// sinc length 256, ~0.95 relative cutoff, Blackman-Harris window, 256x
// oversampling table with linear interpolation between entries.
package resample

import "math"

const (
	sincHalfTaps = 128 // half of sinc length 256
	sincLen      = 2 * sincHalfTaps
	cutoff       = 0.95
	oversample   = 256
)

// Resampler converts fixed-size blocks of interleaved stereo float32 audio
// from a source rate to a target rate.
type Resampler struct {
	blockFrames int

	sourceHz, targetHz uint32
	ratio              float64
	passthrough        bool

	// table holds a precomputed windowed-sinc kernel sampled at oversample
	// points per tap, built once in New and shared by every later call,
	// including after SetFrequencies.
	table []float64

	left, right   []float64
	outL, outR    []float64
	out           []float32
}

// New allocates working buffers sized for a fixed input block of
// blockFrames stereo frames.
func New(blockFrames int) *Resampler {
	r := &Resampler{
		blockFrames: blockFrames,
		passthrough: true,
	}
	r.left = make([]float64, blockFrames)
	r.right = make([]float64, blockFrames)
	r.buildTable()
	return r
}

// SetFrequencies sets the conversion ratio target/source. Frequencies equal
// to each other mark the resampler as a passthrough: Process then returns
// its input slice directly with no copy.
func (r *Resampler) SetFrequencies(sourceHz, targetHz uint32) {
	r.sourceHz, r.targetHz = sourceHz, targetHz
	r.passthrough = sourceHz == targetHz
	if sourceHz == 0 {
		r.ratio = 1
		return
	}
	r.ratio = float64(targetHz) / float64(sourceHz)

	outFrames := int(math.Ceil(float64(r.blockFrames)*r.ratio)) + 1
	if cap(r.outL) < outFrames {
		r.outL = make([]float64, outFrames)
		r.outR = make([]float64, outFrames)
		r.out = make([]float32, outFrames*2)
	}
}

// buildTable precomputes the windowed sinc kernel, oversampled for linear
// interpolation between fractional sample offsets.
func (r *Resampler) buildTable() {
	n := sincLen*oversample + 1
	r.table = make([]float64, n)
	for i := 0; i < n; i++ {
		// x ranges over [-sincHalfTaps, sincHalfTaps] across the table.
		x := float64(i)/float64(oversample) - float64(sincHalfTaps)
		r.table[i] = sincValue(x) * blackmanHarris(x)
	}
}

func sincValue(x float64) float64 {
	xc := x * cutoff
	if xc == 0 {
		return 1
	}
	pix := math.Pi * xc
	return math.Sin(pix) / pix
}

// blackmanHarris evaluates the window over the support [-sincHalfTaps,
// sincHalfTaps], mapped onto [0, 1].
func blackmanHarris(x float64) float64 {
	const (
		a0 = 0.35875
		a1 = 0.48829
		a2 = 0.14128
		a3 = 0.01168
	)
	t := (x + float64(sincHalfTaps)) / float64(sincLen) // in [0, 1]
	return a0 - a1*math.Cos(2*math.Pi*t) + a2*math.Cos(4*math.Pi*t) - a3*math.Cos(6*math.Pi*t)
}

// tapAt returns the interpolated kernel value at fractional tap offset d
// (distance in input samples from the target point, within
// [-sincHalfTaps, sincHalfTaps]).
func (r *Resampler) tapAt(d float64) float64 {
	pos := (d + float64(sincHalfTaps)) * oversample
	idx := int(pos)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(r.table)-1 {
		idx = len(r.table) - 2
	}
	frac := pos - float64(idx)
	return r.table[idx]*(1-frac) + r.table[idx+1]*frac
}

// Process converts one block of interleaved stereo float32 samples (exactly
// blockFrames frames) from sourceHz to targetHz. If the resampler is a
// passthrough, the input slice is returned unmodified; otherwise an owned
// buffer is returned, valid until the next call to Process.
func (r *Resampler) Process(samples []float32) []float32 {
	if r.passthrough {
		return samples
	}

	frames := len(samples) / 2
	for i := 0; i < frames; i++ {
		r.left[i] = float64(samples[i*2+0])
		r.right[i] = float64(samples[i*2+1])
	}

	outFrames := int(math.Round(float64(frames) * r.ratio))
	if outFrames+1 > cap(r.outL) {
		outFrames = cap(r.outL) - 1
	}

	for o := 0; o < outFrames; o++ {
		srcPos := float64(o) / r.ratio

		center := int(math.Floor(srcPos))
		var accL, accR float64
		for k := center - sincHalfTaps + 1; k <= center+sincHalfTaps; k++ {
			if k < 0 || k >= frames {
				continue
			}
			w := r.tapAt(srcPos - float64(k))
			accL += r.left[k] * w
			accR += r.right[k] * w
		}
		r.outL[o] = accL
		r.outR[o] = accR
	}

	for i := 0; i < outFrames; i++ {
		r.out[i*2+0] = float32(r.outL[i])
		r.out[i*2+1] = float32(r.outR[i])
	}
	return r.out[:outFrames*2]
}
