// Package ring implements a fixed-capacity, lock-free, single-producer /
// single-consumer queue of float32 samples. It is the audio FIFO between the
// engine thread and the device callback (spec.md §4.1).
//
// The read/write cursor bookkeeping is grounded on internal/comb's Comb /
// CombAdd circular-buffer logic (wraparound copy over a fixed backing
// slice), reworked from a single-threaded decay accumulator into an atomic
// SPSC queue: writeIdx/readIdx become atomic cursors with release/acquire
// semantics instead of plain ints, so the producer (engine) and consumer
// (output callback) can run on different OS threads without a mutex.
package ring

import "sync/atomic"

// Ring is a fixed-capacity circular buffer of float32 samples. Capacity must
// be a power of two; the zero value is not usable, use New.
type Ring struct {
	buf  []float32
	mask uint64

	writeIdx atomic.Uint64 // published by the producer after writing
	readIdx  atomic.Uint64 // published by the consumer after reading
}

// New creates a Ring with the given capacity, rounded up to the next power
// of two. No further allocation occurs after New returns.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	cap := nextPow2(capacity)
	return &Ring{
		buf:  make([]float32, cap),
		mask: uint64(cap - 1),
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Len returns the ring's fixed capacity.
func (r *Ring) Len() int { return len(r.buf) }

// VacantLen returns the number of slots currently free for writing.
func (r *Ring) VacantLen() int {
	w := r.writeIdx.Load()
	rd := r.readIdx.Load() // acquire: observe consumer progress
	return len(r.buf) - int(w-rd)
}

// filledLen returns the number of slots currently holding unread data.
func (r *Ring) filledLen() int {
	w := r.writeIdx.Load() // acquire: observe producer progress
	rd := r.readIdx.Load()
	return int(w - rd)
}

// PushSlice writes as much of data as fits without blocking and returns the
// number of samples written. The producer never blocks: if there is
// insufficient vacant space, it writes only what fits.
func (r *Ring) PushSlice(data []float32) int {
	vacant := r.VacantLen()
	n := len(data)
	if n > vacant {
		n = vacant
	}
	if n == 0 {
		return 0
	}

	w := r.writeIdx.Load()
	for i := 0; i < n; i++ {
		r.buf[(w+uint64(i))&r.mask] = data[i]
	}
	r.writeIdx.Store(w + uint64(n)) // release: publish the new samples
	return n
}

// PopSlice reads up to len(out) samples into out and returns the number
// read. The caller is responsible for zero-filling any unread tail.
func (r *Ring) PopSlice(out []float32) int {
	filled := r.filledLen()
	n := len(out)
	if n > filled {
		n = filled
	}
	if n == 0 {
		return 0
	}

	rd := r.readIdx.Load()
	for i := 0; i < n; i++ {
		out[i] = r.buf[(rd+uint64(i))&r.mask]
	}
	r.readIdx.Store(rd + uint64(n)) // release: publish consumption
	return n
}
