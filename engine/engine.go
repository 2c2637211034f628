// Package engine implements the audio engine thread (spec.md §4.6): the
// single loop that drains commands, reports state changes, publishes
// metadata, and pulls/resamples/pushes audio into the ring buffer feeding
// the device callback. Grounded on original_source/src/player.rs::run_player
// for the loop's structure, and on the teacher's cmd/modplay/play.go for the
// idiomatic Go shape of a portaudio-stream-owning struct with
// context.Context lifecycle.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/oldplay/oldplay/chipplayer"
	"github.com/oldplay/oldplay/internal/fft"
	"github.com/oldplay/oldplay/internal/resample"
	"github.com/oldplay/oldplay/internal/ring"
	"github.com/oldplay/oldplay/player"
	"github.com/oldplay/oldplay/value"
)

// cmdQueueDepth is the bounded command queue size (spec.md §5: "bounded
// command queue (5 slots). Overflow is fatal (bug)").
const cmdQueueDepth = 5

// Config parameterizes one Engine instance, supplied by the driver from
// parsed CLI flags (spec.md §6).
type Config struct {
	SampleRate   uint32 // device output rate
	BufferFrames int    // stereo frames pulled from the ChipPlayer per iteration
	RingCapacity int    // ring buffer capacity in float32 samples
	MinFreq      uint32
	MaxFreq      uint32
	FFTDivider   int
}

// DefaultConfig matches spec.md's flag defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:   44100,
		BufferFrames: 1024,
		RingCapacity: 8192,
		MinFreq:      15,
		MaxFreq:      4000,
		FFTDivider:   4,
	}
}

// Engine owns the loaded Player, the ring buffer, the resampler, the FFT
// stage, and (once StartAudio is called) the portaudio output stream. Step
// and Run contain no portaudio calls, so the loop's dispatch logic is
// testable without an audio device.
type Engine struct {
	cfg   Config
	pl    *player.Player
	clock *atomic.Int64

	cmdCh  chan player.Cmd
	infoCh chan value.MetaEvent

	ring      *ring.Ring
	resampler *resample.Resampler
	fftStage  *fft.Stage

	lastState     player.State
	haveState     bool
	lastSrcHz     uint32
	sampleScratch []int16
	floatScratch  []float32

	stream *portaudio.Stream
}

// New constructs an Engine around an already-constructed Player and shared
// clock; SendCmd is the only way callers subsequently mutate the Player.
func New(cfg Config, pl *player.Player, clock *atomic.Int64) *Engine {
	return &Engine{
		cfg:           cfg,
		pl:            pl,
		clock:         clock,
		cmdCh:         make(chan player.Cmd, cmdQueueDepth),
		infoCh:        make(chan value.MetaEvent, 64),
		ring:          ring.New(cfg.RingCapacity),
		resampler:     resample.New(cfg.BufferFrames),
		fftStage:      fft.New(cfg.FFTDivider, cfg.MinFreq, cfg.MaxFreq),
		sampleScratch: make([]int16, cfg.BufferFrames*2),
		floatScratch:  make([]float32, cfg.BufferFrames*2),
	}
}

// Info returns the engine's info channel. One sender (the engine), one
// receiver (the coordinator).
func (e *Engine) Info() <-chan value.MetaEvent { return e.infoCh }

// SendCmd enqueues cmd onto the bounded command channel. A full queue means
// the driver is enqueueing commands faster than the engine can drain
// them once per ~10ms tick, which spec.md §5 documents as a bug, not a
// runtime condition to recover from.
func (e *Engine) SendCmd(cmd player.Cmd) {
	select {
	case e.cmdCh <- cmd:
	default:
		panic("engine: command queue overflow")
	}
}

func (e *Engine) emit(key string, v value.Value) {
	select {
	case e.infoCh <- value.Event(key, v):
	default:
		// The info channel has one reader (the coordinator); if it is ever
		// behind by 64 events something upstream is stuck. Drop rather than
		// block the engine thread.
	}
}

// Run drives the engine loop until ctx is cancelled or the player reaches
// Quitting. On Quitting it returns after Step has published "quit"; on
// cancellation of ctx it returns without publishing any event. The loop
// never publishes "fatal_error": StartAudio reports device errors to its
// caller instead.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !e.Step() {
			return
		}
	}
}

// Step runs one loop iteration and returns false once the engine has
// published its terminal event and should stop being called.
func (e *Engine) Step() bool {
	e.drainCommands()

	if e.pl.State == player.Quitting {
		e.emit(value.KeyQuit, value.Number(1))
		return false
	}

	e.reportStateChange()
	e.emitMetadata()

	chip := e.pl.Chip()
	switch {
	case chip == nil:
		time.Sleep(100 * time.Millisecond)

	case e.pl.FFMsec() > 0:
		e.dispatchFastForward(chip)

	case e.ring.VacantLen() > 2*e.cfg.BufferFrames*2 && e.pl.State == player.Playing:
		e.dispatchPlayback(chip)

	default:
		time.Sleep(10 * time.Millisecond)
	}

	return true
}

func (e *Engine) drainCommands() {
	for {
		select {
		case cmd := <-e.cmdCh:
			if err := cmd(e.pl); err != nil {
				e.emit(value.KeyError, value.Error(err))
			}
		default:
			return
		}
	}
}

func (e *Engine) reportStateChange() {
	if e.haveState && e.pl.State == e.lastState {
		return
	}
	e.haveState = true
	e.lastState = e.pl.State
	e.emit(value.KeyState, value.Number(float64(e.pl.State)))
}

func (e *Engine) emitMetadata() {
	for _, ev := range e.pl.DrainMetadata() {
		e.emit(ev.Key, ev.Value)
	}
}

// dispatchFastForward pulls one buffer's worth of samples and discards them,
// still advancing the clock, per spec.md §4.6 step 4.
func (e *Engine) dispatchFastForward(chip chipplayer.ChipPlayer) {
	n := chip.GetSamples(e.sampleScratch)
	if n == 0 {
		e.emit(value.KeyDone, value.Number(0))
		return
	}

	rate := chip.GetFrequency()
	ms := int(float64(n) * 1000 / float64(rate))
	e.clock.Add(int64(ms))
	e.pl.ConsumeFF(ms)
}

// dispatchPlayback pulls one buffer, resamples it to the device rate, pushes
// it to the ring, and runs the FFT stage, per spec.md §4.6 step 4.
func (e *Engine) dispatchPlayback(chip chipplayer.ChipPlayer) {
	n := chip.GetSamples(e.sampleScratch)
	if n == 0 {
		e.emit(value.KeyDone, value.Number(0))
		return
	}

	srcHz := chip.GetFrequency()
	if srcHz != e.lastSrcHz {
		e.resampler.SetFrequencies(srcHz, e.cfg.SampleRate)
		e.lastSrcHz = srcHz
	}

	floats := e.floatScratch[:n*2]
	for i := 0; i < n*2; i++ {
		floats[i] = float32(e.sampleScratch[i]) / 32768
	}

	resampled := e.resampler.Process(floats)
	e.ring.PushSlice(resampled)

	if fftBytes, err := e.fftStage.Run(floats, srcHz); err == nil && len(fftBytes) > 0 {
		e.emit(value.KeyFFT, value.Bytes(fftBytes))
	}
}

// StartAudio opens and starts the portaudio output stream. The callback
// copies from the ring buffer and never allocates or blocks.
func (e *Engine) StartAudio() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("engine: portaudio init: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, float64(e.cfg.SampleRate), e.cfg.BufferFrames, e.audioCallback)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("engine: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("engine: start stream: %w", err)
	}

	e.stream = stream
	return nil
}

// audioCallback is invoked by portaudio on its own thread. It must never
// allocate or block: under-run is signalled as silence. The clock advances
// here, by frames actually popped off the ring, so it tracks time at the
// device's own output rate rather than the rate the chip decoded at.
func (e *Engine) audioCallback(out []float32) {
	n := e.ring.PopSlice(out)
	for i := n; i < len(out); i++ {
		out[i] = 0
	}

	frames := n / 2
	if frames > 0 {
		e.clock.Add(int64(frames) * 1000 / int64(e.cfg.SampleRate))
	}
}

// Close releases the audio device. Safe to call even if StartAudio was never
// called.
func (e *Engine) Close() error {
	if e.stream == nil {
		return nil
	}
	e.stream.Stop()
	err := e.stream.Close()
	portaudio.Terminate()
	e.stream = nil
	return err
}
