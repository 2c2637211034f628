// Package coordinator owns the command/info channel pair and the shared
// clock between a driver (CLI or remote-control surface) and the audio
// engine, spec.md §4.8. Grounded on original_source/src/rustplay.rs's
// RustPlay struct, narrowed to the non-UI surface: send_cmd, update_meta's
// done-consumption and next-song dispatch, and State::update_meta's value
// bookkeeping. Terminal rendering is out of scope.
package coordinator

import (
	"sync/atomic"

	"github.com/oldplay/oldplay/engine"
	"github.com/oldplay/oldplay/indexer"
	"github.com/oldplay/oldplay/player"
	"github.com/oldplay/oldplay/song"
	"github.com/oldplay/oldplay/value"
)

// Coordinator is the single consumer of an Engine's info channel and the
// single caller of SendCmd; it is not itself safe for concurrent use by
// more than one goroutine (matching the original's single UI-thread owner).
type Coordinator struct {
	eng   *engine.Engine
	clock *atomic.Int64
	idx   *indexer.RemoteIndexer

	playList    song.Collection
	currentSong int

	meta       map[string]value.Value
	lengthMsec int
}

// New wires a Coordinator around an already-constructed Engine and an optional
// warm-list source (nil is fine — track-end then simply stops).
func New(eng *engine.Engine, clock *atomic.Int64, idx *indexer.RemoteIndexer) *Coordinator {
	return &Coordinator{
		eng:   eng,
		clock: clock,
		idx:   idx,
		meta:  map[string]value.Value{},
	}
}

// SendCmd enqueues cmd onto the engine's command channel.
func (c *Coordinator) SendCmd(cmd player.Cmd) { c.eng.SendCmd(cmd) }

// SetPlayList installs the list Next/Prev walk, resetting the current
// position.
func (c *Coordinator) SetPlayList(list song.Collection) {
	c.playList = list
	c.currentSong = -1
}

// ClockMsec returns the shared play-clock, in milliseconds.
func (c *Coordinator) ClockMsec() int64 { return c.clock.Load() }

// LengthMsec returns the current song's duration in milliseconds, or 0 if
// unknown.
func (c *Coordinator) LengthMsec() int { return c.lengthMsec }

// Meta returns the current value of a metadata key, or value.Unknown.
func (c *Coordinator) Meta(key string) value.Value {
	if v, ok := c.meta[key]; ok {
		return v
	}
	return value.Unknown
}

// PlaySong loads fi on the engine and clears stale metadata from the
// previous song, mirroring play_song's state.clear_meta() + load dispatch.
func (c *Coordinator) PlaySong(fi *song.FileInfo) {
	c.meta = map[string]value.Value{}
	for k, v := range fi.MetaData {
		c.meta[k] = v
	}
	c.lengthMsec = 0

	path := fi.Path
	c.SendCmd(func(p *player.Player) error { return p.Load(path) })
}

// Next advances within the current play list, if any.
func (c *Coordinator) Next() {
	if c.playList == nil {
		return
	}
	if c.currentSong+1 < c.playList.Len() {
		c.currentSong++
	}
	if fi := c.playList.Get(c.currentSong); fi != nil {
		c.PlaySong(fi)
	}
}

// Prev retreats within the current play list, if any.
func (c *Coordinator) Prev() {
	if c.playList == nil {
		return
	}
	if c.currentSong > 0 {
		c.currentSong--
	}
	if fi := c.playList.Get(c.currentSong); fi != nil {
		c.PlaySong(fi)
	}
}

// onDone implements the track-end policy: play-list first, then the
// indexer's warm list, then remain stopped.
func (c *Coordinator) onDone() {
	if c.playList != nil && c.currentSong+1 < c.playList.Len() {
		c.Next()
		return
	}
	if c.idx != nil {
		if fi := c.idx.Next(); fi != nil {
			c.PlaySong(fi)
			return
		}
	}
}

// Update non-blockingly drains the engine's info channel, applying
// done/length bookkeeping, and returns every event seen for the UI layer to
// render. Grounded on RustPlay::update_meta.
func (c *Coordinator) Update() []value.MetaEvent {
	var events []value.MetaEvent

	for {
		select {
		case ev, ok := <-c.eng.Info():
			if !ok {
				return events
			}
			events = append(events, ev)
			c.applyMeta(ev)
		default:
			return events
		}
	}
}

func (c *Coordinator) applyMeta(ev value.MetaEvent) {
	switch ev.Key {
	case value.KeyDone:
		c.onDone()
	case value.KeyLength:
		c.lengthMsec = int(ev.Value.Num * 1000)
		c.meta[ev.Key] = ev.Value
	default:
		c.meta[ev.Key] = ev.Value
	}
}
