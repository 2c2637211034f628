// Package player implements the Player state machine owning the current
// ChipPlayer, play state, and shared clock (spec.md §4.5), grounded on
// original_source/src/player.rs's Player struct and its
// load/next_song/prev_song/set_song/quit/update_meta methods.
package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/bogem/id3v2/v2"
	"github.com/hajimehoshi/go-mp3"

	"github.com/oldplay/oldplay/chipplayer"
	"github.com/oldplay/oldplay/value"
)

// State is one of the four play states.
type State int

const (
	Stopped State = iota
	Playing
	Paused
	Quitting
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Quitting:
		return "Quitting"
	default:
		return "Unknown"
	}
}

// Cmd is a callable enqueued onto the audio engine's command channel. Per
// spec.md §9's design note, a closure over &Player is used instead of an
// enum of command variants.
type Cmd func(p *Player) error

// Player owns the loaded ChipPlayer and the play state machine. It is
// exclusively driven by the audio engine thread.
type Player struct {
	loader chipplayer.Loader
	chip   chipplayer.ChipPlayer

	State State

	Song  int
	Songs int

	ffMsec int

	newSong string // path of a song pending metadata emission; "" if none

	clock *atomic.Int64
}

// New creates a Player using loader to resolve paths to ChipPlayers, and
// clock as the shared millisecond play-clock (advanced by the device
// callback as frames play, reset and fast-forwarded from the engine
// thread; many readers elsewhere).
func New(loader chipplayer.Loader, clock *atomic.Int64) *Player {
	return &Player{loader: loader, clock: clock, State: Stopped}
}

// Reset zeroes the shared clock. Invariant: the clock is zero immediately
// after any load or seek-style command, before the next buffer is produced.
func (p *Player) Reset() {
	p.clock.Store(0)
}

// Chip returns the currently loaded ChipPlayer, or nil if none is loaded.
func (p *Player) Chip() chipplayer.ChipPlayer { return p.chip }

// Load replaces the current ChipPlayer with the one at path, resets the
// clock, and marks newSong so the engine's metadata step picks it up on the
// next iteration.
func (p *Player) Load(path string) error {
	chip, err := p.loader.LoadSong(path)
	if err != nil {
		return err
	}
	p.chip = chip
	p.Song = 0
	p.Songs = 1
	p.State = Playing
	p.newSong = path
	p.Reset()
	return nil
}

// PlayPause toggles between Playing and Paused; Stopped/Quitting are
// unaffected.
func (p *Player) PlayPause() error {
	switch p.State {
	case Playing:
		p.State = Paused
	case Paused:
		p.State = Playing
	}
	return nil
}

// Quit moves the player to Quitting. The engine loop exits on its next
// iteration after observing this.
func (p *Player) Quit() error {
	p.State = Quitting
	return nil
}

// NextSong seeks to the next subsong of the current ChipPlayer, if any.
func (p *Player) NextSong() error {
	if p.chip == nil {
		return fmt.Errorf("no active song")
	}
	if p.Song >= p.Songs-1 {
		return nil
	}
	if err := p.chip.Seek(p.Song+1, 0); err != nil {
		return err
	}
	p.Song++
	p.Reset()
	return nil
}

// PrevSong seeks to the previous subsong of the current ChipPlayer, if any.
func (p *Player) PrevSong() error {
	if p.chip == nil {
		return fmt.Errorf("no active song")
	}
	if p.Song <= 0 {
		return nil
	}
	if err := p.chip.Seek(p.Song-1, 0); err != nil {
		return err
	}
	p.Song--
	p.Reset()
	return nil
}

// SetSong seeks directly to subsong n (1-based, matching rustplay.rs's UI
// surface where song numbers are shown 1-based).
func (p *Player) SetSong(n int) error {
	if p.chip == nil {
		return fmt.Errorf("no active song")
	}
	if err := p.chip.Seek(n-1, 0); err != nil {
		return err
	}
	p.Song = n - 1
	p.Reset()
	return nil
}

// FastForward adds ms to the fast-forward budget; the engine consumes this
// budget by discarding decoded audio instead of pushing it to the ring.
func (p *Player) FastForward(ms int) error {
	p.ffMsec += ms
	return nil
}

// FFMsec returns the remaining fast-forward budget.
func (p *Player) FFMsec() int { return p.ffMsec }

// ConsumeFF decrements the fast-forward budget by ms, clearing it if ms
// overshoots.
func (p *Player) ConsumeFF(ms int) {
	p.ffMsec -= ms
	if p.ffMsec < 0 {
		p.ffMsec = 0
	}
}

// DrainMetadata emits one MetaEvent batch for a newly-loaded song: "new",
// an MP3 probe when applicable, and the ChipPlayer's own changed-meta
// stream with song/startSong/songs/length specially parsed. Grounded on
// player.rs's update_meta.
func (p *Player) DrainMetadata() []value.MetaEvent {
	var events []value.MetaEvent

	if p.newSong != "" {
		path := p.newSong
		p.newSong = ""
		events = append(events, value.Event(value.KeyNew, value.Number(0)))
		p.Song = 0
		p.Songs = 1

		if strings.EqualFold(filepath.Ext(path), ".mp3") {
			events = append(events, probeMP3(path)...)
		}
	}

	if p.chip == nil {
		return events
	}

	for {
		key, ok := p.chip.GetChangedMeta()
		if !ok {
			break
		}
		str, _ := p.chip.GetMetaString(key)

		switch key {
		case value.KeySong, value.KeyStartSong:
			if n, err := strconv.Atoi(str); err == nil {
				p.Song = n
				events = append(events, value.Event(key, value.Number(float64(n))))
			}
		case value.KeySongs:
			if n, err := strconv.Atoi(str); err == nil {
				p.Songs = n
				events = append(events, value.Event(key, value.Number(float64(n))))
			}
		case value.KeyLength:
			if f, err := strconv.ParseFloat(str, 64); err == nil {
				events = append(events, value.Event(key, value.Number(f)))
			}
		default:
			events = append(events, value.Event(key, value.Text(str)))
		}
	}

	return events
}

// probeMP3 decodes enough of the file at path to report its duration and
// reads its ID3 tags, supplementing the spec's dropped MP3 support per
// original_source/src/player.rs::update_meta.
func probeMP3(path string) []value.MetaEvent {
	var events []value.MetaEvent

	if f, err := os.Open(path); err == nil {
		defer f.Close()
		if dec, err := mp3.NewDecoder(f); err == nil {
			lengthSeconds := float64(dec.Length()) / float64(4*dec.SampleRate())
			events = append(events, value.Event(value.KeyLength, value.Number(lengthSeconds)))
		}
	}

	if tag, err := id3v2.Open(path, id3v2.Options{Parse: true}); err == nil {
		defer tag.Close()
		if title := tag.Title(); title != "" {
			events = append(events, value.Event(value.KeyTitle, value.Text(title)))
		}
		if artist := tag.Artist(); artist != "" {
			events = append(events, value.Event(value.KeyComposer, value.Text(artist)))
		}
		if album := tag.Album(); album != "" {
			events = append(events, value.Event(value.KeyAlbum, value.Text(album)))
		}
	}

	return events
}
