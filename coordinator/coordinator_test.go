package coordinator

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oldplay/oldplay/chipplayer"
	"github.com/oldplay/oldplay/engine"
	"github.com/oldplay/oldplay/player"
	"github.com/oldplay/oldplay/song"
	"github.com/oldplay/oldplay/value"
)

// fakeChip emits a fixed number of buffers before signaling end of track,
// mirroring the contract exercised in engine's own tests.
type fakeChip struct {
	framesPerCall  int
	callsRemaining int
	freq           uint32
}

func (f *fakeChip) GetSamples(buf []int16) int {
	if f.callsRemaining <= 0 {
		return 0
	}
	f.callsRemaining--
	n := f.framesPerCall
	for i := 0; i < n*2 && i < len(buf); i++ {
		buf[i] = 1000
	}
	return n
}
func (f *fakeChip) Seek(songIndex int, seconds float64) error { return nil }
func (f *fakeChip) GetFrequency() uint32                      { return f.freq }
func (f *fakeChip) GetChangedMeta() (string, bool)            { return "", false }
func (f *fakeChip) GetMetaString(key string) (string, bool)   { return "", false }

type fakeLoader struct{ chip *fakeChip }

func (l *fakeLoader) CanHandle(path string) bool { return true }
func (l *fakeLoader) LoadSong(path string) (chipplayer.ChipPlayer, error) {
	return l.chip, nil
}
func (l *fakeLoader) IdentifySong(path string) (chipplayer.SongInfo, bool) {
	return chipplayer.SongInfo{}, false
}

func newTestCoordinator(t *testing.T, chip *fakeChip) (*Coordinator, *engine.Engine) {
	t.Helper()
	var clock atomic.Int64
	pl := player.New(&fakeLoader{chip: chip}, &clock)
	cfg := engine.DefaultConfig()
	cfg.BufferFrames = 64
	cfg.RingCapacity = 4096
	eng := engine.New(cfg, pl, &clock)
	return New(eng, &clock, nil), eng
}

func TestSetPlayListAndNext(t *testing.T) {
	c, _ := newTestCoordinator(t, &fakeChip{})
	list := &song.Array{Songs: []*song.FileInfo{
		song.New("/a.mod"),
		song.New("/b.mod"),
	}}
	c.SetPlayList(list)

	c.Next()
	require.Equal(t, 0, c.currentSong)

	c.Next()
	require.Equal(t, 1, c.currentSong)

	// Next past the end stays put.
	c.Next()
	require.Equal(t, 1, c.currentSong, "currentSong should clamp at the last index")
}

func TestPrevClampsAtStart(t *testing.T) {
	c, _ := newTestCoordinator(t, &fakeChip{})
	list := &song.Array{Songs: []*song.FileInfo{
		song.New("/a.mod"),
		song.New("/b.mod"),
	}}
	c.SetPlayList(list)
	c.Next()
	c.Next()

	c.Prev()
	require.Equal(t, 0, c.currentSong)
	c.Prev()
	require.Equal(t, 0, c.currentSong, "currentSong should clamp at 0")
}

func TestPlaySongClearsStaleMeta(t *testing.T) {
	c, _ := newTestCoordinator(t, &fakeChip{})
	c.meta[value.KeyTitle] = value.Text("stale")

	fi := song.New("/music/tune.mod")
	fi.Set(value.KeyComposer, value.Text("Jeroen Tel"))
	c.PlaySong(fi)

	require.Empty(t, c.Meta(value.KeyTitle).Text, "stale title should be cleared")
	require.Equal(t, "Jeroen Tel", c.Meta(value.KeyComposer).Text)
	require.Zero(t, c.LengthMsec(), "a fresh song has no known length yet")
}

func TestUpdateAppliesLengthAndGenericMeta(t *testing.T) {
	c, _ := newTestCoordinator(t, &fakeChip{freq: 44100})

	c.applyMeta(value.Event(value.KeyLength, value.Number(185)))
	require.Equal(t, 185000, c.LengthMsec())

	c.applyMeta(value.Event(value.KeyTitle, value.Text("Second Reality")))
	require.Equal(t, "Second Reality", c.Meta(value.KeyTitle).Text)
}

func TestUpdateDrainsEngineInfoChannel(t *testing.T) {
	chip := &fakeChip{framesPerCall: 32, callsRemaining: 1, freq: 44100}
	c, eng := newTestCoordinator(t, chip)

	eng.Step()

	events := c.Update()
	require.NotEmpty(t, events, "expected at least one event drained from the engine")
}

func TestOnDonePrefersPlayListOverWarmList(t *testing.T) {
	c, _ := newTestCoordinator(t, &fakeChip{})
	list := &song.Array{Songs: []*song.FileInfo{
		song.New("/a.mod"),
		song.New("/b.mod"),
	}}
	c.SetPlayList(list)
	c.Next() // currentSong = 0

	c.onDone()
	require.Equal(t, 1, c.currentSong, "onDone should advance the play list before consulting the warm list")
}

func TestOnDoneStopsWhenNothingLeft(t *testing.T) {
	c, _ := newTestCoordinator(t, &fakeChip{})
	list := &song.Array{Songs: []*song.FileInfo{song.New("/a.mod")}}
	c.SetPlayList(list)
	c.Next()

	// No warm-list indexer wired and the play list is exhausted: onDone
	// should not panic and should leave currentSong unchanged.
	c.onDone()
	require.Equal(t, 0, c.currentSong, "nothing left to play: currentSong stays put")
}
