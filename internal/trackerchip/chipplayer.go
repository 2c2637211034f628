package trackerchip

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oldplay/oldplay/chipplayer"
)

// nativeRate is the tracker engine's fixed internal mixing rate; chipplayer
// implementations are allowed to report a rate that differs from the
// device's and rely on the caller resampling (spec.md §4.2).
const nativeRate = 44100

// TrackerChip is a chipplayer.ChipPlayer implementation backed by a parsed
// MOD or S3M Song.
type TrackerChip struct {
	song   *Song
	format string // "MOD" or "S3M", for the format meta key
	seq    *sequencer

	pendingMeta []string
	metaValues  map[string]string
}

var _ chipplayer.ChipPlayer = (*TrackerChip)(nil)

// New wraps a parsed Song as a playable ChipPlayer.
func New(song *Song, format string) *TrackerChip {
	t := &TrackerChip{song: song, format: format}
	t.reset()
	return t
}

func (t *TrackerChip) reset() {
	t.seq = newSequencer(t.song, nativeRate)
	t.metaValues = map[string]string{
		"title":     t.song.Title,
		"format":    t.format,
		"songs":     "1",
		"startSong": "0",
	}
	t.pendingMeta = []string{"title", "format", "songs", "startSong"}
}

// GetSamples implements chipplayer.ChipPlayer.
func (t *TrackerChip) GetSamples(buf []int16) int {
	return t.seq.generate(buf)
}

// Seek implements chipplayer.ChipPlayer. TrackerChip exposes exactly one
// subsong (index 0); any other index is an error.
func (t *TrackerChip) Seek(songIndex int, seconds float64) error {
	if songIndex != 0 {
		return chipplayer.NewError("seek", fmt.Errorf("subsong %d out of range [0,1)", songIndex))
	}
	t.reset()
	if seconds <= 0 {
		return nil
	}

	targetFrames := int(seconds * float64(nativeRate))
	scratch := make([]int16, 4096)
	produced := 0
	for produced < targetFrames {
		n := t.seq.generate(scratch)
		if n == 0 {
			break
		}
		produced += n
	}
	return nil
}

// GetFrequency implements chipplayer.ChipPlayer.
func (t *TrackerChip) GetFrequency() uint32 { return nativeRate }

// GetChangedMeta implements chipplayer.ChipPlayer.
func (t *TrackerChip) GetChangedMeta() (string, bool) {
	if len(t.pendingMeta) == 0 {
		return "", false
	}
	key := t.pendingMeta[0]
	t.pendingMeta = t.pendingMeta[1:]
	return key, true
}

// GetMetaString implements chipplayer.ChipPlayer.
func (t *TrackerChip) GetMetaString(key string) (string, bool) {
	v, ok := t.metaValues[key]
	return v, ok
}

// Loader implements chipplayer.Loader for MOD/S3M files.
type Loader struct{}

var _ chipplayer.Loader = Loader{}

// CanHandle reports whether path has a .mod or .s3m extension.
func (Loader) CanHandle(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mod", ".s3m":
		return true
	default:
		return false
	}
}

// LoadSong reads and parses path, dispatching on extension.
func (Loader) LoadSong(path string) (chipplayer.ChipPlayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, chipplayer.NewError("load_song", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mod":
		song, err := ParseMOD(data)
		if err != nil {
			return nil, chipplayer.NewError("load_song", err)
		}
		return New(song, "MOD"), nil
	case ".s3m":
		song, err := ParseS3M(data)
		if err != nil {
			return nil, chipplayer.NewError("load_song", err)
		}
		return New(song, "S3M"), nil
	default:
		return nil, chipplayer.NewError("load_song", fmt.Errorf("unsupported format %q", path))
	}
}

// IdentifySong returns a best-effort title, derived from the parsed song
// header, without keeping the loaded player around.
func (l Loader) IdentifySong(path string) (chipplayer.SongInfo, bool) {
	player, err := l.LoadSong(path)
	if err != nil {
		return chipplayer.SongInfo{}, false
	}
	t := player.(*TrackerChip)
	if t.song.Title == "" {
		return chipplayer.SongInfo{}, false
	}
	return chipplayer.SongInfo{Title: t.song.Title}, true
}
