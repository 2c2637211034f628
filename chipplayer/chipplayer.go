// Package chipplayer defines the ChipPlayer capability: the polymorphic
// decoder contract the audio engine drives. Only the contract is specified
// here (spec.md §4.4) — concrete codec backends are collaborator
// implementations. internal/trackerchip ships the one concrete
// implementation in this module, a MOD/S3M tracker decoder.
package chipplayer

// SongInfo is a best-effort identification of a song, produced either by a
// ChipPlayer's IdentifySong or by the indexer's own header/path heuristics.
type SongInfo struct {
	Title    string
	Composer string
	Game     string
}

// ChipPlayer is a loaded, playable song. A single ChipPlayer value may
// represent a multi-subsong file (e.g. SID); Seek selects the subsong.
type ChipPlayer interface {
	// GetSamples fills buf with interleaved stereo 16-bit samples and
	// returns the number of stereo frames written. A return of 0 signals
	// the track has reached its end.
	GetSamples(buf []int16) int

	// Seek selects subsong songIndex and seeks to the given offset in
	// seconds from the start of that subsong.
	Seek(songIndex int, seconds float64) error

	// GetFrequency returns the player's native output sample rate. It may
	// change after Load or Seek.
	GetFrequency() uint32

	// GetChangedMeta returns one changed metadata key per call, and ok
	// false once exhausted. The set resets on every song load or seek.
	GetChangedMeta() (key string, ok bool)

	// GetMetaString returns the current string value for key, if any.
	GetMetaString(key string) (string, bool)
}

// Loader loads a path into a playable ChipPlayer and can answer whether a
// path is one it understands, and identify a song without fully loading it.
type Loader interface {
	// CanHandle reports whether this loader recognizes path's format.
	CanHandle(path string) bool

	// LoadSong loads path and returns a ready-to-play ChipPlayer.
	LoadSong(path string) (ChipPlayer, error)

	// IdentifySong returns best-effort metadata for path without fully
	// decoding it, or ok false if it cannot be identified this way.
	IdentifySong(path string) (info SongInfo, ok bool)
}

// Error is a concrete error type surfaced by ChipPlayer implementations,
// standing in for the codec capability's own error domain (musix::MusicError
// in the original).
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err under the named operation.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}
