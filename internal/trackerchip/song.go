// Package trackerchip is a MOD/S3M tracker decoder implementing
// chipplayer.ChipPlayer, adapted from the teacher's player.go/mod.go/s3m.go.
//
// The teacher's retrieved snapshot is internally inconsistent: player.go's
// sequencer operates on a raw Song.Patterns []byte buffer and decodeNote's
// bit-twiddling, while mod.go and s3m.go both already parse into a
// song.patterns [][]note representation built around a playerNote/note pair
// that is referenced but never defined anywhere in the retrieved source (no
// note.go was retrieved). Rather than guess the missing file's exact
// contents, this package defines one coherent note-based representation —
// grounded in mod.go/s3m.go's parser *output shape* (note{Sample, Pitch,
// Effect, Param, Volume}, patterns indexed by pattern then row*channels+ch)
// and in player.go's *sequencing logic* (channelTick/sequenceTick's effect
// dispatch, portamento and volume-slide math) — and reimplements both
// parsers against it.
package trackerchip

const (
	rowsPerPattern  = 64
	bytesPerChannel = 4
)

// playerNote is an internal pitch representation: octave*12+semitone,
// relative to periodBase (see periodToPlayerNote). It is not tied to any one
// tracker format's note encoding.
type playerNote int

const noNote playerNote = -1

// note is one cell of a pattern: the parsed instrument/pitch/effect for one
// channel on one row.
type note struct {
	Sample int // 1-based instrument number, 0 = none
	Pitch  playerNote
	Effect byte
	Param  byte
	Volume int // 0-64, or noVolume if the format did not set one on this note
}

const noVolume = 0xFF

// Sample is one instrument's waveform and loop parameters.
type Sample struct {
	Name      string
	Length    int
	FineTune  int // MOD fine tuning index, 0 for S3M (C4Speed used instead)
	C4Speed   int // S3M sample rate at C-4; 0 for MOD samples
	Volume    int
	LoopStart int
	LoopLen   int
	Data      []int8
}

// Song is a parsed tracker module, either MOD or S3M format.
type Song struct {
	Title    string
	Channels int
	Orders   []byte
	Tempo    int // beats per minute
	Speed    int // ticks per row

	Samples  []Sample
	patterns [][]note
}

func initNotePattern(channels int) []note {
	p := make([]note, rowsPerPattern*channels)
	for i := range p {
		p[i] = note{Pitch: noNote, Volume: noVolume}
	}
	return p
}
