package trackerchip

import (
	"math"
	"strconv"
)

const (
	retraceNTSCHz = 7159090.5 // Amiga NTSC vertical retrace timing

	periodBase = 13696 // Amiga MOD period value this player treats as pitch 0
	ln2        = 0.693147180559945309417232121458176568

	// s3mC4Pitch is the playerNote value this player uses for S3M's "C-4"
	// reference pitch, chosen to land S3M's octave-shifted note encoding
	// (ParseS3M's note decoding already adds one octave) onto the same
	// playerNote scale that periodToPlayerNote produces for MOD periods.
	s3mC4Pitch = 60
)

// Fine tuning values from Micromod, .12 fixed point, index 0 is -8 fine-tune
// steps (eighths of a semitone) and index 15 is +7, with 8 being unmodified.
var fineTuning = []int{
	4340, 4308, 4277, 4247, 4216, 4186, 4156, 4126,
	4096, 4067, 4037, 4008, 3979, 3951, 3922, 3894,
}

// periodToPlayerNote converts an Amiga MOD period value to the internal
// octave*12+semitone pitch space. Lifted from mod.go (itself a lift from
// libxmp).
func periodToPlayerNote(period int) playerNote {
	if period <= 0 {
		return noNote
	}
	calc := 12.0 * math.Log(float64(periodBase)/float64(period)) / ln2
	return playerNote(math.Floor(calc + 0.5))
}

// playerNoteToPeriod is the inverse of periodToPlayerNote, used by the
// sequencer/mixer to recover an Amiga period for MOD playback rate
// calculations.
func playerNoteToPeriod(pn playerNote) int {
	return int(math.Round(float64(periodBase) / math.Pow(2, float64(pn)/12.0)))
}

// playbackHzForMOD computes the sample playback rate in Hz for a MOD channel
// given its current (possibly portamento-adjusted) period and fine tune.
func playbackHzForMOD(period, fineTune int) float64 {
	tunedPeriod := (period * fineTuning[fineTune]) >> 12
	if tunedPeriod <= 0 {
		return 0
	}
	return retraceNTSCHz / float64(tunedPeriod*2)
}

// playbackHzForS3M computes the sample playback rate in Hz for an S3M
// channel from its pitch and the sample's C4Speed.
func playbackHzForS3M(pn playerNote, c4Speed int) float64 {
	return float64(c4Speed) * math.Pow(2, float64(int(pn)-s3mC4Pitch)/12.0)
}

// noteStr renders a playerNote as e.g. "C-4", or three spaces for noNote.
func noteStr(pn playerNote) string {
	if pn == noNote || pn < 0 {
		return "   "
	}
	notes := []string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}
	n := int(pn)
	octave := n/12 - 1
	return notes[n%12] + strconv.Itoa(octave)
}
