package trackerchip

import (
	"testing"

	clone "github.com/huandu/go-clone/generic"
)

const testSampleLength = 8

// testSong is a package-level fixture cloned by newTestSongWithPattern so
// tests can mutate Channels/patterns per case without one test's edits
// bleeding into another's.
var testSong = Song{
	Title:  "testsong",
	Tempo:  125,
	Speed:  6,
	Orders: []byte{0},
	Samples: []Sample{
		{Name: "testins1", Volume: 60, Length: testSampleLength, Data: make([]int8, testSampleLength)},
	},
}

// newTestSongWithPattern clones testSong and installs a single pattern of
// channels silent rows, mirroring the teacher's newPlayerWithTestPattern.
func newTestSongWithPattern(t *testing.T, channels int) *Song {
	t.Helper()
	song := clone.Clone(testSong)
	song.Channels = channels
	song.patterns = [][]note{initNotePattern(channels)}
	return &song
}

func TestNewTestSongWithPatternClonesIndependently(t *testing.T) {
	a := newTestSongWithPattern(t, 4)
	b := newTestSongWithPattern(t, 8)

	a.patterns[0][0].Sample = 1

	if b.Channels != 8 {
		t.Fatalf("b.Channels = %d, want 8 (unaffected by a's mutation)", b.Channels)
	}
	if b.patterns[0][0].Sample != 0 {
		t.Fatal("expected b's pattern to be independent of a's pattern mutation")
	}
	if testSong.patterns != nil {
		t.Fatal("expected the shared fixture itself to remain unpatterned")
	}
}

func TestGetSamplesOnClonedFixtureProducesAudio(t *testing.T) {
	song := newTestSongWithPattern(t, 4)
	tc := New(song, "MOD")

	out := make([]int16, 512)
	total := 0
	for i := 0; i < 50; i++ {
		n := tc.GetSamples(out)
		total += n
		if n == 0 {
			break
		}
	}
	if total == 0 {
		t.Fatal("expected the cloned fixture to generate some audio before ending")
	}
}
