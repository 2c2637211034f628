package trackerchip

import "testing"

func TestSequencerGeneratesAudioUntilEnd(t *testing.T) {
	data := buildMinimalMOD(t)
	song, err := ParseMOD(data)
	if err != nil {
		t.Fatalf("ParseMOD returned error: %v", err)
	}

	tc := New(song, "MOD")
	out := make([]int16, 4096)

	total := 0
	for i := 0; i < 200; i++ {
		n := tc.GetSamples(out)
		total += n
		if n == 0 {
			break
		}
	}
	if total == 0 {
		t.Fatal("expected at least some samples generated before the song ended")
	}
}

func TestGetChangedMetaDrains(t *testing.T) {
	data := buildMinimalMOD(t)
	song, _ := ParseMOD(data)
	tc := New(song, "MOD")

	seen := map[string]bool{}
	for {
		k, ok := tc.GetChangedMeta()
		if !ok {
			break
		}
		seen[k] = true
	}
	for _, want := range []string{"title", "format", "songs", "startSong"} {
		if !seen[want] {
			t.Fatalf("expected metadata key %q to be emitted", want)
		}
	}

	if title, ok := tc.GetMetaString("title"); !ok || title != "test song" {
		t.Fatalf("GetMetaString(title) = (%q, %v), want (%q, true)", title, ok, "test song")
	}
}

func TestSeekResetsAndAdvances(t *testing.T) {
	data := buildMinimalMOD(t)
	song, _ := ParseMOD(data)
	tc := New(song, "MOD")

	if err := tc.Seek(0, 0); err != nil {
		t.Fatalf("Seek returned error: %v", err)
	}
	if err := tc.Seek(1, 0); err == nil {
		t.Fatal("expected an error seeking to an out-of-range subsong")
	}
}

func TestSequencerPatternLoopRepeatsMarkedRows(t *testing.T) {
	song := newTestSongWithPattern(t, 1)
	song.Speed = 1 // one tick advances one row, for a deterministic trace

	pattern := song.patterns[0]
	pattern[0] = note{Pitch: noNote, Volume: noVolume, Effect: effectPatternLoop, Param: 0} // SB0: mark row 0
	pattern[2] = note{Pitch: noNote, Volume: noVolume, Effect: effectPatternLoop, Param: 2} // SB2: loop rows 0-2 twice more

	seq := newSequencer(song, 44100)

	var rows []int
	for i := 0; i < 9; i++ {
		rows = append(rows, seq.rowCounter)
		seq.sequenceTick()
	}

	want := []int{0, 1, 2, 0, 1, 2, 0, 1, 2}
	for i, row := range want {
		if rows[i] != row {
			t.Fatalf("rows = %v, want %v (tick %d)", rows, want, i)
		}
	}
	if seq.rowCounter != 3 {
		t.Fatalf("rowCounter after the loop finishes = %d, want 3", seq.rowCounter)
	}
	if seq.loopCount != 0 {
		t.Fatalf("loopCount after the loop finishes = %d, want 0", seq.loopCount)
	}
}

func TestLoaderCanHandle(t *testing.T) {
	l := Loader{}
	if !l.CanHandle("song.mod") || !l.CanHandle("SONG.S3M") {
		t.Fatal("expected .mod/.s3m to be handled")
	}
	if l.CanHandle("song.xm") {
		t.Fatal("did not expect .xm to be handled")
	}
}
