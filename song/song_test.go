package song

import (
	"testing"

	"github.com/oldplay/oldplay/value"
)

func TestTitleAndComposer(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		composer string
		want     string
	}{
		{"both", "Delta", "4-Mat", "Delta / 4-Mat"},
		{"title only", "Delta", "", "Delta"},
		{"composer only", "", "4-Mat", "4-Mat"},
		{"neither", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fi := New("/music/delta.mod")
			if tt.title != "" {
				fi.Set(value.KeyTitle, value.Text(tt.title))
			}
			if tt.composer != "" {
				fi.Set(value.KeyComposer, value.Text(tt.composer))
			}
			if got := fi.TitleAndComposer(); got != tt.want {
				t.Fatalf("TitleAndComposer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFullSongNameFallsBackToFilename(t *testing.T) {
	fi := New("/music/unknown/song.mod")
	if got := fi.FullSongName(); got != "song.mod" {
		t.Fatalf("FullSongName() = %q, want %q", got, "song.mod")
	}
}

func TestFullSongNameWithComposer(t *testing.T) {
	fi := New("/music/delta.mod")
	fi.Set(value.KeyTitle, value.Text("Delta"))
	fi.Set(value.KeyComposer, value.Text("4-Mat"))
	want := "Delta / 4-Mat [mod]"
	if got := fi.FullSongName(); got != want {
		t.Fatalf("FullSongName() = %q, want %q", got, want)
	}
}

func TestTitleFallsBackToStem(t *testing.T) {
	fi := New("/music/delta.mod")
	if got := fi.Title(); got != "delta" {
		t.Fatalf("Title() = %q, want %q", got, "delta")
	}
}

func TestArray(t *testing.T) {
	a := &Array{Songs: []*FileInfo{New("/a.mod"), New("/b.mod")}}
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	if a.IndexOf("/b.mod") != 1 {
		t.Fatalf("IndexOf(/b.mod) = %d, want 1", a.IndexOf("/b.mod"))
	}
	if a.IndexOf("/missing.mod") != -1 {
		t.Fatal("IndexOf should return -1 for missing path")
	}
	if a.Get(5) != nil {
		t.Fatal("Get out of range should return nil")
	}
}
