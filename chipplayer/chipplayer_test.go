package chipplayer

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := NewError("load_song", errors.New("bad header"))
	want := "load_song: bad header"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, err.Err) {
		t.Fatal("Unwrap should expose the wrapped error")
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := NewError("seek", nil)
	if err.Error() != "seek" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "seek")
	}
}
