package indexer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oldplay/oldplay/chipplayer"
)

func TestParseModlandPathThreeLevel(t *testing.T) {
	path := filepath.Join("/music/MODLAND", "Fasttracker 2", "Purple Motion", "sil forever.xm")
	info, ok := parseModlandPath(path)
	require.True(t, ok, "expected the Fasttracker 2 path to match the Modland heuristic")
	require.Equal(t, "Purple Motion", info.Composer)
	require.Equal(t, "sil forever", info.Title)
}

func TestParseModlandPathCoopPrefix(t *testing.T) {
	path := filepath.Join("/music/MODLAND", "Protracker", "Groupname", "coop-Sidekick", "tune.mod")
	info, ok := parseModlandPath(path)
	require.True(t, ok, "expected the coop- path to match the Modland heuristic")
	require.Equal(t, "Groupname + Sidekick", info.Composer)
}

func TestParseModlandPathGameDirectory(t *testing.T) {
	path := filepath.Join("/music/MODLAND", "Protracker", "Composer Name", "Some Game", "tune.mod")
	info, ok := parseModlandPath(path)
	require.True(t, ok, "expected the game-directory path to match the Modland heuristic")
	require.Equal(t, "Composer Name", info.Composer)
	require.Equal(t, "Some Game", info.Game)
}

func TestParseModlandPathNoMatch(t *testing.T) {
	_, ok := parseModlandPath("/random/nested/path/tune.mod")
	require.False(t, ok, "did not expect an unrecognized path to match")
}

func TestIdentifySIDHeaderShortcut(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tune.sid")

	buf := make([]byte, 0x60)
	copy(buf[0x16:], []byte("Ark Pandora"))
	copy(buf[0x36:], []byte("Jeroen Tel"))
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	info, ok := identifySID(path)
	require.True(t, ok, "expected identifySID to succeed")
	require.Equal(t, "Ark Pandora", info.Title)
	require.Equal(t, "Jeroen Tel", info.Composer)
}

// fakeLoader recognizes only .mod paths, mirroring trackerchip.Loader's
// extension gate closely enough to exercise the walker's CanHandle check
// without decoding anything real.
type fakeLoader struct{}

func (fakeLoader) CanHandle(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mod")
}
func (fakeLoader) LoadSong(path string) (chipplayer.ChipPlayer, error) {
	return nil, chipplayer.NewError("load_song", os.ErrNotExist)
}
func (fakeLoader) IdentifySong(path string) (chipplayer.SongInfo, bool) {
	return chipplayer.SongInfo{}, false
}

func TestAddWithInfoAndSearch(t *testing.T) {
	ix, err := New()
	require.NoError(t, err)

	require.NoError(t, ix.AddWithInfo("/music/C64/Ark_Pandora.sid", chipplayer.SongInfo{Title: "Ark Pandora", Composer: "Jeroen Tel"}))
	require.NoError(t, ix.Commit())

	require.NoError(t, ix.Search("pandora"))
	require.Equal(t, 1, ix.SongLen())

	path := filepath.Join("/home/sasq/Music/MODLAND", "Fasttracker 2", "Purple Motion", "sil forever.xm")
	require.NoError(t, ix.AddPath(path))
	require.NoError(t, ix.Commit())

	require.NoError(t, ix.Search("purple motion"))
	require.Equal(t, 1, ix.SongLen(), "after Purple Motion search")

	songs := ix.GetSongs(0, 10)
	require.Len(t, songs, 1)
	require.Equal(t, "Purple Motion", songs[0].Get("composer").Text)

	require.NoError(t, ix.Search("xywizoqp"))
	require.Zero(t, ix.SongLen(), "a nonsense query should match nothing")
}

func TestWarmListNext(t *testing.T) {
	ix, err := New()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, ix.AddPath(filepath.Join("/music", "song.mod")))
	}
	require.Equal(t, 3, ix.IndexCount())

	var got int
	for ix.Next() != nil {
		got++
	}
	require.Equal(t, 3, got, "drained warm-list entries")
	require.Nil(t, ix.Next(), "expected Next() to return nil once the warm list is empty")
}

func TestRemoteIndexerWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("skip me"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.mod"), []byte("tune"), 0o644))

	ri, err := NewRemote(fakeLoader{})
	require.NoError(t, err)
	ri.walk(dir)

	require.Equal(t, 1, ri.IndexCount(), "only b.mod should be indexed")
}
