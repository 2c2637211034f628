package indexer

import (
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/oldplay/oldplay/chipplayer"
	"github.com/oldplay/oldplay/song"
)

// nonSongExtensions is the hard-coded blacklist of extensions the walker
// never probes, spec.md §4.7.
var nonSongExtensions = map[string]bool{
	"d71": true, "d81": true, "dfi": true, "d64": true, "1st": true,
	"exe": true, "hvs": true, "txt": true, "faq": true, "md5": true,
}

// commitInterval is the batching window: the walker commits at least this
// often, plus once at the end of every walk.
const commitInterval = time.Second

// RemoteIndexer runs the Indexer's writer side on a dedicated goroutine,
// consuming AddPath requests off a channel so callers never block on
// filesystem I/O. Grounded on RemoteIndexer::run in indexer.rs.
type RemoteIndexer struct {
	ix     *Indexer
	loader chipplayer.Loader
	addCh  chan string
}

// NewRemote starts the background walker goroutine.
func NewRemote(loader chipplayer.Loader) (*RemoteIndexer, error) {
	ix, err := New()
	if err != nil {
		return nil, err
	}
	ri := &RemoteIndexer{ix: ix, loader: loader, addCh: make(chan string, 8)}
	go ri.run()
	return ri, nil
}

// AddPath enqueues root for the background walker. The channel-send error
// case from the original (receiver gone) has no analogue here: the
// goroutine only exits if the process does.
func (ri *RemoteIndexer) AddPath(root string) {
	ri.addCh <- root
}

func (ri *RemoteIndexer) run() {
	for root := range ri.addCh {
		ri.walk(root)
	}
}

func (ri *RemoteIndexer) walk(root string) {
	ri.ix.working.Store(true)
	defer ri.ix.working.Store(false)

	last := time.Now()
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("indexer: walk %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if nonSongExtensions[ext] {
			return nil
		}

		if ri.loader != nil && ri.loader.CanHandle(path) {
			if info, ok := IdentifySong(path, ri.loader); ok {
				if err := ri.ix.AddWithInfo(path, info); err != nil {
					log.Printf("indexer: add %s: %v", path, err)
				}
			} else if err := ri.ix.AddPath(path); err != nil {
				log.Printf("indexer: add %s: %v", path, err)
			}
		}

		if time.Since(last) > commitInterval {
			ri.ix.Commit()
			last = last.Add(commitInterval)
		}
		return nil
	})
	ri.ix.Commit()
}

// Search, GetSongs, Next, IndexCount, SongLen and Working delegate to the
// underlying Indexer under its own mutex.
func (ri *RemoteIndexer) Search(q string) error { return ri.ix.Search(q) }
func (ri *RemoteIndexer) GetSongs(start, stop int) []*song.FileInfo {
	return ri.ix.GetSongs(start, stop)
}
func (ri *RemoteIndexer) Next() *song.FileInfo { return ri.ix.Next() }
func (ri *RemoteIndexer) IndexCount() int      { return ri.ix.IndexCount() }
func (ri *RemoteIndexer) SongLen() int         { return ri.ix.SongLen() }
func (ri *RemoteIndexer) Working() bool        { return ri.ix.Working() }
