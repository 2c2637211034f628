// Package indexer implements the full-text song index, spec.md §4.7.
// Grounded on original_source/src/rustplay/indexer.rs's Indexer/RemoteIndexer:
// a writer side that walks directories and builds documents, and a reader
// side that runs conjunctive searches over title/composer. tantivy's schema
// and query builder map onto github.com/blevesearch/bleve/v2, the closest
// actively maintained Go full-text library (named, not pack-grounded — see
// DESIGN.md).
package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/oldplay/oldplay/chipplayer"
	"github.com/oldplay/oldplay/song"
	"github.com/oldplay/oldplay/value"
)

// warmListCap bounds the "first N songs" list consumable before the index
// has settled, per spec.md §7's supplemented feature.
const warmListCap = 100

// indexDoc is the document shape stored in the bleve index.
type indexDoc struct {
	Title    string `json:"title"`
	Composer string `json:"composer"`
	Path     string `json:"path"`
}

// Indexer owns one in-memory bleve index plus the warm list and result set.
// All access goes through a single mutex (mirroring the Rust original's
// coarse Mutex<Indexer>): mutex hold time is bounded to document
// construction or a short search, never to filesystem I/O.
type Indexer struct {
	mu sync.Mutex

	index  bleve.Index
	result []*song.FileInfo

	songList []*song.FileInfo // warm list, capped at warmListCap

	count   atomic.Int64
	working atomic.Bool
}

// New builds an empty, in-memory index.
func New() (*Indexer, error) {
	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true

	composerField := bleve.NewTextFieldMapping()
	composerField.Store = true

	pathField := bleve.NewTextFieldMapping()
	pathField.Index = false
	pathField.Store = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", titleField)
	docMapping.AddFieldMappingsAt("composer", composerField)
	docMapping.AddFieldMappingsAt("path", pathField)

	mapping := bleve.NewIndexMapping()
	mapping.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("indexer: create index: %w", err)
	}
	return &Indexer{index: idx}, nil
}

// AddWithInfo indexes path using an already-identified SongInfo, matching
// add_with_info's title derivation ("{game} ({title})" when both are
// present, falling back to game-only or the bare filename stem).
func (ix *Indexer) AddWithInfo(path string, info chipplayer.SongInfo) error {
	title := info.Title
	switch {
	case info.Title != "" && info.Game != "":
		title = fmt.Sprintf("%s (%s)", info.Game, info.Title)
	case info.Title == "" && info.Game != "":
		title = info.Game
	case info.Title == "":
		title = fileStem(path)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.index.Index(path, indexDoc{Title: title, Composer: info.Composer, Path: path}); err != nil {
		return fmt.Errorf("indexer: index document: %w", err)
	}
	ix.count.Add(1)

	if len(ix.songList) < warmListCap {
		fi := song.New(path)
		fi.Set(value.KeyTitle, value.Text(info.Title))
		fi.Set(value.KeyComposer, value.Text(info.Composer))
		ix.songList = append(ix.songList, fi)
	}
	return nil
}

// AddPath indexes path using the Modland path heuristic if it matches, and
// otherwise by its filename stem alone.
func (ix *Indexer) AddPath(path string) error {
	if info, ok := parseModlandPath(path); ok {
		return ix.AddWithInfo(path, info)
	}

	title := fileStem(path)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.index.Index(path, indexDoc{Title: title, Path: path}); err != nil {
		return fmt.Errorf("indexer: index document: %w", err)
	}
	ix.count.Add(1)

	if len(ix.songList) < warmListCap {
		ix.songList = append(ix.songList, song.New(path))
	}
	return nil
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IdentifySong probes path for metadata without a full codec load: the SID
// header shortcut first, then falling back to loader.IdentifySong.
func IdentifySong(path string, loader chipplayer.Loader) (chipplayer.SongInfo, bool) {
	if strings.EqualFold(filepath.Ext(path), ".sid") {
		if info, ok := identifySID(path); ok {
			return info, true
		}
	}
	return loader.IdentifySong(path)
}

// identifySID reads bytes 0x16..0x56 of a SID file directly: 0x16..0x36 is
// the title, 0x36..0x56 is the composer, both fixed-width Latin-1 fields.
func identifySID(path string) (chipplayer.SongInfo, bool) {
	f, err := os.Open(path)
	if err != nil {
		return chipplayer.SongInfo{}, false
	}
	defer f.Close()

	buf := make([]byte, 0x60)
	if _, err := f.Read(buf); err != nil {
		return chipplayer.SongInfo{}, false
	}

	return chipplayer.SongInfo{
		Title:    latin1ToString(buf[0x16:0x36]),
		Composer: latin1ToString(buf[0x36:0x56]),
	}, true
}

func latin1ToString(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c == 0 {
			break
		}
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// parseModlandPath applies the Modland ancestor-chain heuristic:
// <format>/<composer>/<file> or <format>/<composer>/<game-or-coop>/<file>,
// with a "coop-" prefix on the innermost directory reformatted as "A + X".
func parseModlandPath(path string) (chipplayer.SongInfo, bool) {
	segs := pathSegments(path) // directory components only, outermost first
	title := fileStem(path)

	l := len(segs)
	if l >= 3 && modlandFormats[segs[l-3]] {
		if strings.HasPrefix(segs[l-1], "coop-") {
			coop := segs[l-1][len("coop-"):]
			return chipplayer.SongInfo{Title: title, Composer: fmt.Sprintf("%s + %s", segs[l-2], coop)}, true
		}
		return chipplayer.SongInfo{Title: title, Game: segs[l-1], Composer: segs[l-2]}, true
	}
	if l >= 2 && modlandFormats[segs[l-2]] {
		return chipplayer.SongInfo{Title: title, Composer: segs[l-1]}, true
	}
	return chipplayer.SongInfo{}, false
}

// pathSegments splits path's directory (excluding the filename) into
// components, outermost first.
func pathSegments(path string) []string {
	dir := filepath.ToSlash(filepath.Clean(filepath.Dir(path)))
	var segs []string
	for _, p := range strings.Split(dir, "/") {
		if p != "" && p != "." {
			segs = append(segs, p)
		}
	}
	return segs
}

// Commit flushes pending index writes and makes them visible to Search.
// bleve's in-memory index applies writes immediately, so this is a no-op
// kept for parity with the writer's batching call sites.
func (ix *Indexer) Commit() error { return nil }

// Search runs a conjunctive multi-field query over title and composer,
// populating the result set (capped at 10,000, ordered by descending
// relevance score).
func (ix *Indexer) Search(q string) error {
	mq := bleve.NewMatchQuery(q)
	mq.Operator = query.MatchQueryOperatorAnd

	req := bleve.NewSearchRequestOptions(mq, 10000, 0, false)
	req.Fields = []string{"title", "composer", "path"}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	res, err := ix.index.Search(req)
	if err != nil {
		return fmt.Errorf("indexer: search: %w", err)
	}

	ix.result = ix.result[:0]
	for _, hit := range res.Hits {
		path, _ := hit.Fields["path"].(string)
		fi := song.New(path)
		if title, ok := hit.Fields["title"].(string); ok {
			fi.Set(value.KeyTitle, value.Text(title))
		}
		if composer, ok := hit.Fields["composer"].(string); ok {
			fi.Set(value.KeyComposer, value.Text(composer))
		}
		ix.result = append(ix.result, fi)
	}
	return nil
}

// GetSongs returns the slice of the current result set in [start, stop),
// clamped to the result length.
func (ix *Indexer) GetSongs(start, stop int) []*song.FileInfo {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	n := len(ix.result)
	if n == 0 || start >= n {
		return nil
	}
	if stop > n {
		stop = n
	}
	out := make([]*song.FileInfo, stop-start)
	copy(out, ix.result[start:stop])
	return out
}

// Next pops the oldest entry off the warm list, or nil once exhausted.
func (ix *Indexer) Next() *song.FileInfo {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ix.songList) == 0 {
		return nil
	}
	fi := ix.songList[0]
	ix.songList = ix.songList[1:]
	return fi
}

// SongLen returns the size of the current result set.
func (ix *Indexer) SongLen() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.result)
}

// IndexCount returns the total number of documents added so far.
func (ix *Indexer) IndexCount() int { return int(ix.count.Load()) }

// Working reports whether a walk is currently in progress.
func (ix *Indexer) Working() bool { return ix.working.Load() }
