// Package song implements FileInfo and the searchable song collection types,
// grounded on rustplay's src/rustplay/song.rs.
package song

import (
	"path/filepath"
	"strings"

	"github.com/oldplay/oldplay/value"
)

// FileInfo describes one indexed or loaded song.
type FileInfo struct {
	Path     string
	MetaData map[string]value.Value
}

// New creates a FileInfo with an empty metadata map.
func New(path string) *FileInfo {
	return &FileInfo{Path: path, MetaData: map[string]value.Value{}}
}

// Get returns the value for key, or value.Unknown if absent.
func (f *FileInfo) Get(key string) value.Value {
	if f.MetaData == nil {
		return value.Unknown
	}
	if v, ok := f.MetaData[key]; ok {
		return v
	}
	return value.Unknown
}

// Set stores v under key.
func (f *FileInfo) Set(key string, v value.Value) {
	if f.MetaData == nil {
		f.MetaData = map[string]value.Value{}
	}
	f.MetaData[key] = v
}

// TitleAndComposer renders "title / composer" when both are known, else
// whichever of the two is present, else an empty string.
func (f *FileInfo) TitleAndComposer() string {
	title := f.Get(value.KeyTitle).Text
	composer := f.Get(value.KeyComposer).Text

	switch {
	case title != "" && composer != "":
		return title + " / " + composer
	case title != "":
		return title
	case composer != "":
		return composer
	default:
		return ""
	}
}

// FullSongName renders "title / composer [ext]" when composer metadata is
// present, falling back to the bare filename otherwise.
func (f *FileInfo) FullSongName() string {
	title := f.Get(value.KeyTitle).Text
	composer := f.Get(value.KeyComposer).Text
	ext := strings.TrimPrefix(filepath.Ext(f.Path), ".")

	if composer != "" {
		if title == "" {
			title = filepath.Base(f.Path)
		}
		return title + " / " + composer + " [" + ext + "]"
	}

	return filepath.Base(f.Path)
}

// Title returns the title metadata, or the filename stem if absent.
func (f *FileInfo) Title() string {
	if t := f.Get(value.KeyTitle).Text; t != "" {
		return t
	}
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Collection is a read-only, indexable list of songs.
type Collection interface {
	Get(i int) *FileInfo
	IndexOf(path string) int
	Len() int
}

// Array is a Collection backed by a plain slice.
type Array struct {
	Songs []*FileInfo
}

func (a *Array) Get(i int) *FileInfo {
	if i < 0 || i >= len(a.Songs) {
		return nil
	}
	return a.Songs[i]
}

func (a *Array) IndexOf(path string) int {
	for i, s := range a.Songs {
		if s.Path == path {
			return i
		}
	}
	return -1
}

func (a *Array) Len() int { return len(a.Songs) }
