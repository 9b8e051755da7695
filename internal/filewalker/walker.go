package filewalker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when the directory to list does not exist.
var ErrNotFound = errors.New("directory not found")

// Walker lists localization files with a given extension in one directory.
type Walker struct {
	ext string
}

// NewWalker creates a Walker matching names ending in ext, case-insensitively.
func NewWalker(ext string) *Walker {
	return &Walker{ext: strings.ToLower(ext)}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Name string
	Path string
}

// Matches reports whether name carries the walker's extension.
func (w *Walker) Matches(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), w.ext)
}

// List returns the matching regular files directly inside dir, sorted by
// name. Subdirectories are not descended into.
func (w *Walker) List(dir string) ([]FileEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("list %s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var entries []FileEntry
	for _, de := range dirEntries {
		if !w.Matches(de.Name()) {
			continue
		}
		if !de.Type().IsRegular() {
			if de.IsDir() {
				continue
			}
			// Symlinks are followed; anything else is skipped.
			info, err := os.Stat(filepath.Join(dir, de.Name()))
			if err != nil || !info.Mode().IsRegular() {
				log.Warn().Str("path", de.Name()).Msg("Skipping non-regular file")
				continue
			}
		}
		entries = append(entries, FileEntry{
			Name: de.Name(),
			Path: filepath.Join(dir, de.Name()),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	log.Debug().Int("count", len(entries)).Str("dir", dir).Str("ext", w.ext).Msg("Discovered files")
	return entries, nil
}
