package anim

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teslashibe/go-bbanim/pkg/bones"
)

//go:embed data/*.json
var embeddedAnimations embed.FS

// Parse decodes an .animation.json document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse animation JSON: %w", ErrConfiguration, err)
	}
	return &f, nil
}

// ParseSet decodes a document and builds its animations.
func ParseSet(data []byte, r *bones.Resolver) (*Set, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return NewSet(f, r)
}

// LoadFile loads and builds an animation file from disk.
func LoadFile(path string, r *bones.Resolver) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read animation file: %w", err)
	}

	s, err := ParseSet(data, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// LoadDirectory loads every *.json file in dir, in file name order, and
// merges them into one set.
func LoadDirectory(dir string, r *bones.Resolver) (*Set, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list animation files: %w", err)
	}
	sort.Strings(files)

	sets := make([]*Set, 0, len(files))
	for _, file := range files {
		s, err := LoadFile(file, r)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		sets = append(sets, s)
	}
	return Merge(sets...)
}

// Load loads a file or a directory of files.
func Load(path string, r *bones.Resolver) (*Set, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat animations: %w", err)
	}
	if info.IsDir() {
		return LoadDirectory(path, r)
	}
	return LoadFile(path, r)
}

// LoadEmbedded builds the bundled sample animations.
func LoadEmbedded(r *bones.Resolver) (*Set, error) {
	names, err := ListEmbedded()
	if err != nil {
		return nil, err
	}

	sets := make([]*Set, 0, len(names))
	for _, name := range names {
		data, err := embeddedAnimations.ReadFile("data/" + name)
		if err != nil {
			return nil, fmt.Errorf("embedded animation %q not found: %w", name, err)
		}
		s, err := ParseSet(data, r)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
		sets = append(sets, s)
	}
	return Merge(sets...)
}

// ListEmbedded returns the file names of the bundled animation files.
func ListEmbedded() ([]string, error) {
	entries, err := fs.ReadDir(embeddedAnimations, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded animations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
