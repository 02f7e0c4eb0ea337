package fixtures

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const Extension = ".json"

// Store reads fixtures straight from a directory. Nothing is cached, so edits
// made between two calls are always visible.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// List returns the paths of the fixture files in the directory, sorted by
// name. Subdirectories are not descended into.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list fixtures in %s", s.dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		files = append(files, filepath.Join(s.dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}

// Load reads and parses a single fixture file. Any failure, including a file
// caught half-written by an editor, is returned as a *ParseError.
func (s *Store) Load(file string) (*Fixture, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &ParseError{File: file, Err: errors.Wrap(err, "read fixture")}
	}
	return Parse(file, data)
}
