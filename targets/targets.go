// Package targets holds the finite set of identifiers a table's identifier
// column is matched against.
package targets

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/wikimelt/textnorm"
)

// ErrEmptyTargets is returned when a set would contain no identifiers.
var ErrEmptyTargets = errors.New("target set is empty")

// DefaultNames are the locales the vocabulary dataset is built for.
var DefaultNames = []string{"México", "España", "Puerto Rico", "Guatemala"}

// Set is an immutable collection of canonical identifiers and their folded
// forms. Membership is decided on folded forms only. A Set is safe for
// concurrent use.
type Set struct {
	names     []string
	canonical map[string]string // folded -> canonical
}

// New builds a set from canonical names. Names are cleaned; empty names and
// names folding to an already present identifier are ignored.
func New(names ...string) (*Set, error) {
	s := &Set{canonical: make(map[string]string, len(names))}

	for _, name := range names {
		display := textnorm.Clean(name)
		folded := textnorm.Fold(display)
		if folded == "" {
			continue
		}
		if _, dup := s.canonical[folded]; dup {
			continue
		}
		s.canonical[folded] = display
		s.names = append(s.names, display)
	}

	if len(s.names) == 0 {
		return nil, ErrEmptyTargets
	}
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(names ...string) *Set {
	s, err := New(names...)
	if err != nil {
		panic(err)
	}
	return s
}

// Default returns the set built from DefaultNames.
func Default() *Set {
	return MustNew(DefaultNames...)
}

// Contains reports whether v folds to a member of the set.
func (s *Set) Contains(v string) bool {
	_, ok := s.canonical[textnorm.Fold(v)]
	return ok
}

// ContainsFolded reports whether an already folded string is a member.
func (s *Set) ContainsFolded(folded string) bool {
	_, ok := s.canonical[folded]
	return ok
}

// Canonical returns the canonical spelling of the member v folds to.
func (s *Set) Canonical(v string) (string, bool) {
	name, ok := s.canonical[textnorm.Fold(v)]
	return name, ok
}

// Names returns the canonical names in insertion order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of identifiers.
func (s *Set) Len() int {
	return len(s.names)
}

// File is the YAML targets file.
//
//	targets: [México, España, Puerto Rico, Guatemala]
//	metadata_markers: ["Artículo de Wikipedia"]
type File struct {
	Targets         []string `yaml:"targets"`
	MetadataMarkers []string `yaml:"metadata_markers"`
}

// Load reads a targets file from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading targets file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a targets file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing targets file: %w", err)
	}
	return &f, nil
}

// Set builds the target set the file describes.
func (f *File) Set() (*Set, error) {
	return New(f.Targets...)
}
