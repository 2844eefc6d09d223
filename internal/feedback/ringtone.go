package feedback

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed ringtones.yaml
var builtinRingtones []byte

// Note is one tone of a ringtone.
type Note struct {
	Hz int `yaml:"hz"`
	Ms int `yaml:"ms"`
}

// Ringtone is a named, finite sequence of notes.
type Ringtone struct {
	Name  string `yaml:"name"`
	Notes []Note `yaml:"notes"`
}

// Library is the fixed ordered list of ringtones. Settings store an index
// into it.
type Library struct {
	ringtones []Ringtone
}

type libraryFile struct {
	Ringtones []Ringtone `yaml:"ringtones"`
}

// NewLibrary builds a library from ringtones, validating each one.
func NewLibrary(ringtones ...Ringtone) (*Library, error) {
	if len(ringtones) == 0 {
		return nil, errors.New("ringtone library is empty")
	}
	for i, r := range ringtones {
		if r.Name == "" {
			return nil, fmt.Errorf("ringtone %d: missing name", i)
		}
		if len(r.Notes) == 0 {
			return nil, fmt.Errorf("ringtone %q: no notes", r.Name)
		}
		for j, n := range r.Notes {
			if n.Hz <= 0 || n.Ms <= 0 {
				return nil, fmt.Errorf("ringtone %q note %d: hz and ms must be positive", r.Name, j)
			}
		}
	}
	return &Library{ringtones: append([]Ringtone(nil), ringtones...)}, nil
}

// ParseLibrary decodes a YAML ringtone library.
func ParseLibrary(data []byte) (*Library, error) {
	var f libraryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ringtones: %w", err)
	}
	return NewLibrary(f.Ringtones...)
}

// LoadLibrary reads a ringtone library from path. An empty path returns the
// built-in library.
func LoadLibrary(path string) (*Library, error) {
	if path == "" {
		return DefaultLibrary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ringtones: %w", err)
	}
	return ParseLibrary(data)
}

// DefaultLibrary returns the built-in ringtones.
func DefaultLibrary() *Library {
	lib, err := ParseLibrary(builtinRingtones)
	if err != nil {
		panic("builtin ringtones: " + err.Error())
	}
	return lib
}

// Len returns the number of ringtones.
func (l *Library) Len() int {
	return len(l.ringtones)
}

// At returns the ringtone at index i, wrapping out-of-range indices.
func (l *Library) At(i int) Ringtone {
	n := len(l.ringtones)
	return l.ringtones[((i%n)+n)%n]
}

// Names returns the ringtone names in library order.
func (l *Library) Names() []string {
	names := make([]string, len(l.ringtones))
	for i, r := range l.ringtones {
		names[i] = r.Name
	}
	return names
}

// Duration returns the playing time of one pass, including note gaps.
func (r Ringtone) Duration() int {
	total := 0
	for _, n := range r.Notes {
		total += n.Ms + int(NoteGap.Milliseconds())
	}
	return total
}
