package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Seed is the initial content of a Store.
type Seed struct {
	Directors []Director `json:"directors" yaml:"directors"`
	Movies    []Movie    `json:"movies" yaml:"movies"`
}

// DefaultSeed returns the built-in catalog: three directors with two movies
// each.
func DefaultSeed() Seed {
	return Seed{
		Directors: []Director{
			{ID: 1, Name: "Christopher Nolan"},
			{ID: 2, Name: "Quentin Tarantino"},
			{ID: 3, Name: "Hayao Miyazaki"},
		},
		Movies: []Movie{
			{ID: 1, Name: "Inception", DirectorID: 1},
			{ID: 2, Name: "The Dark Knight", DirectorID: 1},
			{ID: 3, Name: "Pulp Fiction", DirectorID: 2},
			{ID: 4, Name: "Kill Bill: Vol. 1", DirectorID: 2},
			{ID: 5, Name: "Spirited Away", DirectorID: 3},
			{ID: 6, Name: "My Neighbor Totoro", DirectorID: 3},
		},
	}
}

// LoadSeed reads a seed file. The format follows the extension: .json is
// JSON, .yaml and .yml are YAML.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return DecodeSeedJSON(data)
	case ".yaml", ".yml":
		return DecodeSeedYAML(data)
	default:
		return Seed{}, fmt.Errorf("%w: unsupported seed file extension %q", ErrInvalidSeed, ext)
	}
}

// DecodeSeedJSON decodes and validates a JSON seed. Unknown fields are
// rejected.
func DecodeSeedJSON(data []byte) (Seed, error) {
	var seed Seed
	dec := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if err := seed.Validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

// DecodeSeedYAML decodes and validates a YAML seed. Unknown fields are
// rejected.
func DecodeSeedYAML(data []byte) (Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if err := seed.Validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

// Validate rejects non-positive and duplicate ids. Dangling director
// references are allowed.
func (s Seed) Validate() error {
	seen := make(map[int]bool, len(s.Directors))
	for _, d := range s.Directors {
		if d.ID <= 0 {
			return fmt.Errorf("%w: director %q has non-positive id %d", ErrInvalidSeed, d.Name, d.ID)
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate director id %d", ErrInvalidSeed, d.ID)
		}
		seen[d.ID] = true
	}
	clear(seen)
	for _, m := range s.Movies {
		if m.ID <= 0 {
			return fmt.Errorf("%w: movie %q has non-positive id %d", ErrInvalidSeed, m.Name, m.ID)
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate movie id %d", ErrInvalidSeed, m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}
