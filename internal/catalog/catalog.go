// Package catalog holds the static model reference table used to pre-fill
// and check the purchase form. A Catalog is built once at startup and never
// mutated afterwards, so it is safe to share.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

//go:embed catalog.yaml
var builtinYAML []byte

// Catalog load errors.
var (
	ErrEmpty          = errors.New("catalog has no models")
	ErrModelEmpty     = errors.New("catalog model name must not be empty")
	ErrBrandEmpty     = errors.New("catalog brand must not be empty")
	ErrDuplicateModel = errors.New("duplicate catalog model")
	ErrNegativePrice  = errors.New("catalog price must not be negative")
)

// file is the on-disk layout of a catalog document.
type file struct {
	Models []types.CatalogEntry `yaml:"models"`
}

// Catalog maps model names to their reference metadata.
type Catalog struct {
	entries []types.CatalogEntry
	index   map[string]int
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(builtinYAML))
}

// LoadFile reads a catalog document from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load parses a YAML catalog document. Model names are trimmed; entries keep
// their document order.
func Load(r io.Reader) (*Catalog, error) {
	var doc file
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Models)
}

// New builds a Catalog from entries, rejecting empty names, empty brands,
// negative prices and duplicate models.
func New(entries []types.CatalogEntry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}

	c := &Catalog{
		entries: make([]types.CatalogEntry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		e.Model = strings.TrimSpace(e.Model)
		e.Brand = strings.TrimSpace(e.Brand)
		switch {
		case e.Model == "":
			return nil, fmt.Errorf("entry %d: %w", i, ErrModelEmpty)
		case e.Brand == "":
			return nil, fmt.Errorf("%q: %w", e.Model, ErrBrandEmpty)
		case e.Price < 0:
			return nil, fmt.Errorf("%q: %w", e.Model, ErrNegativePrice)
		}
		if _, dup := c.index[e.Model]; dup {
			return nil, fmt.Errorf("%q: %w", e.Model, ErrDuplicateModel)
		}
		c.index[e.Model] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Lookup returns the entry for model. Absence is reported by ok, not an error.
func (c *Catalog) Lookup(model string) (types.CatalogEntry, bool) {
	i, ok := c.index[model]
	if !ok {
		return types.CatalogEntry{}, false
	}
	return c.entries[i], true
}

// Models returns model names in catalog order.
func (c *Catalog) Models() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Model
	}
	return names
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []types.CatalogEntry {
	out := make([]types.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of models.
func (c *Catalog) Len() int {
	return len(c.entries)
}
