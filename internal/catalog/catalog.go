// Package catalog holds the mint table: which mints to backfill and the
// name/URI written into each metadata account.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"

	"solana-metadata-backfill/internal/domain"
	"solana-metadata-backfill/internal/metaplex"
)

// ErrInvalidCatalog is returned when a catalog document fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

//go:embed default.yaml
var defaultYAML []byte

// Catalog is an ordered, validated set of mint entries.
type Catalog struct {
	entries []domain.MintEntry
	byMint  map[string]domain.MintEntry
}

type document struct {
	Mints []entryDoc `yaml:"mints"`
}

type entryDoc struct {
	Mint string `yaml:"mint"`
	Name string `yaml:"name"`
	URI  string `yaml:"uri"`
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document and validates every entry.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidCatalog, err)
	}
	if len(doc.Mints) == 0 {
		return nil, fmt.Errorf("%w: no mints", ErrInvalidCatalog)
	}

	entries := make([]domain.MintEntry, 0, len(doc.Mints))
	for _, e := range doc.Mints {
		entries = append(entries, domain.MintEntry{Mint: e.Mint, Name: e.Name, URI: e.URI})
	}
	return New(entries)
}

// New builds a catalog from entries, keeping their order.
func New(entries []domain.MintEntry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]domain.MintEntry, 0, len(entries)),
		byMint:  make(map[string]domain.MintEntry, len(entries)),
	}

	for i, e := range entries {
		if err := ValidateMint(e.Mint); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidCatalog, i, err)
		}
		if e.Name == "" || len(e.Name) > metaplex.MaxNameLength {
			return nil, fmt.Errorf("%w: entry %d (%s): name must be 1-%d bytes", ErrInvalidCatalog, i, e.Mint, metaplex.MaxNameLength)
		}
		if e.URI == "" || len(e.URI) > metaplex.MaxURILength {
			return nil, fmt.Errorf("%w: entry %d (%s): uri must be 1-%d bytes", ErrInvalidCatalog, i, e.Mint, metaplex.MaxURILength)
		}
		if _, dup := c.byMint[e.Mint]; dup {
			return nil, fmt.Errorf("%w: duplicate mint %s", ErrInvalidCatalog, e.Mint)
		}
		c.byMint[e.Mint] = e
		c.entries = append(c.entries, e)
	}

	return c, nil
}

// ValidateMint checks that s is a base58-encoded 32-byte address.
func ValidateMint(s string) error {
	raw, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("mint %q: decode base58: %w", s, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("mint %q: expected 32 bytes, got %d", s, len(raw))
	}
	return nil
}

// Addresses returns the mints in catalog order.
func (c *Catalog) Addresses() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Mint
	}
	return out
}

// Lookup returns the entry for mint.
func (c *Catalog) Lookup(mint string) (domain.MintEntry, bool) {
	e, ok := c.byMint[mint]
	return e, ok
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
