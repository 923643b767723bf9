package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-metadata-backfill/internal/domain"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, 5, c.Len())

	want := []string{
		"2gJPv2yK4MWEaRDfxmFJo7sGBPQBgMrasMfvC8zVSrzr",
		"4zA73hGR393FKdPTHcwpTXQW1wYXy7qWrNW1w4SibQUg",
		"5TGsXTng16ic9mJrY6QA6t7uqf4X4iwkiHMUbcuJKWay",
		"AdD27SLKumVDF5KwAFZk216T1yaUZTTUqNeTJybThxT5",
		"DFfFTGsrMg99nQ3mSiDBrUVsvZ1pqR7nK55kNQpWaZYK",
	}
	assert.Equal(t, want, c.Addresses())

	e, ok := c.Lookup("AdD27SLKumVDF5KwAFZk216T1yaUZTTUqNeTJybThxT5")
	require.True(t, ok)
	assert.Equal(t, "K-19 the Prized", e.Name)
	assert.Equal(t, "https://arweave.net/VVBYgw_0jNDeqCltpIvQEiOnicdfxDw3iRGoyjrIjdM", e.URI)
}

func TestLookup_Missing(t *testing.T) {
	_, ok := Default().Lookup("So11111111111111111111111111111111111111112")
	assert.False(t, ok)
}

func TestParse_Valid(t *testing.T) {
	doc := []byte(`
mints:
  - mint: So11111111111111111111111111111111111111112
    name: Wrapped
    uri: https://example.com/wsol.json
`)
	c, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"So11111111111111111111111111111111111111112"}, c.Addresses())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", `mints: []`},
		{"not yaml", `mints: [`},
		{"bad base58", "mints:\n  - mint: not-base58-0OIl\n    name: a\n    uri: b\n"},
		{"short address", "mints:\n  - mint: 1111\n    name: a\n    uri: b\n"},
		{"missing name", "mints:\n  - mint: So11111111111111111111111111111111111111112\n    uri: b\n"},
		{"name too long", "mints:\n  - mint: So11111111111111111111111111111111111111112\n    name: 123456789012345678901234567890123\n    uri: b\n"},
		{"missing uri", "mints:\n  - mint: So11111111111111111111111111111111111111112\n    name: a\n"},
		{
			"duplicate",
			"mints:\n  - mint: So11111111111111111111111111111111111111112\n    name: a\n    uri: b\n" +
				"  - mint: So11111111111111111111111111111111111111112\n    name: c\n    uri: d\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestNew_KeepsOrder(t *testing.T) {
	entries := []domain.MintEntry{
		{Mint: "DFfFTGsrMg99nQ3mSiDBrUVsvZ1pqR7nK55kNQpWaZYK", Name: "b", URI: "u"},
		{Mint: "2gJPv2yK4MWEaRDfxmFJo7sGBPQBgMrasMfvC8zVSrzr", Name: "a", URI: "u"},
	}
	c, err := New(entries)
	require.NoError(t, err)
	assert.Equal(t, []string{entries[0].Mint, entries[1].Mint}, c.Addresses())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mints.yaml")
	require.NoError(t, os.WriteFile(path, defaultYAML, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
