// Package metaplex derives Token Metadata addresses and builds/decodes the
// metadata program's account and instruction layouts.
package metaplex

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ProgramID is the Metaplex Token Metadata program.
const ProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"

// SeedPrefix is the first seed of every metadata PDA.
const SeedPrefix = "metadata"

const pdaMarker = "ProgramDerivedAddress"

// ErrNoViableBump is returned when every bump seed lands on the curve.
var ErrNoViableBump = errors.New("unable to find a viable program address bump seed")

var programIDBytes = mustDecode(ProgramID)

// DeriveMetadataAddress derives the metadata PDA for a mint.
// Seeds: ["metadata", program_id, mint]
func DeriveMetadataAddress(mint string) (string, error) {
	mintBytes, err := decodeAddress(mint)
	if err != nil {
		return "", err
	}

	seeds := [][]byte{
		[]byte(SeedPrefix),
		programIDBytes,
		mintBytes,
	}

	addr, _, err := FindProgramAddress(seeds, programIDBytes)
	if err != nil {
		return "", fmt.Errorf("derive metadata address for %s: %w", mint, err)
	}
	return base58.Encode(addr), nil
}

// FindProgramAddress searches bump seeds from 255 down and returns the first
// hash of seeds||bump||programID||"ProgramDerivedAddress" that is off the
// ed25519 curve.
func FindProgramAddress(seeds [][]byte, programID []byte) ([]byte, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(programID)
		h.Write([]byte(pdaMarker))
		sum := h.Sum(nil)

		if !isOnCurve(sum) {
			return sum, uint8(bump), nil
		}
	}
	return nil, 0, ErrNoViableBump
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

func decodeAddress(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", s, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("decode address %q: expected 32 bytes, got %d", s, len(raw))
	}
	return raw, nil
}

func mustDecode(s string) []byte {
	raw, err := decodeAddress(s)
	if err != nil {
		panic(err)
	}
	return raw
}
