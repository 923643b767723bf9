package solana

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/types"
)

// LoadKeypair reads a Solana CLI keypair file: a JSON array of 64 bytes
// (32-byte seed followed by the 32-byte public key).
func LoadKeypair(path string) (types.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, fmt.Errorf("read keypair %s: %w", path, err)
	}
	return ParseKeypair(data)
}

// ParseKeypair decodes keypair file contents.
func ParseKeypair(data []byte) (types.Account, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return types.Account{}, fmt.Errorf("decode keypair: %w", err)
	}
	if len(ints) != 64 {
		return types.Account{}, fmt.Errorf("decode keypair: expected 64 bytes, got %d", len(ints))
	}

	raw := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return types.Account{}, fmt.Errorf("decode keypair: byte %d out of range: %d", i, v)
		}
		raw[i] = byte(v)
	}

	account, err := types.AccountFromBytes(raw)
	if err != nil {
		return types.Account{}, fmt.Errorf("decode keypair: %w", err)
	}
	return account, nil
}
