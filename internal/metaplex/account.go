package metaplex

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// KeyMetadataV1 is the account discriminator of a metadata account.
const KeyMetadataV1 = 4

// ErrNotMetadataAccount is returned when data does not hold a metadata record.
var ErrNotMetadataAccount = errors.New("not a metadata account")

// Metadata is the decoded head of a metadata account.
type Metadata struct {
	UpdateAuthority string
	Mint            string
	Name            string
	Symbol          string
	URI             string
}

// DecodeMetadata parses base64 metadata account data.
// Layout: key(1) | update_authority(32) | mint(32) | name | symbol | uri | ...
// Strings are borsh encoded (u32 LE length + bytes) and NUL padded on-chain.
func DecodeMetadata(data string) (*Metadata, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode metadata data: %w", err)
	}
	if len(decoded) < 65 || decoded[0] != KeyMetadataV1 {
		return nil, ErrNotMetadataAccount
	}

	m := &Metadata{
		UpdateAuthority: base58.Encode(decoded[1:33]),
		Mint:            base58.Encode(decoded[33:65]),
	}

	offset := 65
	fields := []struct {
		dst *string
		max int
	}{
		{&m.Name, MaxNameLength},
		{&m.Symbol, MaxSymbolLength},
		{&m.URI, MaxURILength},
	}
	for _, f := range fields {
		s, next, err := readString(decoded, offset, f.max)
		if err != nil {
			return nil, err
		}
		*f.dst = s
		offset = next
	}

	return m, nil
}

// On-chain padded sizes of the metadata strings.
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
)

func readString(buf []byte, offset, max int) (string, int, error) {
	if offset+4 > len(buf) {
		return "", 0, fmt.Errorf("%w: truncated at %d", ErrNotMetadataAccount, offset)
	}
	n := int(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4
	if n > max || offset+n > len(buf) {
		return "", 0, fmt.Errorf("%w: string length %d at %d", ErrNotMetadataAccount, n, offset)
	}
	return strings.TrimRight(string(buf[offset:offset+n]), "\x00"), offset + n, nil
}
