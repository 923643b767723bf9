package metaplex

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
)

// CreateMetadataParams carries everything the create-metadata instruction
// writes. Authority pays, holds the mint authority, becomes update authority
// and is the sole verified creator.
type CreateMetadataParams struct {
	Metadata             string
	Mint                 string
	Authority            common.PublicKey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
}

// NewCreateMetadataInstruction builds a CreateMetadataAccountV3 instruction
// with update-authority-is-signer and is-mutable both set.
func NewCreateMetadataInstruction(p CreateMetadataParams) (types.Instruction, error) {
	metadata, err := decodeAddress(p.Metadata)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("metadata: %w", err)
	}
	mint, err := decodeAddress(p.Mint)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("mint: %w", err)
	}

	return token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                common.PublicKeyFromBytes(metadata),
		Mint:                    common.PublicKeyFromBytes(mint),
		MintAuthority:           p.Authority,
		Payer:                   p.Authority,
		UpdateAuthority:         p.Authority,
		UpdateAuthorityIsSigner: true,
		IsMutable:               true,
		Data: token_metadata.DataV2{
			Name:                 p.Name,
			Symbol:               p.Symbol,
			Uri:                  p.URI,
			SellerFeeBasisPoints: p.SellerFeeBasisPoints,
			Creators: &[]token_metadata.Creator{
				{
					Address:  p.Authority,
					Verified: true,
					Share:    100,
				},
			},
		},
	}), nil
}
