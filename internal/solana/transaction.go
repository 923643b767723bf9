package solana

import (
	"encoding/base64"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
)

// SignedTransaction is a wire-ready transaction and its fee payer signature.
type SignedTransaction struct {
	Signature string // base58, identical to what sendTransaction returns
	Encoded   string // base64 wire format
}

// SignTransaction builds a legacy message paid by signer over blockhash and
// signs it.
func SignTransaction(signer types.Account, blockhash string, instructions ...types.Instruction) (*SignedTransaction, error) {
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{signer},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        signer.PublicKey,
			RecentBlockhash: blockhash,
			Instructions:    instructions,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("new transaction: %w", err)
	}

	raw, err := tx.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}
	if len(tx.Signatures) == 0 {
		return nil, fmt.Errorf("serialize transaction: no signatures")
	}

	return &SignedTransaction{
		Signature: base58.Encode(tx.Signatures[0]),
		Encoded:   base64.StdEncoding.EncodeToString(raw),
	}, nil
}
