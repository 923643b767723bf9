package solana

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned when the ledger reports no account at an address.
// Transport and RPC failures are returned as other errors.
var ErrAccountNotFound = errors.New("account not found")

// LedgerClient defines the Solana RPC calls the backfill needs.
type LedgerClient interface {
	// GetAccountInfo retrieves an account. Returns ErrAccountNotFound if absent.
	GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error)

	// GetLatestBlockhash returns the most recent blockhash (base58).
	GetLatestBlockhash(ctx context.Context) (string, error)

	// SimulateTransaction dry-runs a base64-encoded signed transaction.
	SimulateTransaction(ctx context.Context, tx string) (*SimulationResult, error)

	// SendTransaction submits a base64-encoded signed transaction and returns its signature.
	SendTransaction(ctx context.Context, tx string) (string, error)
}
