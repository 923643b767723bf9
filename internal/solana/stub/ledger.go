// Package stub provides an in-memory solana.LedgerClient for tests.
package stub

import (
	"context"
	"fmt"
	"sync"

	"solana-metadata-backfill/internal/solana"
)

// Call records one ledger invocation.
type Call struct {
	Method string
	Arg    string
}

// Ledger implements solana.LedgerClient from scripted state.
type Ledger struct {
	mu sync.Mutex

	Accounts    map[string]*solana.AccountInfo
	QueryErrors map[string]error // returned for an address instead of a lookup

	Blockhash    string
	BlockhashErr error

	SimulateResult *solana.SimulationResult
	SimulateErr    error

	SendErr error

	// pending addresses become accounts on successive SendTransaction calls.
	pending []string
	calls   []Call
	sent    int
}

// NewLedger creates an empty ledger with a fixed blockhash.
func NewLedger() *Ledger {
	return &Ledger{
		Accounts:       make(map[string]*solana.AccountInfo),
		QueryErrors:    make(map[string]error),
		Blockhash:      "11111111111111111111111111111111",
		SimulateResult: &solana.SimulationResult{},
	}
}

// AddAccount makes address exist.
func (l *Ledger) AddAccount(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Accounts[address] = &solana.AccountInfo{Lamports: 5616720, Owner: "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"}
}

// CreateOnSend queues address to be created by the next successful send.
func (l *Ledger) CreateOnSend(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, address)
}

// GetAccountInfo returns the scripted account, error or ErrAccountNotFound.
func (l *Ledger) GetAccountInfo(_ context.Context, address string) (*solana.AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, Call{Method: "getAccountInfo", Arg: address})

	if err, ok := l.QueryErrors[address]; ok {
		return nil, err
	}
	info, ok := l.Accounts[address]
	if !ok {
		return nil, solana.ErrAccountNotFound
	}
	infoCopy := *info
	return &infoCopy, nil
}

// GetLatestBlockhash returns Blockhash or BlockhashErr.
func (l *Ledger) GetLatestBlockhash(_ context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, Call{Method: "getLatestBlockhash"})

	if l.BlockhashErr != nil {
		return "", l.BlockhashErr
	}
	return l.Blockhash, nil
}

// SimulateTransaction returns SimulateResult or SimulateErr.
func (l *Ledger) SimulateTransaction(_ context.Context, tx string) (*solana.SimulationResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, Call{Method: "simulateTransaction", Arg: tx})

	if l.SimulateErr != nil {
		return nil, l.SimulateErr
	}
	return l.SimulateResult, nil
}

// SendTransaction creates the next pending account unless SendErr is set.
func (l *Ledger) SendTransaction(_ context.Context, tx string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, Call{Method: "sendTransaction", Arg: tx})

	if l.SendErr != nil {
		return "", l.SendErr
	}

	l.sent++
	if len(l.pending) > 0 {
		addr := l.pending[0]
		l.pending = l.pending[1:]
		l.Accounts[addr] = &solana.AccountInfo{Lamports: 5616720, Owner: "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"}
	}
	return fmt.Sprintf("stub-signature-%d", l.sent), nil
}

// Calls returns a copy of all recorded calls in order.
func (l *Ledger) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Call, len(l.calls))
	copy(out, l.calls)
	return out
}

// Count returns how many times method was called, optionally for one argument.
func (l *Ledger) Count(method string, arg ...string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if c.Method != method {
			continue
		}
		if len(arg) > 0 && c.Arg != arg[0] {
			continue
		}
		n++
	}
	return n
}

var _ solana.LedgerClient = (*Ledger)(nil)
