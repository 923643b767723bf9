package memory

import (
	"context"
	"sync"

	"solana-metadata-backfill/internal/domain"
	"solana-metadata-backfill/internal/storage"
)

// OutcomeStore is an in-memory implementation of storage.OutcomeStore.
type OutcomeStore struct {
	mu      sync.RWMutex
	ordered []*domain.Outcome
	byID    map[string]struct{}
}

// NewOutcomeStore creates a new in-memory outcome store.
func NewOutcomeStore() *OutcomeStore {
	return &OutcomeStore{
		byID: make(map[string]struct{}),
	}
}

// Insert appends an outcome. Returns ErrDuplicateKey if outcome_id exists.
func (s *OutcomeStore) Insert(_ context.Context, o *domain.Outcome) error {
	if o == nil || o.OutcomeID == "" || o.RunID == "" || o.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[o.OutcomeID]; exists {
		return storage.ErrDuplicateKey
	}

	c := *o
	s.byID[o.OutcomeID] = struct{}{}
	s.ordered = append(s.ordered, &c)
	return nil
}

// GetByRunID retrieves all outcomes of a run in insertion order.
func (s *OutcomeStore) GetByRunID(_ context.Context, runID string) ([]*domain.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Outcome
	for _, o := range s.ordered {
		if o.RunID == runID {
			c := *o
			result = append(result, &c)
		}
	}
	return result, nil
}

// GetLatestByMint retrieves the most recently inserted outcome for a mint.
func (s *OutcomeStore) GetLatestByMint(_ context.Context, mint string) (*domain.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.ordered) - 1; i >= 0; i-- {
		if s.ordered[i].Mint == mint {
			c := *s.ordered[i]
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

var _ storage.OutcomeStore = (*OutcomeStore)(nil)
