package storage

import (
	"context"

	"solana-metadata-backfill/internal/domain"
)

// OutcomeStore provides access to the metadata_outcomes run journal.
type OutcomeStore interface {
	// Insert appends an outcome. Returns ErrDuplicateKey if outcome_id exists.
	Insert(ctx context.Context, o *domain.Outcome) error

	// GetByRunID retrieves all outcomes of a run in insertion order.
	GetByRunID(ctx context.Context, runID string) ([]*domain.Outcome, error)

	// GetLatestByMint retrieves the most recent outcome for a mint. Returns ErrNotFound if none.
	GetLatestByMint(ctx context.Context, mint string) (*domain.Outcome, error)
}
