package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-metadata-backfill/internal/domain"
	"solana-metadata-backfill/internal/storage"
)

// OutcomeStore implements storage.OutcomeStore using PostgreSQL.
type OutcomeStore struct {
	pool *Pool
}

// NewOutcomeStore creates a new OutcomeStore.
func NewOutcomeStore(pool *Pool) *OutcomeStore {
	return &OutcomeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OutcomeStore = (*OutcomeStore)(nil)

const outcomeColumns = `
	outcome_id, run_id, mint, metadata_address, status, stage,
	signature, error, poll_attempts, recorded_at, created_at
`

// Insert appends an outcome. Returns ErrDuplicateKey if outcome_id exists.
func (s *OutcomeStore) Insert(ctx context.Context, o *domain.Outcome) error {
	if o == nil || o.OutcomeID == "" || o.RunID == "" || o.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO metadata_outcomes (
			outcome_id, run_id, mint, metadata_address, status, stage,
			signature, error, poll_attempts, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		o.OutcomeID,
		o.RunID,
		o.Mint,
		o.MetadataAddress,
		string(o.Status),
		o.Stage,
		o.Signature,
		o.Error,
		o.PollAttempts,
		o.RecordedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert metadata outcome: %w", err)
	}
	return nil
}

// GetByRunID retrieves all outcomes of a run in insertion order.
func (s *OutcomeStore) GetByRunID(ctx context.Context, runID string) ([]*domain.Outcome, error) {
	query := `SELECT` + outcomeColumns + `
		FROM metadata_outcomes
		WHERE run_id = $1
		ORDER BY seq ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes by run: %w", err)
	}
	defer rows.Close()

	var result []*domain.Outcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return result, nil
}

// GetLatestByMint retrieves the most recent outcome for a mint. Returns ErrNotFound if none.
func (s *OutcomeStore) GetLatestByMint(ctx context.Context, mint string) (*domain.Outcome, error) {
	query := `SELECT` + outcomeColumns + `
		FROM metadata_outcomes
		WHERE mint = $1
		ORDER BY seq DESC
		LIMIT 1
	`

	o, err := scanOutcome(s.pool.QueryRow(ctx, query, mint))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest outcome by mint: %w", err)
	}
	return o, nil
}

// scanOutcome scans a single row into Outcome.
func scanOutcome(row pgx.Row) (*domain.Outcome, error) {
	var (
		o      domain.Outcome
		status string
	)

	err := row.Scan(
		&o.OutcomeID,
		&o.RunID,
		&o.Mint,
		&o.MetadataAddress,
		&status,
		&o.Stage,
		&o.Signature,
		&o.Error,
		&o.PollAttempts,
		&o.RecordedAt,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = domain.OutcomeStatus(status)
	return &o, nil
}
