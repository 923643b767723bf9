package domain

// OutcomeStatus describes how a mint ended up after a batch pass.
type OutcomeStatus string

const (
	// OutcomeExists means the metadata account was already on-chain.
	OutcomeExists OutcomeStatus = "EXISTS"
	// OutcomeCreated means the account appeared after submission.
	OutcomeCreated OutcomeStatus = "CREATED"
	// OutcomeFailed covers query, signing, simulation and confirmation failures.
	OutcomeFailed OutcomeStatus = "FAILED"
)

// IsSuccess reports whether the mint has a metadata account after the pass.
func (s OutcomeStatus) IsSuccess() bool {
	return s == OutcomeExists || s == OutcomeCreated
}

// Outcome is the per-mint result of a batch run.
// Corresponds to metadata_outcomes table in PostgreSQL.
type Outcome struct {
	OutcomeID       string        // PRIMARY KEY, SHA256(run_id|mint)
	RunID           string        // batch run identifier
	Mint            string        // token mint address
	MetadataAddress string        // derived metadata PDA
	Status          OutcomeStatus // EXISTS | CREATED | FAILED
	Stage           string        // stage that produced a failure (empty on success)
	Signature       *string       // submitted transaction signature (nullable)
	Error           *string       // last error message (nullable)
	PollAttempts    int           // confirmation checks performed
	RecordedAt      int64         // Unix timestamp in milliseconds
	CreatedAt       int64         // record creation timestamp (ms)
}
