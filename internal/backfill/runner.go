// Package backfill creates missing Metaplex metadata accounts for a list of
// mints, one mint at a time.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/blocto/solana-go-sdk/types"

	"solana-metadata-backfill/internal/catalog"
	"solana-metadata-backfill/internal/domain"
	"solana-metadata-backfill/internal/idhash"
	"solana-metadata-backfill/internal/metaplex"
	"solana-metadata-backfill/internal/observability"
	"solana-metadata-backfill/internal/solana"
	"solana-metadata-backfill/internal/storage"
)

// ErrMissingCatalogEntry aborts a run: a mint needing metadata has no name/URI.
var ErrMissingCatalogEntry = errors.New("mint missing from catalog")

// Failure stages recorded on FAILED outcomes.
const (
	StageDerive    = "derive"
	StageQuery     = "query"
	StageBuild     = "build"
	StageBlockhash = "blockhash"
	StageSign      = "sign"
	StageSimulate  = "simulate"
	StageConfirm   = "confirm"
)

// Config holds the fixed values written into every created account and the
// confirmation polling budget.
type Config struct {
	Symbol               string
	SellerFeeBasisPoints uint16
	PollAttempts         int
	PollInterval         time.Duration
}

// DefaultConfig returns symbol SLR, 5% royalty and 6 polls 500ms apart.
func DefaultConfig() Config {
	return Config{
		Symbol:               "SLR",
		SellerFeeBasisPoints: 500,
		PollAttempts:         6,
		PollInterval:         500 * time.Millisecond,
	}
}

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Runner processes mints sequentially against one ledger with one signer.
type Runner struct {
	ledger  solana.LedgerClient
	signer  types.Account
	catalog *catalog.Catalog
	store   storage.OutcomeStore
	metrics *observability.Metrics
	config  Config
	runID   string
	logger  *log.Logger
	now     func() time.Time
	sleep   SleepFunc
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Ledger  solana.LedgerClient
	Signer  types.Account
	Catalog *catalog.Catalog
	Store   storage.OutcomeStore   // optional run journal
	Metrics *observability.Metrics // optional
	Config  Config                 // zero fields fall back to DefaultConfig
	RunID   string                 // optional, derived from signer and start time
	Logger  *log.Logger
	Now     func() time.Time
	Sleep   SleepFunc
}

// NewRunner creates a new backfill runner.
func NewRunner(opts RunnerOptions) *Runner {
	cfg := opts.Config
	def := DefaultConfig()
	if cfg.Symbol == "" {
		cfg.Symbol = def.Symbol
	}
	if cfg.SellerFeeBasisPoints == 0 {
		cfg.SellerFeeBasisPoints = def.SellerFeeBasisPoints
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = def.PollAttempts
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	runID := opts.RunID
	if runID == "" {
		runID = idhash.ComputeRunID(opts.Signer.PublicKey.ToBase58(), "", now().UnixMilli())
	}

	return &Runner{
		ledger:  opts.Ledger,
		signer:  opts.Signer,
		catalog: opts.Catalog,
		store:   opts.Store,
		metrics: opts.Metrics,
		config:  cfg,
		runID:   runID,
		logger:  logger,
		now:     now,
		sleep:   sleep,
	}
}

// RunID identifies this runner's journal rows.
func (r *Runner) RunID() string {
	return r.runID
}

// Summary aggregates the outcomes of one run.
type Summary struct {
	RunID    string
	Outcomes []*domain.Outcome
	Exists   int
	Created  int
	Failed   int
}

func (s *Summary) add(o *domain.Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case domain.OutcomeExists:
		s.Exists++
	case domain.OutcomeCreated:
		s.Created++
	default:
		s.Failed++
	}
}

// Run processes addresses in order. A failure on one mint never stops the
// batch; only a missing catalog entry or context cancellation does, and
// outcomes recorded before that are kept in the returned summary.
func (r *Runner) Run(ctx context.Context, addresses []string) (*Summary, error) {
	summary := &Summary{RunID: r.runID}

	for _, mint := range addresses {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome, err := r.processMint(ctx, mint)
		if err != nil {
			r.logger.Printf("%s aborting batch: %v", mint, err)
			return summary, err
		}

		r.record(ctx, outcome)
		summary.add(outcome)

		if outcome.Status.IsSuccess() {
			r.logger.Printf("%s Okay", mint)
		} else {
			r.logger.Printf("%s Fail", mint)
		}
	}

	return summary, ctx.Err()
}

// processMint returns a non-nil error only for conditions that abort the batch.
func (r *Runner) processMint(ctx context.Context, mint string) (*domain.Outcome, error) {
	outcome := &domain.Outcome{
		OutcomeID: idhash.ComputeOutcomeID(r.runID, mint),
		RunID:     r.runID,
		Mint:      mint,
	}

	metadataAddr, err := metaplex.DeriveMetadataAddress(mint)
	if err != nil {
		r.logger.Printf("%s %v", mint, err)
		return r.fail(outcome, StageDerive, err), nil
	}
	outcome.MetadataAddress = metadataAddr

	info, err := r.ledger.GetAccountInfo(ctx, metadataAddr)
	switch {
	case err == nil:
		r.logExisting(mint, info)
		return r.finish(outcome, domain.OutcomeExists), nil
	case errors.Is(err, solana.ErrAccountNotFound):
		r.logger.Printf("%s probably needs metadata: %v", mint, err)
	default:
		r.logger.Printf("%s metadata lookup failed: %v", mint, err)
		return r.fail(outcome, StageQuery, err), nil
	}

	entry, ok := r.catalog.Lookup(mint)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCatalogEntry, mint)
	}

	return r.create(ctx, outcome, entry), nil
}

func (r *Runner) logExisting(mint string, info *solana.AccountInfo) {
	if info != nil && info.Data != "" {
		if m, err := metaplex.DecodeMetadata(info.Data); err == nil {
			r.logger.Printf("%s has metadata: %q %q", mint, m.Name, m.URI)
			return
		}
	}
	r.logger.Printf("%s has metadata", mint)
}

// create builds, dry-runs, submits and confirms the create-metadata transaction.
func (r *Runner) create(ctx context.Context, outcome *domain.Outcome, entry domain.MintEntry) *domain.Outcome {
	mint := outcome.Mint
	r.logger.Printf("%s creating metadata account: %s", mint, outcome.MetadataAddress)

	ix, err := metaplex.NewCreateMetadataInstruction(metaplex.CreateMetadataParams{
		Metadata:             outcome.MetadataAddress,
		Mint:                 mint,
		Authority:            r.signer.PublicKey,
		Name:                 entry.Name,
		Symbol:               r.config.Symbol,
		URI:                  entry.URI,
		SellerFeeBasisPoints: r.config.SellerFeeBasisPoints,
	})
	if err != nil {
		r.logger.Printf("%s build instruction: %v", mint, err)
		return r.fail(outcome, StageBuild, err)
	}

	blockhash, err := r.ledger.GetLatestBlockhash(ctx)
	if err != nil {
		r.logger.Printf("%s get latest blockhash: %v", mint, err)
		return r.fail(outcome, StageBlockhash, err)
	}

	tx, err := solana.SignTransaction(r.signer, blockhash, ix)
	if err != nil {
		r.logger.Printf("%s sign transaction: %v", mint, err)
		return r.fail(outcome, StageSign, err)
	}

	sim, err := r.ledger.SimulateTransaction(ctx, tx.Encoded)
	if err == nil && sim.Failed() {
		err = &solana.SimulationError{Err: sim.Err, Logs: sim.Logs}
	}
	if err != nil {
		r.logger.Printf("%s %v", mint, err)
		if sim != nil {
			for _, line := range sim.Logs {
				r.logger.Printf("%s   %s", mint, line)
			}
		}
		return r.fail(outcome, StageSimulate, err)
	}

	// Submission errors are logged only: the transaction may still land, so
	// confirmation polling decides the outcome.
	sig, err := r.ledger.SendTransaction(ctx, tx.Encoded)
	if err != nil {
		r.logger.Printf("%s send transaction: %v", mint, err)
		sig = tx.Signature
	} else {
		r.logger.Printf("%s submitted: %s", mint, sig)
	}
	outcome.Signature = &sig

	return r.confirm(ctx, outcome)
}

// confirm polls for the metadata account, waiting before every check.
func (r *Runner) confirm(ctx context.Context, outcome *domain.Outcome) *domain.Outcome {
	var lastErr error

	for attempt := 1; attempt <= r.config.PollAttempts; attempt++ {
		if err := r.sleep(ctx, r.config.PollInterval); err != nil {
			outcome.PollAttempts = attempt - 1
			r.logger.Printf("%s %v", outcome.Mint, err)
			return r.fail(outcome, StageConfirm, err)
		}

		outcome.PollAttempts = attempt
		if _, err := r.ledger.GetAccountInfo(ctx, outcome.MetadataAddress); err != nil {
			lastErr = err
			continue
		}
		return r.finish(outcome, domain.OutcomeCreated)
	}

	r.logger.Printf("%s %v", outcome.Mint, lastErr)
	return r.fail(outcome, StageConfirm, fmt.Errorf("not confirmed after %d attempts: %w", r.config.PollAttempts, lastErr))
}

func (r *Runner) fail(o *domain.Outcome, stage string, err error) *domain.Outcome {
	msg := err.Error()
	o.Stage = stage
	o.Error = &msg
	return r.finish(o, domain.OutcomeFailed)
}

func (r *Runner) finish(o *domain.Outcome, status domain.OutcomeStatus) *domain.Outcome {
	o.Status = status
	o.RecordedAt = r.now().UnixMilli()
	return o
}

// record journals and counts an outcome. Journal failures are logged only.
// The write survives cancellation of ctx so the mint in flight at shutdown
// is still journaled.
func (r *Runner) record(ctx context.Context, o *domain.Outcome) {
	r.metrics.RecordOutcome(o)

	if r.store == nil {
		return
	}
	if err := r.store.Insert(context.WithoutCancel(ctx), o); err != nil {
		r.logger.Printf("%s journal write failed: %v", o.Mint, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
