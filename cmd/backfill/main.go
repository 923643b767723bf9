package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-metadata-backfill/internal/backfill"
	"solana-metadata-backfill/internal/catalog"
	"solana-metadata-backfill/internal/idhash"
	"solana-metadata-backfill/internal/observability"
	"solana-metadata-backfill/internal/solana"
	"solana-metadata-backfill/internal/storage"
	"solana-metadata-backfill/internal/storage/memory"
	"solana-metadata-backfill/internal/storage/migrations"
	pgstore "solana-metadata-backfill/internal/storage/postgres"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const defaultRPC = "https://api.mainnet-beta.solana.com"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type options struct {
	rpc         string
	commitment  string
	signer      string
	catalogPath string
	only        []string
	postgresDSN string
	pushgateway string
	strict      bool
	version     bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		os.Exit(exitUsage)
	}

	if opts.version {
		fmt.Println("backfill", version)
		os.Exit(exitOK)
	}

	logger := log.New(os.Stderr, "[backfill] ", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, stopping after the current step...", sig)
		cancel()

		sig = <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(exitFailure)
	}()

	os.Exit(run(ctx, logger, opts))
}

// parseFlags parses command-line arguments. Usage goes to w.
func parseFlags(args []string, w io.Writer) (*options, error) {
	fs := flag.NewFlagSet("backfill", flag.ContinueOnError)
	fs.SetOutput(w)

	opts := &options{}
	var only string

	fs.StringVar(&opts.rpc, "rpc", defaultRPC, "Solana RPC HTTP endpoint")
	fs.StringVar(&opts.rpc, "r", defaultRPC, "Solana RPC HTTP endpoint (shorthand)")
	fs.StringVar(&opts.commitment, "commitment", solana.DefaultCommitment, "Commitment for reads and preflight: processed, confirmed or finalized")
	fs.StringVar(&opts.signer, "signer", "", "Path to the signer keypair file (required)")
	fs.StringVar(&opts.signer, "s", "", "Path to the signer keypair file (shorthand)")
	fs.StringVar(&opts.catalogPath, "catalog", "", "YAML mint catalog (default: built-in catalog)")
	fs.StringVar(&only, "only", "", "Comma-separated mints to process, in order (default: whole catalog)")
	fs.StringVar(&opts.postgresDSN, "postgres-dsn", "", "PostgreSQL connection string for the run journal (default: in-memory)")
	fs.StringVar(&opts.pushgateway, "pushgateway", "", "Prometheus Pushgateway URL (empty to disable)")
	fs.BoolVar(&opts.strict, "strict", false, "Exit non-zero when any mint fails")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(w, "Usage: backfill --signer <keypair.json> [--rpc <url>] [flags]\n\n")
		fmt.Fprintf(w, "Creates missing Metaplex metadata accounts for the mints in the catalog.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(w, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	opts.only = splitList(only)

	switch opts.commitment {
	case "processed", "confirmed", "finalized":
	default:
		fmt.Fprintf(w, "invalid --commitment %q\n", opts.commitment)
		fs.Usage()
		return nil, fmt.Errorf("invalid --commitment %q", opts.commitment)
	}

	if !opts.version && opts.signer == "" {
		fmt.Fprintln(w, "--signer is required")
		fs.Usage()
		return nil, fmt.Errorf("--signer is required")
	}

	return opts, nil
}

func run(ctx context.Context, logger *log.Logger, opts *options) int {
	signer, err := solana.LoadKeypair(opts.signer)
	if err != nil {
		logger.Printf("Error: %v", err)
		return exitFailure
	}

	cat := catalog.Default()
	if opts.catalogPath != "" {
		cat, err = catalog.Load(opts.catalogPath)
		if err != nil {
			logger.Printf("Error: %v", err)
			return exitFailure
		}
	}

	addresses, err := selectAddresses(cat, opts.only)
	if err != nil {
		logger.Printf("Error: --only: %v", err)
		return exitFailure
	}

	metrics := observability.NewMetrics("")
	ledger := solana.NewHTTPClient(opts.rpc,
		solana.WithCommitment(opts.commitment),
		solana.WithObserver(metrics.ObserveRPC),
	)

	var store storage.OutcomeStore = memory.NewOutcomeStore()
	if opts.postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
		if err != nil {
			logger.Printf("Error: %v", err)
			return exitFailure
		}
		defer pool.Close()

		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		if err != nil {
			logger.Printf("Error: %v", err)
			return exitFailure
		}
		if len(applied) > 0 {
			logger.Printf("Applied migrations: %s", strings.Join(applied, ", "))
		}
		store = pgstore.NewOutcomeStore(pool)
	}

	started := time.Now()
	runID := idhash.ComputeRunID(signer.PublicKey.ToBase58(), ledger.Endpoint(), started.UnixMilli())

	runner := backfill.NewRunner(backfill.RunnerOptions{
		Ledger:  ledger,
		Signer:  signer,
		Catalog: cat,
		Store:   store,
		Metrics: metrics,
		RunID:   runID,
		Logger:  logger,
	})

	logger.Printf("Run %s: %d mints, signer %s, rpc %s (%s)", runID[:12], len(addresses), signer.PublicKey.ToBase58(), ledger.Endpoint(), opts.commitment)

	summary, runErr := runner.Run(ctx, addresses)
	metrics.RecordRun(time.Since(started), time.Now())

	logger.Printf("Done: %d exist, %d created, %d failed", summary.Exists, summary.Created, summary.Failed)
	for _, o := range summary.Outcomes {
		if o.Status.IsSuccess() {
			continue
		}
		msg := ""
		if o.Error != nil {
			msg = *o.Error
		}
		logger.Printf("  %s failed at %s: %s", o.Mint, o.Stage, msg)
	}

	if opts.pushgateway != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := metrics.Push(pushCtx, opts.pushgateway, "metadata_backfill"); err != nil {
			logger.Printf("Warning: %v", err)
		}
		cancel()
	}

	return exitCode(summary, runErr, opts.strict)
}

// exitCode maps a run result to the process exit status.
// Per-mint failures only affect the status in strict mode.
func exitCode(summary *backfill.Summary, runErr error, strict bool) int {
	if runErr != nil {
		return exitFailure
	}
	if strict && summary.Failed > 0 {
		return exitFailure
	}
	return exitOK
}

// selectAddresses returns only in the given order, or the whole catalog when
// only is empty. Each mint may appear once.
func selectAddresses(cat *catalog.Catalog, only []string) ([]string, error) {
	if len(only) == 0 {
		return cat.Addresses(), nil
	}

	seen := make(map[string]bool, len(only))
	for _, mint := range only {
		if err := catalog.ValidateMint(mint); err != nil {
			return nil, err
		}
		if seen[mint] {
			return nil, fmt.Errorf("duplicate mint %s", mint)
		}
		seen[mint] = true
	}
	return only, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
