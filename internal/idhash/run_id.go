package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(signer|endpoint|started_at_ms)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(signer, endpoint string, startedAtMs int64) string {
	data := fmt.Sprintf("%s|%s|%d", signer, endpoint, startedAtMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeOutcomeID computes a deterministic outcome_id using SHA256.
// Formula: SHA256(run_id|mint)
func ComputeOutcomeID(runID, mint string) string {
	data := fmt.Sprintf("%s|%s", runID, mint)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
