package solana

import "fmt"

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// SimulationResult is the value of a simulateTransaction response.
type SimulationResult struct {
	Err           interface{} // nil when the simulation succeeded
	Logs          []string
	UnitsConsumed uint64
}

// Failed reports whether the simulated transaction returned an error.
func (r *SimulationResult) Failed() bool {
	return r != nil && r.Err != nil
}

// SimulationError wraps a failed simulation for logging and error matching.
type SimulationError struct {
	Err  interface{}
	Logs []string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation failed: %v (%d log lines)", e.Err, len(e.Logs))
}
