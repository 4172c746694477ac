package evm

import (
	"context"
)

// Writer is the portfolio contract surface the submission pipeline writes
// through. Client talks to a real EVM endpoint; Simulator backs local
// development and tests.
type Writer interface {
	// GetAllocations returns the on-chain category ids and percentages in
	// matching order. Callers must tolerate an empty or mismatched pair and
	// keep their last known state.
	GetAllocations(ctx context.Context) ([]string, []uint64, error)
	// UpdateAllocations submits a new allocation set and returns the
	// transaction hash once the write is accepted by the target.
	UpdateAllocations(ctx context.Context, categories []string, percentages []uint64) (string, error)
	// Owner returns the contract owner address.
	Owner(ctx context.Context) (string, error)
	// WaitConfirmed blocks until the transaction is included and succeeded, or
	// fails with the revert/timeout reason.
	WaitConfirmed(ctx context.Context, txHash string) error
}
