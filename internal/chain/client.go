// Package chain defines the generic interface for ledger interactions.
package chain

import (
	"context"

	"github.com/divya01062005/Ayurtrace/internal/chain/types"
)

// Client is the chain-agnostic surface the submission client writes
// through. Every write blocks until the transaction is confirmed and
// yields its transaction hash, or fails without a partial write.
type Client interface {
	// CreateBatch records a new batch on chain. Coordinates are
	// fixed-point microdegrees, quantity is integer grams.
	CreateBatch(ctx context.Context, batchID, herbName, herbLatin string, quantityGrams uint64, latE6, lngE6 int64, locationName, notes, photoHash string) (string, error)

	// LogEvent appends a supply-chain event to an existing batch.
	// nodeType is the contract's stage index (1..3).
	LogEvent(ctx context.Context, batchID string, nodeType uint8, latE6, lngE6 int64, locationName, notes, photoHash string) (string, error)

	// GetBatch reads the on-chain record for a batch id.
	// Returns types.ErrBatchNotFound when the contract has none.
	GetBatch(ctx context.Context, batchID string) (*types.BatchRecord, error)

	// GetStats reads the contract-wide batch/event counters.
	GetStats(ctx context.Context) (*types.Stats, error)

	// Close releases the underlying connection.
	Close() error
}
