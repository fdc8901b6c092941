// Package types holds the chain-agnostic record shapes returned by
// chain clients, decoupled from any particular SDK.
package types

import "errors"

// ErrBatchNotFound is returned by read accessors when the contract has
// no record for the requested batch id.
var ErrBatchNotFound = errors.New("chain: batch not found")

// BatchRecord is the on-chain view of a batch as the contract's
// getBatch accessor returns it.
type BatchRecord struct {
	BatchID       string
	HerbName      string
	HerbLatin     string
	QuantityGrams uint64
	Status        uint8
	LastNode      uint8
	Collector     string
	CreatedAt     uint64
	EventCount    uint64
}

// Stats is the contract-wide counter pair from getStats.
type Stats struct {
	TotalBatches uint64
	TotalEvents  uint64
}
