package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/divya01062005/Ayurtrace/internal/chain/types"
)

// MockClient is an in-memory Client for tests and offline runs. It
// records every write and hands out deterministic transaction hashes.
type MockClient struct {
	mu      sync.Mutex
	seq     int
	batches map[string]*types.BatchRecord
	events  int

	// CreateErr / EventErr, when set, fail the corresponding write
	// before anything is recorded.
	CreateErr error
	EventErr  error

	// CreateCalls and EventCalls count attempted writes, including
	// failed ones.
	CreateCalls int
	EventCalls  int
}

// NewMockClient returns an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{batches: make(map[string]*types.BatchRecord)}
}

func (m *MockClient) nextHash() string {
	m.seq++
	return fmt.Sprintf("0x%064x", m.seq)
}

// CreateBatch records the batch and returns a deterministic hash.
func (m *MockClient) CreateBatch(_ context.Context, batchID, herbName, herbLatin string, quantityGrams uint64, latE6, lngE6 int64, locationName, notes, photoHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.batches[batchID] = &types.BatchRecord{
		BatchID:       batchID,
		HerbName:      herbName,
		HerbLatin:     herbLatin,
		QuantityGrams: quantityGrams,
	}
	return m.nextHash(), nil
}

// LogEvent records the event and returns a deterministic hash.
func (m *MockClient) LogEvent(_ context.Context, batchID string, nodeType uint8, latE6, lngE6 int64, locationName, notes, photoHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventCalls++
	if m.EventErr != nil {
		return "", m.EventErr
	}
	rec, ok := m.batches[batchID]
	if !ok {
		return "", types.ErrBatchNotFound
	}
	rec.EventCount++
	rec.LastNode = nodeType
	m.events++
	return m.nextHash(), nil
}

// GetBatch returns the recorded batch or types.ErrBatchNotFound.
func (m *MockClient) GetBatch(_ context.Context, batchID string) (*types.BatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.batches[batchID]
	if !ok {
		return nil, types.ErrBatchNotFound
	}
	cp := *rec
	return &cp, nil
}

// GetStats returns counters over the recorded writes.
func (m *MockClient) GetStats(_ context.Context) (*types.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &types.Stats{
		TotalBatches: uint64(len(m.batches)),
		TotalEvents:  uint64(m.events),
	}, nil
}

// Close is a no-op.
func (m *MockClient) Close() error { return nil }

var _ Client = (*MockClient)(nil)
