package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/divya01062005/Ayurtrace/internal/chain/types"
)

func TestMockClient_BatchLifecycle(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()

	hash, err := m.CreateBatch(ctx, "HERB-1-AAAAAA", "Tulsi", "Ocimum sanctum", 5500, 12971600, 77594600, "Bengaluru", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "" {
		t.Error("expected a tx hash")
	}

	hash2, err := m.LogEvent(ctx, "HERB-1-AAAAAA", 1, 0, 0, "", "picked up", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash2 == hash {
		t.Error("hashes should be distinct per write")
	}

	rec, err := m.GetBatch(ctx, "HERB-1-AAAAAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.HerbName != "Tulsi" || rec.EventCount != 1 || rec.LastNode != 1 {
		t.Errorf("unexpected record: %+v", rec)
	}

	stats, err := m.GetStats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalBatches != 1 || stats.TotalEvents != 1 {
		t.Errorf("stats = %+v, want 1/1", stats)
	}
}

func TestMockClient_NotFoundAndInjectedErrors(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()

	if _, err := m.GetBatch(ctx, "HERB-0-XXXXXX"); !errors.Is(err, types.ErrBatchNotFound) {
		t.Errorf("expected ErrBatchNotFound, got %v", err)
	}
	if _, err := m.LogEvent(ctx, "HERB-0-XXXXXX", 1, 0, 0, "", "n", ""); !errors.Is(err, types.ErrBatchNotFound) {
		t.Errorf("expected ErrBatchNotFound for an event on an unknown batch, got %v", err)
	}

	boom := errors.New("revert")
	m.CreateErr = boom
	if _, err := m.CreateBatch(ctx, "HERB-1-AAAAAA", "Tulsi", "", 1, 0, 0, "", "", ""); !errors.Is(err, boom) {
		t.Errorf("expected the injected error, got %v", err)
	}
	if m.CreateCalls != 1 {
		t.Errorf("failed attempts must still count, got %d", m.CreateCalls)
	}
	if _, err := m.GetBatch(ctx, "HERB-1-AAAAAA"); !errors.Is(err, types.ErrBatchNotFound) {
		t.Error("a failed write must not record the batch")
	}
}
