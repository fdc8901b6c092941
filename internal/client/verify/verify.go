// Package verify implements the read-only verification reader a
// consumer hits after scanning a batch QR code.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/divya01062005/Ayurtrace/internal/chain"
	chaintypes "github.com/divya01062005/Ayurtrace/internal/chain/types"
	"github.com/divya01062005/Ayurtrace/internal/client"
	"github.com/divya01062005/Ayurtrace/internal/models"
)

// Reader fetches a batch's journey. It distinguishes three end states
// callers must not conflate: batch not found (*client.NotFoundError),
// batch found with zero events (valid, fresh batch), and transport or
// backend failure (plain error).
type Reader struct {
	baseURL string
	http    *http.Client
	chain   chain.Client
	logger  *zap.Logger
}

// NewReader wires a reader. httpClient may be nil; chainClient may be
// nil, in which case the on-chain cross-check relies on the backend's
// own report.
func NewReader(baseURL string, httpClient *http.Client, chainClient chain.Client, logger *zap.Logger) *Reader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Reader{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		chain:   chainClient,
		logger:  logger,
	}
}

// Verify fetches the trail for batchID, ordered ascending by occurrence
// time ("step 1" is the original collection). When a chain client is
// attached it independently cross-checks the on-chain record.
func (r *Reader) Verify(ctx context.Context, batchID string) (*models.VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/verify/"+batchID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &client.NotFoundError{Kind: "batch", ID: batchID}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verify batch: unexpected status %s", resp.Status)
	}

	var result models.VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}

	// The contract here is ascending steps starting at 1 regardless of
	// what order the backend returned.
	sort.SliceStable(result.Trail, func(i, j int) bool {
		return result.Trail[i].Timestamp.Before(result.Trail[j].Timestamp)
	})
	for i := range result.Trail {
		result.Trail[i].Step = i + 1
	}

	if r.chain != nil {
		r.crossCheck(ctx, &result)
	}
	return &result, nil
}

// crossCheck overrides OnChainVerified with this reader's own view of
// the ledger. Chain read failures keep the backend's report; a missing
// record is an authoritative "not on chain".
func (r *Reader) crossCheck(ctx context.Context, result *models.VerifyResult) {
	rec, err := r.chain.GetBatch(ctx, result.BatchID)
	switch {
	case errors.Is(err, chaintypes.ErrBatchNotFound):
		result.OnChainVerified = false
	case err != nil:
		r.logger.Warn("on-chain cross-check unavailable",
			zap.String("batchId", result.BatchID),
			zap.Error(err),
		)
	default:
		result.OnChainVerified = rec.HerbName == result.HerbName
	}
}
