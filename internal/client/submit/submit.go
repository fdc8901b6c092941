// Package submit orchestrates the dual write every submission performs:
// an on-chain transaction (when a chain connection exists) followed by
// the authorized backend write carrying the transaction hash. Phase
// ordering and the partial-failure policy live here and nowhere else.
package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/divya01062005/Ayurtrace/internal/chain"
	"github.com/divya01062005/Ayurtrace/internal/client"
	"github.com/divya01062005/Ayurtrace/internal/client/session"
	"github.com/divya01062005/Ayurtrace/internal/models"
)

// Submitter is a stateless orchestrator parameterized by the current
// session and an optional chain connection. A nil chain client is the
// deliberate degraded mode: backend-only writes with a null tx hash.
type Submitter struct {
	session *session.Manager
	chain   chain.Client
	logger  *zap.Logger

	// busy enforces one submission in flight, the functional
	// equivalent of the disabled submit button.
	busy atomic.Bool
}

// NewSubmitter wires a submitter. chainClient may be nil.
func NewSubmitter(sess *session.Manager, chainClient chain.Client, logger *zap.Logger) *Submitter {
	return &Submitter{session: sess, chain: chainClient, logger: logger}
}

// BatchInput is everything a collector provides for one batch.
type BatchInput struct {
	HerbName     string
	HerbLatin    string
	QuantityKg   float64
	Location     *Location
	LocationName string
	Notes        string
	PhotoURL     string
}

// BatchResult is the outcome of a fully successful batch creation.
type BatchResult struct {
	BatchID string        `json:"batchId"`
	Batch   *models.Batch `json:"batch"`
	// QRCode is a data URL encoding the consumer verification link.
	QRCode string `json:"qrCode"`
	TxHash string `json:"-"`
}

// EventInput is everything a downstream node provides for one event.
type EventInput struct {
	BatchID      string
	NodeType     models.NodeType
	Location     *Location
	LocationName string
	Notes        string
}

// EventResult is the outcome of a fully successful event log.
type EventResult struct {
	Event  *models.Event `json:"event"`
	TxHash string        `json:"-"`
}

// CreateBatch runs the two-phase batch protocol:
//
//  1. local validation, *client.ValidationError with zero side effects;
//  2. chain write when connected, *client.ChainWriteError aborts the
//     whole operation before any backend call;
//  3. backend write with the tx hash (or null), *client.PersistenceError
//     carries the confirmed hash so a retry can reconcile.
func (s *Submitter) CreateBatch(ctx context.Context, in BatchInput) (*BatchResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, client.ErrSubmissionInFlight
	}
	defer s.busy.Store(false)

	if strings.TrimSpace(in.HerbName) == "" {
		return nil, &client.ValidationError{Msg: "herb name is required"}
	}
	if in.QuantityKg <= 0 {
		return nil, &client.ValidationError{Msg: "quantity must be greater than zero"}
	}
	if in.Location == nil {
		// GPS is foundational to the traceability claim at origin.
		return nil, &client.ValidationError{Msg: "GPS location must be captured first"}
	}

	locationName := in.LocationName
	if locationName == "" {
		locationName = fmt.Sprintf("%.4f, %.4f", in.Location.Latitude, in.Location.Longitude)
	}

	var txHash string
	if s.chain != nil {
		batchID := models.NewBatchID(time.Now())
		hash, err := s.chain.CreateBatch(ctx,
			batchID,
			in.HerbName,
			in.HerbLatin,
			Grams(in.QuantityKg),
			MicroDegrees(in.Location.Latitude),
			MicroDegrees(in.Location.Longitude),
			locationName,
			in.Notes,
			"",
		)
		if err != nil {
			return nil, &client.ChainWriteError{Op: "createBatch", Err: err}
		}
		txHash = hash
		s.logger.Info("batch confirmed on chain",
			zap.String("batchId", batchID),
			zap.String("tx", txHash),
		)
	}

	payload := map[string]any{
		"herbName":     in.HerbName,
		"herbLatin":    in.HerbLatin,
		"quantityKg":   in.QuantityKg,
		"latitude":     in.Location.Latitude,
		"longitude":    in.Location.Longitude,
		"locationName": locationName,
		"notes":        in.Notes,
		"photoUrl":     in.PhotoURL,
		"txHash":       nullable(txHash),
	}

	var result BatchResult
	if err := s.persist(ctx, "/api/batches", "createBatch", txHash, payload, &result); err != nil {
		return nil, err
	}
	result.TxHash = txHash
	return &result, nil
}

// LogEvent runs the same two-phase protocol for a downstream event.
// GPS is optional here; notes are required instead of quantity.
func (s *Submitter) LogEvent(ctx context.Context, in EventInput) (*EventResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, client.ErrSubmissionInFlight
	}
	defer s.busy.Store(false)

	if strings.TrimSpace(in.BatchID) == "" {
		return nil, &client.ValidationError{Msg: "select a batch first"}
	}
	if !in.NodeType.Valid() {
		return nil, &client.ValidationError{Msg: "invalid node type"}
	}
	if strings.TrimSpace(in.Notes) == "" {
		return nil, &client.ValidationError{Msg: "notes are required"}
	}

	var txHash string
	if s.chain != nil {
		var latE6, lngE6 int64
		if in.Location != nil {
			latE6 = MicroDegrees(in.Location.Latitude)
			lngE6 = MicroDegrees(in.Location.Longitude)
		}
		hash, err := s.chain.LogEvent(ctx,
			in.BatchID,
			uint8(in.NodeType),
			latE6, lngE6,
			in.LocationName,
			in.Notes,
			"",
		)
		if err != nil {
			return nil, &client.ChainWriteError{Op: "logEvent", Err: err}
		}
		txHash = hash
		s.logger.Info("event confirmed on chain",
			zap.String("batchId", in.BatchID),
			zap.String("tx", txHash),
		)
	}

	payload := map[string]any{
		"batchId":  in.BatchID,
		"nodeType": in.NodeType.String(),
		"notes":    in.Notes,
		"txHash":   nullable(txHash),
	}
	if in.Location != nil {
		payload["latitude"] = in.Location.Latitude
		payload["longitude"] = in.Location.Longitude
	} else {
		payload["latitude"] = nil
		payload["longitude"] = nil
	}
	if in.LocationName != "" {
		payload["locationName"] = in.LocationName
	} else {
		payload["locationName"] = nil
	}

	var result EventResult
	if err := s.persist(ctx, "/api/events", "logEvent", txHash, payload, &result); err != nil {
		return nil, err
	}
	result.TxHash = txHash
	return &result, nil
}

// persist performs the authorized backend write, phase three of the
// protocol. The chain write (if any) already succeeded and is not
// rolled back; on failure the two stores transiently disagree until the
// user retries, which is why the error carries the tx hash.
func (s *Submitter) persist(ctx context.Context, path, op, txHash string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", op, err)
	}
	resp, err := s.session.Do(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return &client.PersistenceError{Op: op, TxHash: txHash, Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := backendError(resp.Body)
		if msg == "" {
			msg = resp.Status
		}
		return &client.PersistenceError{Op: op, TxHash: txHash, Status: resp.StatusCode, Msg: msg}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func backendError(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(r).Decode(&body)
	return body.Error
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
