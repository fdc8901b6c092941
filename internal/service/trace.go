package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/divya01062005/Ayurtrace/internal/chain"
	chaintypes "github.com/divya01062005/Ayurtrace/internal/chain/types"
	"github.com/divya01062005/Ayurtrace/internal/ids"
	"github.com/divya01062005/Ayurtrace/internal/models"
	"github.com/divya01062005/Ayurtrace/internal/repository"
)

var (
	// ErrBatchNotFound means the referenced batch does not exist.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrInvalidInput covers field-level validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// TraceRepository defines the persistence operations required by the
// trace service.
type TraceRepository interface {
	InsertBatch(ctx context.Context, b *models.Batch) error
	BatchByID(ctx context.Context, batchID string) (*models.Batch, error)
	ListBatches(ctx context.Context) ([]models.Batch, error)
	UpdateBatchStatus(ctx context.Context, batchID, status string) error
	InsertEvent(ctx context.Context, e *models.Event) error
	EventsByBatch(ctx context.Context, batchID string) ([]models.Event, error)
	RecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// CreateBatchInput is the POST /api/batches payload.
type CreateBatchInput struct {
	HerbName     string   `json:"herbName"`
	HerbLatin    string   `json:"herbLatin"`
	QuantityKg   float64  `json:"quantityKg"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	LocationName string   `json:"locationName"`
	Notes        string   `json:"notes"`
	PhotoURL     string   `json:"photoUrl"`
	TxHash       string   `json:"txHash"`
}

// CreateBatchResult pairs the stored batch with its verification code.
type CreateBatchResult struct {
	BatchID string        `json:"batchId"`
	Batch   *models.Batch `json:"batch"`
	QRCode  string        `json:"qrCode"`
}

// LogEventInput is the POST /api/events payload.
type LogEventInput struct {
	BatchID      string   `json:"batchId"`
	NodeType     string   `json:"nodeType"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	LocationName string   `json:"locationName"`
	Notes        string   `json:"notes"`
	TxHash       string   `json:"txHash"`
}

// TraceService implements batch creation, event logging, verification,
// and statistics over the repositories. An optional chain client lets
// verification cross-check the ledger.
type TraceService struct {
	repo      TraceRepository
	users     AuthRepository
	chain     chain.Client
	verifyURL string
	logger    *zap.Logger
}

// NewTraceService constructs a TraceService. chainClient may be nil;
// verifyURL is the public base the QR codes point at.
func NewTraceService(repo TraceRepository, users AuthRepository, chainClient chain.Client, verifyURL string, logger *zap.Logger) *TraceService {
	return &TraceService{
		repo:      repo,
		users:     users,
		chain:     chainClient,
		verifyURL: strings.TrimRight(verifyURL, "/"),
		logger:    logger,
	}
}

// CreateBatch validates and stores a new batch for the collector and
// returns it with a scannable verification code.
func (s *TraceService) CreateBatch(ctx context.Context, collectorAddress string, in CreateBatchInput) (*CreateBatchResult, error) {
	if strings.TrimSpace(in.HerbName) == "" {
		return nil, fmt.Errorf("%w: herbName is required", ErrInvalidInput)
	}
	if in.QuantityKg <= 0 {
		return nil, fmt.Errorf("%w: quantityKg must be greater than zero", ErrInvalidInput)
	}
	if in.Latitude == nil || in.Longitude == nil {
		return nil, fmt.Errorf("%w: latitude and longitude are required", ErrInvalidInput)
	}

	batch := &models.Batch{
		BatchID:          models.NewBatchID(time.Now()),
		HerbName:         strings.TrimSpace(in.HerbName),
		HerbLatin:        strings.TrimSpace(in.HerbLatin),
		QuantityKg:       in.QuantityKg,
		Latitude:         *in.Latitude,
		Longitude:        *in.Longitude,
		LocationName:     strings.TrimSpace(in.LocationName),
		Notes:            in.Notes,
		PhotoURL:         in.PhotoURL,
		TxHash:           in.TxHash,
		Status:           models.StatusCollected,
		CollectorAddress: collectorAddress,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.InsertBatch(ctx, batch); err != nil {
		return nil, err
	}

	qr, err := s.qrDataURL(batch.BatchID)
	if err != nil {
		// The batch is stored; a missing QR code is not worth failing
		// the whole submission over.
		s.logger.Warn("qr generation failed", zap.String("batchId", batch.BatchID), zap.Error(err))
	}

	s.logger.Info("batch created",
		zap.String("batchId", batch.BatchID),
		zap.String("collector", collectorAddress),
		zap.String("herb", batch.HerbName),
	)
	return &CreateBatchResult{BatchID: batch.BatchID, Batch: batch, QRCode: qr}, nil
}

// LogEvent validates and stores a downstream event, then advances the
// batch status.
func (s *TraceService) LogEvent(ctx context.Context, actorAddress string, in LogEventInput) (*models.Event, error) {
	if strings.TrimSpace(in.BatchID) == "" {
		return nil, fmt.Errorf("%w: batchId is required", ErrInvalidInput)
	}
	node, err := models.ParseNodeType(in.NodeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(in.Notes) == "" {
		return nil, fmt.Errorf("%w: notes are required", ErrInvalidInput)
	}
	if _, err := s.repo.BatchByID(ctx, in.BatchID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}

	event := &models.Event{
		ID:           ids.New(),
		BatchID:      in.BatchID,
		NodeType:     node.String(),
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		LocationName: strings.TrimSpace(in.LocationName),
		Notes:        in.Notes,
		TxHash:       in.TxHash,
		ActorAddress: actorAddress,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.InsertEvent(ctx, event); err != nil {
		return nil, err
	}

	if next, ok := statusAfter(node); ok {
		if err := s.repo.UpdateBatchStatus(ctx, in.BatchID, next); err != nil {
			s.logger.Warn("status advance failed",
				zap.String("batchId", in.BatchID),
				zap.String("status", next),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("event logged",
		zap.String("batchId", in.BatchID),
		zap.String("nodeType", event.NodeType),
		zap.String("actor", actorAddress),
	)
	return event, nil
}

// statusAfter maps a node stage to the batch status it leaves behind.
func statusAfter(node models.NodeType) (string, bool) {
	switch node {
	case models.NodeAggregator:
		return models.StatusAggregated, true
	case models.NodeProcessor:
		return models.StatusProcessed, true
	case models.NodeManufacturer:
		return models.StatusCompleted, true
	default:
		return "", false
	}
}

// ListBatches returns all batches, newest first.
func (s *TraceService) ListBatches(ctx context.Context) ([]models.Batch, error) {
	return s.repo.ListBatches(ctx)
}

// RecentEvents returns the latest events across batches.
func (s *TraceService) RecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	return s.repo.RecentEvents(ctx, limit)
}

// Stats returns the admin aggregate view.
func (s *TraceService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.repo.Stats(ctx)
}

// Verify assembles the consumer verification payload: the batch, its
// trail ordered ascending (step 1 is the collection itself), and the
// on-chain cross-check. A batch with zero downstream events is a valid
// result, not an error.
func (s *TraceService) Verify(ctx context.Context, batchID string) (*models.VerifyResult, error) {
	batch, err := s.repo.BatchByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}
	events, err := s.repo.EventsByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	collectorName := ""
	if u, err := s.users.UserByAddress(ctx, batch.CollectorAddress); err == nil {
		collectorName = u.Name
	}

	trail := make([]models.TrailStep, 0, len(events)+1)
	lat, lng := batch.Latitude, batch.Longitude
	trail = append(trail, models.TrailStep{
		Step:      1,
		NodeType:  models.RoleCollector.String(),
		ActorName: collectorName,
		Timestamp: batch.CreatedAt,
		Location:  models.TrailLocation{Latitude: &lat, Longitude: &lng, Name: batch.LocationName},
		Notes:     batch.Notes,
		TxHash:    batch.TxHash,
	})
	for i, e := range events {
		trail = append(trail, models.TrailStep{
			Step:      i + 2,
			NodeType:  e.NodeType,
			ActorName: e.ActorName,
			Timestamp: e.CreatedAt,
			Location:  models.TrailLocation{Latitude: e.Latitude, Longitude: e.Longitude, Name: e.LocationName},
			Notes:     e.Notes,
			TxHash:    e.TxHash,
		})
	}

	result := &models.VerifyResult{
		Verified:   true,
		BatchID:    batch.BatchID,
		HerbName:   batch.HerbName,
		HerbLatin:  batch.HerbLatin,
		QuantityKg: batch.QuantityKg,
		Status:     batch.Status,
		Trail:      trail,
		Summary:    fmt.Sprintf("%s batch traced through %d supply-chain steps", batch.HerbName, len(trail)),
	}

	result.OnChainVerified = batch.TxHash != ""
	if s.chain != nil {
		rec, err := s.chain.GetBatch(ctx, batch.BatchID)
		switch {
		case errors.Is(err, chaintypes.ErrBatchNotFound):
			result.OnChainVerified = false
		case err != nil:
			s.logger.Warn("chain cross-check unavailable", zap.String("batchId", batchID), zap.Error(err))
		default:
			result.OnChainVerified = rec.HerbName == batch.HerbName
		}
	}
	return result, nil
}

// qrDataURL renders the public verification link as a PNG data URL the
// frontend can embed directly.
func (s *TraceService) qrDataURL(batchID string) (string, error) {
	png, err := qrcode.Encode(s.verifyURL+"/verify/"+batchID, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
