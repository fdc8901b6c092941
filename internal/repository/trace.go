package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/divya01062005/Ayurtrace/internal/models"
)

// PostgresTraceRepository implements batch and event persistence over
// PostgreSQL.
type PostgresTraceRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTraceRepository creates a new PostgresTraceRepository with the
// given database connection.
func NewPostgresTraceRepository(db *sql.DB) *PostgresTraceRepository {
	return &PostgresTraceRepository{DB: db}
}

// InsertBatch stores a new batch record.
// Returns ErrAlreadyExists on a batch id collision.
func (r *PostgresTraceRepository) InsertBatch(ctx context.Context, b *models.Batch) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO batches
		 (batch_id, herb_name, herb_latin, quantity_kg, latitude, longitude,
		  location_name, notes, photo_url, tx_hash, status, collector_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.BatchID, b.HerbName, nullString(b.HerbLatin), b.QuantityKg,
		b.Latitude, b.Longitude, nullString(b.LocationName), nullString(b.Notes),
		nullString(b.PhotoURL), nullString(b.TxHash), b.Status, b.CollectorAddress,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

// BatchByID returns one batch or ErrNotFound.
func (r *PostgresTraceRepository) BatchByID(ctx context.Context, batchID string) (*models.Batch, error) {
	row := r.DB.QueryRowContext(
		ctx,
		`SELECT batch_id, herb_name, herb_latin, quantity_kg, latitude, longitude,
		        location_name, notes, photo_url, tx_hash, status, collector_address, created_at
		 FROM batches WHERE batch_id = $1`,
		batchID,
	)
	b, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// ListBatches returns all batches, newest first.
func (r *PostgresTraceRepository) ListBatches(ctx context.Context) ([]models.Batch, error) {
	rows, err := r.DB.QueryContext(
		ctx,
		`SELECT batch_id, herb_name, herb_latin, quantity_kg, latitude, longitude,
		        location_name, notes, photo_url, tx_hash, status, collector_address, created_at
		 FROM batches ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []models.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *b)
	}
	return batches, rows.Err()
}

// UpdateBatchStatus advances a batch's status.
func (r *PostgresTraceRepository) UpdateBatchStatus(ctx context.Context, batchID, status string) error {
	res, err := r.DB.ExecContext(
		ctx,
		`UPDATE batches SET status = $2 WHERE batch_id = $1`,
		batchID, status,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertEvent stores a new supply-chain event.
func (r *PostgresTraceRepository) InsertEvent(ctx context.Context, e *models.Event) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO events
		 (id, batch_id, node_type, latitude, longitude, location_name, notes, tx_hash, actor_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.BatchID, e.NodeType, e.Latitude, e.Longitude,
		nullString(e.LocationName), e.Notes, nullString(e.TxHash), e.ActorAddress,
	)
	return err
}

// EventsByBatch returns a batch's events ordered by occurrence time
// ascending, with the actor's display name joined in.
func (r *PostgresTraceRepository) EventsByBatch(ctx context.Context, batchID string) ([]models.Event, error) {
	rows, err := r.DB.QueryContext(
		ctx,
		`SELECT e.id, e.batch_id, e.node_type, e.latitude, e.longitude,
		        e.location_name, e.notes, e.tx_hash, e.actor_address,
		        COALESCE(u.name, ''), e.created_at
		 FROM events e LEFT JOIN users u ON u.wallet_address = e.actor_address
		 WHERE e.batch_id = $1 ORDER BY e.created_at ASC`,
		batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// RecentEvents returns the latest events across all batches.
func (r *PostgresTraceRepository) RecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(
		ctx,
		`SELECT e.id, e.batch_id, e.node_type, e.latitude, e.longitude,
		        e.location_name, e.notes, e.tx_hash, e.actor_address,
		        COALESCE(u.name, ''), e.created_at
		 FROM events e LEFT JOIN users u ON u.wallet_address = e.actor_address
		 ORDER BY e.created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// Stats returns batch/event totals and per-status batch counts.
func (r *PostgresTraceRepository) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{ByStatus: make(map[string]int64)}

	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM batches`).Scan(&stats.TotalBatches); err != nil {
		return nil, err
	}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&stats.TotalEvents); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM batches GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*models.Batch, error) {
	var (
		b                                         models.Batch
		herbLatin, locationName, notes, photo, tx sql.NullString
	)
	err := row.Scan(
		&b.BatchID, &b.HerbName, &herbLatin, &b.QuantityKg, &b.Latitude, &b.Longitude,
		&locationName, &notes, &photo, &tx, &b.Status, &b.CollectorAddress, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.HerbLatin = herbLatin.String
	b.LocationName = locationName.String
	b.Notes = notes.String
	b.PhotoURL = photo.String
	b.TxHash = tx.String
	return &b, nil
}

func collectEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var (
			e                models.Event
			locationName, tx sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.BatchID, &e.NodeType, &e.Latitude, &e.Longitude,
			&locationName, &e.Notes, &tx, &e.ActorAddress, &e.ActorName, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.LocationName = locationName.String
		e.TxHash = tx.String
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
