// Package repository provides PostgreSQL persistence for users,
// batches, and supply-chain events.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/divya01062005/Ayurtrace/internal/models"
)

// PostgresAuthRepository implements user persistence over PostgreSQL.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the
// given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts a new user keyed by wallet address.
// Returns ErrAlreadyExists when the wallet is already registered.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, u *models.User) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (wallet_address, role, name, location) VALUES ($1, $2, $3, $4)`,
		u.WalletAddress, u.Role, u.Name, u.Location,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

// UserByAddress returns the user record for a wallet address.
// Returns ErrNotFound when the wallet is unregistered.
func (r *PostgresAuthRepository) UserByAddress(ctx context.Context, walletAddress string) (*models.User, error) {
	var (
		u        models.User
		location sql.NullString
	)
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT wallet_address, role, name, location, created_at FROM users WHERE wallet_address = $1`,
		walletAddress,
	).Scan(&u.WalletAddress, &u.Role, &u.Name, &location, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Location = location.String
	return &u, nil
}
