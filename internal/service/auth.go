// Package service provides the business logic behind the API server,
// delegating persistence to repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/divya01062005/Ayurtrace/internal/models"
	"github.com/divya01062005/Ayurtrace/internal/repository"
	"github.com/divya01062005/Ayurtrace/internal/wallet"
)

const (
	issuer = "ayurtrace"
	// challengeWindow bounds how old a login challenge may be.
	challengeWindow = 5 * time.Minute
	tokenTTL        = 24 * time.Hour
)

var (
	// ErrWalletExists means the wallet address is already registered.
	ErrWalletExists = errors.New("wallet address already registered")
	// ErrUnknownWallet means no user exists for the wallet address.
	ErrUnknownWallet = errors.New("wallet address not registered")
	// ErrBadCredentials means the signature did not prove key control.
	ErrBadCredentials = errors.New("signature verification failed")
	// ErrStaleChallenge means the login message's freshness marker is
	// outside the accepted window.
	ErrStaleChallenge = errors.New("login challenge expired")
	// ErrInvalidToken means a bearer token failed validation.
	ErrInvalidToken = errors.New("invalid token")
)

// AuthRepository defines the persistence operations required by the
// authentication service.
type AuthRepository interface {
	// CreateUser creates a new user record; repository.ErrAlreadyExists
	// on a duplicate wallet address.
	CreateUser(ctx context.Context, u *models.User) error
	// UserByAddress returns the user for a wallet address;
	// repository.ErrNotFound when unregistered.
	UserByAddress(ctx context.Context, walletAddress string) (*models.User, error)
}

// Claims are the JWT claims attached to issued bearer tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements wallet registration and signed-message login.
type AuthService struct {
	repo   AuthRepository
	secret []byte
}

// NewAuthService constructs an AuthService. secret signs issued tokens.
func NewAuthService(repo AuthRepository, secret []byte) *AuthService {
	return &AuthService{repo: repo, secret: secret}
}

// Register validates and stores a new identity, then issues a token.
// The returned user together with the token forms the established
// session the client persists.
func (s *AuthService) Register(ctx context.Context, walletAddress, role, name, location string) (*models.User, string, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, "", fmt.Errorf("invalid wallet address %q", walletAddress)
	}
	parsedRole, err := models.ParseRole(role)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(name) == "" {
		return nil, "", fmt.Errorf("name is required")
	}

	user := &models.User{
		WalletAddress: models.NormalizeAddress(walletAddress),
		Role:          parsedRole.String(),
		Name:          strings.TrimSpace(name),
		Location:      strings.TrimSpace(location),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, "", ErrWalletExists
		}
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies a personal-sign signature over the client challenge
// and issues a token. The challenge must name the wallet address and
// carry a fresh timestamp.
func (s *AuthService) Login(ctx context.Context, walletAddress, signature, message string) (*models.User, string, error) {
	user, err := s.repo.UserByAddress(ctx, models.NormalizeAddress(walletAddress))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrUnknownWallet
		}
		return nil, "", err
	}

	if err := checkChallenge(walletAddress, message); err != nil {
		return nil, "", err
	}
	if err := wallet.VerifySignature(walletAddress, message, signature); err != nil {
		return nil, "", ErrBadCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UserByAddress is the read-only lookup behind GET /api/auth/me.
func (s *AuthService) UserByAddress(ctx context.Context, walletAddress string) (*models.User, error) {
	return s.repo.UserByAddress(ctx, models.NormalizeAddress(walletAddress))
}

// checkChallenge enforces that the signed message is the expected
// challenge for this wallet and is recent enough to not be a replay
// from a leaked signature.
func checkChallenge(walletAddress, message string) error {
	if !strings.Contains(strings.ToLower(message), models.NormalizeAddress(walletAddress)) {
		return ErrBadCredentials
	}
	idx := strings.LastIndex(message, "Timestamp: ")
	if idx < 0 {
		return ErrBadCredentials
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(message[idx+len("Timestamp: "):]), 10, 64)
	if err != nil {
		return ErrBadCredentials
	}
	issued := time.UnixMilli(ms)
	now := time.Now()
	if issued.Before(now.Add(-challengeWindow)) || issued.After(now.Add(time.Minute)) {
		return ErrStaleChallenge
	}
	return nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.WalletAddress,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a bearer token's signature and claims.
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != issuer || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
