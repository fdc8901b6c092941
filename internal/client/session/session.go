// Package session owns wallet-based authentication state: the signed
// login handshake, the bearer token lifecycle, and its durable
// persistence across restarts.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/divya01062005/Ayurtrace/internal/client"
	"github.com/divya01062005/Ayurtrace/internal/models"
)

// Manager establishes, persists, and tears down an authenticated
// identity tied to a wallet address. All dependencies are explicit;
// there is no ambient state.
type Manager struct {
	baseURL string
	http    *http.Client
	store   Store
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
	user  *models.User
}

// NewManager wires the session manager. httpClient may be nil, in which
// case http.DefaultClient is used.
func NewManager(baseURL string, httpClient *http.Client, store Store, logger *zap.Logger) *Manager {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Manager{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		store:   store,
		logger:  logger,
	}
}

// LoginMessage builds the challenge string the wallet signs to prove
// key control. The timestamp is a freshness marker the backend checks.
func LoginMessage(walletAddress string, now time.Time) string {
	return fmt.Sprintf("AyurTrace Login: %s\nTimestamp: %d", walletAddress, now.UnixMilli())
}

// Restore loads a previously saved session. Best effort: if either half
// is missing or unparsable the session stays unauthenticated and no
// error is surfaced. The session is never half-populated.
func (m *Manager) Restore() {
	token, user, err := m.store.Load()
	if err != nil {
		m.logger.Warn("session restore failed", zap.Error(err))
		return
	}
	if token == "" || user == nil {
		return
	}
	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()
	m.logger.Info("session restored", zap.String("wallet", user.WalletAddress))
}

// User returns the authenticated user, or nil.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Token returns the current bearer token, empty when unauthenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Authenticated reports whether a full session exists.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.user != nil
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
	Error string       `json:"error"`
}

// Register creates a new identity for the wallet and establishes a
// session. Fails with *client.AuthError when the backend rejects it
// (duplicate wallet, invalid role).
func (m *Manager) Register(ctx context.Context, walletAddress, role, name, location string) (*models.User, error) {
	payload := map[string]string{
		"walletAddress": walletAddress,
		"role":          role,
		"name":          name,
		"location":      location,
	}
	resp, err := m.postJSON(ctx, "/api/auth/register", payload)
	if err != nil {
		return nil, err
	}
	return m.establish("register", resp)
}

// Login exchanges a signed challenge for a session. The caller obtains
// signature by having the wallet sign LoginMessage's output. Fails with
// *client.AuthError when the backend rejects the signature or the
// wallet is unregistered.
func (m *Manager) Login(ctx context.Context, walletAddress, signature, message string) (*models.User, error) {
	payload := map[string]string{
		"walletAddress": walletAddress,
		"signature":     signature,
		"message":       message,
	}
	resp, err := m.postJSON(ctx, "/api/auth/login", payload)
	if err != nil {
		return nil, err
	}
	return m.establish("login", resp)
}

func (m *Manager) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return m.http.Do(req)
}

// establish parses an auth response and, on success, updates memory and
// durable storage together under one lock so no caller observes a
// half-switched session.
func (m *Manager) establish(op string, resp *http.Response) (*models.User, error) {
	defer resp.Body.Close()

	var body authResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := body.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, &client.AuthError{Op: op, Msg: msg}
	}
	if body.User == nil || body.Token == "" {
		return nil, &client.AuthError{Op: op, Msg: "backend returned an incomplete session"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(body.Token, body.User); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	m.token = body.Token
	m.user = body.User
	m.logger.Info("session established",
		zap.String("op", op),
		zap.String("wallet", body.User.WalletAddress),
		zap.String("role", body.User.Role),
	)
	return body.User, nil
}

// UserByAddress looks up a registered wallet. An unregistered wallet
// returns *client.NotFoundError; transport failures return a distinct
// error so callers can tell "redirect to registration" from "backend
// unreachable".
func (m *Manager) UserByAddress(ctx context.Context, walletAddress string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/auth/me/"+walletAddress, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &client.NotFoundError{Kind: "user", ID: walletAddress}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup user: unexpected status %s", resp.Status)
	}
	var body struct {
		User *models.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if body.User == nil {
		return nil, &client.NotFoundError{Kind: "user", ID: walletAddress}
	}
	return body.User, nil
}

// Do performs a backend request with the bearer token attached while
// authenticated. Content-Type defaults to JSON; caller headers may
// override it but cannot remove the Authorization header.
func (m *Manager) Do(ctx context.Context, method, path string, body []byte, headers http.Header) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if tok := m.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return m.http.Do(req)
}

// Logout clears the in-memory and persisted session atomically.
// Idempotent; safe to call while unauthenticated.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.token = ""
	m.user = nil
	return nil
}
