package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/divya01062005/Ayurtrace/internal/models"
	"github.com/divya01062005/Ayurtrace/internal/repository"
	"github.com/divya01062005/Ayurtrace/internal/service"
)

// AuthService defines the operations the auth handlers require.
type AuthService interface {
	Register(ctx context.Context, walletAddress, role, name, location string) (*models.User, string, error)
	Login(ctx context.Context, walletAddress, signature, message string) (*models.User, string, error)
	UserByAddress(ctx context.Context, walletAddress string) (*models.User, error)
}

// AuthHandler handles registration, login, and identity lookup.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// RegisterRequest is the JSON payload for POST /api/auth/register.
type RegisterRequest struct {
	WalletAddress string `json:"walletAddress"`
	Role          string `json:"role"`
	Name          string `json:"name"`
	Location      string `json:"location"`
}

// Register creates a new identity and returns {user, token}.
// A duplicate wallet address yields 409.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WalletAddress == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, token, err := h.AuthService.Register(r.Context(), req.WalletAddress, req.Role, req.Name, req.Location)
	if err != nil {
		if errors.Is(err, service.ErrWalletExists) {
			writeError(w, http.StatusConflict, "wallet address already registered")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user, "token": token})
}

// LoginRequest is the JSON payload for POST /api/auth/login.
type LoginRequest struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
}

// Login verifies a signed challenge and returns {user, token}.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WalletAddress == "" || req.Signature == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), req.WalletAddress, req.Signature, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownWallet):
			writeError(w, http.StatusUnauthorized, "wallet address not registered")
		case errors.Is(err, service.ErrBadCredentials), errors.Is(err, service.ErrStaleChallenge):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

// Me returns the user record for a wallet address, or 404 for an
// unregistered wallet so the client can redirect to registration.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "walletAddress")
	user, err := h.AuthService.UserByAddress(r.Context(), address)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
