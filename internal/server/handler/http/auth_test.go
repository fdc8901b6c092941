package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/divya01062005/Ayurtrace/internal/models"
	"github.com/divya01062005/Ayurtrace/internal/repository"
	"github.com/divya01062005/Ayurtrace/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	user        *models.User
	token       string
	registerErr error
	loginErr    error
	lookupErr   error
}

func (f *fakeAuthService) Register(ctx context.Context, walletAddress, role, name, location string) (*models.User, string, error) {
	if f.registerErr != nil {
		return nil, "", f.registerErr
	}
	return f.user, f.token, nil
}

func (f *fakeAuthService) Login(ctx context.Context, walletAddress, signature, message string) (*models.User, string, error) {
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	return f.user, f.token, nil
}

func (f *fakeAuthService) UserByAddress(ctx context.Context, walletAddress string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.user, nil
}

func testUser() *models.User {
	return &models.User{WalletAddress: "0xabc", Role: "collector", Name: "Asha"}
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "empty wallet address",
			body:           `{"walletAddress":""}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "duplicate wallet",
			body:           `{"walletAddress":"0xabc","role":"collector","name":"Asha"}`,
			service:        &fakeAuthService{registerErr: service.ErrWalletExists},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "already registered",
		},
		{
			name:           "validation failure",
			body:           `{"walletAddress":"0xabc","role":"druid","name":"Asha"}`,
			service:        &fakeAuthService{registerErr: errors.New(`unknown role "druid"`)},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "unknown role",
		},
		{
			name:           "success",
			body:           `{"walletAddress":"0xabc","role":"collector","name":"Asha"}`,
			service:        &fakeAuthService{user: testUser(), token: "tok-123"},
			expectedCode:   http.StatusCreated,
			expectedSubstr: "tok-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}
			h.Register(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Errorf("body %q should contain %q", rec.Body.String(), tt.expectedSubstr)
			}
		})
	}
}

func TestAuthHandler_Register_ResponseShape(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/register",
		bytes.NewBufferString(`{"walletAddress":"0xabc","role":"collector","name":"Asha"}`))
	h := &AuthHandler{AuthService: &fakeAuthService{user: testUser(), token: "tok-123"}}
	h.Register(rec, req)

	var body struct {
		User  *models.User `json:"user"`
		Token string       `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.User == nil || body.User.WalletAddress != "0xabc" || body.Token != "tok-123" {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	validBody := `{"walletAddress":"0xabc","signature":"0xsig","message":"msg"}`
	tests := []struct {
		name         string
		body         string
		service      *fakeAuthService
		expectedCode int
	}{
		{"invalid JSON", `{`, &fakeAuthService{}, http.StatusBadRequest},
		{"missing signature", `{"walletAddress":"0xabc"}`, &fakeAuthService{}, http.StatusBadRequest},
		{"unknown wallet", validBody, &fakeAuthService{loginErr: service.ErrUnknownWallet}, http.StatusUnauthorized},
		{"bad signature", validBody, &fakeAuthService{loginErr: service.ErrBadCredentials}, http.StatusUnauthorized},
		{"stale challenge", validBody, &fakeAuthService{loginErr: service.ErrStaleChallenge}, http.StatusUnauthorized},
		{"backend failure", validBody, &fakeAuthService{loginErr: errors.New("db down")}, http.StatusInternalServerError},
		{"success", validBody, &fakeAuthService{user: testUser(), token: "tok-123"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}
			h.Login(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	tests := []struct {
		name         string
		service      *fakeAuthService
		expectedCode int
	}{
		{"registered", &fakeAuthService{user: testUser()}, http.StatusOK},
		{"unregistered", &fakeAuthService{lookupErr: repository.ErrNotFound}, http.StatusNotFound},
		{"backend failure", &fakeAuthService{lookupErr: errors.New("db down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			h := &AuthHandler{AuthService: tt.service}
			r.Get("/api/auth/me/{walletAddress}", h.Me)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/auth/me/0xabc", nil)
			r.ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}
