package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/divya01062005/Ayurtrace/internal/client"
	"github.com/divya01062005/Ayurtrace/internal/models"
)

const testWallet = "0xabc0000000000000000000000000000000000001"

func authOK(t *testing.T, w http.ResponseWriter, status int) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user":  &models.User{WalletAddress: testWallet, Role: "collector", Name: "Asha"},
		"token": "tok-123",
	})
}

func newTestManager(t *testing.T, handler http.Handler) (*Manager, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return NewManager(srv.URL, srv.Client(), store, zap.NewNop()), srv
}

func TestLoginMessage(t *testing.T) {
	now := time.UnixMilli(1756500000000)
	got := LoginMessage(testWallet, now)
	want := "AyurTrace Login: " + testWallet + "\nTimestamp: 1756500000000"
	if got != want {
		t.Errorf("LoginMessage = %q, want %q", got, want)
	}
}

func TestRegister_EstablishesSession(t *testing.T) {
	var gotBody map[string]string
	mgr, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/register" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		authOK(t, w, http.StatusCreated)
	}))

	user, err := mgr.Register(context.Background(), testWallet, "collector", "Asha", "Kerala")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.WalletAddress != testWallet {
		t.Errorf("user address = %q, want %q", user.WalletAddress, testWallet)
	}
	if gotBody["role"] != "collector" || gotBody["name"] != "Asha" || gotBody["location"] != "Kerala" {
		t.Errorf("unexpected register payload: %+v", gotBody)
	}
	if !mgr.Authenticated() {
		t.Error("expected an authenticated session after register")
	}
	if mgr.Token() != "tok-123" {
		t.Errorf("token = %q, want tok-123", mgr.Token())
	}
}

func TestLogin_BackendRejection(t *testing.T) {
	mgr, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "signature verification failed"})
	}))

	_, err := mgr.Login(context.Background(), testWallet, "0xsig", "msg")
	var authErr *client.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *client.AuthError, got %v", err)
	}
	if authErr.Op != "login" || !strings.Contains(authErr.Msg, "signature") {
		t.Errorf("unexpected auth error: %+v", authErr)
	}
	if mgr.Authenticated() {
		t.Error("a rejected login must not establish a session")
	}
}

func TestLogin_IncompleteResponse(t *testing.T) {
	mgr, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-123"})
	}))

	_, err := mgr.Login(context.Background(), testWallet, "0xsig", "msg")
	var authErr *client.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *client.AuthError for a half response, got %v", err)
	}
	if mgr.Authenticated() {
		t.Error("an incomplete response must not establish a session")
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authOK(t, w, http.StatusOK)
	}))
	defer srv.Close()

	first := NewManager(srv.URL, srv.Client(), store, zap.NewNop())
	if _, err := first.Login(context.Background(), testWallet, "0xsig", "msg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second manager over the same directory picks the session up.
	second := NewManager(srv.URL, srv.Client(), store, zap.NewNop())
	second.Restore()
	if !second.Authenticated() {
		t.Fatal("expected the restored manager to be authenticated")
	}
	if second.Token() != first.Token() {
		t.Errorf("restored token = %q, want %q", second.Token(), first.Token())
	}
	if second.User().WalletAddress != testWallet {
		t.Errorf("restored user = %+v", second.User())
	}
}

func TestLogout_ClearsAndIsIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authOK(t, w, http.StatusOK)
	}))
	defer srv.Close()

	mgr := NewManager(srv.URL, srv.Client(), store, zap.NewNop())
	if _, err := mgr.Login(context.Background(), testWallet, "0xsig", "msg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := mgr.Logout(); err != nil {
			t.Fatalf("logout #%d failed: %v", i+1, err)
		}
	}
	if mgr.Authenticated() {
		t.Error("expected an unauthenticated session after logout")
	}

	// Nothing to restore afterwards.
	fresh := NewManager(srv.URL, srv.Client(), store, zap.NewNop())
	fresh.Restore()
	if fresh.Authenticated() {
		t.Error("logout must also clear the persisted session")
	}
}

func TestUserByAddress_NotFoundVsTransport(t *testing.T) {
	mgr, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/known"):
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"user": &models.User{WalletAddress: "known", Role: "collector", Name: "Asha"},
			})
		case strings.HasSuffix(r.URL.Path, "/missing"):
			http.NotFound(w, r)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))

	if _, err := mgr.UserByAddress(context.Background(), "known"); err != nil {
		t.Errorf("unexpected error for a registered wallet: %v", err)
	}

	_, err := mgr.UserByAddress(context.Background(), "missing")
	var nf *client.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *client.NotFoundError, got %v", err)
	}
	if nf.Kind != "user" {
		t.Errorf("not-found kind = %q, want user", nf.Kind)
	}

	_, err = mgr.UserByAddress(context.Background(), "broken")
	if err == nil || errors.As(err, &nf) {
		t.Errorf("a backend failure must not look like not-found, got %v", err)
	}
}

func TestDo_Headers(t *testing.T) {
	var gotAuth, gotContentType, gotCustom string
	mgr, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			authOK(t, w, http.StatusOK)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotCustom = r.Header.Get("X-Custom")
		w.WriteHeader(http.StatusNoContent)
	}))

	if _, err := mgr.Login(context.Background(), testWallet, "0xsig", "msg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	headers := http.Header{}
	headers.Set("X-Custom", "yes")
	// An attempt to smuggle a bogus Authorization header loses to the
	// session token.
	headers.Set("Authorization", "Bearer forged")
	resp, err := mgr.Do(context.Background(), http.MethodPost, "/api/batches", []byte(`{}`), headers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want the session token", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotCustom != "yes" {
		t.Errorf("X-Custom = %q, want yes", gotCustom)
	}
}
