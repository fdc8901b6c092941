package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/divya01062005/Ayurtrace/internal/models"
)

func testUser() *models.User {
	return &models.User{
		WalletAddress: "0xabc0000000000000000000000000000000000001",
		Role:          "collector",
		Name:          "Asha",
		Location:      "Kerala",
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	user := testUser()
	if err := fs.Save("tok-123", user); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	token, loaded, err := fs.Load()
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("token = %q, want %q", token, "tok-123")
	}
	if loaded == nil || loaded.WalletAddress != user.WalletAddress || loaded.Name != user.Name {
		t.Errorf("loaded user = %+v, want %+v", loaded, user)
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	token, user, err := fs.Load()
	if err != nil {
		t.Fatalf("a missing session must not error, got %v", err)
	}
	if token != "" || user != nil {
		t.Errorf("expected empty session, got token=%q user=%+v", token, user)
	}
}

func TestFileStore_LoadCorruptUser(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := fs.Save("tok-123", testUser()); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ayurtrace_user.json"), []byte("{nope"), 0o600); err != nil {
		t.Fatalf("failed to corrupt user file: %v", err)
	}

	token, user, err := fs.Load()
	if err != nil {
		t.Fatalf("a corrupt session must not error, got %v", err)
	}
	if token != "" || user != nil {
		t.Errorf("corrupt user payload must invalidate the whole session, got token=%q user=%+v", token, user)
	}
}

func TestFileStore_ClearIdempotent(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := fs.Save("tok-123", testUser()); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := fs.Clear(); err != nil {
			t.Fatalf("clear #%d failed: %v", i+1, err)
		}
	}

	token, user, err := fs.Load()
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if token != "" || user != nil {
		t.Errorf("expected empty session after clear, got token=%q user=%+v", token, user)
	}
}
