package wallet

import (
	"errors"
	"strings"
	"testing"
)

func TestSignMessage_VerifyRoundTrip(t *testing.T) {
	w, err := NewRandomWallet()
	if err != nil {
		t.Fatalf("failed to generate wallet: %v", err)
	}

	msg := "AyurTrace Login: " + w.Address() + "\nTimestamp: 1756500000000"
	sig, err := w.SignMessage(msg)
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}
	if !strings.HasPrefix(sig, "0x") {
		t.Errorf("signature should be 0x-prefixed hex, got %q", sig)
	}
	// 65 bytes hex-encoded plus prefix.
	if len(sig) != 2+65*2 {
		t.Errorf("signature length = %d, want %d", len(sig), 2+65*2)
	}

	if err := VerifySignature(w.Address(), msg, sig); err != nil {
		t.Errorf("expected signature to verify, got %v", err)
	}
}

func TestVerifySignature_LowercaseAddress(t *testing.T) {
	w, err := NewRandomWallet()
	if err != nil {
		t.Fatalf("failed to generate wallet: %v", err)
	}

	msg := "hello"
	sig, err := w.SignMessage(msg)
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	if err := VerifySignature(strings.ToLower(w.Address()), msg, sig); err != nil {
		t.Errorf("expected case-insensitive address match, got %v", err)
	}
}

func TestVerifySignature_WrongSigner(t *testing.T) {
	w1, err := NewRandomWallet()
	if err != nil {
		t.Fatalf("failed to generate wallet: %v", err)
	}
	w2, err := NewRandomWallet()
	if err != nil {
		t.Fatalf("failed to generate wallet: %v", err)
	}

	msg := "prove it"
	sig, err := w1.SignMessage(msg)
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	err = VerifySignature(w2.Address(), msg, sig)
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifySignature_TamperedMessage(t *testing.T) {
	w, err := NewRandomWallet()
	if err != nil {
		t.Fatalf("failed to generate wallet: %v", err)
	}

	sig, err := w.SignMessage("original message")
	if err != nil {
		t.Fatalf("unexpected error signing: %v", err)
	}

	err = VerifySignature(w.Address(), "tampered message", sig)
	if err == nil {
		t.Error("expected verification of a tampered message to fail")
	}
}

func TestVerifySignature_Malformed(t *testing.T) {
	w, err := NewRandomWallet()
	if err != nil {
		t.Fatalf("failed to generate wallet: %v", err)
	}

	tests := []struct {
		name string
		sig  string
	}{
		{"not hex", "zzzz"},
		{"too short", "0xdeadbeef"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifySignature(w.Address(), "msg", tt.sig); err == nil {
				t.Error("expected error for malformed signature")
			}
		})
	}
}

func TestNewLocalWallet_HexKey(t *testing.T) {
	w1, err := NewRandomWallet()
	if err != nil {
		t.Fatalf("failed to generate wallet: %v", err)
	}

	// Re-import a well-known key with and without the 0x prefix.
	hexKey := "0000000000000000000000000000000000000000000000000000000000000001"
	for _, key := range []string{hexKey, "0x" + hexKey} {
		w2, err := NewLocalWallet(key)
		if err != nil {
			t.Fatalf("failed to parse key %q: %v", key, err)
		}
		if w2.Address() == w1.Address() {
			t.Error("imported wallet should not collide with a random one")
		}
		if w2.Address() != "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf" {
			t.Errorf("unexpected address %q for known key", w2.Address())
		}
	}

	if _, err := NewLocalWallet("not a key"); err == nil {
		t.Error("expected error for invalid key material")
	}
}
