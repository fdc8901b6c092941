// Package wallet provides the private-key identity used to sign login
// challenges and chain transactions, plus server-side signature recovery.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is the signing capability the session manager needs: an address
// and a way to prove control of it without transmitting the key.
type Wallet interface {
	// Address returns the checksummed hex address.
	Address() string
	// SignMessage signs msg with the EIP-191 personal-sign prefix and
	// returns the 65-byte signature hex-encoded.
	SignMessage(msg string) (string, error)
}

// ErrBadSignature is returned when a signature does not recover to the
// claimed address.
var ErrBadSignature = errors.New("wallet: signature does not match address")

// LocalWallet holds a secp256k1 key in memory. It stands in for the
// browser wallet the original system delegated signing to.
type LocalWallet struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewLocalWallet builds a wallet from a hex-encoded private key,
// with or without the 0x prefix.
func NewLocalWallet(hexKey string) (*LocalWallet, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &LocalWallet{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// NewRandomWallet generates a throwaway wallet. Used by tests and the
// CLI when no key is configured.
func NewRandomWallet() (*LocalWallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &LocalWallet{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address returns the checksummed hex address.
func (w *LocalWallet) Address() string {
	return w.addr.Hex()
}

// SignMessage signs msg the way personal_sign does: the message is
// prefixed and keccak-hashed, and the recovery id is offset by 27.
func (w *LocalWallet) SignMessage(msg string) (string, error) {
	digest := accounts.TextHash([]byte(msg))
	sig, err := crypto.Sign(digest, w.key)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

// PrivateKey exposes the underlying key for the chain transactor.
func (w *LocalWallet) PrivateKey() *ecdsa.PrivateKey {
	return w.key
}

// VerifySignature recovers the signer of a personal-sign signature over
// msg and checks it against address (case-insensitive). Returns
// ErrBadSignature on mismatch.
func VerifySignature(address, msg, sigHex string) error {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	// Wallets return v as 27/28; go-ethereum expects 0/1.
	cp := make([]byte, len(sig))
	copy(cp, sig)
	if cp[64] >= 27 {
		cp[64] -= 27
	}
	digest := accounts.TextHash([]byte(msg))
	pub, err := crypto.SigToPub(digest, cp)
	if err != nil {
		return fmt.Errorf("recover signer: %w", err)
	}
	recovered := crypto.PubkeyToAddress(*pub)
	if !strings.EqualFold(recovered.Hex(), strings.TrimSpace(address)) {
		return ErrBadSignature
	}
	return nil
}
