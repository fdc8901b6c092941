package chain

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/divya01062005/Ayurtrace/internal/chain/ethereum"
	"github.com/divya01062005/Ayurtrace/internal/config"
	"github.com/divya01062005/Ayurtrace/internal/wallet"
)

// ChainType represents the type of chain client.
type ChainType string

const (
	Ethereum ChainType = "ethereum"
	// Future chain types can be added here.
)

// NewClient creates a chain client for the configured chain type.
// The wallet supplies the transaction-signing key.
func NewClient(chainType string, cfg *config.Options, w *wallet.LocalWallet, logger *zap.Logger) (Client, error) {
	switch ChainType(chainType) {
	case Ethereum, "":
		// Default to an EVM chain if not specified.
		return ethereum.New(cfg, w, logger)
	default:
		return nil, fmt.Errorf("unsupported chain type: %s", chainType)
	}
}
