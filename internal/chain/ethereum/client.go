// Package ethereum implements the chain client against an EVM network
// (Polygon Amoy in production) through the deployed traceability contract.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"

	"github.com/divya01062005/Ayurtrace/internal/chain/types"
	"github.com/divya01062005/Ayurtrace/internal/config"
	"github.com/divya01062005/Ayurtrace/internal/wallet"
)

// Fixed fee policy: dynamic estimation on Amoy makes confirmation
// latency unpredictable, so every transaction pins the same caps.
var (
	gasTipCap = new(big.Int).Mul(big.NewInt(30), big.NewInt(params.GWei))
	gasFeeCap = new(big.Int).Mul(big.NewInt(60), big.NewInt(params.GWei))
)

// Client wraps an ethclient connection and the bound contract.
type Client struct {
	eth      *ethclient.Client
	contract *bind.BoundContract
	auth     *bind.TransactOpts
	logger   *zap.Logger
}

// New dials the configured RPC endpoint, checks the network id, and
// binds the traceability contract with the wallet as transactor.
func New(cfg *config.Options, w *wallet.LocalWallet, logger *zap.Logger) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if cfg.ContractAddress == "" {
		return nil, fmt.Errorf("contract address is required")
	}

	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	chainID, err := eth.ChainID(context.Background())
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	if chainID.Int64() != cfg.ChainID {
		eth.Close()
		return nil, fmt.Errorf("wrong network: got chain id %d, want %d", chainID.Int64(), cfg.ChainID)
	}

	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(w.PrivateKey(), chainID)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	auth.GasTipCap = gasTipCap
	auth.GasFeeCap = gasFeeCap

	addr := common.HexToAddress(cfg.ContractAddress)
	contract := bind.NewBoundContract(addr, parsed, eth, eth, eth)

	logger.Info("chain client ready",
		zap.String("contract", addr.Hex()),
		zap.Int64("chainId", cfg.ChainID),
		zap.String("account", w.Address()),
	)

	return &Client{eth: eth, contract: contract, auth: auth, logger: logger}, nil
}

// CreateBatch submits createBatch and blocks until the transaction is
// mined, returning its hash.
func (c *Client) CreateBatch(ctx context.Context, batchID, herbName, herbLatin string, quantityGrams uint64, latE6, lngE6 int64, locationName, notes, photoHash string) (string, error) {
	return c.transact(ctx, "createBatch",
		batchID, herbName, herbLatin,
		new(big.Int).SetUint64(quantityGrams),
		big.NewInt(latE6), big.NewInt(lngE6),
		locationName, notes, photoHash,
	)
}

// LogEvent submits logEvent and blocks until the transaction is mined,
// returning its hash.
func (c *Client) LogEvent(ctx context.Context, batchID string, nodeType uint8, latE6, lngE6 int64, locationName, notes, photoHash string) (string, error) {
	return c.transact(ctx, "logEvent",
		batchID, nodeType,
		big.NewInt(latE6), big.NewInt(lngE6),
		locationName, notes, photoHash,
	)
}

func (c *Client) transact(ctx context.Context, method string, args ...any) (string, error) {
	opts := *c.auth
	opts.Context = ctx

	tx, err := c.contract.Transact(&opts, method, args...)
	if err != nil {
		return "", fmt.Errorf("submit %s: %w", method, err)
	}

	c.logger.Info("transaction submitted, waiting for confirmation",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()),
	)

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return "", fmt.Errorf("wait for %s confirmation: %w", method, err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return "", fmt.Errorf("%s transaction %s reverted", method, tx.Hash().Hex())
	}

	c.logger.Info("transaction confirmed",
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()),
	)
	return tx.Hash().Hex(), nil
}

// GetBatch reads the on-chain record for batchID. A record with an
// empty herb name is treated as absent.
func (c *Client) GetBatch(ctx context.Context, batchID string) (*types.BatchRecord, error) {
	var out []any
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getBatch", batchID); err != nil {
		return nil, fmt.Errorf("call getBatch: %w", err)
	}
	if len(out) != 8 {
		return nil, fmt.Errorf("getBatch returned %d values, want 8", len(out))
	}

	rec := &types.BatchRecord{
		BatchID:       batchID,
		HerbName:      out[0].(string),
		HerbLatin:     out[1].(string),
		QuantityGrams: out[2].(*big.Int).Uint64(),
		Status:        out[3].(uint8),
		LastNode:      out[4].(uint8),
		Collector:     out[5].(common.Address).Hex(),
		CreatedAt:     out[6].(*big.Int).Uint64(),
		EventCount:    out[7].(*big.Int).Uint64(),
	}
	if rec.HerbName == "" {
		return nil, types.ErrBatchNotFound
	}
	return rec, nil
}

// GetStats reads the contract-wide counters.
func (c *Client) GetStats(ctx context.Context) (*types.Stats, error) {
	var out []any
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getStats"); err != nil {
		return nil, fmt.Errorf("call getStats: %w", err)
	}
	if len(out) != 2 {
		return nil, fmt.Errorf("getStats returned %d values, want 2", len(out))
	}
	return &types.Stats{
		TotalBatches: out[0].(*big.Int).Uint64(),
		TotalEvents:  out[1].(*big.Int).Uint64(),
	}, nil
}

// Close releases the RPC connection.
func (c *Client) Close() error {
	c.eth.Close()
	return nil
}
