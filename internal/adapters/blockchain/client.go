package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
	"github.com/trebuchet-org/treb-contracts/internal/usecase"
)

// Client implements the chain reader ports over JSON-RPC
type Client struct {
	eth *ethclient.Client
	rpc *rpc.Client
	log *slog.Logger
}

// Dial connects to rpcURL
func Dial(ctx context.Context, rpcURL string, log *slog.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	return NewClient(rpcClient, log), nil
}

// NewClient wraps an existing RPC connection
func NewClient(rpcClient *rpc.Client, log *slog.Logger) *Client {
	return &Client{
		eth: ethclient.NewClient(rpcClient),
		rpc: rpcClient,
		log: log.With("component", "rpc"),
	}
}

// Close closes the underlying connection
func (c *Client) Close() {
	c.eth.Close()
}

// ChainID returns the chain id reported by the node
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return id.Uint64(), nil
}

// GetRuntimeBytecode returns the code deployed at addr, empty when there is none
func (c *Client) GetRuntimeBytecode(ctx context.Context, addr common.Address) ([]byte, error) {
	code, err := c.eth.CodeAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get code at %s: %w", addr.Hex(), err)
	}
	return code, nil
}

// GetStorageAt reads one storage word of addr at the latest block
func (c *Client) GetStorageAt(ctx context.Context, addr common.Address, slot common.Hash) (common.Hash, error) {
	word, err := c.eth.StorageAt(ctx, addr, slot, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to read slot %s of %s: %w", slot.Hex(), addr.Hex(), err)
	}
	return common.BytesToHash(word), nil
}

// CallContract performs a read-only call against addr
func (c *Client) CallContract(ctx context.Context, addr common.Address, data []byte) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call to %s failed: %w", addr.Hex(), err)
	}
	return out, nil
}

type contractCreator struct {
	Hash    common.Hash    `json:"hash"`
	Creator common.Address `json:"creator"`
}

// GetContractCreation looks up the transaction that created addr using the
// otterscan ots_getContractCreator method. Nodes without otterscan support
// yield nil.
func (c *Client) GetContractCreation(ctx context.Context, addr common.Address) (*models.ContractCreation, error) {
	var creator *contractCreator
	if err := c.rpc.CallContext(ctx, &creator, "ots_getContractCreator", addr); err != nil {
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == -32601 {
			c.log.Debug("node does not support ots_getContractCreator", "error", err)
			return nil, nil
		}
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "not supported") {
			c.log.Debug("creation lookup unavailable", "address", addr.Hex(), "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contract creator: %w", err)
	}
	if creator == nil || creator.Hash == (common.Hash{}) {
		return nil, nil
	}

	receipt, err := c.eth.TransactionReceipt(ctx, creator.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get creation receipt: %w", err)
	}
	tx, _, err := c.eth.TransactionByHash(ctx, creator.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get creation transaction: %w", err)
	}

	deployer, err := c.sender(ctx, tx, receipt)
	if err != nil {
		return nil, err
	}

	creation := &models.ContractCreation{
		TxHash:   creator.Hash,
		Deployer: deployer,
	}
	if receipt.BlockNumber != nil {
		creation.Block = receipt.BlockNumber.Uint64()
	}
	if creator.Creator != deployer {
		factory := creator.Creator
		creation.Factory = &factory
	}
	return creation, nil
}

func (c *Client) sender(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) (common.Address, error) {
	if receipt.BlockHash != (common.Hash{}) {
		if from, err := c.eth.TransactionSender(ctx, tx, receipt.BlockHash, receipt.TransactionIndex); err == nil {
			return from, nil
		}
	}
	chainID := tx.ChainId()
	if chainID == nil || chainID.Sign() == 0 {
		chainID = big.NewInt(1)
	}
	from, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover deployer: %w", err)
	}
	return from, nil
}

// Ensure the client implements the chain reader port
var _ usecase.ChainReader = (*Client)(nil)
