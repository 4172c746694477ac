package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ABI of the portfolio contract, core surface only.
const portfolioABI = `[
  {"type":"function","name":"getAllocations","stateMutability":"view","inputs":[],
   "outputs":[{"name":"categories","type":"string[]"},{"name":"percentages","type":"uint256[]"}]},
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"updateAllocations","stateMutability":"nonpayable",
   "inputs":[{"name":"categories","type":"string[]"},{"name":"percentages","type":"uint256[]"}],
   "outputs":[]}
]`

const defaultPollInterval = 2 * time.Second

// Client writes to the portfolio contract on an EVM-compatible endpoint with
// a server-side signing key.
type Client struct {
	eth            *ethclient.Client
	contract       *bind.BoundContract
	address        common.Address
	key            *ecdsa.PrivateKey
	chainID        *big.Int
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// Dial connects to an EVM JSON-RPC endpoint and binds the portfolio contract.
// privKeyHex is the hex-encoded signing key, with or without 0x prefix.
func Dial(ctx context.Context, rpcURL, contractAddr, privKeyHex string, confirmTimeout time.Duration) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("query chain id: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(portfolioABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}

	addr := common.HexToAddress(contractAddr)
	return &Client{
		eth:            eth,
		contract:       bind.NewBoundContract(addr, parsed, eth, eth, eth),
		address:        addr,
		key:            key,
		chainID:        chainID,
		confirmTimeout: confirmTimeout,
		pollInterval:   defaultPollInterval,
	}, nil
}

// SignerAddress returns the address of the configured signing key.
func (c *Client) SignerAddress() string {
	return crypto.PubkeyToAddress(c.key.PublicKey).Hex()
}

func (c *Client) GetAllocations(ctx context.Context) ([]string, []uint64, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getAllocations")
	if err != nil {
		return nil, nil, fmt.Errorf("getAllocations: %w", err)
	}
	if len(out) != 2 {
		return nil, nil, nil
	}

	categories, ok := out[0].([]string)
	if !ok {
		return nil, nil, nil
	}
	raw, ok := out[1].([]*big.Int)
	if !ok {
		return nil, nil, nil
	}

	percentages := make([]uint64, len(raw))
	for i, p := range raw {
		percentages[i] = p.Uint64()
	}
	return categories, percentages, nil
}

func (c *Client) Owner(ctx context.Context) (string, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "owner"); err != nil {
		return "", fmt.Errorf("owner: %w", err)
	}
	if len(out) != 1 {
		return "", errors.New("owner: unexpected result shape")
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return "", errors.New("owner: unexpected result type")
	}
	return addr.Hex(), nil
}

func (c *Client) UpdateAllocations(ctx context.Context, categories []string, percentages []uint64) (string, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return "", fmt.Errorf("build transactor: %w", err)
	}
	opts.Context = ctx

	pcts := make([]*big.Int, len(percentages))
	for i, p := range percentages {
		pcts[i] = new(big.Int).SetUint64(p)
	}

	tx, err := c.contract.Transact(opts, "updateAllocations", categories, pcts)
	if err != nil {
		return "", fmt.Errorf("updateAllocations: %w", err)
	}
	return tx.Hash().Hex(), nil
}

// WaitConfirmed polls for the transaction receipt until inclusion or the
// configured timeout.
func (c *Client) WaitConfirmed(ctx context.Context, txHash string) error {
	hash := common.HexToHash(txHash)

	waitCtx := ctx
	if c.confirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.confirmTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(waitCtx, hash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusSuccessful {
				return nil
			}
			return fmt.Errorf("transaction %s reverted", txHash)
		}
		if !errors.Is(err, ethereum.NotFound) {
			return fmt.Errorf("query receipt for %s: %w", txHash, err)
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("confirmation of %s timed out: %w", txHash, waitCtx.Err())
		case <-ticker.C:
		}
	}
}
