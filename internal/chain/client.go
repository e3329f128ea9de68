package chain

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

const (
	defaultGasLimit       = uint64(500_000)
	defaultReceiptTimeout = 120 * time.Second
)

type Config struct {
	RPCURL          string
	PrivateKeyHex   string
	ContractAddress string
	GasLimit        uint64
	ReceiptTimeout  time.Duration
}

// Client submits signed writes to the KiranaLedger contract and polls for
// receipts. All writes from the single signing key go through one mutex
// spanning nonce-fetch through broadcast; reads stay fully concurrent.
type Client struct {
	eth      *ethclient.Client
	abi      abi.ABI
	key      *ecdsa.PrivateKey
	from     common.Address
	contract common.Address
	chainID  *big.Int

	gasLimit       uint64
	receiptTimeout time.Duration

	writeMu sync.Mutex
	log     zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.RPCURL == "" || cfg.PrivateKeyHex == "" || cfg.ContractAddress == "" {
		return nil, errors.New("missing chain credentials")
	}

	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, newError(ErrRpcUnavailable, "dial", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
	if err != nil {
		return nil, newError(ErrSigningFailed, "load_key", err)
	}

	chainID, err := eth.ChainID(context.Background())
	if err != nil {
		return nil, newError(ErrRpcUnavailable, "chain_id", err)
	}

	parsed, err := abi.JSON(strings.NewReader(kiranaLedgerABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}

	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
	}
	receiptTimeout := cfg.ReceiptTimeout
	if receiptTimeout == 0 {
		receiptTimeout = defaultReceiptTimeout
	}

	return &Client{
		eth:            eth,
		abi:            parsed,
		key:            key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		contract:       common.HexToAddress(cfg.ContractAddress),
		chainID:        chainID,
		gasLimit:       gasLimit,
		receiptTimeout: receiptTimeout,
		log:            log.With().Str("component", "chain_client").Logger(),
	}, nil
}

func (c *Client) Available() bool { return true }

// SignerAddress is the address writes are sent from; it doubles as the shop
// address when the upstream service does not supply one.
func (c *Client) SignerAddress() string { return c.from.Hex() }

// submit is the one generic write handler: pack, nonce, gas, sign, broadcast,
// then block until a receipt arrives or the receipt timeout elapses.
func (c *Client) submit(ctx context.Context, method string, args ...interface{}) (*CommitResult, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, newError(ErrSigningFailed, method, err)
	}

	signed, err := c.broadcast(ctx, method, data)
	if err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.eth, signed)
	if err != nil {
		if waitCtx.Err() != nil {
			// Failed-not-committed: the chain may still include the tx later.
			return nil, newError(ErrReceiptTimeout, method, err)
		}
		return nil, newError(ErrRpcUnavailable, method, err)
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return nil, newError(ErrContractReverted, method,
			fmt.Errorf("tx %s reverted in block %s", signed.Hash().Hex(), receipt.BlockNumber))
	}

	result := &CommitResult{
		TxHash:      signed.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Int64(),
		GasUsed:     receipt.GasUsed,
	}
	c.log.Info().
		Str("method", method).
		Str("tx_hash", result.TxHash).
		Int64("block", result.BlockNumber).
		Uint64("gas_used", result.GasUsed).
		Msg("chain write committed")
	return result, nil
}

// broadcast holds the write mutex from nonce fetch through SendTransaction so
// concurrent submissions never race on nonce assignment. The receipt wait
// happens outside the lock.
func (c *Client) broadcast(ctx context.Context, method string, data []byte) (*types.Transaction, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, newError(ErrRpcUnavailable, method, err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, newError(ErrRpcUnavailable, method, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.contract,
		Value:    big.NewInt(0),
		Gas:      c.gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, newError(ErrSigningFailed, method, err)
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, newError(ErrRpcUnavailable, method, err)
	}
	return signed, nil
}

func (c *Client) RecordTransaction(ctx context.Context, transcriptHash, shopAddress string, amountMinor int64, txType TxType) (*CommitResult, error) {
	hash, err := hashToBytes32(transcriptHash)
	if err != nil {
		return nil, newError(ErrSigningFailed, "recordTransaction", err)
	}
	return c.submit(ctx, "recordTransaction", hash, c.shopOrSigner(shopAddress), big.NewInt(amountMinor), uint8(txType))
}

func (c *Client) RecordBatchTransactions(ctx context.Context, batchHash, shopAddress string, totalAmountMinor int64) (*CommitResult, error) {
	hash, err := hashToBytes32(batchHash)
	if err != nil {
		return nil, newError(ErrSigningFailed, "recordBatchTransactions", err)
	}
	return c.submit(ctx, "recordBatchTransactions", hash, c.shopOrSigner(shopAddress), big.NewInt(totalAmountMinor))
}

func (c *Client) RegisterShopkeeper(ctx context.Context, shopAddress, name string) (*CommitResult, error) {
	return c.submit(ctx, "registerShopkeeper", c.shopOrSigner(shopAddress), name)
}

func (c *Client) UpdateCreditScore(ctx context.Context, customerAddress string, score int64) (*CommitResult, error) {
	return c.submit(ctx, "updateCreditScore", common.HexToAddress(customerAddress), big.NewInt(score))
}

func (c *Client) CreateCooperative(ctx context.Context, name string) (*CommitResult, error) {
	return c.submit(ctx, "createCooperative", name)
}

func (c *Client) JoinCooperative(ctx context.Context, cooperativeID int64, memberAddress string) (*CommitResult, error) {
	return c.submit(ctx, "joinCooperative", big.NewInt(cooperativeID), common.HexToAddress(memberAddress))
}

func (c *Client) shopOrSigner(shopAddress string) common.Address {
	if shopAddress == "" {
		return c.from
	}
	return common.HexToAddress(shopAddress)
}

// hashToBytes32 decodes a 64-char hex content hash into the contract's
// bytes32 argument.
func hashToBytes32(h string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(h, "0x"))
	if err != nil {
		return out, fmt.Errorf("invalid content hash %q: %w", h, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("content hash must be 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
