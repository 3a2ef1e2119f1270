package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
	"github.com/samber/lo"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
	"github.com/trebuchet-org/aadeploy/pkg/zksync"
)

const defaultPollInterval = 2 * time.Second

// Client implements usecase.Network against a zkSync JSON-RPC endpoint.
// The connection is opened on first use so commands that never touch the
// network work without one configured.
type Client struct {
	network      *config.Network
	pollInterval time.Duration
	log          *slog.Logger

	mu  sync.Mutex
	raw *gethrpc.Client
	eth *ethclient.Client
	w3  *w3.Client
}

// NewClient creates a new RPC client for the configured network
func NewClient(cfg *config.RuntimeConfig, log *slog.Logger) *Client {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Client{
		network:      cfg.Network,
		pollInterval: interval,
		log:          log,
	}
}

// ProvideClient creates the client along with a cleanup that closes it
func ProvideClient(cfg *config.RuntimeConfig, log *slog.Logger) (*Client, func()) {
	c := NewClient(cfg, log)
	return c, c.Close
}

func (c *Client) connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.raw != nil {
		return nil
	}
	if c.network == nil || c.network.RPCURL == "" {
		return fmt.Errorf("no network configured: use --network or set AADEPLOY_NETWORK")
	}

	raw, err := gethrpc.DialContext(ctx, c.network.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}
	c.raw = raw
	c.eth = ethclient.NewClient(raw)
	c.w3 = w3.NewClient(raw)
	c.log.Debug("connected to rpc", "network", c.network.Name, "url", c.network.RPCURL)
	return nil
}

// Close releases the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.raw != nil {
		c.raw.Close()
		c.raw = nil
	}
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	var chainID uint64
	if err := c.w3.CallCtx(ctx, eth.ChainID().Returns(&chainID)); err != nil {
		return nil, fmt.Errorf("eth_chainId: %w", err)
	}
	return new(big.Int).SetUint64(chainID), nil
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	var price *big.Int
	if err := c.w3.CallCtx(ctx, eth.GasPrice().Returns(&price)); err != nil {
		return nil, fmt.Errorf("eth_gasPrice: %w", err)
	}
	return price, nil
}

func (c *Client) NonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if err := c.connect(ctx); err != nil {
		return 0, err
	}
	var nonce uint64
	if err := c.w3.CallCtx(ctx, eth.Nonce(account, nil).Returns(&nonce)); err != nil {
		return 0, fmt.Errorf("eth_getTransactionCount: %w", err)
	}
	return nonce, nil
}

func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	var balance *big.Int
	if err := c.w3.CallCtx(ctx, eth.Balance(account, nil).Returns(&balance)); err != nil {
		return nil, fmt.Errorf("eth_getBalance: %w", err)
	}
	return balance, nil
}

func (c *Client) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	code, err := c.eth.CodeAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getCode: %w", err)
	}
	return code, nil
}

func (c *Client) Call(ctx context.Context, req usecase.CallRequest) ([]byte, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	out, err := c.eth.CallContract(ctx, callMsg(req), nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call: %w", err)
	}
	return out, nil
}

// EstimateGas estimates plain calls with eth_estimateGas. Requests carrying
// EIP-712 meta are estimated as type 113 transactions so factory deps and the
// pubdata limit are accounted for.
func (c *Client) EstimateGas(ctx context.Context, req usecase.CallRequest) (uint64, error) {
	if err := c.connect(ctx); err != nil {
		return 0, err
	}
	if req.Meta == nil {
		gas, err := c.eth.EstimateGas(ctx, callMsg(req))
		if err != nil {
			return 0, rejection(common.Hash{}, err)
		}
		return gas, nil
	}

	var gas hexutil.Uint64
	if err := c.raw.CallContext(ctx, &gas, "eth_estimateGas", newEIP712Call(req)); err != nil {
		return 0, rejection(common.Hash{}, err)
	}
	return uint64(gas), nil
}

func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	if err := c.connect(ctx); err != nil {
		return common.Hash{}, err
	}
	var hash common.Hash
	if err := c.w3.CallCtx(ctx, eth.SendRawTx(raw).Returns(&hash)); err != nil {
		return common.Hash{}, rejection(common.Hash{}, err)
	}
	return hash, nil
}

// WaitForReceipt polls for the receipt until it appears or ctx is done. A
// context deadline is reported as domain.ErrConfirmationTimeout.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash) (*models.Receipt, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var receipt *rpcReceipt
		err := c.raw.CallContext(ctx, &receipt, "eth_getTransactionReceipt", hash)
		switch {
		case err == nil && receipt != nil && receipt.BlockNumber != nil:
			return receipt.toModel(), nil
		case err != nil && ctx.Err() == nil:
			c.log.Debug("receipt poll failed", "tx", hash, "error", err)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", domain.ErrConfirmationTimeout, hash.Hex())
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func callMsg(req usecase.CallRequest) ethereum.CallMsg {
	to := req.To
	return ethereum.CallMsg{
		From:  req.From,
		To:    &to,
		Value: req.Value,
		Data:  req.Data,
	}
}

func rejection(hash common.Hash, err error) error {
	reason := err.Error()
	var dataErr gethrpc.DataError
	if errors.As(err, &dataErr) {
		if data, ok := dataErr.ErrorData().(string); ok && data != "" {
			reason = fmt.Sprintf("%s (%s)", reason, data)
		}
	}
	return &domain.NetworkRejectionError{TxHash: hash, Reason: reason}
}

// eip712Call is the eth_estimateGas request object for type 113 transactions
type eip712Call struct {
	From       common.Address  `json:"from"`
	To         common.Address  `json:"to"`
	Data       hexutil.Bytes   `json:"data,omitempty"`
	Value      *hexutil.Big    `json:"value,omitempty"`
	Type       hexutil.Uint64  `json:"type"`
	EIP712Meta eip712MetaField `json:"eip712Meta"`
}

type eip712MetaField struct {
	GasPerPubdata   hexutil.Uint64       `json:"gasPerPubdata"`
	FactoryDeps     [][]uint16           `json:"factoryDeps,omitempty"`
	PaymasterParams *paymasterParamsJSON `json:"paymasterParams,omitempty"`
}

type paymasterParamsJSON struct {
	Paymaster      common.Address `json:"paymaster"`
	PaymasterInput []uint16       `json:"paymasterInput"`
}

// byteArray spells bytes as a JSON array of numbers, the form zkSync nodes
// accept for factory deps.
func byteArray(b []byte) []uint16 {
	return lo.Map(b, func(v byte, _ int) uint16 { return uint16(v) })
}

func newEIP712Call(req usecase.CallRequest) eip712Call {
	call := eip712Call{
		From: req.From,
		To:   req.To,
		Data: req.Data,
		Type: hexutil.Uint64(zksync.EIP712TxType),
		EIP712Meta: eip712MetaField{
			GasPerPubdata: hexutil.Uint64(req.Meta.GasPerPubdataLimit()),
			FactoryDeps: lo.Map(req.Meta.FactoryDeps, func(dep []byte, _ int) []uint16 {
				return byteArray(dep)
			}),
		},
	}
	if req.Value != nil {
		call.Value = (*hexutil.Big)(req.Value)
	}
	if pm := req.Meta.PaymasterParams; pm != nil {
		call.EIP712Meta.PaymasterParams = &paymasterParamsJSON{
			Paymaster:      pm.Paymaster,
			PaymasterInput: byteArray(pm.PaymasterInput),
		}
	}
	return call
}

// rpcReceipt keeps the receipt fields the deployment needs. zkSync receipts
// carry extra fields that go-ethereum's receipt decoder does not expect.
type rpcReceipt struct {
	TransactionHash common.Hash     `json:"transactionHash"`
	BlockNumber     *hexutil.Big    `json:"blockNumber"`
	Status          hexutil.Uint64  `json:"status"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	ContractAddress *common.Address `json:"contractAddress"`
	Logs            []*types.Log    `json:"logs"`
}

func (r *rpcReceipt) toModel() *models.Receipt {
	receipt := &models.Receipt{
		TxHash:  r.TransactionHash,
		Status:  uint64(r.Status),
		GasUsed: uint64(r.GasUsed),
		Logs:    r.Logs,
	}
	if r.BlockNumber != nil {
		receipt.BlockNumber = r.BlockNumber.ToInt().Uint64()
	}
	if r.ContractAddress != nil {
		receipt.ContractAddress = *r.ContractAddress
	}
	return receipt
}

var _ usecase.Network = (*Client)(nil)
