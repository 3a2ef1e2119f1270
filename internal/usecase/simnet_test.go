package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
	"github.com/trebuchet-org/aadeploy/pkg/zksync"
)

var (
	selCreate2        = crypto.Keccak256([]byte("create2(bytes32,bytes32,bytes)"))[:4]
	selDeployAccount  = crypto.Keccak256([]byte("deployAccount(bytes32,address)"))[:4]
	selAABytecodeHash = crypto.Keccak256([]byte("aaBytecodeHash()"))[:4]
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

var (
	create2Args       = abi.Arguments{{Type: mustType("bytes32")}, {Type: mustType("bytes32")}, {Type: mustType("bytes")}}
	deployAccountArgs = abi.Arguments{{Type: mustType("bytes32")}, {Type: mustType("address")}}
)

// simNetwork is an in-memory zkSync node. It decodes every submitted
// transaction, checks its signature over the recomputed digest, enforces
// nonces and executes the few calls the deployment makes.
type simNetwork struct {
	chainID  *big.Int
	gasPrice *big.Int

	balances  map[common.Address]*big.Int
	nonces    map[common.Address]uint64
	code      map[common.Address][]byte
	factories map[common.Address]common.Hash
	owners    map[common.Address]common.Address
	receipts  map[common.Hash]*models.Receipt
	seen      map[common.Hash]bool

	sent [][]byte

	// failure knobs
	// receipts of the holdFrom-th and later transactions never arrive
	holdFrom        uint64
	shiftAccounts   bool
	skipNonceBump   bool
	revertFactories bool
}

func newSimNetwork(chainID int64) *simNetwork {
	return &simNetwork{
		chainID:   big.NewInt(chainID),
		gasPrice:  big.NewInt(25_000_000),
		balances:  make(map[common.Address]*big.Int),
		nonces:    make(map[common.Address]uint64),
		code:      make(map[common.Address][]byte),
		factories: make(map[common.Address]common.Hash),
		owners:    make(map[common.Address]common.Address),
		receipts:  make(map[common.Hash]*models.Receipt),
		seen:      make(map[common.Hash]bool),
	}
}

var _ usecase.Network = (*simNetwork)(nil)

func (n *simNetwork) fund(addr common.Address, wei *big.Int) {
	n.balances[addr] = new(big.Int).Add(n.balance(addr), wei)
}

func (n *simNetwork) balance(addr common.Address) *big.Int {
	if b, ok := n.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (n *simNetwork) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(n.chainID), nil
}
func (n *simNetwork) GasPrice(context.Context) (*big.Int, error) {
	return new(big.Int).Set(n.gasPrice), nil
}

func (n *simNetwork) EstimateGas(_ context.Context, req usecase.CallRequest) (uint64, error) {
	if req.Meta == nil {
		return 21_000, nil
	}
	return 2_000_000, nil
}

func (n *simNetwork) NonceAt(_ context.Context, addr common.Address) (uint64, error) {
	return n.nonces[addr], nil
}

func (n *simNetwork) BalanceAt(_ context.Context, addr common.Address) (*big.Int, error) {
	return n.balance(addr), nil
}

func (n *simNetwork) CodeAt(_ context.Context, addr common.Address) ([]byte, error) {
	return common.CopyBytes(n.code[addr]), nil
}

func (n *simNetwork) Call(_ context.Context, req usecase.CallRequest) ([]byte, error) {
	hash, ok := n.factories[req.To]
	if !ok || !bytes.Equal(req.Data, selAABytecodeHash) {
		return nil, fmt.Errorf("execution reverted")
	}
	return hash.Bytes(), nil
}

func (n *simNetwork) WaitForReceipt(_ context.Context, hash common.Hash) (*models.Receipt, error) {
	receipt, ok := n.receipts[hash]
	if !ok || (n.holdFrom > 0 && receipt.BlockNumber >= n.holdFrom) {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfirmationTimeout, hash.Hex())
	}
	return receipt, nil
}

func (n *simNetwork) reject(reason string) error {
	return &domain.NetworkRejectionError{Reason: reason}
}

func (n *simNetwork) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	hash := crypto.Keccak256Hash(raw)
	if n.seen[hash] {
		return common.Hash{}, n.reject("known transaction")
	}

	var (
		logs []*types.Log
		err  error
	)
	switch {
	case len(raw) > 0 && raw[0] == zksync.EIP712TxType:
		logs, err = n.execute712(raw)
	case len(raw) > 0 && raw[0] == types.DynamicFeeTxType:
		err = n.executeTransfer(raw)
	default:
		err = n.reject("unsupported transaction type")
	}
	if err != nil {
		if _, ok := err.(*domain.NetworkRejectionError); ok {
			return common.Hash{}, err
		}
		// accepted but reverted
		n.seen[hash] = true
		n.sent = append(n.sent, raw)
		n.receipts[hash] = &models.Receipt{TxHash: hash, BlockNumber: uint64(len(n.sent)), Status: types.ReceiptStatusFailed}
		return hash, nil
	}

	n.seen[hash] = true
	n.sent = append(n.sent, raw)
	n.receipts[hash] = &models.Receipt{
		TxHash:      hash,
		BlockNumber: uint64(len(n.sent)),
		Status:      types.ReceiptStatusSuccessful,
		Logs:        logs,
	}
	return hash, nil
}

func (n *simNetwork) execute712(raw []byte) ([]*types.Log, error) {
	signed, err := zksync.DecodeTransaction712(raw)
	if err != nil {
		return nil, n.reject(err.Error())
	}
	tx := signed.Unsigned()
	if tx.ChainID.Cmp(n.chainID) != 0 {
		return nil, n.reject("wrong chain id")
	}
	digest, err := tx.Digest()
	if err != nil {
		return nil, n.reject(err.Error())
	}

	if sig, ok := signed.Signature(); ok {
		signer, err := zksync.RecoverAddress(digest, sig[:])
		if err != nil || signer != tx.From {
			return nil, n.reject("invalid sender signature")
		}
	} else {
		owner, isAccount := n.owners[tx.From]
		if !isAccount {
			return nil, n.reject("custom signature from a non-account sender")
		}
		signer, err := zksync.RecoverAddress(digest, signed.CustomSignature())
		if err != nil || signer != owner {
			return nil, n.reject("account validation failed")
		}
	}

	if err := n.chargeAndBump(tx.From, tx.Nonce, tx.GasLimit, tx.MaxFeePerGas, tx.Value); err != nil {
		return nil, err
	}

	deps := make(map[common.Hash]bool)
	for _, dep := range tx.Meta.FactoryDeps {
		h, err := zksync.HashBytecode(dep)
		if err != nil {
			return nil, n.reject(err.Error())
		}
		deps[h] = true
	}

	switch {
	case tx.To == zksync.ContractDeployerAddress:
		return n.create2(tx.From, tx.Data, deps)
	case n.factories[tx.To] != (common.Hash{}):
		return n.deployAccount(tx.To, tx.Data)
	default:
		n.fund(tx.To, bigOr0(tx.Value))
		return nil, nil
	}
}

func (n *simNetwork) create2(sender common.Address, data []byte, deps map[common.Hash]bool) ([]*types.Log, error) {
	if n.revertFactories || len(data) < 4 || !bytes.Equal(data[:4], selCreate2) {
		return nil, fmt.Errorf("revert")
	}
	values, err := create2Args.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	salt := values[0].([32]byte)
	bytecodeHash := values[1].([32]byte)
	input := values[2].([]byte)
	if !deps[bytecodeHash] {
		return nil, fmt.Errorf("bytecode not published")
	}

	addr := deployerCreate2(sender, salt, bytecodeHash, input)
	if len(n.code[addr]) > 0 {
		return nil, fmt.Errorf("address occupied")
	}
	n.code[addr] = []byte{0x01}
	n.factories[addr] = common.BytesToHash(input[:32])
	return []*types.Log{deployedLog(sender, bytecodeHash, addr)}, nil
}

func (n *simNetwork) deployAccount(factory common.Address, data []byte) ([]*types.Log, error) {
	if len(data) < 4 || !bytes.Equal(data[:4], selDeployAccount) {
		return nil, fmt.Errorf("revert")
	}
	values, err := deployAccountArgs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	salt := values[0].([32]byte)
	owner := values[1].(common.Address)

	hash := n.factories[factory]
	addr := deployerCreate2(factory, salt, hash, common.LeftPadBytes(owner.Bytes(), 32))
	if n.shiftAccounts {
		addr[19] ^= 0xff
	}
	if len(n.code[addr]) > 0 {
		return nil, fmt.Errorf("address occupied")
	}
	n.code[addr] = []byte{0x02}
	n.owners[addr] = owner
	return []*types.Log{deployedLog(factory, hash, addr)}, nil
}

// deployerCreate2 derives addresses the way the ContractDeployer system
// contract does (getNewAddressCreate2): salt precedes the bytecode hash.
func deployerCreate2(sender common.Address, salt, bytecodeHash [32]byte, input []byte) common.Address {
	hash := crypto.Keccak256(
		crypto.Keccak256([]byte("zksyncCreate2")),
		common.LeftPadBytes(sender.Bytes(), 32),
		salt[:],
		bytecodeHash[:],
		crypto.Keccak256(input),
	)
	return common.BytesToAddress(hash[12:])
}

func deployedLog(deployer common.Address, bytecodeHash common.Hash, contract common.Address) *types.Log {
	return &types.Log{
		Address: zksync.ContractDeployerAddress,
		Topics: []common.Hash{
			crypto.Keccak256Hash([]byte("ContractDeployed(address,bytes32,address)")),
			common.BytesToHash(deployer.Bytes()),
			bytecodeHash,
			common.BytesToHash(contract.Bytes()),
		},
	}
}

func (n *simNetwork) executeTransfer(raw []byte) error {
	var tx types.Transaction
	if err := tx.UnmarshalBinary(raw); err != nil {
		return n.reject(err.Error())
	}
	if tx.ChainId().Cmp(n.chainID) != 0 {
		return n.reject("wrong chain id")
	}
	from, err := types.Sender(types.LatestSignerForChainID(n.chainID), &tx)
	if err != nil {
		return n.reject("invalid sender signature")
	}
	if err := n.chargeAndBump(from, tx.Nonce(), tx.Gas(), tx.GasFeeCap(), tx.Value()); err != nil {
		return err
	}
	n.fund(*tx.To(), tx.Value())
	return nil
}

func (n *simNetwork) chargeAndBump(from common.Address, nonce, gas uint64, feeCap, value *big.Int) error {
	if nonce != n.nonces[from] {
		return n.reject(fmt.Sprintf("nonce %d, expected %d", nonce, n.nonces[from]))
	}
	cost := new(big.Int).Mul(new(big.Int).SetUint64(gas), feeCap)
	cost.Add(cost, bigOr0(value))
	if n.balance(from).Cmp(cost) < 0 {
		return n.reject("insufficient funds")
	}
	n.balances[from] = new(big.Int).Sub(n.balance(from), cost)
	if !n.skipNonceBump {
		n.nonces[from]++
	}
	return nil
}

func bigOr0(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// memoryStore keeps records as JSON, like the file store does.
type memoryStore struct {
	records map[string][]byte
	saves   int
}

func newMemoryStore() *memoryStore { return &memoryStore{records: make(map[string][]byte)} }

var _ usecase.DeploymentStore = (*memoryStore)(nil)

func (s *memoryStore) Load(_ context.Context, name string) (*models.AccountDeployment, error) {
	data, ok := s.records[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var d models.AccountDeployment
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *memoryStore) Save(_ context.Context, d *models.AccountDeployment) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	s.records[d.Name] = data
	s.saves++
	return nil
}

func (s *memoryStore) List(ctx context.Context) ([]*models.AccountDeployment, error) {
	var out []*models.AccountDeployment
	for name := range s.records {
		d, err := s.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *memoryStore) Delete(_ context.Context, name string) error {
	if _, ok := s.records[name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, name)
	return nil
}

type staticArtifacts map[string][]byte

func (a staticArtifacts) Load(_ context.Context, name string) (*models.Contract, error) {
	code, ok := a[name]
	if !ok {
		return nil, fmt.Errorf("%w: artifact %s", domain.ErrNotFound, name)
	}
	return &models.Contract{
		Name: name,
		Artifact: &models.Artifact{
			ContractName: name,
			Bytecode:     models.BytecodeObject{Object: "0x" + common.Bytes2Hex(code)},
		},
	}, nil
}

type staticSigners struct {
	deployer zksync.Signer
	owner    zksync.Signer
}

func (s staticSigners) Deployer() (zksync.Signer, error) { return s.deployer, nil }
func (s staticSigners) Owner() (zksync.Signer, error)    { return s.owner, nil }

func testSigner(t *testing.T, hexKey string) *zksync.PrivateKeySigner {
	t.Helper()
	signer, err := zksync.NewPrivateKeySignerFromHex(hexKey)
	require.NoError(t, err)
	return signer
}

// bytecode returns a valid zkSync bytecode of the given odd word count.
func bytecode(words int, fill byte) []byte {
	return bytes.Repeat([]byte{fill}, words*32)
}
