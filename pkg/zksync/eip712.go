package zksync

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/samber/lo"
)

const (
	eip712DomainName    = "zkSync"
	eip712DomainVersion = "2"
	eip712PrimaryType   = "Transaction"
)

// eip712Types is the schema the bootloader hashes a transaction with. Field
// order is part of the type hash and must not change.
var eip712Types = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
	},
	eip712PrimaryType: {
		{Name: "txType", Type: "uint256"},
		{Name: "from", Type: "uint256"},
		{Name: "to", Type: "uint256"},
		{Name: "gasLimit", Type: "uint256"},
		{Name: "gasPerPubdataByteLimit", Type: "uint256"},
		{Name: "maxFeePerGas", Type: "uint256"},
		{Name: "maxPriorityFeePerGas", Type: "uint256"},
		{Name: "paymaster", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "value", Type: "uint256"},
		{Name: "data", Type: "bytes"},
		{Name: "factoryDeps", Type: "bytes32[]"},
		{Name: "paymasterInput", Type: "bytes"},
	},
}

// TypedData returns the EIP-712 typed data representation of tx.
func (tx *Transaction712) TypedData() (apitypes.TypedData, error) {
	if err := tx.Validate(); err != nil {
		return apitypes.TypedData{}, err
	}

	depHashes := make([]common.Hash, 0, len(tx.Meta.FactoryDeps))
	for i, dep := range tx.Meta.FactoryDeps {
		hash, err := HashBytecode(dep)
		if err != nil {
			return apitypes.TypedData{}, fmt.Errorf("factory dep %d: %w", i, err)
		}
		depHashes = append(depHashes, hash)
	}

	var (
		paymaster      common.Address
		paymasterInput = []byte{}
	)
	if pm := tx.Meta.PaymasterParams; pm != nil {
		paymaster = pm.Paymaster
		paymasterInput = common.CopyBytes(pm.PaymasterInput)
	}

	data := tx.Data
	if data == nil {
		data = []byte{}
	}

	return apitypes.TypedData{
		Types:       eip712Types,
		PrimaryType: eip712PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:    eip712DomainName,
			Version: eip712DomainVersion,
			ChainId: (*math.HexOrDecimal256)(copyBig(tx.ChainID)),
		},
		Message: apitypes.TypedDataMessage{
			"txType":                 new(big.Int).SetUint64(uint64(EIP712TxType)),
			"from":                   addressToUint(tx.From),
			"to":                     addressToUint(tx.To),
			"gasLimit":               new(big.Int).SetUint64(tx.GasLimit),
			"gasPerPubdataByteLimit": new(big.Int).SetUint64(tx.Meta.GasPerPubdataLimit()),
			"maxFeePerGas":           copyBig(tx.MaxFeePerGas),
			"maxPriorityFeePerGas":   copyBig(tx.MaxPriorityFeePerGas),
			"paymaster":              addressToUint(paymaster),
			"nonce":                  new(big.Int).SetUint64(tx.Nonce),
			"value":                  bigOrZero(tx.Value),
			"data":                   common.CopyBytes(data),
			// array items are hex strings: byte slices would be walked as nested arrays
			"factoryDeps": lo.Map(depHashes, func(h common.Hash, _ int) interface{} {
				return h.Hex()
			}),
			"paymasterInput": paymasterInput,
		},
	}, nil
}

// Digest returns the EIP-712 signing digest of tx:
// keccak256("\x19\x01" ‖ domainSeparator ‖ hashStruct(tx)).
func (tx *Transaction712) Digest() (common.Hash, error) {
	typedData, err := tx.TypedData()
	if err != nil {
		return common.Hash{}, err
	}
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return common.Hash{}, fmt.Errorf("hash typed data: %w", err)
	}
	return common.BytesToHash(hash), nil
}

func addressToUint(addr common.Address) *big.Int {
	return new(big.Int).SetBytes(addr.Bytes())
}
