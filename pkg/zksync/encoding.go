package zksync

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// rlpTransaction712 mirrors the field order of the serialized envelope.
type rlpTransaction712 struct {
	Nonce                uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	GasLimit             uint64
	To                   common.Address
	Value                *big.Int
	Data                 []byte
	V                    *big.Int // recovery id, or chain id when unsigned
	R                    *big.Int
	S                    *big.Int
	ChainID              *big.Int
	From                 common.Address
	GasPerPubdata        uint64
	FactoryDeps          [][]byte
	CustomSignature      []byte
	PaymasterParams      rlpPaymasterParams
}

type rlpPaymasterParams struct {
	Paymaster      []byte `rlp:"optional"`
	PaymasterInput []byte `rlp:"optional"`
}

// MarshalBinary returns the network encoding of the transaction:
// 0x71 ‖ rlp([nonce, maxPriorityFeePerGas, maxFeePerGas, gasLimit, to, value,
// data, v, r, s, chainId, from, gasPerPubdata, factoryDeps, customSignature,
// paymasterParams]).
func (s *SignedTransaction712) MarshalBinary() ([]byte, error) {
	tx := &s.tx

	fields := []interface{}{
		tx.Nonce,
		bigOrZero(tx.MaxPriorityFeePerGas),
		bigOrZero(tx.MaxFeePerGas),
		tx.GasLimit,
		tx.To,
		bigOrZero(tx.Value),
		nonNilBytes(tx.Data),
	}
	if s.signature != nil {
		fields = append(fields, uint64(s.signature.RecoveryID()), s.signature.R(), s.signature.S())
	} else {
		fields = append(fields, bigOrZero(tx.ChainID), []byte{}, []byte{})
	}

	deps := tx.Meta.FactoryDeps
	if deps == nil {
		deps = [][]byte{}
	}
	paymaster := []interface{}{}
	if pm := tx.Meta.PaymasterParams; pm != nil {
		paymaster = []interface{}{pm.Paymaster, nonNilBytes(pm.PaymasterInput)}
	}

	fields = append(fields,
		bigOrZero(tx.ChainID),
		tx.From,
		tx.Meta.GasPerPubdataLimit(),
		deps,
		nonNilBytes(s.customSignature),
		paymaster,
	)

	payload, err := rlp.EncodeToBytes(fields)
	if err != nil {
		return nil, fmt.Errorf("rlp encode transaction: %w", err)
	}
	return append([]byte{EIP712TxType}, payload...), nil
}

// DecodeTransaction712 parses a serialized EIP-712 transaction. The result is
// the same finalized transaction MarshalBinary was called on. Fields are taken
// as they appear on the wire; only the signature is checked.
func DecodeTransaction712(raw []byte) (*SignedTransaction712, error) {
	if len(raw) == 0 || raw[0] != EIP712TxType {
		return nil, fmt.Errorf("%w: not an EIP-712 transaction", ErrInvalidEncoding)
	}

	var dec rlpTransaction712
	if err := rlp.DecodeBytes(raw[1:], &dec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	tx := Transaction712{
		From:                 dec.From,
		To:                   dec.To,
		Nonce:                dec.Nonce,
		Value:                dec.Value,
		Data:                 dec.Data,
		GasLimit:             dec.GasLimit,
		MaxFeePerGas:         dec.MaxFeePerGas,
		MaxPriorityFeePerGas: dec.MaxPriorityFeePerGas,
		ChainID:              dec.ChainID,
		Meta: Meta{
			GasPerPubdata: dec.GasPerPubdata,
			FactoryDeps:   dec.FactoryDeps,
		},
	}
	if len(tx.Meta.FactoryDeps) == 0 {
		tx.Meta.FactoryDeps = nil
	}
	if pm := dec.PaymasterParams; len(pm.Paymaster) > 0 {
		if len(pm.Paymaster) != common.AddressLength {
			return nil, fmt.Errorf("%w: paymaster address has %d bytes", ErrInvalidEncoding, len(pm.Paymaster))
		}
		tx.Meta.PaymasterParams = &PaymasterParams{
			Paymaster:      common.BytesToAddress(pm.Paymaster),
			PaymasterInput: pm.PaymasterInput,
		}
	}

	if len(dec.CustomSignature) > 0 {
		return &SignedTransaction712{tx: tx, customSignature: dec.CustomSignature}, nil
	}
	if dec.R.Sign() == 0 && dec.S.Sign() == 0 {
		return nil, fmt.Errorf("%w: transaction carries no signature", ErrInvalidEncoding)
	}
	if dec.R.BitLen() > 256 || dec.S.BitLen() > 256 {
		return nil, fmt.Errorf("%w: signature values exceed 32 bytes", ErrInvalidSignature)
	}
	if !dec.V.IsUint64() || dec.V.Uint64() > 1 {
		return nil, fmt.Errorf("%w: recovery id %s", ErrInvalidSignature, dec.V)
	}

	var sig Signature
	dec.R.FillBytes(sig[0:32])
	dec.S.FillBytes(sig[32:64])
	sig[64] = byte(dec.V.Uint64())
	return &SignedTransaction712{tx: tx, signature: &sig}, nil
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
