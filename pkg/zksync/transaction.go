package zksync

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PaymasterParams selects a paymaster that pays the fee of a transaction.
type PaymasterParams struct {
	Paymaster      common.Address
	PaymasterInput []byte
}

// Meta carries the zkSync specific fields of an EIP-712 transaction. The custom
// signature is deliberately absent: it only exists on SignedTransaction712.
type Meta struct {
	GasPerPubdata   uint64
	FactoryDeps     [][]byte
	PaymasterParams *PaymasterParams
}

// GasPerPubdataLimit returns the configured limit or the protocol default.
func (m Meta) GasPerPubdataLimit() uint64 {
	if m.GasPerPubdata == 0 {
		return DefaultGasPerPubdataLimit
	}
	return m.GasPerPubdata
}

func (m Meta) copy() Meta {
	cpy := Meta{GasPerPubdata: m.GasPerPubdata}
	if m.FactoryDeps != nil {
		cpy.FactoryDeps = make([][]byte, len(m.FactoryDeps))
		for i, dep := range m.FactoryDeps {
			cpy.FactoryDeps[i] = common.CopyBytes(dep)
		}
	}
	if m.PaymasterParams != nil {
		cpy.PaymasterParams = &PaymasterParams{
			Paymaster:      m.PaymasterParams.Paymaster,
			PaymasterInput: common.CopyBytes(m.PaymasterParams.PaymasterInput),
		}
	}
	return cpy
}

// CallIntent is what a caller wants to execute, before any network estimation.
type CallIntent struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
	Meta  Meta
}

// Estimate holds the values obtained from the network for an intent.
type Estimate struct {
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
	ChainID  *big.Int
}

// Transaction712 is an unsigned zkSync EIP-712 transaction. It is the only
// transaction form a digest can be computed over.
type Transaction712 struct {
	From                 common.Address
	To                   common.Address
	Nonce                uint64
	Value                *big.Int
	Data                 []byte
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	ChainID              *big.Int
	Meta                 Meta
}

// NewTransaction creates a partially filled transaction from a call intent.
func NewTransaction(intent CallIntent) *Transaction712 {
	return &Transaction712{
		From:  intent.From,
		To:    intent.To,
		Value: copyBig(intent.Value),
		Data:  common.CopyBytes(intent.Data),
		Meta:  intent.Meta.copy(),
	}
}

// Estimate returns a copy of tx with the network derived fields filled in. Fee
// caps already set on tx are kept; otherwise both caps become the gas price.
func (tx *Transaction712) Estimate(est Estimate) *Transaction712 {
	cpy := tx.Copy()
	cpy.GasLimit = est.GasLimit
	cpy.Nonce = est.Nonce
	cpy.ChainID = copyBig(est.ChainID)
	if cpy.MaxFeePerGas == nil {
		cpy.MaxFeePerGas = copyBig(est.GasPrice)
	}
	if cpy.MaxPriorityFeePerGas == nil {
		cpy.MaxPriorityFeePerGas = copyBig(cpy.MaxFeePerGas)
	}
	return cpy
}

// Copy returns a deep copy of tx.
func (tx *Transaction712) Copy() *Transaction712 {
	return &Transaction712{
		From:                 tx.From,
		To:                   tx.To,
		Nonce:                tx.Nonce,
		Value:                copyBig(tx.Value),
		Data:                 common.CopyBytes(tx.Data),
		GasLimit:             tx.GasLimit,
		MaxFeePerGas:         copyBig(tx.MaxFeePerGas),
		MaxPriorityFeePerGas: copyBig(tx.MaxPriorityFeePerGas),
		ChainID:              copyBig(tx.ChainID),
		Meta:                 tx.Meta.copy(),
	}
}

// Validate checks that every field needed for hashing and encoding is present.
func (tx *Transaction712) Validate() error {
	switch {
	case tx.ChainID == nil || tx.ChainID.Sign() <= 0:
		return fmt.Errorf("%w: missing chain id", ErrIncompleteTransaction)
	case tx.GasLimit == 0:
		return fmt.Errorf("%w: missing gas limit", ErrIncompleteTransaction)
	case tx.MaxFeePerGas == nil || tx.MaxPriorityFeePerGas == nil:
		return fmt.Errorf("%w: missing fee caps", ErrIncompleteTransaction)
	case tx.Value != nil && tx.Value.Sign() < 0:
		return fmt.Errorf("%w: negative value", ErrIncompleteTransaction)
	}
	return nil
}

// WithCustomSignature finalizes tx for an account-abstraction sender. The
// signature goes into the custom signature slot and is checked by the
// account's own validation code.
func (tx *Transaction712) WithCustomSignature(sig []byte) (*SignedTransaction712, error) {
	if len(sig) == 0 {
		return nil, ErrEmptySignature
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return &SignedTransaction712{
		tx:              *tx.Copy(),
		customSignature: common.CopyBytes(sig),
	}, nil
}

// WithSignature finalizes tx for an externally owned sender; the signature is
// carried in the v, r, s fields of the envelope.
func (tx *Transaction712) WithSignature(sig Signature) (*SignedTransaction712, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if sig.RecoveryID() > 1 {
		return nil, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig.RecoveryID())
	}
	return &SignedTransaction712{
		tx:        *tx.Copy(),
		signature: &sig,
	}, nil
}

// SignedTransaction712 is a finalized transaction. It cannot be modified and
// has no digest of its own; Unsigned returns the transaction it was signed over.
type SignedTransaction712 struct {
	tx              Transaction712
	customSignature []byte
	signature       *Signature
}

// Unsigned returns a copy of the transaction without its signature.
func (s *SignedTransaction712) Unsigned() *Transaction712 { return s.tx.Copy() }

func (s *SignedTransaction712) From() common.Address { return s.tx.From }
func (s *SignedTransaction712) To() common.Address   { return s.tx.To }
func (s *SignedTransaction712) Nonce() uint64        { return s.tx.Nonce }
func (s *SignedTransaction712) Value() *big.Int      { return bigOrZero(s.tx.Value) }
func (s *SignedTransaction712) Data() []byte         { return common.CopyBytes(s.tx.Data) }
func (s *SignedTransaction712) ChainID() *big.Int    { return copyBig(s.tx.ChainID) }

// CustomSignature returns the account-abstraction signature, or nil.
func (s *SignedTransaction712) CustomSignature() []byte {
	return common.CopyBytes(s.customSignature)
}

// Signature returns the externally owned account signature, if any.
func (s *SignedTransaction712) Signature() (Signature, bool) {
	if s.signature == nil {
		return Signature{}, false
	}
	return *s.signature, true
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
