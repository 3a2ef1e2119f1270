package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DeploymentState is a step of the account deployment flow.
type DeploymentState string

const (
	StateFactoryPending  DeploymentState = "FactoryPending"
	StateFactoryDeployed DeploymentState = "FactoryDeployed"
	StateAccountPending  DeploymentState = "AccountPending"
	StateAccountDeployed DeploymentState = "AccountDeployed"
	StateFundsPending    DeploymentState = "FundsPending"
	StateFundsConfirmed  DeploymentState = "FundsConfirmed"
	StateSelfTxPending   DeploymentState = "SelfTxPending"
	StateSelfTxConfirmed DeploymentState = "SelfTxConfirmed"
)

var stateOrder = []DeploymentState{
	StateFactoryPending,
	StateFactoryDeployed,
	StateAccountPending,
	StateAccountDeployed,
	StateFundsPending,
	StateFundsConfirmed,
	StateSelfTxPending,
	StateSelfTxConfirmed,
}

// States returns every state in flow order.
func States() []DeploymentState {
	out := make([]DeploymentState, len(stateOrder))
	copy(out, stateOrder)
	return out
}

// Index returns the position of s in the flow, or -1 for unknown states.
func (s DeploymentState) Index() int {
	for i, st := range stateOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s DeploymentState) Valid() bool { return s.Index() >= 0 }

// Next returns the state following s. The terminal state is its own successor.
func (s DeploymentState) Next() DeploymentState {
	i := s.Index()
	if i < 0 || i == len(stateOrder)-1 {
		return s
	}
	return stateOrder[i+1]
}

func (s DeploymentState) IsTerminal() bool { return s == StateSelfTxConfirmed }

// IsPending reports whether s waits on a submitted transaction.
func (s DeploymentState) IsPending() bool {
	switch s {
	case StateFactoryPending, StateAccountPending, StateFundsPending, StateSelfTxPending:
		return true
	}
	return false
}

// AccountDeployment is the persisted record of one account deployment run.
type AccountDeployment struct {
	Name    string          `json:"name"`
	ChainID uint64          `json:"chainId"`
	State   DeploymentState `json:"state"`

	Deployer      common.Address `json:"deployer"`
	Owner         common.Address `json:"owner"`
	Salt          common.Hash    `json:"salt"`
	SelfTxSalt    common.Hash    `json:"selfTxSalt"`
	FactorySalt   common.Hash    `json:"factorySalt"`
	FundingAmount *big.Int       `json:"fundingAmount"`

	FactoryAddress common.Address `json:"factoryAddress"`
	// ExistingFactory is set when the run adopted an already deployed factory.
	ExistingFactory     bool           `json:"existingFactory,omitempty"`
	FactoryBytecodeHash common.Hash    `json:"factoryBytecodeHash"`
	AccountBytecodeHash common.Hash    `json:"accountBytecodeHash"`
	AccountAddress      common.Address `json:"accountAddress"`
	ChildAccountAddress common.Address `json:"childAccountAddress"`

	// Transactions holds the hash submitted in each pending state.
	Transactions map[DeploymentState]common.Hash `json:"transactions"`

	BalanceBefore *big.Int `json:"balanceBefore,omitempty"`
	BalanceAfter  *big.Int `json:"balanceAfter,omitempty"`
	NonceBefore   *uint64  `json:"nonceBefore,omitempty"`
	NonceAfter    *uint64  `json:"nonceAfter,omitempty"`

	LastError string    `json:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordTx stores the transaction hash submitted in state.
func (d *AccountDeployment) RecordTx(state DeploymentState, hash common.Hash) {
	if d.Transactions == nil {
		d.Transactions = make(map[DeploymentState]common.Hash)
	}
	d.Transactions[state] = hash
}

// TxFor returns the transaction hash recorded for state.
func (d *AccountDeployment) TxFor(state DeploymentState) (common.Hash, bool) {
	hash, ok := d.Transactions[state]
	return hash, ok && hash != (common.Hash{})
}

// ForgetTx drops the hash recorded for state so the step is submitted again.
func (d *AccountDeployment) ForgetTx(state DeploymentState) {
	delete(d.Transactions, state)
}

// Reached reports whether the deployment has progressed to state or beyond.
func (d *AccountDeployment) Reached(state DeploymentState) bool {
	return d.State.Index() >= state.Index()
}
