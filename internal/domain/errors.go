package domain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrNetworkMismatch is returned when the connected chain differs from the recorded one
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrInputValidation is returned for malformed caller input: keys, salts, bytecode, ABI arguments
	ErrInputValidation = errors.New("input validation failed")

	// ErrDerivationMismatch is returned when a deployed address differs from the predicted one
	ErrDerivationMismatch = errors.New("derivation mismatch")

	// ErrNetworkRejection is returned when the network refuses or reverts a transaction
	ErrNetworkRejection = errors.New("network rejected transaction")

	// ErrConfirmationTimeout is returned when no receipt arrives before the deadline
	ErrConfirmationTimeout = errors.New("confirmation timeout")

	// ErrStateMismatch is returned when observed balances or nonces differ from expectations
	ErrStateMismatch = errors.New("state mismatch")

	// ErrInsufficientFunds is returned when the deployer cannot pay for a step
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// NetworkRejectionError carries the reason the network gave for refusing or
// reverting a transaction. TxHash is zero when the transaction never made it
// into the mempool.
type NetworkRejectionError struct {
	TxHash common.Hash
	Reason string
	Err    error
}

func (e *NetworkRejectionError) Error() string {
	msg := "network rejected transaction"
	if e.TxHash != (common.Hash{}) {
		msg = fmt.Sprintf("transaction %s rejected", e.TxHash.Hex())
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NetworkRejectionError) Is(target error) bool { return target == ErrNetworkRejection }
func (e *NetworkRejectionError) Unwrap() error        { return e.Err }

// DerivationMismatchError reports a contract that landed at an unexpected address.
type DerivationMismatchError struct {
	What     string
	Expected common.Address
	Actual   common.Address
}

func (e *DerivationMismatchError) Error() string {
	return fmt.Sprintf("%s deployed at %s, expected %s", e.What, e.Actual.Hex(), e.Expected.Hex())
}

func (e *DerivationMismatchError) Is(target error) bool { return target == ErrDerivationMismatch }

// StateMismatchError reports an on-chain observation that contradicts the
// expected effect of a confirmed transaction.
type StateMismatchError struct {
	What     string
	Expected string
	Actual   string
}

func (e *StateMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.What, e.Expected, e.Actual)
}

func (e *StateMismatchError) Is(target error) bool { return target == ErrStateMismatch }

// DeploymentError tags a failure with the deployment state it happened in.
type DeploymentError struct {
	State string
	Err   error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment failed in state %s: %v", e.State, e.Err)
}

func (e *DeploymentError) Unwrap() error { return e.Err }
