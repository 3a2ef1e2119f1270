package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestDeploymentError_Unwraps(t *testing.T) {
	rejection := &NetworkRejectionError{
		TxHash: common.HexToHash("0x01"),
		Reason: "execution reverted",
	}
	err := fmt.Errorf("submit: %w", &DeploymentError{State: "AccountPending", Err: rejection})

	assert.ErrorIs(t, err, ErrNetworkRejection)
	assert.NotErrorIs(t, err, ErrDerivationMismatch)

	var target *NetworkRejectionError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "execution reverted", target.Reason)

	var depErr *DeploymentError
	assert.True(t, errors.As(err, &depErr))
	assert.Equal(t, "AccountPending", depErr.State)
}

func TestNetworkRejectionError_Message(t *testing.T) {
	err := &NetworkRejectionError{Reason: "nonce too low", Err: errors.New("rpc error")}
	assert.Equal(t, "network rejected transaction: nonce too low: rpc error", err.Error())
	assert.ErrorIs(t, err, ErrNetworkRejection)
}

func TestDerivationMismatchError(t *testing.T) {
	err := &DerivationMismatchError{
		What:     "account",
		Expected: common.HexToAddress("0x01"),
		Actual:   common.HexToAddress("0x02"),
	}
	assert.ErrorIs(t, err, ErrDerivationMismatch)
	assert.Contains(t, err.Error(), "account deployed at 0x0000000000000000000000000000000000000002")
}

func TestStateMismatchError(t *testing.T) {
	err := fmt.Errorf("funding: %w", &StateMismatchError{What: "balance", Expected: "10", Actual: "9"})
	assert.ErrorIs(t, err, ErrStateMismatch)
	assert.Contains(t, err.Error(), "balance: expected 10, got 9")
}
