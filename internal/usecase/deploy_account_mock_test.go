package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
	"github.com/trebuchet-org/aadeploy/pkg/zksync"
)

func TestDeployAccount_AccountDeploymentReverts(t *testing.T) {
	ctx := context.Background()
	f := newDeployFixture(t)
	factory := common.HexToAddress("0xfac0000000000000000000000000000000000001")
	accountHash, err := zksync.HashBytecode(f.artifacts["TwoUserMultisig"])
	require.NoError(t, err)
	txHash := common.HexToHash("0xdead")

	network := new(MockNetwork)
	network.On("ChainID", mock.Anything).Return(big.NewInt(260), nil)
	network.On("CodeAt", mock.Anything, factory).Return([]byte{0x01}, nil)
	network.On("CodeAt", mock.Anything, mock.Anything).Return([]byte{}, nil)
	network.On("Call", mock.Anything, mock.MatchedBy(func(req usecase.CallRequest) bool {
		return req.To == factory
	})).Return(accountHash.Bytes(), nil)
	network.On("EstimateGas", mock.Anything, mock.MatchedBy(func(req usecase.CallRequest) bool {
		return req.To == factory && req.Meta != nil
	})).Return(uint64(1_500_000), nil)
	network.On("GasPrice", mock.Anything).Return(big.NewInt(25_000_000), nil)
	network.On("NonceAt", mock.Anything, f.deployer.Address()).Return(uint64(4), nil)
	network.On("SendRawTransaction", mock.Anything, mock.MatchedBy(func(raw []byte) bool {
		signed, err := zksync.DecodeTransaction712(raw)
		return err == nil && signed.Nonce() == 4 && signed.To() == factory
	})).Return(txHash, nil).Once()
	network.On("WaitForReceipt", mock.Anything, txHash).
		Return(&models.Receipt{TxHash: txHash, Status: types.ReceiptStatusFailed}, nil)

	params := f.params()
	params.FactoryAddress = factory

	uc := usecase.NewDeployAccount(f.cfg, network, f.artifacts, f.store,
		staticSigners{deployer: f.deployer, owner: f.owner}, usecase.NopProgress{},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := uc.Deploy(ctx, params)
	require.Error(t, err)

	var rejection *domain.NetworkRejectionError
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, txHash, rejection.TxHash)

	var depErr *domain.DeploymentError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, string(models.StateAccountPending), depErr.State)
	assert.Equal(t, models.StateAccountPending, result.Deployment.State)

	network.AssertExpectations(t)
}

func TestDeployAccount_SubmissionRejected(t *testing.T) {
	ctx := context.Background()
	f := newDeployFixture(t)

	network := new(MockNetwork)
	network.On("ChainID", mock.Anything).Return(big.NewInt(260), nil)
	network.On("CodeAt", mock.Anything, mock.Anything).Return([]byte{}, nil)
	network.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(2_000_000), nil)
	network.On("GasPrice", mock.Anything).Return(big.NewInt(25_000_000), nil)
	network.On("NonceAt", mock.Anything, mock.Anything).Return(uint64(0), nil)
	network.On("SendRawTransaction", mock.Anything, mock.Anything).
		Return(common.Hash{}, &domain.NetworkRejectionError{Reason: "insufficient funds for gas"})

	uc := usecase.NewDeployAccount(f.cfg, network, f.artifacts, f.store,
		staticSigners{deployer: f.deployer, owner: f.owner}, usecase.NopProgress{},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := uc.Deploy(ctx, f.params())
	assert.ErrorIs(t, err, domain.ErrNetworkRejection)
	assert.Contains(t, err.Error(), "insufficient funds for gas")
	assert.Equal(t, models.StateFactoryPending, result.Deployment.State)
	network.AssertNotCalled(t, "WaitForReceipt", mock.Anything, mock.Anything)
}
