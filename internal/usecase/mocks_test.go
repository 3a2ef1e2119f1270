package usecase_test

import (
	"context"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// MockNetwork is a mock implementation of Network
type MockNetwork struct {
	mock.Mock
}

var _ usecase.Network = (*MockNetwork)(nil)

func (m *MockNetwork) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockNetwork) GasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockNetwork) EstimateGas(ctx context.Context, req usecase.CallRequest) (uint64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockNetwork) NonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockNetwork) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockNetwork) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetwork) Call(ctx context.Context, req usecase.CallRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetwork) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *MockNetwork) WaitForReceipt(ctx context.Context, hash common.Hash) (*models.Receipt, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Receipt), args.Error(1)
}

// MockNodeManager is a mock implementation of NodeManager
type MockNodeManager struct {
	mock.Mock
}

var _ usecase.NodeManager = (*MockNodeManager)(nil)

func (m *MockNodeManager) Start(ctx context.Context, node *domain.LocalNode) error {
	return m.Called(ctx, node).Error(0)
}

func (m *MockNodeManager) Stop(ctx context.Context, node *domain.LocalNode) error {
	return m.Called(ctx, node).Error(0)
}

func (m *MockNodeManager) GetStatus(ctx context.Context, node *domain.LocalNode) (*domain.NodeStatus, error) {
	args := m.Called(ctx, node)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NodeStatus), args.Error(1)
}

func (m *MockNodeManager) StreamLogs(ctx context.Context, node *domain.LocalNode, w io.Writer) error {
	return m.Called(ctx, node, w).Error(0)
}
