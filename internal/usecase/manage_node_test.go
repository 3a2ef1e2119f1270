package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

func TestManageNode_Start(t *testing.T) {
	ctx := context.Background()
	nodes := new(MockNodeManager)
	nodes.On("GetStatus", ctx, mock.Anything).Return(&domain.NodeStatus{}, nil).Once()
	nodes.On("Start", ctx, mock.MatchedBy(func(n *domain.LocalNode) bool {
		return n.Name == "dev" && n.Port == "8011" && n.ChainID == "260"
	})).Return(nil)
	nodes.On("GetStatus", ctx, mock.Anything).Return(&domain.NodeStatus{Running: true, PID: 42, RPCHealthy: true}, nil).Once()

	result, err := usecase.NewManageNode(nodes, usecase.NopProgress{}).Execute(ctx, usecase.ManageNodeParams{
		Operation: "start",
		Name:      "dev",
		Port:      "8011",
		ChainID:   "260",
	})
	require.NoError(t, err)
	assert.Equal(t, "start", result.Operation)
	assert.Equal(t, 42, result.Status.PID)
	assert.Equal(t, "Node 'dev' started with PID 42", result.Message)
	nodes.AssertExpectations(t)
}

func TestManageNode_StartAlreadyRunning(t *testing.T) {
	ctx := context.Background()
	nodes := new(MockNodeManager)
	nodes.On("GetStatus", ctx, mock.Anything).Return(&domain.NodeStatus{Running: true, PID: 7}, nil)

	_, err := usecase.NewManageNode(nodes, usecase.NopProgress{}).Execute(ctx, usecase.ManageNodeParams{Operation: "start", Name: "dev"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running (PID 7)")
	nodes.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}

func TestManageNode_StopNotRunning(t *testing.T) {
	ctx := context.Background()
	nodes := new(MockNodeManager)
	nodes.On("GetStatus", ctx, mock.Anything).Return(&domain.NodeStatus{}, nil)

	result, err := usecase.NewManageNode(nodes, usecase.NopProgress{}).Execute(ctx, usecase.ManageNodeParams{Operation: "stop", Name: "dev"})
	require.NoError(t, err)
	assert.Equal(t, "Node 'dev' is not running", result.Message)
	nodes.AssertNotCalled(t, "Stop", mock.Anything, mock.Anything)
}

func TestManageNode_Restart(t *testing.T) {
	ctx := context.Background()
	nodes := new(MockNodeManager)
	nodes.On("GetStatus", ctx, mock.Anything).Return(&domain.NodeStatus{Running: true, PID: 1}, nil).Once()
	nodes.On("Stop", ctx, mock.Anything).Return(nil)
	nodes.On("GetStatus", ctx, mock.Anything).Return(&domain.NodeStatus{}, nil).Once()
	nodes.On("Start", ctx, mock.Anything).Return(nil)
	nodes.On("GetStatus", ctx, mock.Anything).Return(&domain.NodeStatus{Running: true, PID: 2}, nil).Once()

	result, err := usecase.NewManageNode(nodes, usecase.NopProgress{}).Execute(ctx, usecase.ManageNodeParams{Operation: "restart"})
	require.NoError(t, err)
	assert.Equal(t, "restart", result.Operation)
	assert.Equal(t, 2, result.Status.PID)
	nodes.AssertExpectations(t)
}

func TestManageNode_Logs(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	nodes := new(MockNodeManager)
	nodes.On("StreamLogs", ctx, mock.Anything, &out).Return(nil)

	_, err := usecase.NewManageNode(nodes, usecase.NopProgress{}).Execute(ctx, usecase.ManageNodeParams{Operation: "logs", Logs: &out})
	require.NoError(t, err)

	_, err = usecase.NewManageNode(nodes, usecase.NopProgress{}).Execute(ctx, usecase.ManageNodeParams{Operation: "logs"})
	assert.ErrorIs(t, err, domain.ErrInputValidation)
}

func TestManageNode_Errors(t *testing.T) {
	ctx := context.Background()
	nodes := new(MockNodeManager)
	nodes.On("GetStatus", ctx, mock.Anything).Return(nil, errors.New("boom"))

	_, err := usecase.NewManageNode(nodes, usecase.NopProgress{}).Execute(ctx, usecase.ManageNodeParams{Operation: "status"})
	assert.ErrorContains(t, err, "boom")

	_, err = usecase.NewManageNode(nodes, usecase.NopProgress{}).Execute(ctx, usecase.ManageNodeParams{Operation: "fork"})
	assert.ErrorIs(t, err, domain.ErrInputValidation)
}
