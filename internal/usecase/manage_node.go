package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/trebuchet-org/aadeploy/internal/domain"
)

// ManageNode handles local node operations
type ManageNode struct {
	nodes    NodeManager
	progress ProgressSink
}

// NewManageNode creates a new node management use case
func NewManageNode(nodes NodeManager, progress ProgressSink) *ManageNode {
	return &ManageNode{
		nodes:    nodes,
		progress: progress,
	}
}

// ManageNodeParams contains parameters for node operations
type ManageNodeParams struct {
	Operation string // start, stop, restart, status, logs
	Name      string
	Port      string
	ChainID   string
	ForkURL   string
	// Logs receives the node output for the logs operation.
	Logs io.Writer
}

// ManageNodeResult contains the result of node operations
type ManageNodeResult struct {
	Operation string
	Node      *domain.LocalNode
	Status    *domain.NodeStatus
	Message   string
}

// Execute performs the node operation
func (m *ManageNode) Execute(ctx context.Context, params ManageNodeParams) (*ManageNodeResult, error) {
	node := &domain.LocalNode{
		Name:    params.Name,
		Port:    params.Port,
		ChainID: params.ChainID,
		ForkURL: params.ForkURL,
	}

	switch params.Operation {
	case "start":
		return m.start(ctx, node)
	case "stop":
		return m.stop(ctx, node)
	case "restart":
		if _, err := m.stop(ctx, node); err != nil {
			return nil, err
		}
		result, err := m.start(ctx, node)
		if err != nil {
			return nil, err
		}
		result.Operation = "restart"
		return result, nil
	case "status":
		status, err := m.nodes.GetStatus(ctx, node)
		if err != nil {
			return nil, fmt.Errorf("failed to get status: %w", err)
		}
		return &ManageNodeResult{Operation: "status", Node: node, Status: status}, nil
	case "logs":
		if params.Logs == nil {
			return nil, fmt.Errorf("%w: no log writer", domain.ErrInputValidation)
		}
		if err := m.nodes.StreamLogs(ctx, node, params.Logs); err != nil {
			return nil, err
		}
		return &ManageNodeResult{Operation: "logs", Node: node}, nil
	default:
		return nil, fmt.Errorf("%w: unknown node operation %q", domain.ErrInputValidation, params.Operation)
	}
}

func (m *ManageNode) start(ctx context.Context, node *domain.LocalNode) (*ManageNodeResult, error) {
	m.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "starting",
		Message: "Starting local node",
		Spinner: true,
	})

	status, err := m.nodes.GetStatus(ctx, node)
	if err == nil && status.Running {
		return nil, fmt.Errorf("node '%s' is already running (PID %d)", node.Name, status.PID)
	}
	if err := m.nodes.Start(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to start node: %w", err)
	}

	status, err = m.nodes.GetStatus(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("failed to get status after start: %w", err)
	}
	m.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "started",
		Message: "Node answers RPC calls",
		Done:    true,
	})

	return &ManageNodeResult{
		Operation: "start",
		Node:      node,
		Status:    status,
		Message:   fmt.Sprintf("Node '%s' started with PID %d", node.Name, status.PID),
	}, nil
}

func (m *ManageNode) stop(ctx context.Context, node *domain.LocalNode) (*ManageNodeResult, error) {
	status, err := m.nodes.GetStatus(ctx, node)
	if err != nil || !status.Running {
		return &ManageNodeResult{
			Operation: "stop",
			Node:      node,
			Message:   fmt.Sprintf("Node '%s' is not running", node.Name),
		}, nil
	}

	m.progress.Info(fmt.Sprintf("Stopping node '%s' (PID %d)", node.Name, status.PID))
	if err := m.nodes.Stop(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to stop node: %w", err)
	}
	return &ManageNodeResult{
		Operation: "stop",
		Node:      node,
		Message:   fmt.Sprintf("Node '%s' stopped", node.Name),
	}, nil
}
