package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// NodeRenderer renders local node operation results
type NodeRenderer struct {
	out io.Writer
}

// NewNodeRenderer creates a new node renderer
func NewNodeRenderer(out io.Writer) *NodeRenderer {
	return &NodeRenderer{out: out}
}

// Render renders the node operation result
func (r *NodeRenderer) Render(result *usecase.ManageNodeResult) error {
	switch result.Operation {
	case "start", "restart":
		fmt.Fprintln(r.out, FormatSuccess(result.Message))
		color.New(color.FgBlue).Fprintf(r.out, "RPC URL: %s\n", result.Status.RPCURL)
		color.New(color.FgYellow).Fprintf(r.out, "Logs:    %s\n", result.Status.LogFile)
		fmt.Fprintln(r.out, labelStyle.Sprint("Use it with --network in-memory when it runs on the default port."))
	case "stop":
		fmt.Fprintln(r.out, FormatSuccess(result.Message))
	case "status":
		r.renderStatus(result.Node, result.Status)
	case "logs":
	default:
		return fmt.Errorf("unknown operation: %s", result.Operation)
	}
	return nil
}

func (r *NodeRenderer) renderStatus(node *domain.LocalNode, status *domain.NodeStatus) {
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Node '%s':\n", node.Name)
	if !status.Running {
		color.New(color.FgRed).Fprintln(r.out, "Status:     ● Not running")
		labelStyle.Fprintf(r.out, "PID file:   %s\n", node.PidFile)
		labelStyle.Fprintf(r.out, "Log file:   %s\n", status.LogFile)
		return
	}

	color.New(color.FgGreen).Fprintf(r.out, "Status:     ● Running (PID %d)\n", status.PID)
	fmt.Fprintf(r.out, "RPC URL:    %s\n", status.RPCURL)
	fmt.Fprintf(r.out, "Log file:   %s\n", status.LogFile)
	if status.RPCHealthy {
		color.New(color.FgGreen).Fprintf(r.out, "RPC health: ✓ Responding (chain %d)\n", status.ChainID)
	} else {
		color.New(color.FgRed).Fprintf(r.out, "RPC health: ✗ Not responding (%s)\n", status.Error)
	}
}

// RenderLogsHeader renders the header for logs streaming
func (r *NodeRenderer) RenderLogsHeader(node *domain.LocalNode) {
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Showing node '%s' logs (Ctrl+C to exit):\n\n", node.Name)
}

var _ Renderer[*usecase.ManageNodeResult] = (*NodeRenderer)(nil)
