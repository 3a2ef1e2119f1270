package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/aadeploy/internal/cli/render"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// NewNodeCmd creates the node command with subcommands
func NewNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage a local zkSync node",
		Long: `Manage a local anvil-zksync node to try deployments against.

The node binary is anvil-zksync from PATH, or AADEPLOY_NODE_BINARY. With the
default port and chain ID the node serves the built-in in-memory network.`,
	}

	for _, op := range []struct {
		use   string
		short string
	}{
		{"start", "Start the local node"},
		{"stop", "Stop the local node"},
		{"restart", "Restart the local node"},
		{"status", "Show local node status"},
		{"logs", "Follow the local node logs"},
	} {
		cmd.AddCommand(newNodeOpCmd(op.use, op.short))
	}

	return cmd
}

// nodeFlags holds common flags for node commands
type nodeFlags struct {
	name    string
	port    string
	chainID string
	forkURL string
}

func newNodeOpCmd(operation, short string) *cobra.Command {
	flags := &nodeFlags{}

	cmd := &cobra.Command{
		Use:   operation,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNodeCommand(cmd, operation, flags)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "in-memory", "Instance name")
	cmd.Flags().StringVar(&flags.port, "port", "8011", "RPC port to bind")
	if operation == "start" || operation == "restart" {
		cmd.Flags().StringVar(&flags.chainID, "chain-id", "", "Chain ID to use for the node (default 260)")
		cmd.Flags().StringVar(&flags.forkURL, "fork-url", "", "Fork this network instead of starting empty")
	}
	return cmd
}

func runNodeCommand(cmd *cobra.Command, operation string, flags *nodeFlags) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}

	params := usecase.ManageNodeParams{
		Operation: operation,
		Name:      flags.name,
		Port:      flags.port,
		ChainID:   flags.chainID,
		ForkURL:   flags.forkURL,
	}

	renderer := render.NewNodeRenderer(cmd.OutOrStdout())
	if operation == "logs" {
		renderer.RenderLogsHeader(&domain.LocalNode{Name: flags.name})
		params.Logs = cmd.OutOrStdout()
	}

	result, err := app.ManageNode.Execute(cmd.Context(), params)
	if err != nil {
		return err
	}

	if app.Config.JSON && operation != "logs" {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"operation": result.Operation,
			"node":      result.Node,
			"status":    result.Status,
			"message":   result.Message,
		})
	}
	return renderer.Render(result)
}
