package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/aadeploy/internal/app"
	"github.com/trebuchet-org/aadeploy/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aadeploy",
		Short: "Deploy zkSync account-abstraction multisig accounts",
		Long: `aadeploy deploys an account factory and a multisig smart account on zkSync,
funds the account and proves it works by sending a transaction from it.

Every step is recorded under .aadeploy/deployments so an interrupted run resumes
where it stopped instead of submitting transactions twice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			v := config.SetupViper(config.FindProjectRoot(), cmd.Flags())

			appInstance, cleanup, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cancel := func() {}
			if appInstance.Config.Timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}
			cmd.SetContext(ctx)

			cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
				cancel()
				cleanup()
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (zksync-era, zksync-sepolia, in-memory, local or one from aadeploy.toml)")
	rootCmd.PersistentFlags().String("rpc-url", "", "RPC endpoint, overrides the network's")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Give up waiting after this long (default 10m)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "tools",
		Title: "Tools",
	})

	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	statusCmd := NewStatusCmd()
	statusCmd.GroupID = "main"
	rootCmd.AddCommand(statusCmd)

	removeCmd := NewRemoveCmd()
	removeCmd.GroupID = "main"
	rootCmd.AddCommand(removeCmd)

	predictCmd := NewPredictCmd()
	predictCmd.GroupID = "tools"
	rootCmd.AddCommand(predictCmd)

	hashCmd := NewHashCmd()
	hashCmd.GroupID = "tools"
	rootCmd.AddCommand(hashCmd)

	nodeCmd := NewNodeCmd()
	nodeCmd.GroupID = "tools"
	rootCmd.AddCommand(nodeCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}
