package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/aadeploy/internal/cli/render"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// NewRemoveCmd creates the remove command
func NewRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove [name]",
		Aliases: []string{"rm"},
		Short:   "Forget a recorded deployment",
		Long: `Delete a deployment record so the next deploy with that name starts over.

Contracts that were already deployed stay on chain; a new run with the same
salts adopts them instead of deploying again. Without a name the deployment is
picked interactively.

Examples:
  aadeploy remove 0x7099...79c8
  aadeploy rm --yes multisig`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var name string
			if len(args) > 0 {
				name = args[0]
			}
			found, err := app.RemoveDeployment.Run(cmd.Context(), usecase.RemoveDeploymentParams{
				Name:   name,
				DryRun: true,
			})
			if err != nil {
				return err
			}
			d := found.Deployment

			if !yes && !app.Config.JSON {
				prompt := fmt.Sprintf("Remove deployment %s (%s, chain %d)?", d.Name, render.StateTitle(d.State), d.ChainID)
				if !d.State.IsTerminal() {
					prompt = fmt.Sprintf("Deployment %s is unfinished (%s); its progress will be lost. Remove it?", d.Name, render.StateTitle(d.State))
				}
				ok, err := app.Selector.Confirm(cmd.Context(), prompt)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Removal cancelled.")
					return nil
				}
			}

			result, err := app.RemoveDeployment.Run(cmd.Context(), usecase.RemoveDeploymentParams{Name: d.Name})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"name":    result.Deployment.Name,
					"state":   result.Deployment.State,
					"removed": result.Removed,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Removed deployment %s", result.Deployment.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
