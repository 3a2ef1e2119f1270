package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/aadeploy/internal/cli/render"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
	"gopkg.in/yaml.v3"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var (
		live       bool
		all        bool
		chainID    uint64
		incomplete bool
		asYAML     bool
	)

	cmd := &cobra.Command{
		Use:   "status [name]",
		Short: "Show recorded deployments",
		Long: `Show the state of a recorded deployment.

Without a name the deployment is picked interactively. Use --all to list every
recorded deployment instead.

Examples:
  aadeploy status
  aadeploy status 0x7099...79c8 --live -n zksync-sepolia
  aadeploy status --all --incomplete`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if all {
				result, err := app.ListDeployments.Run(cmd.Context(), usecase.ListDeploymentsParams{
					ChainID:    chainID,
					Incomplete: incomplete,
				})
				if err != nil {
					return err
				}
				switch {
				case app.Config.JSON:
					return writeJSON(cmd.OutOrStdout(), result.Deployments)
				case asYAML:
					views := make([]deploymentView, 0, len(result.Deployments))
					for _, d := range result.Deployments {
						views = append(views, newDeploymentView(d, nil))
					}
					return writeYAML(cmd.OutOrStdout(), views)
				}
				return render.NewDeploymentsRenderer(cmd.OutOrStdout()).Render(result)
			}

			var name string
			if len(args) > 0 {
				name = args[0]
			}
			result, err := app.ShowDeployment.Run(cmd.Context(), usecase.ShowDeploymentParams{
				Name: name,
				Live: live,
			})
			if err != nil {
				return err
			}

			switch {
			case app.Config.JSON:
				output := map[string]any{"deployment": result.Deployment}
				if result.Balance != nil {
					output["balance"] = result.Balance.String()
				}
				if result.Nonce != nil {
					output["nonce"] = *result.Nonce
				}
				return writeJSON(cmd.OutOrStdout(), output)
			case asYAML:
				return writeYAML(cmd.OutOrStdout(), newDeploymentView(result.Deployment, result))
			}
			return render.NewDeploymentRenderer(cmd.OutOrStdout(), explorerURL(app)).Render(result)
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Read the account balance and nonce from the network")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "List all recorded deployments")
	cmd.Flags().Uint64Var(&chainID, "chain", 0, "With --all, only list deployments on this chain")
	cmd.Flags().BoolVar(&incomplete, "incomplete", false, "With --all, only list unfinished deployments")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output in YAML format")

	return cmd
}

// deploymentView is the YAML shape of a deployment. Hashes and amounts are
// plain strings so the document stays readable.
type deploymentView struct {
	Name         string            `yaml:"name"`
	ChainID      uint64            `yaml:"chain_id"`
	State        string            `yaml:"state"`
	Deployer     string            `yaml:"deployer"`
	Owner        string            `yaml:"owner"`
	Factory      string            `yaml:"factory,omitempty"`
	Account      string            `yaml:"account,omitempty"`
	ChildAccount string            `yaml:"child_account,omitempty"`
	Funding      string            `yaml:"funding_wei"`
	Balance      string            `yaml:"balance_wei,omitempty"`
	Nonce        string            `yaml:"nonce,omitempty"`
	Transactions map[string]string `yaml:"transactions,omitempty"`
	LastError    string            `yaml:"last_error,omitempty"`
	UpdatedAt    string            `yaml:"updated_at"`
}

func newDeploymentView(d *models.AccountDeployment, live *usecase.ShowDeploymentResult) deploymentView {
	view := deploymentView{
		Name:      d.Name,
		ChainID:   d.ChainID,
		State:     string(d.State),
		Deployer:  d.Deployer.Hex(),
		Owner:     d.Owner.Hex(),
		Funding:   weiString(d.FundingAmount),
		LastError: d.LastError,
		UpdatedAt: d.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if d.Reached(models.StateFactoryDeployed) {
		view.Factory = d.FactoryAddress.Hex()
	}
	if d.Reached(models.StateAccountDeployed) {
		view.Account = d.AccountAddress.Hex()
	}
	if d.Reached(models.StateSelfTxConfirmed) {
		view.ChildAccount = d.ChildAccountAddress.Hex()
	}
	for _, state := range models.States() {
		if hash, ok := d.TxFor(state); ok {
			if view.Transactions == nil {
				view.Transactions = make(map[string]string)
			}
			view.Transactions[string(state)] = hash.Hex()
		}
	}
	if live != nil {
		view.Balance = weiString(live.Balance)
		if live.Nonce != nil {
			view.Nonce = strconv.FormatUint(*live.Nonce, 10)
		}
	}
	return view
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
