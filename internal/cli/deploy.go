package cli

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/aadeploy/internal/app"
	"github.com/trebuchet-org/aadeploy/internal/cli/render"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// defaultFundingAmount is sent to the account when neither --amount nor
// deploy.funding_amount is set.
const defaultFundingAmount = "0.008"

type deployFlags struct {
	name        string
	owner       string
	amount      string
	salt        string
	selfTxSalt  string
	factory     string
	factorySalt string
	yes         bool
}

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var flags deployFlags

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy, fund and exercise a multisig account",
		Long: `Deploy an account factory, create a multisig account through it, fund the
account and send a transaction from the account that deploys a second account.

Each step is saved as it completes. Running deploy again with the same --name
resumes the stored deployment; its parameters must match.

Examples:
  aadeploy deploy --network in-memory --salt 0x01...01
  aadeploy deploy -n zksync-sepolia --salt 0x01...01 --amount 0.01
  aadeploy deploy -n zksync-sepolia --salt 0x01...01 --factory 0xabc...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params, err := deployParams(app, flags)
			if err != nil {
				return err
			}

			if !flags.yes && !app.Config.Network.IsLocal() {
				ok, err := app.Selector.Confirm(cmd.Context(), fmt.Sprintf("Deploy %s to %s (chain %d) funding it with %s ETH?",
					params.Name, app.Config.Network.Name, app.Config.Network.ChainID, render.FormatEther(params.FundingAmount)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), render.FormatWarning("Deployment cancelled"))
					return nil
				}
			}

			result, runErr := app.DeployAccount.Deploy(cmd.Context(), params)
			if runErr != nil {
				app.Progress.Error("deployment stopped, progress saved")
			}

			if app.Config.JSON {
				if err := printDeployJSON(cmd, result, runErr); err != nil {
					return err
				}
				return runErr
			}

			if runErr != nil {
				if result != nil && result.Deployment != nil {
					renderer := render.NewDeploymentRenderer(cmd.OutOrStdout(), explorerURL(app))
					if err := renderer.Render(&usecase.ShowDeploymentResult{Deployment: result.Deployment}); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "\nRun the same command again to resume from %s.\n", render.StateTitle(result.Deployment.State))
				}
				return runErr
			}

			renderer := render.NewDeployRenderer(cmd.OutOrStdout(), explorerURL(app))
			return renderer.Render(result)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Deployment record name (default: owner address)")
	cmd.Flags().StringVar(&flags.owner, "owner", "", "Account owner (default: address of OWNER_PRIVATE_KEY)")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "ETH sent to the account, decimal or with a wei suffix (default 0.008)")
	cmd.Flags().StringVar(&flags.salt, "salt", "", "32 byte salt for the account (required)")
	cmd.Flags().StringVar(&flags.selfTxSalt, "self-tx-salt", "", "32 byte salt for the account deployed from the account (default: keccak256 of --salt)")
	cmd.Flags().StringVar(&flags.factory, "factory", "", "Use an already deployed factory")
	cmd.Flags().StringVar(&flags.factorySalt, "factory-salt", "", "32 byte salt for the factory deployment")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("salt")

	return cmd
}

// deployParams resolves flags against the project defaults
func deployParams(app *app.App, flags deployFlags) (usecase.DeployAccountParams, error) {
	var params usecase.DeployAccountParams
	if app.Config.Network == nil {
		return params, fmt.Errorf("%w: no network configured: use --network or set AADEPLOY_NETWORK", domain.ErrInputValidation)
	}
	params.Name = flags.name

	var err error
	if params.Salt, err = parseHash32("salt", flags.salt); err != nil {
		return params, err
	}
	if flags.selfTxSalt != "" {
		if params.SelfTxSalt, err = parseHash32("self-tx-salt", flags.selfTxSalt); err != nil {
			return params, err
		}
	} else {
		params.SelfTxSalt = crypto.Keccak256Hash(params.Salt.Bytes())
	}

	if flags.owner != "" {
		if params.Owner, err = parseAddress("owner", flags.owner); err != nil {
			return params, err
		}
	} else {
		owner, err := app.Signers.Owner()
		if err != nil {
			return params, err
		}
		params.Owner = owner.Address()
	}
	if params.Name == "" {
		params.Name = strings.ToLower(params.Owner.Hex())
	}

	amount := firstSet(flags.amount, app.Config.Deploy.FundingAmount, defaultFundingAmount)
	if params.FundingAmount, err = parseEther(amount); err != nil {
		return params, err
	}

	if factory := firstSet(flags.factory, app.Config.Deploy.FactoryAddress); factory != "" {
		if params.FactoryAddress, err = parseAddress("factory", factory); err != nil {
			return params, err
		}
	}
	if factorySalt := firstSet(flags.factorySalt, app.Config.Deploy.FactorySalt); factorySalt != "" {
		if params.FactorySalt, err = parseHash32("factory-salt", factorySalt); err != nil {
			return params, err
		}
	}
	return params, nil
}

type deployOutput struct {
	Name           string         `json:"name"`
	AccountAddress common.Address `json:"accountAddress"`
	State          string         `json:"state"`
	Resumed        bool           `json:"resumed"`
	Error          string         `json:"error,omitempty"`
	Deployment     any            `json:"deployment,omitempty"`
}

func printDeployJSON(cmd *cobra.Command, result *usecase.DeployAccountResult, runErr error) error {
	var out deployOutput
	if result != nil && result.Deployment != nil {
		out = deployOutput{
			Name:           result.Deployment.Name,
			AccountAddress: result.AccountAddress,
			State:          string(result.Deployment.State),
			Resumed:        result.Resumed,
			Deployment:     result.Deployment,
		}
	}
	if runErr != nil {
		out.Error = runErr.Error()
		var depErr *domain.DeploymentError
		if errors.As(runErr, &depErr) {
			out.State = depErr.State
		}
	}

	return writeJSON(cmd.OutOrStdout(), out)
}

func explorerURL(app *app.App) string {
	if app.Config.Network == nil {
		return ""
	}
	return app.Config.Network.ExplorerURL
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// weiString formats nil amounts as empty strings for machine readable output
func weiString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}
