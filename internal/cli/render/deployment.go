package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

var (
	labelStyle   = color.New(color.Faint)
	addressStyle = color.New(color.FgWhite, color.Bold)
	doneStyle    = color.New(color.FgGreen)
	pendingStyle = color.New(color.FgYellow)
	failedStyle  = color.New(color.FgRed)
)

// DeploymentRenderer renders detailed information about a single deployment
type DeploymentRenderer struct {
	out      io.Writer
	explorer string
}

// NewDeploymentRenderer creates a new deployment renderer. explorer is the
// block explorer base URL, empty when the network has none.
func NewDeploymentRenderer(out io.Writer, explorer string) *DeploymentRenderer {
	return &DeploymentRenderer{
		out:      out,
		explorer: strings.TrimRight(explorer, "/"),
	}
}

// Render renders detailed deployment information
func (r *DeploymentRenderer) Render(result *usecase.ShowDeploymentResult) error {
	d := result.Deployment

	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Deployment: %s\n", d.Name)
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	fmt.Fprintln(r.out, "\nAccount:")
	r.field("Chain", fmt.Sprintf("%d", d.ChainID))
	r.field("Owner", d.Owner.Hex())
	r.field("Deployer", d.Deployer.Hex())
	r.address("Factory", d.FactoryAddress)
	r.address("Account", d.AccountAddress)
	r.address("Child account", d.ChildAccountAddress)
	r.field("Salt", d.Salt.Hex())
	r.field("Self tx salt", d.SelfTxSalt.Hex())
	if d.AccountBytecodeHash != (common.Hash{}) {
		r.field("Account bytecode hash", d.AccountBytecodeHash.Hex())
	}

	fmt.Fprintln(r.out, "\nFunding:")
	r.field("Amount", FormatEther(d.FundingAmount))
	if d.BalanceBefore != nil {
		r.field("Balance before", FormatEther(d.BalanceBefore))
	}
	if d.BalanceAfter != nil {
		r.field("Balance after", FormatEther(d.BalanceAfter))
	}
	if d.NonceBefore != nil && d.NonceAfter != nil {
		r.field("Account nonce", fmt.Sprintf("%d → %d", *d.NonceBefore, *d.NonceAfter))
	}

	if result.Balance != nil || result.Nonce != nil {
		fmt.Fprintln(r.out, "\nLive:")
		if result.Balance != nil {
			r.field("Balance", FormatEther(result.Balance))
		}
		if result.Nonce != nil {
			r.field("Nonce", fmt.Sprintf("%d", *result.Nonce))
		}
	}

	fmt.Fprintln(r.out, "\nProgress:")
	r.renderStates(d)

	if d.LastError != "" {
		fmt.Fprintln(r.out)
		failedStyle.Fprintf(r.out, "Last error: %s\n", d.LastError)
	}

	fmt.Fprintln(r.out)
	labelStyle.Fprintf(r.out, "Created %s, updated %s\n",
		d.CreatedAt.Format("2006-01-02 15:04:05"), d.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (r *DeploymentRenderer) renderStates(d *models.AccountDeployment) {
	for _, state := range models.States() {
		var icon string
		var style *color.Color
		switch {
		case d.State == state && d.LastError != "":
			icon, style = "✗", failedStyle
		case d.Reached(state) && d.State != state:
			icon, style = "✓", doneStyle
		case d.State == state && state.IsTerminal():
			icon, style = "✓", doneStyle
		case d.State == state:
			icon, style = "●", pendingStyle
		default:
			icon, style = "○", labelStyle
		}

		line := fmt.Sprintf("  %s %s", style.Sprint(icon), StateTitle(state))
		if hash, ok := d.TxFor(state); ok {
			line += "  " + labelStyle.Sprint(r.txLink(hash))
		}
		fmt.Fprintln(r.out, line)
	}
}

func (r *DeploymentRenderer) field(label, value string) {
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("%-22s", label+":"), value)
}

func (r *DeploymentRenderer) address(label string, addr common.Address) {
	if addr == (common.Address{}) {
		return
	}
	value := addressStyle.Sprint(addr.Hex())
	if r.explorer != "" {
		value += "  " + labelStyle.Sprintf("%s/address/%s", r.explorer, addr.Hex())
	}
	r.field(label, value)
}

func (r *DeploymentRenderer) txLink(hash common.Hash) string {
	if r.explorer != "" {
		return fmt.Sprintf("%s/tx/%s", r.explorer, hash.Hex())
	}
	return hash.Hex()
}

var _ Renderer[*usecase.ShowDeploymentResult] = (*DeploymentRenderer)(nil)
