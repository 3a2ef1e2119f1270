package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// DeployRenderer prints the outcome of a deploy run
type DeployRenderer struct {
	out    io.Writer
	detail *DeploymentRenderer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer, explorer string) *DeployRenderer {
	return &DeployRenderer{
		out:    out,
		detail: NewDeploymentRenderer(out, explorer),
	}
}

// Render prints a short summary of a finished deployment
func (r *DeployRenderer) Render(result *usecase.DeployAccountResult) error {
	d := result.Deployment

	fmt.Fprintln(r.out)
	if result.Resumed {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployment %s resumed and completed", d.Name)))
	} else {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployment %s completed", d.Name)))
	}
	fmt.Fprintln(r.out)

	r.detail.address("Factory", d.FactoryAddress)
	r.detail.address("Account", d.AccountAddress)
	r.detail.address("Child account", d.ChildAccountAddress)
	r.detail.field("Balance", FormatEther(d.BalanceAfter))
	if d.NonceAfter != nil {
		r.detail.field("Account nonce", fmt.Sprintf("%d", *d.NonceAfter))
	}

	fmt.Fprintln(r.out, "\nTransactions:")
	for _, state := range models.States() {
		if hash, ok := d.TxFor(state); ok {
			r.detail.field(StateTitle(state), r.detail.txLink(hash))
		}
	}
	return nil
}

var _ Renderer[*usecase.DeployAccountResult] = (*DeployRenderer)(nil)
