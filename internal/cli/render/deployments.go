package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// DeploymentsRenderer renders deployment lists as a table
type DeploymentsRenderer struct {
	out io.Writer
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer) *DeploymentsRenderer {
	return &DeploymentsRenderer{out: out}
}

// Render renders the deployment list followed by a summary line
func (r *DeploymentsRenderer) Render(result *usecase.DeploymentListResult) error {
	if len(result.Deployments) == 0 {
		fmt.Fprintln(r.out, "No deployments found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box.PaddingRight = "  "
	t.Style().Format.Header = text.FormatUpper

	t.AppendHeader(table.Row{"Name", "Chain", "Account", "State", "Funding", "Updated"})
	for _, d := range result.Deployments {
		account := "-"
		if d.Reached(models.StateAccountDeployed) {
			account = d.AccountAddress.Hex()
		}
		t.AppendRow(table.Row{
			d.Name,
			d.ChainID,
			account,
			stateCell(d),
			FormatEther(d.FundingAmount),
			d.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	t.Render()

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%d deployments, %d complete", result.Summary.Total, result.Summary.Complete)
	if pending := pendingSummary(result.Summary.ByState); pending != "" {
		fmt.Fprintf(r.out, " (%s)", pending)
	}
	fmt.Fprintln(r.out)
	return nil
}

func stateCell(d *models.AccountDeployment) string {
	title := StateTitle(d.State)
	switch {
	case d.LastError != "":
		return failedStyle.Sprint(title)
	case d.State.IsTerminal():
		return doneStyle.Sprint(title)
	default:
		return pendingStyle.Sprint(title)
	}
}

func pendingSummary(byState map[models.DeploymentState]int) string {
	states := make([]models.DeploymentState, 0, len(byState))
	for state := range byState {
		if !state.IsTerminal() {
			states = append(states, state)
		}
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Index() < states[j].Index() })

	summary := ""
	for i, state := range states {
		if i > 0 {
			summary += ", "
		}
		summary += fmt.Sprintf("%d %s", byState[state], StateTitle(state))
	}
	return summary
}

var _ Renderer[*usecase.DeploymentListResult] = (*DeploymentsRenderer)(nil)
