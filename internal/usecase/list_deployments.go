package usecase

import (
	"context"
	"sort"

	"github.com/samber/lo"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
)

// ListDeploymentsParams filters stored deployments
type ListDeploymentsParams struct {
	ChainID uint64
	// Incomplete keeps only deployments that have not reached the terminal state.
	Incomplete bool
}

// DeploymentListResult contains the result of listing deployments
type DeploymentListResult struct {
	Deployments []*models.AccountDeployment
	Summary     DeploymentSummary
}

// DeploymentSummary provides summary statistics
type DeploymentSummary struct {
	Total    int
	Complete int
	ByState  map[models.DeploymentState]int
}

// ListDeployments is the use case for listing stored deployments
type ListDeployments struct {
	store DeploymentStore
}

// NewListDeployments creates a new ListDeployments use case
func NewListDeployments(store DeploymentStore) *ListDeployments {
	return &ListDeployments{store: store}
}

// Run lists deployments ordered by creation time
func (uc *ListDeployments) Run(ctx context.Context, params ListDeploymentsParams) (*DeploymentListResult, error) {
	all, err := uc.store.List(ctx)
	if err != nil {
		return nil, err
	}

	deployments := lo.Filter(all, func(d *models.AccountDeployment, _ int) bool {
		if params.ChainID != 0 && d.ChainID != params.ChainID {
			return false
		}
		return !params.Incomplete || !d.State.IsTerminal()
	})
	sort.SliceStable(deployments, func(i, j int) bool {
		return deployments[i].CreatedAt.Before(deployments[j].CreatedAt)
	})

	summary := DeploymentSummary{
		Total:   len(deployments),
		ByState: lo.CountValuesBy(deployments, func(d *models.AccountDeployment) models.DeploymentState { return d.State }),
	}
	summary.Complete = summary.ByState[models.StateSelfTxConfirmed]

	return &DeploymentListResult{Deployments: deployments, Summary: summary}, nil
}
