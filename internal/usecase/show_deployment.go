package usecase

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
)

// ShowDeploymentParams contains parameters for showing a deployment
type ShowDeploymentParams struct {
	// Name selects the deployment. When empty the user picks one of the
	// stored deployments.
	Name string
	// Live reads the current account balance and nonce from the network.
	Live bool
}

// ShowDeploymentResult is a stored deployment with optional live chain data
type ShowDeploymentResult struct {
	Deployment *models.AccountDeployment
	Balance    *big.Int
	Nonce      *uint64
}

// ShowDeployment is the use case for showing deployment details
type ShowDeployment struct {
	store    DeploymentStore
	network  Network
	selector InteractiveSelector
	sink     ProgressSink
}

// NewShowDeployment creates a new ShowDeployment use case
func NewShowDeployment(store DeploymentStore, network Network, selector InteractiveSelector, sink ProgressSink) *ShowDeployment {
	return &ShowDeployment{
		store:    store,
		network:  network,
		selector: selector,
		sink:     sink,
	}
}

// Run executes the show deployment use case
func (uc *ShowDeployment) Run(ctx context.Context, params ShowDeploymentParams) (*ShowDeploymentResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading deployment details",
		Spinner: true,
	})

	deployment, err := resolveDeployment(ctx, uc.store, uc.selector, params.Name, "Select a deployment")
	if err != nil {
		return nil, err
	}
	result := &ShowDeploymentResult{Deployment: deployment}

	if params.Live && deployment.Reached(models.StateAccountDeployed) {
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "reading",
			Message: "Reading account state",
			Spinner: true,
		})
		balance, err := uc.network.BalanceAt(ctx, deployment.AccountAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to read account balance: %w", err)
		}
		nonce, err := uc.network.NonceAt(ctx, deployment.AccountAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to read account nonce: %w", err)
		}
		result.Balance = balance
		result.Nonce = &nonce
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: "Deployment loaded",
		Done:    true,
	})
	return result, nil
}

// resolveDeployment loads the named deployment, or lets the user pick one of
// the stored deployments, most recently updated first.
func resolveDeployment(ctx context.Context, store DeploymentStore, selector InteractiveSelector, name, prompt string) (*models.AccountDeployment, error) {
	if name != "" {
		return store.Load(ctx, name)
	}

	deployments, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	switch len(deployments) {
	case 0:
		return nil, fmt.Errorf("%w: no deployments recorded yet", domain.ErrNotFound)
	case 1:
		return deployments[0], nil
	}

	sort.Slice(deployments, func(i, j int) bool {
		return deployments[i].UpdatedAt.After(deployments[j].UpdatedAt)
	})
	return selector.SelectDeployment(ctx, deployments, prompt)
}
