package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/aadeploy/internal/domain/models"
)

// RemoveDeploymentParams contains parameters for removing a deployment record
type RemoveDeploymentParams struct {
	// Name selects the deployment. When empty the user picks one.
	Name string
	// DryRun resolves the deployment without deleting it.
	DryRun bool
}

// RemoveDeploymentResult names the record that was (or would be) removed
type RemoveDeploymentResult struct {
	Deployment *models.AccountDeployment
	Removed    bool
}

// RemoveDeployment forgets a stored deployment record. Contracts already on
// chain are untouched; a later deploy with the same name starts from scratch.
type RemoveDeployment struct {
	store    DeploymentStore
	selector InteractiveSelector
}

// NewRemoveDeployment creates a new RemoveDeployment use case
func NewRemoveDeployment(store DeploymentStore, selector InteractiveSelector) *RemoveDeployment {
	return &RemoveDeployment{
		store:    store,
		selector: selector,
	}
}

// Run executes the remove deployment use case
func (uc *RemoveDeployment) Run(ctx context.Context, params RemoveDeploymentParams) (*RemoveDeploymentResult, error) {
	deployment, err := resolveDeployment(ctx, uc.store, uc.selector, params.Name, "Select a deployment to remove")
	if err != nil {
		return nil, err
	}
	result := &RemoveDeploymentResult{Deployment: deployment}
	if params.DryRun {
		return result, nil
	}

	if err := uc.store.Delete(ctx, deployment.Name); err != nil {
		return nil, fmt.Errorf("failed to remove deployment %s: %w", deployment.Name, err)
	}
	result.Removed = true
	return result, nil
}
