package app

import (
	"log/slog"

	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Selector usecase.InteractiveSelector
	Progress usecase.ProgressSink
	Signers  usecase.SignerProvider

	// Use cases
	DeployAccount    *usecase.DeployAccount
	PredictAddress   *usecase.PredictAddress
	HashBytecode     *usecase.HashBytecode
	ShowDeployment   *usecase.ShowDeployment
	ListDeployments  *usecase.ListDeployments
	RemoveDeployment *usecase.RemoveDeployment
	ManageNode       *usecase.ManageNode
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	selector usecase.InteractiveSelector,
	progress usecase.ProgressSink,
	signers usecase.SignerProvider,
	deployAccount *usecase.DeployAccount,
	predictAddress *usecase.PredictAddress,
	hashBytecode *usecase.HashBytecode,
	showDeployment *usecase.ShowDeployment,
	listDeployments *usecase.ListDeployments,
	removeDeployment *usecase.RemoveDeployment,
	manageNode *usecase.ManageNode,
) (*App, error) {
	return &App{
		Config:           cfg,
		Log:              log,
		Selector:         selector,
		Progress:         progress,
		Signers:          signers,
		DeployAccount:    deployAccount,
		PredictAddress:   predictAddress,
		HashBytecode:     hashBytecode,
		ShowDeployment:   showDeployment,
		ListDeployments:  listDeployments,
		RemoveDeployment: removeDeployment,
		ManageNode:       manageNode,
	}, nil
}
