//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/aadeploy/internal/adapters"
	"github.com/trebuchet-org/aadeploy/internal/config"
	"github.com/trebuchet-org/aadeploy/internal/logging"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewDeployAccount,
		usecase.NewPredictAddress,
		usecase.NewHashBytecode,
		usecase.NewShowDeployment,
		usecase.NewListDeployments,
		usecase.NewRemoveDeployment,
		usecase.NewManageNode,

		// App
		NewApp,
	)
	return nil, nil, nil
}
