package usecase_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

func seedStore(t *testing.T, store *memoryStore, deployments ...*models.AccountDeployment) {
	t.Helper()
	for _, d := range deployments {
		require.NoError(t, store.Save(context.Background(), d))
	}
}

func TestShowDeployment(t *testing.T) {
	ctx := context.Background()
	account := common.HexToAddress("0xacc0000000000000000000000000000000000002")
	store := newMemoryStore()
	seedStore(t, store,
		&models.AccountDeployment{Name: "done", ChainID: 260, State: models.StateSelfTxConfirmed, AccountAddress: account},
		&models.AccountDeployment{Name: "early", ChainID: 260, State: models.StateFactoryDeployed},
	)

	t.Run("live data", func(t *testing.T) {
		network := new(MockNetwork)
		network.On("BalanceAt", mock.Anything, account).Return(big.NewInt(42), nil)
		network.On("NonceAt", mock.Anything, account).Return(uint64(1), nil)

		result, err := usecase.NewShowDeployment(store, network, nil, usecase.NopProgress{}).
			Run(ctx, usecase.ShowDeploymentParams{Name: "done", Live: true})
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(42), result.Balance)
		require.NotNil(t, result.Nonce)
		assert.Equal(t, uint64(1), *result.Nonce)
		network.AssertExpectations(t)
	})

	t.Run("no account yet", func(t *testing.T) {
		network := new(MockNetwork)
		result, err := usecase.NewShowDeployment(store, network, nil, usecase.NopProgress{}).
			Run(ctx, usecase.ShowDeploymentParams{Name: "early", Live: true})
		require.NoError(t, err)
		assert.Nil(t, result.Balance)
		network.AssertNotCalled(t, "BalanceAt", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := usecase.NewShowDeployment(store, new(MockNetwork), nil, usecase.NopProgress{}).
			Run(ctx, usecase.ShowDeploymentParams{Name: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

type pickFirst struct {
	offered []string
}

func (p *pickFirst) SelectDeployment(_ context.Context, deployments []*models.AccountDeployment, _ string) (*models.AccountDeployment, error) {
	for _, d := range deployments {
		p.offered = append(p.offered, d.Name)
	}
	return deployments[0], nil
}

func (p *pickFirst) Confirm(context.Context, string) (bool, error) { return true, nil }

func TestShowDeployment_Select(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("most recent first", func(t *testing.T) {
		store := newMemoryStore()
		seedStore(t, store,
			&models.AccountDeployment{Name: "old", State: models.StateSelfTxConfirmed, UpdatedAt: base},
			&models.AccountDeployment{Name: "new", State: models.StateFundsPending, UpdatedAt: base.Add(time.Hour)},
		)
		selector := &pickFirst{}

		result, err := usecase.NewShowDeployment(store, new(MockNetwork), selector, usecase.NopProgress{}).
			Run(ctx, usecase.ShowDeploymentParams{})
		require.NoError(t, err)
		assert.Equal(t, "new", result.Deployment.Name)
		assert.Equal(t, []string{"new", "old"}, selector.offered)
	})

	t.Run("single deployment needs no prompt", func(t *testing.T) {
		store := newMemoryStore()
		seedStore(t, store, &models.AccountDeployment{Name: "only", State: models.StateFundsPending})
		selector := &pickFirst{}

		result, err := usecase.NewShowDeployment(store, new(MockNetwork), selector, usecase.NopProgress{}).
			Run(ctx, usecase.ShowDeploymentParams{})
		require.NoError(t, err)
		assert.Equal(t, "only", result.Deployment.Name)
		assert.Empty(t, selector.offered)
	})

	t.Run("nothing stored", func(t *testing.T) {
		_, err := usecase.NewShowDeployment(newMemoryStore(), new(MockNetwork), &pickFirst{}, usecase.NopProgress{}).
			Run(ctx, usecase.ShowDeploymentParams{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListDeployments(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMemoryStore()
	seedStore(t, store,
		&models.AccountDeployment{Name: "c", ChainID: 300, State: models.StateFundsPending, CreatedAt: base.Add(2 * time.Hour)},
		&models.AccountDeployment{Name: "a", ChainID: 260, State: models.StateSelfTxConfirmed, CreatedAt: base},
		&models.AccountDeployment{Name: "b", ChainID: 260, State: models.StateAccountPending, CreatedAt: base.Add(time.Hour)},
	)
	uc := usecase.NewListDeployments(store)

	t.Run("all in creation order", func(t *testing.T) {
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{})
		require.NoError(t, err)
		require.Len(t, result.Deployments, 3)
		assert.Equal(t, "a", result.Deployments[0].Name)
		assert.Equal(t, "b", result.Deployments[1].Name)
		assert.Equal(t, "c", result.Deployments[2].Name)
		assert.Equal(t, 3, result.Summary.Total)
		assert.Equal(t, 1, result.Summary.Complete)
		assert.Equal(t, 1, result.Summary.ByState[models.StateFundsPending])
	})

	t.Run("by chain", func(t *testing.T) {
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{ChainID: 260})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Summary.Total)
	})

	t.Run("incomplete only", func(t *testing.T) {
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{Incomplete: true})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Summary.Total)
		assert.Zero(t, result.Summary.Complete)
	})
}
