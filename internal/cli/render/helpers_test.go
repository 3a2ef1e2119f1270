package render

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestFormatEther(t *testing.T) {
	tests := []struct {
		wei  *big.Int
		want string
	}{
		{nil, "-"},
		{big.NewInt(0), "0 ETH"},
		{big.NewInt(8_000_000_000_000_000), "0.008 ETH"},
		{new(big.Int).Mul(big.NewInt(3), weiPerEther), "3 ETH"},
		{big.NewInt(1), "0.000000000000000001 ETH"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatEther(tt.wei))
	}
}

func TestStateTitle(t *testing.T) {
	assert.Equal(t, "Self Tx Pending", StateTitle(models.StateSelfTxPending))
	assert.Equal(t, "Factory Deployed", StateTitle(models.StateFactoryDeployed))
	assert.Equal(t, "Loading", StateTitle("loading"))
}

func TestFormatError(t *testing.T) {
	err := &domain.DeploymentError{
		State: string(models.StateFundsPending),
		Err:   fmt.Errorf("%w: need more", domain.ErrInsufficientFunds),
	}
	assert.Equal(t, "❌ Deployment stopped in Funds Pending: "+capitalize(err.Err.Error()), FormatError(err))
	assert.Equal(t, "❌ Boom", FormatError(errors.New("boom")))
}

func sampleDeployment() *models.AccountDeployment {
	before, after := uint64(0), uint64(1)
	d := &models.AccountDeployment{
		Name:           "treasury",
		ChainID:        300,
		State:          models.StateSelfTxConfirmed,
		Owner:          common.HexToAddress("0xbbbb"),
		FactoryAddress: common.HexToAddress("0xfac0"),
		AccountAddress: common.HexToAddress("0xacc0"),
		FundingAmount:  big.NewInt(8_000_000_000_000_000),
		BalanceAfter:   big.NewInt(8_000_000_000_000_000),
		NonceBefore:    &before,
		NonceAfter:     &after,
		CreatedAt:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC),
	}
	d.RecordTx(models.StateFundsPending, common.HexToHash("0xf0"))
	return d
}

func TestDeploymentRenderer(t *testing.T) {
	var buf bytes.Buffer
	nonce := uint64(1)
	err := NewDeploymentRenderer(&buf, "https://sepolia.explorer.zksync.io/").Render(&usecase.ShowDeploymentResult{
		Deployment: sampleDeployment(),
		Balance:    big.NewInt(1),
		Nonce:      &nonce,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Deployment: treasury")
	assert.Contains(t, out, "https://sepolia.explorer.zksync.io/address/"+common.HexToAddress("0xacc0").Hex())
	assert.Contains(t, out, "https://sepolia.explorer.zksync.io/tx/"+common.HexToHash("0xf0").Hex())
	assert.Contains(t, out, "0.008 ETH")
	assert.Contains(t, out, "0 → 1")
	assert.Contains(t, out, "✓ Self Tx Confirmed")
	assert.NotContains(t, out, "Child account")
}

func TestDeploymentRenderer_Failed(t *testing.T) {
	d := sampleDeployment()
	d.State = models.StateFundsPending
	d.LastError = "insufficient funds"

	var buf bytes.Buffer
	require.NoError(t, NewDeploymentRenderer(&buf, "").Render(&usecase.ShowDeploymentResult{Deployment: d}))

	out := buf.String()
	assert.Contains(t, out, "✓ Account Deployed")
	assert.Contains(t, out, "✗ Funds Pending  "+common.HexToHash("0xf0").Hex())
	assert.Contains(t, out, "○ Self Tx Pending")
	assert.Contains(t, out, "Last error: insufficient funds")
}

func TestDeploymentsRenderer(t *testing.T) {
	pending := sampleDeployment()
	pending.Name = "ops"
	pending.State = models.StateAccountPending

	var buf bytes.Buffer
	err := NewDeploymentsRenderer(&buf).Render(&usecase.DeploymentListResult{
		Deployments: []*models.AccountDeployment{sampleDeployment(), pending},
		Summary: usecase.DeploymentSummary{
			Total:    2,
			Complete: 1,
			ByState: map[models.DeploymentState]int{
				models.StateSelfTxConfirmed: 1,
				models.StateAccountPending:  1,
			},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "treasury")
	assert.Contains(t, out, common.HexToAddress("0xacc0").Hex())
	assert.Contains(t, out, "Account Pending")
	assert.Contains(t, out, "2 deployments, 1 complete (1 Account Pending)")
}

func TestDeploymentsRenderer_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDeploymentsRenderer(&buf).Render(&usecase.DeploymentListResult{}))
	assert.Equal(t, "No deployments found\n", buf.String())
}
