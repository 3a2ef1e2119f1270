package fs

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
)

func newTestDeploymentStore(t *testing.T) *DeploymentStore {
	t.Helper()
	return NewDeploymentStore(&config.RuntimeConfig{DataDir: t.TempDir()})
}

func sampleDeployment(name string) *models.AccountDeployment {
	now := time.Now().UTC().Truncate(time.Second)
	d := &models.AccountDeployment{
		Name:           name,
		ChainID:        300,
		State:          models.StateFundsPending,
		Deployer:       common.HexToAddress("0xaaaa"),
		Owner:          common.HexToAddress("0xbbbb"),
		Salt:           common.HexToHash("0x01"),
		SelfTxSalt:     common.HexToHash("0x02"),
		FundingAmount:  big.NewInt(8_000_000_000_000_000),
		FactoryAddress: common.HexToAddress("0xcccc"),
		AccountAddress: common.HexToAddress("0xdddd"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	d.RecordTx(models.StateFactoryPending, common.HexToHash("0xf1"))
	return d
}

func TestDeploymentStore_LoadMissing(t *testing.T) {
	store := newTestDeploymentStore(t)

	_, err := store.Load(context.Background(), "nothing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeploymentStore_SaveAndLoad(t *testing.T) {
	store := newTestDeploymentStore(t)
	ctx := context.Background()
	want := sampleDeployment("treasury")

	require.NoError(t, store.Save(ctx, want))
	assert.FileExists(t, filepath.Join(store.dir, "treasury.json"))
	assert.NoFileExists(t, filepath.Join(store.dir, "treasury.json.tmp"))

	got, err := store.Load(ctx, "treasury")
	require.NoError(t, err)
	assert.Equal(t, want.State, got.State)
	assert.Equal(t, want.Owner, got.Owner)
	assert.Equal(t, want.Salt, got.Salt)
	assert.Equal(t, 0, want.FundingAmount.Cmp(got.FundingAmount))
	assert.Equal(t, want.AccountAddress, got.AccountAddress)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	hash, ok := got.TxFor(models.StateFactoryPending)
	require.True(t, ok)
	assert.Equal(t, common.HexToHash("0xf1"), hash)
}

func TestDeploymentStore_Overwrite(t *testing.T) {
	store := newTestDeploymentStore(t)
	ctx := context.Background()
	d := sampleDeployment("treasury")

	require.NoError(t, store.Save(ctx, d))
	d.State = models.StateSelfTxConfirmed
	require.NoError(t, store.Save(ctx, d))

	got, err := store.Load(ctx, "treasury")
	require.NoError(t, err)
	assert.Equal(t, models.StateSelfTxConfirmed, got.State)
}

func TestDeploymentStore_ListAndDelete(t *testing.T) {
	store := newTestDeploymentStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDeployment("one")))
	require.NoError(t, store.Save(ctx, sampleDeployment("two")))
	// Stray files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "notes.txt"), []byte("x"), 0644))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, store.Delete(ctx, "one"))
	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "two", list[0].Name)

	assert.ErrorIs(t, store.Delete(ctx, "one"), domain.ErrNotFound)
}

func TestDeploymentStore_InvalidNames(t *testing.T) {
	store := newTestDeploymentStore(t)
	ctx := context.Background()

	for _, name := range []string{"", "../escape", "a/b", ".hidden", "with space"} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(ctx, name)
			assert.ErrorIs(t, err, domain.ErrInputValidation)

			err = store.Save(ctx, sampleDeployment(name))
			assert.ErrorIs(t, err, domain.ErrInputValidation)
		})
	}
}

func TestDeploymentStore_CorruptFile(t *testing.T) {
	store := newTestDeploymentStore(t)
	require.NoError(t, os.MkdirAll(store.dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "broken.json"), []byte("{"), 0644))

	_, err := store.Load(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse deployment file")
}
