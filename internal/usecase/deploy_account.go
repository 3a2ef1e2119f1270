package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/pkg/zksync"
)

// DeployAccountParams contains parameters for deploying a multisig account
type DeployAccountParams struct {
	// Name identifies the deployment record. Defaults to the owner address.
	Name          string
	Owner         common.Address
	FundingAmount *big.Int
	// Salt is used for the account deployed by the deployer.
	Salt common.Hash
	// SelfTxSalt is used for the account the new account deploys itself.
	SelfTxSalt  common.Hash
	FactorySalt common.Hash
	// FactoryAddress reuses an existing factory when set.
	FactoryAddress common.Address
}

// DeployAccountResult contains the result of a deployment run
type DeployAccountResult struct {
	Deployment     *models.AccountDeployment
	AccountAddress common.Address
	Resumed        bool
}

// DeployAccount drives the deployment state machine: factory, account,
// funding, and the account's first transaction sent through itself.
type DeployAccount struct {
	config    *config.RuntimeConfig
	network   Network
	artifacts ArtifactLoader
	store     DeploymentStore
	signers   SignerProvider
	progress  ProgressSink
	log       *slog.Logger
	now       func() time.Time
}

// NewDeployAccount creates a new DeployAccount use case
func NewDeployAccount(
	cfg *config.RuntimeConfig,
	network Network,
	artifacts ArtifactLoader,
	store DeploymentStore,
	signers SignerProvider,
	progress ProgressSink,
	log *slog.Logger,
) *DeployAccount {
	return &DeployAccount{
		config:    cfg,
		network:   network,
		artifacts: artifacts,
		store:     store,
		signers:   signers,
		progress:  progress,
		log:       log,
		now:       time.Now,
	}
}

// session holds what every step needs and is resolved once per run.
type session struct {
	chainID       *big.Int
	deployer      zksync.Signer
	owner         zksync.Signer
	factoryCode   []byte
	accountCode   []byte
	factoryHash   common.Hash
	accountHash   common.Hash
	gasPerPubdata uint64
}

// Deploy runs the deployment to completion, resuming a stored record with the
// same name. On failure the returned error is a *domain.DeploymentError naming
// the state the run stopped in; the record is saved with that state.
func (uc *DeployAccount) Deploy(ctx context.Context, params DeployAccountParams) (*DeployAccountResult, error) {
	if err := validateDeployParams(&params); err != nil {
		return nil, err
	}

	s, err := uc.prepare(ctx)
	if err != nil {
		return nil, err
	}
	if s.owner.Address() != params.Owner {
		return nil, fmt.Errorf("%w: owner key controls %s, not %s", domain.ErrInputValidation, s.owner.Address().Hex(), params.Owner.Hex())
	}

	d, resumed, err := uc.loadOrCreate(ctx, s, params)
	if err != nil {
		return nil, err
	}
	if resumed {
		uc.log.Info("resuming deployment", "name", d.Name, "state", d.State)
		uc.progress.Info(fmt.Sprintf("Resuming %s from %s", d.Name, d.State))
	}

	for !d.State.IsTerminal() {
		if err := uc.step(ctx, s, d); err != nil {
			d.LastError = err.Error()
			d.UpdatedAt = uc.now()
			if saveErr := uc.store.Save(ctx, d); saveErr != nil {
				uc.log.Error("failed to save deployment", "name", d.Name, "error", saveErr)
			}
			return &DeployAccountResult{Deployment: d, AccountAddress: d.AccountAddress, Resumed: resumed},
				&domain.DeploymentError{State: string(d.State), Err: err}
		}
		d.LastError = ""
		d.UpdatedAt = uc.now()
		if err := uc.store.Save(ctx, d); err != nil {
			return nil, fmt.Errorf("failed to save deployment: %w", err)
		}
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    string(d.State),
		Current:  transitions,
		Total:    transitions,
		Message:  "Account deployed at " + d.AccountAddress.Hex(),
		Done:     true,
		Metadata: d,
	})

	return &DeployAccountResult{
		Deployment:     d,
		AccountAddress: d.AccountAddress,
		Resumed:        resumed,
	}, nil
}

// Step advances a stored deployment by exactly one state and saves it.
func (uc *DeployAccount) Step(ctx context.Context, d *models.AccountDeployment) (models.DeploymentState, error) {
	if d.State.IsTerminal() {
		return d.State, nil
	}
	s, err := uc.prepare(ctx)
	if err != nil {
		return d.State, err
	}
	if s.chainID.Uint64() != d.ChainID {
		return d.State, fmt.Errorf("%w: deployment is on chain %d, connected to %s", domain.ErrNetworkMismatch, d.ChainID, s.chainID)
	}
	if err := uc.step(ctx, s, d); err != nil {
		return d.State, &domain.DeploymentError{State: string(d.State), Err: err}
	}
	d.UpdatedAt = uc.now()
	if err := uc.store.Save(ctx, d); err != nil {
		return d.State, fmt.Errorf("failed to save deployment: %w", err)
	}
	return d.State, nil
}

func validateDeployParams(params *DeployAccountParams) error {
	if params.Owner == (common.Address{}) {
		return fmt.Errorf("%w: owner address is required", domain.ErrInputValidation)
	}
	if params.FundingAmount == nil || params.FundingAmount.Sign() <= 0 {
		return fmt.Errorf("%w: funding amount must be positive", domain.ErrInputValidation)
	}
	if params.Salt == params.SelfTxSalt {
		// both accounts come from the same factory with the same owner
		return fmt.Errorf("%w: self transaction salt must differ from the account salt", domain.ErrInputValidation)
	}
	if params.Name == "" {
		params.Name = strings.ToLower(params.Owner.Hex())
	}
	return nil
}

func (uc *DeployAccount) prepare(ctx context.Context) (*session, error) {
	deployer, err := uc.signers.Deployer()
	if err != nil {
		return nil, fmt.Errorf("%w: deployer key: %w", domain.ErrInputValidation, err)
	}
	owner, err := uc.signers.Owner()
	if err != nil {
		return nil, fmt.Errorf("%w: owner key: %w", domain.ErrInputValidation, err)
	}

	factory, err := uc.loadBytecode(ctx, uc.config.Artifacts.Factory)
	if err != nil {
		return nil, err
	}
	account, err := uc.loadBytecode(ctx, uc.config.Artifacts.Account)
	if err != nil {
		return nil, err
	}
	factoryHash, err := zksync.HashBytecode(factory)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInputValidation, uc.config.Artifacts.Factory, err)
	}
	accountHash, err := zksync.HashBytecode(account)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInputValidation, uc.config.Artifacts.Account, err)
	}

	chainID, err := uc.network.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if n := uc.config.Network; n != nil && n.ChainID != 0 && n.ChainID != chainID.Uint64() {
		return nil, fmt.Errorf("%w: network %s expects chain %d, node reports %s", domain.ErrNetworkMismatch, n.Name, n.ChainID, chainID)
	}

	return &session{
		chainID:       chainID,
		deployer:      deployer,
		owner:         owner,
		factoryCode:   factory,
		accountCode:   account,
		factoryHash:   factoryHash,
		accountHash:   accountHash,
		gasPerPubdata: uc.config.Deploy.GasPerPubdata,
	}, nil
}

func (uc *DeployAccount) loadBytecode(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: artifact name is not configured", domain.ErrInputValidation)
	}
	contract, err := uc.artifacts.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact %s: %w", name, err)
	}
	code, err := contract.Artifact.Bytecode.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: artifact %s: %w", domain.ErrInputValidation, name, err)
	}
	return code, nil
}

func (uc *DeployAccount) loadOrCreate(ctx context.Context, s *session, params DeployAccountParams) (*models.AccountDeployment, bool, error) {
	existing, err := uc.store.Load(ctx, params.Name)
	switch {
	case err == nil:
		if err := checkResumable(existing, s, params); err != nil {
			return nil, false, err
		}
		return existing, true, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, fmt.Errorf("failed to load deployment %s: %w", params.Name, err)
	}

	now := uc.now()
	d := &models.AccountDeployment{
		Name:                params.Name,
		ChainID:             s.chainID.Uint64(),
		State:               models.StateFactoryPending,
		Deployer:            s.deployer.Address(),
		Owner:               params.Owner,
		Salt:                params.Salt,
		SelfTxSalt:          params.SelfTxSalt,
		FactorySalt:         params.FactorySalt,
		FundingAmount:       new(big.Int).Set(params.FundingAmount),
		FactoryAddress:      params.FactoryAddress,
		ExistingFactory:     params.FactoryAddress != (common.Address{}),
		FactoryBytecodeHash: s.factoryHash,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.store.Save(ctx, d); err != nil {
		return nil, false, fmt.Errorf("failed to save deployment: %w", err)
	}
	return d, false, nil
}

func checkResumable(d *models.AccountDeployment, s *session, params DeployAccountParams) error {
	if d.ChainID != s.chainID.Uint64() {
		return fmt.Errorf("%w: deployment %s is on chain %d, connected to %s", domain.ErrNetworkMismatch, d.Name, d.ChainID, s.chainID)
	}
	if !d.State.Valid() {
		return fmt.Errorf("%w: deployment %s has unknown state %q", domain.ErrInputValidation, d.Name, d.State)
	}
	switch {
	case d.Owner != params.Owner,
		d.Deployer != s.deployer.Address(),
		d.Salt != params.Salt,
		d.SelfTxSalt != params.SelfTxSalt,
		d.FundingAmount == nil || d.FundingAmount.Cmp(params.FundingAmount) != 0:
		return fmt.Errorf("%w: deployment %s exists with different parameters", domain.ErrInputValidation, d.Name)
	}
	if d.FactorySalt != params.FactorySalt {
		return fmt.Errorf("%w: deployment %s uses factory salt %s", domain.ErrInputValidation, d.Name, d.FactorySalt.Hex())
	}
	// an explicit factory must be the one on record; omitting it is only valid
	// when the run deployed its own
	noFactory := params.FactoryAddress == (common.Address{})
	if (!noFactory && params.FactoryAddress != d.FactoryAddress) || (noFactory && d.ExistingFactory) {
		return fmt.Errorf("%w: deployment %s uses factory %s", domain.ErrInputValidation, d.Name, d.FactoryAddress.Hex())
	}
	return nil
}

// step performs the transition out of d.State.
func (uc *DeployAccount) step(ctx context.Context, s *session, d *models.AccountDeployment) error {
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(d.State),
		Current: d.State.Index() + 1,
		Total:   transitions,
		Message: stageMessages[d.State],
		Spinner: d.State.IsPending(),
	})

	from := d.State
	var err error
	switch d.State {
	case models.StateFactoryPending:
		err = uc.deployFactory(ctx, s, d)
	case models.StateFactoryDeployed:
		err = uc.deriveAccount(ctx, s, d)
	case models.StateAccountPending:
		err = uc.deployAccount(ctx, s, d)
	case models.StateAccountDeployed:
		err = uc.snapshotBalance(ctx, d)
	case models.StateFundsPending:
		err = uc.fundAccount(ctx, s, d)
	case models.StateFundsConfirmed:
		err = uc.snapshotNonce(ctx, d)
	case models.StateSelfTxPending:
		err = uc.sendSelfTransaction(ctx, s, d)
	default:
		err = fmt.Errorf("%w: no transition from state %q", domain.ErrInputValidation, d.State)
	}
	if err != nil {
		return err
	}

	d.State = from.Next()
	uc.log.Debug("deployment advanced", "name", d.Name, "from", from, "to", d.State)
	return nil
}

// transitions is the number of steps between the first and the terminal state
var transitions = len(models.States()) - 1

var stageMessages = map[models.DeploymentState]string{
	models.StateFactoryPending:  "Deploying account factory",
	models.StateFactoryDeployed: "Deriving account address",
	models.StateAccountPending:  "Deploying multisig account",
	models.StateAccountDeployed: "Reading account balance",
	models.StateFundsPending:    "Funding account",
	models.StateFundsConfirmed:  "Reading account nonce",
	models.StateSelfTxPending:   "Sending transaction from the account",
}
