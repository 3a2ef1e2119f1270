package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/pkg/zksync"
)

// PredictAddressParams contains parameters for predicting a deployment address
type PredictAddressParams struct {
	// Deployer is the create2 sender, usually the factory. Defaults to the
	// configured factory address.
	Deployer common.Address
	// BytecodeHash defaults to the hash of the configured account artifact.
	BytecodeHash common.Hash
	Salt         common.Hash
	// Owner is encoded as the constructor input unless Args is set.
	Owner common.Address
	Args  []zksync.Arg
	// Nonce switches to create address derivation.
	Nonce *uint64
}

// PredictAddressResult contains the predicted address and its inputs
type PredictAddressResult struct {
	Method       string
	Address      common.Address
	Deployer     common.Address
	BytecodeHash common.Hash
	Salt         common.Hash
	Input        []byte
}

// PredictAddress derives deployment addresses without touching the network
type PredictAddress struct {
	config    *config.RuntimeConfig
	artifacts ArtifactLoader
}

// NewPredictAddress creates a new PredictAddress use case
func NewPredictAddress(cfg *config.RuntimeConfig, artifacts ArtifactLoader) *PredictAddress {
	return &PredictAddress{config: cfg, artifacts: artifacts}
}

// Run predicts the address
func (uc *PredictAddress) Run(ctx context.Context, params PredictAddressParams) (*PredictAddressResult, error) {
	deployer := params.Deployer
	if deployer == (common.Address{}) {
		configured := uc.config.Deploy.FactoryAddress
		if !common.IsHexAddress(configured) {
			return nil, fmt.Errorf("%w: no deployer given and no factory address configured", domain.ErrInputValidation)
		}
		deployer = common.HexToAddress(configured)
	}

	if params.Nonce != nil {
		return &PredictAddressResult{
			Method:   "create",
			Address:  zksync.CreateAddress(deployer, *params.Nonce),
			Deployer: deployer,
		}, nil
	}

	hash := params.BytecodeHash
	if hash == (common.Hash{}) {
		var err error
		hash, err = uc.accountHash(ctx)
		if err != nil {
			return nil, err
		}
	}

	args := params.Args
	if len(args) == 0 {
		if params.Owner == (common.Address{}) {
			return nil, fmt.Errorf("%w: owner or constructor arguments are required", domain.ErrInputValidation)
		}
		args = []zksync.Arg{zksync.AddressArg(params.Owner)}
	}
	input, err := zksync.EncodeArgs(args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInputValidation, err)
	}

	addr, err := zksync.Create2Address(deployer, hash.Bytes(), params.Salt.Bytes(), input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInputValidation, err)
	}

	return &PredictAddressResult{
		Method:       "create2",
		Address:      addr,
		Deployer:     deployer,
		BytecodeHash: hash,
		Salt:         params.Salt,
		Input:        input,
	}, nil
}

func (uc *PredictAddress) accountHash(ctx context.Context) (common.Hash, error) {
	name := uc.config.Artifacts.Account
	if name == "" {
		return common.Hash{}, fmt.Errorf("%w: no bytecode hash given and no account artifact configured", domain.ErrInputValidation)
	}
	contract, err := uc.artifacts.Load(ctx, name)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to load artifact %s: %w", name, err)
	}
	code, err := contract.Artifact.Bytecode.Bytes()
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: artifact %s: %w", domain.ErrInputValidation, name, err)
	}
	hash, err := zksync.HashBytecode(code)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: artifact %s: %w", domain.ErrInputValidation, name, err)
	}
	return hash, nil
}
