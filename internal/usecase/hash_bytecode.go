package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/pkg/zksync"
)

// HashBytecodeParams selects the bytecode to hash: an artifact name or raw hex
type HashBytecodeParams struct {
	Artifact string
	Hex      string
}

// HashBytecodeResult is a versioned zkSync bytecode hash
type HashBytecodeResult struct {
	Name   string
	Hash   common.Hash
	Words  uint16
	Length int
}

// HashBytecode computes the bytecode hash zkSync uses for deployments
type HashBytecode struct {
	artifacts ArtifactLoader
}

// NewHashBytecode creates a new HashBytecode use case
func NewHashBytecode(artifacts ArtifactLoader) *HashBytecode {
	return &HashBytecode{artifacts: artifacts}
}

// Run hashes the selected bytecode
func (uc *HashBytecode) Run(ctx context.Context, params HashBytecodeParams) (*HashBytecodeResult, error) {
	var (
		code []byte
		name = params.Artifact
		err  error
	)
	switch {
	case params.Hex != "" && params.Artifact != "":
		return nil, fmt.Errorf("%w: give either an artifact or bytecode hex", domain.ErrInputValidation)
	case params.Hex != "":
		name = "<hex>"
		code, err = hexutil.Decode(params.Hex)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInputValidation, err)
		}
	case params.Artifact != "":
		contract, err := uc.artifacts.Load(ctx, params.Artifact)
		if err != nil {
			return nil, fmt.Errorf("failed to load artifact %s: %w", params.Artifact, err)
		}
		code, err = contract.Artifact.Bytecode.Bytes()
		if err != nil {
			return nil, fmt.Errorf("%w: artifact %s: %w", domain.ErrInputValidation, params.Artifact, err)
		}
	default:
		return nil, fmt.Errorf("%w: nothing to hash", domain.ErrInputValidation)
	}

	hash, err := zksync.HashBytecode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInputValidation, err)
	}
	return &HashBytecodeResult{
		Name:   name,
		Hash:   hash,
		Words:  zksync.BytecodeWords(hash),
		Length: len(code),
	}, nil
}
