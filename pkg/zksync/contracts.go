package zksync

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
)

var (
	funcCreate2 = w3.MustNewFunc(
		"create2(bytes32 salt, bytes32 bytecodeHash, bytes input)", "address",
	)
	funcDeployAccount = w3.MustNewFunc(
		"deployAccount(bytes32 salt, address owner)", "address",
	)
	funcAABytecodeHash = w3.MustNewFunc(
		"aaBytecodeHash()", "bytes32",
	)
	eventContractDeployed = w3.MustNewEvent(
		"ContractDeployed(address indexed deployerAddress, bytes32 indexed bytecodeHash, address indexed contractAddress)",
	)
)

// ContractDeployed is the event the ContractDeployer emits for every new contract.
type ContractDeployed struct {
	Deployer     common.Address
	BytecodeHash common.Hash
	Contract     common.Address
}

// EncodeCreate2 builds call data for ContractDeployer.create2.
func EncodeCreate2(salt, bytecodeHash common.Hash, input []byte) ([]byte, error) {
	data, err := funcCreate2.EncodeArgs([32]byte(salt), [32]byte(bytecodeHash), input)
	if err != nil {
		return nil, fmt.Errorf("encode create2: %w", err)
	}
	return data, nil
}

// EncodeDeployAccount builds call data for the account factory's deployAccount.
func EncodeDeployAccount(salt common.Hash, owner common.Address) ([]byte, error) {
	data, err := funcDeployAccount.EncodeArgs([32]byte(salt), owner)
	if err != nil {
		return nil, fmt.Errorf("encode deployAccount: %w", err)
	}
	return data, nil
}

// EncodeAABytecodeHash builds call data for the factory's aaBytecodeHash getter.
func EncodeAABytecodeHash() ([]byte, error) {
	data, err := funcAABytecodeHash.EncodeArgs()
	if err != nil {
		return nil, fmt.Errorf("encode aaBytecodeHash: %w", err)
	}
	return data, nil
}

// DecodeAABytecodeHash decodes the return data of aaBytecodeHash.
func DecodeAABytecodeHash(output []byte) (common.Hash, error) {
	var hash [32]byte
	if err := funcAABytecodeHash.DecodeReturns(output, &hash); err != nil {
		return common.Hash{}, fmt.Errorf("decode aaBytecodeHash: %w", err)
	}
	return common.Hash(hash), nil
}

// ParseContractDeployed returns every ContractDeployed event emitted by the
// ContractDeployer in logs, in log order.
func ParseContractDeployed(logs []*types.Log) []ContractDeployed {
	var events []ContractDeployed
	for _, log := range logs {
		if log == nil || log.Address != ContractDeployerAddress {
			continue
		}
		var (
			deployer     common.Address
			bytecodeHash [32]byte
			contract     common.Address
		)
		if err := eventContractDeployed.DecodeArgs(log, &deployer, &bytecodeHash, &contract); err != nil {
			continue
		}
		events = append(events, ContractDeployed{
			Deployer:     deployer,
			BytecodeHash: common.Hash(bytecodeHash),
			Contract:     contract,
		})
	}
	return events
}

// FindContractDeployed returns the first deployment made by deployer, if any.
func FindContractDeployed(logs []*types.Log, deployer common.Address) (ContractDeployed, bool) {
	for _, ev := range ParseContractDeployed(logs) {
		if ev.Deployer == deployer {
			return ev, true
		}
	}
	return ContractDeployed{}, false
}
