package zksync

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// Create2Address computes the address the zkSync ContractDeployer assigns to a
// create2 deployment:
//
//	keccak256(keccak256("zksyncCreate2") ‖ pad32(sender) ‖ salt ‖ bytecodeHash ‖ keccak256(input))[12:]
//
// input is the ABI-encoded constructor arguments.
func Create2Address(sender common.Address, bytecodeHash, salt, input []byte) (common.Address, error) {
	if len(bytecodeHash) != common.HashLength {
		return common.Address{}, fmt.Errorf("%w: bytecode hash must be %d bytes, got %d", ErrInvalidInputLength, common.HashLength, len(bytecodeHash))
	}
	if len(salt) != common.HashLength {
		return common.Address{}, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidInputLength, common.HashLength, len(salt))
	}

	hash := crypto.Keccak256(
		create2Prefix,
		common.LeftPadBytes(sender.Bytes(), 32),
		salt,
		bytecodeHash,
		crypto.Keccak256(input),
	)
	return common.BytesToAddress(hash[12:]), nil
}

// CreateAddress computes the address of a non-create2 deployment, where nonce is
// the deployment nonce of sender (not its transaction nonce).
func CreateAddress(sender common.Address, nonce uint64) common.Address {
	hash := crypto.Keccak256(
		createPrefix,
		common.LeftPadBytes(sender.Bytes(), 32),
		math.U256Bytes(new(big.Int).SetUint64(nonce)),
	)
	return common.BytesToAddress(hash[12:])
}
