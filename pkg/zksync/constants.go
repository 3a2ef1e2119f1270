package zksync

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// EIP712TxType is the transaction type byte of zkSync EIP-712 transactions.
	EIP712TxType byte = 0x71

	// DefaultGasPerPubdataLimit is the gas per pubdata byte limit used when a
	// transaction does not set one.
	DefaultGasPerPubdataLimit uint64 = 50_000

	// maxBytecodeWords is the largest bytecode length, in 32-byte words, that
	// fits into the two length bytes of a versioned bytecode hash.
	maxBytecodeWords = 1<<16 - 1
)

// ContractDeployerAddress is the zkSync system contract every deployment goes through.
var ContractDeployerAddress = common.HexToAddress("0x0000000000000000000000000000000000008006")

var (
	create2Prefix = crypto.Keccak256([]byte("zksyncCreate2"))
	createPrefix  = crypto.Keccak256([]byte("zksyncCreate"))

	// bytecode hash version marker stored in the first two bytes
	bytecodeHashVersion = [2]byte{1, 0}
)
