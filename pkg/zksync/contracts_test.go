package zksync

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContractDeployed(t *testing.T) {
	factory := common.HexToAddress("0xfac0000000000000000000000000000000000001")
	account := common.HexToAddress("0xacc0000000000000000000000000000000000002")

	deployed := ContractDeployed{Deployer: factory, BytecodeHash: testBytecodeHash, Contract: account}
	foreign := contractDeployedLog(deployed)
	foreign.Address = common.HexToAddress("0x0000000000000000000000000000000000000001")

	logs := []*types.Log{
		foreign,
		{Address: ContractDeployerAddress, Topics: []common.Hash{crypto.Keccak256Hash([]byte("Other()"))}},
		contractDeployedLog(deployed),
	}

	events := ParseContractDeployed(logs)
	require.Len(t, events, 1)
	assert.Equal(t, deployed, events[0])

	got, ok := FindContractDeployed(logs, factory)
	require.True(t, ok)
	assert.Equal(t, account, got.Contract)

	_, ok = FindContractDeployed(logs, account)
	assert.False(t, ok)
}

func TestAABytecodeHashCodec(t *testing.T) {
	data, err := EncodeAABytecodeHash()
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256([]byte("aaBytecodeHash()"))[:4], data)

	hash, err := DecodeAABytecodeHash(testBytecodeHash.Bytes())
	require.NoError(t, err)
	assert.Equal(t, testBytecodeHash, hash)
}

func TestEncodeCreate2(t *testing.T) {
	salt := common.HexToHash("0x05")
	input := []byte{0x01, 0x02}

	data, err := EncodeCreate2(salt, testBytecodeHash, input)
	require.NoError(t, err)

	args, err := EncodeArgs(Bytes32Arg(salt), Bytes32Arg(testBytecodeHash), BytesArg(input))
	require.NoError(t, err)

	assert.Equal(t, crypto.Keccak256([]byte("create2(bytes32,bytes32,bytes)"))[:4], data[:4])
	assert.Equal(t, args, data[4:])
}

func contractDeployedLog(ev ContractDeployed) *types.Log {
	return &types.Log{
		Address: ContractDeployerAddress,
		Topics: []common.Hash{
			crypto.Keccak256Hash([]byte("ContractDeployed(address,bytes32,address)")),
			common.BytesToHash(ev.Deployer.Bytes()),
			ev.BytecodeHash,
			common.BytesToHash(ev.Contract.Bytes()),
		},
	}
}
