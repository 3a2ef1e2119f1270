package zksync

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// HashBytecode returns the versioned bytecode hash zkSync uses to identify
// contract code: sha256(bytecode) with the first two bytes replaced by the
// version marker and the next two by the length of the bytecode in 32-byte words.
func HashBytecode(bytecode []byte) (common.Hash, error) {
	if len(bytecode) == 0 {
		return common.Hash{}, fmt.Errorf("%w: empty bytecode", ErrInvalidBytecode)
	}
	if len(bytecode)%32 != 0 {
		return common.Hash{}, fmt.Errorf("%w: length %d is not divisible by 32", ErrInvalidBytecode, len(bytecode))
	}

	words := len(bytecode) / 32
	if words > maxBytecodeWords {
		return common.Hash{}, fmt.Errorf("%w: %d words exceeds the maximum of %d", ErrInvalidBytecode, words, maxBytecodeWords)
	}
	if words%2 == 0 {
		return common.Hash{}, fmt.Errorf("%w: length in 32-byte words must be odd, got %d", ErrInvalidBytecode, words)
	}

	hash := common.Hash(sha256.Sum256(bytecode))
	copy(hash[0:2], bytecodeHashVersion[:])
	binary.BigEndian.PutUint16(hash[2:4], uint16(words))
	return hash, nil
}

// BytecodeWords extracts the code length in words from a versioned bytecode hash.
func BytecodeWords(hash common.Hash) uint16 {
	return binary.BigEndian.Uint16(hash[2:4])
}
