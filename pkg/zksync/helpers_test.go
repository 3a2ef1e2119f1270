package zksync

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

const testKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func newTestSigner(t *testing.T) *PrivateKeySigner {
	t.Helper()
	signer, err := NewPrivateKeySignerFromHex(testKeyHex)
	require.NoError(t, err)
	return signer
}

// keccak is an independent keccak256 used to cross-check layouts.
func keccak(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}

func word(v *big.Int) []byte {
	out := make([]byte, 32)
	v.FillBytes(out)
	return out
}

func addrWord(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), 32)
}

// oddBytecode returns a bytecode of the given (odd) number of words.
func oddBytecode(words int, fill byte) []byte {
	code := make([]byte, words*32)
	for i := range code {
		code[i] = fill + byte(i)
	}
	return code
}

func sampleTransaction() *Transaction712 {
	return NewTransaction(CallIntent{
		From:  common.HexToAddress("0x1111111111111111111111111111111111111111"),
		To:    common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Value: big.NewInt(1_000_000),
		Data:  []byte{0xde, 0xad, 0xbe, 0xef},
	}).Estimate(Estimate{
		GasLimit: 5_000_000,
		GasPrice: big.NewInt(250_000_000),
		Nonce:    7,
		ChainID:  big.NewInt(300),
	})
}
