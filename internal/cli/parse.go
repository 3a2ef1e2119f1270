package cli

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/pkg/zksync"
)

var weiPerEther = new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// parseEther parses a decimal ether amount such as "0.008" into wei. A
// "wei" suffix takes the integer as wei.
func parseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if w, ok := strings.CutSuffix(s, "wei"); ok {
		wei, ok := new(big.Int).SetString(strings.TrimSpace(w), 10)
		if !ok || wei.Sign() < 0 {
			return nil, fmt.Errorf("%w: invalid wei amount %q", domain.ErrInputValidation, s)
		}
		return wei, nil
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "eth"))

	amount, ok := new(big.Rat).SetString(s)
	if !ok || amount.Sign() < 0 || strings.ContainsAny(s, "/eE") {
		return nil, fmt.Errorf("%w: invalid ether amount %q", domain.ErrInputValidation, s)
	}
	wei := amount.Mul(amount, weiPerEther)
	if !wei.IsInt() {
		return nil, fmt.Errorf("%w: %q has more than 18 decimals", domain.ErrInputValidation, s)
	}
	return new(big.Int).Set(wei.Num()), nil
}

func parseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %s %q is not an address", domain.ErrInputValidation, name, s)
	}
	return common.HexToAddress(s), nil
}

// parseHash32 requires exactly 32 bytes of hex
func parseHash32(name, s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %s: %v", domain.ErrInputValidation, name, err)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %s: %w: got %d bytes, want 32",
			domain.ErrInputValidation, name, zksync.ErrInvalidInputLength, len(b))
	}
	return common.BytesToHash(b), nil
}

// parseArg parses a constructor argument of the form <type>:<value>. Any type
// the ABI encoder supports is accepted; the value is checked by encoding it.
func parseArg(s string) (zksync.Arg, error) {
	typ, value, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(typ) == "" {
		return zksync.Arg{}, fmt.Errorf("%w: argument %q must be <type>:<value>", domain.ErrInputValidation, s)
	}

	arg := zksync.Arg{Type: strings.TrimSpace(typ), Value: strings.TrimSpace(value)}
	if _, err := zksync.EncodeArgs(arg); err != nil {
		return zksync.Arg{}, fmt.Errorf("%w: %w", domain.ErrInputValidation, err)
	}
	return arg, nil
}
