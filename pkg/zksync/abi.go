package zksync

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

// Arg is a single typed ABI argument
type Arg struct {
	Type  string
	Value any
}

// AddressArg creates an address argument
func AddressArg(addr common.Address) Arg {
	return Arg{Type: "address", Value: addr}
}

// Bytes32Arg creates a bytes32 argument
func Bytes32Arg(b common.Hash) Arg {
	return Arg{Type: "bytes32", Value: b}
}

// Uint256Arg creates a uint256 argument
func Uint256Arg(v *big.Int) Arg {
	return Arg{Type: "uint256", Value: v}
}

// BytesArg creates a dynamic bytes argument
func BytesArg(b []byte) Arg {
	return Arg{Type: "bytes", Value: b}
}

// EncodeArgs ABI-encodes args the way abi.encode does on-chain: one 32-byte
// slot per static value, dynamic bytes as offset plus length-prefixed tail.
// Only address, intN/uintN, bytesN and bytes are supported.
func EncodeArgs(args ...Arg) ([]byte, error) {
	arguments := make(abi.Arguments, 0, len(args))
	values := make([]any, 0, len(args))

	for i, arg := range args {
		typ, value, err := normalizeArg(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, arg.Type, err)
		}
		arguments = append(arguments, abi.Argument{Type: typ})
		values = append(values, value)
	}

	encoded, err := arguments.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return encoded, nil
}

// normalizeArg resolves the ABI type and converts the value to the Go type the
// go-ethereum packer expects for it.
func normalizeArg(arg Arg) (abi.Type, any, error) {
	typ, err := abi.NewType(arg.Type, "", nil)
	if err != nil {
		return abi.Type{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedType, arg.Type)
	}

	var value any
	switch typ.T {
	case abi.AddressTy:
		value, err = toAddress(arg.Value)
	case abi.UintTy, abi.IntTy:
		if typ.Size%8 != 0 || typ.Size < 8 || typ.Size > 256 {
			return abi.Type{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedType, arg.Type)
		}
		value, err = toInteger(typ, arg.Value)
	case abi.FixedBytesTy:
		value, err = toFixedBytes(typ, arg.Value)
	case abi.BytesTy:
		value, err = toBytes(arg.Value)
	default:
		return abi.Type{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedType, arg.Type)
	}
	if err != nil {
		return abi.Type{}, nil, err
	}
	return typ, value, nil
}

func toAddress(v any) (common.Address, error) {
	switch x := v.(type) {
	case common.Address:
		return x, nil
	case *common.Address:
		if x == nil {
			return common.Address{}, fmt.Errorf("%w: nil address", ErrInvalidArgument)
		}
		return *x, nil
	case string:
		if !common.IsHexAddress(x) {
			return common.Address{}, fmt.Errorf("%w: %q is not a hex address", ErrInvalidArgument, x)
		}
		return common.HexToAddress(x), nil
	default:
		return common.Address{}, fmt.Errorf("%w: cannot use %T as address", ErrInvalidArgument, v)
	}
}

func toBigInt(v any) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil, fmt.Errorf("%w: nil integer", ErrInvalidArgument)
		}
		return new(big.Int).Set(x), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint:
		return new(big.Int).SetUint64(uint64(x)), nil
	case int64:
		return big.NewInt(x), nil
	case int32:
		return big.NewInt(int64(x)), nil
	case int16:
		return big.NewInt(int64(x)), nil
	case int8:
		return big.NewInt(int64(x)), nil
	case int:
		return big.NewInt(int64(x)), nil
	case string:
		b, ok := math.ParseBig256(x)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, x)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: cannot use %T as integer", ErrInvalidArgument, v)
	}
}

func toInteger(typ abi.Type, v any) (any, error) {
	b, err := toBigInt(v)
	if err != nil {
		return nil, err
	}

	if typ.T == abi.UintTy {
		if b.Sign() < 0 || b.BitLen() > typ.Size {
			return nil, fmt.Errorf("%w: %s out of range for uint%d", ErrInvalidArgument, b, typ.Size)
		}
		switch typ.Size {
		case 8:
			return uint8(b.Uint64()), nil
		case 16:
			return uint16(b.Uint64()), nil
		case 32:
			return uint32(b.Uint64()), nil
		case 64:
			return b.Uint64(), nil
		}
		return b, nil
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
	minValue := new(big.Int).Neg(limit)
	if b.Cmp(minValue) < 0 || b.Cmp(limit) >= 0 {
		return nil, fmt.Errorf("%w: %s out of range for int%d", ErrInvalidArgument, b, typ.Size)
	}
	switch typ.Size {
	case 8:
		return int8(b.Int64()), nil
	case 16:
		return int16(b.Int64()), nil
	case 32:
		return int32(b.Int64()), nil
	case 64:
		return b.Int64(), nil
	}
	return b, nil
}

func toBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case hexutil.Bytes:
		return x, nil
	case common.Hash:
		return x.Bytes(), nil
	case string:
		b, err := hexutil.Decode(x)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		return b, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		out := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(out), rv)
		return out, nil
	}
	return nil, fmt.Errorf("%w: cannot use %T as bytes", ErrInvalidArgument, v)
}

func toFixedBytes(typ abi.Type, v any) (any, error) {
	raw, err := toBytes(v)
	if err != nil {
		return nil, err
	}
	if len(raw) != typ.Size {
		return nil, fmt.Errorf("%w: bytes%d needs %d bytes, got %d", ErrInvalidArgument, typ.Size, typ.Size, len(raw))
	}

	arr := reflect.New(reflect.ArrayOf(typ.Size, reflect.TypeOf(byte(0)))).Elem()
	reflect.Copy(arr, reflect.ValueOf(raw))
	return arr.Interface(), nil
}
