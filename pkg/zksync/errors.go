package zksync

import "errors"

var (
	// ErrInvalidInputLength is returned when a fixed-size input (bytecode hash, salt) has the wrong length
	ErrInvalidInputLength = errors.New("invalid input length")

	// ErrInvalidBytecode is returned when bytecode cannot be hashed by the zkSync rules
	ErrInvalidBytecode = errors.New("invalid bytecode")

	// ErrUnsupportedType is returned by the ABI encoder for types outside address, integers and bytes
	ErrUnsupportedType = errors.New("unsupported abi type")

	// ErrInvalidArgument is returned when an argument value does not fit its ABI type
	ErrInvalidArgument = errors.New("invalid abi argument")

	// ErrInvalidKey is returned for malformed private keys
	ErrInvalidKey = errors.New("invalid private key")

	// ErrIncompleteTransaction is returned when a transaction lacks estimated fields
	ErrIncompleteTransaction = errors.New("incomplete transaction")

	// ErrEmptySignature is returned when finalizing with an empty custom signature
	ErrEmptySignature = errors.New("empty signatures are not supported")

	// ErrInvalidSignature is returned when a signature is malformed or cannot be recovered
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidEncoding is returned when decoding a malformed serialized transaction
	ErrInvalidEncoding = errors.New("invalid transaction encoding")
)
