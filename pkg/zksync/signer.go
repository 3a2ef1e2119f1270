package zksync

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signature is a secp256k1 signature laid out as r ‖ s ‖ recovery id (0 or 1).
type Signature [crypto.SignatureLength]byte

// R returns the r value.
func (s Signature) R() *big.Int { return new(big.Int).SetBytes(s[0:32]) }

// S returns the s value.
func (s Signature) S() *big.Int { return new(big.Int).SetBytes(s[32:64]) }

// RecoveryID returns the recovery id, 0 or 1.
func (s Signature) RecoveryID() byte { return s[64] }

// Bytes returns r ‖ s ‖ v with v in {27, 28}, the form accounts recover
// owners from with ecrecover.
func (s Signature) Bytes() []byte {
	out := make([]byte, crypto.SignatureLength)
	copy(out, s[:])
	out[64] += 27
	return out
}

// Signer signs raw 32-byte digests.
type Signer interface {
	Address() common.Address
	SignDigest(digest common.Hash) (Signature, error)
}

// SignDigest signs digest with key. Nonces follow RFC 6979, so the same digest
// and key always produce the same signature. The digest is signed as is,
// without the "\x19Ethereum Signed Message" prefix.
func SignDigest(digest common.Hash, key *ecdsa.PrivateKey) (Signature, error) {
	if key == nil || key.D == nil || key.D.Sign() <= 0 {
		return Signature{}, ErrInvalidKey
	}
	raw, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	var sig Signature
	copy(sig[:], raw)
	return sig, nil
}

// ParsePrivateKey parses a hex encoded secp256k1 private key, with or without 0x.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if len(hexKey) != 64 {
		return nil, fmt.Errorf("%w: expected 32 bytes of hex, got %d characters", ErrInvalidKey, len(hexKey))
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

// RecoverAddress returns the address that produced sig over digest. sig may use
// either recovery id form (0/1 or 27/28).
func RecoverAddress(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}
	normalized := common.CopyBytes(sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(digest.Bytes(), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// PrivateKeySigner signs with an in-memory private key.
type PrivateKeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewPrivateKeySigner wraps key.
func NewPrivateKeySigner(key *ecdsa.PrivateKey) (*PrivateKeySigner, error) {
	if key == nil {
		return nil, ErrInvalidKey
	}
	return &PrivateKeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// NewPrivateKeySignerFromHex parses hexKey and wraps it.
func NewPrivateKeySignerFromHex(hexKey string) (*PrivateKeySigner, error) {
	key, err := ParsePrivateKey(hexKey)
	if err != nil {
		return nil, err
	}
	return NewPrivateKeySigner(key)
}

func (s *PrivateKeySigner) Address() common.Address { return s.address }

func (s *PrivateKeySigner) SignDigest(digest common.Hash) (Signature, error) {
	return SignDigest(digest, s.key)
}

// SignTransaction signs tx as an externally owned account.
func SignTransaction(tx *Transaction712, signer Signer) (*SignedTransaction712, error) {
	digest, err := tx.Digest()
	if err != nil {
		return nil, err
	}
	sig, err := signer.SignDigest(digest)
	if err != nil {
		return nil, err
	}
	return tx.WithSignature(sig)
}

// SignAccountTransaction signs tx on behalf of an account-abstraction sender;
// signer must be one of the account's owners.
func SignAccountTransaction(tx *Transaction712, signer Signer) (*SignedTransaction712, error) {
	digest, err := tx.Digest()
	if err != nil {
		return nil, err
	}
	sig, err := signer.SignDigest(digest)
	if err != nil {
		return nil, err
	}
	return tx.WithCustomSignature(sig.Bytes())
}
