// Package crypto provides the signature-recovery capability and hashing
// utilities for the transaction pipeline. The elliptic-curve arithmetic
// itself is delegated to the decred secp256k1 library; this package only
// adapts it to transaction signing hashes and account addresses.
package crypto

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/ahwlsqja/eth-mempool/types"
)

// ErrInvalidSignature is returned when a signature does not recover to a
// valid public key.
var ErrInvalidSignature = errors.New("crypto: invalid transaction signature")

// compactSigMagicOffset is the header offset used by the compact signature
// format: header = offset + recovery id.
const compactSigMagicOffset = 27

// Keccak256 computes the keccak256 digest over the concatenation of the
// given byte slices.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// PubkeyToAddress derives the account address from an uncompressed
// secp256k1 public key: the last 20 bytes of keccak256 over the 64-byte
// curve point.
func PubkeyToAddress(pub *secp256k1.PublicKey) types.Address {
	raw := pub.SerializeUncompressed()
	return types.BytesToAddress(Keccak256(raw[1:])[12:])
}

// RecoverSender recovers the signing address of tx from its signature
// values and signing hash. The recovery id must already have passed shape
// validation; a signature that does not recover yields ErrInvalidSignature.
func RecoverSender(tx *types.DynamicFeeTx) (types.Address, error) {
	if tx.V > 1 {
		return types.Address{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, tx.V)
	}
	var sig [65]byte
	sig[0] = compactSigMagicOffset + byte(tx.V)
	r := tx.R.Bytes32()
	s := tx.S.Bytes32()
	copy(sig[1:33], r[:])
	copy(sig[33:65], s[:])

	sigHash := tx.SigHash()
	pub, _, err := secpecdsa.RecoverCompact(sig[:], sigHash[:])
	if err != nil {
		return types.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return PubkeyToAddress(pub), nil
}

// Key is a secp256k1 private key usable for signing transactions, mainly
// in tests and development tooling.
type Key struct {
	priv *secp256k1.PrivateKey
}

// GenerateKey creates a fresh random key.
func GenerateKey() (*Key, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &Key{priv: priv}, nil
}

// Address returns the account address controlled by the key.
func (k *Key) Address() types.Address {
	return PubkeyToAddress(k.priv.PubKey())
}

// SignTx fills in the V, R, S fields of tx with a signature over its
// signing hash. It must be called before the content hash is first read,
// since signing changes the canonical encoding.
func (k *Key) SignTx(tx *types.DynamicFeeTx) error {
	sigHash := tx.SigHash()
	sig := secpecdsa.SignCompact(k.priv, sigHash[:], false)
	tx.V = uint64(sig[0] - compactSigMagicOffset)
	tx.R = new(uint256.Int).SetBytes(sig[1:33])
	tx.S = new(uint256.Int).SetBytes(sig[33:65])
	return nil
}
