// Package types defines the core data structures for the transaction
// ingestion pipeline: addresses, hashes and the EIP-1559 transaction entity
// together with its typed envelope encoding.
package types

import (
	"encoding/hex"
)

// AddressLength is the width of an Ethereum account address in bytes.
const AddressLength = 20

// HashLength is the width of a keccak256 hash in bytes.
const HashLength = 32

// Address is a 20-byte account address.
type Address [AddressLength]byte

// Hash is a 32-byte keccak256 digest. Transaction identity is a Hash over
// the canonical type-prefixed encoding.
type Hash [HashLength]byte

// BytesToAddress returns the address with b right-aligned into it.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// BytesToHash returns the hash with b right-aligned into it.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the 0x-prefixed hex representation of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex representation of the hash.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }
