package types

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/ahwlsqja/eth-mempool/rlp"
)

// Decode errors. Each failure mode carries its own sentinel so callers can
// distinguish them with errors.Is; none of them is retryable.
var (
	ErrUnexpectedType     = errors.New("envelope: unexpected transaction type")
	ErrMalformedLength    = errors.New("envelope: malformed length")
	ErrTrailingData       = errors.New("envelope: trailing data after envelope")
	ErrFieldWidthMismatch = errors.New("envelope: field width mismatch")
)

const envelopeFieldCount = 12

// DecodeEnvelope parses a type-prefixed EIP-1559 transaction envelope:
// 0x02 || rlp([chain_id, nonce, tip, fee_cap, gas, to, value, data,
// access_list, v, r, s]). Decoding is all-or-nothing: any structural
// defect fails the whole submission and no partial transaction is returned.
// The content hash is computed from the input before returning.
func DecodeEnvelope(raw []byte) (*DynamicFeeTx, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedLength)
	}
	if raw[0] != DynamicFeeTxType {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnexpectedType, raw[0])
	}

	outer := rlp.NewReader(raw[1:])
	body, err := outer.List()
	if err != nil {
		return nil, mapRLPError(err)
	}
	if !outer.Empty() {
		return nil, fmt.Errorf("%w: %d byte(s) after transaction body", ErrTrailingData, outer.Remaining())
	}

	tx := new(DynamicFeeTx)
	if tx.ChainID, err = body.Uint64(); err != nil {
		return nil, mapRLPError(err)
	}
	if tx.Nonce, err = body.Uint64(); err != nil {
		return nil, mapRLPError(err)
	}
	if tx.GasTipCap, err = readU256(body); err != nil {
		return nil, err
	}
	if tx.GasFeeCap, err = readU256(body); err != nil {
		return nil, err
	}
	if tx.Gas, err = body.Uint64(); err != nil {
		return nil, mapRLPError(err)
	}
	if tx.To, err = readRecipient(body); err != nil {
		return nil, err
	}
	if tx.Value, err = readU256(body); err != nil {
		return nil, err
	}
	if tx.Data, err = body.Bytes(); err != nil {
		return nil, mapRLPError(err)
	}
	if tx.AccessList, err = readAccessList(body); err != nil {
		return nil, err
	}
	if tx.V, err = body.Uint64(); err != nil {
		return nil, mapRLPError(err)
	}
	if tx.R, err = readU256(body); err != nil {
		return nil, err
	}
	if tx.S, err = readU256(body); err != nil {
		return nil, err
	}
	if !body.Empty() {
		return nil, fmt.Errorf("%w: more than %d fields in transaction body", ErrMalformedLength, envelopeFieldCount)
	}

	h := keccak256(raw)
	tx.hash.Store(&h)
	return tx, nil
}

// EncodeEnvelope produces the canonical type-prefixed encoding of tx, the
// exact inverse of DecodeEnvelope.
func EncodeEnvelope(tx *DynamicFeeTx) []byte {
	payload := appendBody(nil, tx)
	payload = rlp.AppendUint64(payload, tx.V)
	payload = rlp.AppendString(payload, tx.R.Bytes())
	payload = rlp.AppendString(payload, tx.S.Bytes())
	return append([]byte{DynamicFeeTxType}, rlp.WrapList(payload)...)
}

// SigHash returns the hash the sender signed: keccak256 over the
// type-prefixed encoding of the nine unsigned fields.
func (tx *DynamicFeeTx) SigHash() Hash {
	payload := appendBody(nil, tx)
	return keccak256(append([]byte{DynamicFeeTxType}, rlp.WrapList(payload)...))
}

// appendBody appends the nine unsigned envelope fields to dst.
func appendBody(dst []byte, tx *DynamicFeeTx) []byte {
	dst = rlp.AppendUint64(dst, tx.ChainID)
	dst = rlp.AppendUint64(dst, tx.Nonce)
	dst = rlp.AppendString(dst, tx.GasTipCap.Bytes())
	dst = rlp.AppendString(dst, tx.GasFeeCap.Bytes())
	dst = rlp.AppendUint64(dst, tx.Gas)
	if tx.To != nil {
		dst = rlp.AppendString(dst, tx.To[:])
	} else {
		dst = rlp.AppendString(dst, nil)
	}
	dst = rlp.AppendString(dst, tx.Value.Bytes())
	dst = rlp.AppendString(dst, tx.Data)

	var alPayload []byte
	for _, tuple := range tx.AccessList {
		var item []byte
		item = rlp.AppendString(item, tuple.Address[:])
		var keys []byte
		for _, key := range tuple.StorageKeys {
			keys = rlp.AppendString(keys, key[:])
		}
		item = append(item, rlp.WrapList(keys)...)
		alPayload = append(alPayload, rlp.WrapList(item)...)
	}
	return append(dst, rlp.WrapList(alPayload)...)
}

// readRecipient parses the to field. A zero-length string is the only legal
// empty encoding and denotes contract creation.
func readRecipient(body *rlp.Reader) (*Address, error) {
	b, err := body.Bytes()
	if err != nil {
		return nil, mapRLPError(err)
	}
	switch len(b) {
	case 0:
		return nil, nil
	case AddressLength:
		addr := BytesToAddress(b)
		return &addr, nil
	default:
		return nil, fmt.Errorf("%w: recipient is %d bytes, want %d", ErrFieldWidthMismatch, len(b), AddressLength)
	}
}

// readAccessList parses the ordered (address, storage keys) sequence. An
// empty list is legal.
func readAccessList(body *rlp.Reader) (AccessList, error) {
	list, err := body.List()
	if err != nil {
		return nil, mapRLPError(err)
	}
	var al AccessList
	for !list.Empty() {
		item, err := list.List()
		if err != nil {
			return nil, mapRLPError(err)
		}
		addrBytes, err := item.Bytes()
		if err != nil {
			return nil, mapRLPError(err)
		}
		if len(addrBytes) != AddressLength {
			return nil, fmt.Errorf("%w: access list address is %d bytes, want %d", ErrFieldWidthMismatch, len(addrBytes), AddressLength)
		}
		tuple := AccessTuple{Address: BytesToAddress(addrBytes)}
		keys, err := item.List()
		if err != nil {
			return nil, mapRLPError(err)
		}
		for !keys.Empty() {
			keyBytes, err := keys.Bytes()
			if err != nil {
				return nil, mapRLPError(err)
			}
			if len(keyBytes) != HashLength {
				return nil, fmt.Errorf("%w: storage key is %d bytes, want %d", ErrFieldWidthMismatch, len(keyBytes), HashLength)
			}
			tuple.StorageKeys = append(tuple.StorageKeys, BytesToHash(keyBytes))
		}
		if !item.Empty() {
			return nil, fmt.Errorf("%w: access tuple has more than 2 fields", ErrMalformedLength)
		}
		al = append(al, tuple)
	}
	return al, nil
}

// readU256 parses a canonical big-endian integer of at most 32 bytes.
func readU256(body *rlp.Reader) (*uint256.Int, error) {
	b, err := body.IntBytes(32)
	if err != nil {
		return nil, mapRLPError(err)
	}
	return new(uint256.Int).SetBytes(b), nil
}

// mapRLPError folds low-level rlp defects into the envelope error taxonomy.
func mapRLPError(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedLength, err)
}

func keccak256(data []byte) Hash {
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	var h Hash
	d.Sum(h[:0])
	return h
}
