package types

import (
	"sync/atomic"

	"github.com/holiman/uint256"
)

const (
	// DynamicFeeTxType is the EIP-2718 envelope type byte for EIP-1559
	// transactions, the only profile this pool admits.
	DynamicFeeTxType = 0x02

	// MaxDataSize bounds the transaction input payload (128 KiB). This is
	// a pool-level DoS guard independent of gas accounting.
	MaxDataSize = 128 * 1024

	// Intrinsic gas parameters for the target fork.
	TxGas                 = 21000
	TxGasContractCreation = 32000
	TxDataNonZeroGas      = 16
	TxDataZeroGas         = 4
	TxAccessListAddrGas   = 2400
	TxAccessListKeyGas    = 1900
)

// AccessTuple is one entry of an EIP-2930 access list: an address plus its
// ordered storage keys.
type AccessTuple struct {
	Address     Address
	StorageKeys []Hash
}

// AccessList is an ordered sequence of access tuples.
type AccessList []AccessTuple

// Addresses returns the number of listed addresses.
func (al AccessList) Addresses() int { return len(al) }

// StorageKeys returns the total number of listed storage keys.
func (al AccessList) StorageKeys() int {
	n := 0
	for _, tuple := range al {
		n += len(tuple.StorageKeys)
	}
	return n
}

// DynamicFeeTx is a decoded EIP-1559 (type 2) transaction. Instances are
// immutable once decoded or signed; the pool and its callers share them
// freely on that basis.
type DynamicFeeTx struct {
	ChainID    uint64
	Nonce      uint64
	GasTipCap  *uint256.Int // max_priority_fee_per_gas
	GasFeeCap  *uint256.Int // max_fee_per_gas
	Gas        uint64       // gas_limit
	To         *Address     // nil means contract creation
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList

	// Signature values. V is the recovery id.
	V uint64
	R *uint256.Int
	S *uint256.Int

	hash atomic.Pointer[Hash]
}

// IsCreation reports whether the transaction creates a contract.
func (tx *DynamicFeeTx) IsCreation() bool { return tx.To == nil }

// Hash returns the content hash over the canonical type-prefixed encoding.
// It is computed once and cached; the pool uses it as the entry key and
// callers use it as the external handle.
func (tx *DynamicFeeTx) Hash() Hash {
	if h := tx.hash.Load(); h != nil {
		return *h
	}
	h := keccak256(EncodeEnvelope(tx))
	tx.hash.Store(&h)
	return h
}

// IntrinsicGas returns the minimum gas the transaction must supply before
// execution, per the consensus formula for the target fork.
func (tx *DynamicFeeTx) IntrinsicGas() uint64 {
	gas := uint64(TxGas)
	if tx.IsCreation() {
		gas += TxGasContractCreation
	}
	for _, b := range tx.Data {
		if b == 0 {
			gas += TxDataZeroGas
		} else {
			gas += TxDataNonZeroGas
		}
	}
	gas += uint64(tx.AccessList.Addresses()) * TxAccessListAddrGas
	gas += uint64(tx.AccessList.StorageKeys()) * TxAccessListKeyGas
	return gas
}

// MaxCost returns gas_limit * max_fee_per_gas + value, the conservative
// upper bound on what the sender can be charged. On 256-bit overflow it
// saturates, which makes any real balance insufficient.
func (tx *DynamicFeeTx) MaxCost() *uint256.Int {
	total := new(uint256.Int)
	if _, overflow := total.MulOverflow(tx.GasFeeCap, uint256.NewInt(tx.Gas)); overflow {
		return maxUint256()
	}
	if _, overflow := total.AddOverflow(total, tx.Value); overflow {
		return maxUint256()
	}
	return total
}

// EffectivePrice returns the per-gas price the transaction yields at the
// given base fee: min(fee_cap - base_fee, tip), clamped at zero. With a nil
// base fee it is the raw fee cap.
func (tx *DynamicFeeTx) EffectivePrice(baseFee *uint256.Int) *uint256.Int {
	if baseFee == nil {
		return new(uint256.Int).Set(tx.GasFeeCap)
	}
	if tx.GasFeeCap.Lt(baseFee) {
		return new(uint256.Int)
	}
	price := new(uint256.Int).Sub(tx.GasFeeCap, baseFee)
	if tx.GasTipCap.Lt(price) {
		price.Set(tx.GasTipCap)
	}
	return price
}

func maxUint256() *uint256.Int {
	max := new(uint256.Int)
	return max.Not(max)
}
