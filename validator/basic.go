package validator

import (
	"errors"
	"fmt"

	"github.com/ahwlsqja/eth-mempool/types"
)

// Stateless validation failures. Each is a terminal rejection; retrying
// the same payload can never succeed.
var (
	ErrFeeOrdering       = errors.New("max fee per gas below max priority fee")
	ErrGasFloor          = errors.New("gas limit below intrinsic gas")
	ErrPayloadTooLarge   = errors.New("transaction payload exceeds size limit")
	ErrBadSignatureShape = errors.New("malformed signature values")
)

// ValidateBasic checks every property of tx that can be verified without
// touching chain state. Checks run in a fixed order and the first failure
// wins, so a transaction violating several rules reports deterministically.
func ValidateBasic(tx *types.DynamicFeeTx) error {
	if tx.GasFeeCap.Lt(tx.GasTipCap) {
		return fmt.Errorf("%w: fee cap %s, tip cap %s", ErrFeeOrdering, tx.GasFeeCap, tx.GasTipCap)
	}
	intrinsic := tx.IntrinsicGas()
	if tx.Gas < intrinsic {
		return fmt.Errorf("%w: have %d, need %d", ErrGasFloor, tx.Gas, intrinsic)
	}
	if len(tx.Data) > types.MaxDataSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(tx.Data), types.MaxDataSize)
	}
	if tx.V > 1 {
		return fmt.Errorf("%w: recovery id %d", ErrBadSignatureShape, tx.V)
	}
	if tx.R.IsZero() || tx.S.IsZero() {
		return fmt.Errorf("%w: zero r or s", ErrBadSignatureShape)
	}
	return nil
}
