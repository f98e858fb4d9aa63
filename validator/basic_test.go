package validator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/ahwlsqja/eth-mempool/types"
)

func validTx() *types.DynamicFeeTx {
	to := types.BytesToAddress([]byte{0x01})
	return &types.DynamicFeeTx{
		ChainID:   1,
		Nonce:     0,
		GasTipCap: uint256.NewInt(1_000_000_000),
		GasFeeCap: uint256.NewInt(20_000_000_000),
		Gas:       100_000,
		To:        &to,
		Value:     new(uint256.Int),
		V:         0,
		R:         uint256.NewInt(1),
		S:         uint256.NewInt(1),
	}
}

func TestValidateBasic(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(tx *types.DynamicFeeTx)
		want   error
	}{
		{
			"valid",
			func(tx *types.DynamicFeeTx) {},
			nil,
		},
		{
			"tip above fee cap",
			func(tx *types.DynamicFeeTx) {
				tx.GasTipCap = uint256.NewInt(3_000_000_000)
				tx.GasFeeCap = uint256.NewInt(2_000_000_000)
			},
			ErrFeeOrdering,
		},
		{
			"gas below intrinsic",
			func(tx *types.DynamicFeeTx) { tx.Gas = 20_999 },
			ErrGasFloor,
		},
		{
			"gas below intrinsic with data",
			func(tx *types.DynamicFeeTx) {
				tx.Gas = 21_000
				tx.Data = []byte{0x01}
			},
			ErrGasFloor,
		},
		{
			"payload too large",
			func(tx *types.DynamicFeeTx) {
				tx.Data = bytes.Repeat([]byte{0x01}, types.MaxDataSize+1)
				tx.Gas = 10_000_000
			},
			ErrPayloadTooLarge,
		},
		{
			"payload at limit",
			func(tx *types.DynamicFeeTx) {
				tx.Data = bytes.Repeat([]byte{0x01}, types.MaxDataSize)
				tx.Gas = 10_000_000
			},
			nil,
		},
		{
			"recovery id out of range",
			func(tx *types.DynamicFeeTx) { tx.V = 2 },
			ErrBadSignatureShape,
		},
		{
			"zero r",
			func(tx *types.DynamicFeeTx) { tx.R = new(uint256.Int) },
			ErrBadSignatureShape,
		},
		{
			"zero s",
			func(tx *types.DynamicFeeTx) { tx.S = new(uint256.Int) },
			ErrBadSignatureShape,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTx()
			tc.mutate(tx)
			err := ValidateBasic(tx)
			if tc.want == nil {
				if err != nil {
					t.Errorf("ValidateBasic = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("ValidateBasic = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateBasic_FirstFailureWins(t *testing.T) {
	// Fee ordering is checked before gas, so a transaction violating both
	// reports FeeOrdering deterministically.
	tx := validTx()
	tx.GasTipCap = uint256.NewInt(10)
	tx.GasFeeCap = uint256.NewInt(5)
	tx.Gas = 1

	if err := ValidateBasic(tx); !errors.Is(err, ErrFeeOrdering) {
		t.Errorf("ValidateBasic = %v, want %v", err, ErrFeeOrdering)
	}
}
