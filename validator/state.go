package validator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahwlsqja/eth-mempool/state"
	"github.com/ahwlsqja/eth-mempool/types"
)

// Stateful validation failures. These depend on the ledger view at the
// moment of admission and may stop applying as state advances.
var (
	ErrChainIDMismatch     = errors.New("transaction chain id does not match")
	ErrFeeBelowBaseFee     = errors.New("max fee per gas below current base fee")
	ErrNonceTooLow         = errors.New("nonce lower than account nonce")
	ErrInsufficientBalance = errors.New("insufficient balance to cover max cost")
)

// StateValidator checks transactions against a live ledger view.
type StateValidator struct {
	gateway state.Gateway
}

// NewStateValidator creates a validator reading from gateway.
func NewStateValidator(gateway state.Gateway) *StateValidator {
	return &StateValidator{gateway: gateway}
}

// Validate checks tx from sender against current chain state. On success it
// returns the sender's current account nonce, which the pool uses to seed
// the sender's nonce frontier. Gateway failures wrap state.ErrUnavailable
// and must be treated as retryable, not as rejections.
func (v *StateValidator) Validate(ctx context.Context, tx *types.DynamicFeeTx, sender types.Address) (uint64, error) {
	chainID, err := v.gateway.ChainID(ctx)
	if err != nil {
		return 0, gatewayError(err)
	}
	if tx.ChainID != chainID {
		return 0, fmt.Errorf("%w: have %d, want %d", ErrChainIDMismatch, tx.ChainID, chainID)
	}

	baseFee, err := v.gateway.BaseFee(ctx)
	if err != nil {
		return 0, gatewayError(err)
	}
	if tx.GasFeeCap.Lt(baseFee) {
		return 0, fmt.Errorf("%w: fee cap %s, base fee %s", ErrFeeBelowBaseFee, tx.GasFeeCap, baseFee)
	}

	nonce, err := v.gateway.Nonce(ctx, sender)
	if err != nil {
		return 0, gatewayError(err)
	}
	if tx.Nonce < nonce {
		return 0, fmt.Errorf("%w: tx nonce %d, account nonce %d", ErrNonceTooLow, tx.Nonce, nonce)
	}

	balance, err := v.gateway.Balance(ctx, sender)
	if err != nil {
		return 0, gatewayError(err)
	}
	if maxCost := tx.MaxCost(); balance.Lt(maxCost) {
		return 0, fmt.Errorf("%w: balance %s, max cost %s", ErrInsufficientBalance, balance, maxCost)
	}

	return nonce, nil
}

func gatewayError(err error) error {
	if errors.Is(err, state.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", state.ErrUnavailable, err)
}
