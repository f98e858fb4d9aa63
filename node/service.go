package node

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cometbft/cometbft/libs/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"

	"github.com/ahwlsqja/eth-mempool/crypto"
	"github.com/ahwlsqja/eth-mempool/mempool"
	"github.com/ahwlsqja/eth-mempool/state"
	"github.com/ahwlsqja/eth-mempool/types"
	"github.com/ahwlsqja/eth-mempool/validator"
)

// submitMetrics is the slice of metrics the facade reports to.
type submitMetrics interface {
	IncReceived()
	IncRejected(reason string)
	ObserveAdmission(duration time.Duration)
}

type nopSubmitMetrics struct{}

func (nopSubmitMetrics) IncReceived() {}

func (nopSubmitMetrics) IncRejected(string) {}

func (nopSubmitMetrics) ObserveAdmission(time.Duration) {}

// TxService is the submission facade. SubmitRaw runs the full pipeline:
// decode, stateless validation, sender recovery, state validation, pool
// admission. All gateway I/O happens before the pool takes its lock, so a
// slow ledger read never stalls unrelated admissions.
type TxService struct {
	logger    log.Logger
	metrics   submitMetrics
	pool      *mempool.Pool
	validator *validator.StateValidator

	maxTxBytes int
	senders    *lru.Cache[types.Hash, types.Address]
}

// NewTxService builds the facade over pool and gateway. metrics may be nil.
func NewTxService(config *Config, pool *mempool.Pool, gateway state.Gateway, logger log.Logger, metrics submitMetrics) (*TxService, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if metrics == nil {
		metrics = nopSubmitMetrics{}
	}
	senders, err := lru.New[types.Hash, types.Address](config.SenderCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create sender cache: %w", err)
	}
	return &TxService{
		logger:     logger.With("module", "txservice"),
		metrics:    metrics,
		pool:       pool,
		validator:  validator.NewStateValidator(gateway),
		maxTxBytes: int(config.MaxTxBytes.Bytes()),
		senders:    senders,
	}, nil
}

// SubmitRaw decodes and validates raw and admits it into the pool,
// returning the transaction's content hash. Errors wrapping
// state.ErrUnavailable are transient and safe to retry; every other error
// is a terminal verdict on this payload.
func (s *TxService) SubmitRaw(ctx context.Context, raw []byte) (types.Hash, error) {
	s.metrics.IncReceived()
	start := time.Now()
	defer func() {
		s.metrics.ObserveAdmission(time.Since(start))
	}()

	if len(raw) > s.maxTxBytes {
		return types.Hash{}, s.reject(fmt.Errorf("%w: %d bytes, limit %d",
			validator.ErrPayloadTooLarge, len(raw), s.maxTxBytes))
	}

	tx, err := types.DecodeEnvelope(raw)
	if err != nil {
		return types.Hash{}, s.reject(err)
	}
	if err := validator.ValidateBasic(tx); err != nil {
		return types.Hash{}, s.reject(err)
	}

	hash := tx.Hash()
	sender, ok := s.senders.Get(hash)
	if !ok {
		sender, err = crypto.RecoverSender(tx)
		if err != nil {
			return types.Hash{}, s.reject(fmt.Errorf("%w: %v", validator.ErrBadSignatureShape, err))
		}
		s.senders.Add(hash, sender)
	}

	chainNonce, err := s.validator.Validate(ctx, tx, sender)
	if err != nil {
		return types.Hash{}, s.reject(err)
	}

	if err := s.pool.Add(tx, sender, chainNonce); err != nil {
		return types.Hash{}, s.reject(err)
	}

	s.logger.Debug("transaction admitted", "hash", hash, "sender", sender, "nonce", tx.Nonce)
	return hash, nil
}

// Get returns the pooled transaction with the given hash, or nil.
func (s *TxService) Get(hash types.Hash) *types.DynamicFeeTx {
	return s.pool.Get(hash)
}

// Pending returns up to max pending transactions priced at baseFee. This is
// the block builder's candidate-selection read.
func (s *TxService) Pending(max int, baseFee *uint256.Int) []*types.DynamicFeeTx {
	return s.pool.Pending(max, baseFee)
}

// PendingBySender returns a sender's pending transactions in nonce order.
func (s *TxService) PendingBySender(sender types.Address) []*types.DynamicFeeTx {
	return s.pool.PendingBySender(sender)
}

// Remove drops a transaction, typically after block inclusion.
func (s *TxService) Remove(hash types.Hash) error {
	return s.pool.Remove(hash)
}

// RemoveBatch drops all listed transactions still present, returning how
// many were removed.
func (s *TxService) RemoveBatch(hashes []types.Hash) int {
	return s.pool.RemoveBatch(hashes)
}

// Stats returns current pool depths.
func (s *TxService) Stats() mempool.Stats {
	return s.pool.Stats()
}

func (s *TxService) reject(err error) error {
	reason := rejectReason(err)
	s.metrics.IncRejected(reason)
	s.logger.Debug("submission rejected", "reason", reason, "err", err)
	return err
}

// rejectReason maps a pipeline error to its metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, types.ErrUnexpectedType),
		errors.Is(err, types.ErrMalformedLength),
		errors.Is(err, types.ErrTrailingData),
		errors.Is(err, types.ErrFieldWidthMismatch):
		return "decode"
	case errors.Is(err, validator.ErrFeeOrdering):
		return "fee_ordering"
	case errors.Is(err, validator.ErrGasFloor):
		return "gas_floor"
	case errors.Is(err, validator.ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, validator.ErrBadSignatureShape):
		return "bad_signature"
	case errors.Is(err, validator.ErrChainIDMismatch):
		return "chain_id_mismatch"
	case errors.Is(err, validator.ErrFeeBelowBaseFee):
		return "fee_below_base_fee"
	case errors.Is(err, validator.ErrNonceTooLow):
		return "nonce_too_low"
	case errors.Is(err, validator.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, state.ErrUnavailable):
		return "state_unavailable"
	case errors.Is(err, mempool.ErrUnderpriced):
		return "underpriced"
	case errors.Is(err, mempool.ErrPoolFull):
		return "pool_full"
	default:
		return "other"
	}
}
