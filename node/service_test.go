package node

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/ahwlsqja/eth-mempool/crypto"
	"github.com/ahwlsqja/eth-mempool/mempool"
	"github.com/ahwlsqja/eth-mempool/state"
	"github.com/ahwlsqja/eth-mempool/types"
	"github.com/ahwlsqja/eth-mempool/validator"
)

const testBaseFee = 1_000_000_000 // 1 gwei

func newTestService(t *testing.T) (*TxService, *state.MemoryLedger) {
	t.Helper()

	config := DefaultConfig()
	config.MetricsEnabled = false

	ledger := state.NewMemoryLedger(1, uint256.NewInt(testBaseFee))
	pool := mempool.NewPool(config.Pool, nil, nil)
	service, err := NewTxService(config, pool, ledger, nil, nil)
	if err != nil {
		t.Fatalf("NewTxService failed: %v", err)
	}
	return service, ledger
}

func fund(ledger *state.MemoryLedger, key *crypto.Key) {
	// Plenty for any fee and value used in these tests.
	balance := new(uint256.Int).Mul(uint256.NewInt(1_000_000), uint256.NewInt(1_000_000_000_000))
	ledger.SetBalance(key.Address(), balance)
}

// signedTx builds, signs and encodes a transfer from key.
func signedTx(t *testing.T, key *crypto.Key, nonce, feeCap, tip uint64) []byte {
	t.Helper()
	to := types.BytesToAddress([]byte{0x01})
	tx := &types.DynamicFeeTx{
		ChainID:   1,
		Nonce:     nonce,
		GasTipCap: uint256.NewInt(tip),
		GasFeeCap: uint256.NewInt(feeCap),
		Gas:       21000,
		To:        &to,
		Value:     uint256.NewInt(1),
		R:         new(uint256.Int),
		S:         new(uint256.Int),
	}
	if err := key.SignTx(tx); err != nil {
		t.Fatalf("SignTx failed: %v", err)
	}
	return types.EncodeEnvelope(tx)
}

func TestTxService_SubmitRaw(t *testing.T) {
	service, ledger := newTestService(t)
	key, _ := crypto.GenerateKey()
	fund(ledger, key)
	ctx := context.Background()

	raw := signedTx(t, key, 0, 2*testBaseFee, testBaseFee)
	hash, err := service.SubmitRaw(ctx, raw)
	if err != nil {
		t.Fatalf("SubmitRaw failed: %v", err)
	}

	got := service.Get(hash)
	if got == nil || got.Nonce != 0 {
		t.Fatalf("admitted transaction not retrievable")
	}
	if stats := service.Stats(); stats.Pending != 1 || stats.Queued != 0 {
		t.Errorf("Stats = %+v, want 1 pending", stats)
	}

	pending := service.Pending(10, uint256.NewInt(testBaseFee))
	if len(pending) != 1 || pending[0].Hash() != hash {
		t.Errorf("Pending does not contain the admitted transaction")
	}
	bySender := service.PendingBySender(key.Address())
	if len(bySender) != 1 {
		t.Errorf("PendingBySender = %v, want 1 entry", bySender)
	}
}

func TestTxService_SubmitRaw_Rejections(t *testing.T) {
	service, ledger := newTestService(t)
	key, _ := crypto.GenerateKey()
	fund(ledger, key)
	ledger.SetNonce(key.Address(), 5)
	ctx := context.Background()

	t.Run("garbage bytes", func(t *testing.T) {
		_, err := service.SubmitRaw(ctx, []byte{0x01, 0x02, 0x03})
		if !errors.Is(err, types.ErrUnexpectedType) {
			t.Errorf("got %v, want ErrUnexpectedType", err)
		}
	})

	t.Run("truncated envelope", func(t *testing.T) {
		raw := signedTx(t, key, 5, 2*testBaseFee, testBaseFee)
		_, err := service.SubmitRaw(ctx, raw[:len(raw)-4])
		if !errors.Is(err, types.ErrMalformedLength) {
			t.Errorf("got %v, want ErrMalformedLength", err)
		}
	})

	t.Run("fee ordering before state checks", func(t *testing.T) {
		// tip 3 gwei above fee cap 2 gwei: rejected statelessly even
		// though the fee cap also sits above the 1 gwei base fee.
		raw := signedTx(t, key, 5, 2*testBaseFee, 3*testBaseFee)
		_, err := service.SubmitRaw(ctx, raw)
		if !errors.Is(err, validator.ErrFeeOrdering) {
			t.Errorf("got %v, want ErrFeeOrdering", err)
		}
	})

	t.Run("fee cap below base fee", func(t *testing.T) {
		raw := signedTx(t, key, 5, testBaseFee/2, testBaseFee/4)
		_, err := service.SubmitRaw(ctx, raw)
		if !errors.Is(err, validator.ErrFeeBelowBaseFee) {
			t.Errorf("got %v, want ErrFeeBelowBaseFee", err)
		}
	})

	t.Run("nonce too low", func(t *testing.T) {
		raw := signedTx(t, key, 4, 2*testBaseFee, testBaseFee)
		_, err := service.SubmitRaw(ctx, raw)
		if !errors.Is(err, validator.ErrNonceTooLow) {
			t.Errorf("got %v, want ErrNonceTooLow", err)
		}
	})

	t.Run("insufficient balance", func(t *testing.T) {
		poor, _ := crypto.GenerateKey()
		raw := signedTx(t, poor, 0, 2*testBaseFee, testBaseFee)
		_, err := service.SubmitRaw(ctx, raw)
		if !errors.Is(err, validator.ErrInsufficientBalance) {
			t.Errorf("got %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("oversized raw payload", func(t *testing.T) {
		big := make([]byte, int(DefaultConfig().MaxTxBytes.Bytes())+1)
		_, err := service.SubmitRaw(ctx, big)
		if !errors.Is(err, validator.ErrPayloadTooLarge) {
			t.Errorf("got %v, want ErrPayloadTooLarge", err)
		}
	})

	if stats := service.Stats(); stats.Pending != 0 || stats.Queued != 0 {
		t.Errorf("rejected submissions leaked into the pool: %+v", stats)
	}
}

func TestTxService_ChainIDMismatch(t *testing.T) {
	config := DefaultConfig()
	config.MetricsEnabled = false
	ledger := state.NewMemoryLedger(7, uint256.NewInt(testBaseFee))
	pool := mempool.NewPool(config.Pool, nil, nil)
	service, err := NewTxService(config, pool, ledger, nil, nil)
	if err != nil {
		t.Fatalf("NewTxService failed: %v", err)
	}

	key, _ := crypto.GenerateKey()
	ledger.SetBalance(key.Address(), uint256.NewInt(0).Mul(uint256.NewInt(1_000_000), uint256.NewInt(1_000_000_000_000)))

	raw := signedTx(t, key, 0, 2*testBaseFee, testBaseFee) // signed for chain 1
	_, err = service.SubmitRaw(context.Background(), raw)
	if !errors.Is(err, validator.ErrChainIDMismatch) {
		t.Errorf("got %v, want ErrChainIDMismatch", err)
	}
}

func TestTxService_ReplacementThroughFacade(t *testing.T) {
	service, ledger := newTestService(t)
	key, _ := crypto.GenerateKey()
	fund(ledger, key)
	ctx := context.Background()

	oldHash, err := service.SubmitRaw(ctx, signedTx(t, key, 0, 10*testBaseFee, 1*testBaseFee))
	if err != nil {
		t.Fatalf("initial submit failed: %v", err)
	}

	// 5% bump on both fields: underpriced.
	weak := signedTx(t, key, 0, 10*testBaseFee+testBaseFee/2, testBaseFee+testBaseFee/20)
	if _, err := service.SubmitRaw(ctx, weak); !errors.Is(err, mempool.ErrUnderpriced) {
		t.Fatalf("got %v, want ErrUnderpriced", err)
	}

	// 10% bump on both fields: replaces.
	newHash, err := service.SubmitRaw(ctx, signedTx(t, key, 0, 11*testBaseFee, testBaseFee+testBaseFee/10))
	if err != nil {
		t.Fatalf("replacement failed: %v", err)
	}
	if service.Get(oldHash) != nil {
		t.Errorf("replaced transaction still retrievable")
	}
	if service.Get(newHash) == nil {
		t.Errorf("replacement not retrievable")
	}
	if stats := service.Stats(); stats.Pending != 1 {
		t.Errorf("Stats = %+v, want exactly 1 pending", stats)
	}
}

func TestTxService_QueueThenPromoteThroughFacade(t *testing.T) {
	service, ledger := newTestService(t)
	key, _ := crypto.GenerateKey()
	fund(ledger, key)
	ledger.SetNonce(key.Address(), 5)
	ctx := context.Background()

	// Nonce 6 with chain nonce 5: valid but not contiguous.
	sixHash, err := service.SubmitRaw(ctx, signedTx(t, key, 6, 2*testBaseFee, testBaseFee))
	if err != nil {
		t.Fatalf("submit nonce 6 failed: %v", err)
	}
	if pending := service.Pending(10, nil); len(pending) != 0 {
		t.Fatalf("queued transaction visible in Pending")
	}

	fiveHash, err := service.SubmitRaw(ctx, signedTx(t, key, 5, 2*testBaseFee, testBaseFee))
	if err != nil {
		t.Fatalf("submit nonce 5 failed: %v", err)
	}
	if removed := service.RemoveBatch([]types.Hash{fiveHash}); removed != 1 {
		t.Fatalf("RemoveBatch removed %d, want 1", removed)
	}

	pending := service.Pending(10, nil)
	if len(pending) != 1 || pending[0].Hash() != sixHash {
		t.Errorf("nonce 6 not pending after gap filled and mined")
	}
	if err := service.Remove(sixHash); err != nil {
		t.Errorf("Remove failed: %v", err)
	}
	if err := service.Remove(sixHash); !errors.Is(err, mempool.ErrNotFound) {
		t.Errorf("second Remove = %v, want ErrNotFound", err)
	}
}

func TestNode_Lifecycle(t *testing.T) {
	config := DefaultConfig()
	config.MetricsEnabled = false

	n, err := NewNode(config, nil)
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := n.Start(); err == nil {
		t.Errorf("second Start should fail")
	}

	// The wired service works end to end against the dev ledger.
	key, _ := crypto.GenerateKey()
	ledger, ok := n.Gateway().(*state.MemoryLedger)
	if !ok {
		t.Fatalf("dev node should run on the in-memory ledger")
	}
	fund(ledger, key)
	if _, err := n.Service().SubmitRaw(context.Background(), signedTx(t, key, 0, 2*testBaseFee, testBaseFee)); err != nil {
		t.Fatalf("SubmitRaw through node failed: %v", err)
	}

	if err := n.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := n.Stop(); err != nil {
		t.Errorf("repeated Stop should be a no-op, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"default", func(c *Config) {}, nil},
		{"zero tx size cap", func(c *Config) { c.MaxTxBytes = 0 }, ErrZeroMaxTxBytes},
		{"zero sender cache", func(c *Config) { c.SenderCacheSize = 0 }, ErrZeroSenderCache},
		{"nil pool", func(c *Config) { c.Pool = nil }, ErrNilPoolConfig},
		{"metrics without addr", func(c *Config) { c.MetricsAddr = "" }, ErrEmptyMetricsAddr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(c)
			err := c.Validate()
			if tc.want == nil {
				if err != nil {
					t.Errorf("Validate = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Validate = %v, want %v", err, tc.want)
			}
		})
	}
}
