// Package mempool implements the transaction pool: a capacity-bounded,
// nonce-aware holding area between submission and block inclusion.
//
// Transactions live in one of two partitions. Pending holds entries that are
// nonce-contiguous with chain state and eligible for inclusion; Queued holds
// valid entries waiting for a nonce gap to close. A (sender, nonce) key holds
// at most one live entry; a newcomer at an occupied key must outbid the
// holder by the configured price bump or it is rejected.
package mempool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/google/btree"
	"github.com/holiman/uint256"

	"github.com/ahwlsqja/eth-mempool/types"
)

var (
	ErrUnderpriced = errors.New("replacement transaction underpriced")
	ErrPoolFull    = errors.New("transaction pool is full")
	ErrNotFound    = errors.New("transaction not found in pool")
)

// Config holds the pool limits.
type Config struct {
	MaxPending int // capacity of the pending partition
	MaxQueued  int // capacity of the queued partition
	PriceBump  int // minimum replacement fee bump, percent
}

// DefaultConfig returns the default pool limits.
func DefaultConfig() *Config {
	return &Config{
		MaxPending: 4096,
		MaxQueued:  1024,
		PriceBump:  10,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxPending <= 0 {
		return fmt.Errorf("max pending must be positive, got %d", c.MaxPending)
	}
	if c.MaxQueued <= 0 {
		return fmt.Errorf("max queued must be positive, got %d", c.MaxQueued)
	}
	if c.PriceBump < 0 || c.PriceBump > 100 {
		return fmt.Errorf("price bump must be in [0, 100], got %d", c.PriceBump)
	}
	return nil
}

// Stats is a point-in-time snapshot of partition depths.
type Stats struct {
	Pending int
	Queued  int
}

// Pool is the transaction pool. All state sits behind a single RWMutex;
// mutations never suspend, so no caller can observe a half-applied add.
type Pool struct {
	mu sync.RWMutex

	config  *Config
	logger  log.Logger
	metrics Metrics

	byHash   map[types.Hash]*entry
	accounts map[types.Address]*senderAccount
	stalled  map[types.Address]struct{} // senders whose promotion hit the pending cap

	pendingIndex *btree.BTreeG[*entry] // pending entries by (fee cap asc, seq asc)
	queuedIndex  *btree.BTreeG[*entry]

	seq uint64 // arrival counter, monotonically increasing
}

// NewPool creates an empty pool with the given limits.
func NewPool(config *Config, logger log.Logger, metrics Metrics) *Pool {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Pool{
		config:       config,
		logger:       logger.With("module", "mempool"),
		metrics:      metrics,
		byHash:       make(map[types.Hash]*entry),
		accounts:     make(map[types.Address]*senderAccount),
		stalled:      make(map[types.Address]struct{}),
		pendingIndex: btree.NewG(32, entryLess),
		queuedIndex:  btree.NewG(32, entryLess),
	}
}

// Add admits tx from sender into the pool. chainNonce is the sender's
// current on-chain nonce and seeds the nonce frontier the first time the
// sender is seen. The caller has already validated tx; Add only enforces
// pool policy (replacement bump, partition capacity).
func (p *Pool) Add(tx *types.DynamicFeeTx, sender types.Address, chainNonce uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct := p.accounts[sender]
	if acct == nil {
		acct = &senderAccount{
			frontier: chainNonce,
			entries:  make(map[uint64]*entry),
		}
		p.accounts[sender] = acct
	}

	if old := acct.entries[tx.Nonce]; old != nil {
		return p.replace(old, tx, acct)
	}
	return p.admit(tx, sender, acct)
}

// replace swaps old for tx at the same (sender, nonce) key, keeping the
// partition. Both fee fields must clear the bump threshold over old.
func (p *Pool) replace(old *entry, tx *types.DynamicFeeTx, acct *senderAccount) error {
	feeFloor, feeOverflow := bumpThreshold(old.tx.GasFeeCap, p.config.PriceBump)
	tipFloor, tipOverflow := bumpThreshold(old.tx.GasTipCap, p.config.PriceBump)
	if feeOverflow || tipOverflow {
		return fmt.Errorf("%w: existing fees cannot be outbid", ErrUnderpriced)
	}
	if tx.GasFeeCap.Lt(feeFloor) || tx.GasTipCap.Lt(tipFloor) {
		return fmt.Errorf("%w: need fee cap >= %s and tip >= %s", ErrUnderpriced, feeFloor, tipFloor)
	}

	p.deleteEntry(old)
	e := &entry{
		tx:      tx,
		sender:  old.sender,
		hash:    tx.Hash(),
		seq:     p.nextSeq(),
		pending: old.pending,
	}
	p.insertEntry(e, acct)

	p.logger.Debug("replaced transaction",
		"sender", e.sender, "nonce", tx.Nonce,
		"old_hash", old.hash, "new_hash", e.hash)
	p.metrics.TxReplaced()
	p.promote(e.sender, acct)
	p.report()
	return nil
}

// admit places tx at a fresh (sender, nonce) key, evicting a strictly
// cheaper entry if the target partition is at capacity.
func (p *Pool) admit(tx *types.DynamicFeeTx, sender types.Address, acct *senderAccount) error {
	pending := tx.Nonce <= acct.frontier

	index, capacity := p.queuedIndex, p.config.MaxQueued
	if pending {
		index, capacity = p.pendingIndex, p.config.MaxPending
	}
	if index.Len() >= capacity {
		victim, ok := index.Min()
		if !ok || !victim.tx.GasFeeCap.Lt(tx.GasFeeCap) {
			return fmt.Errorf("%w: %d entries at capacity", ErrPoolFull, index.Len())
		}
		p.evict(victim)
	}

	e := &entry{
		tx:      tx,
		sender:  sender,
		hash:    tx.Hash(),
		seq:     p.nextSeq(),
		pending: pending,
	}
	p.insertEntry(e, acct)
	p.logger.Debug("admitted transaction",
		"sender", sender, "nonce", tx.Nonce, "hash", e.hash, "pending", pending)
	p.metrics.TxAdded(pending)

	if pending && tx.Nonce == acct.frontier {
		acct.frontier = tx.Nonce + 1
	}
	// Every add re-checks the sender's queue, so a promotion that earlier
	// stalled at the pending cap is retried here.
	p.promote(sender, acct)
	p.report()
	return nil
}

// promote moves newly contiguous queued entries into pending, advancing the
// frontier, until the chain of nonces breaks or pending reaches capacity.
// A capacity stall is remembered and retried when a pending slot frees.
func (p *Pool) promote(sender types.Address, acct *senderAccount) {
	for {
		next := acct.entries[acct.frontier]
		if next == nil || next.pending {
			delete(p.stalled, sender)
			return
		}
		if p.pendingIndex.Len() >= p.config.MaxPending {
			p.stalled[sender] = struct{}{}
			return
		}
		p.queuedIndex.Delete(next)
		next.pending = true
		p.mustInsertIndex(next)
		acct.frontier++
		p.logger.Debug("promoted transaction",
			"sender", next.sender, "nonce", next.tx.Nonce, "hash", next.hash)
		p.metrics.TxPromoted()
	}
}

// retryPromotions resumes stalled promotions after pending capacity frees.
func (p *Pool) retryPromotions() {
	for sender := range p.stalled {
		if p.pendingIndex.Len() >= p.config.MaxPending {
			return
		}
		acct := p.accounts[sender]
		if acct == nil {
			delete(p.stalled, sender)
			continue
		}
		p.promote(sender, acct)
	}
}

// evict permanently drops the lowest-priced entry of a full partition to
// make room for a better-paying newcomer.
func (p *Pool) evict(victim *entry) {
	p.deleteEntry(victim)
	p.logger.Info("evicted transaction",
		"sender", victim.sender, "nonce", victim.tx.Nonce,
		"hash", victim.hash, "fee_cap", victim.tx.GasFeeCap)
	p.metrics.TxEvicted()
}

// Get returns the transaction with the given content hash, or nil.
func (p *Pool) Get(hash types.Hash) *types.DynamicFeeTx {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if e := p.byHash[hash]; e != nil {
		return e.tx
	}
	return nil
}

// Pending returns up to max pending transactions ordered by descending
// effective price at baseFee, oldest first on ties. A sender's entries
// always appear in ascending nonce order regardless of price. A nil
// baseFee prices entries by their raw fee cap; max <= 0 means no limit.
func (p *Pool) Pending(max int, baseFee *uint256.Int) []*types.DynamicFeeTx {
	p.mu.RLock()
	defer p.mu.RUnlock()

	bySender := make(map[types.Address][]*entry)
	p.pendingIndex.Ascend(func(e *entry) bool {
		bySender[e.sender] = append(bySender[e.sender], e)
		return true
	})
	return orderByPrice(bySender, max, baseFee)
}

// PendingBySender returns the sender's pending transactions in ascending
// nonce order.
func (p *Pool) PendingBySender(sender types.Address) []*types.DynamicFeeTx {
	p.mu.RLock()
	defer p.mu.RUnlock()

	acct := p.accounts[sender]
	if acct == nil {
		return nil
	}
	entries := acct.sortedPending()
	txs := make([]*types.DynamicFeeTx, len(entries))
	for i, e := range entries {
		txs[i] = e.tx
	}
	return txs
}

// Remove drops the transaction with the given hash. Later entries of the
// same sender keep their partition; gaps left behind stay open.
func (p *Pool) Remove(hash types.Hash) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e := p.byHash[hash]
	if e == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	p.deleteEntry(e)
	p.metrics.TxRemoved(e.pending)
	if e.pending {
		p.retryPromotions()
	}
	p.report()
	return nil
}

// RemoveBatch drops every listed transaction that is still in the pool and
// returns how many were removed. Used after block inclusion, where some of
// the included transactions may already be gone.
func (p *Pool) RemoveBatch(hashes []types.Hash) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	freedPending := false
	for _, hash := range hashes {
		e := p.byHash[hash]
		if e == nil {
			continue
		}
		p.deleteEntry(e)
		p.metrics.TxRemoved(e.pending)
		freedPending = freedPending || e.pending
		removed++
	}
	if freedPending {
		p.retryPromotions()
	}
	p.report()
	return removed
}

// Stats returns current partition depths.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Stats{
		Pending: p.pendingIndex.Len(),
		Queued:  p.queuedIndex.Len(),
	}
}

func (p *Pool) nextSeq() uint64 {
	p.seq++
	return p.seq
}

func (p *Pool) insertEntry(e *entry, acct *senderAccount) {
	if _, exists := p.byHash[e.hash]; exists {
		panic(fmt.Sprintf("mempool: duplicate hash %s", e.hash))
	}
	p.byHash[e.hash] = e
	acct.entries[e.tx.Nonce] = e
	// A preceding eviction or replacement may have dropped the sender's
	// account record when its last entry went; re-register it.
	p.accounts[e.sender] = acct
	p.mustInsertIndex(e)
}

func (p *Pool) mustInsertIndex(e *entry) {
	index := p.queuedIndex
	if e.pending {
		index = p.pendingIndex
	}
	if _, clobbered := index.ReplaceOrInsert(e); clobbered {
		panic(fmt.Sprintf("mempool: duplicate index entry for %s", e.hash))
	}
}

func (p *Pool) deleteEntry(e *entry) {
	delete(p.byHash, e.hash)
	if e.pending {
		p.pendingIndex.Delete(e)
	} else {
		p.queuedIndex.Delete(e)
	}
	acct := p.accounts[e.sender]
	delete(acct.entries, e.tx.Nonce)
	if len(acct.entries) == 0 {
		delete(p.accounts, e.sender)
	}
}

func (p *Pool) report() {
	p.metrics.SetDepth(p.pendingIndex.Len(), p.queuedIndex.Len())
}

// bumpThreshold returns the minimum fee a replacement must offer over old,
// old plus bump percent. Overflow means no representable fee can clear it.
func bumpThreshold(old *uint256.Int, bump int) (*uint256.Int, bool) {
	inc, overflow := new(uint256.Int).MulOverflow(old, uint256.NewInt(uint64(bump)))
	if overflow {
		return nil, true
	}
	inc.Div(inc, uint256.NewInt(100))
	return new(uint256.Int).AddOverflow(old, inc)
}
