package state

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	"github.com/ahwlsqja/eth-mempool/types"
)

// account is the mutable per-address record of the in-memory ledger.
type account struct {
	balance  *uint256.Int
	nonce    uint64
	contract bool
}

// MemoryLedger is an in-memory Gateway implementation. Unknown accounts
// read as empty: zero balance, zero nonce, not a contract.
type MemoryLedger struct {
	mu sync.RWMutex

	accounts map[types.Address]*account
	chainID  uint64
	baseFee  *uint256.Int
}

// NewMemoryLedger creates an empty ledger for the given chain id and base
// fee.
func NewMemoryLedger(chainID uint64, baseFee *uint256.Int) *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[types.Address]*account),
		chainID:  chainID,
		baseFee:  new(uint256.Int).Set(baseFee),
	}
}

// SetBalance sets the balance of addr.
func (l *MemoryLedger) SetBalance(addr types.Address, balance *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensure(addr).balance = new(uint256.Int).Set(balance)
}

// SetNonce sets the on-chain nonce of addr.
func (l *MemoryLedger) SetNonce(addr types.Address, nonce uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensure(addr).nonce = nonce
}

// SetContract marks addr as holding contract code.
func (l *MemoryLedger) SetContract(addr types.Address, isContract bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensure(addr).contract = isContract
}

// SetBaseFee updates the current base fee, as the chain head moves.
func (l *MemoryLedger) SetBaseFee(baseFee *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.baseFee = new(uint256.Int).Set(baseFee)
}

// Balance implements Reader.
func (l *MemoryLedger) Balance(_ context.Context, addr types.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if acc, ok := l.accounts[addr]; ok {
		return new(uint256.Int).Set(acc.balance), nil
	}
	return new(uint256.Int), nil
}

// Nonce implements Reader.
func (l *MemoryLedger) Nonce(_ context.Context, addr types.Address) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if acc, ok := l.accounts[addr]; ok {
		return acc.nonce, nil
	}
	return 0, nil
}

// IsContract implements Reader.
func (l *MemoryLedger) IsContract(_ context.Context, addr types.Address) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if acc, ok := l.accounts[addr]; ok {
		return acc.contract, nil
	}
	return false, nil
}

// ChainID implements ChainReader.
func (l *MemoryLedger) ChainID(_ context.Context) (uint64, error) {
	return l.chainID, nil
}

// BaseFee implements ChainReader.
func (l *MemoryLedger) BaseFee(_ context.Context) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(uint256.Int).Set(l.baseFee), nil
}

// ensure returns the record for addr, creating it if needed. Callers hold
// the write lock.
func (l *MemoryLedger) ensure(addr types.Address) *account {
	acc, ok := l.accounts[addr]
	if !ok {
		acc = &account{balance: new(uint256.Int)}
		l.accounts[addr] = acc
	}
	return acc
}

var _ Gateway = (*MemoryLedger)(nil)
