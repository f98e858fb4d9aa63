package mempool

import (
	"container/heap"
	"sort"

	"github.com/holiman/uint256"

	"github.com/ahwlsqja/eth-mempool/types"
)

// entry is one live transaction in the pool.
type entry struct {
	tx      *types.DynamicFeeTx
	sender  types.Address
	hash    types.Hash
	seq     uint64 // arrival order, lower is older
	pending bool
}

// entryLess orders the price indexes by ascending fee cap, oldest first on
// ties, so Min() is always the eviction candidate.
func entryLess(a, b *entry) bool {
	if c := a.tx.GasFeeCap.Cmp(b.tx.GasFeeCap); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

// senderAccount tracks one sender's entries and its nonce frontier: the
// lowest nonce not yet occupied by a pending entry. The frontier is seeded
// from the on-chain nonce when the sender is first seen and only moves
// forward as contiguous entries arrive.
type senderAccount struct {
	frontier uint64
	entries  map[uint64]*entry
}

func (a *senderAccount) sortedPending() []*entry {
	var out []*entry
	for _, e := range a.entries {
		if e.pending {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].tx.Nonce < out[j].tx.Nonce })
	return out
}

// orderByPrice flattens per-sender entry lists into a single slice ordered
// by descending effective price at baseFee, ties broken by arrival order.
// Each sender's list is consumed front to back, so nonce order within a
// sender always wins over global price order.
func orderByPrice(bySender map[types.Address][]*entry, max int, baseFee *uint256.Int) []*types.DynamicFeeTx {
	h := &priceHeap{baseFee: baseFee}
	for _, entries := range bySender {
		sort.Slice(entries, func(i, j int) bool { return entries[i].tx.Nonce < entries[j].tx.Nonce })
		h.heads = append(h.heads, entries)
	}
	heap.Init(h)

	var out []*types.DynamicFeeTx
	for h.Len() > 0 && (max <= 0 || len(out) < max) {
		best := h.heads[0]
		out = append(out, best[0].tx)
		if len(best) == 1 {
			heap.Pop(h)
		} else {
			h.heads[0] = best[1:]
			heap.Fix(h, 0)
		}
	}
	return out
}

// priceHeap is a max-heap over the head entry of each sender's remaining
// list.
type priceHeap struct {
	heads   [][]*entry
	baseFee *uint256.Int
}

func (h *priceHeap) Len() int { return len(h.heads) }

func (h *priceHeap) Less(i, j int) bool {
	a, b := h.heads[i][0], h.heads[j][0]
	if c := a.tx.EffectivePrice(h.baseFee).Cmp(b.tx.EffectivePrice(h.baseFee)); c != 0 {
		return c > 0
	}
	return a.seq < b.seq
}

func (h *priceHeap) Swap(i, j int) { h.heads[i], h.heads[j] = h.heads[j], h.heads[i] }

func (h *priceHeap) Push(x any) { h.heads = append(h.heads, x.([]*entry)) }

func (h *priceHeap) Pop() any {
	old := h.heads
	n := len(old)
	item := old[n-1]
	h.heads = old[:n-1]
	return item
}
