package mempool

// Metrics receives pool lifecycle events. The prometheus implementation
// lives in the metrics package; the pool only depends on this surface.
type Metrics interface {
	TxAdded(pending bool)
	TxReplaced()
	TxEvicted()
	TxPromoted()
	TxRemoved(pending bool)
	SetDepth(pending, queued int)
}

// NopMetrics discards all events.
type NopMetrics struct{}

func (NopMetrics) TxAdded(bool) {}

func (NopMetrics) TxReplaced() {}

func (NopMetrics) TxEvicted() {}

func (NopMetrics) TxPromoted() {}

func (NopMetrics) TxRemoved(bool) {}

func (NopMetrics) SetDepth(int, int) {}
