package hunter

import "sync/atomic"

// Budget caps the real downloads one hunt may perform. Probes and page
// scrapes never touch it.
type Budget struct {
	limit int64
	used  atomic.Int64
}

// NewBudget returns a budget allowing limit fetches.
func NewBudget(limit int) *Budget {
	if limit < 0 {
		limit = 0
	}
	return &Budget{limit: int64(limit)}
}

// Take consumes one fetch and reports whether one was available.
func (b *Budget) Take() bool {
	for {
		used := b.used.Load()
		if used >= b.limit {
			return false
		}
		if b.used.CompareAndSwap(used, used+1) {
			return true
		}
	}
}

// Used returns the number of fetches consumed.
func (b *Budget) Used() int { return int(b.used.Load()) }

// Remaining returns the fetches still available.
func (b *Budget) Remaining() int { return int(b.limit - b.used.Load()) }

// Exhausted reports whether no fetches remain.
func (b *Budget) Exhausted() bool { return b.Remaining() <= 0 }
