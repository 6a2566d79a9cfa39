package tokenregistry

import (
	"iter"
	"slices"

	"github.com/gabapcia/tokenwatch/internal/pkg/types"
)

// watchSet is the session-scoped collection of token addresses currently
// subscribed for transaction notifications.
//
// Membership is unique and growth is monotonic: addresses are never removed
// during a session, and the set is not persisted, so every process start
// begins empty. Iteration order is the order in which addresses were first
// added, which keeps subscription batches stable across re-subscription
// cycles.
type watchSet struct {
	members types.Set[string]
	order   []string
}

// newWatchSet creates an empty watch set.
func newWatchSet() *watchSet {
	return &watchSet{
		members: types.NewSet[string](),
		order:   make([]string, 0),
	}
}

// add inserts the address if absent and reports whether the set changed.
// Re-adding a known address is a no-op.
func (w *watchSet) add(address string) bool {
	if w.members.Contains(address) {
		return false
	}

	w.members.Add(address)
	w.order = append(w.order, address)
	return true
}

// size returns the number of distinct addresses in the set.
func (w *watchSet) size() int {
	return len(w.order)
}

// chunks returns a lazy sequence partitioning a snapshot of the set into
// consecutive batches of at most chunkSize addresses, in insertion order.
//
// The snapshot is taken when chunks is called: mutating the set afterwards
// does not affect a sequence already obtained, so a re-subscription cycle
// always declares a consistent view of the set.
func (w *watchSet) chunks(chunkSize int) iter.Seq[[]string] {
	snapshot := slices.Clone(w.order)
	return slices.Chunk(snapshot, chunkSize)
}
