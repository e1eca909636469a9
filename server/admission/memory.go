package admission

import (
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
)

// MemoryCounterStore keeps counters in process memory. Expired windows are dropped by the
// store's background cleanup.
type MemoryCounterStore struct {
	limiter.Store
}

var _ CounterStore = (*MemoryCounterStore)(nil)

// NewMemoryCounterStore creates an empty in-memory store
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		Store: memorystore.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          keyPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}),
	}
}

// Close implements CounterStore
func (s *MemoryCounterStore) Close() error {
	return nil
}
