package bridge

import (
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/worldbridge/internal/chain"
)

// update is one entity change pushed by a subscription stream.
type update struct {
	entityID chain.Felt
	models   []*structpb.Struct
}

// fanIn aggregates subscription pushes from many background streams into
// one ordered buffer drained once per tick. It is unbounded; producers
// never block. Reconnecting the indexer installs a fresh fanIn, so pushes
// from streams tied to the old connection land in an abandoned buffer and
// are never observed.
type fanIn struct {
	mu    sync.Mutex
	items []update
}

func newFanIn() *fanIn {
	return &fanIn{}
}

func (f *fanIn) push(u update) {
	f.mu.Lock()
	f.items = append(f.items, u)
	f.mu.Unlock()
}

// drain returns every buffered item in arrival order and empties the buffer.
func (f *fanIn) drain() []update {
	f.mu.Lock()
	items := f.items
	f.items = nil
	f.mu.Unlock()
	return items
}

// subscription tracks one long-running stream task.
type subscription struct {
	task   *Task[struct{}]
	active bool
}

// storeOutcome reports the completion of one registry bookkeeping task.
type storeOutcome struct {
	id       string
	replaced bool
}

// subscriptionRegistry maps subscription identifiers to their stream tasks.
// Inserting under an existing identifier supersedes the previous entry: the
// old stream task is marked inactive and abandoned in place, not cancelled.
type subscriptionRegistry struct {
	mu   sync.Mutex
	subs map[string]*subscription
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{subs: make(map[string]*subscription)}
}

// store inserts or replaces the entry under id and reports whether a prior
// entry was superseded.
func (r *subscriptionRegistry) store(id string, sub *subscription) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.subs[id]; ok {
		old.active = false
		replaced = true
	}
	r.subs[id] = sub
	return replaced
}

// get returns the registered entry for id, if any.
func (r *subscriptionRegistry) get(id string) (*subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	return sub, ok
}

// size reports the number of registered entries.
func (r *subscriptionRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
