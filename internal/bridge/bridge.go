package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/louisbranch/worldbridge/internal/chain"
	"github.com/louisbranch/worldbridge/internal/indexer"
	"github.com/louisbranch/worldbridge/internal/telemetry"
)

// AccountDialer establishes chain account connections.
type AccountDialer interface {
	Connect(ctx context.Context, rpcURL string, address, privateKey chain.Felt) (chain.Account, error)
	ConnectPredeployed(ctx context.Context, rpcURL string, index int) (chain.Account, error)
}

// IndexerDialer establishes indexer client connections.
type IndexerDialer interface {
	Connect(ctx context.Context, addr string, world chain.Felt) (indexer.Client, error)
}

// Config assembles a Bridge.
type Config struct {
	// Accounts dials chain accounts. Defaults to a JSON-RPC dialer.
	Accounts AccountDialer

	// Indexers dials indexer clients. Defaults to the gRPC world dialer.
	Indexers IndexerDialer

	// Logf receives warnings and progress messages. Defaults to log.Printf.
	Logf func(string, ...any)

	// Telemetry optionally records operational events.
	Telemetry *telemetry.Emitter
}

// sharedClient serializes use of one indexer client across in-flight tasks.
type sharedClient struct {
	mu     sync.Mutex
	client indexer.Client
}

// Bridge owns the connection slots, request queues, and subscription
// registry for one chain account and one indexer client.
//
// The façade methods and the two poll entry points must all be called from
// the same tick thread; only the spawned tasks run concurrently. Polls
// never block.
type Bridge struct {
	accounts AccountDialer
	indexers IndexerDialer
	logf     func(string, ...any)
	emitter  *telemetry.Emitter

	account connSlot[chain.Account]
	txs     requestQueue[chain.Felt]

	client        connSlot[*sharedClient]
	retrievals    requestQueue[[]indexer.Entity]
	pendingStores requestQueue[storeOutcome]
	registry      *subscriptionRegistry
	updates       *fanIn
}

// New creates a Bridge with the given collaborators.
func New(cfg Config) *Bridge {
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	accounts := cfg.Accounts
	if accounts == nil {
		accounts = &chain.Dialer{Logf: logf}
	}
	indexers := cfg.Indexers
	if indexers == nil {
		indexers = &indexer.Dialer{Logf: logf}
	}
	return &Bridge{
		accounts: accounts,
		indexers: indexers,
		logf:     logf,
		emitter:  cfg.Telemetry,
		registry: newSubscriptionRegistry(),
		updates:  newFanIn(),
	}
}

// ConnectAccount begins a chain account connection. Any previous pending
// attempt is abandoned in place; an already established account stays
// usable until the new attempt succeeds.
func (b *Bridge) ConnectAccount(ctx context.Context, rpcURL string, address, privateKey chain.Felt) {
	b.logf("connecting to chain account at %s", rpcURL)
	b.account.arm(Spawn(ctx, func(ctx context.Context) (chain.Account, error) {
		return b.accounts.Connect(ctx, rpcURL, address, privateKey)
	}))
}

// ConnectPredeployedAccount begins a connection as the dev chain's
// predeployed account at index.
func (b *Bridge) ConnectPredeployedAccount(ctx context.Context, rpcURL string, index int) {
	b.logf("connecting to predeployed chain account %d at %s", index, rpcURL)
	b.account.arm(Spawn(ctx, func(ctx context.Context) (chain.Account, error) {
		return b.accounts.ConnectPredeployed(ctx, rpcURL, index)
	}))
}

// QueueTransaction submits the calls as one transaction task. Without a
// connected account the call set is discarded with a warning, never
// buffered.
func (b *Bridge) QueueTransaction(ctx context.Context, calls []chain.Call) {
	account, ok := b.account.get()
	if !ok {
		b.logf("no chain account initialized, skipping transaction")
		return
	}
	b.txs.push(Spawn(ctx, func(ctx context.Context) (chain.Felt, error) {
		return account.Execute(ctx, calls)
	}))
}

// ConnectIndexer begins an indexer client connection and resets the fan-in
// buffer, discarding any unread subscription pushes from a previous client.
func (b *Bridge) ConnectIndexer(ctx context.Context, addr string, world chain.Felt) {
	b.logf("connecting to indexer at %s", addr)
	b.client.arm(Spawn(ctx, func(ctx context.Context) (*sharedClient, error) {
		client, err := b.indexers.Connect(ctx, addr, world)
		if err != nil {
			return nil, err
		}
		return &sharedClient{client: client}, nil
	}))
	b.updates = newFanIn()
}

// QueryEntities begins one entity retrieval. Without a connected client the
// request is discarded with a warning.
func (b *Bridge) QueryEntities(ctx context.Context, query indexer.Query) {
	shared, ok := b.client.get()
	if !ok {
		b.logf("no indexer client initialized, skipping query")
		return
	}
	b.retrievals.push(Spawn(ctx, func(ctx context.Context) ([]indexer.Entity, error) {
		shared.mu.Lock()
		defer shared.mu.Unlock()
		return shared.client.RetrieveEntities(ctx, query)
	}))
}

// SubscribeEntities registers a streaming subscription under id, replacing
// any prior subscription with the same id. The stream task pushes every
// update into the fan-in buffer that is current at call time; registry
// bookkeeping happens on a separate task harvested by PollIndexer.
func (b *Bridge) SubscribeEntities(ctx context.Context, id string, clause *indexer.Clause) {
	shared, ok := b.client.get()
	if !ok {
		b.logf("no indexer client initialized, skipping subscription")
		return
	}

	sink := b.updates
	streamTask := Spawn(ctx, func(ctx context.Context) (struct{}, error) {
		shared.mu.Lock()
		stream, err := shared.client.SubscribeEntities(ctx, clause)
		shared.mu.Unlock()
		if err != nil {
			b.logf("subscribe entities %q: %v", id, err)
			return struct{}{}, nil
		}
		for {
			entity, err := stream.Recv()
			if err != nil {
				return struct{}{}, nil
			}
			sink.push(update{entityID: entity.ID, models: entity.Models})
		}
	})

	b.pendingStores.push(Spawn(ctx, func(context.Context) (storeOutcome, error) {
		replaced := b.registry.store(id, &subscription{task: streamTask, active: true})
		return storeOutcome{id: id, replaced: replaced}, nil
	}))
}

// PollChain advances the chain-side state by one tick: the connection slot
// first, then the transaction queue. A predeployed account lookup past the
// available accounts is a fatal configuration error and is returned; every
// other failure is terminal for its own task only.
func (b *Bridge) PollChain(ctx context.Context) ([]Event, error) {
	var events []Event

	resolved, err := b.account.poll()
	switch {
	case errors.Is(err, chain.ErrPredeployedIndexOutOfRange):
		return nil, fmt.Errorf("connect account: %w", err)
	case err != nil:
		// Dropped without retry; the caller must connect again.
		b.logf("connect account: %v", err)
	case resolved:
		account, _ := b.account.get()
		b.logf("connected to chain account %s", account.Address().Hex())
		b.emit(ctx, telemetry.EventAccountConnected, telemetry.SeverityInfo, account.Address().Hex())
	}

	if b.txs.len() > 0 {
		if _, ok := b.account.get(); !ok {
			n := b.txs.clear()
			b.logf("clearing %d pending transactions - no account available", n)
			b.emit(ctx, telemetry.EventQueueCleared, telemetry.SeverityWarn, fmt.Sprintf("%d transactions dropped", n))
		} else {
			b.txs.drain(func(hash chain.Felt, err error) {
				if err != nil {
					b.logf("transaction failed: %v", err)
					b.emit(ctx, telemetry.EventTransactionFailed, telemetry.SeverityError, err.Error())
					events = append(events, TransactionFailed{Err: err})
					return
				}
				b.logf("transaction completed: %s", hash.Hex())
				b.emit(ctx, telemetry.EventTransactionCompleted, telemetry.SeverityInfo, hash.Hex())
				events = append(events, TransactionCompleted{Hash: hash})
			})
		}
	}

	return events, nil
}

// PollIndexer advances the indexer-side state by one tick: the connection
// slot, then registry bookkeeping, then the retrieval queue, then the
// fan-in buffer. Entities whose identity is the sentinel zero value are
// dropped.
func (b *Bridge) PollIndexer(ctx context.Context) []Event {
	var events []Event

	resolved, err := b.client.poll()
	switch {
	case err != nil:
		// The failed attempt is discarded; reconnecting requires a fresh
		// ConnectIndexer call.
		b.logf("connect indexer: %v", err)
	case resolved:
		b.logf("indexer client initialized")
		b.emit(ctx, telemetry.EventIndexerConnected, telemetry.SeverityInfo, "")
		events = append(events, Initialized{})
	}

	b.pendingStores.drain(func(outcome storeOutcome, err error) {
		if err != nil {
			b.logf("store subscription: %v", err)
			return
		}
		if outcome.replaced {
			b.logf("replaced existing subscription: %s", outcome.id)
			b.emit(ctx, telemetry.EventSubscriptionReplaced, telemetry.SeverityInfo, outcome.id)
		}
	})

	b.retrievals.drain(func(entities []indexer.Entity, err error) {
		if err != nil {
			b.logf("retrieve entities: %v", err)
			return
		}
		for _, entity := range entities {
			if entity.ID.IsZero() {
				continue
			}
			events = append(events, EntityUpdated{EntityID: entity.ID, Models: entity.Models})
		}
	})

	for _, u := range b.updates.drain() {
		if u.entityID.IsZero() {
			continue
		}
		events = append(events, EntityUpdated{EntityID: u.entityID, Models: u.models})
	}

	return events
}

// AccountConnected reports whether a chain account is established.
func (b *Bridge) AccountConnected() bool {
	_, ok := b.account.get()
	return ok
}

// IndexerConnected reports whether an indexer client is established.
func (b *Bridge) IndexerConnected() bool {
	_, ok := b.client.get()
	return ok
}

// PendingTransactions reports the number of in-flight transaction tasks.
func (b *Bridge) PendingTransactions() int {
	return b.txs.len()
}

// PendingRetrievals reports the number of in-flight retrieval tasks.
func (b *Bridge) PendingRetrievals() int {
	return b.retrievals.len()
}

// Subscriptions reports the number of registered subscription entries.
func (b *Bridge) Subscriptions() int {
	return b.registry.size()
}

func (b *Bridge) emit(ctx context.Context, name string, severity telemetry.Severity, message string) {
	if err := b.emitter.Emit(ctx, name, severity, message); err != nil {
		b.logf("emit telemetry: %v", err)
	}
}
