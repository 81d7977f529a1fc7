package bridge

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/worldbridge/internal/chain"
)

// Event is an outbound notification produced by a poll pass and consumed by
// the host loop.
type Event interface {
	isEvent()
}

// Initialized is emitted once per successful indexer connection.
type Initialized struct{}

// EntityUpdated is emitted for each non-sentinel entity from a retrieval
// result or a subscription push.
type EntityUpdated struct {
	EntityID chain.Felt
	Models   []*structpb.Struct
}

// TransactionCompleted is emitted when a queued transaction resolves with a
// hash.
type TransactionCompleted struct {
	Hash chain.Felt
}

// TransactionFailed is emitted when a queued transaction resolves with an
// error.
type TransactionFailed struct {
	Err error
}

func (Initialized) isEvent()          {}
func (EntityUpdated) isEvent()        {}
func (TransactionCompleted) isEvent() {}
func (TransactionFailed) isEvent()    {}
