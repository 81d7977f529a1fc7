// Package indexer provides the query types and gRPC client for the entity
// indexing service.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/worldbridge/internal/chain"
)

// Direction orders paginated retrieval results.
type Direction string

const (
	DirectionForward  Direction = "FORWARD"
	DirectionBackward Direction = "BACKWARD"
)

// Clause narrows a retrieval or subscription to matching entities.
type Clause struct {
	Keys   []chain.Felt `json:"keys,omitempty"`
	Models []string     `json:"models,omitempty"`
}

// Query describes one entity retrieval.
type Query struct {
	Clause       *Clause   `json:"clause,omitempty"`
	Limit        uint32    `json:"limit"`
	Cursor       string    `json:"cursor,omitempty"`
	Direction    Direction `json:"direction,omitempty"`
	NoHashedKeys bool      `json:"no_hashed_keys,omitempty"`
	Models       []string  `json:"models,omitempty"`
	Historical   bool      `json:"historical,omitempty"`
}

// Entity is one indexed entity with its model payloads. Model schemas are
// dynamic; each payload carries its model name under the "__name" field.
type Entity struct {
	ID     chain.Felt
	Models []*structpb.Struct
}

// ModelName reads the schema name out of a model payload.
func ModelName(m *structpb.Struct) string {
	if m == nil {
		return ""
	}
	return m.GetFields()["__name"].GetStringValue()
}

// EntityStream yields entity updates from a server-streamed subscription.
// The stream ends when Recv returns a non-nil error.
type EntityStream interface {
	Recv() (Entity, error)
}

// Client is an established, shareable connection to the indexing service.
type Client interface {
	// RetrieveEntities runs one query and returns the matching page.
	RetrieveEntities(ctx context.Context, query Query) ([]Entity, error)

	// SubscribeEntities opens a server-streamed subscription for entities
	// matching the clause. A nil clause subscribes to every update.
	SubscribeEntities(ctx context.Context, clause *Clause) (EntityStream, error)

	// Close releases the underlying connection.
	Close() error
}

// wireEntity is the on-the-wire entity shape.
type wireEntity struct {
	HashedKeys chain.Felt        `json:"hashed_keys"`
	Models     []json.RawMessage `json:"models"`
}

func decodeEntity(w wireEntity) (Entity, error) {
	models := make([]*structpb.Struct, 0, len(w.Models))
	for i, raw := range w.Models {
		model := &structpb.Struct{}
		if err := protojson.Unmarshal(raw, model); err != nil {
			return Entity{}, fmt.Errorf("decode model %d: %w", i, err)
		}
		models = append(models, model)
	}
	return Entity{ID: w.HashedKeys, Models: models}, nil
}

func encodeEntity(e Entity) (wireEntity, error) {
	models := make([]json.RawMessage, 0, len(e.Models))
	for i, model := range e.Models {
		raw, err := protojson.Marshal(model)
		if err != nil {
			return wireEntity{}, fmt.Errorf("encode model %d: %w", i, err)
		}
		models = append(models, raw)
	}
	return wireEntity{HashedKeys: e.ID, Models: models}, nil
}
