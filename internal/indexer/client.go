package indexer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"

	"github.com/louisbranch/worldbridge/internal/chain"
	apperrors "github.com/louisbranch/worldbridge/internal/errors"
	platformgrpc "github.com/louisbranch/worldbridge/internal/platform/grpc"
)

const (
	serviceName     = "world.World"
	retrieveMethod  = "/" + serviceName + "/RetrieveEntities"
	subscribeMethod = "/" + serviceName + "/SubscribeEntities"
)

const defaultDialTimeout = 10 * time.Second

var subscribeStreamDesc = &grpc.StreamDesc{
	StreamName:    "SubscribeEntities",
	ServerStreams: true,
}

var tracer = otel.Tracer("github.com/louisbranch/worldbridge/internal/indexer")

type retrieveEntitiesRequest struct {
	World chain.Felt `json:"world"`
	Query Query      `json:"query"`
}

type retrieveEntitiesResponse struct {
	Entities   []wireEntity `json:"entities"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type subscribeEntitiesRequest struct {
	World  chain.Felt `json:"world"`
	Clause *Clause    `json:"clause,omitempty"`
}

// Dialer establishes world client connections.
type Dialer struct {
	// DialTimeout bounds connection establishment including the health
	// check. Defaults to 10s.
	DialTimeout time.Duration

	// DialOptions overrides the default client dial options.
	DialOptions []grpc.DialOption

	// Logf receives progress messages during the health wait.
	Logf func(string, ...any)
}

// Connect dials the indexing service and verifies it is serving.
func (d *Dialer) Connect(ctx context.Context, addr string, world chain.Felt) (Client, error) {
	timeout := defaultDialTimeout
	var opts []grpc.DialOption
	var logf func(string, ...any)
	if d != nil {
		if d.DialTimeout > 0 {
			timeout = d.DialTimeout
		}
		opts = d.DialOptions
		logf = d.Logf
	}
	if len(opts) == 0 {
		opts = platformgrpc.DefaultClientDialOptions()
	}

	conn, err := platformgrpc.DialWithHealth(ctx, nil, addr, timeout, logf, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect indexer at %s: %w", addr, err)
	}
	return &worldClient{conn: conn, world: world}, nil
}

// worldClient talks to one world on the indexing service.
type worldClient struct {
	conn  *grpc.ClientConn
	world chain.Felt
}

func (c *worldClient) RetrieveEntities(ctx context.Context, query Query) ([]Entity, error) {
	ctx, span := tracer.Start(ctx, "indexer.retrieve_entities",
		trace.WithAttributes(attribute.String("world", c.world.Hex())))
	defer span.End()

	req := retrieveEntitiesRequest{World: c.world, Query: query}
	var resp retrieveEntitiesResponse
	if err := c.conn.Invoke(ctx, retrieveMethod, &req, &resp, grpc.CallContentSubtype(codecName)); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(apperrors.CodeRetrievalFailed, "retrieve entities", err)
	}

	entities := make([]Entity, 0, len(resp.Entities))
	for _, w := range resp.Entities {
		entity, err := decodeEntity(w)
		if err != nil {
			span.RecordError(err)
			return nil, apperrors.Wrap(apperrors.CodeRetrievalFailed, "decode entity", err)
		}
		entities = append(entities, entity)
	}
	span.SetAttributes(attribute.Int("entities", len(entities)))
	return entities, nil
}

func (c *worldClient) SubscribeEntities(ctx context.Context, clause *Clause) (EntityStream, error) {
	_, span := tracer.Start(ctx, "indexer.subscribe_entities",
		trace.WithAttributes(attribute.String("world", c.world.Hex())))
	defer span.End()

	stream, err := c.conn.NewStream(ctx, subscribeStreamDesc, subscribeMethod, grpc.CallContentSubtype(codecName))
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(apperrors.CodeSubscriptionFailed, "open subscription stream", err)
	}
	if err := stream.SendMsg(&subscribeEntitiesRequest{World: c.world, Clause: clause}); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(apperrors.CodeSubscriptionFailed, "send subscription request", err)
	}
	if err := stream.CloseSend(); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(apperrors.CodeSubscriptionFailed, "close send side", err)
	}
	return &entityStream{stream: stream}, nil
}

func (c *worldClient) Close() error {
	return c.conn.Close()
}

type entityStream struct {
	stream grpc.ClientStream
}

func (s *entityStream) Recv() (Entity, error) {
	var w wireEntity
	if err := s.stream.RecvMsg(&w); err != nil {
		return Entity{}, err
	}
	return decodeEntity(w)
}
