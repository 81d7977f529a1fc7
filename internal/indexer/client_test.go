package indexer

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/worldbridge/internal/chain"
)

// worldServer is a minimal in-process implementation of the world service.
type worldServer struct {
	entities []wireEntity
	updates  []wireEntity
}

func retrieveEntitiesHandler(srv any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	var req retrieveEntitiesRequest
	if err := dec(&req); err != nil {
		return nil, err
	}
	return &retrieveEntitiesResponse{Entities: srv.(*worldServer).entities}, nil
}

func subscribeEntitiesHandler(srv any, stream grpc.ServerStream) error {
	var req subscribeEntitiesRequest
	if err := stream.RecvMsg(&req); err != nil {
		return err
	}
	for _, update := range srv.(*worldServer).updates {
		if err := stream.SendMsg(&update); err != nil {
			return err
		}
	}
	return nil
}

var worldServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RetrieveEntities", Handler: retrieveEntitiesHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "SubscribeEntities", Handler: subscribeEntitiesHandler, ServerStreams: true},
	},
}

func startWorldServer(t *testing.T, impl *worldServer) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	server := grpc.NewServer()
	server.RegisterService(&worldServiceDesc, impl)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)
	return lis.Addr().String()
}

func testModel(t *testing.T, name string, fields map[string]any) *structpb.Struct {
	t.Helper()

	fields["__name"] = name
	model, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return model
}

func mustEncodeEntity(t *testing.T, e Entity) wireEntity {
	t.Helper()

	w, err := encodeEntity(e)
	if err != nil {
		t.Fatalf("encode entity: %v", err)
	}
	return w
}

func TestRetrieveEntitiesRoundTrip(t *testing.T) {
	position := testModel(t, "di-Position", map[string]any{"x": 3.0, "y": 7.0})
	entityID := chain.FeltFromUint64(42)
	impl := &worldServer{
		entities: []wireEntity{
			mustEncodeEntity(t, Entity{ID: entityID, Models: []*structpb.Struct{position}}),
		},
	}
	addr := startWorldServer(t, impl)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := (&Dialer{DialTimeout: 2 * time.Second}).Connect(ctx, addr, chain.FeltFromUint64(1))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer func() { _ = client.Close() }()

	entities, err := client.RetrieveEntities(ctx, Query{Limit: 100, Direction: DirectionForward})
	if err != nil {
		t.Fatalf("retrieve entities: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	if entities[0].ID != entityID {
		t.Fatalf("unexpected entity id %s", entities[0].ID.Hex())
	}
	if got := ModelName(entities[0].Models[0]); got != "di-Position" {
		t.Fatalf("unexpected model name %s", got)
	}
	if got := entities[0].Models[0].GetFields()["x"].GetNumberValue(); got != 3.0 {
		t.Fatalf("unexpected x value %v", got)
	}
}

func TestSubscribeEntitiesStreamsUpdates(t *testing.T) {
	moves := testModel(t, "di-Moves", map[string]any{"remaining": 9.0})
	impl := &worldServer{
		updates: []wireEntity{
			mustEncodeEntity(t, Entity{ID: chain.FeltFromUint64(7), Models: []*structpb.Struct{moves}}),
			mustEncodeEntity(t, Entity{ID: chain.FeltFromUint64(8), Models: nil}),
		},
	}
	addr := startWorldServer(t, impl)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := (&Dialer{DialTimeout: 2 * time.Second}).Connect(ctx, addr, chain.FeltFromUint64(1))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer func() { _ = client.Close() }()

	stream, err := client.SubscribeEntities(ctx, &Clause{Models: []string{"di-Moves"}})
	if err != nil {
		t.Fatalf("subscribe entities: %v", err)
	}

	first, err := stream.Recv()
	if err != nil {
		t.Fatalf("recv first update: %v", err)
	}
	if first.ID != chain.FeltFromUint64(7) {
		t.Fatalf("unexpected first entity %s", first.ID.Hex())
	}
	if got := ModelName(first.Models[0]); got != "di-Moves" {
		t.Fatalf("unexpected model name %s", got)
	}

	second, err := stream.Recv()
	if err != nil {
		t.Fatalf("recv second update: %v", err)
	}
	if second.ID != chain.FeltFromUint64(8) {
		t.Fatalf("unexpected second entity %s", second.ID.Hex())
	}

	if _, err := stream.Recv(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF at stream end, got %v", err)
	}
}

func TestModelNameNilSafe(t *testing.T) {
	if got := ModelName(nil); got != "" {
		t.Fatalf("expected empty name for nil model, got %q", got)
	}
}
