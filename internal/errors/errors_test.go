package errors

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodePredeployedIndexOutOfRange, "predeployed account index out of bounds")
	wrapped := fmt.Errorf("connect account: %w", Wrap(CodePredeployedIndexOutOfRange, "index 9", errors.New("boom")))

	if !errors.Is(wrapped, sentinel) {
		t.Fatal("expected wrapped error to match sentinel by code")
	}
	if errors.Is(wrapped, New(CodeAccountNotConnected, "no account")) {
		t.Fatal("expected mismatch for a different code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown for plain error, got %s", got)
	}
	err := fmt.Errorf("poll: %w", New(CodeRetrievalFailed, "retrieve entities"))
	if got := GetCode(err); got != CodeRetrievalFailed {
		t.Fatalf("expected CodeRetrievalFailed, got %s", got)
	}
}

func TestToGRPCStatus(t *testing.T) {
	err := New(CodeIndexerNotConnected, "no indexer client initialized").ToGRPCStatus()

	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected gRPC status error")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %s", st.Code())
	}
	if len(st.Details()) == 0 {
		t.Fatal("expected error details")
	}
}

func TestGRPCCodeFallback(t *testing.T) {
	if got := Code("SOMETHING_ELSE").GRPCCode(); got != codes.Internal {
		t.Fatalf("expected Internal fallback, got %s", got)
	}
}
