// Package errors provides structured error handling for the bridge.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Connection errors
	CodeAccountNotConnected        Code = "ACCOUNT_NOT_CONNECTED"
	CodeIndexerNotConnected        Code = "INDEXER_NOT_CONNECTED"
	CodePredeployedIndexOutOfRange Code = "PREDEPLOYED_INDEX_OUT_OF_RANGE"

	// Request errors
	CodeTransactionRejected Code = "TRANSACTION_REJECTED"
	CodeRetrievalFailed     Code = "RETRIEVAL_FAILED"
	CodeSubscriptionFailed  Code = "SUBSCRIPTION_FAILED"

	// Storage errors
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// GRPCCode maps bridge codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeAccountNotConnected,
		CodeIndexerNotConnected:
		return codes.FailedPrecondition

	case CodePredeployedIndexOutOfRange:
		return codes.OutOfRange

	case CodeTransactionRejected:
		return codes.InvalidArgument

	case CodeRetrievalFailed,
		CodeSubscriptionFailed,
		CodeStorageUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
