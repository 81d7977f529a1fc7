package chain

import (
	"context"
	"fmt"
	"log"
	"net/http"

	apperrors "github.com/louisbranch/worldbridge/internal/errors"
)

// ErrPredeployedIndexOutOfRange reports a predeployed account index beyond
// the accounts the dev endpoint exposes. This is a fatal configuration
// failure: the caller picked an account that does not exist.
var ErrPredeployedIndexOutOfRange = apperrors.New(
	apperrors.CodePredeployedIndexOutOfRange,
	"predeployed account index out of bounds",
)

// Account is an established, shareable connection to one on-chain account.
// Implementations must be safe for use by concurrent transaction tasks.
type Account interface {
	// Address returns the account contract address.
	Address() Felt

	// Execute submits the calls as a single invoke transaction and returns
	// the transaction hash.
	Execute(ctx context.Context, calls []Call) (Felt, error)
}

// Signer produces invoke-transaction signatures for one account key.
// Curve arithmetic is a collaborator concern; callers with real keys
// inject their own implementation.
type Signer interface {
	Sign(ctx context.Context, payload []Felt) ([]Felt, error)
}

// Dialer establishes account connections over JSON-RPC.
type Dialer struct {
	// HTTPClient overrides the transport used for JSON-RPC calls.
	HTTPClient *http.Client

	// NewSigner builds the signer for a raw private key. Defaults to
	// InsecureSigner, which only dev chains with validation disabled accept.
	NewSigner func(privateKey Felt) Signer

	// Logf receives progress messages. Defaults to log.Printf.
	Logf func(string, ...any)
}

func (d *Dialer) logf(format string, args ...any) {
	if d != nil && d.Logf != nil {
		d.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (d *Dialer) newSigner(privateKey Felt) Signer {
	if d != nil && d.NewSigner != nil {
		return d.NewSigner(privateKey)
	}
	return InsecureSigner(privateKey)
}

func (d *Dialer) httpClient() *http.Client {
	if d != nil && d.HTTPClient != nil {
		return d.HTTPClient
	}
	return nil
}

// Connect resolves the chain identifier and builds a signing account handle.
func (d *Dialer) Connect(ctx context.Context, rpcURL string, address, privateKey Felt) (Account, error) {
	client := newRPCClient(rpcURL, d.httpClient())

	var chainID Felt
	if err := client.call(ctx, "starknet_chainId", nil, &chainID); err != nil {
		return nil, fmt.Errorf("resolve chain id: %w", err)
	}

	return &rpcAccount{
		client:  client,
		address: address,
		chainID: chainID,
		signer:  d.newSigner(privateKey),
		blockID: "latest",
	}, nil
}

// ConnectPredeployed looks up the dev endpoint's predeployed accounts and
// connects as the one at index. Entries without a private key are unusable
// and never match; an index that resolves to no usable entry fails with
// ErrPredeployedIndexOutOfRange.
func (d *Dialer) ConnectPredeployed(ctx context.Context, rpcURL string, index int) (Account, error) {
	client := newRPCClient(rpcURL, d.httpClient())

	var accounts []struct {
		Address    string `json:"address"`
		PrivateKey string `json:"privateKey"`
	}
	if err := client.call(ctx, "dev_predeployedAccounts", nil, &accounts); err != nil {
		return nil, fmt.Errorf("fetch predeployed accounts: %w", err)
	}

	var chainID Felt
	if err := client.call(ctx, "starknet_chainId", nil, &chainID); err != nil {
		return nil, fmt.Errorf("resolve chain id: %w", err)
	}

	for i, entry := range accounts {
		if i != index {
			continue
		}
		if entry.PrivateKey == "" {
			break
		}
		address, err := HexToFelt(entry.Address)
		if err != nil {
			return nil, fmt.Errorf("predeployed account %d address: %w", i, err)
		}
		privateKey, err := HexToFelt(entry.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("predeployed account %d key: %w", i, err)
		}
		d.logf("using predeployed account %d at %s", i, address.Hex())
		return &rpcAccount{
			client:  client,
			address: address,
			chainID: chainID,
			signer:  d.newSigner(privateKey),
			// Dev chains mine on demand; pin reads to the pending block.
			blockID: "pending",
		}, nil
	}

	return nil, fmt.Errorf("predeployed account %d of %d: %w", index, len(accounts), ErrPredeployedIndexOutOfRange)
}

// rpcAccount submits invoke transactions for a single account.
type rpcAccount struct {
	client  *rpcClient
	address Felt
	chainID Felt
	signer  Signer
	blockID string
}

func (a *rpcAccount) Address() Felt {
	return a.address
}

// Execute fetches the current nonce, signs, and submits the calls as one
// v3 invoke transaction.
func (a *rpcAccount) Execute(ctx context.Context, calls []Call) (Felt, error) {
	if len(calls) == 0 {
		return Felt{}, fmt.Errorf("execute: no calls provided")
	}

	var nonce Felt
	if err := a.client.call(ctx, "starknet_getNonce", []any{a.blockID, a.address}, &nonce); err != nil {
		return Felt{}, fmt.Errorf("fetch nonce: %w", err)
	}

	calldata := encodeCalls(calls)
	payload := make([]Felt, 0, len(calldata)+3)
	payload = append(payload, a.address, a.chainID, nonce)
	payload = append(payload, calldata...)

	signature, err := a.signer.Sign(ctx, payload)
	if err != nil {
		return Felt{}, fmt.Errorf("sign transaction: %w", err)
	}

	zero := FeltFromUint64(0)
	params := map[string]any{
		"invoke_transaction": map[string]any{
			"type":           "INVOKE",
			"version":        "0x3",
			"sender_address": a.address,
			"calldata":       calldata,
			"signature":      signature,
			"nonce":          nonce,
			"resource_bounds": map[string]any{
				"l1_gas": map[string]any{"max_amount": zero, "max_price_per_unit": zero},
				"l2_gas": map[string]any{"max_amount": zero, "max_price_per_unit": zero},
			},
			"tip":                     zero,
			"paymaster_data":          []Felt{},
			"account_deployment_data": []Felt{},

			"nonce_data_availability_mode": "L1",
			"fee_data_availability_mode":   "L1",
		},
	}

	var result struct {
		TransactionHash Felt `json:"transaction_hash"`
	}
	if err := a.client.call(ctx, "starknet_addInvokeTransaction", params, &result); err != nil {
		return Felt{}, fmt.Errorf("submit transaction: %w", err)
	}
	return result.TransactionHash, nil
}

// encodeCalls flattens calls into account calldata: the call count followed
// by, per call, the target, selector, argument count, and arguments.
func encodeCalls(calls []Call) []Felt {
	out := []Felt{FeltFromUint64(uint64(len(calls)))}
	for _, call := range calls {
		out = append(out, call.To, call.Selector, FeltFromUint64(uint64(len(call.Calldata))))
		out = append(out, call.Calldata...)
	}
	return out
}
