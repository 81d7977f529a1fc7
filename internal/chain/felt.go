// Package chain provides the blockchain-side collaborators for the bridge:
// field element and call types plus a JSON-RPC account dialer.
package chain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Felt is a 251-bit field element stored big-endian in 32 bytes. The zero
// value is the sentinel "no entity" identity.
type Felt [32]byte

// HexToFelt parses a 0x-prefixed hex string into a Felt.
func HexToFelt(s string) (Felt, error) {
	var f Felt
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if trimmed == "" {
		return f, fmt.Errorf("parse felt: empty value")
	}
	if len(trimmed)%2 == 1 {
		trimmed = "0" + trimmed
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return f, fmt.Errorf("parse felt %q: %w", s, err)
	}
	if len(raw) > len(f) {
		return f, fmt.Errorf("parse felt %q: value exceeds 32 bytes", s)
	}
	copy(f[len(f)-len(raw):], raw)
	return f, nil
}

// MustHexToFelt parses a hex string and panics on failure. Intended for
// constants in demo and test code.
func MustHexToFelt(s string) Felt {
	f, err := HexToFelt(s)
	if err != nil {
		panic(err)
	}
	return f
}

// FeltFromUint64 converts an unsigned integer into a Felt.
func FeltFromUint64(v uint64) Felt {
	var f Felt
	for i := 0; i < 8; i++ {
		f[31-i] = byte(v >> (8 * i))
	}
	return f
}

// IsZero reports whether the felt is the sentinel zero value.
func (f Felt) IsZero() bool {
	return f == (Felt{})
}

// Hex renders the felt as a minimal 0x-prefixed hex string.
func (f Felt) Hex() string {
	i := 0
	for i < len(f)-1 && f[i] == 0 {
		i++
	}
	s := hex.EncodeToString(f[i:])
	s = strings.TrimPrefix(s, "0")
	if s == "" {
		s = "0"
	}
	return "0x" + s
}

// String implements fmt.Stringer.
func (f Felt) String() string {
	return f.Hex()
}

// MarshalJSON renders the felt as a hex string, the representation expected
// by the JSON-RPC endpoint and the indexer wire format.
func (f Felt) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Hex())
}

// UnmarshalJSON parses either a hex string or a decimal-free quoted value.
func (f *Felt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal felt: %w", err)
	}
	parsed, err := HexToFelt(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Call describes one contract invocation within a transaction.
type Call struct {
	To       Felt   `json:"to"`
	Selector Felt   `json:"selector"`
	Calldata []Felt `json:"calldata"`
}
