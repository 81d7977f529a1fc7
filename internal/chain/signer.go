package chain

import (
	"context"
	"crypto/sha256"
)

// InsecureSigner derives a deterministic placeholder signature from the
// private key and payload. It performs no curve arithmetic, so only dev
// chains running with account validation disabled will accept it. Real
// deployments must inject a Signer backed by an actual signing key.
func InsecureSigner(privateKey Felt) Signer {
	return insecureSigner{key: privateKey}
}

type insecureSigner struct {
	key Felt
}

func (s insecureSigner) Sign(_ context.Context, payload []Felt) ([]Felt, error) {
	h := sha256.New()
	h.Write(s.key[:])
	for _, f := range payload {
		h.Write(f[:])
	}
	var r, w Felt
	sum := h.Sum(nil)
	copy(r[1:], sum)
	h.Write(sum)
	copy(w[1:], h.Sum(nil))
	return []Felt{r, w}, nil
}
