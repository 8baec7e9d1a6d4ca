package testutil

import (
	"testing"

	"github.com/earthbucks/earthbucks-go/internal/chain"
	"github.com/earthbucks/earthbucks-go/internal/keys"
)

// SampleKeyPair returns a deterministic key pair for fixtures.
func SampleKeyPair(t *testing.T) *keys.KeyPair {
	t.Helper()
	priv, err := keys.PrivKeyFromHex("d9486fac4a1de03ca8c562291182e58f2f3e42a82eaf3152ccf744b3a8b3b725")
	if err != nil {
		t.Fatalf("PrivKeyFromHex: %v", err)
	}
	pair, err := keys.KeyPairFromPrivKey(priv)
	if err != nil {
		t.Fatalf("KeyPairFromPrivKey: %v", err)
	}
	return pair
}

// SampleChain builds a structurally valid header chain of the given
// length starting at startTime, one intended interval apart.
func SampleChain(t *testing.T, length int, startTime uint64) *chain.HeaderChain {
	t.Helper()
	c := chain.NewHeaderChain()
	for i := 0; i < length; i++ {
		h, err := chain.FromChain(c.Headers, startTime+uint64(i)*chain.BlockInterval)
		if err != nil {
			t.Fatalf("FromChain: %v", err)
		}
		c.Add(h)
	}
	return c
}
