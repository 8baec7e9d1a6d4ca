package chain

import (
	"github.com/earthbucks/earthbucks-go/internal/keys"
	"github.com/earthbucks/earthbucks-go/internal/script"
	"github.com/earthbucks/earthbucks-go/internal/tx"
)

// HeaderChain is the builder's in-memory view of the longest chain: an
// append-only ordered list of headers whose block numbers equal their
// indexes. The builder loop owns the single instance.
type HeaderChain struct {
	Headers []*Header
}

// NewHeaderChain creates an empty chain.
func NewHeaderChain() *HeaderChain {
	return &HeaderChain{}
}

// Add appends a header. The caller is responsible for having validated
// it against the chain first.
func (c *HeaderChain) Add(h *Header) {
	c.Headers = append(c.Headers, h)
}

// Tip returns the last header, or nil on an empty chain.
func (c *HeaderChain) Tip() *Header {
	if len(c.Headers) == 0 {
		return nil
	}
	return c.Headers[len(c.Headers)-1]
}

// Len returns the chain length, which is also the next block number.
func (c *HeaderChain) Len() int {
	return len(c.Headers)
}

// ExtendIsValidAt reports whether h extends the chain at the given
// clock reading.
func (c *HeaderChain) ExtendIsValidAt(h *Header, now uint64) bool {
	return h.IsValidAt(c.Headers, now)
}

// NextHeader builds the unmined candidate header for the given merkle
// root and timestamp.
func (c *HeaderChain) NextHeader(merkleRoot [32]byte, timestamp uint64) (*Header, error) {
	h, err := FromChain(c.Headers, timestamp)
	if err != nil {
		return nil, err
	}
	h.MerkleRoot = merkleRoot
	return h, nil
}

// NextCoinbaseTx builds the coinbase transaction for the next block:
// one distinguished input carrying the domain and block number, one
// output paying the full subsidy to the payee hash.
func (c *HeaderChain) NextCoinbaseTx(payeePkh *keys.Pkh, domain string) *tx.Tx {
	blockNum := uint64(c.Len())
	amount := CoinbaseAmount(blockNum)
	inputScript := script.FromCoinbaseInput(domain, blockNum)
	outputScript := script.FromPkhOutput(payeePkh.Buf)
	return tx.TxFromCoinbase(inputScript, outputScript, amount, blockNum)
}
