package merkle

import (
	"github.com/earthbucks/earthbucks-go/internal/tx"
)

// Txs pairs an ordered transaction list with its merkle root and the
// proof for each transaction id.
type Txs struct {
	Txs    []*tx.Tx
	Root   [32]byte
	Proofs []*Proof
}

// NewTxs builds the tree over the transaction ids.
func NewTxs(txs []*tx.Tx) (*Txs, error) {
	leaves := make([][32]byte, len(txs))
	for i, t := range txs {
		leaves[i] = t.ID()
	}
	root, proofs, err := GenerateProofsAndRoot(leaves)
	if err != nil {
		return nil, err
	}
	return &Txs{Txs: txs, Root: root, Proofs: proofs}, nil
}

// Each visits every (tx, proof) pair.
func (m *Txs) Each(fn func(t *tx.Tx, p *Proof) bool) {
	for i, t := range m.Txs {
		if !fn(t, m.Proofs[i]) {
			return
		}
	}
}
