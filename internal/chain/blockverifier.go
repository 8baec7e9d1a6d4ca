package chain

import (
	"github.com/earthbucks/earthbucks-go/internal/merkle"
	"github.com/earthbucks/earthbucks-go/internal/tx"
	"github.com/earthbucks/earthbucks-go/internal/vm"
)

// BlockVerifier validates one block against the current longest chain
// and the spendable outputs its transactions reference.
type BlockVerifier struct {
	block    *Block
	txOutMap *tx.TxOutMap
	chain    *HeaderChain
}

// NewBlockVerifier creates a verifier.
func NewBlockVerifier(block *Block, txOutMap *tx.TxOutMap, chain *HeaderChain) *BlockVerifier {
	return &BlockVerifier{block: block, txOutMap: txOutMap, chain: chain}
}

// HeaderIsValidAt checks the header against the chain at now.
func (v *BlockVerifier) HeaderIsValidAt(now uint64) bool {
	return v.chain.ExtendIsValidAt(v.block.Header, now)
}

// MerkleRootIsValid recomputes the merkle root over the transaction ids
// and compares it with the header.
func (v *BlockVerifier) MerkleRootIsValid() bool {
	mt, err := merkle.NewTxs(v.block.Txs)
	if err != nil {
		return false
	}
	return mt.Root == v.block.Header.MerkleRoot
}

// CoinbaseIsValid checks that the first transaction is a coinbase whose
// total output value does not exceed the subsidy for this block, and
// that no other transaction is a coinbase.
func (v *BlockVerifier) CoinbaseIsValid() bool {
	if len(v.block.Txs) == 0 {
		return false
	}
	coinbase := v.block.Txs[0]
	if !coinbase.IsCoinbase() {
		return false
	}
	var total uint64
	for _, out := range coinbase.Outputs {
		total += out.Value
	}
	if total > CoinbaseAmount(v.block.Header.BlockNum) {
		return false
	}
	for _, t := range v.block.Txs[1:] {
		if t.IsCoinbase() {
			return false
		}
	}
	return true
}

// TxsAreValid runs the transaction verifier over every non-coinbase
// transaction: scripts, value balance, and per-tx double spends.
func (v *BlockVerifier) TxsAreValid() bool {
	for _, t := range v.block.Txs[1:] {
		if !vm.NewTxVerifier(t, v.txOutMap).Verify() {
			return false
		}
	}
	return true
}

// NoDoubleSpends checks that no output is referenced twice across the
// whole block.
func (v *BlockVerifier) NoDoubleSpends() bool {
	seen := make(map[tx.OutPoint]bool)
	for _, t := range v.block.Txs {
		if t.IsCoinbase() {
			continue
		}
		for _, in := range t.Inputs {
			op := tx.OutPoint{TxID: in.InputTxID, OutNum: in.InputTxOutNum}
			if seen[op] {
				return false
			}
			seen[op] = true
		}
	}
	return true
}

// IsValidAt runs every check against the given clock reading.
func (v *BlockVerifier) IsValidAt(now uint64) bool {
	if len(v.block.Txs) == 0 {
		return false
	}
	return v.HeaderIsValidAt(now) &&
		v.MerkleRootIsValid() &&
		v.CoinbaseIsValid() &&
		v.NoDoubleSpends() &&
		v.TxsAreValid()
}
