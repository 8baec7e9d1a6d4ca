package tx

import (
	"github.com/earthbucks/earthbucks-go/internal/script"
)

// TxBuilder assembles an unsigned transaction from a set of spendable
// outputs. Fees are zero; any excess input value goes to the change
// script.
type TxBuilder struct {
	txOutBnMap   *TxOutBnMap
	tx           *Tx
	changeScript *script.Script
	inputAmount  uint64
}

// NewTxBuilder creates a builder funding from txOutBnMap, sending excess
// to changeScript, with the given absolute lock.
func NewTxBuilder(txOutBnMap *TxOutBnMap, changeScript *script.Script, lockAbs uint64) *TxBuilder {
	return &TxBuilder{
		txOutBnMap:   txOutBnMap.Clone(),
		tx:           NewTx(1, nil, nil, lockAbs),
		changeScript: changeScript,
	}
}

// AddOutput appends an output to the pending transaction.
func (b *TxBuilder) AddOutput(out *TxOut) {
	b.tx.Outputs = append(b.tx.Outputs, out)
}

// InputAmount returns the total value of the selected inputs after
// Build.
func (b *TxBuilder) InputAmount() uint64 {
	return b.inputAmount
}

// Build selects pay-to-hash outputs in map order until the accumulated
// input value covers the outputs, attaching placeholder input scripts
// sized for a real signature and key. Strictly greater input value adds
// a change output. The result is unsigned, and may be underfunded if
// the map cannot cover the outputs; the verifier rejects such a
// transaction later.
func (b *TxBuilder) Build() *Tx {
	b.tx.Inputs = nil
	var totalSpend uint64
	for _, out := range b.tx.Outputs {
		totalSpend += out.Value
	}

	var inputAmount, changeAmount uint64
	b.txOutBnMap.Each(func(op OutPoint, bn *TxOutBn) bool {
		if !bn.TxOut.Script.IsPkhOutput() {
			return true
		}
		in := NewTxIn(op.TxID, op.OutNum, script.FromPkhInputPlaceholder(), 0)
		b.tx.Inputs = append(b.tx.Inputs, in)
		inputAmount += bn.TxOut.Value
		if inputAmount >= totalSpend {
			changeAmount = inputAmount - totalSpend
			return false
		}
		return true
	})

	b.inputAmount = inputAmount
	if changeAmount > 0 {
		b.AddOutput(NewTxOut(changeAmount, b.changeScript))
	}
	return b.tx
}
