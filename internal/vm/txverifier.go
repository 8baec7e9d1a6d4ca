package vm

import (
	"github.com/earthbucks/earthbucks-go/internal/tx"
)

// TxVerifier checks one non-coinbase transaction against a set of known
// spendable outputs.
type TxVerifier struct {
	tx        *tx.Tx
	txOutMap  *tx.TxOutMap
	hashCache *tx.HashCache
}

// NewTxVerifier creates a verifier for t against txOutMap.
func NewTxVerifier(t *tx.Tx, txOutMap *tx.TxOutMap) *TxVerifier {
	return &TxVerifier{tx: t, txOutMap: txOutMap, hashCache: tx.NewHashCache()}
}

// VerifyInputScript evaluates the output script referenced by input nIn
// with the stack seeded from the input script's pushes. The input script
// must be push-only.
func (v *TxVerifier) VerifyInputScript(nIn int) bool {
	in := v.tx.Inputs[nIn]
	out := v.txOutMap.Get(in.InputTxID, in.InputTxOutNum)
	if out == nil {
		return false
	}
	if !in.Script.IsPushOnly() {
		return false
	}
	stack := make([][]byte, 0, len(in.Script.Chunks))
	for _, chunk := range in.Script.Chunks {
		stack = append(stack, chunk.PushValue())
	}
	ip := NewOutputScriptInterpreter(out.Script, v.tx, nIn, stack, out.Value, v.hashCache)
	return ip.EvalScript()
}

// VerifyScripts evaluates every input.
func (v *TxVerifier) VerifyScripts() bool {
	for i := range v.tx.Inputs {
		if !v.VerifyInputScript(i) {
			return false
		}
	}
	return true
}

// VerifyNoDoubleSpend checks that no output is referenced twice.
func (v *TxVerifier) VerifyNoDoubleSpend() bool {
	seen := make(map[tx.OutPoint]bool, len(v.tx.Inputs))
	for _, in := range v.tx.Inputs {
		op := tx.OutPoint{TxID: in.InputTxID, OutNum: in.InputTxOutNum}
		if v.txOutMap.Get(in.InputTxID, in.InputTxOutNum) == nil {
			return false
		}
		if seen[op] {
			return false
		}
		seen[op] = true
	}
	return true
}

// VerifyOutputValues checks that input value equals output value.
func (v *TxVerifier) VerifyOutputValues() bool {
	var totalOut uint64
	for _, out := range v.tx.Outputs {
		totalOut += out.Value
	}
	var totalIn uint64
	for _, in := range v.tx.Inputs {
		out := v.txOutMap.Get(in.InputTxID, in.InputTxOutNum)
		if out == nil {
			return false
		}
		totalIn += out.Value
	}
	return totalIn == totalOut
}

// VerifyIsNotCoinbase rejects coinbase transactions; those are checked
// by the block verifier instead.
func (v *TxVerifier) VerifyIsNotCoinbase() bool {
	return !v.tx.IsCoinbase()
}

// Verify runs every check.
func (v *TxVerifier) Verify() bool {
	return v.VerifyIsNotCoinbase() &&
		v.VerifyNoDoubleSpend() &&
		v.VerifyScripts() &&
		v.VerifyOutputValues()
}
