package tx

// OutPoint identifies one output of one transaction.
type OutPoint struct {
	TxID   [32]byte
	OutNum uint32
}

// TxOutMap tracks known spendable outputs by (tx id, output index).
// Iteration order is insertion order so funding selection is stable.
type TxOutMap struct {
	m     map[OutPoint]*TxOut
	order []OutPoint
}

// NewTxOutMap creates an empty map.
func NewTxOutMap() *TxOutMap {
	return &TxOutMap{m: make(map[OutPoint]*TxOut)}
}

// Add records an output under (txID, outNum).
func (tm *TxOutMap) Add(out *TxOut, txID [32]byte, outNum uint32) {
	op := OutPoint{TxID: txID, OutNum: outNum}
	if _, exists := tm.m[op]; !exists {
		tm.order = append(tm.order, op)
	}
	tm.m[op] = out
}

// Remove drops the entry for (txID, outNum).
func (tm *TxOutMap) Remove(txID [32]byte, outNum uint32) {
	op := OutPoint{TxID: txID, OutNum: outNum}
	if _, exists := tm.m[op]; !exists {
		return
	}
	delete(tm.m, op)
	for i, o := range tm.order {
		if o == op {
			tm.order = append(tm.order[:i], tm.order[i+1:]...)
			break
		}
	}
}

// Get returns the output for (txID, outNum), or nil.
func (tm *TxOutMap) Get(txID [32]byte, outNum uint32) *TxOut {
	return tm.m[OutPoint{TxID: txID, OutNum: outNum}]
}

// Len returns the number of entries.
func (tm *TxOutMap) Len() int {
	return len(tm.m)
}

// Each visits entries in insertion order until fn returns false.
func (tm *TxOutMap) Each(fn func(op OutPoint, out *TxOut) bool) {
	for _, op := range tm.order {
		if !fn(op, tm.m[op]) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (tm *TxOutMap) Clone() *TxOutMap {
	out := NewTxOutMap()
	for _, op := range tm.order {
		out.Add(tm.m[op], op.TxID, op.OutNum)
	}
	return out
}

// TxOutBn couples an output with the block number it was confirmed in.
// The signer needs the block number to evaluate expiry windows.
type TxOutBn struct {
	TxOut    *TxOut
	BlockNum uint64
}

// TxOutBnMap is a TxOutMap variant whose entries carry block numbers.
type TxOutBnMap struct {
	m     map[OutPoint]*TxOutBn
	order []OutPoint
}

// NewTxOutBnMap creates an empty map.
func NewTxOutBnMap() *TxOutBnMap {
	return &TxOutBnMap{m: make(map[OutPoint]*TxOutBn)}
}

// Add records an output and its confirmation block under (txID, outNum).
func (tm *TxOutBnMap) Add(txID [32]byte, outNum uint32, out *TxOut, blockNum uint64) {
	op := OutPoint{TxID: txID, OutNum: outNum}
	if _, exists := tm.m[op]; !exists {
		tm.order = append(tm.order, op)
	}
	tm.m[op] = &TxOutBn{TxOut: out, BlockNum: blockNum}
}

// Get returns the entry for (txID, outNum), or nil.
func (tm *TxOutBnMap) Get(txID [32]byte, outNum uint32) *TxOutBn {
	return tm.m[OutPoint{TxID: txID, OutNum: outNum}]
}

// Len returns the number of entries.
func (tm *TxOutBnMap) Len() int {
	return len(tm.m)
}

// Each visits entries in insertion order until fn returns false.
func (tm *TxOutBnMap) Each(fn func(op OutPoint, bn *TxOutBn) bool) {
	for _, op := range tm.order {
		if !fn(op, tm.m[op]) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (tm *TxOutBnMap) Clone() *TxOutBnMap {
	out := NewTxOutBnMap()
	for _, op := range tm.order {
		bn := tm.m[op]
		out.Add(op.TxID, op.OutNum, bn.TxOut, bn.BlockNum)
	}
	return out
}
