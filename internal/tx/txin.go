// Package tx holds the transaction model: inputs, outputs, the Tx
// container with its signature hashing, the spendable-output maps, and
// the funding/signing helpers built on top of them.
package tx

import (
	"github.com/earthbucks/earthbucks-go/internal/script"
	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

// coinbaseOutNum marks the distinguished coinbase input.
const coinbaseOutNum = 0xffffffff

// TxIn spends one output of an earlier transaction.
type TxIn struct {
	InputTxID     [32]byte
	InputTxOutNum uint32
	Script        *script.Script
	LockRel       uint32
}

// NewTxIn creates an input.
func NewTxIn(inputTxID [32]byte, inputTxOutNum uint32, s *script.Script, lockRel uint32) *TxIn {
	return &TxIn{
		InputTxID:     inputTxID,
		InputTxOutNum: inputTxOutNum,
		Script:        s,
		LockRel:       lockRel,
	}
}

// TxInFromCoinbase builds the distinguished coinbase input.
func TxInFromCoinbase(s *script.Script) *TxIn {
	return &TxIn{
		InputTxID:     [32]byte{},
		InputTxOutNum: coinbaseOutNum,
		Script:        s,
		LockRel:       0,
	}
}

// ToBuf returns the canonical wire form.
func (in *TxIn) ToBuf() []byte {
	w := ebxbuf.NewWriter()
	w.Write(in.InputTxID[:])
	w.WriteU32BE(in.InputTxOutNum)
	scriptBuf := in.Script.ToBuf()
	w.WriteVarInt(uint64(len(scriptBuf)))
	w.Write(scriptBuf)
	w.WriteU32BE(in.LockRel)
	return w.Bytes()
}

// TxInFromReader decodes an input.
func TxInFromReader(r *ebxbuf.Reader) (*TxIn, error) {
	inputTxID, err := r.ReadFixed32()
	if err != nil {
		return nil, err
	}
	inputTxOutNum, err := r.ReadU32BE()
	if err != nil {
		return nil, err
	}
	scriptLen, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	scriptBuf, err := r.Read(int(scriptLen))
	if err != nil {
		return nil, err
	}
	s, err := script.FromBuf(scriptBuf)
	if err != nil {
		return nil, err
	}
	lockRel, err := r.ReadU32BE()
	if err != nil {
		return nil, err
	}
	return NewTxIn(inputTxID, inputTxOutNum, s, lockRel), nil
}

// TxInFromBuf decodes an input spanning the entire buffer.
func TxInFromBuf(buf []byte) (*TxIn, error) {
	return TxInFromReader(ebxbuf.NewReader(buf))
}

// IsNull reports whether the input references nothing (coinbase shape).
func (in *TxIn) IsNull() bool {
	return in.InputTxID == [32]byte{} && in.InputTxOutNum == coinbaseOutNum
}

// IsMinimalLock reports a zero relative lock.
func (in *TxIn) IsMinimalLock() bool {
	return in.LockRel == 0
}

// IsCoinbase reports whether the input is the distinguished coinbase
// input: null reference and minimal lock.
func (in *TxIn) IsCoinbase() bool {
	return in.IsNull() && in.IsMinimalLock()
}
