package script

import "math/big"

// ScriptNum is the signed big integer used on the interpreter stack.
// The wire form is a minimal big-endian two's-complement byte sequence;
// zero is the empty sequence.
type ScriptNum struct {
	Num *big.Int
}

// NewScriptNum creates a ScriptNum from an int64.
func NewScriptNum(v int64) *ScriptNum {
	return &ScriptNum{Num: big.NewInt(v)}
}

// NewScriptNumBig wraps an existing big.Int.
func NewScriptNumBig(v *big.Int) *ScriptNum {
	return &ScriptNum{Num: v}
}

// ScriptNumFromBuf decodes the two's-complement wire form.
func ScriptNumFromBuf(buf []byte) *ScriptNum {
	if len(buf) == 0 {
		return NewScriptNum(0)
	}
	v := new(big.Int).SetBytes(buf)
	if buf[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*len(buf))))
	}
	return &ScriptNum{Num: v}
}

// ToBuf encodes the minimal two's-complement wire form.
func (n *ScriptNum) ToBuf() []byte {
	sign := n.Num.Sign()
	if sign == 0 {
		return []byte{}
	}
	if sign > 0 {
		b := n.Num.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0x00}, b...)
		}
		return b
	}
	abs := new(big.Int).Neg(n.Num)
	// Smallest width whose two's-complement range holds -abs.
	width := (abs.BitLen() + 7) / 8
	if width == 0 {
		width = 1
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(8*width-1))
	if abs.Cmp(limit) > 0 {
		width++
	}
	tc := new(big.Int).Lsh(big.NewInt(1), uint(8*width))
	tc.Sub(tc, abs)
	raw := tc.Bytes()
	out := make([]byte, width)
	copy(out[width-len(raw):], raw)
	return out
}

// IsNegative reports whether the value is below zero.
func (n *ScriptNum) IsNegative() bool {
	return n.Num.Sign() < 0
}

// Cmp compares against another ScriptNum.
func (n *ScriptNum) Cmp(other *ScriptNum) int {
	return n.Num.Cmp(other.Num)
}

// ToInt returns the value as an int. The caller must ensure it fits.
func (n *ScriptNum) ToInt() int {
	return int(n.Num.Int64())
}

// ToU64 returns the value as a uint64. The caller must ensure it is
// non-negative and fits.
func (n *ScriptNum) ToU64() uint64 {
	return n.Num.Uint64()
}
