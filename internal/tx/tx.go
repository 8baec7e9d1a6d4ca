package tx

import (
	"github.com/earthbucks/earthbucks-go/internal/hash"
	"github.com/earthbucks/earthbucks-go/internal/keys"
	"github.com/earthbucks/earthbucks-go/internal/script"
	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

// HashCache memoizes the sighash component digests that do not depend on
// the hash type. One cache belongs to one Tx value; it must be discarded
// when the Tx mutates.
type HashCache struct {
	PrevoutsHash *[32]byte
	LockRelHash  *[32]byte
	OutputsHash  *[32]byte
}

// NewHashCache creates an empty cache.
func NewHashCache() *HashCache {
	return &HashCache{}
}

// Tx is a transaction: inputs spending earlier outputs, new outputs, and
// an absolute lock on the whole transaction.
type Tx struct {
	Version uint8
	Inputs  []*TxIn
	Outputs []*TxOut
	LockAbs uint64
}

// NewTx creates a transaction.
func NewTx(version uint8, inputs []*TxIn, outputs []*TxOut, lockAbs uint64) *Tx {
	return &Tx{Version: version, Inputs: inputs, Outputs: outputs, LockAbs: lockAbs}
}

// TxFromCoinbase builds the single-input coinbase transaction for a
// block. The absolute lock carries the block number.
func TxFromCoinbase(inputScript, outputScript *script.Script, outputAmount uint64, blockNum uint64) *Tx {
	return NewTx(
		1,
		[]*TxIn{TxInFromCoinbase(inputScript)},
		[]*TxOut{NewTxOut(outputAmount, outputScript)},
		blockNum,
	)
}

// IsCoinbase reports whether the transaction is a coinbase.
func (t *Tx) IsCoinbase() bool {
	return len(t.Inputs) == 1 && t.Inputs[0].IsCoinbase()
}

// ToBuf returns the canonical wire form.
func (t *Tx) ToBuf() []byte {
	w := ebxbuf.NewWriter()
	w.WriteU8(t.Version)
	w.WriteVarInt(uint64(len(t.Inputs)))
	for _, in := range t.Inputs {
		w.Write(in.ToBuf())
	}
	w.WriteVarInt(uint64(len(t.Outputs)))
	for _, out := range t.Outputs {
		w.Write(out.ToBuf())
	}
	w.WriteU64BE(t.LockAbs)
	return w.Bytes()
}

// TxFromReader decodes a transaction.
func TxFromReader(r *ebxbuf.Reader) (*Tx, error) {
	version, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	inputCount, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	inputs := make([]*TxIn, 0, inputCount)
	for i := uint64(0); i < inputCount; i++ {
		in, err := TxInFromReader(r)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	outputCount, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	outputs := make([]*TxOut, 0, outputCount)
	for i := uint64(0); i < outputCount; i++ {
		out, err := TxOutFromReader(r)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	lockAbs, err := r.ReadU64BE()
	if err != nil {
		return nil, err
	}
	return NewTx(version, inputs, outputs, lockAbs), nil
}

// TxFromBuf decodes a transaction spanning the entire buffer.
func TxFromBuf(buf []byte) (*Tx, error) {
	return TxFromReader(ebxbuf.NewReader(buf))
}

// ToHex returns the canonical hex form.
func (t *Tx) ToHex() string {
	return ebxbuf.ToHex(t.ToBuf())
}

// TxFromHex decodes the canonical hex form.
func TxFromHex(s string) (*Tx, error) {
	buf, err := ebxbuf.FromHex(s)
	if err != nil {
		return nil, err
	}
	return TxFromBuf(buf)
}

// Hash returns the single BLAKE3 of the canonical bytes.
func (t *Tx) Hash() [32]byte {
	return hash.Blake3(t.ToBuf())
}

// ID returns the double BLAKE3 of the canonical bytes.
func (t *Tx) ID() [32]byte {
	return hash.DoubleBlake3(t.ToBuf())
}

func (t *Tx) hashPrevouts() [32]byte {
	w := ebxbuf.NewWriter()
	for _, in := range t.Inputs {
		w.Write(in.InputTxID[:])
		w.WriteU32BE(in.InputTxOutNum)
	}
	return hash.DoubleBlake3(w.Bytes())
}

func (t *Tx) hashLockRel() [32]byte {
	w := ebxbuf.NewWriter()
	for _, in := range t.Inputs {
		w.WriteU32BE(in.LockRel)
	}
	return hash.DoubleBlake3(w.Bytes())
}

func (t *Tx) hashOutputs() [32]byte {
	w := ebxbuf.NewWriter()
	for _, out := range t.Outputs {
		w.Write(out.ToBuf())
	}
	return hash.DoubleBlake3(w.Bytes())
}

// SighashPreimage assembles the canonical preimage for signing input
// inputIndex against the executed script bytes, the referenced output
// value, and a hash type. Component hashes are memoized in cache.
func (t *Tx) SighashPreimage(inputIndex int, scriptBuf []byte, amount uint64, hashType byte, cache *HashCache) []byte {
	var prevoutsHash, lockRelHash, outputsHash [32]byte

	if hashType&SighashAnyoneCanPay == 0 {
		if cache.PrevoutsHash == nil {
			h := t.hashPrevouts()
			cache.PrevoutsHash = &h
		}
		prevoutsHash = *cache.PrevoutsHash
	}

	base := hashType & sighashBaseMask
	if hashType&SighashAnyoneCanPay == 0 && base != SighashSingle && base != SighashNone {
		if cache.LockRelHash == nil {
			h := t.hashLockRel()
			cache.LockRelHash = &h
		}
		lockRelHash = *cache.LockRelHash
	}

	if base != SighashSingle && base != SighashNone {
		if cache.OutputsHash == nil {
			h := t.hashOutputs()
			cache.OutputsHash = &h
		}
		outputsHash = *cache.OutputsHash
	} else if base == SighashSingle && inputIndex < len(t.Outputs) {
		outputsHash = hash.DoubleBlake3(t.Outputs[inputIndex].ToBuf())
	}

	in := t.Inputs[inputIndex]
	w := ebxbuf.NewWriter()
	w.WriteU8(t.Version)
	w.Write(prevoutsHash[:])
	w.Write(lockRelHash[:])
	w.Write(in.InputTxID[:])
	w.WriteU32BE(in.InputTxOutNum)
	w.WriteVarInt(uint64(len(scriptBuf)))
	w.Write(scriptBuf)
	w.WriteU64BE(amount)
	w.WriteU32BE(in.LockRel)
	w.Write(outputsHash[:])
	w.WriteU64BE(t.LockAbs)
	w.WriteU8(hashType)
	return w.Bytes()
}

// SighashNoCache computes the signature digest with a throwaway cache.
func (t *Tx) SighashNoCache(inputIndex int, scriptBuf []byte, amount uint64, hashType byte) [32]byte {
	return t.SighashWithCache(inputIndex, scriptBuf, amount, hashType, NewHashCache())
}

// SighashWithCache computes the signature digest, memoizing the
// component hashes in cache.
func (t *Tx) SighashWithCache(inputIndex int, scriptBuf []byte, amount uint64, hashType byte, cache *HashCache) [32]byte {
	preimage := t.SighashPreimage(inputIndex, scriptBuf, amount, hashType, cache)
	return hash.DoubleBlake3(preimage)
}

// SignInput produces the tagged signature for one input.
func (t *Tx) SignInput(inputIndex int, priv *keys.PrivKey, scriptBuf []byte, amount uint64, hashType byte, cache *HashCache) (*TxSignature, error) {
	digest := t.SighashWithCache(inputIndex, scriptBuf, amount, hashType, cache)
	sig, err := keys.Sign(digest, priv)
	if err != nil {
		return nil, err
	}
	return NewTxSignature(hashType, sig), nil
}

// VerifyInput checks a tagged signature for one input.
func (t *Tx) VerifyInput(inputIndex int, pub *keys.PubKey, sig *TxSignature, scriptBuf []byte, amount uint64, cache *HashCache) bool {
	digest := t.SighashWithCache(inputIndex, scriptBuf, amount, sig.HashType, cache)
	return keys.Verify(sig.Sig, digest, pub) == nil
}
