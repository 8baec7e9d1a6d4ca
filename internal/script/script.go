package script

import (
	"strings"

	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

// Relative-lock windows for the locked spend templates, in blocks.
const (
	LockRel1H  = 6
	LockRel40M = 4
	LockRel90D = 12960
	LockRel60D = 8640
)

// Script is an ordered sequence of chunks.
type Script struct {
	Chunks []Chunk
}

// NewScript wraps chunks in a script.
func NewScript(chunks ...Chunk) *Script {
	return &Script{Chunks: chunks}
}

// Empty returns a script with no chunks.
func Empty() *Script {
	return &Script{}
}

// ToBuf returns the canonical wire form: the concatenated chunk forms.
func (s *Script) ToBuf() []byte {
	w := ebxbuf.NewWriter()
	for _, c := range s.Chunks {
		w.Write(c.ToBuf())
	}
	return w.Bytes()
}

// FromBuf decodes a script spanning the entire buffer.
func FromBuf(buf []byte) (*Script, error) {
	return fromBuf(buf, false)
}

// FromBufAllowNonMinimal decodes while tolerating non-minimal PUSHDATA
// widths. Only for legacy data; the canonical path rejects them.
func FromBufAllowNonMinimal(buf []byte) (*Script, error) {
	return fromBuf(buf, true)
}

func fromBuf(buf []byte, allowNonMinimal bool) (*Script, error) {
	r := ebxbuf.NewReader(buf)
	s := Empty()
	for !r.EOF() {
		chunk, err := ChunkFromReader(r, allowNonMinimal)
		if err != nil {
			return nil, err
		}
		s.Chunks = append(s.Chunks, chunk)
	}
	return s, nil
}

// String renders the chunks space-separated.
func (s *Script) String() string {
	parts := make([]string, len(s.Chunks))
	for i, c := range s.Chunks {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// FromString parses the String form.
func FromString(str string) (*Script, error) {
	s := Empty()
	if str == "" {
		return s, nil
	}
	for _, part := range strings.Fields(str) {
		chunk, err := ChunkFromString(part)
		if err != nil {
			return nil, err
		}
		s.Chunks = append(s.Chunks, chunk)
	}
	return s, nil
}

// IsPushOnly reports whether every chunk only pushes a value.
func (s *Script) IsPushOnly() bool {
	for _, c := range s.Chunks {
		if !c.IsPush() {
			return false
		}
	}
	return true
}

// lockRelChunk pushes a relative-lock value: small-number opcodes for
// 1..16, a ScriptNum data push otherwise.
func lockRelChunk(v int64) Chunk {
	if v >= 1 && v <= 16 {
		return ChunkFromSmallNumber(int(v))
	}
	return ChunkFromData(NewScriptNum(v).ToBuf())
}

// chunkPushesNum reports whether c pushes exactly the numeric value v.
func chunkPushesNum(c Chunk, v int64) bool {
	if !c.IsPush() {
		return false
	}
	n := ScriptNumFromBuf(c.PushValue())
	return n.Num.IsInt64() && n.Num.Int64() == v
}

func isData(c Chunk, size int) bool {
	return (c.Opcode == OP_PUSHDATA1 || c.Opcode == OP_PUSHDATA2 || c.Opcode == OP_PUSHDATA4) &&
		c.Buf != nil && len(c.Buf) == size
}

// FromPkhOutput builds the standard pay-to-hash output script:
// DUP DOUBLEBLAKE3 <pkh> EQUALVERIFY CHECKSIG.
func FromPkhOutput(pkh [32]byte) *Script {
	return NewScript(
		NewChunk(OP_DUP, nil),
		NewChunk(OP_DOUBLEBLAKE3, nil),
		ChunkFromData(pkh[:]),
		NewChunk(OP_EQUALVERIFY, nil),
		NewChunk(OP_CHECKSIG, nil),
	)
}

// IsPkhOutput matches FromPkhOutput.
func (s *Script) IsPkhOutput() bool {
	return len(s.Chunks) == 5 &&
		s.Chunks[0].Opcode == OP_DUP &&
		s.Chunks[1].Opcode == OP_DOUBLEBLAKE3 &&
		isData(s.Chunks[2], 32) &&
		s.Chunks[3].Opcode == OP_EQUALVERIFY &&
		s.Chunks[4].Opcode == OP_CHECKSIG
}

// FromPkhInput builds the matching input script: <sig65> <pub33>.
func FromPkhInput(sig []byte, pubKey []byte) *Script {
	return NewScript(ChunkFromData(sig), ChunkFromData(pubKey))
}

// FromPkhInputPlaceholder builds an input script with zeroed slots sized
// for a real signature and public key.
func FromPkhInputPlaceholder() *Script {
	return FromPkhInput(make([]byte, 65), make([]byte, 33))
}

// IsPkhInput matches FromPkhInput.
func (s *Script) IsPkhInput() bool {
	return len(s.Chunks) == 2 &&
		isData(s.Chunks[0], 65) &&
		isData(s.Chunks[1], 33)
}

// FromMultiSigOutput builds an m-of-n multisig output script:
// <m> <pub1> ... <pubn> <n> CHECKMULTISIG.
func FromMultiSigOutput(m int, pubKeys [][]byte) *Script {
	s := NewScript(ChunkFromSmallNumber(m))
	for _, pub := range pubKeys {
		s.Chunks = append(s.Chunks, ChunkFromData(pub))
	}
	s.Chunks = append(s.Chunks,
		ChunkFromSmallNumber(len(pubKeys)),
		NewChunk(OP_CHECKMULTISIG, nil),
	)
	return s
}

// IsMultiSigOutput matches FromMultiSigOutput.
func (s *Script) IsMultiSigOutput() bool {
	if len(s.Chunks) < 4 {
		return false
	}
	last := s.Chunks[len(s.Chunks)-1]
	if last.Opcode != OP_CHECKMULTISIG {
		return false
	}
	mc := s.Chunks[0]
	nc := s.Chunks[len(s.Chunks)-2]
	if mc.Opcode < OP_1 || mc.Opcode > OP_16 || nc.Opcode < OP_1 || nc.Opcode > OP_16 {
		return false
	}
	n := int(nc.Opcode - OP_1 + 1)
	m := int(mc.Opcode - OP_1 + 1)
	if m > n || len(s.Chunks) != n+3 {
		return false
	}
	for _, c := range s.Chunks[1 : 1+n] {
		if !isData(c, 33) {
			return false
		}
	}
	return true
}

// FromMultiSigInput builds the matching input script: the signatures in
// output-key order.
func FromMultiSigInput(sigs [][]byte) *Script {
	s := Empty()
	for _, sig := range sigs {
		s.Chunks = append(s.Chunks, ChunkFromData(sig))
	}
	return s
}

// FromPkhx1hOutput builds pay-to-hash with a 1-hour expiry: before
// expiry only the key holder can spend; after it anyone can.
func FromPkhx1hOutput(pkh [32]byte) *Script {
	return fromPkhxOutput(pkh, LockRel1H)
}

// FromPkhx90dOutput builds pay-to-hash with a 90-day expiry.
func FromPkhx90dOutput(pkh [32]byte) *Script {
	return fromPkhxOutput(pkh, LockRel90D)
}

func fromPkhxOutput(pkh [32]byte, xLockRel int64) *Script {
	return NewScript(
		NewChunk(OP_IF, nil),
		NewChunk(OP_DUP, nil),
		NewChunk(OP_DOUBLEBLAKE3, nil),
		ChunkFromData(pkh[:]),
		NewChunk(OP_EQUALVERIFY, nil),
		NewChunk(OP_CHECKSIG, nil),
		NewChunk(OP_ELSE, nil),
		lockRelChunk(xLockRel),
		NewChunk(OP_CHECKLOCKRELVERIFY, nil),
		NewChunk(OP_DROP, nil),
		NewChunk(OP_1, nil),
		NewChunk(OP_ENDIF, nil),
	)
}

func (s *Script) isPkhxOutput(xLockRel int64) bool {
	return len(s.Chunks) == 12 &&
		s.Chunks[0].Opcode == OP_IF &&
		s.Chunks[1].Opcode == OP_DUP &&
		s.Chunks[2].Opcode == OP_DOUBLEBLAKE3 &&
		isData(s.Chunks[3], 32) &&
		s.Chunks[4].Opcode == OP_EQUALVERIFY &&
		s.Chunks[5].Opcode == OP_CHECKSIG &&
		s.Chunks[6].Opcode == OP_ELSE &&
		chunkPushesNum(s.Chunks[7], xLockRel) &&
		s.Chunks[8].Opcode == OP_CHECKLOCKRELVERIFY &&
		s.Chunks[9].Opcode == OP_DROP &&
		s.Chunks[10].Opcode == OP_1 &&
		s.Chunks[11].Opcode == OP_ENDIF
}

// IsPkhx1hOutput matches FromPkhx1hOutput.
func (s *Script) IsPkhx1hOutput() bool { return s.isPkhxOutput(LockRel1H) }

// IsPkhx90dOutput matches FromPkhx90dOutput.
func (s *Script) IsPkhx90dOutput() bool { return s.isPkhxOutput(LockRel90D) }

// FromUnexpiredPkhxInput spends an unexpired pkhx output with the
// primary key: <sig> <pub> 1.
func FromUnexpiredPkhxInput(sig []byte, pubKey []byte) *Script {
	return NewScript(ChunkFromData(sig), ChunkFromData(pubKey), NewChunk(OP_1, nil))
}

// FromUnexpiredPkhxInputPlaceholder is FromUnexpiredPkhxInput with
// zeroed slots.
func FromUnexpiredPkhxInputPlaceholder() *Script {
	return FromUnexpiredPkhxInput(make([]byte, 65), make([]byte, 33))
}

// IsUnexpiredPkhxInput matches FromUnexpiredPkhxInput.
func (s *Script) IsUnexpiredPkhxInput() bool {
	return len(s.Chunks) == 3 &&
		isData(s.Chunks[0], 65) &&
		isData(s.Chunks[1], 33) &&
		s.Chunks[2].Opcode == OP_1
}

// FromExpiredPkhxInput spends an expired pkhx output: 0. No signature
// is required.
func FromExpiredPkhxInput() *Script {
	return NewScript(NewChunk(OP_0, nil))
}

// IsExpiredPkhxInput matches FromExpiredPkhxInput.
func (s *Script) IsExpiredPkhxInput() bool {
	return len(s.Chunks) == 1 && s.Chunks[0].Opcode == OP_0
}

// FromPkhxr1h40mOutput builds pay-to-hash with 1-hour expiry and a
// 40-minute recovery window for a second key.
func FromPkhxr1h40mOutput(pkh, rpkh [32]byte) *Script {
	return fromPkhxrOutput(pkh, rpkh, LockRel40M, LockRel1H)
}

// FromPkhxr90d60dOutput builds pay-to-hash with 90-day expiry and a
// 60-day recovery window.
func FromPkhxr90d60dOutput(pkh, rpkh [32]byte) *Script {
	return fromPkhxrOutput(pkh, rpkh, LockRel60D, LockRel90D)
}

func fromPkhxrOutput(pkh, rpkh [32]byte, rLockRel, xLockRel int64) *Script {
	return NewScript(
		NewChunk(OP_IF, nil),
		NewChunk(OP_DUP, nil),
		NewChunk(OP_DOUBLEBLAKE3, nil),
		ChunkFromData(pkh[:]),
		NewChunk(OP_EQUALVERIFY, nil),
		NewChunk(OP_CHECKSIG, nil),
		NewChunk(OP_ELSE, nil),
		NewChunk(OP_IF, nil),
		lockRelChunk(rLockRel),
		NewChunk(OP_CHECKLOCKRELVERIFY, nil),
		NewChunk(OP_DROP, nil),
		NewChunk(OP_DUP, nil),
		NewChunk(OP_DOUBLEBLAKE3, nil),
		ChunkFromData(rpkh[:]),
		NewChunk(OP_EQUALVERIFY, nil),
		NewChunk(OP_CHECKSIG, nil),
		NewChunk(OP_ELSE, nil),
		lockRelChunk(xLockRel),
		NewChunk(OP_CHECKLOCKRELVERIFY, nil),
		NewChunk(OP_DROP, nil),
		NewChunk(OP_1, nil),
		NewChunk(OP_ENDIF, nil),
		NewChunk(OP_ENDIF, nil),
	)
}

func (s *Script) isPkhxrOutput(rLockRel, xLockRel int64) bool {
	return len(s.Chunks) == 23 &&
		s.Chunks[0].Opcode == OP_IF &&
		s.Chunks[1].Opcode == OP_DUP &&
		s.Chunks[2].Opcode == OP_DOUBLEBLAKE3 &&
		isData(s.Chunks[3], 32) &&
		s.Chunks[4].Opcode == OP_EQUALVERIFY &&
		s.Chunks[5].Opcode == OP_CHECKSIG &&
		s.Chunks[6].Opcode == OP_ELSE &&
		s.Chunks[7].Opcode == OP_IF &&
		chunkPushesNum(s.Chunks[8], rLockRel) &&
		s.Chunks[9].Opcode == OP_CHECKLOCKRELVERIFY &&
		s.Chunks[10].Opcode == OP_DROP &&
		s.Chunks[11].Opcode == OP_DUP &&
		s.Chunks[12].Opcode == OP_DOUBLEBLAKE3 &&
		isData(s.Chunks[13], 32) &&
		s.Chunks[14].Opcode == OP_EQUALVERIFY &&
		s.Chunks[15].Opcode == OP_CHECKSIG &&
		s.Chunks[16].Opcode == OP_ELSE &&
		chunkPushesNum(s.Chunks[17], xLockRel) &&
		s.Chunks[18].Opcode == OP_CHECKLOCKRELVERIFY &&
		s.Chunks[19].Opcode == OP_DROP &&
		s.Chunks[20].Opcode == OP_1 &&
		s.Chunks[21].Opcode == OP_ENDIF &&
		s.Chunks[22].Opcode == OP_ENDIF
}

// IsPkhxr1h40mOutput matches FromPkhxr1h40mOutput.
func (s *Script) IsPkhxr1h40mOutput() bool { return s.isPkhxrOutput(LockRel40M, LockRel1H) }

// IsPkhxr90d60dOutput matches FromPkhxr90d60dOutput.
func (s *Script) IsPkhxr90d60dOutput() bool { return s.isPkhxrOutput(LockRel60D, LockRel90D) }

// FromUnexpiredPkhxrInput spends an unexpired pkhxr output with the
// primary key: <sig> <pub> 1.
func FromUnexpiredPkhxrInput(sig []byte, pubKey []byte) *Script {
	return NewScript(ChunkFromData(sig), ChunkFromData(pubKey), NewChunk(OP_1, nil))
}

// FromUnexpiredPkhxrInputPlaceholder is FromUnexpiredPkhxrInput with
// zeroed slots.
func FromUnexpiredPkhxrInputPlaceholder() *Script {
	return FromUnexpiredPkhxrInput(make([]byte, 65), make([]byte, 33))
}

// IsUnexpiredPkhxrInput matches FromUnexpiredPkhxrInput.
func (s *Script) IsUnexpiredPkhxrInput() bool {
	return len(s.Chunks) == 3 &&
		isData(s.Chunks[0], 65) &&
		isData(s.Chunks[1], 33) &&
		s.Chunks[2].Opcode == OP_1
}

// FromRecoveryPkhxrInput spends a pkhxr output within its recovery
// window using the recovery key: <sig> <pub> 1 0.
func FromRecoveryPkhxrInput(sig []byte, pubKey []byte) *Script {
	return NewScript(
		ChunkFromData(sig),
		ChunkFromData(pubKey),
		NewChunk(OP_1, nil),
		NewChunk(OP_0, nil),
	)
}

// FromRecoveryPkhxrInputPlaceholder is FromRecoveryPkhxrInput with
// zeroed slots.
func FromRecoveryPkhxrInputPlaceholder() *Script {
	return FromRecoveryPkhxrInput(make([]byte, 65), make([]byte, 33))
}

// IsRecoveryPkhxrInput matches FromRecoveryPkhxrInput.
func (s *Script) IsRecoveryPkhxrInput() bool {
	return len(s.Chunks) == 4 &&
		isData(s.Chunks[0], 65) &&
		isData(s.Chunks[1], 33) &&
		s.Chunks[2].Opcode == OP_1 &&
		s.Chunks[3].Opcode == OP_0
}

// FromExpiredPkhxrInput spends an expired pkhxr output: 0 0.
func FromExpiredPkhxrInput() *Script {
	return NewScript(NewChunk(OP_0, nil), NewChunk(OP_0, nil))
}

// IsExpiredPkhxrInput matches FromExpiredPkhxrInput.
func (s *Script) IsExpiredPkhxrInput() bool {
	return len(s.Chunks) == 2 &&
		s.Chunks[0].Opcode == OP_0 &&
		s.Chunks[1].Opcode == OP_0
}

// IsPkhx1hExpired reports whether a pkhx 1h output funded at
// prevBlockNum is spendable by anyone at workingBlockNum.
func IsPkhx1hExpired(workingBlockNum, prevBlockNum uint64) bool {
	return workingBlockNum >= prevBlockNum+LockRel1H
}

// IsPkhx90dExpired reports expiry for the 90-day variant.
func IsPkhx90dExpired(workingBlockNum, prevBlockNum uint64) bool {
	return workingBlockNum >= prevBlockNum+LockRel90D
}

// IsPkhxr1h40mExpired reports expiry for the 1h+40m variant.
func IsPkhxr1h40mExpired(workingBlockNum, prevBlockNum uint64) bool {
	return workingBlockNum >= prevBlockNum+LockRel1H
}

// IsPkhxr1h40mRecoverable reports whether the recovery key may spend.
func IsPkhxr1h40mRecoverable(workingBlockNum, prevBlockNum uint64) bool {
	return workingBlockNum >= prevBlockNum+LockRel40M
}

// IsPkhxr90d60dExpired reports expiry for the 90d+60d variant.
func IsPkhxr90d60dExpired(workingBlockNum, prevBlockNum uint64) bool {
	return workingBlockNum >= prevBlockNum+LockRel90D
}

// IsPkhxr90d60dRecoverable reports whether the recovery key may spend.
func IsPkhxr90d60dRecoverable(workingBlockNum, prevBlockNum uint64) bool {
	return workingBlockNum >= prevBlockNum+LockRel60D
}

// FromCoinbaseInput builds the distinguished coinbase input script,
// carrying the producing domain and the block number.
func FromCoinbaseInput(domain string, blockNum uint64) *Script {
	return NewScript(
		ChunkFromData([]byte(domain)),
		ChunkFromData(NewScriptNum(int64(blockNum)).ToBuf()),
	)
}
