// Package chain holds the block header, the in-memory header chain, the
// block container, and block verification.
package chain

import (
	"errors"
	"math/big"

	"github.com/earthbucks/earthbucks-go/internal/hash"
	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

// Consensus constants.
const (
	// BlocksPerTargetAdj is the retarget window: two weeks of blocks at
	// the intended interval.
	BlocksPerTargetAdj = 2016

	// BlockInterval is the intended seconds between blocks.
	BlockInterval = 600

	// HeaderSize is the exact wire length of a header.
	HeaderSize = 220

	// CoinbaseHalvingInterval is the block count between subsidy halvings.
	CoinbaseHalvingInterval = 210_000
)

// InitialTarget is the easiest possible target.
var InitialTarget = func() [32]byte {
	var t [32]byte
	for i := range t {
		t[i] = 0xff
	}
	return t
}()

// Header errors.
var (
	ErrInvalidHeaderSize      = errors.New("invalid header size")
	ErrTimestampNotIncreasing = errors.New("timestamps must be increasing")
)

// Header is the fixed 220-byte block header.
type Header struct {
	Version     uint32
	PrevBlockID [32]byte
	MerkleRoot  [32]byte
	Timestamp   uint64
	BlockNum    uint64
	Target      [32]byte
	Nonce       [32]byte
	WorkSerAlgo uint32
	WorkSerHash [32]byte
	WorkParAlgo uint32
	WorkParHash [32]byte
}

// ToBuf returns the canonical 220-byte wire form.
func (h *Header) ToBuf() []byte {
	w := ebxbuf.NewWriter()
	w.WriteU32BE(h.Version)
	w.Write(h.PrevBlockID[:])
	w.Write(h.MerkleRoot[:])
	w.WriteU64BE(h.Timestamp)
	w.WriteU64BE(h.BlockNum)
	w.Write(h.Target[:])
	w.Write(h.Nonce[:])
	w.WriteU32BE(h.WorkSerAlgo)
	w.Write(h.WorkSerHash[:])
	w.WriteU32BE(h.WorkParAlgo)
	w.Write(h.WorkParHash[:])
	return w.Bytes()
}

// HeaderFromBuf decodes a header that must be exactly 220 bytes.
func HeaderFromBuf(buf []byte) (*Header, error) {
	if len(buf) != HeaderSize {
		return nil, ErrInvalidHeaderSize
	}
	return HeaderFromReader(ebxbuf.NewReader(buf))
}

// HeaderFromReader decodes a header from a reader.
func HeaderFromReader(r *ebxbuf.Reader) (*Header, error) {
	if r.Remaining() < HeaderSize {
		return nil, ErrInvalidHeaderSize
	}
	h := &Header{}
	var err error
	if h.Version, err = r.ReadU32BE(); err != nil {
		return nil, err
	}
	if h.PrevBlockID, err = r.ReadFixed32(); err != nil {
		return nil, err
	}
	if h.MerkleRoot, err = r.ReadFixed32(); err != nil {
		return nil, err
	}
	if h.Timestamp, err = r.ReadU64BE(); err != nil {
		return nil, err
	}
	if h.BlockNum, err = r.ReadU64BE(); err != nil {
		return nil, err
	}
	if h.Target, err = r.ReadFixed32(); err != nil {
		return nil, err
	}
	if h.Nonce, err = r.ReadFixed32(); err != nil {
		return nil, err
	}
	if h.WorkSerAlgo, err = r.ReadU32BE(); err != nil {
		return nil, err
	}
	if h.WorkSerHash, err = r.ReadFixed32(); err != nil {
		return nil, err
	}
	if h.WorkParAlgo, err = r.ReadU32BE(); err != nil {
		return nil, err
	}
	if h.WorkParHash, err = r.ReadFixed32(); err != nil {
		return nil, err
	}
	return h, nil
}

// ToHex returns the canonical hex form.
func (h *Header) ToHex() string {
	return ebxbuf.ToHex(h.ToBuf())
}

// HeaderFromHex decodes the canonical hex form.
func HeaderFromHex(s string) (*Header, error) {
	buf, err := ebxbuf.FromHex(s)
	if err != nil {
		return nil, err
	}
	return HeaderFromBuf(buf)
}

// Hash returns the single BLAKE3 of the canonical bytes.
func (h *Header) Hash() [32]byte {
	return hash.Blake3(h.ToBuf())
}

// ID returns the double BLAKE3 of the canonical bytes.
func (h *Header) ID() [32]byte {
	return hash.DoubleBlake3(h.ToBuf())
}

// IsValidVersion reports whether version is a known header version.
func IsValidVersion(version uint32) bool {
	return version == 1
}

// IsValidInIsolation checks the context-free constraints: exact size and
// known version.
func (h *Header) IsValidInIsolation() bool {
	return len(h.ToBuf()) == HeaderSize && IsValidVersion(h.Version)
}

// IsGenesis reports whether the header is the chain's first.
func (h *Header) IsGenesis() bool {
	return h.BlockNum == 0 && h.PrevBlockID == [32]byte{}
}

// FromGenesis builds the genesis header at the given time.
func FromGenesis(now uint64) *Header {
	return &Header{
		Version:   1,
		Timestamp: now,
		Target:    InitialTarget,
	}
}

// IsValidPow reports whether the header id, as a 256-bit big-endian
// integer, is strictly below the header's target.
func (h *Header) IsValidPow() bool {
	id := h.ID()
	idNum := new(big.Int).SetBytes(id[:])
	target := new(big.Int).SetBytes(h.Target[:])
	return idNum.Cmp(target) < 0
}

// IsValidTarget reports whether the header's target equals the target
// recomputed over the chain prefix at the header's timestamp.
func (h *Header) IsValidTarget(lch []*Header) bool {
	newTarget, err := NewTargetFromChain(lch, h.Timestamp)
	if err != nil {
		return false
	}
	return h.Target == newTarget
}

// IsValidAtTimestamp rejects headers from the future.
func (h *Header) IsValidAtTimestamp(now uint64) bool {
	return h.Timestamp <= now
}

// IsValidInChain checks that the header extends lch: correct block
// number, previous id, increasing timestamp, recomputed target, and
// proof of work. Genesis headers are accepted on an empty chain.
func (h *Header) IsValidInChain(lch []*Header) bool {
	if !h.IsValidInIsolation() {
		return false
	}
	if h.BlockNum == 0 {
		// Genesis only extends an empty chain; a replayed genesis must
		// not displace an established one.
		return h.IsGenesis() && len(lch) == 0
	}
	if len(lch) == 0 {
		return false
	}
	last := lch[len(lch)-1]
	if h.BlockNum != uint64(len(lch)) {
		return false
	}
	if h.PrevBlockID != last.ID() {
		return false
	}
	if h.Timestamp <= last.Timestamp {
		return false
	}
	if !h.IsValidTarget(lch) {
		return false
	}
	return h.IsValidPow()
}

// IsValidAt combines the chain check with the clock check.
func (h *Header) IsValidAt(lch []*Header, now uint64) bool {
	return h.IsValidInChain(lch) && h.IsValidAtTimestamp(now)
}

// FromChain builds the next unmined header on top of lch: zero nonce
// and work hashes, work algorithms inherited from the tip, and the
// retargeted difficulty for newTimestamp.
func FromChain(lch []*Header, newTimestamp uint64) (*Header, error) {
	if len(lch) == 0 {
		return FromGenesis(newTimestamp), nil
	}
	newTarget, err := NewTargetFromChain(lch, newTimestamp)
	if err != nil {
		return nil, err
	}
	prev := lch[len(lch)-1]
	return &Header{
		Version:     1,
		PrevBlockID: prev.ID(),
		Timestamp:   newTimestamp,
		BlockNum:    uint64(len(lch)),
		Target:      newTarget,
		WorkSerAlgo: prev.WorkSerAlgo,
		WorkParAlgo: prev.WorkParAlgo,
	}, nil
}

// NewTargetFromChain recomputes the target over the trailing adjustment
// window of lch for a block at newTimestamp.
func NewTargetFromChain(lch []*Header, newTimestamp uint64) ([32]byte, error) {
	window := lch
	if len(window) > BlocksPerTargetAdj {
		window = window[len(window)-BlocksPerTargetAdj:]
	}
	if len(window) == 0 {
		return InitialTarget, nil
	}

	first := window[0]
	if newTimestamp <= first.Timestamp {
		return [32]byte{}, ErrTimestampNotIncreasing
	}

	targetSum := new(big.Int)
	for _, h := range window {
		targetSum.Add(targetSum, new(big.Int).SetBytes(h.Target[:]))
	}
	realTimeDiff := new(big.Int).SetUint64(newTimestamp - first.Timestamp)

	newTarget := NewTargetFromOldTargets(targetSum, realTimeDiff, len(window))

	bytes := newTarget.Bytes()
	if len(bytes) > 32 {
		return InitialTarget, nil
	}
	var out [32]byte
	copy(out[32-len(bytes):], bytes)
	return out, nil
}

// NewTargetFromOldTargets computes
// (targetSum * realTimeDiff) / (n * n * BlockInterval): the average
// window target scaled by observed over intended elapsed time. A single
// combined division keeps the integer arithmetic as accurate as
// possible.
func NewTargetFromOldTargets(targetSum, realTimeDiff *big.Int, n int) *big.Int {
	intendedTimeDiff := new(big.Int).SetUint64(uint64(n) * BlockInterval)
	divisor := new(big.Int).Mul(big.NewInt(int64(n)), intendedTimeDiff)
	out := new(big.Int).Mul(targetSum, realTimeDiff)
	return out.Div(out, divisor)
}

// CoinbaseAmount returns the block subsidy at blockNum: 100 EBX in
// base units, halving every CoinbaseHalvingInterval blocks.
func CoinbaseAmount(blockNum uint64) uint64 {
	shiftBy := blockNum / CoinbaseHalvingInterval
	if shiftBy >= 64 {
		return 0
	}
	return (100 * 100_000_000) >> shiftBy
}
