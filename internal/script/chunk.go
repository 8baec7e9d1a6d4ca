package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

var (
	// ErrInvalidChunk is returned when a PUSHDATA immediate disagrees
	// with its declared length.
	ErrInvalidChunk = errors.New("invalid script chunk")

	// ErrNonMinimalPush is returned when a PUSHDATA opcode is wider than
	// the immediate requires.
	ErrNonMinimalPush = errors.New("non-minimal pushdata")
)

// Chunk is a single script element: an opcode, plus an immediate for the
// PUSHDATA family.
type Chunk struct {
	Opcode byte
	Buf    []byte
}

// NewChunk creates a chunk.
func NewChunk(opcode byte, buf []byte) Chunk {
	return Chunk{Opcode: opcode, Buf: buf}
}

// ChunkFromData wraps data in the smallest PUSHDATA opcode that holds it.
func ChunkFromData(data []byte) Chunk {
	if data == nil {
		data = []byte{}
	}
	switch {
	case len(data) <= 0xff:
		return Chunk{Opcode: OP_PUSHDATA1, Buf: data}
	case len(data) <= 0xffff:
		return Chunk{Opcode: OP_PUSHDATA2, Buf: data}
	default:
		return Chunk{Opcode: OP_PUSHDATA4, Buf: data}
	}
}

// ChunkFromSmallNumber encodes -1 or 1..16 as the dedicated opcode.
func ChunkFromSmallNumber(n int) Chunk {
	if n == -1 {
		return Chunk{Opcode: OP_1NEGATE}
	}
	if n >= 1 && n <= 16 {
		return Chunk{Opcode: byte(n) + OP_1 - 1}
	}
	return Chunk{Opcode: OP_0}
}

// ToBuf returns the canonical wire form.
func (c Chunk) ToBuf() []byte {
	w := ebxbuf.NewWriter()
	w.WriteU8(c.Opcode)
	if c.Buf == nil {
		return w.Bytes()
	}
	switch c.Opcode {
	case OP_PUSHDATA1:
		w.WriteU8(uint8(len(c.Buf)))
	case OP_PUSHDATA2:
		w.WriteU16BE(uint16(len(c.Buf)))
	case OP_PUSHDATA4:
		w.WriteU32BE(uint32(len(c.Buf)))
	}
	w.Write(c.Buf)
	return w.Bytes()
}

// ChunkFromReader decodes the next chunk. Non-minimal PUSHDATA widths are
// rejected unless allowNonMinimal is set.
func ChunkFromReader(r *ebxbuf.Reader, allowNonMinimal bool) (Chunk, error) {
	opcode, err := r.ReadU8()
	if err != nil {
		return Chunk{}, err
	}
	chunk := Chunk{Opcode: opcode}
	var length int
	switch opcode {
	case OP_PUSHDATA1:
		n, err := r.ReadU8()
		if err != nil {
			return Chunk{}, ErrInvalidChunk
		}
		length = int(n)
	case OP_PUSHDATA2:
		n, err := r.ReadU16BE()
		if err != nil {
			return Chunk{}, ErrInvalidChunk
		}
		length = int(n)
	case OP_PUSHDATA4:
		n, err := r.ReadU32BE()
		if err != nil {
			return Chunk{}, ErrInvalidChunk
		}
		length = int(n)
	default:
		return chunk, nil
	}
	buf, err := r.Read(length)
	if err != nil {
		return Chunk{}, ErrInvalidChunk
	}
	if !allowNonMinimal &&
		((opcode == OP_PUSHDATA2 && length <= 0xff) || (opcode == OP_PUSHDATA4 && length <= 0xffff)) {
		return Chunk{}, ErrNonMinimalPush
	}
	chunk.Buf = buf
	return chunk, nil
}

// ChunkFromBuf decodes a chunk that must span the entire buffer.
func ChunkFromBuf(buf []byte) (Chunk, error) {
	r := ebxbuf.NewReader(buf)
	chunk, err := ChunkFromReader(r, false)
	if err != nil {
		return Chunk{}, err
	}
	if !r.EOF() {
		return Chunk{}, ErrInvalidChunk
	}
	return chunk, nil
}

// String renders a data chunk as 0x<hex> and a bare opcode by name.
func (c Chunk) String() string {
	if c.Buf != nil {
		return "0x" + ebxbuf.ToHex(c.Buf)
	}
	if name, ok := OpcodeToName[c.Opcode]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%#02x)", c.Opcode)
}

// ChunkFromString parses the String form.
func ChunkFromString(s string) (Chunk, error) {
	if strings.HasPrefix(s, "0x") {
		data, err := ebxbuf.FromHex(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return Chunk{}, fmt.Errorf("invalid chunk data: %w", err)
		}
		return ChunkFromData(data), nil
	}
	opcode, ok := NameToOpcode[s]
	if !ok {
		return Chunk{}, fmt.Errorf("invalid opcode name %q", s)
	}
	return Chunk{Opcode: opcode}, nil
}

// IsPush reports whether the chunk only pushes a value.
func (c Chunk) IsPush() bool {
	switch {
	case c.Opcode == OP_0:
		return true
	case c.Opcode == OP_PUSHDATA1 || c.Opcode == OP_PUSHDATA2 || c.Opcode == OP_PUSHDATA4:
		return true
	case c.Opcode == OP_1NEGATE:
		return true
	case c.Opcode >= OP_1 && c.Opcode <= OP_16:
		return true
	}
	return false
}

// PushValue returns the stack value a push chunk produces.
func (c Chunk) PushValue() []byte {
	switch {
	case c.Opcode == OP_0:
		return []byte{}
	case c.Opcode == OP_1NEGATE:
		return NewScriptNum(-1).ToBuf()
	case c.Opcode >= OP_1 && c.Opcode <= OP_16:
		return NewScriptNum(int64(c.Opcode - OP_1 + 1)).ToBuf()
	default:
		if c.Buf == nil {
			return []byte{}
		}
		return c.Buf
	}
}
