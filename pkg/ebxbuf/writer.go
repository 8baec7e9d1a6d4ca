package ebxbuf

import "encoding/binary"

// Writer accumulates wire-format values. All multi-byte integers are
// written big-endian.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Write appends raw bytes.
func (w *Writer) Write(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

// WriteU16BE appends a big-endian uint16.
func (w *Writer) WriteU16BE(v uint16) *Writer {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
	return w
}

// WriteU32BE appends a big-endian uint32.
func (w *Writer) WriteU32BE(v uint32) *Writer {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
	return w
}

// WriteU64BE appends a big-endian uint64.
func (w *Writer) WriteU64BE(v uint64) *Writer {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
	return w
}

// WriteVarInt appends the minimal variable-integer encoding of v.
func (w *Writer) WriteVarInt(v uint64) *Writer {
	w.buf = append(w.buf, VarIntBuf(v)...)
	return w
}

// VarIntBuf returns the minimal variable-integer encoding of v.
func VarIntBuf(v uint64) []byte {
	switch {
	case v < 0xfd:
		return []byte{byte(v)}
	case v < 0x10000:
		b := make([]byte, 3)
		b[0] = 0xfd
		binary.BigEndian.PutUint16(b[1:], uint16(v))
		return b
	case v < 0x100000000:
		b := make([]byte, 5)
		b[0] = 0xfe
		binary.BigEndian.PutUint32(b[1:], uint32(v))
		return b
	default:
		b := make([]byte, 9)
		b[0] = 0xff
		binary.BigEndian.PutUint64(b[1:], v)
		return b
	}
}
