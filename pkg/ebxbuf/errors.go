package ebxbuf

import "errors"

var (
	// ErrNotEnoughData is returned when a read runs past the end of the buffer.
	ErrNotEnoughData = errors.New("not enough data in buffer")

	// ErrNonMinimalEncoding is returned when a VarInt uses a wider form than necessary.
	ErrNonMinimalEncoding = errors.New("non-minimal varint encoding")
)
