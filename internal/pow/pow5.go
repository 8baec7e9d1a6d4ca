// Package pow implements the proof-of-work pipelines. The current
// family ("pow5") hashes a mining header buffer into the first row of a
// matrix product and folds it back into the header; verification costs
// a handful of BLAKE3 calls while mining parallelizes across nonces.
//
// The pipelines operate on the compact 217-byte mining buffer the GPU
// kernels consume, which predates the 220-byte header wire form; the
// mining buffer keeps the nonce at a fixed offset so kernels can sweep
// it in place.
package pow

import (
	"encoding/binary"
	"errors"

	"github.com/earthbucks/earthbucks-go/internal/hash"
)

// Mining buffer layout.
const (
	MiningHeaderSize = 217
	NonceStart       = 117
	NonceEnd         = 121
	workParStart     = 185
	workParEnd       = 217
)

// ErrBadMiningHeaderSize is returned when a buffer is not exactly the
// mining header size.
var ErrBadMiningHeaderSize = errors.New("mining header is not the correct size")

// WorkPar computes the parallel work hash of a mining header:
//
//  1. row1 = BLAKE3(header), the first row of matrix A.
//  2. 32 working columns derived by iterated BLAKE3 of row1.
//  3. C[i] = sum over j of row1[j] * column_i[j], bytes as unsigned
//     values in a u32 accumulator.
//  4. work_par = BLAKE3 of C serialized big-endian.
func WorkPar(header []byte) ([32]byte, error) {
	if len(header) != MiningHeaderSize {
		return [32]byte{}, ErrBadMiningHeaderSize
	}

	matrixARow1 := hash.Blake3(header)

	workingColumn := matrixARow1
	var matrixCRow1 [32]uint32
	for i := 0; i < 32; i++ {
		workingColumn = hash.Blake3(workingColumn[:])
		for j := 0; j < 32; j++ {
			matrixCRow1[i] += uint32(matrixARow1[j]) * uint32(workingColumn[j])
		}
	}

	var preHash [32 * 4]byte
	for i, x := range matrixCRow1 {
		binary.BigEndian.PutUint32(preHash[i*4:], x)
	}
	return hash.Blake3(preHash[:]), nil
}

// ElementaryIteration performs one full mining attempt: compute the
// parallel work, splice it into the work-hash slot, and return the
// doubled hash that is compared against the target.
func ElementaryIteration(header []byte) ([32]byte, error) {
	workPar, err := WorkPar(header)
	if err != nil {
		return [32]byte{}, err
	}

	working := make([]byte, MiningHeaderSize)
	copy(working, header)
	copy(working[workParStart:workParEnd], workPar[:])

	return hash.DoubleBlake3(working), nil
}

// InsertNonce writes a big-endian nonce into the mining buffer's nonce
// slot, returning a new buffer.
func InsertNonce(header []byte, nonce uint32) ([]byte, error) {
	if len(header) != MiningHeaderSize {
		return nil, ErrBadMiningHeaderSize
	}
	out := make([]byte, MiningHeaderSize)
	copy(out, header)
	binary.BigEndian.PutUint32(out[NonceStart:NonceEnd], nonce)
	return out, nil
}
