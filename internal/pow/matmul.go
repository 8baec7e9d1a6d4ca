package pow

import (
	"gonum.org/v1/gonum/mat"

	"github.com/earthbucks/earthbucks-go/internal/hash"
)

// Matmul builds the early binary-matrix work hashes ("pow2"/"pow3"
// era): a square bit matrix expanded from iterated hashes of a seed is
// squared and the product hashed. Entries stay far below 2^53, so
// float64 matrix multiplication is exact.
type Matmul struct {
	seed [32]byte
}

// NewMatmul creates a pipeline over seed.
func NewMatmul(seed [32]byte) *Matmul {
	return &Matmul{seed: seed}
}

// createBinaryMatrix expands the seed into a size x size bit matrix.
// Each pass takes size bytes from the current hash (cycling over its 32
// bytes), most significant bit first, which fills eight matrix rows;
// the hash is re-hashed between passes.
func (m *Matmul) createBinaryMatrix(size int) *mat.Dense {
	data := make([]float64, 0, size*size)

	currentHash := hash.Blake3(m.seed[:])
	cursor := 0

outer:
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			b := currentHash[cursor%32]
			cursor++
			for bit := 7; bit >= 0; bit-- {
				data = append(data, float64((b>>bit)&1))
				if len(data) >= size*size {
					break outer
				}
			}
		}
		currentHash = hash.Blake3(currentHash[:])
		cursor = 0
	}

	return mat.NewDense(size, size, data[:size*size])
}

// createBinary256Matrix expands the seed into a 256 x 256 bit matrix,
// one hash per row, least significant bit first.
func (m *Matmul) createBinary256Matrix() *mat.Dense {
	const size = 256
	data := make([]float64, 0, size*size)

	currentHash := hash.Blake3(m.seed[:])
	for row := 0; row < size; row++ {
		for _, b := range currentHash {
			for bit := 0; bit < 8; bit++ {
				data = append(data, float64((b>>bit)&1))
			}
		}
		currentHash = hash.Blake3(currentHash[:])
	}

	return mat.NewDense(size, size, data)
}

// squareAndHash squares the matrix and hashes the product serialized as
// little-endian u16 values in row-major order.
func squareAndHash(matrix *mat.Dense) [32]byte {
	r, _ := matrix.Dims()
	var squared mat.Dense
	squared.Mul(matrix, matrix)

	buf := make([]byte, 0, r*r*2)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			v := uint16(squared.At(i, j))
			buf = append(buf, byte(v&0xff), byte(v>>8))
		}
	}
	return hash.Blake3(buf)
}

// Matmul256a hashes the squared 256-bit-row matrix (per-row hashes,
// LSB-first bits).
func (m *Matmul) Matmul256a() [32]byte {
	return squareAndHash(m.createBinary256Matrix())
}

// Matmul256b hashes the squared 256 matrix built with the cycling
// MSB-first expansion.
func (m *Matmul) Matmul256b() [32]byte {
	return squareAndHash(m.createBinaryMatrix(256))
}

// Matmul1024 hashes the squared 1024 matrix.
func (m *Matmul) Matmul1024() [32]byte {
	return squareAndHash(m.createBinaryMatrix(1024))
}
