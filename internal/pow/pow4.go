package pow

import (
	"encoding/binary"

	"github.com/earthbucks/earthbucks-go/internal/hash"
)

// WorkSha256 is the legacy SHA-256 variant of the pipeline ("pow4").
// It exists only to verify historical headers mined under the SHA-256
// work algorithm.
func WorkSha256(header []byte) ([32]byte, error) {
	if len(header) != MiningHeaderSize {
		return [32]byte{}, ErrBadMiningHeaderSize
	}

	matrixARow1 := hash.Sha256(header)

	workingColumn := matrixARow1
	var matrixCRow1 [32]uint32
	for i := 0; i < 32; i++ {
		workingColumn = hash.Sha256(workingColumn[:])
		for j := 0; j < 32; j++ {
			matrixCRow1[i] += uint32(matrixARow1[j]) * uint32(workingColumn[j])
		}
	}

	var preHash [32 * 4]byte
	for i, x := range matrixCRow1 {
		binary.BigEndian.PutUint32(preHash[i*4:], x)
	}
	return hash.Sha256(preHash[:]), nil
}
