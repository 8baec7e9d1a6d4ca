package pow

// Work algorithm identifiers carried in header work_algo fields. A
// verifier must dispatch on these; outputs of different algorithms are
// never interchangeable.
const (
	// AlgoNull marks a header with no work attached (genesis, unmined
	// candidates).
	AlgoNull uint32 = 0

	// AlgoBlake3Matmul is the current BLAKE3 pipeline ("pow5").
	AlgoBlake3Matmul uint32 = 1

	// AlgoSha256Matmul is the legacy SHA-256 pipeline ("pow4").
	AlgoSha256Matmul uint32 = 2

	// AlgoBinaryMatmul256 and AlgoBinaryMatmul1024 are the early
	// binary-matrix hashes ("pow2"/"pow3").
	AlgoBinaryMatmul256  uint32 = 3
	AlgoBinaryMatmul1024 uint32 = 4
)

// KnownAlgo reports whether id names a supported work algorithm.
func KnownAlgo(id uint32) bool {
	switch id {
	case AlgoNull, AlgoBlake3Matmul, AlgoSha256Matmul, AlgoBinaryMatmul256, AlgoBinaryMatmul1024:
		return true
	}
	return false
}
