// Package merkle builds the proof tree over already-hashed 32-byte
// leaves. Leaf lists that are not a power of two are padded by
// repeating the last leaf.
package merkle

import (
	"errors"

	"github.com/earthbucks/earthbucks-go/internal/hash"
	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

var errEmptyLeaves = errors.New("cannot build merkle tree from no leaves")

// ProofStep is one level of a proof path: the sibling digest and which
// side of the running hash it sits on.
type ProofStep struct {
	Sibling     [32]byte
	SiblingLeft bool
}

// Proof carries the root and the sibling path for one leaf, ordered
// from the root end down to the leaf end.
type Proof struct {
	Root [32]byte
	Path []ProofStep
}

// NewProof creates a proof.
func NewProof(root [32]byte, path []ProofStep) *Proof {
	return &Proof{Root: root, Path: path}
}

// Verify recomputes the root from a leaf and reports whether it matches.
func (p *Proof) Verify(leaf [32]byte) bool {
	h := leaf
	for i := len(p.Path) - 1; i >= 0; i-- {
		step := p.Path[i]
		var combined [64]byte
		if step.SiblingLeft {
			copy(combined[:32], step.Sibling[:])
			copy(combined[32:], h[:])
		} else {
			copy(combined[:32], h[:])
			copy(combined[32:], step.Sibling[:])
		}
		h = hash.DoubleBlake3(combined[:])
	}
	return h == p.Root
}

// PositionInTree recovers the leaf index: each left-sibling step means
// the leaf sits in the right half at that level, most significant at
// the root end.
func (p *Proof) PositionInTree() uint64 {
	var position uint64
	levels := len(p.Path)
	for i, step := range p.Path {
		if step.SiblingLeft {
			position += 1 << (levels - 1 - i)
		}
	}
	return position
}

// GenerateProofsAndRoot builds the tree over leaves and returns the
// root with one proof per input leaf, in input order.
func GenerateProofsAndRoot(leaves [][32]byte) ([32]byte, []*Proof, error) {
	if len(leaves) == 0 {
		return [32]byte{}, nil, errEmptyLeaves
	}
	if len(leaves) == 1 {
		return leaves[0], []*Proof{NewProof(leaves[0], nil)}, nil
	}
	if len(leaves) == 2 {
		var combined [64]byte
		copy(combined[:32], leaves[0][:])
		copy(combined[32:], leaves[1][:])
		root := hash.DoubleBlake3(combined[:])
		proofs := []*Proof{
			NewProof(root, []ProofStep{{Sibling: leaves[1], SiblingLeft: false}}),
			NewProof(root, []ProofStep{{Sibling: leaves[0], SiblingLeft: true}}),
		}
		return root, proofs, nil
	}

	padded := make([][32]byte, len(leaves))
	copy(padded, leaves)
	for len(padded)&(len(padded)-1) != 0 {
		padded = append(padded, padded[len(padded)-1])
	}

	half := len(padded) / 2
	leftRoot, leftProofs, err := GenerateProofsAndRoot(padded[:half])
	if err != nil {
		return [32]byte{}, nil, err
	}
	rightRoot, rightProofs, err := GenerateProofsAndRoot(padded[half:])
	if err != nil {
		return [32]byte{}, nil, err
	}

	var combined [64]byte
	copy(combined[:32], leftRoot[:])
	copy(combined[32:], rightRoot[:])
	root := hash.DoubleBlake3(combined[:])

	proofs := make([]*Proof, 0, len(padded))
	for _, p := range leftProofs {
		path := append([]ProofStep{{Sibling: rightRoot, SiblingLeft: false}}, p.Path...)
		proofs = append(proofs, NewProof(root, path))
	}
	for _, p := range rightProofs {
		path := append([]ProofStep{{Sibling: leftRoot, SiblingLeft: true}}, p.Path...)
		proofs = append(proofs, NewProof(root, path))
	}
	return root, proofs[:len(leaves)], nil
}

// ToBuf returns the canonical wire form.
func (p *Proof) ToBuf() []byte {
	w := ebxbuf.NewWriter()
	w.Write(p.Root[:])
	w.WriteVarInt(uint64(len(p.Path)))
	for _, step := range p.Path {
		w.Write(step.Sibling[:])
		if step.SiblingLeft {
			w.WriteU8(1)
		} else {
			w.WriteU8(0)
		}
	}
	return w.Bytes()
}

// ProofFromBuf decodes the wire form.
func ProofFromBuf(buf []byte) (*Proof, error) {
	r := ebxbuf.NewReader(buf)
	root, err := r.ReadFixed32()
	if err != nil {
		return nil, err
	}
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	path := make([]ProofStep, 0, count)
	for i := uint64(0); i < count; i++ {
		sibling, err := r.ReadFixed32()
		if err != nil {
			return nil, err
		}
		flag, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		path = append(path, ProofStep{Sibling: sibling, SiblingLeft: flag == 1})
	}
	return NewProof(root, path), nil
}

// ToHex returns the canonical hex form.
func (p *Proof) ToHex() string {
	return ebxbuf.ToHex(p.ToBuf())
}

// ProofFromHex decodes the canonical hex form.
func ProofFromHex(s string) (*Proof, error) {
	buf, err := ebxbuf.FromHex(s)
	if err != nil {
		return nil, err
	}
	return ProofFromBuf(buf)
}
