// Package store defines the narrow storage interface the builder core
// consumes, plus a bbolt-backed implementation. The core never assumes
// storage-side logic; every row is opaque bytes plus small integers.
package store

import (
	"errors"

	"github.com/earthbucks/earthbucks-go/internal/chain"
	"github.com/earthbucks/earthbucks-go/internal/tx"
)

// Store errors.
var (
	ErrNotFound  = errors.New("row not found")
	ErrDuplicate = errors.New("row already exists")
)

// HeaderRow is a candidate header with its validation state.
type HeaderRow struct {
	ID          [32]byte `cbor:"1,keyasint"`
	Header      []byte   `cbor:"2,keyasint"`
	BlockNum    uint64   `cbor:"3,keyasint"`
	Timestamp   uint64   `cbor:"4,keyasint"`
	Target      [32]byte `cbor:"5,keyasint"`
	HeaderValid *bool    `cbor:"6,keyasint,omitempty"`
	BlockValid  *bool    `cbor:"7,keyasint,omitempty"`
	VoteValid   *bool    `cbor:"8,keyasint,omitempty"`
	Domain      string   `cbor:"9,keyasint"`
}

// NewHeaderRow builds a row from a header with all validity flags
// unset.
func NewHeaderRow(h *chain.Header, domain string) *HeaderRow {
	return &HeaderRow{
		ID:        h.ID(),
		Header:    h.ToBuf(),
		BlockNum:  h.BlockNum,
		Timestamp: h.Timestamp,
		Target:    h.Target,
		Domain:    domain,
	}
}

// ToHeader decodes the stored header bytes.
func (r *HeaderRow) ToHeader() (*chain.Header, error) {
	return chain.HeaderFromBuf(r.Header)
}

// LchRow is a longest-chain entry.
type LchRow struct {
	ID       [32]byte `cbor:"1,keyasint"`
	Header   []byte   `cbor:"2,keyasint"`
	BlockNum uint64   `cbor:"3,keyasint"`
	Domain   string   `cbor:"4,keyasint"`
}

// LchRowFromHeaderRow promotes a validated header row.
func LchRowFromHeaderRow(r *HeaderRow) *LchRow {
	return &LchRow{ID: r.ID, Header: r.Header, BlockNum: r.BlockNum, Domain: r.Domain}
}

// ToHeader decodes the stored header bytes.
func (r *LchRow) ToHeader() (*chain.Header, error) {
	return chain.HeaderFromBuf(r.Header)
}

// TxRow is a raw transaction with its parse metadata.
type TxRow struct {
	ID      [32]byte `cbor:"1,keyasint"`
	Raw     []byte   `cbor:"2,keyasint"`
	Domain  string   `cbor:"3,keyasint"`
	Address string   `cbor:"4,keyasint,omitempty"`
}

// ToTx decodes the raw transaction bytes.
func (r *TxRow) ToTx() (*tx.Tx, error) {
	return tx.TxFromBuf(r.Raw)
}

// OutputRow is one output of a stored transaction.
type OutputRow struct {
	TxID   [32]byte `cbor:"1,keyasint"`
	OutNum uint32   `cbor:"2,keyasint"`
	Value  uint64   `cbor:"3,keyasint"`
	Script []byte   `cbor:"4,keyasint"`
	Spent  bool     `cbor:"5,keyasint"`
}

// MerkleProofRow links a transaction to a merkle root with its proof
// and position.
type MerkleProofRow struct {
	Root     [32]byte `cbor:"1,keyasint"`
	TxID     [32]byte `cbor:"2,keyasint"`
	Position uint64   `cbor:"3,keyasint"`
	Proof    []byte   `cbor:"4,keyasint"`
}

// Store is the storage adapter the builder loop drives. Each call is
// atomic at the granularity of the operation.
type Store interface {
	// Candidate headers.
	InsertHeader(row *HeaderRow) error
	GetHeader(id [32]byte) (*HeaderRow, error)
	// GetCandidateHeaders returns rows with all validity flags unset and
	// timestamp at or before now, lowest (hardest) target first.
	GetCandidateHeaders(now uint64) ([]*HeaderRow, error)
	// GetValidatedHeaders returns rows whose header is valid but whose
	// block is unvalidated or invalid and whose vote is unset, lowest
	// (hardest) target first.
	GetValidatedHeaders() ([]*HeaderRow, error)
	UpdateHeaderValid(id [32]byte, valid bool) error
	UpdateBlockValid(id [32]byte, valid bool) error
	UpdateVoteValid(id [32]byte, valid bool) error
	// DeleteUnusedHeaders removes rows below blockNum whose header is not
	// marked valid (unvalidated or invalid).
	DeleteUnusedHeaders(blockNum uint64) error

	// Longest chain.
	InsertOrUpdateLch(row *LchRow) error
	GetLchOrdered() ([]*LchRow, error)
	GetChainTipID() ([32]byte, bool, error)
	GetChainTip() (*LchRow, bool, error)

	// Transactions. InsertTxWithOutputs stores the raw row and every
	// output atomically.
	InsertTxWithOutputs(t *tx.Tx, domain string, address string) error
	GetTx(id [32]byte) (*TxRow, error)
	// GetTxsForMerkleRoot returns the transactions committed under root
	// in tree order.
	GetTxsForMerkleRoot(root [32]byte) ([]*TxRow, error)

	// Outputs.
	GetUnspentOutputs(points []tx.OutPoint) ([]*OutputRow, error)

	// Merkle proofs.
	UpsertMerkleProof(row *MerkleProofRow) error
}
