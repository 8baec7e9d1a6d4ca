package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/earthbucks/earthbucks-go/internal/tx"
)

var (
	bucketHeaders = []byte("headers")
	bucketLch     = []byte("lch")
	bucketTxs     = []byte("txs")
	bucketOutputs = []byte("outputs")
	bucketProofs  = []byte("proofs")
)

// BoltStore implements Store on a single bbolt file. Rows are CBOR.
type BoltStore struct {
	db     *bolt.DB
	logger *zap.Logger
}

// NewBoltStore opens or creates the database at path.
func NewBoltStore(path string, logger *zap.Logger) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	err = db.Update(func(btx *bolt.Tx) error {
		for _, name := range [][]byte{bucketHeaders, bucketLch, bucketTxs, bucketOutputs, bucketProofs} {
			if _, err := btx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &BoltStore{db: db, logger: logger}, nil
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// outputKey is tx id then big-endian out num, so one transaction's
// outputs are contiguous.
func outputKey(txID [32]byte, outNum uint32) []byte {
	key := make([]byte, 36)
	copy(key, txID[:])
	binary.BigEndian.PutUint32(key[32:], outNum)
	return key
}

// proofKey is root then position, so one root's proofs iterate in tree
// order.
func proofKey(root [32]byte, position uint64) []byte {
	key := make([]byte, 40)
	copy(key, root[:])
	binary.BigEndian.PutUint64(key[32:], position)
	return key
}

// lchKey is the big-endian block number, so the chain iterates in
// order.
func lchKey(blockNum uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, blockNum)
	return key
}

func (s *BoltStore) InsertHeader(row *HeaderRow) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		b := btx.Bucket(bucketHeaders)
		if b.Get(row.ID[:]) != nil {
			return ErrDuplicate
		}
		enc, err := cbor.Marshal(row)
		if err != nil {
			return err
		}
		return b.Put(row.ID[:], enc)
	})
}

func (s *BoltStore) GetHeader(id [32]byte) (*HeaderRow, error) {
	var row *HeaderRow
	err := s.db.View(func(btx *bolt.Tx) error {
		enc := btx.Bucket(bucketHeaders).Get(id[:])
		if enc == nil {
			return ErrNotFound
		}
		row = &HeaderRow{}
		return cbor.Unmarshal(enc, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// scanHeaders decodes every header row matching keep.
func (s *BoltStore) scanHeaders(keep func(*HeaderRow) bool) ([]*HeaderRow, error) {
	var rows []*HeaderRow
	err := s.db.View(func(btx *bolt.Tx) error {
		return btx.Bucket(bucketHeaders).ForEach(func(_, enc []byte) error {
			row := &HeaderRow{}
			if err := cbor.Unmarshal(enc, row); err != nil {
				return err
			}
			if keep(row) {
				rows = append(rows, row)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return bytes.Compare(rows[i].Target[:], rows[j].Target[:]) < 0
	})
	return rows, nil
}

func (s *BoltStore) GetCandidateHeaders(now uint64) ([]*HeaderRow, error) {
	return s.scanHeaders(func(r *HeaderRow) bool {
		return r.HeaderValid == nil && r.BlockValid == nil && r.VoteValid == nil &&
			r.Timestamp <= now
	})
}

func (s *BoltStore) GetValidatedHeaders() ([]*HeaderRow, error) {
	return s.scanHeaders(func(r *HeaderRow) bool {
		return r.HeaderValid != nil && *r.HeaderValid &&
			(r.BlockValid == nil || !*r.BlockValid) &&
			r.VoteValid == nil
	})
}

// updateHeaderFlag rewrites one validity flag of a stored row.
func (s *BoltStore) updateHeaderFlag(id [32]byte, set func(*HeaderRow)) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		b := btx.Bucket(bucketHeaders)
		enc := b.Get(id[:])
		if enc == nil {
			return ErrNotFound
		}
		row := &HeaderRow{}
		if err := cbor.Unmarshal(enc, row); err != nil {
			return err
		}
		set(row)
		enc, err := cbor.Marshal(row)
		if err != nil {
			return err
		}
		return b.Put(id[:], enc)
	})
}

func (s *BoltStore) UpdateHeaderValid(id [32]byte, valid bool) error {
	return s.updateHeaderFlag(id, func(r *HeaderRow) { r.HeaderValid = &valid })
}

func (s *BoltStore) UpdateBlockValid(id [32]byte, valid bool) error {
	return s.updateHeaderFlag(id, func(r *HeaderRow) { r.BlockValid = &valid })
}

func (s *BoltStore) UpdateVoteValid(id [32]byte, valid bool) error {
	return s.updateHeaderFlag(id, func(r *HeaderRow) { r.VoteValid = &valid })
}

func (s *BoltStore) DeleteUnusedHeaders(blockNum uint64) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		b := btx.Bucket(bucketHeaders)
		var stale [][]byte
		err := b.ForEach(func(k, enc []byte) error {
			row := &HeaderRow{}
			if err := cbor.Unmarshal(enc, row); err != nil {
				return err
			}
			if row.BlockNum < blockNum && (row.HeaderValid == nil || !*row.HeaderValid) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		if len(stale) > 0 {
			s.logger.Debug("deleted unused headers",
				zap.Int("count", len(stale)),
				zap.Uint64("below_block_num", blockNum),
			)
		}
		return nil
	})
}

func (s *BoltStore) InsertOrUpdateLch(row *LchRow) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		enc, err := cbor.Marshal(row)
		if err != nil {
			return err
		}
		return btx.Bucket(bucketLch).Put(lchKey(row.BlockNum), enc)
	})
}

func (s *BoltStore) GetLchOrdered() ([]*LchRow, error) {
	var rows []*LchRow
	err := s.db.View(func(btx *bolt.Tx) error {
		return btx.Bucket(bucketLch).ForEach(func(_, enc []byte) error {
			row := &LchRow{}
			if err := cbor.Unmarshal(enc, row); err != nil {
				return err
			}
			rows = append(rows, row)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BoltStore) GetChainTip() (*LchRow, bool, error) {
	var row *LchRow
	err := s.db.View(func(btx *bolt.Tx) error {
		c := btx.Bucket(bucketLch).Cursor()
		_, enc := c.Last()
		if enc == nil {
			return nil
		}
		row = &LchRow{}
		return cbor.Unmarshal(enc, row)
	})
	if err != nil {
		return nil, false, err
	}
	return row, row != nil, nil
}

func (s *BoltStore) GetChainTipID() ([32]byte, bool, error) {
	row, ok, err := s.GetChainTip()
	if err != nil || !ok {
		return [32]byte{}, false, err
	}
	return row.ID, true, nil
}

func (s *BoltStore) InsertTxWithOutputs(t *tx.Tx, domain string, address string) error {
	id := t.ID()
	return s.db.Update(func(btx *bolt.Tx) error {
		txs := btx.Bucket(bucketTxs)
		if txs.Get(id[:]) != nil {
			return ErrDuplicate
		}
		row := &TxRow{ID: id, Raw: t.ToBuf(), Domain: domain, Address: address}
		enc, err := cbor.Marshal(row)
		if err != nil {
			return err
		}
		if err := txs.Put(id[:], enc); err != nil {
			return err
		}
		outputs := btx.Bucket(bucketOutputs)
		for i, out := range t.Outputs {
			outRow := &OutputRow{
				TxID:   id,
				OutNum: uint32(i),
				Value:  out.Value,
				Script: out.Script.ToBuf(),
			}
			enc, err := cbor.Marshal(outRow)
			if err != nil {
				return err
			}
			if err := outputs.Put(outputKey(id, uint32(i)), enc); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) GetTx(id [32]byte) (*TxRow, error) {
	var row *TxRow
	err := s.db.View(func(btx *bolt.Tx) error {
		enc := btx.Bucket(bucketTxs).Get(id[:])
		if enc == nil {
			return ErrNotFound
		}
		row = &TxRow{}
		return cbor.Unmarshal(enc, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *BoltStore) GetTxsForMerkleRoot(root [32]byte) ([]*TxRow, error) {
	var rows []*TxRow
	err := s.db.View(func(btx *bolt.Tx) error {
		proofs := btx.Bucket(bucketProofs)
		txs := btx.Bucket(bucketTxs)
		c := proofs.Cursor()
		for k, enc := c.Seek(root[:]); k != nil && bytes.HasPrefix(k, root[:]); k, enc = c.Next() {
			proofRow := &MerkleProofRow{}
			if err := cbor.Unmarshal(enc, proofRow); err != nil {
				return err
			}
			txEnc := txs.Get(proofRow.TxID[:])
			if txEnc == nil {
				return fmt.Errorf("tx %x for root %x: %w", proofRow.TxID[:8], root[:8], ErrNotFound)
			}
			txRow := &TxRow{}
			if err := cbor.Unmarshal(txEnc, txRow); err != nil {
				return err
			}
			rows = append(rows, txRow)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BoltStore) GetUnspentOutputs(points []tx.OutPoint) ([]*OutputRow, error) {
	var rows []*OutputRow
	err := s.db.View(func(btx *bolt.Tx) error {
		outputs := btx.Bucket(bucketOutputs)
		for _, p := range points {
			enc := outputs.Get(outputKey(p.TxID, p.OutNum))
			if enc == nil {
				continue
			}
			row := &OutputRow{}
			if err := cbor.Unmarshal(enc, row); err != nil {
				return err
			}
			if row.Spent {
				continue
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BoltStore) UpsertMerkleProof(row *MerkleProofRow) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		enc, err := cbor.Marshal(row)
		if err != nil {
			return err
		}
		return btx.Bucket(bucketProofs).Put(proofKey(row.Root, row.Position), enc)
	})
}
