package store

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/earthbucks/earthbucks-go/internal/chain"
	"github.com/earthbucks/earthbucks-go/internal/script"
	"github.com/earthbucks/earthbucks-go/internal/tx"
	"github.com/earthbucks/earthbucks-go/testutil"
)

func testStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleHeader(timestamp uint64, blockNum uint64) *chain.Header {
	h := chain.FromGenesis(timestamp)
	h.BlockNum = blockNum
	return h
}

func TestBoltStore_InsertAndGetHeader(t *testing.T) {
	st := testStore(t)
	h := sampleHeader(1000, 0)
	row := NewHeaderRow(h, "example.com")

	if err := st.InsertHeader(row); err != nil {
		t.Fatalf("InsertHeader: %v", err)
	}
	if err := st.InsertHeader(row); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate insert = %v, want ErrDuplicate", err)
	}

	got, err := st.GetHeader(row.ID)
	if err != nil {
		t.Fatalf("GetHeader: %v", err)
	}
	if !bytes.Equal(got.Header, row.Header) || got.Domain != "example.com" {
		t.Error("header row round trip mismatch")
	}
	decoded, err := got.ToHeader()
	if err != nil {
		t.Fatalf("ToHeader: %v", err)
	}
	if decoded.ID() != h.ID() {
		t.Error("decoded header id mismatch")
	}

	if _, err := st.GetHeader(testutil.Hash32FromHex("01")); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing header = %v, want ErrNotFound", err)
	}
}

func TestBoltStore_CandidateHeaders(t *testing.T) {
	st := testStore(t)

	// Ripe candidate.
	ripe := sampleHeader(1000, 1)
	// Future candidate must be excluded.
	future := sampleHeader(5000, 1)
	// Lower (harder) target sorts first.
	hard := sampleHeader(1001, 1)
	hard.Target[0] = 0x0f

	for _, h := range []*chain.Header{ripe, future, hard} {
		if err := st.InsertHeader(NewHeaderRow(h, "example.com")); err != nil {
			t.Fatalf("InsertHeader: %v", err)
		}
	}

	rows, err := st.GetCandidateHeaders(2000)
	if err != nil {
		t.Fatalf("GetCandidateHeaders: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("candidates = %d, want 2", len(rows))
	}
	if rows[0].ID != hard.ID() {
		t.Error("candidates not ordered lowest target first")
	}

	// A validated header leaves the candidate set.
	if err := st.UpdateHeaderValid(ripe.ID(), true); err != nil {
		t.Fatalf("UpdateHeaderValid: %v", err)
	}
	rows, _ = st.GetCandidateHeaders(2000)
	if len(rows) != 1 {
		t.Errorf("candidates after validation = %d, want 1", len(rows))
	}
}

func TestBoltStore_ValidatedHeaders(t *testing.T) {
	st := testStore(t)

	h := sampleHeader(1000, 1)
	if err := st.InsertHeader(NewHeaderRow(h, "example.com")); err != nil {
		t.Fatalf("InsertHeader: %v", err)
	}

	rows, err := st.GetValidatedHeaders()
	if err != nil {
		t.Fatalf("GetValidatedHeaders: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("unvalidated header in validated set")
	}

	if err := st.UpdateHeaderValid(h.ID(), true); err != nil {
		t.Fatalf("UpdateHeaderValid: %v", err)
	}
	rows, _ = st.GetValidatedHeaders()
	if len(rows) != 1 {
		t.Fatalf("validated headers = %d, want 1", len(rows))
	}

	// A block-valid header with a vote leaves the set.
	if err := st.UpdateBlockValid(h.ID(), true); err != nil {
		t.Fatalf("UpdateBlockValid: %v", err)
	}
	if err := st.UpdateVoteValid(h.ID(), true); err != nil {
		t.Fatalf("UpdateVoteValid: %v", err)
	}
	rows, _ = st.GetValidatedHeaders()
	if len(rows) != 0 {
		t.Errorf("voted header still in validated set")
	}
}

func TestBoltStore_DeleteUnusedHeaders(t *testing.T) {
	st := testStore(t)

	old := sampleHeader(1000, 1)
	validOld := sampleHeader(1001, 1)
	current := sampleHeader(1002, 5)
	for _, h := range []*chain.Header{old, validOld, current} {
		if err := st.InsertHeader(NewHeaderRow(h, "example.com")); err != nil {
			t.Fatalf("InsertHeader: %v", err)
		}
	}
	if err := st.UpdateHeaderValid(validOld.ID(), true); err != nil {
		t.Fatalf("UpdateHeaderValid: %v", err)
	}

	if err := st.DeleteUnusedHeaders(5); err != nil {
		t.Fatalf("DeleteUnusedHeaders: %v", err)
	}

	if _, err := st.GetHeader(old.ID()); !errors.Is(err, ErrNotFound) {
		t.Error("stale invalid header survived gc")
	}
	if _, err := st.GetHeader(validOld.ID()); err != nil {
		t.Error("validated header must survive gc")
	}
	if _, err := st.GetHeader(current.ID()); err != nil {
		t.Error("current header must survive gc")
	}
}

func TestBoltStore_LongestChain(t *testing.T) {
	st := testStore(t)

	_, ok, err := st.GetChainTip()
	if err != nil {
		t.Fatalf("GetChainTip: %v", err)
	}
	if ok {
		t.Error("empty store must have no tip")
	}

	c := testutil.SampleChain(t, 3, 1000)
	headers := c.Headers
	for _, h := range headers {
		row := NewHeaderRow(h, "example.com")
		if err := st.InsertOrUpdateLch(LchRowFromHeaderRow(row)); err != nil {
			t.Fatalf("InsertOrUpdateLch: %v", err)
		}
	}

	rows, err := st.GetLchOrdered()
	if err != nil {
		t.Fatalf("GetLchOrdered: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("lch rows = %d, want 3", len(rows))
	}
	for i, row := range rows {
		if row.BlockNum != uint64(i) {
			t.Errorf("row %d has block num %d", i, row.BlockNum)
		}
	}

	tipID, ok, err := st.GetChainTipID()
	if err != nil || !ok {
		t.Fatalf("GetChainTipID: ok=%v err=%v", ok, err)
	}
	if tipID != headers[2].ID() {
		t.Error("tip id is not the last inserted header")
	}
}

func TestBoltStore_TxsAndOutputs(t *testing.T) {
	st := testStore(t)

	var pkh [32]byte
	cb := tx.TxFromCoinbase(
		script.FromCoinbaseInput("example.com", 0),
		script.FromPkhOutput(pkh), 1000, 0,
	)
	if err := st.InsertTxWithOutputs(cb, "example.com", ""); err != nil {
		t.Fatalf("InsertTxWithOutputs: %v", err)
	}
	if err := st.InsertTxWithOutputs(cb, "example.com", ""); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate tx insert = %v, want ErrDuplicate", err)
	}

	row, err := st.GetTx(cb.ID())
	if err != nil {
		t.Fatalf("GetTx: %v", err)
	}
	decoded, err := row.ToTx()
	if err != nil {
		t.Fatalf("ToTx: %v", err)
	}
	if decoded.ID() != cb.ID() {
		t.Error("tx round trip mismatch")
	}

	outs, err := st.GetUnspentOutputs([]tx.OutPoint{{TxID: cb.ID(), OutNum: 0}})
	if err != nil {
		t.Fatalf("GetUnspentOutputs: %v", err)
	}
	if len(outs) != 1 || outs[0].Value != 1000 {
		t.Fatalf("outputs = %+v, want one of value 1000", outs)
	}

	// Missing outpoints are skipped, not errors.
	outs, err = st.GetUnspentOutputs([]tx.OutPoint{{TxID: [32]byte{9}, OutNum: 0}})
	if err != nil {
		t.Fatalf("GetUnspentOutputs: %v", err)
	}
	if len(outs) != 0 {
		t.Error("missing outpoint returned a row")
	}
}

func TestBoltStore_MerkleProofOrdering(t *testing.T) {
	st := testStore(t)

	root := testutil.Hash32FromHex("aa")

	var pkh [32]byte
	var ids [][32]byte
	for i := 0; i < 3; i++ {
		txn := tx.TxFromCoinbase(
			script.FromCoinbaseInput("example.com", uint64(i)),
			script.FromPkhOutput(pkh), 100, uint64(i),
		)
		if err := st.InsertTxWithOutputs(txn, "example.com", ""); err != nil {
			t.Fatalf("InsertTxWithOutputs: %v", err)
		}
		ids = append(ids, txn.ID())
	}

	// Insert proofs out of order; retrieval follows tree position.
	for _, pos := range []int{2, 0, 1} {
		row := &MerkleProofRow{Root: root, TxID: ids[pos], Position: uint64(pos)}
		if err := st.UpsertMerkleProof(row); err != nil {
			t.Fatalf("UpsertMerkleProof: %v", err)
		}
	}

	rows, err := st.GetTxsForMerkleRoot(root)
	if err != nil {
		t.Fatalf("GetTxsForMerkleRoot: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("txs = %d, want 3", len(rows))
	}
	for i, row := range rows {
		if row.ID != ids[i] {
			t.Errorf("tx %d out of order", i)
		}
	}

	// Upsert is idempotent.
	row := &MerkleProofRow{Root: root, TxID: ids[0], Position: 0}
	if err := st.UpsertMerkleProof(row); err != nil {
		t.Fatalf("UpsertMerkleProof: %v", err)
	}
	rows, _ = st.GetTxsForMerkleRoot(root)
	if len(rows) != 3 {
		t.Errorf("upsert duplicated a proof: %d rows", len(rows))
	}
}
