package chain

import (
	"bytes"
	"testing"

	"github.com/earthbucks/earthbucks-go/internal/keys"
	"github.com/earthbucks/earthbucks-go/internal/merkle"
	"github.com/earthbucks/earthbucks-go/internal/script"
	"github.com/earthbucks/earthbucks-go/internal/tx"
)

func testPkh(t *testing.T) (*keys.KeyPair, *keys.Pkh, *keys.PkhKeyMap) {
	t.Helper()
	pair, err := keys.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	pkh := keys.PkhFromPubKey(pair.PubKey)
	km := keys.NewPkhKeyMap()
	km.Add(pair, pkh.Buf)
	return pair, pkh, km
}

func TestHeaderChain_Basics(t *testing.T) {
	c := NewHeaderChain()
	if c.Tip() != nil {
		t.Error("empty chain must have no tip")
	}
	g := FromGenesis(1000)
	c.Add(g)
	if c.Tip() != g || c.Len() != 1 {
		t.Error("tip or length wrong after Add")
	}
}

func TestHeaderChain_NextHeader(t *testing.T) {
	c := NewHeaderChain()
	c.Add(FromGenesis(1000))

	var root [32]byte
	root[0] = 0xaa
	h, err := c.NextHeader(root, 1600)
	if err != nil {
		t.Fatalf("NextHeader: %v", err)
	}
	if h.BlockNum != 1 {
		t.Errorf("block num = %d, want 1", h.BlockNum)
	}
	if h.PrevBlockID != c.Tip().ID() {
		t.Error("prev block id does not reference the tip")
	}
	if h.MerkleRoot != root {
		t.Error("merkle root not carried into the candidate")
	}
	if h.Nonce != [32]byte{} || h.WorkParHash != [32]byte{} {
		t.Error("candidate must start with zero nonce and work hashes")
	}
	if !c.ExtendIsValidAt(h, 1600) {
		t.Error("candidate must extend the chain it was built on")
	}
}

func TestHeaderChain_NextCoinbaseTx(t *testing.T) {
	_, pkh, _ := testPkh(t)
	c := NewHeaderChain()
	c.Add(FromGenesis(1000))

	cb := c.NextCoinbaseTx(pkh, "example.com")
	if !cb.IsCoinbase() {
		t.Fatal("next coinbase is not a coinbase")
	}
	if cb.LockAbs != 1 {
		t.Errorf("lock abs = %d, want next block num 1", cb.LockAbs)
	}
	if cb.Outputs[0].Value != CoinbaseAmount(1) {
		t.Errorf("coinbase value = %d, want %d", cb.Outputs[0].Value, CoinbaseAmount(1))
	}
	if !cb.Outputs[0].Script.IsPkhOutput() {
		t.Error("coinbase output is not pay-to-hash")
	}
	// The domain rides in the input script.
	if !bytes.Equal(cb.Inputs[0].Script.Chunks[0].Buf, []byte("example.com")) {
		t.Error("domain not carried in the coinbase input script")
	}
}

// genesisBlock builds a fully valid genesis block paying pkh.
func genesisBlock(t *testing.T, pkh *keys.Pkh, now uint64) *Block {
	t.Helper()
	c := NewHeaderChain()
	cb := c.NextCoinbaseTx(pkh, "example.com")
	mt, err := merkle.NewTxs([]*tx.Tx{cb})
	if err != nil {
		t.Fatalf("merkle.NewTxs: %v", err)
	}
	header, err := c.NextHeader(mt.Root, now)
	if err != nil {
		t.Fatalf("NextHeader: %v", err)
	}
	return NewBlock(header, []*tx.Tx{cb})
}

func TestBlockVerifier_GenesisBlock(t *testing.T) {
	_, pkh, _ := testPkh(t)
	block := genesisBlock(t, pkh, 1000)

	v := NewBlockVerifier(block, tx.NewTxOutMap(), NewHeaderChain())
	if !v.IsValidAt(1000) {
		t.Error("genesis block did not verify")
	}
}

func TestBlockVerifier_SecondBlockWithSpend(t *testing.T) {
	_, pkh, km := testPkh(t)

	genesis := genesisBlock(t, pkh, 1000)
	chain := NewHeaderChain()
	chain.Add(genesis.Header)

	// The genesis coinbase output becomes spendable.
	genesisCb := genesis.Txs[0]
	utxos := tx.NewTxOutMap()
	utxos.Add(genesisCb.Outputs[0], genesisCb.ID(), 0)

	bnMap := tx.NewTxOutBnMap()
	bnMap.Add(genesisCb.ID(), 0, genesisCb.Outputs[0], 0)

	// Spend it back to the same payee.
	b := tx.NewTxBuilder(bnMap, script.Empty(), 0)
	b.AddOutput(tx.NewTxOut(genesisCb.Outputs[0].Value, script.FromPkhOutput(pkh.Buf)))
	spend := b.Build()
	signer := tx.NewTxSigner(spend, bnMap, km, 1)
	if err := signer.Sign(); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	cb := chain.NextCoinbaseTx(pkh, "example.com")
	txs := []*tx.Tx{cb, spend}
	mt, err := merkle.NewTxs(txs)
	if err != nil {
		t.Fatalf("merkle.NewTxs: %v", err)
	}
	header, err := chain.NextHeader(mt.Root, 1600)
	if err != nil {
		t.Fatalf("NextHeader: %v", err)
	}
	block := NewBlock(header, txs)

	v := NewBlockVerifier(block, utxos, chain)
	if !v.HeaderIsValidAt(1600) {
		t.Error("header did not extend the chain")
	}
	if !v.MerkleRootIsValid() {
		t.Error("merkle root mismatch")
	}
	if !v.CoinbaseIsValid() {
		t.Error("coinbase check failed")
	}
	if !v.TxsAreValid() {
		t.Error("spend transaction did not verify")
	}
	if !v.IsValidAt(1600) {
		t.Error("full block verification failed")
	}
}

func TestBlockVerifier_RejectsBadMerkleRoot(t *testing.T) {
	_, pkh, _ := testPkh(t)
	block := genesisBlock(t, pkh, 1000)
	block.Header.MerkleRoot[0] ^= 1

	v := NewBlockVerifier(block, tx.NewTxOutMap(), NewHeaderChain())
	if v.MerkleRootIsValid() {
		t.Error("tampered merkle root accepted")
	}
}

func TestBlockVerifier_RejectsOversizedCoinbase(t *testing.T) {
	_, pkh, _ := testPkh(t)
	chain := NewHeaderChain()

	cb := tx.TxFromCoinbase(
		script.FromCoinbaseInput("example.com", 0),
		script.FromPkhOutput(pkh.Buf),
		CoinbaseAmount(0)+1,
		0,
	)
	mt, _ := merkle.NewTxs([]*tx.Tx{cb})
	header, err := chain.NextHeader(mt.Root, 1000)
	if err != nil {
		t.Fatalf("NextHeader: %v", err)
	}
	block := NewBlock(header, []*tx.Tx{cb})

	v := NewBlockVerifier(block, tx.NewTxOutMap(), chain)
	if v.CoinbaseIsValid() {
		t.Error("oversubsidized coinbase accepted")
	}
}

func TestBlockVerifier_RejectsMissingCoinbase(t *testing.T) {
	_, pkh, _ := testPkh(t)
	regular := tx.NewTx(1,
		[]*tx.TxIn{tx.NewTxIn([32]byte{1}, 0, script.Empty(), 0)},
		[]*tx.TxOut{tx.NewTxOut(1, script.FromPkhOutput(pkh.Buf))},
		0,
	)
	block := NewBlock(FromGenesis(1000), []*tx.Tx{regular})
	v := NewBlockVerifier(block, tx.NewTxOutMap(), NewHeaderChain())
	if v.CoinbaseIsValid() {
		t.Error("block without coinbase accepted")
	}
}

func TestBlockVerifier_RejectsBlockDoubleSpend(t *testing.T) {
	_, pkh, km := testPkh(t)

	genesis := genesisBlock(t, pkh, 1000)
	chain := NewHeaderChain()
	chain.Add(genesis.Header)

	genesisCb := genesis.Txs[0]
	utxos := tx.NewTxOutMap()
	utxos.Add(genesisCb.Outputs[0], genesisCb.ID(), 0)

	bnMap := tx.NewTxOutBnMap()
	bnMap.Add(genesisCb.ID(), 0, genesisCb.Outputs[0], 0)

	makeSpend := func(value uint64) *tx.Tx {
		b := tx.NewTxBuilder(bnMap, script.Empty(), 0)
		b.AddOutput(tx.NewTxOut(value, script.FromPkhOutput(pkh.Buf)))
		spend := b.Build()
		signer := tx.NewTxSigner(spend, bnMap, km, 1)
		if err := signer.Sign(); err != nil {
			t.Fatalf("Sign: %v", err)
		}
		return spend
	}

	// Two transactions spending the same output.
	spend1 := makeSpend(genesisCb.Outputs[0].Value)
	spend2 := makeSpend(genesisCb.Outputs[0].Value - 1)

	cb := chain.NextCoinbaseTx(pkh, "example.com")
	txs := []*tx.Tx{cb, spend1, spend2}
	mt, _ := merkle.NewTxs(txs)
	header, err := chain.NextHeader(mt.Root, 1600)
	if err != nil {
		t.Fatalf("NextHeader: %v", err)
	}
	block := NewBlock(header, txs)

	v := NewBlockVerifier(block, utxos, chain)
	if v.NoDoubleSpends() {
		t.Error("block-level double spend accepted")
	}
	if v.IsValidAt(1600) {
		t.Error("block with double spend verified")
	}
}

func TestBlock_RoundTrip(t *testing.T) {
	_, pkh, _ := testPkh(t)
	block := genesisBlock(t, pkh, 1000)

	buf := block.ToBuf()
	block2, err := BlockFromBuf(buf)
	if err != nil {
		t.Fatalf("BlockFromBuf: %v", err)
	}
	if !bytes.Equal(block2.ToBuf(), buf) {
		t.Error("block round trip mismatch")
	}
	if block2.ID() != block.ID() {
		t.Error("block id changed across round trip")
	}
}
