package chain

import (
	"github.com/earthbucks/earthbucks-go/internal/tx"
	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

// Block is a header with its ordered transactions.
type Block struct {
	Header *Header
	Txs    []*tx.Tx
}

// NewBlock creates a block.
func NewBlock(header *Header, txs []*tx.Tx) *Block {
	return &Block{Header: header, Txs: txs}
}

// ToBuf returns the canonical wire form: the header, a transaction
// count, then each transaction.
func (b *Block) ToBuf() []byte {
	w := ebxbuf.NewWriter()
	w.Write(b.Header.ToBuf())
	w.WriteVarInt(uint64(len(b.Txs)))
	for _, t := range b.Txs {
		w.Write(t.ToBuf())
	}
	return w.Bytes()
}

// BlockFromBuf decodes a block spanning the entire buffer.
func BlockFromBuf(buf []byte) (*Block, error) {
	r := ebxbuf.NewReader(buf)
	header, err := HeaderFromReader(r)
	if err != nil {
		return nil, err
	}
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	txs := make([]*tx.Tx, 0, count)
	for i := uint64(0); i < count; i++ {
		t, err := tx.TxFromReader(r)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return NewBlock(header, txs), nil
}

// ID returns the block id, which is the header id.
func (b *Block) ID() [32]byte {
	return b.Header.ID()
}
