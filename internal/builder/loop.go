package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/earthbucks/earthbucks-go/internal/chain"
	"github.com/earthbucks/earthbucks-go/internal/merkle"
	"github.com/earthbucks/earthbucks-go/internal/metrics"
	"github.com/earthbucks/earthbucks-go/internal/script"
	"github.com/earthbucks/earthbucks-go/internal/store"
	"github.com/earthbucks/earthbucks-go/internal/tx"
	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

// TickInterval is the pause between loop iterations.
const TickInterval = time.Second

// Clock returns the current seconds since the Unix epoch.
type Clock func() uint64

// SystemClock reads the wall clock.
func SystemClock() uint64 {
	return uint64(time.Now().Unix())
}

// Loop is the single-threaded builder orchestrator. It owns the
// in-memory chain; storage is the only shared resource.
type Loop struct {
	cfg    *Config
	store  store.Store
	clock  Clock
	logger *zap.Logger

	chain            *chain.HeaderChain
	buildingBlockNum uint64

	// candidateLimiter paces candidate-header production so a fast
	// restart cannot flood storage with one-second-apart candidates.
	candidateLimiter *rate.Limiter
}

// NewLoop creates a builder loop.
func NewLoop(cfg *Config, st store.Store, clock Clock, logger *zap.Logger) *Loop {
	return &Loop{
		cfg:              cfg,
		store:            st,
		clock:            clock,
		logger:           logger,
		chain:            chain.NewHeaderChain(),
		candidateLimiter: rate.NewLimiter(rate.Every(TickInterval), 1),
	}
}

// fatalError wraps storage failures at points where continuing would
// desynchronize the in-memory chain from storage.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return "fatal: " + e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// IsFatal reports whether err aborted the loop unrecoverably.
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}

// Run iterates until ctx is cancelled or a fatal error occurs.
// Recoverable storage errors abort the iteration; the next tick
// re-reads state and resumes.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	l.logger.Info("builder started",
		zap.String("domain", l.cfg.Domain),
		zap.Uint64("building_block_num", l.buildingBlockNum),
	)

	for {
		if err := l.RunIteration(); err != nil {
			if IsFatal(err) {
				l.logger.Error("builder aborting", zap.Error(err))
				return err
			}
			l.logger.Warn("iteration failed, resuming next tick", zap.Error(err))
		}
		metrics.LoopIterations.Inc()

		select {
		case <-ctx.Done():
			l.logger.Info("termination signal detected, terminating")
			return nil
		case <-ticker.C:
		}
	}
}

// RunIteration performs one pass: sync, validate blocks, validate
// headers, produce a candidate, clean up.
func (l *Loop) RunIteration() error {
restart:
	if err := l.syncChain(); err != nil {
		return err
	}

	if err := l.validateAnnouncedBlocks(); err != nil {
		return err
	}

	newTip, err := l.validateCandidateHeaders()
	if err != nil {
		return err
	}
	if newTip {
		// A freshly validated header changes the tip; re-sync before
		// producing on top of it.
		goto restart
	}

	if err := l.produceCandidate(); err != nil {
		return err
	}

	return l.gc()
}

// syncChain reloads the in-memory chain when storage has moved.
func (l *Loop) syncChain() error {
	if l.chain.Len() == 0 {
		if err := l.reloadChain(); err != nil {
			return err
		}
	} else {
		tipID, ok, err := l.store.GetChainTipID()
		if err != nil {
			return fmt.Errorf("get chain tip id: %w", err)
		}
		if !ok {
			return &fatalError{errors.New("longest chain in memory does not match storage")}
		}
		if tipID != l.chain.Tip().ID() {
			if err := l.reloadChain(); err != nil {
				return err
			}
		}
	}

	if n := uint64(l.chain.Len()); n != l.buildingBlockNum {
		l.buildingBlockNum = n
		metrics.BuildingBlockNum.Set(float64(n))
		l.logger.Info("building block", zap.Uint64("block_num", n))
	}
	metrics.ChainHeight.Set(float64(l.chain.Len()))
	return nil
}

func (l *Loop) reloadChain() error {
	rows, err := l.store.GetLchOrdered()
	if err != nil {
		return fmt.Errorf("load longest chain: %w", err)
	}
	loaded := chain.NewHeaderChain()
	for _, row := range rows {
		h, err := row.ToHeader()
		if err != nil {
			return &fatalError{fmt.Errorf("corrupt longest chain row %x: %w", row.ID[:8], err)}
		}
		loaded.Add(h)
	}
	l.chain = loaded
	return nil
}

// validateAnnouncedBlocks runs the block verifier over every header
// whose block is still unvalidated, persists the verdict, and promotes
// winners to the longest chain.
func (l *Loop) validateAnnouncedBlocks() error {
	rows, err := l.store.GetValidatedHeaders()
	if err != nil {
		return fmt.Errorf("get validated headers: %w", err)
	}
	for _, row := range rows {
		header, err := row.ToHeader()
		if err != nil {
			l.logger.Warn("corrupt header row", zap.String("id", ebxbuf.ToHex(row.ID[:])))
			continue
		}
		l.logger.Info("verifying block", zap.String("id", ebxbuf.ToHex(row.ID[:])))

		block, utxos, err := l.loadBlock(header)
		if err != nil {
			return err
		}

		verifier := chain.NewBlockVerifier(block, utxos, l.chain)
		isValid := verifier.IsValidAt(l.clock())
		if err := l.store.UpdateBlockValid(row.ID, isValid); err != nil {
			return fmt.Errorf("update block valid: %w", err)
		}
		l.logger.Info("block verified",
			zap.String("id", ebxbuf.ToHex(row.ID[:])),
			zap.Bool("valid", isValid),
		)
		if !isValid {
			metrics.BlocksVerified.WithLabelValues("invalid").Inc()
			continue
		}
		metrics.BlocksVerified.WithLabelValues("valid").Inc()

		// Vote placeholder: a real tally is an external concern; until
		// it lands every locally validated block is voted through.
		if err := l.store.UpdateVoteValid(row.ID, true); err != nil {
			return fmt.Errorf("update vote valid: %w", err)
		}

		if err := l.store.InsertOrUpdateLch(store.LchRowFromHeaderRow(row)); err != nil {
			return &fatalError{fmt.Errorf("save longest chain row: %w", err)}
		}
		l.logger.Info("new longest chain tip", zap.String("id", ebxbuf.ToHex(row.ID[:])))
	}
	return nil
}

// loadBlock rehydrates the transactions committed under the header's
// merkle root and the outputs they spend.
func (l *Loop) loadBlock(header *chain.Header) (*chain.Block, *tx.TxOutMap, error) {
	txRows, err := l.store.GetTxsForMerkleRoot(header.MerkleRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("load txs for merkle root: %w", err)
	}
	txs := make([]*tx.Tx, 0, len(txRows))
	var points []tx.OutPoint
	for _, row := range txRows {
		t, err := row.ToTx()
		if err != nil {
			return nil, nil, fmt.Errorf("corrupt tx row %x: %w", row.ID[:8], err)
		}
		txs = append(txs, t)
		if t.IsCoinbase() {
			continue
		}
		for _, in := range t.Inputs {
			points = append(points, tx.OutPoint{TxID: in.InputTxID, OutNum: in.InputTxOutNum})
		}
	}

	outRows, err := l.store.GetUnspentOutputs(points)
	if err != nil {
		return nil, nil, fmt.Errorf("load unspent outputs: %w", err)
	}
	utxos := tx.NewTxOutMap()
	for _, row := range outRows {
		s, err := scriptFromRow(row.Script)
		if err != nil {
			return nil, nil, fmt.Errorf("corrupt output row %x:%d: %w", row.TxID[:8], row.OutNum, err)
		}
		utxos.Add(tx.NewTxOut(row.Value, s), row.TxID, row.OutNum)
	}
	return chain.NewBlock(header, txs), utxos, nil
}

// validateCandidateHeaders checks ripe candidate headers against the
// chain. The first success changes the tip, so the caller restarts.
func (l *Loop) validateCandidateHeaders() (bool, error) {
	rows, err := l.store.GetCandidateHeaders(l.clock())
	if err != nil {
		return false, fmt.Errorf("get candidate headers: %w", err)
	}
	for _, row := range rows {
		header, err := row.ToHeader()
		if err != nil {
			l.logger.Warn("corrupt candidate row", zap.String("id", ebxbuf.ToHex(row.ID[:])))
			continue
		}
		if l.chain.ExtendIsValidAt(header, l.clock()) {
			l.logger.Info("new header is valid",
				zap.Uint64("block_num", header.BlockNum),
				zap.String("id", ebxbuf.ToHex(row.ID[:])),
			)
			if err := l.store.UpdateHeaderValid(row.ID, true); err != nil {
				return false, fmt.Errorf("update header valid: %w", err)
			}
			metrics.HeadersValidated.WithLabelValues("valid").Inc()
			return true, nil
		}
		l.logger.Debug("header is invalid",
			zap.Uint64("block_num", header.BlockNum),
			zap.String("id", ebxbuf.ToHex(row.ID[:])),
			zap.String("target", ebxbuf.ToHex(header.Target[:])),
		)
		if err := l.store.UpdateHeaderValid(row.ID, false); err != nil {
			return false, fmt.Errorf("update header valid: %w", err)
		}
		metrics.HeadersValidated.WithLabelValues("invalid").Inc()
	}
	return false, nil
}

// produceCandidate inserts the next coinbase transaction, persists the
// merkle proofs for the candidate transaction set, and publishes the
// candidate header.
func (l *Loop) produceCandidate() error {
	if !l.candidateLimiter.Allow() {
		return nil
	}

	coinbaseTx := l.chain.NextCoinbaseTx(l.cfg.CoinbasePkh, l.cfg.Domain)
	coinbaseTxID := coinbaseTx.ID()
	if _, err := l.store.GetTx(coinbaseTxID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("get coinbase tx: %w", err)
		}
		l.logger.Info("inserting coinbase tx", zap.String("id", ebxbuf.ToHex(coinbaseTxID[:])))
		if err := l.store.InsertTxWithOutputs(coinbaseTx, l.cfg.Domain, ""); err != nil {
			return &fatalError{fmt.Errorf("insert coinbase tx: %w", err)}
		}
		metrics.CoinbaseTxsInserted.Inc()
	}

	// Mempool synchronization is a placeholder; candidate blocks carry
	// only the coinbase until unconfirmed transactions are gathered.
	var mempoolTxs []*tx.Tx

	unconfirmed := append([]*tx.Tx{coinbaseTx}, mempoolTxs...)
	merkleTxs, err := merkle.NewTxs(unconfirmed)
	if err != nil {
		return fmt.Errorf("build merkle tree: %w", err)
	}

	for i, t := range merkleTxs.Txs {
		proof := merkleTxs.Proofs[i]
		row := &store.MerkleProofRow{
			Root:     merkleTxs.Root,
			TxID:     t.ID(),
			Position: proof.PositionInTree(),
			Proof:    proof.ToBuf(),
		}
		if err := l.store.UpsertMerkleProof(row); err != nil {
			return &fatalError{fmt.Errorf("upsert merkle proof: %w", err)}
		}
	}

	header, err := l.chain.NextHeader(merkleTxs.Root, l.clock())
	if err != nil {
		return fmt.Errorf("produce candidate header: %w", err)
	}
	headerID := header.ID()
	if _, err := l.store.GetHeader(headerID); err == nil {
		// Same timestamp, same candidate; nothing to publish.
		l.logger.Debug("candidate header already exists", zap.String("id", ebxbuf.ToHex(headerID[:])))
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("get candidate header: %w", err)
	}

	if err := l.store.InsertHeader(store.NewHeaderRow(header, l.cfg.Domain)); err != nil {
		return fmt.Errorf("insert candidate header: %w", err)
	}
	metrics.CandidatesProduced.Inc()
	l.logger.Debug("produced candidate header", zap.String("id", ebxbuf.ToHex(headerID[:])))
	return nil
}

func scriptFromRow(buf []byte) (*script.Script, error) {
	return script.FromBuf(buf)
}

// gc deletes headers below the building block that are not marked
// valid.
func (l *Loop) gc() error {
	if err := l.store.DeleteUnusedHeaders(l.buildingBlockNum); err != nil {
		return fmt.Errorf("delete unused headers: %w", err)
	}
	return nil
}
