package tx

import (
	"errors"
	"fmt"

	"github.com/earthbucks/earthbucks-go/internal/keys"
	"github.com/earthbucks/earthbucks-go/internal/script"
)

// Signing errors.
var (
	ErrOutputNotFound      = errors.New("referenced output not found")
	ErrKeyNotFound         = errors.New("no key for payee hash")
	ErrUnexpectedInput     = errors.New("input script does not match output template")
	ErrUnsupportedTemplate = errors.New("unsupported output script template")
)

// TxSigner fills the signature and public-key slots of a transaction's
// input scripts. It understands the standard templates and the expiry
// and recovery rules of the locked variants, judged against the block
// number the transaction is being built for.
type TxSigner struct {
	Tx              *Tx
	txOutBnMap      *TxOutBnMap
	pkhKeyMap       *keys.PkhKeyMap
	workingBlockNum uint64
}

// NewTxSigner creates a signer for t.
func NewTxSigner(t *Tx, txOutBnMap *TxOutBnMap, pkhKeyMap *keys.PkhKeyMap, workingBlockNum uint64) *TxSigner {
	return &TxSigner{
		Tx:              t,
		txOutBnMap:      txOutBnMap,
		pkhKeyMap:       pkhKeyMap,
		workingBlockNum: workingBlockNum,
	}
}

// SignInput signs input nIn according to the template of the output it
// spends. Expired locked inputs are left unsigned.
func (s *TxSigner) SignInput(nIn int) error {
	in := s.Tx.Inputs[nIn]
	bn := s.txOutBnMap.Get(in.InputTxID, in.InputTxOutNum)
	if bn == nil {
		return ErrOutputNotFound
	}
	out := bn.TxOut
	prevBlockNum := bn.BlockNum
	outScript := out.Script

	switch {
	case outScript.IsPkhOutput():
		if !in.Script.IsPkhInput() {
			return fmt.Errorf("%w: want pkh input placeholder", ErrUnexpectedInput)
		}
		return s.spliceSignature(nIn, pkhAt(outScript, 2), out)

	case outScript.IsPkhx1hOutput(), outScript.IsPkhx90dOutput():
		expired := false
		if outScript.IsPkhx1hOutput() {
			expired = script.IsPkhx1hExpired(s.workingBlockNum, prevBlockNum)
		} else {
			expired = script.IsPkhx90dExpired(s.workingBlockNum, prevBlockNum)
		}
		if expired {
			if in.Script.IsExpiredPkhxInput() {
				return nil
			}
			return fmt.Errorf("%w: want expired pkhx input", ErrUnexpectedInput)
		}
		if !in.Script.IsUnexpiredPkhxInput() {
			return fmt.Errorf("%w: want unexpired pkhx input placeholder", ErrUnexpectedInput)
		}
		return s.spliceSignature(nIn, pkhAt(outScript, 3), out)

	case outScript.IsPkhxr1h40mOutput(), outScript.IsPkhxr90d60dOutput():
		is1h := outScript.IsPkhxr1h40mOutput()
		expired := false
		if is1h {
			expired = script.IsPkhxr1h40mExpired(s.workingBlockNum, prevBlockNum)
		} else {
			expired = script.IsPkhxr90d60dExpired(s.workingBlockNum, prevBlockNum)
		}
		if expired {
			if in.Script.IsExpiredPkhxrInput() {
				return nil
			}
			return fmt.Errorf("%w: want expired pkhxr input", ErrUnexpectedInput)
		}
		var pkh [32]byte
		switch {
		case in.Script.IsRecoveryPkhxrInput():
			recoverable := false
			if is1h {
				recoverable = script.IsPkhxr1h40mRecoverable(s.workingBlockNum, prevBlockNum)
			} else {
				recoverable = script.IsPkhxr90d60dRecoverable(s.workingBlockNum, prevBlockNum)
			}
			if !recoverable {
				return fmt.Errorf("%w: recovery window not open", ErrUnexpectedInput)
			}
			pkh = pkhAt(outScript, 13)
		case in.Script.IsUnexpiredPkhxrInput():
			pkh = pkhAt(outScript, 3)
		default:
			return fmt.Errorf("%w: want unexpired pkhxr input placeholder", ErrUnexpectedInput)
		}
		return s.spliceSignature(nIn, pkh, out)
	}

	return ErrUnsupportedTemplate
}

// Sign signs every input.
func (s *TxSigner) Sign() error {
	for i := range s.Tx.Inputs {
		if err := s.SignInput(i); err != nil {
			return fmt.Errorf("sign input %d: %w", i, err)
		}
	}
	return nil
}

// spliceSignature signs with the key for pkh and fills the first two
// slots of the input script.
func (s *TxSigner) spliceSignature(nIn int, pkh [32]byte, out *TxOut) error {
	pair := s.pkhKeyMap.Get(pkh)
	if pair == nil {
		return ErrKeyNotFound
	}
	sig, err := s.Tx.SignInput(nIn, pair.PrivKey, out.Script.ToBuf(), out.Value, SighashAll, NewHashCache())
	if err != nil {
		return err
	}
	in := s.Tx.Inputs[nIn]
	in.Script.Chunks[0].Buf = sig.ToBuf()
	in.Script.Chunks[1].Buf = append([]byte(nil), pair.PubKey.Buf[:]...)
	return nil
}

func pkhAt(s *script.Script, i int) [32]byte {
	var out [32]byte
	copy(out[:], s.Chunks[i].Buf)
	return out
}
