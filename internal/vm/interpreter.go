// Package vm executes scripts against a transaction context. The
// interpreter is deterministic and shares no state between runs except
// the per-transaction sighash cache handed to it.
package vm

import (
	"bytes"
	"math/big"

	"github.com/earthbucks/earthbucks-go/internal/hash"
	"github.com/earthbucks/earthbucks-go/internal/keys"
	"github.com/earthbucks/earthbucks-go/internal/script"
	"github.com/earthbucks/earthbucks-go/internal/tx"
)

// Interpreter error strings, mirrored into ErrStr on failure.
const (
	errUnbalancedConditional = "unbalanced conditional"
	errInvalidStackOp        = "invalid stack operation"
	errInvalidPushdata       = "invalid pushdata"
	errVerifyFailed          = "VERIFY failed"
	errEqualVerifyFailed     = "EQUALVERIFY failed"
	errNumEqualVerifyFailed  = "NUMEQUALVERIFY failed"
	errCheckSigVerifyFailed  = "CHECKSIGVERIFY failed"
	errCheckMultiSigVerify   = "CHECKMULTISIGVERIFY failed"
	errInvalidPubKeyLen      = "invalid public key length"
	errInvalidSigLen         = "invalid signature length"
	errInvalidKeyCount       = "invalid number of keys"
	errInvalidSigCount       = "invalid number of signatures"
	errDivisionByZero        = "division by zero"
	errNegativeLockAbs       = "negative lockabs"
	errLockAbsNotMet         = "lockabs requirement not met"
	errNegativeLockRel       = "negative lockrel"
	errLockRelNotMet         = "lockrel requirement not met"
	errInvalidOpcode         = "invalid opcode"
)

// Interpreter evaluates one script against one transaction input.
type Interpreter struct {
	Script   *script.Script
	Tx       *tx.Tx
	NIn      int
	Stack    [][]byte
	AltStack [][]byte
	PC       int
	IfStack  []bool

	ReturnValue   []byte
	ReturnSuccess *bool
	ErrStr        string

	Value     uint64
	HashCache *tx.HashCache
}

// NewInterpreter evaluates s in the context of t's input nIn with an
// empty starting stack.
func NewInterpreter(s *script.Script, t *tx.Tx, nIn int, hashCache *tx.HashCache) *Interpreter {
	return &Interpreter{
		Script:    s,
		Tx:        t,
		NIn:       nIn,
		HashCache: hashCache,
	}
}

// NewOutputScriptInterpreter evaluates an output script with the stack
// seeded by the spending input and the referenced output's value bound
// for sighash computation.
func NewOutputScriptInterpreter(s *script.Script, t *tx.Tx, nIn int, stack [][]byte, value uint64, hashCache *tx.HashCache) *Interpreter {
	return &Interpreter{
		Script:    s,
		Tx:        t,
		NIn:       nIn,
		Stack:     stack,
		Value:     value,
		HashCache: hashCache,
	}
}

// CastToBool interprets a stack value: truthy iff any byte is non-zero.
func CastToBool(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return true
		}
	}
	return false
}

func (ip *Interpreter) pop() []byte {
	top := ip.Stack[len(ip.Stack)-1]
	ip.Stack = ip.Stack[:len(ip.Stack)-1]
	return top
}

func (ip *Interpreter) popNum() *script.ScriptNum {
	return script.ScriptNumFromBuf(ip.pop())
}

func (ip *Interpreter) push(buf []byte) {
	ip.Stack = append(ip.Stack, buf)
}

func (ip *Interpreter) pushBool(b bool) {
	if b {
		ip.push([]byte{1})
	} else {
		ip.push([]byte{})
	}
}

func (ip *Interpreter) pushNum(n *big.Int) {
	ip.push(script.NewScriptNumBig(n).ToBuf())
}

// EvalScript runs the script to completion. It returns true iff no
// opcode failed and the final stack top is truthy. The first failure is
// recorded in ErrStr.
func (ip *Interpreter) EvalScript() bool {
	for ip.PC < len(ip.Script.Chunks) {
		chunk := ip.Script.Chunks[ip.PC]
		opcode := chunk.Opcode

		ifExec := true
		for _, b := range ip.IfStack {
			if !b {
				ifExec = false
				break
			}
		}

		if !(ifExec ||
			opcode == script.OP_IF || opcode == script.OP_NOTIF ||
			opcode == script.OP_ELSE || opcode == script.OP_ENDIF) {
			ip.PC++
			continue
		}

		switch opcode {
		case script.OP_IF, script.OP_NOTIF:
			ifValue := false
			if ifExec {
				if len(ip.Stack) < 1 {
					ip.ErrStr = errUnbalancedConditional
					break
				}
				ifValue = CastToBool(ip.pop())
				if opcode == script.OP_NOTIF {
					ifValue = !ifValue
				}
			}
			ip.IfStack = append(ip.IfStack, ifValue)

		case script.OP_ELSE:
			if len(ip.IfStack) == 0 {
				ip.ErrStr = errUnbalancedConditional
				break
			}
			ip.IfStack[len(ip.IfStack)-1] = !ip.IfStack[len(ip.IfStack)-1]

		case script.OP_ENDIF:
			if len(ip.IfStack) == 0 {
				ip.ErrStr = errUnbalancedConditional
				break
			}
			ip.IfStack = ip.IfStack[:len(ip.IfStack)-1]

		case script.OP_0:
			ip.push([]byte{})

		case script.OP_PUSHDATA1, script.OP_PUSHDATA2, script.OP_PUSHDATA4:
			if chunk.Buf == nil {
				ip.ErrStr = errInvalidPushdata
				break
			}
			ip.push(append([]byte(nil), chunk.Buf...))

		case script.OP_1NEGATE:
			ip.pushNum(big.NewInt(-1))

		case script.OP_1, script.OP_2, script.OP_3, script.OP_4, script.OP_5,
			script.OP_6, script.OP_7, script.OP_8, script.OP_9, script.OP_10,
			script.OP_11, script.OP_12, script.OP_13, script.OP_14, script.OP_15,
			script.OP_16:
			ip.pushNum(big.NewInt(int64(opcode - script.OP_1 + 1)))

		case script.OP_VERIFY:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			if !CastToBool(ip.pop()) {
				ip.ErrStr = errVerifyFailed
			}

		case script.OP_RETURN:
			// Terminates execution at the current position.
			ip.PC = len(ip.Script.Chunks)
			continue

		case script.OP_TOALTSTACK:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.AltStack = append(ip.AltStack, ip.pop())

		case script.OP_FROMALTSTACK:
			if len(ip.AltStack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.push(ip.AltStack[len(ip.AltStack)-1])
			ip.AltStack = ip.AltStack[:len(ip.AltStack)-1]

		case script.OP_2DROP:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.Stack = ip.Stack[:len(ip.Stack)-2]

		case script.OP_2DUP:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.push(ip.Stack[len(ip.Stack)-2])
			ip.push(ip.Stack[len(ip.Stack)-2])

		case script.OP_3DUP:
			if len(ip.Stack) < 3 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.push(ip.Stack[len(ip.Stack)-3])
			ip.push(ip.Stack[len(ip.Stack)-3])
			ip.push(ip.Stack[len(ip.Stack)-3])

		case script.OP_2OVER:
			if len(ip.Stack) < 4 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.push(ip.Stack[len(ip.Stack)-4])
			ip.push(ip.Stack[len(ip.Stack)-4])

		case script.OP_2ROT:
			if len(ip.Stack) < 6 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			n := len(ip.Stack)
			buf1, buf2 := ip.Stack[n-6], ip.Stack[n-5]
			ip.Stack = append(ip.Stack[:n-6], ip.Stack[n-4:]...)
			ip.push(buf1)
			ip.push(buf2)

		case script.OP_2SWAP:
			if len(ip.Stack) < 4 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			n := len(ip.Stack)
			buf1, buf2 := ip.Stack[n-4], ip.Stack[n-3]
			ip.Stack = append(ip.Stack[:n-4], ip.Stack[n-2:]...)
			ip.push(buf1)
			ip.push(buf2)

		case script.OP_IFDUP:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			top := ip.Stack[len(ip.Stack)-1]
			if CastToBool(top) {
				ip.push(top)
			}

		case script.OP_DEPTH:
			ip.pushNum(big.NewInt(int64(len(ip.Stack))))

		case script.OP_DROP:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.pop()

		case script.OP_DUP:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.push(ip.Stack[len(ip.Stack)-1])

		case script.OP_NIP:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			top := ip.pop()
			ip.pop()
			ip.push(top)

		case script.OP_OVER:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.push(ip.Stack[len(ip.Stack)-2])

		case script.OP_PICK, script.OP_ROLL:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			num := ip.popNum()
			if num.IsNegative() || !num.Num.IsInt64() || num.ToInt() >= len(ip.Stack) {
				ip.ErrStr = errInvalidStackOp
				break
			}
			idx := len(ip.Stack) - num.ToInt() - 1
			if opcode == script.OP_PICK {
				ip.push(ip.Stack[idx])
			} else {
				buf := ip.Stack[idx]
				ip.Stack = append(ip.Stack[:idx], ip.Stack[idx+1:]...)
				ip.push(buf)
			}

		case script.OP_ROT:
			if len(ip.Stack) < 3 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			idx := len(ip.Stack) - 3
			buf := ip.Stack[idx]
			ip.Stack = append(ip.Stack[:idx], ip.Stack[idx+1:]...)
			ip.push(buf)

		case script.OP_SWAP:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			n := len(ip.Stack)
			ip.Stack[n-2], ip.Stack[n-1] = ip.Stack[n-1], ip.Stack[n-2]

		case script.OP_TUCK:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			n := len(ip.Stack)
			a, b := ip.Stack[n-2], ip.Stack[n-1]
			ip.Stack = append(ip.Stack[:n-2], b, a, b)

		case script.OP_CAT:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			buf1 := ip.pop()
			buf2 := ip.pop()
			ip.push(append(append([]byte(nil), buf2...), buf1...))

		case script.OP_SUBSTR:
			if len(ip.Stack) < 3 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			lenNum := ip.popNum()
			startNum := ip.popNum()
			buf := ip.pop()
			if startNum.IsNegative() || lenNum.IsNegative() ||
				new(big.Int).Add(startNum.Num, lenNum.Num).Cmp(big.NewInt(int64(len(buf)))) > 0 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			start, length := startNum.ToInt(), lenNum.ToInt()
			ip.push(append([]byte(nil), buf[start:start+length]...))

		case script.OP_LEFT, script.OP_RIGHT:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			lenNum := ip.popNum()
			buf := ip.pop()
			if lenNum.IsNegative() || lenNum.Num.Cmp(big.NewInt(int64(len(buf)))) > 0 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			n := lenNum.ToInt()
			if opcode == script.OP_LEFT {
				ip.push(append([]byte(nil), buf[:n]...))
			} else {
				ip.push(append([]byte(nil), buf[len(buf)-n:]...))
			}

		case script.OP_SIZE:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.pushNum(big.NewInt(int64(len(ip.Stack[len(ip.Stack)-1]))))

		case script.OP_INVERT:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			buf := append([]byte(nil), ip.pop()...)
			for i := range buf {
				buf[i] = ^buf[i]
			}
			ip.push(buf)

		case script.OP_AND, script.OP_OR, script.OP_XOR:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			buf1 := ip.pop()
			buf2 := ip.pop()
			if len(buf1) != len(buf2) {
				ip.ErrStr = errInvalidStackOp
				break
			}
			out := make([]byte, len(buf1))
			for i := range buf1 {
				switch opcode {
				case script.OP_AND:
					out[i] = buf1[i] & buf2[i]
				case script.OP_OR:
					out[i] = buf1[i] | buf2[i]
				default:
					out[i] = buf1[i] ^ buf2[i]
				}
			}
			ip.push(out)

		case script.OP_EQUAL:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			ip.pushBool(bytes.Equal(ip.pop(), ip.pop()))

		case script.OP_EQUALVERIFY:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			if !bytes.Equal(ip.pop(), ip.pop()) {
				ip.ErrStr = errEqualVerifyFailed
			}

		case script.OP_1ADD, script.OP_1SUB, script.OP_2MUL, script.OP_2DIV,
			script.OP_NEGATE, script.OP_ABS, script.OP_NOT, script.OP_0NOTEQUAL:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			num := ip.popNum()
			out := new(big.Int)
			switch opcode {
			case script.OP_1ADD:
				out.Add(num.Num, big.NewInt(1))
			case script.OP_1SUB:
				out.Sub(num.Num, big.NewInt(1))
			case script.OP_2MUL:
				out.Mul(num.Num, big.NewInt(2))
			case script.OP_2DIV:
				out.Quo(num.Num, big.NewInt(2))
			case script.OP_NEGATE:
				out.Neg(num.Num)
			case script.OP_ABS:
				out.Abs(num.Num)
			case script.OP_NOT:
				if num.Num.Sign() == 0 {
					out.SetInt64(1)
				}
			case script.OP_0NOTEQUAL:
				if num.Num.Sign() != 0 {
					out.SetInt64(1)
				}
			}
			ip.pushNum(out)

		case script.OP_ADD, script.OP_SUB, script.OP_MUL, script.OP_DIV,
			script.OP_MOD, script.OP_LSHIFT, script.OP_RSHIFT:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			num1 := ip.popNum()
			num2 := ip.popNum()
			out := new(big.Int)
			switch opcode {
			case script.OP_ADD:
				out.Add(num1.Num, num2.Num)
			case script.OP_SUB:
				out.Sub(num2.Num, num1.Num)
			case script.OP_MUL:
				out.Mul(num1.Num, num2.Num)
			case script.OP_DIV:
				if num1.Num.Sign() == 0 {
					ip.ErrStr = errDivisionByZero
				} else {
					out.Quo(num2.Num, num1.Num)
				}
			case script.OP_MOD:
				if num1.Num.Sign() == 0 {
					ip.ErrStr = errDivisionByZero
				} else {
					out.Rem(num2.Num, num1.Num)
				}
			case script.OP_LSHIFT:
				if num1.IsNegative() {
					ip.ErrStr = errInvalidStackOp
				} else {
					out.Lsh(num2.Num, uint(num1.ToU64()))
				}
			case script.OP_RSHIFT:
				if num1.IsNegative() {
					ip.ErrStr = errInvalidStackOp
				} else {
					out.Rsh(num2.Num, uint(num1.ToU64()))
				}
			}
			if ip.ErrStr == "" {
				ip.pushNum(out)
			}

		case script.OP_BOOLAND, script.OP_BOOLOR:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			bool1 := CastToBool(ip.pop())
			bool2 := CastToBool(ip.pop())
			if opcode == script.OP_BOOLAND {
				ip.pushBool(bool1 && bool2)
			} else {
				ip.pushBool(bool1 || bool2)
			}

		case script.OP_NUMEQUAL, script.OP_NUMNOTEQUAL, script.OP_LESSTHAN,
			script.OP_GREATERTHAN, script.OP_LESSTHANOREQUAL,
			script.OP_GREATERTHANOREQUAL:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			num1 := ip.popNum()
			num2 := ip.popNum()
			cmp := num2.Cmp(num1)
			switch opcode {
			case script.OP_NUMEQUAL:
				ip.pushBool(cmp == 0)
			case script.OP_NUMNOTEQUAL:
				ip.pushBool(cmp != 0)
			case script.OP_LESSTHAN:
				ip.pushBool(cmp < 0)
			case script.OP_GREATERTHAN:
				ip.pushBool(cmp > 0)
			case script.OP_LESSTHANOREQUAL:
				ip.pushBool(cmp <= 0)
			case script.OP_GREATERTHANOREQUAL:
				ip.pushBool(cmp >= 0)
			}

		case script.OP_NUMEQUALVERIFY:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			if ip.popNum().Cmp(ip.popNum()) != 0 {
				ip.ErrStr = errNumEqualVerifyFailed
			}

		case script.OP_MIN, script.OP_MAX:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			num1 := ip.popNum()
			num2 := ip.popNum()
			pickSecond := num2.Cmp(num1) < 0
			if opcode == script.OP_MAX {
				pickSecond = num2.Cmp(num1) > 0
			}
			if pickSecond {
				ip.push(num2.ToBuf())
			} else {
				ip.push(num1.ToBuf())
			}

		case script.OP_WITHIN:
			// (x min max -- bool)
			if len(ip.Stack) < 3 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			maxNum := ip.popNum()
			minNum := ip.popNum()
			x := ip.popNum()
			ip.pushBool(x.Cmp(minNum) >= 0 && x.Cmp(maxNum) < 0)

		case script.OP_BLAKE3:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			h := hash.Blake3(ip.pop())
			ip.push(h[:])

		case script.OP_DOUBLEBLAKE3:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			h := hash.DoubleBlake3(ip.pop())
			ip.push(h[:])

		case script.OP_CHECKSIG, script.OP_CHECKSIGVERIFY:
			if len(ip.Stack) < 2 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			pubKeyBuf := ip.pop()
			if len(pubKeyBuf) != keys.PubKeySize {
				ip.ErrStr = errInvalidPubKeyLen
				break
			}
			sigBuf := ip.pop()
			if len(sigBuf) != tx.TxSignatureSize {
				ip.ErrStr = errInvalidSigLen
				break
			}
			success := ip.checkSig(sigBuf, pubKeyBuf)
			ip.pushBool(success)
			if opcode == script.OP_CHECKSIGVERIFY && !success {
				ip.ErrStr = errCheckSigVerifyFailed
			}

		case script.OP_CHECKMULTISIG, script.OP_CHECKMULTISIGVERIFY:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			nKeysNum := ip.popNum()
			if nKeysNum.IsNegative() || nKeysNum.Num.Cmp(big.NewInt(16)) > 0 {
				ip.ErrStr = errInvalidKeyCount
				break
			}
			nKeys := nKeysNum.ToInt()
			if len(ip.Stack) < nKeys+1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			pubKeys := make([][]byte, 0, nKeys)
			badKey := false
			for i := 0; i < nKeys; i++ {
				pubKeyBuf := ip.pop()
				if len(pubKeyBuf) != keys.PubKeySize {
					ip.ErrStr = errInvalidPubKeyLen
					badKey = true
					break
				}
				pubKeys = append(pubKeys, pubKeyBuf)
			}
			if badKey {
				break
			}
			nSigsNum := ip.popNum()
			if nSigsNum.IsNegative() || nSigsNum.Cmp(nKeysNum) > 0 {
				ip.ErrStr = errInvalidSigCount
				break
			}
			nSigs := nSigsNum.ToInt()
			if len(ip.Stack) < nSigs {
				ip.ErrStr = errInvalidStackOp
				break
			}
			sigs := make([][]byte, 0, nSigs)
			badSig := false
			for i := 0; i < nSigs; i++ {
				sigBuf := ip.pop()
				if len(sigBuf) != tx.TxSignatureSize {
					ip.ErrStr = errInvalidSigLen
					badSig = true
					break
				}
				sigs = append(sigs, sigBuf)
			}
			if badSig {
				break
			}
			matched := 0
			for _, sigBuf := range sigs {
				for j := 0; j < len(pubKeys); j++ {
					if ip.checkSig(sigBuf, pubKeys[j]) {
						matched++
						pubKeys = append(pubKeys[:j], pubKeys[j+1:]...)
						break
					}
				}
			}
			success := matched == nSigs
			ip.pushBool(success)
			if opcode == script.OP_CHECKMULTISIGVERIFY && !success {
				ip.ErrStr = errCheckMultiSigVerify
			}

		case script.OP_CHECKLOCKABSVERIFY:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			num := script.ScriptNumFromBuf(ip.Stack[len(ip.Stack)-1])
			if num.IsNegative() {
				ip.ErrStr = errNegativeLockAbs
				break
			}
			if new(big.Int).SetUint64(ip.Tx.LockAbs).Cmp(num.Num) < 0 {
				ip.ErrStr = errLockAbsNotMet
			}

		case script.OP_CHECKLOCKRELVERIFY:
			if len(ip.Stack) < 1 {
				ip.ErrStr = errInvalidStackOp
				break
			}
			num := script.ScriptNumFromBuf(ip.Stack[len(ip.Stack)-1])
			if num.IsNegative() {
				ip.ErrStr = errNegativeLockRel
				break
			}
			lockRel := big.NewInt(int64(ip.Tx.Inputs[ip.NIn].LockRel))
			if lockRel.Cmp(num.Num) < 0 {
				ip.ErrStr = errLockRelNotMet
			}

		default:
			ip.ErrStr = errInvalidOpcode
		}

		if ip.ErrStr != "" {
			break
		}
		ip.PC++
	}

	if len(ip.Stack) > 0 {
		ip.ReturnValue = ip.Stack[len(ip.Stack)-1]
	} else {
		ip.ReturnValue = []byte{}
	}
	success := ip.ErrStr == "" && CastToBool(ip.ReturnValue)
	ip.ReturnSuccess = &success
	return success
}

// checkSig verifies one tagged signature against one public key using
// the transaction's sighash for the executed script.
func (ip *Interpreter) checkSig(sigBuf, pubKeyBuf []byte) bool {
	sig, err := tx.TxSignatureFromBuf(sigBuf)
	if err != nil {
		return false
	}
	var pubBuf [keys.PubKeySize]byte
	copy(pubBuf[:], pubKeyBuf)
	pubKey, err := keys.NewPubKey(pubBuf)
	if err != nil {
		return false
	}
	return ip.Tx.VerifyInput(ip.NIn, pubKey, sig, ip.Script.ToBuf(), ip.Value, ip.HashCache)
}
