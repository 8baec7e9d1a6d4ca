package script

import (
	"bytes"
	"errors"
	"testing"
)

func TestScript_FromString(t *testing.T) {
	s, err := FromString("DUP BLAKE3 DOUBLEBLAKE3")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	want := []byte{OP_DUP, OP_BLAKE3, OP_DOUBLEBLAKE3}
	if !bytes.Equal(s.ToBuf(), want) {
		t.Errorf("ToBuf = %x, want %x", s.ToBuf(), want)
	}
	if s.String() != "DUP BLAKE3 DOUBLEBLAKE3" {
		t.Errorf("String = %q", s.String())
	}
}

func TestScript_WireForm(t *testing.T) {
	s, err := FromString("0xffff BLAKE3 DOUBLEBLAKE3")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	want := []byte{OP_PUSHDATA1, 0x02, 0xff, 0xff, 0xa6, 0xa7}
	if !bytes.Equal(s.ToBuf(), want) {
		t.Errorf("ToBuf = %x, want %x", s.ToBuf(), want)
	}

	s2, err := FromBuf(want)
	if err != nil {
		t.Fatalf("FromBuf: %v", err)
	}
	if s2.String() != "0xffff BLAKE3 DOUBLEBLAKE3" {
		t.Errorf("round trip String = %q", s2.String())
	}
}

func TestScript_RoundTrip(t *testing.T) {
	scripts := []string{
		"",
		"0xffff 0xffff",
		"DUP DOUBLEBLAKE3 EQUALVERIFY CHECKSIG",
		"IF 1 ELSE 0 ENDIF",
	}
	for _, str := range scripts {
		s, err := FromString(str)
		if err != nil {
			t.Fatalf("FromString(%q): %v", str, err)
		}
		buf := s.ToBuf()
		s2, err := FromBuf(buf)
		if err != nil {
			t.Fatalf("FromBuf(%x): %v", buf, err)
		}
		if !bytes.Equal(s2.ToBuf(), buf) {
			t.Errorf("round trip mismatch for %q", str)
		}
	}
}

func TestChunk_PushdataWidths(t *testing.T) {
	c1 := ChunkFromData(make([]byte, 3))
	if c1.Opcode != OP_PUSHDATA1 {
		t.Errorf("3 bytes -> opcode %#x, want PUSHDATA1", c1.Opcode)
	}
	c2 := ChunkFromData(make([]byte, 256))
	if c2.Opcode != OP_PUSHDATA2 {
		t.Errorf("256 bytes -> opcode %#x, want PUSHDATA2", c2.Opcode)
	}
	c4 := ChunkFromData(make([]byte, 65536))
	if c4.Opcode != OP_PUSHDATA4 {
		t.Errorf("65536 bytes -> opcode %#x, want PUSHDATA4", c4.Opcode)
	}

	for _, c := range []Chunk{c1, c2, c4} {
		got, err := ChunkFromBuf(c.ToBuf())
		if err != nil {
			t.Fatalf("ChunkFromBuf: %v", err)
		}
		if got.Opcode != c.Opcode || !bytes.Equal(got.Buf, c.Buf) {
			t.Error("chunk round trip mismatch")
		}
	}
}

func TestChunk_TruncatedImmediate(t *testing.T) {
	bad := [][]byte{
		{OP_PUSHDATA1, 2},
		{OP_PUSHDATA2, 0, 2},
		{OP_PUSHDATA4, 0, 0, 0, 2},
	}
	for _, buf := range bad {
		if _, err := ChunkFromBuf(buf); !errors.Is(err, ErrInvalidChunk) {
			t.Errorf("ChunkFromBuf(%x) = %v, want ErrInvalidChunk", buf, err)
		}
	}
}

func TestChunk_NonMinimalPush(t *testing.T) {
	// PUSHDATA2 carrying 2 bytes should have been PUSHDATA1.
	buf := []byte{OP_PUSHDATA2, 0x00, 0x02, 0xab, 0xcd}
	if _, err := ChunkFromBuf(buf); !errors.Is(err, ErrNonMinimalPush) {
		t.Errorf("ChunkFromBuf = %v, want ErrNonMinimalPush", err)
	}
	s, err := FromBufAllowNonMinimal(buf)
	if err != nil {
		t.Fatalf("FromBufAllowNonMinimal: %v", err)
	}
	if len(s.Chunks) != 1 || !bytes.Equal(s.Chunks[0].Buf, []byte{0xab, 0xcd}) {
		t.Error("relaxed decode mismatch")
	}
}

func TestScript_PkhTemplates(t *testing.T) {
	var pkh [32]byte
	pkh[0] = 0xaa

	out := FromPkhOutput(pkh)
	if !out.IsPkhOutput() {
		t.Error("FromPkhOutput does not match IsPkhOutput")
	}
	out.Chunks[0].Opcode = OP_BLAKE3
	if out.IsPkhOutput() {
		t.Error("mutated script still matches IsPkhOutput")
	}

	in := FromPkhInputPlaceholder()
	if !in.IsPkhInput() {
		t.Error("placeholder does not match IsPkhInput")
	}
	if !in.IsPushOnly() {
		t.Error("pkh input must be push only")
	}
}

func TestScript_PkhxTemplates(t *testing.T) {
	var pkh, rpkh [32]byte
	pkh[0], rpkh[0] = 1, 2

	if !FromPkhx1hOutput(pkh).IsPkhx1hOutput() {
		t.Error("pkhx 1h output template mismatch")
	}
	if !FromPkhx90dOutput(pkh).IsPkhx90dOutput() {
		t.Error("pkhx 90d output template mismatch")
	}
	if FromPkhx1hOutput(pkh).IsPkhx90dOutput() {
		t.Error("1h output must not match 90d template")
	}
	if !FromPkhxr1h40mOutput(pkh, rpkh).IsPkhxr1h40mOutput() {
		t.Error("pkhxr 1h40m output template mismatch")
	}
	if !FromPkhxr90d60dOutput(pkh, rpkh).IsPkhxr90d60dOutput() {
		t.Error("pkhxr 90d60d output template mismatch")
	}

	if !FromUnexpiredPkhxInputPlaceholder().IsUnexpiredPkhxInput() {
		t.Error("unexpired pkhx input mismatch")
	}
	if !FromExpiredPkhxInput().IsExpiredPkhxInput() {
		t.Error("expired pkhx input mismatch")
	}
	if !FromRecoveryPkhxrInputPlaceholder().IsRecoveryPkhxrInput() {
		t.Error("recovery pkhxr input mismatch")
	}
	if !FromExpiredPkhxrInput().IsExpiredPkhxrInput() {
		t.Error("expired pkhxr input mismatch")
	}

	// Locked input scripts stay push only so they can seed a VM stack.
	if !FromUnexpiredPkhxInputPlaceholder().IsPushOnly() {
		t.Error("unexpired pkhx input must be push only")
	}
	if !FromRecoveryPkhxrInputPlaceholder().IsPushOnly() {
		t.Error("recovery pkhxr input must be push only")
	}
}

func TestScript_ExpiryPredicates(t *testing.T) {
	if IsPkhx1hExpired(5, 0) {
		t.Error("block 5 should not expire a 1h lock funded at 0")
	}
	if !IsPkhx1hExpired(6, 0) {
		t.Error("block 6 should expire a 1h lock funded at 0")
	}
	if !IsPkhxr1h40mRecoverable(4, 0) {
		t.Error("block 4 should open the 40m recovery window")
	}
	if IsPkhxr90d60dRecoverable(8639, 0) {
		t.Error("block 8639 should not open the 60d recovery window")
	}
	if !IsPkhx90dExpired(12960, 0) {
		t.Error("block 12960 should expire a 90d lock funded at 0")
	}
}

func TestScript_MultiSigTemplates(t *testing.T) {
	pubs := [][]byte{make([]byte, 33), make([]byte, 33), make([]byte, 33)}
	out := FromMultiSigOutput(2, pubs)
	if !out.IsMultiSigOutput() {
		t.Error("multisig output template mismatch")
	}
	if out.Chunks[0].Opcode != OP_2 {
		t.Errorf("m chunk = %#x, want OP_2", out.Chunks[0].Opcode)
	}
	if out.Chunks[4].Opcode != OP_3 {
		t.Errorf("n chunk = %#x, want OP_3", out.Chunks[4].Opcode)
	}

	in := FromMultiSigInput([][]byte{make([]byte, 65), make([]byte, 65)})
	if !in.IsPushOnly() {
		t.Error("multisig input must be push only")
	}
}

func TestScript_IsPushOnly(t *testing.T) {
	pushy, _ := FromString("0 1 16 1NEGATE 0xdeadbeef")
	if !pushy.IsPushOnly() {
		t.Error("push-only script misclassified")
	}
	notPushy, _ := FromString("0xdeadbeef DUP")
	if notPushy.IsPushOnly() {
		t.Error("DUP script classified as push only")
	}
}
