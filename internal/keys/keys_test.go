package keys

import (
	"testing"
)

func TestPubKeyFromPrivKey_KnownVector(t *testing.T) {
	priv, err := PrivKeyFromHex("d9486fac4a1de03ca8c562291182e58f2f3e42a82eaf3152ccf744b3a8b3b725")
	if err != nil {
		t.Fatalf("PrivKeyFromHex: %v", err)
	}
	pub, err := PubKeyFromPrivKey(priv)
	if err != nil {
		t.Fatalf("PubKeyFromPrivKey: %v", err)
	}
	want := "0377b8ba0a276329096d51275a8ab13809b4cd7af856c084d60784ed8e4133d987"
	if pub.ToHex() != want {
		t.Errorf("pub = %s, want %s", pub.ToHex(), want)
	}
}

func TestPrivKey_Invalid(t *testing.T) {
	var zero [PrivKeySize]byte
	if _, err := NewPrivKey(zero); err == nil {
		t.Error("zero private key must be rejected")
	}
	if _, err := PrivKeyFromHex("00ff"); err == nil {
		t.Error("short private key must be rejected")
	}
}

func TestSignVerify(t *testing.T) {
	pair, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	var msg [32]byte
	copy(msg[:], []byte("a message digest padded to 32 by"))

	sig, err := Sign(msg, pair.PrivKey)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(sig, msg, pair.PubKey); err != nil {
		t.Errorf("Verify: %v", err)
	}

	// Deterministic nonce: same key and message yield the same signature.
	sig2, _ := Sign(msg, pair.PrivKey)
	if sig != sig2 {
		t.Error("signatures not deterministic")
	}

	// Tampered message must fail.
	msg[0] ^= 1
	if err := Verify(sig, msg, pair.PubKey); err == nil {
		t.Error("Verify accepted a tampered message")
	}
}

func TestVerify_WrongKey(t *testing.T) {
	pair1, _ := GenerateKeyPair()
	pair2, _ := GenerateKeyPair()

	var msg [32]byte
	sig, _ := Sign(msg, pair1.PrivKey)
	if err := Verify(sig, msg, pair2.PubKey); err == nil {
		t.Error("Verify accepted a signature from the wrong key")
	}
}

func TestSharedSecret_Symmetric(t *testing.T) {
	a, _ := GenerateKeyPair()
	b, _ := GenerateKeyPair()

	s1, err := SharedSecret(a.PrivKey, b.PubKey)
	if err != nil {
		t.Fatalf("SharedSecret: %v", err)
	}
	s2, err := SharedSecret(b.PrivKey, a.PubKey)
	if err != nil {
		t.Fatalf("SharedSecret: %v", err)
	}
	if string(s1) != string(s2) {
		t.Error("ECDH shared secrets do not agree")
	}
	if len(s1) != PubKeySize {
		t.Errorf("shared secret length = %d, want %d", len(s1), PubKeySize)
	}
}

func TestPkhKeyMap(t *testing.T) {
	pair, _ := GenerateKeyPair()
	pkh := PkhFromPubKey(pair.PubKey)

	pm := NewPkhKeyMap()
	pm.Add(pair, pkh.Buf)
	if got := pm.Get(pkh.Buf); got != pair {
		t.Error("Get did not return the added key pair")
	}
	pm.Remove(pkh.Buf)
	if pm.Get(pkh.Buf) != nil {
		t.Error("Get returned a removed key pair")
	}
}
