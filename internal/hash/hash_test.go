package hash

import (
	"encoding/hex"
	"testing"
)

func TestBlake3(t *testing.T) {
	// Known BLAKE3 vector for empty input.
	got := Blake3(nil)
	want := "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("Blake3(nil) = %x, want %s", got, want)
	}
}

func TestDoubleBlake3(t *testing.T) {
	inner := Blake3([]byte("data"))
	outer := Blake3(inner[:])
	got := DoubleBlake3([]byte("data"))
	if got != outer {
		t.Error("DoubleBlake3 does not equal Blake3(Blake3(buf))")
	}
}

func TestSha256(t *testing.T) {
	got := Sha256([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("Sha256(abc) = %x, want %s", got, want)
	}
}

func TestMac_KeyedDiffersFromPlain(t *testing.T) {
	var key [32]byte
	key[0] = 1
	msg := []byte("message")

	plain := Blake3(msg)
	mac := Mac(key, msg)
	if plain == mac {
		t.Error("keyed MAC must differ from plain hash")
	}

	// Deterministic for same key and message.
	if Mac(key, msg) != mac {
		t.Error("MAC not deterministic")
	}

	var key2 [32]byte
	key2[0] = 2
	if Mac(key2, msg) == mac {
		t.Error("different keys must produce different MACs")
	}
}
