package ebxbuf

import (
	"bytes"
	"testing"
)

func TestHex_RoundTrip(t *testing.T) {
	buf := []byte{0x00, 0xab, 0xff}
	s := ToHex(buf)
	if s != "00abff" {
		t.Errorf("ToHex = %q, want 00abff", s)
	}
	got, err := FromHex(s)
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	if !bytes.Equal(got, buf) {
		t.Errorf("round trip = %x, want %x", got, buf)
	}
}

func TestHex_Invalid(t *testing.T) {
	if _, err := FromHex("zz"); err == nil {
		t.Error("invalid hex accepted")
	}
}

func TestFromHex32(t *testing.T) {
	s := "ff00000000000000000000000000000000000000000000000000000000000001"
	got, err := FromHex32(s)
	if err != nil {
		t.Fatalf("FromHex32: %v", err)
	}
	if got[0] != 0xff || got[31] != 0x01 {
		t.Errorf("FromHex32 = %x", got)
	}
	if _, err := FromHex32("abcd"); err == nil {
		t.Error("short value accepted by FromHex32")
	}
}
