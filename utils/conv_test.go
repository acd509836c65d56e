package utils

import (
	"bytes"
	"testing"
)

var stringTests = []struct {
	in  []byte
	out string
}{
	{[]byte{}, ""},
	{[]byte("OCTM"), "OCTM"},
	{[]byte("diffuse\x00junk"), "diffuse"},
	{[]byte{'R', 'A', 'W', 0}, "RAW"},
}

func TestBytesToString(t *testing.T) {
	for _, test := range stringTests {
		if result := BytesToString(test.in); result != test.out {
			t.Errorf("BytesToString(%v)=%q; expected %q", test.in, result, test.out)
		}
	}
}

func TestStringToBytesRoundtrip(t *testing.T) {
	for _, s := range []string{"", "INDX", "mesh comment"} {
		if result := BytesToString(StringToBytes(s, false)); result != s {
			t.Errorf("roundtrip of %q = %q", s, result)
		}
	}

	if !bytes.HasSuffix(StringToBytes("VERT", true), []byte{0}) {
		t.Error("nil terminated conversion lost terminator")
	}
}

func TestAsBytesReadBytes(t *testing.T) {
	in := struct {
		A uint32
		B float32
	}{0xdeadbeef, 1.5}

	raw := AsBytes(&in)
	if len(raw) != 8 {
		t.Fatalf("AsBytes produced %d bytes; expected 8", len(raw))
	}

	var out struct {
		A uint32
		B float32
	}
	ReadBytes(&out, raw)
	if out != in {
		t.Errorf("roundtrip = %+v; expected %+v", out, in)
	}
}
