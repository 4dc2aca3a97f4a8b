package bytesutil

import (
	"bytes"
	"testing"
)

func TestMemcpy(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5}
	dest := make([]byte, 3)
	Memcpy(dest, src, 1)
	if !bytes.Equal(dest, []byte{2, 3, 4}) {
		t.Fatalf("got %v", dest)
	}
}

func TestMemcpyOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Memcpy(make([]byte, 3), []byte{1, 2}, 0)
}

func TestAssertSubarray(t *testing.T) {
	arr := []byte{0xaa, 1, 2, 3, 0xbb}
	if err := AssertSubarray([]byte{1, 2, 3}, arr, 3, 1); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := AssertSubarray([]byte{1, 2, 4}, arr, 3, 1); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if err := AssertSubarray([]byte{1, 2, 3}, arr, 10, 1); err == nil {
		t.Fatalf("expected bounds error")
	}
}

func TestByteToNibbles(t *testing.T) {
	hi, lo := ByteToNibbles(0xAB)
	if hi != 0xA || lo != 0xB {
		t.Fatalf("got hi=%x lo=%x", hi, lo)
	}
}

func TestExpandNibbles(t *testing.T) {
	got := ExpandNibbles([]byte{0x12, 0xAB})
	want := []byte{1, 2, 0xA, 0xB}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestByteValue(t *testing.T) {
	cases := []struct {
		in      []byte
		wantN   int
		wantHex []byte
	}{
		{[]byte{0, 0, 0, 5}, 1, []byte{5, 0, 0, 0}},
		{[]byte{0, 0, 0, 0}, 0, []byte{0, 0, 0, 0}},
		{[]byte{1, 2, 3, 4}, 4, []byte{1, 2, 3, 4}},
		{[]byte{0, 0xff}, 1, []byte{0xff, 0}},
	}
	for _, c := range cases {
		shifted, n := ByteValue(c.in)
		if n != c.wantN {
			t.Fatalf("in=%v got n=%d want %d", c.in, n, c.wantN)
		}
		if !bytes.Equal(shifted, c.wantHex) {
			t.Fatalf("in=%v got shifted=%v want %v", c.in, shifted, c.wantHex)
		}
		for i := n; i < len(shifted); i++ {
			if shifted[i] != 0 {
				t.Fatalf("shifted[%d:] not zero: %v", n, shifted)
			}
		}
	}
}

func TestLeftByteShift(t *testing.T) {
	got := LeftByteShift([]byte{1, 2, 3, 4}, 2)
	want := []byte{3, 4, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
