package bits

import (
	"bytes"
	"testing"
)

func TestWriteRead_Aligned(t *testing.T) {
	buf := make([]byte, 8)
	Write(buf, 0, 16, 0xBEEF)
	if got := Read(buf, 0, 16); got != 0xBEEF {
		t.Fatalf("Read = %#x, want 0xBEEF", got)
	}
	if buf[0] != 0xBE || buf[1] != 0xEF {
		t.Fatalf("bytes = %x, want beef", buf[:2])
	}
}

func TestWriteRead_Unaligned(t *testing.T) {
	tests := []struct {
		name  string
		pos   uint32
		count uint32
		val   uint64
	}{
		{"3 bits at 5", 5, 3, 0b101},
		{"13 bits at 0", 0, 13, 8191},
		{"13 bits at 3", 3, 13, 0x1234 & 0x1FFF},
		{"byte spanning", 6, 12, 0xABC},
		{"64 bits at 1", 1, 64, 0xDEADBEEFCAFEF00D},
		{"single bit", 17, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 16)
			Write(buf, tt.pos, tt.count, tt.val)
			if got := Read(buf, tt.pos, tt.count); got != tt.val&Mask(tt.count) {
				t.Errorf("Read = %#x, want %#x", got, tt.val&Mask(tt.count))
			}
		})
	}
}

func TestWrite_PreservesNeighbors(t *testing.T) {
	buf := make([]byte, 4)
	for i := range buf {
		buf[i] = 0xFF
	}
	Write(buf, 10, 6, 0)
	if buf[0] != 0xFF {
		t.Errorf("leading byte disturbed: %#x", buf[0])
	}
	if buf[1] != 0xC0 {
		t.Errorf("field byte = %#x, want 0xC0 (top 2 bits preserved)", buf[1])
	}
	if buf[2] != 0xFF || buf[3] != 0xFF {
		t.Errorf("trailing bytes disturbed: %x", buf[2:])
	}

	// The scenario from the packing contract: a 13-bit field at a byte
	// boundary followed by a 3-bit field sharing its last byte. Writing one
	// must not disturb the other regardless of order.
	buf = make([]byte, 2)
	Write(buf, 0, 13, 8191)
	Write(buf, 13, 3, 5)
	if got := Read(buf, 0, 13); got != 8191 {
		t.Errorf("13-bit field = %d, want 8191", got)
	}
	if got := Read(buf, 13, 3); got != 5 {
		t.Errorf("3-bit field = %d, want 5", got)
	}

	buf = make([]byte, 2)
	Write(buf, 13, 3, 5)
	Write(buf, 0, 13, 8191)
	if got := Read(buf, 13, 3); got != 5 {
		t.Errorf("3-bit field packed first = %d, want 5", got)
	}
}

func TestWriteBytes_ReadBytes(t *testing.T) {
	src := []byte{0xAB, 0xCD, 0xE0}
	dst := make([]byte, 4)
	WriteBytes(dst, 3, src, 20)

	out := make([]byte, 3)
	ReadBytes(dst, 3, out, 20)
	want := []byte{0xAB, 0xCD, 0xE0}
	if !bytes.Equal(out, want) {
		t.Fatalf("round trip = %x, want %x", out, want)
	}
}

func TestMask(t *testing.T) {
	if Mask(0) != 0 {
		t.Error("Mask(0) != 0")
	}
	if Mask(64) != ^uint64(0) {
		t.Error("Mask(64) not all ones")
	}
	if Mask(13) != 0x1FFF {
		t.Errorf("Mask(13) = %#x", Mask(13))
	}
}
