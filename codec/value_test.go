package codec

import (
	"bytes"
	"testing"

	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

func TestLoadStoreValue(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		typ string
		v   datasheet.Value
	}{
		{"u8", datasheet.UnsignedValue(0xA5)},
		{"u16", datasheet.UnsignedValue(0xBEEF)},
		{"u32", datasheet.UnsignedValue(0xDEADBEEF)},
		{"s16", datasheet.SignedValue(-12345)},
		{"f32", datasheet.FloatValue(1.5)},
		{"f64", datasheet.FloatValue(-2.25)},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			d := f.desc(t, tt.typ)
			buf := make([]byte, d.Size.Bytes)
			if err := StoreValue(d, buf, tt.v); err != nil {
				t.Fatalf("StoreValue: %v", err)
			}
			got, err := LoadValue(d, buf)
			if err != nil {
				t.Fatalf("LoadValue: %v", err)
			}
			if got.Compare(tt.v) != 0 {
				t.Errorf("got %v, want %v", got, tt.v)
			}
		})
	}
}

func TestValueQuadAliasing(t *testing.T) {
	f := newFixture(t)
	d := f.desc(t, "f128")
	buf := make([]byte, d.Size.Bytes)
	for i := range buf {
		buf[i] = 0xEE
	}
	if err := StoreValue(d, buf, datasheet.FloatValue(3.75)); err != nil {
		t.Fatalf("StoreValue: %v", err)
	}
	// The value lives in the leading float64; the tail is cleared so the
	// native image is deterministic.
	if !bytes.Equal(buf[8:], make([]byte, 8)) {
		t.Errorf("quad tail not cleared: % X", buf[8:])
	}
	got, err := LoadValue(d, buf)
	if err != nil {
		t.Fatalf("LoadValue: %v", err)
	}
	if got.Flt != 3.75 {
		t.Errorf("got %v, want 3.75", got.Flt)
	}
}

func TestValueBinary(t *testing.T) {
	f := newFixture(t)
	d := f.desc(t, "bin24")

	t.Run("truncate", func(t *testing.T) {
		buf := make([]byte, d.Size.Bytes)
		long := datasheet.BinaryValue([]byte{1, 2, 3, 4, 5})
		if err := StoreValue(d, buf, long); err != nil {
			t.Fatalf("StoreValue: %v", err)
		}
		if !bytes.Equal(buf, []byte{1, 2, 3}) {
			t.Errorf("buf = % X, want 01 02 03", buf)
		}
	})
	t.Run("zero-fill", func(t *testing.T) {
		buf := []byte{0xFF, 0xFF, 0xFF}
		short := datasheet.BinaryValue([]byte{9})
		if err := StoreValue(d, buf, short); err != nil {
			t.Fatalf("StoreValue: %v", err)
		}
		if !bytes.Equal(buf, []byte{9, 0, 0}) {
			t.Errorf("buf = % X, want 09 00 00", buf)
		}
	})
	t.Run("load-references", func(t *testing.T) {
		buf := []byte{7, 8, 9, 0xAA}
		v, err := LoadValue(d, buf)
		if err != nil {
			t.Fatalf("LoadValue: %v", err)
		}
		if !bytes.Equal(v.Bin, []byte{7, 8, 9}) {
			t.Errorf("Bin = % X, want 07 08 09", v.Bin)
		}
	})
}

func TestValueErrors(t *testing.T) {
	f := newFixture(t)

	t.Run("short-load", func(t *testing.T) {
		_, err := LoadValue(f.desc(t, "u32"), make([]byte, 3))
		if !errors.IsKind(err, errors.KindBufferSize) {
			t.Errorf("err = %v, want buffer_size", err)
		}
	})
	t.Run("short-store", func(t *testing.T) {
		err := StoreValue(f.desc(t, "u32"), make([]byte, 3), datasheet.UnsignedValue(1))
		if !errors.IsKind(err, errors.KindBufferSize) {
			t.Errorf("err = %v, want buffer_size", err)
		}
	})
	t.Run("unconvertible-store", func(t *testing.T) {
		// Binary values have no integer rendering.
		err := StoreValue(f.desc(t, "u32"), make([]byte, 4), datasheet.BinaryValue([]byte{1}))
		if !errors.IsKind(err, errors.KindInvalidData) {
			t.Errorf("err = %v, want invalid_data", err)
		}
	})
	t.Run("composite-load", func(t *testing.T) {
		_, err := LoadValue(f.desc(t, "hdr"), make([]byte, 16))
		if !errors.IsKind(err, errors.KindUnsupported) {
			t.Errorf("err = %v, want unsupported", err)
		}
	})
}
