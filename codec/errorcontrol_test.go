package codec

import (
	"testing"

	"github.com/wippyai/eds-runtime/datasheet"
)

func TestErrorControlCompute(t *testing.T) {
	check := []byte("123456789")
	tests := []struct {
		name string
		kind datasheet.ErrorControl
		data []byte
		want uint64
	}{
		{"crc16-check", datasheet.ErrCtlCRC16CCITT, check, 0x29B1},
		{"crc16-empty", datasheet.ErrCtlCRC16CCITT, nil, 0xFFFF},
		{"crc8-check", datasheet.ErrCtlCRC8, check, 0xF4},
		{"crc8-empty", datasheet.ErrCtlCRC8, nil, 0x00},
		{"checksum8", datasheet.ErrCtlChecksum8, []byte{1, 2, 3}, 0xF9},
		{"checksum8-wrap", datasheet.ErrCtlChecksum8, []byte{0xFF, 0x01}, 0xFF},
		{"checksum16-even", datasheet.ErrCtlChecksum16, []byte{0x12, 0x34, 0x56, 0x78}, 0x9753},
		{"checksum16-odd", datasheet.ErrCtlChecksum16, []byte{0x12, 0x34, 0x56}, 0x97CB},
		{"xor", datasheet.ErrCtlXOR, []byte{0x12, 0x34, 0x56}, 0x70},
		{"none", datasheet.ErrCtlNone, check, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorControlCompute(tt.kind, tt.data); got != tt.want {
				t.Errorf("got %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestErrorControlExclude(t *testing.T) {
	t.Run("full-field", func(t *testing.T) {
		// A field covering the whole object leaves nothing to digest.
		wire := []byte{0xDE, 0xAD}
		if got := errorControlExclude(datasheet.ErrCtlCRC16CCITT, wire, 16, 0, 16); got != 0xFFFF {
			t.Errorf("crc16 over empty remainder = %#x, want 0xFFFF", got)
		}
		if got := errorControlExclude(datasheet.ErrCtlChecksum8, wire, 16, 0, 16); got != 0xFF {
			t.Errorf("checksum8 over empty remainder = %#x, want 0xFF", got)
		}
	})

	t.Run("aligned-field", func(t *testing.T) {
		// Byte-aligned field: excluding it must agree with the plain
		// computation over the surviving bytes at their original indexes.
		wire := []byte{0x11, 0x22, 0x33, 0x44}
		got := errorControlExclude(datasheet.ErrCtlChecksum16, wire, 32, 8, 8)
		// 0x1100 + 0x3300 + 0x44, complemented.
		if want := uint64(0xBBBB); got != want {
			t.Errorf("got %#x, want %#x", got, want)
		}
	})

	t.Run("trailing-field", func(t *testing.T) {
		// A field at the tail is invisible to CRC: skipping trailing
		// bytes and never feeding them are the same thing.
		payload := []byte("12345678")
		wire := append(append([]byte{}, payload...), 0xAA, 0x55)
		got := errorControlExclude(datasheet.ErrCtlCRC16CCITT, wire, 80, 64, 16)
		if want := ErrorControlCompute(datasheet.ErrCtlCRC16CCITT, payload); got != want {
			t.Errorf("got %#x, want %#x", got, want)
		}
	})

	t.Run("boundary-masking", func(t *testing.T) {
		// Field spans bits 4..12: both boundary bytes are shared with
		// neighbors and contribute with the field's bits zeroed.
		wire := []byte{0xAB, 0xCD}
		got := errorControlExclude(datasheet.ErrCtlChecksum8, wire, 16, 4, 8)
		// Surviving bits: 0xA0 and 0x0D.
		if want := uint64(^uint8(0xA0 + 0x0D)); got != want {
			t.Errorf("got %#x, want %#x", got, want)
		}
	})

	t.Run("tail-bits-masked", func(t *testing.T) {
		// Object is 12 bits: the low 4 bits of the last byte belong to a
		// neighboring object and must not contribute.
		wire := []byte{0xAB, 0xCD}
		got := errorControlExclude(datasheet.ErrCtlChecksum16, wire, 12, 0, 8)
		// Only 0xC0 at byte index 1 survives.
		if want := uint64(^uint16(0x00C0)); got != want {
			t.Errorf("got %#x, want %#x", got, want)
		}
	})
}
