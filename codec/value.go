package codec

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

// LoadValue reads one scalar from its native image into a tagged value.
// buf must start at the field and cover the descriptor's native width.
// Dispatch is by exact (kind, width) pairing over the standard widths, with
// two non-standard cases: oversize floats alias the leading float64
// (max-precision aliasing), and binary blobs reference their bytes without
// copying.
func LoadValue(d *datasheet.Descriptor, buf []byte) (datasheet.Value, error) {
	if len(buf) < int(d.Size.Bytes) {
		return datasheet.Value{}, errors.BufferSize(errors.PhaseResolve, nil, int(d.Size.Bytes)*8, len(buf)*8)
	}
	switch d.Kind {
	case datasheet.KindUnsignedInt:
		return datasheet.UnsignedValue(loadUint(buf, d.Size.Bytes)), nil
	case datasheet.KindSignedInt:
		return datasheet.SignedValue(loadInt(buf, d.Size.Bytes)), nil
	case datasheet.KindFloat:
		switch d.Size.Bytes {
		case 4:
			return datasheet.FloatValue(float64(math.Float32frombits(binary.NativeEndian.Uint32(buf)))), nil
		default:
			// 8-byte natives and the 16-byte quad alias both hold a float64
			// in their leading word.
			return datasheet.FloatValue(math.Float64frombits(binary.NativeEndian.Uint64(buf))), nil
		}
	case datasheet.KindBinary:
		return datasheet.BinaryValue(buf[:d.Size.Bytes]), nil
	}
	return datasheet.Value{}, errors.Unsupported(errors.PhaseResolve, "load of non-scalar kind "+d.Kind.String())
}

// StoreValue converts v to the descriptor's kind and writes it into the
// native image at buf. A conversion that bottoms out in a none value is
// reported as invalid data; binary stores truncate or zero-fill to the
// declared width.
func StoreValue(d *datasheet.Descriptor, buf []byte, v datasheet.Value) error {
	if len(buf) < int(d.Size.Bytes) {
		return errors.BufferSize(errors.PhaseResolve, nil, int(d.Size.Bytes)*8, len(buf)*8)
	}
	c := v.ConvertTo(d.Kind)
	if c.Kind == datasheet.ValueNone {
		return errors.InvalidData(errors.PhaseResolve, nil,
			"cannot store "+v.Kind.String()+" value into "+d.Kind.String()+" field")
	}
	switch d.Kind {
	case datasheet.KindUnsignedInt:
		storeUint(buf, d.Size.Bytes, c.Uint)
	case datasheet.KindSignedInt:
		storeUint(buf, d.Size.Bytes, uint64(c.Int))
	case datasheet.KindFloat:
		switch d.Size.Bytes {
		case 4:
			binary.NativeEndian.PutUint32(buf, math.Float32bits(float32(c.Flt)))
		default:
			binary.NativeEndian.PutUint64(buf, math.Float64bits(c.Flt))
			if d.Size.Bytes > 8 {
				clear(buf[8:d.Size.Bytes])
			}
		}
	case datasheet.KindBinary:
		n := copy(buf[:d.Size.Bytes], c.Bin)
		clear(buf[n:d.Size.Bytes])
	default:
		return errors.Unsupported(errors.PhaseResolve, "store of non-scalar kind "+d.Kind.String())
	}
	return nil
}

func loadUint(buf []byte, width uint32) uint64 {
	switch width {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(binary.NativeEndian.Uint16(buf))
	case 4:
		return uint64(binary.NativeEndian.Uint32(buf))
	default:
		return binary.NativeEndian.Uint64(buf)
	}
}

func loadInt(buf []byte, width uint32) int64 {
	switch width {
	case 1:
		return int64(int8(buf[0]))
	case 2:
		return int64(int16(binary.NativeEndian.Uint16(buf)))
	case 4:
		return int64(int32(binary.NativeEndian.Uint32(buf)))
	default:
		return int64(binary.NativeEndian.Uint64(buf))
	}
}

func storeUint(buf []byte, width uint32, v uint64) {
	switch width {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.NativeEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.NativeEndian.PutUint32(buf, uint32(v))
	default:
		binary.NativeEndian.PutUint64(buf, v)
	}
}
