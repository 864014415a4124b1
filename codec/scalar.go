package codec

import (
	"math"

	"github.com/wippyai/eds-runtime/codec/internal/bits"
	"github.com/wippyai/eds-runtime/codec/internal/numenc"
	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

// Scalar leaf conversion: classify the pack style, run the intermediate
// encoding when the wire form is non-native, and feed the canonical result
// through the bit engine. The byte stride for little-endian numerics is
// expressed directly in writeNumber/readNumber rather than per-call.

// writeNumber lays a canonical value's low nbits down at pos. Big-endian
// fields are written value-MSB-first; little-endian fields are written
// least-significant byte first with the partial high chunk (the pad-bearing
// edge) last.
func writeNumber(wire []byte, pos, nbits uint32, val uint64, order datasheet.ByteOrder) {
	if order == datasheet.BigEndian {
		bits.Write(wire, pos, nbits, val)
		return
	}
	for nbits >= 8 {
		bits.Write(wire, pos, 8, val&0xFF)
		val >>= 8
		pos += 8
		nbits -= 8
	}
	if nbits > 0 {
		bits.Write(wire, pos, nbits, val&bits.Mask(nbits))
	}
}

// readNumber is the inverse of writeNumber.
func readNumber(wire []byte, pos, nbits uint32, order datasheet.ByteOrder) uint64 {
	if order == datasheet.BigEndian {
		return bits.Read(wire, pos, nbits)
	}
	var val uint64
	shift := uint32(0)
	for nbits >= 8 {
		val |= bits.Read(wire, pos, 8) << shift
		shift += 8
		pos += 8
		nbits -= 8
	}
	if nbits > 0 {
		val |= bits.Read(wire, pos, nbits) << shift
	}
	return val
}

// packScalar converts one scalar leaf from its native image to the wire.
func (c *Codec) packScalar(d *datasheet.Descriptor, nat []byte, wire []byte, bitPos uint32) error {
	w := d.Size.Bits
	switch d.Kind {
	case datasheet.KindUnsignedInt, datasheet.KindSignedInt:
		val, err := LoadValue(d, nat)
		if err != nil {
			return err
		}
		canonical, err := encodeInt(d, val)
		if err != nil {
			return err
		}
		if d.Number.BitInvert {
			canonical ^= bits.Mask(w)
		}
		writeNumber(wire, bitPos, w, canonical, d.Number.Order)
		return nil

	case datasheet.KindFloat:
		val, err := LoadValue(d, nat)
		if err != nil {
			return err
		}
		return c.packFloat(d, val.Flt, wire, bitPos)

	case datasheet.KindBinary:
		// Blobs stride left-to-right; trailing bits beyond the declared
		// width are dropped at the trailing edge.
		bits.WriteBytes(wire, bitPos, nat[:d.Size.Bytes], w)
		return nil
	}
	return errors.Unsupported(errors.PhasePack, "scalar pack of kind "+d.Kind.String())
}

func encodeInt(d *datasheet.Descriptor, v datasheet.Value) (uint64, error) {
	w := d.Size.Bits
	if w > 64 {
		return 0, errors.Unsupported(errors.PhasePack, "integer wider than 64 bits")
	}
	signed := d.Kind == datasheet.KindSignedInt
	switch d.Number.Encoding {
	case datasheet.TwosComplement:
		if signed {
			return uint64(v.Int) & bits.Mask(w), nil
		}
		return v.Uint & bits.Mask(w), nil
	case datasheet.SignMagnitude:
		return numenc.SignMagnitude(intOf(v, signed), w), nil
	case datasheet.OnesComplement:
		return numenc.OnesComplement(intOf(v, signed), w), nil
	case datasheet.BCDOctet, datasheet.PackedBCD:
		enc, ok := numenc.BCD(intOf(v, signed), w, d.Number.Encoding == datasheet.PackedBCD)
		if !ok {
			return 0, errors.InvalidData(errors.PhasePack, nil, "value not representable in BCD field")
		}
		return enc, nil
	}
	return 0, errors.Unsupported(errors.PhasePack, "integer encoding "+d.Number.Encoding.String())
}

func intOf(v datasheet.Value, signed bool) int64 {
	if signed {
		return v.Int
	}
	return int64(v.Uint)
}

func (c *Codec) packFloat(d *datasheet.Descriptor, f float64, wire []byte, bitPos uint32) error {
	w := d.Size.Bits
	switch d.Number.Encoding {
	case datasheet.IEEE754:
		switch w {
		case 16:
			c.writeNumberInv(d, wire, bitPos, w, uint64(numenc.Half(f)))
		case 32:
			c.writeNumberInv(d, wire, bitPos, w, uint64(math.Float32bits(float32(f))))
		case 64:
			c.writeNumberInv(d, wire, bitPos, w, math.Float64bits(f))
		case 128:
			blob := numenc.Quad(f)
			if d.Number.BitInvert {
				for i := range blob {
					blob[i] = ^blob[i]
				}
			}
			if d.Number.Order == datasheet.LittleEndian {
				for i, j := 0, len(blob)-1; i < j; i, j = i+1, j-1 {
					blob[i], blob[j] = blob[j], blob[i]
				}
			}
			bits.WriteBytes(wire, bitPos, blob[:], w)
		default:
			return errors.Unsupported(errors.PhasePack, "IEEE-754 width other than 16/32/64/128")
		}
		return nil

	case datasheet.MILSTD1750A:
		if w != 32 {
			return errors.Unsupported(errors.PhasePack, "MIL-STD-1750A width other than 32")
		}
		enc, ok := numenc.Mil1750A(f)
		if !ok {
			// Deliberate choice: exceptional floats are an error, not a
			// silent zero encoding.
			return errors.InvalidData(errors.PhasePack, nil, "NaN/Inf not representable in MIL-STD-1750A")
		}
		c.writeNumberInv(d, wire, bitPos, w, uint64(enc))
		return nil
	}
	return errors.Unsupported(errors.PhasePack, "float encoding "+d.Number.Encoding.String())
}

func (c *Codec) writeNumberInv(d *datasheet.Descriptor, wire []byte, pos, nbits uint32, val uint64) {
	if d.Number.BitInvert {
		val ^= bits.Mask(nbits)
	}
	writeNumber(wire, pos, nbits, val, d.Number.Order)
}

// unpackScalar converts one scalar leaf from the wire to its native image.
func (c *Codec) unpackScalar(d *datasheet.Descriptor, wire []byte, nat []byte, bitPos uint32) error {
	w := d.Size.Bits
	switch d.Kind {
	case datasheet.KindUnsignedInt, datasheet.KindSignedInt:
		raw := readNumber(wire, bitPos, w, d.Number.Order)
		if d.Number.BitInvert {
			raw ^= bits.Mask(w)
		}
		val, err := decodeInt(d, raw)
		if err != nil {
			return err
		}
		return StoreValue(d, nat, val)

	case datasheet.KindFloat:
		f, err := c.unpackFloat(d, wire, bitPos)
		if err != nil {
			return err
		}
		return StoreValue(d, nat, datasheet.FloatValue(f))

	case datasheet.KindBinary:
		bits.ReadBytes(wire, bitPos, nat[:d.Size.Bytes], w)
		return nil
	}
	return errors.Unsupported(errors.PhaseUnpack, "scalar unpack of kind "+d.Kind.String())
}

func decodeInt(d *datasheet.Descriptor, raw uint64) (datasheet.Value, error) {
	w := d.Size.Bits
	if w > 64 {
		return datasheet.Value{}, errors.Unsupported(errors.PhaseUnpack, "integer wider than 64 bits")
	}
	signed := d.Kind == datasheet.KindSignedInt
	switch d.Number.Encoding {
	case datasheet.TwosComplement:
		if signed {
			return datasheet.SignedValue(signExtend(raw, w)), nil
		}
		return datasheet.UnsignedValue(raw), nil
	case datasheet.SignMagnitude:
		return intValue(numenc.SignMagnitudeDecode(raw, w), signed), nil
	case datasheet.OnesComplement:
		return intValue(numenc.OnesComplementDecode(raw, w), signed), nil
	case datasheet.BCDOctet, datasheet.PackedBCD:
		v, ok := numenc.BCDDecode(raw, w, d.Number.Encoding == datasheet.PackedBCD)
		if !ok {
			return datasheet.Value{}, errors.InvalidData(errors.PhaseUnpack, nil, "non-decimal digit in BCD field")
		}
		return intValue(v, signed), nil
	}
	return datasheet.Value{}, errors.Unsupported(errors.PhaseUnpack, "integer encoding "+d.Number.Encoding.String())
}

func intValue(v int64, signed bool) datasheet.Value {
	if signed {
		return datasheet.SignedValue(v)
	}
	return datasheet.UnsignedValue(uint64(v))
}

func signExtend(raw uint64, w uint32) int64 {
	if w >= 64 {
		return int64(raw)
	}
	shift := 64 - w
	return int64(raw<<shift) >> shift
}

func (c *Codec) unpackFloat(d *datasheet.Descriptor, wire []byte, bitPos uint32) (float64, error) {
	w := d.Size.Bits
	switch d.Number.Encoding {
	case datasheet.IEEE754:
		if w == 128 {
			var blob [16]byte
			bits.ReadBytes(wire, bitPos, blob[:], w)
			if d.Number.Order == datasheet.LittleEndian {
				for i, j := 0, len(blob)-1; i < j; i, j = i+1, j-1 {
					blob[i], blob[j] = blob[j], blob[i]
				}
			}
			if d.Number.BitInvert {
				for i := range blob {
					blob[i] = ^blob[i]
				}
			}
			return numenc.QuadDecode(blob), nil
		}
		raw := readNumber(wire, bitPos, w, d.Number.Order)
		if d.Number.BitInvert {
			raw ^= bits.Mask(w)
		}
		switch w {
		case 16:
			return numenc.HalfDecode(uint16(raw)), nil
		case 32:
			return float64(math.Float32frombits(uint32(raw))), nil
		case 64:
			return math.Float64frombits(raw), nil
		}
		return 0, errors.Unsupported(errors.PhaseUnpack, "IEEE-754 width other than 16/32/64/128")

	case datasheet.MILSTD1750A:
		if w != 32 {
			return 0, errors.Unsupported(errors.PhaseUnpack, "MIL-STD-1750A width other than 32")
		}
		raw := readNumber(wire, bitPos, w, d.Number.Order)
		if d.Number.BitInvert {
			raw ^= bits.Mask(w)
		}
		return numenc.Mil1750ADecode(uint32(raw)), nil
	}
	return 0, errors.Unsupported(errors.PhaseUnpack, "float encoding "+d.Number.Encoding.String())
}
