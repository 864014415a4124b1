// Package numenc converts between native numeric values and the non-native
// wire encodings a schema may declare: sign-magnitude and ones-complement
// integers, BCD digit strings, IEEE-754 at non-native widths, and the
// MIL-STD-1750A float format. Every encoder produces a canonical unsigned
// integer (or, for 128-bit floats, a big-endian byte blob) that the bit
// packer then lays down; decoders run the exact inverse.
package numenc

import (
	"math"

	"github.com/x448/float16"
)

func mask(bits uint32) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

// SignMagnitude encodes a two's-complement value into sign-magnitude form
// of the given bit width: the top bit is the sign, the rest the magnitude.
func SignMagnitude(v int64, bits uint32) uint64 {
	if v >= 0 {
		return uint64(v) & mask(bits-1)
	}
	return uint64(1)<<(bits-1) | (uint64(-v) & mask(bits-1))
}

// SignMagnitudeDecode is the inverse of SignMagnitude.
func SignMagnitudeDecode(u uint64, bits uint32) int64 {
	mag := int64(u & mask(bits-1))
	if u&(uint64(1)<<(bits-1)) != 0 {
		return -mag
	}
	return mag
}

// OnesComplement encodes a two's-complement value into ones-complement form:
// negative values are the bitwise complement of their magnitude.
func OnesComplement(v int64, bits uint32) uint64 {
	if v >= 0 {
		return uint64(v) & mask(bits)
	}
	return ^uint64(-v) & mask(bits)
}

// OnesComplementDecode is the inverse of OnesComplement. Negative zero
// (all ones) decodes to zero.
func OnesComplementDecode(u uint64, bits uint32) int64 {
	if u&(uint64(1)<<(bits-1)) == 0 {
		return int64(u)
	}
	return -int64(^u & mask(bits))
}

// BCD encodes a non-negative value as binary-coded decimal digits. In octet
// form each digit occupies 8 bits, in packed form 4. ok is false when the
// value is negative, or needs more digits than the width holds, or the
// width exceeds the 64-bit canonical form (8 octet / 16 packed digits).
func BCD(v int64, bits uint32, packed bool) (enc uint64, ok bool) {
	digitBits := uint32(8)
	if packed {
		digitBits = 4
	}
	if v < 0 || bits > 64 || bits%digitBits != 0 {
		return 0, false
	}
	digits := bits / digitBits
	u := uint64(v)
	for i := uint32(0); i < digits; i++ {
		enc |= (u % 10) << (i * digitBits)
		u /= 10
	}
	if u != 0 {
		return 0, false
	}
	return enc, true
}

// BCDDecode is the inverse of BCD. Digit nibbles above 9 make ok false.
func BCDDecode(enc uint64, bits uint32, packed bool) (v int64, ok bool) {
	digitBits := uint32(8)
	if packed {
		digitBits = 4
	}
	if bits > 64 || bits%digitBits != 0 {
		return 0, false
	}
	digits := bits / digitBits
	pow := int64(1)
	for i := uint32(0); i < digits; i++ {
		d := (enc >> (i * digitBits)) & ((1 << digitBits) - 1)
		if d > 9 {
			return 0, false
		}
		v += int64(d) * pow
		pow *= 10
	}
	return v, true
}

// Half encodes a float into IEEE-754 binary16. Inf, NaN and subnormals
// follow the format's own rules; out-of-range magnitudes saturate to Inf.
func Half(f float64) uint16 {
	return float16.Fromfloat32(float32(f)).Bits()
}

// HalfDecode is the inverse of Half.
func HalfDecode(u uint16) float64 {
	return float64(float16.Frombits(u).Float32())
}

// Quad encodes a float into IEEE-754 binary128, big-endian. No native quad
// type exists, so the 112-bit mantissa carries the double's 52 true bits
// and zero-fills the remainder.
func Quad(f float64) [16]byte {
	var out [16]byte
	b := math.Float64bits(f)
	sign := b >> 63
	exp := int64(b>>52) & 0x7FF
	frac := b & (1<<52 - 1)

	var e128 uint64
	var m112hi, m112lo uint64 // 112-bit mantissa, split 48/64

	switch {
	case exp == 0x7FF: // Inf / NaN
		e128 = 0x7FFF
		m112hi = frac >> 4
		m112lo = frac << 60
	case exp == 0 && frac == 0: // zero
	case exp == 0: // subnormal double: normalize into quad's huge range
		e := int64(-1022)
		for frac&(1<<52) == 0 {
			frac <<= 1
			e--
		}
		frac &= 1<<52 - 1
		e128 = uint64(e + 16383)
		m112hi = frac >> 4
		m112lo = frac << 60
	default:
		e128 = uint64(exp - 1023 + 16383)
		m112hi = frac >> 4
		m112lo = frac << 60
	}

	hi := sign<<63 | e128<<48 | m112hi
	for i := 0; i < 8; i++ {
		out[i] = byte(hi >> (56 - 8*i))
		out[8+i] = byte(m112lo >> (56 - 8*i))
	}
	return out
}

// QuadDecode is the inverse of Quad, truncating mantissa bits beyond the
// double's 52. Overflow saturates to Inf, underflow flushes to zero.
func QuadDecode(in [16]byte) float64 {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(in[i])
		lo = lo<<8 | uint64(in[8+i])
	}
	sign := hi >> 63
	e128 := int64(hi>>48) & 0x7FFF
	m112hi := hi & (1<<48 - 1)
	frac := m112hi<<4 | lo>>60

	switch {
	case e128 == 0x7FFF:
		if frac != 0 || lo<<4 != 0 {
			return math.NaN()
		}
		if sign != 0 {
			return math.Inf(-1)
		}
		return math.Inf(1)
	case e128 == 0 && frac == 0 && lo == 0:
		if sign != 0 {
			return math.Copysign(0, -1)
		}
		return 0
	}

	exp := e128 - 16383 + 1023
	switch {
	case exp >= 0x7FF:
		return math.Inf(1 - 2*int(sign))
	case exp <= 0:
		// Underflows the double's normal range; denormal precision is not
		// preserved through the approximation.
		return math.Copysign(0, float64(1-2*int(sign)))
	}
	return math.Float64frombits(sign<<63 | uint64(exp)<<52 | frac)
}

// Mil1750A encodes a float into the 32-bit MIL-STD-1750A layout: a 24-bit
// two's-complement mantissa fraction in the upper bits and an 8-bit
// two's-complement exponent in the lower byte, value = M * 2^E with the
// mantissa normalized to [0.5,1) or (-1,-0.5]. ok is false for NaN and
// infinity and for exponent overflow; magnitudes below the format's range
// flush to zero.
func Mil1750A(f float64) (enc uint32, ok bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f == 0 {
		return 0, true
	}
	m, e := math.Frexp(f)
	mant := int64(math.Round(m * (1 << 23)))
	if mant == 1<<23 { // rounding carried past the fraction range
		mant >>= 1
		e++
	}
	if mant == -(1 << 23) {
		mant = -(1 << 22)
		e++
	}
	switch {
	case e > 127:
		return 0, false
	case e < -128:
		return 0, true // underflow to zero
	case mant == 0:
		return 0, true
	}
	return uint32(mant&0xFFFFFF)<<8 | uint32(uint8(int8(e))), true
}

// Mil1750ADecode is the inverse of Mil1750A.
func Mil1750ADecode(enc uint32) float64 {
	mant := int32(enc&0xFFFFFF00) >> 8 // sign-extended 24-bit fraction
	exp := int32(int8(enc & 0xFF))
	return float64(mant) / (1 << 23) * math.Pow(2, float64(exp))
}
