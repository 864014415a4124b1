// Package bits implements the unaligned bit access primitives underneath
// the pack/unpack engine. Bits are addressed most-significant-first within
// each byte (network bit order); writes preserve every destination bit
// outside the addressed field, which is what makes adjacent sub-byte fields
// and multi-pass packing of partially-known objects safe.
package bits

// Mask returns a mask of the low count bits. count must be <= 64.
func Mask(count uint32) uint64 {
	if count >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << count) - 1
}

// Write stores the low count bits of val into dst starting at bit position
// pos, MSB first. Bits outside the field keep their previous contents.
// The caller guarantees the destination covers pos+count bits.
func Write(dst []byte, pos, count uint32, val uint64) {
	val &= Mask(count)
	for count > 0 {
		byteIdx := pos >> 3
		bitIdx := pos & 7
		n := 8 - bitIdx
		if n > count {
			n = count
		}
		chunk := byte(val>>(count-n)) & byte(Mask(n))
		shift := 8 - bitIdx - n
		mask := byte(Mask(n)) << shift
		dst[byteIdx] = dst[byteIdx]&^mask | chunk<<shift
		pos += n
		count -= n
	}
}

// Read extracts count bits starting at bit position pos, MSB first, packed
// into the low bits of the result. count must be <= 64.
func Read(src []byte, pos, count uint32) uint64 {
	var val uint64
	for count > 0 {
		byteIdx := pos >> 3
		bitIdx := pos & 7
		n := 8 - bitIdx
		if n > count {
			n = count
		}
		shift := 8 - bitIdx - n
		chunk := uint64(src[byteIdx]>>shift) & Mask(n)
		val = val<<n | chunk
		pos += n
		count -= n
	}
	return val
}

// WriteBytes stores count bits taken left-to-right from src (MSB first
// within each byte) into dst at bit position pos. Trailing bits of the last
// source byte beyond count are dropped.
func WriteBytes(dst []byte, pos uint32, src []byte, count uint32) {
	i := 0
	for count >= 8 {
		Write(dst, pos, 8, uint64(src[i]))
		pos += 8
		count -= 8
		i++
	}
	if count > 0 {
		Write(dst, pos, count, uint64(src[i]>>(8-count)))
	}
}

// ReadBytes extracts count bits from src at bit position pos into dst,
// left-to-right, zero-filling the trailing bits of the last byte.
func ReadBytes(src []byte, pos uint32, dst []byte, count uint32) {
	i := 0
	for count >= 8 {
		dst[i] = byte(Read(src, pos, 8))
		pos += 8
		count -= 8
		i++
	}
	if count > 0 {
		dst[i] = byte(Read(src, pos, count)) << (8 - count)
	}
}
