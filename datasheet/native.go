package datasheet

import "encoding/binary"

// hostOrder is probed once at init rather than hardcoded; the codec's byte
// stride and the builder's packed-identical computation both depend on it.
var hostOrder = func() ByteOrder {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 0x0102)
	if buf[0] == 0x02 {
		return LittleEndian
	}
	return BigEndian
}()

// HostOrder returns the byte order of the running host.
func HostOrder() ByteOrder {
	return hostOrder
}
