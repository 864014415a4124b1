package codec

import (
	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

// UnpackObject converts the packed wire image of one type to its native
// image, without derivative resolution or post-processing verification.
// Native bytes not backed by any field (alignment gaps) are left untouched.
// Returns the number of wire bits consumed by the type.
func (c *Codec) UnpackObject(id datasheet.TypeId, native, wire []byte) (uint32, error) {
	desc, err := c.db.Resolve(id)
	if err != nil {
		return 0, err
	}
	if err := checkNative(errors.PhaseUnpack, desc, native); err != nil {
		return 0, err
	}
	// The wire source carrying fewer bits than the type declares means the
	// caller's id does not describe this buffer.
	if int(desc.Size.Bits) > len(wire)*8 {
		return 0, errors.New(errors.PhaseUnpack, errors.KindInvalidID).
			Detail("wire buffer %d bits, type requires %d", len(wire)*8, desc.Size.Bits).
			Build()
	}

	if desc.Kind.IsScalar() {
		return desc.Size.Bits, c.unpackScalar(desc, wire, native, 0)
	}
	if desc.Flags.Packed() {
		copy(native[:desc.Size.Bytes], wire[:desc.Size.Bytes])
		return desc.Size.Bits, nil
	}

	err = c.Walk(id, func(ev Event, m *MemberInfo) (Action, error) {
		if ev == EventStart {
			return ActionContinue, nil
		}
		if m.Role == datasheet.RolePadding {
			return ActionContinue, nil
		}
		if m.Desc.Kind.IsScalar() {
			return ActionContinue, c.unpackScalar(m.Desc, wire, native[m.Offset.Bytes:], m.Offset.Bits)
		}
		if m.Desc.Flags.Packed() && m.Offset.Bits%8 == 0 {
			base := m.Offset.Bits / 8
			copy(native[m.Offset.Bytes:m.Offset.Bytes+m.Desc.Size.Bytes], wire[base:base+m.Desc.Size.Bytes])
			return ActionContinue, nil
		}
		return ActionDescend, nil
	})
	if err != nil {
		return 0, err
	}
	return desc.Size.Bits, nil
}
