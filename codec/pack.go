package codec

import (
	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

// PackObject converts the native image of one type to its packed wire
// image, leaving derivative resolution and post-processing to the complete
// variant. Bits already present in wire outside the type's fields (gaps,
// padding, neighboring sub-byte fields) keep their previous contents.
// Returns the number of wire bits covered by the type.
func (c *Codec) PackObject(id datasheet.TypeId, wire, native []byte) (uint32, error) {
	desc, err := c.db.Resolve(id)
	if err != nil {
		return 0, err
	}
	if err := checkNative(errors.PhasePack, desc, native); err != nil {
		return 0, err
	}
	if int(desc.Size.Bits) > len(wire)*8 {
		return 0, errors.BufferSize(errors.PhasePack, nil, int(desc.Size.Bits), len(wire)*8)
	}

	if desc.Kind.IsScalar() {
		return desc.Size.Bits, c.packScalar(desc, native, wire, 0)
	}
	if desc.Flags.Packed() {
		copy(wire[:desc.Size.Bytes], native[:desc.Size.Bytes])
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
			return ActionContinue, c.packScalar(m.Desc, native[m.Offset.Bytes:], wire, m.Offset.Bits)
		}
		// Block-copy fast path: same bytes as the generic descent, skipping
		// the element-by-element walk. Only valid at byte alignment.
		if m.Desc.Flags.Packed() && m.Offset.Bits%8 == 0 {
			base := m.Offset.Bits / 8
			copy(wire[base:base+m.Desc.Size.Bytes], native[m.Offset.Bytes:m.Offset.Bytes+m.Desc.Size.Bytes])
			return ActionContinue, nil
		}
		return ActionDescend, nil
	})
	if err != nil {
		return 0, err
	}
	return desc.Size.Bits, nil
}
