package codec

import (
	"strconv"

	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

// Post-processing gives length, fixed-value, and error-control fields their
// computed contents after packing, and verifies (or repairs) them after
// unpacking. These fields exist in the schema like any other member; the
// pack and unpack passes move whatever the native image holds, and the
// passes here overwrite or check the wire-derived truth.

// RecomputeFlags selects which computed fields UnpackCompleteObject writes
// back into the native image instead of merely checking.
type RecomputeFlags uint8

const (
	// RecomputeLengths overwrites declared-length fields with the value
	// derived from the object's actual packed size.
	RecomputeLengths RecomputeFlags = 1 << iota
	// RecomputeErrorControl overwrites error-control fields with the value
	// computed over the received wire image.
	RecomputeErrorControl
	// RecomputeFixedValues overwrites fixed-value fields with their
	// schema-declared constants.
	RecomputeFixedValues
)

// UnpackOptions steers the verification half of complete unpacking.
type UnpackOptions struct {
	// Recompute selects computed fields to write back into the native
	// image after unpacking.
	Recompute RecomputeFlags
	// IgnoreMismatch suppresses mismatch errors; the unpacked image and
	// any recomputed fields are produced either way.
	IgnoreMismatch bool
}

// computedField is one length/fixed/error-control member located during a
// pre-order walk, with offsets absolute to the walk root.
type computedField struct {
	desc   *datasheet.Descriptor
	entry  *datasheet.Entry
	offset datasheet.OffsetInfo
	path   []string
}

// collectComputed gathers the computed fields of the full type tree in
// walk order. Packed subtrees are entered too: a block copy moves whatever
// the native image held, which is exactly what post-processing corrects.
func (c *Codec) collectComputed(id datasheet.TypeId) ([]computedField, error) {
	var fields []computedField
	var path []string
	err := c.Walk(id, func(ev Event, m *MemberInfo) (Action, error) {
		if ev == EventStart {
			if m.Depth > 0 {
				seg := strconv.Itoa(m.Index)
				if m.Entry != nil && m.Role != datasheet.RoleArrayElement {
					seg = m.Entry.Name
				}
				path = append(path[:m.Depth-1], seg)
			}
			return ActionContinue, nil
		}
		switch m.Role {
		case datasheet.RoleLength, datasheet.RoleErrorControl, datasheet.RoleFixedValue:
			p := make([]string, 0, m.Depth)
			p = append(p, path[:m.Depth-1]...)
			p = append(p, m.Entry.Name)
			fields = append(fields, computedField{desc: m.Desc, entry: m.Entry, offset: m.Offset, path: p})
			return ActionContinue, nil
		case datasheet.RolePadding:
			return ActionContinue, nil
		}
		if m.Desc.Kind.IsScalar() {
			return ActionContinue, nil
		}
		return ActionDescend, nil
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// fieldValue derives the wire-truth value of one computed field. Error
// control is computed over totalBits of wire with the field's own bits
// excluded; lengths apply the calibration to the packed byte size.
func fieldValue(f *computedField, wire []byte, totalBits uint32) datasheet.Value {
	switch f.entry.Role {
	case datasheet.RoleFixedValue:
		return f.entry.Fixed
	case datasheet.RoleLength:
		n := f.entry.Calibration.Apply(int64((totalBits + 7) / 8))
		if f.desc.Kind == datasheet.KindSignedInt {
			return datasheet.SignedValue(n)
		}
		return datasheet.UnsignedValue(uint64(n))
	case datasheet.RoleErrorControl:
		v := errorControlExclude(f.entry.ErrCtl, wire, totalBits, f.offset.Bits, f.desc.Size.Bits)
		return datasheet.UnsignedValue(v)
	}
	return datasheet.Value{}
}

// applyPostPack overwrites the computed fields of a freshly packed wire
// image. Lengths and fixed values go first in walk order; error-control
// fields go last so their input bytes are final.
func (c *Codec) applyPostPack(id datasheet.TypeId, wire []byte, totalBits uint32) error {
	fields, err := c.collectComputed(id)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.entry.Role == datasheet.RoleErrorControl {
			continue
		}
		v := fieldValue(&f, wire, totalBits)
		if err := c.storeWireValue(f.desc, wire, f.offset.Bits, v); err != nil {
			return errors.Wrap(errors.PhasePack, errors.KindInvalidData, err,
				"post-processing field "+f.entry.Name)
		}
	}
	for _, f := range fields {
		if f.entry.Role != datasheet.RoleErrorControl {
			continue
		}
		v := fieldValue(&f, wire, totalBits)
		if err := c.storeWireValue(f.desc, wire, f.offset.Bits, v); err != nil {
			return errors.Wrap(errors.PhasePack, errors.KindInvalidData, err,
				"post-processing field "+f.entry.Name)
		}
	}
	return nil
}

// verifyPostUnpack checks each computed field of the unpacked native image
// against its wire-derived truth, optionally writing the truth back. All
// fields are processed before the first mismatch is returned, so the
// native image is complete even on error.
func (c *Codec) verifyPostUnpack(id datasheet.TypeId, native, wire []byte, totalBits uint32, opts UnpackOptions) error {
	fields, err := c.collectComputed(id)
	if err != nil {
		return err
	}
	var firstErr error
	for _, f := range fields {
		want := fieldValue(&f, wire, totalBits)
		got, err := LoadValue(f.desc, native[f.offset.Bytes:])
		if err != nil {
			return errors.Wrap(errors.PhaseUnpack, errors.KindInvalidData, err,
				"verifying field "+f.entry.Name)
		}
		if got.Compare(want) != 0 && firstErr == nil && !opts.IgnoreMismatch {
			if f.entry.Role == datasheet.RoleErrorControl {
				firstErr = errors.ErrorControlMismatch(f.path, want.Uint, got.ConvertTo(datasheet.KindUnsignedInt).Uint)
			} else {
				firstErr = errors.FieldMismatch(f.path, want, got)
			}
		}
		if recomputes(opts.Recompute, f.entry.Role) {
			if err := StoreValue(f.desc, native[f.offset.Bytes:], want); err != nil {
				return errors.Wrap(errors.PhaseUnpack, errors.KindInvalidData, err,
					"recomputing field "+f.entry.Name)
			}
		}
	}
	return firstErr
}

func recomputes(flags RecomputeFlags, role datasheet.EntryRole) bool {
	switch role {
	case datasheet.RoleLength:
		return flags&RecomputeLengths != 0
	case datasheet.RoleErrorControl:
		return flags&RecomputeErrorControl != 0
	case datasheet.RoleFixedValue:
		return flags&RecomputeFixedValues != 0
	}
	return false
}

// storeWireValue packs one scalar value straight into the wire image at
// the given bit position, staging through a scratch native image.
func (c *Codec) storeWireValue(d *datasheet.Descriptor, wire []byte, bitPos uint32, v datasheet.Value) error {
	var scratch [16]byte
	buf := scratch[:]
	if int(d.Size.Bytes) > len(buf) {
		buf = make([]byte, d.Size.Bytes)
	}
	if err := StoreValue(d, buf, v); err != nil {
		return err
	}
	return c.packScalar(d, buf, wire, bitPos)
}
