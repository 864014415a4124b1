package datasheet

import (
	"strconv"

	"github.com/wippyai/eds-runtime/errors"
)

// validate checks the structural invariants a well-formed schema table must
// satisfy. Tables are trusted build artifacts, so violations are programmer
// or toolchain errors; they are still surfaced as registration failures
// rather than panics so a broken plugin cannot take the process down.
func (c *Component) validate() error {
	for i := 1; i < len(c.Types); i++ {
		if err := c.validateDescriptor(uint16(i), &c.Types[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Component) validateDescriptor(index uint16, d *Descriptor) error {
	fail := func(detail string, args ...any) error {
		return errors.New(errors.PhaseBuild, errors.KindInvalidData).
			TypeName(c.Name + "/" + d.Name).
			Path(strconv.Itoa(int(index))).
			Detail(detail, args...).
			Build()
	}

	switch d.Kind {
	case KindSignedInt, KindUnsignedInt, KindFloat:
		if d.Number == nil {
			return fail("number type without number detail")
		}
		if d.Array != nil || d.Container != nil {
			return fail("number type with non-number detail")
		}
		if d.Size.Bits == 0 || d.Size.Bits > 128 {
			return fail("number bit width %d out of range", d.Size.Bits)
		}
	case KindBinary:
		if d.Number != nil || d.Array != nil || d.Container != nil {
			return fail("binary type with detail payload")
		}
	case KindArray:
		if d.Array == nil {
			return fail("array type without array detail")
		}
		if d.NumSub == 0 {
			return fail("array with zero elements")
		}
		if d.Size.Bits%d.NumSub != 0 || d.Size.Bytes%d.NumSub != 0 {
			return fail("array size %d/%d not divisible by element count %d",
				d.Size.Bits, d.Size.Bytes, d.NumSub)
		}
		if !d.Array.Elem.IsValid() {
			return fail("array element references the invalid type id")
		}
		if d.Array.Elem.Component == c.Slot && c.Descriptor(d.Array.Elem.Index) == nil {
			return fail("array element references unknown local type %s", d.Array.Elem)
		}
	case KindContainer:
		if d.Container == nil {
			return fail("container type without container detail")
		}
		return c.validateContainer(index, d, fail)
	default:
		return fail("unknown basic kind %d", d.Kind)
	}
	return nil
}

func (c *Component) validateContainer(index uint16, d *Descriptor, fail func(string, ...any) error) error {
	det := d.Container
	if int(d.NumSub) != len(det.Entries) {
		return fail("entry count %d does not match NumSub %d", len(det.Entries), d.NumSub)
	}

	// Offsets must be monotonically non-decreasing, and the last entry must
	// close the container's declared size. Leading padding (a non-zero first
	// offset) is legal; it comes from the schema.
	prev := uint32(0)
	end := uint32(0)
	for i := range det.Entries {
		e := &det.Entries[i]
		if e.Offset.Bits < prev {
			return fail("entry %d bit offset %d precedes previous entry", i, e.Offset.Bits)
		}
		prev = e.Offset.Bits

		if e.Role == RoleBaseType && i != 0 {
			return fail("entry %d: base-type inclusion must be the first entry", i)
		}
		switch e.Role {
		case RolePadding:
			end = e.Offset.Bits + e.PadBits
		default:
			if !e.Type.IsValid() {
				return fail("entry %d references the invalid type id", i)
			}
			// Same-component references are verified now; cross-component
			// references resolve at walk time and fail there as an
			// incomplete-database condition if the peer never registers.
			if e.Type.Component == c.Slot {
				sub := c.Descriptor(e.Type.Index)
				if sub == nil {
					return fail("entry %d references unknown local type %s", i, e.Type)
				}
				end = e.Offset.Bits + sub.Size.Bits
			} else {
				end = e.Offset.Bits
			}
		}
	}
	if len(det.Entries) > 0 && end > d.Size.Bits {
		return fail("entries end at bit %d beyond declared size %d", end, d.Size.Bits)
	}

	for i, dt := range det.Derivatives {
		if !dt.IsValid() {
			return fail("derivative %d references the invalid type id", i)
		}
	}
	for i, ce := range det.Constraints {
		if !ce.Type.IsValid() {
			return fail("constraint entity %d references the invalid type id", i)
		}
	}
	n := int32(len(det.IdentSequence))
	for i, node := range det.IdentSequence {
		switch node.Op {
		case IdentCompare:
			if int(node.Entity) >= len(det.Constraints) {
				return fail("ident node %d references unknown entity %d", i, node.Entity)
			}
			for _, link := range [...]int32{node.Less, node.Greater, node.Next} {
				if link >= n {
					return fail("ident node %d link %d out of bounds", i, link)
				}
			}
		case IdentResult:
			if int(node.Derivative) >= len(det.Derivatives) {
				return fail("ident node %d names unknown derivative %d", i, node.Derivative)
			}
		default:
			return fail("ident node %d has unknown op %d", i, node.Op)
		}
	}
	return nil
}
