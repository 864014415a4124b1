package codec

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

// Complete-object operations: the high-level pack and unpack that resolve
// derivatives and run post-processing, plus the structural queries a
// dispatch layer needs around them.

// refineByNative follows the derivative chain downward as far as the
// native image identifies, returning the most-derived matching type.
// Running out of matches is the normal stop, not an error.
func (c *Codec) refineByNative(id datasheet.TypeId, native []byte) (datasheet.TypeId, error) {
	cur := id
	for depth := 0; depth <= baseDepth; depth++ {
		_, next, err := c.Identify(cur, native)
		if err != nil {
			if errors.IsKind(err, errors.KindNoMatchingValue) {
				return cur, nil
			}
			return cur, err
		}
		cur = next
	}
	return cur, errors.DepthExceeded(errors.PhaseIdentify, baseDepth)
}

// PackCompleteObject packs the native image as its most-derived type and
// fills the computed fields of the result. The native image is identified
// first, so packing a buffer through a base id picks up the concrete
// derived layout; id is updated in place to the concrete type. Returns the
// packed bit count.
func (c *Codec) PackCompleteObject(id *datasheet.TypeId, wire, native []byte) (uint32, error) {
	concrete, err := c.refineByNative(*id, native)
	if err != nil {
		return 0, err
	}
	bits, err := c.PackObject(concrete, wire, native)
	if err != nil {
		return 0, err
	}
	if err := c.applyPostPack(concrete, wire, bits); err != nil {
		return 0, err
	}
	*id = concrete
	return bits, nil
}

// UnpackCompleteObject unpacks the wire image, re-identifying and
// re-unpacking through the derivative chain until the most-derived type is
// reached, then verifies the computed fields per opts. id is updated in
// place to the concrete type. A verification mismatch is returned as the
// error, but the native image and id are complete regardless.
func (c *Codec) UnpackCompleteObject(id *datasheet.TypeId, native, wire []byte, opts UnpackOptions) (uint32, error) {
	cur := *id
	bits, err := c.UnpackObject(cur, native, wire)
	if err != nil {
		return 0, err
	}
	for depth := 0; ; depth++ {
		if depth > baseDepth {
			return 0, errors.DepthExceeded(errors.PhaseIdentify, baseDepth)
		}
		_, next, err := c.Identify(cur, native)
		if err != nil {
			if errors.IsKind(err, errors.KindNoMatchingValue) {
				break
			}
			return 0, err
		}
		cur = next
		bits, err = c.UnpackObject(cur, native, wire)
		if err != nil {
			return 0, err
		}
	}
	*id = cur
	if err := c.verifyPostUnpack(cur, native, wire, bits, opts); err != nil {
		c.log.Warn("unpacked object failed verification",
			zap.String("type", c.db.TypeName(cur)),
			zap.Error(err))
		return bits, err
	}
	return bits, nil
}

// MemberByIndex resolves the index'th direct sub-element of a container or
// array, with offsets relative to the parent.
func (c *Codec) MemberByIndex(id datasheet.TypeId, index int) (MemberInfo, error) {
	d, err := c.db.Resolve(id)
	if err != nil {
		return MemberInfo{}, err
	}
	if index < 0 || index >= int(d.NumSub) {
		return MemberInfo{}, errors.New(errors.PhaseResolve, errors.KindNotFound).
			TypeName(c.db.TypeName(id)).
			Detail("member index %d of %d", index, d.NumSub).
			Build()
	}
	m := MemberInfo{Index: index, Depth: 1}
	switch d.Kind {
	case datasheet.KindContainer:
		e := &d.Container.Entries[index]
		m.Entry = e
		m.Role = e.Role
		m.Offset = e.Offset
		if e.Role == datasheet.RolePadding {
			return m, nil
		}
		m.Type = e.Type
	case datasheet.KindArray:
		m.Type = d.Array.Elem
		m.Role = datasheet.RoleArrayElement
		m.Offset = datasheet.OffsetInfo{
			Bits:  d.Size.Bits / d.NumSub * uint32(index),
			Bytes: d.Size.Bytes / d.NumSub * uint32(index),
		}
	}
	m.Desc, err = c.db.Resolve(m.Type)
	if err != nil {
		return MemberInfo{}, errors.IncompleteDB(errors.PhaseResolve,
			[]string{c.db.TypeName(id), strconv.Itoa(index)}, m.Type.String())
	}
	return m, nil
}

// MemberByNativeOffset resolves the direct sub-element whose native extent
// covers the given byte offset. Padding entries have no native extent and
// are never matched.
func (c *Codec) MemberByNativeOffset(id datasheet.TypeId, offset uint32) (MemberInfo, error) {
	d, err := c.db.Resolve(id)
	if err != nil {
		return MemberInfo{}, err
	}
	for i := 0; i < int(d.NumSub); i++ {
		m, err := c.MemberByIndex(id, i)
		if err != nil {
			return MemberInfo{}, err
		}
		if m.Desc == nil {
			continue
		}
		if m.Offset.Bytes <= offset && offset < m.Offset.Bytes+m.Desc.Size.Bytes {
			return m, nil
		}
	}
	return MemberInfo{}, errors.New(errors.PhaseResolve, errors.KindNotFound).
		TypeName(c.db.TypeName(id)).
		Detail("no member covers native offset %d", offset).
		Build()
}

// DerivedInfo summarizes a base type's derivative tree: how many direct
// derivatives it has and the largest extent any type in the tree takes.
// Buffers sized to MaxSize hold every possible concrete object.
type DerivedInfo struct {
	NumDerivatives int
	MaxSize        datasheet.SizeInfo
}

// GetDerivedInfo computes the derivative summary for a base type.
func (c *Codec) GetDerivedInfo(id datasheet.TypeId) (DerivedInfo, error) {
	d, err := c.db.Resolve(id)
	if err != nil {
		return DerivedInfo{}, err
	}
	info := DerivedInfo{MaxSize: d.Size}
	if d.Kind == datasheet.KindContainer {
		info.NumDerivatives = len(d.Container.Derivatives)
	}
	if err := c.maxDerivedSize(id, &info.MaxSize, baseDepth); err != nil {
		return DerivedInfo{}, err
	}
	return info, nil
}

func (c *Codec) maxDerivedSize(id datasheet.TypeId, max *datasheet.SizeInfo, depth int) error {
	if depth < 0 {
		return errors.DepthExceeded(errors.PhaseResolve, baseDepth)
	}
	d, err := c.db.Resolve(id)
	if err != nil {
		return err
	}
	if d.Size.Bits > max.Bits {
		max.Bits = d.Size.Bits
	}
	if d.Size.Bytes > max.Bytes {
		max.Bytes = d.Size.Bytes
	}
	if d.Kind != datasheet.KindContainer {
		return nil
	}
	for _, dv := range d.Container.Derivatives {
		if err := c.maxDerivedSize(dv, max, depth-1); err != nil {
			return err
		}
	}
	return nil
}

// DerivedTypeByIndex returns the index'th direct derivative of a base type.
func (c *Codec) DerivedTypeByIndex(id datasheet.TypeId, index int) (datasheet.TypeId, error) {
	d, err := c.db.Resolve(id)
	if err != nil {
		return datasheet.TypeId{}, err
	}
	if d.Kind != datasheet.KindContainer || index < 0 || index >= len(d.Container.Derivatives) {
		return datasheet.TypeId{}, errors.New(errors.PhaseResolve, errors.KindNotFound).
			TypeName(c.db.TypeName(id)).
			Detail("derivative index %d", index).
			Build()
	}
	return d.Container.Derivatives[index], nil
}

// InitializeNativeObject zero-fills a native image and seeds it with the
// type's fixed values and its distinguishing constraint values, so a
// freshly initialized buffer already identifies as id.
func (c *Codec) InitializeNativeObject(id datasheet.TypeId, native []byte) error {
	d, err := c.db.Resolve(id)
	if err != nil {
		return err
	}
	if err := checkNative(errors.PhaseResolve, d, native); err != nil {
		return err
	}
	for i := range native[:d.Size.Bytes] {
		native[i] = 0
	}
	fields, err := c.collectComputed(id)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.entry.Role != datasheet.RoleFixedValue {
			continue
		}
		if err := StoreValue(f.desc, native[f.offset.Bytes:], f.entry.Fixed); err != nil {
			return errors.Wrap(errors.PhaseResolve, errors.KindInvalidData, err,
				"initializing field "+f.entry.Name)
		}
	}
	return c.ConstraintIterator(datasheet.TypeId{}, id, func(cv ConstraintValue) error {
		ed, err := c.db.Resolve(cv.Type)
		if err != nil {
			return errors.IncompleteDB(errors.PhaseResolve,
				[]string{c.db.TypeName(id), cv.Name}, cv.Type.String())
		}
		return StoreValue(ed, native[cv.Offset.Bytes:], cv.Value)
	})
}
