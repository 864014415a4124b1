package datasheet

import (
	"github.com/wippyai/eds-runtime/errors"
)

// Builder constructs one Component programmatically: fixtures, tests and the
// YAML loader go through it. It computes native layouts (widths, natural
// alignment, member offsets), sequential packed bit offsets, identification
// sequences from declared derivations, and the packed-identical flags.
//
// Builder methods record the first misuse instead of returning an error at
// every call; Build surfaces it. Registration performs the full structural
// validation on the result.
type Builder struct {
	comp   *Component
	aligns []uint32
	derivs map[uint16][]derivSpec
	err    error
}

type derivSpec struct {
	derived TypeId
	conds   []Condition
}

// Condition pairs a constraint entity of a base container with the value a
// derivative requires at that entity.
type Condition struct {
	Entity uint16
	Value  Value
}

// NewBuilder starts a Component for the given database slot. Local index 0
// is seeded with the reserved placeholder.
func NewBuilder(slot uint16, name string) *Builder {
	return &Builder{
		comp: &Component{
			Slot:  slot,
			Name:  name,
			Types: []Descriptor{{}},
		},
		aligns: []uint32{1},
		derivs: make(map[uint16][]derivSpec),
	}
}

func (b *Builder) fail(detail string, args ...any) TypeId {
	if b.err == nil {
		b.err = errors.New(errors.PhaseBuild, errors.KindInvalidData).
			Detail(detail, args...).
			Build()
	}
	return TypeId{}
}

func (b *Builder) addType(d Descriptor, align uint32) TypeId {
	b.comp.Types = append(b.comp.Types, d)
	b.aligns = append(b.aligns, align)
	return TypeId{Component: b.comp.Slot, Index: uint16(len(b.comp.Types) - 1)}
}

// local returns the descriptor for a type minted by this builder.
func (b *Builder) local(id TypeId) *Descriptor {
	if id.Component != b.comp.Slot || id.Index == 0 || int(id.Index) >= len(b.comp.Types) {
		return nil
	}
	return &b.comp.Types[id.Index]
}

func (b *Builder) alignOf(id TypeId) uint32 {
	if id.Component == b.comp.Slot && int(id.Index) < len(b.aligns) {
		return b.aligns[id.Index]
	}
	return 1
}

func nativeNumberBytes(bits uint32) uint32 {
	switch {
	case bits <= 8:
		return 1
	case bits <= 16:
		return 2
	case bits <= 32:
		return 4
	case bits <= 64:
		return 8
	default:
		return 16
	}
}

func nativeFloatBytes(bits uint32) uint32 {
	switch {
	case bits <= 32:
		return 4
	case bits <= 64:
		return 8
	default:
		return 16
	}
}

func alignUp(v, align uint32) uint32 {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// AddNumber adds an integer or float scalar with an explicit wire form.
func (b *Builder) AddNumber(name string, kind BasicKind, bits uint32, detail NumberDetail) TypeId {
	if !kind.IsNumber() {
		return b.fail("AddNumber(%q): kind %s is not numeric", name, kind)
	}
	var bytes uint32
	if kind == KindFloat {
		bytes = nativeFloatBytes(bits)
	} else {
		bytes = nativeNumberBytes(bits)
	}
	align := bytes
	if align > 8 {
		align = 8
	}
	nd := detail
	return b.addType(Descriptor{
		Name:   name,
		Kind:   kind,
		Size:   SizeInfo{Bits: bits, Bytes: bytes},
		Number: &nd,
	}, align)
}

// AddUnsigned adds a big-endian two's-complement unsigned integer.
func (b *Builder) AddUnsigned(name string, bits uint32) TypeId {
	return b.AddNumber(name, KindUnsignedInt, bits, NumberDetail{})
}

// AddSigned adds a big-endian two's-complement signed integer.
func (b *Builder) AddSigned(name string, bits uint32) TypeId {
	return b.AddNumber(name, KindSignedInt, bits, NumberDetail{})
}

// AddFloat adds a big-endian IEEE-754 float.
func (b *Builder) AddFloat(name string, bits uint32) TypeId {
	return b.AddNumber(name, KindFloat, bits, NumberDetail{Encoding: IEEE754})
}

// AddBinary adds a fixed-length blob of the given packed bit width.
func (b *Builder) AddBinary(name string, bits uint32) TypeId {
	return b.addType(Descriptor{
		Name: name,
		Kind: KindBinary,
		Size: SizeInfo{Bits: bits, Bytes: (bits + 7) / 8},
	}, 1)
}

// AddArray adds a fixed-length array of a previously added element type.
func (b *Builder) AddArray(name string, elem TypeId, count uint32) TypeId {
	ed := b.local(elem)
	if ed == nil {
		return b.fail("AddArray(%q): element type %s is not local to this builder", name, elem)
	}
	if count == 0 {
		return b.fail("AddArray(%q): zero element count", name)
	}
	return b.addType(Descriptor{
		Name:   name,
		Kind:   KindArray,
		Size:   SizeInfo{Bits: ed.Size.Bits * count, Bytes: ed.Size.Bytes * count},
		NumSub: count,
		Array:  &ArrayDetail{Elem: elem},
	}, b.alignOf(elem))
}

// ContainerBuilder accumulates the ordered entries of one container type.
// Packed bit offsets are sequential; native byte offsets follow natural
// alignment.
type ContainerBuilder struct {
	b        *Builder
	name     string
	entries  []Entry
	bitPos   uint32
	bytePos  uint32
	maxAlign uint32
}

// Container starts a container type.
func (b *Builder) Container(name string) *ContainerBuilder {
	return &ContainerBuilder{b: b, name: name, maxAlign: 1}
}

func (cb *ContainerBuilder) place(name string, t TypeId, role EntryRole) *Entry {
	td := cb.b.local(t)
	if td == nil {
		cb.b.fail("container %q entry %q: type %s is not local to this builder", cb.name, name, t)
		return nil
	}
	align := cb.b.alignOf(t)
	if align > cb.maxAlign {
		cb.maxAlign = align
	}
	off := OffsetInfo{Bits: cb.bitPos, Bytes: alignUp(cb.bytePos, align)}
	cb.entries = append(cb.entries, Entry{Name: name, Type: t, Role: role, Offset: off})
	cb.bitPos = off.Bits + td.Size.Bits
	cb.bytePos = off.Bytes + td.Size.Bytes
	return &cb.entries[len(cb.entries)-1]
}

// Base includes a previously built container as the leading base type.
// It must be the first entry.
func (cb *ContainerBuilder) Base(t TypeId) *ContainerBuilder {
	if len(cb.entries) != 0 {
		cb.b.fail("container %q: base inclusion must be the first entry", cb.name)
		return cb
	}
	cb.place("", t, RoleBaseType)
	return cb
}

// Member appends a plain member entry.
func (cb *ContainerBuilder) Member(name string, t TypeId) *ContainerBuilder {
	cb.place(name, t, RoleMember)
	return cb
}

// Padding appends a packed-only gap of the given bit width. Native layout is
// unaffected; the codec leaves the bits untouched on pack and skips them on
// unpack.
func (cb *ContainerBuilder) Padding(bits uint32) *ContainerBuilder {
	cb.entries = append(cb.entries, Entry{
		Role:    RolePadding,
		Offset:  OffsetInfo{Bits: cb.bitPos, Bytes: cb.bytePos},
		PadBits: bits,
	})
	cb.bitPos += bits
	return cb
}

// Length appends a declared-length entry: on pack the codec writes the
// object's total packed byte size through the calibration map.
func (cb *ContainerBuilder) Length(name string, t TypeId, cal Calibration) *ContainerBuilder {
	if e := cb.place(name, t, RoleLength); e != nil {
		e.Calibration = cal
	}
	return cb
}

// ErrorControl appends an error-control entry computed over the packed
// object excluding the field's own bits.
func (cb *ContainerBuilder) ErrorControl(name string, t TypeId, kind ErrorControl) *ContainerBuilder {
	if e := cb.place(name, t, RoleErrorControl); e != nil {
		e.ErrCtl = kind
	}
	return cb
}

// FixedValue appends an entry that always packs the given constant.
func (cb *ContainerBuilder) FixedValue(name string, t TypeId, v Value) *ContainerBuilder {
	if e := cb.place(name, t, RoleFixedValue); e != nil {
		e.Fixed = v
	}
	return cb
}

// Build finalizes the container and returns its TypeId.
func (cb *ContainerBuilder) Build() TypeId {
	return cb.b.addType(Descriptor{
		Name:   cb.name,
		Kind:   KindContainer,
		Size:   SizeInfo{Bits: cb.bitPos, Bytes: alignUp(cb.bytePos, cb.maxAlign)},
		NumSub: uint32(len(cb.entries)),
		Container: &ContainerDetail{
			Entries: cb.entries,
		},
	}, cb.maxAlign)
}

// DeclareConstraint registers entry entryIndex of a built container as a
// constraint entity and returns the entity index used in Conditions.
func (b *Builder) DeclareConstraint(container TypeId, entryIndex int) uint16 {
	d := b.local(container)
	if d == nil || d.Container == nil {
		b.fail("DeclareConstraint: %s is not a local container", container)
		return 0
	}
	if entryIndex < 0 || entryIndex >= len(d.Container.Entries) {
		b.fail("DeclareConstraint: entry %d out of range for %q", entryIndex, d.Name)
		return 0
	}
	e := &d.Container.Entries[entryIndex]
	d.Container.Constraints = append(d.Container.Constraints, ConstraintEntity{
		Name:   e.Name,
		Type:   e.Type,
		Offset: e.Offset,
	})
	return uint16(len(d.Container.Constraints) - 1)
}

// Derive declares derived as a specialization of base, selected when every
// condition holds. Conditions reference constraint entities previously
// declared on base. The derived container's first entry must be the base
// inclusion; Build generates base's identification sequence from all
// declared derivations in order.
func (b *Builder) Derive(base, derived TypeId, conds ...Condition) {
	bd := b.local(base)
	dd := b.local(derived)
	if bd == nil || bd.Container == nil {
		b.fail("Derive: base %s is not a local container", base)
		return
	}
	if dd == nil || dd.Container == nil {
		b.fail("Derive: derived %s is not a local container", derived)
		return
	}
	bt := dd.Container.BaseType()
	if bt == nil || bt.Type != base {
		b.fail("Derive: %q does not lead with a base inclusion of %q", dd.Name, bd.Name)
		return
	}
	for _, cond := range conds {
		if int(cond.Entity) >= len(bd.Container.Constraints) {
			b.fail("Derive: condition references unknown entity %d on %q", cond.Entity, bd.Name)
			return
		}
	}
	b.derivs[base.Index] = append(b.derivs[base.Index], derivSpec{derived: derived, conds: conds})
}

// Build finalizes the component: identification sequences are generated and
// packed-identical flags computed. The builder must not be reused after.
func (b *Builder) Build() (*Component, error) {
	if b.err != nil {
		return nil, b.err
	}
	for baseIdx, specs := range b.derivs {
		b.buildIdentSequence(&b.comp.Types[baseIdx], specs)
	}
	computePackedFlags(b.comp)
	return b.comp, nil
}

// buildIdentSequence lays the derivation specs out as a chain-per-derivative
// decision tree: equality advances along a derivative's condition chain to
// its result node, any inequality jumps to the next derivative's chain, and
// falling off the last chain is the no-match dead end.
func (b *Builder) buildIdentSequence(d *Descriptor, specs []derivSpec) {
	det := d.Container
	det.Derivatives = det.Derivatives[:0]
	det.IdentSequence = det.IdentSequence[:0]

	starts := make([]int32, len(specs)+1)
	total := int32(0)
	for i, spec := range specs {
		starts[i] = total
		total += int32(len(spec.conds)) + 1
	}
	starts[len(specs)] = -1

	for i, spec := range specs {
		det.Derivatives = append(det.Derivatives, spec.derived)
		miss := starts[i+1]
		for _, cond := range spec.conds {
			det.IdentSequence = append(det.IdentSequence, IdentNode{
				Op:      IdentCompare,
				Entity:  cond.Entity,
				Ref:     cond.Value,
				Next:    int32(len(det.IdentSequence)) + 1,
				Less:    miss,
				Greater: miss,
			})
		}
		det.IdentSequence = append(det.IdentSequence, IdentNode{
			Op:         IdentResult,
			Derivative: uint16(i),
		})
	}
}

// computePackedFlags marks every type whose wire image equals its native
// image on this host. The flag is a hint: the codec's general path must
// produce identical bytes with or without it. Cross-component references
// stay unflagged since the peer table may not be present yet.
func computePackedFlags(c *Component) {
	for i := range c.Types {
		c.Types[i].Flags &^= FlagPackedIdentical
	}
	memo := make([]int8, len(c.Types)) // 0 unknown, 1 packed, -1 not
	var check func(idx uint16) bool
	check = func(idx uint16) bool {
		if memo[idx] != 0 {
			return memo[idx] == 1
		}
		memo[idx] = -1 // break cycles conservatively
		d := &c.Types[idx]
		packed := false
		switch d.Kind {
		case KindUnsignedInt, KindSignedInt:
			packed = d.Size.Bits == 8*d.Size.Bytes &&
				d.Number.Encoding == TwosComplement &&
				!d.Number.BitInvert &&
				(d.Size.Bytes == 1 || d.Number.Order == hostOrder)
		case KindFloat:
			packed = d.Number.Encoding == IEEE754 &&
				d.Size.Bits == 8*d.Size.Bytes &&
				(d.Size.Bits == 32 || d.Size.Bits == 64) &&
				!d.Number.BitInvert &&
				d.Number.Order == hostOrder
		case KindBinary:
			packed = d.Size.Bits == 8*d.Size.Bytes
		case KindArray:
			packed = d.Array.Elem.Component == c.Slot &&
				check(d.Array.Elem.Index)
		case KindContainer:
			packed = d.Size.Bits == 8*d.Size.Bytes
			for i := range d.Container.Entries {
				e := &d.Container.Entries[i]
				if e.Role == RolePadding {
					if e.Offset.Bits%8 != 0 || e.PadBits%8 != 0 {
						packed = false
						break
					}
					continue
				}
				if e.Offset.Bits != 8*e.Offset.Bytes ||
					e.Type.Component != c.Slot ||
					!check(e.Type.Index) {
					packed = false
					break
				}
			}
		}
		if packed {
			memo[idx] = 1
			d.Flags |= FlagPackedIdentical
		}
		return packed
	}
	for i := uint16(1); int(i) < len(c.Types); i++ {
		check(i)
	}
}
