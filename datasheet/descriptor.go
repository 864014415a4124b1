package datasheet

// SizeInfo is the dual size of a type: packed wire width in bits and native
// in-memory width in bytes.
type SizeInfo struct {
	Bits  uint32
	Bytes uint32
}

// OffsetInfo is the dual position of a container entry: packed bit offset
// within the wire image and byte offset within the native image.
type OffsetInfo struct {
	Bits  uint32
	Bytes uint32
}

// Add returns o displaced by the given offset.
func (o OffsetInfo) Add(d OffsetInfo) OffsetInfo {
	return OffsetInfo{Bits: o.Bits + d.Bits, Bytes: o.Bytes + d.Bytes}
}

// Descriptor is one schema-generated type record. Exactly one of the detail
// payloads (Number, Array, Container) is non-nil, matching Kind; Binary
// scalars carry no payload at all. Descriptors are immutable once their
// Component is registered.
type Descriptor struct {
	Name   string // diagnostic label only; display names live outside this runtime
	Kind   BasicKind
	Size   SizeInfo
	NumSub uint32 // element/member count, 0 for scalars
	Flags  Flags

	Number    *NumberDetail
	Array     *ArrayDetail
	Container *ContainerDetail
}

// NumberDetail describes the wire form of an integer or float type.
type NumberDetail struct {
	Order     ByteOrder
	Encoding  Encoding
	BitInvert bool
}

// ArrayDetail describes a fixed-length homogeneous array. The element count
// is the descriptor's NumSub; element extents are derived by dividing the
// array's total size, so a single resolve of Elem suffices for traversal.
type ArrayDetail struct {
	Elem TypeId
}

// Calibration is the reversible affine map applied to a declared-length
// field: wire value = size*Num/Den + Add. The zero value is replaced by the
// identity at registration. Den must divide size*Num evenly for every size
// the type can take; the inverse is exact by construction.
type Calibration struct {
	Num int32
	Den int32
	Add int32
}

// Identity reports whether the calibration is the identity map.
func (c Calibration) Identity() bool {
	return (c.Num == c.Den || (c.Num == 0 && c.Den == 0)) && c.Add == 0
}

// Apply maps an object size to the field value.
func (c Calibration) Apply(size int64) int64 {
	if c.Den == 0 {
		return size + int64(c.Add)
	}
	return size*int64(c.Num)/int64(c.Den) + int64(c.Add)
}

// Invert maps a field value back to an object size.
func (c Calibration) Invert(field int64) int64 {
	v := field - int64(c.Add)
	if c.Den == 0 {
		return v
	}
	return v * int64(c.Den) / int64(c.Num)
}

// Entry is one ordered member of a container layout.
type Entry struct {
	Name   string
	Type   TypeId // zero for pure padding entries
	Role   EntryRole
	Offset OffsetInfo

	// Role-specific payloads.
	Fixed       Value        // RoleFixedValue: the schema-declared constant
	ErrCtl      ErrorControl // RoleErrorControl: algorithm selector
	Calibration Calibration  // RoleLength: size-to-field map
	PadBits     uint32       // RolePadding: width of the gap
}

// ConstraintEntity is a location within a container whose value participates
// in distinguishing derivatives. Offsets are relative to the container that
// declares the entity; leading base-type inclusion keeps them valid in every
// derived type.
type ConstraintEntity struct {
	Name   string
	Type   TypeId
	Offset OffsetInfo
}

// IdentOp selects the behavior of one identification-sequence node.
type IdentOp uint8

const (
	// IdentCompare loads the constraint entity and compares it against Ref:
	// equal advances to Next, otherwise control moves to Less or Greater.
	IdentCompare IdentOp = iota
	// IdentResult terminates the walk, naming the matching derivative.
	IdentResult
)

// IdentNode is one node of a container's identification sequence, the binary
// decision tree that resolves which derivative a buffer satisfies. Links are
// node indices within the sequence; a negative link is a dead end.
type IdentNode struct {
	Op IdentOp

	// IdentCompare fields.
	Entity  uint16
	Ref     Value
	Less    int32
	Greater int32
	Next    int32

	// IdentResult field: index into the container's Derivatives list.
	Derivative uint16
}

// ContainerDetail describes an ordered-entry container together with its
// derivation machinery.
type ContainerDetail struct {
	Entries       []Entry
	Derivatives   []TypeId
	Constraints   []ConstraintEntity
	IdentSequence []IdentNode
}

// BaseType returns the container's leading base-type inclusion entry, or nil.
// Derivation is always by leading inclusion, so only the first entry is
// consulted.
func (c *ContainerDetail) BaseType() *Entry {
	if len(c.Entries) > 0 && c.Entries[0].Role == RoleBaseType {
		return &c.Entries[0]
	}
	return nil
}
