package datasheet

// BasicKind is the fundamental classification of a type.
type BasicKind uint8

const (
	KindNone BasicKind = iota
	KindSignedInt
	KindUnsignedInt
	KindFloat
	KindBinary
	KindArray
	KindContainer
)

var kindNames = [...]string{
	KindNone:        "none",
	KindSignedInt:   "signed",
	KindUnsignedInt: "unsigned",
	KindFloat:       "float",
	KindBinary:      "binary",
	KindArray:       "array",
	KindContainer:   "container",
}

func (k BasicKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether the kind has no sub-elements.
func (k BasicKind) IsScalar() bool {
	return k != KindArray && k != KindContainer
}

// IsNumber reports whether the kind carries a NumberDetail.
func (k BasicKind) IsNumber() bool {
	return k == KindSignedInt || k == KindUnsignedInt || k == KindFloat
}

// ByteOrder is the wire byte order of a numeric type.
type ByteOrder uint8

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

func (o ByteOrder) String() string {
	if o == LittleEndian {
		return "LE"
	}
	return "BE"
}

// Encoding is the numeric wire encoding of a number type.
type Encoding uint8

const (
	TwosComplement Encoding = iota
	SignMagnitude
	OnesComplement
	BCDOctet
	PackedBCD
	IEEE754
	MILSTD1750A
)

var encodingNames = [...]string{
	TwosComplement: "twos-complement",
	SignMagnitude:  "sign-magnitude",
	OnesComplement: "ones-complement",
	BCDOctet:       "bcd-octet",
	PackedBCD:      "packed-bcd",
	IEEE754:        "ieee754",
	MILSTD1750A:    "milstd1750a",
}

func (e Encoding) String() string {
	if int(e) < len(encodingNames) {
		return encodingNames[e]
	}
	return "unknown"
}

// EntryRole tags the purpose of one container entry.
type EntryRole uint8

const (
	RoleMember EntryRole = iota
	RoleBaseType
	RolePadding
	RoleLength
	RoleErrorControl
	RoleFixedValue
	RoleArrayElement
)

var roleNames = [...]string{
	RoleMember:       "member",
	RoleBaseType:     "base",
	RolePadding:      "padding",
	RoleLength:       "length",
	RoleErrorControl: "error-control",
	RoleFixedValue:   "fixed-value",
	RoleArrayElement: "element",
}

func (r EntryRole) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// ErrorControl selects the algorithm backing an error-control entry.
type ErrorControl uint8

const (
	ErrCtlNone ErrorControl = iota
	ErrCtlChecksum8
	ErrCtlChecksum16
	ErrCtlXOR
	ErrCtlCRC8
	ErrCtlCRC16CCITT
)

var errCtlNames = [...]string{
	ErrCtlNone:       "none",
	ErrCtlChecksum8:  "checksum8",
	ErrCtlChecksum16: "checksum16",
	ErrCtlXOR:        "xor",
	ErrCtlCRC8:       "crc8",
	ErrCtlCRC16CCITT: "crc16-ccitt",
}

func (e ErrorControl) String() string {
	if int(e) < len(errCtlNames) {
		return errCtlNames[e]
	}
	return "unknown"
}

// Flags carries build-time-computed optimization hints for a descriptor.
type Flags uint8

const (
	// FlagPackedIdentical marks a type whose packed wire image is
	// bit-identical to its native in-memory image on this host, enabling
	// the codec's block-copy fast path.
	FlagPackedIdentical Flags = 1 << iota
)

// Packed reports whether the packed-identical hint is set.
func (f Flags) Packed() bool {
	return f&FlagPackedIdentical != 0
}
