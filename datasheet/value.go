package datasheet

import (
	"bytes"
	"fmt"
	"math"
)

// ValueKind tags the active variant of a Value.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueSigned
	ValueUnsigned
	ValueFloat
	ValueBinary
)

var valueKindNames = [...]string{
	ValueNone:     "none",
	ValueSigned:   "signed",
	ValueUnsigned: "unsigned",
	ValueFloat:    "float",
	ValueBinary:   "binary",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "unknown"
}

// Value is the tagged generic value bridging scalar load/store, constraint
// reference values and discriminant comparisons. Only the field matching
// Kind is meaningful.
type Value struct {
	Kind ValueKind
	Int  int64
	Uint uint64
	Flt  float64
	Bin  []byte
}

// SignedValue returns a signed-integer Value.
func SignedValue(v int64) Value { return Value{Kind: ValueSigned, Int: v} }

// UnsignedValue returns an unsigned-integer Value.
func UnsignedValue(v uint64) Value { return Value{Kind: ValueUnsigned, Uint: v} }

// FloatValue returns a floating-point Value.
func FloatValue(v float64) Value { return Value{Kind: ValueFloat, Flt: v} }

// BinaryValue returns a fixed-length blob Value. The slice is referenced,
// not copied.
func BinaryValue(b []byte) Value { return Value{Kind: ValueBinary, Bin: b} }

func (v Value) String() string {
	switch v.Kind {
	case ValueSigned:
		return fmt.Sprintf("%d", v.Int)
	case ValueUnsigned:
		return fmt.Sprintf("%d", v.Uint)
	case ValueFloat:
		return fmt.Sprintf("%g", v.Flt)
	case ValueBinary:
		return fmt.Sprintf("%x", v.Bin)
	default:
		return "none"
	}
}

// ConvertTo converts v to the representation matching the target basic kind.
// Conversions are total and lossy-but-defined: floats truncate toward zero
// into integer targets, integers widen exactly into float targets, and
// signed/unsigned reinterpret the same 64-bit pattern. A binary value only
// converts to a Binary target; any impossible conversion yields a Value of
// kind none.
func (v Value) ConvertTo(target BasicKind) Value {
	switch target {
	case KindSignedInt:
		switch v.Kind {
		case ValueSigned:
			return v
		case ValueUnsigned:
			return SignedValue(int64(v.Uint))
		case ValueFloat:
			return SignedValue(truncFloat(v.Flt))
		}
	case KindUnsignedInt:
		switch v.Kind {
		case ValueSigned:
			return UnsignedValue(uint64(v.Int))
		case ValueUnsigned:
			return v
		case ValueFloat:
			return UnsignedValue(uint64(truncFloat(v.Flt)))
		}
	case KindFloat:
		switch v.Kind {
		case ValueSigned:
			return FloatValue(float64(v.Int))
		case ValueUnsigned:
			return FloatValue(float64(v.Uint))
		case ValueFloat:
			return v
		}
	case KindBinary, KindArray, KindContainer:
		if v.Kind == ValueBinary {
			return v
		}
	}
	return Value{}
}

func truncFloat(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

// Compare orders v against a reference value of the same family, returning
// a negative, zero or positive result. The loaded value is first converted
// to the reference's kind, so a constraint declared as unsigned compares
// unsigned regardless of how the buffer's scalar was classified. Binary
// values compare as fixed-length byte strings.
func (v Value) Compare(ref Value) int {
	switch ref.Kind {
	case ValueSigned:
		c := v.ConvertTo(KindSignedInt)
		return cmpInt64(c.Int, ref.Int)
	case ValueUnsigned:
		c := v.ConvertTo(KindUnsignedInt)
		return cmpUint64(c.Uint, ref.Uint)
	case ValueFloat:
		c := v.ConvertTo(KindFloat)
		switch {
		case c.Flt < ref.Flt:
			return -1
		case c.Flt > ref.Flt:
			return 1
		}
		return 0
	case ValueBinary:
		return bytes.Compare(v.Bin, ref.Bin)
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
