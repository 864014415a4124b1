package codec

import (
	"bytes"
	"testing"

	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

func TestIdentify(t *testing.T) {
	f := newFixture(t)
	hdrDesc := f.desc(t, "hdr")
	native := make([]byte, f.desc(t, "ping").Size.Bytes)

	t.Run("ping", func(t *testing.T) {
		native[0] = 5
		idx, concrete, err := f.c.Identify(f.ids["hdr"], native)
		if err != nil {
			t.Fatalf("Identify: %v", err)
		}
		if idx != 0 || concrete != f.ids["ping"] {
			t.Errorf("got derivative %d %v, want 0 %v", idx, concrete, f.ids["ping"])
		}
	})
	t.Run("noop", func(t *testing.T) {
		native[0] = 6
		idx, concrete, err := f.c.Identify(f.ids["hdr"], native)
		if err != nil {
			t.Fatalf("Identify: %v", err)
		}
		if idx != 1 || concrete != f.ids["noop"] {
			t.Errorf("got derivative %d %v, want 1 %v", idx, concrete, f.ids["noop"])
		}
	})
	t.Run("no-match", func(t *testing.T) {
		native[0] = 7
		_, _, err := f.c.Identify(f.ids["hdr"], native)
		if !errors.IsKind(err, errors.KindNoMatchingValue) {
			t.Fatalf("err = %v, want no_matching_value", err)
		}
	})
	t.Run("underived-type", func(t *testing.T) {
		_, _, err := f.c.Identify(f.ids["u16"], native)
		if !errors.IsKind(err, errors.KindNoMatchingValue) {
			t.Fatalf("err = %v, want no_matching_value", err)
		}
	})
	t.Run("short-native", func(t *testing.T) {
		_, _, err := f.c.Identify(f.ids["hdr"], make([]byte, int(hdrDesc.Size.Bytes)-1))
		if !errors.IsKind(err, errors.KindInvalidID) {
			t.Fatalf("err = %v, want invalid_id", err)
		}
	})
}

func TestBaseCheck(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name          string
		base, derived string
		want          bool
	}{
		{"direct", "hdr", "ping", true},
		{"self", "hdr", "hdr", true},
		{"reversed", "ping", "hdr", false},
		{"unrelated", "u16", "ping", false},
		{"sibling", "noop", "ping", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.c.BaseCheck(f.ids[tt.base], f.ids[tt.derived]); got != tt.want {
				t.Errorf("BaseCheck = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConstraintIterator(t *testing.T) {
	f := newFixture(t)
	var got []ConstraintValue
	err := f.c.ConstraintIterator(datasheet.TypeId{}, f.ids["ping"], func(cv ConstraintValue) error {
		got = append(got, cv)
		return nil
	})
	if err != nil {
		t.Fatalf("ConstraintIterator: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d constraint values, want 1", len(got))
	}
	cv := got[0]
	if cv.Name != "code" || cv.Type != f.ids["u8"] || cv.Offset.Bytes != 0 {
		t.Errorf("constraint = %+v", cv)
	}
	if cv.Value.Compare(datasheet.UnsignedValue(5)) != 0 {
		t.Errorf("constraint value = %v, want 5", cv.Value)
	}

	// Explicit base equal to the only ancestor yields the same view.
	var viaBase int
	err = f.c.ConstraintIterator(f.ids["hdr"], f.ids["ping"], func(ConstraintValue) error {
		viaBase++
		return nil
	})
	if err != nil || viaBase != 1 {
		t.Fatalf("explicit base: %d values, err %v", viaBase, err)
	}

	// A base the derived type never reaches is an error.
	err = f.c.ConstraintIterator(f.ids["u16"], f.ids["ping"], func(ConstraintValue) error { return nil })
	if err == nil {
		t.Fatal("unrelated base accepted")
	}
}

func TestInitializeNativeObject(t *testing.T) {
	f := newFixture(t)
	ping := f.desc(t, "ping")
	native := make([]byte, ping.Size.Bytes)
	for i := range native {
		native[i] = 0xEE
	}
	if err := f.c.InitializeNativeObject(f.ids["ping"], native); err != nil {
		t.Fatalf("InitializeNativeObject: %v", err)
	}
	// Constraint value seeded: the object identifies as itself.
	if native[0] != 5 {
		t.Errorf("code byte = %d, want 5", native[0])
	}
	_, concrete, err := f.c.Identify(f.ids["hdr"], native)
	if err != nil || concrete != f.ids["ping"] {
		t.Fatalf("initialized object identifies as %v (%v), want ping", concrete, err)
	}
	// Fixed value seeded.
	magic := ping.Container.Entries[2]
	if native[magic.Offset.Bytes] != 0x2A {
		t.Errorf("magic byte = %#x, want 0x2A", native[magic.Offset.Bytes])
	}
	// Everything else zeroed.
	if native[8] != 0 || native[9] != 0 {
		t.Errorf("param bytes not zeroed: % X", native[8:12])
	}
}

func TestCompleteObjectRoundTrip(t *testing.T) {
	f := newFixture(t)
	ping := f.desc(t, "ping")
	u32 := f.desc(t, "u32")
	u16 := f.desc(t, "u16")

	native := make([]byte, ping.Size.Bytes)
	if err := f.c.InitializeNativeObject(f.ids["ping"], native); err != nil {
		t.Fatalf("InitializeNativeObject: %v", err)
	}
	if err := StoreValue(u32, native[8:], datasheet.UnsignedValue(0xDEADBEEF)); err != nil {
		t.Fatal(err)
	}
	// Garbage in the length field must not survive packing.
	if err := StoreValue(u16, native[2:], datasheet.UnsignedValue(0xFFFF)); err != nil {
		t.Fatal(err)
	}

	wire := make([]byte, (ping.Size.Bits+7)/8)
	id := f.ids["hdr"]
	bits, err := f.c.PackCompleteObject(&id, wire, native)
	if err != nil {
		t.Fatalf("PackCompleteObject: %v", err)
	}
	if id != f.ids["ping"] {
		t.Fatalf("packed as %v, want ping", id)
	}
	if bits != ping.Size.Bits {
		t.Errorf("packed %d bits, want %d", bits, ping.Size.Bits)
	}

	// The computed fields hold wire truth, not the native image's zeros:
	// length is the packed byte size, the fixed value its constant.
	if wire[1] != 0 || wire[2] != 10 {
		t.Errorf("length field = % X, want 00 0A", wire[1:3])
	}
	if wire[9] != 0x2A {
		t.Errorf("magic field = %#x, want 0x2A", wire[9])
	}
	wantCRC := errorControlExclude(datasheet.ErrCtlCRC16CCITT, wire, ping.Size.Bits, 24, 16)
	gotCRC := uint64(wire[3])<<8 | uint64(wire[4])
	if gotCRC != wantCRC {
		t.Errorf("crc field = %#x, want %#x", gotCRC, wantCRC)
	}

	// Complete unpack through the base id lands on the concrete type and
	// verifies every computed field.
	back := make([]byte, ping.Size.Bytes)
	backID := f.ids["hdr"]
	if _, err := f.c.UnpackCompleteObject(&backID, back, wire, UnpackOptions{}); err != nil {
		t.Fatalf("UnpackCompleteObject: %v", err)
	}
	if backID != f.ids["ping"] {
		t.Fatalf("unpacked as %v, want ping", backID)
	}
	v, err := LoadValue(u32, back[8:])
	if err != nil {
		t.Fatal(err)
	}
	if v.Compare(datasheet.UnsignedValue(0xDEADBEEF)) != 0 {
		t.Errorf("param = %v, want 0xDEADBEEF", v)
	}
	lenVal, err := LoadValue(u16, back[2:])
	if err != nil {
		t.Fatal(err)
	}
	if lenVal.Compare(datasheet.UnsignedValue(10)) != 0 {
		t.Errorf("length = %v, want 10", lenVal)
	}
}

func TestUnpackCompleteVerification(t *testing.T) {
	f := newFixture(t)
	ping := f.desc(t, "ping")

	native := make([]byte, ping.Size.Bytes)
	if err := f.c.InitializeNativeObject(f.ids["ping"], native); err != nil {
		t.Fatal(err)
	}
	wire := make([]byte, (ping.Size.Bits+7)/8)
	id := f.ids["ping"]
	if _, err := f.c.PackCompleteObject(&id, wire, native); err != nil {
		t.Fatal(err)
	}

	corrupt := bytes.Clone(wire)
	corrupt[6] ^= 0xFF // inside param, covered by the CRC

	back := make([]byte, ping.Size.Bytes)
	backID := f.ids["hdr"]
	_, err := f.c.UnpackCompleteObject(&backID, back, corrupt, UnpackOptions{})
	if !errors.IsKind(err, errors.KindErrorControlMismatch) {
		t.Fatalf("err = %v, want error_control_mismatch", err)
	}
	// The mismatch does not abort the unpack: the image and id are complete.
	if backID != f.ids["ping"] {
		t.Errorf("id = %v despite mismatch, want ping", backID)
	}

	t.Run("ignore-mismatch", func(t *testing.T) {
		backID := f.ids["hdr"]
		_, err := f.c.UnpackCompleteObject(&backID, back, corrupt, UnpackOptions{IgnoreMismatch: true})
		if err != nil {
			t.Fatalf("IgnoreMismatch still failed: %v", err)
		}
	})

	t.Run("recompute", func(t *testing.T) {
		u16 := f.desc(t, "u16")
		backID := f.ids["hdr"]
		_, err := f.c.UnpackCompleteObject(&backID, back, corrupt, UnpackOptions{
			Recompute:      RecomputeErrorControl,
			IgnoreMismatch: true,
		})
		if err != nil {
			t.Fatalf("UnpackCompleteObject: %v", err)
		}
		got, err := LoadValue(u16, back[4:])
		if err != nil {
			t.Fatal(err)
		}
		want := errorControlExclude(datasheet.ErrCtlCRC16CCITT, corrupt, ping.Size.Bits, 24, 16)
		if got.Uint != want {
			t.Errorf("recomputed crc = %#x, want %#x", got.Uint, want)
		}
	})
}

func TestFixedValueMismatch(t *testing.T) {
	b := datasheet.NewBuilder(1, "fv")
	u8 := b.AddUnsigned("u8", 8)
	rec := b.Container("rec").
		Member("data", u8).
		FixedValue("tag", u8, datasheet.UnsignedValue(0x7E)).
		Build()
	comp, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	db := datasheet.NewDatabase()
	if err := db.Register(comp); err != nil {
		t.Fatal(err)
	}
	c := New(db)

	native := make([]byte, 2)
	wire := make([]byte, 2)
	id := rec
	if _, err := c.PackCompleteObject(&id, wire, native); err != nil {
		t.Fatalf("PackCompleteObject: %v", err)
	}
	if wire[1] != 0x7E {
		t.Fatalf("fixed field = %#x, want 0x7E", wire[1])
	}

	wire[1] = 0x11
	back := make([]byte, 2)
	backID := rec
	_, err = c.UnpackCompleteObject(&backID, back, wire, UnpackOptions{})
	if !errors.IsKind(err, errors.KindFieldMismatch) {
		t.Fatalf("err = %v, want field_mismatch", err)
	}

	// Recompute repairs the native field to the declared constant.
	_, err = c.UnpackCompleteObject(&backID, back, wire, UnpackOptions{
		Recompute:      RecomputeFixedValues,
		IgnoreMismatch: true,
	})
	if err != nil {
		t.Fatalf("UnpackCompleteObject: %v", err)
	}
	if back[1] != 0x7E {
		t.Errorf("recomputed fixed field = %#x, want 0x7E", back[1])
	}
}

func TestMemberQueries(t *testing.T) {
	f := newFixture(t)

	t.Run("by-index", func(t *testing.T) {
		m, err := f.c.MemberByIndex(f.ids["hdr"], 1)
		if err != nil {
			t.Fatalf("MemberByIndex: %v", err)
		}
		if m.Entry.Name != "len" || m.Role != datasheet.RoleLength ||
			m.Offset.Bits != 8 || m.Offset.Bytes != 2 {
			t.Errorf("member = %+v", m)
		}
		if _, err := f.c.MemberByIndex(f.ids["hdr"], 3); !errors.IsKind(err, errors.KindNotFound) {
			t.Errorf("out-of-range err = %v, want not_found", err)
		}
	})

	t.Run("array-by-index", func(t *testing.T) {
		m, err := f.c.MemberByIndex(f.ids["arr3"], 2)
		if err != nil {
			t.Fatalf("MemberByIndex: %v", err)
		}
		if m.Type != f.ids["u16"] || m.Offset.Bits != 32 || m.Offset.Bytes != 4 {
			t.Errorf("member = %+v", m)
		}
	})

	t.Run("by-native-offset", func(t *testing.T) {
		m, err := f.c.MemberByNativeOffset(f.ids["hdr"], 3)
		if err != nil {
			t.Fatalf("MemberByNativeOffset: %v", err)
		}
		if m.Entry.Name != "len" {
			t.Errorf("offset 3 resolved to %q, want len", m.Entry.Name)
		}
		if _, err := f.c.MemberByNativeOffset(f.ids["hdr"], 99); !errors.IsKind(err, errors.KindNotFound) {
			t.Errorf("uncovered offset err = %v, want not_found", err)
		}
	})
}

func TestDerivedQueries(t *testing.T) {
	f := newFixture(t)

	info, err := f.c.GetDerivedInfo(f.ids["hdr"])
	if err != nil {
		t.Fatalf("GetDerivedInfo: %v", err)
	}
	if info.NumDerivatives != 2 {
		t.Errorf("NumDerivatives = %d, want 2", info.NumDerivatives)
	}
	ping := f.desc(t, "ping")
	if info.MaxSize != ping.Size {
		t.Errorf("MaxSize = %+v, want %+v", info.MaxSize, ping.Size)
	}

	d0, err := f.c.DerivedTypeByIndex(f.ids["hdr"], 0)
	if err != nil || d0 != f.ids["ping"] {
		t.Errorf("derivative 0 = %v (%v), want ping", d0, err)
	}
	d1, err := f.c.DerivedTypeByIndex(f.ids["hdr"], 1)
	if err != nil || d1 != f.ids["noop"] {
		t.Errorf("derivative 1 = %v (%v), want noop", d1, err)
	}
	if _, err := f.c.DerivedTypeByIndex(f.ids["hdr"], 2); !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("out-of-range err = %v, want not_found", err)
	}
}
