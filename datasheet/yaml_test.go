package datasheet

import (
	"strings"
	"testing"
)

const yamlFixture = `
slot: 3
name: demo
types:
  - name: u8
    kind: unsigned
    bits: 8
  - name: u16le
    kind: unsigned
    bits: 16
    order: le
  - name: s12
    kind: signed
    bits: 12
    encoding: sign-magnitude
  - name: f32
    kind: float
    bits: 32
  - name: pair
    kind: array
    element: u16le
    count: 2
  - name: hdr
    kind: container
    entries:
      - name: code
        type: u8
      - name: size
        type: u16le
        role: length
        calibration: {num: 1, den: 1, add: -2}
      - name: crc
        type: u16le
        role: error-control
        error-control: crc16-ccitt
  - name: ping
    kind: container
    entries:
      - base: hdr
      - name: magic
        type: u8
        role: fixed-value
        fixed: 42
constraints:
  - container: hdr
    entry: 0
derivations:
  - base: hdr
    derived: ping
    conditions:
      - entity: 0
        value: 5
`

func TestReadYAML(t *testing.T) {
	comp, err := ReadYAML(strings.NewReader(yamlFixture))
	if err != nil {
		t.Fatalf("ReadYAML: %v", err)
	}
	if comp.Slot != 3 || comp.Name != "demo" {
		t.Fatalf("component = %d %q", comp.Slot, comp.Name)
	}

	u16le := comp.Descriptor(comp.FindType("u16le").Index)
	if u16le.Number.Order != LittleEndian || u16le.Number.Encoding != TwosComplement {
		t.Errorf("u16le number detail = %+v", u16le.Number)
	}
	s12 := comp.Descriptor(comp.FindType("s12").Index)
	if s12.Kind != KindSignedInt || s12.Number.Encoding != SignMagnitude {
		t.Errorf("s12 = %v %+v", s12.Kind, s12.Number)
	}
	pair := comp.Descriptor(comp.FindType("pair").Index)
	if pair.Kind != KindArray || pair.NumSub != 2 || pair.Size.Bits != 32 {
		t.Errorf("pair = %v numSub=%d %+v", pair.Kind, pair.NumSub, pair.Size)
	}

	hdr := comp.Descriptor(comp.FindType("hdr").Index)
	entries := hdr.Container.Entries
	if entries[1].Role != RoleLength || entries[1].Calibration.Add != -2 {
		t.Errorf("length entry = %+v", entries[1])
	}
	if entries[2].Role != RoleErrorControl || entries[2].ErrCtl != ErrCtlCRC16CCITT {
		t.Errorf("error-control entry = %+v", entries[2])
	}

	ping := comp.Descriptor(comp.FindType("ping").Index)
	if ping.Container.BaseType() == nil {
		t.Fatal("ping lost its base inclusion")
	}
	fixed := ping.Container.Entries[1]
	if fixed.Role != RoleFixedValue || fixed.Fixed.Compare(UnsignedValue(42)) != 0 {
		t.Errorf("fixed entry = %+v", fixed)
	}

	if len(hdr.Container.IdentSequence) != 2 {
		t.Fatalf("ident sequence = %d nodes, want 2", len(hdr.Container.IdentSequence))
	}
	if hdr.Container.IdentSequence[0].Ref.Compare(UnsignedValue(5)) != 0 {
		t.Errorf("condition ref = %v", hdr.Container.IdentSequence[0].Ref)
	}
}

func TestReadYAMLRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown-field", "slot: 1\nname: x\nbogus: true\n"},
		{"undefined-type", `
slot: 1
name: x
types:
  - name: arr
    kind: array
    element: missing
    count: 2
`},
		{"unknown-kind", `
slot: 1
name: x
types:
  - name: t
    kind: quaternion
`},
		{"duplicate-name", `
slot: 1
name: x
types:
  - name: t
    kind: unsigned
    bits: 8
  - name: t
    kind: unsigned
    bits: 8
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadYAML(strings.NewReader(tt.src)); err == nil {
				t.Fatal("ReadYAML accepted malformed input")
			}
		})
	}
}
