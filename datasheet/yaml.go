package datasheet

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/eds-runtime/errors"
)

// YAML datasheet source form. The compiled CBOR artifact is what deployed
// systems ship; the YAML form exists for hand-authored fixtures and tools.
// It is compiled through the Builder, so layout computation and flag
// derivation match programmatic construction exactly.

type yamlComponent struct {
	Slot        uint16           `yaml:"slot"`
	Name        string           `yaml:"name"`
	Types       []yamlType       `yaml:"types"`
	Constraints []yamlConstraint `yaml:"constraints"`
	Derivations []yamlDerivation `yaml:"derivations"`
}

type yamlType struct {
	Name     string      `yaml:"name"`
	Kind     string      `yaml:"kind"`
	Bits     uint32      `yaml:"bits"`
	Order    string      `yaml:"order"`
	Encoding string      `yaml:"encoding"`
	Invert   bool        `yaml:"invert"`
	Element  string      `yaml:"element"`
	Count    uint32      `yaml:"count"`
	Entries  []yamlEntry `yaml:"entries"`
}

type yamlEntry struct {
	Name         string      `yaml:"name"`
	Type         string      `yaml:"type"`
	Base         string      `yaml:"base"`
	Role         string      `yaml:"role"`
	Bits         uint32      `yaml:"bits"`
	Fixed        yaml.Node   `yaml:"fixed"`
	ErrorControl string      `yaml:"error-control"`
	Calibration  Calibration `yaml:"calibration"`
}

type yamlConstraint struct {
	Container string `yaml:"container"`
	Entry     int    `yaml:"entry"`
}

type yamlDerivation struct {
	Base       string          `yaml:"base"`
	Derived    string          `yaml:"derived"`
	Conditions []yamlCondition `yaml:"conditions"`
}

type yamlCondition struct {
	Entity uint16    `yaml:"entity"`
	Value  yaml.Node `yaml:"value"`
}

func yamlFail(detail string, args ...any) error {
	return errors.New(errors.PhaseLoad, errors.KindInvalidData).Detail(detail, args...).Build()
}

func parseOrder(s string) (ByteOrder, error) {
	switch s {
	case "", "be", "big":
		return BigEndian, nil
	case "le", "little":
		return LittleEndian, nil
	}
	return BigEndian, yamlFail("unknown byte order %q", s)
}

func parseEncoding(s string, kind BasicKind) (Encoding, error) {
	if s == "" {
		if kind == KindFloat {
			return IEEE754, nil
		}
		return TwosComplement, nil
	}
	for e, name := range encodingNames {
		if name == s {
			return Encoding(e), nil
		}
	}
	return TwosComplement, yamlFail("unknown encoding %q", s)
}

func parseErrCtl(s string) (ErrorControl, error) {
	if s == "" {
		return ErrCtlNone, nil
	}
	for e, name := range errCtlNames {
		if name == s {
			return ErrorControl(e), nil
		}
	}
	return ErrCtlNone, yamlFail("unknown error control %q", s)
}

func parseValue(n *yaml.Node) (Value, error) {
	if n == nil || n.Kind == 0 {
		return Value{}, yamlFail("missing value")
	}
	var i int64
	if err := n.Decode(&i); err == nil {
		if i < 0 {
			return SignedValue(i), nil
		}
		return UnsignedValue(uint64(i)), nil
	}
	var f float64
	if err := n.Decode(&f); err == nil {
		return FloatValue(f), nil
	}
	var s string
	if err := n.Decode(&s); err == nil {
		return BinaryValue([]byte(s)), nil
	}
	return Value{}, yamlFail("value at line %d is not a scalar", n.Line)
}

// ReadYAML compiles a YAML datasheet source into a Component.
func ReadYAML(r io.Reader) (*Component, error) {
	var src yamlComponent
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&src); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "parse yaml datasheet")
	}

	b := NewBuilder(src.Slot, src.Name)
	ids := make(map[string]TypeId, len(src.Types))
	lookup := func(name string) (TypeId, error) {
		id, ok := ids[name]
		if !ok {
			return TypeId{}, yamlFail("reference to undefined type %q", name)
		}
		return id, nil
	}

	for _, t := range src.Types {
		if t.Name == "" {
			return nil, yamlFail("type without a name")
		}
		if _, dup := ids[t.Name]; dup {
			return nil, yamlFail("duplicate type name %q", t.Name)
		}
		var id TypeId
		switch t.Kind {
		case "unsigned", "signed", "float":
			kind := KindUnsignedInt
			switch t.Kind {
			case "signed":
				kind = KindSignedInt
			case "float":
				kind = KindFloat
			}
			order, err := parseOrder(t.Order)
			if err != nil {
				return nil, err
			}
			enc, err := parseEncoding(t.Encoding, kind)
			if err != nil {
				return nil, err
			}
			id = b.AddNumber(t.Name, kind, t.Bits, NumberDetail{
				Order:     order,
				Encoding:  enc,
				BitInvert: t.Invert,
			})
		case "binary":
			id = b.AddBinary(t.Name, t.Bits)
		case "array":
			elem, err := lookup(t.Element)
			if err != nil {
				return nil, err
			}
			id = b.AddArray(t.Name, elem, t.Count)
		case "container":
			var err error
			id, err = buildYAMLContainer(b, &t, lookup)
			if err != nil {
				return nil, err
			}
		default:
			return nil, yamlFail("type %q has unknown kind %q", t.Name, t.Kind)
		}
		ids[t.Name] = id
	}

	for _, c := range src.Constraints {
		id, err := lookup(c.Container)
		if err != nil {
			return nil, err
		}
		b.DeclareConstraint(id, c.Entry)
	}
	for _, d := range src.Derivations {
		base, err := lookup(d.Base)
		if err != nil {
			return nil, err
		}
		derived, err := lookup(d.Derived)
		if err != nil {
			return nil, err
		}
		conds := make([]Condition, 0, len(d.Conditions))
		for _, yc := range d.Conditions {
			v, err := parseValue(&yc.Value)
			if err != nil {
				return nil, err
			}
			conds = append(conds, Condition{Entity: yc.Entity, Value: v})
		}
		b.Derive(base, derived, conds...)
	}

	return b.Build()
}

func buildYAMLContainer(b *Builder, t *yamlType, lookup func(string) (TypeId, error)) (TypeId, error) {
	cb := b.Container(t.Name)
	for i, e := range t.Entries {
		if e.Base != "" {
			if i != 0 {
				return TypeId{}, yamlFail("container %q: base must be the first entry", t.Name)
			}
			base, err := lookup(e.Base)
			if err != nil {
				return TypeId{}, err
			}
			cb.Base(base)
			continue
		}
		if e.Role == "padding" {
			cb.Padding(e.Bits)
			continue
		}
		et, err := lookup(e.Type)
		if err != nil {
			return TypeId{}, err
		}
		switch e.Role {
		case "", "member":
			cb.Member(e.Name, et)
		case "length":
			cb.Length(e.Name, et, e.Calibration)
		case "error-control":
			ec, err := parseErrCtl(e.ErrorControl)
			if err != nil {
				return TypeId{}, err
			}
			cb.ErrorControl(e.Name, et, ec)
		case "fixed-value":
			v, err := parseValue(&e.Fixed)
			if err != nil {
				return TypeId{}, err
			}
			cb.FixedValue(e.Name, et, v)
		default:
			return TypeId{}, yamlFail("container %q entry %q: unknown role %q", t.Name, e.Name, e.Role)
		}
	}
	return cb.Build(), nil
}

// ReadYAMLFile compiles a YAML datasheet source file.
func ReadYAMLFile(path string) (*Component, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "open yaml datasheet")
	}
	defer f.Close()
	return ReadYAML(f)
}
