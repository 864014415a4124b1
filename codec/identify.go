package codec

import (
	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

// Derivative identification. A container with derivatives carries an
// identification sequence: a decision tree over constraint entity values
// that resolves which derived type a native image satisfies. Identification
// always reads the NATIVE image; callers unpack the base first, then
// identify, then unpack the concrete type over the same wire bytes.

// ConstraintValue is one schema-pinned value that distinguishes a derived
// type: the entity's location and descriptor together with the value the
// derivative requires there.
type ConstraintValue struct {
	Name   string
	Type   datasheet.TypeId
	Offset datasheet.OffsetInfo
	Value  datasheet.Value
}

// Identify resolves which direct derivative of base the native image
// satisfies. Returns the derivative's index in the base's derivative list
// and its type id. A base with no identification sequence, or an image
// matching no derivative, yields a no-matching-value error.
func (c *Codec) Identify(base datasheet.TypeId, native []byte) (int, datasheet.TypeId, error) {
	desc, err := c.db.Resolve(base)
	if err != nil {
		return 0, datasheet.TypeId{}, err
	}
	if desc.Kind != datasheet.KindContainer || len(desc.Container.IdentSequence) == 0 {
		return 0, datasheet.TypeId{}, errors.NoMatchingValue(c.db.TypeName(base))
	}
	if err := checkNative(errors.PhaseIdentify, desc, native); err != nil {
		return 0, datasheet.TypeId{}, err
	}

	cd := desc.Container
	pos := int32(0)
	// Each step moves strictly through the tree; more steps than nodes
	// means the sequence is malformed.
	for steps := 0; steps <= len(cd.IdentSequence); steps++ {
		n := &cd.IdentSequence[pos]
		if n.Op == datasheet.IdentResult {
			return int(n.Derivative), cd.Derivatives[n.Derivative], nil
		}
		ent := &cd.Constraints[n.Entity]
		ed, err := c.db.Resolve(ent.Type)
		if err != nil {
			return 0, datasheet.TypeId{}, errors.IncompleteDB(errors.PhaseIdentify,
				[]string{c.db.TypeName(base), ent.Name}, ent.Type.String())
		}
		v, err := LoadValue(ed, native[ent.Offset.Bytes:])
		if err != nil {
			return 0, datasheet.TypeId{}, err
		}
		switch cmp := v.Compare(n.Ref); {
		case cmp == 0:
			pos = n.Next
		case cmp < 0:
			pos = n.Less
		default:
			pos = n.Greater
		}
		if pos < 0 {
			return 0, datasheet.TypeId{}, errors.NoMatchingValue(c.db.TypeName(base))
		}
	}
	return 0, datasheet.TypeId{}, errors.InvalidData(errors.PhaseIdentify,
		[]string{c.db.TypeName(base)}, "identification sequence does not terminate")
}

// baseOf returns the type's leading base-type inclusion, if any.
func (c *Codec) baseOf(id datasheet.TypeId) (datasheet.TypeId, bool) {
	d, err := c.db.Resolve(id)
	if err != nil || d.Kind != datasheet.KindContainer {
		return datasheet.TypeId{}, false
	}
	if e := d.Container.BaseType(); e != nil {
		return e.Type, true
	}
	return datasheet.TypeId{}, false
}

// BaseCheck reports whether derived is base itself or reaches it through
// its chain of leading base-type inclusions.
func (c *Codec) BaseCheck(base, derived datasheet.TypeId) bool {
	cur := derived
	for depth := 0; depth <= baseDepth; depth++ {
		if cur == base {
			return true
		}
		next, ok := c.baseOf(cur)
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// identCond is one equality taken on the path to a derivative's result node.
type identCond struct {
	entity uint16
	ref    datasheet.Value
}

// findConditions walks the identification sequence depth-first for the
// result node naming deriv, collecting the equalities taken along the way.
func findConditions(cd *datasheet.ContainerDetail, deriv uint16) ([]identCond, bool) {
	var path []identCond
	var dfs func(pos int32, budget int) bool
	dfs = func(pos int32, budget int) bool {
		if pos < 0 || int(pos) >= len(cd.IdentSequence) || budget == 0 {
			return false
		}
		n := &cd.IdentSequence[pos]
		if n.Op == datasheet.IdentResult {
			return n.Derivative == deriv
		}
		path = append(path, identCond{entity: n.Entity, ref: n.Ref})
		if dfs(n.Next, budget-1) {
			return true
		}
		path = path[:len(path)-1]
		return dfs(n.Less, budget-1) || dfs(n.Greater, budget-1)
	}
	if dfs(0, len(cd.IdentSequence)+1) {
		return path, true
	}
	return nil, false
}

// ConstraintIterator presents every constraint value that pins derived
// apart from base, walking the derivation chain. A zero base means the
// whole chain up to the underived root. Values are presented outermost
// base first, so a consumer storing them in order leaves the most-derived
// level's value in place on any overlap. Offsets are valid within derived's
// native image thanks to leading base-type inclusion.
func (c *Codec) ConstraintIterator(base, derived datasheet.TypeId, fn func(ConstraintValue) error) error {
	type level struct {
		cd    *datasheet.ContainerDetail
		conds []identCond
	}
	var levels []level

	cur := derived
	for depth := 0; ; depth++ {
		if depth > baseDepth {
			return errors.DepthExceeded(errors.PhaseResolve, baseDepth)
		}
		if cur == base {
			break
		}
		parent, ok := c.baseOf(cur)
		if !ok {
			if base.IsValid() {
				return errors.InvalidID(errors.PhaseResolve, derived.String())
			}
			break
		}
		pd, err := c.db.Resolve(parent)
		if err != nil {
			return err
		}
		idx, ok := derivativeIndex(pd.Container, cur)
		if !ok {
			return errors.InvalidData(errors.PhaseResolve,
				[]string{c.db.TypeName(parent)}, "derived type not registered on its base")
		}
		conds, ok := findConditions(pd.Container, idx)
		if !ok {
			return errors.NoMatchingValue(c.db.TypeName(parent))
		}
		levels = append(levels, level{cd: pd.Container, conds: conds})
		cur = parent
	}

	for i := len(levels) - 1; i >= 0; i-- {
		lv := levels[i]
		for _, cond := range lv.conds {
			ent := &lv.cd.Constraints[cond.entity]
			cv := ConstraintValue{Name: ent.Name, Type: ent.Type, Offset: ent.Offset, Value: cond.ref}
			if err := fn(cv); err != nil {
				return err
			}
		}
	}
	return nil
}

func derivativeIndex(cd *datasheet.ContainerDetail, id datasheet.TypeId) (uint16, bool) {
	for i, d := range cd.Derivatives {
		if d == id {
			return uint16(i), true
		}
	}
	return 0, false
}
