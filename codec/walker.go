package codec

import (
	"strconv"

	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

// MaxDepth is the traversal nesting bound for general walks.
const MaxDepth = 32

// baseDepth bounds base-chain-only traversals, which follow leading
// inclusions rather than arbitrary nesting.
const baseDepth = 8

// Event tells a WalkFunc why it is being called.
type Event uint8

const (
	// EventStart announces entry into a container or array subtree. A walk
	// rooted at a scalar issues no start event.
	EventStart Event = iota
	// EventMember presents one sub-element and awaits a continuation.
	EventMember
)

// Action is the continuation a WalkFunc returns for a member event.
type Action uint8

const (
	// ActionContinue advances to the next sibling.
	ActionContinue Action = iota
	// ActionDescend enters the presented member's own sub-elements. On a
	// scalar member it is equivalent to ActionContinue.
	ActionDescend
	// ActionAscend abandons the remaining siblings and returns to the
	// parent level.
	ActionAscend
	// ActionStop ends the walk immediately.
	ActionStop
)

// MemberInfo describes the element presented by a walk event. Offsets are
// absolute with respect to the traversal root. Desc is nil only for pure
// padding entries, which have no type of their own.
type MemberInfo struct {
	Type   datasheet.TypeId
	Desc   *datasheet.Descriptor
	Entry  *datasheet.Entry // nil for array elements and the root
	Role   datasheet.EntryRole
	Index  int
	Depth  int
	Offset datasheet.OffsetInfo
}

// WalkFunc receives walk events and steers the traversal.
type WalkFunc func(ev Event, m *MemberInfo) (Action, error)

// frame is one level of the walker's fixed stack.
type frame struct {
	desc  *datasheet.Descriptor
	id    datasheet.TypeId
	base  datasheet.OffsetInfo
	index int
}

// Walk traverses the type tree rooted at id, presenting each sub-element to
// fn with its absolute offsets. The traversal is iterative over a fixed
// stack: no recursion, no allocation, bounded by MaxDepth.
func (c *Codec) Walk(id datasheet.TypeId, fn WalkFunc) error {
	var stack [MaxDepth]frame
	return c.walk(id, stack[:], fn)
}

func (c *Codec) walk(id datasheet.TypeId, stack []frame, fn WalkFunc) error {
	desc, err := c.db.Resolve(id)
	if err != nil {
		return err
	}

	if desc.Kind.IsScalar() {
		// Nothing to descend into: exactly one member event for the root.
		m := MemberInfo{Type: id, Desc: desc, Role: datasheet.RoleMember, Index: 0}
		_, err := fn(EventMember, &m)
		return err
	}

	stack[0] = frame{desc: desc, id: id}
	depth := 0

	m := MemberInfo{Type: id, Desc: desc, Role: datasheet.RoleMember, Index: 0}
	action, err := fn(EventStart, &m)
	if err != nil {
		return err
	}
	if action == ActionStop || action == ActionAscend {
		return nil
	}

	for depth >= 0 {
		f := &stack[depth]
		if f.index >= int(f.desc.NumSub) {
			depth--
			continue
		}
		i := f.index
		f.index++

		var m MemberInfo
		m.Index = i
		m.Depth = depth + 1
		switch f.desc.Kind {
		case datasheet.KindContainer:
			e := &f.desc.Container.Entries[i]
			m.Entry = e
			m.Role = e.Role
			m.Offset = f.base.Add(e.Offset)
			if e.Role == datasheet.RolePadding {
				// No type behind the gap; present it and move on.
				action, err := fn(EventMember, &m)
				if err != nil {
					return err
				}
				switch action {
				case ActionAscend:
					depth--
				case ActionStop:
					return nil
				}
				continue
			}
			m.Type = e.Type
			m.Desc, err = c.db.Resolve(e.Type)
			if err != nil {
				return errors.IncompleteDB(errors.PhaseWalk,
					[]string{c.db.TypeName(f.id), strconv.Itoa(i)}, e.Type.String())
			}
		case datasheet.KindArray:
			// Element extents derive from the array's total size, so a
			// base-derived element type keeps its reserved trailing space.
			elem := f.desc.Array.Elem
			m.Type = elem
			m.Desc, err = c.db.Resolve(elem)
			if err != nil {
				return errors.IncompleteDB(errors.PhaseWalk,
					[]string{c.db.TypeName(f.id), strconv.Itoa(i)}, elem.String())
			}
			m.Role = datasheet.RoleArrayElement
			stride := datasheet.OffsetInfo{
				Bits:  f.desc.Size.Bits / f.desc.NumSub,
				Bytes: f.desc.Size.Bytes / f.desc.NumSub,
			}
			m.Offset = f.base.Add(datasheet.OffsetInfo{
				Bits:  stride.Bits * uint32(i),
				Bytes: stride.Bytes * uint32(i),
			})
		}

		action, err := fn(EventMember, &m)
		if err != nil {
			return err
		}
		switch action {
		case ActionContinue:
		case ActionAscend:
			depth--
		case ActionStop:
			return nil
		case ActionDescend:
			if m.Desc == nil || m.Desc.Kind.IsScalar() {
				continue
			}
			if depth+1 >= len(stack) {
				return errors.DepthExceeded(errors.PhaseWalk, len(stack))
			}
			depth++
			stack[depth] = frame{desc: m.Desc, id: m.Type, base: m.Offset}
			sm := MemberInfo{Type: m.Type, Desc: m.Desc, Entry: m.Entry, Role: m.Role, Index: i, Depth: depth, Offset: m.Offset}
			action, err := fn(EventStart, &sm)
			if err != nil {
				return err
			}
			if action == ActionStop {
				return nil
			}
			if action == ActionAscend {
				depth--
			}
		}
	}
	return nil
}
