package datasheet

import (
	"go.uber.org/zap"

	"github.com/wippyai/eds-runtime/errors"
)

// DefaultMaxComponents is the default number of component slots in a
// Database. Mission configurations rarely exceed a few dozen components.
const DefaultMaxComponents = 64

// Component is one mission component's schema table: an ordered list of
// descriptors addressed by local index. Index 0 is reserved so the zero
// TypeId never resolves; builders seed it with an empty placeholder.
type Component struct {
	Slot  uint16
	Name  string
	Types []Descriptor
}

// Descriptor returns the descriptor at the given local index, or nil when
// the index is reserved or out of range.
func (c *Component) Descriptor(index uint16) *Descriptor {
	if index == 0 || int(index) >= len(c.Types) {
		return nil
	}
	return &c.Types[index]
}

// FindType returns the TypeId of the first descriptor with the given
// diagnostic name, or the zero TypeId. Linear scan; intended for tools and
// tests, not hot paths.
func (c *Component) FindType(name string) TypeId {
	for i := 1; i < len(c.Types); i++ {
		if c.Types[i].Name == name {
			return TypeId{Component: c.Slot, Index: uint16(i)}
		}
	}
	return TypeId{}
}

// Database is the two-level type lookup: component slot, then local index.
// Registration belongs to process startup; once populated, a Database is
// read-only and safe for unsynchronized concurrent resolution.
type Database struct {
	slots []*Component
}

// DatabaseOption configures a Database.
type DatabaseOption func(*Database)

// WithMaxComponents sets the number of component slots.
func WithMaxComponents(n int) DatabaseOption {
	return func(db *Database) {
		db.slots = make([]*Component, n)
	}
}

// NewDatabase creates an empty Database.
func NewDatabase(opts ...DatabaseOption) *Database {
	db := &Database{slots: make([]*Component, DefaultMaxComponents)}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Register installs a component table into the slot named by c.Slot. It
// fails when the slot is out of range or already occupied, or when the
// table violates a structural invariant. The table must not be mutated
// after registration.
func (db *Database) Register(c *Component) error {
	if int(c.Slot) >= len(db.slots) {
		return errors.Registration("component slot %d out of range (max %d)", c.Slot, len(db.slots)-1)
	}
	if db.slots[c.Slot] != nil {
		return errors.Registration("component slot %d already occupied by %q", c.Slot, db.slots[c.Slot].Name)
	}
	if err := c.validate(); err != nil {
		return err
	}
	db.slots[c.Slot] = c
	Logger().Info("component registered",
		zap.Uint16("slot", c.Slot),
		zap.String("name", c.Name),
		zap.Int("types", len(c.Types)-1))
	return nil
}

// Unregister removes the component in the given slot. It fails when the
// slot is out of range or empty. The caller must guarantee no codec call is
// in flight against the component.
func (db *Database) Unregister(slot uint16) error {
	if int(slot) >= len(db.slots) {
		return errors.Registration("component slot %d out of range (max %d)", slot, len(db.slots)-1)
	}
	if db.slots[slot] == nil {
		return errors.Registration("component slot %d is empty", slot)
	}
	name := db.slots[slot].Name
	db.slots[slot] = nil
	Logger().Info("component unregistered",
		zap.Uint16("slot", slot),
		zap.String("name", name))
	return nil
}

// Component returns the table registered in the given slot, or nil.
func (db *Database) Component(slot uint16) *Component {
	if int(slot) >= len(db.slots) {
		return nil
	}
	return db.slots[slot]
}

// Components returns the registered tables in slot order.
func (db *Database) Components() []*Component {
	out := make([]*Component, 0, len(db.slots))
	for _, c := range db.slots {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Resolve maps a TypeId to its descriptor. Every index is bounds-checked;
// an arbitrary id yields a resolve error, never an out-of-range access.
func (db *Database) Resolve(id TypeId) (*Descriptor, error) {
	if int(id.Component) >= len(db.slots) {
		return nil, errors.InvalidID(errors.PhaseResolve, id.String())
	}
	c := db.slots[id.Component]
	if c == nil {
		return nil, errors.InvalidID(errors.PhaseResolve, id.String())
	}
	d := c.Descriptor(id.Index)
	if d == nil {
		return nil, errors.InvalidID(errors.PhaseResolve, id.String())
	}
	return d, nil
}

// TypeName returns a human-readable "component/type" label for diagnostics,
// falling back to the raw id when the type is unknown.
func (db *Database) TypeName(id TypeId) string {
	if int(id.Component) < len(db.slots) {
		if c := db.slots[id.Component]; c != nil {
			if d := c.Descriptor(id.Index); d != nil && d.Name != "" {
				return c.Name + "/" + d.Name
			}
		}
	}
	return id.String()
}
