package datasheet

import "fmt"

// TypeId identifies one type within one component's table. It is opaque to
// callers: the pair is only ever interpreted by Database.Resolve. The zero
// value is deliberately invalid (component slots start at 0 but local index
// 0 is reserved), so uninitialized ids never resolve.
type TypeId struct {
	Component uint16
	Index     uint16
}

// IsValid reports whether the id could possibly resolve. It does not consult
// any database; Resolve performs the authoritative bounds check.
func (id TypeId) IsValid() bool {
	return id.Index != 0
}

func (id TypeId) String() string {
	return fmt.Sprintf("%d:%d", id.Component, id.Index)
}
