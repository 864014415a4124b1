// Package datasheet holds the runtime type database consumed by the codec.
//
// An Electronic Data Sheet (EDS) describes every command, telemetry and table
// type a mission component exchanges: exact bit widths, byte orders, numeric
// encodings, container layouts and the constraint values that distinguish
// derived message types. The schema compiler emits that description as a set
// of tables; this package models those tables as immutable Go values and
// provides the bounded lookup used by everything else in the runtime.
//
// # Key Types
//
//	TypeId      - opaque (component, index) identifier for one type
//	Descriptor  - one type's layout: kind, sizes, detail payload
//	Component   - one mission component's ordered descriptor table
//	Database    - slot registry mapping component indices to tables
//	Builder     - programmatic Component construction (tests, YAML loader)
//
// # Descriptor Model
//
// A Descriptor carries a BasicKind discriminator and exactly one of three
// detail payloads (Number, Array, Container) matching that kind. Sizes are
// dual: Size.Bits is the packed wire width, Size.Bytes the native in-memory
// width. Container entries likewise carry dual offsets.
//
// # Lifecycle
//
// Tables are built (or loaded from a datasheet file) once, registered into a
// Database, and never mutated afterwards. Registration validates structural
// invariants: offset monotonicity, size closure, identification-sequence
// link bounds. A registered Database may be shared freely across concurrent
// codec calls; registration itself is not synchronized and belongs to
// process startup.
//
// TypeId resolution is always bounds-checked: an arbitrary TypeId can never
// cause an out-of-range access, only a resolve error.
package datasheet
