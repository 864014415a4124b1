// Package edsruntime provides a runtime type database and bit-exact binary
// codec for Electronic Data Sheet described command and telemetry objects.
//
// An EDS describes every message a flight component exchanges: the exact
// bit layout on the wire, the native in-memory layout, and the derivation
// relationships between generic headers and concrete message types. This
// library loads those descriptions at runtime and converts objects between
// their native and packed forms without any generated per-type code.
//
// # Architecture Overview
//
// The library is organized into focused packages:
//
//	edsruntime/          Root package with the Runtime convenience facade
//	├── datasheet/       Type database: descriptors, components, builder,
//	│                    binary and YAML datasheet loading
//	├── codec/           Pack/unpack engine, structure walker, derivative
//	│                    identification, post-processing
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Load a datasheet and unpack a received message:
//
//	rt, err := edsruntime.Open("msgs.eds")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	id := rt.Database().Component(1).FindType("CmdHeader")
//	native := make([]byte, 64)
//	_, err = rt.Codec().UnpackCompleteObject(&id, native, wire, codec.UnpackOptions{})
//
// After the call id names the concrete derived type the wire bytes
// identified as, and native holds its host-order image.
//
// # Packed and Native Forms
//
// Every type has two extents. The packed form is the wire image: fields
// are bit-contiguous at schema-declared bit offsets, byte order and
// encoding are whatever the schema says. The native form is the host
// image: every field widened to a standard width, aligned, in host byte
// order, directly usable as ordinary integers and floats. Types whose two
// forms coincide on the current host are block-copied; the flag is
// recomputed whenever a datasheet is loaded, so a database built on a
// big-endian host stays correct on a little-endian one.
//
// # Derivatives
//
// A base container (a message header) lists derived types distinguished by
// constraint values (a message id field). Identification reads the native
// image; the complete pack and unpack operations re-identify and re-run
// until the most-derived type is reached, so callers work in terms of the
// base type and receive the concrete one.
//
// # Thread Safety
//
// Database registration is not synchronized with readers. Register all
// components first; afterwards any number of goroutines may resolve,
// pack, and unpack concurrently.
package edsruntime
