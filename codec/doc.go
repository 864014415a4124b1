// Package codec implements bit-exact conversion between the packed wire
// image and the native in-memory image of datasheet-described types.
//
// # Two Representations
//
// Every type has two layouts, both declared by the schema:
//
//	┌──────────────────────────────────────────────────────────────┐
//	│ native image ←→ [Codec] ←→ packed wire image                │
//	└──────────────────────────────────────────────────────────────┘
//
// The native image is fixed-width and addressable: scalars sit at byte
// offsets in host byte order at standard widths. The wire image is whatever
// the schema declares: arbitrary bit widths, either byte order, and eight
// numeric encodings (two's-complement, sign-magnitude, ones-complement,
// BCD octet and packed, IEEE-754, MIL-STD-1750A), with optional bit
// inversion.
//
// # Key Operations
//
//	PackCompleteObject   - native to wire, derivative resolution + field fixups
//	UnpackCompleteObject - wire to native, with post-unpack verification
//	PackObject/UnpackObject - single-type conversion without post-processing
//	Identify             - resolve the most-specific derivative of a buffer
//	Walk                 - depth-bounded structural traversal
//	LoadValue/StoreValue - scalar native access through tagged values
//
// # Derived Types
//
// A container may declare derivatives discriminated by constraint values
// within it. The complete pack/unpack operations loop: convert the base,
// identify the concrete derivative from the buffer contents, continue at
// the next derivation level, and report the most-derived TypeId actually
// processed. Callers never need to know the concrete type in advance.
//
// # Post-Processing
//
// After a complete pack, entries tagged as declared-length, fixed-value or
// error-control are filled from the packed result (length through an exact
// affine calibration; error control as a checksum or CRC over the packed
// bits excluding the field's own). On unpack the same walk verifies those
// fields instead, and can recompute them into the native object so
// consumers always see self-consistent values regardless of wire
// corruption. Verification mismatches are reported but never stop the
// unpack.
//
// # Concurrency and Allocation
//
// A Codec is stateless between calls: traversal state lives in a fixed
// stack on the call's own frame, no allocation happens during pack, unpack
// or identify, and concurrent calls over one immutable Database are safe.
// Buffers belong exclusively to the call for its duration.
//
// # Errors
//
// All failures are returned as structured errors from the errors package;
// malformed wire bytes can never panic the engine. Post-processing
// mismatches use kinds field_mismatch and error_control_mismatch so callers
// can choose their own rejection policy.
package codec
