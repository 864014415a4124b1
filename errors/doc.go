// Package errors provides structured error types for the eds-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: member path, type name,
// offending value, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhasePack, errors.KindBufferSize).
//		Path("Hdr", "Payload").
//		TypeName("CFE_HDR/CommandHeader").
//		Detail("need %d bits, have %d", need, have).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidID(errors.PhaseResolve, id.String())
//	err := errors.NoMatchingValue(base.String())
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when their Phase and Kind agree,
// so callers can classify failures without string inspection:
//
//	if errors.Is(err, errors.New(errors.PhaseUnpack, errors.KindErrorControlMismatch).Build()) {
//		// corrupted wire data
//	}
package errors
