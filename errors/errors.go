package errors

import (
	goerrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBuild    Phase = "build"    // datasheet construction / validation
	PhaseLoad     Phase = "load"     // datasheet file ingestion
	PhaseResolve  Phase = "resolve"  // type database lookup
	PhaseWalk     Phase = "walk"     // structure traversal
	PhasePack     Phase = "pack"     // native to wire
	PhaseUnpack   Phase = "unpack"   // wire to native
	PhaseIdentify Phase = "identify" // derivative resolution
	PhaseVerify   Phase = "verify"   // post-processing verification
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidID            Kind = "invalid_id"
	KindIncompleteDB         Kind = "incomplete_db"
	KindNoMatchingValue      Kind = "no_matching_value"
	KindFieldMismatch        Kind = "field_mismatch"
	KindErrorControlMismatch Kind = "error_control_mismatch"
	KindBufferSize           Kind = "buffer_size"
	KindInvalidData          Kind = "invalid_data"
	KindUnsupported          Kind = "unsupported"
	KindNotFound             Kind = "not_found"
	KindRegistration         Kind = "registration"
	KindOverflow             Kind = "overflow"
	KindDepthExceeded        Kind = "depth_exceeded"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	TypeName string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.TypeName != "" {
		b.WriteString(": type ")
		b.WriteString(e.TypeName)
	}

	if e.Detail != "" {
		if e.TypeName != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err carries the given kind, in any phase.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if goerrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Builder provides fluent construction of structured errors
type Builder struct {
	err Error
}

// New starts building an error with the given phase and kind
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path (e.g. "Hdr", "Payload", "3")
func (b *Builder) Path(segments ...string) *Builder {
	b.err.Path = segments
	return b
}

// AppendPath adds segments to the existing path
func (b *Builder) AppendPath(segments ...string) *Builder {
	b.err.Path = append(b.err.Path, segments...)
	return b
}

// TypeName sets the EDS type name
func (b *Builder) TypeName(t string) *Builder {
	b.err.TypeName = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidID creates an invalid type identifier error
func InvalidID(phase Phase, id string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidID,
		Detail: fmt.Sprintf("type id %s does not resolve", id),
		Value:  id,
	}
}

// IncompleteDB creates an error for a schema reference that does not resolve
func IncompleteDB(phase Phase, path []string, id string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIncompleteDB,
		Path:   path,
		Detail: fmt.Sprintf("datasheet reference %s does not resolve", id),
		Value:  id,
	}
}

// NoMatchingValue creates a derivative identification failure
func NoMatchingValue(baseType string) *Error {
	return &Error{
		Phase:    PhaseIdentify,
		Kind:     KindNoMatchingValue,
		TypeName: baseType,
		Detail:   "identification sequence exhausted without a match",
	}
}

// FieldMismatch creates a post-processing field verification failure
func FieldMismatch(path []string, want, got any) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindFieldMismatch,
		Path:   path,
		Detail: fmt.Sprintf("field holds %v, expected %v", got, want),
		Value:  got,
	}
}

// ErrorControlMismatch creates an error-control verification failure
func ErrorControlMismatch(path []string, want, got uint64) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindErrorControlMismatch,
		Path:   path,
		Detail: fmt.Sprintf("computed 0x%X, field holds 0x%X", want, got),
		Value:  got,
	}
}

// BufferSize creates a destination/source capacity error
func BufferSize(phase Phase, path []string, needBits, haveBits int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBufferSize,
		Path:   path,
		Detail: fmt.Sprintf("need %d bits, have %d", needBits, haveBits),
	}
}

// DepthExceeded creates a traversal depth error
func DepthExceeded(phase Phase, maxDepth int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDepthExceeded,
		Detail: fmt.Sprintf("nesting exceeds maximum depth %d", maxDepth),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Registration creates a database registration error
func Registration(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
