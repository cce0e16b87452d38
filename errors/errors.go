package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAlloc    Phase = "alloc"    // buffer allocation
	PhaseValidate Phase = "validate" // UTF-8 / NUL legality
	PhaseEscape   Phase = "escape"   // JSON escaping
	PhaseDecode   Phase = "decode"   // epoch milliseconds to calendar
	PhaseEncode   Phase = "encode"   // calendar to epoch milliseconds
	PhaseBoundary Phase = "boundary" // adaptation layer input checks
	PhaseHost     Phase = "host"     // wasm guest calls
	PhaseCLI      Phase = "cli"      // command line handling
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation   Kind = "allocation"
	KindInvalidUTF8  Kind = "invalid_utf8"
	KindHasNul       Kind = "has_nul"
	KindTruncated    Kind = "truncated"
	KindOutOfRange   Kind = "out_of_range"
	KindOverflow     Kind = "overflow"
	KindTypeMismatch Kind = "type_mismatch"
	KindInvalidInput Kind = "invalid_input"
	KindOutOfBounds  Kind = "out_of_bounds"
)

// Sentinels for errors.Is. They carry no phase and match any phase.
var (
	ErrAllocation   = sentinel(KindAllocation)
	ErrInvalidUTF8  = sentinel(KindInvalidUTF8)
	ErrHasNul       = sentinel(KindHasNul)
	ErrTruncated    = sentinel(KindTruncated)
	ErrOutOfRange   = sentinel(KindOutOfRange)
	ErrOverflow     = sentinel(KindOverflow)
	ErrTypeMismatch = sentinel(KindTypeMismatch)
	ErrInvalidInput = sentinel(KindInvalidInput)
	ErrOutOfBounds  = sentinel(KindOutOfBounds)
)

func sentinel(kind Kind) *Error {
	return &Error{Kind: kind, Offset: noOffset}
}

// noOffset marks an error that is not tied to a byte position.
const noOffset = -1

// Error is the structured error type used throughout the codec
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Detail string
	Path   []string
	// Offset is the byte position the error was detected at, or -1.
	Offset int
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

	if e.Offset >= 0 {
		b.WriteString(" (byte ")
		b.WriteString(strconv.Itoa(e.Offset))
		b.WriteByte(')')
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
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

// Is reports whether target matches this error. Kinds must be equal; the
// phase only has to match when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Phase == "" || e.Phase == t.Phase
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: noOffset,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// At sets the byte offset
func (b *Builder) At(offset int) *Builder {
	b.err.Offset = offset
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
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

// previewLen caps how many bytes of offending input end up in a message.
const previewLen = 16

func preview(data []byte, at int) []byte {
	if at < 0 || at > len(data) {
		at = 0
	}
	end := at + previewLen
	if end > len(data) {
		end = len(data)
	}
	return data[at:end]
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, data []byte, at int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Offset: at,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview(data, at)),
	}
}

// HasNul creates an embedded NUL error
func HasNul(phase Phase, at int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindHasNul,
		Offset: at,
		Detail: "NUL byte not allowed",
	}
}

// Truncated creates a truncated sequence error
func Truncated(phase Phase, at, want, have int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncated,
		Offset: at,
		Detail: fmt.Sprintf("sequence needs %d bytes, %d left", want, have),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size int) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindAllocation,
		Offset: noOffset,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
	}
}

// OutOfRange creates a domain error for a calendar field or timestamp
func OutOfRange(phase Phase, field string, value any, lo, hi any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Path:   []string{field},
		Offset: noOffset,
		Detail: fmt.Sprintf("%v outside [%v, %v]", value, lo, hi),
		Value:  value,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Offset: noOffset,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Offset: noOffset,
		GoType: goType,
		Detail: "want " + want,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Offset: noOffset,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: noOffset,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: noOffset,
		Detail: detail,
		Cause:  cause,
	}
}
