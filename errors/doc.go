// Package errors provides structured error types for the codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the field path, the byte offset of the failure, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindInvalidUTF8).
//		Path("user", "name").
//		At(17).
//		Detail("lead byte 0x%02x", 0xC0).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(errors.PhaseEscape, 9, 3, 1)
//	err := errors.OutOfRange(errors.PhaseEncode, "month", 13, 1, 12)
//
// Match on category with errors.Is and the package sentinels:
//
//	if errors.Is(err, errors.ErrTruncated) { ... }
package errors
