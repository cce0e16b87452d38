// Package text validates and escapes the bytes of string-typed values.
//
// # Validation
//
// Validate walks a buffer one UTF-8 sequence at a time using the Unicode
// first-byte classification table and reports one of three verdicts:
//
//	Valid    every sequence is legal (and no NUL, unless allowed)
//	NotUTF8  an illegal or truncated sequence was found
//	HasNul   a NUL byte was found and NUL is not allowed
//
// A sequence is never split: the walk either accepts a whole sequence or
// stops. Encoded surrogate halves (0xED 0xA0..0xBF) are accepted, matching
// the legacy legality table the format has always used.
//
// # Escaping
//
// EscapeForJSON copies a buffer, inserting a backslash before every '"' and
// '\'. Nothing else is escaped, not even control characters; callers that
// need full JSON string escaping layer it on top. The walk re-detects
// truncated trailing sequences and fails without returning a partial result.
//
//	out, err := text.Escape([]byte(`a"b\c`))
//	// out == `a\"b\\c`
//
// The returned buffer comes from the escaper's allocator and is followed by
// a zero byte inside its capacity for NUL-terminated consumers. Always use
// len(out) to delimit the result.
package text
