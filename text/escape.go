package text

import (
	"bytes"
	"math"

	"github.com/wippyai/bsoncodec"
	"github.com/wippyai/bsoncodec/errors"
	"github.com/wippyai/bsoncodec/internal/checked"
	"github.com/wippyai/bsoncodec/memory"
)

const (
	quote     = '"'
	backslash = '\\'
)

// Escaper escapes JSON-structural characters into buffers from an Allocator.
type Escaper struct {
	alloc bsoncodec.Allocator
}

// NewEscaper returns an escaper allocating from alloc (memory.Default() when nil).
func NewEscaper(alloc bsoncodec.Allocator) *Escaper {
	if alloc == nil {
		alloc = memory.Default()
	}
	return &Escaper{alloc: alloc}
}

var defaultEscaper = NewEscaper(nil)

// Escape escapes all of src.
func Escape(src []byte) ([]byte, error) {
	return defaultEscaper.EscapeForJSON(src, len(src))
}

// EscapeForJSON escapes the first n bytes of src. A negative n means src is
// NUL terminated: the length is the index of the first zero byte, or len(src).
func EscapeForJSON(src []byte, n int) ([]byte, error) {
	return defaultEscaper.EscapeForJSON(src, n)
}

// Release hands a buffer returned by Escape back to the default allocator.
func Release(buf []byte) {
	defaultEscaper.Release(buf)
}

// EscapeForJSON escapes the first n bytes of src; see the package function.
//
// On a truncated trailing sequence it returns a nil buffer and an error of
// kind errors.KindTruncated; the scratch buffer is released before returning.
func (e *Escaper) EscapeForJSON(src []byte, n int) ([]byte, error) {
	if n < 0 {
		n = terminatedLen(src)
	} else if n > len(src) {
		return nil, errors.OutOfBounds(errors.PhaseEscape, n, len(src))
	}
	src = src[:n]

	size, ok := checked.EscapeBound(n)
	if !ok {
		// let the allocator fail fast
		size = math.MaxInt
	}

	scope := memory.NewScope(e.alloc)
	defer scope.Close()
	out := scope.Alloc(size)

	o := 0
	for i := 0; i < n; {
		seq := SequenceLength(src[i])
		if i+seq > n {
			return nil, errors.Truncated(errors.PhaseEscape, i, seq, n-i)
		}

		if seq == 1 && (src[i] == quote || src[i] == backslash) {
			out[o] = backslash
			o++
		}
		o += copy(out[o:], src[i:i+seq])
		i += seq
	}

	scope.Commit()
	return out[:o], nil
}

// Release hands a buffer returned by e back to its allocator.
func (e *Escaper) Release(buf []byte) {
	e.alloc.Release(buf)
}

func terminatedLen(src []byte) int {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		return i
	}
	return len(src)
}
