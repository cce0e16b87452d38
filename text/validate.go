package text

import (
	"unsafe"

	"github.com/wippyai/bsoncodec/errors"
)

// Verdict is the outcome of a validation walk.
type Verdict uint8

const (
	Valid Verdict = iota
	NotUTF8
	HasNul
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case NotUTF8:
		return "not UTF-8"
	case HasNul:
		return "contains NUL"
	default:
		return "unknown"
	}
}

// Checks selects what a scan looks for.
type Checks uint8

const (
	CheckUTF8 Checks = 1 << iota
	CheckNul
)

// Validate reports whether b is legal UTF-8 and, unless allowNul, NUL free.
func Validate(b []byte, allowNul bool) Verdict {
	v, _, _ := scan(b, checksFor(allowNul))
	return v
}

// ValidateString is Validate for a string, without copying it.
func ValidateString(s string, allowNul bool) Verdict {
	return Validate(unsafe.Slice(unsafe.StringData(s), len(s)), allowNul)
}

// Scan runs the requested checks and returns the verdict together with the
// offset of the sequence that decided it (len(b) when Valid).
// With no checks requested it returns Valid without reading b.
func Scan(b []byte, checks Checks) (Verdict, int) {
	v, at, _ := scan(b, checks)
	return v, at
}

// Check is Validate returning a structured error that locates the failure.
func Check(b []byte, allowNul bool) error {
	v, at, truncated := scan(b, checksFor(allowNul))
	switch {
	case v == Valid:
		return nil
	case v == HasNul:
		return errors.HasNul(errors.PhaseValidate, at)
	case truncated:
		return errors.Truncated(errors.PhaseValidate, at, SequenceLength(b[at]), len(b)-at)
	default:
		return errors.InvalidUTF8(errors.PhaseValidate, b, at)
	}
}

func checksFor(allowNul bool) Checks {
	if allowNul {
		return CheckUTF8
	}
	return CheckUTF8 | CheckNul
}

func scan(b []byte, checks Checks) (v Verdict, at int, truncated bool) {
	checkUTF8 := checks&CheckUTF8 != 0
	checkNul := checks&CheckNul != 0
	if !checkUTF8 && !checkNul {
		return Valid, len(b), false
	}

	pos := 0
	for pos < len(b) {
		if checkNul && b[pos] == 0 {
			return HasNul, pos, false
		}

		step := 1
		if checkUTF8 {
			step = SequenceLength(b[pos])
			if pos+step > len(b) {
				return NotUTF8, pos, true
			}
			if !legal(b[pos : pos+step]) {
				return NotUTF8, pos, false
			}
		}
		pos += step
	}

	return Valid, len(b), false
}
