package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
		excludes []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseValidate,
				Kind:   KindInvalidUTF8,
				Path:   []string{"user", "address", "zip"},
				Offset: 7,
				GoType: "[]byte",
				Detail: "lead byte 0xc0",
			},
			contains: []string{"[validate]", "invalid_utf8", "user.address.zip", "(byte 7)", "[]byte", "lead byte 0xc0"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindOutOfRange,
				Offset: -1,
			},
			contains: []string{"[decode]", "out_of_range"},
			excludes: []string{"byte"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseAlloc,
				Kind:   KindAllocation,
				Offset: -1,
				Detail: "heap full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[alloc]", "allocation", "heap full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(msg, s) {
					t.Errorf("error message %q should not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEscape,
		Kind:  KindTruncated,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseEscape,
		Kind:  KindTruncated,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseEscape, Kind: KindTruncated}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseValidate, Kind: KindTruncated}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseEscape, Kind: KindInvalidUTF8}) {
		t.Error("Is should not match different kind")
	}

	if !errors.Is(err, ErrTruncated) {
		t.Error("errors.Is should match phase-less sentinel")
	}

	if errors.Is(err, ErrHasNul) {
		t.Error("errors.Is should not match other sentinel")
	}

	if err.Is(errors.New("plain")) {
		t.Error("Is should not match non-structured errors")
	}
}

func TestSentinels_NoOffset(t *testing.T) {
	for _, s := range []*Error{ErrAllocation, ErrInvalidUTF8, ErrHasNul, ErrTruncated,
		ErrOutOfRange, ErrOverflow, ErrTypeMismatch, ErrInvalidInput, ErrOutOfBounds} {
		if s.Offset != -1 {
			t.Errorf("sentinel %s: Offset = %d, want -1", s.Kind, s.Offset)
		}
		if strings.Contains(s.Error(), "byte") {
			t.Errorf("sentinel %s renders offset: %q", s.Kind, s.Error())
		}
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindOutOfRange).
		Path("instant", "month").
		At(3).
		GoType("int").
		Value(13).
		Cause(cause).
		Detail("month %d outside %s", 13, "[1, 12]").
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindOutOfRange {
		t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfRange)
	}
	if len(err.Path) != 2 || err.Path[0] != "instant" || err.Path[1] != "month" {
		t.Errorf("Path = %v, want [instant month]", err.Path)
	}
	if err.Offset != 3 {
		t.Errorf("Offset = %d, want 3", err.Offset)
	}
	if err.GoType != "int" {
		t.Errorf("GoType = %v, want 'int'", err.GoType)
	}
	if err.Value != 13 {
		t.Errorf("Value = %v, want 13", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "month 13 outside [1, 12]" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestBuilder_DefaultOffset(t *testing.T) {
	err := New(PhaseCLI, KindInvalidInput).Detail("no input").Build()
	if err.Offset != -1 {
		t.Errorf("Offset = %d, want -1", err.Offset)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidUTF8", func(t *testing.T) {
		data := []byte{'a', 'b', 0xC0, 0x80}
		err := InvalidUTF8(PhaseValidate, data, 2)
		if err.Kind != KindInvalidUTF8 || err.Offset != 2 {
			t.Errorf("Kind=%v Offset=%d", err.Kind, err.Offset)
		}
		if !strings.Contains(err.Detail, "c080") {
			t.Errorf("Detail %q should preview bytes from the offset", err.Detail)
		}
	})

	t.Run("InvalidUTF8 long preview", func(t *testing.T) {
		data := make([]byte, 100)
		for i := range data {
			data[i] = 0xFF
		}
		err := InvalidUTF8(PhaseValidate, data, 0)
		if strings.Count(err.Detail, "ff") != previewLen {
			t.Errorf("Detail %q should be capped at %d bytes", err.Detail, previewLen)
		}
	})

	t.Run("HasNul", func(t *testing.T) {
		err := HasNul(PhaseValidate, 4)
		if err.Kind != KindHasNul || err.Offset != 4 {
			t.Errorf("Kind=%v Offset=%d", err.Kind, err.Offset)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		err := Truncated(PhaseEscape, 9, 3, 1)
		if err.Kind != KindTruncated || err.Offset != 9 {
			t.Errorf("Kind=%v Offset=%d", err.Kind, err.Offset)
		}
		if !strings.Contains(err.Detail, "3 bytes") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(1 << 31)
		if err.Kind != KindAllocation || err.Phase != PhaseAlloc {
			t.Errorf("Kind=%v Phase=%v", err.Kind, err.Phase)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		err := OutOfRange(PhaseEncode, "month", 13, 1, 12)
		if err.Kind != KindOutOfRange {
			t.Errorf("Kind = %v", err.Kind)
		}
		if len(err.Path) != 1 || err.Path[0] != "month" {
			t.Errorf("Path = %v", err.Path)
		}
		if err.Value != 13 {
			t.Errorf("Value = %v", err.Value)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, int64(1<<40), "int32")
		if err.Kind != KindOverflow || !strings.Contains(err.Detail, "int32") {
			t.Errorf("Kind=%v Detail=%q", err.Kind, err.Detail)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseBoundary, []string{"offset"}, "string", "int or time.Duration")
		if err.Kind != KindTypeMismatch || err.GoType != "string" {
			t.Errorf("Kind=%v GoType=%v", err.Kind, err.GoType)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseEscape, 10, 5)
		if err.Kind != KindOutOfBounds || err.Value != 10 {
			t.Errorf("Kind=%v Value=%v", err.Kind, err.Value)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		err := InvalidInput(PhaseBoundary, "offset must be whole minutes")
		if err.Kind != KindInvalidInput || err.Offset != -1 {
			t.Errorf("Kind=%v Offset=%d", err.Kind, err.Offset)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("read failed")
		err := Wrap(PhaseCLI, KindInvalidInput, cause, "read stdin")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep the cause in the chain")
		}
	})
}
