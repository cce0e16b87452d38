package datetime

import (
	"fmt"
	"sync"
	"time"

	"github.com/wippyai/bsoncodec/errors"
	"github.com/wippyai/bsoncodec/text"
)

// maxOffsetMinutes bounds a fixed offset to strictly less than one day.
const maxOffsetMinutes = 24*60 - 1

// OffsetSpec is the input accepted for a fixed offset: Minutes or Duration.
type OffsetSpec interface {
	minutes() (int, error)
}

// Minutes is an offset east of UTC in minutes.
type Minutes int

// Duration is an offset east of UTC; it must be a whole number of minutes.
type Duration time.Duration

func (m Minutes) minutes() (int, error) {
	if m < -maxOffsetMinutes || m > maxOffsetMinutes {
		return 0, errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
			Path("offset").
			Value(int(m)).
			Detail("offset %d minutes must be within ±%d", int(m), maxOffsetMinutes).
			Build()
	}
	return int(m), nil
}

func (d Duration) minutes() (int, error) {
	td := time.Duration(d)
	if td%time.Minute != 0 {
		return 0, errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
			Path("offset").
			Value(td).
			Detail("offset %s is not a whole number of minutes", td).
			Build()
	}
	return Minutes(td / time.Minute).minutes()
}

// OffsetFromValue resolves a dynamically typed offset: integers are minutes,
// time.Duration values are durations, anything else is a type mismatch.
func OffsetFromValue(v any) (OffsetSpec, error) {
	switch x := v.(type) {
	case Minutes:
		return x, nil
	case Duration:
		return x, nil
	case time.Duration:
		return Duration(x), nil
	case int:
		return minutesOf(int64(x))
	case int8:
		return minutesOf(int64(x))
	case int16:
		return minutesOf(int64(x))
	case int32:
		return minutesOf(int64(x))
	case int64:
		return minutesOf(x)
	case uint8:
		return minutesOf(int64(x))
	case uint16:
		return minutesOf(int64(x))
	case uint32:
		return minutesOf(int64(x))
	case uint:
		return unsignedMinutesOf(uint64(x))
	case uint64:
		return unsignedMinutesOf(x)
	default:
		return nil, errors.TypeMismatch(errors.PhaseBoundary, []string{"offset"}, typeName(v), "integer minutes or time.Duration")
	}
}

func minutesOf(v int64) (OffsetSpec, error) {
	if v < -maxOffsetMinutes || v > maxOffsetMinutes {
		return nil, errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
			Path("offset").
			Value(v).
			Detail("offset %d minutes must be within ±%d", v, maxOffsetMinutes).
			Build()
	}
	return Minutes(v), nil
}

func unsignedMinutesOf(v uint64) (OffsetSpec, error) {
	if v > maxOffsetMinutes {
		return nil, errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
			Path("offset").
			Value(v).
			Detail("offset %d minutes must be within ±%d", v, maxOffsetMinutes).
			Build()
	}
	return Minutes(v), nil
}

// typeName returns "nil" for nil values.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

// FixedOffset is an immutable named timezone with a constant offset and no DST.
type FixedOffset struct {
	loc     *time.Location
	name    string
	minutes int
}

// NewFixedOffset builds an offset. The name must be valid UTF-8 without NUL.
func NewFixedOffset(spec OffsetSpec, name string) (*FixedOffset, error) {
	if spec == nil {
		return nil, errors.TypeMismatch(errors.PhaseBoundary, []string{"offset"}, "nil", "Minutes or Duration")
	}
	m, err := spec.minutes()
	if err != nil {
		return nil, err
	}
	if err := text.Check([]byte(name), false); err != nil {
		return nil, errors.New(errors.PhaseBoundary, errors.KindInvalidUTF8).
			Path("name").
			Cause(err).
			Detail("name must be UTF-8 text without NUL").
			Build()
	}

	return &FixedOffset{
		loc:     time.FixedZone(name, m*secondsPerMinute),
		name:    name,
		minutes: m,
	}, nil
}

var utcOffset = sync.OnceValue(func() *FixedOffset {
	off, err := NewFixedOffset(Minutes(0), "UTC")
	if err != nil {
		panic(err)
	}
	return off
})

// UTC returns the shared zero offset named "UTC".
func UTC() *FixedOffset {
	return utcOffset()
}

// DST is always zero.
func (o *FixedOffset) DST() time.Duration { return 0 }

// TZName returns the display name.
func (o *FixedOffset) TZName() string { return o.name }

// UTCOffset returns the offset east of UTC.
func (o *FixedOffset) UTCOffset() time.Duration {
	return time.Duration(o.minutes) * time.Minute
}

// Minutes returns the offset east of UTC in minutes.
func (o *FixedOffset) Minutes() int { return o.minutes }

// Location returns an equivalent time.Location.
func (o *FixedOffset) Location() *time.Location { return o.loc }

// Equal reports whether both offsets have the same name and offset.
func (o *FixedOffset) Equal(other *FixedOffset) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.name == other.name && o.minutes == other.minutes
}

func (o *FixedOffset) String() string {
	return o.name + " (" + formatOffset(o.minutes) + ")"
}

func formatOffset(minutes int) string {
	sign := byte('+')
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
}
