package datetime

import (
	"fmt"
	"time"

	"github.com/wippyai/bsoncodec/errors"
)

const (
	MinYear = 1
	MaxYear = 9999

	MinMillis int64 = -62135596800000 // 0001-01-01T00:00:00.000Z
	MaxMillis int64 = 253402300799999 // 9999-12-31T23:59:59.999Z
)

// Instant is a calendar date and time. ToEpochMillis reads the fields as
// wall-clock values in Offset, or UTC when Offset is nil. ToCalendar returns
// UTC fields even when it attaches an offset; Localize returns wall-clock
// fields.
type Instant struct {
	Offset      *FixedOffset
	Year        int
	Month       int // 1-12
	Day         int // 1-31
	Hour        int // 0-23
	Minute      int // 0-59
	Second      int // 0-60, 60 rolls into the next minute
	Microsecond int // 0-999999
}

// OffsetMinutes returns the attached offset in minutes, 0 when there is none.
func (in Instant) OffsetMinutes() int {
	if in.Offset == nil {
		return 0
	}
	return in.Offset.minutes
}

// Validate reports the first field outside its calendar range.
func (in Instant) Validate() error {
	return in.validate(errors.PhaseEncode)
}

func (in Instant) validate(phase errors.Phase) error {
	switch {
	case in.Year < MinYear || in.Year > MaxYear:
		return errors.OutOfRange(phase, "year", in.Year, MinYear, MaxYear)
	case in.Month < 1 || in.Month > 12:
		return errors.OutOfRange(phase, "month", in.Month, 1, 12)
	case in.Day < 1 || in.Day > DaysInMonth(in.Year, in.Month):
		return errors.OutOfRange(phase, "day", in.Day, 1, DaysInMonth(in.Year, in.Month))
	case in.Hour < 0 || in.Hour > 23:
		return errors.OutOfRange(phase, "hour", in.Hour, 0, 23)
	case in.Minute < 0 || in.Minute > 59:
		return errors.OutOfRange(phase, "minute", in.Minute, 0, 59)
	case in.Second < 0 || in.Second > 60:
		return errors.OutOfRange(phase, "second", in.Second, 0, 60)
	case in.Microsecond < 0 || in.Microsecond > 999999:
		return errors.OutOfRange(phase, "microsecond", in.Microsecond, 0, 999999)
	}
	return nil
}

// unixSeconds converts the whole-second part to seconds since the epoch, UTC.
func (in Instant) unixSeconds() int64 {
	days := daysFromCivil(int64(in.Year), in.Month, in.Day)
	secs := days*secondsPerDay +
		int64(in.Hour)*secondsPerHour +
		int64(in.Minute)*secondsPerMinute +
		int64(in.Second)
	return secs - int64(in.OffsetMinutes())*secondsPerMinute
}

// Time returns the instant as a time.Time in its offset's location.
func (in Instant) Time() (time.Time, error) {
	if err := in.validate(errors.PhaseBoundary); err != nil {
		return time.Time{}, err
	}
	loc := time.UTC
	if in.Offset != nil {
		loc = in.Offset.Location()
	}
	return time.Date(in.Year, time.Month(in.Month), in.Day,
		in.Hour, in.Minute, in.Second, in.Microsecond*int(time.Microsecond), loc), nil
}

// String formats the instant as ISO 8601 with microseconds.
func (in Instant) String() string {
	zone := "Z"
	if in.Offset != nil {
		zone = formatOffset(in.Offset.minutes)
	}
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%06d%s",
		in.Year, in.Month, in.Day, in.Hour, in.Minute, in.Second, in.Microsecond, zone)
}

// FromTime returns the wall-clock fields of t with its zone as a FixedOffset.
// UTC times, and zones whose offset is not whole minutes, come back in UTC
// with no offset attached.
func FromTime(t time.Time) Instant {
	name, offset := t.Zone()
	var off *FixedOffset
	if t.Location() == time.UTC || offset%secondsPerMinute != 0 {
		t = t.UTC()
	} else if fo, err := NewFixedOffset(Minutes(offset/secondsPerMinute), name); err == nil {
		off = fo
	} else {
		t = t.UTC()
	}

	return Instant{
		Offset:      off,
		Year:        t.Year(),
		Month:       int(t.Month()),
		Day:         t.Day(),
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		Microsecond: t.Nanosecond() / int(time.Microsecond),
	}
}
