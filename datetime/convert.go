package datetime

import (
	"math"
	"time"

	"github.com/wippyai/bsoncodec/errors"
	"github.com/wippyai/bsoncodec/internal/checked"
)

const millisPerSecond = 1000

// ToCalendar splits epoch milliseconds into UTC calendar fields and attaches
// off unchanged. Timestamps outside [MinMillis, MaxMillis] are a domain error.
//
// The fields are not shifted, so for a non-zero offset ToEpochMillis of the
// result is ms minus the offset. Use Localize for wall-clock fields that
// convert back to ms.
func ToCalendar(ms int64, off *FixedOffset) (Instant, error) {
	if ms < MinMillis || ms > MaxMillis {
		return Instant{}, errors.OutOfRange(errors.PhaseDecode, "epoch_ms", ms, MinMillis, MaxMillis)
	}

	// The remainder must be in [0, 999] for negative ms too.
	diff := ((ms % millisPerSecond) + millisPerSecond) % millisPerSecond
	secs := (ms - diff) / millisPerSecond

	in := fromUnixSeconds(secs)
	in.Microsecond = int(diff) * 1000
	in.Offset = off
	return in, nil
}

// Localize is ToCalendar with the fields shifted into off's wall clock, so
// that ToEpochMillis returns ms again.
func Localize(ms int64, off *FixedOffset) (Instant, error) {
	if off == nil {
		return ToCalendar(ms, nil)
	}
	if ms < MinMillis || ms > MaxMillis {
		return Instant{}, errors.OutOfRange(errors.PhaseDecode, "epoch_ms", ms, MinMillis, MaxMillis)
	}
	shift := int64(off.minutes) * secondsPerMinute * millisPerSecond
	if (shift > 0 && ms > MaxMillis-shift) || (shift < 0 && ms < MinMillis-shift) {
		return Instant{}, errors.OutOfRange(errors.PhaseDecode, "epoch_ms", ms, MinMillis-shift, MaxMillis-shift)
	}
	in, err := ToCalendar(ms+shift, nil)
	if err != nil {
		return Instant{}, err
	}
	in.Offset = off
	return in, nil
}

func fromUnixSeconds(secs int64) Instant {
	days := checked.FloorDiv(secs, secondsPerDay)
	sod := checked.FloorMod(secs, secondsPerDay)
	y, m, d := civilFromDays(days)
	return Instant{
		Year:   int(y),
		Month:  m,
		Day:    d,
		Hour:   int(sod / secondsPerHour),
		Minute: int(sod % secondsPerHour / secondsPerMinute),
		Second: int(sod % secondsPerMinute),
	}
}

// ToEpochMillis converts an instant to epoch milliseconds. The offset is
// subtracted first; microseconds are truncated to milliseconds.
func ToEpochMillis(in Instant) (int64, error) {
	if err := in.validate(errors.PhaseEncode); err != nil {
		return 0, err
	}
	ms := in.unixSeconds()*millisPerSecond + int64(in.Microsecond/1000)
	if ms < MinMillis || ms > MaxMillis {
		return 0, errors.OutOfRange(errors.PhaseEncode, "epoch_ms", ms, MinMillis, MaxMillis)
	}
	return ms, nil
}

// ToEpochSeconds converts the whole-second part of an instant to seconds
// since the epoch. Sub-second fields are ignored.
func ToEpochSeconds(in Instant) (int64, error) {
	if err := in.validate(errors.PhaseEncode); err != nil {
		return 0, err
	}
	return in.unixSeconds(), nil
}

// ToEpochSeconds32 is ToEpochSeconds narrowed to 32 bits. Instants outside
// 1901-12-13T20:45:52Z .. 2038-01-19T03:14:07Z are an overflow error.
func ToEpochSeconds32(in Instant) (int32, error) {
	secs, err := ToEpochSeconds(in)
	if err != nil {
		return 0, err
	}
	if secs < math.MinInt32 || secs > math.MaxInt32 {
		return 0, errors.Overflow(errors.PhaseEncode, secs, "int32 seconds")
	}
	return int32(secs), nil
}

// EpochMillis converts a time.Time through the calendar fields.
func EpochMillis(t time.Time) (int64, error) {
	return ToEpochMillis(FromTime(t))
}

// TimeFromEpochMillis converts epoch milliseconds to a UTC time.Time.
func TimeFromEpochMillis(ms int64) (time.Time, error) {
	in, err := ToCalendar(ms, nil)
	if err != nil {
		return time.Time{}, err
	}
	return in.Time()
}
