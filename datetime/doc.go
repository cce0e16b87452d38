// Package datetime converts BSON dates between epoch milliseconds and
// calendar fields.
//
// A BSON date is a signed 64-bit count of milliseconds since
// 1970-01-01T00:00:00Z. The supported calendar range is the proleptic
// Gregorian years 1 through 9999:
//
//	MinMillis  -62135596800000   0001-01-01T00:00:00.000Z
//	MaxMillis  253402300799999   9999-12-31T23:59:59.999Z
//
// # Negative Timestamps
//
// Splitting a pre-epoch timestamp with truncating division gives a negative
// millisecond remainder. ToCalendar forces the remainder into [0, 999] and
// floors the seconds, so -1 becomes 1969-12-31T23:59:59.999 rather than an
// instant one second in the future.
//
// # Offsets
//
// Arithmetic is always in UTC. A FixedOffset attached to an Instant is
// metadata: ToEpochMillis subtracts it before converting, ToCalendar attaches
// it to UTC fields without shifting them. Localize shifts the fields into the
// offset's wall clock instead.
//
//	in, _ := datetime.ToCalendar(0, datetime.UTC())
//	ist, _ := datetime.NewFixedOffset(datetime.Minutes(330), "IST")
//	local, _ := datetime.Localize(0, ist) // 1970-01-01T05:30:00 +05:30
//
// # Legacy Seconds
//
// ToEpochSeconds32 is the historical 32-bit whole-second direction. It only
// covers 1901-12-13T20:45:52Z through 2038-01-19T03:14:07Z and reports an
// overflow error outside that window; use ToEpochSeconds for the full range.
package datetime
