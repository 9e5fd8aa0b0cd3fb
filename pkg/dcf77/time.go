package dcf77

import "time"

// Time is a decoded DCF77 timestamp. It is only produced by a fully
// verified frame; a Time never carries partially decoded fields.
//
// Conventions follow the standard library: Month is 1-based, Weekday
// counts from Sunday (the transmitted day of week 1=Monday..7=Sunday is
// reduced modulo 7) and Year is the full year (the transmitted
// year-of-century plus 2000).
type Time struct {
	Minute  int // 0..59
	Hour    int // 0..23
	Day     int // day of month, 1..31
	Weekday time.Weekday
	Month   time.Month
	Year    int
	// DST reports whether the transmitter announces CEST.
	DST bool
}

// CET and CEST are the two zones the transmitter announces.
var (
	cet  = time.FixedZone("CET", 3600)
	cest = time.FixedZone("CEST", 2*3600)
)

// Clock returns t as a time.Time in the announced zone. The second is
// always zero: a frame describes the minute that starts with its sync gap.
func (t Time) Clock() time.Time {
	zone := cet
	if t.DST {
		zone = cest
	}
	return time.Date(t.Year, t.Month, t.Day, t.Hour, t.Minute, 0, 0, zone)
}

func (t Time) String() string {
	return t.Clock().Format("Mon 02.01.2006 15:04 MST")
}
