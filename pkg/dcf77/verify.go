package dcf77

import "time"

// FrameBits is the total number of bits in a DCF77 word.
const FrameBits = 60

// Frame is one complete 60-bit DCF77 word. The slots carry Zero or One;
// their meaning is fixed by the DCF77 standard:
//
//	bit 0      always 0 (start of minute)
//	bit 17/18  CEST/CET announcement, exactly one is set
//	bit 20     always 1 (start of time information)
//	bit 21..28 minute, BCD weights 1,2,4,8,10,20,40 + even parity
//	bit 29..35 hour, weights 1,2,4,8,10,20 + even parity
//	bit 36..41 day of month, weights 1,2,4,8,10,20
//	bit 42..44 day of week, weights 1,2,4 (1=Monday..7=Sunday)
//	bit 45..49 month, weights 1,2,4,8,10
//	bit 50..57 year of century, weights 1,2,4,8,10,20,40,80
//	bit 58     even parity over bits 36..57
//	bit 59     always 0 (sync gap, no pulse)
type Frame [FrameBits]BitSymbol

// bcd decodes n bits starting at idx as a BCD weighted field. The first
// four slots weigh 1,2,4,8, the following slots 10,20,40,80 - each decade
// resets, so this is not a plain binary field.
func (f *Frame) bcd(idx, n int) int {
	v := 0
	for i := 0; i < n; i++ {
		if f[idx+i] == One {
			if i < 4 {
				v += 1 << i
			} else {
				v += 10 << (i - 4)
			}
		}
	}
	return v
}

// oddParity reports whether the number of One bits in f[from..to] is odd.
func (f *Frame) oddParity(from, to int) bool {
	sum := 0
	for i := from; i <= to; i++ {
		if f[i] == One {
			sum++
		}
	}
	return sum%2 != 0
}

// verify decodes the weighted fields of a complete frame and validates
// marker bits, field ranges, the CEST/CET flags and the three parity
// groups, in that order. The first failed check wins. On success the
// decoded time is returned; on any failure the frame is discarded whole.
func verify(f *Frame) (Time, error) {
	minute := f.bcd(21, 7)
	hour := f.bcd(29, 6)
	day := f.bcd(36, 6)
	weekday := f.bcd(42, 3)
	month := f.bcd(45, 5)
	year := f.bcd(50, 8)

	if f[0] != Zero {
		return Time{}, &MarkerError{Bit: 0}
	}
	if f[20] != One {
		return Time{}, &MarkerError{Bit: 20}
	}
	if f[59] != Zero {
		return Time{}, &MarkerError{Bit: 59}
	}
	if minute > 59 {
		return Time{}, &RangeError{Field: FieldMinute, Value: minute}
	}
	if hour > 23 {
		return Time{}, &RangeError{Field: FieldHour, Value: hour}
	}
	if day < 1 || day > 31 {
		return Time{}, &RangeError{Field: FieldDay, Value: day}
	}
	if weekday < 1 || weekday > 7 {
		return Time{}, &RangeError{Field: FieldWeekday, Value: weekday}
	}
	if month < 1 || month > 12 {
		return Time{}, &RangeError{Field: FieldMonth, Value: month}
	}
	if year > 99 {
		return Time{}, &RangeError{Field: FieldYear, Value: year}
	}
	if f[17] == f[18] {
		return Time{}, ErrDstFlags
	}
	if f.oddParity(21, 28) {
		return Time{}, &ParityError{Group: ParityMinute}
	}
	if f.oddParity(29, 35) {
		return Time{}, &ParityError{Group: ParityHour}
	}
	if f.oddParity(36, 58) {
		return Time{}, &ParityError{Group: ParityDate}
	}

	return Time{
		Minute:  minute,
		Hour:    hour,
		Day:     day,
		Weekday: time.Weekday(weekday % 7),
		Month:   time.Month(month),
		Year:    2000 + year,
		DST:     f[17] == One,
	}, nil
}
