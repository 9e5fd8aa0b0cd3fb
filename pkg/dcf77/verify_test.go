package dcf77

import (
	"errors"
	"testing"
	"time"
)

// validTime is the reference time used by most tests:
// Friday 28.08.2026 13:45 CEST.
var validTime = Time{
	Minute:  45,
	Hour:    13,
	Day:     28,
	Weekday: time.Friday,
	Month:   time.August,
	Year:    2026,
	DST:     true,
}

// TestVerifyConcreteFrame builds the frame for 13:45 bit by bit from the
// weight table and checks every decoded field:
// minute 45 = 1+4+40 (bits 21,23,27), 3 ones so parity bit 28 is set;
// hour 13 = 1+2+10 (bits 29,30,33), parity bit 35 set;
// day 28 = 8+20 (39,41), weekday 5 = 1+4 (42,44), month 8 (48),
// year 26 = 2+4+20 (51,52,55); 8 ones in the date group, parity bit 58 clear.
func TestVerifyConcreteFrame(t *testing.T) {
	var f Frame
	for i := range f {
		f[i] = Zero
	}
	for _, i := range []int{17, 20, 21, 23, 27, 28, 29, 30, 33, 35, 39, 41, 42, 44, 48, 51, 52, 55} {
		f[i] = One
	}

	got, err := verify(&f)
	if err != nil {
		t.Fatalf("verify() err = %v", err)
	}
	if got != validTime {
		t.Fatalf("verify() = %+v, want %+v", got, validTime)
	}
}

func TestEncodeVerifyRoundTrip(t *testing.T) {
	times := []Time{
		validTime,
		{Minute: 0, Hour: 0, Day: 1, Weekday: time.Monday, Month: time.January, Year: 2020, DST: false},
		{Minute: 59, Hour: 23, Day: 31, Weekday: time.Sunday, Month: time.December, Year: 2099, DST: false},
		{Minute: 30, Hour: 12, Day: 15, Weekday: time.Wednesday, Month: time.June, Year: 2000, DST: true},
	}

	for _, want := range times {
		f := Encode(want)
		got, err := verify(&f)
		if err != nil {
			t.Fatalf("verify(Encode(%v)) err = %v", want, err)
		}
		if got != want {
			t.Fatalf("round trip = %+v, want %+v", got, want)
		}
	}
}

func TestVerifyMarkerBits(t *testing.T) {
	for _, bit := range []int{0, 20, 59} {
		f := Encode(validTime)
		if f[bit] == Zero {
			f[bit] = One
		} else {
			f[bit] = Zero
		}

		_, err := verify(&f)
		var me *MarkerError
		if !errors.As(err, &me) || me.Bit != bit {
			t.Fatalf("marker bit %d: verify() err = %v, want MarkerError", bit, err)
		}
	}
}

// TestVerifyFieldRanges forces each field one past its bound (or to zero
// for the 1-based fields) and expects the matching range error.
func TestVerifyFieldRanges(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(f *Frame)
		field  Field
		value  int
	}{
		{"minute 60", func(f *Frame) { f.putBCD(21, 7, 60) }, FieldMinute, 60},
		{"hour 24", func(f *Frame) { f.putBCD(29, 6, 24) }, FieldHour, 24},
		{"day 0", func(f *Frame) { f.putBCD(36, 6, 0) }, FieldDay, 0},
		{"day 32", func(f *Frame) { f.putBCD(36, 6, 32) }, FieldDay, 32},
		{"weekday 0", func(f *Frame) { f.putBCD(42, 3, 0) }, FieldWeekday, 0},
		{"month 13", func(f *Frame) { f.putBCD(45, 5, 13) }, FieldMonth, 13},
		{"year 165", func(f *Frame) {
			for i := 50; i <= 57; i++ {
				f[i] = One
			}
		}, FieldYear, 165},
	}

	for _, tt := range tests {
		f := Encode(validTime)
		tt.tamper(&f)

		_, err := verify(&f)
		var re *RangeError
		if !errors.As(err, &re) {
			t.Fatalf("%s: verify() err = %v, want RangeError", tt.name, err)
		}
		if re.Field != tt.field || re.Value != tt.value {
			t.Fatalf("%s: got %v/%d, want %v/%d", tt.name, re.Field, re.Value, tt.field, tt.value)
		}
	}
}

func TestVerifyDstFlags(t *testing.T) {
	for _, level := range []BitSymbol{Zero, One} {
		f := Encode(validTime)
		f[17], f[18] = level, level

		if _, err := verify(&f); !errors.Is(err, ErrDstFlags) {
			t.Fatalf("flags %v/%v: verify() err = %v, want ErrDstFlags", level, level, err)
		}
	}
}

// TestVerifyParityRejection flips every single bit of the three parity
// protected ranges. No flip may verify successfully; a flip that leaves
// all fields in range must fail with the parity error of its group.
func TestVerifyParityRejection(t *testing.T) {
	group := func(bit int) ParityGroup {
		switch {
		case bit <= 28:
			return ParityMinute
		case bit <= 35:
			return ParityHour
		}
		return ParityDate
	}

	for bit := 21; bit <= 58; bit++ {
		f := Encode(validTime)
		if f[bit] == Zero {
			f[bit] = One
		} else {
			f[bit] = Zero
		}

		_, err := verify(&f)
		if err == nil {
			t.Fatalf("bit %d flipped: verify() succeeded", bit)
		}

		var re *RangeError
		if errors.As(err, &re) {
			// the flip pushed the field out of range, which is
			// detected before the parity check
			continue
		}

		var pe *ParityError
		if !errors.As(err, &pe) || pe.Group != group(bit) {
			t.Fatalf("bit %d flipped: verify() err = %v, want parity error of %s group", bit, err, group(bit))
		}
	}
}

func TestTimeClock(t *testing.T) {
	got := validTime.Clock()

	if got.Format(time.RFC3339) != "2026-08-28T13:45:00+02:00" {
		t.Fatalf("Clock() = %v", got)
	}
	if zone, offset := got.Zone(); zone != "CEST" || offset != 2*3600 {
		t.Fatalf("Clock() zone = %v/%v, want CEST/+2h", zone, offset)
	}

	winter := validTime
	winter.DST = false
	if zone, offset := winter.Clock().Zone(); zone != "CET" || offset != 3600 {
		t.Fatalf("Clock() zone = %v/%v, want CET/+1h", zone, offset)
	}
}
