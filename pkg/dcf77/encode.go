package dcf77

// putBCD stores v into n slots starting at idx using the BCD weights of
// the frame layout, the inverse of Frame.bcd.
func (f *Frame) putBCD(idx, n, v int) {
	enc := v%10 | v/10<<4
	for i := 0; i < n; i++ {
		if enc>>i&1 == 1 {
			f[idx+i] = One
		} else {
			f[idx+i] = Zero
		}
	}
}

// putParity sets f[at] so that the number of One bits in f[from..at] is even.
func (f *Frame) putParity(from, at int) {
	f[at] = Zero
	if f.oddParity(from, at) {
		f[at] = One
	}
}

// Encode builds the frame announcing t. It is the inverse of frame
// verification and is used by the signal simulator; feeding the encoded
// frame back through the decoder yields t again.
func Encode(t Time) Frame {
	var f Frame
	for i := range f {
		f[i] = Zero
	}

	weekday := int(t.Weekday)
	if weekday == 0 {
		weekday = 7
	}

	if t.DST {
		f[17] = One
	} else {
		f[18] = One
	}
	f[20] = One

	f.putBCD(21, 7, t.Minute)
	f.putParity(21, 28)
	f.putBCD(29, 6, t.Hour)
	f.putParity(29, 35)
	f.putBCD(36, 6, t.Day)
	f.putBCD(42, 3, weekday)
	f.putBCD(45, 5, int(t.Month))
	f.putBCD(50, 8, t.Year%100)
	f.putParity(36, 58)

	return f
}
