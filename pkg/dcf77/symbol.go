package dcf77

// BitSymbol is the classification of one received second mark.
type BitSymbol int32

const (
	// None indicates that no new symbol has been received.
	None BitSymbol = iota
	// Zero is a short pulse (~100 ms), a logical 0.
	Zero
	// One is a long pulse (~200 ms), a logical 1.
	One
	// Sync is the missing second mark (~2 s gap) announcing a minute boundary.
	Sync
)

func (b BitSymbol) String() string {
	switch b {
	case None:
		return "none"
	case Zero:
		return "0"
	case One:
		return "1"
	case Sync:
		return "sync"
	}
	return "invalid"
}
