package hwio

type uword interface {
	~uint8 | ~uint16
}

// Bit reports whether bit n of v is set.
func Bit[T uword](v T, n uint) bool {
	return v>>n&1 != 0
}

// Biti returns bit n of v, as 0 or 1.
func Biti[T uword](v T, n uint) T {
	return v >> n & 1
}

// SetBit sets bit n of v.
func SetBit[T uword](v *T, n uint) {
	*v |= 1 << n
}

// ClearBit clears bit n of v.
func ClearBit[T uword](v *T, n uint) {
	*v &^= 1 << n
}

// SetBitIf sets bit n of v when cond is true, clears it otherwise.
func SetBitIf[T uword](v *T, n uint, cond bool) {
	if cond {
		SetBit(v, n)
	} else {
		ClearBit(v, n)
	}
}

// ClearBits clears all bits of v set in mask.
func ClearBits[T uword](v *T, mask T) {
	*v &^= mask
}

// Replace returns v where the bits in mask have been replaced with the
// corresponding bits of from.
func Replace[T uword](v, mask, from T) T {
	return v&^mask | from&mask
}
