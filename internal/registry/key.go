package registry

import (
	"fmt"
	"math/bits"
)

// Key is a rational position num/den. Keys are never reduced, so distinct
// pairs with the same value compare equal; the registry never produces such
// pairs because every new key lies strictly between or after existing ones.
type Key struct {
	Num uint64
	Den uint64
}

// Head is the permanent first key.
var Head = Key{Num: 1, Den: 1}

// Compare returns -1, 0 or +1 as k is less than, equal to, or greater
// than o. Products are taken at 128 bits so large keys compare exactly.
func (k Key) Compare(o Key) int {
	lh, ll := bits.Mul64(k.Num, o.Den)
	rh, rl := bits.Mul64(o.Num, k.Den)
	switch {
	case lh < rh || (lh == rh && ll < rl):
		return -1
	case lh > rh || (lh == rh && ll > rl):
		return 1
	default:
		return 0
	}
}

// Less reports whether k orders before o.
func (k Key) Less(o Key) bool {
	return k.Compare(o) < 0
}

// OverflowError is the panic value raised when a new key no longer fits in
// 64-bit terms. A wrapped key would break the ordering of every entry.
type OverflowError struct {
	Key Key
	Op  string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("registry: %s after key %s overflows", e.Op, e.Key)
}

// Mediant returns (a.Num+b.Num)/(a.Den+b.Den), which lies strictly between
// a and b when a < b. It panics with *OverflowError if either sum wraps.
func Mediant(a, b Key) Key {
	num, c1 := bits.Add64(a.Num, b.Num, 0)
	den, c2 := bits.Add64(a.Den, b.Den, 0)
	if c1|c2 != 0 {
		panic(&OverflowError{Key: a, Op: "mediant"})
	}
	return Key{Num: num, Den: den}
}

// Succ returns the key used when appending after k as the last entry. It
// panics with *OverflowError if the numerator wraps.
func (k Key) Succ() Key {
	num, carry := bits.Add64(k.Num, 1, 0)
	if carry != 0 {
		panic(&OverflowError{Key: k, Op: "succ"})
	}
	return Key{Num: num, Den: k.Den}
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.Num, k.Den)
}
