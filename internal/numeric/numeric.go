// Package numeric provides total (never-panicking) arithmetic helpers for the
// byte-counting paths in heft. Sizes accumulate from untrusted filesystem and
// subprocess data, so every addition and narrowing conversion here is
// saturating or checked instead of a bare operator.
package numeric

import "math"

// AddSaturatingUint64 adds b to a, clamping to math.MaxUint64 on overflow
// instead of wrapping. ok is false when saturation occurred.
func AddSaturatingUint64(a, b uint64) (sum uint64, ok bool) {
	sum = a + b
	if sum < a {
		return math.MaxUint64, false
	}
	return sum, true
}

// ToInt64Checked narrows an unsigned 64-bit value for storage in a signed
// 64-bit column. Values that do not fit are clamped to math.MaxInt64 and ok
// is false, so the caller can record a diagnostic.
func ToInt64Checked(v uint64) (n int64, ok bool) {
	if v > math.MaxInt64 {
		return math.MaxInt64, false
	}
	return int64(v), true
}

// ClampNonNegative returns 0 for negative input, otherwise v unchanged. Used
// when reading signed columns back into unsigned domain values, defensively,
// since a hand-edited or corrupted database should not panic the reader.
func ClampNonNegative(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// SubSaturatingUint64 returns a-b, or 0 if b > a.
func SubSaturatingUint64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// DeltaSigned computes b-a as a signed difference without overflowing at the
// signed minimum: both sides are first narrowed through ToInt64Checked (so
// values above math.MaxInt64 count as math.MaxInt64) and then subtracted,
// rather than casting to int64 and negating a too-large value.
func DeltaSigned(a, b uint64) int64 {
	as, aok := ToInt64Checked(a)
	bs, bok := ToInt64Checked(b)
	_ = aok
	_ = bok
	delta := bs - as
	if bs > as && delta < 0 {
		return math.MaxInt64
	}
	if bs < as && delta > 0 {
		return math.MinInt64
	}
	return delta
}
