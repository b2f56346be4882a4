// services/stat_policy.go
package services

const (
	MinAttribute = 1
	MaxAttribute = 100
	MaxForm      = 100

	lcgMultiplier uint64 = 6364136223846793005
	lcgIncrement  uint64 = 1
)

// BoundedAdjust moves an attribute by delta, saturating at 100 on the way up
// and at 1 on the way down. Attributes never bottom out at zero.
func BoundedAdjust(current uint8, delta int) uint8 {
	v := int(current) + delta
	if delta > 0 {
		if v > MaxAttribute {
			return MaxAttribute
		}
		return uint8(v)
	}
	if v < MinAttribute {
		return MinAttribute
	}
	return uint8(v)
}

// ClampForm applies delta to form within [0,100].
func ClampForm(current uint8, delta int) uint8 {
	v := int(current) + delta
	switch {
	case v < 0:
		return 0
	case v > MaxForm:
		return MaxForm
	}
	return uint8(v)
}

// PseudoRandom mixes a seed byte with the low seven bytes of a unix timestamp
// through one LCG step. Cosmetic randomness only: the output is fully
// reproducible from (timestamp, seed), so callers vary the seed per draw.
func PseudoRandom(timestamp int64, seed uint8) uint64 {
	v := uint64(seed) | uint64(timestamp)<<8
	return v*lcgMultiplier + lcgIncrement
}

func saturatingAddU8(a, b int) uint8 {
	if s := a + b; s < 255 {
		return uint8(s)
	}
	return 255
}

func saturatingAddU32(a, b uint32) uint32 {
	if s := a + b; s >= a {
		return s
	}
	return ^uint32(0)
}

func saturatingAddU64(a, b uint64) uint64 {
	if s := a + b; s >= a {
		return s
	}
	return ^uint64(0)
}
