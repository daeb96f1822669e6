package noise

// ToIntensity maps a noise value in [-1, 1] to a greyscale byte via v*127.5+127.5,
// truncating toward zero. Out-of-range values (and NaN) clamp to 0 or 255
// instead of wrapping.
func ToIntensity(v float64) uint8 {
	f := v*127.5 + 127.5
	if !(f > 0) {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(f)
}
