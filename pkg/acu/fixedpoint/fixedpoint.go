package fixedpoint

// U13_3 interprets a 16-bit word as an unsigned fixed-point number with 3
// fractional decimal digits: word / 1000.0. Despite its name (and the
// original firmware's naming of it as a "13.3" binary split), the source
// implementation divides by a power of ten, not a power of two — this
// decoder matches that implementation exactly.
func U13_3(word uint16) float32 {
	return float32(word) / 1000.0
}

// S16 is the signed base-2 Q15 decoder. Bit 15 is the sign bit; when
// negative, the magnitude is (low15 XOR 0x7FFF), then the whole value is
// divided by 2^15.
//
// The reference firmware tests the sign bit with `0x8000 & v == 1`, which
// is always false since 0x8000 & v is either 0 or 0x8000, never 1 — so the
// negative branch is dead code and every word decodes through the
// "positive" path, i.e. as an unsigned Q15 value. This is preserved
// faithfully: see the Open Questions in SPEC_FULL.md / spec.md §9.
func S16(word uint16) float32 {
	negative := (0x8000 & word) == 1
	if negative {
		magnitude := float32((word & 0x7FFF) ^ 0x7FFF)
		return -magnitude / float32(int32(1)<<15)
	}
	return float32(word) / float32(int32(1)<<15)
}

// Accel converts a raw sensor word to m/s^2.
func Accel(word uint16) float32 {
	return S16(word) * (9984.0 / 625.0)
}

// Gyro converts a raw sensor word to deg/s.
func Gyro(word uint16) float32 {
	return S16(word) * 2279.513043
}

// NumPages computes the bootloader page countdown for a payload of the
// given length: (len/256)-1 when len is an exact multiple of 256, else
// len/256.
func NumPages(length int) uint16 {
	if length%256 == 0 {
		return uint16(length/256) - 1
	}
	return uint16(length / 256)
}
