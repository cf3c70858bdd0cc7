package util

import "fmt"

// IntLowHigh splits n into b little-endian bytes (low byte first), the way
// Star and ESC/POS commands carry their numeric parameters.
func IntLowHigh(n int, b int) ([]byte, error) {
	if b < 1 || b > 4 {
		return nil, fmt.Errorf("IntLowHigh: 1-4 bytes only, got %d", b)
	}
	if n < 0 || uint64(n) >= uint64(1)<<(8*uint(b)) {
		return nil, fmt.Errorf("IntLowHigh: %d does not fit in %d byte(s)", n, b)
	}

	out := make([]byte, b)
	for i := 0; i < b; i++ {
		out[i] = byte(n % 256)
		n = n / 256
	}
	return out, nil
}

// Uint16LE is IntLowHigh(n, 2) for callers that already know n fits.
func Uint16LE(n uint16) []byte {
	return []byte{byte(n), byte(n >> 8)}
}

// ASCIIDigit returns '0'+n, the parameter form used by most Star line mode
// commands ("ESC d 2", "ESC i 1 1").
func ASCIIDigit(n int) byte {
	return byte('0' + n)
}
