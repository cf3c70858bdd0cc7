package image

import "errors"

// ErrCorruptRow is returned when a packed row cannot be expanded.
var ErrCorruptRow = errors.New("corrupt packbits row")

const (
	minRun     = 3
	maxRun     = 128
	maxLiteral = 128
)

// packBits compresses src with the PackBits scheme. Each packet starts with a
// signed header byte n: 0..127 means n+1 literal bytes follow, -127..-1 means
// the next byte repeats 1-n times, -128 is skipped. Runs shorter than minRun
// stay in literal packets.
func packBits(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/maxLiteral+1)

	lit := 0 // start of the pending literal span
	flush := func(end int) {
		for lit < end {
			n := end - lit
			if n > maxLiteral {
				n = maxLiteral
			}
			out = append(out, byte(n-1))
			out = append(out, src[lit:lit+n]...)
			lit += n
		}
	}

	i := 0
	for i < len(src) {
		run := 1
		for i+run < len(src) && run < maxRun && src[i+run] == src[i] {
			run++
		}
		if run >= minRun {
			flush(i)
			out = append(out, byte(int8(1-run)), src[i])
			i += run
			lit = i
			continue
		}
		i += run
	}
	flush(len(src))
	return out
}

// unpackBits expands a PackBits payload.
func unpackBits(src []byte) ([]byte, error) {
	var out []byte
	for i := 0; i < len(src); {
		n := int8(src[i])
		i++
		switch {
		case n >= 0:
			k := int(n) + 1
			if i+k > len(src) {
				return nil, ErrCorruptRow
			}
			out = append(out, src[i:i+k]...)
			i += k
		case n == -128:
		default:
			if i >= len(src) {
				return nil, ErrCorruptRow
			}
			for range 1 - int(n) {
				out = append(out, src[i])
			}
			i++
		}
	}
	return out, nil
}
