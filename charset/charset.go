// Package charset converts UTF-8 text into the byte encodings Star printers
// understand in line mode. Conversion never falls back to other bytes: an
// unknown encoding or a character the encoding cannot represent is an error.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

var (
	// ErrUnsupportedEncoding is returned for encoding names we do not know.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	// ErrUnencodable is returned when text holds a character the encoding lacks.
	ErrUnencodable = errors.New("text cannot be represented in encoding")
)

// Canonical encoding names.
const (
	Raw         = ""
	ShiftJIS    = "Shift_JIS"
	ISO2022JP   = "ISO2022JP"
	Big5        = "Big5"
	GB2312      = "GB2312"
	ISO8859_1   = "ISO-8859-1"
	Windows1252 = "Windows-1252"
	CP437       = "CP437"
)

var encodings = map[string]encoding.Encoding{
	ShiftJIS:    japanese.ShiftJIS,
	ISO2022JP:   japanese.ISO2022JP,
	Big5:        traditionalchinese.Big5,
	GB2312:      simplifiedchinese.GBK,
	ISO8859_1:   charmap.ISO8859_1,
	Windows1252: charmap.Windows1252,
	CP437:       charmap.CodePage437,
}

var aliases = map[string]string{
	"shiftjis":    ShiftJIS,
	"sjis":        ShiftJIS,
	"iso2022jp":   ISO2022JP,
	"jis":         ISO2022JP,
	"big5":        Big5,
	"gb2312":      GB2312,
	"gbk":         GB2312,
	"iso88591":    ISO8859_1,
	"latin1":      ISO8859_1,
	"windows1252": Windows1252,
	"cp1252":      Windows1252,
	"cp437":       CP437,
	"ibm437":      CP437,
}

// Canonical maps name to its canonical spelling. Case, '-' and '_' are
// ignored, so "shift-jis" and "SJIS" both give ShiftJIS. The empty name is Raw.
func Canonical(name string) (string, error) {
	if name == Raw {
		return Raw, nil
	}
	key := strings.ToLower(name)
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	if c, ok := aliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
}

// Names lists the canonical encoding names, Raw excluded.
func Names() []string {
	out := make([]string, 0, len(encodings))
	for n := range encodings {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Encode converts text to the named encoding. Raw passes the bytes of text
// through unchanged. ISO2022JP output has its designator escapes rewritten to
// the Star JIS Kanji mode commands.
func Encode(name, text string) ([]byte, error) {
	c, err := Canonical(name)
	if err != nil {
		return nil, err
	}
	if c == Raw {
		return []byte(text), nil
	}

	out, err := encodings[c].NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUnencodable, c, err)
	}
	if c == ISO2022JP {
		out = replaceJISEscapes(out)
	}
	return out, nil
}

// KanjiMode returns the command selecting the printer's Kanji mode for the
// encoding, or nil when the encoding needs none.
func KanjiMode(name string) []byte {
	c, err := Canonical(name)
	if err != nil {
		return nil
	}
	switch c {
	case ShiftJIS:
		// disable JIS (ESC q), enable Shift-JIS (ESC $ 1)
		return []byte{0x1b, 0x71, 0x1b, 0x24, 0x31}
	case ISO2022JP:
		// disable Shift-JIS (ESC $ 0)
		return []byte{0x1b, 0x24, 0x30}
	}
	return nil
}

var (
	jisKanjiIn   = []byte{0x1b, 0x24, 0x42} // ESC $ B
	jisASCII     = []byte{0x1b, 0x28, 0x42} // ESC ( B
	jisRoman     = []byte{0x1b, 0x28, 0x4a} // ESC ( J
	starKanjiOn  = []byte{0x1b, 0x70}       // specify JIS Kanji character mode
	starKanjiOff = []byte{0x1b, 0x71}       // cancel JIS Kanji character mode
)

// replaceJISEscapes swaps ISO-2022-JP designators for Star ESC p / ESC q.
func replaceJISEscapes(b []byte) []byte {
	b = bytes.ReplaceAll(b, jisKanjiIn, starKanjiOn)
	b = bytes.ReplaceAll(b, jisASCII, starKanjiOff)
	return bytes.ReplaceAll(b, jisRoman, starKanjiOff)
}
