package image

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/AlexStarov/starprnt-GoLang-lib/util"
)

const esc = 0x1b

// Raster row record kinds: ESC 'b' nL nH d1..dk carries literal row bytes,
// ESC 'c' nL nH p1..pm carries the PackBits form of the row.
const (
	RowLiteral    byte = 'b'
	RowCompressed byte = 'c'
)

// maxRowBytes is the largest row a two byte count can describe.
const maxRowBytes = 0xffff

// ErrCorruptStream is returned by Decode for data that is not a raster stream.
var ErrCorruptStream = errors.New("corrupt raster stream")

// RasterStream is one encoded image: the begin document fragment, one record
// per bitmap row, and the end document fragment.
type RasterStream struct {
	Begin []byte
	Rows  [][]byte
	End   []byte
}

// Fragments returns Begin, each row and End in transmit order.
func (s *RasterStream) Fragments() [][]byte {
	out := make([][]byte, 0, len(s.Rows)+2)
	out = append(out, s.Begin)
	out = append(out, s.Rows...)
	return append(out, s.End)
}

// AppendTo sends every fragment to t in transmit order.
func (s *RasterStream) AppendTo(t Target) {
	for _, f := range s.Fragments() {
		t.Append(f)
	}
}

// Len is the total encoded size in bytes.
func (s *RasterStream) Len() int {
	n := len(s.Begin) + len(s.End)
	for _, r := range s.Rows {
		n += len(r)
	}
	return n
}

// Encoder wraps encoded rows in a raster document.
type Encoder struct {
	Document Document
}

// NewEncoder returns an encoder using DefaultDocument.
func NewEncoder() *Encoder {
	return &Encoder{Document: DefaultDocument()}
}

// Encode converts bm into a raster stream. An empty bitmap still produces the
// begin and end document fragments.
func (e *Encoder) Encode(bm *Bitmap, compress bool) *RasterStream {
	return &RasterStream{
		Begin: e.Document.Begin(),
		Rows:  EncodeRows(bm, compress),
		End:   e.Document.End(),
	}
}

// EncodeRows frames every row of bm top to bottom.
func EncodeRows(bm *Bitmap, compress bool) [][]byte {
	if bm == nil || bm.Empty() {
		return nil
	}
	rows := make([][]byte, bm.Height())
	for y := range bm.Height() {
		rows[y] = encodeRow(bm.Row(y), compress)
	}
	return rows
}

// encodeRow frames one packed row. With compress set the row is PackBits
// encoded, unless that is not smaller than the literal row; the literal
// record is used in that case.
func encodeRow(row []byte, compress bool) []byte {
	if compress {
		packed := packBits(row)
		if len(packed) < len(row) {
			return frame(RowCompressed, packed)
		}
	}
	return frame(RowLiteral, row)
}

func frame(kind byte, payload []byte) []byte {
	// NewBitmap caps rows at maxRowBytes, so the count fits in two bytes
	out := make([]byte, 0, 4+len(payload))
	out = append(out, esc, kind)
	out = append(out, util.Uint16LE(uint16(len(payload)))...)
	return append(out, payload...)
}

// DecodeRow parses one row record at the start of data. It returns the
// unpacked row bytes and the record length.
func DecodeRow(data []byte) (row []byte, n int, err error) {
	if len(data) < 4 || data[0] != esc {
		return nil, 0, fmt.Errorf("%w: short or unframed row", ErrCorruptStream)
	}
	size := int(data[2]) | int(data[3])<<8
	if len(data) < 4+size {
		return nil, 0, fmt.Errorf("%w: row needs %d bytes, have %d", ErrCorruptStream, size, len(data)-4)
	}
	payload := data[4 : 4+size]

	switch data[1] {
	case RowLiteral:
		return append([]byte(nil), payload...), 4 + size, nil
	case RowCompressed:
		row, err := unpackBits(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrCorruptStream, err)
		}
		return row, 4 + size, nil
	default:
		return nil, 0, fmt.Errorf("%w: unknown row kind 0x%02x", ErrCorruptStream, data[1])
	}
}

// Decode parses a flattened raster stream back into a bitmap and the
// document settings it was started with. Fragments after the end document
// command are ignored.
func Decode(data []byte) (*Bitmap, Document, error) {
	var doc Document
	rest, err := decodeBegin(data, &doc)
	if err != nil {
		return nil, doc, err
	}

	var rows [][]byte
	for {
		if len(rest) >= 4 && rest[0] == esc && rest[1] == '*' && rest[2] == 'r' && rest[3] == 'B' {
			break
		}
		if len(rest) >= 3 && rest[0] == esc && rest[1] == 0x0c && rest[2] == 0x00 {
			rest = rest[3:]
			continue
		}
		row, n, err := DecodeRow(rest)
		if err != nil {
			return nil, doc, err
		}
		if len(row) > maxRowBytes {
			return nil, doc, fmt.Errorf("%w: row %d is %d bytes", ErrCorruptStream, len(rows), len(row))
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, doc, fmt.Errorf("%w: row %d is %d bytes, expected %d", ErrCorruptStream, len(rows), len(row), len(rows[0]))
		}
		rows = append(rows, row)
		rest = rest[n:]
	}

	if len(rows) == 0 {
		return NewBitmap(0, 0), doc, nil
	}
	bm := NewBitmap(len(rows[0])*bitsPerByte, len(rows))
	for y, r := range rows {
		copy(bm.Row(y), r)
	}
	return bm, doc, nil
}

func decodeBegin(data []byte, doc *Document) ([]byte, error) {
	if len(data) < 4 || data[0] != esc || data[1] != '*' || data[2] != 'r' || data[3] != 'A' {
		return nil, fmt.Errorf("%w: missing begin document", ErrCorruptStream)
	}
	rest := data[4:]
	for len(rest) >= 4 && rest[0] == esc && rest[1] == '*' && rest[2] == 'r' && rest[3] != 'A' && rest[3] != 'B' {
		rest = rest[3:]
		name := string(rest[0])
		rest = rest[1:]
		if name == "m" && len(rest) > 0 {
			name += string(rest[0])
			rest = rest[1:]
		}
		end := 0
		for end < len(rest) && rest[end] != 0x00 {
			end++
		}
		if end == len(rest) {
			return nil, fmt.Errorf("%w: unterminated %q parameter", ErrCorruptStream, name)
		}
		v, err := strconv.Atoi(string(rest[:end]))
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q: %w", ErrCorruptStream, name, err)
		}
		rest = rest[end+1:]

		switch name {
		case "Q":
			doc.Speed = Speed(v)
		case "T":
			doc.TopMargin = TopMargin(v)
		case "F":
			doc.PageEnd = PageEndMode(v)
		case "E":
			doc.DocumentEnd = PageEndMode(v)
		case "P":
			doc.PageLength = v
		case "ml":
			doc.LeftMargin = v
		case "mr":
			doc.RightMargin = v
		}
	}
	return rest, nil
}
