package image

import (
	"bytes"
	"errors"
	"image/color"
	"math/rand/v2"
	"testing"
)

// random bitmap with runs, so that compression has something to find
func randomBitmap(r *rand.Rand) *Bitmap {
	bm := NewBitmap(8*(1+r.IntN(40)), r.IntN(30))
	for y := range bm.Height() {
		row := bm.Row(y)
		for i := 0; i < len(row); {
			run := 1 + r.IntN(6)
			v := byte(r.UintN(256))
			if r.IntN(2) == 0 {
				v = []byte{0x00, 0xff}[r.IntN(2)]
			}
			for ; run > 0 && i < len(row); run-- {
				row[i] = v
				i++
			}
		}
	}
	return bm
}

func flatten(s *RasterStream) []byte {
	var out []byte
	for _, f := range s.Fragments() {
		out = append(out, f...)
	}
	return out
}

func TestEncodeAllBlackLiteral(t *testing.T) {
	bm, err := Prepare(filled(16, 2, color.Black), 16)
	if err != nil {
		t.Fatal(err)
	}
	rows := EncodeRows(bm, false)
	want := []byte{0x1b, 'b', 0x02, 0x00, 0xff, 0xff}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for i, r := range rows {
		if !bytes.Equal(r, want) {
			t.Errorf("row %d = % x, want % x", i, r, want)
		}
	}
}

func TestEncodeEmptyBitmap(t *testing.T) {
	enc := NewEncoder()
	s := enc.Encode(NewBitmap(0, 0), true)
	if len(s.Rows) != 0 {
		t.Fatalf("got %d rows for empty bitmap", len(s.Rows))
	}
	want := append(enc.Document.Begin(), enc.Document.End()...)
	if got := flatten(s); !bytes.Equal(got, want) {
		t.Fatalf("stream = % x, want % x", got, want)
	}
	if len(want) == 0 {
		t.Fatal("begin+end markers are empty")
	}
}

func TestLiteralRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for range 100 {
		bm := randomBitmap(r)
		for y, rec := range EncodeRows(bm, false) {
			row, n, err := DecodeRow(rec)
			if err != nil {
				t.Fatalf("DecodeRow: %v", err)
			}
			if n != len(rec) {
				t.Fatalf("consumed %d of %d bytes", n, len(rec))
			}
			if !bytes.Equal(row, bm.Row(y)) {
				t.Fatalf("row %d = % x, want % x", y, row, bm.Row(y))
			}
		}
	}
}

func TestCompressedNeverLargerAndRoundTrips(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for range 200 {
		bm := randomBitmap(r)
		literal := EncodeRows(bm, false)
		packed := EncodeRows(bm, true)
		for y := range packed {
			if len(packed[y]) > len(literal[y]) {
				t.Fatalf("row %d: compressed %d bytes > literal %d", y, len(packed[y]), len(literal[y]))
			}
			row, _, err := DecodeRow(packed[y])
			if err != nil {
				t.Fatalf("DecodeRow: %v", err)
			}
			if !bytes.Equal(row, bm.Row(y)) {
				t.Fatalf("row %d = % x, want % x", y, row, bm.Row(y))
			}
		}
	}
}

func TestEncodeRowPicksRecordKind(t *testing.T) {
	blank := make([]byte, 72)
	rec := encodeRow(blank, true)
	if rec[1] != RowCompressed {
		t.Fatalf("blank row not compressed: % x", rec)
	}
	if want := []byte{0x1b, 'c', 0x02, 0x00, 0xb9, 0x00}; !bytes.Equal(rec, want) {
		t.Fatalf("blank row = % x, want % x", rec, want)
	}

	noisy := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	rec = encodeRow(noisy, true)
	if rec[1] != RowLiteral || !bytes.Equal(rec[4:], noisy) {
		t.Fatalf("incompressible row = % x, want literal record", rec)
	}
}

func TestDecodeStream(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	bm := randomBitmap(r)
	for bm.Empty() {
		bm = randomBitmap(r)
	}
	enc := &Encoder{Document: Document{
		Speed:       SpeedLow,
		PageEnd:     PageEndPartialCut,
		DocumentEnd: PageEndFeedAndEject,
		TopMargin:   TopMarginSmall,
		PageLength:  120,
		LeftMargin:  3,
		RightMargin: 4,
	}}
	data := flatten(enc.Encode(bm, true))

	got, doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc != enc.Document {
		t.Errorf("document = %+v, want %+v", doc, enc.Document)
	}
	if got.Width() != bm.Width() || got.Height() != bm.Height() || !bytes.Equal(got.Data(), bm.Data()) {
		t.Errorf("decoded %v differs from %v", got, bm)
	}
}

func TestWidestRowFitsRecord(t *testing.T) {
	bm := NewBitmap(MaxBitmapWidth+100, 1)
	if bm.Width() != MaxBitmapWidth || bm.Stride() != 0xffff {
		t.Fatalf("NewBitmap = %v stride %d", bm, bm.Stride())
	}
	bm.SetBit(MaxBitmapWidth-1, 0, true)

	rows := EncodeRows(bm, false)
	if n := int(rows[0][2]) | int(rows[0][3])<<8; n != 0xffff {
		t.Fatalf("row count = %d, want 65535", n)
	}
	got, _, err := Decode(flatten(NewEncoder().Encode(bm, true)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width() != MaxBitmapWidth || got.GetBit(MaxBitmapWidth-1, 0) != 1 {
		t.Fatalf("decoded %v", got)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	// 520 runs of 128 zero bytes unpack past the widest row
	var huge []byte
	for range 520 {
		huge = append(huge, 0x81, 0x00)
	}
	oversize := append(NewEncoder().Document.Begin(), 0x1b, 'c', byte(len(huge)), byte(len(huge)>>8))
	oversize = append(oversize, huge...)
	oversize = append(oversize, NewEncoder().Document.End()...)

	tests := map[string][]byte{
		"oversize row":   oversize,
		"no begin":       {0x1b, 'b', 0x01, 0x00, 0xff},
		"no end":         append(NewEncoder().Document.Begin(), 0x1b, 'b', 0x01, 0x00, 0xff),
		"short row":      append(NewEncoder().Document.Begin(), 0x1b, 'b', 0x05, 0x00, 0xff),
		"unknown kind":   append(NewEncoder().Document.Begin(), 0x1b, 'z', 0x01, 0x00, 0xff),
		"bad packbits":   append(NewEncoder().Document.Begin(), 0x1b, 'c', 0x01, 0x00, 0x05),
		"unterminated Q": {0x1b, '*', 'r', 'A', 0x1b, '*', 'r', 'Q', '1'},
	}
	for name, data := range tests {
		if _, _, err := Decode(data); !errors.Is(err, ErrCorruptStream) {
			t.Errorf("%s: err = %v, want ErrCorruptStream", name, err)
		}
	}
}

type sink struct{ frags [][]byte }

func (s *sink) Append(f []byte) { s.frags = append(s.frags, f) }

func TestAppendToTarget(t *testing.T) {
	bm := NewBitmap(8, 3)
	s := NewEncoder().Encode(bm, false)

	var dst sink
	s.AppendTo(&dst)
	if len(dst.frags) != 5 {
		t.Fatalf("got %d fragments, want begin + 3 rows + end", len(dst.frags))
	}
	var n int
	for _, f := range dst.frags {
		n += len(f)
	}
	if n != s.Len() {
		t.Errorf("fragments total %d bytes, Len() = %d", n, s.Len())
	}
}
