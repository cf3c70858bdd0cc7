package printer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestBarcodeBytes(t *testing.T) {
	got := build(t, Barcode{
		Symbology: Code39,
		Option:    CharsWithLineFeed,
		Width:     9,
		Height:    40,
		Data:      []byte("12ab"),
	})
	want := []byte{0x1b, 'b', 0x34, '2', '9', 40, '1', '2', 'a', 'b', 0x1e}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestBarcodeValidation(t *testing.T) {
	ok := Barcode{Symbology: Code128, Option: NoCharsWithLineFeed, Width: 2, Height: 50, Data: []byte("{BSTAR")}
	if _, err := Build(ok); err != nil {
		t.Fatalf("valid barcode: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(b *Barcode)
	}{
		{"unknown symbology", func(b *Barcode) { b.Symbology = 0x30 }},
		{"option 0", func(b *Barcode) { b.Option = 0 }},
		{"option 5", func(b *Barcode) { b.Option = 5 }},
		{"code128 width 4", func(b *Barcode) { b.Width = 4 }},
		{"code93 width 4", func(b *Barcode) { b.Symbology = Code93; b.Width = 4 }},
		{"width 0", func(b *Barcode) { b.Width = 0 }},
		{"height 0", func(b *Barcode) { b.Height = 0 }},
		{"height 256", func(b *Barcode) { b.Height = 256 }},
		{"empty data", func(b *Barcode) { b.Data = nil }},
		{"RS in data", func(b *Barcode) { b.Data = []byte{'1', 0x1e, '2'} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ok
			tt.mutate(&b)
			if _, err := Build(b); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("got %v, want ErrInvalidInput", err)
			}
		})
	}

	// Code39 and ITF go up to 9
	for _, sym := range []Symbology{Code39, ITF} {
		b := ok
		b.Symbology, b.Width = sym, 9
		if _, err := Build(b); err != nil {
			t.Errorf("symbology 0x%02x width 9: %v", byte(sym), err)
		}
	}
}

func TestQRCodeBytes(t *testing.T) {
	got := build(t, QRCode{Model: QRModel2, Correction: QRCorrectionM, CellSize: 4, Data: []byte("abc")})
	want := []byte{
		0x1b, 0x1d, 'y', 'S', '0', 2,
		0x1b, 0x1d, 'y', 'S', '1', 1,
		0x1b, 0x1d, 'y', 'S', '2', 4,
		0x1b, 0x1d, 'y', 'D', '1', 0, 3, 0,
		'a', 'b', 'c',
		0x1b, 0x1d, 'y', 'P',
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x\nwant % x", got, want)
	}
}

func TestQRCodeLongDataLength(t *testing.T) {
	data := []byte(strings.Repeat("x", 300))
	got := build(t, QRCode{Model: QRModel1, Correction: QRCorrectionH, CellSize: 8, Data: data})
	if !bytes.Contains(got, []byte{'D', '1', 0, 0x2c, 0x01}) {
		t.Fatalf("length 300 not encoded as 2c 01")
	}
}

func TestQRCodeInvalid(t *testing.T) {
	for _, c := range []QRCode{
		{Model: 3, CellSize: 1, Data: []byte("a")},
		{Model: QRModel2, Correction: 4, CellSize: 1, Data: []byte("a")},
		{Model: QRModel2, CellSize: 0, Data: []byte("a")},
		{Model: QRModel2, CellSize: 9, Data: []byte("a")},
		{Model: QRModel2, CellSize: 3},
	} {
		if _, err := Build(c); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%+v: got %v", c, err)
		}
	}
}

func TestPDF417Bytes(t *testing.T) {
	got := build(t, PDF417{Limit: PDF417UseFixed, P1: 10, P2: 4, Security: 2, XDirection: 3, AspectRatio: 2, Data: []byte("pdf")})
	want := []byte{
		0x1b, 0x1d, 'x', 'S', '0', 1, 10, 4,
		0x1b, 0x1d, 'x', 'S', '1', 2,
		0x1b, 0x1d, 'x', 'S', '2', 3,
		0x1b, 0x1d, 'x', 'S', '3', 2,
		0x1b, 0x1d, 'x', 'D', 3, 0, 'p', 'd', 'f',
		0x1b, 0x1d, 'x', 'P',
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x\nwant % x", got, want)
	}
}

func TestPDF417Invalid(t *testing.T) {
	base := PDF417{XDirection: 1, AspectRatio: 1, Data: []byte("a")}
	for _, mutate := range []func(p *PDF417){
		func(p *PDF417) { p.Limit = 2 },
		func(p *PDF417) { p.P1 = 100 },
		func(p *PDF417) { p.P2 = 31 },
		func(p *PDF417) { p.Security = 9 },
		func(p *PDF417) { p.XDirection = 0 },
		func(p *PDF417) { p.AspectRatio = 11 },
		func(p *PDF417) { p.Data = nil },
	} {
		p := base
		mutate(&p)
		if _, err := Build(p); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%+v: got %v", p, err)
		}
	}
}

func TestParseBarcodeNames(t *testing.T) {
	if s, err := ParseSymbology("itf"); err != nil || s != ITF {
		t.Errorf("ParseSymbology(itf) = %v, %v", s, err)
	}
	if _, err := ParseSymbology("ean13"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseSymbology(ean13) err = %v", err)
	}
	if c, err := ParseQRCorrection("Q"); err != nil || c != QRCorrectionQ {
		t.Errorf("ParseQRCorrection(Q) = %v, %v", c, err)
	}
}
