package printer

import (
	"bytes"

	"github.com/AlexStarov/starprnt-GoLang-lib/command"
	"github.com/AlexStarov/starprnt-GoLang-lib/util"
)

// Symbology is the barcode type byte of ESC b.
type Symbology byte

const (
	Code39  Symbology = 0x34
	ITF     Symbology = 0x35
	Code128 Symbology = 0x36
	Code93  Symbology = 0x37
)

var symbologyNames = map[string]Symbology{
	"code39":  Code39,
	"itf":     ITF,
	"code128": Code128,
	"code93":  Code93,
}

// ParseSymbology accepts "code39", "code93", "itf" and "code128".
func ParseSymbology(s string) (Symbology, error) {
	if sym, ok := symbologyNames[s]; ok {
		return sym, nil
	}
	return 0, invalid("barcode symbology %q", s)
}

// maxWidth is the number of module width settings the symbology has.
func (s Symbology) maxWidth() int {
	switch s {
	case Code39, ITF:
		return 9
	case Code93, Code128:
		return 3
	}
	return 0
}

// BarcodeOption says whether human readable characters are printed under
// the bars and whether a line feed follows.
type BarcodeOption int

const (
	NoCharsWithLineFeed BarcodeOption = iota + 1
	CharsWithLineFeed
	NoCharsWithoutLineFeed
	CharsWithoutLineFeed
)

// Barcode prints a one dimensional barcode: ESC b n1 n2 n3 n4 data RS.
//
// Width selects the module size. Code39 and ITF take 1..9 (narrow:wide
// ratios 2:6, 3:9, 4:12, 2:5, 3:8, 4:10, 2:4, 3:6, 4:8 for Code39 and 2:5,
// 4:10, 6:15, 2:4, 4:8, 6:12, 2:6, 3:9, 4:12 for ITF); Code93 and Code128
// take 1..3 (2, 3 or 4 dots). Height is in dots, 1..255.
type Barcode struct {
	Symbology Symbology
	Option    BarcodeOption
	Width     int
	Height    int
	Data      []byte
}

func (Barcode) isCommand() {}
func (c Barcode) AppendTo(b *command.Buffer) error {
	max := c.Symbology.maxWidth()
	if max == 0 {
		return invalid("barcode symbology 0x%02x", byte(c.Symbology))
	}
	if c.Option < NoCharsWithLineFeed || c.Option > CharsWithoutLineFeed {
		return invalid("barcode option %d", int(c.Option))
	}
	if c.Width < 1 || c.Width > max {
		return invalid("barcode width %d, want 1..%d", c.Width, max)
	}
	if c.Height < 1 || c.Height > 255 {
		return invalid("barcode height %d", c.Height)
	}
	if len(c.Data) == 0 || bytes.IndexByte(c.Data, rs) >= 0 {
		return invalid("barcode data must be non-empty and free of RS")
	}

	out := make([]byte, 0, 7+len(c.Data))
	out = append(out, esc, 'b', byte(c.Symbology), util.ASCIIDigit(int(c.Option)), util.ASCIIDigit(c.Width), byte(c.Height))
	out = append(out, c.Data...)
	b.Append(append(out, rs))
	return nil
}

// QRModel is the QR code model.
type QRModel byte

const (
	QRModel1 QRModel = 1
	QRModel2 QRModel = 2
)

// QRCorrection is the QR error correction level.
type QRCorrection byte

const (
	QRCorrectionL QRCorrection = iota // ~7%
	QRCorrectionM                     // ~15%
	QRCorrectionQ                     // ~25%
	QRCorrectionH                     // ~30%
)

var qrCorrectionNames = map[string]QRCorrection{
	"L": QRCorrectionL, "M": QRCorrectionM, "Q": QRCorrectionQ, "H": QRCorrectionH,
}

// ParseQRCorrection accepts "L", "M", "Q" and "H".
func ParseQRCorrection(s string) (QRCorrection, error) {
	if c, ok := qrCorrectionNames[s]; ok {
		return c, nil
	}
	return 0, invalid("QR correction level %q", s)
}

const maxQRData = 7089

// QRCode prints a QR code (ESC GS y ...). CellSize is the module size in
// dots, 1..8.
type QRCode struct {
	Model      QRModel
	Correction QRCorrection
	CellSize   int
	Data       []byte
}

func (QRCode) isCommand() {}
func (c QRCode) AppendTo(b *command.Buffer) error {
	if c.Model != QRModel1 && c.Model != QRModel2 {
		return invalid("QR model %d", c.Model)
	}
	if c.Correction > QRCorrectionH {
		return invalid("QR correction %d", c.Correction)
	}
	if c.CellSize < 1 || c.CellSize > 8 {
		return invalid("QR cell size %d", c.CellSize)
	}
	if len(c.Data) == 0 || len(c.Data) > maxQRData {
		return invalid("QR data length %d", len(c.Data))
	}

	b.Append([]byte{esc, gs, 'y', 'S', '0', byte(c.Model)})
	b.Append([]byte{esc, gs, 'y', 'S', '1', byte(c.Correction)})
	b.Append([]byte{esc, gs, 'y', 'S', '2', byte(c.CellSize)})
	hdr := append([]byte{esc, gs, 'y', 'D', '1', nul}, util.Uint16LE(uint16(len(c.Data)))...)
	b.Append(hdr)
	b.Append(c.Data)
	b.Append([]byte{esc, gs, 'y', 'P'})
	return nil
}

// PDF417Limit says how P1 and P2 are read.
type PDF417Limit byte

const (
	// PDF417UseLimits: P1 is the maximum line count, P2 the maximum column count.
	PDF417UseLimits PDF417Limit = 0
	// PDF417UseFixed: P1 is the exact line count, P2 the exact column count.
	PDF417UseFixed PDF417Limit = 1
)

// PDF417 prints a PDF417 symbol (ESC GS x ...). Security is 0..8,
// XDirection (module width in dots) and AspectRatio are 1..10.
type PDF417 struct {
	Limit       PDF417Limit
	P1, P2      int
	Security    int
	XDirection  int
	AspectRatio int
	Data        []byte
}

func (PDF417) isCommand() {}
func (c PDF417) AppendTo(b *command.Buffer) error {
	if c.Limit != PDF417UseLimits && c.Limit != PDF417UseFixed {
		return invalid("PDF417 limit %d", c.Limit)
	}
	if c.P1 < 0 || c.P1 > 99 || c.P2 < 0 || c.P2 > 30 {
		return invalid("PDF417 size %d/%d", c.P1, c.P2)
	}
	if c.Security < 0 || c.Security > 8 {
		return invalid("PDF417 security level %d", c.Security)
	}
	if c.XDirection < 1 || c.XDirection > 10 || c.AspectRatio < 1 || c.AspectRatio > 10 {
		return invalid("PDF417 module %d aspect %d", c.XDirection, c.AspectRatio)
	}
	if len(c.Data) == 0 || len(c.Data) > 0xffff {
		return invalid("PDF417 data length %d", len(c.Data))
	}

	b.Append([]byte{esc, gs, 'x', 'S', '0', byte(c.Limit), byte(c.P1), byte(c.P2)})
	b.Append([]byte{esc, gs, 'x', 'S', '1', byte(c.Security)})
	b.Append([]byte{esc, gs, 'x', 'S', '2', byte(c.XDirection)})
	b.Append([]byte{esc, gs, 'x', 'S', '3', byte(c.AspectRatio)})
	data := append([]byte{esc, gs, 'x', 'D'}, util.Uint16LE(uint16(len(c.Data)))...)
	b.Append(append(data, c.Data...))
	b.Append([]byte{esc, gs, 'x', 'P'})
	return nil
}
