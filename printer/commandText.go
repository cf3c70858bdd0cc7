package printer

import (
	"fmt"

	"github.com/AlexStarov/starprnt-GoLang-lib/charset"
	"github.com/AlexStarov/starprnt-GoLang-lib/command"
	"github.com/AlexStarov/starprnt-GoLang-lib/util"
)

// TextStyle is the full set of line mode formatting sent ahead of a Text.
type TextStyle struct {
	SlashedZero bool
	Underline   bool
	// Invert prints white on black, or red on two colour printers.
	Invert     bool
	Emphasized bool
	Upperline  bool
	UpsideDown bool

	// 0..5 on thermal printers; 0 or 1 with DotMatrix.
	HeightExpansion int
	WidthExpansion  int

	LeftMargin int // 0..255 columns
	Alignment  Alignment

	// DotMatrix selects the impact printer expansion commands (ESC h, ESC W).
	DotMatrix bool
}

func (s TextStyle) bytes() ([]byte, error) {
	if s.LeftMargin < 0 || s.LeftMargin > 255 {
		return nil, invalid("left margin %d", s.LeftMargin)
	}
	align, err := s.Alignment.bytes()
	if err != nil {
		return nil, err
	}

	out := []byte{
		esc, '/', onOff(s.SlashedZero),
		esc, '-', onOff(s.Underline),
	}
	if s.Invert {
		out = append(out, esc, '4')
	} else {
		out = append(out, esc, '5')
	}
	if s.Emphasized {
		out = append(out, esc, 'E')
	} else {
		out = append(out, esc, 'F')
	}
	out = append(out, esc, '_', onOff(s.Upperline))
	if s.UpsideDown {
		out = append(out, si)
	} else {
		out = append(out, dc2)
	}

	if s.DotMatrix {
		if s.HeightExpansion < 0 || s.HeightExpansion > 1 || s.WidthExpansion < 0 || s.WidthExpansion > 1 {
			return nil, invalid("dot matrix expansion %dx%d", s.HeightExpansion, s.WidthExpansion)
		}
		out = append(out,
			esc, 'h', onOff(s.HeightExpansion == 1),
			esc, 'W', onOff(s.WidthExpansion == 1),
		)
	} else {
		if s.HeightExpansion < 0 || s.HeightExpansion > MaxExpansion || s.WidthExpansion < 0 || s.WidthExpansion > MaxExpansion {
			return nil, invalid("expansion %dx%d", s.HeightExpansion, s.WidthExpansion)
		}
		out = append(out, esc, 'i', util.ASCIIDigit(s.HeightExpansion), util.ASCIIDigit(s.WidthExpansion))
	}

	out = append(out, esc, 'l', byte(s.LeftMargin))
	return append(out, align...), nil
}

// Text prints Data with Style. Data is converted to Encoding first (see
// package charset); an empty Encoding sends the bytes of Data as they are.
// Japanese encodings are preceded by their Kanji mode command. A line feed
// follows unless NoLineFeed is set.
type Text struct {
	Style      TextStyle
	Encoding   string
	Data       string
	NoLineFeed bool
}

func (Text) isCommand() {}
func (c Text) AppendTo(b *command.Buffer) error {
	style, err := c.Style.bytes()
	if err != nil {
		return err
	}
	data, err := charset.Encode(c.Encoding, c.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if k := charset.KanjiMode(c.Encoding); k != nil {
		b.Append(k)
	}
	b.Append(style)
	b.Append(data)
	if !c.NoLineFeed {
		b.Append([]byte{lf})
	}
	return nil
}
