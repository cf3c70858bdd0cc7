package printer

import (
	"fmt"

	"github.com/AlexStarov/starprnt-GoLang-lib/command"
	"github.com/AlexStarov/starprnt-GoLang-lib/util"
)

// Control characters
const (
	nul = 0x00
	bel = 0x07
	lf  = 0x0a
	esc = 0x1b
	gs  = 0x1d
	rs  = 0x1e
	sub = 0x1a
	etb = 0x17
	si  = 0x0f
	dc2 = 0x12
)

// Command is one printer instruction. Each command appends its whole byte
// sequence to the buffer or, on invalid parameters, appends nothing and
// returns an error matching ErrInvalidInput.
type Command interface {
	AppendTo(b *command.Buffer) error
	isCommand()
}

// Build assembles cmds into one job buffer, in order.
func Build(cmds ...Command) (*command.Buffer, error) {
	b := &command.Buffer{}
	for i, c := range cmds {
		if c == nil {
			return nil, fmt.Errorf("%w: command %d is nil", ErrInvalidInput, i)
		}
		if err := c.AppendTo(b); err != nil {
			return nil, fmt.Errorf("command %d (%T): %w", i, c, err)
		}
	}
	return b, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func onOff(on bool) byte {
	if on {
		return '1'
	}
	return '0'
}

// Initialize resets the printer (ESC @).
type Initialize struct{}

func (Initialize) isCommand() {}
func (Initialize) AppendTo(b *command.Buffer) error {
	b.Append([]byte{esc, '@'})
	return nil
}

// Raw sends Data unchanged.
type Raw struct {
	Data []byte
}

func (Raw) isCommand() {}
func (c Raw) AppendTo(b *command.Buffer) error {
	b.Append(c.Data)
	return nil
}

// LineFeed feeds Lines lines; zero or less feeds one.
type LineFeed struct {
	Lines int
}

func (LineFeed) isCommand() {}
func (c LineFeed) AppendTo(b *command.Buffer) error {
	n := c.Lines
	if n <= 0 {
		n = 1
	}
	if n > 255 {
		return invalid("line feed count %d", c.Lines)
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = lf
	}
	b.Append(out)
	return nil
}

// Alignment of line mode text.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// ParseAlignment accepts "left", "center"/"centre" and "right".
func ParseAlignment(s string) (Alignment, error) {
	switch s {
	case "", "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return 0, invalid("alignment %q", s)
}

func (a Alignment) bytes() ([]byte, error) {
	if a < AlignLeft || a > AlignRight {
		return nil, invalid("alignment %d", int(a))
	}
	return []byte{esc, gs, 'a', util.ASCIIDigit(int(a))}, nil
}

// Align sets the text alignment (ESC GS a n).
type Align struct {
	Alignment Alignment
}

func (Align) isCommand() {}
func (c Align) AppendTo(b *command.Buffer) error {
	out, err := c.Alignment.bytes()
	if err != nil {
		return err
	}
	b.Append(out)
	return nil
}

// Emphasis turns emphasized printing on (ESC E) or off (ESC F).
type Emphasis struct {
	On bool
}

func (Emphasis) isCommand() {}
func (c Emphasis) AppendTo(b *command.Buffer) error {
	if c.On {
		b.Append([]byte{esc, 'E'})
	} else {
		b.Append([]byte{esc, 'F'})
	}
	return nil
}

// Underline turns underlining on or off (ESC - n).
type Underline struct {
	On bool
}

func (Underline) isCommand() {}
func (c Underline) AppendTo(b *command.Buffer) error {
	b.Append([]byte{esc, '-', onOff(c.On)})
	return nil
}

// Invert selects white-on-black (or red on two colour models) printing with
// ESC 4, and cancels it with ESC 5.
type Invert struct {
	On bool
}

func (Invert) isCommand() {}
func (c Invert) AppendTo(b *command.Buffer) error {
	if c.On {
		b.Append([]byte{esc, '4'})
	} else {
		b.Append([]byte{esc, '5'})
	}
	return nil
}

// MaxExpansion is the largest character expansion factor index.
const MaxExpansion = 5

// Expansion sets character height and width multipliers (ESC i h w); 0 is
// normal size, 5 is six times. Impact printers (DotMatrix) only double,
// with ESC h n and ESC W n, so there Height and Width are 0 or 1.
type Expansion struct {
	Height, Width int
	DotMatrix     bool
}

func (Expansion) isCommand() {}
func (c Expansion) AppendTo(b *command.Buffer) error {
	if c.DotMatrix {
		if c.Height < 0 || c.Height > 1 || c.Width < 0 || c.Width > 1 {
			return invalid("dot matrix expansion %dx%d", c.Height, c.Width)
		}
		b.Append([]byte{esc, 'h', onOff(c.Height == 1), esc, 'W', onOff(c.Width == 1)})
		return nil
	}
	if c.Height < 0 || c.Height > MaxExpansion || c.Width < 0 || c.Width > MaxExpansion {
		return invalid("expansion %dx%d", c.Height, c.Width)
	}
	b.Append([]byte{esc, 'i', util.ASCIIDigit(c.Height), util.ASCIIDigit(c.Width)})
	return nil
}

// HorizontalTabs sets tab stops in columns (ESC D n1 .. nk NUL). Stops must
// be increasing; at most 16 are kept by the printer.
type HorizontalTabs struct {
	Stops []int
}

func (HorizontalTabs) isCommand() {}
func (c HorizontalTabs) AppendTo(b *command.Buffer) error {
	if len(c.Stops) > 16 {
		return invalid("%d tab stops, at most 16", len(c.Stops))
	}
	out := []byte{esc, 'D'}
	prev := 0
	for _, s := range c.Stops {
		if s <= prev || s > 255 {
			return invalid("tab stops %v", c.Stops)
		}
		out = append(out, byte(s))
		prev = s
	}
	b.Append(append(out, nul))
	return nil
}

// CashDrawer kicks drawer 1 (BEL) or drawer 2 (SUB).
type CashDrawer struct {
	Drawer int
}

func (CashDrawer) isCommand() {}
func (c CashDrawer) AppendTo(b *command.Buffer) error {
	switch c.Drawer {
	case 0, 1:
		b.Append([]byte{bel})
	case 2:
		b.Append([]byte{sub})
	default:
		return invalid("cash drawer %d", c.Drawer)
	}
	return nil
}

// CutType selects the auto cutter action.
type CutType int

const (
	FullCut CutType = iota
	PartialCut
	FullCutFeed
	PartialCutFeed
)

var cutNames = map[string]CutType{
	"full":         FullCut,
	"partial":      PartialCut,
	"full-feed":    FullCutFeed,
	"partial-feed": PartialCutFeed,
}

// ParseCutType accepts "full", "partial", "full-feed" and "partial-feed".
func ParseCutType(s string) (CutType, error) {
	if s == "" {
		return FullCutFeed, nil
	}
	if t, ok := cutNames[s]; ok {
		return t, nil
	}
	return 0, invalid("cut type %q", s)
}

// Cut runs the auto cutter (ESC d n).
type Cut struct {
	Type CutType
}

func (Cut) isCommand() {}
func (c Cut) AppendTo(b *command.Buffer) error {
	if c.Type < FullCut || c.Type > PartialCutFeed {
		return invalid("cut type %d", int(c.Type))
	}
	b.Append([]byte{esc, 'd', util.ASCIIDigit(int(c.Type))})
	return nil
}
