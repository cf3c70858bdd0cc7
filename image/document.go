package image

import (
	"fmt"
	"strconv"
	"strings"
)

// Speed is the raster print speed.
type Speed int

const (
	SpeedHigh Speed = iota
	SpeedMedium
	SpeedLow
)

// TopMargin selects the raster top margin.
type TopMargin int

const (
	TopMarginDefault TopMargin = iota
	TopMarginSmall
	TopMarginStandard
)

// PageEndMode is what the printer does at a page break (FF mode) or at the end
// of the document (EOT mode).
type PageEndMode int

const (
	PageEndDefault           PageEndMode = 0
	PageEndNone              PageEndMode = 1
	PageEndFeedToCutter      PageEndMode = 2
	PageEndFeedToTearbar     PageEndMode = 3
	PageEndFullCut           PageEndMode = 8
	PageEndFeedAndFullCut    PageEndMode = 9
	PageEndPartialCut        PageEndMode = 12
	PageEndFeedAndPartialCut PageEndMode = 13
	PageEndEject             PageEndMode = 36
	PageEndFeedAndEject      PageEndMode = 37
)

var speedNames = map[Speed]string{
	SpeedHigh:   "high",
	SpeedMedium: "medium",
	SpeedLow:    "low",
}

var topMarginNames = map[TopMargin]string{
	TopMarginDefault:  "default",
	TopMarginSmall:    "small",
	TopMarginStandard: "standard",
}

var pageEndNames = map[PageEndMode]string{
	PageEndDefault:           "default",
	PageEndNone:              "none",
	PageEndFeedToCutter:      "feed-to-cutter",
	PageEndFeedToTearbar:     "feed-to-tearbar",
	PageEndFullCut:           "full-cut",
	PageEndFeedAndFullCut:    "feed-and-full-cut",
	PageEndPartialCut:        "partial-cut",
	PageEndFeedAndPartialCut: "feed-and-partial-cut",
	PageEndEject:             "eject",
	PageEndFeedAndEject:      "feed-and-eject",
}

func (s Speed) String() string       { return nameOr(speedNames, s) }
func (m TopMargin) String() string   { return nameOr(topMarginNames, m) }
func (m PageEndMode) String() string { return nameOr(pageEndNames, m) }

func nameOr[K comparable](names map[K]string, k K) string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", k)
}

func parseName[K comparable](names map[K]string, kind, s string) (K, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for k, n := range names {
		if n == want {
			return k, nil
		}
	}
	var zero K
	return zero, fmt.Errorf("%w: unknown %s %q", ErrInvalidInput, kind, s)
}

// ParseSpeed parses "high", "medium" or "low".
func ParseSpeed(s string) (Speed, error) { return parseName(speedNames, "speed", s) }

// ParseTopMargin parses "default", "small" or "standard".
func ParseTopMargin(s string) (TopMargin, error) {
	return parseName(topMarginNames, "top margin", s)
}

// ParsePageEndMode parses names like "feed-and-full-cut".
func ParsePageEndMode(s string) (PageEndMode, error) {
	return parseName(pageEndNames, "page end mode", s)
}

// Document holds the Star Graphic mode settings sent before and after the
// raster rows.
type Document struct {
	Speed       Speed
	PageEnd     PageEndMode // FF mode, applied at PageBreak
	DocumentEnd PageEndMode // EOT mode, applied at End
	TopMargin   TopMargin
	PageLength  int // 0 is continuous paper
	LeftMargin  int
	RightMargin int
}

// DefaultDocument is the receipt setup: medium speed, feed and full cut at
// both page and document end, standard top margin.
func DefaultDocument() Document {
	return Document{
		Speed:       SpeedMedium,
		PageEnd:     PageEndFeedAndFullCut,
		DocumentEnd: PageEndFeedAndFullCut,
		TopMargin:   TopMarginStandard,
	}
}

// Validate checks the enum values and that lengths are not negative.
func (d Document) Validate() error {
	if _, ok := speedNames[d.Speed]; !ok {
		return fmt.Errorf("%w: speed %d", ErrInvalidInput, int(d.Speed))
	}
	if _, ok := topMarginNames[d.TopMargin]; !ok {
		return fmt.Errorf("%w: top margin %d", ErrInvalidInput, int(d.TopMargin))
	}
	if _, ok := pageEndNames[d.PageEnd]; !ok {
		return fmt.Errorf("%w: page end mode %d", ErrInvalidInput, int(d.PageEnd))
	}
	if _, ok := pageEndNames[d.DocumentEnd]; !ok {
		return fmt.Errorf("%w: document end mode %d", ErrInvalidInput, int(d.DocumentEnd))
	}
	if d.PageLength < 0 || d.LeftMargin < 0 || d.RightMargin < 0 {
		return fmt.Errorf("%w: negative page length or margin", ErrInvalidInput)
	}
	return nil
}

// raster command with an ASCII decimal parameter terminated by NUL
func rasterParam(cmd string, n int) []byte {
	out := append([]byte{esc, '*', 'r'}, cmd...)
	out = append(out, strconv.Itoa(n)...)
	return append(out, 0x00)
}

// Begin enters raster mode and applies the document settings.
func (d Document) Begin() []byte {
	out := []byte{esc, '*', 'r', 'A'}
	out = append(out, rasterParam("Q", int(d.Speed))...)
	out = append(out, rasterParam("T", int(d.TopMargin))...)
	out = append(out, rasterParam("F", int(d.PageEnd))...)
	out = append(out, rasterParam("E", int(d.DocumentEnd))...)
	out = append(out, rasterParam("P", d.PageLength)...)
	out = append(out, rasterParam("ml", d.LeftMargin)...)
	out = append(out, rasterParam("mr", d.RightMargin)...)
	return out
}

// End quits raster mode; the printer then runs the EOT mode action.
func (d Document) End() []byte {
	return []byte{esc, '*', 'r', 'B'}
}

// PageBreak ends the current page and runs the FF mode action.
func (d Document) PageBreak() []byte {
	return []byte{esc, 0x0c, 0x00}
}
