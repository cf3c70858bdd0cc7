package image

import (
	"fmt"
	"image"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultTextSize is the glyph size in dots used when TextOptions.Size is 0.
const DefaultTextSize = 26

const tabStop = 8

// TextOptions controls RenderText.
type TextOptions struct {
	// Width of the rendered image in dots, usually the printable area
	// (576 for 3 inch paper, 832 for 4 inch).
	Width int
	// Size of the glyphs in dots.
	Size float64
	Bold bool
	// Mono selects the fixed pitch face, which keeps space aligned columns.
	Mono bool
}

type fontKey struct{ bold, mono bool }

var (
	fontsMu sync.Mutex
	fonts   = map[fontKey]*opentype.Font{}
)

func loadFont(k fontKey) (*opentype.Font, error) {
	fontsMu.Lock()
	defer fontsMu.Unlock()
	if f, ok := fonts[k]; ok {
		return f, nil
	}

	var data []byte
	switch k {
	case fontKey{false, false}:
		data = goregular.TTF
	case fontKey{true, false}:
		data = gobold.TTF
	case fontKey{false, true}:
		data = gomono.TTF
	default:
		data = gomonobold.TTF
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse font: %w", err)
	}
	fonts[k] = f
	return f, nil
}

// RenderText lays text out black on white in an image opts.Width dots wide.
// Words wrap at the right edge, tabs advance to the next 8 column stop and
// "\r\n", "\r" and "\n" all break lines. The height follows the text.
func RenderText(text string, opts TextOptions) (*image.RGBA, error) {
	if opts.Width <= 0 {
		return nil, fmt.Errorf("%w: text width must be positive (got %d)", ErrInvalidInput, opts.Width)
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultTextSize
	}

	f, err := loadFont(fontKey{opts.Bold, opts.Mono})
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't create font face: %w", err)
	}
	defer face.Close()

	var lines []string
	for _, para := range splitLines(text) {
		lines = append(lines, wrapText(expandTabs(para), opts.Width, face)...)
	}

	m := face.Metrics()
	lineHeight := m.Height.Ceil()
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, lineHeight*len(lines)))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.Point26_6{X: 0, Y: fixed.I(i*lineHeight) + m.Ascent}
		d.DrawString(line)
	}
	return img, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabStop - col%tabStop
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// wrapText breaks s into lines no wider than maxWidth. Runs of spaces are
// kept; a word wider than a whole line is split between runes.
func wrapText(s string, maxWidth int, face font.Face) []string {
	if s == "" {
		return []string{""}
	}

	var lines []string
	line := ""
	for i, word := range strings.Split(s, " ") {
		candidate := word
		if i > 0 {
			candidate = line + " " + word
		}
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			line = candidate
			continue
		}
		if i > 0 && strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
		line = word
		for font.MeasureString(face, line).Ceil() > maxWidth {
			head := fitRunes(line, maxWidth, face)
			lines = append(lines, head)
			line = line[len(head):]
		}
	}
	return append(lines, line)
}

// fitRunes returns the longest prefix of s, at least one rune, that fits.
func fitRunes(s string, maxWidth int, face font.Face) string {
	end := 0
	for end < len(s) {
		_, n := utf8.DecodeRuneInString(s[end:])
		next := end + n
		if end > 0 && font.MeasureString(face, s[:next]).Ceil() > maxWidth {
			break
		}
		end = next
	}
	return s[:end]
}
