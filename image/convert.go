package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

// DefaultThreshold is the lightness at or below which a pixel prints black.
const DefaultThreshold = 0.5

var (
	// ErrInvalidInput is returned for a nil image or bad converter settings.
	ErrInvalidInput = errors.New("invalid image input")
	// ErrInvalidMaxWidth is returned when the module width is not positive
	// or too wide for a two byte row count.
	ErrInvalidMaxWidth = fmt.Errorf("%w: max module width out of range", ErrInvalidInput)
)

// Converter turns arbitrary images into printer bitmaps.
//
// Pixel policy: each pixel is composited over white using its alpha, then its
// lightness (55R + 182G + 18B, normalised to 0..1) is compared to Threshold.
// Pixels at or below the threshold print. Fully transparent pixels never print.
type Converter struct {
	// The maximum line width of the printer, in dots
	MaxWidth int

	// The threshold between white and black dots. Values outside (0, 1]
	// fall back to DefaultThreshold.
	Threshold float64

	// Dither uses Floyd-Steinberg error diffusion instead of a plain threshold.
	Dither bool
}

// Prepare converts src with the default threshold and no dithering.
func Prepare(src image.Image, maxModuleWidth int) (*Bitmap, error) {
	c := &Converter{MaxWidth: maxModuleWidth, Threshold: DefaultThreshold}
	return c.Prepare(src)
}

// Prepare scales src down to MaxWidth when it is wider (never up), keeping the
// aspect ratio, and thresholds it into a Bitmap whose width is padded to a
// multiple of 8 with white dots.
func (c *Converter) Prepare(src image.Image) (*Bitmap, error) {
	if c.MaxWidth <= 0 || c.MaxWidth > MaxBitmapWidth {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidMaxWidth, c.MaxWidth)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}

	sz := src.Bounds().Size()
	if sz.X <= 0 || sz.Y <= 0 {
		return NewBitmap(0, 0), nil
	}

	img := src
	if sz.X > c.MaxWidth {
		h := scaledHeight(sz.X, sz.Y, c.MaxWidth)
		logInternal.LogMessage(logInternal.DEBUG, fmt.Sprintf("resize %dx%d -> %dx%d", sz.X, sz.Y, c.MaxWidth, h))
		img = resize.Resize(uint(c.MaxWidth), uint(h), src, resize.Lanczos3)
	}

	if c.Dither {
		return c.dithered(img), nil
	}
	return c.thresholded(img), nil
}

func scaledHeight(w, h, maxWidth int) int {
	out := int(math.Round(float64(h) * float64(maxWidth) / float64(w)))
	if out < 1 {
		out = 1
	}
	return out
}

func (c *Converter) threshold() float64 {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return DefaultThreshold
	}
	return c.Threshold
}

func (c *Converter) thresholded(img image.Image) *Bitmap {
	r := img.Bounds()
	bm := NewBitmap(r.Dx(), r.Dy())
	t := c.threshold()

	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			if lightness(img.At(r.Min.X+x, r.Min.Y+y)) <= t {
				bm.SetBit(x, y, true)
			}
		}
	}
	return bm
}

func (c *Converter) dithered(img image.Image) *Bitmap {
	r := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, r.Min, draw.Over)

	ditherer := dither.NewDitherer([]color.Color{color.Black, color.White})
	ditherer.Matrix = dither.FloydSteinberg
	pal := ditherer.DitherPaletted(flat)

	bm := NewBitmap(r.Dx(), r.Dy())
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			if pal.ColorIndexAt(x, y) == 0 {
				bm.SetBit(x, y, true)
			}
		}
	}
	return bm
}

const lumR, lumG, lumB = 55, 182, 18

// lightness composites c over white and returns its weighted lightness in 0..1.
func lightness(c color.Color) float64 {
	r, g, b, a := c.RGBA()
	// premultiplied: adding the uncovered part of white is the "over" operator
	white := 0xffff - a
	r, g, b = r+white, g+white, b+white

	return float64(lumR*r+lumG*g+lumB*b) / float64(0xffff*(lumR+lumG+lumB))
}
