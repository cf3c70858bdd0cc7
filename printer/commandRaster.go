package printer

import (
	"errors"
	"fmt"
	"image"

	"github.com/AlexStarov/starprnt-GoLang-lib/command"
	imgInternal "github.com/AlexStarov/starprnt-GoLang-lib/image"
)

// Printable widths in dots.
const (
	PrintableWidth2Inch = 384
	PrintableWidth3Inch = 576
	PrintableWidth4Inch = 832
)

// zero Document means the receipt defaults
func documentOrDefault(d imgInternal.Document) (imgInternal.Document, error) {
	if d == (imgInternal.Document{}) {
		return imgInternal.DefaultDocument(), nil
	}
	if err := d.Validate(); err != nil {
		return d, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return d, nil
}

func imageError(err error) error {
	if errors.Is(err, imgInternal.ErrInvalidInput) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

// RasterBegin enters raster mode (ESC * r A) with the Document settings.
type RasterBegin struct {
	Document imgInternal.Document
}

func (RasterBegin) isCommand() {}
func (c RasterBegin) AppendTo(b *command.Buffer) error {
	d, err := documentOrDefault(c.Document)
	if err != nil {
		return err
	}
	b.Append(d.Begin())
	return nil
}

// RasterEnd leaves raster mode (ESC * r B).
type RasterEnd struct {
	Document imgInternal.Document
}

func (RasterEnd) isCommand() {}
func (c RasterEnd) AppendTo(b *command.Buffer) error {
	d, err := documentOrDefault(c.Document)
	if err != nil {
		return err
	}
	b.Append(d.End())
	return nil
}

// RasterPageBreak ends the page inside a raster document.
type RasterPageBreak struct{}

func (RasterPageBreak) isCommand() {}
func (RasterPageBreak) AppendTo(b *command.Buffer) error {
	b.Append(imgInternal.DefaultDocument().PageBreak())
	return nil
}

// RasterImage appends the rows of Image only; it must sit between
// RasterBegin and RasterEnd.
type RasterImage struct {
	Image     image.Image
	Converter imgInternal.Converter
	Compress  bool
}

func (RasterImage) isCommand() {}
func (c RasterImage) AppendTo(b *command.Buffer) error {
	conv := c.Converter
	bm, err := conv.Prepare(c.Image)
	if err != nil {
		return imageError(err)
	}
	b.AppendAll(imgInternal.EncodeRows(bm, c.Compress)...)
	return nil
}

// RasterText draws Text into an image with RenderText and appends its rows,
// like RasterImage.
type RasterText struct {
	Text     string
	Options  imgInternal.TextOptions
	Compress bool
}

func (RasterText) isCommand() {}
func (c RasterText) AppendTo(b *command.Buffer) error {
	img, err := imgInternal.RenderText(c.Text, c.Options)
	if err != nil {
		return imageError(err)
	}
	return RasterImage{
		Image:     img,
		Converter: imgInternal.Converter{MaxWidth: c.Options.Width, Threshold: imgInternal.DefaultThreshold},
		Compress:  c.Compress,
	}.AppendTo(b)
}

// Bitmap is a whole raster document holding one image: begin, rows, end.
type Bitmap struct {
	Image    image.Image
	MaxWidth int
	Compress bool
	Dither   bool
	Document imgInternal.Document
}

func (Bitmap) isCommand() {}
func (c Bitmap) AppendTo(b *command.Buffer) error {
	d, err := documentOrDefault(c.Document)
	if err != nil {
		return err
	}
	conv := &imgInternal.Converter{MaxWidth: c.MaxWidth, Threshold: imgInternal.DefaultThreshold, Dither: c.Dither}
	bm, err := conv.Prepare(c.Image)
	if err != nil {
		return imageError(err)
	}
	enc := &imgInternal.Encoder{Document: d}
	enc.Encode(bm, c.Compress).AppendTo(b)
	return nil
}
