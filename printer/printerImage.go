package printer

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	imgInternal "github.com/AlexStarov/starprnt-GoLang-lib/image"
	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

// ImageOptions controls PrintImage.
type ImageOptions struct {
	// MaxWidth in dots, PrintableWidth3Inch when zero.
	MaxWidth int
	Compress bool
	Dither   bool
	Document imgInternal.Document
	// Cut after the document in line mode; the raster document end mode
	// usually cuts already.
	Cut bool
}

// LoadImage decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	logger := logInternal.Logger()
	logger.Debug().Str("file", path).Str("format", format).
		Int("width", img.Bounds().Dx()).Int("height", img.Bounds().Dy()).Msg("Loaded image")
	return img, nil
}

// ImageCommands returns the job printing img as one raster document.
func ImageCommands(img image.Image, opts ImageOptions) []Command {
	width := opts.MaxWidth
	if width == 0 {
		width = PrintableWidth3Inch
	}
	cmds := []Command{
		Initialize{},
		Bitmap{Image: img, MaxWidth: width, Compress: opts.Compress, Dither: opts.Dither, Document: opts.Document},
	}
	if opts.Cut {
		cmds = append(cmds, Cut{Type: FullCutFeed})
	}
	return cmds
}

// PrintImage loads the image file at imgPath and prints it.
func (p *Printer) PrintImage(ctx context.Context, imgPath string, opts ImageOptions) error {
	img, err := LoadImage(imgPath)
	if err != nil {
		return err
	}
	return p.Print(ctx, ImageCommands(img, opts)...)
}
