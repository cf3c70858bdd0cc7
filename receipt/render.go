package receipt

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AlexStarov/starprnt-GoLang-lib/charset"
	"github.com/AlexStarov/starprnt-GoLang-lib/command"
	imgInternal "github.com/AlexStarov/starprnt-GoLang-lib/image"
	"github.com/AlexStarov/starprnt-GoLang-lib/printer"
)

// Defaults for steps that leave their sizes at zero.
const (
	DefaultBarcodeWidth  = 2
	DefaultBarcodeHeight = 40
	DefaultQRCellSize    = 4
	DefaultPDF417Module  = 2
	DefaultPDF417Aspect  = 3
)

func (t *Template) document() (imgInternal.Document, error) {
	d := imgInternal.DefaultDocument()
	var err error
	if t.Speed != "" {
		if d.Speed, err = imgInternal.ParseSpeed(t.Speed); err != nil {
			return d, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
	}
	if t.TopMargin != "" {
		if d.TopMargin, err = imgInternal.ParseTopMargin(t.TopMargin); err != nil {
			return d, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
	}
	if t.PageEnd != "" {
		if d.PageEnd, err = imgInternal.ParsePageEndMode(t.PageEnd); err != nil {
			return d, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
	}
	if t.DocumentEnd != "" {
		if d.DocumentEnd, err = imgInternal.ParsePageEndMode(t.DocumentEnd); err != nil {
			return d, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
	}
	return d, nil
}

type renderer struct {
	t    *Template
	doc  imgInternal.Document
	cmds []printer.Command
	// raster mode: drawer kicks go after the document end
	tail []printer.Command
	bold bool
}

func (r *renderer) emit(c printer.Command) { r.cmds = append(r.cmds, c) }

func (r *renderer) raster() bool { return r.t.Mode == ModeRaster }

func (r *renderer) kanjiMode() {
	if k := charset.KanjiMode(r.t.Encoding); k != nil {
		r.emit(printer.Raw{Data: k})
	}
}

// Render turns t into printer commands. Line mode receipts select the Kanji
// mode their encoding needs at the start and after every init step; raster
// receipts are one raster
// document holding every text and image step, followed by any drawer kick.
//
// Render checks step kinds and their arguments where it reads them; the
// command parameters themselves are checked when the job is built.
func Render(t *Template) ([]printer.Command, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil template", ErrInvalidTemplate)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if _, err := charset.Canonical(t.Encoding); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	doc, err := t.document()
	if err != nil {
		return nil, err
	}

	r := &renderer{t: t, doc: doc}
	if r.raster() {
		r.emit(printer.RasterBegin{Document: doc})
	} else if len(t.Steps) == 0 || !strings.EqualFold(t.Steps[0].Kind, "init") {
		r.kanjiMode()
	}
	for i, s := range t.Steps {
		if err := r.step(s); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, s.Kind, err)
		}
	}
	if r.raster() {
		r.emit(printer.RasterEnd{Document: doc})
		r.cmds = append(r.cmds, r.tail...)
	}
	return r.cmds, nil
}

// Build renders t and assembles the job.
func Build(t *Template) (*command.Buffer, error) {
	cmds, err := Render(t)
	if err != nil {
		return nil, err
	}
	return printer.Build(cmds...)
}

func (r *renderer) lineOnly(kind string) error {
	if r.raster() {
		return fmt.Errorf("%w: %s in %s mode", ErrStepMode, kind, r.t.Mode)
	}
	return nil
}

func (r *renderer) step(s Step) error {
	kind := strings.ToLower(strings.TrimSpace(s.Kind))
	switch kind {
	case "text":
		return r.text(s)
	case "feed":
		if r.raster() {
			n := max(s.Lines, 1)
			r.emit(r.rasterText(strings.Repeat(" \n", n), false, 0))
			return nil
		}
		r.emit(printer.LineFeed{Lines: s.Lines})
	case "bold":
		if r.raster() {
			r.bold = !s.Off
			return nil
		}
		r.emit(printer.Emphasis{On: !s.Off})
	case "image":
		return r.image(s)
	case "drawer":
		c := printer.CashDrawer{Drawer: s.Drawer}
		if r.raster() {
			r.tail = append(r.tail, c)
			return nil
		}
		r.emit(c)
	case "raw":
		data, err := hex.DecodeString(strings.Join(strings.Fields(s.Data), ""))
		if err != nil {
			return fmt.Errorf("%w: raw data: %w", printer.ErrInvalidInput, err)
		}
		r.emit(printer.Raw{Data: data})
	case "init", "align", "underline", "invert", "expand", "tabs", "barcode", "qrcode", "pdf417", "cut":
		if err := r.lineOnly(kind); err != nil {
			return err
		}
		return r.lineStep(kind, s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStep, s.Kind)
	}
	return nil
}

func (r *renderer) lineStep(kind string, s Step) error {
	switch kind {
	case "init":
		// ESC @ drops the Kanji mode
		r.emit(printer.Initialize{})
		r.kanjiMode()
	case "align":
		a, err := printer.ParseAlignment(strings.ToLower(s.Value))
		if err != nil {
			return err
		}
		r.emit(printer.Align{Alignment: a})
	case "underline":
		r.emit(printer.Underline{On: !s.Off})
	case "invert":
		r.emit(printer.Invert{On: !s.Off})
	case "expand":
		r.emit(printer.Expansion{Height: s.Height, Width: s.Width, DotMatrix: r.t.DotMatrix})
	case "tabs":
		r.emit(printer.HorizontalTabs{Stops: s.Stops})
	case "barcode":
		sym, err := printer.ParseSymbology(strings.ToLower(s.Value))
		if err != nil {
			return err
		}
		opt := printer.BarcodeOption(s.Option)
		if opt == 0 {
			opt = printer.CharsWithLineFeed
		}
		r.emit(printer.Barcode{
			Symbology: sym,
			Option:    opt,
			Width:     orDefault(s.Width, DefaultBarcodeWidth),
			Height:    orDefault(s.Height, DefaultBarcodeHeight),
			Data:      []byte(s.Data),
		})
	case "qrcode":
		level := strings.ToUpper(s.Value)
		if level == "" {
			level = "M"
		}
		corr, err := printer.ParseQRCorrection(level)
		if err != nil {
			return err
		}
		data, err := charset.Encode(r.t.Encoding, s.Data)
		if err != nil {
			return fmt.Errorf("%w: %w", printer.ErrInvalidInput, err)
		}
		r.emit(printer.QRCode{
			Model:      printer.QRModel(orDefault(s.Model, int(printer.QRModel2))),
			Correction: corr,
			CellSize:   orDefault(s.CellSize, DefaultQRCellSize),
			Data:       data,
		})
	case "pdf417":
		data, err := charset.Encode(r.t.Encoding, s.Data)
		if err != nil {
			return fmt.Errorf("%w: %w", printer.ErrInvalidInput, err)
		}
		r.emit(printer.PDF417{
			Limit:       printer.PDF417UseLimits,
			Security:    s.Security,
			XDirection:  orDefault(s.Width, DefaultPDF417Module),
			AspectRatio: orDefault(s.Height, DefaultPDF417Aspect),
			Data:        data,
		})
	case "cut":
		ct, err := printer.ParseCutType(strings.ToLower(s.Value))
		if err != nil {
			return err
		}
		r.emit(printer.Cut{Type: ct})
	}
	return nil
}

func (r *renderer) text(s Step) error {
	if r.raster() {
		text := s.Text
		if text == "" {
			text = " "
		}
		r.emit(r.rasterText(text, s.Bold, s.Size))
		return nil
	}

	data, err := charset.Encode(r.t.Encoding, s.Text)
	if err != nil {
		return fmt.Errorf("%w: %w", printer.ErrInvalidInput, err)
	}
	if !s.Inline {
		data = append(data, '\n')
	}
	r.emit(printer.Raw{Data: data})
	return nil
}

func (r *renderer) rasterText(text string, bold bool, size float64) printer.Command {
	if size == 0 {
		size = r.t.TextSize
	}
	return printer.RasterText{
		Text: text,
		Options: imgInternal.TextOptions{
			Width: r.t.PrintableArea,
			Size:  size,
			Bold:  bold || r.bold,
			Mono:  true,
		},
		Compress: r.t.Compress,
	}
}

func (r *renderer) image(s Step) error {
	if s.Path == "" {
		return fmt.Errorf("%w: image without path", printer.ErrInvalidInput)
	}
	path := s.Path
	if !filepath.IsAbs(path) && r.t.Dir != "" {
		path = filepath.Join(r.t.Dir, path)
	}
	img, err := printer.LoadImage(path)
	if err != nil {
		return err
	}
	if r.raster() {
		r.emit(printer.RasterImage{
			Image:     img,
			Converter: imgInternal.Converter{MaxWidth: r.t.PrintableArea, Threshold: imgInternal.DefaultThreshold, Dither: s.Dither},
			Compress:  r.t.Compress,
		})
		return nil
	}
	// a logo in a line receipt must not cut the paper
	doc := r.doc
	if r.t.DocumentEnd == "" {
		doc.DocumentEnd = imgInternal.PageEndNone
	}
	r.emit(printer.Bitmap{
		Image:    img,
		MaxWidth: r.t.PrintableArea,
		Compress: r.t.Compress,
		Dither:   s.Dither,
		Document: doc,
	})
	return nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
