package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	imgInternal "github.com/AlexStarov/starprnt-GoLang-lib/image"
	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
	"github.com/AlexStarov/starprnt-GoLang-lib/printer"
	"github.com/AlexStarov/starprnt-GoLang-lib/receipt"
)

// send builds cmds and prints them on the configured port.
func (a *app) send(cmd *cobra.Command, cmds ...printer.Command) error {
	p, err := a.cfg.Printer()
	if err != nil {
		return err
	}
	buf, err := printer.Build(cmds...)
	if err != nil {
		return err
	}
	logger := logInternal.Logger()
	logger.Debug().Str("port", p.Name).Int("bytes", buf.Len()).Msg("Sending job")
	return p.Send(cmd.Context(), buf)
}

// cutFlag adds --cut; without a value it cuts after feeding.
func cutFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "cut", "", "cut at the end: full, partial, full-feed or partial-feed")
	cmd.Flags().Lookup("cut").NoOptDefVal = "full-feed"
}

func appendCut(cmds []printer.Command, cut string) ([]printer.Command, error) {
	if cut == "" {
		return cmds, nil
	}
	t, err := printer.ParseCutType(cut)
	if err != nil {
		return nil, err
	}
	return append(cmds, printer.Cut{Type: t}), nil
}

// argsOrStdin joins args, or reads stdin for no args or "-".
func argsOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(b), "\r\n"), nil
	}
	return strings.Join(args, " "), nil
}

type textOptions struct {
	align        string
	bold         bool
	underline    bool
	invert       bool
	upsideDown   bool
	expandHeight int
	expandWidth  int
	dotMatrix    bool
	raster       bool
	size         float64
	cut          string
}

func (a *app) textCommands(text string, o textOptions) ([]printer.Command, error) {
	align, err := printer.ParseAlignment(o.align)
	if err != nil {
		return nil, err
	}

	cmds := []printer.Command{printer.Initialize{}}
	if o.raster {
		doc := imgInternal.DefaultDocument()
		doc.DocumentEnd = imgInternal.PageEndNone
		cmds = append(cmds,
			printer.RasterBegin{Document: doc},
			printer.RasterText{
				Text:     text,
				Options:  imgInternal.TextOptions{Width: a.cfg.PrintableArea, Size: o.size, Bold: o.bold, Mono: true},
				Compress: a.cfg.Compress,
			},
			printer.RasterEnd{Document: doc},
		)
	} else {
		cmds = append(cmds, printer.Text{
			Style: printer.TextStyle{
				Underline:       o.underline,
				Invert:          o.invert,
				Emphasized:      o.bold,
				UpsideDown:      o.upsideDown,
				HeightExpansion: o.expandHeight,
				WidthExpansion:  o.expandWidth,
				Alignment:       align,
				DotMatrix:       o.dotMatrix,
			},
			Encoding: a.cfg.Encoding,
			Data:     text,
		})
	}
	return appendCut(cmds, o.cut)
}

func (a *app) textCommand() *cobra.Command {
	var o textOptions
	cmd := &cobra.Command{
		Use:   "text [text...]",
		Short: "Print a line of text, read from stdin without arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := argsOrStdin(cmd, args)
			if err != nil {
				return err
			}
			cmds, err := a.textCommands(text, o)
			if err != nil {
				return err
			}
			return a.send(cmd, cmds...)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.align, "align", "left", "left, center or right")
	f.BoolVar(&o.bold, "bold", false, "emphasized")
	f.BoolVar(&o.underline, "underline", false, "underlined")
	f.BoolVar(&o.invert, "invert", false, "white on black")
	f.BoolVar(&o.upsideDown, "upside-down", false, "rotate 180 degrees")
	f.IntVar(&o.expandHeight, "expand-height", 0, "height multiplier 0..5")
	f.IntVar(&o.expandWidth, "expand-width", 0, "width multiplier 0..5")
	f.BoolVar(&o.dotMatrix, "dot-matrix", false, "dot impact printer expansion commands")
	f.BoolVar(&o.raster, "raster", false, "draw the text as a raster image")
	f.Float64Var(&o.size, "size", imgInternal.DefaultTextSize, "glyph size in dots with --raster")
	cutFlag(cmd, &o.cut)
	return cmd
}

func (a *app) imageCommand() *cobra.Command {
	var (
		cut     bool
		docEnd  string
		speed   string
		noReset bool
	)
	cmd := &cobra.Command{
		Use:   "image FILE",
		Short: "Print a PNG, JPEG, GIF, BMP, TIFF or WebP image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.ImageOptions()
			opts.Cut = cut

			doc := imgInternal.DefaultDocument()
			if docEnd != "" {
				m, err := imgInternal.ParsePageEndMode(docEnd)
				if err != nil {
					return err
				}
				doc.DocumentEnd = m
			}
			if speed != "" {
				s, err := imgInternal.ParseSpeed(speed)
				if err != nil {
					return err
				}
				doc.Speed = s
			}
			opts.Document = doc

			img, err := printer.LoadImage(args[0])
			if err != nil {
				return err
			}
			cmds := printer.ImageCommands(img, opts)
			if noReset {
				cmds = cmds[1:]
			}
			return a.send(cmd, cmds...)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&cut, "cut", false, "cut after the image in line mode")
	f.StringVar(&docEnd, "document-end", "", "what the printer does after the image, e.g. feed-and-full-cut or none")
	f.StringVar(&speed, "speed", "", "high, medium or low")
	f.BoolVar(&noReset, "no-init", false, "do not reset the printer first")
	return cmd
}

func (a *app) barcodeCommand() *cobra.Command {
	var (
		symbology string
		option    int
		module    int
		height    int
		cut       string
	)
	cmd := &cobra.Command{
		Use:   "barcode DATA",
		Short: "Print a Code39, Code93, ITF or Code128 barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sym, err := printer.ParseSymbology(symbology)
			if err != nil {
				return err
			}
			cmds, err := appendCut([]printer.Command{
				printer.Initialize{},
				printer.Barcode{
					Symbology: sym,
					Option:    printer.BarcodeOption(option),
					Width:     module,
					Height:    height,
					Data:      []byte(args[0]),
				},
			}, cut)
			if err != nil {
				return err
			}
			return a.send(cmd, cmds...)
		},
	}
	f := cmd.Flags()
	f.StringVar(&symbology, "symbology", "code128", "code39, code93, itf or code128")
	f.IntVar(&option, "option", int(printer.CharsWithLineFeed), "1..4: human readable characters and line feed")
	f.IntVar(&module, "module", receipt.DefaultBarcodeWidth, "module width mode")
	f.IntVar(&height, "height", receipt.DefaultBarcodeHeight, "height in dots")
	cutFlag(cmd, &cut)
	return cmd
}

func (a *app) qrcodeCommand() *cobra.Command {
	var (
		level string
		model int
		cell  int
		cut   string
	)
	cmd := &cobra.Command{
		Use:   "qrcode DATA",
		Short: "Print a QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			corr, err := printer.ParseQRCorrection(strings.ToUpper(level))
			if err != nil {
				return err
			}
			cmds, err := appendCut([]printer.Command{
				printer.Initialize{},
				printer.QRCode{Model: printer.QRModel(model), Correction: corr, CellSize: cell, Data: []byte(args[0])},
				printer.LineFeed{Lines: 1},
			}, cut)
			if err != nil {
				return err
			}
			return a.send(cmd, cmds...)
		},
	}
	f := cmd.Flags()
	f.StringVar(&level, "level", "M", "error correction: L, M, Q or H")
	f.IntVar(&model, "model", int(printer.QRModel2), "QR model 1 or 2")
	f.IntVar(&cell, "cell", receipt.DefaultQRCellSize, "cell size in dots, 1..8")
	cutFlag(cmd, &cut)
	return cmd
}

func (a *app) pdf417Command() *cobra.Command {
	var (
		security int
		module   int
		aspect   int
		cut      string
	)
	cmd := &cobra.Command{
		Use:   "pdf417 DATA",
		Short: "Print a PDF417 symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds, err := appendCut([]printer.Command{
				printer.Initialize{},
				printer.PDF417{Security: security, XDirection: module, AspectRatio: aspect, Data: []byte(args[0])},
				printer.LineFeed{Lines: 1},
			}, cut)
			if err != nil {
				return err
			}
			return a.send(cmd, cmds...)
		},
	}
	f := cmd.Flags()
	f.IntVar(&security, "security", 1, "security level 0..8")
	f.IntVar(&module, "module", receipt.DefaultPDF417Module, "module width in dots, 1..10")
	f.IntVar(&aspect, "aspect", receipt.DefaultPDF417Aspect, "module aspect ratio, 1..10")
	cutFlag(cmd, &cut)
	return cmd
}

// loadReceipt reads the template file, or the built-in sample.
func (a *app) loadReceipt(path, sample string) (*receipt.Template, error) {
	var (
		tpl *receipt.Template
		err error
	)
	switch {
	case sample != "" && path != "":
		return nil, fmt.Errorf("give a template file or --sample, not both")
	case sample != "":
		tpl, err = receipt.Sample(sample)
	case path != "":
		tpl, err = receipt.Load(path)
	default:
		return nil, fmt.Errorf("a template file or --sample is required")
	}
	if err != nil {
		return nil, err
	}
	if tpl.Encoding == "" {
		tpl.Encoding = a.cfg.Encoding
	}
	return tpl, nil
}

func (a *app) receiptCommand() *cobra.Command {
	var (
		sample string
		list   bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "receipt [TEMPLATE]",
		Short: "Print a TOML or YAML receipt template",
		Long: `Print a TOML or YAML receipt template, or one of the built-in samples.
Templates without an encoding use --encoding.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, n := range receipt.SampleNames() {
					fmt.Fprintln(out, n)
				}
				return nil
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			tpl, err := a.loadReceipt(path, sample)
			if err != nil {
				return err
			}

			// --export writes the template instead of printing it
			if format != "" {
				f := receipt.TOML
				switch strings.ToLower(format) {
				case "toml":
				case "yaml", "yml":
					f = receipt.YAML
				default:
					return fmt.Errorf("unknown format %q", format)
				}
				data, err := tpl.Marshal(f)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			p, err := a.cfg.Printer()
			if err != nil {
				return err
			}
			buf, err := receipt.Build(tpl)
			if err != nil {
				return err
			}
			return p.Send(cmd.Context(), buf)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&sample, "sample", "s", "", "print a built-in sample, see --list")
	f.BoolVar(&list, "list", false, "list the built-in samples")
	f.StringVar(&format, "export", "", "write the template as toml or yaml to stdout")
	return cmd
}

func (a *app) drawerCommand() *cobra.Command {
	var drawer int
	cmd := &cobra.Command{
		Use:   "drawer",
		Short: "Open the cash drawer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.send(cmd, printer.CashDrawer{Drawer: drawer})
		},
	}
	cmd.Flags().IntVar(&drawer, "drawer", 1, "drawer 1 or 2")
	return cmd
}

func (a *app) cutCommand() *cobra.Command {
	var (
		kind  string
		lines int
	)
	cmd := &cobra.Command{
		Use:   "cut",
		Short: "Feed and cut the paper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := printer.ParseCutType(kind)
			if err != nil {
				return err
			}
			var cmds []printer.Command
			if lines > 0 {
				cmds = append(cmds, printer.LineFeed{Lines: lines})
			}
			return a.send(cmd, append(cmds, printer.Cut{Type: t})...)
		},
	}
	cmd.Flags().StringVar(&kind, "type", "full-feed", "full, partial, full-feed or partial-feed")
	cmd.Flags().IntVar(&lines, "feed", 0, "lines to feed before cutting")
	return cmd
}
