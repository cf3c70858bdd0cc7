package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlexStarov/starprnt-GoLang-lib/command"
	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
	"github.com/AlexStarov/starprnt-GoLang-lib/printer"
	"github.com/AlexStarov/starprnt-GoLang-lib/receipt"
	"github.com/AlexStarov/starprnt-GoLang-lib/spool"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// jobKind names what a spooled file is printed as.
func jobKind(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".toml" || ext == ".yaml" || ext == ".yml":
		return "receipt"
	case imageExts[ext]:
		return "image"
	}
	return "raw"
}

// jobBuffer turns a spooled file into a print job: receipt templates are
// rendered, images printed as one raster document, anything else is sent
// as it is.
func (a *app) jobBuffer(path string) (*command.Buffer, error) {
	switch jobKind(path) {
	case "receipt":
		tpl, err := a.loadReceipt(path, "")
		if err != nil {
			return nil, err
		}
		return receipt.Build(tpl)

	case "image":
		img, err := printer.LoadImage(path)
		if err != nil {
			return nil, err
		}
		return printer.Build(printer.ImageCommands(img, a.cfg.ImageOptions())...)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", printer.ErrInvalidInput)
	}
	return command.New(data), nil
}

func (a *app) spoolHandler(p *printer.Printer) spool.Handler {
	return func(ctx context.Context, path string) error {
		buf, err := a.jobBuffer(path)
		if err != nil {
			return err
		}
		logger := logInternal.Logger()
		logger.Debug().Str("file", path).Str("kind", jobKind(path)).Int("bytes", buf.Len()).Msg("Printing spool file")
		return p.Send(ctx, buf)
	}
}

func (a *app) watchCommand() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Print every file dropped into a folder",
		Long: `Print every file dropped into a folder. Receipt templates (.toml, .yaml)
are rendered, images are printed as raster graphics, other files are sent to
the printer unchanged. Printed files move to done/, failed ones to failed/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.SpoolDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("spool folder is required (argument, --spool-dir or STARPRINT_SPOOL_DIR)")
			}
			p, err := a.cfg.Printer()
			if err != nil {
				return err
			}

			w := spool.NewWatcher(dir, a.spoolHandler(p))
			w.Debounce = a.cfg.Debounce
			if once {
				n, err := w.Scan(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) handled\n", n)
				return nil
			}
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "handle the files already in the folder and exit")
	return cmd
}
