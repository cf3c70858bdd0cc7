package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	imgInternal "github.com/AlexStarov/starprnt-GoLang-lib/image"
	"github.com/AlexStarov/starprnt-GoLang-lib/printer"
)

func (a *app) discoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List serial ports and Star USB printers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := printer.Discover()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ports) == 0 {
				fmt.Fprintln(out, "No ports found")
				return nil
			}
			for _, p := range ports {
				fmt.Fprintf(out, "%-28s %-7s %s\n", p.Name, p.Kind, p.Description)
			}
			return nil
		},
	}
}

func (a *app) statusCommand() *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the printer status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.cfg.Printer()
			if err != nil {
				return err
			}
			st, err := p.Status(cmd.Context())
			if err != nil {
				return err
			}
			if summary {
				fmt.Fprintln(cmd.OutOrStdout(), st.Summary())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), st.Description(a.cfg.SensorActiveHigh))
			return nil
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "one line with the raised flags")
	return cmd
}

func (a *app) firmwareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "firmware",
		Short: "Show the printer model and firmware version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.cfg.Printer()
			if err != nil {
				return err
			}
			fw, err := p.FirmwareInformation(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Model: %s\nFirmware: %s\n", fw.ModelName, fw.FirmwareVersion)
			return nil
		},
	}
}

func (a *app) inspectCommand() *cobra.Command {
	var preview bool
	cmd := &cobra.Command{
		Use:   "inspect DUMP",
		Short: "Decode the raster document in a job written to a FILE: port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			bm, doc, err := imgInternal.Decode(rasterDocument(data))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bitmap: %dx%d dots\n", bm.Width(), bm.Height())
			fmt.Fprintf(out, "Speed: %s\nTop margin: %s\nPage end: %s\nDocument end: %s\n",
				doc.Speed, doc.TopMargin, doc.PageEnd, doc.DocumentEnd)
			fmt.Fprintf(out, "Page length: %d\nMargins: %d/%d\n", doc.PageLength, doc.LeftMargin, doc.RightMargin)
			if preview {
				fmt.Fprint(out, previewBitmap(bm, 80))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, "draw the bitmap with text characters")
	return cmd
}

// rasterDocument skips the line mode commands ahead of the first raster
// document in a job.
func rasterDocument(job []byte) []byte {
	if i := bytes.Index(job, []byte{0x1b, '*', 'r', 'A'}); i > 0 {
		return job[i:]
	}
	return job
}

// previewBitmap draws bm at most cols characters wide, a character cell being
// twice as tall as wide. A cell is dark when any of its dots is.
func previewBitmap(bm *imgInternal.Bitmap, cols int) string {
	if bm.Empty() {
		return ""
	}
	step := (bm.Width() + cols - 1) / cols
	var sb strings.Builder
	for y := 0; y < bm.Height(); y += 2 * step {
		for x := 0; x < bm.Width(); x += step {
			sb.WriteByte(cell(bm, x, y, step, 2*step))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cell(bm *imgInternal.Bitmap, x0, y0, w, h int) byte {
	for y := y0; y < y0+h && y < bm.Height(); y++ {
		for x := x0; x < x0+w && x < bm.Width(); x++ {
			if bm.GetBit(x, y) != 0 {
				return '#'
			}
		}
	}
	return ' '
}
