package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/AlexStarov/starprnt-GoLang-lib/config"
	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

const longHelp = `Print to Star Micronics receipt printers in line and raster mode.

Configuration is read from $HOME/.starprint/config.toml, then from STARPRINT_*
environment variables; flags override both.

Port names:
  TCP:host[:port]           raw socket (9100)
  LPD:host[:port][/queue]   line printer daemon (515)
  SERIAL:/dev/ttyUSB0, COM3 serial port, --settings is the baud rate
  USB:[vid[:pid]]           USB printer class device, Star vendor by default
  SPOOL:name                Windows print queue
  FILE:path                 write the job to a file`

var exampleUsage = strings.TrimSpace(`
  starprint discover
  starprint --port TCP:192.168.1.20 status
  starprint --port USB: receipt --sample line_3inch
  starprint --port SERIAL:/dev/ttyUSB0 --settings 38400 image logo.png --cut
  starprint --port FILE:job.bin text "Hello" && starprint inspect job.bin
  starprint --port TCP:192.168.1.20 watch /var/spool/starprint
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app is the state shared by the sub commands.
type app struct {
	cfg     config.Config
	cfgPath string
}

func newRootCommand() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}

	root := &cobra.Command{
		Use:           "starprint",
		Short:         "Print to Star Micronics receipt printers",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.starprint/config.toml)")
	f.StringVarP(&a.cfg.Port, "port", "p", a.cfg.Port, "printer port name, e.g. TCP:192.168.1.20")
	f.StringVar(&a.cfg.Settings, "settings", a.cfg.Settings, "port settings, the baud rate for serial ports")
	f.DurationVar(&a.cfg.OpenTimeout, "open-timeout", a.cfg.OpenTimeout, "time allowed to open the port")
	f.DurationVar(&a.cfg.EndTimeout, "end-timeout", a.cfg.EndTimeout, "time allowed for the printer to finish a job")
	f.BoolVar(&a.cfg.SensorActiveHigh, "sensor-active-high", a.cfg.SensorActiveHigh, "cash drawer sensor is high when the drawer is open")
	f.IntVarP(&a.cfg.PrintableArea, "width", "w", a.cfg.PrintableArea, "printable area in dots (384 2\", 576 3\", 832 4\")")
	f.BoolVar(&a.cfg.Compress, "compress", a.cfg.Compress, "compress raster rows")
	f.BoolVar(&a.cfg.Dither, "dither", a.cfg.Dither, "dither images instead of thresholding")
	f.StringVar(&a.cfg.Encoding, "encoding", a.cfg.Encoding, "text encoding (sjis, big5, gb2312, cp437, ...), raw bytes when empty")
	f.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	f.StringVar(&a.cfg.LogDir, "log-dir", a.cfg.LogDir, "also write rotating log files to this directory")
	f.StringVar(&a.cfg.SpoolDir, "spool-dir", a.cfg.SpoolDir, "hot folder for the watch command")
	f.DurationVar(&a.cfg.Debounce, "debounce", a.cfg.Debounce, "quiet period before a spooled file is printed")

	root.AddCommand(
		a.discoverCommand(),
		a.statusCommand(),
		a.firmwareCommand(),
		a.textCommand(),
		a.imageCommand(),
		a.barcodeCommand(),
		a.qrcodeCommand(),
		a.pdf417Command(),
		a.receiptCommand(),
		a.drawerCommand(),
		a.cutCommand(),
		a.inspectCommand(),
		a.watchCommand(),
	)
	return root
}

// load applies the config file, then the environment, keeping flags set on
// the command line.
func (a *app) load(cmd *cobra.Command) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && config.FileExists(cfgFile) {
		fc, err := config.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	} else if a.cfgPath != "" {
		return fmt.Errorf("config file %s not found", a.cfgPath)
	}

	if err := config.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	if err := logInternal.SetLevel(a.cfg.LogLevel); err != nil {
		return err
	}
	if a.cfg.LogDir != "" {
		if err := logInternal.EnableFiles(a.cfg.LogDir, "starprint"); err != nil {
			return err
		}
	}

	logger := logInternal.Logger()
	logger.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		logger := logInternal.Logger()
		logger.Error().Err(err).Msg("starprint")
		os.Exit(1)
	}
}
