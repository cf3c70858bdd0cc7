package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AlexStarov/starprnt-GoLang-lib/command"
	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

// Default timeouts, as used by the Star SDK samples.
const (
	DefaultOpenTimeout = 10 * time.Second
	DefaultEndTimeout  = 30 * time.Second
)

// Printer sends jobs to one named port. Every call opens the port and closes
// it again before returning; nothing is retried.
type Printer struct {
	// Port name, e.g. "TCP:192.168.1.10", see ParsePortName.
	Name string
	// Port settings, e.g. the baud rate of a serial port.
	Settings string

	OpenTimeout time.Duration
	EndTimeout  time.Duration

	// SensorActiveHigh describes the cash drawer sensor, see Status.DrawerOpen.
	SensorActiveHigh bool

	opener Opener

	// one job at a time per Printer
	sync.Mutex
}

// NewPrinter returns a Printer for the port name using the default opener.
func NewPrinter(name, settings string) *Printer {
	return NewPrinterWithOpener(name, settings, &DefaultOpener{})
}

// NewPrinterWithOpener is NewPrinter with another Opener.
func NewPrinterWithOpener(name, settings string, opener Opener) *Printer {
	return &Printer{
		Name:        name,
		Settings:    settings,
		OpenTimeout: DefaultOpenTimeout,
		EndTimeout:  DefaultEndTimeout,
		opener:      opener,
	}
}

func (p *Printer) open(ctx context.Context) (Port, error) {
	port, err := p.opener.Open(ctx, p.Name, p.Settings, p.OpenTimeout)
	if err != nil {
		if errors.Is(err, ErrConnection) {
			return nil, err
		}
		return nil, fmt.Errorf("%w %s: %w", ErrConnection, p.Name, err)
	}
	return port, nil
}

// Send writes the job inside a checked block and reports how the printer
// ended up. Device state errors are *DeviceStateError.
func (p *Printer) Send(ctx context.Context, buf *command.Buffer) (err error) {
	if buf == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	}
	p.Lock()
	defer p.Unlock()

	logger := logInternal.Logger().With().Str("port", p.Name).Logger()

	port, err := p.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := port.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("close failed")
		}
		logInternal.PrintIfErr("print job failed", &err)
	}()

	st, err := port.BeginCheckedBlock()
	if err != nil {
		return fmt.Errorf("%w: begin checked block: %w", ErrTransport, err)
	}
	if st.Offline {
		return deviceStateError(ErrDeviceOffline, "A printer is offline", st)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := buf.WriteTo(port)
	if err != nil {
		return fmt.Errorf("%w: wrote %d of %d bytes: %w", ErrTransport, n, buf.Len(), err)
	}
	logger.Debug().Int64("bytes", n).Int("fragments", buf.Count()).Msg("job written")

	st, err = port.EndCheckedBlock(p.EndTimeout)
	if err != nil {
		return fmt.Errorf("%w: end checked block: %w", ErrTransport, err)
	}
	switch {
	case st.CoverOpen:
		return deviceStateError(ErrCoverOpen, "Printer cover is open", st)
	case st.ReceiptPaperEmpty:
		return deviceStateError(ErrPaperEmpty, "Receipt paper is empty", st)
	case st.Offline:
		return deviceStateError(ErrDeviceOffline, "Printer is offline", st)
	}

	logger.Info().Str("status", st.Summary()).Msg("job printed")
	return nil
}

// Print builds cmds into one job and sends it.
func (p *Printer) Print(ctx context.Context, cmds ...Command) error {
	buf, err := Build(cmds...)
	if err != nil {
		return err
	}
	return p.Send(ctx, buf)
}

// Status reads the printer status once.
func (p *Printer) Status(ctx context.Context) (Status, error) {
	p.Lock()
	defer p.Unlock()

	port, err := p.open(ctx)
	if err != nil {
		return Status{}, err
	}
	defer port.Close()

	st, err := port.RetrieveStatus()
	if err != nil {
		if errors.Is(err, ErrStatusUnavailable) {
			return st, err
		}
		return st, fmt.Errorf("%w: retrieve status: %w", ErrTransport, err)
	}
	return st, nil
}

// CheckStatus is Status rendered as the operator message.
func (p *Printer) CheckStatus(ctx context.Context) (string, error) {
	st, err := p.Status(ctx)
	if err != nil {
		return "", err
	}
	return st.Description(p.SensorActiveHigh), nil
}

// FirmwareInformation asks the printer for its model and firmware version.
func (p *Printer) FirmwareInformation(ctx context.Context) (Firmware, error) {
	p.Lock()
	defer p.Unlock()

	port, err := p.open(ctx)
	if err != nil {
		return Firmware{}, err
	}
	defer port.Close()

	fr, ok := port.(firmwareReader)
	if !ok {
		return Firmware{}, ErrStatusUnavailable
	}
	fw, err := fr.FirmwareInformation()
	if err != nil {
		if errors.Is(err, ErrStatusUnavailable) || errors.Is(err, ErrTransport) {
			return fw, err
		}
		return fw, fmt.Errorf("%w: firmware information: %w", ErrTransport, err)
	}
	return fw, nil
}
