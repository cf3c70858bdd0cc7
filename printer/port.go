package printer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

// Port is an open connection to one printer. A job is written between
// BeginCheckedBlock and EndCheckedBlock so the printer state is checked on
// both sides of it.
type Port interface {
	// BeginCheckedBlock reads the status before the job.
	BeginCheckedBlock() (Status, error)
	Write(p []byte) (int, error)
	// EndCheckedBlock waits until the printer has processed everything
	// written, or timeout elapses, and returns the final status.
	EndCheckedBlock(timeout time.Duration) (Status, error)
	RetrieveStatus() (Status, error)
	Close() error
}

// Opener opens ports by name, e.g. "TCP:192.168.1.10" or "USB:0519:0003".
type Opener interface {
	Open(ctx context.Context, name, settings string, timeout time.Duration) (Port, error)
}

// Firmware is the model and version string reported by the printer.
type Firmware struct {
	ModelName       string
	FirmwareVersion string
}

// ports that can identify their printer
type firmwareReader interface {
	FirmwareInformation() (Firmware, error)
}

// ESC # * LF NUL
var firmwareRequest = []byte{esc, '#', '*', lf, nul}

const (
	defaultStatusTimeout = 3 * time.Second
	defaultPollInterval  = 100 * time.Millisecond
)

// starPort runs the Star status protocol over a raw Transport. Transports
// that cannot set a read deadline are treated as write-only.
type starPort struct {
	name string
	t    Transport
	rd   ReadDeadliner

	statusTimeout time.Duration
	pollInterval  time.Duration

	etb int // ETB counter seen at BeginCheckedBlock
}

func newStarPort(name string, t Transport) *starPort {
	p := &starPort{
		name:          name,
		t:             t,
		statusTimeout: defaultStatusTimeout,
		pollInterval:  defaultPollInterval,
	}
	if rd, ok := t.(ReadDeadliner); ok {
		p.rd = rd
	}
	return p
}

func (p *starPort) writeOnly() bool { return p.rd == nil }

func (p *starPort) BeginCheckedBlock() (Status, error) {
	if p.writeOnly() {
		return Status{Unavailable: true}, nil
	}
	st, err := p.RetrieveStatus()
	if err != nil {
		return st, err
	}
	p.etb = st.ETBCounter
	return st, nil
}

func (p *starPort) Write(b []byte) (int, error) {
	sent := 0
	for sent < len(b) {
		n, err := p.t.Write(b[sent:])
		sent += n
		if err != nil {
			return sent, err
		}
		if n == 0 {
			return sent, fmt.Errorf("%s: zero length write", p.name)
		}
	}
	return sent, nil
}

func (p *starPort) EndCheckedBlock(timeout time.Duration) (Status, error) {
	if p.writeOnly() {
		return Status{Unavailable: true}, nil
	}
	if _, err := p.Write([]byte{etb}); err != nil {
		return Status{}, err
	}

	deadline := time.Now().Add(timeout)
	for {
		st, err := p.readStatus(deadline)
		if err != nil {
			return st, err
		}
		// the counter stays put while the printer is stopped
		if st.ETBCounter != p.etb || st.Offline || st.CoverOpen || st.ReceiptPaperEmpty {
			return st, nil
		}
		if !time.Now().Before(deadline) {
			return st, fmt.Errorf("%s: ETB counter still %d after %v", p.name, st.ETBCounter, timeout)
		}
		time.Sleep(p.pollInterval)
	}
}

func (p *starPort) RetrieveStatus() (Status, error) {
	if p.writeOnly() {
		return Status{Unavailable: true}, ErrStatusUnavailable
	}
	return p.readStatus(time.Now().Add(p.statusTimeout))
}

// readStatus sends ESC ACK SOH and reads one ASB block before deadline.
func (p *starPort) readStatus(deadline time.Time) (Status, error) {
	if _, err := p.Write(statusRequest); err != nil {
		return Status{}, err
	}
	var acc []byte
	buf := make([]byte, 64)
	for {
		if err := p.rd.SetReadDeadline(deadline); err != nil {
			return Status{}, err
		}
		n, err := p.t.Read(buf)
		acc = append(acc, buf[:n]...)

		// drop anything in front of the header byte
		for len(acc) > 0 && acc[0]&0x91 != 0x01 {
			acc = acc[1:]
		}
		if len(acc) > 0 && len(acc) >= asbLength(acc[0]) {
			st, _, perr := ParseASB(acc)
			if perr == nil {
				return st, nil
			}
			acc = acc[1:]
		}

		if err != nil {
			return Status{}, fmt.Errorf("%s: reading status: %w", p.name, err)
		}
		if !time.Now().Before(deadline) {
			return Status{}, fmt.Errorf("%s: no status reply: %w", p.name, os.ErrDeadlineExceeded)
		}
	}
}

// FirmwareInformation sends ESC # * LF NUL and splits the reply,
// e.g. "TSP143 Ver1.3", into model and version.
func (p *starPort) FirmwareInformation() (Firmware, error) {
	if p.writeOnly() {
		return Firmware{}, ErrStatusUnavailable
	}
	if _, err := p.Write(firmwareRequest); err != nil {
		return Firmware{}, err
	}

	deadline := time.Now().Add(p.statusTimeout)
	var acc []byte
	buf := make([]byte, 64)
	for bytes.IndexByte(acc, nul) < 0 {
		if err := p.rd.SetReadDeadline(deadline); err != nil {
			return Firmware{}, err
		}
		n, err := p.t.Read(buf)
		acc = append(acc, buf[:n]...)
		if err != nil && bytes.IndexByte(acc, nul) < 0 {
			return Firmware{}, fmt.Errorf("%s: reading firmware: %w", p.name, err)
		}
		if !time.Now().Before(deadline) && bytes.IndexByte(acc, nul) < 0 {
			return Firmware{}, fmt.Errorf("%s: no firmware reply: %w", p.name, os.ErrDeadlineExceeded)
		}
	}
	return ParseFirmware(acc)
}

// ParseFirmware decodes the reply to ESC # * LF NUL. An echoed "ESC # * ,"
// prefix and the LF NUL tail are ignored.
func ParseFirmware(reply []byte) (Firmware, error) {
	if i := bytes.IndexByte(reply, nul); i >= 0 {
		reply = reply[:i]
	}
	reply = bytes.TrimPrefix(reply, []byte{esc, '#', '*', ','})
	reply = bytes.TrimPrefix(reply, []byte{esc, '#', '*'})
	s := strings.TrimSpace(string(reply))

	model, version, ok := strings.Cut(s, " Ver")
	if !ok || model == "" {
		return Firmware{}, fmt.Errorf("%w: firmware reply %q", ErrTransport, s)
	}
	return Firmware{ModelName: strings.TrimSpace(model), FirmwareVersion: strings.TrimSpace(version)}, nil
}

func (p *starPort) Close() error {
	err := p.t.Close()
	if err != nil && !errors.Is(err, os.ErrClosed) {
		logInternal.LogMessage(logInternal.WARN, fmt.Sprintf("%s: close: %v", p.name, err))
		return err
	}
	return nil
}
