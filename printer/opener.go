package printer

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/gousb"

	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

// PortKind is the transport a port name selects.
type PortKind int

const (
	PortTCP PortKind = iota
	PortLPD
	PortSerial
	PortUSB
	PortSpool
	PortFile
)

func (k PortKind) String() string {
	switch k {
	case PortTCP:
		return "TCP"
	case PortLPD:
		return "LPD"
	case PortSerial:
		return "SERIAL"
	case PortUSB:
		return "USB"
	case PortSpool:
		return "SPOOL"
	case PortFile:
		return "FILE"
	}
	return "PortKind(" + strconv.Itoa(int(k)) + ")"
}

// Default TCP ports.
const (
	RawPort = 9100
	LPDPort = 515
)

// PortAddress is a parsed port name.
type PortAddress struct {
	Kind PortKind
	// host:port for TCP and LPD, device for SERIAL, printer name for SPOOL,
	// path for FILE
	Target string
	Queue  string // LPD only

	VendorID  gousb.ID // USB only
	ProductID gousb.ID // USB only; zero matches any product of the vendor
}

// ParsePortName understands
//
//	TCP:host[:port]           raw socket, port 9100 by default
//	LPD:host[:port][/queue]   RFC 1179, port 515, queue "lp"
//	SERIAL:device, COMn       serial port
//	USB:[vid[:pid]]           hex IDs, Star vendor 0519 by default
//	SPOOL:name                Windows spooler queue
//	FILE:path                 write the job to a file
//
// Prefixes are case insensitive.
func ParsePortName(name string) (PortAddress, error) {
	prefix, rest, ok := strings.Cut(name, ":")
	if !ok {
		if isCOMName(name) {
			return PortAddress{Kind: PortSerial, Target: strings.ToUpper(name)}, nil
		}
		return PortAddress{}, fmt.Errorf("%w: %q", ErrUnsupportedPort, name)
	}

	switch strings.ToUpper(prefix) {
	case "TCP":
		if rest == "" {
			return PortAddress{}, fmt.Errorf("%w: %q has no host", ErrUnsupportedPort, name)
		}
		return PortAddress{Kind: PortTCP, Target: withDefaultPort(rest, RawPort)}, nil

	case "LPD":
		host, queue, _ := strings.Cut(rest, "/")
		if host == "" {
			return PortAddress{}, fmt.Errorf("%w: %q has no host", ErrUnsupportedPort, name)
		}
		if queue == "" {
			queue = "lp"
		}
		return PortAddress{Kind: PortLPD, Target: withDefaultPort(host, LPDPort), Queue: queue}, nil

	case "SERIAL", "BT":
		if rest == "" {
			return PortAddress{}, fmt.Errorf("%w: %q has no device", ErrUnsupportedPort, name)
		}
		return PortAddress{Kind: PortSerial, Target: rest}, nil

	case "USB":
		return parseUSB(name, rest)

	case "SPOOL":
		if rest == "" {
			return PortAddress{}, fmt.Errorf("%w: %q has no printer name", ErrUnsupportedPort, name)
		}
		return PortAddress{Kind: PortSpool, Target: rest}, nil

	case "FILE":
		if rest == "" {
			return PortAddress{}, fmt.Errorf("%w: %q has no path", ErrUnsupportedPort, name)
		}
		return PortAddress{Kind: PortFile, Target: rest}, nil
	}

	// "COM3:" as written by some Windows tools
	if rest == "" && isCOMName(prefix) {
		return PortAddress{Kind: PortSerial, Target: strings.ToUpper(prefix)}, nil
	}
	return PortAddress{}, fmt.Errorf("%w: %q", ErrUnsupportedPort, name)
}

func isCOMName(s string) bool {
	if len(s) < 4 || !strings.EqualFold(s[:3], "COM") {
		return false
	}
	n, err := strconv.Atoi(s[3:])
	return err == nil && n > 0
}

func withDefaultPort(hostport string, port int) string {
	if _, _, err := net.SplitHostPort(hostport); err == nil {
		return hostport
	}
	return net.JoinHostPort(strings.Trim(hostport, "[]"), strconv.Itoa(port))
}

func parseUSB(name, rest string) (PortAddress, error) {
	addr := PortAddress{Kind: PortUSB, VendorID: StarVendorID}
	if rest == "" {
		return addr, nil
	}
	vid, pid, hasPID := strings.Cut(rest, ":")
	v, err := strconv.ParseUint(vid, 16, 16)
	if err != nil {
		return PortAddress{}, fmt.Errorf("%w: %q: vendor id: %w", ErrUnsupportedPort, name, err)
	}
	addr.VendorID = gousb.ID(v)
	if hasPID {
		p, err := strconv.ParseUint(pid, 16, 16)
		if err != nil {
			return PortAddress{}, fmt.Errorf("%w: %q: product id: %w", ErrUnsupportedPort, name, err)
		}
		addr.ProductID = gousb.ID(p)
	}
	return addr, nil
}

// DefaultOpener opens every port kind ParsePortName knows. Its fields
// replace the real transports, e.g. in tests; nil fields use the defaults.
type DefaultOpener struct {
	Dial        func(ctx context.Context, network, address string) (net.Conn, error)
	OpenSerial  func(device string, baudRate int) (Transport, error)
	OpenUSB     func(vendorID, productID gousb.ID) (Transport, error)
	OpenSpooler func(printerName string) (Transport, error)
	OpenFile    func(path string) (Transport, error)
}

func (o *DefaultOpener) Open(ctx context.Context, name, settings string, timeout time.Duration) (Port, error) {
	addr, err := ParsePortName(name)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger := logInternal.Logger()
	logger.Debug().Str("port", name).Stringer("kind", addr.Kind).Str("target", addr.Target).Msg("opening port")

	t, err := o.transport(ctx, addr, settings)
	if err != nil {
		return nil, err
	}
	p := newStarPort(name, t)
	if timeout > 0 {
		p.statusTimeout = timeout
	}
	return p, nil
}

func (o *DefaultOpener) transport(ctx context.Context, addr PortAddress, settings string) (Transport, error) {
	switch addr.Kind {
	case PortTCP, PortLPD:
		dial := o.Dial
		if dial == nil {
			dial = (&net.Dialer{}).DialContext
		}
		conn, err := dial(ctx, "tcp", addr.Target)
		if err != nil {
			return nil, err
		}
		if addr.Kind == PortLPD {
			return NewLPDTransport(conn, addr.Queue), nil
		}
		return NewRawTransport(conn), nil

	case PortSerial:
		baud, err := ParseSerialSettings(settings)
		if err != nil {
			return nil, err
		}
		open := o.OpenSerial
		if open == nil {
			open = NewSerialTransport
		}
		return open(addr.Target, baud)

	case PortUSB:
		open := o.OpenUSB
		if open == nil {
			open = NewUSBTransport
		}
		return open(addr.VendorID, addr.ProductID)

	case PortSpool:
		open := o.OpenSpooler
		if open == nil {
			open = NewSpoolerTransport
		}
		return open(addr.Target)

	case PortFile:
		if o.OpenFile != nil {
			return o.OpenFile(addr.Target)
		}
		return NewFileTransport(addr.Target)
	}
	return nil, fmt.Errorf("%w: kind %v", ErrUnsupportedPort, addr.Kind)
}
