package printer

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"

	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

// DefaultBaudRate is used when the port settings do not name one.
const DefaultBaudRate = 9600

// serialConn wraps a serial port; read deadlines become read timeouts.
type serialConn struct {
	port serial.Port
}

// NewSerialTransport opens a serial port (COMn, /dev/ttyUSB0, /dev/cu.usbmodem*)
// at 8N1.
func NewSerialTransport(portName string, baudRate int) (Transport, error) {
	// Получаем список доступных портов
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	logInternal.LogMessage(logInternal.DEBUG, fmt.Sprintf("Доступные порты: %v", ports))

	if !slices.Contains(ports, portName) {
		return nil, fmt.Errorf("serial port %s not found", portName)
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	logInternal.LogMessage(logInternal.DEBUG, fmt.Sprintf("Порт %s открыт, %d бод", portName, baudRate))
	return &serialConn{port: p}, nil
}

func (s *serialConn) Write(b []byte) (int, error) { return s.port.Write(b) }
func (s *serialConn) Read(b []byte) (int, error)  { return s.port.Read(b) }
func (s *serialConn) Close() error                { return s.port.Close() }

// SetReadDeadline maps the deadline onto the port read timeout; a zero time
// blocks forever. A past deadline still allows one short read.
func (s *serialConn) SetReadDeadline(t time.Time) error {
	if t.IsZero() {
		return s.port.SetReadTimeout(serial.NoTimeout)
	}
	d := time.Until(t)
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return s.port.SetReadTimeout(d)
}

// ParseSerialSettings reads the baud rate from port settings such as
// "9600" or "19200,N,8,1". Empty settings give DefaultBaudRate.
func ParseSerialSettings(settings string) (int, error) {
	s := strings.TrimSpace(settings)
	if s == "" {
		return DefaultBaudRate, nil
	}
	if i := strings.IndexAny(s, ",;"); i >= 0 {
		s = s[:i]
	}
	baud, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || baud <= 0 {
		return 0, fmt.Errorf("%w: baud rate %q", ErrUnsupportedPort, settings)
	}
	return baud, nil
}

// ListSerial returns the serial port names of the system.
func ListSerial() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	slices.Sort(ports)
	return ports, nil
}
