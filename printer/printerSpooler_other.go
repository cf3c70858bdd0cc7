//go:build !windows

package printer

import "fmt"

// NewSpoolerTransport: заглушка, спулер есть только в Windows.
func NewSpoolerTransport(printerName string) (Transport, error) {
	return nil, fmt.Errorf("%w: SPOOL:%s, the Windows spooler is only available on Windows", ErrUnsupportedPort, printerName)
}
