package printer

import (
	"fmt"

	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

// PortInfo is one candidate port found by Discover.
type PortInfo struct {
	// Name is accepted by the default opener.
	Name        string
	Kind        PortKind
	Description string
}

// listers used by Discover
var (
	listSerial = ListSerial
	listUSB    = ListUSB
)

// Discover lists the serial ports of the system and the Star printers on the
// USB bus. A failing source is logged and skipped; the error is returned only
// when both fail.
func Discover() ([]PortInfo, error) {
	var out []PortInfo

	serialPorts, serr := listSerial()
	if serr != nil {
		logInternal.LogMessage(logInternal.WARN, fmt.Sprintf("serial discovery: %v", serr))
	}
	for _, name := range serialPorts {
		pn := "SERIAL:" + name
		if isCOMName(name) {
			pn = name
		}
		out = append(out, PortInfo{Name: pn, Kind: PortSerial, Description: name})
	}

	usbDevs, uerr := listUSB()
	if uerr != nil {
		logInternal.LogMessage(logInternal.WARN, fmt.Sprintf("USB discovery: %v", uerr))
	}
	for _, d := range usbDevs {
		desc := fmt.Sprintf("%s address:%d bus:%d port:%d", d.ProductName, d.Address, d.Bus, d.Port)
		if d.SerialNumber != "" {
			desc += " USB-ID:" + d.SerialNumber
		}
		out = append(out, PortInfo{Name: d.PortName(), Kind: PortUSB, Description: desc})
	}

	if serr != nil && uerr != nil {
		return nil, fmt.Errorf("discovery failed: %w; %w", serr, uerr)
	}
	return out, nil
}
