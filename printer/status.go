package printer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadStatus is returned by ParseASB for bytes that are not an ASB block.
var ErrBadStatus = errors.New("malformed automatic status")

// ESC ACK SOH asks the printer for its automatic status block.
var statusRequest = []byte{0x1b, 0x06, 0x01}

const minASBLength = 7

// Status is the printer state decoded from a Star automatic status (ASB)
// block.
type Status struct {
	Offline          bool
	CoverOpen        bool
	CompulsionSwitch bool // drawer sensor signal, see Description

	ReceiptPaperEmpty          bool
	ReceiptPaperNearEmptyInner bool
	ReceiptPaperNearEmptyOuter bool

	CutterError        bool
	MechanicalError    bool
	UnrecoverableError bool

	// ETBCounter counts ETB commands processed, modulo 32.
	ETBCounter int

	// Unavailable is set for ports that cannot read anything back (LPD,
	// spooler, file). All other fields are then zero.
	Unavailable bool

	Raw []byte
}

// asbLength decodes the block length (header included) from the first byte.
func asbLength(h byte) int {
	return int((h&0x20)>>2 | (h&0x0e)>>1)
}

// ParseASB decodes an automatic status block. It returns the status and the
// number of bytes the block took.
func ParseASB(b []byte) (Status, int, error) {
	if len(b) == 0 {
		return Status{}, 0, fmt.Errorf("%w: empty", ErrBadStatus)
	}
	h := b[0]
	if h&0x91 != 0x01 {
		return Status{}, 0, fmt.Errorf("%w: header 0x%02x", ErrBadStatus, h)
	}
	n := asbLength(h)
	if n < minASBLength {
		return Status{}, 0, fmt.Errorf("%w: length %d", ErrBadStatus, n)
	}
	if len(b) < n {
		return Status{}, 0, fmt.Errorf("%w: have %d of %d bytes", ErrBadStatus, len(b), n)
	}

	st := Status{
		CoverOpen:        b[2]&0x20 != 0,
		Offline:          b[2]&0x08 != 0,
		CompulsionSwitch: b[2]&0x04 != 0,

		UnrecoverableError: b[3]&0x20 != 0,
		CutterError:        b[3]&0x08 != 0,
		MechanicalError:    b[3]&0x04 != 0,

		ReceiptPaperEmpty:          b[5]&0x08 != 0,
		ReceiptPaperNearEmptyInner: b[5]&0x04 != 0,
		ReceiptPaperNearEmptyOuter: b[5]&0x02 != 0,

		ETBCounter: int(b[6]>>1) & 0x1f,

		Raw: append([]byte(nil), b[:n]...),
	}
	return st, n, nil
}

// DrawerOpen interprets the compulsion switch. Drawers differ in whether the
// sensor is high when open; sensorActiveHigh says which kind is attached.
func (s Status) DrawerOpen(sensorActiveHigh bool) bool {
	return s.CompulsionSwitch == sensorActiveHigh
}

// Description is the operator message for the status, one fact per line,
// e.g. "Printer is online\nCash Drawer: Close".
func (s Status) Description(sensorActiveHigh bool) string {
	if s.Unavailable {
		return "Printer status is not available on this port"
	}

	var lines []string
	if !s.Offline {
		lines = append(lines, "Printer is online")
	} else {
		lines = append(lines, "Printer is offline")
		if s.ReceiptPaperEmpty {
			lines = append(lines, "Paper is empty")
		}
		if s.CoverOpen {
			lines = append(lines, "Cover is open")
		}
	}
	if s.DrawerOpen(sensorActiveHigh) {
		lines = append(lines, "Cash Drawer: Open")
	} else {
		lines = append(lines, "Cash Drawer: Close")
	}
	return strings.Join(lines, "\n")
}

// Summary is a compact one line form for logs and errors.
func (s Status) Summary() string {
	if s.Unavailable {
		return "status unavailable"
	}
	var flags []string
	add := func(on bool, name string) {
		if on {
			flags = append(flags, name)
		}
	}
	add(s.Offline, "offline")
	add(s.CoverOpen, "cover-open")
	add(s.ReceiptPaperEmpty, "paper-empty")
	add(s.ReceiptPaperNearEmptyInner || s.ReceiptPaperNearEmptyOuter, "paper-near-empty")
	add(s.CutterError, "cutter-error")
	add(s.MechanicalError, "mechanical-error")
	add(s.UnrecoverableError, "unrecoverable-error")
	if len(flags) == 0 {
		flags = append(flags, "online")
	}
	return fmt.Sprintf("%s etb=%d", strings.Join(flags, ","), s.ETBCounter)
}
