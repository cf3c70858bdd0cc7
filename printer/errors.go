package printer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for command parameters out of range.
	ErrInvalidInput = errors.New("invalid command parameter")
	// ErrConnection is returned when the port cannot be opened.
	ErrConnection = errors.New("cannot connect to printer")
	// ErrDeviceOffline is returned when the printer reports itself offline.
	ErrDeviceOffline = errors.New("printer is offline")
	// ErrTransport is returned when writing to or reading from the port fails,
	// including a printer that does not answer within the timeout.
	ErrTransport = errors.New("printer transport failure")
	// ErrCoverOpen is returned when the cover was open at the end of a job.
	ErrCoverOpen = errors.New("printer cover is open")
	// ErrPaperEmpty is returned when the receipt paper ran out during a job.
	ErrPaperEmpty = errors.New("receipt paper is empty")
	// ErrUnsupportedPort is returned for port names no opener understands.
	ErrUnsupportedPort = errors.New("unsupported port name")
	// ErrStatusUnavailable is returned by a status query on a write-only port.
	ErrStatusUnavailable = errors.New("port cannot report printer status")
)

// DeviceStateError is returned when the printer status stops a job. It
// matches its sentinel (ErrDeviceOffline, ErrCoverOpen or ErrPaperEmpty) with
// errors.Is and carries the status read from the device.
type DeviceStateError struct {
	Err     error
	Message string
	Status  Status
}

func (e *DeviceStateError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Status.Summary())
}

func (e *DeviceStateError) Unwrap() error { return e.Err }

func deviceStateError(err error, msg string, st Status) *DeviceStateError {
	return &DeviceStateError{Err: err, Message: msg, Status: st}
}
