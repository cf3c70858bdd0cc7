package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"

	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

// StarVendorID is the USB vendor ID of Star Micronics.
const StarVendorID gousb.ID = 0x0519

// usbConn is a claimed printer interface with its bulk endpoints.
type usbConn struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	out  *gousb.OutEndpoint
	in   *gousb.InEndpoint

	mu       sync.Mutex
	deadline time.Time
}

// NewUSBTransport opens the first device matching vendorID:productID and
// claims interface 0 of configuration 1.
func NewUSBTransport(vendorID, productID gousb.ID) (Transport, error) {
	ctx := gousb.NewContext()
	dev, err := findUSBPrinter(ctx, vendorID, productID)
	if err != nil {
		ctx.Close()
		return nil, err
	}

	if err := dev.SetAutoDetach(true); err != nil {
		logInternal.LogMessage(logInternal.DEBUG, fmt.Sprintf("USB auto detach: %v", err))
	}
	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}

	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, err
	}

	conn := &usbConn{ctx: ctx, dev: dev, cfg: cfg, intf: intf}
	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch {
		case ep.Direction == gousb.EndpointDirectionOut && conn.out == nil:
			conn.out, err = intf.OutEndpoint(ep.Number)
		case ep.Direction == gousb.EndpointDirectionIn && conn.in == nil:
			conn.in, err = intf.InEndpoint(ep.Number)
		}
		if err != nil {
			conn.Close()
			return nil, err
		}
	}
	if conn.out == nil {
		conn.Close()
		return nil, fmt.Errorf("USB %s:%s: no bulk OUT endpoint", vendorID, productID)
	}

	// без IN endpoint статус не прочитать
	if conn.in == nil {
		return writeOnlyUSB{conn}, nil
	}
	return conn, nil
}

// findUSBPrinter opens vendorID:productID, or the first device of the
// vendor when productID is zero.
func findUSBPrinter(ctx *gousb.Context, vendorID, productID gousb.ID) (*gousb.Device, error) {
	if productID != 0 {
		dev, err := ctx.OpenDeviceWithVIDPID(vendorID, productID)
		if err != nil {
			return nil, err
		}
		if dev == nil {
			return nil, fmt.Errorf("USB device %s:%s not found", vendorID, productID)
		}
		return dev, nil
	}

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendorID
	})
	if len(devs) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no USB device of vendor %s found", vendorID)
	}
	for _, d := range devs[1:] {
		d.Close()
	}
	return devs[0], nil
}

func (u *usbConn) SetReadDeadline(t time.Time) error {
	u.mu.Lock()
	u.deadline = t
	u.mu.Unlock()
	return nil
}

func (u *usbConn) Read(p []byte) (int, error) {
	if u.in == nil {
		return 0, errors.New("USB read not supported")
	}
	u.mu.Lock()
	deadline := u.deadline
	u.mu.Unlock()

	ctx := context.Background()
	if !deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}
	n, err := u.in.ReadContext(ctx, p)
	if n > 0 && errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return n, err
}

func (u *usbConn) Write(p []byte) (int, error) {
	return u.out.Write(p)
}

func (u *usbConn) Close() error {
	if u.intf != nil {
		u.intf.Close()
	}
	if u.cfg != nil {
		u.cfg.Close()
	}
	if u.dev != nil {
		u.dev.Close()
	}
	if u.ctx != nil {
		u.ctx.Close()
	}
	return nil
}

// writeOnlyUSB hides SetReadDeadline for devices without an IN endpoint.
type writeOnlyUSB struct {
	c *usbConn
}

func (w writeOnlyUSB) Write(p []byte) (int, error) { return w.c.Write(p) }
func (w writeOnlyUSB) Read(p []byte) (int, error)  { return w.c.Read(p) }
func (w writeOnlyUSB) Close() error                { return w.c.Close() }

// USBDevice describes a Star printer found on the USB bus.
type USBDevice struct {
	ProductName  string
	SerialNumber string
	Vendor       gousb.ID
	Product      gousb.ID
	Bus          int
	Address      int
	Port         int
}

// PortName is the name the default opener accepts for the device.
func (d USBDevice) PortName() string {
	return fmt.Sprintf("USB:%s:%s", d.Vendor, d.Product)
}

// ListUSB returns every Star Micronics device on the USB bus.
func ListUSB() ([]USBDevice, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == StarVendorID
	})
	// OpenDevices reports the devices it could open even when others fail
	if err != nil && len(devs) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	var out []USBDevice
	for _, dev := range devs {
		product, _ := dev.Product()
		serial, _ := dev.SerialNumber()
		out = append(out, USBDevice{
			ProductName:  product,
			SerialNumber: serial,
			Vendor:       dev.Desc.Vendor,
			Product:      dev.Desc.Product,
			Bus:          dev.Desc.Bus,
			Address:      dev.Desc.Address,
			Port:         dev.Desc.Port,
		})
		dev.Close()
	}
	return out, nil
}
