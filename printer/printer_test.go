package printer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AlexStarov/starprnt-GoLang-lib/command"
)

type fakePort struct {
	begin    Status
	beginErr error
	writeErr error
	end      Status
	endErr   error
	status   Status
	statErr  error

	written    bytes.Buffer
	endTimeout time.Duration
	ended      bool
	closed     int
}

func (p *fakePort) BeginCheckedBlock() (Status, error) { return p.begin, p.beginErr }
func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(b)
}
func (p *fakePort) EndCheckedBlock(timeout time.Duration) (Status, error) {
	p.ended = true
	p.endTimeout = timeout
	return p.end, p.endErr
}
func (p *fakePort) RetrieveStatus() (Status, error) { return p.status, p.statErr }
func (p *fakePort) Close() error                    { p.closed++; return nil }

type fakeOpener struct {
	port *fakePort
	err  error

	name, settings string
	timeout        time.Duration
}

func (o *fakeOpener) Open(ctx context.Context, name, settings string, timeout time.Duration) (Port, error) {
	o.name, o.settings, o.timeout = name, settings, timeout
	if o.err != nil {
		return nil, o.err
	}
	return o.port, nil
}

func TestSendSuccess(t *testing.T) {
	port := &fakePort{}
	op := &fakeOpener{port: port}
	p := NewPrinterWithOpener("TCP:10.0.0.1", "", op)
	p.EndTimeout = 5 * time.Second

	buf := command.New([]byte{0x1b, 0x40}, []byte("hi"))
	if err := p.Send(context.Background(), buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(port.written.Bytes(), []byte{0x1b, 0x40, 'h', 'i'}) {
		t.Errorf("written % x", port.written.Bytes())
	}
	if port.closed != 1 {
		t.Errorf("closed %d times", port.closed)
	}
	if op.name != "TCP:10.0.0.1" || op.timeout != DefaultOpenTimeout || port.endTimeout != 5*time.Second {
		t.Errorf("opener saw %q %v, end timeout %v", op.name, op.timeout, port.endTimeout)
	}
}

func TestSendErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		opener   *fakeOpener
		want     error
		message  string
		closes   int
		wantEnd  bool
		wantData bool
	}{
		{
			name:   "open fails",
			opener: &fakeOpener{err: boom},
			want:   ErrConnection,
		},
		{
			name:   "unsupported port",
			opener: &fakeOpener{err: ErrUnsupportedPort},
			want:   ErrUnsupportedPort,
		},
		{
			name:   "begin fails",
			opener: &fakeOpener{port: &fakePort{beginErr: boom}},
			want:   ErrTransport,
			closes: 1,
		},
		{
			name:    "offline at begin",
			opener:  &fakeOpener{port: &fakePort{begin: Status{Offline: true}}},
			want:    ErrDeviceOffline,
			message: "A printer is offline",
			closes:  1,
		},
		{
			name:   "write fails",
			opener: &fakeOpener{port: &fakePort{writeErr: boom}},
			want:   ErrTransport,
			closes: 1,
		},
		{
			name:     "end times out",
			opener:   &fakeOpener{port: &fakePort{endErr: boom}},
			want:     ErrTransport,
			closes:   1,
			wantEnd:  true,
			wantData: true,
		},
		{
			name:     "cover open at end",
			opener:   &fakeOpener{port: &fakePort{end: Status{CoverOpen: true, Offline: true, ReceiptPaperEmpty: true}}},
			want:     ErrCoverOpen,
			message:  "Printer cover is open",
			closes:   1,
			wantEnd:  true,
			wantData: true,
		},
		{
			name:     "paper empty at end",
			opener:   &fakeOpener{port: &fakePort{end: Status{ReceiptPaperEmpty: true, Offline: true}}},
			want:     ErrPaperEmpty,
			message:  "Receipt paper is empty",
			closes:   1,
			wantEnd:  true,
			wantData: true,
		},
		{
			name:     "offline at end",
			opener:   &fakeOpener{port: &fakePort{end: Status{Offline: true}}},
			want:     ErrDeviceOffline,
			message:  "Printer is offline",
			closes:   1,
			wantEnd:  true,
			wantData: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrinterWithOpener("TCP:printer", "", tt.opener)
			err := p.Send(context.Background(), command.New([]byte("job")))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if tt.message != "" {
				var dse *DeviceStateError
				if !errors.As(err, &dse) {
					t.Fatalf("%v is not a DeviceStateError", err)
				}
				if dse.Message != tt.message {
					t.Errorf("message %q, want %q", dse.Message, tt.message)
				}
			}
			if port := tt.opener.port; port != nil {
				if port.closed != tt.closes {
					t.Errorf("closed %d times, want %d", port.closed, tt.closes)
				}
				if port.ended != tt.wantEnd {
					t.Errorf("end called = %v", port.ended)
				}
				if (port.written.Len() > 0) != tt.wantData {
					t.Errorf("data written = %v", port.written.Len() > 0)
				}
			}
		})
	}
}

func TestSendWriteOnlyPortSkipsChecks(t *testing.T) {
	port := &fakePort{begin: Status{Unavailable: true}, end: Status{Unavailable: true}}
	p := NewPrinterWithOpener("FILE:x", "", &fakeOpener{port: port})
	if err := p.Send(context.Background(), command.New([]byte("a"))); err != nil {
		t.Fatal(err)
	}
}

func TestSendNilBuffer(t *testing.T) {
	p := NewPrinterWithOpener("TCP:x", "", &fakeOpener{port: &fakePort{}})
	if err := p.Send(context.Background(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v", err)
	}
}

func TestSendCanceledContext(t *testing.T) {
	port := &fakePort{}
	p := NewPrinterWithOpener("TCP:x", "", &fakeOpener{port: port})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Send(ctx, command.New([]byte("a"))); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
	if port.closed != 1 || port.written.Len() != 0 {
		t.Fatalf("closed %d, written %d", port.closed, port.written.Len())
	}
}

func TestPrintBuildsFirst(t *testing.T) {
	op := &fakeOpener{port: &fakePort{}}
	p := NewPrinterWithOpener("TCP:x", "", op)
	if err := p.Print(context.Background(), Initialize{}, Cut{Type: 42}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v", err)
	}
	if op.name != "" {
		t.Fatal("port opened for an invalid job")
	}

	if err := p.Print(context.Background(), Initialize{}, CashDrawer{Drawer: 1}); err != nil {
		t.Fatal(err)
	}
	if got := op.port.written.Bytes(); !bytes.Equal(got, []byte{0x1b, 0x40, 0x07}) {
		t.Fatalf("written % x", got)
	}
}

func TestCheckStatus(t *testing.T) {
	port := &fakePort{status: Status{Offline: true, CoverOpen: true}}
	p := NewPrinterWithOpener("TCP:x", "", &fakeOpener{port: port})
	p.SensorActiveHigh = false

	msg, err := p.CheckStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Printer is offline\nCover is open\nCash Drawer: Open" {
		t.Errorf("got %q", msg)
	}
	if port.closed != 1 {
		t.Errorf("closed %d times", port.closed)
	}

	port.statErr = errors.New("timeout")
	if _, err := p.Status(context.Background()); !errors.Is(err, ErrTransport) {
		t.Errorf("got %v", err)
	}
	port.statErr = ErrStatusUnavailable
	if _, err := p.Status(context.Background()); !errors.Is(err, ErrStatusUnavailable) {
		t.Errorf("got %v", err)
	}
}

func TestFirmwareInformation(t *testing.T) {
	dev := &fakeDevice{firmware: []byte("FVP10 Ver2.1\n\x00")}
	op := openerFunc(func(context.Context, string, string, time.Duration) (Port, error) {
		return testPort(dev), nil
	})
	p := NewPrinterWithOpener("TCP:x", "", op)
	fw, err := p.FirmwareInformation(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fw.ModelName != "FVP10" || fw.FirmwareVersion != "2.1" {
		t.Fatalf("got %+v", fw)
	}
	if dev.closed != 1 {
		t.Fatalf("closed %d times", dev.closed)
	}

	// a Port without firmware support
	p = NewPrinterWithOpener("TCP:x", "", &fakeOpener{port: &fakePort{}})
	if _, err := p.FirmwareInformation(context.Background()); !errors.Is(err, ErrStatusUnavailable) {
		t.Fatalf("got %v", err)
	}
}

type openerFunc func(ctx context.Context, name, settings string, timeout time.Duration) (Port, error)

func (f openerFunc) Open(ctx context.Context, name, settings string, timeout time.Duration) (Port, error) {
	return f(ctx, name, settings, timeout)
}

func TestSendThroughStarPort(t *testing.T) {
	dev := &fakeDevice{statuses: [][]byte{
		asb(false, false, false, 0),
		asb(false, false, false, 1),
	}}
	op := openerFunc(func(context.Context, string, string, time.Duration) (Port, error) {
		return testPort(dev), nil
	})
	p := NewPrinterWithOpener("TCP:x", "", op)
	if err := p.Print(context.Background(), Initialize{}, Text{Data: "ok"}, Cut{}); err != nil {
		t.Fatal(err)
	}
	out := dev.written.Bytes()
	if !bytes.HasPrefix(out, []byte{0x1b, 0x40}) || !bytes.HasSuffix(out, []byte{0x1b, 'd', '0', 0x17}) {
		t.Fatalf("written % x", out)
	}
	if !strings.Contains(string(out), "ok\n") {
		t.Fatalf("text missing in % x", out)
	}
}
