package printer

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

// Transport is the raw byte channel under a Port.
type Transport interface {
	Write([]byte) (int, error)
	Read([]byte) (int, error)
	Close() error
}

// ReadDeadliner is implemented by transports that can read replies from the
// printer. Transports without it are write-only: no status, no checked block.
type ReadDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// -------------------- RAW --------------------

// RawTransport is a plain TCP connection, usually to port 9100.
type RawTransport struct {
	conn net.Conn
}

func NewRawTransport(conn net.Conn) *RawTransport { return &RawTransport{conn: conn} }

func (r *RawTransport) Write(b []byte) (int, error)       { return r.conn.Write(b) }
func (r *RawTransport) Read(b []byte) (int, error)        { return r.conn.Read(b) }
func (r *RawTransport) SetReadDeadline(t time.Time) error { return r.conn.SetReadDeadline(t) }
func (r *RawTransport) Close() error                      { return r.conn.Close() }

// -------------------- LPD --------------------

// LPDTransport buffers the job and submits it as one RFC 1179 print job when
// closed.
type LPDTransport struct {
	conn   net.Conn
	queue  string
	jobBuf bytes.Buffer
	closed bool
	mu     sync.Mutex

	ackTimeout time.Duration
}

func NewLPDTransport(conn net.Conn, queue string) *LPDTransport {
	if queue == "" {
		queue = "lp"
	}
	return &LPDTransport{
		conn:       conn,
		queue:      queue,
		ackTimeout: 5 * time.Second,
	}
}

func (l *LPDTransport) Write(data []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, io.ErrClosedPipe
	}
	return l.jobBuf.Write(data)
}

// Read always fails: the LPD daemon only answers protocol acknowledgements.
func (l *LPDTransport) Read(b []byte) (int, error) {
	return 0, fmt.Errorf("LPD: %w", ErrStatusUnavailable)
}

func (l *LPDTransport) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	defer func() { l.closed = true }()

	logger := logInternal.Logger()
	logger.Debug().Int("len", l.jobBuf.Len()).Str("queue", l.queue).Msg("LPD close")

	if l.jobBuf.Len() == 0 {
		logger.Debug().Msg("jobBuf пуст, просто закрываем соединение")
		return l.conn.Close()
	}

	if err := l.flushJob(); err != nil {
		logger.Debug().Err(err).Msg("flushJob failed")
		_ = l.conn.Close()
		return err
	}
	return l.conn.Close()
}

func (l *LPDTransport) flushJob() error {
	host, _ := os.Hostname()
	if host == "" {
		host = "localhost"
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "GoLang"
	}

	jobID := int(time.Now().UnixNano() % 1000000)
	hostShort := host
	if i := strings.IndexByte(hostShort, '.'); i > 0 {
		hostShort = hostShort[:i]
	}
	jobName := fmt.Sprintf("starprnt-%d", jobID)
	cfName := fmt.Sprintf("cfA%03d%s", jobID%1000, hostShort)
	dfName := fmt.Sprintf("dfA%03d%s", jobID%1000, hostShort)

	// H - host, P - user, J - job name, N - original file name,
	// l - data file to print, control characters kept
	control := fmt.Sprintf(
		"H%s\nP%s\nJ%s\nN%s\nl%s\n",
		host, user, jobName, dfName, dfName,
	)

	logger := logInternal.Logger()

	logger.Debug().Msg("Stage 1: requestPrintJob")
	if err := l.requestPrintJob(); err != nil {
		return fmt.Errorf("LPD: stage 1 failed: %w", err)
	}

	logger.Debug().Msg("Stage 2: sendControlFile")
	if err := l.sendFile(0x02, cfName, []byte(control), "stage 2"); err != nil {
		return fmt.Errorf("LPD: stage 2 failed: %w", err)
	}

	// Этап 3: файл данных (точный размер из буфера)
	data := l.jobBuf.Bytes()
	logger.Debug().Int("len", len(data)).Msg("Stage 3: sendDataFile")
	if err := l.sendFile(0x03, dfName, data, "stage 3"); err != nil {
		return fmt.Errorf("LPD: stage 3 failed: %w", err)
	}

	logger.Debug().Str("job", jobName).Msg("LPD job accepted")
	l.jobBuf.Reset()
	return nil
}

// \x02 + <queue>\n
func (l *LPDTransport) requestPrintJob() error {
	if err := writeAll(l.conn, append([]byte{0x02}, l.queue+"\n"...)); err != nil {
		return err
	}
	return l.readAck("stage 1")
}

// <code> + "<size> <name>\n" + <content> + \x00
func (l *LPDTransport) sendFile(code byte, name string, content []byte, stage string) error {
	header := append([]byte{code}, strconv.Itoa(len(content))+" "+name+"\n"...)
	if err := writeAll(l.conn, header); err != nil {
		return err
	}
	if err := writeAll(l.conn, content); err != nil {
		return err
	}
	if err := writeAll(l.conn, []byte{0x00}); err != nil {
		return err
	}
	return l.readAck(stage)
}

func (l *LPDTransport) readAck(stage string) error {
	_ = l.conn.SetReadDeadline(time.Now().Add(l.ackTimeout))
	defer l.conn.SetReadDeadline(time.Time{})

	ack := make([]byte, 1)
	n, err := l.conn.Read(ack)
	if err != nil {
		return fmt.Errorf("reading ACK on %s: %w", stage, err)
	}
	if n != 1 || ack[0] != 0x00 {
		return fmt.Errorf("LPD request not acknowledged on %s (0x%02x)", stage, ack[0])
	}
	return nil
}

func writeAll(w io.Writer, b []byte) error {
	sent := 0
	for sent < len(b) {
		n, err := w.Write(b[sent:])
		if err != nil {
			return err
		}
		sent += n
	}
	return nil
}

// -------------------- FILE --------------------

// FileTransport writes the job to a file, for dry runs and for printers
// exposed as device files. It never reads.
type FileTransport struct {
	f *os.File
}

// NewFileTransport creates or truncates path.
func NewFileTransport(path string) (*FileTransport, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileTransport{f: f}, nil
}

func (t *FileTransport) Write(b []byte) (int, error) { return t.f.Write(b) }
func (t *FileTransport) Read([]byte) (int, error) {
	return 0, fmt.Errorf("FILE: %w", ErrStatusUnavailable)
}
func (t *FileTransport) Close() error { return t.f.Close() }
