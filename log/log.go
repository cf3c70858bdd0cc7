package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Уровни логирования, принимаемые LogMessage.
const (
	DEBUG = "DEBUG"
	INFO  = "INFO"
	WARN  = "WARN"
	ERROR = "ERROR"
)

var (
	mu      sync.RWMutex
	console io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	files   *bucketWriter
	logger  zerolog.Logger
)

func init() {
	logger = zerolog.Nop().Level(zerolog.InfoLevel)
	rebuild()
}

func rebuild() {
	var w io.Writer = console
	if files != nil {
		w = zerolog.MultiLevelWriter(console, files)
	}
	logger = zerolog.New(w).Level(logger.GetLevel()).With().Timestamp().Logger()
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLevel changes the minimum level ("debug", "info", "warn", "error").
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(lvl)
	return nil
}

// SetOutput replaces the console writer. Rotating files, if enabled, keep
// receiving a copy.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	console = w
	rebuild()
}

// EnableFiles mirrors every record into <dir>/<name>-<bucket>.log, where the
// bucket is picked from the day of month (1-9, 10-19, 20-31). Switching to a
// bucket truncates the one that will be reused next.
func EnableFiles(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("log dir: %w", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if files != nil {
		_ = files.Close()
	}
	files = &bucketWriter{dir: dir, name: name, now: time.Now}
	rebuild()
	return nil
}

// LogMessage writes message at the given level.
func LogMessage(level, message string) {
	l := Logger()
	switch level {
	case DEBUG:
		l.Debug().Msg(message)
	case WARN:
		l.Warn().Msg(message)
	case ERROR:
		l.Error().Err(errors.New(message)).Send()
	default:
		l.Info().Msg(message)
	}
}

// PrintIfErr logs *err with msg when it is not nil.
func PrintIfErr(msg string, err *error) {
	if err == nil || *err == nil {
		return
	}
	l := Logger()
	l.Error().Err(*err).Msg(msg)
}

// getLogFilePath определяет имя файла лога и возвращает суффикс для ротации.
func getLogFilePath(dir, typeLog string, now time.Time) (string, int) {
	var suffix int
	switch day := now.Day(); {
	case day <= 9:
		suffix = 0
	case day <= 19:
		suffix = 1
	default:
		suffix = 2
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%d.log", typeLog, suffix)), suffix
}

// rotateLogs removes the bucket that follows currentSuffix, so that it starts
// empty when the calendar gets there.
func rotateLogs(dir, typeLog string, currentSuffix int) error {
	next := filepath.Join(dir, fmt.Sprintf("%s-%d.log", typeLog, (currentSuffix+1)%3))
	if err := os.Remove(next); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type bucketWriter struct {
	dir, name string
	now       func() time.Time

	mu   sync.Mutex
	path string
	f    *os.File
}

func (b *bucketWriter) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path, suffix := getLogFilePath(b.dir, b.name, b.now())
	if path != b.path || b.f == nil {
		if b.f != nil {
			_ = b.f.Close()
			b.f = nil
		}
		if err := rotateLogs(b.dir, b.name, suffix); err != nil {
			return 0, err
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		b.f, b.path = f, path
	}
	return b.f.Write(p)
}

func (b *bucketWriter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	return err
}
