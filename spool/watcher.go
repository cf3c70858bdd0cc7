// Package spool prints files dropped into a hot folder.
package spool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

// Sub folders of Dir that receive processed files.
const (
	DoneDir   = "done"
	FailedDir = "failed"
)

// DefaultDebounce is how long a file must stay quiet before it is handled.
const DefaultDebounce = 250 * time.Millisecond

// Handler prints one file. A nil error moves the file to done/, any other
// to failed/.
type Handler func(ctx context.Context, path string) error

// Watcher hands every file that appears in Dir to Handler, one at a time.
type Watcher struct {
	Dir     string
	Handler Handler
	// Debounce, DefaultDebounce when zero. Writers that keep a file open
	// longer than this should write to a hidden name and rename it.
	Debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher returns a Watcher for dir.
func NewWatcher(dir string, h Handler) *Watcher {
	return &Watcher{Dir: dir, Handler: h}
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

func (w *Watcher) prepare() error {
	if w.Handler == nil {
		return errors.New("spool: nil handler")
	}
	for _, sub := range []string{DoneDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.Dir, sub), 0o755); err != nil {
			return fmt.Errorf("spool: %w", err)
		}
	}
	return nil
}

// ignored reports hidden files, editor leftovers and partial downloads.
func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".tmp") || strings.HasSuffix(name, ".part")
}

// Scan handles the files already in Dir, oldest name first, and returns how
// many it handled.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	if err := w.prepare(); err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return 0, fmt.Errorf("spool: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && !ignored(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	n := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if w.process(ctx, filepath.Join(w.Dir, name)) {
			n++
		}
	}
	return n, nil
}

// Run watches Dir, handles the files already present, then keeps handling
// new ones until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.prepare(); err != nil {
		return err
	}

	// watch first: a file dropped during the scan still raises an event
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("spool: create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(w.Dir); err != nil {
		return fmt.Errorf("spool: watch %s: %w", w.Dir, err)
	}

	if _, err := w.Scan(ctx); err != nil {
		return err
	}

	logger := logInternal.Logger()
	logger.Info().Str("dir", w.Dir).Msg("Watching spool folder")

	ready := make(chan string)
	done := make(chan struct{})
	defer close(done)
	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Dir(event.Name) != filepath.Clean(w.Dir) || ignored(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedule(event.Name, ready, done)

		case path := <-ready:
			w.process(ctx, path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Spool watcher error")
		}
	}
}

// schedule (re)starts the quiet period of path. Timers that fire after Run
// returned give up once done is closed.
func (w *Watcher) schedule(path string, ready chan<- string, done <-chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		w.pending = make(map[string]*time.Timer)
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce(), func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case ready <- path:
		case <-done:
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for p, t := range w.pending {
		t.Stop()
		delete(w.pending, p)
	}
}

// process runs the handler on path and files it away. It reports whether
// the handler ran.
func (w *Watcher) process(ctx context.Context, path string) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		// already moved, or a directory
		return false
	}

	logger := logInternal.Logger()
	start := time.Now()
	herr := w.Handler(ctx, path)

	sub := DoneDir
	if herr != nil {
		sub = FailedDir
		logger.Error().Err(herr).Str("file", path).Msg("Spool job failed")
	} else {
		logger.Info().Str("file", path).Dur("took", time.Since(start)).Msg("Spool job printed")
	}
	if err := moveInto(path, filepath.Join(w.Dir, sub)); err != nil {
		logger.Error().Err(err).Str("file", path).Msg("Couldn't move spool file")
	}
	return true
}

// moveInto renames path into dir, adding a time stamp when the name is taken.
func moveInto(path, dir string) error {
	base := filepath.Base(path)
	target := filepath.Join(dir, base)
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(base)
		stamp := time.Now().Format("20060102-150405.000000000")
		target = filepath.Join(dir, strings.TrimSuffix(base, ext)+"-"+stamp+ext)
	}
	return os.Rename(path, target)
}
