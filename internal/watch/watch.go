package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	logger "github.com/PolarWolf314/conf/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// Mode selects how changes are detected.
type Mode int

const (
	// ModeAuto uses fsnotify and falls back to polling.
	ModeAuto Mode = iota
	// ModeNotify uses fsnotify only.
	ModeNotify
	// ModePoll samples size and modification time on an interval.
	ModePoll
)

// Defaults for Options.
const (
	DefaultNotifyDebounce = 100 * time.Millisecond
	DefaultPollInterval   = time.Second
	DefaultPollDebounce   = time.Second
)

// Options configures Watch. Zero durations take the defaults.
type Options struct {
	Mode         Mode
	PollInterval time.Duration
	Debounce     time.Duration
	Logger       logger.Logger
}

// Watcher is a running file watcher.
type Watcher interface {
	Close() error
}

// Watch starts watching path and calls onChange, debounced, after it is
// created, modified, replaced or removed.
func Watch(path string, opts Options, onChange func()) (Watcher, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if opts.Mode != ModePoll {
		w, err := newNotifyWatcher(path, opts, onChange)
		if err == nil {
			return w, nil
		}
		if opts.Mode == ModeNotify {
			return nil, err
		}
		opts.Logger.Warnf("File events unavailable for %s, polling instead: %v", path, err)
	}
	return newPollWatcher(path, opts, onChange), nil
}

type notifyWatcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newNotifyWatcher(path string, opts Options, onChange func()) (*notifyWatcher, error) {
	wait := opts.Debounce
	if wait <= 0 {
		wait = DefaultNotifyDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &notifyWatcher{
		fs:        fsw,
		debouncer: NewDebouncer(wait, onChange),
		done:      make(chan struct{}),
	}
	base := filepath.Base(path)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.done:
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				opts.Logger.Debugf("File event %s on %s", ev.Op, ev.Name)
				w.debouncer.Trigger()
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				opts.Logger.Warnf("File watcher error: %v", err)
			}
		}
	}()

	return w, nil
}

func (w *notifyWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.debouncer.Stop()
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}

// fileState is what the poll watcher compares between samples.
type fileState struct {
	exists  bool
	size    int64
	modTime time.Time
}

func (s fileState) same(o fileState) bool {
	return s.exists == o.exists && s.size == o.size && s.modTime.Equal(o.modTime)
}

func stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fileState{}, nil
	}
	if err != nil {
		return fileState{}, err
	}
	return fileState{exists: true, size: info.Size(), modTime: info.ModTime()}, nil
}

type pollWatcher struct {
	debouncer *Debouncer
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newPollWatcher(path string, opts Options, onChange func()) *pollWatcher {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	wait := opts.Debounce
	if wait <= 0 {
		wait = DefaultPollDebounce
	}

	w := &pollWatcher{
		debouncer: NewDebouncer(wait, onChange),
		done:      make(chan struct{}),
	}
	last, err := stat(path)
	if err != nil {
		opts.Logger.Warnf("Failed to stat %s: %v", path, err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.done:
				return
			case <-ticker.C:
				current, err := stat(path)
				if err != nil {
					opts.Logger.Debugf("Failed to stat %s: %v", path, err)
					continue
				}
				if current.same(last) {
					continue
				}
				last = current
				w.debouncer.Trigger()
			}
		}
	}()

	return w
}

func (w *pollWatcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.debouncer.Stop()
		w.wg.Wait()
	})
	return nil
}
