package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PolarWolf314/conf/internal/audit"
	"github.com/PolarWolf314/conf/internal/codec"
	"github.com/PolarWolf314/conf/internal/document"
	kerrors "github.com/PolarWolf314/conf/internal/errors"
	"github.com/PolarWolf314/conf/internal/events"
	logger "github.com/PolarWolf314/conf/internal/logging"
	"github.com/PolarWolf314/conf/internal/schema"
	"github.com/PolarWolf314/conf/internal/watch"
)

// Store is a configuration document persisted in one file.
type Store struct {
	path       string
	opts       options
	serializer Serializer
	gate       *schema.Gate
	defaults   Document
	log        Logger
	journal    audit.Journal

	// mu guards the cache and the coalesced-flush state.
	mu      sync.Mutex
	cache   Document
	pending bool
	timer   *time.Timer

	// opMu serializes read-modify-write operations. It is never held while
	// subscriber callbacks or migrations run.
	opMu sync.Mutex

	inMigration atomic.Bool
	batchDepth  atomic.Int32
	batchDirty  atomic.Bool
	closed      atomic.Bool

	notifier events.Notifier
	watcher  watch.Watcher
}

// New opens the store, creating nothing on disk until there is something to
// write. Defaults are applied, migrations run, and the result is validated
// before New returns.
func New(opts ...Option) (*Store, error) {
	cfg := applyOptions(opts)

	s := &Store{
		opts:    cfg,
		log:     cfg.logger,
		journal: audit.Journal{Path: cfg.auditPath},
	}
	if !cfg.hasLogger {
		s.log = logger.Logger{Out: os.Stdout, Err: os.Stderr}
	}
	s.notifier.OnError = func(err error) {
		s.log.Warnf("Failed to read value for change subscriber: %v", err)
	}

	if err := s.configure(); err != nil {
		return nil, err
	}
	if err := s.bootstrap(); err != nil {
		s.stopTimer()
		return nil, err
	}

	if cfg.watch {
		w, err := watch.Watch(s.path, watch.Options{
			Mode:         cfg.watchMode,
			PollInterval: cfg.pollInterval,
			Debounce:     cfg.debounce,
			Logger:       s.log,
		}, s.onExternalChange)
		if err != nil {
			s.stopTimer()
			return nil, fmt.Errorf("failed to watch %s: %w", s.path, err)
		}
		s.watcher = w
	}

	return s, nil
}

func (s *Store) configure() error {
	cfg := &s.opts

	s.serializer = cfg.serializer
	if s.serializer == nil {
		ser, err := codec.ByName(cfg.format)
		if err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrInputType, err)
		}
		s.serializer = ser
		if cfg.format != "" && cfg.locator.FileExtension == "" && !cfg.locator.NoExtension {
			cfg.locator.FileExtension = cfg.format
		}
	}

	s.path = cfg.path
	if s.path == "" {
		p, err := cfg.locator.Resolve()
		if err != nil {
			return err
		}
		s.path = p
	}

	validator := cfg.validator
	switch {
	case validator != nil:
	case cfg.properties != nil || cfg.rootSchema != nil:
		v, err := schema.NewJSONSchema(cfg.properties, cfg.rootSchema)
		if err != nil {
			return err
		}
		validator = v
	case cfg.cueSource != "":
		v, err := schema.NewCUE(cfg.cueSource)
		if err != nil {
			return err
		}
		validator = v
	}
	s.gate = schema.NewGate(validator)

	defaults, err := document.NormalizeDocument(cfg.defaults)
	if err != nil {
		return fmt.Errorf("invalid defaults: %w", err)
	}
	if validator != nil {
		if defaults, err = schema.CaptureDefaults(validator, defaults); err != nil {
			return err
		}
	}
	s.defaults = defaults

	if len(cfg.migrations) > 0 && cfg.projectVersion == "" {
		return fmt.Errorf("%w: migrations need a project version", kerrors.ErrInvalidVersion)
	}
	return nil
}

// bootstrap overlays the file on the defaults, migrates, then validates once.
func (s *Store) bootstrap() error {
	s.inMigration.Store(true)
	defer s.inMigration.Store(false)

	stored, err := s.read()
	if err != nil {
		return err
	}
	merged := document.Clone(s.defaults)
	for k, v := range stored {
		merged[k] = v
	}
	if !document.Equal(stored, merged) {
		if err := s.write(merged); err != nil {
			return err
		}
	}

	if len(s.opts.migrations) > 0 {
		if err := s.runMigrations(); err != nil {
			return err
		}
	}

	s.inMigration.Store(false)
	doc, err := s.read()
	if err != nil {
		return err
	}
	err = s.gate.Validate(doc)
	if err == nil || !s.opts.clearBad || !errors.Is(err, kerrors.ErrSchemaViolation) {
		return err
	}

	s.log.Warnf("Ignoring invalid config file %s: %v", s.path, err)
	fresh := document.Clone(s.defaults)
	if reserved, ok := doc[document.ReservedKey]; ok {
		fresh[document.ReservedKey] = reserved
	}
	if err := s.gate.Validate(fresh); err != nil {
		return err
	}
	s.mu.Lock()
	s.cache = fresh
	s.mu.Unlock()
	return nil
}

// Path returns the absolute path of the backing file.
func (s *Store) Path() string {
	return s.path
}

// read returns a private copy of the current document.
func (s *Store) read() (Document, error) {
	s.mu.Lock()
	if s.cache != nil {
		doc := document.Clone(s.cache)
		s.mu.Unlock()
		return doc, nil
	}
	s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		s.cache = doc
	}
	return document.Clone(s.cache), nil
}

// load reads and decodes the file, bypassing the cache.
func (s *Store) load() (Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.ensureDir(); err != nil {
			return nil, err
		}
		return Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", kerrors.ErrIO, s.path, err)
	}

	if s.opts.key != "" {
		data = codec.Decrypt(data, s.opts.key)
	}

	doc, err := s.serializer.Unmarshal(data)
	if err == nil {
		doc, err = document.NormalizeDocument(doc)
	}
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", kerrors.ErrDecode, s.path, err)
	} else if !s.inMigration.Load() {
		err = s.gate.Validate(doc)
	}
	if err != nil {
		if !s.opts.clearBad {
			return nil, err
		}
		s.log.Warnf("Ignoring unusable config file %s: %v", s.path, err)
		return Document{}, nil
	}
	return doc, nil
}

// write validates doc, makes it the current document and persists it, or
// marks it pending while a coalescing window is open. write owns doc.
func (s *Store) write(doc Document) error {
	if !s.inMigration.Load() {
		if err := s.gate.Validate(doc); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = doc
	if s.opts.coalesce > 0 && s.timer != nil {
		s.pending = true
		return nil
	}

	err := s.flushLocked()
	if s.opts.coalesce > 0 {
		s.timer = time.AfterFunc(s.opts.coalesce, s.onCoalesceTimer)
	}
	return err
}

func (s *Store) flushLocked() error {
	s.pending = false

	data, err := s.serializer.Marshal(s.cache)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if s.opts.key != "" {
		if data, err = codec.Encrypt(data, s.opts.key); err != nil {
			return err
		}
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := commit(s.path, data, s.opts.fileMode); err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	s.log.Debugf("Wrote %s", s.path)
	return nil
}

func (s *Store) onCoalesceTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending || s.closed.Load() {
		s.timer = nil
		return
	}
	if err := s.flushLocked(); err != nil {
		s.log.Errorf("Failed to write coalesced changes to %s: %v", s.path, err)
	}
	s.timer = time.AfterFunc(s.opts.coalesce, s.onCoalesceTimer)
}

func (s *Store) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: failed to create config directory: %w", kerrors.ErrIO, err)
	}
	return nil
}

// Flush writes changes held back by write coalescing.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return nil
	}
	return s.flushLocked()
}

// ClearCache drops the in-memory document so the next access reads the
// file. Pending coalesced changes are written first.
func (s *Store) ClearCache() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		if err := s.flushLocked(); err != nil {
			return err
		}
	}
	s.cache = nil
	return nil
}

func (s *Store) onExternalChange() {
	if s.closed.Load() {
		return
	}
	s.mu.Lock()
	if !s.pending {
		s.cache = nil
	}
	s.mu.Unlock()
	s.log.Debugf("Detected change to %s", s.path)
	s.emit()
}

// Close stops watching, writes pending changes and drops subscribers.
// Further operations return ErrClosed.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
	}
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.pending {
		errs = append(errs, s.flushLocked())
	}
	s.mu.Unlock()
	s.notifier.Reset()
	return errors.Join(errs...)
}

func (s *Store) checkOpen() error {
	if s.closed.Load() {
		return kerrors.ErrClosed
	}
	return nil
}
