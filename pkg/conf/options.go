package conf

import (
	"os"
	"time"

	"github.com/PolarWolf314/conf/internal/codec"
	"github.com/PolarWolf314/conf/internal/configs"
	logger "github.com/PolarWolf314/conf/internal/logging"
	"github.com/PolarWolf314/conf/internal/migrate"
	"github.com/PolarWolf314/conf/internal/schema"
	"github.com/PolarWolf314/conf/internal/watch"
)

// Document is the root object of a stored configuration.
type Document = map[string]any

// Serializer converts between a Document and file bytes.
type Serializer = codec.Serializer

// Validator checks a whole document; Violation is one reason it failed.
type (
	Validator     = schema.Validator
	ValidatorFunc = schema.ValidatorFunc
	Violation     = schema.Violation
)

// Logger is the leveled logger the store reports through.
type Logger = logger.Logger

// MigrationContext is passed to the before-each-migration hook.
type MigrationContext = migrate.Context

// Migrations maps version descriptors to migration functions. A migration
// uses the ordinary accessors of the store it receives.
type Migrations map[string]func(s *Store) error

// WatchMode selects how external edits are detected.
type WatchMode = watch.Mode

// Watch modes.
const (
	WatchAuto   = watch.ModeAuto
	WatchNotify = watch.ModeNotify
	WatchPoll   = watch.ModePoll
)

// DefaultFileMode is the permission used when the store creates its file.
const DefaultFileMode os.FileMode = 0o666

// Option configures New.
type Option func(*options)

type options struct {
	path    string
	locator configs.Locator

	defaults    Document
	properties  map[string]any
	rootSchema  map[string]any
	cueSource   string
	validator   Validator
	serializer  Serializer
	format      string
	key         string
	fileMode    os.FileMode
	clearBad    bool
	dotNotation bool

	migrations     Migrations
	projectVersion string
	beforeEach     func(s *Store, ctx MigrationContext) error

	watch        bool
	watchMode    WatchMode
	pollInterval time.Duration
	debounce     time.Duration
	coalesce     time.Duration

	logger    Logger
	hasLogger bool
	auditPath string
}

func applyOptions(opts []Option) options {
	cfg := options{
		fileMode:    DefaultFileMode,
		clearBad:    true,
		dotNotation: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithPath stores the document at an explicit file path. It overrides every
// location option.
func WithPath(path string) Option {
	return func(cfg *options) {
		cfg.path = path
	}
}

// WithCwd stores the document in dir instead of the per-user config directory.
func WithCwd(dir string) Option {
	return func(cfg *options) {
		cfg.locator.Cwd = dir
	}
}

// WithProjectName names the per-user config directory.
func WithProjectName(name string) Option {
	return func(cfg *options) {
		cfg.locator.ProjectName = name
	}
}

// WithProjectSuffix is appended to the project directory name with a dash.
func WithProjectSuffix(suffix string) Option {
	return func(cfg *options) {
		cfg.locator.ProjectSuffix = suffix
	}
}

// WithConfigName sets the file name without extension. Defaults to "config".
func WithConfigName(name string) Option {
	return func(cfg *options) {
		cfg.locator.ConfigName = name
	}
}

// WithFileExtension sets the file extension. Defaults to "json"; an empty
// extension writes a file without one.
func WithFileExtension(ext string) Option {
	return func(cfg *options) {
		cfg.locator.FileExtension = ext
		cfg.locator.NoExtension = ext == ""
	}
}

// WithDefaults seeds missing top-level keys. Clear and Reset restore them.
func WithDefaults(defaults map[string]any) Option {
	return func(cfg *options) {
		cfg.defaults = defaults
	}
}

// WithSchema validates the document against JSON Schema property
// declarations, one per top-level key. Declared defaults seed the document.
func WithSchema(properties map[string]any) Option {
	return func(cfg *options) {
		cfg.properties = properties
	}
}

// WithRootSchema adds root-level JSON Schema keywords (required,
// additionalProperties...). The root type is always object.
func WithRootSchema(root map[string]any) Option {
	return func(cfg *options) {
		cfg.rootSchema = root
	}
}

// WithCUESchema validates the document against CUE source. Marked defaults
// seed the document.
func WithCUESchema(src string) Option {
	return func(cfg *options) {
		cfg.cueSource = src
	}
}

// WithValidator plugs in a custom validator. It takes precedence over
// WithSchema and WithCUESchema.
func WithValidator(v Validator) Option {
	return func(cfg *options) {
		cfg.validator = v
	}
}

// WithSerializer plugs in a custom file format.
func WithSerializer(s Serializer) Option {
	return func(cfg *options) {
		cfg.serializer = s
	}
}

// WithFormat selects a built-in format: "json", "yaml" or "toml". The file
// extension follows unless set explicitly.
func WithFormat(name string) Option {
	return func(cfg *options) {
		cfg.format = name
	}
}

// WithEncryptionKey encrypts the file with AES-256-CBC under a key derived
// from passphrase. This hides the contents from casual inspection; it is not
// a substitute for a secrets manager.
func WithEncryptionKey(passphrase string) Option {
	return func(cfg *options) {
		cfg.key = passphrase
	}
}

// WithFileMode sets the permission of a newly created file.
func WithFileMode(mode os.FileMode) Option {
	return func(cfg *options) {
		cfg.fileMode = mode
	}
}

// WithClearInvalidConfig controls what happens when the file cannot be
// decoded or fails validation: start over from an empty document (true, the
// default) or return the error.
func WithClearInvalidConfig(clear bool) Option {
	return func(cfg *options) {
		cfg.clearBad = clear
	}
}

// WithDotNotation controls whether "a.b" addresses a nested key (true, the
// default) or a top-level key containing a dot.
func WithDotNotation(enabled bool) Option {
	return func(cfg *options) {
		cfg.dotNotation = enabled
	}
}

// WithMigrations registers migrations to run towards projectVersion, which
// must be an exact semantic version.
func WithMigrations(migrations Migrations, projectVersion string) Option {
	return func(cfg *options) {
		cfg.migrations = migrations
		cfg.projectVersion = projectVersion
	}
}

// WithBeforeEachMigration runs fn before every selected migration. An error
// aborts the run like a failing migration.
func WithBeforeEachMigration(fn func(s *Store, ctx MigrationContext) error) Option {
	return func(cfg *options) {
		cfg.beforeEach = fn
	}
}

// WithWatch reloads the document and notifies subscribers when another
// process changes the file.
func WithWatch(enabled bool) Option {
	return func(cfg *options) {
		cfg.watch = enabled
	}
}

// WithWatchMode picks file events, polling, or events with polling fallback
// (the default).
func WithWatchMode(mode WatchMode) Option {
	return func(cfg *options) {
		cfg.watchMode = mode
	}
}

// WithPollInterval sets how often the polling watcher samples the file.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *options) {
		cfg.pollInterval = d
	}
}

// WithWatchDebounce sets how long the watcher waits for a burst of changes
// to settle.
func WithWatchDebounce(d time.Duration) Option {
	return func(cfg *options) {
		cfg.debounce = d
	}
}

// WithWriteCoalescing limits disk writes to one per window. The first write
// goes straight to disk; writes inside the window update memory and are
// flushed when it ends.
func WithWriteCoalescing(window time.Duration) Option {
	return func(cfg *options) {
		cfg.coalesce = window
	}
}

// WithLogger replaces the default logger, which prints only warnings and
// errors.
func WithLogger(l Logger) Option {
	return func(cfg *options) {
		cfg.logger = l
		cfg.hasLogger = true
	}
}

// WithAuditLog records migrations, clears and resets to a JSON Lines file.
func WithAuditLog(path string) Option {
	return func(cfg *options) {
		cfg.auditPath = path
	}
}
