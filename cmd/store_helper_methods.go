package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PolarWolf314/conf/internal/configs"
	"github.com/PolarWolf314/conf/internal/document"
	"github.com/PolarWolf314/conf/internal/ui"
	"github.com/PolarWolf314/conf/internal/utils"
	"github.com/PolarWolf314/conf/pkg/conf"
	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message.
// Returns the spinner and a cleanup function that should be deferred.
// The cleanup prints spinner.FinalMSG with a trailing newline.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug && utils.IsTerminal()
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// storeOptions turns the persistent flags, falling back to the CLI settings,
// into store options.
func storeOptions() ([]conf.Option, error) {
	opts := []conf.Option{conf.WithLogger(Logger)}

	path := firstNonEmpty(storePath)
	cwd := firstNonEmpty(storeCwd, Settings.Cwd)
	project := firstNonEmpty(storeProject, Settings.Project)
	switch {
	case path != "":
		opts = append(opts, conf.WithPath(path))
	case cwd != "":
		opts = append(opts, conf.WithCwd(cwd))
	case project != "":
		opts = append(opts, conf.WithProjectName(project))
	default:
		return nil, configs.ErrNoLocation
	}

	if name := firstNonEmpty(storeName, Settings.Name); name != "" {
		opts = append(opts, conf.WithConfigName(name))
	}
	if ext := firstNonEmpty(storeExt, Settings.Extension); ext != "" {
		opts = append(opts, conf.WithFileExtension(ext))
	}
	if format := firstNonEmpty(storeFormat, Settings.Format); format != "" {
		opts = append(opts, conf.WithFormat(format))
	}
	if storeStrict || Settings.Strict {
		opts = append(opts, conf.WithClearInvalidConfig(false))
	}
	if audit := auditLogPath(); audit != "" {
		opts = append(opts, conf.WithAuditLog(audit))
	}

	key, err := passphrase()
	if err != nil {
		return nil, err
	}
	if key != "" {
		opts = append(opts, conf.WithEncryptionKey(key))
	}

	return opts, nil
}

// openStore opens the store selected by the persistent flags.
func openStore(extra ...conf.Option) (*conf.Store, error) {
	opts, err := storeOptions()
	if err != nil {
		return nil, err
	}
	s, err := conf.New(append(opts, extra...)...)
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Opened store at %s", s.Path())
	return s, nil
}

func passphrase() (string, error) {
	if storePromptKey {
		return utils.ReadPassphrase("Encryption passphrase: ")
	}
	if env := firstNonEmpty(storeKeyEnv, Settings.KeyEnv); env != "" {
		key, ok := os.LookupEnv(env)
		if !ok {
			return "", fmt.Errorf("environment variable %s is not set", env)
		}
		return key, nil
	}
	return "", nil
}

func auditLogPath() string {
	return firstNonEmpty(storeAuditLog, Settings.AuditLog)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseValue reads a command-line value as JSON, falling back to the raw
// string. "-" reads the value from stdin.
func parseValue(raw string) (any, error) {
	if raw == "-" {
		data, err := utils.ReadStdin()
		if err != nil {
			return nil, err
		}
		raw = data
	}
	if v, err := document.DecodeJSON([]byte(raw)); err == nil {
		return v, nil
	}
	return raw, nil
}

// formatValue renders a value as compact JSON. Strings are printed bare
// when raw is set.
func formatValue(v any, raw bool) (string, error) {
	if s, ok := v.(string); ok && raw {
		return s, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to render value: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// flatten lists every leaf of doc as a dot path. Dots inside keys are
// escaped so the paths can be passed back to get and set.
func flatten(doc conf.Document) []leaf {
	var out []leaf
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		m, ok := v.(map[string]any)
		if !ok || len(m) == 0 {
			out = append(out, leaf{Key: prefix, Value: v})
			return
		}
		for _, k := range document.Keys(m) {
			walk(joinKey(prefix, k), m[k])
		}
	}
	for _, k := range document.Keys(doc) {
		walk(joinKey("", k), doc[k])
	}
	return out
}

type leaf struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func joinKey(prefix, key string) string {
	key = strings.ReplaceAll(key, ".", `\.`)
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// FormatError formats an error returned by a store command for display.
func FormatError(err error) string {
	var verr *conf.SchemaViolationError
	var merr *conf.MigrationError

	switch {
	case errors.Is(err, configs.ErrNoLocation):
		return ui.Failed("No store selected") + "\n" +
			ui.Hint("Pass %s, %s or %s, or set a default in %s",
				ui.Code.Sprint("--path"), ui.Code.Sprint("--cwd"), ui.Code.Sprint("--project"), ui.Path.Sprint("cli.toml"))

	case errors.Is(err, errNoAuditLog):
		return ui.Failed("No audit log configured") + "\n" +
			ui.Hint("Pass %s, or set audit_log in %s", ui.Code.Sprint("--audit-log"), ui.Path.Sprint("cli.toml"))

	case errors.As(err, &verr):
		var b strings.Builder
		b.WriteString(ui.Failed("The value does not match the store's schema:"))
		for _, v := range verr.Violations {
			b.WriteString("\n    - " + ui.Key.Sprint(v.Path) + " " + v.Message)
		}
		return b.String()

	case errors.As(err, &merr):
		return ui.Failed("Migration %s failed: %v", ui.Key.Sprint(merr.Version), merr.Err) + "\n" +
			ui.Hint("Changes from earlier migrations were kept")

	case errors.Is(err, conf.ErrReservedKey):
		return ui.Failed("%v", err) + "\n" +
			ui.Hint("Keys under %s belong to the migration engine", ui.Key.Sprint(document.ReservedKey))

	case errors.Is(err, conf.ErrDecode):
		return ui.Failed("The store file could not be read: %v", err) + "\n" +
			ui.Hint("Check the encryption passphrase, or drop %s to start over", ui.Code.Sprint("--strict"))

	default:
		return ui.Failed("%v", err)
	}
}
