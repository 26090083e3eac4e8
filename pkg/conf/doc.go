// Package conf is a persistent key/value configuration store backed by a
// single file.
//
// A Store keeps one JSON (or YAML, TOML, or custom-format) document on disk,
// optionally encrypted, and exposes dot-notation accessors over it:
//
//	store, err := conf.New(
//	    conf.WithProjectName("my-app"),
//	    conf.WithDefaults(map[string]any{"theme": "light"}),
//	)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := store.Set("window.width", 1200); err != nil {
//	    return err
//	}
//	width, err := store.Get("window.width")
//
// Writes replace the file atomically (temp file, then rename), so readers
// never see a half-written document. Values are normalized to the JSON value
// set when written: integral numbers read back as int64, other numbers as
// float64, objects as map[string]any and arrays as []any.
//
// # Migrations
//
// WithMigrations registers functions keyed by version descriptors ("1.0.0",
// "<2.0.0"). They run once, in ascending version order, while New builds the
// store; the last migrated version is kept under the reserved __internal__
// key, which callers cannot write. A failing migration rolls the document
// back to the state after the last successful one.
//
// # Change Notification
//
// OnDidChange and OnDidAnyChange call back with the new and old value after
// every write that changed what they watch, including edits made to the file
// by other processes when WithWatch is enabled.
//
// # Concurrency
//
// A Store is safe for concurrent use within a process. Nothing coordinates
// writers in different processes: the last atomic replace wins.
package conf
