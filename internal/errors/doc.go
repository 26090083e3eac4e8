// Package errors provides typed error values for the conf store.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. Structured
// errors defined elsewhere (schema violations, migration failures) match
// these sentinels too, so a single errors.Is check is enough at the edges.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Input errors: bad values or keys at the mutation boundary (ErrInputType, ErrReservedKey)
//   - Decode errors: malformed or non-object file contents (ErrDecode)
//   - Schema errors: validator rejected the document (ErrSchemaViolation)
//   - Migration errors: a migration failed and was rolled back (ErrMigration, ErrInvalidVersion)
//   - File errors: directory, permission and device failures (ErrIO)
//
// # Usage
//
// Return errors from internal packages:
//
//	if key == "" {
//	    return fmt.Errorf("%w: key must not be empty", errors.ErrInputType)
//	}
//
// Handle errors in the CLI layer:
//
//	err := store.Set(key, value)
//	if errors.Is(err, kerrors.ErrReservedKey) {
//	    // Show user-friendly message
//	}
package errors
