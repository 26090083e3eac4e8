package errors

import "errors"

// Input errors indicate a value or key was rejected at the mutation boundary.
var (
	// ErrInputType indicates a value that cannot be stored as JSON or a bad key.
	ErrInputType = errors.New("invalid input type")

	// ErrReservedKey indicates a write that touches the internal namespace.
	ErrReservedKey = errors.New("key is reserved for internal use")

	// ErrNotArray indicates an append to a key holding a non-array value.
	ErrNotArray = errors.New("value is not an array")

	// ErrNotObject indicates a merge into a key holding a non-object value.
	ErrNotObject = errors.New("value is not an object")

	// ErrConflict indicates a value kept changing while a mutation was computed.
	ErrConflict = errors.New("value changed concurrently")
)

// Decode errors indicate the stored bytes could not be turned into a document.
var (
	// ErrDecode indicates malformed serialized bytes or a non-object root.
	ErrDecode = errors.New("failed to decode config")
)

// Schema errors indicate the validator rejected a document.
var (
	// ErrSchemaViolation indicates one or more schema violations.
	ErrSchemaViolation = errors.New("config schema violation")

	// ErrInvalidSchema indicates the schema declaration itself could not be compiled.
	ErrInvalidSchema = errors.New("invalid schema declaration")
)

// Migration errors indicate a failed or impossible migration run.
var (
	// ErrMigration indicates a migration failed; the store was rolled back.
	ErrMigration = errors.New("migration failed")

	// ErrInvalidVersion indicates a malformed version or range descriptor.
	ErrInvalidVersion = errors.New("invalid version")
)

// File errors indicate failures reading or writing the backing file.
var (
	// ErrIO indicates a directory, permission or device failure.
	ErrIO = errors.New("config file i/o failed")

	// ErrClosed indicates an operation on a closed store.
	ErrClosed = errors.New("store is closed")
)
