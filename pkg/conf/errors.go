package conf

import (
	kerrors "github.com/PolarWolf314/conf/internal/errors"
	"github.com/PolarWolf314/conf/internal/migrate"
	"github.com/PolarWolf314/conf/internal/schema"
)

// Sentinel errors. Match them with errors.Is.
var (
	ErrInputType       = kerrors.ErrInputType
	ErrReservedKey     = kerrors.ErrReservedKey
	ErrNotArray        = kerrors.ErrNotArray
	ErrNotObject       = kerrors.ErrNotObject
	ErrConflict        = kerrors.ErrConflict
	ErrDecode          = kerrors.ErrDecode
	ErrSchemaViolation = kerrors.ErrSchemaViolation
	ErrInvalidSchema   = kerrors.ErrInvalidSchema
	ErrMigration       = kerrors.ErrMigration
	ErrInvalidVersion  = kerrors.ErrInvalidVersion
	ErrIO              = kerrors.ErrIO
	ErrClosed          = kerrors.ErrClosed
)

// SchemaViolationError lists every violation found in one validation pass.
type SchemaViolationError = schema.ViolationError

// MigrationError reports the migration that failed and why.
type MigrationError = migrate.MigrationError
