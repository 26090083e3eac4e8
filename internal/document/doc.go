// Package document holds the in-memory model of a stored configuration:
// a map of string keys to JSON-compatible values.
//
// Values enter a Document only through Normalize, which rejects anything that
// cannot round-trip through JSON (functions, channels, complex numbers, NaN,
// maps with non-string keys) and canonicalizes numbers so that a value read
// back from disk compares equal to the value that was written.
//
// Keys passed to Get/Set/Delete are dot paths: "a.b.c" walks nested objects,
// and `\.` escapes a literal dot. The top-level key ReservedKey belongs to
// the migration engine; TouchesReserved lets the store reject writes to it.
package document
