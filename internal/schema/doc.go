// Package schema gates documents through a pluggable Validator.
//
// Two validators ship with the module: JSONSchema, built from a map of
// top-level property schemas plus an optional root schema, and CUE, built from
// CUE source. Both can report the defaults they declare so the store can seed
// a fresh document with them.
package schema
