// Package migrate runs versioned document migrations.
//
// A migration is keyed by a version descriptor: either an exact semantic
// version ("1.2.0", "v2.0.0") or a range expression ("<2.0.0", ">=1.0 <1.5").
// Given the version recorded in the document and the target version of the
// running program, the engine selects which migrations apply, runs them in
// ascending version order, and records progress after each one. A failing
// migration (or before-hook) restores the snapshot taken after the last
// successful one, so earlier migrations are preserved.
//
// The engine never touches files itself. It works through a Target, which
// the store implements on top of its own accessors.
package migrate
