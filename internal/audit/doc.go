// Package audit provides a journal of store lifecycle events.
//
// Migrations (applied or failed), clears and resets are recorded in a JSON
// Lines file chosen by the caller, usually next to the store file. This
// gives operators a history of what changed a config document and when.
//
// # Log Format
//
// One JSON object per line. Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Operation name (migrate, migrate-failed, clear, reset)
//   - The store file the operation touched
//   - Operation-specific details (versions, keys, error text)
//
// # Usage
//
//	j := audit.Journal{Path: "/home/me/.config/app/audit.jsonl"}
//	j.Log(audit.Entry{Operation: audit.OpClear, Store: storePath})
//
// # Failure Handling
//
// Journaling is best-effort. If writing fails (permissions, disk full,
// etc.), the operation continues without error. A store operation never
// fails just because the journal could not be written.
//
// # Reading Logs
//
// Use ReadEntries to parse the journal for display. Malformed entries are
// silently skipped to handle partial writes.
package audit
