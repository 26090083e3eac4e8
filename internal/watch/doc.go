// Package watch detects modifications of a single file made outside the
// process.
//
// The default watcher uses fsnotify on the file's parent directory and
// filters events by base name, so atomic replace-by-rename is seen. When
// fsnotify is unavailable, or when polling is requested, the file's size and
// modification time are sampled on an interval instead. Either way, bursts of
// events pass through a Debouncer and reach the callback once.
package watch
