// Package events delivers change notifications to subscribers.
//
// A subscription pairs a read function with a callback. The value is captured
// when subscribing; on every signal the notifier re-reads it, and the callback
// runs only when the new value differs (deep equality) from the captured one.
// The captured value is updated on every signal either way.
//
// Signals raised while a dispatch is running, including from inside a
// callback, are folded into one more dispatch pass instead of recursing.
package events
