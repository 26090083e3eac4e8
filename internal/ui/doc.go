// Package ui provides semantic text formatting for CLI output.
//
// Formatters colorize content when the terminal supports it. When NO_COLOR
// is set or the terminal has no color support, text decorations are used
// instead so keys and values stay distinguishable.
//
//	ui.Code.Sprint("conf store set theme dark")  // Commands
//	ui.Path.Sprint("~/.config/app/config.json")  // File paths
//	ui.Key.Sprint("server.port")                 // Store keys
//	ui.Value.Sprint(`"dark"`)                    // Stored values
//	ui.Muted.Sprint("default")                   // Secondary text
//
// Status lines pair a marker with a message:
//
//	ui.Done("Set %s", key)      // ✓ Set ...
//	ui.Failed("%v", err)        // ✗ ...
//	ui.Hint("Run %s", command)  // → Run ...
//
// Without color, Code is wrapped in `backticks`, Key in 'single quotes' and
// Muted in (parentheses).
package ui
