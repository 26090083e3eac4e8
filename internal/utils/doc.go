// Package utils provides helpers shared by the conf commands.
//
// # I/O Utilities
//
// Functions for reading from stdin:
//   - ReadStdin: reads a piped value
//
// # Terminal Utilities
//
// Functions for terminal detection and interaction:
//   - ReadPassphrase: prompts for a passphrase without echo
//   - IsTerminal: checks whether stdin is a terminal
//
// # String Utilities
//
// Functions for formatting lists for human-readable output:
//   - FormatList: renders one bulleted item per line
package utils
