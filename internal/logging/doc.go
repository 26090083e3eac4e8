// Package logger provides leveled logging for the conf store and CLI.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags or store options. Output is prefixed and colored with fatih/color.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two fields:
//
//   - Verbose: shows info messages
//   - Debug: shows debug details as well
//
// Warnings and errors are always shown.
//
// # Log Methods
//
//	Logger.Infof()          // Shown with Verbose
//	Logger.Debugf()         // Shown only with Debug
//	Logger.Warnf()          // Always shown
//	Logger.Errorf()         // Always shown
//	Logger.ErrorfAndReturn() // Errorf, then returns the message as an error
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Loaded %d keys", count)
//
// Commands create a logger in their PersistentPreRun; the store receives one
// through conf.WithLogger. Output goes to Out/Err when set, otherwise to
// stdout/stderr.
package logger
