// Package configs resolves where a store lives and holds the CLI's own
// settings.
//
// # Store Location
//
// A Locator turns a project name (or an explicit directory) plus a config
// name and extension into the store file path:
//
//   - Explicit directory: <Cwd>/<ConfigName>.<FileExtension>
//   - Otherwise: <UserConfigDir>/<ProjectName>[-<ProjectSuffix>]/<ConfigName>.<FileExtension>
//
// UserConfigDir is os.UserConfigDir(): $XDG_CONFIG_HOME or ~/.config on
// Linux, ~/Library/Application Support on macOS, %AppData% on Windows.
//
// # CLI Settings
//
// The conf command reads defaults for its persistent flags from a TOML file
// at <UserConfigDir>/conf/cli.toml:
//
//	project = "my-app"
//	format = "yaml"
//	key_env = "MY_APP_CONFIG_KEY"
//	strict = true
//
// Flags given on the command line always win over the file.
package configs
