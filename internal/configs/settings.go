package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// CLISettings are defaults for the conf command's persistent flags.
type CLISettings struct {
	Project   string `toml:"project,omitempty"`
	Cwd       string `toml:"cwd,omitempty"`
	Name      string `toml:"name,omitempty"`
	Extension string `toml:"extension,omitempty"`
	Format    string `toml:"format,omitempty"`
	KeyEnv    string `toml:"key_env,omitempty"`
	Strict    bool   `toml:"strict,omitempty"`
	AuditLog  string `toml:"audit_log,omitempty"`
}

// CLISettingsPath returns <UserConfigDir>/conf/cli.toml.
func CLISettingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting config directory: %w", err)
	}
	return filepath.Join(configDir, "conf", "cli.toml"), nil
}

// LoadCLISettings reads the settings file at path. A missing file yields
// empty settings.
func LoadCLISettings(path string) (*CLISettings, error) {
	settings := &CLISettings{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}

	if err := LoadTOML(path, settings); err != nil {
		return nil, fmt.Errorf("failed to load CLI settings: %w", err)
	}

	return settings, nil
}

// SaveCLISettings writes settings to path.
func SaveCLISettings(path string, settings *CLISettings) error {
	if err := SaveTOML(path, settings); err != nil {
		return fmt.Errorf("failed to save CLI settings: %w", err)
	}

	return nil
}
