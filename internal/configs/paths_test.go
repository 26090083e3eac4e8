package configs

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLocatorResolve(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	cwd := t.TempDir()

	tests := []struct {
		name     string
		locator  Locator
		expected string
	}{
		{
			name:     "ProjectDefaults",
			locator:  Locator{ProjectName: "my-app"},
			expected: filepath.Join(configDir, "my-app", "config.json"),
		},
		{
			name:     "ProjectSuffix",
			locator:  Locator{ProjectName: "my-app", ProjectSuffix: "go"},
			expected: filepath.Join(configDir, "my-app-go", "config.json"),
		},
		{
			name:     "ExplicitDirectoryWins",
			locator:  Locator{Cwd: cwd, ProjectName: "ignored"},
			expected: filepath.Join(cwd, "config.json"),
		},
		{
			name:     "CustomNameAndExtension",
			locator:  Locator{Cwd: cwd, ConfigName: "settings", FileExtension: ".yaml"},
			expected: filepath.Join(cwd, "settings.yaml"),
		},
		{
			name:     "NoExtension",
			locator:  Locator{Cwd: cwd, ConfigName: "settings", NoExtension: true},
			expected: filepath.Join(cwd, "settings"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.locator.Resolve()
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}

	t.Run("NothingToGoOn", func(t *testing.T) {
		_, err := Locator{}.Resolve()
		if !errors.Is(err, ErrNoLocation) {
			t.Errorf("Expected ErrNoLocation, got %v", err)
		}
	})
}
