package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCLISettingsPath(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	path, err := CLISettingsPath()
	if err != nil {
		t.Fatalf("CLISettingsPath failed: %v", err)
	}

	expected := filepath.Join(configDir, "conf", "cli.toml")
	if path != expected {
		t.Errorf("Expected %s, got %s", expected, path)
	}
}

func TestLoadCLISettings(t *testing.T) {
	t.Run("MissingFileIsEmpty", func(t *testing.T) {
		settings, err := LoadCLISettings(filepath.Join(t.TempDir(), "cli.toml"))
		if err != nil {
			t.Fatalf("LoadCLISettings failed: %v", err)
		}
		if *settings != (CLISettings{}) {
			t.Errorf("Expected empty settings, got %+v", settings)
		}
	})

	t.Run("ReadsKeys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cli.toml")
		content := "project = \"my-app\"\nformat = \"toml\"\naudit_log = \"/tmp/audit.jsonl\"\nstrict = true\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("Failed to write settings: %v", err)
		}

		settings, err := LoadCLISettings(path)
		if err != nil {
			t.Fatalf("LoadCLISettings failed: %v", err)
		}
		if settings.Project != "my-app" || settings.Format != "toml" || !settings.Strict {
			t.Errorf("Unexpected settings %+v", settings)
		}
		if settings.AuditLog != "/tmp/audit.jsonl" {
			t.Errorf("Expected audit log path, got %q", settings.AuditLog)
		}
	})

	t.Run("MalformedFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cli.toml")
		if err := os.WriteFile(path, []byte("project = "), 0600); err != nil {
			t.Fatalf("Failed to write settings: %v", err)
		}
		if _, err := LoadCLISettings(path); err == nil {
			t.Fatal("Expected error for malformed settings, got nil")
		}
	})

	t.Run("SaveRoundTrip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "cli.toml")
		want := &CLISettings{Project: "app", Extension: "yaml", KeyEnv: "APP_KEY"}
		if err := SaveCLISettings(path, want); err != nil {
			t.Fatalf("SaveCLISettings failed: %v", err)
		}
		got, err := LoadCLISettings(path)
		if err != nil {
			t.Fatalf("LoadCLISettings failed: %v", err)
		}
		if *got != *want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})
}
