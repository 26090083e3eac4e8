package configs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndLoadTOML(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "cli.toml")

	originalData := CLISettings{
		Project: "my-app",
		Format:  "yaml",
		KeyEnv:  "MY_APP_KEY",
		Strict:  true,
	}

	err := SaveTOML(testFile, originalData)
	if err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loadedData := CLISettings{}
	err = LoadTOML(testFile, &loadedData)
	if err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if loadedData != originalData {
		t.Errorf("Expected %+v, got %+v", originalData, loadedData)
	}
}

func TestLoadTOMLNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "nonexistent.toml")

	data := CLISettings{}
	err := LoadTOML(testFile, &data)
	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
}

func TestSaveTOMLCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "subdir", "cli.toml")

	err := SaveTOML(testFile, CLISettings{Name: "settings"})
	if err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	if _, err := os.Stat(testFile); os.IsNotExist(err) {
		t.Fatal("File was not created")
	}
}

func TestLoadTOMLUnknownKeys(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "cli.toml")
	if err := os.WriteFile(testFile, []byte("project = \"app\"\nporject = \"typo\"\n"), 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	var data CLISettings
	err := LoadTOML(testFile, &data)
	if err == nil {
		t.Fatal("Expected error for unknown key, got nil")
	}
	if !strings.Contains(err.Error(), "porject") {
		t.Errorf("Expected the unknown key in the error, got: %v", err)
	}
}

func TestSaveTOMLPermissions(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "cli.toml")
	if err := SaveTOML(testFile, CLISettings{KeyEnv: "APP_KEY"}); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}
}
