package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Defaults used by Locator.
const (
	DefaultConfigName    = "config"
	DefaultFileExtension = "json"
)

// ErrNoLocation is returned when neither a directory nor a project name is set.
var ErrNoLocation = errors.New("either a directory or a project name is required to locate the store")

// Locator describes where a store file lives.
type Locator struct {
	// Cwd overrides the per-user config directory when set.
	Cwd           string
	ProjectName   string
	ProjectSuffix string
	// ConfigName is the file name without extension; defaults to "config".
	ConfigName string
	// FileExtension defaults to "json". Set NoExtension to drop it.
	FileExtension string
	NoExtension   bool
}

// Resolve returns the absolute path of the store file.
func (l Locator) Resolve() (string, error) {
	dir, err := l.dir()
	if err != nil {
		return "", err
	}

	name := l.ConfigName
	if name == "" {
		name = DefaultConfigName
	}
	if !l.NoExtension {
		ext := strings.TrimPrefix(l.FileExtension, ".")
		if ext == "" {
			ext = DefaultFileExtension
		}
		name += "." + ext
	}

	return filepath.Abs(filepath.Join(dir, name))
}

func (l Locator) dir() (string, error) {
	if l.Cwd != "" {
		return l.Cwd, nil
	}
	if l.ProjectName == "" {
		return "", ErrNoLocation
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting config directory: %w", err)
	}

	project := l.ProjectName
	if l.ProjectSuffix != "" {
		project += "-" + l.ProjectSuffix
	}
	return filepath.Join(base, project), nil
}
