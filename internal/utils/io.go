package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdin is where ReadStdin reads from. Tests replace it.
var Stdin io.Reader = os.Stdin

// ReadStdin returns a piped value with its final line ending removed.
// An interactive stdin is an error: values are never typed at a prompt.
func ReadStdin() (string, error) {
	if f, ok := Stdin.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return "", fmt.Errorf("failed to stat stdin: %w", err)
		}
		if stat.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no data provided on stdin (hint: pipe the value to this command)")
		}
	}

	data, err := io.ReadAll(Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}
