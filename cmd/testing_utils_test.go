package cmd

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// setupTestEnvironment isolates a test: fresh command state, a private user
// config directory for cli.toml, and plain output.
func setupTestEnvironment(t *testing.T) (storeDir, settingsPath string) {
	t.Helper()

	userDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", userDir)
	t.Setenv("HOME", userDir)
	t.Setenv("NO_COLOR", "1")

	ResetGlobalState()
	t.Cleanup(ResetGlobalState)

	return t.TempDir(), filepath.Join(userDir, "conf", "cli.toml")
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// createTestCLI builds a root command running `conf store <args>`.
func createTestCLI(args ...string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "conf",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.AddCommand(StoreCmd)
	rootCmd.SetArgs(append([]string{"store"}, args...))
	return rootCmd
}

// runStore executes `conf store <args>` and returns the captured output.
func runStore(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runStoreContext(context.Background(), t, args...)
}

func runStoreContext(ctx context.Context, t *testing.T, args ...string) (string, error) {
	t.Helper()
	output, err := captureOutput(func() error {
		return createTestCLI(args...).ExecuteContext(ctx)
	})
	// Flags keep their values between executions of the shared commands.
	ResetGlobalState()
	return output, err
}

// mustRunStore is runStore for commands expected to succeed.
func mustRunStore(t *testing.T, args ...string) string {
	t.Helper()
	output, err := runStore(t, args...)
	if err != nil {
		t.Fatalf("Command %v failed: %v\nOutput: %s", args, err, output)
	}
	return output
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
