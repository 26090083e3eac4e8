package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/PolarWolf314/conf/internal/audit"
	"github.com/PolarWolf314/conf/internal/ui"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logSince     string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logSince = ""
	logJSON = false
}

var errNoAuditLog = errors.New("no audit log configured")

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the audit log of migrations, clears and resets.

The log is only written when --audit-log (or audit_log in the CLI settings)
is set.

Examples:
  conf store log --audit-log audit.jsonl
  conf store log -n 10 --reverse
  conf store log --operation migrate,migrate-failed
  conf store log --since 2024-01-01 --json`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	path := auditLogPath()
	if path == "" {
		return errNoAuditLog
	}

	entries, err := audit.Journal{Path: path}.ReadEntries()
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}
	total := len(entries)

	if logOperation != "" {
		entries = audit.OfOperation(entries, strings.Split(logOperation, ",")...)
	}
	if logSince != "" {
		since, err := time.Parse("2006-01-02", logSince)
		if err != nil {
			return fmt.Errorf("invalid --since date %q, expected YYYY-MM-DD", logSince)
		}
		entries = audit.Since(entries, since)
	}
	if logReverse {
		entries = slices.Clone(entries)
		slices.Reverse(entries)
	}
	if logLimit > 0 && len(entries) > logLimit {
		entries = entries[:logLimit]
	}

	Logger.Debugf("Parsed %d entries from audit log", total)
	Logger.Debugf("After filtering: %d entries", len(entries))

	if len(entries) == 0 {
		if total == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	if logJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%-19s  %-14s  %s\n", e.Time().Local().Format("2006-01-02 15:04:05"), e.Operation, formatEntryDetails(e))
	}
	return nil
}

func formatEntryDetails(e audit.Entry) string {
	switch e.Operation {
	case audit.OpMigrate:
		return fmt.Sprintf("%s → %s (%s)", e.FromVersion, e.ToVersion, strings.Join(e.Applied, ", "))
	case audit.OpMigrateFailed:
		return fmt.Sprintf("%s → %s failed at %s: %s", e.FromVersion, e.ToVersion, e.Failed, e.Error)
	case audit.OpReset:
		return fmt.Sprintf("%s %s", ui.Path.Sprint(e.Store), strings.Join(e.Keys, ", "))
	default:
		return ui.Path.Sprint(e.Store)
	}
}
