package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	getDefault string
	getRaw     bool
)

func init() {
	getCmd.Flags().StringVar(&getDefault, "default", "", "value to print when the key is missing (parsed as JSON when possible)")
	getCmd.Flags().BoolVar(&getRaw, "raw", false, "print strings without JSON quotes")
}

// resetGetCommandState resets the get command's global state for testing.
func resetGetCommandState() {
	getDefault = ""
	getRaw = false
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value at a key",
	Long: `Prints the value stored at a key as JSON.

Nested values are addressed with dots; escape a literal dot with a backslash.

Examples:
  conf store get theme
  conf store get server.port
  conf store get 'hosts.example\.com'
  conf store get missing --default '"fallback"'`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	Logger.Infof("Reading key %s", key)

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	v, ok, err := lookupKey(s, key)
	if err != nil {
		return err
	}
	if !ok {
		if !cmd.Flags().Changed("default") {
			return fmt.Errorf("key %q is not set", key)
		}
		Logger.Debugf("Key %s is missing, using the default", key)
		if v, err = parseValue(getDefault); err != nil {
			return err
		}
	}

	out, err := formatValue(v, getRaw)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
