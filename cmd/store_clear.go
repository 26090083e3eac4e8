package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/conf/internal/codec"
	"github.com/PolarWolf314/conf/internal/ui"
	"github.com/PolarWolf314/conf/internal/utils"
	"github.com/PolarWolf314/conf/pkg/conf"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every key",
	Long: `Removes every key from the store. Migration state is kept.

The command line has no defaults to restore, so the store ends up empty.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		size, err := s.Size()
		if err != nil {
			return err
		}
		if err := s.Clear(); err != nil {
			return err
		}
		Logger.Infof("Cleared %d keys from %s", size, s.Path())
		fmt.Println(ui.Done("Cleared %s", ui.Path.Sprint(s.Path())))
		return nil
	},
}

var resetDefaults string

func init() {
	resetCmd.Flags().StringVar(&resetDefaults, "defaults", "", "JSON file holding the defaults to restore")
	_ = resetCmd.MarkFlagRequired("defaults")
}

var resetCmd = &cobra.Command{
	Use:   "reset <key>...",
	Short: "Restore keys to their defaults",
	Long: `Restores top-level keys to the values in a defaults file. Keys without
a default are left alone. Opening a store with defaults also fills in
missing keys that have one.

Examples:
  conf store reset theme size --defaults defaults.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := loadDefaults(resetDefaults)
		if err != nil {
			return err
		}

		s, err := openStore(conf.WithDefaults(defaults))
		if err != nil {
			return err
		}
		defer s.Close()

		var reset, skipped []string
		for _, key := range args {
			if _, ok := defaults[key]; ok {
				reset = append(reset, key)
			} else {
				skipped = append(skipped, key)
			}
		}
		if err := s.Reset(args...); err != nil {
			return err
		}

		if len(reset) > 0 {
			fmt.Print(ui.Done("Reset to defaults:") + utils.FormatList(reset))
		}
		if len(skipped) > 0 {
			fmt.Print(ui.Caution("No default for:") + utils.FormatList(skipped))
		}
		return nil
	},
}

func loadDefaults(path string) (conf.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read defaults: %w", err)
	}
	defaults, err := codec.JSON{}.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse defaults %s: %w", path, err)
	}
	return defaults, nil
}

// resetResetCommandState resets the reset command's global state for testing.
func resetResetCommandState() {
	resetDefaults = ""
}
