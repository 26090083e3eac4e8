package cmd

import (
	"fmt"

	"github.com/PolarWolf314/conf/internal/ui"
	"github.com/PolarWolf314/conf/pkg/conf"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value at a key",
	Long: `Stores a value at a key, creating intermediate objects as needed.

The value is parsed as JSON when possible and stored as a plain string
otherwise. Pass "-" to read the value from stdin.

Examples:
  conf store set theme dark
  conf store set server.port 8080
  conf store set features '["a", "b"]'
  cat value.json | conf store set payload -`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		v, err := parseValue(args[1])
		if err != nil {
			return err
		}
		Logger.Debugf("Parsed value for %s as %T", key, v)

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Set(key, v); err != nil {
			return err
		}
		Logger.Infof("Wrote %s", s.Path())
		fmt.Println(ui.Done("Set %s", ui.Key.Sprint(key)))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <key>...",
	Aliases: []string{"rm"},
	Short:   "Remove keys",
	Long: `Removes keys from the store. Removing a missing key is not an error.

Examples:
  conf store delete theme
  conf store delete server.port server.host`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.Batch(func() error {
			for _, key := range args {
				if err := s.Delete(key); err != nil {
					return err
				}
				Logger.Debugf("Deleted %s", key)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, key := range args {
			fmt.Println(ui.Done("Deleted %s", ui.Key.Sprint(key)))
		}
		return nil
	},
}

var hasCmd = &cobra.Command{
	Use:   "has <key>",
	Short: "Report whether a key is set",
	Long: `Prints true when the key exists, including when it holds null, and
false otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ok, err := s.Has(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	},
}

func lookupKey(s *conf.Store, key string) (any, bool, error) {
	ok, err := s.Has(key)
	if err != nil || !ok {
		return nil, false, err
	}
	v, err := s.Get(key)
	return v, err == nil, err
}
