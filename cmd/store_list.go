package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/conf/internal/ui"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

var (
	listMatch []string
	listJSON  bool
)

func init() {
	listCmd.Flags().StringSliceVar(&listMatch, "match", nil, "only list keys matching these glob patterns (repeatable)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as a JSON array")
}

// resetListCommandState resets the list command's global state for testing.
func resetListCommandState() {
	listMatch = nil
	listJSON = false
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every key and value",
	Long: `Lists every leaf of the store as a dot path and its JSON value, sorted by
key. Migration state is not listed.

Patterns use glob syntax: "*" matches within a path segment, "**" across
segments and "{a,b}" either alternative.

Examples:
  conf store list
  conf store list --match 'server.*'
  conf store list --match '{theme,ui.*}' --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	for _, pattern := range listMatch {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid pattern %q", pattern)
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.Store()
	if err != nil {
		return err
	}

	var leaves []leaf
	for _, l := range flatten(doc) {
		if matchesAny(l.Key, listMatch) {
			leaves = append(leaves, l)
		}
	}
	Logger.Debugf("Listing %d keys", len(leaves))

	if listJSON {
		if leaves == nil {
			leaves = []leaf{}
		}
		data, err := json.MarshalIndent(leaves, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal keys to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(leaves) == 0 {
		fmt.Println(ui.Muted.Sprint("no keys"))
		return nil
	}
	for _, l := range leaves {
		v, err := formatValue(l.Value, false)
		if err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", ui.Key.Sprint(l.Key), ui.Value.Sprint(v))
	}
	return nil
}

// matchesAny treats dots as path separators so "*" stops at a segment.
func matchesAny(key string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(dotsToSlashes(pattern), dotsToSlashes(key)); ok {
			return true
		}
	}
	return false
}

// dotsToSlashes rewrites path separators. Escaped dots stay literal.
func dotsToSlashes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '.':
			out = append(out, '.')
			i++
		case s[i] == '.':
			out = append(out, '/')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Print the number of top-level keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Size()
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the store file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Println(s.Path())
		return nil
	},
}
