package cmd

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/PolarWolf314/conf/internal/document"
	"github.com/PolarWolf314/conf/internal/ui"
	"github.com/PolarWolf314/conf/pkg/conf"
	"github.com/spf13/cobra"
)

var (
	watchPoll     bool
	watchInterval time.Duration
)

func init() {
	watchCmd.Flags().BoolVar(&watchPoll, "poll", false, "poll the file instead of using file system events")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Second, "polling interval")
}

var watchCmd = &cobra.Command{
	Use:   "watch [key]",
	Short: "Print changes as they happen",
	Long: `Prints a line for every change made to the store file, by any process,
until interrupted. With a key, only changes to that key are printed.

Examples:
  conf store watch
  conf store watch server.port --poll --interval 500ms`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	mode := conf.WatchAuto
	if watchPoll {
		mode = conf.WatchPoll
	}
	s, err := openStore(
		conf.WithWatch(true),
		conf.WithWatchMode(mode),
		conf.WithPollInterval(watchInterval),
	)
	if err != nil {
		return err
	}
	defer s.Close()

	changes := make(chan string, 16)
	report := func(line string) {
		select {
		case changes <- line:
		default:
			Logger.Warnf("Dropped change notification, output is falling behind")
		}
	}

	var unsubscribe func()
	if len(args) == 1 {
		key := args[0]
		unsubscribe, err = s.OnDidChange(key, func(newValue, oldValue any) {
			report(describeChange(key, newValue, oldValue))
		})
	} else {
		unsubscribe, err = s.OnDidAnyChange(func(newDoc, oldDoc conf.Document) {
			for _, line := range diffDocuments(newDoc, oldDoc) {
				report(line)
			}
		})
	}
	if err != nil {
		return err
	}
	defer unsubscribe()

	fmt.Println(ui.Hint("Watching %s, press Ctrl+C to stop", ui.Path.Sprint(s.Path())))
	for {
		select {
		case <-ctx.Done():
			return nil
		case line := <-changes:
			fmt.Println(line)
		}
	}
}

func describeChange(key string, newValue, oldValue any) string {
	newText, _ := formatValue(newValue, false)
	oldText, _ := formatValue(oldValue, false)
	return fmt.Sprintf("%s %s: %s → %s", time.Now().Format("15:04:05"), ui.Key.Sprint(key), ui.Muted.Sprint(oldText), ui.Value.Sprint(newText))
}

// diffDocuments describes every leaf that differs between two documents.
func diffDocuments(newDoc, oldDoc conf.Document) []string {
	before := map[string]any{}
	for _, l := range flatten(oldDoc) {
		before[l.Key] = l.Value
	}

	var lines []string
	for _, l := range flatten(newDoc) {
		old, ok := before[l.Key]
		delete(before, l.Key)
		if ok && document.Equal(old, l.Value) {
			continue
		}
		lines = append(lines, describeChange(l.Key, l.Value, old))
	}
	for _, key := range slices.Sorted(maps.Keys(before)) {
		lines = append(lines, describeChange(key, nil, before[key]))
	}
	return lines
}

// resetWatchCommandState resets the watch command's global state for testing.
func resetWatchCommandState() {
	watchPoll = false
	watchInterval = time.Second
}
