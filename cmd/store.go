package cmd

import (
	"github.com/PolarWolf314/conf/internal/configs"
	logger "github.com/PolarWolf314/conf/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	// Settings holds defaults read from the CLI settings file. Flags given on
	// the command line win.
	Settings = &configs.CLISettings{}

	storePath      string
	storeCwd       string
	storeProject   string
	storeName      string
	storeExt       string
	storeFormat    string
	storeKeyEnv    string
	storePromptKey bool
	storeStrict    bool
	storeAuditLog  string

	StoreCmd = &cobra.Command{
		Use:   "store",
		Short: "Read and change a configuration store",
		Long: `Reads and changes a configuration store file from the command line.

The store is located with --path, or with --cwd/--project plus --name and --ext.
Defaults for these flags can be kept in the CLI settings file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing store command with verbose=%t, debug=%t", verbose, debug)

			path, err := configs.CLISettingsPath()
			if err != nil {
				return err
			}
			settings, err := configs.LoadCLISettings(path)
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to load CLI settings from %s: %v", path, err)
			}
			Logger.Debugf("Loaded CLI settings from %s", path)
			Settings = settings
			return nil
		},
	}
)

func init() {
	flags := StoreCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug output")
	flags.StringVar(&storePath, "path", "", "path of the store file")
	flags.StringVar(&storeCwd, "cwd", "", "directory holding the store file")
	flags.StringVar(&storeProject, "project", "", "project name, used to locate the per-user config directory")
	flags.StringVar(&storeName, "name", "", "file name without extension (default \"config\")")
	flags.StringVar(&storeExt, "ext", "", "file extension (default follows --format)")
	flags.StringVar(&storeFormat, "format", "", "file format: json, yaml or toml")
	flags.StringVar(&storeKeyEnv, "key-env", "", "environment variable holding the encryption passphrase")
	flags.BoolVar(&storePromptKey, "prompt-key", false, "prompt for the encryption passphrase")
	flags.BoolVar(&storeStrict, "strict", false, "fail on an unreadable store instead of starting over")
	flags.StringVar(&storeAuditLog, "audit-log", "", "JSON Lines file recording migrations, clears and resets")

	StoreCmd.AddCommand(getCmd)
	StoreCmd.AddCommand(setCmd)
	StoreCmd.AddCommand(deleteCmd)
	StoreCmd.AddCommand(hasCmd)
	StoreCmd.AddCommand(clearCmd)
	StoreCmd.AddCommand(resetCmd)
	StoreCmd.AddCommand(listCmd)
	StoreCmd.AddCommand(sizeCmd)
	StoreCmd.AddCommand(pathCmd)
	StoreCmd.AddCommand(watchCmd)
	StoreCmd.AddCommand(migrateCmd)
	StoreCmd.AddCommand(logCmd)
}

// Helper functions for testing

// GetStoreCmd returns the StoreCmd for testing.
func GetStoreCmd() *cobra.Command {
	return StoreCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	Settings = &configs.CLISettings{}

	storePath = ""
	storeCwd = ""
	storeProject = ""
	storeName = ""
	storeExt = ""
	storeFormat = ""
	storeKeyEnv = ""
	storePromptKey = false
	storeStrict = false
	storeAuditLog = ""

	resetGetCommandState()
	resetResetCommandState()
	resetListCommandState()
	resetWatchCommandState()
	resetMigrateCommandState()
	resetLogCommandState()

	for _, c := range append(StoreCmd.Commands(), StoreCmd) {
		reset := func(f *pflag.Flag) { f.Changed = false }
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

// SetVerbose sets the verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
