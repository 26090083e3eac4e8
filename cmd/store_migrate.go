package cmd

import (
	"fmt"

	"github.com/PolarWolf314/conf/internal/document"
	"github.com/PolarWolf314/conf/internal/migrate"
	"github.com/PolarWolf314/conf/internal/ui"
	"github.com/PolarWolf314/conf/internal/utils"
	"github.com/PolarWolf314/conf/pkg/conf"
	"github.com/spf13/cobra"
)

var (
	migratePlan   string
	migrateTarget string
	migrateDryRun bool
)

func init() {
	migrateCmd.Flags().StringVar(&migratePlan, "plan", "", "YAML migration plan")
	migrateCmd.Flags().StringVar(&migrateTarget, "to", "", "version to migrate to (exact semantic version)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "list the migrations that would run without running them")
	_ = migrateCmd.MarkFlagRequired("plan")
	_ = migrateCmd.MarkFlagRequired("to")
}

// resetMigrateCommandState resets the migrate command's global state for testing.
func resetMigrateCommandState() {
	migratePlan = ""
	migrateTarget = ""
	migrateDryRun = false
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply a declarative migration plan",
	Long: `Migrates the store towards a version using a YAML plan of set, delete and
rename operations keyed by version or version range:

  migrations:
    "1.0.0":
      - op: rename
        key: colour
        to: color
    ">=2.0.0":
      - op: set
        key: ui.theme
        value: dark

Migrations already applied, according to the version recorded in the store,
are skipped. A failing migration rolls back its own changes and keeps those
of the migrations before it.

Examples:
  conf store migrate --plan migrations.yaml --to 2.1.0
  conf store migrate --plan migrations.yaml --to 2.1.0 --dry-run`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting migrate command")

	plan, err := migrate.LoadPlan(migratePlan)
	if err != nil {
		return err
	}
	Logger.Debugf("Loaded %d migrations from %s", len(plan.Migrations), migratePlan)

	if migrateDryRun {
		return runMigrateDryRun(plan)
	}

	spinner, cleanup := startSpinner("Migrating store...", verbose)
	defer cleanup()

	var ran []string
	hook := func(s *conf.Store, ctx conf.MigrationContext) error {
		Logger.Infof("Running migration %s (from %s)", ctx.ToVersion, ctx.FromVersion)
		ran = append(ran, ctx.ToVersion)
		return nil
	}

	s, err := openStore(conf.WithMigrations(conf.PlanMigrations(plan), migrateTarget), conf.WithBeforeEachMigration(hook))
	if err != nil {
		return err
	}
	defer s.Close()

	if len(ran) == 0 {
		spinner.FinalMSG = ui.Done("Store is already at %s", ui.Key.Sprint(migrateTarget))
		return nil
	}
	spinner.FinalMSG = ui.Done("Migrated to %s, applied:", ui.Key.Sprint(migrateTarget)) + utils.FormatList(ran)
	return nil
}

func runMigrateDryRun(plan *migrate.Plan) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.Store()
	if err != nil {
		return err
	}
	recorded, _ := document.Get(doc, document.VersionPath)
	recordedText, _ := recorded.(string)

	pending, err := migrate.Pending(recordedText, migrateTarget, plan.Descriptors())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println(ui.Done("Store is already at %s", ui.Key.Sprint(migrateTarget)))
		return nil
	}
	fmt.Print(ui.Hint("Would run migrations:") + utils.FormatList(pending))
	return nil
}
