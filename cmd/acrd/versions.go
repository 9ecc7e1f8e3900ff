package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/acrd/internal/versioning"
)

var versionsOutputJSON bool

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.AddCommand(versionsListCmd)
	versionsCmd.AddCommand(versionsShowCmd)
	versionsCmd.AddCommand(versionsCompareCmd)
	versionsCmd.AddCommand(versionsPurgeCmd)

	versionsCmd.PersistentFlags().BoolVar(&versionsOutputJSON, "json", false, "Output results as JSON")
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Inspect report version history",
	Long: `Inspect the immutable version history of a conformance report.

Examples:
  # List all versions of a report
  acrd versions list acr-9f2c

  # Show one version with its changelog
  acrd versions show acr-9f2c 3

  # Diff two versions
  acrd versions compare acr-9f2c 1 3

  # Remove a report's entire history
  acrd versions purge acr-9f2c`,
}

var versionsListCmd = &cobra.Command{
	Use:   "list <acr-id>",
	Short: "List all versions of a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsList,
}

var versionsShowCmd = &cobra.Command{
	Use:   "show <acr-id> <version>",
	Short: "Show one version with its changelog",
	Args:  cobra.ExactArgs(2),
	RunE:  runVersionsShow,
}

var versionsCompareCmd = &cobra.Command{
	Use:   "compare <acr-id> <version-a> <version-b>",
	Short: "Diff two versions of a report",
	Args:  cobra.ExactArgs(3),
	RunE:  runVersionsCompare,
}

var versionsPurgeCmd = &cobra.Command{
	Use:   "purge <acr-id>",
	Short: "Remove a report's entire version history",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsPurge,
}

// withEngine wires config, logger, store, and engine for a versions
// subcommand.
func withEngine(cmd *cobra.Command, fn func(*versioning.Engine) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, closeStore, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	engine, err := versioning.NewEngine(store, logger)
	if err != nil {
		return err
	}
	return fn(engine)
}

func parseVersionArg(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid version number %q", arg)
	}
	return n, nil
}

func runVersionsList(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(engine *versioning.Engine) error {
		versions, err := engine.GetVersions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if versionsOutputJSON {
			return printJSON(versions)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tCREATED\tBY\tSTATUS\tCHANGES")
		for _, v := range versions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
				v.Version,
				v.CreatedAt.Format("2006-01-02 15:04"),
				v.CreatedBy,
				v.Snapshot.Status,
				len(v.ChangeLog),
			)
		}
		return w.Flush()
	})
}

func runVersionsShow(cmd *cobra.Command, args []string) error {
	n, err := parseVersionArg(args[1])
	if err != nil {
		return err
	}
	return withEngine(cmd, func(engine *versioning.Engine) error {
		v, err := engine.GetVersion(cmd.Context(), args[0], n)
		if err != nil {
			return err
		}
		if versionsOutputJSON {
			return printJSON(v)
		}

		fmt.Printf("Version %d of %s\n", v.Version, v.AcrID)
		fmt.Printf("Created %s by %s\n", v.CreatedAt.Format("2006-01-02 15:04"), v.CreatedBy)
		fmt.Println()
		printChanges(v.ChangeLog)
		return nil
	})
}

func runVersionsCompare(cmd *cobra.Command, args []string) error {
	a, err := parseVersionArg(args[1])
	if err != nil {
		return err
	}
	b, err := parseVersionArg(args[2])
	if err != nil {
		return err
	}
	return withEngine(cmd, func(engine *versioning.Engine) error {
		cmp, err := engine.CompareVersions(cmd.Context(), args[0], a, b)
		if err != nil {
			return err
		}
		if versionsOutputJSON {
			return printJSON(cmp)
		}

		fmt.Printf("%s: version %d -> %d\n", cmp.AcrID, cmp.VersionA, cmp.VersionB)
		fmt.Printf("%d field(s) changed, %d criteria touched, status changed: %v\n",
			cmp.Summary.FieldsChanged, cmp.Summary.CriteriaTouched, cmp.Summary.StatusChanged)
		fmt.Println()
		printChanges(cmp.Changes)
		return nil
	})
}

func runVersionsPurge(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(engine *versioning.Engine) error {
		n, err := engine.DeleteVersions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d version(s) of %s\n", n, args[0])
		return nil
	})
}

func printChanges(changes []versioning.Change) {
	if len(changes) == 0 {
		fmt.Println("No changes.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tPREVIOUS\tNEW")
	for _, c := range changes {
		fmt.Fprintf(w, "%s\t%v\t%v\n", c.Field, c.Previous, c.New)
	}
	_ = w.Flush()
}
