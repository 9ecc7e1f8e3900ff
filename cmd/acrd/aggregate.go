package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/acrd/internal/batch"
	"github.com/fyrsmithlabs/acrd/internal/conformance"
)

var (
	// aggregate command flags
	aggStrategy   string
	aggOutputJSON bool
)

func init() {
	rootCmd.AddCommand(aggregateCmd)

	aggregateCmd.Flags().StringVar(&aggStrategy, "strategy", "", "aggregation strategy: conservative or optimistic (defaults to config report.default_strategy)")
	aggregateCmd.Flags().BoolVar(&aggOutputJSON, "json", false, "output the full composite report as JSON")
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <evaluation.json>...",
	Short: "Combine per-document evaluations into one composite report",
	Long: `Combine the evaluations of several documents into a single composite
conformance report. Each argument is a JSON file holding one document's
evaluation, as produced by a scan job.

The conservative strategy lets any failing document pull a criterion down;
the optimistic strategy follows the majority.

Examples:
  # Conservative composite over a document set
  acrd aggregate out/a.json out/b.json out/c.json

  # Majority-wins composite
  acrd aggregate --strategy optimistic out/*.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAggregate,
}

// fileSource adapts an evaluation file on disk to the aggregator's source
// interface.
type fileSource struct {
	path string
}

func (s fileSource) Describe() (string, string) {
	return filepath.Base(s.path), s.path
}

func (s fileSource) Fetch(ctx context.Context) (*conformance.DocumentEvaluation, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var eval conformance.DocumentEvaluation
	if err := json.Unmarshal(data, &eval); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation: %w", err)
	}
	return &eval, nil
}

func runAggregate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	name := aggStrategy
	if name == "" {
		name = cfg.Report.DefaultStrategy
	}
	strategy, err := batch.ParseStrategy(name)
	if err != nil {
		return err
	}

	sources := make([]batch.Source, 0, len(args))
	for _, path := range args {
		sources = append(sources, fileSource{path: path})
	}

	report, err := batch.NewAggregator(logger).AggregateSources(cmd.Context(), sources, strategy)
	if err != nil {
		return err
	}

	if aggOutputJSON {
		return printJSON(report)
	}
	return printAggregateSummary(report)
}

func printAggregateSummary(report *batch.Report) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Strategy:\t%s\n", report.Strategy)
	fmt.Fprintf(w, "Documents:\t%d\n", report.DocumentCount)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "CRITERION\tCONFORMANCE\tREMARKS")
	for _, c := range report.Criteria {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.CriterionID, c.CompositeConformanceLevel, c.CompositeRemarks)
	}
	return w.Flush()
}
