package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/acrd/internal/acr"
	"github.com/fyrsmithlabs/acrd/internal/catalog"
	"github.com/fyrsmithlabs/acrd/internal/conformance"
	"github.com/fyrsmithlabs/acrd/internal/issue"
	"github.com/fyrsmithlabs/acrd/internal/mapping"
	"github.com/fyrsmithlabs/acrd/internal/versioning"
)

var (
	// evaluate command flags
	evalEdition        string
	evalProductName    string
	evalProductVersion string
	evalVendor         string
	evalSave           bool
	evalCreatedBy      string
	evalOutputJSON     bool
)

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalEdition, "edition", "", "report edition (defaults to config report.default_edition)")
	evaluateCmd.Flags().StringVar(&evalProductName, "product-name", "", "product name for the report (required)")
	evaluateCmd.Flags().StringVar(&evalProductVersion, "product-version", "", "product version for the report")
	evaluateCmd.Flags().StringVar(&evalVendor, "vendor", "", "vendor name for the report")
	evaluateCmd.Flags().BoolVar(&evalSave, "save", false, "store the report as a new version")
	evaluateCmd.Flags().StringVar(&evalCreatedBy, "created-by", "", "author recorded on the saved version")
	evaluateCmd.Flags().BoolVar(&evalOutputJSON, "json", false, "output the full report as JSON")
	_ = evaluateCmd.MarkFlagRequired("product-name")
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [scan-results.json]",
	Short: "Evaluate scan results into a conformance report",
	Long: `Evaluate accessibility scan results against an edition's criteria and
build a conformance report.

The input is a JSON array of scan payloads (raw issues, remediation tasks,
or per-criterion records), read from the named file or stdin.

Examples:
  # Evaluate a scan export against WCAG 2.1 A/AA
  acrd evaluate --product-name "Widget" scan.json

  # Evaluate for Section 508 and save as version 1
  acrd evaluate --edition vpat24-508 --product-name "Widget" --save scan.json

  # Read from stdin, emit the full report
  cat scan.json | acrd evaluate --product-name "Widget" --json -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	payloads, err := readPayloads(args)
	if err != nil {
		return err
	}

	issues, remediations, err := issue.ConvertAll(payloads)
	if err != nil {
		return fmt.Errorf("failed to convert scan payloads: %w", err)
	}

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load criteria catalog: %w", err)
	}

	edition := evalEdition
	if edition == "" {
		edition = cfg.Report.DefaultEdition
	}

	evaluator, err := conformance.NewEvaluator(nil, cat, mapping.NewMapper(), logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	eval, err := evaluator.EvaluateDocument(ctx, edition, issues, remediations)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	builder, err := acr.NewBuilder(cat, logger)
	if err != nil {
		return err
	}
	doc, err := builder.Build(acr.BuildRequest{
		Edition: edition,
		Product: acr.ProductInfo{
			Name:    evalProductName,
			Version: evalProductVersion,
			Vendor:  evalVendor,
		},
		Evaluation: eval,
	})
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	if evalSave {
		store, closeStore, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		engine, err := versioning.NewEngine(store, logger)
		if err != nil {
			return err
		}
		rec, err := engine.CreateVersion(ctx, doc, evalCreatedBy, "")
		if err != nil {
			return fmt.Errorf("failed to save report version: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %s version %d\n", rec.AcrID, rec.Version)
	}

	if evalOutputJSON {
		return printJSON(doc)
	}
	return printEvaluationSummary(os.Stdout, doc, eval)
}

// readPayloads reads the scan payload array from a file or stdin.
func readPayloads(args []string) ([]issue.RawPayload, error) {
	var data []byte
	var err error

	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
	}

	var payloads []issue.RawPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, fmt.Errorf("failed to parse scan payloads: %w", err)
	}
	return payloads, nil
}

func printEvaluationSummary(out io.Writer, doc *acr.Document, eval *conformance.DocumentEvaluation) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Report:\t%s\n", doc.ID)
	fmt.Fprintf(w, "Edition:\t%s\n", doc.Edition)
	fmt.Fprintf(w, "Issues:\t%d (%d fixed, %d unmapped)\n",
		eval.TotalIssues, eval.FixedIssues, len(eval.UnmappedIssues))
	fmt.Fprintf(w, "Confidence:\t%d%%\n", eval.OverallConfidence)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "CRITERION\tLEVEL\tCONFORMANCE\tCONFIDENCE")
	for _, c := range doc.Criteria {
		a, ok := eval.AnalysisByID(c.ID)
		confidence := "-"
		if ok {
			confidence = fmt.Sprintf("%d%%", a.Confidence)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Level, c.ConformanceLevel, confidence)
	}
	return w.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
