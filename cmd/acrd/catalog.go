package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/acrd/internal/catalog"
)

var (
	// catalog command flags
	catEdition    string
	catOutputJSON bool
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogEditionsCmd)
	catalogCmd.AddCommand(catalogCriteriaCmd)

	catalogCmd.PersistentFlags().BoolVar(&catOutputJSON, "json", false, "Output results as JSON")
	catalogCriteriaCmd.Flags().StringVar(&catEdition, "edition", "", "limit to one edition's criteria")
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the built-in criteria catalog",
	Long: `Inspect the built-in success criteria catalog and the report editions
that select from it.

Examples:
  # List available editions
  acrd catalog editions

  # List all criteria
  acrd catalog criteria

  # List the criteria of one edition
  acrd catalog criteria --edition vpat24-508`,
}

var catalogEditionsCmd = &cobra.Command{
	Use:   "editions",
	Short: "List available report editions",
	RunE:  runCatalogEditions,
}

var catalogCriteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "List success criteria",
	RunE:  runCatalogCriteria,
}

func runCatalogEditions(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load criteria catalog: %w", err)
	}

	editions := cat.Editions()
	if catOutputJSON {
		return printJSON(editions)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tCRITERIA")
	for _, e := range editions {
		fmt.Fprintf(w, "%s\t%s\t%d\n", e.Code, e.Name, len(e.CriteriaIDs))
	}
	return w.Flush()
}

func runCatalogCriteria(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load criteria catalog: %w", err)
	}

	criteria := cat.Criteria()
	if catEdition != "" {
		criteria = cat.CriteriaForEdition(catEdition)
	}
	if catOutputJSON {
		return printJSON(criteria)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLEVEL\tNAME")
	for _, c := range criteria {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Level, c.Name)
	}
	return w.Flush()
}
