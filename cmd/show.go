package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/aflcorr/internal/report"
)

var (
	showCSV    bool
	showJSON   bool
	showDelete bool
)

var showCmd = &cobra.Command{
	Use:   "show <run-id-prefix>",
	Short: "Re-render a stored matrix run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showCSV, "csv", false, "print the matrix as CSV")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the renderer JSON")
	showCmd.Flags().BoolVar(&showDelete, "delete", false, "delete the run instead of showing it")
	showCmd.MarkFlagsMutuallyExclusive("csv", "json", "delete")
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := args[0]

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	run, res, err := db.GetRunByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "No run found with id prefix %q\n", prefix)
		return nil
	}

	switch {
	case showDelete:
		if err := db.DeleteRun(run.ID); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Deleted run %s\n", run.ID)
		return nil
	case showCSV:
		return report.WriteMatrixCSV(os.Stdout, res, cfg.Precision)
	case showJSON:
		return report.WriteResultJSON(os.Stdout, res)
	}
	fmt.Fprintf(os.Stdout, "Run %s  (%s)\n", run.ID, run.CreatedAt)
	report.PrintMatrix(os.Stdout, res, cfg.Precision)
	return nil
}
