package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/aflcorr/internal/report"
)

var runsTeam string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored matrix runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsTeam, "team", "", "only list runs for this team")
}

func runRuns(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(runsTeam)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs stored yet. Run 'aflcorr heatmap <team> <stat>' to build one.")
		return nil
	}
	report.PrintRuns(os.Stdout, runs)
	return nil
}
