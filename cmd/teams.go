package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/aflcorr/internal/report"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List imported teams",
	Args:  cobra.NoArgs,
	RunE:  runTeams,
}

func runTeams(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	teams, err := db.ListTeams()
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	if len(teams) == 0 {
		fmt.Fprintln(os.Stdout, "No teams imported yet. Run 'aflcorr import <team>' to add one.")
		return nil
	}
	report.PrintTeams(os.Stdout, teams)
	return nil
}
