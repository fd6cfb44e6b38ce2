package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dropForce bool
	dropTeam  string
)

// dropCmd deletes the database file, or one team's table with --team.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the database",
	Long:  "Permanently delete the SQLite database. All imported tables and stored runs will be lost. With --team, only that team's imported table is removed.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().StringVar(&dropTeam, "team", "", "only remove this team's imported table")
}

func runDrop(cmd *cobra.Command, args []string) error {
	target := dbPath
	if dropTeam != "" {
		target = fmt.Sprintf("team %s in %s", dropTeam, dbPath)
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", target)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}

	if dropTeam != "" {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		removed, err := db.DeleteTeam(dropTeam)
		if err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
		if !removed {
			fmt.Fprintf(os.Stdout, "Team %s is not imported, nothing to drop.\n", dropTeam)
			return nil
		}
		fmt.Fprintf(os.Stdout, "Deleted: %s\n", target)
		return nil
	}

	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}
