package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/aflcorr/internal/analysis"
	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/report"
	"github.com/pable/aflcorr/pkg/logger"
)

var (
	duoStat   string
	duoMethod string
	duoRounds int
)

var duoCmd = &cobra.Command{
	Use:   "duo <team> <playerA> <playerB>",
	Short: "Compare two players round by round",
	Long: `Print the per-round series of two players for one statistic over rounds 1..N,
with missing rounds shown as gaps, and their correlation over the rounds both played.`,
	Args: cobra.ExactArgs(3),
	RunE: runDuo,
}

func init() {
	duoCmd.Flags().StringVar(&duoStat, "stat", "", "statistic column (required)")
	duoCmd.Flags().StringVar(&duoMethod, "method", "", "pearson, spearman or kendall (default from config)")
	duoCmd.Flags().IntVar(&duoRounds, "rounds", 0, "season length (default from config)")
	_ = duoCmd.MarkFlagRequired("stat")
}

func runDuo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	method := cfg.DefaultMethod()
	if duoMethod != "" {
		m, ok := model.ParseMethod(duoMethod)
		if !ok {
			return fmt.Errorf("unknown method %q", duoMethod)
		}
		method = m
	}
	rounds := cfg.Rounds
	if duoRounds > 0 {
		rounds = duoRounds
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	t, err := db.LoadTeamTable(args[0])
	if err != nil {
		return err
	}
	d, err := analysis.BuildDuo(t, analysis.DuoRequest{
		Team: args[0], Stat: duoStat, PlayerA: args[1], PlayerB: args[2],
		Rounds: rounds, Method: method,
	})
	if err != nil {
		log.Error(ctx, "duo failed", logger.String("kind", model.Kind(err)), logger.Error(err))
		return err
	}
	report.PrintDuo(os.Stdout, d, cfg.Precision)
	return nil
}
