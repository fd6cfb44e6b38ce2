package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pable/aflcorr/internal/storage"
)

// seasonCSV is fourteen rounds of three Geelong players.
func seasonCSV() string {
	var b strings.Builder
	b.WriteString("Round,Player,Team,Position,Kicks,Marks\n")
	for r := 1; r <= 14; r++ {
		fmt.Fprintf(&b, "%d,Tom Stewart,Geelong,Gen. Defender,%d,%d\n", r, r%3*5+r, r%4)
		fmt.Fprintf(&b, "%d,Jeremy Cameron,Geelong,Key Forward,%d,%d\n", r, 10+2*r, r)
		fmt.Fprintf(&b, "%d,Patrick Dangerfield,Geelong,Midfielder,%d,%d\n", r, 20+4*r, 20-r)
	}
	return b.String()
}

type workspace struct {
	dir, db, config, results string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	ws := workspace{
		dir:     dir,
		db:      filepath.Join(dir, "aflcorr.db"),
		config:  filepath.Join(dir, "aflcorr.yaml"),
		results: filepath.Join(dir, "results"),
	}
	teamDir := filepath.Join(dir, "data", "Geelong_R1-24")
	if err := os.MkdirAll(teamDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(teamDir, "geelong_stats_clean.csv"), []byte(seasonCSV()), 0o644); err != nil {
		t.Fatal(err)
	}
	body := fmt.Sprintf("data_dir: %s\nresults_dir: %s\nlog_level: error\nteams: [Geelong, Carlton]\n",
		filepath.Join(dir, "data"), ws.results)
	if err := os.WriteFile(ws.config, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return ws
}

// resetFlags restores flag variables between in-process invocations.
func resetFlags() {
	importFile, importRoundsDir, importWriteCSV = "", "", false
	buildVs, buildMinGames, buildMinGamesCol, buildMethod = "", 0, 0, ""
	buildMaskLower, buildKeepConstant, buildSource, buildOut, buildNoStore = false, false, "db", "", false
	batchTeams, batchWorkers, batchMetricsFile = "", 0, ""
	runsTeam = ""
	showCSV, showJSON, showDelete = false, false, false
	dropForce, dropTeam = false, ""
}

func run(ws workspace, args ...string) error {
	resetFlags()
	rootCmd.SetArgs(append([]string{"--db", ws.db, "--config", ws.config, "--no-color"}, args...))
	return rootCmd.Execute()
}

func TestCommands(t *testing.T) {
	convey.Convey("Given a data directory with one cleaned team table", t, func() {
		ws := newWorkspace(t)

		convey.Convey("When the team is imported and a heatmap is built", func() {
			convey.So(run(ws, "import", "Geelong"), convey.ShouldBeNil)
			convey.So(run(ws, "heatmap", "Geelong", "Kicks", "--min-games", "10", "--mask-lower"), convey.ShouldBeNil)

			convey.Convey("Then the artifacts are written under the team directory", func() {
				csvPath := filepath.Join(ws.results, "Geelong", "geelong_kicks_pearson.csv")
				body, err := os.ReadFile(csvPath)
				convey.So(err, convey.ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(string(body)), "\n")
				convey.So(lines[0], convey.ShouldEqual, "Player,Jeremy Cameron,Patrick Dangerfield,Tom Stewart")
				convey.So(lines[1], convey.ShouldStartWith, "Jeremy Cameron,,1.000,")

				_, err = os.Stat(filepath.Join(ws.results, "Geelong", "geelong_kicks_pearson.json"))
				convey.So(err, convey.ShouldBeNil)
			})

			convey.Convey("Then the run is stored and can be shown again", func() {
				db, err := storage.Open(ws.db)
				convey.So(err, convey.ShouldBeNil)
				runs, err := db.ListRuns("Geelong")
				db.Close()
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(runs), convey.ShouldEqual, 1)
				convey.So(runs[0].SuppressLower, convey.ShouldBeTrue)

				convey.So(run(ws, "show", runs[0].ID[:8]), convey.ShouldBeNil)
				convey.So(run(ws, "runs"), convey.ShouldBeNil)
			})

			convey.Convey("Then a cross-statistic matrix can be built from the CSV source", func() {
				err := run(ws, "heatmap", "Geelong", "Kicks", "--vs", "Marks", "--source", "csv", "--no-store", "--method", "kendall")
				convey.So(err, convey.ShouldBeNil)
				_, err = os.Stat(filepath.Join(ws.results, "Geelong", "geelong_kicks_vs_marks_kendall.csv"))
				convey.So(err, convey.ShouldBeNil)
			})

			convey.Convey("Then duo, teams and sql run against the store", func() {
				convey.So(run(ws, "duo", "Geelong", "Jeremy Cameron", "Tom Stewart", "--stat", "Kicks"), convey.ShouldBeNil)
				convey.So(run(ws, "teams"), convey.ShouldBeNil)
				convey.So(run(ws, "sql", "SELECT COUNT(1) FROM observations"), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a batch includes a team that was never imported", func() {
			convey.So(run(ws, "import", "Geelong"), convey.ShouldBeNil)
			metricsFile := filepath.Join(ws.dir, "aflcorr.prom")
			err := run(ws, "batch", "Kicks", "--workers", "2", "--min-games", "10", "--metrics-file", metricsFile)

			convey.Convey("Then the healthy team still succeeds and metrics are written", func() {
				convey.So(err, convey.ShouldBeNil)
				body, err := os.ReadFile(metricsFile)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(body), convey.ShouldContainSubstring, `aflcorr_build_failures_total{kind="missing_input"} 1`)
				convey.So(string(body), convey.ShouldContainSubstring, `aflcorr_matrices_built_total{method="pearson"} 1`)
			})
		})

		convey.Convey("When the statistic does not exist", func() {
			convey.So(run(ws, "import", "Geelong"), convey.ShouldBeNil)
			err := run(ws, "heatmap", "Geelong", "Handballs")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "Handballs")
		})

		convey.Convey("When the database is dropped", func() {
			convey.So(run(ws, "import", "Geelong"), convey.ShouldBeNil)
			convey.So(run(ws, "drop"), convey.ShouldBeNil)
			_, err := os.Stat(ws.db)
			convey.So(err, convey.ShouldBeNil)

			convey.So(run(ws, "drop", "--force"), convey.ShouldBeNil)
			_, err = os.Stat(ws.db)
			convey.So(os.IsNotExist(err), convey.ShouldBeTrue)
		})
	})
}
