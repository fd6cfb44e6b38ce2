package analysis_test

import (
	"errors"
	"math"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pable/aflcorr/internal/analysis"
	"github.com/pable/aflcorr/internal/model"
)

func TestBuildDuo(t *testing.T) {
	convey.Convey("Given a team season", t, func() {
		table := geelong()

		convey.Convey("When comparing two lockstep players", func() {
			d, err := analysis.BuildDuo(table, analysis.DuoRequest{
				Team: "Geelong", Stat: "Disposals", PlayerA: "Jeremy  Cameron", PlayerB: "Patrick Dangerfield",
			})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then names are normalized and every round is joint", func() {
				convey.So(d.PlayerA, convey.ShouldEqual, "Jeremy Cameron")
				convey.So(d.Joint, convey.ShouldEqual, 14)
				convey.So(d.Coef, convey.ShouldAlmostEqual, 1.0, 1e-9)
				convey.So(len(d.A), convey.ShouldEqual, 14)
			})
		})

		convey.Convey("When the season is longer than the data", func() {
			d, err := analysis.BuildDuo(table, analysis.DuoRequest{
				Stat: "Disposals", PlayerA: "Max Holmes", PlayerB: "Patrick Dangerfield", Rounds: 16, Method: model.Spearman,
			})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then missing rounds are gaps, not zeros", func() {
				convey.So(len(d.A), convey.ShouldEqual, 16)
				convey.So(d.OkA[4], convey.ShouldBeFalse)
				convey.So(d.OkA[15], convey.ShouldBeFalse)
				convey.So(d.OkB[0], convey.ShouldBeTrue)
				convey.So(d.Joint, convey.ShouldEqual, 13)
				convey.So(d.Team, convey.ShouldEqual, "Geelong")
			})
		})

		convey.Convey("When one player never recorded the statistic", func() {
			d, err := analysis.BuildDuo(table, analysis.DuoRequest{
				Stat: "Marks", PlayerA: "Jeremy Cameron", PlayerB: "Max Holmes",
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(d.Joint, convey.ShouldEqual, 0)
			convey.So(math.IsNaN(d.Coef), convey.ShouldBeTrue)
		})

		convey.Convey("When a player is not in the table", func() {
			d, err := analysis.BuildDuo(table, analysis.DuoRequest{
				Stat: "Marks", PlayerA: "Jeremy Cameron", PlayerB: "Gary Ablett",
			})
			convey.So(errors.Is(err, model.ErrEmptySelection), convey.ShouldBeTrue)
			convey.So(d, convey.ShouldBeNil)
			var ee *model.EmptySelectionError
			convey.So(errors.As(err, &ee), convey.ShouldBeTrue)
			convey.So(ee.Stat, convey.ShouldEqual, "Marks")
			convey.So(ee.Player, convey.ShouldEqual, "Gary Ablett")
		})

		convey.Convey("When the window is shorter than the season", func() {
			d, err := analysis.BuildDuo(table, analysis.DuoRequest{
				Stat: "Disposals", PlayerA: "Max Holmes", PlayerB: "Tom Stewart", Rounds: 6,
			})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the coefficient only uses the rounds shown", func() {
				convey.So(len(d.A), convey.ShouldEqual, 6)
				convey.So(d.Joint, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When one player barely overlaps", func() {
			d, err := analysis.BuildDuo(table, analysis.DuoRequest{
				Stat: "Disposals", PlayerA: "Rookie", PlayerB: "Jeremy Cameron",
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(d.Joint, convey.ShouldEqual, 3)
			convey.So(math.IsNaN(d.Coef), convey.ShouldBeFalse)
		})

		convey.Convey("When the method is unknown", func() {
			_, err := analysis.BuildDuo(table, analysis.DuoRequest{
				Stat: "Disposals", PlayerA: "Rookie", PlayerB: "Jeremy Cameron", Method: "tau",
			})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
