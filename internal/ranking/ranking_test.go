package ranking_test

import (
	"context"
	"testing"

	"github.com/intelligrit/guess-tally/internal/logger"
	"github.com/intelligrit/guess-tally/internal/ranking"
	"github.com/intelligrit/guess-tally/internal/tables"
	"github.com/smartystreets/goconvey/convey"
)

func names(t *tables.RoundTable) []string {
	var out []string
	for _, r := range t.Rows {
		out = append(out, r.Name)
	}
	return out
}

func TestSortByDistance(t *testing.T) {
	convey.Convey("Given rows with stored distances", t, func() {
		tbl := tables.NewRound("0,0")
		tbl.Rows = append(tbl.Rows,
			tables.Row{Name: "A", Coordinates: "1,1", DistanceMi: "5.0"},
			tables.Row{Name: "B", Coordinates: "2,2", DistanceMi: "1.2"},
			tables.Row{Name: "C", Coordinates: "3,3", DistanceMi: "3.3"},
		)

		convey.Convey("When sorted", func() {
			err := ranking.SortByDistance(tbl)

			convey.So(err, convey.ShouldBeNil)
			convey.Convey("Then the target stays first and the rest ascend", func() {
				convey.So(names(tbl), convey.ShouldResemble, []string{tables.TargetName, "B", "C", "A"})
			})
		})

		convey.Convey("When some rows have no distance", func() {
			tbl.Rows = append(tbl.Rows[:2], append([]tables.Row{{Name: "X"}}, tbl.Rows[2:]...)...)
			tbl.Rows = append(tbl.Rows, tables.Row{Name: "Y"})
			err := ranking.SortByDistance(tbl)

			convey.So(err, convey.ShouldBeNil)
			convey.Convey("Then they are kept after the ranked rows in prior order", func() {
				convey.So(names(tbl), convey.ShouldResemble, []string{tables.TargetName, "B", "C", "A", "X", "Y"})
			})
		})

		convey.Convey("When two rows tie", func() {
			tbl.Rows[3].DistanceMi = "5.0"
			err := ranking.SortByDistance(tbl)

			convey.So(err, convey.ShouldBeNil)
			convey.Convey("Then their prior order is preserved", func() {
				convey.So(names(tbl), convey.ShouldResemble, []string{tables.TargetName, "B", "A", "C"})
			})
		})

		convey.Convey("When a stored distance is garbage", func() {
			tbl.Rows[2].DistanceMi = "far"
			err := ranking.SortByDistance(tbl)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(names(tbl), convey.ShouldResemble, []string{tables.TargetName, "A", "B", "C"})
		})
	})
}

func TestApplyDistances(t *testing.T) {
	convey.Convey("Given a target in New York", t, func() {
		tbl := tables.NewRound("40.7128,-74.0060")

		convey.Convey("When a player guesses London", func() {
			tbl.Upsert("Alice", "51.5074,-0.1278")
			err := ranking.ApplyDistances(tbl)

			convey.So(err, convey.ShouldBeNil)
			row, _ := tbl.Find("Alice")
			mi, _ := row.Miles()
			convey.So(mi, convey.ShouldAlmostEqual, 3461.2, 1.0)
			convey.So(row.DistanceKm, convey.ShouldStartWith, "557")
		})

		convey.Convey("When a player guesses the target exactly", func() {
			tbl.Upsert("Bob", "40.7128,-74.0060")
			convey.So(ranking.ApplyDistances(tbl), convey.ShouldBeNil)
			row, _ := tbl.Find("Bob")
			convey.So(row.DistanceMi, convey.ShouldEqual, "0.0")
		})

		convey.Convey("When a row has no coordinates", func() {
			tbl.Rows = append(tbl.Rows, tables.Row{Name: "Carol"})
			convey.So(ranking.ApplyDistances(tbl), convey.ShouldBeNil)
			row, _ := tbl.Find("Carol")
			convey.So(row.Ranked(), convey.ShouldBeFalse)
		})

		convey.Convey("When a later row is malformed", func() {
			tbl.Upsert("Alice", "51.5074,-0.1278")
			tbl.Upsert("Dave", "nowhere")
			err := ranking.ApplyDistances(tbl)

			convey.So(err, convey.ShouldNotBeNil)
			convey.Convey("Then earlier rows keep their distances", func() {
				row, _ := tbl.Find("Alice")
				convey.So(row.Ranked(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a malformed target", t, func() {
		tbl := tables.NewRound("somewhere")
		tbl.Upsert("Alice", "1,1")
		convey.So(ranking.ApplyDistances(tbl), convey.ShouldNotBeNil)
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a round with one malformed submission", t, func() {
		tbl := tables.NewRound("0,0")
		tbl.Upsert("Far", "10,10")
		tbl.Upsert("Near", "1,1")
		tbl.Upsert("Broken", "x")

		standings := ranking.Run(context.Background(), tbl, logger.Nop())

		convey.Convey("Then computed rows are still ranked", func() {
			convey.So(len(standings), convey.ShouldEqual, 2)
			convey.So(standings[0].Alias, convey.ShouldEqual, "Near")
			convey.So(standings[0].Rank, convey.ShouldEqual, 1)
			convey.So(standings[1].Alias, convey.ShouldEqual, "Far")
			convey.So(names(tbl), convey.ShouldResemble, []string{tables.TargetName, "Near", "Far", "Broken"})
		})
	})
}
