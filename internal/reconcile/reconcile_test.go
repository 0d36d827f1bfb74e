package reconcile_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/intelligrit/guess-tally/internal/model"
	"github.com/intelligrit/guess-tally/internal/reconcile"
	"github.com/intelligrit/guess-tally/internal/tables"
	"github.com/intelligrit/guess-tally/internal/transcript"
	"github.com/smartystreets/goconvey/convey"
)

type memAliases map[string]string

func (m memAliases) Lookup(author string) (string, bool) {
	a, ok := m[author]
	return a, ok
}

func (m memAliases) Define(author, alias string) error {
	m[author] = alias
	return nil
}

// scripted answers each Confirm with the next decision and records reviews.
type scripted struct {
	answers []bool
	seen    []reconcile.Review
}

func (s *scripted) Confirm(r reconcile.Review) (bool, error) {
	s.seen = append(s.seen, r)
	if len(s.answers) == 0 {
		return true, nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

type fixedAlias map[string]string

func (f fixedAlias) ChooseAlias(author string) (string, error) { return f[author], nil }

func preparedTables() (*tables.Roster, *tables.RoundTable) {
	roster := tables.NewRoster()
	roster.EnsureColumn("Round 1")
	roster.AddName("Location")
	_ = roster.Set("Location", "Round 1", "48.8584,2.2945")
	return roster, tables.NewRound("48.8584,2.2945")
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a prepared round", t, func() {
		roster, round := preparedTables()
		aliases := memAliases{}
		confirm := &scripted{}
		r := &reconcile.Reconciler{Aliases: aliases, Chooser: reconcile.AuthorAlias{}, Confirm: confirm}

		convey.Convey("When a player submits twice", func() {
			subs := []model.Submission{
				{Author: "Alice", Message: "40.7128, -74.0060"},
				{Author: "Bob", Message: "51.5, -0.12"},
				{Author: "Alice", Message: "41.0, -73.0"},
			}
			sum, err := r.Reconcile(ctx, subs, roster, round, "Round 1")

			convey.So(err, convey.ShouldBeNil)
			convey.Convey("Then the later submission replaces the earlier one in place", func() {
				convey.So(len(round.Rows), convey.ShouldEqual, 3)
				row, ok := round.Find("Alice")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(row.Coordinates, convey.ShouldEqual, "41,-73")
				convey.So(roster.Get("Alice", "Round 1"), convey.ShouldEqual, "41,-73")
				convey.So(round.Rows[1].Name, convey.ShouldEqual, "Alice")
			})
			convey.Convey("Then only the first sighting counts as new", func() {
				convey.So(sum, convey.ShouldResemble, reconcile.Summary{Segmented: 3, Approved: 3, NewPlayers: 2})
				convey.So(confirm.seen[0].NewPlayer, convey.ShouldBeTrue)
				convey.So(confirm.seen[2].NewPlayer, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a submission has no coordinates", func() {
			subs := []model.Submission{{Author: "Carol", Message: "good luck everyone"}}
			sum, err := r.Reconcile(ctx, subs, roster, round, "Round 1")

			convey.So(err, convey.ShouldBeNil)
			convey.Convey("Then it is skipped without asking", func() {
				convey.So(sum.Unparseable, convey.ShouldEqual, 1)
				convey.So(confirm.seen, convey.ShouldBeEmpty)
				convey.So(roster.HasName("Carol"), convey.ShouldBeFalse)
			})
			convey.Convey("Then the alias is still recorded", func() {
				convey.So(aliases["Carol"], convey.ShouldEqual, "Carol")
			})
		})

		convey.Convey("When the operator rejects a submission", func() {
			confirm.answers = []bool{false}
			subs := []model.Submission{{Author: "Dave", Message: "-33.8688, 151.2093"}}
			sum, err := r.Reconcile(ctx, subs, roster, round, "Round 1")

			convey.So(err, convey.ShouldBeNil)
			convey.Convey("Then no table changes", func() {
				convey.So(sum.Rejected, convey.ShouldEqual, 1)
				convey.So(sum.NewPlayers, convey.ShouldEqual, 0)
				convey.So(roster.HasName("Dave"), convey.ShouldBeFalse)
				convey.So(len(round.Rows), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When an author already has an alias", func() {
			aliases["alice_w"] = "Alice"
			r.Chooser = fixedAlias{"bob99": "Bob"}
			subs := []model.Submission{
				{Author: " alice_w ", Message: "1.5, 2.5"},
				{Author: "bob99", Message: "3.5, 4.5"},
			}
			_, err := r.Reconcile(ctx, subs, roster, round, "Round 1")

			convey.So(err, convey.ShouldBeNil)
			convey.Convey("Then rows are keyed by alias", func() {
				convey.So(roster.Get("Alice", "Round 1"), convey.ShouldEqual, "1.5,2.5")
				convey.So(roster.Get("Bob", "Round 1"), convey.ShouldEqual, "3.5,4.5")
				convey.So(aliases["bob99"], convey.ShouldEqual, "Bob")
			})
		})
	})

	convey.Convey("Given a round that was never prepared", t, func() {
		roster := tables.NewRoster()
		r := &reconcile.Reconciler{Aliases: memAliases{}, Chooser: reconcile.AuthorAlias{}, Confirm: reconcile.ApproveAll{}}
		subs := []model.Submission{{Author: "Alice", Message: "1.0, 2.0"}}

		convey.Convey("When the roster lacks the round column", func() {
			_, err := r.Reconcile(ctx, subs, roster, tables.NewRound("0,0"), "Round 2")

			convey.Convey("Then it fails before any mutation", func() {
				convey.So(errors.Is(err, tables.ErrRoundNotInitialized), convey.ShouldBeTrue)
				convey.So(roster.HasName("Alice"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the round table is missing", func() {
			roster.EnsureColumn("Round 2")
			_, err := r.Reconcile(ctx, subs, roster, nil, "Round 2")

			convey.So(errors.Is(err, tables.ErrRoundNotInitialized), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a cancelled context", t, func() {
		roster, round := preparedTables()
		r := &reconcile.Reconciler{Aliases: memAliases{}, Chooser: reconcile.AuthorAlias{}, Confirm: reconcile.ApproveAll{}}
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := r.Reconcile(cctx, []model.Submission{{Author: "Alice", Message: "1.0, 2.0"}}, roster, round, "Round 1")

		convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		convey.So(len(round.Rows), convey.ShouldEqual, 1)
	})
}

func TestReconcileTranscript(t *testing.T) {
	convey.Convey("Given a chat export with a forwarded and a re-submitted guess", t, func() {
		lines := strings.Split(strings.Join([]string{
			"Alice — 03/14/2025 9:41 PM",
			"40.7128, -74.0060",
			"Bob — Today at 10:02 AM",
			"Forwarded",
			"12.5°S, 45.25°W",
			"Alice — Today at 11:15 AM",
			"41°24'12.2\"N 2°10'26.5\"E",
		}, "\n"), "\n")
		subs := transcript.Segment(lines)
		roster, round := preparedTables()
		r := &reconcile.Reconciler{Aliases: memAliases{}, Chooser: reconcile.AuthorAlias{}, Confirm: reconcile.ApproveAll{}}

		sum, err := r.Reconcile(context.Background(), subs, roster, round, "Round 1")

		convey.So(err, convey.ShouldBeNil)
		convey.So(sum.Approved, convey.ShouldEqual, 3)
		convey.So(sum.NewPlayers, convey.ShouldEqual, 2)
		convey.So(roster.Get("Bob", "Round 1"), convey.ShouldEqual, "-12.5,-45.25")
		row, _ := round.Find("Alice")
		convey.So(row.Coordinates, convey.ShouldStartWith, "41.4033")
	})
}

func TestPrompter(t *testing.T) {
	convey.Convey("Given a terminal prompter", t, func() {
		var out bytes.Buffer

		convey.Convey("A blank alias keeps the author name", func() {
			p := reconcile.NewPrompter(strings.NewReader("\n"), &out)
			alias, err := p.ChooseAlias("alice_w")
			convey.So(err, convey.ShouldBeNil)
			convey.So(alias, convey.ShouldEqual, "alice_w")
		})

		convey.Convey("A typed alias is trimmed", func() {
			p := reconcile.NewPrompter(strings.NewReader("  Alice \n"), &out)
			alias, err := p.ChooseAlias("alice_w")
			convey.So(err, convey.ShouldBeNil)
			convey.So(alias, convey.ShouldEqual, "Alice")
		})

		convey.Convey("Only y approves", func() {
			p := reconcile.NewPrompter(strings.NewReader("Y\nn\nmaybe\n"), &out)
			review := reconcile.Review{Author: "alice_w", Alias: "Alice", Message: "1, 2", NewPlayer: true}
			for _, want := range []bool{true, false, false} {
				ok, err := p.Confirm(review)
				convey.So(err, convey.ShouldBeNil)
				convey.So(ok, convey.ShouldEqual, want)
			}
			convey.So(out.String(), convey.ShouldContainSubstring, "REVIEWING: Alice (NEW PLAYER) (User: alice_w)")
		})

		convey.Convey("Closed input is an error", func() {
			p := reconcile.NewPrompter(strings.NewReader(""), &out)
			_, err := p.Confirm(reconcile.Review{})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
