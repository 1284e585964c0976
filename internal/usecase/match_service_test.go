package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fieldmarshal/career-league/internal/domain/fixture"
	"github.com/fieldmarshal/career-league/internal/domain/match"
	"github.com/fieldmarshal/career-league/internal/platform/dice"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
	"github.com/fieldmarshal/career-league/internal/platform/prompt"
)

func newMatchService(w *world, prompter Prompter, roller dice.Roller) *MatchService {
	return NewMatchService(
		w.fixtures, w.matches, w.players, w.teams,
		prompter, nil, &seqIDs{prefix: "m"}, roller,
		MatchConfig{MinEvents: 8, MaxEvents: 8}, logging.NewNop())
}

func playableFixture(t *testing.T, w *world, homeID, awayID string) fixture.Fixture {
	t.Helper()
	item := fixture.Fixture{
		ID: "fx-test", LeagueID: "eng-championship", Season: 1, Week: 1,
		HomeTeamID: homeID, AwayTeamID: awayID, Playable: true,
	}
	if err := w.fixtures.InsertBatch(context.Background(), []fixture.Fixture{item}); err != nil {
		t.Fatalf("insert fixture: %v", err)
	}
	return item
}

func TestMatchService_Start_RejectsSecondRunOnFixture(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	w.addHuman("u1", "leeds", "FWD", 70)
	item := playableFixture(t, w, "leeds", "sunderland")
	service := newMatchService(w, &scriptPrompter{}, nil)

	if _, err := service.Start(ctx, "u1", item.ID); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := service.Start(ctx, "u1", item.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second start: got=%v want ErrConflict", err)
	}
}

func TestMatchService_Start_RequiresRosterSpot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	w.addHuman("u1", "leeds", "FWD", 70)
	item := playableFixture(t, w, "coventry", "norwich")
	service := newMatchService(w, &scriptPrompter{}, nil)

	_, err := service.Start(ctx, "u1", item.ID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("start without roster spot: got=%v want ErrUnauthorized", err)
	}
}

func TestMatchService_Start_RefusesClosedWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	w.addHuman("u1", "leeds", "FWD", 70)
	item := fixture.Fixture{
		ID: "fx-closed", LeagueID: "eng-championship", Season: 1, Week: 1,
		HomeTeamID: "leeds", AwayTeamID: "sunderland",
	}
	if err := w.fixtures.InsertBatch(ctx, []fixture.Fixture{item}); err != nil {
		t.Fatalf("insert fixture: %v", err)
	}
	service := newMatchService(w, &scriptPrompter{}, nil)

	_, err := service.Start(ctx, "u1", item.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("start on closed window: got=%v want ErrConflict", err)
	}
}

func TestMatchService_Run_TimeoutAutoPicksAndFinishes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	human := w.addHuman("u1", "leeds", "FWD", 70)
	w.addHuman("u2", "sunderland", "MID", 68)
	item := playableFixture(t, w, "leeds", "sunderland")

	// Humans on both rosters, so every key moment prompts. The prompter
	// never answers; every moment must auto-pick the recommendation and
	// the match must still reach full time.
	prompter := &scriptPrompter{err: prompt.ErrTimeout}
	service := newMatchService(w, prompter, dice.NewSeeded(42))

	run, err := service.Start(ctx, "u1", item.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	done, err := service.Run(ctx, run.ID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if done.State != match.StateCompleted {
		t.Fatalf("final state: got=%s want=%s", done.State, match.StateCompleted)
	}
	if done.EventsDone != done.EventsTotal {
		t.Fatalf("moments resolved: got=%d want=%d", done.EventsDone, done.EventsTotal)
	}
	if len(prompter.questions) == 0 {
		t.Fatal("human was never prompted")
	}

	settled, found, err := w.fixtures.GetByID(ctx, item.ID)
	if err != nil || !found {
		t.Fatalf("fixture lookup: found=%v err=%v", found, err)
	}
	if !settled.Played || settled.Playable {
		t.Fatalf("fixture not settled: %+v", settled)
	}
	if *settled.HomeScore != done.HomeScore || *settled.AwayScore != done.AwayScore {
		t.Fatalf("persisted score %d-%d differs from run %d-%d",
			*settled.HomeScore, *settled.AwayScore, done.HomeScore, done.AwayScore)
	}

	// The run row is released at full time.
	if _, stillThere, _ := w.matches.GetByFixture(ctx, item.ID); stillThere {
		t.Fatal("active match row not released")
	}

	// Season aggregates folded exactly once, rating inside bounds.
	updated, _, err := w.players.GetByID(ctx, human.ID)
	if err != nil {
		t.Fatalf("player lookup: %v", err)
	}
	if updated.SeasonApps != 1 {
		t.Fatalf("season apps: got=%d want=1", updated.SeasonApps)
	}
	if updated.SeasonRating < 0 || updated.SeasonRating > 10 {
		t.Fatalf("season rating out of range: %f", updated.SeasonRating)
	}

	// Both tables advanced by one played game.
	for _, teamID := range []string{"leeds", "sunderland"} {
		club, _, err := w.teams.GetByID(ctx, teamID)
		if err != nil {
			t.Fatalf("team lookup: %v", err)
		}
		if club.Played != 1 {
			t.Fatalf("team %s played: got=%d want=1", teamID, club.Played)
		}
	}
}

func TestMatchService_Run_HalftimeSummaryAlwaysFires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	w.addHuman("u1", "leeds", "FWD", 70)
	item := playableFixture(t, w, "leeds", "sunderland")

	// Both key moments land in the first half, minutes 10 and 20.
	roller := &scriptRoller{ints: []int{9, 19}}
	notifier := &recordingNotifier{}
	service := NewMatchService(
		w.fixtures, w.matches, w.players, w.teams,
		&scriptPrompter{}, notifier, &seqIDs{prefix: "m"}, roller,
		MatchConfig{MinEvents: 2, MaxEvents: 2}, logging.NewNop())

	run, err := service.Start(ctx, "u1", item.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	done, err := service.Run(ctx, run.ID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if done.State != match.StateCompleted {
		t.Fatalf("final state: got=%s want=%s", done.State, match.StateCompleted)
	}

	halftimes := 0
	for _, msg := range notifier.messages {
		if strings.Contains(msg, "Halftime:") {
			halftimes++
		}
	}
	if halftimes != 1 {
		t.Fatalf("halftime summaries: got=%d want=1, messages=%v", halftimes, notifier.messages)
	}
}

func TestMatchService_Run_ChosenActionIsHonored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	w.addHuman("u1", "leeds", "FWD", 70)
	w.addHuman("u2", "sunderland", "FWD", 68)
	item := playableFixture(t, w, "leeds", "sunderland")

	prompter := &scriptPrompter{answer: "Shoot"}
	service := newMatchService(w, prompter, dice.NewSeeded(7))

	run, err := service.Start(ctx, "u1", item.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.Run(ctx, run.ID); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(prompter.questions) == 0 {
		t.Fatal("human was never prompted")
	}
}

func TestMatchService_RatingStaysClamped(t *testing.T) {
	t.Parallel()

	service := newMatchService(newWorld(), &scriptPrompter{}, nil)
	spec, _ := match.SpecFor(match.ActionShoot)

	high := &match.Participant{Rating: 9.9}
	service.applyRatingDelta(high, spec, outcome{success: true, goal: true, critSuccess: true})
	if high.Rating > 10 {
		t.Fatalf("rating above cap: %f", high.Rating)
	}

	low := &match.Participant{Rating: 0.1}
	service.applyRatingDelta(low, spec, outcome{critFailure: true})
	if low.Rating < 0 {
		t.Fatalf("rating below floor: %f", low.Rating)
	}
}

func TestMatchService_ResolveCriticalsOverrideArithmetic(t *testing.T) {
	t.Parallel()

	w := newWorld()
	spec, _ := match.SpecFor(match.ActionShoot)
	striker := w.addHuman("u1", "leeds", "FWD", 10)
	keeper := w.addHuman("u2", "sunderland", "DEF", 99)

	// Natural 20 beats even a massive stat gap; natural 1 loses despite one.
	service := newMatchService(w, &scriptPrompter{}, &scriptRoller{rolls: []int{20, 19}})
	got := service.resolve(spec, striker, 0, keeper, true)
	if !got.success || !got.critSuccess || !got.goal {
		t.Fatalf("natural 20: %+v", got)
	}

	service = newMatchService(w, &scriptPrompter{}, &scriptRoller{rolls: []int{1, 2}})
	striker.Attributes.Shooting = 99
	got = service.resolve(spec, striker, 0, keeper, true)
	if got.success || !got.critFailure {
		t.Fatalf("natural 1: %+v", got)
	}
}
