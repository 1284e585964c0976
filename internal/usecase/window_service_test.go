package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fieldmarshal/career-league/internal/domain/season"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

func newWindowService(w *world, cfg WindowConfig) *WindowService {
	return NewWindowService(
		w.seasons, w.fixtures, w.matches, w.players,
		w.scheduleService(), w.simulationService(),
		nil, nil, nil, cfg, logging.NewNop())
}

func TestWindowService_Tick_OpenPlayCloseAdvance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := newWindowService(w, WindowConfig{TotalWeeks: 14})

	if _, err := w.scheduleService().GenerateSeason(ctx, 1); err != nil {
		t.Fatalf("generate season: %v", err)
	}

	t0 := time.Date(2026, 9, 8, 19, 5, 0, 0, time.UTC)
	matchDay := t0.Add(-5 * time.Minute)
	if err := w.seasons.Create(ctx, season.State{
		SeasonID: 1, Started: true, Week: 1, NextMatchDay: &matchDay,
	}); err != nil {
		t.Fatalf("create season state: %v", err)
	}

	service.now = func() time.Time { return t0 }
	result, err := service.Tick(ctx)
	if err != nil {
		t.Fatalf("opening tick: %v", err)
	}
	if result.Action != tickActionOpened {
		t.Fatalf("opening tick action: got=%s want=%s", result.Action, tickActionOpened)
	}
	// 4 premier fixtures and 3 championship fixtures in week one.
	if result.FixturesOpened != 7 {
		t.Fatalf("fixtures opened: got=%d want=7", result.FixturesOpened)
	}

	state, _, err := w.seasons.Get(ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if !state.WindowOpen || state.WindowClosesAt == nil {
		t.Fatalf("window not open after opening tick: %+v", state)
	}

	// A second tick at the same instant must not double-open.
	result, err = service.Tick(ctx)
	if err != nil {
		t.Fatalf("repeat tick: %v", err)
	}
	if result.Action != tickActionNone {
		t.Fatalf("repeat tick action: got=%s want=%s", result.Action, tickActionNone)
	}

	// Past the deadline the window closes and every fixture auto-resolves.
	pastDeadline := state.WindowClosesAt.Add(10 * time.Minute)
	service.now = func() time.Time { return pastDeadline }
	result, err = service.Tick(ctx)
	if err != nil {
		t.Fatalf("closing tick: %v", err)
	}
	if result.Action != tickActionClosed {
		t.Fatalf("closing tick action: got=%s want=%s", result.Action, tickActionClosed)
	}
	if result.Simulated != 7 || result.SimFailed != 0 {
		t.Fatalf("simulated: got=%d failed=%d want 7/0", result.Simulated, result.SimFailed)
	}

	state, _, err = w.seasons.Get(ctx)
	if err != nil {
		t.Fatalf("get state after close: %v", err)
	}
	if state.WindowOpen {
		t.Fatal("window still open after closing tick")
	}
	if state.Week != 2 {
		t.Fatalf("week after close: got=%d want=2", state.Week)
	}
	if state.NextMatchDay == nil || !state.NextMatchDay.After(service.now()) {
		t.Fatalf("next match day not rescheduled: %v", state.NextMatchDay)
	}
	// Week 2 sits inside the default transfer week set.
	if !state.TransferWindowActive || !result.TransferOpened {
		t.Fatal("transfer window should open on entering week 2")
	}

	fixtures, err := w.fixtures.ListByWeek(ctx, 1, 1)
	if err != nil {
		t.Fatalf("list week 1: %v", err)
	}
	for _, item := range fixtures {
		if !item.Played || item.Playable {
			t.Fatalf("fixture %s not settled: played=%v playable=%v", item.ID, item.Played, item.Playable)
		}
		if item.HomeScore == nil || item.AwayScore == nil {
			t.Fatalf("fixture %s has no persisted score", item.ID)
		}
	}

	// And the same closed boundary never fires twice.
	result, err = service.Tick(ctx)
	if err != nil {
		t.Fatalf("post-close tick: %v", err)
	}
	if result.Action != tickActionNone {
		t.Fatalf("post-close tick action: got=%s want=%s", result.Action, tickActionNone)
	}
}

func TestWindowService_Tick_ToleranceSplitsOnTimeFromLateTriggers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := newWindowService(w, WindowConfig{TotalWeeks: 14, Tolerance: 10 * time.Minute})

	if _, err := w.scheduleService().GenerateSeason(ctx, 1); err != nil {
		t.Fatalf("generate season: %v", err)
	}

	t0 := time.Date(2026, 9, 8, 19, 5, 0, 0, time.UTC)
	matchDay := t0.Add(-5 * time.Minute)
	if err := w.seasons.Create(ctx, season.State{
		SeasonID: 1, Started: true, Week: 1, NextMatchDay: &matchDay,
	}); err != nil {
		t.Fatalf("create season state: %v", err)
	}

	// Five minutes past the match day is inside the tolerance.
	service.now = func() time.Time { return t0 }
	result, err := service.Tick(ctx)
	if err != nil {
		t.Fatalf("on-time tick: %v", err)
	}
	if result.Action != tickActionOpened || result.Late {
		t.Fatalf("on-time tick: action=%s late=%v, want %s/false", result.Action, result.Late, tickActionOpened)
	}

	// A close deadline missed by hours still closes, flagged as late.
	state, _, err := w.seasons.Get(ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	service.now = func() time.Time { return state.WindowClosesAt.Add(6 * time.Hour) }
	result, err = service.Tick(ctx)
	if err != nil {
		t.Fatalf("late closing tick: %v", err)
	}
	if result.Action != tickActionClosed || !result.Late {
		t.Fatalf("late closing tick: action=%s late=%v, want %s/true", result.Action, result.Late, tickActionClosed)
	}

	state, _, err = w.seasons.Get(ctx)
	if err != nil {
		t.Fatalf("get state after late close: %v", err)
	}
	if state.WindowOpen || state.Week != 2 {
		t.Fatalf("late close did not advance the clock: %+v", state)
	}
}

func TestWindowService_Tick_ClosingSoonWarnsHumans(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	notifier := &recordingNotifier{}
	service := NewWindowService(
		w.seasons, w.fixtures, w.matches, w.players,
		w.scheduleService(), w.simulationService(),
		nil, nil, notifier, WindowConfig{TotalWeeks: 14}, logging.NewNop())
	w.addHuman("u1", "leeds", "MID", 70)

	if _, err := w.scheduleService().GenerateSeason(ctx, 1); err != nil {
		t.Fatalf("generate season: %v", err)
	}
	if _, err := w.fixtures.MarkPlayable(ctx, 1, 1); err != nil {
		t.Fatalf("mark playable: %v", err)
	}

	t0 := time.Date(2026, 9, 8, 19, 0, 0, 0, time.UTC)
	closesAt := t0.Add(30 * time.Minute)
	if err := w.seasons.Create(ctx, season.State{
		SeasonID: 1, Started: true, Week: 1, WindowOpen: true, WindowClosesAt: &closesAt,
	}); err != nil {
		t.Fatalf("create season state: %v", err)
	}

	service.now = func() time.Time { return t0 }
	result, err := service.Tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if result.Action != tickActionWarned {
		t.Fatalf("tick action: got=%s want=%s", result.Action, tickActionWarned)
	}

	warned := false
	for _, msg := range notifier.messages {
		if msg == "user:u1: Your week 1 fixture closes soon: play it or it will be simulated." {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("human was not warned, messages: %v", notifier.messages)
	}
}

func TestWindowService_Tick_SeasonRollover(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := newWindowService(w, WindowConfig{TotalWeeks: 1})

	if _, err := w.scheduleService().GenerateSeason(ctx, 1); err != nil {
		t.Fatalf("generate season: %v", err)
	}
	if _, err := w.fixtures.MarkPlayable(ctx, 1, 1); err != nil {
		t.Fatalf("mark playable: %v", err)
	}

	t0 := time.Date(2026, 9, 8, 19, 0, 0, 0, time.UTC)
	closesAt := t0.Add(-time.Minute)
	if err := w.seasons.Create(ctx, season.State{
		SeasonID: 1, Started: true, Week: 1, WindowOpen: true, WindowClosesAt: &closesAt,
	}); err != nil {
		t.Fatalf("create season state: %v", err)
	}

	service.now = func() time.Time { return t0 }
	result, err := service.Tick(ctx)
	if err != nil {
		t.Fatalf("rollover tick: %v", err)
	}
	if !result.SeasonEnded {
		t.Fatal("season did not end after final week")
	}

	state, _, err := w.seasons.Get(ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.SeasonID != 2 || state.Week != 1 {
		t.Fatalf("rollover state: season=%d week=%d, want 2/1", state.SeasonID, state.Week)
	}

	// Fresh fixtures exist for the new season.
	count, err := w.fixtures.CountBySeason(ctx, "eng-premier", 2)
	if err != nil {
		t.Fatalf("count season 2 fixtures: %v", err)
	}
	if count != 8*7 {
		t.Fatalf("season 2 premier fixtures: got=%d want=%d", count, 8*7)
	}

	// Tables reset to zero.
	table, err := w.teams.ListByLeague(ctx, "eng-premier")
	if err != nil {
		t.Fatalf("list premier: %v", err)
	}
	for _, club := range table {
		if club.Played != 0 || club.Points != 0 {
			t.Fatalf("club %s table not reset: %+v", club.ID, club)
		}
	}
}
