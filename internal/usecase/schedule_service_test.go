package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/fieldmarshal/career-league/internal/infrastructure/repository/memory"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

func TestScheduleService_GenerateSeason_DoubleRoundRobin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := w.scheduleService()

	created, err := service.GenerateSeason(ctx, 1)
	if err != nil {
		t.Fatalf("generate season: %v", err)
	}
	// 8 teams and 6 teams: 8*7 + 6*5 pairings.
	if want := 8*7 + 6*5; created != want {
		t.Fatalf("unexpected fixture count: got=%d want=%d", created, want)
	}

	pairings := map[string]int{}
	for week := 1; week <= TotalWeeks(8); week++ {
		fixtures, err := w.fixtures.ListByWeek(ctx, 1, week)
		if err != nil {
			t.Fatalf("list week %d: %v", week, err)
		}
		for _, item := range fixtures {
			if item.LeagueID != memory.LeaguePremier {
				continue
			}
			pairings[item.HomeTeamID+"|"+item.AwayTeamID]++
		}
	}
	if len(pairings) != 8*7 {
		t.Fatalf("unexpected distinct pairings: got=%d want=%d", len(pairings), 8*7)
	}
	for key, count := range pairings {
		if count != 1 {
			t.Fatalf("pairing %s scheduled %d times", key, count)
		}
	}
}

func TestScheduleService_GenerateSeason_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := w.scheduleService()

	if _, err := service.GenerateSeason(ctx, 1); err != nil {
		t.Fatalf("first generation: %v", err)
	}
	created, err := service.GenerateSeason(ctx, 1)
	if err != nil {
		t.Fatalf("second generation: %v", err)
	}
	if created != 0 {
		t.Fatalf("regeneration created %d fixtures, want 0", created)
	}
}

func TestScheduleService_GenerateSeason_OddTeamCountUsesBye(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teams := memory.NewTeamRepository([]team.Team{
		{ID: "alpha", LeagueID: "tiny", Name: "Alpha", Tier: 2},
		{ID: "bravo", LeagueID: "tiny", Name: "Bravo", Tier: 2},
		{ID: "charlie", LeagueID: "tiny", Name: "Charlie", Tier: 2},
	})
	fixtures := memory.NewFixtureRepository()
	service := NewScheduleService(teams, fixtures, &seqIDs{prefix: "fx"}, ScheduleConfig{}, logging.NewNop())

	created, err := service.GenerateSeason(ctx, 1)
	if err != nil {
		t.Fatalf("generate season: %v", err)
	}
	if want := 3 * 2; created != want {
		t.Fatalf("unexpected fixture count: got=%d want=%d", created, want)
	}

	// Every round has exactly one game and one team resting.
	for week := 1; week <= TotalWeeks(3); week++ {
		list, err := fixtures.ListByWeek(ctx, 1, week)
		if err != nil {
			t.Fatalf("list week %d: %v", week, err)
		}
		if len(list) != 1 {
			t.Fatalf("week %d has %d fixtures, want 1", week, len(list))
		}
	}
}

func TestScheduleService_NextMatchDay(t *testing.T) {
	t.Parallel()

	w := newWorld()
	service := w.scheduleService()

	// Wednesday morning rolls to Thursday evening.
	after := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	got := service.NextMatchDay(after)
	want := time.Date(2026, 9, 3, 19, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("next match day: got=%s want=%s", got, want)
	}

	// Saturday at kickoff hour rolls past itself to Tuesday.
	after = time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)
	got = service.NextMatchDay(after)
	want = time.Date(2026, 9, 8, 19, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("next match day after kickoff: got=%s want=%s", got, want)
	}
}
