package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldmarshal/career-league/internal/domain/season"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

func newTeamService(w *world) *TeamService {
	return NewTeamService(w.seasons, w.teams, w.fixtures, logging.NewNop())
}

func TestTeamService_Table_Ordering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := newTeamService(w)

	// Arsenal: 1 win. Chelsea: 1 win with a better goal difference.
	arsenal, _, _ := w.teams.GetByID(ctx, "arsenal")
	arsenal.ApplyResult(1, 0)
	if err := w.teams.Update(ctx, arsenal); err != nil {
		t.Fatalf("update arsenal: %v", err)
	}
	chelsea, _, _ := w.teams.GetByID(ctx, "chelsea")
	chelsea.ApplyResult(3, 0)
	if err := w.teams.Update(ctx, chelsea); err != nil {
		t.Fatalf("update chelsea: %v", err)
	}

	table, err := service.Table(ctx, "eng-premier")
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if table[0].ID != "chelsea" || table[1].ID != "arsenal" {
		t.Fatalf("table order: got=%s,%s want=chelsea,arsenal", table[0].ID, table[1].ID)
	}
	if len(table) != 8 {
		t.Fatalf("table size: got=%d want=8", len(table))
	}
}

func TestTeamService_Table_UnknownLeague(t *testing.T) {
	t.Parallel()

	service := newTeamService(newWorld())
	if _, err := service.Table(context.Background(), "no-such-league"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown league: got=%v want ErrNotFound", err)
	}
}

func TestTeamService_WeekFixtures_DefaultsToCurrentWeek(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := newTeamService(w)

	if _, err := w.scheduleService().GenerateSeason(ctx, 1); err != nil {
		t.Fatalf("generate season: %v", err)
	}
	if err := w.seasons.Create(ctx, season.State{SeasonID: 1, Started: true, Week: 3}); err != nil {
		t.Fatalf("create state: %v", err)
	}

	fixtures, err := service.WeekFixtures(ctx, 0)
	if err != nil {
		t.Fatalf("week fixtures: %v", err)
	}
	if len(fixtures) == 0 {
		t.Fatal("no fixtures for current week")
	}
	for _, item := range fixtures {
		if item.Week != 3 {
			t.Fatalf("fixture %s in week %d, want 3", item.ID, item.Week)
		}
	}
}

func TestTeamService_Status_BeforeFirstCareer(t *testing.T) {
	t.Parallel()

	service := newTeamService(newWorld())
	state, err := service.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if state.Started {
		t.Fatal("unstarted install reports a started season")
	}
}
