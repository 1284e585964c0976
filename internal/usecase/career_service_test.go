package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/platform/dice"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

func newCareerService(w *world, roller dice.Roller) *CareerService {
	return NewCareerService(
		w.seasons, w.players, w.teams, w.scheduleService(),
		&seqIDs{prefix: "pl"}, roller, CareerConfig{}, logging.NewNop())
}

func TestCareerService_CreateCareer_BootsSeasonAndFixtures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := newCareerService(w, dice.NewSeeded(1))

	rookie, err := service.CreateCareer(ctx, "u1", "Jamie Vane", player.PositionForward)
	if err != nil {
		t.Fatalf("create career: %v", err)
	}
	if rookie.Age != 18 {
		t.Fatalf("starting age: got=%d want=18", rookie.Age)
	}
	if rookie.LeagueID != "eng-championship" {
		t.Fatalf("starting league: got=%s", rookie.LeagueID)
	}
	if rookie.Potential <= rookie.Overall {
		t.Fatalf("potential %d not above overall %d", rookie.Potential, rookie.Overall)
	}

	state, exists, err := w.seasons.Get(ctx)
	if err != nil || !exists {
		t.Fatalf("season state after first career: exists=%v err=%v", exists, err)
	}
	if !state.Started || state.Week != 1 || state.SeasonID != 1 {
		t.Fatalf("bootstrapped state: %+v", state)
	}
	if state.NextMatchDay == nil {
		t.Fatal("no first match day scheduled")
	}

	count, err := w.fixtures.CountBySeason(ctx, "eng-championship", 1)
	if err != nil {
		t.Fatalf("count fixtures: %v", err)
	}
	if count != 6*5 {
		t.Fatalf("opening fixtures: got=%d want=%d", count, 6*5)
	}

	// One career per user.
	if _, err := service.CreateCareer(ctx, "u1", "Jamie Again", player.PositionMidfielder); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate career: got=%v want ErrConflict", err)
	}
}

func TestCareerService_CreateCareer_RejectsBadPosition(t *testing.T) {
	t.Parallel()

	w := newWorld()
	service := newCareerService(w, nil)
	if _, err := service.CreateCareer(context.Background(), "u1", "Nobody", player.Position("ST")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad position: got=%v want ErrInvalidInput", err)
	}
}

func TestCareerService_CreateCareer_SpreadsAcrossClubs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := newCareerService(w, dice.NewSeeded(8))

	first, err := service.CreateCareer(ctx, "u1", "First Signing", player.PositionMidfielder)
	if err != nil {
		t.Fatalf("first career: %v", err)
	}
	second, err := service.CreateCareer(ctx, "u2", "Second Signing", player.PositionMidfielder)
	if err != nil {
		t.Fatalf("second career: %v", err)
	}
	if first.TeamID == second.TeamID {
		t.Fatalf("both careers signed to %s", first.TeamID)
	}
}

func TestCareerService_Train_ImprovesWithinBounds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := newCareerService(w, dice.NewSeeded(15))

	rookie, err := service.CreateCareer(ctx, "u1", "Jamie Vane", player.PositionForward)
	if err != nil {
		t.Fatalf("create career: %v", err)
	}

	before := rookie.Attributes.Shooting
	trained, err := service.Train(ctx, "u1", player.StatShooting)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if trained.Attributes.Shooting <= before {
		t.Fatalf("shooting did not improve: before=%d after=%d", before, trained.Attributes.Shooting)
	}
	if trained.Attributes.Shooting > player.AttributeMax {
		t.Fatalf("shooting above cap: %d", trained.Attributes.Shooting)
	}
	if trained.Overall != trained.Attributes.Overall() {
		t.Fatalf("overall not recomputed: %d vs %d", trained.Overall, trained.Attributes.Overall())
	}
}

func TestCareerService_Train_StopsAtPotential(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := newCareerService(w, dice.NewSeeded(21))

	rookie, err := service.CreateCareer(ctx, "u1", "Capped Out", player.PositionForward)
	if err != nil {
		t.Fatalf("create career: %v", err)
	}
	rookie.Potential = rookie.Overall
	if err := w.players.Update(ctx, rookie); err != nil {
		t.Fatalf("update player: %v", err)
	}

	trained, err := service.Train(ctx, "u1", player.StatPace)
	if err != nil {
		t.Fatalf("train at potential: %v", err)
	}
	if trained.Attributes.Pace != rookie.Attributes.Pace {
		t.Fatalf("training past potential changed pace: %d vs %d",
			trained.Attributes.Pace, rookie.Attributes.Pace)
	}
}

func TestCareerService_Train_UnknownStat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	service := newCareerService(w, dice.NewSeeded(30))

	if _, err := service.CreateCareer(ctx, "u1", "Jamie Vane", player.PositionForward); err != nil {
		t.Fatalf("create career: %v", err)
	}
	if _, err := service.Train(ctx, "u1", player.StatKind("charisma")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown stat: got=%v want ErrInvalidInput", err)
	}
}
