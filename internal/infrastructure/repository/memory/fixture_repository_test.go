package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldmarshal/career-league/internal/domain/fixture"
)

func TestFixtureRepository_RecordResult_DistinguishesMissingFromReplay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewFixtureRepository()
	item := fixture.Fixture{
		ID: "fx-1", LeagueID: "eng-premier", Season: 1, Week: 1,
		HomeTeamID: "arsenal", AwayTeamID: "chelsea",
	}
	if err := repo.InsertBatch(ctx, []fixture.Fixture{item}); err != nil {
		t.Fatalf("insert fixture: %v", err)
	}

	// A missing row is its own condition, not a replay.
	if err := repo.RecordResult(ctx, "fx-missing", 1, 0); err == nil || errors.Is(err, fixture.ErrAlreadyPlayed) {
		t.Fatalf("missing fixture error: got=%v", err)
	}

	if err := repo.RecordResult(ctx, "fx-1", 2, 1); err != nil {
		t.Fatalf("record result: %v", err)
	}
	if err := repo.RecordResult(ctx, "fx-1", 0, 0); !errors.Is(err, fixture.ErrAlreadyPlayed) {
		t.Fatalf("second result write: got=%v want ErrAlreadyPlayed", err)
	}

	settled, found, err := repo.GetByID(ctx, "fx-1")
	if err != nil || !found {
		t.Fatalf("get fixture: found=%v err=%v", found, err)
	}
	if !settled.Played || settled.Playable || *settled.HomeScore != 2 || *settled.AwayScore != 1 {
		t.Fatalf("fixture after result: %+v", settled)
	}
}
