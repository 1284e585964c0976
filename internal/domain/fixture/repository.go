package fixture

import (
	"context"
	"errors"
)

// ErrAlreadyPlayed signals a second result write for the same fixture.
var ErrAlreadyPlayed = errors.New("fixture already played")

type Repository interface {
	GetByID(ctx context.Context, fixtureID string) (Fixture, bool, error)
	ListByWeek(ctx context.Context, season, week int) ([]Fixture, error)
	CountBySeason(ctx context.Context, leagueID string, season int) (int, error)
	InsertBatch(ctx context.Context, items []Fixture) error
	// MarkPlayable flips playable=true on every unplayed fixture of the week.
	MarkPlayable(ctx context.Context, season, week int) (int, error)
	// RecordResult persists the final score exactly once: it sets both
	// scores, played=true and playable=false, and returns ErrAlreadyPlayed
	// when the fixture has a result.
	RecordResult(ctx context.Context, fixtureID string, homeScore, awayScore int) error
}
