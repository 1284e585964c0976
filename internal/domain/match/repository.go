package match

import (
	"context"
	"errors"
)

// ErrFixtureBusy enforces the fixture uniqueness invariant: at most one
// concurrent interactive run per fixture.
var ErrFixtureBusy = errors.New("match already in progress for fixture")

type Repository interface {
	GetByID(ctx context.Context, matchID string) (ActiveMatch, bool, error)
	GetByFixture(ctx context.Context, fixtureID string) (ActiveMatch, bool, error)
	// Insert creates the run, returning ErrFixtureBusy when a non-completed
	// row already exists for the fixture.
	Insert(ctx context.Context, item ActiveMatch) error
	Update(ctx context.Context, item ActiveMatch) error
	Delete(ctx context.Context, matchID string) error

	AddParticipant(ctx context.Context, item Participant) error
	ListParticipants(ctx context.Context, matchID string) ([]Participant, error)
	UpdateParticipant(ctx context.Context, item Participant) error
}
