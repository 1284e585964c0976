package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fieldmarshal/career-league/internal/domain/season"
)

type SeasonRepository struct {
	mu      sync.Mutex
	state   season.State
	created bool
}

func NewSeasonRepository() *SeasonRepository {
	return &SeasonRepository{}
}

func (r *SeasonRepository) Get(_ context.Context) (season.State, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state, r.created, nil
}

func (r *SeasonRepository) Create(_ context.Context, state season.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.created {
		return fmt.Errorf("season state already exists")
	}
	state.Version = 1
	r.state = state
	r.created = true
	return nil
}

func (r *SeasonRepository) Update(_ context.Context, state season.State) (season.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.created {
		return season.State{}, fmt.Errorf("season state does not exist")
	}
	if state.Version != r.state.Version {
		return season.State{}, season.ErrStaleState
	}
	state.Version++
	r.state = state
	return state, nil
}
