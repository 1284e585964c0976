package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fieldmarshal/career-league/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	fixtures map[string]fixture.Fixture
}

func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{fixtures: make(map[string]fixture.Fixture)}
}

func (r *FixtureRepository) GetByID(_ context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.fixtures[fixtureID]
	return item, ok, nil
}

func (r *FixtureRepository) ListByWeek(_ context.Context, season, week int) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, 8)
	for _, item := range r.fixtures {
		if item.Season == season && item.Week == week {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FixtureRepository) CountBySeason(_ context.Context, leagueID string, season int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, item := range r.fixtures {
		if item.LeagueID == leagueID && item.Season == season {
			count++
		}
	}
	return count, nil
}

func (r *FixtureRepository) InsertBatch(_ context.Context, items []fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		r.fixtures[item.ID] = item
	}
	return nil
}

func (r *FixtureRepository) MarkPlayable(_ context.Context, season, week int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for id, item := range r.fixtures {
		if item.Season == season && item.Week == week && !item.Played && !item.Playable {
			item.Playable = true
			r.fixtures[id] = item
			changed++
		}
	}
	return changed, nil
}

func (r *FixtureRepository) RecordResult(_ context.Context, fixtureID string, homeScore, awayScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.fixtures[fixtureID]
	if !ok {
		return fmt.Errorf("fixture %s does not exist", fixtureID)
	}
	if item.Played {
		return fixture.ErrAlreadyPlayed
	}

	hs, as := homeScore, awayScore
	item.HomeScore = &hs
	item.AwayScore = &as
	item.Played = true
	item.Playable = false
	r.fixtures[fixtureID] = item
	return nil
}
