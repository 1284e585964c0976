package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fieldmarshal/career-league/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository(items []team.Team) *TeamRepository {
	teams := make(map[string]team.Team, len(items))
	for _, item := range items {
		teams[item.ID] = item
	}
	return &TeamRepository{teams: teams}
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	return item, ok, nil
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TeamRepository) ListLeagues(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0, 2)
	for _, item := range r.teams {
		if _, ok := seen[item.LeagueID]; ok {
			continue
		}
		seen[item.LeagueID] = struct{}{}
		out = append(out, item.LeagueID)
	}
	sort.Strings(out)
	return out, nil
}

func (r *TeamRepository) Update(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := item.Validate(); err != nil {
		return err
	}
	r.teams[item.ID] = item
	return nil
}
