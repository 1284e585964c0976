package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fieldmarshal/career-league/internal/domain/match"
)

type MatchRepository struct {
	mu           sync.Mutex
	matches      map[string]match.ActiveMatch
	byFixture    map[string]string
	participants map[string][]match.Participant
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		matches:      make(map[string]match.ActiveMatch),
		byFixture:    make(map[string]string),
		participants: make(map[string][]match.Participant),
	}
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.ActiveMatch, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.matches[matchID]
	return item, ok, nil
}

func (r *MatchRepository) GetByFixture(_ context.Context, fixtureID string) (match.ActiveMatch, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matchID, ok := r.byFixture[fixtureID]
	if !ok {
		return match.ActiveMatch{}, false, nil
	}
	item, ok := r.matches[matchID]
	return item, ok, nil
}

func (r *MatchRepository) Insert(_ context.Context, item match.ActiveMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := item.Validate(); err != nil {
		return err
	}
	if existingID, ok := r.byFixture[item.FixtureID]; ok {
		if existing, found := r.matches[existingID]; found && existing.State != match.StateCompleted {
			return match.ErrFixtureBusy
		}
	}
	r.matches[item.ID] = item
	r.byFixture[item.FixtureID] = item.ID
	return nil
}

func (r *MatchRepository) Update(_ context.Context, item match.ActiveMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[item.ID]; !ok {
		return fmt.Errorf("match %s does not exist", item.ID)
	}
	r.matches[item.ID] = item
	return nil
}

func (r *MatchRepository) Delete(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.matches[matchID]
	if !ok {
		return nil
	}
	delete(r.matches, matchID)
	delete(r.participants, matchID)
	if r.byFixture[item.FixtureID] == matchID {
		delete(r.byFixture, item.FixtureID)
	}
	return nil
}

func (r *MatchRepository) AddParticipant(_ context.Context, item match.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[item.MatchID]; !ok {
		return fmt.Errorf("match %s does not exist", item.MatchID)
	}
	for _, existing := range r.participants[item.MatchID] {
		if existing.UserID == item.UserID {
			return fmt.Errorf("user %s already joined match %s", item.UserID, item.MatchID)
		}
	}
	r.participants[item.MatchID] = append(r.participants[item.MatchID], item)
	return nil
}

func (r *MatchRepository) ListParticipants(_ context.Context, matchID string) ([]match.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.participants[matchID]
	out := make([]match.Participant, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *MatchRepository) UpdateParticipant(_ context.Context, item match.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.participants[item.MatchID]
	for idx := range items {
		if items[idx].UserID == item.UserID {
			items[idx] = item
			return nil
		}
	}
	return fmt.Errorf("participant %s not found in match %s", item.UserID, item.MatchID)
}
