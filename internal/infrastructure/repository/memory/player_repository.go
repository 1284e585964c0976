package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fieldmarshal/career-league/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
}

func NewPlayerRepository(items []player.Player) *PlayerRepository {
	players := make(map[string]player.Player, len(items))
	for _, item := range items {
		players[item.ID] = item
	}
	return &PlayerRepository{players: players}
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.players[playerID]
	return item, ok, nil
}

func (r *PlayerRepository) GetByUserID(_ context.Context, userID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if userID == "" {
		return player.Player{}, false, nil
	}
	for _, item := range r.players {
		if item.UserID == userID {
			return item, true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r *PlayerRepository) ListByTeam(_ context.Context, teamID string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, 16)
	for _, item := range r.players {
		if item.TeamID == teamID && !item.Retired {
			out = append(out, item)
		}
	}
	sortPlayers(out)
	return out, nil
}

func (r *PlayerRepository) ListActive(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, item := range r.players {
		if !item.Retired {
			out = append(out, item)
		}
	}
	sortPlayers(out)
	return out, nil
}

func (r *PlayerRepository) ListRetiredBefore(_ context.Context, season int) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, 4)
	for _, item := range r.players {
		if item.Retired && item.RetiredInSeason > 0 && item.RetiredInSeason <= season {
			out = append(out, item)
		}
	}
	sortPlayers(out)
	return out, nil
}

func (r *PlayerRepository) Insert(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := item.Validate(); err != nil {
		return err
	}
	if _, exists := r.players[item.ID]; exists {
		return fmt.Errorf("player %s already exists", item.ID)
	}
	item.Attributes = item.Attributes.Clamp()
	r.players[item.ID] = item
	return nil
}

func (r *PlayerRepository) Update(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[item.ID]; !exists {
		return fmt.Errorf("player %s does not exist", item.ID)
	}
	item.Attributes = item.Attributes.Clamp()
	r.players[item.ID] = item
	return nil
}

func (r *PlayerRepository) Delete(_ context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.players, playerID)
	return nil
}

func sortPlayers(items []player.Player) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
