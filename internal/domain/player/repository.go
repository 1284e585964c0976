package player

import "context"

// Repository exposes player read/update operations keyed by id.
type Repository interface {
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	GetByUserID(ctx context.Context, userID string) (Player, bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]Player, error)
	ListActive(ctx context.Context) ([]Player, error)
	ListRetiredBefore(ctx context.Context, season int) ([]Player, error)
	Insert(ctx context.Context, item Player) error
	Update(ctx context.Context, item Player) error
	Delete(ctx context.Context, playerID string) error
}
