package team

import "context"

type Repository interface {
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Team, error)
	ListLeagues(ctx context.Context) ([]string, error)
	Update(ctx context.Context, item Team) error
}
