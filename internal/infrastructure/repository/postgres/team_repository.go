package postgres

import (
	"context"
	"fmt"

	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/jmoiron/sqlx"
)

type teamModel struct {
	ID           string `db:"id"`
	LeagueID     string `db:"league_id"`
	Name         string `db:"name"`
	Short        string `db:"short"`
	Tier         int    `db:"tier"`
	Played       int    `db:"played"`
	Won          int    `db:"won"`
	Drawn        int    `db:"drawn"`
	Lost         int    `db:"lost"`
	GoalsFor     int    `db:"goals_for"`
	GoalsAgainst int    `db:"goals_against"`
	Points       int    `db:"points"`
}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	const query = `
SELECT id, league_id, name, short, tier, played, won, drawn, lost, goals_for, goals_against, points
FROM teams
WHERE id = $1`

	var row teamModel
	if err := r.db.GetContext(ctx, &row, query, teamID); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team: %w", err)
	}

	return teamFromModel(row), true, nil
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID string) ([]team.Team, error) {
	const query = `
SELECT id, league_id, name, short, tier, played, won, drawn, lost, goals_for, goals_against, points
FROM teams
WHERE league_id = $1
ORDER BY id`

	var rows []teamModel
	if err := r.db.SelectContext(ctx, &rows, query, leagueID); err != nil {
		return nil, fmt.Errorf("list teams by league: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromModel(row))
	}

	return out, nil
}

func (r *TeamRepository) ListLeagues(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT league_id FROM teams ORDER BY league_id`

	var out []string
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return out, nil
}

func (r *TeamRepository) Update(ctx context.Context, item team.Team) error {
	const query = `
UPDATE teams
SET name = $2,
    short = $3,
    tier = $4,
    played = $5,
    won = $6,
    drawn = $7,
    lost = $8,
    goals_for = $9,
    goals_against = $10,
    points = $11
WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Short,
		item.Tier,
		item.Played,
		item.Won,
		item.Drawn,
		item.Lost,
		item.GoalsFor,
		item.GoalsAgainst,
		item.Points,
	)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update team rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update team %s: no row", item.ID)
	}

	return nil
}

func teamFromModel(row teamModel) team.Team {
	return team.Team{
		ID:           row.ID,
		LeagueID:     row.LeagueID,
		Name:         row.Name,
		Short:        row.Short,
		Tier:         row.Tier,
		Played:       row.Played,
		Won:          row.Won,
		Drawn:        row.Drawn,
		Lost:         row.Lost,
		GoalsFor:     row.GoalsFor,
		GoalsAgainst: row.GoalsAgainst,
		Points:       row.Points,
	}
}
