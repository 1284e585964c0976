package postgres

import (
	"context"
	"fmt"

	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/jmoiron/sqlx"
)

// Seed loads the starter clubs and NPC rosters. Existing rows win so a
// restart never clobbers accumulated league standings or careers.
func Seed(ctx context.Context, db *sqlx.DB, teams []team.Team, players []player.Player) error {
	const insertTeam = `
INSERT INTO teams (id, league_id, name, short, tier, played, won, drawn, lost, goals_for, goals_against, points)
VALUES (:id, :league_id, :name, :short, :tier, :played, :won, :drawn, :lost, :goals_for, :goals_against, :points)
ON CONFLICT (id) DO NOTHING`
	const insertPlayer = `
INSERT INTO players (` + playerColumns + `)
VALUES (:id, :user_id, :name, :position, :team_id, :league_id,
:pace, :shooting, :passing, :dribbling, :defending, :physical,
:overall, :potential, :form, :morale, :age, :wage, :contract_years,
:retired, :retired_in_season, :last_transfer_window,
:season_apps, :season_goals, :season_assists, :season_rating)
ON CONFLICT (id) DO NOTHING`

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, item := range teams {
		row := teamModel{
			ID:           item.ID,
			LeagueID:     item.LeagueID,
			Name:         item.Name,
			Short:        item.Short,
			Tier:         item.Tier,
			Played:       item.Played,
			Won:          item.Won,
			Drawn:        item.Drawn,
			Lost:         item.Lost,
			GoalsFor:     item.GoalsFor,
			GoalsAgainst: item.GoalsAgainst,
			Points:       item.Points,
		}
		if _, err := tx.NamedExecContext(ctx, insertTeam, row); err != nil {
			return fmt.Errorf("seed team %s: %w", item.ID, err)
		}
	}

	for _, item := range players {
		if _, err := tx.NamedExecContext(ctx, insertPlayer, playerToModel(item)); err != nil {
			return fmt.Errorf("seed player %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	return nil
}
