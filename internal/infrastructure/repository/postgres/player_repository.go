package postgres

import (
	"context"
	"fmt"

	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/jmoiron/sqlx"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	var row playerModel
	if err := r.db.GetContext(ctx, &row, query, playerID); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player: %w", err)
	}

	return playerFromModel(row), true, nil
}

func (r *PlayerRepository) GetByUserID(ctx context.Context, userID string) (player.Player, bool, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE user_id = $1`

	var row playerModel
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by user: %w", err)
	}

	return playerFromModel(row), true, nil
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE team_id = $1 AND NOT retired ORDER BY id`

	var rows []playerModel
	if err := r.db.SelectContext(ctx, &rows, query, teamID); err != nil {
		return nil, fmt.Errorf("list players by team: %w", err)
	}

	return playersFromModels(rows), nil
}

func (r *PlayerRepository) ListActive(ctx context.Context) ([]player.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE NOT retired ORDER BY id`

	var rows []playerModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active players: %w", err)
	}

	return playersFromModels(rows), nil
}

func (r *PlayerRepository) ListRetiredBefore(ctx context.Context, season int) ([]player.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE retired AND retired_in_season > 0 AND retired_in_season <= $1 ORDER BY id`

	var rows []playerModel
	if err := r.db.SelectContext(ctx, &rows, query, season); err != nil {
		return nil, fmt.Errorf("list retired players: %w", err)
	}

	return playersFromModels(rows), nil
}

func (r *PlayerRepository) Insert(ctx context.Context, item player.Player) error {
	const query = `
INSERT INTO players (id, user_id, name, position, team_id, league_id,
    pace, shooting, passing, dribbling, defending, physical,
    overall, potential, form, morale, age, wage, contract_years,
    retired, retired_in_season, last_transfer_window,
    season_apps, season_goals, season_assists, season_rating)
VALUES (:id, :user_id, :name, :position, :team_id, :league_id,
    :pace, :shooting, :passing, :dribbling, :defending, :physical,
    :overall, :potential, :form, :morale, :age, :wage, :contract_years,
    :retired, :retired_in_season, :last_transfer_window,
    :season_apps, :season_goals, :season_assists, :season_rating)`

	if _, err := r.db.NamedExecContext(ctx, query, playerToModel(item)); err != nil {
		return fmt.Errorf("insert player: %w", err)
	}

	return nil
}

func (r *PlayerRepository) Update(ctx context.Context, item player.Player) error {
	const query = `
UPDATE players
SET user_id = :user_id,
    name = :name,
    position = :position,
    team_id = :team_id,
    league_id = :league_id,
    pace = :pace,
    shooting = :shooting,
    passing = :passing,
    dribbling = :dribbling,
    defending = :defending,
    physical = :physical,
    overall = :overall,
    potential = :potential,
    form = :form,
    morale = :morale,
    age = :age,
    wage = :wage,
    contract_years = :contract_years,
    retired = :retired,
    retired_in_season = :retired_in_season,
    last_transfer_window = :last_transfer_window,
    season_apps = :season_apps,
    season_goals = :season_goals,
    season_assists = :season_assists,
    season_rating = :season_rating
WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, playerToModel(item))
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update player rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update player %s: no row", item.ID)
	}

	return nil
}

func (r *PlayerRepository) Delete(ctx context.Context, playerID string) error {
	const query = `DELETE FROM players WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, playerID); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}

	return nil
}

func playersFromModels(rows []playerModel) []player.Player {
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromModel(row))
	}
	return out
}
