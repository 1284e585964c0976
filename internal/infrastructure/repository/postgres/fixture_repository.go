package postgres

import (
	"context"
	"fmt"

	"github.com/fieldmarshal/career-league/internal/domain/fixture"
	"github.com/jmoiron/sqlx"
)

type fixtureModel struct {
	ID         string `db:"id"`
	LeagueID   string `db:"league_id"`
	Season     int    `db:"season"`
	Week       int    `db:"week"`
	HomeTeamID string `db:"home_team_id"`
	AwayTeamID string `db:"away_team_id"`
	Played     bool   `db:"played"`
	Playable   bool   `db:"playable"`
	HomeScore  *int   `db:"home_score"`
	AwayScore  *int   `db:"away_score"`
}

const fixtureColumns = `id, league_id, season, week, home_team_id, away_team_id, played, playable, home_score, away_score`

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	const query = `
SELECT ` + fixtureColumns + `
FROM fixtures
WHERE id = $1`

	var row fixtureModel
	if err := r.db.GetContext(ctx, &row, query, fixtureID); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("get fixture: %w", err)
	}

	return fixtureFromModel(row), true, nil
}

func (r *FixtureRepository) ListByWeek(ctx context.Context, season, week int) ([]fixture.Fixture, error) {
	const query = `
SELECT ` + fixtureColumns + `
FROM fixtures
WHERE season = $1
  AND week = $2
ORDER BY id`

	var rows []fixtureModel
	if err := r.db.SelectContext(ctx, &rows, query, season, week); err != nil {
		return nil, fmt.Errorf("list fixtures by week: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixtureFromModel(row))
	}

	return out, nil
}

func (r *FixtureRepository) CountBySeason(ctx context.Context, leagueID string, season int) (int, error) {
	const query = `
SELECT COUNT(*)
FROM fixtures
WHERE league_id = $1
  AND season = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, leagueID, season); err != nil {
		return 0, fmt.Errorf("count fixtures by season: %w", err)
	}

	return count, nil
}

func (r *FixtureRepository) InsertBatch(ctx context.Context, items []fixture.Fixture) error {
	if len(items) == 0 {
		return nil
	}

	const query = `
INSERT INTO fixtures (` + fixtureColumns + `)
VALUES (:id, :league_id, :season, :week, :home_team_id, :away_team_id, :played, :playable, :home_score, :away_score)`

	rows := make([]fixtureModel, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		rows = append(rows, fixtureToModel(item))
	}

	if _, err := r.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("insert fixtures: %w", err)
	}

	return nil
}

func (r *FixtureRepository) MarkPlayable(ctx context.Context, season, week int) (int, error) {
	const query = `
UPDATE fixtures
SET playable = TRUE
WHERE season = $1
  AND week = $2
  AND NOT played
  AND NOT playable`

	result, err := r.db.ExecContext(ctx, query, season, week)
	if err != nil {
		return 0, fmt.Errorf("mark fixtures playable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark fixtures playable rows affected: %w", err)
	}

	return int(affected), nil
}

func (r *FixtureRepository) RecordResult(ctx context.Context, fixtureID string, homeScore, awayScore int) error {
	const query = `
UPDATE fixtures
SET played = TRUE,
    playable = FALSE,
    home_score = $2,
    away_score = $3
WHERE id = $1
  AND NOT played`

	result, err := r.db.ExecContext(ctx, query, fixtureID, homeScore, awayScore)
	if err != nil {
		return fmt.Errorf("record fixture result: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record fixture result rows affected: %w", err)
	}
	if affected == 0 {
		// Zero rows means either a missing fixture or a second result write.
		_, found, err := r.GetByID(ctx, fixtureID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("fixture %s does not exist", fixtureID)
		}
		return fixture.ErrAlreadyPlayed
	}

	return nil
}

func fixtureToModel(item fixture.Fixture) fixtureModel {
	return fixtureModel{
		ID:         item.ID,
		LeagueID:   item.LeagueID,
		Season:     item.Season,
		Week:       item.Week,
		HomeTeamID: item.HomeTeamID,
		AwayTeamID: item.AwayTeamID,
		Played:     item.Played,
		Playable:   item.Playable,
		HomeScore:  item.HomeScore,
		AwayScore:  item.AwayScore,
	}
}

func fixtureFromModel(row fixtureModel) fixture.Fixture {
	return fixture.Fixture{
		ID:         row.ID,
		LeagueID:   row.LeagueID,
		Season:     row.Season,
		Week:       row.Week,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		Played:     row.Played,
		Playable:   row.Playable,
		HomeScore:  row.HomeScore,
		AwayScore:  row.AwayScore,
	}
}
