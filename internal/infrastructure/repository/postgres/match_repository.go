package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldmarshal/career-league/internal/domain/match"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type activeMatchModel struct {
	ID          string `db:"id"`
	FixtureID   string `db:"fixture_id"`
	HomeTeamID  string `db:"home_team_id"`
	AwayTeamID  string `db:"away_team_id"`
	HomeScore   int    `db:"home_score"`
	AwayScore   int    `db:"away_score"`
	Minute      int    `db:"minute"`
	EventsDone  int    `db:"events_done"`
	EventsTotal int    `db:"events_total"`
	State       string `db:"state"`
}

type participantModel struct {
	MatchID      string  `db:"match_id"`
	UserID       string  `db:"user_id"`
	PlayerID     string  `db:"player_id"`
	TeamID       string  `db:"team_id"`
	Rating       float64 `db:"rating"`
	ActionsTaken int     `db:"actions_taken"`
	Goals        int     `db:"goals"`
	Assists      int     `db:"assists"`
}

const activeMatchColumns = `id, fixture_id, home_team_id, away_team_id, home_score, away_score, minute, events_done, events_total, state`

const participantColumns = `match_id, user_id, player_id, team_id, rating, actions_taken, goals, assists`

// MatchRepository stores interactive run state. A partial unique index on
// fixture_id over non-completed rows backs the one-live-run invariant.
type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.ActiveMatch, bool, error) {
	const query = `
SELECT ` + activeMatchColumns + `
FROM active_matches
WHERE id = $1`

	var row activeMatchModel
	if err := r.db.GetContext(ctx, &row, query, matchID); err != nil {
		if isNotFound(err) {
			return match.ActiveMatch{}, false, nil
		}
		return match.ActiveMatch{}, false, fmt.Errorf("get match: %w", err)
	}

	return activeMatchFromModel(row), true, nil
}

func (r *MatchRepository) GetByFixture(ctx context.Context, fixtureID string) (match.ActiveMatch, bool, error) {
	const query = `
SELECT ` + activeMatchColumns + `
FROM active_matches
WHERE fixture_id = $1
ORDER BY CASE WHEN state != 'completed' THEN 0 ELSE 1 END, id DESC
LIMIT 1`

	var row activeMatchModel
	if err := r.db.GetContext(ctx, &row, query, fixtureID); err != nil {
		if isNotFound(err) {
			return match.ActiveMatch{}, false, nil
		}
		return match.ActiveMatch{}, false, fmt.Errorf("get match by fixture: %w", err)
	}

	return activeMatchFromModel(row), true, nil
}

func (r *MatchRepository) Insert(ctx context.Context, item match.ActiveMatch) error {
	const query = `
INSERT INTO active_matches (` + activeMatchColumns + `)
VALUES (:id, :fixture_id, :home_team_id, :away_team_id, :home_score, :away_score, :minute, :events_done, :events_total, :state)`

	if err := item.Validate(); err != nil {
		return err
	}

	if _, err := r.db.NamedExecContext(ctx, query, activeMatchToModel(item)); err != nil {
		if isUniqueViolation(err) {
			return match.ErrFixtureBusy
		}
		return fmt.Errorf("insert match: %w", err)
	}

	return nil
}

func (r *MatchRepository) Update(ctx context.Context, item match.ActiveMatch) error {
	const query = `
UPDATE active_matches
SET home_score = :home_score,
    away_score = :away_score,
    minute = :minute,
    events_done = :events_done,
    events_total = :events_total,
    state = :state
WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, activeMatchToModel(item))
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("match %s does not exist", item.ID)
	}

	return nil
}

func (r *MatchRepository) Delete(ctx context.Context, matchID string) error {
	const deleteParticipants = `DELETE FROM match_participants WHERE match_id = $1`
	const deleteMatch = `DELETE FROM active_matches WHERE id = $1`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete match begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, deleteParticipants, matchID); err != nil {
		return fmt.Errorf("delete match participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteMatch, matchID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete match commit: %w", err)
	}

	return nil
}

func (r *MatchRepository) AddParticipant(ctx context.Context, item match.Participant) error {
	const query = `
INSERT INTO match_participants (` + participantColumns + `)
VALUES (:match_id, :user_id, :player_id, :team_id, :rating, :actions_taken, :goals, :assists)`

	if _, err := r.db.NamedExecContext(ctx, query, participantToModel(item)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s already joined match %s", item.UserID, item.MatchID)
		}
		return fmt.Errorf("add match participant: %w", err)
	}

	return nil
}

func (r *MatchRepository) ListParticipants(ctx context.Context, matchID string) ([]match.Participant, error) {
	const query = `
SELECT ` + participantColumns + `
FROM match_participants
WHERE match_id = $1
ORDER BY user_id`

	var rows []participantModel
	if err := r.db.SelectContext(ctx, &rows, query, matchID); err != nil {
		return nil, fmt.Errorf("list match participants: %w", err)
	}

	out := make([]match.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromModel(row))
	}

	return out, nil
}

func (r *MatchRepository) UpdateParticipant(ctx context.Context, item match.Participant) error {
	const query = `
UPDATE match_participants
SET rating = :rating,
    actions_taken = :actions_taken,
    goals = :goals,
    assists = :assists
WHERE match_id = :match_id
  AND user_id = :user_id`

	result, err := r.db.NamedExecContext(ctx, query, participantToModel(item))
	if err != nil {
		return fmt.Errorf("update match participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match participant rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("participant %s not found in match %s", item.UserID, item.MatchID)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func activeMatchToModel(item match.ActiveMatch) activeMatchModel {
	return activeMatchModel{
		ID:          item.ID,
		FixtureID:   item.FixtureID,
		HomeTeamID:  item.HomeTeamID,
		AwayTeamID:  item.AwayTeamID,
		HomeScore:   item.HomeScore,
		AwayScore:   item.AwayScore,
		Minute:      item.Minute,
		EventsDone:  item.EventsDone,
		EventsTotal: item.EventsTotal,
		State:       string(item.State),
	}
}

func activeMatchFromModel(row activeMatchModel) match.ActiveMatch {
	return match.ActiveMatch{
		ID:          row.ID,
		FixtureID:   row.FixtureID,
		HomeTeamID:  row.HomeTeamID,
		AwayTeamID:  row.AwayTeamID,
		HomeScore:   row.HomeScore,
		AwayScore:   row.AwayScore,
		Minute:      row.Minute,
		EventsDone:  row.EventsDone,
		EventsTotal: row.EventsTotal,
		State:       match.MatchState(row.State),
	}
}

func participantToModel(item match.Participant) participantModel {
	return participantModel{
		MatchID:      item.MatchID,
		UserID:       item.UserID,
		PlayerID:     item.PlayerID,
		TeamID:       item.TeamID,
		Rating:       item.Rating,
		ActionsTaken: item.ActionsTaken,
		Goals:        item.Goals,
		Assists:      item.Assists,
	}
}

func participantFromModel(row participantModel) match.Participant {
	return match.Participant{
		MatchID:      row.MatchID,
		UserID:       row.UserID,
		PlayerID:     row.PlayerID,
		TeamID:       row.TeamID,
		Rating:       row.Rating,
		ActionsTaken: row.ActionsTaken,
		Goals:        row.Goals,
		Assists:      row.Assists,
	}
}
