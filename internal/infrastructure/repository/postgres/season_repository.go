package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldmarshal/career-league/internal/domain/season"
	"github.com/jmoiron/sqlx"
)

type seasonStateModel struct {
	SeasonID             int        `db:"season_id"`
	Started              bool       `db:"started"`
	Week                 int        `db:"week"`
	WindowOpen           bool       `db:"window_open"`
	WindowClosesAt       *time.Time `db:"window_closes_at"`
	NextMatchDay         *time.Time `db:"next_match_day"`
	TransferWindowActive bool       `db:"transfer_window_active"`
	Version              int        `db:"version"`
}

// SeasonRepository persists the singleton game clock row. The table is
// keyed by a constant so a second Create always conflicts.
type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) Get(ctx context.Context) (season.State, bool, error) {
	const query = `
SELECT season_id, started, week, window_open, window_closes_at, next_match_day, transfer_window_active, version
FROM season_state
WHERE singleton = TRUE`

	var row seasonStateModel
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if isNotFound(err) {
			return season.State{}, false, nil
		}
		return season.State{}, false, fmt.Errorf("get season state: %w", err)
	}

	return seasonStateFromModel(row), true, nil
}

func (r *SeasonRepository) Create(ctx context.Context, state season.State) error {
	const query = `
INSERT INTO season_state (singleton, season_id, started, week, window_open, window_closes_at, next_match_day, transfer_window_active, version)
VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, 1)`

	if _, err := r.db.ExecContext(ctx, query,
		state.SeasonID,
		state.Started,
		state.Week,
		state.WindowOpen,
		state.WindowClosesAt,
		state.NextMatchDay,
		state.TransferWindowActive,
	); err != nil {
		return fmt.Errorf("create season state: %w", err)
	}

	return nil
}

func (r *SeasonRepository) Update(ctx context.Context, state season.State) (season.State, error) {
	const query = `
UPDATE season_state
SET season_id = $1,
    started = $2,
    week = $3,
    window_open = $4,
    window_closes_at = $5,
    next_match_day = $6,
    transfer_window_active = $7,
    version = version + 1
WHERE singleton = TRUE
  AND version = $8
RETURNING season_id, started, week, window_open, window_closes_at, next_match_day, transfer_window_active, version`

	var row seasonStateModel
	err := r.db.GetContext(ctx, &row, query,
		state.SeasonID,
		state.Started,
		state.Week,
		state.WindowOpen,
		state.WindowClosesAt,
		state.NextMatchDay,
		state.TransferWindowActive,
		state.Version,
	)
	if err != nil {
		if isNotFound(err) {
			return season.State{}, season.ErrStaleState
		}
		return season.State{}, fmt.Errorf("update season state: %w", err)
	}

	return seasonStateFromModel(row), nil
}

func seasonStateFromModel(row seasonStateModel) season.State {
	return season.State{
		SeasonID:             row.SeasonID,
		Started:              row.Started,
		Week:                 row.Week,
		WindowOpen:           row.WindowOpen,
		WindowClosesAt:       row.WindowClosesAt,
		NextMatchDay:         row.NextMatchDay,
		TransferWindowActive: row.TransferWindowActive,
		Version:              row.Version,
	}
}
