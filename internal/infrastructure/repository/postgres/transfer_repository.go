package postgres

import (
	"context"
	"fmt"

	"github.com/fieldmarshal/career-league/internal/domain/transfer"
	"github.com/jmoiron/sqlx"
)

type offerModel struct {
	ID            string `db:"id"`
	UserID        string `db:"user_id"`
	TeamID        string `db:"team_id"`
	Wage          int64  `db:"wage"`
	ContractYears int    `db:"contract_years"`
	OfferWeek     int    `db:"offer_week"`
	ExpiresWeek   int    `db:"expires_week"`
	Status        string `db:"status"`
	PreviousWage  int64  `db:"previous_wage"`
}

type historyModel struct {
	ID         string `db:"id"`
	UserID     string `db:"user_id"`
	FromTeamID string `db:"from_team_id"`
	ToTeamID   string `db:"to_team_id"`
	Wage       int64  `db:"wage"`
	Season     int    `db:"season"`
	Week       int    `db:"week"`
	WindowID   int    `db:"window_id"`
}

const offerColumns = `id, user_id, team_id, wage, contract_years, offer_week, expires_week, status, previous_wage`

const historyColumns = `id, user_id, from_team_id, to_team_id, wage, season, week, window_id`

type TransferRepository struct {
	db *sqlx.DB
}

func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) GetOffer(ctx context.Context, offerID string) (transfer.Offer, bool, error) {
	const query = `
SELECT ` + offerColumns + `
FROM transfer_offers
WHERE id = $1`

	var row offerModel
	if err := r.db.GetContext(ctx, &row, query, offerID); err != nil {
		if isNotFound(err) {
			return transfer.Offer{}, false, nil
		}
		return transfer.Offer{}, false, fmt.Errorf("get transfer offer: %w", err)
	}

	return offerFromModel(row), true, nil
}

func (r *TransferRepository) ListPendingByUser(ctx context.Context, userID string) ([]transfer.Offer, error) {
	return r.listByUserAndStatus(ctx, userID, transfer.StatusPending)
}

func (r *TransferRepository) ListRejectedByUser(ctx context.Context, userID string) ([]transfer.Offer, error) {
	return r.listByUserAndStatus(ctx, userID, transfer.StatusRejected)
}

func (r *TransferRepository) listByUserAndStatus(ctx context.Context, userID string, status transfer.Status) ([]transfer.Offer, error) {
	const query = `
SELECT ` + offerColumns + `
FROM transfer_offers
WHERE user_id = $1
  AND status = $2
ORDER BY id`

	var rows []offerModel
	if err := r.db.SelectContext(ctx, &rows, query, userID, string(status)); err != nil {
		return nil, fmt.Errorf("list %s transfer offers: %w", status, err)
	}

	out := make([]transfer.Offer, 0, len(rows))
	for _, row := range rows {
		out = append(out, offerFromModel(row))
	}

	return out, nil
}

func (r *TransferRepository) InsertOffer(ctx context.Context, item transfer.Offer) error {
	const query = `
INSERT INTO transfer_offers (` + offerColumns + `)
VALUES (:id, :user_id, :team_id, :wage, :contract_years, :offer_week, :expires_week, :status, :previous_wage)`

	if err := item.Validate(); err != nil {
		return err
	}

	if _, err := r.db.NamedExecContext(ctx, query, offerToModel(item)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("offer %s already exists", item.ID)
		}
		return fmt.Errorf("insert transfer offer: %w", err)
	}

	return nil
}

func (r *TransferRepository) AcceptOffer(ctx context.Context, userID, offerID string) (transfer.Offer, error) {
	const accept = `
UPDATE transfer_offers
SET status = 'accepted'
WHERE id = $1
  AND user_id = $2
  AND status = 'pending'
RETURNING ` + offerColumns
	const rejectOthers = `
UPDATE transfer_offers
SET status = 'rejected'
WHERE user_id = $1
  AND id != $2
  AND status = 'pending'`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return transfer.Offer{}, fmt.Errorf("accept offer begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var row offerModel
	if err := tx.GetContext(ctx, &row, accept, offerID, userID); err != nil {
		if isNotFound(err) {
			return transfer.Offer{}, fmt.Errorf("offer %s is not pending for user %s", offerID, userID)
		}
		return transfer.Offer{}, fmt.Errorf("accept offer: %w", err)
	}

	if _, err := tx.ExecContext(ctx, rejectOthers, userID, offerID); err != nil {
		return transfer.Offer{}, fmt.Errorf("reject competing offers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return transfer.Offer{}, fmt.Errorf("accept offer commit: %w", err)
	}

	return offerFromModel(row), nil
}

func (r *TransferRepository) UpdateOfferStatus(ctx context.Context, offerID string, from, to transfer.Status) error {
	const query = `
UPDATE transfer_offers
SET status = $3
WHERE id = $1
  AND status = $2`

	result, err := r.db.ExecContext(ctx, query, offerID, string(from), string(to))
	if err != nil {
		return fmt.Errorf("update offer status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update offer status rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("offer %s is not %s", offerID, from)
	}

	return nil
}

func (r *TransferRepository) ExpirePending(ctx context.Context) (int, error) {
	const query = `
UPDATE transfer_offers
SET status = 'expired'
WHERE status = 'pending'`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("expire pending offers: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire pending offers rows affected: %w", err)
	}

	return int(affected), nil
}

func (r *TransferRepository) InsertHistory(ctx context.Context, item transfer.History) error {
	const query = `
INSERT INTO transfer_history (` + historyColumns + `)
VALUES (:id, :user_id, :from_team_id, :to_team_id, :wage, :season, :week, :window_id)`

	if _, err := r.db.NamedExecContext(ctx, query, historyToModel(item)); err != nil {
		return fmt.Errorf("insert transfer history: %w", err)
	}

	return nil
}

func (r *TransferRepository) ListHistoryByUser(ctx context.Context, userID string) ([]transfer.History, error) {
	const query = `
SELECT ` + historyColumns + `
FROM transfer_history
WHERE user_id = $1
ORDER BY season, week, id`

	var rows []historyModel
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list transfer history: %w", err)
	}

	out := make([]transfer.History, 0, len(rows))
	for _, row := range rows {
		out = append(out, historyFromModel(row))
	}

	return out, nil
}

func offerToModel(item transfer.Offer) offerModel {
	return offerModel{
		ID:            item.ID,
		UserID:        item.UserID,
		TeamID:        item.TeamID,
		Wage:          item.Wage,
		ContractYears: item.ContractYears,
		OfferWeek:     item.OfferWeek,
		ExpiresWeek:   item.ExpiresWeek,
		Status:        string(item.Status),
		PreviousWage:  item.PreviousWage,
	}
}

func offerFromModel(row offerModel) transfer.Offer {
	return transfer.Offer{
		ID:            row.ID,
		UserID:        row.UserID,
		TeamID:        row.TeamID,
		Wage:          row.Wage,
		ContractYears: row.ContractYears,
		OfferWeek:     row.OfferWeek,
		ExpiresWeek:   row.ExpiresWeek,
		Status:        transfer.Status(row.Status),
		PreviousWage:  row.PreviousWage,
	}
}

func historyToModel(item transfer.History) historyModel {
	return historyModel{
		ID:         item.ID,
		UserID:     item.UserID,
		FromTeamID: item.FromTeamID,
		ToTeamID:   item.ToTeamID,
		Wage:       item.Wage,
		Season:     item.Season,
		Week:       item.Week,
		WindowID:   item.WindowID,
	}
}

func historyFromModel(row historyModel) transfer.History {
	return transfer.History{
		ID:         row.ID,
		UserID:     row.UserID,
		FromTeamID: row.FromTeamID,
		ToTeamID:   row.ToTeamID,
		Wage:       row.Wage,
		Season:     row.Season,
		Week:       row.Week,
		WindowID:   row.WindowID,
	}
}
