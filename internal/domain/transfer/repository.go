package transfer

import "context"

type Repository interface {
	GetOffer(ctx context.Context, offerID string) (Offer, bool, error)
	ListPendingByUser(ctx context.Context, userID string) ([]Offer, error)
	ListRejectedByUser(ctx context.Context, userID string) ([]Offer, error)
	InsertOffer(ctx context.Context, item Offer) error
	// AcceptOffer atomically flips the offer to accepted and every other
	// pending offer of the same user to rejected.
	AcceptOffer(ctx context.Context, userID, offerID string) (Offer, error)
	// UpdateOfferStatus performs a guarded transition: it fails when the
	// offer is missing or not currently in the from status.
	UpdateOfferStatus(ctx context.Context, offerID string, from, to Status) error
	// ExpirePending transitions every still-pending offer to expired and
	// returns how many rows changed.
	ExpirePending(ctx context.Context) (int, error)

	InsertHistory(ctx context.Context, item History) error
	ListHistoryByUser(ctx context.Context, userID string) ([]History, error)
}
