package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fieldmarshal/career-league/internal/domain/transfer"
)

type TransferRepository struct {
	mu      sync.Mutex
	offers  map[string]transfer.Offer
	history []transfer.History
}

func NewTransferRepository() *TransferRepository {
	return &TransferRepository{offers: make(map[string]transfer.Offer)}
}

func (r *TransferRepository) GetOffer(_ context.Context, offerID string) (transfer.Offer, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.offers[offerID]
	return item, ok, nil
}

func (r *TransferRepository) ListPendingByUser(_ context.Context, userID string) ([]transfer.Offer, error) {
	return r.listByUserAndStatus(userID, transfer.StatusPending), nil
}

func (r *TransferRepository) ListRejectedByUser(_ context.Context, userID string) ([]transfer.Offer, error) {
	return r.listByUserAndStatus(userID, transfer.StatusRejected), nil
}

func (r *TransferRepository) listByUserAndStatus(userID string, status transfer.Status) []transfer.Offer {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]transfer.Offer, 0, 4)
	for _, item := range r.offers {
		if item.UserID == userID && item.Status == status {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *TransferRepository) InsertOffer(_ context.Context, item transfer.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := item.Validate(); err != nil {
		return err
	}
	if _, exists := r.offers[item.ID]; exists {
		return fmt.Errorf("offer %s already exists", item.ID)
	}
	r.offers[item.ID] = item
	return nil
}

func (r *TransferRepository) AcceptOffer(_ context.Context, userID, offerID string) (transfer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accepted, ok := r.offers[offerID]
	if !ok || accepted.UserID != userID {
		return transfer.Offer{}, fmt.Errorf("offer %s not found for user %s", offerID, userID)
	}
	if accepted.Status != transfer.StatusPending {
		return transfer.Offer{}, fmt.Errorf("offer %s is %s, not pending", offerID, accepted.Status)
	}

	accepted.Status = transfer.StatusAccepted
	r.offers[offerID] = accepted

	for id, item := range r.offers {
		if id != offerID && item.UserID == userID && item.Status == transfer.StatusPending {
			item.Status = transfer.StatusRejected
			r.offers[id] = item
		}
	}
	return accepted, nil
}

func (r *TransferRepository) UpdateOfferStatus(_ context.Context, offerID string, from, to transfer.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.offers[offerID]
	if !ok {
		return fmt.Errorf("offer %s does not exist", offerID)
	}
	if item.Status != from {
		return fmt.Errorf("offer %s is %s, not %s", offerID, item.Status, from)
	}
	item.Status = to
	r.offers[offerID] = item
	return nil
}

func (r *TransferRepository) ExpirePending(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for id, item := range r.offers {
		if item.Status == transfer.StatusPending {
			item.Status = transfer.StatusExpired
			r.offers[id] = item
			changed++
		}
	}
	return changed, nil
}

func (r *TransferRepository) InsertHistory(_ context.Context, item transfer.History) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, item)
	return nil
}

func (r *TransferRepository) ListHistoryByUser(_ context.Context, userID string) ([]transfer.History, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]transfer.History, 0, 2)
	for _, item := range r.history {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}
