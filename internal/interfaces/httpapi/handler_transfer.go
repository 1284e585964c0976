package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fieldmarshal/career-league/internal/domain/transfer"
	"github.com/fieldmarshal/career-league/internal/usecase"
)

type offerDTO struct {
	ID            string `json:"id"`
	TeamID        string `json:"teamId"`
	Wage          int64  `json:"wage"`
	ContractYears int    `json:"contractYears"`
	OfferWeek     int    `json:"offerWeek"`
	ExpiresWeek   int    `json:"expiresWeek"`
	Status        string `json:"status"`
	PreviousWage  int64  `json:"previousWage,omitempty"`
}

type transferHistoryDTO struct {
	ID         string `json:"id"`
	FromTeamID string `json:"fromTeamId"`
	ToTeamID   string `json:"toTeamId"`
	Wage       int64  `json:"wage"`
	Season     int    `json:"season"`
	Week       int    `json:"week"`
}

func (h *Handler) ListMyOffers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyOffers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	offers, err := h.transferService.ListOffers(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list offers failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]offerDTO, 0, len(offers))
	for _, o := range offers {
		items = append(items, offerToDTO(ctx, o))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcceptOffer")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	offerID := strings.TrimSpace(r.PathValue("offerID"))
	accepted, err := h.transferService.Accept(ctx, principal.UserID, offerID)
	if err != nil {
		h.logger.WarnContext(ctx, "accept offer failed", "user_id", principal.UserID, "offer_id", offerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, offerToDTO(ctx, accepted))
}

func (h *Handler) GetMyTransferHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyTransferHistory")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	entries, err := h.transferService.History(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get transfer history failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]transferHistoryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyToDTO(ctx, e))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func offerToDTO(ctx context.Context, v transfer.Offer) offerDTO {
	ctx, span := startSpan(ctx, "httpapi.offerToDTO")
	defer span.End()

	return offerDTO{
		ID:            v.ID,
		TeamID:        v.TeamID,
		Wage:          v.Wage,
		ContractYears: v.ContractYears,
		OfferWeek:     v.OfferWeek,
		ExpiresWeek:   v.ExpiresWeek,
		Status:        string(v.Status),
		PreviousWage:  v.PreviousWage,
	}
}

func historyToDTO(ctx context.Context, v transfer.History) transferHistoryDTO {
	ctx, span := startSpan(ctx, "httpapi.historyToDTO")
	defer span.End()

	return transferHistoryDTO{
		ID:         v.ID,
		FromTeamID: v.FromTeamID,
		ToTeamID:   v.ToTeamID,
		Wage:       v.Wage,
		Season:     v.Season,
		Week:       v.Week,
	}
}
