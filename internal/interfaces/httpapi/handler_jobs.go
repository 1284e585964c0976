package httpapi

import (
	"fmt"
	"net/http"

	"github.com/fieldmarshal/career-league/internal/usecase"
)

// RunWindowTickJob advances the game clock one step. The scheduler calls it
// on a short interval; a tick that has nothing to do reports action "none".
func (h *Handler) RunWindowTickJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWindowTickJob")
	defer span.End()

	if h.windowService == nil {
		writeError(ctx, w, fmt.Errorf("%w: window service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.windowService.Tick(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "window tick job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunRetirementSweepJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRetirementSweepJob")
	defer span.End()

	if h.retirementService == nil {
		writeError(ctx, w, fmt.Errorf("%w: retirement service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	state, err := h.teamService.Status(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "retirement sweep job failed to read season state", "error", err)
		writeError(ctx, w, err)
		return
	}

	result, err := h.retirementService.Sweep(ctx, state.SeasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "retirement sweep job failed", "season", state.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunTransferRefreshJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunTransferRefreshJob")
	defer span.End()

	if h.transferService == nil {
		writeError(ctx, w, fmt.Errorf("%w: transfer service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	created, err := h.transferService.RefreshOffersNow(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "transfer refresh job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"offersCreated": created})
}
