package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/usecase"
)

type createCareerRequest struct {
	Name     string `json:"name" validate:"required,max=60"`
	Position string `json:"position" validate:"required,oneof=GK DEF MID FWD gk def mid fwd"`
}

type trainRequest struct {
	Stat string `json:"stat" validate:"required,oneof=pace shooting passing dribbling defending physical"`
}

func (h *Handler) CreateCareer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateCareer")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createCareerRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	position, err := player.ParsePosition(req.Position)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	created, err := h.careerService.CreateCareer(ctx, principal.UserID, req.Name, position)
	if err != nil {
		h.logger.WarnContext(ctx, "create career failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(ctx, created))
}

func (h *Handler) GetMyCareer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyCareer")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	profile, err := h.careerService.Profile(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get career failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(ctx, profile))
}

func (h *Handler) TrainMyCareer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TrainMyCareer")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req trainRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	trained, err := h.careerService.Train(ctx, principal.UserID, player.StatKind(req.Stat))
	if err != nil {
		h.logger.WarnContext(ctx, "train failed", "user_id", principal.UserID, "stat", req.Stat, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(ctx, trained))
}
