package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/fieldmarshal/career-league/internal/platform/prompt"
	"github.com/fieldmarshal/career-league/internal/usecase"
)

type answerPromptRequest struct {
	Label string `json:"label" validate:"required,max=40"`
}

// StartMatch creates the interactive run and drives it on a background
// goroutine. The run outlives the HTTP request: prompts are delivered
// through the prompt endpoints while the engine blocks on each key moment.
func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	started, err := h.matchService.Start(ctx, principal.UserID, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "start match failed", "user_id", principal.UserID, "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	runCtx := context.WithoutCancel(ctx)
	go func() {
		if _, err := h.matchService.Run(runCtx, started.ID); err != nil {
			h.logger.ErrorContext(runCtx, "match run failed", "match_id", started.ID, "fixture_id", fixtureID, "error", err)
		}
	}()

	writeSuccess(ctx, w, http.StatusAccepted, matchToDTO(ctx, started))
}

func (h *Handler) GetActiveMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveMatch")
	defer span.End()

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	run, exists, err := h.matchService.Active(ctx, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "get active match failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeSuccess(ctx, w, http.StatusOK, nil)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, run))
}

func (h *Handler) ListMyPrompts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPrompts")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	pending := h.prompts.PendingFor(principal.UserID)
	items := make([]promptDTO, 0, len(pending))
	for _, req := range pending {
		items = append(items, promptToDTO(ctx, req))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AnswerPrompt(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AnswerPrompt")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req answerPromptRequest
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

	promptID := strings.TrimSpace(r.PathValue("promptID"))
	if err := h.prompts.Answer(promptID, principal.UserID, req.Label); err != nil {
		if errors.Is(err, prompt.ErrNotFound) {
			writeError(ctx, w, fmt.Errorf("%w: prompt %s is not pending", usecase.ErrNotFound, promptID))
			return
		}
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "answered"})
}
