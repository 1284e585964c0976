package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/fieldmarshal/career-league/internal/domain/user"
	"github.com/fieldmarshal/career-league/internal/infrastructure/repository/memory"
	"github.com/fieldmarshal/career-league/internal/platform/prompt"
	"github.com/fieldmarshal/career-league/internal/usecase"
)

type mapVerifier map[string]user.Principal

func (m mapVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := m[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return principal, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	seasonRepo := memory.NewSeasonRepository()
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	fixtureRepo := memory.NewFixtureRepository()

	schedule := usecase.NewScheduleService(teamRepo, fixtureRepo, nil, usecase.ScheduleConfig{}, nil)
	careerService := usecase.NewCareerService(seasonRepo, playerRepo, teamRepo, schedule, nil, nil, usecase.CareerConfig{}, nil)
	teamService := usecase.NewTeamService(seasonRepo, teamRepo, fixtureRepo, nil)

	handler := NewHandler(careerService, teamService, nil, nil, nil, nil, prompt.NewBroker(), slog.Default())
	verifier := mapVerifier{"token-u1": {UserID: "u1", Name: "Sam"}}

	return NewRouter(handler, verifier, slog.Default(), []string{"*"}, "job-secret")
}

func TestRouter_StatusBeforeFirstCareer(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data stateDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Data.Started {
		t.Fatalf("expected season not started before the first career")
	}
}

func TestRouter_CreateCareerRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/careers", strings.NewReader(`{"name":"Sam","position":"FWD"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_CreateCareerAndFetchProfile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/careers", strings.NewReader(`{"name":"Sam","position":"FWD"}`))
	req.Header.Set("Authorization", "Bearer token-u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data playerDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if created.Data.Name != "Sam" || created.Data.Position != "FWD" {
		t.Fatalf("unexpected created career: %+v", created.Data)
	}
	if created.Data.TeamID == "" {
		t.Fatalf("expected created career to be assigned a club")
	}

	profileReq := httptest.NewRequest(http.MethodGet, "/v1/careers/me", nil)
	profileReq.Header.Set("Authorization", "Bearer token-u1")
	profileRec := httptest.NewRecorder()
	router.ServeHTTP(profileRec, profileReq)

	if profileRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", profileRec.Code, profileRec.Body.String())
	}

	var profile struct {
		Data playerDTO `json:"data"`
	}
	if err := sonic.Unmarshal(profileRec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("unmarshal profile response: %v", err)
	}
	if profile.Data.ID != created.Data.ID {
		t.Fatalf("expected profile %s, got %s", created.Data.ID, profile.Data.ID)
	}
}

func TestRouter_CreateCareerRejectsUnknownPosition(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/careers", strings.NewReader(`{"name":"Sam","position":"ST"}`))
	req.Header.Set("Authorization", "Bearer token-u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_LeagueTableIsOrdered(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/leagues/"+memory.LeaguePremier+"/table", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data []tableRowDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal table response: %v", err)
	}
	if len(body.Data) != 8 {
		t.Fatalf("expected 8 table rows, got %d", len(body.Data))
	}
	for i, row := range body.Data {
		if row.Rank != i+1 {
			t.Fatalf("expected rank %d at index %d, got %d", i+1, i, row.Rank)
		}
	}
}

func TestRouter_InternalJobRejectsBadToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/tick", nil)
	req.Header.Set("X-Internal-Job-Token", "wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}
