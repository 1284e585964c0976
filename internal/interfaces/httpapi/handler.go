package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fieldmarshal/career-league/internal/domain/fixture"
	"github.com/fieldmarshal/career-league/internal/domain/match"
	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/season"
	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/fieldmarshal/career-league/internal/platform/prompt"
	"github.com/fieldmarshal/career-league/internal/usecase"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	careerService     *usecase.CareerService
	teamService       *usecase.TeamService
	matchService      *usecase.MatchService
	transferService   *usecase.TransferService
	windowService     *usecase.WindowService
	retirementService *usecase.RetirementService
	prompts           *prompt.Broker
	logger            *slog.Logger
	validator         *validator.Validate
}

func NewHandler(
	careerService *usecase.CareerService,
	teamService *usecase.TeamService,
	matchService *usecase.MatchService,
	transferService *usecase.TransferService,
	windowService *usecase.WindowService,
	retirementService *usecase.RetirementService,
	prompts *prompt.Broker,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		careerService:     careerService,
		teamService:       teamService,
		matchService:      matchService,
		transferService:   transferService,
		windowService:     windowService,
		retirementService: retirementService,
		prompts:           prompts,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatus")
	defer span.End()

	state, err := h.teamService.Status(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get status failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stateToDTO(ctx, state))
}

func (h *Handler) GetLeagueTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueTable")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	rows, err := h.teamService.Table(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get table failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]tableRowDTO, 0, len(rows))
	for i, t := range rows {
		items = append(items, tableRowToDTO(ctx, i+1, t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListWeekFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekFixtures")
	defer span.End()

	week := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("week")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(ctx, w, fmt.Errorf("%w: week must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		week = parsed
	}

	fixtures, err := h.teamService.WeekFixtures(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]fixtureDTO, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, fixtureToDTO(ctx, f))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	item, err := h.teamService.Get(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(ctx, item))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type stateDTO struct {
	Season               int    `json:"season"`
	Started              bool   `json:"started"`
	Week                 int    `json:"week"`
	WindowOpen           bool   `json:"windowOpen"`
	WindowClosesAt       string `json:"windowClosesAt,omitempty"`
	NextMatchDay         string `json:"nextMatchDay,omitempty"`
	TransferWindowActive bool   `json:"transferWindowActive"`
}

type tableRowDTO struct {
	Rank           int    `json:"rank"`
	TeamID         string `json:"teamId"`
	Name           string `json:"name"`
	Short          string `json:"short"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
}

type teamDTO struct {
	ID       string `json:"id"`
	LeagueID string `json:"leagueId"`
	Name     string `json:"name"`
	Short    string `json:"short"`
	Tier     int    `json:"tier"`
	Played   int    `json:"played"`
	Points   int    `json:"points"`
}

type fixtureDTO struct {
	ID         string `json:"id"`
	LeagueID   string `json:"leagueId"`
	Season     int    `json:"season"`
	Week       int    `json:"week"`
	HomeTeamID string `json:"homeTeamId"`
	AwayTeamID string `json:"awayTeamId"`
	Played     bool   `json:"played"`
	Playable   bool   `json:"playable"`
	HomeScore  *int   `json:"homeScore,omitempty"`
	AwayScore  *int   `json:"awayScore,omitempty"`
}

type playerDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Position      string  `json:"position"`
	TeamID        string  `json:"teamId"`
	LeagueID      string  `json:"leagueId"`
	Pace          int     `json:"pace"`
	Shooting      int     `json:"shooting"`
	Passing       int     `json:"passing"`
	Dribbling     int     `json:"dribbling"`
	Defending     int     `json:"defending"`
	Physical      int     `json:"physical"`
	Overall       int     `json:"overall"`
	Potential     int     `json:"potential"`
	Form          int     `json:"form"`
	Morale        int     `json:"morale"`
	Age           int     `json:"age"`
	Wage          int64   `json:"wage"`
	ContractYears int     `json:"contractYears"`
	Retired       bool    `json:"retired"`
	SeasonApps    int     `json:"seasonApps"`
	SeasonGoals   int     `json:"seasonGoals"`
	SeasonAssists int     `json:"seasonAssists"`
	SeasonRating  float64 `json:"seasonRating"`
}

type matchDTO struct {
	ID          string `json:"id"`
	FixtureID   string `json:"fixtureId"`
	HomeTeamID  string `json:"homeTeamId"`
	AwayTeamID  string `json:"awayTeamId"`
	HomeScore   int    `json:"homeScore"`
	AwayScore   int    `json:"awayScore"`
	Minute      int    `json:"minute"`
	EventsDone  int    `json:"eventsDone"`
	EventsTotal int    `json:"eventsTotal"`
	State       string `json:"state"`
}

type promptDTO struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Deadline string   `json:"deadline"`
}

func stateToDTO(ctx context.Context, v season.State) stateDTO {
	ctx, span := startSpan(ctx, "httpapi.stateToDTO")
	defer span.End()

	out := stateDTO{
		Season:               v.SeasonID,
		Started:              v.Started,
		Week:                 v.Week,
		WindowOpen:           v.WindowOpen,
		TransferWindowActive: v.TransferWindowActive,
	}
	if v.WindowClosesAt != nil {
		out.WindowClosesAt = v.WindowClosesAt.UTC().Format(time.RFC3339)
	}
	if v.NextMatchDay != nil {
		out.NextMatchDay = v.NextMatchDay.UTC().Format(time.RFC3339)
	}
	return out
}

func tableRowToDTO(ctx context.Context, rank int, v team.Team) tableRowDTO {
	ctx, span := startSpan(ctx, "httpapi.tableRowToDTO")
	defer span.End()

	return tableRowDTO{
		Rank:           rank,
		TeamID:         v.ID,
		Name:           v.Name,
		Short:          v.Short,
		Played:         v.Played,
		Won:            v.Won,
		Drawn:          v.Drawn,
		Lost:           v.Lost,
		GoalsFor:       v.GoalsFor,
		GoalsAgainst:   v.GoalsAgainst,
		GoalDifference: v.GoalDifference(),
		Points:         v.Points,
	}
}

func teamToDTO(ctx context.Context, v team.Team) teamDTO {
	ctx, span := startSpan(ctx, "httpapi.teamToDTO")
	defer span.End()

	return teamDTO{
		ID:       v.ID,
		LeagueID: v.LeagueID,
		Name:     v.Name,
		Short:    v.Short,
		Tier:     v.Tier,
		Played:   v.Played,
		Points:   v.Points,
	}
}

func fixtureToDTO(ctx context.Context, v fixture.Fixture) fixtureDTO {
	ctx, span := startSpan(ctx, "httpapi.fixtureToDTO")
	defer span.End()

	return fixtureDTO{
		ID:         v.ID,
		LeagueID:   v.LeagueID,
		Season:     v.Season,
		Week:       v.Week,
		HomeTeamID: v.HomeTeamID,
		AwayTeamID: v.AwayTeamID,
		Played:     v.Played,
		Playable:   v.Playable,
		HomeScore:  v.HomeScore,
		AwayScore:  v.AwayScore,
	}
}

func playerToDTO(ctx context.Context, v player.Player) playerDTO {
	ctx, span := startSpan(ctx, "httpapi.playerToDTO")
	defer span.End()

	return playerDTO{
		ID:            v.ID,
		Name:          v.Name,
		Position:      string(v.Position),
		TeamID:        v.TeamID,
		LeagueID:      v.LeagueID,
		Pace:          v.Attributes.Pace,
		Shooting:      v.Attributes.Shooting,
		Passing:       v.Attributes.Passing,
		Dribbling:     v.Attributes.Dribbling,
		Defending:     v.Attributes.Defending,
		Physical:      v.Attributes.Physical,
		Overall:       v.Overall,
		Potential:     v.Potential,
		Form:          v.Form,
		Morale:        v.Morale,
		Age:           v.Age,
		Wage:          v.Wage,
		ContractYears: v.ContractYears,
		Retired:       v.Retired,
		SeasonApps:    v.SeasonApps,
		SeasonGoals:   v.SeasonGoals,
		SeasonAssists: v.SeasonAssists,
		SeasonRating:  v.SeasonRating,
	}
}

func matchToDTO(ctx context.Context, v match.ActiveMatch) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	return matchDTO{
		ID:          v.ID,
		FixtureID:   v.FixtureID,
		HomeTeamID:  v.HomeTeamID,
		AwayTeamID:  v.AwayTeamID,
		HomeScore:   v.HomeScore,
		AwayScore:   v.AwayScore,
		Minute:      v.Minute,
		EventsDone:  v.EventsDone,
		EventsTotal: v.EventsTotal,
		State:       string(v.State),
	}
}

func promptToDTO(ctx context.Context, v prompt.Request) promptDTO {
	ctx, span := startSpan(ctx, "httpapi.promptToDTO")
	defer span.End()

	return promptDTO{
		ID:       v.ID,
		Question: v.Question,
		Options:  append([]string(nil), v.Options...),
		Deadline: v.Deadline.UTC().Format(time.RFC3339),
	}
}
