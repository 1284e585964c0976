package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fieldmarshal/career-league/internal/domain/fixture"
	"github.com/fieldmarshal/career-league/internal/domain/season"
	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

// TeamService answers read-side league queries: season status, standings,
// and fixture lists.
type TeamService struct {
	seasonRepo  season.Repository
	teamRepo    team.Repository
	fixtureRepo fixture.Repository
	logger      *logging.Logger
}

func NewTeamService(
	seasonRepo season.Repository,
	teamRepo team.Repository,
	fixtureRepo fixture.Repository,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamService{
		seasonRepo:  seasonRepo,
		teamRepo:    teamRepo,
		fixtureRepo: fixtureRepo,
		logger:      logger,
	}
}

// Status returns the season clock. Not-started installs read as an empty,
// not-started state rather than an error.
func (s *TeamService) Status(ctx context.Context) (season.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Status")
	defer span.End()

	state, exists, err := s.seasonRepo.Get(ctx)
	if err != nil {
		return season.State{}, fmt.Errorf("get season state: %w", err)
	}
	if !exists {
		return season.State{}, nil
	}
	return state, nil
}

// Table returns the league standings ordered by points, goal difference,
// goals scored, then name for stability.
func (s *TeamService) Table(ctx context.Context, leagueID string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Table")
	defer span.End()

	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	sort.Slice(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Name < b.Name
	})
	return teams, nil
}

// Get returns one club.
func (s *TeamService) Get(ctx context.Context, teamID string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Get")
	defer span.End()

	if teamID == "" {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	club, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !found {
		return team.Team{}, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}
	return club, nil
}

// WeekFixtures lists the fixtures of one week in the current season. Week 0
// means the current week.
func (s *TeamService) WeekFixtures(ctx context.Context, week int) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.WeekFixtures")
	defer span.End()

	state, exists, err := s.seasonRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get season state: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: season has not started", ErrNotFound)
	}
	if week <= 0 {
		week = state.Week
	}
	fixtures, err := s.fixtureRepo.ListByWeek(ctx, state.SeasonID, week)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	return fixtures, nil
}
