package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fieldmarshal/career-league/internal/domain/fixture"
	"github.com/fieldmarshal/career-league/internal/domain/team"
	idgen "github.com/fieldmarshal/career-league/internal/platform/id"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

// byeSlot fills the synthetic slot when a league has an odd team count;
// pairings against it are dropped from the schedule.
const byeSlot = ""

type ScheduleConfig struct {
	// MatchDays is the fixed weekly cadence; the next match day is the next
	// occurrence of any of these weekdays at MatchHourUTC.
	MatchDays    []time.Weekday
	MatchHourUTC int
}

func normalizeScheduleConfig(cfg ScheduleConfig) ScheduleConfig {
	if len(cfg.MatchDays) == 0 {
		cfg.MatchDays = []time.Weekday{time.Tuesday, time.Thursday, time.Saturday}
	}
	if cfg.MatchHourUTC < 0 || cfg.MatchHourUTC > 23 {
		cfg.MatchHourUTC = 19
	}
	return cfg
}

// ScheduleService generates season fixtures and computes match-day timing.
type ScheduleService struct {
	teamRepo    team.Repository
	fixtureRepo fixture.Repository
	ids         idgen.Generator
	cfg         ScheduleConfig
	logger      *logging.Logger
}

func NewScheduleService(
	teamRepo team.Repository,
	fixtureRepo fixture.Repository,
	ids idgen.Generator,
	cfg ScheduleConfig,
	logger *logging.Logger,
) *ScheduleService {
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleService{
		teamRepo:    teamRepo,
		fixtureRepo: fixtureRepo,
		ids:         ids,
		cfg:         normalizeScheduleConfig(cfg),
		logger:      logger,
	}
}

// GenerateSeason creates the double round-robin for every league. Generation
// is idempotent: leagues that already have fixtures for the season are
// skipped entirely, never regenerated.
func (s *ScheduleService) GenerateSeason(ctx context.Context, seasonID int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GenerateSeason")
	defer span.End()

	if seasonID < 1 {
		return 0, fmt.Errorf("%w: season id must be >= 1", ErrInvalidInput)
	}

	leagues, err := s.teamRepo.ListLeagues(ctx)
	if err != nil {
		return 0, fmt.Errorf("list leagues: %w", err)
	}

	created := 0
	for _, leagueID := range leagues {
		count, err := s.fixtureRepo.CountBySeason(ctx, leagueID, seasonID)
		if err != nil {
			return created, fmt.Errorf("count fixtures for league %s: %w", leagueID, err)
		}
		if count > 0 {
			s.logger.InfoContext(ctx, "fixtures already generated, skipping league",
				"league_id", leagueID, "season", seasonID, "existing", count)
			continue
		}

		teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
		if err != nil {
			return created, fmt.Errorf("list teams for league %s: %w", leagueID, err)
		}
		if len(teams) < 2 {
			s.logger.WarnContext(ctx, "league too small to schedule", "league_id", leagueID, "teams", len(teams))
			continue
		}

		items, err := s.buildLeagueFixtures(leagueID, seasonID, teams)
		if err != nil {
			return created, err
		}
		if err := s.fixtureRepo.InsertBatch(ctx, items); err != nil {
			return created, fmt.Errorf("insert fixtures for league %s: %w", leagueID, err)
		}
		created += len(items)
		s.logger.InfoContext(ctx, "season fixtures generated",
			"league_id", leagueID, "season", seasonID, "fixtures", len(items))
	}

	return created, nil
}

// buildLeagueFixtures runs the standard rotation: team 0 stays fixed, the
// rest rotate, producing N-1 rounds of unique pairings; the mirror rounds
// swap home and away with week numbers offset by N-1.
func (s *ScheduleService) buildLeagueFixtures(leagueID string, seasonID int, teams []team.Team) ([]fixture.Fixture, error) {
	slots := make([]string, 0, len(teams)+1)
	for _, item := range teams {
		slots = append(slots, item.ID)
	}
	sort.Strings(slots)
	if len(slots)%2 != 0 {
		slots = append(slots, byeSlot)
	}

	n := len(slots)
	rounds := n - 1
	half := n / 2

	out := make([]fixture.Fixture, 0, rounds*half*2)
	rotation := make([]string, n)
	copy(rotation, slots)

	for round := 0; round < rounds; round++ {
		for pair := 0; pair < half; pair++ {
			home := rotation[pair]
			away := rotation[n-1-pair]
			if home == byeSlot || away == byeSlot {
				continue
			}
			// Alternate venue by round so no team hosts every week.
			if round%2 == 1 {
				home, away = away, home
			}

			first, err := s.newFixture(leagueID, seasonID, round+1, home, away)
			if err != nil {
				return nil, err
			}
			mirror, err := s.newFixture(leagueID, seasonID, round+1+rounds, away, home)
			if err != nil {
				return nil, err
			}
			out = append(out, first, mirror)
		}

		// Rotate everything except the first slot.
		last := rotation[n-1]
		copy(rotation[2:], rotation[1:n-1])
		rotation[1] = last
	}

	return out, nil
}

func (s *ScheduleService) newFixture(leagueID string, seasonID, week int, homeID, awayID string) (fixture.Fixture, error) {
	fixtureID, err := s.ids.NewID()
	if err != nil {
		return fixture.Fixture{}, fmt.Errorf("generate fixture id: %w", err)
	}
	return fixture.Fixture{
		ID:         fixtureID,
		LeagueID:   leagueID,
		Season:     seasonID,
		Week:       week,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
	}, nil
}

// TotalWeeks reports how many rounds a double round-robin of teamCount
// teams spans (byes included for odd counts).
func TotalWeeks(teamCount int) int {
	if teamCount < 2 {
		return 0
	}
	if teamCount%2 != 0 {
		teamCount++
	}
	return (teamCount - 1) * 2
}

// NextMatchDay returns the next configured match-day occurrence strictly
// after the given instant.
func (s *ScheduleService) NextMatchDay(after time.Time) time.Time {
	after = after.UTC()
	days := s.cfg.MatchDays

	for offset := 0; offset <= 7; offset++ {
		day := after.AddDate(0, 0, offset)
		candidate := time.Date(day.Year(), day.Month(), day.Day(), s.cfg.MatchHourUTC, 0, 0, 0, time.UTC)
		if !candidate.After(after) {
			continue
		}
		for _, weekday := range days {
			if candidate.Weekday() == weekday {
				return candidate
			}
		}
	}

	// Unreachable with a non-empty weekday set, but keep a sane fallback.
	return after.Add(7 * 24 * time.Hour)
}
