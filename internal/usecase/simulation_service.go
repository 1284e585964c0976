package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/fieldmarshal/career-league/internal/domain/fixture"
	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/fieldmarshal/career-league/internal/platform/cache"
	"github.com/fieldmarshal/career-league/internal/platform/dice"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

const (
	// Humans train, so they pull simulated outcomes harder than NPCs.
	humanStrengthWeight = 1.5
	npcStrengthWeight   = 1.0

	homeAdvantageBonus = 3
	strengthCeiling    = 99
	defaultStrength    = 60
)

type SimulationConfig struct {
	MaxWorkers int
}

// SimulationService computes team strength and resolves fixtures nobody
// plays interactively.
type SimulationService struct {
	teamRepo    team.Repository
	playerRepo  player.Repository
	fixtureRepo fixture.Repository
	strengths   *cache.Store
	roller      dice.Roller
	cfg         SimulationConfig
	logger      *logging.Logger
}

func NewSimulationService(
	teamRepo team.Repository,
	playerRepo player.Repository,
	fixtureRepo fixture.Repository,
	strengths *cache.Store,
	roller dice.Roller,
	cfg SimulationConfig,
	logger *logging.Logger,
) *SimulationService {
	if roller == nil {
		roller = dice.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 4
	}
	return &SimulationService{
		teamRepo:    teamRepo,
		playerRepo:  playerRepo,
		fixtureRepo: fixtureRepo,
		strengths:   strengths,
		roller:      roller,
		cfg:         cfg,
		logger:      logger,
	}
}

// TeamStrength is the weighted mean of rostered overall ratings passed
// through a banded bonus plus optional home advantage, capped at the overall
// ceiling. An empty roster falls back to a default strength so a data gap
// never aborts a simulation.
func (s *SimulationService) TeamStrength(ctx context.Context, teamID string, home bool) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.TeamStrength")
	defer span.End()

	base, err := s.baseStrength(ctx, teamID)
	if err != nil {
		return 0, err
	}

	strength := base + strengthBandBonus(base)
	if home {
		strength += homeAdvantageBonus
	}
	if strength > strengthCeiling {
		strength = strengthCeiling
	}
	return strength, nil
}

func (s *SimulationService) baseStrength(ctx context.Context, teamID string) (int, error) {
	load := func(ctx context.Context) (any, error) {
		roster, err := s.playerRepo.ListByTeam(ctx, teamID)
		if err != nil {
			return 0, fmt.Errorf("list roster for team %s: %w", teamID, err)
		}
		if len(roster) == 0 {
			return defaultStrength, nil
		}

		var weighted, weights float64
		for _, item := range roster {
			w := npcStrengthWeight
			if item.IsHuman() {
				w = humanStrengthWeight
			}
			weighted += float64(item.Overall) * w
			weights += w
		}
		return int(weighted / weights), nil
	}

	if s.strengths == nil {
		v, err := load(ctx)
		if err != nil {
			return 0, err
		}
		return v.(int), nil
	}

	v, err := s.strengths.GetOrLoad(ctx, "team-strength:"+teamID, load)
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// strengthBandBonus rewards higher average squads with a capped flat bonus.
func strengthBandBonus(base int) int {
	switch {
	case base >= 85:
		return 6
	case base >= 75:
		return 4
	case base >= 65:
		return 2
	default:
		return 0
	}
}

// SimulateFixture resolves one fixture without human input and persists the
// result. Goal counts are biased by the strength gap.
func (s *SimulationService) SimulateFixture(ctx context.Context, item fixture.Fixture) (int, int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.SimulateFixture")
	defer span.End()

	if item.Played {
		return 0, 0, fmt.Errorf("%w: fixture %s already played", ErrConflict, item.ID)
	}

	homeStrength, err := s.TeamStrength(ctx, item.HomeTeamID, true)
	if err != nil {
		s.logger.WarnContext(ctx, "home strength unavailable, using default", "team_id", item.HomeTeamID, "error", err)
		homeStrength = defaultStrength
	}
	awayStrength, err := s.TeamStrength(ctx, item.AwayTeamID, false)
	if err != nil {
		s.logger.WarnContext(ctx, "away strength unavailable, using default", "team_id", item.AwayTeamID, "error", err)
		awayStrength = defaultStrength
	}

	homeScore := s.rollGoals(homeStrength, awayStrength)
	awayScore := s.rollGoals(awayStrength, homeStrength)

	if err := s.fixtureRepo.RecordResult(ctx, item.ID, homeScore, awayScore); err != nil {
		return 0, 0, fmt.Errorf("record simulated result: %w", err)
	}

	if err := s.applyTableResult(ctx, item.HomeTeamID, homeScore, awayScore); err != nil {
		s.logger.WarnContext(ctx, "update home table row failed", "team_id", item.HomeTeamID, "error", err)
	}
	if err := s.applyTableResult(ctx, item.AwayTeamID, awayScore, homeScore); err != nil {
		s.logger.WarnContext(ctx, "update away table row failed", "team_id", item.AwayTeamID, "error", err)
	}

	return homeScore, awayScore, nil
}

// rollGoals converts attack vs defence strength into a goal count: five
// chances per side, each converting on a d100 under a strength-derived
// probability.
func (s *SimulationService) rollGoals(attack, defence int) int {
	chancePct := 18 + (attack-defence)/2
	if chancePct < 5 {
		chancePct = 5
	}
	if chancePct > 45 {
		chancePct = 45
	}

	goals := 0
	for i := 0; i < 5; i++ {
		if s.roller.Roll(100) <= chancePct {
			goals++
		}
	}
	return goals
}

func (s *SimulationService) applyTableResult(ctx context.Context, teamID string, goalsFor, goalsAgainst int) error {
	club, ok, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("get team: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	club.ApplyResult(goalsFor, goalsAgainst)
	if err := s.teamRepo.Update(ctx, club); err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	return nil
}

// SimulateWeek bulk-resolves the given fixtures on a worker pool. One
// fixture failing never blocks the rest; failures are logged and counted.
func (s *SimulationService) SimulateWeek(ctx context.Context, fixtures []fixture.Fixture) (int, int) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.SimulateWeek")
	defer span.End()

	if len(fixtures) == 0 {
		return 0, 0
	}

	workerCount := s.cfg.MaxWorkers
	if workerCount > len(fixtures) {
		workerCount = len(fixtures)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		// Degrade to sequential resolution rather than dropping the week.
		s.logger.WarnContext(ctx, "worker pool unavailable, simulating sequentially", "error", err)
		return s.simulateSequential(ctx, fixtures)
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    int
	)
	for _, item := range fixtures {
		item := item
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			_, _, simErr := s.SimulateFixture(ctx, item)
			mu.Lock()
			if simErr != nil {
				failed++
				s.logger.WarnContext(ctx, "fixture simulation failed", "fixture_id", item.ID, "error", simErr)
			} else {
				succeeded++
			}
			mu.Unlock()
		}); err != nil {
			wg.Done()
			mu.Lock()
			failed++
			mu.Unlock()
			s.logger.WarnContext(ctx, "submit fixture simulation failed", "fixture_id", item.ID, "error", err)
		}
	}
	wg.Wait()

	return succeeded, failed
}

func (s *SimulationService) simulateSequential(ctx context.Context, fixtures []fixture.Fixture) (int, int) {
	succeeded, failed := 0, 0
	for _, item := range fixtures {
		if _, _, err := s.SimulateFixture(ctx, item); err != nil {
			failed++
			s.logger.WarnContext(ctx, "fixture simulation failed", "fixture_id", item.ID, "error", err)
			continue
		}
		succeeded++
	}
	return succeeded, failed
}
