package usecase

import (
	"context"
	"fmt"

	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/fieldmarshal/career-league/internal/platform/dice"
	"github.com/fieldmarshal/career-league/internal/platform/id"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

type RetirementConfig struct {
	RetirementAge int
	RegenAge      int
	// PurgeAfterSeasons is how many completed seasons a retired record
	// survives before the cleanup sweep removes it.
	PurgeAfterSeasons int
}

func normalizeRetirementConfig(cfg RetirementConfig) RetirementConfig {
	if cfg.RetirementAge < 1 {
		cfg.RetirementAge = 35
	}
	if cfg.RegenAge < 1 {
		cfg.RegenAge = 18
	}
	if cfg.PurgeAfterSeasons < 1 {
		cfg.PurgeAfterSeasons = 2
	}
	return cfg
}

// Regen rating scale relative to the retiree, and the potential headroom on
// top of the rolled rating.
const (
	regenRatingFloorFactor   = 0.70
	regenRatingCeilingFactor = 0.85
	regenPotentialMinBonus   = 10
	regenPotentialMaxBonus   = 20
)

var regenNames = []string{
	"Alex Mercer", "Danny Whitfield", "Sam Okafor", "Leo Kovac",
	"Jordi Blanco", "Marcus Reid", "Timo Lindgren", "Rafa Costa",
	"Kenji Mori", "Pavel Novak", "Ibrahim Diallo", "Luca Ferri",
}

// RetirementService ages the population, retires players at the age cap,
// synthesizes regens for NPC vacancies, and purges long-retired records.
type RetirementService struct {
	playerRepo player.Repository
	teamRepo   team.Repository
	ids        id.Generator
	roller     dice.Roller
	cfg        RetirementConfig
	logger     *logging.Logger
}

func NewRetirementService(
	playerRepo player.Repository,
	teamRepo team.Repository,
	ids id.Generator,
	roller dice.Roller,
	cfg RetirementConfig,
	logger *logging.Logger,
) *RetirementService {
	if roller == nil {
		roller = dice.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RetirementService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		ids:        ids,
		roller:     roller,
		cfg:        normalizeRetirementConfig(cfg),
		logger:     logger,
	}
}

// SweepResult summarizes one retirement sweep for job endpoints.
type SweepResult struct {
	Retired int `json:"retired"`
	Regens  int `json:"regens"`
	Purged  int `json:"purged"`
}

// Sweep retires every active player at or past the retirement age. Each
// retiring NPC that held a real club slot is replaced by exactly one regen;
// humans are never auto-replaced. Re-running the sweep is a no-op for
// already-retired players, so it is safe on any cadence.
func (s *RetirementService) Sweep(ctx context.Context, currentSeason int) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RetirementService.Sweep")
	defer span.End()

	var result SweepResult

	active, err := s.playerRepo.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("list active players: %w", err)
	}

	for _, subject := range active {
		if subject.Retired || subject.Age < s.cfg.RetirementAge {
			continue
		}

		previousTeamID := subject.TeamID
		subject.Retired = true
		subject.RetiredInSeason = currentSeason
		subject.TeamID = player.TeamIDRetired
		if err := s.playerRepo.Update(ctx, subject); err != nil {
			return result, fmt.Errorf("retire player %s: %w", subject.ID, err)
		}
		result.Retired++

		if subject.IsHuman() || !s.isRealTeam(previousTeamID) {
			continue
		}
		if err := s.spawnRegen(ctx, subject, previousTeamID); err != nil {
			s.logger.WarnContext(ctx, "regen creation failed",
				"retiree_id", subject.ID, "team_id", previousTeamID, "error", err)
			continue
		}
		result.Regens++
	}

	purged, err := s.Purge(ctx, currentSeason)
	if err != nil {
		s.logger.WarnContext(ctx, "retired-record purge failed", "error", err)
	}
	result.Purged = purged

	if result.Retired > 0 || result.Purged > 0 {
		s.logger.InfoContext(ctx, "retirement sweep finished",
			"season", currentSeason, "retired", result.Retired,
			"regens", result.Regens, "purged", result.Purged)
	}
	return result, nil
}

func (s *RetirementService) isRealTeam(teamID string) bool {
	return teamID != "" && teamID != player.TeamIDRetired && teamID != player.TeamIDFreeAgent
}

// spawnRegen creates an 18-year-old replacement on the retiree's club, same
// position, scaled down from the retiree's rating with headroom to grow.
func (s *RetirementService) spawnRegen(ctx context.Context, retiree player.Player, teamID string) error {
	club, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("get club: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: club %s", ErrNotFound, teamID)
	}

	factor := dice.FloatBetween(s.roller, regenRatingFloorFactor, regenRatingCeilingFactor)
	rating := player.ClampAttribute(int(float64(retiree.Overall) * factor))
	potential := player.ClampAttribute(rating + dice.Between(s.roller, regenPotentialMinBonus, regenPotentialMaxBonus))

	attrs := scaleAttributes(retiree.Attributes, factor)

	regenID, err := s.ids.NewID()
	if err != nil {
		return fmt.Errorf("generate regen id: %w", err)
	}
	regen := player.Player{
		ID:            regenID,
		Name:          regenNames[s.roller.IntN(len(regenNames))],
		Position:      retiree.Position,
		TeamID:        club.ID,
		LeagueID:      club.LeagueID,
		Attributes:    attrs,
		Overall:       attrs.Overall(),
		Potential:     potential,
		Form:          5,
		Morale:        5,
		Age:           s.cfg.RegenAge,
		Wage:          retiree.Wage / 3,
		ContractYears: 3,
	}
	if err := s.playerRepo.Insert(ctx, regen); err != nil {
		return fmt.Errorf("insert regen: %w", err)
	}
	return nil
}

func scaleAttributes(src player.Attributes, factor float64) player.Attributes {
	scaled := player.Attributes{
		Pace:      int(float64(src.Pace) * factor),
		Shooting:  int(float64(src.Shooting) * factor),
		Passing:   int(float64(src.Passing) * factor),
		Dribbling: int(float64(src.Dribbling) * factor),
		Defending: int(float64(src.Defending) * factor),
		Physical:  int(float64(src.Physical) * factor),
	}
	return scaled.Clamp()
}

// AgeUpAll increments every active player's age and decrements remaining
// contract years. Runs once per season rollover.
func (s *RetirementService) AgeUpAll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RetirementService.AgeUpAll")
	defer span.End()

	active, err := s.playerRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active players: %w", err)
	}
	for _, subject := range active {
		subject.Age++
		if subject.ContractYears > 0 {
			subject.ContractYears--
		}
		subject.SeasonApps = 0
		subject.SeasonGoals = 0
		subject.SeasonAssists = 0
		subject.SeasonRating = 0
		if err := s.playerRepo.Update(ctx, subject); err != nil {
			return fmt.Errorf("age up player %s: %w", subject.ID, err)
		}
	}
	return nil
}

// Purge deletes records retired long enough ago that nothing references
// them. Storage cleanup only, no gameplay effect.
func (s *RetirementService) Purge(ctx context.Context, currentSeason int) (int, error) {
	cutoff := currentSeason - s.cfg.PurgeAfterSeasons
	if cutoff <= 0 {
		return 0, nil
	}
	stale, err := s.playerRepo.ListRetiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list retired players: %w", err)
	}
	purged := 0
	for _, subject := range stale {
		if err := s.playerRepo.Delete(ctx, subject.ID); err != nil {
			return purged, fmt.Errorf("delete player %s: %w", subject.ID, err)
		}
		purged++
	}
	return purged, nil
}
