package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/season"
	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/fieldmarshal/career-league/internal/platform/dice"
	"github.com/fieldmarshal/career-league/internal/platform/id"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

type CareerConfig struct {
	StartingAge int
	// StartingLeague is where new careers begin. Tier-two football; the
	// way up runs through the transfer market.
	StartingLeague string
	StartingWage   int64
}

func normalizeCareerConfig(cfg CareerConfig) CareerConfig {
	if cfg.StartingAge < 1 {
		cfg.StartingAge = 18
	}
	if cfg.StartingLeague == "" {
		cfg.StartingLeague = "eng-championship"
	}
	if cfg.StartingWage <= 0 {
		cfg.StartingWage = 900
	}
	return cfg
}

// CareerService owns the human player lifecycle: creation, training, and the
// lazy bootstrap of the very first season.
type CareerService struct {
	seasonRepo season.Repository
	playerRepo player.Repository
	teamRepo   team.Repository
	schedule   *ScheduleService
	ids        id.Generator
	roller     dice.Roller
	cfg        CareerConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewCareerService(
	seasonRepo season.Repository,
	playerRepo player.Repository,
	teamRepo team.Repository,
	schedule *ScheduleService,
	ids id.Generator,
	roller dice.Roller,
	cfg CareerConfig,
	logger *logging.Logger,
) *CareerService {
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if roller == nil {
		roller = dice.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CareerService{
		seasonRepo: seasonRepo,
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		schedule:   schedule,
		ids:        ids,
		roller:     roller,
		cfg:        normalizeCareerConfig(cfg),
		logger:     logger,
		now:        time.Now,
	}
}

// CreateCareer signs a new human player to a starting-league club. The first
// career to arrive also boots the season clock and the fixture list.
func (s *CareerService) CreateCareer(ctx context.Context, userID, name string, position player.Position) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CareerService.CreateCareer")
	defer span.End()

	if userID == "" || name == "" {
		return player.Player{}, fmt.Errorf("%w: user id and name are required", ErrInvalidInput)
	}
	if _, err := player.ParsePosition(string(position)); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, found, err := s.playerRepo.GetByUserID(ctx, userID); err != nil {
		return player.Player{}, fmt.Errorf("check existing career: %w", err)
	} else if found {
		return player.Player{}, fmt.Errorf("%w: user %s already has a career", ErrConflict, userID)
	}

	if err := s.ensureSeason(ctx); err != nil {
		return player.Player{}, err
	}

	club, err := s.pickStartingClub(ctx)
	if err != nil {
		return player.Player{}, err
	}

	playerID, err := s.ids.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	attrs := s.rookieAttributes(position)
	rookie := player.Player{
		ID:            playerID,
		UserID:        userID,
		Name:          name,
		Position:      position,
		TeamID:        club.ID,
		LeagueID:      club.LeagueID,
		Attributes:    attrs,
		Overall:       attrs.Overall(),
		Potential:     player.ClampAttribute(attrs.Overall() + dice.Between(s.roller, 15, 30)),
		Form:          5,
		Morale:        6,
		Age:           s.cfg.StartingAge,
		Wage:          s.cfg.StartingWage,
		ContractYears: 2,
	}
	if err := rookie.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.playerRepo.Insert(ctx, rookie); err != nil {
		return player.Player{}, fmt.Errorf("insert player: %w", err)
	}

	s.logger.InfoContext(ctx, "career created",
		"user_id", userID, "player_id", rookie.ID, "club", club.ID, "position", position)
	return rookie, nil
}

// ensureSeason creates the singleton clock row and season-one fixtures when
// they do not exist yet. A lost creation race means another career got there
// first, which is fine.
func (s *CareerService) ensureSeason(ctx context.Context) error {
	_, exists, err := s.seasonRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("get season state: %w", err)
	}
	if exists {
		return nil
	}

	nextMatchDay := s.schedule.NextMatchDay(s.now().UTC())
	state := season.State{
		SeasonID:     1,
		Started:      true,
		Week:         1,
		NextMatchDay: &nextMatchDay,
	}
	if err := s.seasonRepo.Create(ctx, state); err != nil {
		s.logger.WarnContext(ctx, "season bootstrap lost creation race", "error", err)
		return nil
	}
	if _, err := s.schedule.GenerateSeason(ctx, state.SeasonID); err != nil {
		return fmt.Errorf("generate opening fixtures: %w", err)
	}
	s.logger.InfoContext(ctx, "season clock started", "next_match_day", nextMatchDay)
	return nil
}

// pickStartingClub spreads new careers across the starting league by signing
// to the club with the fewest humans.
func (s *CareerService) pickStartingClub(ctx context.Context) (team.Team, error) {
	clubs, err := s.teamRepo.ListByLeague(ctx, s.cfg.StartingLeague)
	if err != nil {
		return team.Team{}, fmt.Errorf("list starting league: %w", err)
	}
	if len(clubs) == 0 {
		return team.Team{}, fmt.Errorf("%w: league %s has no clubs", ErrNotFound, s.cfg.StartingLeague)
	}

	best := clubs[0]
	bestHumans := -1
	for _, club := range clubs {
		roster, err := s.playerRepo.ListByTeam(ctx, club.ID)
		if err != nil {
			return team.Team{}, fmt.Errorf("list roster %s: %w", club.ID, err)
		}
		humans := 0
		for _, member := range roster {
			if member.IsHuman() {
				humans++
			}
		}
		if bestHumans == -1 || humans < bestHumans {
			best = club
			bestHumans = humans
		}
	}
	return best, nil
}

// rookieAttributes rolls a modest starting block skewed toward the stats the
// position lives on.
func (s *CareerService) rookieAttributes(position player.Position) player.Attributes {
	base := func() int { return dice.Between(s.roller, 48, 58) }
	strong := func() int { return dice.Between(s.roller, 58, 66) }

	attrs := player.Attributes{
		Pace:      base(),
		Shooting:  base(),
		Passing:   base(),
		Dribbling: base(),
		Defending: base(),
		Physical:  base(),
	}
	switch position {
	case player.PositionGoalkeeper:
		attrs.Defending = strong()
		attrs.Physical = strong()
	case player.PositionDefender:
		attrs.Defending = strong()
		attrs.Physical = strong()
	case player.PositionMidfielder:
		attrs.Passing = strong()
		attrs.Dribbling = strong()
	case player.PositionForward:
		attrs.Shooting = strong()
		attrs.Pace = strong()
	}
	return attrs.Clamp()
}

// Profile returns the user's player.
func (s *CareerService) Profile(ctx context.Context, userID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CareerService.Profile")
	defer span.End()

	if userID == "" {
		return player.Player{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	subject, found, err := s.playerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !found {
		return player.Player{}, fmt.Errorf("%w: no career for user %s", ErrNotFound, userID)
	}
	return subject, nil
}

// Train improves one attribute. Gains shrink to nothing as the player
// approaches their potential; morale buys an extra point now and then. The
// result always stays inside the attribute bounds.
func (s *CareerService) Train(ctx context.Context, userID string, stat player.StatKind) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CareerService.Train")
	defer span.End()

	subject, err := s.Profile(ctx, userID)
	if err != nil {
		return player.Player{}, err
	}
	if subject.Retired {
		return player.Player{}, fmt.Errorf("%w: retired players do not train", ErrConflict)
	}

	headroom := subject.Potential - subject.Overall
	if headroom <= 0 {
		s.logger.InfoContext(ctx, "training capped at potential",
			"user_id", userID, "overall", subject.Overall)
		return subject, nil
	}

	gain := 1
	if subject.Morale >= 7 && s.roller.IntN(100) < 40 {
		gain = 2
	}
	if gain > headroom {
		gain = headroom
	}

	switch stat {
	case player.StatPace:
		subject.Attributes.Pace = player.ClampAttribute(subject.Attributes.Pace + gain)
	case player.StatShooting:
		subject.Attributes.Shooting = player.ClampAttribute(subject.Attributes.Shooting + gain)
	case player.StatPassing:
		subject.Attributes.Passing = player.ClampAttribute(subject.Attributes.Passing + gain)
	case player.StatDribbling:
		subject.Attributes.Dribbling = player.ClampAttribute(subject.Attributes.Dribbling + gain)
	case player.StatDefending:
		subject.Attributes.Defending = player.ClampAttribute(subject.Attributes.Defending + gain)
	case player.StatPhysical:
		subject.Attributes.Physical = player.ClampAttribute(subject.Attributes.Physical + gain)
	default:
		return player.Player{}, fmt.Errorf("%w: unknown stat %q", ErrInvalidInput, stat)
	}
	subject.Overall = subject.Attributes.Overall()

	if err := s.playerRepo.Update(ctx, subject); err != nil {
		return player.Player{}, fmt.Errorf("update player: %w", err)
	}
	return subject, nil
}
