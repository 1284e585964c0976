package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldmarshal/career-league/internal/domain/fixture"
	"github.com/fieldmarshal/career-league/internal/domain/match"
	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/season"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

type WindowConfig struct {
	TotalWeeks  int
	WindowHours int
	// Tolerance bounds the normal trigger window: a transition is expected
	// to fire inside [deadline, deadline+Tolerance]. Later ticks still fire
	// so a stalled process can catch up, but the result is flagged late and
	// the recovery is logged.
	Tolerance time.Duration
	// ClosingSoonLead controls the "closing soon" reminder window.
	ClosingSoonLead time.Duration
	// TransferWeeks is the set of season weeks with an open transfer window.
	TransferWeeks map[int]struct{}
}

func normalizeWindowConfig(cfg WindowConfig) WindowConfig {
	if cfg.TotalWeeks < 1 {
		cfg.TotalWeeks = 14
	}
	if cfg.WindowHours < 1 {
		cfg.WindowHours = 20
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 45 * time.Minute
	}
	if cfg.ClosingSoonLead <= 0 {
		cfg.ClosingSoonLead = time.Hour
	}
	if cfg.TransferWeeks == nil {
		cfg.TransferWeeks = map[int]struct{}{1: {}, 2: {}, 7: {}, 8: {}}
	}
	return cfg
}

// WindowService is the periodic driver for all time-based transitions. It is
// designed for a coarse external tick (around 15 minutes) and is safe to
// call every tick: transitions are guarded by the state flags plus the
// season-state version check, never by timestamp equality.
type WindowService struct {
	seasonRepo  season.Repository
	fixtureRepo fixture.Repository
	matchRepo   match.Repository
	playerRepo  player.Repository
	schedule    *ScheduleService
	simulation  *SimulationService
	transfers   *TransferService
	retirement  *RetirementService
	notifier    Notifier
	cfg         WindowConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewWindowService(
	seasonRepo season.Repository,
	fixtureRepo fixture.Repository,
	matchRepo match.Repository,
	playerRepo player.Repository,
	schedule *ScheduleService,
	simulation *SimulationService,
	transfers *TransferService,
	retirement *RetirementService,
	notifier Notifier,
	cfg WindowConfig,
	logger *logging.Logger,
) *WindowService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WindowService{
		seasonRepo:  seasonRepo,
		fixtureRepo: fixtureRepo,
		matchRepo:   matchRepo,
		playerRepo:  playerRepo,
		schedule:    schedule,
		simulation:  simulation,
		transfers:   transfers,
		retirement:  retirement,
		notifier:    notifier,
		cfg:         normalizeWindowConfig(cfg),
		logger:      logger,
		now:         time.Now,
	}
}

// TickResult summarizes what one tick did, for job endpoints and logs.
type TickResult struct {
	Action         string `json:"action"`
	Week           int    `json:"week"`
	Season         int    `json:"season"`
	FixturesOpened int    `json:"fixtures_opened,omitempty"`
	Simulated      int    `json:"simulated,omitempty"`
	SimFailed      int    `json:"sim_failed,omitempty"`
	SeasonEnded    bool   `json:"season_ended,omitempty"`
	TransferOpened bool   `json:"transfer_opened,omitempty"`
	TransferClosed bool   `json:"transfer_closed,omitempty"`
	// Late marks a transition that fired beyond the configured tolerance,
	// the catch-up path after a missed tick or an outage.
	Late bool `json:"late,omitempty"`
}

const (
	tickActionNone   = "none"
	tickActionOpened = "window_opened"
	tickActionWarned = "closing_soon"
	tickActionClosed = "window_closed"
)

// Tick runs one pass of the control loop: open the window when the match day
// arrives, warn near the deadline, close and auto-simulate when it passes.
func (s *WindowService) Tick(ctx context.Context) (TickResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WindowService.Tick")
	defer span.End()

	state, exists, err := s.seasonRepo.Get(ctx)
	if err != nil {
		return TickResult{}, fmt.Errorf("get season state: %w", err)
	}
	if !exists || !state.Started {
		return TickResult{Action: tickActionNone}, nil
	}

	now := s.now().UTC()

	if reached, late := s.deadlineReached(now, state.NextMatchDay); !state.WindowOpen && reached {
		if late {
			s.logger.WarnContext(ctx, "match day trigger fired past tolerance",
				"scheduled", state.NextMatchDay, "tolerance", s.cfg.Tolerance)
		}
		result, err := s.openWindow(ctx, state, now)
		result.Late = late
		return result, err
	}
	if reached, late := s.deadlineReached(now, state.WindowClosesAt); state.WindowOpen && reached {
		if late {
			s.logger.WarnContext(ctx, "window close trigger fired past tolerance",
				"deadline", state.WindowClosesAt, "tolerance", s.cfg.Tolerance)
		}
		result, err := s.closeWindow(ctx, state, now)
		result.Late = late
		return result, err
	}
	if state.WindowOpen && state.WindowClosesAt != nil &&
		now.Before(*state.WindowClosesAt) &&
		state.WindowClosesAt.Sub(now) <= s.cfg.ClosingSoonLead {
		s.warnClosingSoon(ctx, state)
		return TickResult{Action: tickActionWarned, Week: state.Week, Season: state.SeasonID}, nil
	}

	return TickResult{Action: tickActionNone, Week: state.Week, Season: state.SeasonID}, nil
}

// deadlineReached treats "the timestamp has passed, and by no more than the
// tolerance" as the normal trigger. Exact matching would skip transitions on
// a coarse tick. A tick landing past deadline+Tolerance still reports
// reached, with late set, so the clock recovers after an outage instead of
// stalling on ancient state.
func (s *WindowService) deadlineReached(now time.Time, deadline *time.Time) (reached, late bool) {
	if deadline == nil || now.Before(*deadline) {
		return false, false
	}
	return true, now.Sub(*deadline) > s.cfg.Tolerance
}

func (s *WindowService) openWindow(ctx context.Context, state season.State, now time.Time) (TickResult, error) {
	opened, err := s.fixtureRepo.MarkPlayable(ctx, state.SeasonID, state.Week)
	if err != nil {
		return TickResult{}, fmt.Errorf("mark week %d playable: %w", state.Week, err)
	}

	closesAt := now.Add(time.Duration(s.cfg.WindowHours) * time.Hour)
	state.WindowOpen = true
	state.WindowClosesAt = &closesAt

	state, err = s.seasonRepo.Update(ctx, state)
	if err != nil {
		// A concurrent tick already opened the window; this tick stands down.
		s.logger.WarnContext(ctx, "window open lost version race", "week", state.Week, "error", err)
		return TickResult{Action: tickActionNone, Week: state.Week, Season: state.SeasonID}, nil
	}

	s.logger.InfoContext(ctx, "match window opened",
		"season", state.SeasonID, "week", state.Week, "fixtures", opened, "closes_at", closesAt)
	s.notify(ctx, "channel:league",
		fmt.Sprintf("Match week %d is live! Fixtures are playable until %s.", state.Week, closesAt.Format(time.Kitchen)))

	return TickResult{
		Action:         tickActionOpened,
		Week:           state.Week,
		Season:         state.SeasonID,
		FixturesOpened: opened,
	}, nil
}

func (s *WindowService) warnClosingSoon(ctx context.Context, state season.State) {
	fixtures, err := s.fixtureRepo.ListByWeek(ctx, state.SeasonID, state.Week)
	if err != nil {
		s.logger.WarnContext(ctx, "closing-soon fixture lookup failed", "error", err)
		return
	}

	for _, item := range fixtures {
		if item.Played || !item.Playable {
			continue
		}
		for _, teamID := range []string{item.HomeTeamID, item.AwayTeamID} {
			roster, err := s.playerRepo.ListByTeam(ctx, teamID)
			if err != nil {
				continue
			}
			for _, member := range roster {
				if member.IsHuman() {
					s.notify(ctx, "user:"+member.UserID,
						fmt.Sprintf("Your week %d fixture closes soon: play it or it will be simulated.", state.Week))
				}
			}
		}
	}
}

func (s *WindowService) closeWindow(ctx context.Context, state season.State, now time.Time) (TickResult, error) {
	fixtures, err := s.fixtureRepo.ListByWeek(ctx, state.SeasonID, state.Week)
	if err != nil {
		return TickResult{}, fmt.Errorf("list week %d fixtures: %w", state.Week, err)
	}

	unplayed := make([]fixture.Fixture, 0, len(fixtures))
	for _, item := range fixtures {
		if item.Played {
			continue
		}
		// A crash can leave an in_progress run behind; discard it and let
		// the simulator settle the fixture.
		if run, ok, lookupErr := s.matchRepo.GetByFixture(ctx, item.ID); lookupErr == nil && ok {
			if delErr := s.matchRepo.Delete(ctx, run.ID); delErr != nil {
				s.logger.WarnContext(ctx, "discard abandoned match failed", "match_id", run.ID, "error", delErr)
			}
		}
		unplayed = append(unplayed, item)
	}

	simulated, simFailed := s.simulation.SimulateWeek(ctx, unplayed)

	result := TickResult{
		Action:    tickActionClosed,
		Season:    state.SeasonID,
		Simulated: simulated,
		SimFailed: simFailed,
	}

	previousWeek := state.Week
	state.WindowOpen = false
	state.WindowClosesAt = nil
	state.Week++
	result.Week = state.Week

	if state.Week > s.cfg.TotalWeeks {
		return s.endSeason(ctx, state, now, result)
	}

	nextMatchDay := s.schedule.NextMatchDay(now)
	state.NextMatchDay = &nextMatchDay

	result.TransferOpened, result.TransferClosed = s.applyTransferEdge(ctx, &state)

	state, err = s.seasonRepo.Update(ctx, state)
	if err != nil {
		s.logger.WarnContext(ctx, "window close lost version race", "week", previousWeek, "error", err)
		return TickResult{Action: tickActionNone, Week: previousWeek, Season: state.SeasonID}, nil
	}

	s.logger.InfoContext(ctx, "match window closed",
		"season", state.SeasonID, "week_completed", previousWeek,
		"simulated", simulated, "sim_failed", simFailed, "next_match_day", nextMatchDay)
	s.notify(ctx, "channel:league",
		fmt.Sprintf("Week %d is done. Next match day: %s.", previousWeek, nextMatchDay.Format("Mon 15:04 MST")))

	return result, nil
}

// applyTransferEdge toggles the transfer window on week-set membership and
// reports which edge fired, if any. Side effects (offer generation, expiry)
// run exactly on the transition, not every tick.
func (s *WindowService) applyTransferEdge(ctx context.Context, state *season.State) (opened, closed bool) {
	_, inWindow := s.cfg.TransferWeeks[state.Week]
	switch {
	case inWindow && !state.TransferWindowActive:
		state.TransferWindowActive = true
		opened = true
		if s.transfers != nil {
			if _, err := s.transfers.RefreshOffers(ctx, state.SeasonID, state.Week); err != nil {
				s.logger.WarnContext(ctx, "opening transfer offers failed", "week", state.Week, "error", err)
			}
		}
		s.notify(ctx, "channel:league", "The transfer window is open. Check your offers!")
	case !inWindow && state.TransferWindowActive:
		state.TransferWindowActive = false
		closed = true
		if s.transfers != nil {
			if expired, err := s.transfers.ExpireOpenOffers(ctx); err != nil {
				s.logger.WarnContext(ctx, "expiring transfer offers failed", "error", err)
			} else if expired > 0 {
				s.logger.InfoContext(ctx, "transfer offers expired on window close", "count", expired)
			}
		}
		s.notify(ctx, "channel:league", "The transfer window has closed.")
	}
	return opened, closed
}

// endSeason advances the clock into the next season: age-up and retirement
// sweep, table reset, fresh fixtures, week back to 1.
func (s *WindowService) endSeason(ctx context.Context, state season.State, now time.Time, result TickResult) (TickResult, error) {
	completedSeason := state.SeasonID

	if s.retirement != nil {
		if err := s.retirement.AgeUpAll(ctx); err != nil {
			s.logger.WarnContext(ctx, "season-end age-up failed", "error", err)
		}
		if _, err := s.retirement.Sweep(ctx, completedSeason); err != nil {
			s.logger.WarnContext(ctx, "season-end retirement sweep failed", "error", err)
		}
	}
	if s.transfers != nil {
		if _, err := s.transfers.ExpireOpenOffers(ctx); err != nil {
			s.logger.WarnContext(ctx, "season-end offer expiry failed", "error", err)
		}
	}
	if err := s.resetTables(ctx); err != nil {
		s.logger.WarnContext(ctx, "season-end table reset failed", "error", err)
	}

	state.SeasonID++
	state.Week = 1
	state.TransferWindowActive = false
	nextMatchDay := s.schedule.NextMatchDay(now)
	state.NextMatchDay = &nextMatchDay

	if _, err := s.schedule.GenerateSeason(ctx, state.SeasonID); err != nil {
		return result, fmt.Errorf("generate season %d fixtures: %w", state.SeasonID, err)
	}

	result.TransferOpened, result.TransferClosed = s.applyTransferEdge(ctx, &state)

	state, err := s.seasonRepo.Update(ctx, state)
	if err != nil {
		s.logger.WarnContext(ctx, "season rollover lost version race", "error", err)
		return TickResult{Action: tickActionNone, Season: completedSeason}, nil
	}

	result.Season = state.SeasonID
	result.Week = state.Week
	result.SeasonEnded = true

	s.logger.InfoContext(ctx, "season rolled over",
		"completed_season", completedSeason, "new_season", state.SeasonID, "next_match_day", nextMatchDay)
	s.notify(ctx, "channel:league",
		fmt.Sprintf("Season %d is over. Season %d starts %s!", completedSeason, state.SeasonID, nextMatchDay.Format("Mon Jan 2")))

	return result, nil
}

func (s *WindowService) resetTables(ctx context.Context) error {
	leagues, err := s.teamLeagues(ctx)
	if err != nil {
		return err
	}
	for _, leagueID := range leagues {
		teams, err := s.simulation.teamRepo.ListByLeague(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		for _, club := range teams {
			club.ResetSeasonStats()
			if err := s.simulation.teamRepo.Update(ctx, club); err != nil {
				return fmt.Errorf("reset team %s: %w", club.ID, err)
			}
		}
	}
	return nil
}

func (s *WindowService) teamLeagues(ctx context.Context) ([]string, error) {
	leagues, err := s.simulation.teamRepo.ListLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	return leagues, nil
}

// notify swallows delivery failures: a lost message never blocks the clock.
func (s *WindowService) notify(ctx context.Context, target, message string) {
	if err := s.notifier.Notify(ctx, target, message); err != nil {
		s.logger.WarnContext(ctx, "notification delivery failed", "target", target, "error", err)
	}
}
