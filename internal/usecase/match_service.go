package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fieldmarshal/career-league/internal/domain/fixture"
	"github.com/fieldmarshal/career-league/internal/domain/match"
	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/fieldmarshal/career-league/internal/platform/dice"
	"github.com/fieldmarshal/career-league/internal/platform/id"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

type MatchConfig struct {
	// MinEvents/MaxEvents bound how many key moments one match gets; the
	// count is drawn once at start.
	MinEvents int
	MaxEvents int
	// DecisionTimeout is the human response window per key moment. On
	// expiry the recommended action fires; the match never stalls.
	DecisionTimeout time.Duration
}

func normalizeMatchConfig(cfg MatchConfig) MatchConfig {
	if cfg.MinEvents < 1 {
		cfg.MinEvents = 6
	}
	if cfg.MaxEvents < cfg.MinEvents {
		cfg.MaxEvents = 10
	}
	if cfg.DecisionTimeout <= 0 {
		cfg.DecisionTimeout = 30 * time.Second
	}
	return cfg
}

// Resolution tuning. The unopposed floor is checked against the raw die;
// modifiers only matter in contested checks. A shot converts on a natural 20
// or on beating the defender total by at least the goal margin.
const (
	unopposedFloor      = 10
	goalMargin          = 4
	npcShotFloor        = 13
	teammateShotFloor   = 14
	followUpChancePct   = 35
	defaultOpponentStat = 60
	halftimeMinute      = 45
)

// MatchService runs the interactive key-moment state machine for one
// fixture. One goroutine per active match; concurrent matches on different
// fixtures are fine, a second run on the same fixture is rejected.
type MatchService struct {
	fixtureRepo fixture.Repository
	matchRepo   match.Repository
	playerRepo  player.Repository
	teamRepo    team.Repository
	prompter    Prompter
	notifier    Notifier
	ids         id.Generator
	roller      dice.Roller
	cfg         MatchConfig
	logger      *logging.Logger
}

func NewMatchService(
	fixtureRepo fixture.Repository,
	matchRepo match.Repository,
	playerRepo player.Repository,
	teamRepo team.Repository,
	prompter Prompter,
	notifier Notifier,
	ids id.Generator,
	roller dice.Roller,
	cfg MatchConfig,
	logger *logging.Logger,
) *MatchService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if roller == nil {
		roller = dice.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		fixtureRepo: fixtureRepo,
		matchRepo:   matchRepo,
		playerRepo:  playerRepo,
		teamRepo:    teamRepo,
		prompter:    prompter,
		notifier:    notifier,
		ids:         ids,
		roller:      roller,
		cfg:         normalizeMatchConfig(cfg),
		logger:      logger,
	}
}

// Start creates the active run for a playable fixture and joins every human
// on either roster as a participant. The caller must control one of them.
func (s *MatchService) Start(ctx context.Context, userID, fixtureID string) (match.ActiveMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Start")
	defer span.End()

	if userID == "" || fixtureID == "" {
		return match.ActiveMatch{}, fmt.Errorf("%w: user id and fixture id are required", ErrInvalidInput)
	}

	item, found, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		return match.ActiveMatch{}, fmt.Errorf("get fixture: %w", err)
	}
	if !found {
		return match.ActiveMatch{}, fmt.Errorf("%w: fixture %s", ErrNotFound, fixtureID)
	}
	if item.Played {
		return match.ActiveMatch{}, fmt.Errorf("%w: fixture already played", ErrConflict)
	}
	if !item.Playable {
		return match.ActiveMatch{}, fmt.Errorf("%w: match window is not open for this fixture", ErrConflict)
	}

	humans, err := s.rosterHumans(ctx, item.HomeTeamID, item.AwayTeamID)
	if err != nil {
		return match.ActiveMatch{}, err
	}
	callerIncluded := false
	for _, member := range humans {
		if member.UserID == userID {
			callerIncluded = true
			break
		}
	}
	if !callerIncluded {
		return match.ActiveMatch{}, fmt.Errorf("%w: user %s has no player in this fixture", ErrUnauthorized, userID)
	}

	matchID, err := s.ids.NewID()
	if err != nil {
		return match.ActiveMatch{}, fmt.Errorf("generate match id: %w", err)
	}
	run := match.ActiveMatch{
		ID:          matchID,
		FixtureID:   item.ID,
		HomeTeamID:  item.HomeTeamID,
		AwayTeamID:  item.AwayTeamID,
		EventsTotal: dice.Between(s.roller, s.cfg.MinEvents, s.cfg.MaxEvents),
		State:       match.StateInProgress,
	}
	if err := s.matchRepo.Insert(ctx, run); err != nil {
		if errors.Is(err, match.ErrFixtureBusy) {
			return match.ActiveMatch{}, fmt.Errorf("%w: match already in progress for this fixture", ErrConflict)
		}
		return match.ActiveMatch{}, fmt.Errorf("insert active match: %w", err)
	}

	for _, member := range humans {
		part := match.Participant{
			MatchID:  run.ID,
			UserID:   member.UserID,
			PlayerID: member.ID,
			TeamID:   member.TeamID,
			Rating:   6.0,
		}
		if err := s.matchRepo.AddParticipant(ctx, part); err != nil {
			return match.ActiveMatch{}, fmt.Errorf("add participant: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "interactive match started",
		"match_id", run.ID, "fixture_id", item.ID, "key_moments", run.EventsTotal, "humans", len(humans))
	return run, nil
}

func (s *MatchService) rosterHumans(ctx context.Context, teamIDs ...string) ([]player.Player, error) {
	var humans []player.Player
	for _, teamID := range teamIDs {
		roster, err := s.playerRepo.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("list roster %s: %w", teamID, err)
		}
		for _, member := range roster {
			if member.IsHuman() {
				humans = append(humans, member)
			}
		}
	}
	return humans, nil
}

// Run drives the match from its current state to full time. It is meant to
// be launched once per started match; missing rows mid-resolution are soft
// failures handled with default stats, never aborts.
func (s *MatchService) Run(ctx context.Context, matchID string) (match.ActiveMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Run")
	defer span.End()

	run, found, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.ActiveMatch{}, fmt.Errorf("get active match: %w", err)
	}
	if !found {
		return match.ActiveMatch{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if run.State != match.StateInProgress {
		return match.ActiveMatch{}, fmt.Errorf("%w: match is %s", ErrConflict, run.State)
	}

	participants, err := s.matchRepo.ListParticipants(ctx, run.ID)
	if err != nil {
		return match.ActiveMatch{}, fmt.Errorf("list participants: %w", err)
	}
	byTeam := map[string][]*match.Participant{}
	for i := range participants {
		p := &participants[i]
		byTeam[p.TeamID] = append(byTeam[p.TeamID], p)
	}

	minutes := s.keyMomentMinutes(run.EventsTotal)
	halftimeTold := false

	for _, minute := range minutes {
		if !halftimeTold && minute > halftimeMinute {
			s.narrate(ctx, &run, fmt.Sprintf("Halftime: %d-%d.", run.HomeScore, run.AwayScore))
			halftimeTold = true
		}

		attackingTeam, defendingTeam := run.HomeTeamID, run.AwayTeamID
		if s.roller.Roll(2) == 2 {
			attackingTeam, defendingTeam = run.AwayTeamID, run.HomeTeamID
		}

		var scored bool
		if attackers := byTeam[attackingTeam]; len(attackers) > 0 {
			actor := attackers[s.roller.IntN(len(attackers))]
			scored = s.interactiveMoment(ctx, &run, actor, attackingTeam, defendingTeam, minute)
		} else {
			scored = s.npcMoment(ctx, &run, attackingTeam, minute)
		}
		if scored {
			if attackingTeam == run.HomeTeamID {
				run.HomeScore++
			} else {
				run.AwayScore++
			}
		}

		run.Minute = minute
		run.EventsDone++
		if err := s.matchRepo.Update(ctx, run); err != nil {
			s.logger.WarnContext(ctx, "active match checkpoint failed", "match_id", run.ID, "error", err)
		}
	}

	// Every drawn minute can land in the first half, so the summary still
	// has to fire before full time.
	if !halftimeTold {
		s.narrate(ctx, &run, fmt.Sprintf("Halftime: %d-%d.", run.HomeScore, run.AwayScore))
	}

	run.Minute = 90
	run.State = match.StateCompleted
	if err := s.finalize(ctx, &run, participants); err != nil {
		return run, err
	}
	return run, nil
}

// keyMomentMinutes draws strictly increasing distinct minutes in 1..90.
func (s *MatchService) keyMomentMinutes(count int) []int {
	if count > 90 {
		count = 90
	}
	seen := make(map[int]struct{}, count)
	out := make([]int, 0, count)
	for len(out) < count {
		minute := 1 + s.roller.IntN(90)
		if _, dup := seen[minute]; dup {
			continue
		}
		seen[minute] = struct{}{}
		out = append(out, minute)
	}
	sort.Ints(out)
	return out
}

// outcome is the result of one resolved action.
type outcome struct {
	success     bool
	critSuccess bool
	critFailure bool
	margin      int
	goal        bool
}

// interactiveMoment runs one human key moment: menu, prompt with timeout,
// contested check, optional teammate follow-up, optional one-hop chain.
// Returns whether the attacking side scored.
func (s *MatchService) interactiveMoment(ctx context.Context, run *match.ActiveMatch, actor *match.Participant, attackingTeam, defendingTeam string, minute int) bool {
	subject, found, err := s.playerRepo.GetByID(ctx, actor.PlayerID)
	if err != nil || !found {
		s.logger.WarnContext(ctx, "participant player lookup failed, skipping moment",
			"player_id", actor.PlayerID, "error", err)
		return false
	}
	formMod := subject.FormModifier()

	defender, haveDefender := s.drawDefender(ctx, defendingTeam)

	options := match.ActionsFor(subject.Position)
	chance := func(spec match.Spec) float64 {
		return s.successChance(spec, subject, formMod, defender, haveDefender)
	}
	recommended := match.Recommend(options, chance)

	chosen := s.promptAction(ctx, subject, options, recommended, minute)

	scored := s.resolveAndScore(ctx, run, actor, subject, formMod, chosen, defender, haveDefender, attackingTeam, minute)

	// One extra hop on success, fixed per-action mapping. The follow-up
	// fires automatically, no second prompt.
	return scored
}

// resolveAndScore applies the full resolution machinery for one action plus
// its optional follow-up hop, mutating the participant. Returns whether a
// goal was scored by the attacking side during this moment.
func (s *MatchService) resolveAndScore(ctx context.Context, run *match.ActiveMatch, actor *match.Participant, subject player.Player, formMod int, spec match.Spec, defender player.Player, haveDefender bool, attackingTeam string, minute int) bool {
	scored := false

	result := s.resolve(spec, subject, formMod, defender, haveDefender)
	s.applyRatingDelta(actor, spec, result)
	actor.ActionsTaken++

	switch {
	case result.goal:
		scored = true
		actor.Goals++
		s.narrate(ctx, run, fmt.Sprintf("%d' GOAL! %s %s and scores!", minute, subject.Name, spec.Narrative))
	case result.success:
		s.narrate(ctx, run, fmt.Sprintf("%d' %s %s. It comes off.", minute, subject.Name, spec.Narrative))
	case result.critFailure:
		s.narrate(ctx, run, fmt.Sprintf("%d' %s %s and loses it badly.", minute, subject.Name, spec.Narrative))
	default:
		s.narrate(ctx, run, fmt.Sprintf("%d' %s %s, but it breaks down.", minute, subject.Name, spec.Narrative))
	}

	if result.success && spec.Playmaking && s.roller.IntN(100) < followUpChancePct {
		if s.teammateShot(ctx, run, actor, subject, attackingTeam, minute) {
			scored = true
		}
	}

	if result.success && spec.FollowUp != "" {
		if next, ok := match.SpecFor(spec.FollowUp); ok {
			chained := next
			chained.FollowUp = "" // one hop only
			chained.Playmaking = false
			if s.resolveAndScore(ctx, run, actor, subject, formMod, chained, defender, haveDefender, attackingTeam, minute) {
				scored = true
			}
		}
	}

	if err := s.matchRepo.UpdateParticipant(ctx, *actor); err != nil {
		s.logger.WarnContext(ctx, "participant update failed", "user_id", actor.UserID, "error", err)
	}
	return scored
}

// drawDefender picks a random NPC from the defending roster, preferring
// actual defenders. A failed lookup is a soft miss; the caller falls back to
// a default stat line.
func (s *MatchService) drawDefender(ctx context.Context, defendingTeam string) (player.Player, bool) {
	roster, err := s.playerRepo.ListByTeam(ctx, defendingTeam)
	if err != nil || len(roster) == 0 {
		return player.Player{}, false
	}
	var npcs, backline []player.Player
	for _, member := range roster {
		if member.IsHuman() {
			continue
		}
		npcs = append(npcs, member)
		if member.Position == player.PositionDefender {
			backline = append(backline, member)
		}
	}
	if len(backline) > 0 {
		return backline[s.roller.IntN(len(backline))], true
	}
	if len(npcs) > 0 {
		return npcs[s.roller.IntN(len(npcs))], true
	}
	return player.Player{}, false
}

// narrate pushes one match-feed line. Delivery failures are swallowed.
func (s *MatchService) narrate(ctx context.Context, run *match.ActiveMatch, line string) {
	if err := s.notifier.Notify(ctx, "match:"+run.ID, line); err != nil {
		s.logger.DebugContext(ctx, "match narration dropped", "match_id", run.ID, "error", err)
	}
}

// promptAction asks the human and falls back to the recommendation on any
// timeout or delivery failure. Progress never depends on an answer.
func (s *MatchService) promptAction(ctx context.Context, subject player.Player, options []match.Spec, recommended match.Spec, minute int) match.Spec {
	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = opt.Label
	}
	question := fmt.Sprintf("%d' The moment is yours, %s. Recommended: %s.", minute, subject.Name, recommended.Label)

	answer, err := s.prompter.PromptChoice(ctx, subject.UserID, question, labels, s.cfg.DecisionTimeout)
	if err != nil {
		return recommended
	}
	for _, opt := range options {
		if opt.Label == answer {
			return opt
		}
	}
	return recommended
}

// resolve runs the contested or unopposed check for one action.
func (s *MatchService) resolve(spec match.Spec, subject player.Player, formMod int, defender player.Player, haveDefender bool) outcome {
	roll := s.roller.Roll(dice.D20Sides)
	var out outcome
	out.critSuccess = roll == dice.NaturalMax
	out.critFailure = roll == dice.NaturalMin

	stat := subject.StatFor(spec.PrimaryStat) + formMod
	if stat < 0 {
		stat = 0
	}
	total := roll + stat/10

	if spec.Opposed {
		defStat := defaultOpponentStat
		if haveDefender {
			defStat = defender.StatFor(spec.OpposingStat)
		}
		defTotal := s.roller.Roll(dice.D20Sides) + defStat/10
		out.margin = total - defTotal
		out.success = total > defTotal
	} else {
		out.margin = roll - unopposedFloor
		out.success = roll >= unopposedFloor
	}

	// Naturals override the arithmetic in both directions.
	if out.critSuccess {
		out.success = true
	}
	if out.critFailure {
		out.success = false
	}

	out.goal = spec.Shot && out.success && (out.critSuccess || out.margin >= goalMargin)
	return out
}

// successChance is the analytic probability backing the recommendation and
// the menu shown to the human.
func (s *MatchService) successChance(spec match.Spec, subject player.Player, formMod int, defender player.Player, haveDefender bool) float64 {
	stat := subject.StatFor(spec.PrimaryStat) + formMod
	if stat < 0 {
		stat = 0
	}
	if !spec.Opposed {
		return float64(dice.D20Sides-unopposedFloor+1) / float64(dice.D20Sides)
	}
	defStat := defaultOpponentStat
	if haveDefender {
		defStat = defender.StatFor(spec.OpposingStat)
	}
	myMod, theirMod := stat/10, defStat/10

	wins := 0
	for mine := 1; mine <= dice.D20Sides; mine++ {
		for theirs := 1; theirs <= dice.D20Sides; theirs++ {
			if mine+myMod > theirs+theirMod {
				wins++
			}
		}
	}
	return float64(wins) / float64(dice.D20Sides*dice.D20Sides)
}

// applyRatingDelta nudges the running match rating, impact-weighted, larger
// for goals, inverted and smaller for failures. Always clamped to [0,10].
func (s *MatchService) applyRatingDelta(actor *match.Participant, spec match.Spec, result outcome) {
	var delta float64
	switch {
	case result.goal:
		delta = 0.8 + 0.4*spec.Impact
	case result.success:
		delta = 0.15 + 0.35*spec.Impact
	default:
		delta = -(0.1 + 0.2*spec.Impact)
	}
	if result.critSuccess {
		delta *= 1.5
	}
	if result.critFailure {
		delta *= 2
	}
	actor.Rating = player.ClampRating(actor.Rating + delta)
}

// teammateShot is the playmaking payoff: a random NPC teammate takes an
// unopposed shot; scoring credits the goal to the NPC and the assist to the
// human.
func (s *MatchService) teammateShot(ctx context.Context, run *match.ActiveMatch, actor *match.Participant, subject player.Player, attackingTeam string, minute int) bool {
	roster, err := s.playerRepo.ListByTeam(ctx, attackingTeam)
	if err != nil {
		return false
	}
	npcs := roster[:0:0]
	for _, member := range roster {
		if !member.IsHuman() && member.ID != subject.ID {
			npcs = append(npcs, member)
		}
	}
	if len(npcs) == 0 {
		return false
	}
	teammate := npcs[s.roller.IntN(len(npcs))]

	roll := s.roller.Roll(dice.D20Sides)
	if roll == dice.NaturalMin || roll+teammate.Attributes.Shooting/10 < teammateShotFloor {
		return false
	}

	actor.Assists++
	actor.Rating = player.ClampRating(actor.Rating + 0.5)
	s.narrate(ctx, run, fmt.Sprintf("%d' GOAL! %s finishes it off, assisted by %s!", minute, teammate.Name, subject.Name))
	return true
}

// npcMoment is the simplified step when no human attacks: one unopposed
// stat-plus-die roll against a fixed difficulty, no branching, no chains.
func (s *MatchService) npcMoment(ctx context.Context, run *match.ActiveMatch, attackingTeam string, minute int) bool {
	roster, err := s.playerRepo.ListByTeam(ctx, attackingTeam)
	if err != nil || len(roster) == 0 {
		return false
	}
	attacker := roster[s.roller.IntN(len(roster))]

	roll := s.roller.Roll(dice.D20Sides)
	if roll == dice.NaturalMin || roll+attacker.Attributes.Shooting/10 < npcShotFloor {
		return false
	}
	s.narrate(ctx, run, fmt.Sprintf("%d' GOAL! %s strikes for %s.", minute, attacker.Name, attackingTeam))
	return true
}

// finalize persists the result: fixture score, league tables, participant
// season aggregates, then releases the run row.
func (s *MatchService) finalize(ctx context.Context, run *match.ActiveMatch, participants []match.Participant) error {
	if err := s.fixtureRepo.RecordResult(ctx, run.FixtureID, run.HomeScore, run.AwayScore); err != nil {
		if errors.Is(err, fixture.ErrAlreadyPlayed) {
			// The close tick auto-simulated first; its result stands.
			s.logger.WarnContext(ctx, "fixture settled elsewhere, discarding interactive result",
				"match_id", run.ID, "fixture_id", run.FixtureID)
			return s.matchRepo.Delete(ctx, run.ID)
		}
		return fmt.Errorf("record result: %w", err)
	}

	s.applyTable(ctx, run.HomeTeamID, run.HomeScore, run.AwayScore)
	s.applyTable(ctx, run.AwayTeamID, run.AwayScore, run.HomeScore)

	for _, part := range participants {
		s.foldParticipant(ctx, run, part)
	}

	s.narrate(ctx, run, fmt.Sprintf("Full time: %d-%d.", run.HomeScore, run.AwayScore))
	s.logger.InfoContext(ctx, "interactive match completed",
		"match_id", run.ID, "fixture_id", run.FixtureID,
		"home_score", run.HomeScore, "away_score", run.AwayScore)

	if err := s.matchRepo.Delete(ctx, run.ID); err != nil {
		return fmt.Errorf("release active match: %w", err)
	}
	return nil
}

func (s *MatchService) applyTable(ctx context.Context, teamID string, goalsFor, goalsAgainst int) {
	club, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil || !found {
		s.logger.WarnContext(ctx, "table update skipped, team lookup failed", "team_id", teamID, "error", err)
		return
	}
	club.ApplyResult(goalsFor, goalsAgainst)
	if err := s.teamRepo.Update(ctx, club); err != nil {
		s.logger.WarnContext(ctx, "table update failed", "team_id", teamID, "error", err)
	}
}

// foldParticipant folds the match into the player's season line: a running
// weighted rating mean, apps/goals/assists, then form by rating band and
// morale by outcome.
func (s *MatchService) foldParticipant(ctx context.Context, run *match.ActiveMatch, part match.Participant) {
	subject, found, err := s.playerRepo.GetByID(ctx, part.PlayerID)
	if err != nil || !found {
		s.logger.WarnContext(ctx, "season stats skipped, player lookup failed",
			"player_id", part.PlayerID, "error", err)
		return
	}

	apps := subject.SeasonApps
	subject.SeasonRating = (subject.SeasonRating*float64(apps) + part.Rating) / float64(apps+1)
	subject.SeasonApps = apps + 1
	subject.SeasonGoals += part.Goals
	subject.SeasonAssists += part.Assists

	switch {
	case part.Rating >= 8.5:
		subject.Form = player.ClampBand(subject.Form + 2)
	case part.Rating >= 7:
		subject.Form = player.ClampBand(subject.Form + 1)
	case part.Rating < 4:
		subject.Form = player.ClampBand(subject.Form - 2)
	case part.Rating < 5.5:
		subject.Form = player.ClampBand(subject.Form - 1)
	}

	myScore, theirScore := run.HomeScore, run.AwayScore
	if part.TeamID == run.AwayTeamID {
		myScore, theirScore = theirScore, myScore
	}
	switch {
	case myScore > theirScore:
		subject.Morale = player.ClampBand(subject.Morale + 1)
	case myScore < theirScore:
		subject.Morale = player.ClampBand(subject.Morale - 1)
	}
	if part.Goals > 0 {
		subject.Morale = player.ClampBand(subject.Morale + 1)
	}

	if err := s.playerRepo.Update(ctx, subject); err != nil {
		s.logger.WarnContext(ctx, "season stats update failed", "player_id", subject.ID, "error", err)
	}
}

// Active returns the live run for a fixture, if any.
func (s *MatchService) Active(ctx context.Context, fixtureID string) (match.ActiveMatch, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Active")
	defer span.End()

	if fixtureID == "" {
		return match.ActiveMatch{}, false, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}
	return s.matchRepo.GetByFixture(ctx, fixtureID)
}
