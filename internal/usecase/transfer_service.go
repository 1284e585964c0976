package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/season"
	"github.com/fieldmarshal/career-league/internal/domain/team"
	"github.com/fieldmarshal/career-league/internal/domain/transfer"
	"github.com/fieldmarshal/career-league/internal/platform/dice"
	"github.com/fieldmarshal/career-league/internal/platform/id"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

type TransferConfig struct {
	// MinOffers/MaxOffers bound how many offers one refresh generates per
	// eligible player.
	MinOffers int
	MaxOffers int
	// OfferTTLWeeks is how many weeks an offer survives before expiry.
	OfferTTLWeeks int
	// WinterWeek splits the season into two transfer window ids: weeks
	// before it belong to the summer window, the rest to the winter one.
	WinterWeek int
	// ReOfferChancePct is the per-club chance a previously rejected club
	// comes back with an improved offer.
	ReOfferChancePct int
}

func normalizeTransferConfig(cfg TransferConfig) TransferConfig {
	if cfg.MinOffers < 1 {
		cfg.MinOffers = 2
	}
	if cfg.MaxOffers < cfg.MinOffers {
		cfg.MaxOffers = 4
	}
	if cfg.OfferTTLWeeks < 1 {
		cfg.OfferTTLWeeks = 2
	}
	if cfg.WinterWeek < 1 {
		cfg.WinterWeek = 5
	}
	if cfg.ReOfferChancePct <= 0 {
		cfg.ReOfferChancePct = 35
	}
	return cfg
}

// Tier quality gates: a player needs rating or potential at the bar to draw
// offers from clubs in that tier.
const (
	tierOneThreshold = 75
	tierTwoThreshold = 58

	reOfferWageFactor = 1.15
)

type TransferService struct {
	seasonRepo   season.Repository
	playerRepo   player.Repository
	teamRepo     team.Repository
	transferRepo transfer.Repository
	ids          id.Generator
	roller       dice.Roller
	cfg          TransferConfig
	logger       *logging.Logger
}

func NewTransferService(
	seasonRepo season.Repository,
	playerRepo player.Repository,
	teamRepo team.Repository,
	transferRepo transfer.Repository,
	ids id.Generator,
	roller dice.Roller,
	cfg TransferConfig,
	logger *logging.Logger,
) *TransferService {
	if roller == nil {
		roller = dice.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TransferService{
		seasonRepo:   seasonRepo,
		playerRepo:   playerRepo,
		teamRepo:     teamRepo,
		transferRepo: transferRepo,
		ids:          ids,
		roller:       roller,
		cfg:          normalizeTransferConfig(cfg),
		logger:       logger,
	}
}

// WindowID derives the transfer window identity from the season and week
// number, never from wall-clock time. Two week-groups per season.
func (s *TransferService) WindowID(seasonID, week int) int {
	group := 1
	if week >= s.cfg.WinterWeek {
		group = 2
	}
	return seasonID*10 + group
}

// RefreshOffersNow is the manual job entrypoint: it refuses to run outside
// an active transfer window, then refreshes against the stored week.
func (s *TransferService) RefreshOffersNow(ctx context.Context) (int, error) {
	state, exists, err := s.seasonRepo.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("get season state: %w", err)
	}
	if !exists || !state.TransferWindowActive {
		return 0, fmt.Errorf("%w: transfer window is closed", ErrConflict)
	}
	return s.RefreshOffers(ctx, state.SeasonID, state.Week)
}

// RefreshOffers generates a fresh batch of offers for every human player who
// has not already moved in the current window. Returns how many offers were
// created. The caller is responsible for invoking it only while the window
// is, or is about to become, active.
func (s *TransferService) RefreshOffers(ctx context.Context, seasonID, week int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferService.RefreshOffers")
	defer span.End()

	windowID := s.WindowID(seasonID, week)

	humans, err := s.listHumans(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, candidate := range humans {
		if candidate.Retired || candidate.LastTransferWindow == windowID {
			continue
		}
		s.expireStaleOffers(ctx, candidate.UserID, week)
		n, err := s.refreshPlayerOffers(ctx, candidate, week)
		if err != nil {
			s.logger.WarnContext(ctx, "offer refresh failed for player",
				"user_id", candidate.UserID, "error", err)
			continue
		}
		created += n
	}

	s.logger.InfoContext(ctx, "transfer offers refreshed",
		"week", week, "window_id", windowID, "offers", created)
	return created, nil
}

// expireStaleOffers retires pending offers whose expiry week has passed, so
// a refresh never tops up a list padded with dead offers.
func (s *TransferService) expireStaleOffers(ctx context.Context, userID string, week int) {
	pending, err := s.transferRepo.ListPendingByUser(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "stale offer scan failed", "user_id", userID, "error", err)
		return
	}
	for _, offer := range pending {
		if week <= offer.ExpiresWeek {
			continue
		}
		if err := s.transferRepo.UpdateOfferStatus(ctx, offer.ID, transfer.StatusPending, transfer.StatusExpired); err != nil {
			s.logger.WarnContext(ctx, "stale offer expiry failed", "offer_id", offer.ID, "error", err)
		}
	}
}

func (s *TransferService) listHumans(ctx context.Context) ([]player.Player, error) {
	active, err := s.playerRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active players: %w", err)
	}
	humans := active[:0:0]
	for _, item := range active {
		if item.IsHuman() {
			humans = append(humans, item)
		}
	}
	return humans, nil
}

func (s *TransferService) refreshPlayerOffers(ctx context.Context, subject player.Player, week int) (int, error) {
	clubs, err := s.eligibleClubs(ctx, subject)
	if err != nil {
		return 0, err
	}
	if len(clubs) == 0 {
		return 0, nil
	}

	rejectedWage := map[string]int64{}
	rejected, err := s.transferRepo.ListRejectedByUser(ctx, subject.UserID)
	if err != nil {
		return 0, fmt.Errorf("list rejected offers: %w", err)
	}
	for _, old := range rejected {
		if old.Wage > rejectedWage[old.TeamID] {
			rejectedWage[old.TeamID] = old.Wage
		}
	}

	target := dice.Between(s.roller, s.cfg.MinOffers, s.cfg.MaxOffers)
	if target > len(clubs) {
		target = len(clubs)
	}

	// Shuffle by repeated random draw so each refresh picks a different
	// slice of the eligible pool.
	picked := make([]team.Team, 0, target)
	pool := append([]team.Team(nil), clubs...)
	for len(picked) < target && len(pool) > 0 {
		i := s.roller.IntN(len(pool))
		picked = append(picked, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}

	created := 0
	for _, club := range picked {
		wage := s.offerWage(subject, club)
		var previous int64
		if prev, wasRejected := rejectedWage[club.ID]; wasRejected {
			if s.roller.IntN(100) >= s.cfg.ReOfferChancePct {
				continue
			}
			previous = prev
			if improved := int64(float64(prev) * reOfferWageFactor); wage < improved {
				wage = improved
			}
		}

		offerID, err := s.ids.NewID()
		if err != nil {
			return created, fmt.Errorf("generate offer id: %w", err)
		}
		offer := transfer.Offer{
			ID:            offerID,
			UserID:        subject.UserID,
			TeamID:        club.ID,
			Wage:          wage,
			ContractYears: dice.Between(s.roller, 1, 3),
			OfferWeek:     week,
			ExpiresWeek:   week + s.cfg.OfferTTLWeeks,
			Status:        transfer.StatusPending,
			PreviousWage:  previous,
		}
		if err := s.transferRepo.InsertOffer(ctx, offer); err != nil {
			return created, fmt.Errorf("insert offer: %w", err)
		}
		created++
	}
	return created, nil
}

// eligibleClubs returns every club, outside the player's current one, in a
// league whose quality bar the player's rating or potential clears.
func (s *TransferService) eligibleClubs(ctx context.Context, subject player.Player) ([]team.Team, error) {
	leagues, err := s.teamRepo.ListLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	sort.Strings(leagues)

	ceiling := subject.Overall
	if subject.Potential > ceiling {
		ceiling = subject.Potential
	}

	var clubs []team.Team
	for _, leagueID := range leagues {
		members, err := s.teamRepo.ListByLeague(ctx, leagueID)
		if err != nil {
			return nil, fmt.Errorf("list teams in %s: %w", leagueID, err)
		}
		for _, club := range members {
			if club.ID == subject.TeamID {
				continue
			}
			if ceiling < tierThreshold(club.Tier) {
				continue
			}
			clubs = append(clubs, club)
		}
	}
	return clubs, nil
}

func tierThreshold(tier int) int {
	if tier <= 1 {
		return tierOneThreshold
	}
	return tierTwoThreshold
}

// offerWage prices an offer from rating, league tier, and a bounded
// performance bonus.
func (s *TransferService) offerWage(subject player.Player, club team.Team) int64 {
	base := int64(subject.Overall) * 120
	if club.Tier <= 1 {
		base = base * 3 / 2
	}

	bonus := int64(subject.SeasonGoals)*180 + int64(subject.SeasonRating*250)
	if bonus > 4000 {
		bonus = 4000
	}

	// Small random spread so two clubs never quote the same number.
	spread := int64(dice.Between(s.roller, -200, 400))
	wage := base + bonus + spread
	if wage < 500 {
		wage = 500
	}
	return wage
}

// ListOffers returns the user's pending offers.
func (s *TransferService) ListOffers(ctx context.Context, userID string) ([]transfer.Offer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferService.ListOffers")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	offers, err := s.transferRepo.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending offers: %w", err)
	}
	return offers, nil
}

// Accept moves the player to the offering club. The offer flips to accepted
// and every other pending offer to rejected; the player row then takes the
// new club, wage, contract, and window stamp. A failed player write rolls the
// offer flip back, keeping at most one accepted move per window id.
func (s *TransferService) Accept(ctx context.Context, userID, offerID string) (transfer.Offer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferService.Accept")
	defer span.End()

	if userID == "" || offerID == "" {
		return transfer.Offer{}, fmt.Errorf("%w: user id and offer id are required", ErrInvalidInput)
	}

	state, exists, err := s.seasonRepo.Get(ctx)
	if err != nil {
		return transfer.Offer{}, fmt.Errorf("get season state: %w", err)
	}
	if !exists || !state.TransferWindowActive {
		return transfer.Offer{}, fmt.Errorf("%w: transfer window is closed", ErrConflict)
	}
	windowID := s.WindowID(state.SeasonID, state.Week)

	subject, found, err := s.playerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return transfer.Offer{}, fmt.Errorf("get player: %w", err)
	}
	if !found {
		return transfer.Offer{}, fmt.Errorf("%w: player for user %s", ErrNotFound, userID)
	}
	if subject.LastTransferWindow == windowID {
		return transfer.Offer{}, fmt.Errorf("%w: already transferred this window", ErrConflict)
	}

	// Everything that can fail on its own input runs before the offer flip,
	// so the only write left after it is the player row.
	offer, found, err := s.transferRepo.GetOffer(ctx, offerID)
	if err != nil {
		return transfer.Offer{}, fmt.Errorf("get offer: %w", err)
	}
	if !found || offer.UserID != userID {
		return transfer.Offer{}, fmt.Errorf("%w: offer %s for user %s", ErrNotFound, offerID, userID)
	}
	if state.Week > offer.ExpiresWeek {
		if err := s.transferRepo.UpdateOfferStatus(ctx, offerID, transfer.StatusPending, transfer.StatusExpired); err != nil {
			s.logger.WarnContext(ctx, "stale offer expiry failed", "offer_id", offerID, "error", err)
		}
		return transfer.Offer{}, fmt.Errorf("%w: offer expired in week %d", ErrConflict, offer.ExpiresWeek)
	}

	club, found, err := s.teamRepo.GetByID(ctx, offer.TeamID)
	if err != nil {
		return transfer.Offer{}, fmt.Errorf("get club: %w", err)
	}
	if !found {
		return transfer.Offer{}, fmt.Errorf("%w: club %s", ErrNotFound, offer.TeamID)
	}

	historyID, err := s.ids.NewID()
	if err != nil {
		return transfer.Offer{}, fmt.Errorf("generate history id: %w", err)
	}

	accepted, err := s.transferRepo.AcceptOffer(ctx, userID, offerID)
	if err != nil {
		return transfer.Offer{}, fmt.Errorf("accept offer: %w", err)
	}

	fromTeamID := subject.TeamID
	subject.TeamID = club.ID
	subject.LeagueID = club.LeagueID
	subject.Wage = accepted.Wage
	subject.ContractYears = accepted.ContractYears
	subject.LastTransferWindow = windowID
	if err := s.playerRepo.Update(ctx, subject); err != nil {
		// Roll the flip back: no offer may stay accepted without the
		// player's window stamp, or a later refresh mints fresh offers and
		// a second accept slips through in the same window.
		if revertErr := s.transferRepo.UpdateOfferStatus(ctx, accepted.ID, transfer.StatusAccepted, transfer.StatusPending); revertErr != nil {
			s.logger.ErrorContext(ctx, "offer revert after failed player update",
				"offer_id", accepted.ID, "error", revertErr)
		}
		return transfer.Offer{}, fmt.Errorf("update player: %w", err)
	}

	history := transfer.History{
		ID:         historyID,
		UserID:     userID,
		FromTeamID: fromTeamID,
		ToTeamID:   club.ID,
		Wage:       accepted.Wage,
		Season:     state.SeasonID,
		Week:       state.Week,
		WindowID:   windowID,
	}
	if err := s.transferRepo.InsertHistory(ctx, history); err != nil {
		// The move is committed and window-stamped; a missing history row
		// only thins the career page.
		s.logger.ErrorContext(ctx, "transfer history write failed",
			"user_id", userID, "offer_id", accepted.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "transfer accepted",
		"user_id", userID, "from", fromTeamID, "to", club.ID, "wage", accepted.Wage, "window_id", windowID)
	return accepted, nil
}

// History returns the user's past completed moves.
func (s *TransferService) History(ctx context.Context, userID string) ([]transfer.History, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferService.History")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	rows, err := s.transferRepo.ListHistoryByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transfer history: %w", err)
	}
	return rows, nil
}

// ExpireOpenOffers transitions every still-pending offer to expired. Status
// rows are retained for history, never deleted.
func (s *TransferService) ExpireOpenOffers(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferService.ExpireOpenOffers")
	defer span.End()

	expired, err := s.transferRepo.ExpirePending(ctx)
	if err != nil {
		return 0, fmt.Errorf("expire pending offers: %w", err)
	}
	return expired, nil
}
