package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/season"
	"github.com/fieldmarshal/career-league/internal/domain/transfer"
	"github.com/fieldmarshal/career-league/internal/infrastructure/repository/memory"
	"github.com/fieldmarshal/career-league/internal/platform/dice"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

// failingUpdatePlayers fails a set number of Update calls before recovering.
type failingUpdatePlayers struct {
	*memory.PlayerRepository
	failures int
}

func (r *failingUpdatePlayers) Update(ctx context.Context, item player.Player) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("player store offline")
	}
	return r.PlayerRepository.Update(ctx, item)
}

func newTransferService(w *world, roller dice.Roller) *TransferService {
	return NewTransferService(
		w.seasons, w.players, w.teams, w.transfers,
		&seqIDs{prefix: "tr"}, roller, TransferConfig{}, logging.NewNop())
}

func openTransferWindow(t *testing.T, w *world, week int) {
	t.Helper()
	if err := w.seasons.Create(context.Background(), season.State{
		SeasonID: 1, Started: true, Week: week, TransferWindowActive: true,
	}); err != nil {
		t.Fatalf("create season state: %v", err)
	}
}

func TestTransferService_RefreshOffers_BoundedBatchPerPlayer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	openTransferWindow(t, w, 1)
	w.addHuman("u1", "leeds", "FWD", 80)

	service := newTransferService(w, dice.NewSeeded(11))
	created, err := service.RefreshOffers(ctx, 1, 1)
	if err != nil {
		t.Fatalf("refresh offers: %v", err)
	}
	if created < 2 || created > 4 {
		t.Fatalf("offers created: got=%d want 2..4", created)
	}

	offers, err := service.ListOffers(ctx, "u1")
	if err != nil {
		t.Fatalf("list offers: %v", err)
	}
	if len(offers) != created {
		t.Fatalf("pending offers: got=%d want=%d", len(offers), created)
	}
	for _, offer := range offers {
		if offer.TeamID == "leeds" {
			t.Fatal("offer from the player's own club")
		}
		if offer.Wage <= 0 {
			t.Fatalf("non-positive wage on offer %s", offer.ID)
		}
		if offer.Status != transfer.StatusPending {
			t.Fatalf("offer %s status: got=%s", offer.ID, offer.Status)
		}
	}
}

func TestTransferService_RefreshOffers_TierGate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	openTransferWindow(t, w, 1)
	// Rating and potential both below the tier-one bar.
	w.addHuman("u1", "leeds", "MID", 60)

	service := newTransferService(w, dice.NewSeeded(5))
	if _, err := service.RefreshOffers(ctx, 1, 1); err != nil {
		t.Fatalf("refresh offers: %v", err)
	}

	offers, err := service.ListOffers(ctx, "u1")
	if err != nil {
		t.Fatalf("list offers: %v", err)
	}
	for _, offer := range offers {
		club, _, err := w.teams.GetByID(ctx, offer.TeamID)
		if err != nil {
			t.Fatalf("club lookup: %v", err)
		}
		if club.Tier == 1 {
			t.Fatalf("tier-one club %s offered for a sub-threshold player", club.ID)
		}
	}
}

func TestTransferService_Accept_AtomicAndOncePerWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	openTransferWindow(t, w, 1)
	human := w.addHuman("u1", "leeds", "FWD", 80)

	service := newTransferService(w, dice.NewSeeded(3))
	offerA := transfer.Offer{
		ID: "offer-a", UserID: "u1", TeamID: "arsenal", Wage: 9000,
		ContractYears: 2, OfferWeek: 1, ExpiresWeek: 3, Status: transfer.StatusPending,
	}
	offerB := transfer.Offer{
		ID: "offer-b", UserID: "u1", TeamID: "coventry", Wage: 3000,
		ContractYears: 1, OfferWeek: 1, ExpiresWeek: 3, Status: transfer.StatusPending,
	}
	for _, offer := range []transfer.Offer{offerA, offerB} {
		if err := w.transfers.InsertOffer(ctx, offer); err != nil {
			t.Fatalf("insert offer: %v", err)
		}
	}

	accepted, err := service.Accept(ctx, "u1", "offer-a")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != transfer.StatusAccepted {
		t.Fatalf("accepted status: got=%s", accepted.Status)
	}

	// Every other pending offer flipped to rejected in the same operation.
	pending, err := w.transfers.ListPendingByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending offers after accept: got=%d want=0", len(pending))
	}
	rejected, err := w.transfers.ListRejectedByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list rejected: %v", err)
	}
	if len(rejected) != 1 || rejected[0].ID != "offer-b" {
		t.Fatalf("rejected offers after accept: %+v", rejected)
	}

	// Player moved, wage updated, history stamped with the window id.
	moved, _, err := w.players.GetByID(ctx, human.ID)
	if err != nil {
		t.Fatalf("player lookup: %v", err)
	}
	if moved.TeamID != "arsenal" || moved.Wage != 9000 {
		t.Fatalf("player after move: team=%s wage=%d", moved.TeamID, moved.Wage)
	}
	if moved.LastTransferWindow != service.WindowID(1, 1) {
		t.Fatalf("last transfer window: got=%d want=%d", moved.LastTransferWindow, service.WindowID(1, 1))
	}
	history, err := service.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ToTeamID != "arsenal" {
		t.Fatalf("history after move: %+v", history)
	}

	// A second move inside the same window is refused.
	offerC := transfer.Offer{
		ID: "offer-c", UserID: "u1", TeamID: "chelsea", Wage: 9500,
		ContractYears: 2, OfferWeek: 1, ExpiresWeek: 3, Status: transfer.StatusPending,
	}
	if err := w.transfers.InsertOffer(ctx, offerC); err != nil {
		t.Fatalf("insert offer: %v", err)
	}
	if _, err := service.Accept(ctx, "u1", "offer-c"); !errors.Is(err, ErrConflict) {
		t.Fatalf("second accept in window: got=%v want ErrConflict", err)
	}
}

func TestTransferService_Accept_RevertsOfferWhenPlayerUpdateFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	openTransferWindow(t, w, 1)
	human := w.addHuman("u1", "leeds", "FWD", 80)

	players := &failingUpdatePlayers{PlayerRepository: w.players, failures: 1}
	service := NewTransferService(
		w.seasons, players, w.teams, w.transfers,
		&seqIDs{prefix: "tr"}, dice.NewSeeded(3), TransferConfig{}, logging.NewNop())

	offer := transfer.Offer{
		ID: "offer-a", UserID: "u1", TeamID: "arsenal", Wage: 9000,
		ContractYears: 2, OfferWeek: 1, ExpiresWeek: 3, Status: transfer.StatusPending,
	}
	if err := w.transfers.InsertOffer(ctx, offer); err != nil {
		t.Fatalf("insert offer: %v", err)
	}

	if _, err := service.Accept(ctx, "u1", "offer-a"); err == nil {
		t.Fatal("accept succeeded despite failing player store")
	}

	// The flip rolled back: the offer is pending again and the player is
	// unmoved and unstamped.
	reverted, _, err := w.transfers.GetOffer(ctx, "offer-a")
	if err != nil {
		t.Fatalf("get offer: %v", err)
	}
	if reverted.Status != transfer.StatusPending {
		t.Fatalf("offer status after failed accept: got=%s want=%s", reverted.Status, transfer.StatusPending)
	}
	unmoved, _, err := w.players.GetByID(ctx, human.ID)
	if err != nil {
		t.Fatalf("player lookup: %v", err)
	}
	if unmoved.TeamID != "leeds" || unmoved.LastTransferWindow != 0 {
		t.Fatalf("player mutated by failed accept: team=%s window=%d", unmoved.TeamID, unmoved.LastTransferWindow)
	}
	history, err := service.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("history written by failed accept: %+v", history)
	}

	// With the store healthy again the same offer accepts cleanly.
	accepted, err := service.Accept(ctx, "u1", "offer-a")
	if err != nil {
		t.Fatalf("retry accept: %v", err)
	}
	if accepted.Status != transfer.StatusAccepted {
		t.Fatalf("retry status: got=%s", accepted.Status)
	}
	moved, _, err := w.players.GetByID(ctx, human.ID)
	if err != nil {
		t.Fatalf("player lookup after retry: %v", err)
	}
	if moved.TeamID != "arsenal" || moved.LastTransferWindow != service.WindowID(1, 1) {
		t.Fatalf("player after retry: team=%s window=%d", moved.TeamID, moved.LastTransferWindow)
	}
}

func TestTransferService_Accept_RejectsOfferPastExpiryWeek(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	openTransferWindow(t, w, 4)
	w.addHuman("u1", "leeds", "FWD", 80)

	service := newTransferService(w, nil)
	offer := transfer.Offer{
		ID: "offer-old", UserID: "u1", TeamID: "arsenal", Wage: 9000,
		ContractYears: 2, OfferWeek: 1, ExpiresWeek: 2, Status: transfer.StatusPending,
	}
	if err := w.transfers.InsertOffer(ctx, offer); err != nil {
		t.Fatalf("insert offer: %v", err)
	}

	if _, err := service.Accept(ctx, "u1", "offer-old"); !errors.Is(err, ErrConflict) {
		t.Fatalf("accept past expiry week: got=%v want ErrConflict", err)
	}
	stale, _, err := w.transfers.GetOffer(ctx, "offer-old")
	if err != nil {
		t.Fatalf("get offer: %v", err)
	}
	if stale.Status != transfer.StatusExpired {
		t.Fatalf("stale offer status: got=%s want=%s", stale.Status, transfer.StatusExpired)
	}
}

func TestTransferService_RefreshOffers_ExpiresStaleOffersFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	openTransferWindow(t, w, 7)
	w.addHuman("u1", "leeds", "FWD", 80)

	service := newTransferService(w, dice.NewSeeded(9))
	stale := transfer.Offer{
		ID: "offer-stale", UserID: "u1", TeamID: "arsenal", Wage: 7000,
		ContractYears: 2, OfferWeek: 1, ExpiresWeek: 3, Status: transfer.StatusPending,
	}
	if err := w.transfers.InsertOffer(ctx, stale); err != nil {
		t.Fatalf("insert offer: %v", err)
	}

	if _, err := service.RefreshOffers(ctx, 1, 7); err != nil {
		t.Fatalf("refresh offers: %v", err)
	}

	expired, _, err := w.transfers.GetOffer(ctx, "offer-stale")
	if err != nil {
		t.Fatalf("get offer: %v", err)
	}
	if expired.Status != transfer.StatusExpired {
		t.Fatalf("stale offer status after refresh: got=%s want=%s", expired.Status, transfer.StatusExpired)
	}
	pending, err := w.transfers.ListPendingByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	for _, item := range pending {
		if item.ID == "offer-stale" {
			t.Fatal("stale offer still pending after refresh")
		}
		if item.ExpiresWeek <= 7 {
			t.Fatalf("fresh offer %s already past expiry", item.ID)
		}
	}
}

func TestTransferService_Accept_RequiresOpenWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	if err := w.seasons.Create(ctx, season.State{SeasonID: 1, Started: true, Week: 3}); err != nil {
		t.Fatalf("create season state: %v", err)
	}
	w.addHuman("u1", "leeds", "FWD", 80)

	service := newTransferService(w, nil)
	if _, err := service.Accept(ctx, "u1", "whatever"); !errors.Is(err, ErrConflict) {
		t.Fatalf("accept with closed window: got=%v want ErrConflict", err)
	}
}

func TestTransferService_ExpireOpenOffers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := newWorld()
	openTransferWindow(t, w, 2)
	service := newTransferService(w, nil)

	offer := transfer.Offer{
		ID: "offer-x", UserID: "u1", TeamID: "arsenal", Wage: 5000,
		ContractYears: 1, OfferWeek: 2, ExpiresWeek: 4, Status: transfer.StatusPending,
	}
	if err := w.transfers.InsertOffer(ctx, offer); err != nil {
		t.Fatalf("insert offer: %v", err)
	}

	expired, err := service.ExpireOpenOffers(ctx)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expired count: got=%d want=1", expired)
	}
	pending, err := w.transfers.ListPendingByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after expiry: got=%d want=0", len(pending))
	}
}
