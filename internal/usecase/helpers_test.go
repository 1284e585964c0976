package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/infrastructure/repository/memory"
	"github.com/fieldmarshal/career-league/internal/platform/cache"
	"github.com/fieldmarshal/career-league/internal/platform/logging"
)

// seqIDs hands out deterministic ids so tests can reference rows directly.
type seqIDs struct {
	prefix string
	n      int
}

func (s *seqIDs) NewID() (string, error) {
	s.n++
	return fmt.Sprintf("%s-%04d", s.prefix, s.n), nil
}

// scriptRoller replays queued rolls and falls back to fixed midpoints when
// the script runs dry, keeping resolution deterministic either way.
type scriptRoller struct {
	rolls  []int
	ints   []int
	floats []float64
}

func (r *scriptRoller) Roll(sides int) int {
	if len(r.rolls) > 0 {
		v := r.rolls[0]
		r.rolls = r.rolls[1:]
		return v
	}
	return (sides + 1) / 2
}

func (r *scriptRoller) IntN(n int) int {
	if len(r.ints) > 0 {
		v := r.ints[0]
		r.ints = r.ints[1:]
		return v % n
	}
	return 0
}

func (r *scriptRoller) Float64() float64 {
	if len(r.floats) > 0 {
		v := r.floats[0]
		r.floats = r.floats[1:]
		return v
	}
	return 0.5
}

// scriptPrompter answers with a fixed label, or errors to exercise the
// auto-pick path. It records every question asked.
type scriptPrompter struct {
	answer    string
	err       error
	questions []string
}

func (p *scriptPrompter) PromptChoice(_ context.Context, _ string, question string, options []string, _ time.Duration) (string, error) {
	p.questions = append(p.questions, question)
	if p.err != nil {
		return "", p.err
	}
	if p.answer != "" {
		return p.answer, nil
	}
	return options[0], nil
}

// recordingNotifier captures every delivered message.
type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, target, message string) error {
	n.messages = append(n.messages, target+": "+message)
	return nil
}

// world wires every memory repository with the standard seed data.
type world struct {
	seasons   *memory.SeasonRepository
	teams     *memory.TeamRepository
	players   *memory.PlayerRepository
	fixtures  *memory.FixtureRepository
	matches   *memory.MatchRepository
	transfers *memory.TransferRepository
}

func newWorld() *world {
	return &world{
		seasons:   memory.NewSeasonRepository(),
		teams:     memory.NewTeamRepository(memory.SeedTeams()),
		players:   memory.NewPlayerRepository(memory.SeedPlayers()),
		fixtures:  memory.NewFixtureRepository(),
		matches:   memory.NewMatchRepository(),
		transfers: memory.NewTransferRepository(),
	}
}

func (w *world) scheduleService() *ScheduleService {
	return NewScheduleService(w.teams, w.fixtures, &seqIDs{prefix: "fx"}, ScheduleConfig{}, logging.NewNop())
}

func (w *world) simulationService() *SimulationService {
	return NewSimulationService(
		w.teams, w.players, w.fixtures,
		cache.NewStore(time.Minute), nil, SimulationConfig{MaxWorkers: 2}, logging.NewNop())
}

// addHuman signs a human player onto a club for interactive-path tests.
func (w *world) addHuman(userID, teamID string, pos player.Position, overall int) player.Player {
	club, _, _ := w.teams.GetByID(context.Background(), teamID)
	attrs := player.Attributes{
		Pace: overall, Shooting: overall, Passing: overall,
		Dribbling: overall, Defending: overall, Physical: overall,
	}.Clamp()
	human := player.Player{
		ID:         "human-" + userID,
		UserID:     userID,
		Name:       "Human " + userID,
		Position:   pos,
		TeamID:     teamID,
		LeagueID:   club.LeagueID,
		Attributes: attrs,
		Overall:    attrs.Overall(),
		Potential:  player.ClampAttribute(overall + 10),
		Form:       5,
		Morale:     5,
		Age:        21,
		Wage:       1200,
	}
	if err := w.players.Insert(context.Background(), human); err != nil {
		panic(err)
	}
	return human
}
