package team

import "fmt"

// Outcome classifies a finished fixture from one team's point of view.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeDraw Outcome = "draw"
	OutcomeLoss Outcome = "loss"
)

// Team is a club inside a league, carrying its season table aggregates.
type Team struct {
	ID       string
	LeagueID string
	Name     string
	Short    string
	// Tier is the league quality band, 1 = top flight. Drives wage
	// multipliers and transfer eligibility thresholds.
	Tier int

	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

// ApplyResult folds one finished fixture into the table aggregates using the
// standard 3/1/0 points rule.
func (t *Team) ApplyResult(goalsFor, goalsAgainst int) Outcome {
	t.Played++
	t.GoalsFor += goalsFor
	t.GoalsAgainst += goalsAgainst

	switch {
	case goalsFor > goalsAgainst:
		t.Won++
		t.Points += 3
		return OutcomeWin
	case goalsFor == goalsAgainst:
		t.Drawn++
		t.Points++
		return OutcomeDraw
	default:
		t.Lost++
		return OutcomeLoss
	}
}

func (t *Team) ResetSeasonStats() {
	t.Played = 0
	t.Won = 0
	t.Drawn = 0
	t.Lost = 0
	t.GoalsFor = 0
	t.GoalsAgainst = 0
	t.Points = 0
}

func (t Team) GoalDifference() int {
	return t.GoalsFor - t.GoalsAgainst
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.LeagueID == "" {
		return fmt.Errorf("team league id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Tier < 1 {
		return fmt.Errorf("team tier must be >= 1")
	}
	return nil
}
