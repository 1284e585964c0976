package match

import "fmt"

// MatchState tracks the lifecycle of one interactive run.
type MatchState string

const (
	StateWaiting    MatchState = "waiting"
	StateInProgress MatchState = "in_progress"
	StateCompleted  MatchState = "completed"
)

// ActiveMatch is the ephemeral per-fixture run state. FixtureID is unique
// across live rows: a second start attempt on the same fixture is rejected,
// never queued.
type ActiveMatch struct {
	ID          string
	FixtureID   string
	HomeTeamID  string
	AwayTeamID  string
	HomeScore   int
	AwayScore   int
	Minute      int
	EventsDone  int
	EventsTotal int
	State       MatchState
}

func (m ActiveMatch) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.FixtureID == "" {
		return fmt.Errorf("match fixture id is required")
	}
	if m.EventsTotal < 1 {
		return fmt.Errorf("match needs at least one key moment")
	}
	return nil
}

// Participant is one human user joined to an active match. Rating stays in
// [0,10] no matter how many criticals accumulate.
type Participant struct {
	MatchID      string
	UserID       string
	PlayerID     string
	TeamID       string
	Rating       float64
	ActionsTaken int
	Goals        int
	Assists      int
}
