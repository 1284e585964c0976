package fixture

import "fmt"

// Fixture is one scheduled match in a season. Scores stay nil until the
// fixture is played; a played fixture is never playable again.
type Fixture struct {
	ID         string
	LeagueID   string
	Season     int
	Week       int
	HomeTeamID string
	AwayTeamID string
	Played     bool
	Playable   bool
	HomeScore  *int
	AwayScore  *int
}

func (f Fixture) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("fixture id is required")
	}
	if f.LeagueID == "" {
		return fmt.Errorf("fixture league id is required")
	}
	if f.Week < 1 {
		return fmt.Errorf("fixture week must be >= 1")
	}
	if f.HomeTeamID == "" || f.AwayTeamID == "" {
		return fmt.Errorf("fixture requires both team ids")
	}
	if f.HomeTeamID == f.AwayTeamID {
		return fmt.Errorf("fixture cannot pair a team with itself")
	}
	if f.Played && (f.HomeScore == nil || f.AwayScore == nil) {
		return fmt.Errorf("played fixture requires both scores")
	}
	return nil
}

// Involves reports whether teamID is on either side of the fixture.
func (f Fixture) Involves(teamID string) bool {
	return f.HomeTeamID == teamID || f.AwayTeamID == teamID
}
