package memory

import (
	"fmt"

	"github.com/fieldmarshal/career-league/internal/domain/player"
	"github.com/fieldmarshal/career-league/internal/domain/team"
)

const (
	LeaguePremier      = "eng-premier"
	LeagueChampionship = "eng-championship"
)

// SeedTeams returns two league tiers of clubs for DB-less runs and tests.
func SeedTeams() []team.Team {
	premier := []struct {
		id, name, short string
	}{
		{"arsenal", "Arsenal", "ARS"},
		{"chelsea", "Chelsea", "CHE"},
		{"liverpool", "Liverpool", "LIV"},
		{"man-city", "Manchester City", "MCI"},
		{"man-united", "Manchester United", "MUN"},
		{"tottenham", "Tottenham Hotspur", "TOT"},
		{"newcastle", "Newcastle United", "NEW"},
		{"aston-villa", "Aston Villa", "AVL"},
	}
	championship := []struct {
		id, name, short string
	}{
		{"leeds", "Leeds United", "LEE"},
		{"sunderland", "Sunderland", "SUN"},
		{"coventry", "Coventry City", "COV"},
		{"norwich", "Norwich City", "NOR"},
		{"ipswich", "Ipswich Town", "IPS"},
		{"middlesbrough", "Middlesbrough", "MID"},
	}

	out := make([]team.Team, 0, len(premier)+len(championship))
	for _, row := range premier {
		out = append(out, team.Team{
			ID: row.id, LeagueID: LeaguePremier, Name: row.name, Short: row.short, Tier: 1,
		})
	}
	for _, row := range championship {
		out = append(out, team.Team{
			ID: row.id, LeagueID: LeagueChampionship, Name: row.name, Short: row.short, Tier: 2,
		})
	}
	return out
}

var seedRosterShape = []player.Position{
	player.PositionGoalkeeper,
	player.PositionDefender, player.PositionDefender, player.PositionDefender, player.PositionDefender,
	player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder,
	player.PositionForward, player.PositionForward, player.PositionForward,
}

// SeedPlayers builds an NPC roster for every seeded team. Ratings follow the
// league tier: tier 1 squads sit in the high 70s, tier 2 around the high 60s.
func SeedPlayers() []player.Player {
	out := make([]player.Player, 0, len(SeedTeams())*len(seedRosterShape))
	for _, club := range SeedTeams() {
		base := 78
		if club.Tier > 1 {
			base = 68
		}
		for idx, pos := range seedRosterShape {
			// Deterministic spread around the tier base, no RNG so tests
			// can assert on strengths.
			rating := base + (idx % 5) - 2
			attrs := rosterAttributes(pos, rating)
			out = append(out, player.Player{
				ID:         fmt.Sprintf("%s-npc-%02d", club.ID, idx+1),
				Name:       fmt.Sprintf("%s %s %d", club.Short, pos, idx+1),
				Position:   pos,
				TeamID:     club.ID,
				LeagueID:   club.LeagueID,
				Attributes: attrs,
				Overall:    attrs.Overall(),
				Potential:  rating + 4,
				Form:       5,
				Morale:     5,
				Age:        21 + (idx*2)%14,
			})
		}
	}
	return out
}

func rosterAttributes(pos player.Position, rating int) player.Attributes {
	attrs := player.Attributes{
		Pace: rating, Shooting: rating, Passing: rating,
		Dribbling: rating, Defending: rating, Physical: rating,
	}
	switch pos {
	case player.PositionGoalkeeper:
		attrs.Defending = rating + 6
		attrs.Shooting = rating - 12
		attrs.Dribbling = rating - 8
	case player.PositionDefender:
		attrs.Defending = rating + 5
		attrs.Physical = rating + 3
		attrs.Shooting = rating - 8
	case player.PositionMidfielder:
		attrs.Passing = rating + 5
		attrs.Dribbling = rating + 2
		attrs.Defending = rating - 4
	case player.PositionForward:
		attrs.Shooting = rating + 5
		attrs.Pace = rating + 3
		attrs.Defending = rating - 10
	}
	return attrs.Clamp()
}
