package player

import (
	"fmt"
	"strings"
)

// Position represents the football position categories used by the career engine.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

func ParsePosition(value string) (Position, error) {
	pos := Position(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := AllPositions[pos]; !ok {
		return "", fmt.Errorf("invalid position: %s", value)
	}
	return pos, nil
}

const (
	AttributeMin = 1
	AttributeMax = 99

	MatchRatingMin = 0.0
	MatchRatingMax = 10.0

	// TeamIDRetired is the sentinel club assigned to retired players.
	TeamIDRetired = "retired"
	// TeamIDFreeAgent marks players without a club; retiring a free agent
	// never produces a regen.
	TeamIDFreeAgent = "free-agent"
)

// Attributes holds the six capped outfield stats. Every mutation goes through
// Clamp so values stay inside [AttributeMin, AttributeMax].
type Attributes struct {
	Pace      int
	Shooting  int
	Passing   int
	Dribbling int
	Defending int
	Physical  int
}

func (a Attributes) Clamp() Attributes {
	a.Pace = ClampAttribute(a.Pace)
	a.Shooting = ClampAttribute(a.Shooting)
	a.Passing = ClampAttribute(a.Passing)
	a.Dribbling = ClampAttribute(a.Dribbling)
	a.Defending = ClampAttribute(a.Defending)
	a.Physical = ClampAttribute(a.Physical)
	return a
}

// Overall is the plain mean of the six attributes.
func (a Attributes) Overall() int {
	sum := a.Pace + a.Shooting + a.Passing + a.Dribbling + a.Defending + a.Physical
	return sum / 6
}

func ClampAttribute(v int) int {
	if v < AttributeMin {
		return AttributeMin
	}
	if v > AttributeMax {
		return AttributeMax
	}
	return v
}

func ClampRating(v float64) float64 {
	if v < MatchRatingMin {
		return MatchRatingMin
	}
	if v > MatchRatingMax {
		return MatchRatingMax
	}
	return v
}

// Player is one career athlete, human-controlled or NPC.
type Player struct {
	ID              string
	UserID          string // empty for NPCs
	Name            string
	Position        Position
	TeamID          string
	LeagueID        string
	Attributes      Attributes
	Overall         int
	Potential       int
	Form            int // 1..10, short-term performance band
	Morale          int // 1..10, event-driven band
	Age             int
	Wage            int64
	ContractYears   int
	Retired         bool
	RetiredInSeason int

	// Transfer bookkeeping: the last transfer-window id in which this
	// player accepted a move. Zero means never transferred.
	LastTransferWindow int

	// Season aggregates, folded in at full-time.
	SeasonApps    int
	SeasonGoals   int
	SeasonAssists int
	SeasonRating  float64 // running weighted mean across SeasonApps
}

func (p Player) IsHuman() bool {
	return p.UserID != ""
}

// StatFor returns the attribute value backing one stat kind.
func (p Player) StatFor(kind StatKind) int {
	switch kind {
	case StatPace:
		return p.Attributes.Pace
	case StatShooting:
		return p.Attributes.Shooting
	case StatPassing:
		return p.Attributes.Passing
	case StatDribbling:
		return p.Attributes.Dribbling
	case StatDefending:
		return p.Attributes.Defending
	case StatPhysical:
		return p.Attributes.Physical
	default:
		return p.Overall
	}
}

// FormModifier is the bounded additive stat adjustment keyed to form.
// Form 5/6 is neutral; the swing never exceeds ±4.
func (p Player) FormModifier() int {
	switch {
	case p.Form >= 9:
		return 4
	case p.Form >= 7:
		return 2
	case p.Form <= 2:
		return -4
	case p.Form <= 4:
		return -2
	default:
		return 0
	}
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	return nil
}

// StatKind identifies one of the six attributes in contested checks.
type StatKind string

const (
	StatPace      StatKind = "pace"
	StatShooting  StatKind = "shooting"
	StatPassing   StatKind = "passing"
	StatDribbling StatKind = "dribbling"
	StatDefending StatKind = "defending"
	StatPhysical  StatKind = "physical"
)

func ClampBand(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
