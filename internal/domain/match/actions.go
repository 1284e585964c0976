package match

import "github.com/fieldmarshal/career-league/internal/domain/player"

// ActionKind is the closed set of key-moment actions. Each kind carries its
// own stat pairing and narrative as data, so position-eligible sets are
// checked exhaustively at compile time instead of through string dispatch.
type ActionKind string

const (
	ActionShoot       ActionKind = "shoot"
	ActionLongShot    ActionKind = "long_shot"
	ActionHeader      ActionKind = "header"
	ActionDribble     ActionKind = "dribble"
	ActionPass        ActionKind = "pass"
	ActionThroughBall ActionKind = "through_ball"
	ActionCross       ActionKind = "cross"
	ActionKeyPass     ActionKind = "key_pass"
	ActionTackle      ActionKind = "tackle"
	ActionIntercept   ActionKind = "intercept"
	ActionClearance   ActionKind = "clearance"
	ActionSave        ActionKind = "save"
	ActionClaimCross  ActionKind = "claim_cross"
	ActionSprint      ActionKind = "sprint"
	ActionHoldUp      ActionKind = "hold_up"
)

// Spec describes how one action resolves. Opposed actions run a contested
// check against OpposingStat of a drawn defender; unopposed actions only
// need the raw die to clear the fixed floor.
type Spec struct {
	Kind         ActionKind
	Label        string
	PrimaryStat  player.StatKind
	OpposingStat player.StatKind
	Opposed      bool
	// Shot actions can score directly on a favorable margin.
	Shot bool
	// Playmaking actions can trigger a teammate follow-up shot.
	Playmaking bool
	// Impact scales the match-rating swing of the outcome.
	Impact float64
	// FollowUp chains one extra action for the same player on success.
	// Empty means the moment ends with this action.
	FollowUp  ActionKind
	Narrative string
}

var specs = map[ActionKind]Spec{
	ActionShoot: {
		Kind: ActionShoot, Label: "Shoot", PrimaryStat: player.StatShooting,
		OpposingStat: player.StatDefending, Opposed: true, Shot: true,
		Impact: 1.0, Narrative: "lines up a shot",
	},
	ActionLongShot: {
		Kind: ActionLongShot, Label: "Long shot", PrimaryStat: player.StatShooting,
		Opposed: false, Shot: true,
		Impact: 0.9, Narrative: "tries their luck from distance",
	},
	ActionHeader: {
		Kind: ActionHeader, Label: "Header", PrimaryStat: player.StatPhysical,
		OpposingStat: player.StatPhysical, Opposed: true, Shot: true,
		Impact: 0.9, Narrative: "rises for the header",
	},
	ActionDribble: {
		Kind: ActionDribble, Label: "Dribble", PrimaryStat: player.StatDribbling,
		OpposingStat: player.StatDefending, Opposed: true,
		Impact: 0.6, FollowUp: ActionShoot, Narrative: "takes on the defender",
	},
	ActionPass: {
		Kind: ActionPass, Label: "Pass", PrimaryStat: player.StatPassing,
		Opposed: false, Playmaking: true,
		Impact: 0.4, Narrative: "threads a pass forward",
	},
	ActionThroughBall: {
		Kind: ActionThroughBall, Label: "Through ball", PrimaryStat: player.StatPassing,
		OpposingStat: player.StatDefending, Opposed: true, Playmaking: true,
		Impact: 0.7, Narrative: "slips a ball in behind",
	},
	ActionCross: {
		Kind: ActionCross, Label: "Cross", PrimaryStat: player.StatPassing,
		OpposingStat: player.StatDefending, Opposed: true, Playmaking: true,
		Impact: 0.6, Narrative: "whips in a cross",
	},
	ActionKeyPass: {
		Kind: ActionKeyPass, Label: "Key pass", PrimaryStat: player.StatPassing,
		OpposingStat: player.StatDefending, Opposed: true, Playmaking: true,
		Impact: 0.8, Narrative: "picks the killer pass",
	},
	ActionTackle: {
		Kind: ActionTackle, Label: "Tackle", PrimaryStat: player.StatDefending,
		OpposingStat: player.StatDribbling, Opposed: true,
		Impact: 0.6, Narrative: "slides into the challenge",
	},
	ActionIntercept: {
		Kind: ActionIntercept, Label: "Intercept", PrimaryStat: player.StatDefending,
		OpposingStat: player.StatPassing, Opposed: true,
		Impact: 0.6, FollowUp: ActionPass, Narrative: "reads the pass",
	},
	ActionClearance: {
		Kind: ActionClearance, Label: "Clearance", PrimaryStat: player.StatDefending,
		Opposed: false,
		Impact:  0.4, Narrative: "hacks it clear",
	},
	ActionSave: {
		Kind: ActionSave, Label: "Save", PrimaryStat: player.StatDefending,
		OpposingStat: player.StatShooting, Opposed: true,
		Impact: 0.9, Narrative: "springs to keep it out",
	},
	ActionClaimCross: {
		Kind: ActionClaimCross, Label: "Claim cross", PrimaryStat: player.StatPhysical,
		OpposingStat: player.StatPhysical, Opposed: true,
		Impact: 0.5, Narrative: "comes to punch the cross away",
	},
	ActionSprint: {
		Kind: ActionSprint, Label: "Sprint past", PrimaryStat: player.StatPace,
		OpposingStat: player.StatPace, Opposed: true,
		Impact: 0.5, FollowUp: ActionCross, Narrative: "burns down the wing",
	},
	ActionHoldUp: {
		Kind: ActionHoldUp, Label: "Hold up play", PrimaryStat: player.StatPhysical,
		OpposingStat: player.StatPhysical, Opposed: true, Playmaking: true,
		Impact: 0.5, Narrative: "shields the ball and waits",
	},
}

// SpecFor returns the resolution data for one action kind.
func SpecFor(kind ActionKind) (Spec, bool) {
	spec, ok := specs[kind]
	return spec, ok
}

var actionsByPosition = map[player.Position][]ActionKind{
	player.PositionGoalkeeper: {ActionSave, ActionClaimCross, ActionPass},
	player.PositionDefender:   {ActionTackle, ActionIntercept, ActionClearance, ActionPass, ActionHeader},
	player.PositionMidfielder: {ActionPass, ActionThroughBall, ActionKeyPass, ActionDribble, ActionLongShot},
	player.PositionForward:    {ActionShoot, ActionHeader, ActionDribble, ActionSprint, ActionHoldUp},
}

// ActionsFor returns the position-appropriate menu, 3-5 kinds per position.
func ActionsFor(pos player.Position) []Spec {
	kinds := actionsByPosition[pos]
	out := make([]Spec, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, specs[kind])
	}
	return out
}

// Recommend picks the system-recommended action. Score is expected success
// chance times impact; ties break on success chance first, then on impact.
func Recommend(options []Spec, successChance func(Spec) float64) Spec {
	best := options[0]
	bestChance := successChance(best)
	bestScore := bestChance * best.Impact
	for _, opt := range options[1:] {
		chance := successChance(opt)
		score := chance * opt.Impact
		switch {
		case score > bestScore:
		case score == bestScore && chance > bestChance:
		case score == bestScore && chance == bestChance && opt.Impact > best.Impact:
		default:
			continue
		}
		best = opt
		bestChance = chance
		bestScore = score
	}
	return best
}
