package match

import (
	"testing"

	"github.com/fieldmarshal/career-league/internal/domain/player"
)

func TestActionsFor_EveryPositionHasMenu(t *testing.T) {
	t.Parallel()

	for pos := range player.AllPositions {
		menu := ActionsFor(pos)
		if len(menu) < 3 || len(menu) > 5 {
			t.Fatalf("position %s: menu size %d outside 3-5", pos, len(menu))
		}
		for _, spec := range menu {
			if spec.Kind == "" {
				t.Fatalf("position %s: menu entry missing spec", pos)
			}
			if spec.Opposed && spec.OpposingStat == "" {
				t.Fatalf("action %s: opposed action needs an opposing stat", spec.Kind)
			}
		}
	}
}

func TestSpecFor_FollowUpsResolve(t *testing.T) {
	t.Parallel()

	for kind, spec := range specs {
		if spec.FollowUp == "" {
			continue
		}
		next, ok := SpecFor(spec.FollowUp)
		if !ok {
			t.Fatalf("action %s: follow-up %s has no spec", kind, spec.FollowUp)
		}
		// One extra hop only: a follow-up target must not chain again into
		// another opposed branch of itself.
		if next.FollowUp == kind {
			t.Fatalf("action %s: follow-up cycle with %s", kind, next.Kind)
		}
	}
}

func TestRecommend_TieBreaksOnSuccessChance(t *testing.T) {
	t.Parallel()

	safe := Spec{Kind: ActionPass, Impact: 0.5}
	risky := Spec{Kind: ActionShoot, Impact: 1.0}

	chance := func(s Spec) float64 {
		if s.Kind == ActionPass {
			return 0.8 // 0.8*0.5 = 0.40
		}
		return 0.4 // 0.4*1.0 = 0.40
	}

	got := Recommend([]Spec{risky, safe}, chance)
	if got.Kind != ActionPass {
		t.Fatalf("equal score must prefer higher success chance: got=%s", got.Kind)
	}

	got = Recommend([]Spec{safe, risky}, func(s Spec) float64 {
		if s.Kind == ActionShoot {
			return 0.9
		}
		return 0.2
	})
	if got.Kind != ActionShoot {
		t.Fatalf("higher score must win: got=%s", got.Kind)
	}
}
