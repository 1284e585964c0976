package team

import "testing"

func TestApplyResult_PointsRule(t *testing.T) {
	t.Parallel()

	var club Team

	if got := club.ApplyResult(2, 1); got != OutcomeWin {
		t.Fatalf("expected win, got=%s", got)
	}
	if got := club.ApplyResult(1, 1); got != OutcomeDraw {
		t.Fatalf("expected draw, got=%s", got)
	}
	if got := club.ApplyResult(0, 3); got != OutcomeLoss {
		t.Fatalf("expected loss, got=%s", got)
	}

	if club.Played != 3 || club.Won != 1 || club.Drawn != 1 || club.Lost != 1 {
		t.Fatalf("unexpected record: %+v", club)
	}
	if club.Points != 4 {
		t.Fatalf("unexpected points: got=%d want=4", club.Points)
	}
	if club.GoalDifference() != -2 {
		t.Fatalf("unexpected goal difference: got=%d want=-2", club.GoalDifference())
	}
}
