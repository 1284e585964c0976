package usecase

import (
	"context"
	"time"
)

// Notifier pushes human-readable messages to a user or channel. Delivery
// failures are logged and swallowed by callers: a lost message never blocks
// game-state progression.
type Notifier interface {
	Notify(ctx context.Context, target string, message string) error
}

// Prompter asks one user to pick among a small set of labeled actions within
// a bounded window. It returns the chosen label, or an error when the user
// did not answer in time; callers treat any error as "auto-pick the
// recommended option", never as a failed match.
type Prompter interface {
	PromptChoice(ctx context.Context, userID, question string, options []string, timeout time.Duration) (string, error)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, string) error { return nil }

func NewNoopNotifier() Notifier { return noopNotifier{} }
