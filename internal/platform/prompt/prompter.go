package prompt

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldmarshal/career-league/internal/platform/id"
)

// ChoicePrompter bridges the broker to callers that only know a user and a
// question. Each call mints a fresh prompt ID and blocks in Await.
type ChoicePrompter struct {
	broker *Broker
	ids    id.Generator
}

func NewChoicePrompter(broker *Broker, ids id.Generator) *ChoicePrompter {
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	return &ChoicePrompter{broker: broker, ids: ids}
}

func (p *ChoicePrompter) PromptChoice(ctx context.Context, userID, question string, options []string, timeout time.Duration) (string, error) {
	promptID, err := p.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("mint prompt id: %w", err)
	}

	return p.broker.Await(ctx, Request{
		ID:       promptID,
		UserID:   userID,
		Question: question,
		Options:  options,
	}, timeout)
}
