package prompt

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrTimeout  = errors.New("prompt timed out")
	ErrNotFound = errors.New("prompt not found")
)

// Request is one pending human decision: a question with a small set of
// labeled options and a hard deadline.
type Request struct {
	ID       string
	UserID   string
	Question string
	Options  []string
	Deadline time.Time
}

type pending struct {
	req    Request
	answer chan string
	once   sync.Once
}

// Broker holds in-flight prompts. The engine blocks in Await with a bounded
// timeout; an HTTP handler (or any transport) delivers the choice through
// Answer. A timeout is not an error path for the game: callers treat it as
// "auto-pick the recommended option".
type Broker struct {
	mu      sync.Mutex
	pending map[string]*pending
}

func NewBroker() *Broker {
	return &Broker{pending: make(map[string]*pending)}
}

// Await registers the request and blocks until an answer arrives, the
// timeout elapses, or ctx is cancelled. The returned label is always one of
// req.Options when err is nil.
func (b *Broker) Await(ctx context.Context, req Request, timeout time.Duration) (string, error) {
	if len(req.Options) == 0 {
		return "", errors.New("prompt requires at least one option")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	req.Deadline = time.Now().Add(timeout)

	p := &pending{req: req, answer: make(chan string, 1)}

	b.mu.Lock()
	b.pending[req.ID] = p
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, req.ID)
		b.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case label := <-p.answer:
		return label, nil
	case <-timer.C:
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Answer delivers a choice for a pending prompt. Only the prompt's user may
// answer, the label must be one of the offered options, and only the first
// answer counts.
func (b *Broker) Answer(promptID, userID, label string) error {
	b.mu.Lock()
	p, ok := b.pending[promptID]
	b.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	if p.req.UserID != userID {
		return ErrNotFound
	}

	valid := false
	for _, opt := range p.req.Options {
		if opt == label {
			valid = true
			break
		}
	}
	if !valid {
		return errors.New("label is not one of the offered options")
	}

	delivered := false
	p.once.Do(func() {
		p.answer <- label
		delivered = true
	})
	if !delivered {
		return ErrNotFound
	}
	return nil
}

// PendingFor lists open prompts for one user, oldest deadline first is not
// guaranteed; callers sort if they care.
func (b *Broker) PendingFor(userID string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Request, 0, 1)
	for _, p := range b.pending {
		if p.req.UserID == userID {
			out = append(out, p.req)
		}
	}
	return out
}
