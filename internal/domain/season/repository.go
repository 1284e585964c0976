package season

import (
	"context"
	"errors"
)

// ErrStaleState signals that Update carried a version older than the stored
// row. Callers re-read and re-evaluate instead of retrying blindly.
var ErrStaleState = errors.New("season state version is stale")

type Repository interface {
	Get(ctx context.Context) (State, bool, error)
	// Create inserts the singleton row; it fails if one already exists.
	Create(ctx context.Context, state State) error
	// Update persists the row if state.Version still matches the stored
	// version, then bumps it. Returns ErrStaleState otherwise.
	Update(ctx context.Context, state State) (State, error)
}
