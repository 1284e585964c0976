package season

import (
	"fmt"
	"time"
)

// State is the singleton game clock row. It is mutated exclusively by the
// window and transfer controllers; every save carries the version it was
// read at so a stale tick cannot overwrite a newer transition.
type State struct {
	SeasonID             int
	Started              bool
	Week                 int
	WindowOpen           bool
	WindowClosesAt       *time.Time
	NextMatchDay         *time.Time
	TransferWindowActive bool
	Version              int
}

func (s State) Validate() error {
	if s.SeasonID < 1 {
		return fmt.Errorf("season id must be >= 1")
	}
	if s.Week < 0 {
		return fmt.Errorf("week must be >= 0")
	}
	if s.WindowOpen && s.WindowClosesAt == nil {
		return fmt.Errorf("open window requires a close deadline")
	}
	return nil
}
