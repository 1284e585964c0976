package transfer

import "fmt"

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Offer is one club's proposal to a human player. Expired and rejected
// offers are retained for history, never deleted.
type Offer struct {
	ID            string
	UserID        string
	TeamID        string
	Wage          int64
	ContractYears int
	OfferWeek     int
	ExpiresWeek   int
	Status        Status
	// PreviousWage is non-zero on improved re-offers from clubs the player
	// already turned down; the new wage is at least 1.15x this value.
	PreviousWage int64
}

func (o Offer) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("offer id is required")
	}
	if o.UserID == "" {
		return fmt.Errorf("offer user id is required")
	}
	if o.TeamID == "" {
		return fmt.Errorf("offer team id is required")
	}
	if o.Wage <= 0 {
		return fmt.Errorf("offer wage must be positive")
	}
	if o.ContractYears < 1 {
		return fmt.Errorf("offer contract length must be >= 1 year")
	}
	return nil
}

// History records a completed move for the player's career page.
type History struct {
	ID         string
	UserID     string
	FromTeamID string
	ToTeamID   string
	Wage       int64
	Season     int
	Week       int
	WindowID   int
}
