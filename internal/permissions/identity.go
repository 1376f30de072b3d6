package permissions

import "strings"

// Identity is the authenticated caller of a request, passed explicitly to the gate.
type Identity struct {
	UserID string
	Email  string
}

// NewIdentity returns nil when userID is blank, which the gate treats as anonymous.
func NewIdentity(userID, email string) *Identity {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	return &Identity{UserID: userID, Email: email}
}

// Decision is the outcome of one gate evaluation.
type Decision int

const (
	DecisionUnchecked Decision = iota
	DecisionAuthorized
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionAuthorized:
		return "authorized"
	case DecisionDenied:
		return "denied"
	default:
		return "unchecked"
	}
}
