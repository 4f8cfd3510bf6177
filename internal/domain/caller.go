package domain

import "strings"

// Caller identifies the party on whose behalf an operation runs.
type Caller struct {
	PartyID string
}

// NewCaller returns a Caller for a non-empty party id.
func NewCaller(partyID string) (Caller, error) {
	partyID = strings.TrimSpace(partyID)
	if partyID == "" {
		return Caller{}, ErrForbidden
	}
	return Caller{PartyID: partyID}, nil
}
