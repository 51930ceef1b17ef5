package domain

import "time"

// Scopes an RSVP can be submitted for.
const (
	ScopeFamily = "family"
	ScopeGuest  = "guest"
)

// VoteAuditRepository records which client submitted which RSVP, so that a device
// answering for several invitations can be flagged.
type VoteAuditRepository interface {
	// RecordVotes stores one audit row per guest ID for the given scope.
	RecordVotes(ip, scopeType string, scopeID int64, guestIDs []int64) error

	// CountOtherScopes returns how many distinct scopes, other than the given one,
	// the IP address has already voted for.
	CountOtherScopes(ip, scopeType string, scopeID int64) (int, error)
}

// VoteAudit is a single recorded RSVP submission.
type VoteAudit struct {
	ID        int64
	IPAddress string
	ScopeType string
	ScopeID   int64
	GuestID   int64
	CreatedAt time.Time
}
