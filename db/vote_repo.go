package db

import (
	"fmt"

	"github.com/weddingrsvp/rsvp/domain"
)

var _ domain.VoteAuditRepository = (*Repository)(nil)

// RecordVotes stores one audit row per guest for the given scope.
func (repo *Repository) RecordVotes(ip, scopeType string, scopeID int64, guestIDs []int64) error {
	if len(guestIDs) == 0 {
		return nil
	}

	tx, err := repo.dbConn.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := now()
	query := `INSERT INTO vote_audits (ip_address, scope_type, scope_id, guest_id, created_at) VALUES (?, ?, ?, ?, ?)`
	for _, guestID := range guestIDs {
		if _, err := tx.Exec(query, ip, scopeType, scopeID, guestID, createdAt); err != nil {
			return fmt.Errorf("recording vote for guest %d: %w", guestID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing votes: %w", err)
	}
	return nil
}

// CountOtherScopes returns how many distinct scopes other than the given one the IP has voted for.
func (repo *Repository) CountOtherScopes(ip, scopeType string, scopeID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM (
		SELECT DISTINCT scope_type, scope_id
		FROM vote_audits
		WHERE ip_address = ? AND NOT (scope_type = ? AND scope_id = ?)
	)`

	err := repo.dbConn.Get(&count, query, ip, scopeType, scopeID)
	if err != nil {
		return 0, fmt.Errorf("counting scopes voted by %s: %w", ip, err)
	}
	return count, nil
}
