package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/weddingrsvp/rsvp/domain"
)

var _ domain.FamilyRepository = (*Repository)(nil)

// dbFamily represents a family as stored in the database.
type dbFamily struct {
	ID         int64        `db:"id"`
	FamilyName string       `db:"family_name"`
	CreatedAt  sql.NullTime `db:"created_at"`
}

// toDomainFamily converts a dbFamily to a domain.Family with no guests attached.
func toDomainFamily(f *dbFamily) *domain.Family {
	return &domain.Family{
		ID:         f.ID,
		FamilyName: f.FamilyName,
		CreatedAt:  toTime(f.CreatedAt),
		Guests:     []*domain.Guest{},
	}
}

// ListFamilies retrieves every family ordered by ID, each with its guests.
func (repo *Repository) ListFamilies() ([]*domain.Family, error) {
	var dbFamilies []*dbFamily
	err := repo.dbConn.Select(&dbFamilies, `SELECT id, family_name, created_at FROM families ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing families: %w", err)
	}

	var dbGuests []*dbGuest
	query := `SELECT ` + guestColumns + ` FROM guests WHERE family_id IS NOT NULL ORDER BY id`
	err = repo.dbConn.Select(&dbGuests, query)
	if err != nil {
		return nil, fmt.Errorf("listing family members: %w", err)
	}

	families := make([]*domain.Family, len(dbFamilies))
	byID := make(map[int64]*domain.Family, len(dbFamilies))
	for i, f := range dbFamilies {
		families[i] = toDomainFamily(f)
		byID[f.ID] = families[i]
	}

	for _, g := range dbGuests {
		if family, ok := byID[g.FamilyID.Int64]; ok {
			family.Guests = append(family.Guests, toDomainGuest(g))
		}
	}
	return families, nil
}

// GetFamily retrieves a family and its guests.
func (repo *Repository) GetFamily(id int64) (*domain.Family, error) {
	var f dbFamily
	err := repo.dbConn.Get(&f, `SELECT id, family_name, created_at FROM families WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("family %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting family %d: %w", id, err)
	}

	var dbGuests []*dbGuest
	query := `SELECT ` + guestColumns + ` FROM guests WHERE family_id = ? ORDER BY id`
	if err := repo.dbConn.Select(&dbGuests, query, id); err != nil {
		return nil, fmt.Errorf("getting members of family %d: %w", id, err)
	}

	family := toDomainFamily(&f)
	family.Guests = toDomainGuests(dbGuests)
	return family, nil
}

// CreateFamily inserts a new family and sets its ID and CreatedAt.
func (repo *Repository) CreateFamily(family *domain.Family) error {
	family.CreatedAt = now()

	result, err := repo.dbConn.Exec(`INSERT INTO families (family_name, created_at) VALUES (?, ?)`,
		family.FamilyName, family.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating family %s: %w", family.FamilyName, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("fetching family id: %w", err)
	}
	family.ID = id
	if family.Guests == nil {
		family.Guests = []*domain.Guest{}
	}
	return nil
}

// RenameFamily updates the display name of a family.
func (repo *Repository) RenameFamily(id int64, name string) error {
	result, err := repo.dbConn.Exec(`UPDATE families SET family_name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("renaming family %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("family %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteFamily detaches the members of a family and removes it.
func (repo *Repository) DeleteFamily(id int64) error {
	tx, err := repo.dbConn.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE guests SET family_id = NULL WHERE family_id = ?`, id); err != nil {
		return fmt.Errorf("detaching members of family %d: %w", id, err)
	}

	result, err := tx.Exec(`DELETE FROM families WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting family %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("family %d: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing family %d deletion: %w", id, err)
	}
	return nil
}

// UpdateFamilyAttendance merges the answers over the current attendance of the members
// of a family in one transaction.
func (repo *Repository) UpdateFamilyAttendance(familyID int64, answers map[int64]domain.AttendanceAnswer) error {
	tx, err := repo.dbConn.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.Get(&count, `SELECT COUNT(*) FROM families WHERE id = ?`, familyID); err != nil {
		return fmt.Errorf("checking family %d: %w", familyID, err)
	}
	if count == 0 {
		return fmt.Errorf("family %d: %w", familyID, domain.ErrNotFound)
	}

	updatedAt := now()
	for guestID, answer := range answers {
		guest, err := getGuest(tx, guestID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
		if guest.FamilyID == nil || *guest.FamilyID != familyID {
			continue
		}

		if !domain.ApplyAnswer(guest, answer) {
			continue
		}
		guest.UpdatedAt = updatedAt
		if err := updateGuest(tx, guest); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing family %d attendance: %w", familyID, err)
	}
	return nil
}
