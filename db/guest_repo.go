package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/weddingrsvp/rsvp/domain"
)

var _ domain.GuestRepository = (*Repository)(nil)

const guestColumns = `id, name, family_id, attending, attendance_choice, attend_ceremony, attend_lunch,
	allergens, dietary_notes, admin_notes, updated_at`

// dbGuest represents a guest as stored in the database.
type dbGuest struct {
	ID               int64          `db:"id"`
	Name             string         `db:"name"`
	FamilyID         sql.NullInt64  `db:"family_id"`
	Attending        sql.NullBool   `db:"attending"`
	AttendanceChoice sql.NullString `db:"attendance_choice"`
	AttendCeremony   sql.NullBool   `db:"attend_ceremony"`
	AttendLunch      sql.NullBool   `db:"attend_lunch"`
	Allergens        stringList     `db:"allergens"`
	DietaryNotes     sql.NullString `db:"dietary_notes"`
	AdminNotes       sql.NullString `db:"admin_notes"`
	UpdatedAt        sql.NullTime   `db:"updated_at"`
}

// toDomainGuest converts a dbGuest to a domain.Guest.
func toDomainGuest(g *dbGuest) *domain.Guest {
	allergens := []string(g.Allergens)
	if allergens == nil {
		allergens = []string{}
	}
	return &domain.Guest{
		ID:               g.ID,
		Name:             g.Name,
		FamilyID:         toInt64Ptr(g.FamilyID),
		Attending:        toAttendance(g.Attending),
		AttendanceChoice: g.AttendanceChoice.String,
		AttendCeremony:   toAttendance(g.AttendCeremony),
		AttendLunch:      toAttendance(g.AttendLunch),
		Allergens:        allergens,
		DietaryNotes:     toStringPtr(g.DietaryNotes),
		AdminNotes:       toStringPtr(g.AdminNotes),
		UpdatedAt:        toTime(g.UpdatedAt),
	}
}

// fromDomainGuest converts a domain.Guest to a dbGuest.
func fromDomainGuest(g *domain.Guest) *dbGuest {
	return &dbGuest{
		ID:               g.ID,
		Name:             g.Name,
		FamilyID:         fromInt64Ptr(g.FamilyID),
		Attending:        fromAttendance(g.Attending),
		AttendanceChoice: sql.NullString{String: g.AttendanceChoice, Valid: g.AttendanceChoice != ""},
		AttendCeremony:   fromAttendance(g.AttendCeremony),
		AttendLunch:      fromAttendance(g.AttendLunch),
		Allergens:        stringList(g.Allergens),
		DietaryNotes:     fromStringPtr(g.DietaryNotes),
		AdminNotes:       fromStringPtr(g.AdminNotes),
		UpdatedAt:        sql.NullTime{Time: g.UpdatedAt, Valid: !g.UpdatedAt.IsZero()},
	}
}

func toDomainGuests(dbGuests []*dbGuest) []*domain.Guest {
	guests := make([]*domain.Guest, len(dbGuests))
	for i, g := range dbGuests {
		guests[i] = toDomainGuest(g)
	}
	return guests
}

// GetGuest retrieves a single guest by ID.
func (repo *Repository) GetGuest(id int64) (*domain.Guest, error) {
	return getGuest(repo.dbConn, id)
}

func getGuest(q sqlx.Queryer, id int64) (*domain.Guest, error) {
	var g dbGuest
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = ?`

	err := sqlx.Get(q, &g, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guest %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting guest %d: %w", id, err)
	}
	return toDomainGuest(&g), nil
}

// ListIndividualGuests retrieves the guests without a family, ordered by ID.
func (repo *Repository) ListIndividualGuests() ([]*domain.Guest, error) {
	var dbGuests []*dbGuest
	query := `SELECT ` + guestColumns + ` FROM guests WHERE family_id IS NULL ORDER BY id`

	err := repo.dbConn.Select(&dbGuests, query)
	if err != nil {
		return nil, fmt.Errorf("listing individual guests: %w", err)
	}
	return toDomainGuests(dbGuests), nil
}

// ListGuests retrieves every guest ordered by ID.
func (repo *Repository) ListGuests() ([]*domain.Guest, error) {
	var dbGuests []*dbGuest
	query := `SELECT ` + guestColumns + ` FROM guests ORDER BY id`

	err := repo.dbConn.Select(&dbGuests, query)
	if err != nil {
		return nil, fmt.Errorf("listing guests: %w", err)
	}
	return toDomainGuests(dbGuests), nil
}

// CreateGuest inserts a new guest and sets its ID and UpdatedAt.
func (repo *Repository) CreateGuest(guest *domain.Guest) error {
	if err := repo.checkFamily(guest.FamilyID); err != nil {
		return err
	}

	guest.UpdatedAt = now()
	if guest.Allergens == nil {
		guest.Allergens = []string{}
	}
	query := `INSERT INTO guests (name, family_id, attending, attendance_choice, attend_ceremony, attend_lunch,
		allergens, dietary_notes, admin_notes, updated_at)
		VALUES (:name, :family_id, :attending, :attendance_choice, :attend_ceremony, :attend_lunch,
		:allergens, :dietary_notes, :admin_notes, :updated_at)`

	result, err := repo.dbConn.NamedExec(query, fromDomainGuest(guest))
	if err != nil {
		return fmt.Errorf("creating guest %s: %w", guest.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("fetching guest id: %w", err)
	}
	guest.ID = id
	return nil
}

// UpdateGuest persists every field of the guest and refreshes UpdatedAt.
func (repo *Repository) UpdateGuest(guest *domain.Guest) error {
	if err := repo.checkFamily(guest.FamilyID); err != nil {
		return err
	}
	guest.UpdatedAt = now()
	return updateGuest(repo.dbConn, guest)
}

func updateGuest(e sqlx.Ext, guest *domain.Guest) error {
	query := `UPDATE guests SET
		name = :name,
		family_id = :family_id,
		attending = :attending,
		attendance_choice = :attendance_choice,
		attend_ceremony = :attend_ceremony,
		attend_lunch = :attend_lunch,
		allergens = :allergens,
		dietary_notes = :dietary_notes,
		admin_notes = :admin_notes,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := sqlx.NamedExec(e, query, fromDomainGuest(guest))
	if err != nil {
		return fmt.Errorf("updating guest %d: %w", guest.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("guest %d: %w", guest.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteGuest removes a guest and its vote audits.
func (repo *Repository) DeleteGuest(id int64) error {
	query := `DELETE FROM guests WHERE id = ?`

	result, err := repo.dbConn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("deleting guest %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("guest %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (repo *Repository) checkFamily(familyID *int64) error {
	if familyID == nil {
		return nil
	}

	var count int
	err := repo.dbConn.Get(&count, `SELECT COUNT(*) FROM families WHERE id = ?`, *familyID)
	if err != nil {
		return fmt.Errorf("checking family %d: %w", *familyID, err)
	}
	if count == 0 {
		return fmt.Errorf("family %d: %w", *familyID, domain.ErrInvalidFamily)
	}
	return nil
}
