package domain

import "time"

// FamilyRepository defines the persistence contract for families.
type FamilyRepository interface {
	// ListFamilies retrieves every family with its guests nested.
	ListFamilies() ([]*Family, error)

	// GetFamily retrieves a family with its guests, returning ErrNotFound when missing.
	GetFamily(id int64) (*Family, error)

	// CreateFamily inserts the family and sets its ID and CreatedAt.
	CreateFamily(family *Family) error

	// RenameFamily changes the display name of a family.
	RenameFamily(id int64, name string) error

	// DeleteFamily removes the family. Its members are kept as individual guests.
	DeleteFamily(id int64) error

	// UpdateFamilyAttendance merges the answers over the members' current attendance
	// in a single transaction. Guest IDs that do not belong to the family are ignored.
	UpdateFamilyAttendance(familyID int64, answers map[int64]AttendanceAnswer) error
}

// Family groups guests that answer a single invitation together.
type Family struct {
	ID         int64     `json:"id"`
	FamilyName string    `json:"family_name"`
	CreatedAt  time.Time `json:"created_at"`
	Guests     []*Guest  `json:"guests"`
}

// HasMember reports whether the guest ID belongs to the family.
func (f *Family) HasMember(guestID int64) bool {
	for _, g := range f.Guests {
		if g.ID == guestID {
			return true
		}
	}
	return false
}
