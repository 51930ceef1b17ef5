package db

import (
	"fmt"

	"github.com/weddingrsvp/rsvp/domain"
)

var _ domain.StatsRepository = (*Repository)(nil)

// CountGuests returns the total number of guests.
func (repo *Repository) CountGuests() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM guests`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting guest count: %w", err)
	}

	return count, nil
}

// CountFamilies returns the total number of families.
func (repo *Repository) CountFamilies() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM families`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting family count: %w", err)
	}

	return count, nil
}

// CountPhotos returns the total number of gallery photos.
func (repo *Repository) CountPhotos() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM photos`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting photo count: %w", err)
	}

	return count, nil
}
