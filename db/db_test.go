package db

import (
	"os"
	"testing"

	"github.com/weddingrsvp/rsvp/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}

	repo := NewRepo(dbConn)

	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}

	return repo, teardown
}

func testFamily(t *testing.T, repo *Repository, name string) *domain.Family {
	t.Helper()

	family := &domain.Family{FamilyName: name}
	if err := repo.CreateFamily(family); err != nil {
		t.Fatalf("creating family %s: %v", name, err)
	}
	return family
}

func testGuest(t *testing.T, repo *Repository, name string, familyID *int64) *domain.Guest {
	t.Helper()

	guest := &domain.Guest{Name: name, FamilyID: familyID}
	if err := repo.CreateGuest(guest); err != nil {
		t.Fatalf("creating guest %s: %v", name, err)
	}
	return guest
}
