package invitation

import (
	"fmt"

	"github.com/weddingrsvp/rsvp/domain"
)

// Store is the storage a guest list is written to.
type Store interface {
	domain.FamilyRepository
	domain.GuestRepository
}

// Clear removes every guest and family.
func Clear(store Store) error {
	guests, err := store.ListGuests()
	if err != nil {
		return err
	}
	for _, g := range guests {
		if err := store.DeleteGuest(g.ID); err != nil {
			return err
		}
	}

	families, err := store.ListFamilies()
	if err != nil {
		return err
	}
	for _, f := range families {
		if err := store.DeleteFamily(f.ID); err != nil {
			return err
		}
	}
	return nil
}

// Seed creates the families and guests of the list.
func Seed(store Store, list *List) error {
	for _, f := range list.Families {
		family := &domain.Family{FamilyName: f.Name}
		if err := store.CreateFamily(family); err != nil {
			return fmt.Errorf("seeding family %s: %w", f.Name, err)
		}
		for _, name := range f.Members {
			guest := &domain.Guest{Name: name, FamilyID: &family.ID}
			if err := store.CreateGuest(guest); err != nil {
				return fmt.Errorf("seeding guest %s: %w", name, err)
			}
		}
	}

	for _, name := range list.Individuals {
		if err := store.CreateGuest(&domain.Guest{Name: name}); err != nil {
			return fmt.Errorf("seeding guest %s: %w", name, err)
		}
	}
	return nil
}
