package client

import (
	"context"
	"fmt"

	"github.com/weddingrsvp/rsvp/domain"
	"github.com/weddingrsvp/rsvp/server"
)

// GuestUpdate is an RSVP for one guest. Nil fields are left unchanged.
type GuestUpdate struct {
	Attendance   *domain.AttendanceState
	Allergens    []string
	DietaryNotes *string
}

func (u GuestUpdate) body() map[string]any {
	body := map[string]any{}
	if u.Attendance != nil {
		body["attend_ceremony"] = u.Attendance.Ceremony
		body["attend_lunch"] = u.Attendance.Lunch
	}
	if u.Allergens != nil {
		body["allergens"] = u.Allergens
	}
	if u.DietaryNotes != nil {
		body["dietary_notes"] = *u.DietaryNotes
	}
	return body
}

// Options are the selectable RSVP events and allergens.
type Options struct {
	Events    []domain.Option `json:"events"`
	Allergens []domain.Option `json:"allergens"`
}

// GetFamilies lists the families with their members.
func (c *Client) GetFamilies(ctx context.Context) ([]*domain.Family, error) {
	var families []*domain.Family
	resp, err := c.request(ctx).SetResult(&families).Get("/api/families")
	if err := check(resp, err, "getting families"); err != nil {
		return nil, err
	}
	return families, nil
}

// GetGuests lists the guests invited individually.
func (c *Client) GetGuests(ctx context.Context) ([]*domain.Guest, error) {
	var guests []*domain.Guest
	resp, err := c.request(ctx).SetResult(&guests).Get("/api/guests")
	if err := check(resp, err, "getting guests"); err != nil {
		return nil, err
	}
	return guests, nil
}

// UpdateGuest submits the RSVP of a single guest. The returned warning is not empty
// when the server noticed this client already answered for another invitation.
func (c *Client) UpdateGuest(ctx context.Context, id int64, update GuestUpdate) (*domain.Guest, string, error) {
	var guest domain.Guest
	resp, err := c.request(ctx).
		SetBody(update.body()).
		SetResult(&guest).
		Patch(fmt.Sprintf("/api/guests/%d", id))
	if err := check(resp, err, fmt.Sprintf("updating guest %d", id)); err != nil {
		return nil, "", err
	}
	return &guest, resp.Header().Get(server.WarningHeader), nil
}

// UpdateFamilyGuests submits the RSVP of several members of a family at once.
func (c *Client) UpdateFamilyGuests(ctx context.Context, familyID int64, answers map[int64]domain.AttendanceState) (*domain.Family, string, error) {
	updates := make(map[string]domain.AttendanceState, len(answers))
	for id, state := range answers {
		updates[fmt.Sprintf("%d", id)] = state
	}

	var family domain.Family
	resp, err := c.request(ctx).
		SetBody(map[string]any{"guest_updates": updates}).
		SetResult(&family).
		Patch(fmt.Sprintf("/api/families/%d/guests", familyID))
	if err := check(resp, err, fmt.Sprintf("updating family %d", familyID)); err != nil {
		return nil, "", err
	}
	return &family, resp.Header().Get(server.WarningHeader), nil
}

// GetStats returns the RSVP counters.
func (c *Client) GetStats(ctx context.Context) (*domain.RSVPStats, error) {
	var stats domain.RSVPStats
	resp, err := c.request(ctx).SetResult(&stats).Get("/api/rsvp/stats")
	if err := check(resp, err, "getting stats"); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetOptions returns the RSVP events and the allergen catalogue.
func (c *Client) GetOptions(ctx context.Context) (*Options, error) {
	var options Options
	resp, err := c.request(ctx).SetResult(&options).Get("/api/rsvp/options")
	if err := check(resp, err, "getting options"); err != nil {
		return nil, err
	}
	return &options, nil
}
