package client

import (
	"context"
	"fmt"

	"github.com/weddingrsvp/rsvp/domain"
)

// AdminData is every family and individual guest, with organiser notes.
type AdminData struct {
	Families    []*domain.Family `json:"families"`
	Individuals []*domain.Guest  `json:"individuals"`
}

// AdminData fetches the full guest list.
func (c *Client) AdminData(ctx context.Context) (*AdminData, error) {
	var data AdminData
	resp, err := c.adminRequest(ctx).SetResult(&data).Get("/api/admin/data")
	if err := check(resp, err, "getting admin data"); err != nil {
		return nil, err
	}
	return &data, nil
}

// AdminCreateGuest creates a guest from the given fields, which use the API's JSON names.
func (c *Client) AdminCreateGuest(ctx context.Context, fields map[string]any) (*domain.Guest, error) {
	var guest domain.Guest
	resp, err := c.adminRequest(ctx).SetBody(fields).SetResult(&guest).Post("/api/admin/guests")
	if err := check(resp, err, "creating guest"); err != nil {
		return nil, err
	}
	return &guest, nil
}

// AdminUpdateGuest changes the given fields of a guest. A nil value clears a nullable field.
func (c *Client) AdminUpdateGuest(ctx context.Context, id int64, fields map[string]any) (*domain.Guest, error) {
	var guest domain.Guest
	resp, err := c.adminRequest(ctx).SetBody(fields).SetResult(&guest).Patch(fmt.Sprintf("/api/admin/guests/%d", id))
	if err := check(resp, err, fmt.Sprintf("updating guest %d", id)); err != nil {
		return nil, err
	}
	return &guest, nil
}

// AdminDeleteGuest removes a guest.
func (c *Client) AdminDeleteGuest(ctx context.Context, id int64) error {
	resp, err := c.adminRequest(ctx).Delete(fmt.Sprintf("/api/admin/guests/%d", id))
	return check(resp, err, fmt.Sprintf("deleting guest %d", id))
}

// AdminCreateFamily creates an empty family.
func (c *Client) AdminCreateFamily(ctx context.Context, name string) (*domain.Family, error) {
	var family domain.Family
	resp, err := c.adminRequest(ctx).
		SetBody(map[string]string{"family_name": name}).
		SetResult(&family).
		Post("/api/admin/families")
	if err := check(resp, err, "creating family"); err != nil {
		return nil, err
	}
	return &family, nil
}

// AdminRenameFamily changes the display name of a family.
func (c *Client) AdminRenameFamily(ctx context.Context, id int64, name string) (*domain.Family, error) {
	var family domain.Family
	resp, err := c.adminRequest(ctx).
		SetBody(map[string]string{"family_name": name}).
		SetResult(&family).
		Patch(fmt.Sprintf("/api/admin/families/%d", id))
	if err := check(resp, err, fmt.Sprintf("renaming family %d", id)); err != nil {
		return nil, err
	}
	return &family, nil
}

// AdminDeleteFamily removes a family. Its members become individual guests.
func (c *Client) AdminDeleteFamily(ctx context.Context, id int64) error {
	resp, err := c.adminRequest(ctx).Delete(fmt.Sprintf("/api/admin/families/%d", id))
	return check(resp, err, fmt.Sprintf("deleting family %d", id))
}
