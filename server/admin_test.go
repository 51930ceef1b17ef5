package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weddingrsvp/rsvp/domain"
)

func admin(t *testing.T, srv *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, srv, method, target, body, AdminPasswordHeader, testAdminPassword)
}

func TestAdminData(t *testing.T) {
	srv, repo := setupTestServer(t, Config{})
	createFamily(t, repo, "Famiglia Rossi", "Mario Rossi")
	solo := createGuest(t, repo, "Luca Bianchi", nil)
	notes := "plus one?"
	solo.AdminNotes = &notes
	require.NoError(t, repo.UpdateGuest(solo))

	w := admin(t, srv, http.MethodGet, "/api/admin/data", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[struct {
		Families    []*domain.Family `json:"families"`
		Individuals []*domain.Guest  `json:"individuals"`
	}](t, w)
	require.Len(t, got.Families, 1)
	require.Len(t, got.Individuals, 1)
	require.NotNil(t, got.Individuals[0].AdminNotes)
	assert.Equal(t, notes, *got.Individuals[0].AdminNotes)
}

func TestAdminGuests(t *testing.T) {
	t.Run("Should create a guest with attendance in sync", func(t *testing.T) {
		srv, repo := setupTestServer(t, Config{})
		family := createFamily(t, repo, "Famiglia Rossi")

		body := map[string]any{
			"name":            "  Anna Rossi ",
			"family_id":       family.ID,
			"attend_ceremony": false,
			"attend_lunch":    false,
			"admin_notes":     "cousin",
		}
		w := admin(t, srv, http.MethodPost, "/api/admin/guests", body)
		require.Equal(t, http.StatusCreated, w.Code)

		got := decode[domain.Guest](t, w)
		assert.Equal(t, "Anna Rossi", got.Name)
		require.NotNil(t, got.FamilyID)
		assert.Equal(t, family.ID, *got.FamilyID)
		assert.Equal(t, domain.AttendanceNo, got.Attending)
		assert.Equal(t, domain.ChoiceDecline, got.AttendanceChoice)

		stored, err := repo.GetGuest(got.ID)
		require.NoError(t, err)
		assert.Equal(t, "cousin", *stored.AdminNotes)
	})

	t.Run("Should require a name", func(t *testing.T) {
		srv, _ := setupTestServer(t, Config{})

		w := admin(t, srv, http.MethodPost, "/api/admin/guests", map[string]any{"name": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"detail":"Guest name is required"}`, w.Body.String())
	})

	t.Run("Should reject a missing target family", func(t *testing.T) {
		srv, repo := setupTestServer(t, Config{})
		guest := createGuest(t, repo, "Luca Bianchi", nil)

		w := admin(t, srv, http.MethodPatch, fmt.Sprintf("/api/admin/guests/%d", guest.ID), map[string]any{"family_id": 77})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"detail":"Target family not found"}`, w.Body.String())
	})

	t.Run("Should move a guest out of its family and clear notes", func(t *testing.T) {
		srv, repo := setupTestServer(t, Config{})
		family := createFamily(t, repo, "Famiglia Rossi", "Mario Rossi")
		mario := family.Guests[0]
		notes := "old"
		mario.DietaryNotes = &notes
		require.NoError(t, repo.UpdateGuest(mario))

		body := `{"family_id": null, "dietary_notes": null, "name": "Mario R."}`
		w := admin(t, srv, http.MethodPatch, fmt.Sprintf("/api/admin/guests/%d", mario.ID), body)
		require.Equal(t, http.StatusOK, w.Code)

		stored, err := repo.GetGuest(mario.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.FamilyID)
		assert.Nil(t, stored.DietaryNotes)
		assert.Equal(t, "Mario R.", stored.Name)
	})

	t.Run("Should delete a guest", func(t *testing.T) {
		srv, repo := setupTestServer(t, Config{})
		guest := createGuest(t, repo, "Luca Bianchi", nil)

		w := admin(t, srv, http.MethodDelete, fmt.Sprintf("/api/admin/guests/%d", guest.ID), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = admin(t, srv, http.MethodDelete, fmt.Sprintf("/api/admin/guests/%d", guest.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminFamilies(t *testing.T) {
	t.Run("Should create and rename a family", func(t *testing.T) {
		srv, _ := setupTestServer(t, Config{})

		w := admin(t, srv, http.MethodPost, "/api/admin/families", map[string]any{"family_name": "Famiglia Verdi"})
		require.Equal(t, http.StatusCreated, w.Code)
		created := decode[domain.Family](t, w)
		assert.Equal(t, "Famiglia Verdi", created.FamilyName)
		assert.Empty(t, created.Guests)

		w = admin(t, srv, http.MethodPatch, fmt.Sprintf("/api/admin/families/%d", created.ID), map[string]any{"family_name": "Verdi"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Verdi", decode[domain.Family](t, w).FamilyName)
	})

	t.Run("Should require a family name", func(t *testing.T) {
		srv, _ := setupTestServer(t, Config{})

		w := admin(t, srv, http.MethodPost, "/api/admin/families", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should return 404 when renaming a missing family", func(t *testing.T) {
		srv, _ := setupTestServer(t, Config{})

		w := admin(t, srv, http.MethodPatch, "/api/admin/families/5", map[string]any{"family_name": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Should keep members as individuals when deleting", func(t *testing.T) {
		srv, repo := setupTestServer(t, Config{})
		family := createFamily(t, repo, "Famiglia Rossi", "Mario Rossi")

		w := admin(t, srv, http.MethodDelete, fmt.Sprintf("/api/admin/families/%d", family.ID), nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		individuals, err := repo.ListIndividualGuests()
		require.NoError(t, err)
		require.Len(t, individuals, 1)
		assert.Equal(t, family.Guests[0].ID, individuals[0].ID)
	})
}
