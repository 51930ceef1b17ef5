package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weddingrsvp/rsvp/db"
	"github.com/weddingrsvp/rsvp/domain"
	"github.com/weddingrsvp/rsvp/gallery"
	"github.com/weddingrsvp/rsvp/logger"
)

const testAdminPassword = "s3cret"

func setupTestServer(t *testing.T, config Config) (*Server, *db.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbConn, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	repo := db.NewRepo(dbConn)
	t.Cleanup(func() { repo.Close() })

	photos, err := gallery.NewStore(filepath.Join(t.TempDir(), "photos"))
	require.NoError(t, err)

	if config.AdminPassword == "" {
		config.AdminPassword = testAdminPassword
	}
	srv, err := New(config, repo, photos, logger.Nop())
	require.NoError(t, err)
	return srv, repo
}

// do sends a request with an optional JSON body and the given headers as key/value pairs.
func do(t *testing.T, srv *Server, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createFamily(t *testing.T, repo *db.Repository, name string, members ...string) *domain.Family {
	t.Helper()

	family := &domain.Family{FamilyName: name}
	require.NoError(t, repo.CreateFamily(family))
	for _, member := range members {
		family.Guests = append(family.Guests, createGuest(t, repo, member, &family.ID))
	}
	return family
}

func createGuest(t *testing.T, repo *db.Repository, name string, familyID *int64) *domain.Guest {
	t.Helper()

	guest := &domain.Guest{Name: name, FamilyID: familyID}
	require.NoError(t, repo.CreateGuest(guest))
	return guest
}

func TestNew(t *testing.T) {
	t.Run("Should reject an invalid upload rate", func(t *testing.T) {
		_, err := New(Config{UploadRate: "lots"}, nil, nil, nil)
		require.Error(t, err)
	})
}

func TestHealth(t *testing.T) {
	srv, _ := setupTestServer(t, Config{})

	w := do(t, srv, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Wedding RSVP API"}`, w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	srv, _ := setupTestServer(t, Config{AllowedOrigins: []string{"http://localhost:5173"}})

	t.Run("Should answer preflight requests from allowed origins", func(t *testing.T) {
		w := do(t, srv, http.MethodOptions, "/api/guests", nil, "Origin", "http://localhost:5173")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), AdminPasswordHeader)
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), WarningHeader)
	})

	t.Run("Should not allow unknown origins", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/guests", nil, "Origin", "http://evil.example")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestAdminMiddleware(t *testing.T) {
	srv, _ := setupTestServer(t, Config{})

	t.Run("Should reject a missing password", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/admin/data", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"detail":"Invalid admin password"}`, w.Body.String())
	})

	t.Run("Should reject a wrong password", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/admin/data", nil, AdminPasswordHeader, "nope")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should accept the configured password", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/admin/data", nil, AdminPasswordHeader, testAdminPassword)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Should reject everything when no password is configured", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.GET("/", AdminMiddleware(""), func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
