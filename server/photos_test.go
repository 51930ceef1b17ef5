package server

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weddingrsvp/rsvp/gallery"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// upload posts a multipart photo. An empty contentType omits the file part.
func upload(t *testing.T, srv *Server, ip, contentType string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if contentType != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Real-IP", ip)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestUploadPhoto(t *testing.T) {
	t.Run("Should store the photo and serve its files", func(t *testing.T) {
		srv, repo := setupTestServer(t, Config{})

		w := upload(t, srv, "10.0.0.1", "image/png", testPNG(t, 64, 32), map[string]string{
			"uploader_name": "  Zia Carla ",
			"caption":       "",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		got := decode[photoResponse](t, w)
		assert.Equal(t, "photo.png", got.OriginalFilename)
		require.NotNil(t, got.UploaderName)
		assert.Equal(t, "Zia Carla", *got.UploaderName)
		assert.Nil(t, got.Caption)
		assert.Equal(t, 64, got.Width)
		assert.Equal(t, 32, got.Height)
		assert.Equal(t, fmt.Sprintf("/photos/thumbs/%s.jpg", got.ID), got.ThumbURL)

		page, err := repo.ListPhotos(1, 20, "")
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, "image/png", page.Photos[0].MimeType)

		file := do(t, srv, http.MethodGet, got.FullURL, nil)
		assert.Equal(t, http.StatusOK, file.Code)
	})

	t.Run("Should reject disallowed types", func(t *testing.T) {
		srv, _ := setupTestServer(t, Config{})

		w := upload(t, srv, "10.0.0.1", "image/gif", testPNG(t, 4, 4), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"detail":"File type not allowed: image/gif"}`, w.Body.String())
	})

	t.Run("Should reject a request without a file", func(t *testing.T) {
		srv, _ := setupTestServer(t, Config{})

		w := upload(t, srv, "10.0.0.1", "", nil, map[string]string{"caption": "hi"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should reject content that cannot be decoded", func(t *testing.T) {
		srv, _ := setupTestServer(t, Config{})

		broken := testPNG(t, 8, 8)[:40]
		w := upload(t, srv, "10.0.0.1", "image/png", broken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should limit uploads per client", func(t *testing.T) {
		srv, _ := setupTestServer(t, Config{UploadRate: "2-H"})

		for i := 0; i < 2; i++ {
			w := upload(t, srv, "10.0.0.9", "", nil, nil)
			require.Equal(t, http.StatusBadRequest, w.Code)
		}

		w := upload(t, srv, "10.0.0.9", "image/png", testPNG(t, 4, 4), nil)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))

		w = upload(t, srv, "10.0.0.10", "image/png", testPNG(t, 4, 4), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestListPhotos(t *testing.T) {
	srv, _ := setupTestServer(t, Config{})
	for i, name := range []string{"Zia Carla", "Nonno Piero", "Carlo"} {
		w := upload(t, srv, fmt.Sprintf("10.0.1.%d", i), "image/png", testPNG(t, 8, 8), map[string]string{"uploader_name": name})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	t.Run("Should paginate newest first", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/photos?page=1&per_page=2", nil)
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[photoListResponse](t, w)
		assert.Equal(t, 3, got.Total)
		assert.Equal(t, 2, got.TotalPages)
		require.Len(t, got.Photos, 2)
		assert.Equal(t, "Carlo", *got.Photos[0].UploaderName)
	})

	t.Run("Should search case-insensitively", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/photos?search=CARL", nil)
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[photoListResponse](t, w)
		assert.Equal(t, 2, got.Total)
	})

	t.Run("Should clamp the page size", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/photos?per_page=1000&page=0", nil)
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[photoListResponse](t, w)
		assert.Equal(t, 100, got.PerPage)
		assert.Equal(t, 1, got.Page)
	})

	t.Run("Should reject non-numeric pages", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/photos?page=two", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeletePhoto(t *testing.T) {
	srv, repo := setupTestServer(t, Config{})
	w := upload(t, srv, "10.0.0.1", "image/png", testPNG(t, 8, 8), nil)
	require.Equal(t, http.StatusOK, w.Code)
	uploaded := decode[photoResponse](t, w)

	t.Run("Should require the admin password", func(t *testing.T) {
		w := do(t, srv, http.MethodDelete, "/api/photos/"+uploaded.ID, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should remove the metadata and the files", func(t *testing.T) {
		w := admin(t, srv, http.MethodDelete, "/api/photos/"+uploaded.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"detail":"Photo deleted"}`, w.Body.String())

		total, err := repo.CountPhotos()
		require.NoError(t, err)
		assert.Zero(t, total)

		page, err := repo.ListPhotos(1, 20, "")
		require.NoError(t, err)
		assert.Empty(t, page.Photos)

		store := &gallery.Store{Dir: srv.photos.Dir}
		_, err = os.Stat(store.OriginalPath(uuid.MustParse(uploaded.ID)))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Should return 404 for unknown ids", func(t *testing.T) {
		w := admin(t, srv, http.MethodDelete, "/api/photos/"+uploaded.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = admin(t, srv, http.MethodDelete, "/api/photos/not-a-uuid", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
