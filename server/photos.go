package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/weddingrsvp/rsvp/domain"
	"github.com/weddingrsvp/rsvp/gallery"
)

type photoResponse struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	UploaderName     *string   `json:"uploader_name"`
	Caption          *string   `json:"caption"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	ThumbURL         string    `json:"thumb_url"`
	FullURL          string    `json:"full_url"`
	CreatedAt        time.Time `json:"created_at"`
}

type photoListResponse struct {
	Photos     []photoResponse `json:"photos"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
}

type listPhotosQuery struct {
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Search  string `form:"search"`
}

func toPhotoResponse(p *domain.Photo) photoResponse {
	return photoResponse{
		ID:               p.ID.String(),
		OriginalFilename: p.OriginalFilename,
		UploaderName:     p.UploaderName,
		Caption:          p.Caption,
		Width:            p.Width,
		Height:           p.Height,
		ThumbURL:         gallery.ThumbURL(p.ID),
		FullURL:          gallery.OriginalURL(p.ID),
		CreatedAt:        p.CreatedAt,
	}
}

// trimmedOrNil returns nil for blank form values.
func trimmedOrNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func (s *Server) maxUploadBytes() int64 {
	if s.photos != nil && s.photos.MaxBytes > 0 {
		return s.photos.MaxBytes
	}
	return gallery.MaxUploadBytes
}

func (s *Server) uploadPhoto(c *gin.Context) {
	ip := clientIP(c)
	limit, err := s.uploadLimiter.Get(c.Request.Context(), ip)
	if err != nil {
		abortWithError(c, fmt.Errorf("checking upload rate for %s: %w", ip, err), "")
		return
	}
	if limit.Reached {
		c.Header("Retry-After", fmt.Sprintf("%d", max(int64(1), limit.Reset-time.Now().Unix())))
		abortWithDetail(c, http.StatusTooManyRequests, "Upload rate limit exceeded. Try again later.")
		return
	}

	if s.photos == nil {
		abortWithDetail(c, http.StatusServiceUnavailable, "Photo gallery is not configured")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		abortWithDetail(c, http.StatusBadRequest, "A file is required")
		return
	}

	tooLarge := fmt.Sprintf("File too large. Maximum size is %dMB.", s.maxUploadBytes()>>20)
	if header.Size > s.maxUploadBytes() {
		abortWithDetail(c, http.StatusBadRequest, tooLarge)
		return
	}

	f, err := header.Open()
	if err != nil {
		abortWithError(c, fmt.Errorf("opening upload: %w", err), "")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxUploadBytes()+1))
	if err != nil {
		abortWithError(c, fmt.Errorf("reading upload: %w", err), "")
		return
	}

	declared := header.Header.Get("Content-Type")
	processed, err := s.photos.Save(data, declared)
	if err != nil {
		switch {
		case errors.Is(err, gallery.ErrUnsupportedType):
			detail := "File type not allowed"
			if declared != "" && declared != "application/octet-stream" {
				detail += ": " + declared
			}
			abortWithDetail(c, http.StatusBadRequest, detail)
		case errors.Is(err, gallery.ErrTooLarge):
			abortWithDetail(c, http.StatusBadRequest, tooLarge)
		case errors.Is(err, gallery.ErrDecode):
			abortWithDetail(c, http.StatusBadRequest, "Cannot open image")
		default:
			abortWithError(c, err, "")
		}
		return
	}

	filename := header.Filename
	if filename == "" {
		filename = "unknown"
	}
	photo := &domain.Photo{
		ID:               processed.ID,
		OriginalFilename: filename,
		UploaderName:     trimmedOrNil(c.PostForm("uploader_name")),
		Caption:          trimmedOrNil(c.PostForm("caption")),
		MimeType:         processed.MimeType,
		FileSize:         processed.FileSize,
		Width:            processed.Width,
		Height:           processed.Height,
	}
	if err := s.repo.InsertPhoto(photo); err != nil {
		if delErr := s.photos.Delete(photo.ID); delErr != nil {
			s.log.Warn("Removing files of unsaved photo", "photo_id", photo.ID, "error", delErr)
		}
		abortWithError(c, err, "")
		return
	}

	s.log.Info("Photo uploaded", "photo_id", photo.ID, "ip", ip, "size", photo.FileSize)
	c.JSON(http.StatusOK, toPhotoResponse(photo))
}

func (s *Server) listPhotos(c *gin.Context) {
	var query listPhotosQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	page, err := s.repo.ListPhotos(query.Page, query.PerPage, strings.TrimSpace(query.Search))
	if err != nil {
		abortWithError(c, err, "")
		return
	}

	out := photoListResponse{
		Photos:     make([]photoResponse, len(page.Photos)),
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	}
	for i, p := range page.Photos {
		out.Photos[i] = toPhotoResponse(p)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) deletePhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithDetail(c, http.StatusNotFound, "Photo not found")
		return
	}

	if _, err := s.repo.GetPhoto(id); err != nil {
		abortWithError(c, err, "Photo not found")
		return
	}
	if s.photos != nil {
		if err := s.photos.Delete(id); err != nil {
			abortWithError(c, err, "")
			return
		}
	}
	if err := s.repo.DeletePhoto(id); err != nil {
		abortWithError(c, err, "Photo not found")
		return
	}

	s.log.Info("Photo deleted", "photo_id", id)
	c.JSON(http.StatusOK, gin.H{"detail": "Photo deleted"})
}
