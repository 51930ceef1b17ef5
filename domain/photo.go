package domain

import (
	"time"

	"github.com/google/uuid"
)

// PhotoRepository defines the persistence contract for gallery photo metadata.
// Image files themselves are managed by the gallery package.
type PhotoRepository interface {
	// InsertPhoto saves the metadata of a processed upload and sets CreatedAt.
	InsertPhoto(photo *Photo) error

	// GetPhoto retrieves a photo by ID, returning ErrNotFound when missing.
	GetPhoto(id uuid.UUID) (*Photo, error)

	// ListPhotos returns one page of photos, newest first. When search is not empty,
	// only photos whose uploader name or caption contain it (case-insensitive) are counted.
	ListPhotos(page, perPage int, search string) (*PhotoPage, error)

	// DeletePhoto removes the metadata row, returning ErrNotFound when missing.
	DeletePhoto(id uuid.UUID) error
}

// Photo is the metadata of an image in the shared gallery.
type Photo struct {
	ID               uuid.UUID // Also the base name of the stored files.
	OriginalFilename string
	UploaderName     *string
	Caption          *string
	MimeType         string // Declared type of the upload.
	FileSize         int64  // Size of the stored, re-encoded original.
	Width            int
	Height           int
	CreatedAt        time.Time
}

// PhotoPage is one page of a photo listing.
type PhotoPage struct {
	Photos     []*Photo
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

// Page bounds applied to photo listings.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ClampPage brings page and perPage inside the accepted bounds.
func ClampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// TotalPages is the number of pages needed for total items, at least one.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
