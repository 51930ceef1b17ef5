package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/weddingrsvp/rsvp/domain"
)

var _ domain.PhotoRepository = (*Repository)(nil)

// dbPhoto represents gallery photo metadata as stored in the database.
type dbPhoto struct {
	ID               uuid.UUID      `db:"id"`
	OriginalFilename string         `db:"original_filename"`
	UploaderName     sql.NullString `db:"uploader_name"`
	Caption          sql.NullString `db:"caption"`
	MimeType         string         `db:"mime_type"`
	FileSize         int64          `db:"file_size"`
	Width            sql.NullInt64  `db:"width"`
	Height           sql.NullInt64  `db:"height"`
	CreatedAt        sql.NullTime   `db:"created_at"`
}

// toDomainPhoto converts a dbPhoto to a domain.Photo.
func toDomainPhoto(p *dbPhoto) *domain.Photo {
	return &domain.Photo{
		ID:               p.ID,
		OriginalFilename: p.OriginalFilename,
		UploaderName:     toStringPtr(p.UploaderName),
		Caption:          toStringPtr(p.Caption),
		MimeType:         p.MimeType,
		FileSize:         p.FileSize,
		Width:            int(p.Width.Int64),
		Height:           int(p.Height.Int64),
		CreatedAt:        toTime(p.CreatedAt),
	}
}

// InsertPhoto saves the metadata of a processed upload and sets CreatedAt.
func (repo *Repository) InsertPhoto(photo *domain.Photo) error {
	photo.CreatedAt = now()
	query := `INSERT INTO photos (id, original_filename, uploader_name, caption, mime_type, file_size, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := repo.dbConn.Exec(query,
		photo.ID,
		photo.OriginalFilename,
		fromStringPtr(photo.UploaderName),
		fromStringPtr(photo.Caption),
		photo.MimeType,
		photo.FileSize,
		photo.Width,
		photo.Height,
		photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting photo %s: %w", photo.ID, err)
	}
	return nil
}

// GetPhoto retrieves the metadata of a single photo.
func (repo *Repository) GetPhoto(id uuid.UUID) (*domain.Photo, error) {
	var p dbPhoto
	err := repo.dbConn.Get(&p, `SELECT * FROM photos WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("photo %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting photo %s: %w", id, err)
	}
	return toDomainPhoto(&p), nil
}

// ListPhotos returns one page of photos, newest first, optionally filtered by uploader name or caption.
func (repo *Repository) ListPhotos(page, perPage int, search string) (*domain.PhotoPage, error) {
	page, perPage = domain.ClampPage(page, perPage)

	where := ""
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		where = ` WHERE LOWER(uploader_name) LIKE ? ESCAPE '\' OR LOWER(caption) LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern)
	}

	var total int
	if err := repo.dbConn.Get(&total, `SELECT COUNT(*) FROM photos`+where, args...); err != nil {
		return nil, fmt.Errorf("counting photos: %w", err)
	}

	var dbPhotos []*dbPhoto
	query := `SELECT * FROM photos` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	pageArgs := append(args, perPage, (page-1)*perPage)
	if err := repo.dbConn.Select(&dbPhotos, query, pageArgs...); err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}

	photos := make([]*domain.Photo, len(dbPhotos))
	for i, p := range dbPhotos {
		photos[i] = toDomainPhoto(p)
	}

	return &domain.PhotoPage{
		Photos:     photos,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: domain.TotalPages(total, perPage),
	}, nil
}

// DeletePhoto removes the metadata of a photo.
func (repo *Repository) DeletePhoto(id uuid.UUID) error {
	result, err := repo.dbConn.Exec(`DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting photo %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("photo %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
