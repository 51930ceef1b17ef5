// Package gallery stores the images uploaded to the shared wedding gallery.
//
// Uploads are validated against an allow-list of image types, re-encoded as JPEG
// with their EXIF orientation applied and metadata stripped, scaled down to a
// bounded original and a thumbnail, and written under Dir as
// originals/<id>.jpg and thumbs/<id>.jpg.
package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxUploadBytes  = 15 << 20
	MaxOriginalSize = 2048
	ThumbSize       = 400
	OriginalQuality = 85
	ThumbQuality    = 80
)

// AllowedTypes are the image types accepted for upload.
var AllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"image/heif",
}

var (
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrTooLarge        = errors.New("file too large")
	ErrDecode          = errors.New("cannot open image")
)

// Store writes and removes gallery image files.
type Store struct {
	Dir      string
	MaxBytes int64 // Largest accepted upload. Zero means MaxUploadBytes.
}

// NewStore returns a Store rooted at dir, creating its subdirectories.
func NewStore(dir string) (*Store, error) {
	store := &Store{Dir: dir}
	if err := store.EnsureDirs(); err != nil {
		return nil, err
	}
	return store, nil
}

// EnsureDirs creates the originals and thumbs directories if missing.
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.originalsDir(), s.thumbsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

func (s *Store) originalsDir() string { return filepath.Join(s.Dir, "originals") }
func (s *Store) thumbsDir() string    { return filepath.Join(s.Dir, "thumbs") }

// OriginalPath is the file holding the scaled original of the photo.
func (s *Store) OriginalPath(id uuid.UUID) string {
	return filepath.Join(s.originalsDir(), id.String()+".jpg")
}

// ThumbPath is the file holding the thumbnail of the photo.
func (s *Store) ThumbPath(id uuid.UUID) string {
	return filepath.Join(s.thumbsDir(), id.String()+".jpg")
}

// OriginalURL is the public path of the scaled original.
func OriginalURL(id uuid.UUID) string {
	return "/photos/originals/" + id.String() + ".jpg"
}

// ThumbURL is the public path of the thumbnail.
func ThumbURL(id uuid.UUID) string {
	return "/photos/thumbs/" + id.String() + ".jpg"
}

// Processed describes an upload once stored.
type Processed struct {
	ID       uuid.UUID
	MimeType string // Declared type, or the sniffed one when none was declared.
	Width    int    // Of the stored original.
	Height   int
	FileSize int64 // Of the stored original.
}

// CheckType validates the declared content type and the sniffed content of an upload.
// It returns the type to record for the photo.
func CheckType(declared string, data []byte) (string, error) {
	detected := mimetype.Detect(data)

	declared = normalizeType(declared)
	if declared == "" || declared == "application/octet-stream" {
		declared = normalizeType(detected.String())
	}
	if !slices.Contains(AllowedTypes, declared) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, declared)
	}

	for _, allowed := range AllowedTypes {
		if detected.Is(allowed) {
			return declared, nil
		}
	}
	return "", fmt.Errorf("%w: content is %s", ErrUnsupportedType, detected.String())
}

func normalizeType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// Save validates, processes and writes an upload, returning the new photo's details.
func (s *Store) Save(data []byte, declaredType string) (*Processed, error) {
	if int64(len(data)) > s.maxBytes() {
		return nil, ErrTooLarge
	}

	mimeType, err := CheckType(declaredType, data)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	img = applyOrientation(img, readOrientation(data))

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating photo id: %w", err)
	}

	original := fit(img, MaxOriginalSize)
	if err := writeJPEG(s.OriginalPath(id), original, OriginalQuality); err != nil {
		return nil, err
	}

	thumb := fit(original, ThumbSize)
	if err := writeJPEG(s.ThumbPath(id), thumb, ThumbQuality); err != nil {
		return nil, errors.Join(err, s.Delete(id))
	}

	info, err := os.Stat(s.OriginalPath(id))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("reading stored original: %w", err), s.Delete(id))
	}

	bounds := original.Bounds()
	return &Processed{
		ID:       id,
		MimeType: mimeType,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		FileSize: info.Size(),
	}, nil
}

func (s *Store) maxBytes() int64 {
	if s.MaxBytes > 0 {
		return s.MaxBytes
	}
	return MaxUploadBytes
}

// Delete removes the files of a photo. Missing files are not an error.
func (s *Store) Delete(id uuid.UUID) error {
	for _, path := range []string{s.OriginalPath(id), s.ThumbPath(id)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

// fit scales img down so its longest side is at most max, flattening it onto white.
// Images already small enough keep their size.
func fit(img image.Image, max int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > max || h > max {
		if w >= h {
			h = max * h / w
			w = max
		} else {
			w = max * w / h
			h = max
		}
	}
	w, h = atLeastOne(w), atLeastOne(h)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func writeJPEG(path string, img image.Image, quality int) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
