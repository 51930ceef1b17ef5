package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/weddingrsvp/rsvp/gallery"
)

// Photo is a gallery photo as returned by the API.
type Photo struct {
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

// PhotoList is one page of the gallery.
type PhotoList struct {
	Photos     []Photo `json:"photos"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
}

// PhotoUpload describes a file to add to the gallery.
type PhotoUpload struct {
	Filename     string
	ContentType  string // Sniffed from Data when empty.
	Data         []byte
	UploaderName string
	Caption      string
}

// progressReader reports the share of the body handed to the transport, from 0 to 100.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	progress func(percent int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		percent := int(p.read * 100 / p.total)
		if percent != p.last {
			p.last = percent
			p.progress(percent)
		}
	}
	return n, err
}

func multipartBody(upload PhotoUpload) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for name, value := range map[string]string{"uploader_name": upload.UploaderName, "caption": upload.Caption} {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	contentType := upload.ContentType
	if contentType == "" {
		detected, err := gallery.CheckType("", upload.Data)
		if err != nil {
			return nil, "", err
		}
		contentType = detected
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.Filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", err
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &body, mw.FormDataContentType(), nil
}

// UploadPhoto adds a photo to the gallery. progress, when not nil, is called with
// increasing percentages as the body is sent.
func (c *Client) UploadPhoto(ctx context.Context, upload PhotoUpload, progress func(percent int)) (*Photo, error) {
	body, contentType, err := multipartBody(upload)
	if err != nil {
		return nil, fmt.Errorf("encoding upload %s: %w", upload.Filename, err)
	}

	var reader io.Reader = body
	if progress != nil {
		progress(0)
		reader = &progressReader{r: body, total: int64(body.Len()), progress: progress}
	}

	var photo Photo
	resp, err := c.request(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(reader).
		SetResult(&photo).
		Post("/api/photos")
	if err := check(resp, err, fmt.Sprintf("uploading %s", upload.Filename)); err != nil {
		return nil, err
	}
	return &photo, nil
}

// ListPhotos returns one page of the gallery, optionally filtered by uploader or caption.
func (c *Client) ListPhotos(ctx context.Context, page, perPage int, search string) (*PhotoList, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		params.Set("per_page", strconv.Itoa(perPage))
	}
	if search != "" {
		params.Set("search", search)
	}

	var list PhotoList
	resp, err := c.request(ctx).SetQueryParamsFromValues(params).SetResult(&list).Get("/api/photos")
	if err := check(resp, err, "listing photos"); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeletePhoto removes a photo from the gallery. It needs the admin password.
func (c *Client) DeletePhoto(ctx context.Context, id string) error {
	resp, err := c.adminRequest(ctx).Delete("/api/photos/" + url.PathEscape(id))
	return check(resp, err, fmt.Sprintf("deleting photo %s", id))
}
