// Package filestore turns uploads into attachments on top of a waffle
// storage backend (local disk or a Cloud Storage bucket).
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// CacheControl is sent with stored attachments. Keys are never reused.
const CacheControl = "public, max-age=86400"

var (
	ErrTooLarge = errors.New("file exceeds the upload limit")
	ErrNotImage = errors.New("file is not an image")
	ErrEmpty    = errors.New("file is empty")
)

// Key builds "<prefix>/<yyyy>/<mm>/<uuid><ext>" for an uploaded file name.
func Key(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	now = now.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s%s", prefix, now.Year(), int(now.Month()), uuid.NewString(), ext)
}

// Upload is one file received from a client.
type Upload struct {
	Kind        models.AttachmentKind
	Name        string
	ContentType string
	Body        io.Reader
}

// Saver stores uploads and turns them into attachments.
type Saver struct {
	Store    storage.Store
	MaxBytes int64
	Now      func() time.Time
}

// Save streams up.Body into the store under prefix. It sniffs the content
// type when the client sent none and enforces MaxBytes. Images are judged
// by their bytes, not the declared type, and keep an extension that
// matches what was sniffed.
func (s *Saver) Save(ctx context.Context, prefix string, up Upload) (models.Attachment, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return models.Attachment{}, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return models.Attachment{}, ErrEmpty
	}
	head = head[:n]

	sniffed := normalizeContentType(http.DetectContentType(head))
	ct := normalizeContentType(up.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = sniffed
	}
	keyName := up.Name
	if up.Kind == models.AttachmentImage {
		if !strings.HasPrefix(sniffed, "image/") {
			return models.Attachment{}, ErrNotImage
		}
		ct = sniffed
		keyName = "image" + imageExt(sniffed)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	at := now().UTC()
	key := Key(prefix, keyName, at)

	body := &countingReader{r: io.MultiReader(bytes.NewReader(head), up.Body), limit: s.MaxBytes}
	err = s.Store.Put(ctx, key, body, &storage.PutOptions{ContentType: ct, CacheControl: CacheControl})
	if body.over {
		s.discard(ctx, key)
		return models.Attachment{}, ErrTooLarge
	}
	if err != nil {
		return models.Attachment{}, fmt.Errorf("store %s: %w", key, err)
	}

	name := strings.TrimSpace(filepath.Base(up.Name))
	if name == "" || name == "." || name == "/" {
		name = path.Base(key)
	}
	return models.Attachment{
		ID:          uuid.NewString(),
		Name:        name,
		URL:         s.Store.URL(key),
		Path:        key,
		Size:        body.n,
		ContentType: ct,
		UploadedAt:  at,
	}, nil
}

// discard removes a partially written object. Local writes go through a
// temp file, so there is usually nothing to remove.
func (s *Saver) discard(ctx context.Context, key string) {
	_ = s.Store.Delete(ctx, key)
}

// DeleteAll removes the stored bytes of every attachment, returning the
// first error but attempting all. Objects already gone are not an error.
func (s *Saver) DeleteAll(ctx context.Context, atts ...[]models.Attachment) error {
	var first error
	for _, list := range atts {
		for _, a := range list {
			if a.Path == "" {
				continue
			}
			err := s.Store.Delete(ctx, a.Path)
			if err != nil && !errors.Is(err, storage.ErrNotFound) && first == nil {
				first = err
			}
		}
	}
	return first
}

// imageExt maps a sniffed image type to the extension stored objects use,
// so the file server never sees an image under a non-image extension.
func imageExt(ct string) string {
	switch ct {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "image/x-icon":
		return ".ico"
	}
	if exts, err := mime.ExtensionsByType(ct); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func normalizeContentType(ct string) string {
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

type countingReader struct {
	r     io.Reader
	n     int64
	limit int64
	over  bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.limit > 0 && c.n > c.limit {
		c.over = true
		return n, ErrTooLarge
	}
	return n, err
}
