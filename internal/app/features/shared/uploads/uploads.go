// internal/app/features/shared/uploads/uploads.go
package uploads

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/prepboard/internal/app/system/filestore"
	"github.com/dalemusser/prepboard/internal/domain/models"
)

const memoryLimit = 8 << 20

var (
	ErrNoFile  = errors.New(`multipart field "file" is required`)
	ErrBadKind = errors.New(`kind must be "image" or "file"`)
)

// Read parses a multipart attachment upload with fields "file" and "kind".
// The returned cleanup removes any temporary files and must be called once
// the upload body has been consumed.
func Read(w http.ResponseWriter, r *http.Request, maxBytes int64) (filestore.Upload, func(), error) {
	noop := func() {}
	if maxBytes > 0 {
		// Allow room for the multipart framing around the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64<<10)
	}
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return filestore.Upload{}, noop, filestore.ErrTooLarge
		}
		return filestore.Upload{}, noop, err
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	kind := models.AttachmentKind(strings.ToLower(strings.TrimSpace(r.FormValue("kind"))))
	switch kind {
	case "":
		kind = models.AttachmentFile
	case models.AttachmentImage, models.AttachmentFile:
	default:
		cleanup()
		return filestore.Upload{}, noop, ErrBadKind
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		cleanup()
		return filestore.Upload{}, noop, ErrNoFile
	}
	if maxBytes > 0 && hdr.Size > maxBytes {
		file.Close()
		cleanup()
		return filestore.Upload{}, noop, filestore.ErrTooLarge
	}

	return filestore.Upload{
			Kind:        kind,
			Name:        hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Body:        file,
		}, func() {
			file.Close()
			cleanup()
		}, nil
}
