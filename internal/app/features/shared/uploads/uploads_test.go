package uploads

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/prepboard/internal/app/system/filestore"
	"github.com/dalemusser/prepboard/internal/domain/models"
)

func multipartRequest(t *testing.T, kind, name string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if kind != "" {
		if err := mw.WriteField("kind", kind); err != nil {
			t.Fatal(err)
		}
	}
	if name != "" {
		fw, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(body)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/x", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRead(t *testing.T) {
	req := multipartRequest(t, "IMAGE", "photo.png", []byte("png-bytes"))
	up, cleanup, err := Read(httptest.NewRecorder(), req, 1<<20)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer cleanup()

	if up.Kind != models.AttachmentImage || up.Name != "photo.png" {
		t.Errorf("upload = %+v", up)
	}
	data, _ := io.ReadAll(up.Body)
	if string(data) != "png-bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestRead_DefaultsToFile(t *testing.T) {
	up, cleanup, err := Read(httptest.NewRecorder(), multipartRequest(t, "", "notes.pdf", []byte("x")), 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer cleanup()
	if up.Kind != models.AttachmentFile {
		t.Errorf("kind = %q", up.Kind)
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  *http.Request
		max  int64
		want error
	}{
		{"bad kind", multipartRequest(t, "video", "a.mp4", []byte("x")), 0, ErrBadKind},
		{"no file", multipartRequest(t, "file", "", nil), 0, ErrNoFile},
		{"too large", multipartRequest(t, "file", "big.bin", bytes.Repeat([]byte("a"), 2048)), 1024, filestore.ErrTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, cleanup, err := Read(httptest.NewRecorder(), tc.req, tc.max)
			cleanup()
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}
