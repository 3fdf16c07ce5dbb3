package filestore

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/fileserver"
)

// MountPath is the URL path that serves local attachments for baseURL,
// which may be a bare path ("/files") or an absolute URL.
func MountPath(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if i := strings.Index(baseURL, "://"); i >= 0 {
		rest := baseURL[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			return rest[j:]
		}
		return "/"
	}
	if baseURL == "" {
		return "/"
	}
	return baseURL
}

// Handler serves files stored under root at MountPath(baseURL). Directory
// listings are not served and responses may not run as documents.
func Handler(baseURL, root string) http.Handler {
	files := fileserver.HandlerWithOptions(strings.TrimRight(MountPath(baseURL), "/"), root, fileserver.Options{
		CacheControl:         CacheControl,
		DisablePrecompressed: true,
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; sandbox")
		files.ServeHTTP(w, r)
	})
}
