package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/prepboard/internal/app/store/memory"
	"github.com/dalemusser/prepboard/internal/app/system/auditlog"
	"github.com/dalemusser/prepboard/internal/app/system/auth"
	"github.com/dalemusser/prepboard/internal/app/system/feedsource"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testAppConfig(t *testing.T) AppConfig {
	t.Helper()
	return AppConfig{
		StoreBackend:           BackendMemory,
		TokenSecret:            devTokenSecret,
		TokenTTL:               time.Hour,
		AdminEmails:            []string{"owner@school.edu"},
		AdminBootstrapEmail:    "owner@school.edu",
		AdminBootstrapPassword: "bootstrap-pass",
		LoginIPLimit:           20,
		LoginEmailLimit:        5,
		DisplayTimezone:        "UTC",
		StorageType:            StorageLocal,
		StorageLocalPath:       t.TempDir(),
		StorageLocalURL:        "/files",
		UploadMaxMB:            1,
		FeedFormat:             feedsource.FormatJSON,
		FeedTTL:                time.Minute,
		FeedKeep:               time.Hour,
		FeedCache:              FeedCacheMemory,
		AuditLog:               auditlog.ModeDB,
		CORSOrigins:            []string{"*"},
		TimeoutPing:            time.Second,
		TimeoutShort:           time.Second,
		TimeoutMedium:          2 * time.Second,
		TimeoutUpstream:        time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "unknown backend", mutate: func(c *AppConfig) { c.StoreBackend = "sqlite" }, wantErr: "store_backend"},
		{name: "firestore without project", mutate: func(c *AppConfig) { c.StoreBackend = BackendFirestore }, wantErr: "firebase_project_id"},
		{name: "firebase auth without project", mutate: func(c *AppConfig) { c.FirebaseAuth = true }, wantErr: "firebase_project_id"},
		{name: "gcs without bucket", mutate: func(c *AppConfig) { c.StorageType = StorageGCS }, wantErr: "storage_gcs_bucket"},
		{name: "relative local url", mutate: func(c *AppConfig) { c.StorageLocalURL = "files" }, wantErr: "storage_local_url"},
		{name: "zero upload size", mutate: func(c *AppConfig) { c.UploadMaxMB = 0 }, wantErr: "upload_max_mb"},
		{name: "feed format", mutate: func(c *AppConfig) { c.FeedFormat = "atom" }, wantErr: "feed_format"},
		{name: "feed cache", mutate: func(c *AppConfig) { c.FeedCache = "memcached" }, wantErr: "feed_cache"},
		{name: "client id without token url", mutate: func(c *AppConfig) { c.FeedClientID = "abc" }, wantErr: "feed_token_url"},
		{name: "audit mode", mutate: func(c *AppConfig) { c.AuditLog = "syslog" }, wantErr: "audit_log"},
		{name: "bootstrap email alone", mutate: func(c *AppConfig) { c.AdminBootstrapPassword = "" }, wantErr: "set together"},
		{name: "weak bootstrap password", mutate: func(c *AppConfig) { c.AdminBootstrapPassword = "short" }, wantErr: "password"},
		{name: "bad timezone", mutate: func(c *AppConfig) { c.DisplayTimezone = "Mars/Olympus" }, wantErr: "display_timezone"},
		{name: "dev secret in prod", env: "prod", mutate: func(*AppConfig) {}, wantErr: "token_secret"},
		{name: "long secret in prod", env: "prod", mutate: func(c *AppConfig) {
			c.TokenSecret = strings.Repeat("k", minProdSecretLen)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testAppConfig(t)
			tc.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tc.env}, cfg, zap.NewNop())
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a@x.edu, ,b@x.edu,")
	if len(got) != 2 || got[0] != "a@x.edu" || got[1] != "b@x.edu" {
		t.Fatalf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Fatal("empty input should yield nil")
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAdmins()
	log := zap.NewNop()

	if err := ensureAdmin(ctx, repo, "owner@school.edu", "first-password", log); err != nil {
		t.Fatalf("create: %v", err)
	}
	created, err := repo.GetByEmail(ctx, "owner@school.edu")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if !auth.CheckPassword(created.PasswordHash, "first-password") {
		t.Fatal("stored hash does not match the bootstrap password")
	}

	if err := ensureAdmin(ctx, repo, "owner@school.edu", "first-password", log); err != nil {
		t.Fatalf("second run: %v", err)
	}
	same, _ := repo.GetByEmail(ctx, "owner@school.edu")
	if same.PasswordHash != created.PasswordHash {
		t.Error("matching password should leave the hash untouched")
	}

	if err := ensureAdmin(ctx, repo, "owner@school.edu", "second-password", log); err != nil {
		t.Fatalf("reset: %v", err)
	}
	reset, _ := repo.GetByEmail(ctx, "owner@school.edu")
	if reset.ID != created.ID {
		t.Error("reset should keep the same admin record")
	}
	if !auth.CheckPassword(reset.PasswordHash, "second-password") {
		t.Error("password was not reset")
	}
}

// startApp runs the lifecycle hooks a server would on the memory backend.
func startApp(t *testing.T, cfg AppConfig) http.Handler {
	t.Helper()
	ctx := context.Background()
	core := &config.CoreConfig{Env: "dev"}
	log := zap.NewNop()

	if err := ValidateConfig(core, cfg, log); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
	deps, err := ConnectDB(ctx, core, cfg, log)
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if err := EnsureSchema(ctx, core, cfg, deps, log); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := Startup(ctx, core, cfg, deps, log); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	t.Cleanup(func() {
		if err := Shutdown(context.Background(), core, cfg, deps, log); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})
	h, err := BuildHandler(core, cfg, deps, log)
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	return h
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBuildHandler_EndToEnd(t *testing.T) {
	h := startApp(t, testAppConfig(t))

	rec := do(t, h, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/announcements", "", `{"title":"Exam week"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: status %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/auth/login", "", `{"email":"Owner@School.edu","password":"bootstrap-pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login response %s (%v)", rec.Body, err)
	}

	rec = do(t, h, http.MethodPost, "/api/announcements", login.Token, `{"title":"Exam week","content":"<p>Room 101</p>"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/api/announcements", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Exam week") {
		t.Fatalf("list: status %d body %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/api/feed", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"enabled":false`) {
		t.Fatalf("feed: status %d body %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/api/calendar", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("calendar: status %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/audit", login.Token, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "announcement_created") {
		t.Fatalf("audit: status %d body %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/api/nowhere", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route: status %d", rec.Code)
	}
}

func TestBuildHandler_Metrics(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.MetricsEnabled = true
	h := startApp(t, cfg)

	do(t, h, http.MethodGet, "/api/announcements", "", "")
	rec := do(t, h, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "prepboard_") {
		t.Error("expected prepboard metrics in the exposition")
	}
}

func TestBuildHandler_RequiresStartup(t *testing.T) {
	if _, err := BuildHandler(&config.CoreConfig{}, AppConfig{}, DBDeps{}, zap.NewNop()); err == nil {
		t.Fatal("expected an error when Startup has not run")
	}
}

func TestBuildHandler_ServesLocalFiles(t *testing.T) {
	cfg := testAppConfig(t)
	dir := filepath.Join(cfg.StorageLocalPath, "announcements", "2026", "03")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("room 101"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := startApp(t, cfg)

	rec := do(t, h, http.MethodGet, "/files/announcements/2026/03/notes.txt", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "room 101" {
		t.Fatalf("file: status %d body %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("nosniff = %q", got)
	}

	rec = do(t, h, http.MethodGet, "/files/announcements/", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("directory: status %d", rec.Code)
	}
}
