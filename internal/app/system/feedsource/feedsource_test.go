package feedsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Campus</title>
<item><title>Library closed Friday</title><link>https://example.edu/n/1</link>
<pubDate>Mon, 02 Mar 2026 09:00:00 +0000</pubDate><category>Notice</category></item>
<item><title>  </title><link>https://example.edu/n/2</link></item>
<item><title>Scholarship deadline</title><link>https://example.edu/n/3</link></item>
</channel></rss>`

const atomBody = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>Campus</title>
<entry><title>Exam week</title><link rel="alternate" href="https://example.edu/a/1"/>
<updated>2026-03-05T10:00:00Z</updated><category term="Academic"/></entry>
</feed>`

func TestParseXML_RSS(t *testing.T) {
	items, err := ParseXML(strings.NewReader(rssBody))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 (blank titles skipped)", len(items))
	}
	first := items[0]
	if first.Title != "Library closed Friday" || first.Link != "https://example.edu/n/1" || first.Category != "Notice" {
		t.Errorf("first = %+v", first)
	}
	want := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if first.PublishedAt == nil || !first.PublishedAt.Equal(want) {
		t.Errorf("published = %v, want %v", first.PublishedAt, want)
	}
	if items[1].PublishedAt != nil {
		t.Errorf("missing pubDate should stay nil")
	}
}

func TestParseXML_Atom(t *testing.T) {
	items, err := ParseXML(strings.NewReader(atomBody))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	if len(items) != 1 || items[0].Link != "https://example.edu/a/1" || items[0].Category != "Academic" {
		t.Fatalf("items = %+v", items)
	}
}

func TestParseJSON_Shapes(t *testing.T) {
	cases := map[string]string{
		"array":   `[{"title":"A","url":"https://x/1","date":"2026-03-01"}]`,
		"items":   `{"items":[{"title":"A","link":"https://x/1","published_at":"2026-03-01T00:00:00Z"}]}`,
		"data":    `{"data":[{"title":"A","link":"https://x/1"}]}`,
		"skipped": `[{"title":""},{"title":"A","link":"https://x/1"}]`,
	}
	for name, body := range cases {
		items, err := ParseJSON(strings.NewReader(body))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if len(items) != 1 || items[0].Title != "A" || items[0].Link != "https://x/1" {
			t.Errorf("%s: items = %+v", name, items)
		}
	}
	if _, err := ParseJSON(strings.NewReader(`"nope"`)); err == nil {
		t.Error("expected error for scalar json")
	}
}

func TestSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	s := New(context.Background(), Config{URL: srv.URL, Format: "RSS", Timeout: time.Second})
	items, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("items = %d", len(items))
	}
}

func TestSource_FetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := New(context.Background(), Config{URL: srv.URL})
	if _, err := s.Fetch(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Errorf("got %v, want ErrUpstream", err)
	}
}

func TestSource_ClientCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[{"title":"Secured","link":"https://x/s"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(context.Background(), Config{
		URL:          srv.URL + "/feed",
		ClientID:     "prepboard",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/token",
	})
	items, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Secured" {
		t.Errorf("items = %+v", items)
	}
}
