// Package feedsource fetches the external announcements feed in JSON or
// RSS/Atom form and normalizes it to models.FeedItem.
package feedsource

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/prepboard/internal/domain/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Formats accepted in Config.Format.
const (
	FormatJSON = "json"
	FormatRSS  = "rss"
)

const maxFeedBytes = 5 << 20

// ErrUpstream wraps non-2xx upstream responses.
var ErrUpstream = errors.New("feed upstream error")

// Fetcher returns the current feed items.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.FeedItem, error)
}

// Config describes the upstream feed. When ClientID is set requests carry an
// OAuth2 client-credentials token from TokenURL.
type Config struct {
	URL          string
	Format       string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
	Timeout      time.Duration
}

// Source fetches one upstream URL.
type Source struct {
	client *http.Client
	url    string
	format string
}

// New builds a Source. ctx is used for token refreshes and should outlive
// the Source.
func New(ctx context.Context, cfg Config) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	if cfg.ClientID != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
		client = cc.Client(ctx)
		client.Timeout = timeout
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == "" {
		format = FormatJSON
	}
	return &Source{client: client, url: cfg.URL, format: format}
}

func (s *Source) Fetch(ctx context.Context) ([]models.FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	if s.format == FormatRSS {
		req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", "prepboard-feed/1")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstream, s.url, resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxFeedBytes)
	if s.format == FormatRSS {
		return ParseXML(body)
	}
	return ParseJSON(body)
}

type jsonItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Date        string `json:"date"`
	Category    string `json:"category"`
}

// ParseJSON accepts a bare array of items or an object with an "items" or
// "data" array.
func ParseJSON(r io.Reader) ([]models.FeedItem, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var list []jsonItem
	if err := json.Unmarshal(raw, &list); err != nil {
		var wrapped struct {
			Items []jsonItem `json:"items"`
			Data  []jsonItem `json:"data"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode feed json: %w", err2)
		}
		list = wrapped.Items
		if list == nil {
			list = wrapped.Data
		}
	}

	out := make([]models.FeedItem, 0, len(list))
	for _, it := range list {
		link := it.Link
		if link == "" {
			link = it.URL
		}
		date := it.PublishedAt
		if date == "" {
			date = it.Date
		}
		if item, ok := newItem(it.Title, link, date, it.Category); ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type rssDoc struct {
	XMLName xml.Name
	Items   []struct {
		Title    string   `xml:"title"`
		Link     string   `xml:"link"`
		PubDate  string   `xml:"pubDate"`
		Category []string `xml:"category"`
	} `xml:"channel>item"`
	Entries []struct {
		Title string `xml:"title"`
		Links []struct {
			Href string `xml:"href,attr"`
			Rel  string `xml:"rel,attr"`
		} `xml:"link"`
		Published string `xml:"published"`
		Updated   string `xml:"updated"`
		Category  []struct {
			Term string `xml:"term,attr"`
		} `xml:"category"`
	} `xml:"entry"`
}

// ParseXML reads an RSS 2.0 or Atom document.
func ParseXML(r io.Reader) ([]models.FeedItem, error) {
	var doc rssDoc
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed xml: %w", err)
	}

	out := make([]models.FeedItem, 0, len(doc.Items)+len(doc.Entries))
	for _, it := range doc.Items {
		cat := ""
		if len(it.Category) > 0 {
			cat = it.Category[0]
		}
		if item, ok := newItem(it.Title, it.Link, it.PubDate, cat); ok {
			out = append(out, item)
		}
	}
	for _, e := range doc.Entries {
		link := ""
		for _, l := range e.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		date := e.Published
		if date == "" {
			date = e.Updated
		}
		cat := ""
		if len(e.Category) > 0 {
			cat = e.Category[0].Term
		}
		if item, ok := newItem(e.Title, link, date, cat); ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func newItem(title, link, date, category string) (models.FeedItem, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.FeedItem{}, false
	}
	item := models.FeedItem{
		Title:    title,
		Link:     strings.TrimSpace(link),
		Category: strings.TrimSpace(category),
	}
	if t, ok := parseDate(date); ok {
		item.PublishedAt = &t
	}
	return item, true
}

var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006.01.02",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
