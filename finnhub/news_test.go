package finnhub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newNewsServer(t *testing.T, count int) (*httptest.Server, *url.Values) {
	t.Helper()
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company-news" {
			http.NotFound(w, r)
			return
		}
		query = r.URL.Query()
		var items []string
		for i := range count {
			items = append(items, fmt.Sprintf(`{"category":"company","datetime":%d,"headline":"Story %d","id":%d,"image":"","related":"%s","source":"Yahoo","summary":"Summary %d","url":"https://example.com/%d"}`,
				1700000000+i, i, 100+i, query.Get("symbol"), i, i))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "[%s]", strings.Join(items, ","))
	}))
	t.Cleanup(srv.Close)
	return srv, &query
}

func TestCompanyNews(t *testing.T) {
	srv, query := newNewsServer(t, 12)
	c := newTestClient(t, srv.URL, "secret")
	c.now = func() time.Time { return time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC) }

	got, err := c.CompanyNews(context.Background(), "aapl", 0)
	if err != nil {
		t.Fatalf("CompanyNews() error = %v", err)
	}
	for key, want := range map[string]string{"symbol": "AAPL", "from": "2024-02-28", "to": "2024-03-01", "token": "secret"} {
		if got := query.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}
	if got.Symbol != "AAPL" || got.From != "2024-02-28" || got.To != "2024-03-01" || !got.Live {
		t.Errorf("CompanyNews() = %+v, want AAPL from 2024-02-28 to 2024-03-01", got)
	}
	if got, want := len(got.Stories), maxStories; got != want {
		t.Fatalf("len(Stories) = %d, want %d", got, want)
	}
	first := got.Stories[0]
	want := Story{
		ID:       100,
		Headline: "Story 0",
		Summary:  "Summary 0",
		Source:   "Yahoo",
		URL:      "https://example.com/0",
		Category: "company",
		Related:  "AAPL",
		Datetime: time.Unix(1700000000, 0).UTC(),
	}
	if first != want {
		t.Errorf("Stories[0] = %+v, want %+v", first, want)
	}
}

func TestCompanyNews_DaysBack(t *testing.T) {
	srv, query := newNewsServer(t, 1)
	c := newTestClient(t, srv.URL, "secret")
	c.now = func() time.Time { return time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC) }

	if _, err := c.CompanyNews(context.Background(), "KO", 7); err != nil {
		t.Fatalf("CompanyNews() error = %v", err)
	}
	if got, want := query.Get("from"), "2024-02-23"; got != want {
		t.Errorf("from = %q, want %q", got, want)
	}
}

func TestCompanyNews_HTTPError(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := newTestClient(t, srv.URL, "secret")
	if _, err := c.CompanyNews(context.Background(), "AAPL", 2); err == nil {
		t.Error("CompanyNews() on a missing route succeeded, want an error")
	}
}
