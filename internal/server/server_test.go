package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dealscope/dealscope/pkg/listing"
	"github.com/dealscope/dealscope/pkg/sources"
)

type stubSource struct {
	name     string
	listings []listing.Raw
	err      error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context, term, location string, maxPages int) ([]listing.Raw, error) {
	return s.listings, s.err
}

func newTestServer(srcs ...sources.Source) *Server {
	return New(sources.NewRegistry(srcs...), nil, nil, "", "")
}

func TestHandleSearchReturnsRankedListings(t *testing.T) {
	srv := newTestServer(&stubSource{name: "ebay", listings: []listing.Raw{
		{Title: "Strymon OB.1 Pedal", Price: "£280", Link: "https://ebay.co.uk/itm/1", Source: "ebay"},
	}})

	rec := httptest.NewRecorder()
	srv.handleSearch(rec, httptest.NewRequest("GET", "/api/search?q=strymon+ob1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var results []listing.Scored
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Score <= 0 || results[0].Score > 1 {
		t.Errorf("score out of range: %v", results[0].Score)
	}
}

func TestHandleSearchEmptyIsSuccess(t *testing.T) {
	// Every source failing is still a 200 with an empty JSON array.
	srv := newTestServer(&stubSource{name: "ebay", err: errors.New("down")})

	rec := httptest.NewRecorder()
	srv.handleSearch(rec, httptest.NewRequest("GET", "/api/search?q=strymon+ob1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty array", got)
	}
}

func TestHandleSearchValidation(t *testing.T) {
	srv := newTestServer(&stubSource{name: "ebay"})

	tests := []struct {
		name string
		url  string
	}{
		{"missing query", "/api/search"},
		{"bad currency", "/api/search?q=x&currency=JPY"},
		{"bad pages", "/api/search?q=x&pages=zero"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.handleSearch(rec, httptest.NewRequest("GET", tc.url, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleSearchNoSourcesIsServerError(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.handleSearch(rec, httptest.NewRequest("GET", "/api/search?q=x", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleSources(t *testing.T) {
	srv := newTestServer(&stubSource{name: "ebay"}, &stubSource{name: "vinted"})

	rec := httptest.NewRecorder()
	srv.handleSources(rec, httptest.NewRequest("GET", "/api/sources", nil))

	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "ebay" {
		t.Errorf("names = %v", names)
	}
}

func TestBasicAuth(t *testing.T) {
	srv := newTestServer(&stubSource{name: "ebay"})
	srv.Username = "admin"
	srv.Password = "hunter2"

	handler := srv.basicAuth(srv.handleSources)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/api/sources", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest("GET", "/api/sources", nil)
	req.SetBasicAuth("admin", "hunter2")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
