package itunes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jvegaf/harmony-sub000/internal/fixer"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("term"); got != "Strobe Deadmau5" {
			t.Errorf("term = %q, want %q", got, "Strobe Deadmau5")
		}
		if got := r.URL.Query().Get("media"); got != "music" {
			t.Errorf("media = %q, want %q", got, "music")
		}
		if got := r.URL.Query().Get("entity"); got != "song" {
			t.Errorf("entity = %q, want %q", got, "song")
		}
		json.NewEncoder(w).Encode(searchResponse{
			ResultCount: 1,
			Results: []resultItem{
				{
					TrackID:          900,
					TrackName:        "Strobe",
					ArtistName:       "Deadmau5",
					CollectionName:   "For Lack of a Better Name",
					PrimaryGenreName: "Dance",
					TrackTimeMillis:  634000,
					ArtworkURL100:    "https://example.com/100x100bb.jpg",
					ReleaseDate:      "2009-10-06T07:00:00Z",
				},
			},
		})
	}))
	defer srv.Close()

	c := New()
	c.apiURL = srv.URL

	results, err := c.Search(context.Background(), fixer.SearchQuery{
		Title:  "Strobe",
		Artist: "Deadmau5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.ID != "900" {
		t.Errorf("ID = %q, want %q", r.ID, "900")
	}
	if r.Title != "Strobe" {
		t.Errorf("Title = %q", r.Title)
	}
	if len(r.Artists) != 1 || r.Artists[0] != "Deadmau5" {
		t.Errorf("Artists = %v", r.Artists)
	}
	if r.Album == nil || *r.Album != "For Lack of a Better Name" {
		t.Errorf("Album = %v", r.Album)
	}
	if r.Genre == nil || *r.Genre != "Dance" {
		t.Errorf("Genre = %v", r.Genre)
	}
	if r.DurationSec == nil || *r.DurationSec != 634 {
		t.Errorf("DurationSec = %v, want 634", r.DurationSec)
	}
	if r.ArtworkURL == nil || *r.ArtworkURL != "https://example.com/600x600bb.jpg" {
		t.Errorf("ArtworkURL = %v, want 600x600 upgrade", r.ArtworkURL)
	}
	if r.Year == nil || *r.Year != 2009 {
		t.Errorf("Year = %v, want 2009", r.Year)
	}
	if r.BPM != nil || r.Key != nil {
		t.Error("itunes candidates must not carry BPM or key")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	c := New()
	results, err := c.Search(context.Background(), fixer.SearchQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results for empty query, got %v", results)
	}
}

func TestSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New()
	c.apiURL = srv.URL

	if _, err := c.Search(context.Background(), fixer.SearchQuery{Title: "x"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestBuildTerm(t *testing.T) {
	tests := []struct {
		query fixer.SearchQuery
		want  string
	}{
		{fixer.SearchQuery{Title: "Strobe", Artist: "Deadmau5"}, "Strobe Deadmau5"},
		{fixer.SearchQuery{Title: "Strobe"}, "Strobe"},
		{fixer.SearchQuery{Artist: "Deadmau5"}, "Deadmau5"},
		{fixer.SearchQuery{Title: "  ", Artist: " "}, ""},
	}
	for _, tt := range tests {
		if got := buildTerm(tt.query); got != tt.want {
			t.Errorf("buildTerm(%+v) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
