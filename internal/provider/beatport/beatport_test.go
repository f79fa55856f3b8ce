package beatport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jvegaf/harmony-sub000/internal/fixer"
)

func TestSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/catalog/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Strobe Deadmau5" {
			t.Errorf("q = %q, want %q", got, "Strobe Deadmau5")
		}
		if got := r.URL.Query().Get("type"); got != "tracks" {
			t.Errorf("type = %q, want %q", got, "tracks")
		}
		if got := r.URL.Query().Get("per_page"); got != "3" {
			t.Errorf("per_page = %q, want %q", got, "3")
		}
		json.NewEncoder(w).Encode(searchResponse{
			Tracks: []trackItem{
				{
					ID:      12345,
					Name:    "Strobe",
					MixName: "Original Mix",
					Artists: []artist{{ID: 1, Name: "Deadmau5"}},
				},
				{
					ID:      12346,
					Name:    "Strobe",
					MixName: "Club Edit",
					Artists: []artist{{ID: 1, Name: "Deadmau5"}},
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New()
	c.apiURL = srv.URL

	results, err := c.Search(context.Background(), fixer.SearchQuery{
		Title:  "Strobe",
		Artist: "Deadmau5",
		Limit:  3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].ID != "12345" {
		t.Errorf("ID = %q, want %q", results[0].ID, "12345")
	}
	if results[0].Title != "Strobe" {
		t.Errorf("Title = %q, Original Mix must not be appended", results[0].Title)
	}
	if results[1].Title != "Strobe (Club Edit)" {
		t.Errorf("Title = %q, want mix name appended", results[1].Title)
	}
	if len(results[0].Artists) != 1 || results[0].Artists[0] != "Deadmau5" {
		t.Errorf("Artists = %v", results[0].Artists)
	}
	if results[0].BPM != nil || results[0].Key != nil {
		t.Error("search results must not carry detail-phase fields")
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
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New()
	c.apiURL = srv.URL

	if _, err := c.Search(context.Background(), fixer.SearchQuery{Title: "x"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestFetchDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/catalog/tracks/12345", func(w http.ResponseWriter, r *http.Request) {
		detail := trackDetail{
			ID:          12345,
			Name:        "Strobe",
			MixName:     "Original Mix",
			Artists:     []artist{{ID: 1, Name: "Deadmau5"}},
			BPM:         128,
			LengthMs:    634000,
			PublishDate: "2009-10-06",
		}
		detail.Release.Name = "For Lack of a Better Name"
		detail.Release.Label.Name = "Mau5trap"
		detail.Release.Image.URI = "https://example.com/art.jpg"
		detail.Genre.Name = "Progressive House"
		detail.Key.Name = "B Major"
		json.NewEncoder(w).Encode(detail)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New()
	c.apiURL = srv.URL

	got, err := c.FetchDetails(context.Background(), "12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a candidate")
	}

	if got.Title != "Strobe" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Album == nil || *got.Album != "For Lack of a Better Name" {
		t.Errorf("Album = %v", got.Album)
	}
	if got.Label == nil || *got.Label != "Mau5trap" {
		t.Errorf("Label = %v", got.Label)
	}
	if got.Genre == nil || *got.Genre != "Progressive House" {
		t.Errorf("Genre = %v", got.Genre)
	}
	if got.Key == nil || *got.Key != "B Major" {
		t.Errorf("Key = %v", got.Key)
	}
	if got.BPM == nil || *got.BPM != 128 {
		t.Errorf("BPM = %v", got.BPM)
	}
	if got.DurationSec == nil || *got.DurationSec != 634 {
		t.Errorf("DurationSec = %v, want 634", got.DurationSec)
	}
	if got.ReleaseDate == nil || *got.ReleaseDate != "2009-10-06" {
		t.Errorf("ReleaseDate = %v", got.ReleaseDate)
	}
	if got.ArtworkURL == nil || *got.ArtworkURL != "https://example.com/art.jpg" {
		t.Errorf("ArtworkURL = %v", got.ArtworkURL)
	}
}

func TestFetchDetailsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New()
	c.apiURL = srv.URL

	got, err := c.FetchDetails(context.Background(), "99999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil candidate for a withdrawn track, got %v", got)
	}
}

func TestTrackTitle(t *testing.T) {
	tests := []struct {
		name, mix, want string
	}{
		{"Strobe", "Original Mix", "Strobe"},
		{"Strobe", "original mix", "Strobe"},
		{"Strobe", "Club Edit", "Strobe (Club Edit)"},
		{"Strobe", "", "Strobe"},
	}
	for _, tt := range tests {
		if got := trackTitle(tt.name, tt.mix); got != tt.want {
			t.Errorf("trackTitle(%q, %q) = %q, want %q", tt.name, tt.mix, got, tt.want)
		}
	}
}
