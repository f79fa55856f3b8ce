package traxsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jvegaf/harmony-sub000/internal/fixer"
)

// Client is a Traxsource API client. Two-phase like Beatport: the search
// endpoint only carries title, artists and label, the per-track endpoint
// adds key, BPM, genre, duration and artwork.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// New creates a new Traxsource client.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://api.traxsource.com/v1",
	}
}

func (c *Client) Name() string { return "traxsource" }

// Search queries the Traxsource track search and returns minimal candidates.
func (c *Client) Search(ctx context.Context, query fixer.SearchQuery) ([]fixer.RawCandidate, error) {
	term := strings.TrimSpace(strings.TrimSpace(query.Artist) + " " + strings.TrimSpace(query.Title))
	if term == "" {
		return nil, nil
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("limit", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/search/tracks?%s", c.apiURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create traxsource request: %w", err)
	}
	req.Header.Set("User-Agent", "harmony/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("traxsource search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("traxsource search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode traxsource response: %w", err)
	}

	return parseResults(searchResp.Tracks), nil
}

// FetchDetails loads the full track record. (nil, nil) on 404: the track
// is gone from the catalog, which callers treat as "apply what search gave".
func (c *Client) FetchDetails(ctx context.Context, candidateID string) (*fixer.RawCandidate, error) {
	reqURL := fmt.Sprintf("%s/tracks/%s", c.apiURL, url.PathEscape(candidateID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create traxsource detail request: %w", err)
	}
	req.Header.Set("User-Agent", "harmony/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("traxsource detail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("traxsource detail returned %d: %s", resp.StatusCode, body)
	}

	var detail trackDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("failed to decode traxsource detail: %w", err)
	}

	candidate := parseDetail(detail)
	return &candidate, nil
}

func parseResults(items []trackItem) []fixer.RawCandidate {
	var results []fixer.RawCandidate
	for _, item := range items {
		candidate := fixer.RawCandidate{
			ID:      strconv.Itoa(item.TrackID),
			Title:   trackTitle(item.Title, item.Version),
			Artists: artistNames(item.Artists),
		}
		if item.LabelName != "" {
			candidate.Label = fixer.Ptr(item.LabelName)
		}
		results = append(results, candidate)
	}
	return results
}

func parseDetail(d trackDetail) fixer.RawCandidate {
	candidate := fixer.RawCandidate{
		ID:      strconv.Itoa(d.TrackID),
		Title:   trackTitle(d.Title, d.Version),
		Artists: artistNames(d.Artists),
	}

	if d.ReleaseTitle != "" {
		candidate.Album = fixer.Ptr(d.ReleaseTitle)
	}
	if d.LabelName != "" {
		candidate.Label = fixer.Ptr(d.LabelName)
	}
	if d.GenreName != "" {
		candidate.Genre = fixer.Ptr(d.GenreName)
	}
	if d.KeyName != "" {
		candidate.Key = fixer.Ptr(d.KeyName)
	}
	if d.BPM > 0 {
		candidate.BPM = fixer.Ptr(d.BPM)
	}
	if d.ArtworkURL != "" {
		candidate.ArtworkURL = fixer.Ptr(d.ArtworkURL)
	}
	if d.ReleaseDate != "" {
		candidate.ReleaseDate = fixer.Ptr(d.ReleaseDate)
	}
	if sec := parseDuration(d.Duration); sec > 0 {
		candidate.DurationSec = fixer.Ptr(sec)
	}

	return candidate
}

func trackTitle(title, version string) string {
	if version == "" || strings.EqualFold(version, "Original Mix") {
		return title
	}
	return fmt.Sprintf("%s (%s)", title, version)
}

func artistNames(artists []artist) []string {
	var names []string
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// parseDuration converts Traxsource's "M:SS" (or "H:MM:SS") duration
// string into seconds. Returns 0 when the string is empty or malformed.
func parseDuration(s string) int {
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// Traxsource API response types

type searchResponse struct {
	Tracks []trackItem `json:"tracks"`
}

type trackItem struct {
	TrackID   int      `json:"track_id"`
	Title     string   `json:"title"`
	Version   string   `json:"version"`
	Artists   []artist `json:"artists"`
	LabelName string   `json:"label_name"`
}

type artist struct {
	ID   int    `json:"artist_id"`
	Name string `json:"name"`
}

type trackDetail struct {
	TrackID      int      `json:"track_id"`
	Title        string   `json:"title"`
	Version      string   `json:"version"`
	Artists      []artist `json:"artists"`
	ReleaseTitle string   `json:"release_title"`
	LabelName    string   `json:"label_name"`
	GenreName    string   `json:"genre_name"`
	KeyName      string   `json:"key_name"`
	BPM          int      `json:"bpm"`
	Duration     string   `json:"duration"` // "6:05"
	ArtworkURL   string   `json:"artwork_url"`
	ReleaseDate  string   `json:"release_date"`
}
