package beatport

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

// Client is a Beatport catalog API client. It is two-phase: Search returns
// the minimal fields needed for scoring, FetchDetails supplies the
// write-back fields (BPM, key, duration, label, artwork).
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// New creates a new Beatport client.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://api.beatport.com/v4",
	}
}

func (c *Client) Name() string { return "beatport" }

// Search queries the Beatport track search and returns minimal candidates.
func (c *Client) Search(ctx context.Context, query fixer.SearchQuery) ([]fixer.RawCandidate, error) {
	term := strings.TrimSpace(strings.TrimSpace(query.Title) + " " + strings.TrimSpace(query.Artist))
	if term == "" {
		return nil, nil
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("q", term)
	params.Set("type", "tracks")
	params.Set("per_page", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/catalog/search?%s", c.apiURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create beatport request: %w", err)
	}
	req.Header.Set("User-Agent", "harmony/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("beatport search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("beatport search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode beatport response: %w", err)
	}

	return parseResults(searchResp.Tracks), nil
}

// FetchDetails loads the full track record for a search result. A 404
// means the track was withdrawn from the catalog and returns (nil, nil).
func (c *Client) FetchDetails(ctx context.Context, candidateID string) (*fixer.RawCandidate, error) {
	reqURL := fmt.Sprintf("%s/catalog/tracks/%s", c.apiURL, url.PathEscape(candidateID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create beatport detail request: %w", err)
	}
	req.Header.Set("User-Agent", "harmony/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("beatport detail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("beatport detail returned %d: %s", resp.StatusCode, body)
	}

	var detail trackDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("failed to decode beatport detail: %w", err)
	}

	candidate := parseDetail(detail)
	return &candidate, nil
}

func parseResults(items []trackItem) []fixer.RawCandidate {
	var results []fixer.RawCandidate
	for _, item := range items {
		results = append(results, fixer.RawCandidate{
			ID:      strconv.Itoa(item.ID),
			Title:   trackTitle(item.Name, item.MixName),
			Artists: artistNames(item.Artists),
		})
	}
	return results
}

func parseDetail(d trackDetail) fixer.RawCandidate {
	candidate := fixer.RawCandidate{
		ID:      strconv.Itoa(d.ID),
		Title:   trackTitle(d.Name, d.MixName),
		Artists: artistNames(d.Artists),
	}

	if d.Release.Name != "" {
		candidate.Album = fixer.Ptr(d.Release.Name)
	}
	if d.Release.Label.Name != "" {
		candidate.Label = fixer.Ptr(d.Release.Label.Name)
	}
	if d.Release.Image.URI != "" {
		candidate.ArtworkURL = fixer.Ptr(d.Release.Image.URI)
	}
	if d.Genre.Name != "" {
		candidate.Genre = fixer.Ptr(d.Genre.Name)
	}
	if d.Key.Name != "" {
		candidate.Key = fixer.Ptr(d.Key.Name)
	}
	if d.BPM > 0 {
		candidate.BPM = fixer.Ptr(d.BPM)
	}
	if d.LengthMs > 0 {
		candidate.DurationSec = fixer.Ptr(d.LengthMs / 1000)
	}
	if d.PublishDate != "" {
		candidate.ReleaseDate = fixer.Ptr(d.PublishDate)
	}

	return candidate
}

// trackTitle appends the mix name the way Beatport displays tracks:
// "Name (Mix Name)", with the redundant "Original Mix" left off.
func trackTitle(name, mixName string) string {
	if mixName == "" || strings.EqualFold(mixName, "Original Mix") {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, mixName)
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

// Beatport API response types

type searchResponse struct {
	Tracks []trackItem `json:"tracks"`
}

type trackItem struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	MixName string   `json:"mix_name"`
	Artists []artist `json:"artists"`
}

type artist struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type trackDetail struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	MixName string   `json:"mix_name"`
	Artists []artist `json:"artists"`
	Release struct {
		Name  string `json:"name"`
		Image struct {
			URI string `json:"uri"`
		} `json:"image"`
		Label struct {
			Name string `json:"name"`
		} `json:"label"`
	} `json:"release"`
	Genre struct {
		Name string `json:"name"`
	} `json:"genre"`
	Key struct {
		Name string `json:"name"`
	} `json:"key"`
	BPM         int    `json:"bpm"`
	LengthMs    int    `json:"length_ms"`
	PublishDate string `json:"publish_date"`
}
