package bandcamp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jvegaf/harmony-sub000/internal/fixer"
)

// Client searches the Bandcamp public autocomplete API. Bandcamp is a
// single-phase provider and structurally has no BPM, key or duration
// metadata; those fields stay absent so the apply engine can schedule
// audio analysis after tagging.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// New creates a new Bandcamp client.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://bandcamp.com/api/bcsearch_public_api/1",
	}
}

func (c *Client) Name() string { return "bandcamp" }

// Search queries the autocomplete endpoint filtered to tracks.
func (c *Client) Search(ctx context.Context, query fixer.SearchQuery) ([]fixer.RawCandidate, error) {
	term := strings.TrimSpace(strings.TrimSpace(query.Artist) + " " + strings.TrimSpace(query.Title))
	if term == "" {
		return nil, nil
	}

	payload, err := json.Marshal(searchRequest{
		SearchText:   term,
		SearchFilter: "t",
		FullPage:     false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode bandcamp request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/autocomplete_elastic", c.apiURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create bandcamp request: %w", err)
	}
	req.Header.Set("User-Agent", "harmony/1.0")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bandcamp search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bandcamp search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode bandcamp response: %w", err)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 5
	}

	return parseResults(searchResp.Auto.Results, limit), nil
}

func parseResults(items []resultItem, limit int) []fixer.RawCandidate {
	var results []fixer.RawCandidate
	for _, item := range items {
		if item.Type != "t" || item.Name == "" {
			continue
		}
		if len(results) >= limit {
			break
		}

		candidate := fixer.RawCandidate{
			ID:    strconv.FormatInt(item.ID, 10),
			Title: item.Name,
		}
		if item.BandName != "" {
			candidate.Artists = []string{item.BandName}
		}
		if item.AlbumName != "" {
			candidate.Album = fixer.Ptr(item.AlbumName)
		}
		if item.Img != "" {
			candidate.ArtworkURL = fixer.Ptr(item.Img)
		}

		results = append(results, candidate)
	}
	return results
}

// Bandcamp API request/response types

type searchRequest struct {
	SearchText   string `json:"search_text"`
	SearchFilter string `json:"search_filter"`
	FullPage     bool   `json:"full_page"`
}

type searchResponse struct {
	Auto struct {
		Results []resultItem `json:"results"`
	} `json:"auto"`
}

type resultItem struct {
	Type      string `json:"type"` // "t" = track
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	BandName  string `json:"band_name"`
	AlbumName string `json:"album_name"`
	Img       string `json:"img"`
	ItemURL   string `json:"item_url_path"`
}
