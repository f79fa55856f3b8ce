package itunes

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

// Client is an iTunes Search API client, the generic fallback provider.
// Single-phase: the search response already carries everything iTunes
// knows. No BPM or key; those fields stay absent.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// New creates a new iTunes client.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://itunes.apple.com/search",
	}
}

func (c *Client) Name() string { return "itunes" }

// Search queries the iTunes Search API and returns matching candidates.
func (c *Client) Search(ctx context.Context, query fixer.SearchQuery) ([]fixer.RawCandidate, error) {
	term := buildTerm(query)
	if term == "" {
		return nil, nil
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s?%s", c.apiURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create itunes request: %w", err)
	}
	req.Header.Set("User-Agent", "harmony/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("itunes search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("itunes search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode itunes response: %w", err)
	}

	return parseResults(searchResp.Results), nil
}

func buildTerm(query fixer.SearchQuery) string {
	var parts []string
	if strings.TrimSpace(query.Title) != "" {
		parts = append(parts, strings.TrimSpace(query.Title))
	}
	if strings.TrimSpace(query.Artist) != "" {
		parts = append(parts, strings.TrimSpace(query.Artist))
	}
	return strings.Join(parts, " ")
}

func parseResults(items []resultItem) []fixer.RawCandidate {
	var results []fixer.RawCandidate
	for _, item := range items {
		candidate := fixer.RawCandidate{
			ID:    strconv.Itoa(item.TrackID),
			Title: item.TrackName,
		}
		if item.ArtistName != "" {
			candidate.Artists = []string{item.ArtistName}
		}
		if item.CollectionName != "" {
			candidate.Album = fixer.Ptr(item.CollectionName)
		}
		if item.PrimaryGenreName != "" {
			candidate.Genre = fixer.Ptr(item.PrimaryGenreName)
		}
		if item.TrackTimeMillis > 0 {
			candidate.DurationSec = fixer.Ptr(item.TrackTimeMillis / 1000)
		}

		// Upgrade to 600x600 artwork
		if item.ArtworkURL100 != "" {
			artwork := strings.Replace(item.ArtworkURL100, "100x100", "600x600", 1)
			candidate.ArtworkURL = fixer.Ptr(artwork)
		}

		if item.ReleaseDate != "" {
			candidate.ReleaseDate = fixer.Ptr(item.ReleaseDate)
			if len(item.ReleaseDate) >= 4 {
				if year, err := strconv.Atoi(item.ReleaseDate[:4]); err == nil {
					candidate.Year = fixer.Ptr(year)
				}
			}
		}

		results = append(results, candidate)
	}
	return results
}

// iTunes Search API response types

type searchResponse struct {
	ResultCount int          `json:"resultCount"`
	Results     []resultItem `json:"results"`
}

type resultItem struct {
	TrackID          int    `json:"trackId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	CollectionName   string `json:"collectionName"`
	PrimaryGenreName string `json:"primaryGenreName"`
	TrackTimeMillis  int    `json:"trackTimeMillis"`
	ArtworkURL100    string `json:"artworkUrl100"`
	ReleaseDate      string `json:"releaseDate"`
}
