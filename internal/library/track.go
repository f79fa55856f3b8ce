package library

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Track is the authoritative library record for one audio file.
//
// Optional numeric fields use pointers so that "unknown" is distinguishable
// from a real zero; optional text fields use the empty string for "unknown".
type Track struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Title       string `json:"title"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Label       string `json:"label,omitempty"`
	Key         string `json:"initialKey,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Year        *int   `json:"year,omitempty"`
	BPM         *int   `json:"bpm,omitempty"`
	DurationSec int    `json:"duration"` // <= 0 means unknown
	ArtworkURL  string `json:"artworkUrl,omitempty"`
	AddedAt     int64  `json:"addedAt,omitempty"` // unix millis
}

// GenerateID returns a deterministic track ID for a file path:
// the SHA-256 of the lowercased path.
func GenerateID(path string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(path)))
	return fmt.Sprintf("%x", sum)
}

// HasBPM reports whether the track has a known BPM.
func (t *Track) HasBPM() bool { return t.BPM != nil && *t.BPM > 0 }

// HasKey reports whether the track has a known musical key.
func (t *Track) HasKey() bool { return strings.TrimSpace(t.Key) != "" }
