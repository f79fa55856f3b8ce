package tags

import (
	"fmt"
	"strconv"
	"time"

	"go.senan.xyz/taglib"

	"github.com/jvegaf/harmony-sub000/internal/library"
)

// Tag keys taglib has no named constant for.
const (
	tagBPM        = "BPM"
	tagInitialKey = "INITIALKEY"
	tagLabel      = "LABEL"
)

// Writer persists track metadata to the underlying audio file via taglib.
// It implements the fixer.TagWriter capability.
type Writer struct{}

// WriteTrackTags writes the track's known fields to its audio file.
// Unknown fields are not written, so existing file tags survive.
func (Writer) WriteTrackTags(path string, t *library.Track) error {
	tagMap := make(map[string][]string)

	if t.Title != "" {
		tagMap[taglib.Title] = []string{t.Title}
	}
	if t.Artist != "" {
		tagMap[taglib.Artist] = []string{t.Artist}
	}
	if t.Album != "" {
		tagMap[taglib.Album] = []string{t.Album}
	}
	if t.Genre != "" {
		tagMap[taglib.Genre] = []string{t.Genre}
	}
	if t.Comment != "" {
		tagMap[taglib.Comment] = []string{t.Comment}
	}
	if t.Label != "" {
		tagMap[tagLabel] = []string{t.Label}
	}
	if t.Key != "" {
		tagMap[tagInitialKey] = []string{t.Key}
	}
	if t.Year != nil && *t.Year > 0 {
		tagMap[taglib.Date] = []string{strconv.Itoa(*t.Year)}
	}
	if t.BPM != nil && *t.BPM > 0 {
		tagMap[tagBPM] = []string{strconv.Itoa(*t.BPM)}
	}

	if len(tagMap) == 0 {
		return nil
	}

	if err := taglib.WriteTags(path, tagMap, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

// WriteArtwork embeds artwork image data into an audio file.
func (Writer) WriteArtwork(path string, imageData []byte) error {
	if len(imageData) == 0 {
		return nil
	}
	if err := taglib.WriteImage(path, imageData); err != nil {
		return fmt.Errorf("failed to write artwork to %s: %w", path, err)
	}
	return nil
}

// ReadTrack builds a library record from an audio file's tags and
// properties. The ID is derived from the path.
func ReadTrack(path string) (*library.Track, error) {
	fileTags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	track := &library.Track{
		ID:      library.GenerateID(path),
		Path:    path,
		Title:   firstTag(fileTags, taglib.Title),
		Artist:  firstTag(fileTags, taglib.Artist),
		Album:   firstTag(fileTags, taglib.Album),
		Genre:   firstTag(fileTags, taglib.Genre),
		Comment: firstTag(fileTags, taglib.Comment),
		Label:   firstTag(fileTags, tagLabel),
		Key:     firstTag(fileTags, tagInitialKey),
		AddedAt: time.Now().UnixMilli(),
	}

	if raw := firstTag(fileTags, taglib.Date); len(raw) >= 4 {
		if year, err := strconv.Atoi(raw[:4]); err == nil && year > 0 {
			track.Year = &year
		}
	}
	if raw := firstTag(fileTags, tagBPM); raw != "" {
		if bpm, err := strconv.Atoi(raw); err == nil && bpm > 0 {
			track.BPM = &bpm
		}
	}

	properties, err := taglib.ReadProperties(path)
	if err == nil && properties.Length > 0 {
		track.DurationSec = int(properties.Length / time.Second)
	}

	return track, nil
}

func firstTag(tagMap map[string][]string, key string) string {
	if vals, ok := tagMap[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}
