package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrTrackNotFound is returned when a track ID has no library record.
var ErrTrackNotFound = errors.New("track not found")

// Store provides track persistence on top of the library database.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store using the given database handle.
func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

const trackColumns = `id, path, title, artist, album, genre, label, initial_key,
	comment, year, bpm, duration, artwork_url, added_at`

// TrackByID returns the track with the given ID, or ErrTrackNotFound.
func (s *Store) TrackByID(ctx context.Context, id string) (*Track, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM tracks WHERE id = ?
	`, trackColumns), id)

	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("track %s: %w", id, ErrTrackNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query track %s: %w", id, err)
	}
	return track, nil
}

// AllTracks returns every track in the library ordered by artist and title.
func (s *Store) AllTracks(ctx context.Context) ([]*Track, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM tracks ORDER BY artist, title
	`, trackColumns))
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}

	return tracks, nil
}

// InsertTracks inserts the given tracks in a single transaction.
// Tracks without an ID get one derived from their path.
func (s *Store) InsertTracks(ctx context.Context, tracks []*Track) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}

	for _, t := range tracks {
		if t.ID == "" {
			t.ID = GenerateID(t.Path)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tracks (id, path, title, artist, album, genre, label,
				initial_key, comment, year, bpm, duration, artwork_url, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.Path, t.Title, t.Artist, t.Album, t.Genre, t.Label,
			t.Key, t.Comment, nullableInt(t.Year), nullableInt(t.BPM),
			t.DurationSec, t.ArtworkURL, t.AddedAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert track %s: %w", t.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert tx: %w", err)
	}
	return nil
}

// UpdateTrack persists all mutable fields of the given track.
func (s *Store) UpdateTrack(ctx context.Context, t *Track) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tracks SET
			path = ?, title = ?, artist = ?, album = ?, genre = ?, label = ?,
			initial_key = ?, comment = ?, year = ?, bpm = ?, duration = ?,
			artwork_url = ?
		WHERE id = ?
	`, t.Path, t.Title, t.Artist, t.Album, t.Genre, t.Label,
		t.Key, t.Comment, nullableInt(t.Year), nullableInt(t.BPM),
		t.DurationSec, t.ArtworkURL, t.ID)
	if err != nil {
		return fmt.Errorf("update track %s: %w", t.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update track %s: %w", t.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("track %s: %w", t.ID, ErrTrackNotFound)
	}
	return nil
}

// UpdateTracks persists a batch of tracks. Each update is independent; the
// first failure aborts and reports which track failed.
func (s *Store) UpdateTracks(ctx context.Context, tracks []*Track) error {
	for _, t := range tracks {
		if err := s.UpdateTrack(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTracks removes the tracks with the given IDs.
func (s *Store) DeleteTracks(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tracks WHERE id = ?", id); err != nil {
			tx.Rollback()
			return fmt.Errorf("delete track %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*Track, error) {
	var (
		t    Track
		year sql.NullInt64
		bpm  sql.NullInt64
	)

	if err := row.Scan(&t.ID, &t.Path, &t.Title, &t.Artist, &t.Album, &t.Genre,
		&t.Label, &t.Key, &t.Comment, &year, &bpm, &t.DurationSec,
		&t.ArtworkURL, &t.AddedAt); err != nil {
		return nil, err
	}

	if year.Valid {
		v := int(year.Int64)
		t.Year = &v
	}
	if bpm.Valid {
		v := int(bpm.Int64)
		t.BPM = &v
	}

	return &t, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
