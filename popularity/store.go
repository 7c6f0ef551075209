package popularity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is a catalog row.
type Record struct {
	Enriched
	Location  string    `json:"location"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the sqlite landmark catalog. Rows are keyed by name and location.
type Store struct {
	db *sql.DB
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS landmarks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	location TEXT NOT NULL,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	popularity REAL NOT NULL,
	rating REAL NOT NULL,
	score REAL NOT NULL,
	source TEXT NOT NULL,
	confidence TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL,
	UNIQUE(name, location)
);
CREATE INDEX IF NOT EXISTS idx_landmarks_location ON landmarks(location);
`

// OpenStore opens or creates the catalog at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert saves landmarks under location, replacing rows with the same name.
// Replaced rows keep their original position in List.
func (s *Store) Upsert(ctx context.Context, location string, landmarks []Enriched) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO landmarks (name, location, latitude, longitude, popularity, rating, score, source, confidence, category, description, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, location) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			popularity = excluded.popularity,
			rating = excluded.rating,
			score = excluded.score,
			source = excluded.source,
			confidence = excluded.confidence,
			category = excluded.category,
			description = excluded.description,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, l := range landmarks {
		_, err := stmt.ExecContext(ctx,
			l.Name, location, l.Latitude, l.Longitude,
			l.Popularity, l.Rating, l.Score(),
			l.Source, l.Confidence, l.Category, l.Description, now,
		)
		if err != nil {
			return fmt.Errorf("failed to save %q: %w", l.Name, err)
		}
	}
	return tx.Commit()
}

// List returns the landmarks saved under location in insertion order.
func (s *Store) List(ctx context.Context, location string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, location, latitude, longitude, popularity, rating, source, confidence, category, description, updated_at
		FROM landmarks WHERE location = ? ORDER BY id`, location)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.Name, &r.Location, &r.Latitude, &r.Longitude,
			&r.Popularity, &r.Rating, &r.Source, &r.Confidence,
			&r.Category, &r.Description, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan landmark: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Locations lists every location in the catalog.
func (s *Store) Locations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT location FROM landmarks ORDER BY location`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// Delete removes every landmark under location and reports how many went.
func (s *Store) Delete(ctx context.Context, location string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM landmarks WHERE location = ?`, location)
	if err != nil {
		return 0, fmt.Errorf("failed to delete landmarks: %w", err)
	}
	return res.RowsAffected()
}
