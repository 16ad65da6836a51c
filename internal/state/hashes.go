package state

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// HashContent returns the cache hash of script content.
func HashContent(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// ContentHash returns the stored hash for a file path, or "" when unknown.
func (s *Store) ContentHash(filePath string) (string, error) {
	var hash string
	err := s.db.QueryRow(
		`SELECT content_hash FROM file_hashes WHERE file_path = ?`, filePath,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading content hash: %w", err)
	}
	return hash, nil
}

// SetContentHash stores the hash for a file path.
func (s *Store) SetContentHash(filePath, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO file_hashes (file_path, content_hash, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (file_path) DO UPDATE SET content_hash = excluded.content_hash, updated_at = excluded.updated_at`,
		filePath, hash, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing content hash: %w", err)
	}
	return nil
}

// Changed compares current file hashes against the stored set and returns the
// paths that are new or modified, plus stored paths that disappeared. An
// empty result in both means the inputs are unchanged since the last build.
func (s *Store) Changed(current map[string]string) (changed, removed []string, err error) {
	rows, err := s.db.Query(`SELECT file_path, content_hash FROM file_hashes`)
	if err != nil {
		return nil, nil, fmt.Errorf("listing content hashes: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, nil, fmt.Errorf("scanning content hash: %w", err)
		}
		stored[path] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for path, hash := range current {
		if stored[path] != hash {
			changed = append(changed, path)
		}
	}
	for path := range stored {
		if _, ok := current[path]; !ok {
			removed = append(removed, path)
		}
	}
	sort.Strings(changed)
	sort.Strings(removed)
	return changed, removed, nil
}

// RecordHashes replaces the stored hash set with the current one.
func (s *Store) RecordHashes(current map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting hash transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM file_hashes`); err != nil {
		return fmt.Errorf("clearing content hashes: %w", err)
	}
	now := time.Now().UTC()
	for path, hash := range current {
		if _, err := tx.Exec(
			`INSERT INTO file_hashes (file_path, content_hash, updated_at) VALUES (?, ?, ?)`,
			path, hash, now,
		); err != nil {
			return fmt.Errorf("storing content hash: %w", err)
		}
	}
	return tx.Commit()
}
