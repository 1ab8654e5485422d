package store

import "database/sql"

const presenterHashKey = "presenter_password_hash"

// SetMetadata upserts a key-value pair in the metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetPresenterPasswordHash stores the bcrypt hash the presenter logs in with.
func (s *Store) SetPresenterPasswordHash(hash string) error {
	return s.SetMetadata(presenterHashKey, hash)
}

// PresenterPasswordHash returns the stored presenter hash, or "" when presenter login is disabled.
func (s *Store) PresenterPasswordHash() (string, error) {
	return s.GetMetadata(presenterHashKey)
}

// ClearPresenterPassword disables presenter login and drops its sessions.
func (s *Store) ClearPresenterPassword() error {
	if _, err := s.db.Exec(`DELETE FROM metadata WHERE key = ?`, presenterHashKey); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM auth_sessions`)
	return err
}
