// Package clientdata persists price provider responses in the cache database.
// Entries are msgpack blobs with an absolute expiry. Expired entries are kept
// for a retention window so callers can fall back to them when a provider fails.
package clientdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// AllTables lists the cache tables the cleanup job prunes.
var AllTables = []string{
	"price_series",
}

var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Repository provides cache operations for client data.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// validateTable ensures the table name is in our allowed list.
// Table names are interpolated into SQL, so nothing else may pass.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// Store saves data with expiration = now + ttl.
func (r *Repository) Store(table, key string, data interface{}, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	blob, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	expiresAt := r.now().Add(ttl).Unix()
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (cache_key, data, expires_at) VALUES (?, ?, ?)",
		table,
	)

	if _, err := r.db.Exec(query, key, blob, expiresAt); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}
	return nil
}

// GetIfFresh decodes the entry into out only if it has not expired.
// Reports false when the key is missing or stale.
func (r *Repository) GetIfFresh(table, key string, out interface{}) (bool, error) {
	if err := validateTable(table); err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE cache_key = ? AND expires_at > ?", table)
	return r.load(table, out, query, key, r.now().Unix())
}

// Get decodes the entry into out regardless of expiration.
// Use this as a fallback when API calls fail.
func (r *Repository) Get(table, key string, out interface{}) (bool, error) {
	if err := validateTable(table); err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE cache_key = ?", table)
	return r.load(table, out, query, key)
}

func (r *Repository) load(table string, out interface{}, query string, args ...interface{}) (bool, error) {
	var blob []byte
	err := r.db.QueryRow(query, args...).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get data from %s: %w", table, err)
	}

	if err := msgpack.Unmarshal(blob, out); err != nil {
		return false, fmt.Errorf("failed to decode data from %s: %w", table, err)
	}
	return true, nil
}

// TableStats summarizes one cache table
type TableStats struct {
	Entries int64 `json:"entries"`
	Expired int64 `json:"expired"`
}

// Stats counts all and expired entries of a table.
func (r *Repository) Stats(table string) (TableStats, error) {
	if err := validateTable(table); err != nil {
		return TableStats{}, err
	}

	query := fmt.Sprintf(
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0) FROM %s",
		table,
	)
	var stats TableStats
	if err := r.db.QueryRow(query, r.now().Unix()).Scan(&stats.Entries, &stats.Expired); err != nil {
		return TableStats{}, fmt.Errorf("failed to count entries in %s: %w", table, err)
	}
	return stats, nil
}

// PruneExpired removes rows that expired more than retention ago.
// Rows inside the retention window stay available to Get as stale fallback.
func (r *Repository) PruneExpired(table string, retention time.Duration) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	cutoff := r.now().Add(-retention).Unix()
	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at < ?", table)
	result, err := r.db.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune %s: %w", table, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", table, err)
	}
	return deleted, nil
}

// PruneAll applies PruneExpired to every cache table.
// Returns a map of table name to number of rows deleted.
func (r *Repository) PruneAll(retention time.Duration) (map[string]int64, error) {
	results := make(map[string]int64, len(AllTables))

	for _, table := range AllTables {
		deleted, err := r.PruneExpired(table, retention)
		if err != nil {
			return results, err
		}
		results[table] = deleted
	}
	return results, nil
}
