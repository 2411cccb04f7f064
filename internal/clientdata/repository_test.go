package clientdata

import (
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/frontier/internal/domain"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE price_series (cache_key TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
CREATE INDEX idx_price_series_expires ON price_series(expires_at);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func samplePoints() []domain.PricePoint {
	return []domain.PricePoint{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Price: 100.5},
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Price: 101.25},
	}
}

func TestStoreAndGetIfFresh(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Store("price_series", "AAPL:10y:1mo", samplePoints(), time.Hour))

	var got []domain.PricePoint
	found, err := repo.GetIfFresh("price_series", "AAPL:10y:1mo", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 101.25, got[1].Price)
}

func TestStoreUpsert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Store("price_series", "K", samplePoints(), time.Hour))
	require.NoError(t, repo.Store("price_series", "K", samplePoints()[:1], time.Hour))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM price_series").Scan(&count))
	assert.Equal(t, 1, count)

	var got []domain.PricePoint
	found, err := repo.Get("price_series", "K", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, got, 1)
}

func TestGetIfFresh_Expired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Store("price_series", "K", samplePoints(), -time.Hour))

	var got []domain.PricePoint
	found, err := repo.GetIfFresh("price_series", "K", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, got)
}

func TestGet_ReturnsStaleData(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Store("price_series", "K", samplePoints(), -time.Hour))

	var got []domain.PricePoint
	found, err := repo.Get("price_series", "K", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, got, 2)
}

func TestGet_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	var got []domain.PricePoint
	found, err := repo.Get("price_series", "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.GetIfFresh("price_series", "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidTable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	var out []domain.PricePoint

	tests := []struct {
		name string
		call func() error
	}{
		{"store", func() error { return repo.Store("users; DROP TABLE x", "k", 1, time.Hour) }},
		{"get", func() error { _, err := repo.Get("bogus", "k", &out); return err }},
		{"get fresh", func() error { _, err := repo.GetIfFresh("bogus", "k", &out); return err }},
		{"prune", func() error { _, err := repo.PruneExpired("bogus", 0); return err }},
		{"stats", func() error { _, err := repo.Stats("bogus"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid table name")
		})
	}
}

func TestPruneExpired_KeepsRetentionWindow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Store("price_series", "ancient", samplePoints(), -48*time.Hour))
	require.NoError(t, repo.Store("price_series", "stale", samplePoints(), -time.Hour))
	require.NoError(t, repo.Store("price_series", "fresh", samplePoints(), time.Hour))

	deleted, err := repo.PruneExpired("price_series", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var got []domain.PricePoint
	found, err := repo.Get("price_series", "stale", &got)
	require.NoError(t, err)
	assert.True(t, found)

	results, err := repo.PruneAll(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), results["price_series"])

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM price_series").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	stats, err := repo.Stats("price_series")
	require.NoError(t, err)
	assert.Equal(t, TableStats{}, stats)

	require.NoError(t, repo.Store("price_series", "a", samplePoints(), -time.Hour))
	require.NoError(t, repo.Store("price_series", "b", samplePoints(), time.Hour))
	require.NoError(t, repo.Store("price_series", "c", samplePoints(), time.Hour))

	stats, err = repo.Stats("price_series")
	require.NoError(t, err)
	assert.Equal(t, TableStats{Entries: 3, Expired: 1}, stats)
}

func TestGet_CorruptBlob(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.Exec("INSERT INTO price_series (cache_key, data, expires_at) VALUES (?, ?, ?)",
		"bad", []byte{0xc1}, time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	repo := NewRepository(db)
	var got []domain.PricePoint
	found, err := repo.Get("price_series", "bad", &got)
	assert.Error(t, err)
	assert.False(t, found)
}
