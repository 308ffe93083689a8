package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_DefaultsToStandardProfile(t *testing.T) {
	db := openTestDB(t, NameConfig, "")
	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, NameConfig, db.Name())
	assert.True(t, filepath.IsAbs(db.Path()))
}

func TestMigrate_CreatesTables(t *testing.T) {
	testCases := []struct {
		name  string
		table string
	}{
		{NameConfig, "settings"},
		{NameProgress, "srs_items"},
		{NameLedger, "attempts"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := openTestDB(t, tc.name, ProfileStandard)
			require.NoError(t, db.Migrate())
			require.NoError(t, db.Migrate(), "migration must be repeatable")

			var count int
			err := db.Conn().QueryRow(
				"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", tc.table,
			).Scan(&count)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db := openTestDB(t, "scratch", ProfileCache)
	assert.NoError(t, db.Migrate())
	assert.Empty(t, Schema("scratch"))
	assert.Contains(t, Schema(NameLedger), "CREATE TABLE IF NOT EXISTS attempts")
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := openTestDB(t, NameConfig, ProfileStandard)
	require.NoError(t, db.Migrate())

	boom := errors.New("boom")
	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO settings (key, value, updated_at) VALUES ('mode', 'random', 1)"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM settings").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction_RecoversPanic(t *testing.T) {
	db := openTestDB(t, NameConfig, ProfileStandard)

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		panic("unexpected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")
}

func TestWithTransaction_NilDB(t *testing.T) {
	assert.Error(t, WithTransaction(nil, func(tx *sql.Tx) error { return nil }))
}

func TestHealthAndStats(t *testing.T) {
	db := openTestDB(t, NameLedger, ProfileLedger)
	require.NoError(t, db.Migrate())

	require.NoError(t, db.HealthCheck(context.Background()))
	require.NoError(t, db.WALCheckpoint(""))
	assert.Error(t, db.WALCheckpoint("SOMETIMES"))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, NameLedger, stats.Name)
	assert.Greater(t, stats.PageSize, int64(0))
}
