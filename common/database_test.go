package common

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		CloseDatabase(db)
	})
	return db
}

func TestOpenDatabaseAppliesForeignKeys(t *testing.T) {
	db := openTestDB(t)

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestOpenDatabaseAppliesBusyTimeout(t *testing.T) {
	db := openTestDB(t)

	var timeout int
	require.NoError(t, db.Raw("PRAGMA busy_timeout").Scan(&timeout).Error)
	assert.Equal(t, 5000, timeout)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.True(t, IsBusy(fmt.Errorf("create program: %w", sqlite3.Error{Code: sqlite3.ErrBusy})))
	assert.False(t, IsBusy(fmt.Errorf("plain failure")))
	assert.False(t, IsBusy(nil))
}
