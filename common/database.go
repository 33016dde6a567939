package common

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase opens the SQLite database at the given path and returns the
// connection handle. The handle is safe for concurrent use and is passed
// explicitly to every component that needs it; there is no package-level
// singleton.
func OpenDatabase(path string) (*gorm.DB, error) {
	// The PRAGMAs ride in the DSN so every pooled connection carries them.
	// SQLite serializes writers; the busy timeout avoids spurious SQLITE_BUSY
	// errors under concurrent requests, and _txlock=immediate makes
	// transactions take the write lock at BEGIN instead of failing promotion
	// from a deferred read lock.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}

	return db, nil
}

// CloseDatabase closes the underlying connection pool.
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsBusy reports whether err is SQLite lock contention. Such failures are
// transient and resolve when the competing writer commits.
func IsBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
