package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// --- SQLite specifics ---

var sqliteDialect = dialect{
	name:              "sqlite3",
	cityChunkSize:     100,
	isUniqueViolation: isSQLiteUniqueViolation,
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
